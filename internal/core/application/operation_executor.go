package application

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

// execute applies the payload of a confirmed operation and returns a human
// readable result.
func (s *operationService) execute(
	ctx context.Context, op *domain.Operation,
) (string, error) {
	p := op.Payload

	switch op.Kind() {
	case domain.OperationAddSigner:
		signer := p.AddSigner.Signer
		return fmt.Sprintf("signer %s added", signer.ID), s.updateWallet(
			ctx, func(w *domain.Wallet) error { return w.AddSigner(signer) },
		)

	case domain.OperationRemoveSigner:
		id := p.RemoveSigner.SignerID
		return fmt.Sprintf("signer %s removed", id), s.updateWallet(
			ctx, func(w *domain.Wallet) error { return w.RemoveSigner(id) },
		)

	case domain.OperationCreateAccount:
		var accountID string
		err := s.updateWallet(ctx, func(w *domain.Wallet) error {
			a, err := w.CreateAccount(p.CreateAccount.Environment, p.CreateAccount.Name)
			if err != nil {
				return err
			}
			accountID = a.ID
			return nil
		})
		return accountID, err

	case domain.OperationRenameAccount:
		args := p.RenameAccount
		return args.AccountID, s.updateAccount(
			ctx, args.AccountID,
			func(a *domain.Account) error { return a.Rename(args.Name) },
		)

	case domain.OperationHideAccount:
		return p.Account.AccountID, s.updateAccount(
			ctx, p.Account.AccountID,
			func(a *domain.Account) error { a.Hide(); return nil },
		)

	case domain.OperationUnhideAccount:
		return p.Account.AccountID, s.updateAccount(
			ctx, p.Account.AccountID,
			func(a *domain.Account) error { a.Unhide(); return nil },
		)

	case domain.OperationRemoveAccount:
		id := p.Account.AccountID
		return id, s.updateWallet(
			ctx, func(w *domain.Wallet) error { return w.RemoveAccount(id) },
		)

	case domain.OperationCreateAddress:
		args := p.CreateAddress
		return s.accounts.CreateAddress(ctx, args.AccountID, args.Chain)

	case domain.OperationSendToken:
		args := p.SendToken
		res, err := s.accounts.Send(
			ctx, args.AccountID, args.Chain, args.Destination, args.Amount, args.Memo,
		)
		if err != nil {
			return "", err
		}
		return res.Reference, nil

	case domain.OperationTopUpCanister:
		args := p.TopUpCanister
		res, err := s.accounts.TopUpCanister(
			ctx, args.AccountID, args.CanisterID, args.Amount,
		)
		if err != nil {
			return "", err
		}
		return res.Reference, nil

	case domain.OperationSwapBtcToBridge:
		args := p.SwapBtcToBridge
		res, err := s.accounts.SwapBtcToBridge(
			ctx, args.AccountID, args.Network, args.Amount,
		)
		if err != nil {
			return "", err
		}
		return res.Reference, nil

	case domain.OperationSwapBridgeToBtc:
		args := p.SwapBridgeToBtc
		res, err := s.accounts.SwapBridgeToBtc(
			ctx, args.AccountID, args.Network, args.Destination, args.Amount,
		)
		if err != nil {
			return "", err
		}
		return res.Reference, nil

	case domain.OperationSignEvmTransaction:
		args := p.SignEvmTransaction
		signed, err := s.accounts.SignEvmTransaction(
			ctx, args.AccountID, args.RawTx, args.ChainID,
		)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(signed), nil

	case domain.OperationUpdateSettings:
		settings := p.UpdateSettings.Settings
		return "settings updated", s.updateWallet(
			ctx, func(w *domain.Wallet) error { return w.UpdateSettings(settings) },
		)

	case domain.OperationUpdatePolicy:
		args := p.UpdatePolicy
		return fmt.Sprintf("policy of %s updated", args.Kind), s.updateWallet(
			ctx, func(w *domain.Wallet) error { return w.SetPolicy(args.Kind, args.Policy) },
		)

	default:
		return "", domain.ErrUnknownOperationKind
	}
}

func (s *operationService) updateWallet(
	ctx context.Context, fn func(w *domain.Wallet) error,
) error {
	return s.repoManager.WalletRepository().UpdateWallet(
		ctx,
		func(w *domain.Wallet) (*domain.Wallet, error) {
			if err := fn(w); err != nil {
				return nil, err
			}
			return w, nil
		},
	)
}

func (s *operationService) updateAccount(
	ctx context.Context, accountID string, fn func(a *domain.Account) error,
) error {
	return s.updateWallet(ctx, func(w *domain.Wallet) error {
		a, err := w.GetAccount(accountID)
		if err != nil {
			return err
		}
		return fn(a)
	})
}
