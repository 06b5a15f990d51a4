package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tdex-network/custody-daemon/internal/config"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/pkg/btc"
)

var (
	idFlag = &cli.Uint64Flag{
		Name:     "id",
		Usage:    "id of the operation",
		Required: true,
	}
	reasonFlag = &cli.StringFlag{
		Name:  "reason",
		Usage: "reason of the proposal shown to the other signers",
	}
	expiryFlag = &cli.DurationFlag{
		Name:  "expiry",
		Usage: "lifetime of the proposal, defaults to the configured one",
	}
	networkFlag = &cli.StringFlag{
		Name:  "network",
		Usage: "bitcoin network, defaults to the configured one",
	}
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "amount in whole units, ie. 0.5",
		Required: true,
	}
)

var propose = cli.Command{
	Name:  "propose",
	Usage: "propose an operation to the signers of the wallet",
	Subcommands: []*cli.Command{
		proposeCommand("add-signer", "add a signer to the wallet",
			&cli.StringFlag{Name: "signer", Usage: "id of the new signer", Required: true},
			&cli.StringFlag{Name: "name", Usage: "display name of the new signer"},
			&cli.StringFlag{Name: "role", Usage: "user or admin", Value: "user"},
		),
		proposeCommand("remove-signer", "remove a signer from the wallet",
			&cli.StringFlag{Name: "signer", Usage: "id of the signer", Required: true},
		),
		proposeCommand("create-account", "create an account on the next subaccount",
			&cli.StringFlag{Name: "name", Usage: "name of the account"},
			&cli.StringFlag{
				Name:  "environment",
				Usage: "production, staging or development, defaults to the configured one",
			},
		),
		proposeCommand("rename-account", "rename an account",
			accountFlag,
			&cli.StringFlag{Name: "name", Usage: "new name", Required: true},
		),
		proposeCommand("hide-account", "hide an account", accountFlag),
		proposeCommand("unhide-account", "unhide an account", accountFlag),
		proposeCommand("remove-account", "remove an account", accountFlag),
		proposeCommand("create-address", "add a chain to an account",
			accountFlag, chainFlag,
		),
		proposeCommand("send", "send tokens from an account",
			accountFlag, chainFlag, amountFlag,
			&cli.StringFlag{Name: "to", Usage: "destination address", Required: true},
			&cli.Uint64Flag{Name: "memo", Usage: "memo of native ledger and bridge transfers"},
		),
		proposeCommand("top-up", "convert native tokens of an account into cycles for a canister",
			accountFlag, amountFlag,
			&cli.StringFlag{Name: "canister", Usage: "id of the canister", Required: true},
		),
		proposeCommand("swap-btc-to-bridge", "deposit BTC of an account to the bridge",
			accountFlag, amountFlag, networkFlag,
		),
		proposeCommand("swap-bridge-to-btc", "withdraw wrapped BTC of an account to a bitcoin address",
			accountFlag, amountFlag, networkFlag,
			&cli.StringFlag{Name: "to", Usage: "destination bitcoin address", Required: true},
		),
		proposeCommand("sign-evm-tx", "sign a raw EVM transaction with the key of an account",
			accountFlag,
			&cli.StringFlag{Name: "tx", Usage: "hex encoded unsigned transaction", Required: true},
			&cli.Uint64Flag{Name: "chain-id", Usage: "chain id to sign for, if missing from the tx"},
		),
		proposeCommand("update-settings", "replace the settings of the wallet",
			&cli.StringSliceFlag{Name: "controller", Usage: "controller id, repeatable"},
			&cli.StringSliceFlag{Name: "metadata", Usage: "key=value metadata entry, repeatable"},
		),
		proposeCommand("update-policy", "change who approves an operation kind",
			&cli.StringFlag{Name: "kind", Usage: "operation kind, ie. send_token", Required: true},
			&cli.StringFlag{Name: "role", Usage: "user or admin", Value: "admin"},
			&cli.IntFlag{Name: "threshold", Usage: "approvals required, 0 for all eligible signers"},
		),
	},
}

// payloadBuilders maps every propose subcommand to the function building
// its payload from the command flags.
var payloadBuilders = map[string]func(ctx *cli.Context) (domain.Payload, error){
	"add-signer":         addSignerPayload,
	"remove-signer":      removeSignerPayload,
	"create-account":     createAccountPayload,
	"rename-account":     renameAccountPayload,
	"hide-account":       accountPayload(domain.OperationHideAccount),
	"unhide-account":     accountPayload(domain.OperationUnhideAccount),
	"remove-account":     accountPayload(domain.OperationRemoveAccount),
	"create-address":     createAddressPayload,
	"send":               sendPayload,
	"top-up":             topUpPayload,
	"swap-btc-to-bridge": swapBtcToBridgePayload,
	"swap-bridge-to-btc": swapBridgeToBtcPayload,
	"sign-evm-tx":        signEvmTxPayload,
	"update-settings":    updateSettingsPayload,
	"update-policy":      updatePolicyPayload,
}

var respond = cli.Command{
	Name:  "respond",
	Usage: "approve or reject a pending operation",
	Flags: []cli.Flag{
		idFlag,
		&cli.BoolFlag{Name: "reject", Usage: "reject the operation instead of approving it"},
	},
	Action: respondAction,
}

var execute = cli.Command{
	Name:   "execute",
	Usage:  "execute a confirmed operation",
	Flags:  []cli.Flag{idFlag},
	Action: executeAction,
}

var operations = cli.Command{
	Name:  "operations",
	Usage: "list pending operations",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "processed", Usage: "list processed operations instead"},
	},
	Action: listOperationsAction,
}

var operation = cli.Command{
	Name:   "operation",
	Usage:  "get a pending or processed operation",
	Flags:  []cli.Flag{idFlag},
	Action: getOperationAction,
}

var sweep = cli.Command{
	Name:   "sweep",
	Usage:  "process the pending operations past their deadline",
	Action: sweepAction,
}

func proposeCommand(name, usage string, flags ...cli.Flag) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: append(flags, reasonFlag, expiryFlag),
		Action: func(ctx *cli.Context) error {
			proposer, err := signerID(ctx)
			if err != nil {
				return err
			}
			payload, err := payloadBuilders[name](ctx)
			if err != nil {
				return err
			}

			var deadline time.Time
			if expiry := ctx.Duration(expiryFlag.Name); expiry > 0 {
				deadline = time.Now().Add(expiry)
			}

			op, err := operationService().Propose(
				ctx.Context, proposer, payload, ctx.String(reasonFlag.Name), deadline,
			)
			if err != nil {
				return err
			}

			printRespJSON(newOperationView(op))
			return nil
		},
	}
}

func respondAction(ctx *cli.Context) error {
	signer, err := signerID(ctx)
	if err != nil {
		return err
	}

	op, processed, err := operationService().Respond(
		ctx.Context, ctx.Uint64(idFlag.Name), signer, !ctx.Bool("reject"),
	)
	if processed != nil {
		printRespJSON(newProcessedView(processed))
	} else if op != nil {
		printRespJSON(newOperationView(op))
	}
	return err
}

func executeAction(ctx *cli.Context) error {
	processed, err := operationService().Execute(ctx.Context, ctx.Uint64(idFlag.Name))
	if err != nil {
		return err
	}

	printRespJSON(newProcessedView(processed))
	return nil
}

func listOperationsAction(ctx *cli.Context) error {
	if ctx.Bool("processed") {
		resp, err := operationService().ListProcessedOperations(ctx.Context)
		if err != nil {
			return err
		}
		list := make([]processedView, 0, len(resp))
		for _, p := range resp {
			list = append(list, newProcessedView(p))
		}
		printRespJSON(list)
		return nil
	}

	resp, err := operationService().ListOperations(ctx.Context)
	if err != nil {
		return err
	}
	list := make([]operationView, 0, len(resp))
	for _, op := range resp {
		list = append(list, newOperationView(op))
	}
	printRespJSON(list)
	return nil
}

func getOperationAction(ctx *cli.Context) error {
	id := ctx.Uint64(idFlag.Name)

	op, err := operationService().GetOperation(ctx.Context, id)
	if err == nil {
		printRespJSON(newOperationView(op))
		return nil
	}
	if !errors.Is(err, domain.ErrOperationNotFound) {
		return err
	}

	processed, err := operationService().GetProcessedOperation(ctx.Context, id)
	if err != nil {
		return err
	}
	printRespJSON(newProcessedView(processed))
	return nil
}

func sweepAction(ctx *cli.Context) error {
	resp, err := operationService().ProcessExpired(ctx.Context)
	if err != nil {
		return err
	}

	list := make([]processedView, 0, len(resp))
	for _, p := range resp {
		list = append(list, newProcessedView(p))
	}
	printRespJSON(list)
	return nil
}

func addSignerPayload(ctx *cli.Context) (domain.Payload, error) {
	role, err := domain.ParseRole(ctx.String("role"))
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Kind: domain.OperationAddSigner,
		AddSigner: &domain.AddSignerPayload{
			Signer: domain.Signer{
				ID:   ctx.String("signer"),
				Name: ctx.String("name"),
				Role: role,
			},
		},
	}, nil
}

func removeSignerPayload(ctx *cli.Context) (domain.Payload, error) {
	return domain.Payload{
		Kind:         domain.OperationRemoveSigner,
		RemoveSigner: &domain.RemoveSignerPayload{SignerID: ctx.String("signer")},
	}, nil
}

func createAccountPayload(ctx *cli.Context) (domain.Payload, error) {
	var env domain.Environment
	if ctx.IsSet("environment") {
		var err error
		if env, err = domain.ParseEnvironment(ctx.String("environment")); err != nil {
			return domain.Payload{}, err
		}
	} else {
		env = config.GetEnvironment()
	}
	return domain.Payload{
		Kind: domain.OperationCreateAccount,
		CreateAccount: &domain.CreateAccountPayload{
			Environment: env,
			Name:        ctx.String("name"),
		},
	}, nil
}

func renameAccountPayload(ctx *cli.Context) (domain.Payload, error) {
	return domain.Payload{
		Kind: domain.OperationRenameAccount,
		RenameAccount: &domain.RenameAccountPayload{
			AccountID: ctx.String(accountFlag.Name),
			Name:      ctx.String("name"),
		},
	}, nil
}

func createAddressPayload(ctx *cli.Context) (domain.Payload, error) {
	chain, err := domain.ParseChainID(ctx.String(chainFlag.Name))
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Kind: domain.OperationCreateAddress,
		CreateAddress: &domain.CreateAddressPayload{
			AccountID: ctx.String(accountFlag.Name),
			Chain:     chain,
		},
	}, nil
}

func accountPayload(
	kind domain.OperationKind,
) func(ctx *cli.Context) (domain.Payload, error) {
	return func(ctx *cli.Context) (domain.Payload, error) {
		return domain.Payload{
			Kind:    kind,
			Account: &domain.AccountPayload{AccountID: ctx.String(accountFlag.Name)},
		}, nil
	}
}

func sendPayload(ctx *cli.Context) (domain.Payload, error) {
	chain, err := domain.ParseChainID(ctx.String(chainFlag.Name))
	if err != nil {
		return domain.Payload{}, err
	}
	amount, err := domain.ParseTokenAmount(ctx.String(amountFlag.Name), chain)
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Kind: domain.OperationSendToken,
		SendToken: &domain.SendTokenPayload{
			AccountID:   ctx.String(accountFlag.Name),
			Chain:       chain,
			Destination: ctx.String("to"),
			Amount:      amount,
			Memo:        ctx.Uint64("memo"),
		},
	}, nil
}

func topUpPayload(ctx *cli.Context) (domain.Payload, error) {
	amount, err := parseUint64Amount(ctx, domain.NativeLedgerChain())
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Kind: domain.OperationTopUpCanister,
		TopUpCanister: &domain.TopUpCanisterPayload{
			AccountID:  ctx.String(accountFlag.Name),
			CanisterID: ctx.String("canister"),
			Amount:     amount,
		},
	}, nil
}

func swapBtcToBridgePayload(ctx *cli.Context) (domain.Payload, error) {
	network, err := parseNetwork(ctx)
	if err != nil {
		return domain.Payload{}, err
	}
	amount, err := parseUint64Amount(ctx, domain.BitcoinChain(network))
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Kind: domain.OperationSwapBtcToBridge,
		SwapBtcToBridge: &domain.SwapBtcToBridgePayload{
			AccountID: ctx.String(accountFlag.Name),
			Network:   network,
			Amount:    amount,
		},
	}, nil
}

func swapBridgeToBtcPayload(ctx *cli.Context) (domain.Payload, error) {
	network, err := parseNetwork(ctx)
	if err != nil {
		return domain.Payload{}, err
	}
	amount, err := parseUint64Amount(ctx, domain.BridgeChain(network))
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Kind: domain.OperationSwapBridgeToBtc,
		SwapBridgeToBtc: &domain.SwapBridgeToBtcPayload{
			AccountID:   ctx.String(accountFlag.Name),
			Network:     network,
			Destination: ctx.String("to"),
			Amount:      amount,
		},
	}, nil
}

func signEvmTxPayload(ctx *cli.Context) (domain.Payload, error) {
	rawTx, err := hex.DecodeString(strings.TrimPrefix(ctx.String("tx"), "0x"))
	if err != nil {
		return domain.Payload{}, fmt.Errorf("invalid tx: %w", err)
	}
	return domain.Payload{
		Kind: domain.OperationSignEvmTransaction,
		SignEvmTransaction: &domain.SignEvmTransactionPayload{
			AccountID: ctx.String(accountFlag.Name),
			ChainID:   ctx.Uint64("chain-id"),
			RawTx:     rawTx,
		},
	}, nil
}

func updateSettingsPayload(ctx *cli.Context) (domain.Payload, error) {
	metadata := make(map[string]string)
	for _, entry := range ctx.StringSlice("metadata") {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return domain.Payload{}, fmt.Errorf("invalid metadata entry %q", entry)
		}
		metadata[key] = value
	}
	return domain.Payload{
		Kind: domain.OperationUpdateSettings,
		UpdateSettings: &domain.UpdateSettingsPayload{
			Settings: domain.Settings{
				Controllers: ctx.StringSlice("controller"),
				Metadata:    metadata,
			},
		},
	}, nil
}

func updatePolicyPayload(ctx *cli.Context) (domain.Payload, error) {
	kind, err := domain.ParseOperationKind(ctx.String("kind"))
	if err != nil {
		return domain.Payload{}, err
	}
	role, err := domain.ParseRole(ctx.String("role"))
	if err != nil {
		return domain.Payload{}, err
	}
	return domain.Payload{
		Kind: domain.OperationUpdatePolicy,
		UpdatePolicy: &domain.UpdatePolicyPayload{
			Kind:   kind,
			Policy: domain.Policy{Role: role, Threshold: ctx.Int("threshold")},
		},
	}, nil
}

func parseNetwork(ctx *cli.Context) (btc.Network, error) {
	if !ctx.IsSet(networkFlag.Name) {
		return config.GetBitcoinNetwork(), nil
	}
	return btc.ParseNetwork(ctx.String(networkFlag.Name))
}

func parseUint64Amount(ctx *cli.Context, chain domain.ChainID) (uint64, error) {
	amount, err := domain.ParseTokenAmount(ctx.String(amountFlag.Name), chain)
	if err != nil {
		return 0, err
	}
	if !amount.IsUint64() {
		return 0, fmt.Errorf("amount out of range")
	}
	return amount.Uint64(), nil
}
