package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tdex-network/custody-daemon/internal/core/domain"
)

var accountFlag = &cli.StringFlag{
	Name:     "account",
	Usage:    "id of the account",
	Required: true,
}

var chainFlag = &cli.StringFlag{
	Name:     "chain",
	Usage:    "chain id, ie. icp, btc:mainnet, evm:1, ckbtc:mainnet",
	Required: true,
}

var accounts = cli.Command{
	Name:  "accounts",
	Usage: "list the accounts of the wallet",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "hidden",
			Usage: "include hidden accounts",
		},
	},
	Action: listAccountsAction,
}

var account = cli.Command{
	Name:   "account",
	Usage:  "get info about an account",
	Flags:  []cli.Flag{accountFlag},
	Action: getAccountAction,
}

var pubkey = cli.Command{
	Name:   "pubkey",
	Usage:  "request the public key of an account to the signer",
	Flags:  []cli.Flag{accountFlag},
	Action: requestPublicKeyAction,
}

var address = cli.Command{
	Name:   "address",
	Usage:  "derive the address of an account on a chain",
	Flags:  []cli.Flag{accountFlag, chainFlag},
	Action: createAddressAction,
}

var balance = cli.Command{
	Name:  "balance",
	Usage: "get the balance of an account, on one or all of its chains",
	Flags: []cli.Flag{
		accountFlag,
		&cli.StringFlag{
			Name:  chainFlag.Name,
			Usage: chainFlag.Usage,
		},
	},
	Action: balanceAction,
}

var checkpending = cli.Command{
	Name:   "check-pending",
	Usage:  "check the pending transfers of an account on a chain",
	Flags:  []cli.Flag{accountFlag, chainFlag},
	Action: checkPendingAction,
}

var removepending = cli.Command{
	Name:  "remove-pending",
	Usage: "drop a pending transfer of an account without checking its finality",
	Flags: []cli.Flag{
		accountFlag,
		chainFlag,
		&cli.StringFlag{
			Name:     "id",
			Usage:    "id of the pending transfer",
			Required: true,
		},
	},
	Action: removePendingAction,
}

func listAccountsAction(ctx *cli.Context) error {
	resp, err := accountService().ListAccounts(ctx.Context, ctx.Bool("hidden"))
	if err != nil {
		return err
	}

	list := make([]accountView, 0, len(resp))
	for _, a := range resp {
		list = append(list, newAccountView(a))
	}
	printRespJSON(list)
	return nil
}

func getAccountAction(ctx *cli.Context) error {
	resp, err := accountService().GetAccount(ctx.Context, ctx.String(accountFlag.Name))
	if err != nil {
		return err
	}

	printRespJSON(newAccountView(*resp))
	return nil
}

func requestPublicKeyAction(ctx *cli.Context) error {
	resp, err := accountService().RequestPublicKey(
		ctx.Context, ctx.String(accountFlag.Name),
	)
	if err != nil {
		return err
	}

	printRespJSON(map[string]string{"publicKey": hex.EncodeToString(resp)})
	return nil
}

func createAddressAction(ctx *cli.Context) error {
	chain, err := domain.ParseChainID(ctx.String(chainFlag.Name))
	if err != nil {
		return err
	}
	resp, err := accountService().CreateAddress(
		ctx.Context, ctx.String(accountFlag.Name), chain,
	)
	if err != nil {
		return err
	}

	printRespJSON(map[string]string{"chain": chain.String(), "address": resp})
	return nil
}

func balanceAction(ctx *cli.Context) error {
	accountID := ctx.String(accountFlag.Name)

	if !ctx.IsSet(chainFlag.Name) {
		resp, err := accountService().Balances(ctx.Context, accountID)
		if err != nil {
			return err
		}
		balances := make(map[string]string, len(resp))
		for chain, amount := range resp {
			balances[chain] = amount.String()
		}
		printRespJSON(balances)
		return nil
	}

	chain, err := domain.ParseChainID(ctx.String(chainFlag.Name))
	if err != nil {
		return err
	}
	resp, err := accountService().Balance(ctx.Context, accountID, chain)
	if err != nil {
		return err
	}

	printRespJSON(map[string]string{chain.String(): resp.String()})
	return nil
}

func checkPendingAction(ctx *cli.Context) error {
	chain, err := domain.ParseChainID(ctx.String(chainFlag.Name))
	if err != nil {
		return err
	}
	confirmed, err := accountService().CheckPending(
		ctx.Context, ctx.String(accountFlag.Name), chain,
	)

	list := make([]pendingView, 0, len(confirmed))
	for _, p := range confirmed {
		list = append(list, newPendingView(p))
	}
	printRespJSON(map[string]interface{}{"confirmed": list})

	if err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}
	return nil
}

func removePendingAction(ctx *cli.Context) error {
	chain, err := domain.ParseChainID(ctx.String(chainFlag.Name))
	if err != nil {
		return err
	}
	removed, err := accountService().RemovePending(
		ctx.Context, ctx.String(accountFlag.Name), chain, ctx.String("id"),
	)
	if err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{"removed": newPendingView(*removed)})
	return nil
}
