package main

import (
	"github.com/urfave/cli/v2"
)

var initwallet = cli.Command{
	Name:  "init",
	Usage: "initialize the wallet with its first admin signer",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "admin-id",
			Usage:    "id of the first admin signer",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "admin-name",
			Usage: "display name of the first admin signer",
		},
	},
	Action: initWalletAction,
}

var info = cli.Command{
	Name:   "info",
	Usage:  "get info about the wallet, its signers and policies",
	Action: infoAction,
}

var signers = cli.Command{
	Name:   "signers",
	Usage:  "list the signers of the wallet",
	Action: signersAction,
}

func initWalletAction(ctx *cli.Context) error {
	if err := walletService().InitWallet(
		ctx.Context, ctx.String("admin-id"), ctx.String("admin-name"),
	); err != nil {
		return err
	}

	printRespJSON(map[string]string{"status": "wallet initialized"})
	return nil
}

func infoAction(ctx *cli.Context) error {
	resp, err := walletService().GetInfo(ctx.Context)
	if err != nil {
		return err
	}

	printRespJSON(newWalletView(resp))
	return nil
}

func signersAction(ctx *cli.Context) error {
	resp, err := walletService().ListSigners(ctx.Context)
	if err != nil {
		return err
	}

	list := make([]signerView, 0, len(resp))
	for _, s := range resp {
		list = append(list, newSignerView(s))
	}
	printRespJSON(list)
	return nil
}
