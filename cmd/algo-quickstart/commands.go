package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/algo-quickstart/internal/actions"
	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/keystore"
	"github.com/quantumauth-io/algo-quickstart/internal/networks"
	"github.com/quantumauth-io/algo-quickstart/internal/signer"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Algorand TestNet quickstart: payments, opt-ins, atomic transfers, tokens and NFTs",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&a.configDirs, "config-dir", nil, "extra directory to search for quickstart.yaml")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	root.PersistentFlags().StringVar(&a.network, "network", "", "target network preset: testnet, mainnet or localnet")
	root.PersistentFlags().StringVar(&a.keystore, "keystore", "", "encrypted account file (default ~/.config/algo-quickstart/account.json)")

	root.AddCommand(
		newAccountCmd(a),
		newStatusCmd(a),
		newNetworksCmd(a),
		newSendCmd(a),
		newOptInCmd(a),
		newOptInStatusCmd(a),
		newAtomicCmd(a),
		newCreateTokenCmd(a),
		newMintNFTCmd(a),
		newAppCallCmd(a),
		newPinHealthCmd(a),
	)
	return root
}

// run executes an action as a Task and reports it.
func run(cmd *cobra.Command, a *app, action actions.Action, fn func(context.Context) (actions.Outcome, error)) error {
	ctx := cmd.Context()
	out, err := actions.Go(ctx, fn).Wait(ctx)
	return a.report(cmd.OutOrStdout(), action, out, err)
}

func newAccountCmd(a *app) *cobra.Command {
	account := &cobra.Command{
		Use:   "account",
		Short: "Manage development accounts",
	}
	var save bool
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new account and print its address and mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, phrase, err := signer.Generate()
			if err != nil {
				return err
			}
			if save {
				if err := saveAccount(cmd, a, s.Address(), phrase); err != nil {
					return err
				}
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"address": s.Address(), "mnemonic": phrase})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "address:  %s\nmnemonic: %s\n", s.Address(), phrase)
			fmt.Fprintln(cmd.ErrOrStderr(), "Fund it from the TestNet dispenser before sending transactions.")
			return nil
		},
	}
	newCmd.Flags().BoolVar(&save, "save", false, "also store the mnemonic in the encrypted keystore")
	account.AddCommand(newCmd)
	return account
}

func saveAccount(cmd *cobra.Command, a *app, address, phrase string) error {
	path := a.keystorePath()
	if path == "" {
		return errors.New("cli: no keystore path")
	}
	password, err := readSecret(cmd, "New keystore password: ")
	if err != nil {
		return err
	}
	again, err := readSecret(cmd, "Repeat password: ")
	if err != nil {
		return err
	}
	if !bytes.Equal(password, again) {
		return errors.New("cli: passwords do not match")
	}
	acct := keystore.Account{Address: address, Mnemonic: phrase, Network: constants.DefaultNetwork, CreatedAt: time.Now().UTC()}
	if err := keystore.Save(path, acct, password, keystore.DefaultKDF); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved to %s\n", path)
	return nil
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connected network and its last round",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.algod()
			if err != nil {
				return err
			}
			round, err := n.LastRound(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"network": n.Network(), "lastRound": round})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "network: %s\nround:   %d\n", n.Network(), round)
			return nil
		},
	}
}

func newNetworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the known network presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := networks.List()
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			for _, n := range list {
				addr := n.AlgodServer
				if n.AlgodPort != "" {
					addr += ":" + n.AlgodPort
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", n.Name, addr)
			}
			return nil
		},
	}
}

func newSendCmd(a *app) *cobra.Command {
	var symbol, receiver, amount string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send ALGO or USDC to a receiver",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.actionRunner(cmd, true)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionSend, actions.Outcome{}, err)
			}
			asset, err := r.Asset(symbol)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionSend, actions.Outcome{}, err)
			}
			return run(cmd, a, actions.ActionSend, func(ctx context.Context) (actions.Outcome, error) {
				return r.Send(ctx, asset, receiver, amount)
			})
		},
	}
	cmd.Flags().StringVar(&symbol, "asset", "ALGO", "asset to send: ALGO or USDC")
	cmd.Flags().StringVar(&receiver, "to", "", "receiver address")
	cmd.Flags().StringVar(&amount, "amount", "1", "amount in whole units, e.g. 1.5")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newOptInCmd(a *app) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "opt-in",
		Short: "Opt the account in to an asset (USDC by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.actionRunner(cmd, true)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionOptIn, actions.Outcome{}, err)
			}
			asset, err := r.Asset(symbol)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionOptIn, actions.Outcome{}, err)
			}
			return run(cmd, a, actions.ActionOptIn, func(ctx context.Context) (actions.Outcome, error) {
				return r.OptIn(ctx, asset)
			})
		},
	}
	cmd.Flags().StringVar(&symbol, "asset", "USDC", "asset to opt in to")
	return cmd
}

func newOptInStatusCmd(a *app) *cobra.Command {
	var symbol, account string
	cmd := &cobra.Command{
		Use:   "opt-in-status",
		Short: "Report whether an account is opted in to an asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.actionRunner(cmd, account == "")
			if err != nil {
				return err
			}
			asset, err := r.Asset(symbol)
			if err != nil {
				return err
			}
			opted, err := actions.Go(cmd.Context(), func(ctx context.Context) (bool, error) {
				return r.IsOptedIn(ctx, account, asset)
			}).Wait(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"asset": asset, "optedIn": opted})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s opted in: %t\n", asset.Symbol, opted)
			return nil
		},
	}
	cmd.Flags().StringVar(&symbol, "asset", "USDC", "asset to check")
	cmd.Flags().StringVar(&account, "account", "", "account to check (defaults to the configured account)")
	return cmd
}

func newAtomicCmd(a *app) *cobra.Command {
	var receiver string
	cmd := &cobra.Command{
		Use:   "atomic",
		Short: "Send 1 ALGO and 1 USDC to a receiver as one atomic group",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.actionRunner(cmd, true)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionAtomic, actions.Outcome{}, err)
			}
			return run(cmd, a, actions.ActionAtomic, func(ctx context.Context) (actions.Outcome, error) {
				return r.AtomicTransfer(ctx, receiver)
			})
		},
	}
	cmd.Flags().StringVar(&receiver, "to", "", "receiver address")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newCreateTokenCmd(a *app) *cobra.Command {
	var form actions.TokenForm
	cmd := &cobra.Command{
		Use:   "create-token",
		Short: "Create a fungible token",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.actionRunner(cmd, true)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionCreateToken, actions.Outcome{}, err)
			}
			return run(cmd, a, actions.ActionCreateToken, func(ctx context.Context) (actions.Outcome, error) {
				return r.CreateToken(ctx, form)
			})
		},
	}
	cmd.Flags().StringVar(&form.AssetName, "name", constants.DefaultTokenName, "asset name")
	cmd.Flags().StringVar(&form.UnitName, "unit", constants.DefaultTokenUnit, "unit name")
	cmd.Flags().StringVar(&form.Total, "total", constants.DefaultTokenTotal, "total supply in whole units")
	cmd.Flags().StringVar(&form.Decimals, "decimals", constants.DefaultTokenDecimals, "decimal places")
	return cmd
}

func newMintNFTCmd(a *app) *cobra.Command {
	var path string
	var form actions.NFTForm
	cmd := &cobra.Command{
		Use:   "mint-nft",
		Short: "Pin an image through the pin backend and mint it as a unique asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.actionRunner(cmd, true)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionMintNFT, actions.Outcome{}, err)
			}
			if path != "" {
				if form.Content, err = readFile(path); err != nil {
					return err
				}
				form.Filename = filepath.Base(path)
			}
			return run(cmd, a, actions.ActionMintNFT, func(ctx context.Context) (actions.Outcome, error) {
				return r.MintNFT(ctx, form)
			})
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "image to mint, - for stdin")
	cmd.Flags().StringVar(&form.AssetName, "name", constants.DefaultNFTName, "asset name")
	cmd.Flags().StringVar(&form.UnitName, "unit", constants.DefaultNFTUnit, "unit name")
	return cmd
}

func newAppCallCmd(a *app) *cobra.Command {
	var form actions.AppCallForm
	cmd := &cobra.Command{
		Use:   "app-call",
		Short: "Deploy the hello application and call hello(name)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.actionRunner(cmd, true)
			if err != nil {
				return a.report(cmd.OutOrStdout(), actions.ActionAppCall, actions.Outcome{}, err)
			}
			return run(cmd, a, actions.ActionAppCall, func(ctx context.Context) (actions.Outcome, error) {
				return r.AppCall(ctx, form)
			})
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "argument passed to hello")
	cmd.Flags().Uint64Var(&form.AppID, "app-id", 0, "call an already deployed application instead of deploying one")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPinHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pin-health",
		Short: "Check that the pin backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.pinClient()
			if err != nil {
				return err
			}
			ts, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ok at %s\n", c.BaseURL(), ts.UTC().Format("2006-01-02T15:04:05Z"))
			return nil
		},
	}
}
