package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quantumauth-io/algo-quickstart/internal/actions"
	"github.com/quantumauth-io/algo-quickstart/internal/assets"
	"github.com/quantumauth-io/algo-quickstart/internal/config"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
	"github.com/quantumauth-io/algo-quickstart/internal/keystore"
	"github.com/quantumauth-io/algo-quickstart/internal/ledger"
	"github.com/quantumauth-io/algo-quickstart/internal/networks"
	"github.com/quantumauth-io/algo-quickstart/internal/node"
	"github.com/quantumauth-io/algo-quickstart/internal/pinclient"
	"github.com/quantumauth-io/algo-quickstart/internal/signer"
)

// app is the wiring shared by every command. It is built lazily so commands
// like "account new" run without a node or config file.
type app struct {
	configDirs []string
	jsonOut    bool
	keystore   string
	network    string

	cfg    *config.Config
	node   *node.Client
	runner *actions.Runner
	pins   *pinclient.Client
}

func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(append(config.DefaultPaths(), a.configDirs...)...)
	if err != nil {
		return err
	}
	if a.network != "" {
		if err := networks.Apply(cfg, a.network); err != nil {
			return err
		}
	}
	a.cfg = cfg
	return nil
}

func (a *app) algod() (*node.Client, error) {
	if a.node != nil {
		return a.node, nil
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	n, err := node.NewFromConfig(a.cfg.Algod)
	if err != nil {
		return nil, err
	}
	a.node = n
	return n, nil
}

func (a *app) pinClient() (*pinclient.Client, error) {
	if a.pins != nil {
		return a.pins, nil
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	base := pinclient.ResolveBaseURL(a.cfg.Client.PinBackendURL, pinclient.CodespaceHost(a.cfg.Client.CodespaceName))
	a.pins = pinclient.NewClient(base, a.cfg.Pinning.Timeout)
	return a.pins, nil
}

// actionRunner wires node, signer and pin backend into an actions.Runner.
// withSigner is false for read-only commands.
func (a *app) actionRunner(cmd *cobra.Command, withSigner bool) (*actions.Runner, error) {
	if a.runner != nil {
		return a.runner, nil
	}
	n, err := a.algod()
	if err != nil {
		return nil, err
	}
	pins, err := a.pinClient()
	if err != nil {
		return nil, err
	}

	var s ledger.Signer
	if withSigner {
		local, err := a.localSigner(cmd)
		if err != nil {
			return nil, err
		}
		s = local
	}

	a.runner = actions.NewRunner(
		assets.NewChecker(n, a.cfg.Client.Timeout),
		ledger.NewSubmitter(n, a.cfg.Client.WaitRounds, a.cfg.Client.Timeout),
		actions.Options{
			Signer:   s,
			Pins:     pins,
			Compiler: n,
			USDC:     assets.USDC(a.cfg.Assets.USDCAssetID, a.cfg.Assets.USDCDecimals),
			Explorer: actions.Explorer{BaseURL: a.cfg.Client.ExplorerURL, Network: n.Network()},
			OnProgress: func(nt actions.Notice) {
				if !a.jsonOut {
					fmt.Fprintln(cmd.ErrOrStderr(), nt.Message)
				}
			},
		},
	)
	return a.runner, nil
}

// localSigner loads the account from, in order: a configured mnemonic, the
// encrypted keystore, or a hidden mnemonic prompt.
func (a *app) localSigner(cmd *cobra.Command) (*signer.Local, error) {
	phrase := a.cfg.Client.Mnemonic
	if phrase == "" {
		if path := a.keystorePath(); path != "" {
			if _, err := os.Stat(path); err == nil {
				password, err := readSecret(cmd, "Keystore password: ")
				if err != nil {
					return nil, err
				}
				acct, err := keystore.Load(path, password)
				if err != nil {
					return nil, failure.Wrap(err, failure.ErrSignerUnavailable, "cli: open keystore")
				}
				phrase = acct.Mnemonic
			}
		}
	}
	if phrase == "" {
		raw, err := readSecret(cmd, "Account mnemonic: ")
		if err != nil {
			return nil, err
		}
		phrase = string(raw)
	}
	s, err := signer.FromMnemonic(phrase)
	if err != nil {
		return nil, failure.Wrap(err, failure.ErrSignerUnavailable, "cli: load account")
	}
	return s, nil
}

func (a *app) keystorePath() string {
	if a.keystore != "" {
		return a.keystore
	}
	if a.cfg != nil && a.cfg.Client.KeystorePath != "" {
		return a.cfg.Client.KeystorePath
	}
	path, err := keystore.DefaultPath()
	if err != nil {
		return ""
	}
	return path
}

// readSecret prompts on stderr and reads a line from the terminal without
// echo.
func readSecret(cmd *cobra.Command, prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.WithHint(
			failure.SignerUnavailable("cli: no account configured and stdin is not a terminal"),
			"Please connect wallet first")
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, failure.Wrap(err, failure.ErrSignerUnavailable, "cli: read secret")
	}
	return raw, nil
}

// report prints the outcome of an action, or the notice for its failure.
func (a *app) report(w io.Writer, action actions.Action, out actions.Outcome, err error) error {
	if err != nil {
		n := actions.Notify(action, err)
		if a.jsonOut {
			_ = writeJSON(w, map[string]any{"action": action, "notice": n, "error": err.Error()})
		} else {
			fmt.Fprintf(w, "[%s] %s\n", n.Level, n.String())
		}
		return err
	}
	if a.jsonOut {
		return writeJSON(w, out)
	}
	fmt.Fprintln(w, out.Notice.String())
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(bufio.NewReader(os.Stdin))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cli: read %s", path)
	}
	return b, nil
}

