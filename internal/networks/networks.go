// Package networks knows the public Algorand networks the quickstart can
// target and how to point a config at one of them.
package networks

import (
	"sort"
	"strings"

	"github.com/quantumauth-io/algo-quickstart/internal/config"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

type Network struct {
	Name        string `json:"name"`
	AlgodServer string `json:"algodServer"`
	AlgodPort   string `json:"algodPort,omitempty"`
	AlgodToken  string `json:"-"`
	// USDCAssetID is 0 where no canonical USDC exists.
	USDCAssetID uint64 `json:"usdcAssetId,omitempty"`
}

const (
	TestNet  = "testnet"
	MainNet  = "mainnet"
	LocalNet = "localnet"
)

var known = map[string]Network{
	TestNet: {
		Name:        TestNet,
		AlgodServer: "https://testnet-api.algonode.cloud",
		USDCAssetID: 10458941,
	},
	MainNet: {
		Name:        MainNet,
		AlgodServer: "https://mainnet-api.algonode.cloud",
		USDCAssetID: 31566704,
	},
	LocalNet: {
		Name:        LocalNet,
		AlgodServer: "http://localhost",
		AlgodPort:   "4001",
		AlgodToken:  strings.Repeat("a", 64),
	},
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the network called name, case-insensitively.
func Lookup(name string) (Network, bool) {
	n, ok := known[normalizeName(name)]
	return n, ok
}

// List returns every known network sorted by name.
func List() []Network {
	out := make([]Network, 0, len(known))
	for _, n := range known {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Apply points cfg at the named network: algod endpoint, network name used in
// explorer links and, where the network has one, the USDC asset id.
func Apply(cfg *config.Config, name string) error {
	n, ok := Lookup(name)
	if !ok {
		return failure.Validationf("networks: unknown network %q", name)
	}
	cfg.Algod.Server = n.AlgodServer
	cfg.Algod.Port = n.AlgodPort
	cfg.Algod.Token = n.AlgodToken
	cfg.Algod.Network = n.Name
	if n.USDCAssetID != 0 {
		cfg.Assets.USDCAssetID = n.USDCAssetID
	}
	return nil
}
