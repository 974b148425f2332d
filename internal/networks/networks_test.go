package networks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/config"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

func testConfig() *config.Config {
	return &config.Config{
		Algod:  &config.AlgodSettings{Server: "https://testnet-api.algonode.cloud", Network: "testnet"},
		Assets: &config.AssetSettings{USDCAssetID: 10458941, USDCDecimals: 6},
	}
}

func TestLookup(t *testing.T) {
	n, ok := Lookup(" MainNet ")
	require.True(t, ok)
	assert.Equal(t, uint64(31566704), n.USDCAssetID)

	_, ok = Lookup("betanet")
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	names := []string{}
	for _, n := range List() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"localnet", "mainnet", "testnet"}, names)
}

func TestApply(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, Apply(cfg, "mainnet"))
	assert.Equal(t, "https://mainnet-api.algonode.cloud", cfg.Algod.Server)
	assert.Equal(t, "mainnet", cfg.Algod.Network)
	assert.Equal(t, uint64(31566704), cfg.Assets.USDCAssetID)
	assert.Equal(t, "https://mainnet-api.algonode.cloud", cfg.Algod.AlgodAddress())
}

func TestApplyLocalNetKeepsUSDC(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, Apply(cfg, "localnet"))
	assert.Equal(t, "http://localhost:4001", cfg.Algod.AlgodAddress())
	assert.Len(t, cfg.Algod.Token, 64)
	assert.Equal(t, uint64(10458941), cfg.Assets.USDCAssetID)
}

func TestApplyUnknown(t *testing.T) {
	err := Apply(testConfig(), "devnet")
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))
}
