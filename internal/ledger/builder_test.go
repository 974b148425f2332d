package ledger

import (
	"crypto/sha512"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

func TestAddressLengthRule(t *testing.T) {
	sender := randomAddress(t)

	for _, n := range []int{0, 1, 57, 59, 64} {
		receiver := strings.Repeat("A", n)

		_, err := BuildPayment(sender, receiver, 1_000_000)
		require.Error(t, err, "length %d", n)
		assert.Equal(t, failure.KindValidation, failure.KindOf(err))

		_, err = BuildAssetTransfer(sender, receiver, 10458941, 1_000_000)
		require.Error(t, err, "length %d", n)
		assert.Equal(t, failure.KindValidation, failure.KindOf(err))
	}

	// 29 two-byte characters are 58 bytes but only 29 characters
	_, err := BuildPayment(sender, strings.Repeat("é", 29), 1)
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))
	_, err = BuildAssetTransfer(sender, strings.Repeat("é", 29), 10458941, 1)
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))

	// length is the only builder check; checksum is verified on submit
	in, err := BuildPayment(sender, strings.Repeat("A", 58), 1)
	require.NoError(t, err)
	assert.Equal(t, KindPayment, in.Kind())

	in, err = BuildPayment(sender, strings.Repeat("é", 58), 1)
	require.NoError(t, err, "58 characters pass the length rule")
	assert.Equal(t, KindPayment, in.Kind())
}

func TestBuildPayment(t *testing.T) {
	sender, receiver := randomAddress(t), randomAddress(t)

	in, err := BuildPayment(sender, receiver, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, sender, in.Sender())
	assert.Equal(t, receiver, in.Receiver())
	assert.Equal(t, uint64(1_000_000), in.Amount())
	assert.Nil(t, in.Asset())
	assert.False(t, in.Consumed())
}

func TestBuildAssetTransferRejectsZeroAsset(t *testing.T) {
	_, err := BuildAssetTransfer(randomAddress(t), randomAddress(t), 0, 1)
	assert.True(t, failure.Is(err, failure.KindValidation))
}

func TestBuildAssetOptIn(t *testing.T) {
	sender := randomAddress(t)

	in, err := BuildAssetOptIn(sender, 10458941)
	require.NoError(t, err)
	assert.Equal(t, KindAssetOptIn, in.Kind())
	assert.Equal(t, sender, in.Receiver())
	assert.Zero(t, in.Amount())

	_, err = BuildAssetOptIn(sender[:57], 10458941)
	assert.True(t, failure.Is(err, failure.KindValidation))
}

func TestBuildAssetCreateValidation(t *testing.T) {
	sender := randomAddress(t)
	valid := func() AssetCreateParams {
		return AssetCreateParams{
			Sender:    sender,
			AssetName: "MasterPass Token",
			UnitName:  "MPT",
			Total:     big.NewInt(1000),
			Decimals:  0,
		}
	}

	tests := []struct {
		name   string
		mutate func(p *AssetCreateParams)
	}{
		{"nil total", func(p *AssetCreateParams) { p.Total = nil }},
		{"negative total", func(p *AssetCreateParams) { p.Total = big.NewInt(-1) }},
		{"total above uint64", func(p *AssetCreateParams) {
			p.Total = new(big.Int).Add(new(big.Int).SetUint64(^uint64(0)), big.NewInt(1))
		}},
		{"decimals 20", func(p *AssetCreateParams) { p.Decimals = 20 }},
		{"empty name", func(p *AssetCreateParams) { p.AssetName = "  " }},
		{"empty unit", func(p *AssetCreateParams) { p.UnitName = "" }},
		{"long unit", func(p *AssetCreateParams) { p.UnitName = "ABCDEFGHI" }},
		{"long name", func(p *AssetCreateParams) { p.AssetName = strings.Repeat("n", 33) }},
		{"long url", func(p *AssetCreateParams) { p.URL = "ipfs://" + strings.Repeat("x", 90) }},
		{"short hash", func(p *AssetCreateParams) { p.MetadataHash = []byte{1, 2, 3} }},
		{"bad manager", func(p *AssetCreateParams) { p.Manager = "SHORT" }},
		{"bad sender", func(p *AssetCreateParams) { p.Sender = sender + "A" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			_, err := BuildAssetCreate(p)
			require.Error(t, err)
			assert.Equal(t, failure.KindValidation, failure.KindOf(err))
		})
	}

	in, err := BuildAssetCreate(valid())
	require.NoError(t, err)
	a := in.Asset()
	require.NotNil(t, a)
	assert.Equal(t, uint64(1000), a.Total)
	assert.False(t, a.IsUnique())
}

func TestBuildAssetCreateAcceptsMaxDecimals(t *testing.T) {
	total, err := OnChainTotal(big.NewInt(1), 19)
	require.NoError(t, err)

	in, err := BuildAssetCreate(AssetCreateParams{
		Sender:    randomAddress(t),
		AssetName: "Fine",
		UnitName:  "FINE",
		Total:     total,
		Decimals:  19,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), in.Asset().Total)
}

func TestBuildUniqueAsset(t *testing.T) {
	locator := "ipfs://bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy"

	in, err := BuildUniqueAsset(randomAddress(t), "MasterPass Ticket", "MTK", locator)
	require.NoError(t, err)

	a := in.Asset()
	require.NotNil(t, a)
	assert.True(t, a.IsUnique())
	assert.Equal(t, locator, a.URL)

	want := sha512.Sum512_256([]byte(locator))
	assert.Equal(t, want[:], a.MetadataHash)

	_, err = BuildUniqueAsset(randomAddress(t), "MasterPass Ticket", "MTK", " ")
	assert.True(t, failure.Is(err, failure.KindValidation))
}

func TestContentHashIsOverLocator(t *testing.T) {
	a := ContentHash("ipfs://a")
	b := ContentHash("ipfs://b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ContentHash("ipfs://a"))
	assert.Len(t, a, 32)
}

func TestOnChainTotal(t *testing.T) {
	tests := []struct {
		total    int64
		decimals uint32
		want     string
	}{
		{1000, 2, "100000"},
		{1000, 0, "1000"},
		{0, 19, "0"},
		{1, 19, "10000000000000000000"},
		{9223372036854775807, 19, "92233720368547758070000000000000000000"},
	}

	for _, tt := range tests {
		got, err := OnChainTotal(big.NewInt(tt.total), tt.decimals)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.String())
	}

	_, err := OnChainTotal(big.NewInt(1), 20)
	assert.True(t, failure.Is(err, failure.KindValidation))
	_, err = OnChainTotal(big.NewInt(-5), 2)
	assert.True(t, failure.Is(err, failure.KindValidation))
}
