package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

func TestParseWholeNumber(t *testing.T) {
	n, err := ParseWholeNumber("total", "1000")
	require.NoError(t, err)
	assert.Equal(t, "1000", n.String())

	n, err = ParseWholeNumber("total", " 0 ")
	require.NoError(t, err)
	assert.Equal(t, "0", n.String())

	for _, bad := range []string{"", "-1", "1.0", "1e3", "+5", "ten", "0x10"} {
		_, err := ParseWholeNumber("total", bad)
		assert.True(t, failure.Is(err, failure.KindValidation), "input %q", bad)
	}
}

func TestParseDecimals(t *testing.T) {
	d, err := ParseDecimals("19")
	require.NoError(t, err)
	assert.Equal(t, uint32(19), d)

	_, err = ParseDecimals("20")
	assert.True(t, failure.Is(err, failure.KindValidation))
	_, err = ParseDecimals("99999999999999999999999")
	assert.True(t, failure.Is(err, failure.KindValidation))
}

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint32
		want     uint64
	}{
		{"1", 6, 1_000_000},
		{"1.5", 6, 1_500_000},
		{"0.000001", 6, 1},
		{"42", 0, 42},
		{"1000", 2, 100_000},
		{"18446744073709551615", 0, 18446744073709551615},
	}
	for _, tt := range tests {
		got, err := ToBaseUnits(tt.amount, tt.decimals)
		require.NoError(t, err, tt.amount)
		assert.Equal(t, tt.want, got, tt.amount)
	}

	for _, bad := range []struct {
		amount   string
		decimals uint32
	}{
		{"0.0000001", 6},
		{"1.5", 0},
		{"-1", 6},
		{"abc", 6},
		{"18446744073709551616", 0},
		{"1", 20},
	} {
		_, err := ToBaseUnits(bad.amount, bad.decimals)
		assert.True(t, failure.Is(err, failure.KindValidation), "input %q", bad.amount)
	}
}

func TestFormatBaseUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatBaseUnits(1_500_000, 6))
	assert.Equal(t, "42", FormatBaseUnits(42, 0))
	assert.Equal(t, "0.000001", FormatBaseUnits(1, 6))
}

func TestKnownAssets(t *testing.T) {
	assert.True(t, Algo().IsNative())
	u := USDC(10458941, 6)
	assert.False(t, u.IsNative())
	assert.Equal(t, "USDC", u.Symbol)
}
