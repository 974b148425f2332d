package assets

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

var wholeNumber = regexp.MustCompile(`^\d+$`)

// ParseWholeNumber accepts only ASCII digits; no sign, no exponent.
func ParseWholeNumber(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if !wholeNumber.MatchString(s) {
		return nil, failure.Validationf("assets: %s must be a whole number", field)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, failure.Validationf("assets: %s must be a whole number", field)
	}
	return n, nil
}

// ParseDecimals parses a decimals field and bounds it to the ledger maximum.
func ParseDecimals(s string) (uint32, error) {
	n, err := ParseWholeNumber("decimals", s)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() || n.Uint64() > constants.MaxDecimals {
		return 0, failure.Validationf("assets: decimals must be at most %d", constants.MaxDecimals)
	}
	return uint32(n.Uint64()), nil
}

// ToBaseUnits converts a human amount such as "1.5" into base units of an
// asset with the given decimals. Amounts with more fractional digits than
// the asset supports are rejected rather than rounded.
func ToBaseUnits(amount string, decimals uint32) (uint64, error) {
	if decimals > constants.MaxDecimals {
		return 0, failure.Validationf("assets: decimals must be at most %d", constants.MaxDecimals)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, failure.Validationf("assets: invalid amount %q", amount)
	}
	if d.IsNegative() {
		return 0, failure.Validationf("assets: amount must not be negative")
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, failure.Validationf("assets: amount %s has more than %d decimal places", amount, decimals)
	}
	n := scaled.BigInt()
	if !n.IsUint64() {
		return 0, failure.Validationf("assets: amount %s is too large", amount)
	}
	return n.Uint64(), nil
}

// FormatBaseUnits renders base units as a human amount.
func FormatBaseUnits(units uint64, decimals uint32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -int32(decimals)).String()
}
