package assets

import "github.com/quantumauth-io/algo-quickstart/internal/constants"

// Asset describes something an account can hold. ID 0 is the native coin.
type Asset struct {
	ID       uint64 `json:"id"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
	Name     string `json:"name,omitempty"`
}

func (a Asset) IsNative() bool { return a.ID == 0 }

func Algo() Asset {
	return Asset{
		ID:       0,
		Symbol:   "ALGO",
		Decimals: constants.AlgoDecimals,
		Name:     "Algo",
	}
}

func USDC(id uint64, decimals uint32) Asset {
	return Asset{
		ID:       id,
		Symbol:   "USDC",
		Decimals: decimals,
		Name:     "USD Coin",
	}
}
