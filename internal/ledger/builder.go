package ledger

import (
	"crypto/sha512"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

// AssetCreateParams is the caller side of an asset creation. Total is already
// in base units; see OnChainTotal.
type AssetCreateParams struct {
	Sender        string
	AssetName     string
	UnitName      string
	Total         *big.Int
	Decimals      uint32
	URL           string
	MetadataHash  []byte
	DefaultFrozen bool
	Manager       string
	Reserve       string
	Freeze        string
	Clawback      string
}

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// ValidateAddress only checks the length in characters. Checksum errors
// surface when the intent is submitted, before the node is contacted.
func ValidateAddress(field, addr string) error {
	if n := utf8.RuneCountInString(addr); n != constants.AddressLength {
		return failure.Validationf("ledger: %s must be a %d character address, got %d characters",
			field, constants.AddressLength, n)
	}
	return nil
}

func BuildPayment(sender, receiver string, amountMicroUnits uint64) (*Intent, error) {
	if err := ValidateAddress("sender", sender); err != nil {
		return nil, err
	}
	if err := ValidateAddress("receiver", receiver); err != nil {
		return nil, err
	}
	return &Intent{
		kind:     KindPayment,
		sender:   sender,
		receiver: receiver,
		amount:   amountMicroUnits,
	}, nil
}

func BuildAssetTransfer(sender, receiver string, assetID, amountBaseUnits uint64) (*Intent, error) {
	if err := ValidateAddress("sender", sender); err != nil {
		return nil, err
	}
	if err := ValidateAddress("receiver", receiver); err != nil {
		return nil, err
	}
	if assetID == 0 {
		return nil, failure.Validationf("ledger: asset id must be positive")
	}
	return &Intent{
		kind:     KindAssetTransfer,
		sender:   sender,
		receiver: receiver,
		assetID:  assetID,
		amount:   amountBaseUnits,
	}, nil
}

// BuildAssetOptIn is a zero-amount self transfer of assetID.
func BuildAssetOptIn(sender string, assetID uint64) (*Intent, error) {
	if err := ValidateAddress("sender", sender); err != nil {
		return nil, err
	}
	if assetID == 0 {
		return nil, failure.Validationf("ledger: asset id must be positive")
	}
	return &Intent{
		kind:     KindAssetOptIn,
		sender:   sender,
		receiver: sender,
		assetID:  assetID,
	}, nil
}

func BuildAssetCreate(p AssetCreateParams) (*Intent, error) {
	if err := ValidateAddress("sender", p.Sender); err != nil {
		return nil, err
	}
	for _, role := range []struct{ field, addr string }{
		{"manager", p.Manager},
		{"reserve", p.Reserve},
		{"freeze", p.Freeze},
		{"clawback", p.Clawback},
	} {
		if role.addr == "" {
			continue
		}
		if err := ValidateAddress(role.field, role.addr); err != nil {
			return nil, err
		}
	}

	if p.Total == nil || p.Total.Sign() < 0 {
		return nil, failure.Validationf("ledger: total must be a non-negative integer")
	}
	if p.Total.Cmp(maxUint64) > 0 {
		return nil, failure.Validationf("ledger: total %s exceeds the 64-bit ledger limit", p.Total)
	}
	if p.Decimals > constants.MaxDecimals {
		return nil, failure.Validationf("ledger: decimals %d above maximum %d", p.Decimals, constants.MaxDecimals)
	}

	name := strings.TrimSpace(p.AssetName)
	unit := strings.TrimSpace(p.UnitName)
	if name == "" || unit == "" {
		return nil, failure.Validationf("ledger: asset name and unit name are required")
	}
	if len(name) > constants.MaxAssetNameBytes {
		return nil, failure.Validationf("ledger: asset name longer than %d bytes", constants.MaxAssetNameBytes)
	}
	if len(unit) > constants.MaxUnitNameBytes {
		return nil, failure.Validationf("ledger: unit name longer than %d bytes", constants.MaxUnitNameBytes)
	}
	if len(p.URL) > constants.MaxURLBytes {
		return nil, failure.Validationf("ledger: url longer than %d bytes", constants.MaxURLBytes)
	}
	if len(p.MetadataHash) != 0 && len(p.MetadataHash) != constants.MetadataHashBytes {
		return nil, failure.Validationf("ledger: metadata hash must be %d bytes, got %d",
			constants.MetadataHashBytes, len(p.MetadataHash))
	}

	return &Intent{
		kind:   KindAssetCreate,
		sender: p.Sender,
		asset: &AssetParams{
			Total:         p.Total.Uint64(),
			Decimals:      p.Decimals,
			AssetName:     name,
			UnitName:      unit,
			URL:           p.URL,
			MetadataHash:  append([]byte(nil), p.MetadataHash...),
			DefaultFrozen: p.DefaultFrozen,
			Manager:       p.Manager,
			Reserve:       p.Reserve,
			Freeze:        p.Freeze,
			Clawback:      p.Clawback,
		},
	}, nil
}

// BuildUniqueAsset creates a total=1, decimals=0 asset whose URL is the
// metadata locator and whose metadata hash is ContentHash(locator).
func BuildUniqueAsset(sender, assetName, unitName, metadataLocator string) (*Intent, error) {
	if strings.TrimSpace(metadataLocator) == "" {
		return nil, failure.Validationf("ledger: metadata locator is empty")
	}
	hash := ContentHash(metadataLocator)
	return BuildAssetCreate(AssetCreateParams{
		Sender:       sender,
		AssetName:    assetName,
		UnitName:     unitName,
		Total:        big.NewInt(1),
		Decimals:     0,
		URL:          metadataLocator,
		MetadataHash: hash[:],
	})
}

// ContentHash is SHA-512/256 over the locator string itself, not over the
// metadata document it points to.
func ContentHash(locator string) [32]byte {
	return sha512.Sum512_256([]byte(locator))
}

// OnChainTotal returns total × 10^decimals using exact integer arithmetic.
func OnChainTotal(total *big.Int, decimals uint32) (*big.Int, error) {
	if total == nil || total.Sign() < 0 {
		return nil, failure.Validationf("ledger: total must be a non-negative integer")
	}
	if decimals > constants.MaxDecimals {
		return nil, failure.Validationf("ledger: decimals %d above maximum %d", decimals, constants.MaxDecimals)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(total, scale), nil
}
