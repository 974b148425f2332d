// Package ledger builds, groups and submits Algorand transactions.
//
// An Intent is a validated description of one transaction. It carries no
// network parameters; those are fetched when the intent is submitted. Every
// intent is consumed exactly once, either by Submit or by Compose.
package ledger

import (
	"sync/atomic"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

type Kind int

const (
	KindPayment Kind = iota + 1
	KindAssetTransfer
	KindAssetCreate
	KindAssetOptIn
	KindAppCreate
	KindAppCall
)

func (k Kind) String() string {
	switch k {
	case KindPayment:
		return "payment"
	case KindAssetTransfer:
		return "asset-transfer"
	case KindAssetCreate:
		return "asset-create"
	case KindAssetOptIn:
		return "asset-opt-in"
	case KindAppCreate:
		return "app-create"
	case KindAppCall:
		return "app-call"
	default:
		return "unknown"
	}
}

// AssetParams are the validated parameters of an asset creation. Total is
// in base units.
type AssetParams struct {
	Total         uint64
	Decimals      uint32
	AssetName     string
	UnitName      string
	URL           string
	MetadataHash  []byte
	DefaultFrozen bool
	Manager       string
	Reserve       string
	Freeze        string
	Clawback      string
}

// IsUnique reports the total=1, decimals=0 convention used for NFTs.
func (p *AssetParams) IsUnique() bool {
	return p.Total == 1 && p.Decimals == 0
}

type Intent struct {
	kind     Kind
	sender   string
	receiver string
	amount   uint64
	assetID  uint64
	asset    *AssetParams
	appID    uint64
	app      *AppParams

	consumed atomic.Bool
}

func (i *Intent) Kind() Kind { return i.kind }
func (i *Intent) Sender() string { return i.sender }
func (i *Intent) Receiver() string { return i.receiver }
func (i *Intent) Amount() uint64 { return i.amount }
func (i *Intent) AssetID() uint64 { return i.assetID }
func (i *Intent) AppID() uint64 { return i.appID }
func (i *Intent) Consumed() bool { return i.consumed.Load() }

// Asset returns a copy of the creation parameters, or nil for other kinds.
func (i *Intent) Asset() *AssetParams {
	if i.asset == nil {
		return nil
	}
	cp := *i.asset
	cp.MetadataHash = append([]byte(nil), i.asset.MetadataHash...)
	return &cp
}

// App returns a copy of the application call parameters, or nil for other
// kinds.
func (i *Intent) App() *AppParams {
	if i.app == nil {
		return nil
	}
	cp := AppParams{
		ApprovalProgram: append([]byte(nil), i.app.ApprovalProgram...),
		ClearProgram:    append([]byte(nil), i.app.ClearProgram...),
	}
	for _, a := range i.app.Args {
		cp.Args = append(cp.Args, append([]byte(nil), a...))
	}
	return &cp
}

func (i *Intent) consume() error {
	if !i.consumed.CompareAndSwap(false, true) {
		return failure.Validationf("ledger: %s intent already consumed", i.kind)
	}
	return nil
}

func (i *Intent) release() {
	i.consumed.Store(false)
}
