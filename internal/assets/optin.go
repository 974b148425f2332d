package assets

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
	"github.com/quantumauth-io/algo-quickstart/internal/ledger"
)

// AccountReader returns the raw JSON account document for address, as
// served by an algod or indexer account endpoint.
type AccountReader interface {
	AccountDocument(ctx context.Context, address string) ([]byte, error)
}

type Holding struct {
	AssetID uint64
	Amount  uint64
}

// Spellings of the asset id seen across node, indexer and SDK payloads.
// The first one present on a holding wins.
var assetIDKeys = []string{"asset-id", "assetId", "asset.id"}

var errMalformedAccount = errors.New("malformed account document")

// Checker answers opt-in questions by querying current holdings every time.
// Nothing is cached.
type Checker struct {
	reader  AccountReader
	timeout time.Duration
}

func NewChecker(reader AccountReader, timeout time.Duration) *Checker {
	return &Checker{reader: reader, timeout: timeout}
}

// IsOptedIn reports whether account holds an association with assetID.
func (c *Checker) IsOptedIn(ctx context.Context, account string, assetID uint64) (bool, error) {
	holdings, err := c.Holdings(ctx, account)
	if err != nil {
		return false, err
	}
	for _, h := range holdings {
		if h.AssetID == assetID {
			return true, nil
		}
	}
	return false, nil
}

// Holdings lists the asset holdings of account. Entries whose id cannot be
// read as an unsigned integer are skipped.
func (c *Checker) Holdings(ctx context.Context, account string) ([]Holding, error) {
	if err := ledger.ValidateAddress("account", account); err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	doc, err := c.reader.AccountDocument(ctx, account)
	if err != nil {
		return nil, failure.WithContext(ctx, failure.Wrapf(err, failure.ErrLedgerQuery, "assets: account %s", account))
	}
	if !gjson.ValidBytes(doc) {
		return nil, failure.Wrapf(errMalformedAccount, failure.ErrLedgerQuery, "assets: account %s", account)
	}

	list := gjson.GetBytes(doc, "assets")
	if !list.IsArray() {
		return nil, nil
	}

	var out []Holding
	list.ForEach(func(_, h gjson.Result) bool {
		id, ok := holdingAssetID(h)
		if !ok {
			return true
		}
		amount, _ := parseUint(h.Get("amount"))
		out = append(out, Holding{AssetID: id, Amount: amount})
		return true
	})
	return out, nil
}

func holdingAssetID(h gjson.Result) (uint64, bool) {
	for _, key := range assetIDKeys {
		v := h.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		return parseUint(v)
	}
	return 0, false
}

// parseUint reads numbers from their raw text so ids above 2^53 stay exact.
func parseUint(v gjson.Result) (uint64, bool) {
	var raw string
	switch v.Type {
	case gjson.Number:
		raw = v.Raw
	case gjson.String:
		raw = strings.TrimSpace(v.Str)
	default:
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
