package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/cockroachdb/errors"
)

func testParams() types.SuggestedParams {
	return types.SuggestedParams{
		Fee:             0,
		GenesisID:       "testnet-v1.0",
		GenesisHash:     make([]byte, 32),
		FirstRoundValid: 1,
		LastRoundValid:  1001,
		MinFee:          1000,
	}
}

type fakeNode struct {
	mu sync.Mutex

	paramsErr error
	sendErr   error
	waitErr   error
	assetID   uint64
	appID     uint64
	logs      [][]byte
	round     uint64

	paramsCalls int
	sent        [][]byte
	waited      []string
}

func (n *fakeNode) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	n.mu.Lock()
	n.paramsCalls++
	n.mu.Unlock()
	if n.paramsErr != nil {
		return types.SuggestedParams{}, n.paramsErr
	}
	return testParams(), nil
}

func (n *fakeNode) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, raw)
	if n.sendErr != nil {
		return "", n.sendErr
	}
	return "first-id", nil
}

func (n *fakeNode) WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (Confirmation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.waited = append(n.waited, txID)
	if n.waitErr != nil {
		return Confirmation{}, n.waitErr
	}
	if err := ctx.Err(); err != nil {
		return Confirmation{}, err
	}
	round := n.round
	if round == 0 {
		round = 42
	}
	return Confirmation{ConfirmedRound: round, AssetIndex: n.assetID, ApplicationIndex: n.appID, Logs: n.logs}, nil
}

type fakeSigner struct {
	account crypto.Account
	err     error

	signed []types.Transaction
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{account: crypto.GenerateAccount()}
}

func (s *fakeSigner) Address() string { return s.account.Address.String() }

func (s *fakeSigner) SignTransactions(ctx context.Context, txns []types.Transaction) ([][]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]byte, 0, len(txns))
	for _, txn := range txns {
		_, blob, err := crypto.SignTransaction(s.account.PrivateKey, txn)
		if err != nil {
			return nil, errors.Wrap(err, "fake sign")
		}
		out = append(out, blob)
		s.signed = append(s.signed, txn)
	}
	return out, nil
}

func randomAddress(t *testing.T) string {
	t.Helper()
	return crypto.GenerateAccount().Address.String()
}
