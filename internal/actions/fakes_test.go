package actions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/assets"
	"github.com/quantumauth-io/algo-quickstart/internal/ledger"
	"github.com/quantumauth-io/algo-quickstart/internal/signer"
)

type fakeNode struct {
	mu      sync.Mutex
	sendErr error
	assetID uint64
	appID   uint64
	logs    [][]byte
	sent    [][]byte
}

func (n *fakeNode) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	return types.SuggestedParams{
		GenesisID:       "testnet-v1.0",
		GenesisHash:     make([]byte, 32),
		FirstRoundValid: 1,
		LastRoundValid:  1001,
		MinFee:          1000,
	}, nil
}

func (n *fakeNode) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return "", n.sendErr
	}
	n.sent = append(n.sent, raw)
	return "ok", nil
}

func (n *fakeNode) WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (ledger.Confirmation, error) {
	return ledger.Confirmation{
		ConfirmedRound:   12,
		AssetIndex:       n.assetID,
		ApplicationIndex: n.appID,
		Logs:             n.logs,
	}, nil
}

func (n *fakeNode) sends() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// accounts maps an address to its account document.
type accounts map[string]string

func (a accounts) AccountDocument(ctx context.Context, address string) ([]byte, error) {
	if doc, ok := a[address]; ok {
		return []byte(doc), nil
	}
	return []byte(`{"address":"` + address + `","assets":[]}`), nil
}

type stubPins struct {
	url   string
	err   error
	calls int
}

func (p *stubPins) PinImage(ctx context.Context, filename string, content []byte) (string, error) {
	p.calls++
	return p.url, p.err
}

type stubCompiler struct {
	err     error
	sources []string
}

func (c *stubCompiler) Compile(ctx context.Context, source []byte) ([]byte, error) {
	c.sources = append(c.sources, string(source))
	if c.err != nil {
		return nil, c.err
	}
	return []byte{0x0a, 0x81, 0x01, 0x43}, nil
}

type harness struct {
	runner *Runner
	node   *fakeNode
	signer *signer.Local
	docs   accounts
	pins   *stubPins
	teal   *stubCompiler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	s, _, err := signer.Generate()
	require.NoError(t, err)

	h := &harness{
		node:   &fakeNode{},
		signer: s,
		docs:   accounts{},
		pins:   &stubPins{url: "ipfs://bafkmeta"},
		teal:   &stubCompiler{},
	}
	h.runner = NewRunner(
		assets.NewChecker(h.docs, time.Second),
		ledger.NewSubmitter(h.node, 4, time.Second),
		Options{Signer: s, Pins: h.pins, Compiler: h.teal},
	)
	return h
}

func randomAddress() string {
	return crypto.GenerateAccount().Address.String()
}
