package node

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/assets"
	"github.com/quantumauth-io/algo-quickstart/internal/config"
)

func newTestNode(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewFromConfig(&config.AlgodSettings{Server: srv.URL, Token: "secret", Network: "localnet"})
	require.NoError(t, err)
	return c
}

func TestSuggestedParams(t *testing.T) {
	gh := base64.StdEncoding.EncodeToString(make([]byte, 32))
	c := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/transactions/params", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Algo-API-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"consensus-version":"future","fee":0,"genesis-hash":"`+gh+`","genesis-id":"localnet-v1","last-round":100,"min-fee":1000}`)
	})

	sp, err := c.SuggestedParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "localnet-v1", sp.GenesisID)
	assert.Len(t, sp.GenesisHash, 32)
	assert.Equal(t, uint64(1000), sp.MinFee)
	assert.Equal(t, "localnet", c.Network())
}

func TestSendRawTransaction(t *testing.T) {
	c := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/transactions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte{1, 2, 3}, body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"txId":"TXID123"}`)
	})

	id, err := c.SendRawTransaction(context.Background(), []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "TXID123", id)
}

func TestSendRawTransactionRejected(t *testing.T) {
	c := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"TransactionPool.Remember: overspend"}`)
	})

	_, err := c.SendRawTransaction(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overspend")
}

func TestAccountDocumentFeedsChecker(t *testing.T) {
	addr := strings.Repeat("C", 58)
	c := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/"+addr, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"address":                        addr,
			"amount":                         5_000_000,
			"amount-without-pending-rewards": 5_000_000,
			"min-balance":                    200_000,
			"pending-rewards":                0,
			"rewards":                        0,
			"round":                          100,
			"status":                         "Offline",
			"total-apps-opted-in":            0,
			"total-assets-opted-in":          1,
			"total-created-apps":             0,
			"total-created-assets":           0,
			"assets": []map[string]any{
				{"amount": 1_000_000, "asset-id": 10458941, "is-frozen": false},
			},
		})
	})

	doc, err := c.AccountDocument(context.Background(), addr)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"asset-id":10458941`)

	ok, err := assets.NewChecker(c, time.Second).IsOptedIn(context.Background(), addr, 10458941)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewFromConfigRejectsEmpty(t *testing.T) {
	_, err := NewFromConfig(nil)
	require.Error(t, err)
	_, err = NewFromConfig(&config.AlgodSettings{})
	require.Error(t, err)
}

func TestCompile(t *testing.T) {
	program := []byte{0x0a, 0x81, 0x01, 0x43}
	c := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/teal/compile", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "#pragma version 10\nint 1\nreturn\n", string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"hash":"HASH","result":"`+base64.StdEncoding.EncodeToString(program)+`"}`)
	})

	got, err := c.Compile(context.Background(), []byte("#pragma version 10\nint 1\nreturn\n"))
	require.NoError(t, err)
	assert.Equal(t, program, got)
}

func TestCompileDisabled(t *testing.T) {
	c := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"/teal/compile was not enabled in the configuration file by setting the EnableDeveloperAPI to true"}`)
	})

	_, err := c.Compile(context.Background(), []byte("int 1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EnableDeveloperAPI")
}
