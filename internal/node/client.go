// Package node adapts the algod REST client to the interfaces used by the
// ledger and assets packages.
package node

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/algo-quickstart/internal/assets"
	"github.com/quantumauth-io/algo-quickstart/internal/config"
	"github.com/quantumauth-io/algo-quickstart/internal/ledger"
)

var (
	_ ledger.Node          = (*Client)(nil)
	_ assets.AccountReader = (*Client)(nil)
)

type Client struct {
	api     *algod.Client
	network string
}

func NewFromConfig(cfg *config.AlgodSettings) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("node: nil config")
	}
	if cfg.Server == "" {
		return nil, errors.New("node: algod server is empty")
	}
	api, err := algod.MakeClient(cfg.AlgodAddress(), cfg.Token)
	if err != nil {
		return nil, errors.Wrapf(err, "node: make algod client for %s", cfg.AlgodAddress())
	}
	return &Client{api: api, network: cfg.Network}, nil
}

func (c *Client) Network() string { return c.network }

func (c *Client) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	sp, err := c.api.SuggestedParams().Do(ctx)
	if err != nil {
		return types.SuggestedParams{}, errors.Wrap(err, "node: suggested params")
	}
	return sp, nil
}

func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	txID, err := c.api.SendRawTransaction(raw).Do(ctx)
	if err != nil {
		return "", errors.Wrap(err, "node: send raw transaction")
	}
	return txID, nil
}

func (c *Client) WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (ledger.Confirmation, error) {
	info, err := transaction.WaitForConfirmation(c.api, txID, waitRounds, ctx)
	if err != nil {
		return ledger.Confirmation{}, errors.Wrapf(err, "node: confirm %s", txID)
	}
	return ledger.Confirmation{
		ConfirmedRound:   info.ConfirmedRound,
		AssetIndex:       info.AssetIndex,
		ApplicationIndex: info.ApplicationIndex,
		Logs:             info.Logs,
	}, nil
}

// Compile assembles TEAL source on the node. The node must expose the
// developer API.
func (c *Client) Compile(ctx context.Context, source []byte) ([]byte, error) {
	resp, err := c.api.TealCompile(source).Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "node: compile program")
	}
	program, err := base64.StdEncoding.DecodeString(resp.Result)
	if err != nil {
		return nil, errors.Wrapf(err, "node: decode compiled program %s", resp.Hash)
	}
	return program, nil
}

// AccountDocument returns the account as JSON, using the node's own field
// names (asset-id, amount, ...).
func (c *Client) AccountDocument(ctx context.Context, address string) ([]byte, error) {
	acct, err := c.api.AccountInformation(address).Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "node: account %s", address)
	}
	doc, err := json.Marshal(acct)
	if err != nil {
		return nil, errors.Wrapf(err, "node: encode account %s", address)
	}
	return doc, nil
}

func (c *Client) LastRound(ctx context.Context) (uint64, error) {
	st, err := c.api.Status().Do(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "node: status")
	}
	return st.LastRound, nil
}
