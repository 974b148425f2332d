package ledger

import (
	"bytes"
	"context"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

// Node is the slice of an algod client the submitter needs.
type Node interface {
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
	SendRawTransaction(ctx context.Context, raw []byte) (string, error)
	WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (Confirmation, error)
}

type Confirmation struct {
	ConfirmedRound   uint64
	AssetIndex       uint64
	ApplicationIndex uint64
	Logs             [][]byte
}

// Signer returns one signed, msgpack encoded transaction per input, in the
// same order. Key material never crosses this boundary.
type Signer interface {
	Address() string
	SignTransactions(ctx context.Context, txns []types.Transaction) ([][]byte, error)
}

type Result struct {
	TxIDs          []string
	CreatedAssetID *uint64
	CreatedAppID   *uint64
	ConfirmedRound uint64
	// Logs emitted by the last transaction of the submission.
	Logs [][]byte
}

type Submitter struct {
	node       Node
	waitRounds uint64
	timeout    time.Duration
}

func NewSubmitter(node Node, waitRounds uint64, timeout time.Duration) *Submitter {
	return &Submitter{
		node:       node,
		waitRounds: waitRounds,
		timeout:    timeout,
	}
}

// Submit signs, sends and waits for a single intent. The intent is consumed
// even when submission fails; build a new one to retry.
func (s *Submitter) Submit(ctx context.Context, intent *Intent, signer Signer) (Result, error) {
	if intent == nil {
		return Result{}, failure.Validationf("ledger: nil intent")
	}
	if err := checkSigner(signer); err != nil {
		return Result{}, err
	}
	if err := intent.consume(); err != nil {
		return Result{}, err
	}
	return s.submit(ctx, []*Intent{intent}, signer)
}

// SubmitGroup submits every member of g as one atomic unit. On rejection no
// transaction ids are returned since none of them exist on the ledger.
func (s *Submitter) SubmitGroup(ctx context.Context, g *Group, signer Signer) (Result, error) {
	if g == nil {
		return Result{}, failure.Validationf("ledger: nil group")
	}
	if err := checkSigner(signer); err != nil {
		return Result{}, err
	}
	if err := g.claim(); err != nil {
		return Result{}, err
	}
	return s.submit(ctx, g.intents, signer)
}

func checkSigner(signer Signer) error {
	if signer == nil || signer.Address() == "" {
		return failure.SignerUnavailable("ledger: no signer connected")
	}
	return nil
}

func (s *Submitter) submit(ctx context.Context, intents []*Intent, signer Signer) (Result, error) {
	account := signer.Address()
	for _, in := range intents {
		if in.sender != account {
			return Result{}, failure.Validationf("ledger: %s sender %s is not the signer account %s",
				in.kind, in.sender, account)
		}
		if in.kind == KindAssetCreate && in.asset == nil {
			return Result{}, failure.Validationf("ledger: asset create intent without parameters")
		}
		if (in.kind == KindAppCreate || in.kind == KindAppCall) && in.app == nil {
			return Result{}, failure.Validationf("ledger: %s intent without parameters", in.kind)
		}
		if err := in.decodeAddresses(); err != nil {
			return Result{}, err
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sp, err := s.node.SuggestedParams(ctx)
	if err != nil {
		return Result{}, classify(ctx, err, "ledger: suggested params")
	}

	txns := make([]types.Transaction, 0, len(intents))
	for _, in := range intents {
		txn, err := in.toTransaction(sp)
		if err != nil {
			return Result{}, err
		}
		txns = append(txns, txn)
	}

	if len(txns) > 1 {
		gid, err := crypto.ComputeGroupID(txns)
		if err != nil {
			return Result{}, failure.Wrap(err, failure.ErrValidation, "ledger: compute group id")
		}
		for i := range txns {
			txns[i].Group = gid
		}
	}

	signed, err := signer.SignTransactions(ctx, txns)
	if err != nil {
		return Result{}, classify(ctx, err, "ledger: sign")
	}
	if len(signed) != len(txns) {
		return Result{}, failure.Wrapf(errSignerCount, failure.ErrSubmission,
			"ledger: signer returned %d of %d transactions", len(signed), len(txns))
	}

	txIDs := make([]string, len(txns))
	for i, txn := range txns {
		txIDs[i] = crypto.GetTxID(txn)
	}

	if _, err = s.node.SendRawTransaction(ctx, bytes.Join(signed, nil)); err != nil {
		log.Warn("transaction rejected", "kinds", kindsOf(intents), "error", err)
		return Result{}, classify(ctx, err, "ledger: send")
	}

	res := Result{TxIDs: txIDs}
	for i, id := range txIDs {
		conf, err := s.node.WaitForConfirmation(ctx, id, s.waitRounds)
		if err != nil {
			return Result{}, classify(ctx, err, "ledger: wait for "+id)
		}
		if conf.ConfirmedRound > res.ConfirmedRound {
			res.ConfirmedRound = conf.ConfirmedRound
		}
		if intents[i].kind == KindAssetCreate && res.CreatedAssetID == nil && conf.AssetIndex != 0 {
			assetID := conf.AssetIndex
			res.CreatedAssetID = &assetID
		}
		if intents[i].kind == KindAppCreate && res.CreatedAppID == nil && conf.ApplicationIndex != 0 {
			appID := conf.ApplicationIndex
			res.CreatedAppID = &appID
		}
		res.Logs = conf.Logs
	}

	log.Info("transaction confirmed",
		"kinds", kindsOf(intents),
		"tx_ids", txIDs,
		"round", res.ConfirmedRound,
	)
	return res, nil
}

var errSignerCount = errors.New("signer count mismatch")

func classify(ctx context.Context, err error, msg string) error {
	return failure.WithContext(ctx, failure.Wrap(err, failure.ErrSubmission, msg))
}

func kindsOf(intents []*Intent) []string {
	out := make([]string, len(intents))
	for i, in := range intents {
		out[i] = in.kind.String()
	}
	return out
}
