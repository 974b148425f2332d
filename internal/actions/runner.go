// Package actions holds the user level recipes of the quickstart: send,
// opt in, atomic transfer, create a token, mint an NFT and call the demo
// application. Each one validates its input, builds intents, submits them
// and reports a Notice.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/algo-quickstart/internal/apps"
	"github.com/quantumauth-io/algo-quickstart/internal/assets"
	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
	"github.com/quantumauth-io/algo-quickstart/internal/ledger"
)

// PinClient uploads an image to the pin backend and returns the metadata
// locator.
type PinClient interface {
	PinImage(ctx context.Context, filename string, content []byte) (string, error)
}

// Compiler assembles TEAL source into program bytes.
type Compiler interface {
	Compile(ctx context.Context, source []byte) ([]byte, error)
}

type Options struct {
	Signer     ledger.Signer
	Pins       PinClient
	Compiler   Compiler
	USDC       assets.Asset
	Explorer   Explorer
	OnProgress func(Notice)
}

type Runner struct {
	checker   *assets.Checker
	submitter *ledger.Submitter
	signer    ledger.Signer
	pins      PinClient
	compiler  Compiler
	usdc      assets.Asset
	explorer  Explorer
	progress  func(Notice)
}

// Outcome is the successful result of an action.
type Outcome struct {
	Action         Action   `json:"action"`
	TxIDs          []string `json:"txIds,omitempty"`
	AssetID        *uint64  `json:"assetId,omitempty"`
	ConfirmedRound uint64   `json:"confirmedRound,omitempty"`
	AlreadyOptedIn bool     `json:"alreadyOptedIn,omitempty"`
	MetadataURL    string   `json:"metadataUrl,omitempty"`
	AppID          uint64   `json:"appId,omitempty"`
	Return         string   `json:"return,omitempty"`
	Notice         Notice   `json:"notice"`
}

type TokenForm struct {
	AssetName string
	UnitName  string
	Total     string
	Decimals  string
}

type NFTForm struct {
	Filename  string
	Content   []byte
	AssetName string
	UnitName  string
}

// AppCallForm calls hello(Name) on AppID, deploying a fresh copy of the
// demo application first when AppID is zero.
type AppCallForm struct {
	Name  string
	AppID uint64
}

func NewRunner(checker *assets.Checker, submitter *ledger.Submitter, opts Options) *Runner {
	if opts.USDC.ID == 0 {
		opts.USDC = assets.USDC(constants.TestNetUSDCAssetID, constants.USDCDecimals)
	}
	if opts.Explorer.BaseURL == "" {
		opts.Explorer.BaseURL = constants.ExplorerBaseURL
	}
	if opts.Explorer.Network == "" {
		opts.Explorer.Network = constants.DefaultNetwork
	}
	return &Runner{
		checker:   checker,
		submitter: submitter,
		signer:    opts.Signer,
		pins:      opts.Pins,
		compiler:  opts.Compiler,
		usdc:      opts.USDC,
		explorer:  opts.Explorer,
		progress:  opts.OnProgress,
	}
}

func (r *Runner) USDC() assets.Asset { return r.usdc }

// Asset resolves a symbol accepted by Send and OptIn.
func (r *Runner) Asset(symbol string) (assets.Asset, error) {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "ALGO":
		return assets.Algo(), nil
	case r.usdc.Symbol:
		return r.usdc, nil
	}
	return assets.Asset{}, failure.Validationf("actions: unknown asset %q, want ALGO or %s", symbol, r.usdc.Symbol)
}

// Send transfers a human amount of ALGO or of an asset to receiver.
func (r *Runner) Send(ctx context.Context, asset assets.Asset, receiver, amount string) (Outcome, error) {
	sender, err := r.account()
	if err != nil {
		return Outcome{}, err
	}
	units, err := assets.ToBaseUnits(amount, asset.Decimals)
	if err != nil {
		return Outcome{}, err
	}

	var intent *ledger.Intent
	if asset.IsNative() {
		intent, err = ledger.BuildPayment(sender, receiver, units)
	} else {
		intent, err = ledger.BuildAssetTransfer(sender, receiver, asset.ID, units)
	}
	if err != nil {
		return Outcome{}, err
	}

	r.notify(LevelInfo, fmt.Sprintf(fmtProgressSending, asset.Symbol))
	res, err := r.submitter.Submit(ctx, intent, r.signer)
	if err != nil {
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtSendFailed, asset.Symbol))
	}

	txID := res.TxIDs[0]
	return r.outcome(ActionSend, res, Notice{
		Level:   LevelSuccess,
		Message: fmt.Sprintf(fmtSent, assets.FormatBaseUnits(units, asset.Decimals), asset.Symbol, txID),
		Link:    r.explorer.TransactionURL(txID),
	}), nil
}

// OptIn associates the connected account with asset. Holdings are queried
// first; an account that already holds the asset is reported without
// submitting anything.
func (r *Runner) OptIn(ctx context.Context, asset assets.Asset) (Outcome, error) {
	sender, err := r.account()
	if err != nil {
		return Outcome{}, err
	}
	if asset.IsNative() {
		return Outcome{}, failure.Validationf("actions: the native coin needs no opt-in")
	}

	opted, err := r.checker.IsOptedIn(ctx, sender, asset.ID)
	if err != nil {
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtOptInFailed, asset.Symbol))
	}
	if opted {
		return Outcome{
			Action:         ActionOptIn,
			AlreadyOptedIn: true,
			Notice:         Notice{Level: LevelInfo, Message: fmt.Sprintf(fmtAlreadyOptedIn, asset.Symbol)},
		}, nil
	}

	intent, err := ledger.BuildAssetOptIn(sender, asset.ID)
	if err != nil {
		return Outcome{}, err
	}
	res, err := r.submitter.Submit(ctx, intent, r.signer)
	if err != nil {
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtOptInFailed, asset.Symbol))
	}

	txID := res.TxIDs[0]
	return r.outcome(ActionOptIn, res, Notice{
		Level:   LevelSuccess,
		Message: fmt.Sprintf(fmtOptedIn, asset.Symbol, txID),
		Link:    r.explorer.TransactionURL(txID),
	}), nil
}

// IsOptedIn reports whether account holds asset, defaulting to the connected
// account.
func (r *Runner) IsOptedIn(ctx context.Context, account string, asset assets.Asset) (bool, error) {
	if account == "" {
		var err error
		if account, err = r.account(); err != nil {
			return false, err
		}
	}
	if asset.IsNative() {
		return true, nil
	}
	return r.checker.IsOptedIn(ctx, account, asset.ID)
}

// AtomicTransfer sends 1 ALGO and 1 USDC to receiver as one group: either
// both land or neither does. The receiver's USDC opt-in is checked first so
// a doomed group is never signed.
func (r *Runner) AtomicTransfer(ctx context.Context, receiver string) (Outcome, error) {
	sender, err := r.account()
	if err != nil {
		return Outcome{}, err
	}
	receiver = strings.TrimSpace(receiver)
	if err := ledger.ValidateAddress("receiver", receiver); err != nil {
		return Outcome{}, errors.WithHint(err, msgInvalidReceiver)
	}
	failedHint := fmt.Sprintf(fmtAtomicFailed, r.usdc.Symbol, r.usdc.ID)

	opted, err := r.checker.IsOptedIn(ctx, receiver, r.usdc.ID)
	if err != nil {
		return Outcome{}, errors.WithHint(err, failedHint)
	}
	if !opted {
		return Outcome{}, errors.WithHint(
			failure.Validationf("actions: receiver %s is not opted in to asset %d", receiver, r.usdc.ID),
			failedHint)
	}

	pay, err := ledger.BuildPayment(sender, receiver, constants.MicroAlgosPerAlgo)
	if err != nil {
		return Outcome{}, err
	}
	oneUSDC, err := assets.ToBaseUnits("1", r.usdc.Decimals)
	if err != nil {
		return Outcome{}, err
	}
	xfer, err := ledger.BuildAssetTransfer(sender, receiver, r.usdc.ID, oneUSDC)
	if err != nil {
		return Outcome{}, err
	}
	group, err := ledger.Compose(pay, xfer)
	if err != nil {
		return Outcome{}, err
	}

	r.notify(LevelInfo, msgProgressAtomic)
	res, err := r.submitter.SubmitGroup(ctx, group, r.signer)
	if err != nil {
		return Outcome{}, errors.WithHint(err, failedHint)
	}

	return r.outcome(ActionAtomic, res, Notice{
		Level:   LevelSuccess,
		Message: msgAtomicComplete,
		Link:    r.explorer.TransactionURL(res.TxIDs[0]),
	}), nil
}

// CreateToken creates a fungible asset from form strings. The on-chain total
// is Total × 10^Decimals.
func (r *Runner) CreateToken(ctx context.Context, form TokenForm) (Outcome, error) {
	sender, err := r.account()
	if err != nil {
		return Outcome{}, err
	}
	name := strings.TrimSpace(form.AssetName)
	unit := strings.TrimSpace(form.UnitName)
	if name == "" || unit == "" {
		return Outcome{}, errors.WithHint(failure.Validationf("actions: asset name and unit name are required"), msgNameAndUnit)
	}
	total, err := assets.ParseWholeNumber("total", form.Total)
	if err != nil {
		return Outcome{}, errors.WithHint(err, msgTotalWhole)
	}
	if _, err := assets.ParseWholeNumber("decimals", form.Decimals); err != nil {
		return Outcome{}, errors.WithHint(err, msgDecimalsWhole)
	}
	decimals, err := assets.ParseDecimals(form.Decimals)
	if err != nil {
		return Outcome{}, err
	}
	onChain, err := ledger.OnChainTotal(total, decimals)
	if err != nil {
		return Outcome{}, err
	}

	intent, err := ledger.BuildAssetCreate(ledger.AssetCreateParams{
		Sender:    sender,
		AssetName: name,
		UnitName:  unit,
		Total:     onChain,
		Decimals:  decimals,
	})
	if err != nil {
		return Outcome{}, err
	}

	r.notify(LevelInfo, msgProgressCreating)
	res, err := r.submitter.Submit(ctx, intent, r.signer)
	if err != nil {
		return Outcome{}, errors.WithHint(err, msgCreateTokenFail)
	}
	return r.assetOutcome(ActionCreateToken, res), nil
}

// MintNFT pins the image through the pin backend, then creates a unique asset
// pointing at the returned metadata locator.
func (r *Runner) MintNFT(ctx context.Context, form NFTForm) (Outcome, error) {
	sender, err := r.account()
	if err != nil {
		return Outcome{}, err
	}
	if len(form.Content) == 0 {
		return Outcome{}, errors.WithHint(failure.MissingContent("actions: no image selected"), msgSelectImage)
	}
	if r.pins == nil {
		return Outcome{}, errors.WithHint(
			failure.Wrap(errNoPinBackend, failure.ErrPinService, "actions: mint"), msgBackendUpload)
	}

	name := firstNonEmpty(form.AssetName, constants.DefaultNFTName)
	unit := firstNonEmpty(form.UnitName, constants.DefaultNFTUnit)

	r.notify(LevelInfo, msgProgressUpload)
	metadataURL, err := r.pins.PinImage(ctx, form.Filename, form.Content)
	if err != nil {
		log.Warn("pin backend upload failed", "filename", form.Filename, "error", err)
		return Outcome{}, errors.WithHint(err, msgBackendUpload)
	}

	intent, err := ledger.BuildUniqueAsset(sender, name, unit, metadataURL)
	if err != nil {
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtMintFailed, localMessage(err)))
	}

	r.notify(LevelInfo, msgProgressMinting)
	res, err := r.submitter.Submit(ctx, intent, r.signer)
	if err != nil {
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtMintFailed, rootMessage(err)))
	}

	out := r.assetOutcome(ActionMintNFT, res)
	out.MetadataURL = metadataURL
	return out, nil
}

var errNoPinBackend = errors.New("no pin backend configured")

// AppCall deploys the hello application when needed and calls its hello
// method with form.Name.
func (r *Runner) AppCall(ctx context.Context, form AppCallForm) (Outcome, error) {
	sender, err := r.account()
	if err != nil {
		return Outcome{}, err
	}
	if form.Name == "" {
		return Outcome{}, errors.WithHint(failure.Validationf("actions: hello name is empty"), msgHelloInput)
	}
	args, err := apps.HelloArgs(form.Name)
	if err != nil {
		return Outcome{}, errors.WithHint(failure.Wrap(err, failure.ErrValidation, "actions: app call"), msgHelloInput)
	}

	var txIDs []string
	appID := form.AppID
	if appID == 0 {
		res, err := r.deployHello(ctx, sender)
		if err != nil {
			return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtDeployFailed, rootMessage(err)))
		}
		appID = *res.CreatedAppID
		txIDs = append(txIDs, res.TxIDs...)
		log.Info("hello application deployed", "app_id", appID, "tx_id", res.TxIDs[0])
	}

	intent, err := ledger.BuildAppCall(sender, appID, args)
	if err != nil {
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtAppCallFailed, localMessage(err)))
	}

	r.notify(LevelInfo, msgProgressAppCall)
	res, err := r.submitter.Submit(ctx, intent, r.signer)
	if err != nil {
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtAppCallFailed, rootMessage(err)))
	}
	reply, err := apps.HelloReturn(res.Logs)
	if err != nil {
		err = failure.Wrapf(err, failure.ErrSubmission, "actions: app %d", appID)
		return Outcome{}, errors.WithHint(err, fmt.Sprintf(fmtAppCallFailed, rootMessage(err)))
	}

	res.TxIDs = append(txIDs, res.TxIDs...)
	out := r.outcome(ActionAppCall, res, Notice{
		Level:   LevelSuccess,
		Message: fmt.Sprintf(fmtAppResponse, reply),
		Link:    r.explorer.ApplicationURL(appID),
	})
	out.AppID = appID
	out.Return = reply
	return out, nil
}

var (
	errNoCompiler = errors.New("no program compiler configured")
	errNoAppID    = errors.New("confirmation carries no application id")
)

func (r *Runner) deployHello(ctx context.Context, sender string) (ledger.Result, error) {
	if r.compiler == nil {
		return ledger.Result{}, failure.Wrap(errNoCompiler, failure.ErrSubmission, "actions: deploy")
	}
	approval, err := r.compiler.Compile(ctx, apps.HelloApprovalTEAL)
	if err != nil {
		return ledger.Result{}, failure.WithContext(ctx, failure.Wrap(err, failure.ErrSubmission, "actions: compile approval program"))
	}
	clearProg, err := r.compiler.Compile(ctx, apps.HelloClearTEAL)
	if err != nil {
		return ledger.Result{}, failure.WithContext(ctx, failure.Wrap(err, failure.ErrSubmission, "actions: compile clear program"))
	}

	intent, err := ledger.BuildAppCreate(sender, approval, clearProg, nil)
	if err != nil {
		return ledger.Result{}, err
	}

	r.notify(LevelInfo, msgProgressDeploy)
	res, err := r.submitter.Submit(ctx, intent, r.signer)
	if err != nil {
		return ledger.Result{}, err
	}
	if res.CreatedAppID == nil {
		return ledger.Result{}, failure.Wrap(errNoAppID, failure.ErrSubmission, "actions: deploy")
	}
	return res, nil
}

func (r *Runner) account() (string, error) {
	if r.signer == nil || r.signer.Address() == "" {
		return "", errors.WithHint(failure.SignerUnavailable("actions: no signer connected"), msgConnectWallet)
	}
	return r.signer.Address(), nil
}

func (r *Runner) notify(level Level, msg string) {
	if r.progress != nil {
		r.progress(Notice{Level: level, Message: msg})
	}
}

func (r *Runner) outcome(action Action, res ledger.Result, n Notice) Outcome {
	log.Info("action complete", "action", action, "tx_ids", res.TxIDs, "round", res.ConfirmedRound)
	return Outcome{
		Action:         action,
		TxIDs:          res.TxIDs,
		AssetID:        res.CreatedAssetID,
		ConfirmedRound: res.ConfirmedRound,
		Notice:         n,
	}
}

func (r *Runner) assetOutcome(action Action, res ledger.Result) Outcome {
	n := Notice{Level: LevelSuccess}
	if res.CreatedAssetID != nil {
		n.Message = fmt.Sprintf(msgAssetCreated, *res.CreatedAssetID)
		n.Link = r.explorer.AssetURL(*res.CreatedAssetID)
	} else {
		n.Message = fmt.Sprintf(fmtTxSucceeded, res.TxIDs[0])
		n.Link = r.explorer.TransactionURL(res.TxIDs[0])
	}
	return r.outcome(action, res, n)
}

func firstNonEmpty(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
