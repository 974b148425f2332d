package actions

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

type Action string

const (
	ActionSend        Action = "send"
	ActionOptIn       Action = "opt-in"
	ActionAtomic      Action = "atomic-transfer"
	ActionCreateToken Action = "create-token"
	ActionMintNFT     Action = "mint-nft"
	ActionAppCall     Action = "app-call"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is what a user sees after an action: one line and an optional
// explorer link.
type Notice struct {
	Level   Level        `json:"level"`
	Message string       `json:"message"`
	Link    string       `json:"link,omitempty"`
	Kind    failure.Kind `json:"kind,omitempty"`
}

func (n Notice) String() string {
	if n.Link == "" {
		return n.Message
	}
	return n.Message + " " + n.Link
}

// User facing texts.
const (
	msgConnectWallet    = "Please connect wallet first"
	msgInvalidReceiver  = "Enter a valid Algorand address (58 chars)."
	msgNameAndUnit      = "Please enter an asset name and unit name."
	msgTotalWhole       = "Total supply must be a whole number."
	msgDecimalsWhole    = "Decimals must be a whole number."
	msgSelectImage      = "Please select an image file to mint."
	msgBackendUpload    = "Error uploading to backend. If in Codespaces, make port 3001 Public."
	msgCreateTokenFail  = "Failed to create token"
	msgAtomicComplete   = "✅ Atomic transfer complete! (1 ALGO + 1 USDC)"
	msgAssetCreated     = "✅ Success! Asset ID: %d"
	fmtTxSucceeded      = "✅ Success! TxID: %s"
	msgHelloInput       = "Enter a name to send to the hello method."
	fmtDeployFailed     = "Error deploying the contract: %s"
	fmtAppCallFailed    = "Error calling the contract: %s"
	fmtAppResponse      = "Response from the contract: %s"
	msgTimedOut         = "Timed out waiting for the network. The transaction may still confirm; check the explorer."
	msgCanceled         = "Canceled."
	msgUnknownError     = "Unknown error"
	fmtSendFailed       = "Failed to send %s"
	fmtSent             = "✅ %s %s sent! TxID: %s"
	fmtOptInFailed      = "%s opt-in failed (maybe already opted in)."
	fmtOptedIn          = "✅ Opt-in complete for %s. TxID: %s"
	fmtAlreadyOptedIn   = "Your wallet is already opted in to %s."
	fmtAtomicFailed     = "Atomic transfer failed. Make sure the receiver is opted into %s (%d)."
	fmtMintFailed       = "Failed to mint NFT: %s"
	fmtProgressSending  = "Sending %s transaction..."
	msgProgressAtomic   = "Sending atomic transfer: 1 ALGO + 1 USDC..."
	msgProgressCreating = "Creating token..."
	msgProgressUpload   = "Uploading and preparing NFT..."
	msgProgressMinting  = "Minting NFT on Algorand..."
	msgProgressDeploy   = "Deploying contract..."
	msgProgressAppCall  = "Sending application call..."
)

var fallbacks = map[Action]string{
	ActionSend:        "Failed to send transaction",
	ActionOptIn:       "Opt-in failed.",
	ActionAtomic:      "Atomic transfer failed.",
	ActionCreateToken: msgCreateTokenFail,
	ActionMintNFT:     fmt.Sprintf(fmtMintFailed, msgUnknownError),
	ActionAppCall:     fmt.Sprintf(fmtAppCallFailed, msgUnknownError),
}

// Notify turns a failed action into the notice shown to the user. Hints
// attached by the action win over the generic text for the failure kind.
func Notify(action Action, err error) Notice {
	if err == nil {
		return Notice{Level: LevelSuccess}
	}
	kind := failure.KindOf(err)
	n := Notice{Level: LevelError, Kind: kind}

	switch kind {
	case failure.KindCanceled:
		n.Level = LevelInfo
		n.Message = msgCanceled
		return n
	case failure.KindTimeout:
		n.Message = msgTimedOut
		return n
	case failure.KindValidation, failure.KindSignerUnavailable, failure.KindMissingContent:
		n.Level = LevelWarning
	}

	if hints := errors.GetAllHints(err); len(hints) > 0 {
		n.Message = hints[0]
		return n
	}

	switch kind {
	case failure.KindSignerUnavailable:
		n.Message = msgConnectWallet
	case failure.KindValidation, failure.KindMissingContent:
		n.Message = localMessage(err)
	default:
		n.Message = fallbacks[action]
		if n.Message == "" {
			n.Message = rootMessage(err)
		}
	}
	return n
}

// rootMessage is the innermost error text, unchanged. Ledger and upstream
// rejections reach the user exactly as the node worded them.
func rootMessage(err error) string {
	msg := strings.TrimSpace(errors.UnwrapAll(err).Error())
	if msg == "" {
		return msgUnknownError
	}
	return msg
}

// Package prefixes used by errors raised in this module.
var localPrefixes = []string{
	"actions: ", "assets: ", "cli: ", "ledger: ", "networks: ",
	"node: ", "pinclient: ", "pinning: ", "signer: ",
}

// localMessage reads an error raised in this module as a sentence. Text
// from anywhere else is returned as rootMessage does.
func localMessage(err error) string {
	msg := rootMessage(err)
	for _, prefix := range localPrefixes {
		if rest, ok := strings.CutPrefix(msg, prefix); ok && rest != "" {
			return strings.ToUpper(rest[:1]) + rest[1:]
		}
	}
	return msg
}

// Explorer builds links into a block explorer.
type Explorer struct {
	BaseURL string
	Network string
}

func (e Explorer) TransactionURL(txID string) string {
	if txID == "" || e.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/transaction/%s", strings.TrimRight(e.BaseURL, "/"), e.Network, txID)
}

func (e Explorer) AssetURL(assetID uint64) string {
	if assetID == 0 || e.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/asset/%d", strings.TrimRight(e.BaseURL, "/"), e.Network, assetID)
}

func (e Explorer) ApplicationURL(appID uint64) string {
	if appID == 0 || e.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/application/%d", strings.TrimRight(e.BaseURL, "/"), e.Network, appID)
}
