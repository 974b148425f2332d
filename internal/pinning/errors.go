package pinning

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound    = errors.New("pinning: not found")
	ErrInvalidCID  = errors.New("pinning: invalid cid")
	ErrCIDMismatch = errors.New("pinning: cid mismatch")
	ErrImmutable   = errors.New("pinning: immutable object mismatch")
)

const fallbackMessage = "Failed to pin to IPFS."

// UpstreamError is a non-2xx answer from a remote pinning API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("pinning: upstream status %d: %s", e.Status, e.Message)
}

// UserMessage picks the text shown to API callers: the upstream message when
// there is one, else the root cause, else a generic line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var up *UpstreamError
	if errors.As(err, &up) {
		if msg := strings.TrimSpace(up.Message); msg != "" {
			return msg
		}
		return fallbackMessage
	}
	if msg := strings.TrimSpace(errors.UnwrapAll(err).Error()); msg != "" {
		return msg
	}
	return fallbackMessage
}
