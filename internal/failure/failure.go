// Package failure holds the failure kinds shared by every component.
//
// Errors are ordinary cockroachdb errors marked with one of the sentinel
// kinds below, so callers classify them with errors.Is or KindOf no matter
// how many times they were wrapped on the way up.
package failure

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

type Kind string

const (
	KindUnknown           Kind = "Unknown"
	KindValidation        Kind = "ValidationFailure"
	KindLedgerQuery       Kind = "LedgerQueryFailure"
	KindSubmission        Kind = "SubmissionFailure"
	KindPinService        Kind = "PinServiceFailure"
	KindMissingContent    Kind = "MissingContent"
	KindSignerUnavailable Kind = "SignerUnavailable"
	KindTimeout           Kind = "Timeout"
	KindCanceled          Kind = "Canceled"
)

var (
	ErrValidation        = errors.New("validation failure")
	ErrLedgerQuery       = errors.New("ledger query failure")
	ErrSubmission        = errors.New("submission failure")
	ErrPinService        = errors.New("pin service failure")
	ErrMissingContent    = errors.New("missing content")
	ErrSignerUnavailable = errors.New("signer unavailable")
	ErrTimeout           = errors.New("timeout")
	ErrCanceled          = errors.New("canceled")
)

// ordered so that timeout and cancellation win over the kind of the
// operation that was interrupted
var kinds = []struct {
	kind Kind
	ref  error
}{
	{KindTimeout, ErrTimeout},
	{KindCanceled, ErrCanceled},
	{KindMissingContent, ErrMissingContent},
	{KindSignerUnavailable, ErrSignerUnavailable},
	{KindValidation, ErrValidation},
	{KindLedgerQuery, ErrLedgerQuery},
	{KindSubmission, ErrSubmission},
	{KindPinService, ErrPinService},
}

func Validationf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

func MissingContent(msg string) error {
	return errors.Mark(errors.New(msg), ErrMissingContent)
}

func SignerUnavailable(msg string) error {
	return errors.Mark(errors.New(msg), ErrSignerUnavailable)
}

// Wrap annotates err with msg and marks it with kind. Context deadline and
// cancellation errors are marked Timeout and Canceled instead.
func Wrap(err error, kind error, msg string) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrap(err, msg)
	if ctxKind := contextKind(err); ctxKind != nil {
		return errors.Mark(wrapped, ctxKind)
	}
	return errors.Mark(wrapped, kind)
}

func Wrapf(err error, kind error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, kind, fmt.Sprintf(format, args...))
}

// FromContext maps ctx.Err() to Timeout or Canceled. It returns nil while the
// context is still live.
func FromContext(ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		return nil
	}
	return errors.Mark(err, contextKind(err))
}

// WithContext marks err Timeout or Canceled once ctx has ended, keeping the
// original message and kind.
func WithContext(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if k := contextKind(ctx.Err()); k != nil {
		return errors.Mark(err, k)
	}
	return err
}

func contextKind(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, context.Canceled):
		return ErrCanceled
	}
	return nil
}

// KindOf classifies err. Unmarked errors report KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.ref) {
			return k.kind
		}
	}
	if ctxKind := contextKind(err); ctxKind != nil {
		if ctxKind == ErrTimeout {
			return KindTimeout
		}
		return KindCanceled
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
