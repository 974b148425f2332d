package failure

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), KindUnknown},
		{"validation", Validationf("bad address %q", "x"), KindValidation},
		{"missing content", MissingContent("no file"), KindMissingContent},
		{"signer", SignerUnavailable("no signer"), KindSignerUnavailable},
		{"submission", Wrap(errors.New("rejected"), ErrSubmission, "send"), KindSubmission},
		{"ledger query", Wrapf(errors.New("503"), ErrLedgerQuery, "account %s", "A"), KindLedgerQuery},
		{"pin service", Wrap(errors.New("401"), ErrPinService, "pin"), KindPinService},
		{"deadline wins", Wrap(context.DeadlineExceeded, ErrSubmission, "wait"), KindTimeout},
		{"cancel wins", Wrap(context.Canceled, ErrLedgerQuery, "query"), KindCanceled},
		{"bare deadline", context.DeadlineExceeded, KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrapSurvivesFurtherWrapping(t *testing.T) {
	err := Wrap(errors.New("node said no"), ErrSubmission, "submit")
	outer := errors.Wrap(err, "action")

	require.True(t, errors.Is(outer, ErrSubmission))
	assert.False(t, errors.Is(outer, ErrValidation))
	assert.Contains(t, outer.Error(), "node said no")
	assert.True(t, Is(outer, KindSubmission))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, ErrSubmission, "x"))
	assert.NoError(t, Wrapf(nil, ErrSubmission, "x %d", 1))
}

func TestFromContext(t *testing.T) {
	live := context.Background()
	assert.NoError(t, FromContext(live))

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, KindCanceled, KindOf(FromContext(canceled)))

	expired, cancel2 := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel2()
	<-expired.Done()
	assert.Equal(t, KindTimeout, KindOf(FromContext(expired)))
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Wrap(errors.New("connection reset"), ErrLedgerQuery, "account")
	assert.Equal(t, KindLedgerQuery, KindOf(WithContext(ctx, err)))

	cancel()
	marked := WithContext(ctx, err)
	assert.Equal(t, KindCanceled, KindOf(marked))
	assert.Contains(t, marked.Error(), "connection reset")
	assert.NoError(t, WithContext(ctx, nil))
}
