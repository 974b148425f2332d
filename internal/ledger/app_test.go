package ledger

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

var (
	approvalProg = []byte{0x0a, 0x81, 0x01, 0x43}
	clearProg    = []byte{0x0a, 0x81, 0x01, 0x43}
)

func TestBuildAppCreate(t *testing.T) {
	sender := randomAddress(t)

	in, err := BuildAppCreate(sender, approvalProg, clearProg, nil)
	require.NoError(t, err)
	assert.Equal(t, KindAppCreate, in.Kind())
	assert.Equal(t, approvalProg, in.App().ApprovalProgram)

	// callers cannot mutate a built intent
	in.App().ApprovalProgram[0] = 0xff
	assert.Equal(t, byte(0x0a), in.App().ApprovalProgram[0])

	tests := []struct {
		name     string
		sender   string
		approval []byte
		clear    []byte
		args     [][]byte
	}{
		{"short sender", sender[:57], approvalProg, clearProg, nil},
		{"no approval", sender, nil, clearProg, nil},
		{"no clear", sender, approvalProg, nil, nil},
		{"programs too large", sender, bytes.Repeat([]byte{1}, 2047), clearProg, nil},
		{"too many args", sender, approvalProg, clearProg, make([][]byte, 17)},
		{"args too large", sender, approvalProg, clearProg, [][]byte{bytes.Repeat([]byte{1}, 2049)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildAppCreate(tt.sender, tt.approval, tt.clear, tt.args)
			assert.Equal(t, failure.KindValidation, failure.KindOf(err))
		})
	}
}

func TestBuildAppCall(t *testing.T) {
	sender := randomAddress(t)

	in, err := BuildAppCall(sender, 42, [][]byte{[]byte("sel"), []byte("arg")})
	require.NoError(t, err)
	assert.Equal(t, KindAppCall, in.Kind())
	assert.Equal(t, uint64(42), in.AppID())
	assert.Nil(t, in.App().ApprovalProgram)

	_, err = BuildAppCall(sender, 0, nil)
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))
	_, err = BuildAppCall(strings.Repeat("é", 29), 42, nil)
	assert.Equal(t, failure.KindValidation, failure.KindOf(err))
}

func TestSubmitAppCreateAndCall(t *testing.T) {
	node := &fakeNode{appID: 1001, logs: [][]byte{[]byte("hello")}}
	signer := newFakeSigner()
	sub := NewSubmitter(node, 4, time.Second)

	create, err := BuildAppCreate(signer.Address(), approvalProg, clearProg, nil)
	require.NoError(t, err)
	res, err := sub.Submit(context.Background(), create, signer)
	require.NoError(t, err)
	require.NotNil(t, res.CreatedAppID)
	assert.Equal(t, uint64(1001), *res.CreatedAppID)
	assert.Nil(t, res.CreatedAssetID)

	txn := signer.signed[0]
	assert.Equal(t, types.ApplicationCallTx, txn.Type)
	assert.Zero(t, txn.ApplicationID)
	assert.Equal(t, approvalProg, txn.ApprovalProgram)
	assert.Equal(t, clearProg, txn.ClearStateProgram)

	call, err := BuildAppCall(signer.Address(), 1001, [][]byte{[]byte("sel")})
	require.NoError(t, err)
	res, err = sub.Submit(context.Background(), call, signer)
	require.NoError(t, err)
	assert.Nil(t, res.CreatedAppID)
	assert.Equal(t, [][]byte{[]byte("hello")}, res.Logs)

	txn = signer.signed[1]
	assert.Equal(t, types.AppIndex(1001), txn.ApplicationID)
	assert.Equal(t, types.NoOpOC, txn.OnCompletion)
	assert.Equal(t, [][]byte{[]byte("sel")}, txn.ApplicationArgs)
}
