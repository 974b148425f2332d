// Package apps carries the demo application deployed by the app-call action:
// its TEAL sources and the ABI encoding of its single method.
package apps

import (
	"bytes"
	_ "embed"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	"github.com/cockroachdb/errors"
)

//go:embed hello_approval.teal
var HelloApprovalTEAL []byte

//go:embed hello_clear.teal
var HelloClearTEAL []byte

const HelloSignature = "hello(string)string"

// returnPrefix marks the log line carrying an ABI method return value.
var returnPrefix = []byte{0x15, 0x1f, 0x7c, 0x75}

var (
	ErrNoReturn = errors.New("no return value logged")

	helloMethod = mustMethod(HelloSignature)
	stringType  = mustType("string")
)

func mustMethod(sig string) abi.Method {
	m, err := abi.MethodFromSignature(sig)
	if err != nil {
		panic(err)
	}
	return m
}

func mustType(s string) abi.Type {
	t, err := abi.TypeOf(s)
	if err != nil {
		panic(err)
	}
	return t
}

// HelloArgs encodes a call of hello(name): the method selector followed by
// the ABI encoded name.
func HelloArgs(name string) ([][]byte, error) {
	arg, err := stringType.Encode(name)
	if err != nil {
		return nil, errors.Wrap(err, "apps: encode hello argument")
	}
	return [][]byte{helloMethod.GetSelector(), arg}, nil
}

// HelloReturn decodes the string returned by hello from the call's logs.
// The last log carrying the return prefix wins.
func HelloReturn(logs [][]byte) (string, error) {
	for i := len(logs) - 1; i >= 0; i-- {
		raw, ok := bytes.CutPrefix(logs[i], returnPrefix)
		if !ok {
			continue
		}
		v, err := stringType.Decode(raw)
		if err != nil {
			return "", errors.Wrap(err, "apps: decode hello return")
		}
		s, ok := v.(string)
		if !ok {
			return "", errors.Newf("apps: hello returned %T", v)
		}
		return s, nil
	}
	return "", ErrNoReturn
}
