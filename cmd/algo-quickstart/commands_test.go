package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/algo-quickstart/internal/signer"
)

func TestAccountNewJSON(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"account", "new", "--json"})
	require.NoError(t, root.Execute())

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Len(t, got["address"], 58)

	s, err := signer.FromMnemonic(got["mnemonic"])
	require.NoError(t, err)
	assert.Equal(t, got["address"], s.Address())
}

func TestSendRequiresReceiver(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"send", "--amount", "1"})
	assert.Error(t, root.Execute())
}

func TestNetworksList(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"networks"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "testnet   https://testnet-api.algonode.cloud")
	assert.Contains(t, out.String(), "localnet  http://localhost:4001")
}

func TestAppCallRequiresName(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"app-call", "--app-id", "5"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"name"`)
}
