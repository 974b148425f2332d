// Package signer holds a local ed25519 signer for development accounts.
// Production wallets live behind the ledger.Signer interface and never pass
// key material into this module.
package signer

import (
	"bytes"
	"context"
	"crypto/rand"
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"
	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"
	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/algo-quickstart/internal/ledger"
)

const schemeName = "Ed25519"

// transactions are signed over this domain prefix plus their msgpack body
var txPrefix = []byte("TX")

var _ ledger.Signer = (*Local)(nil)

type Local struct {
	scheme  sign.Scheme
	sk      sign.PrivateKey
	address types.Address
}

func scheme() (sign.Scheme, error) {
	s := schemes.ByName(schemeName)
	if s == nil {
		return nil, errors.Newf("signer: scheme %s not found in circl", schemeName)
	}
	return s, nil
}

// FromSeed derives the account from a 32 byte ed25519 seed.
func FromSeed(seed []byte) (*Local, error) {
	s, err := scheme()
	if err != nil {
		return nil, err
	}
	if len(seed) != s.SeedSize() {
		return nil, errors.Newf("signer: seed must be %d bytes, got %d", s.SeedSize(), len(seed))
	}

	pk, sk := s.DeriveKey(seed)
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "signer: marshal public key")
	}

	var addr types.Address
	if len(pub) != len(addr) {
		return nil, errors.Newf("signer: public key is %d bytes", len(pub))
	}
	copy(addr[:], pub)

	return &Local{scheme: s, sk: sk, address: addr}, nil
}

// FromMnemonic accepts the 25 word account mnemonic. Extra whitespace is
// ignored.
func FromMnemonic(phrase string) (*Local, error) {
	phrase = strings.Join(strings.Fields(phrase), " ")
	if phrase == "" {
		return nil, errors.New("signer: mnemonic is empty")
	}
	key, err := mnemonic.ToPrivateKey(phrase)
	if err != nil {
		return nil, errors.Wrap(err, "signer: decode mnemonic")
	}
	return FromSeed(key.Seed())
}

// Generate creates a fresh account and returns it with its mnemonic.
func Generate() (*Local, string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, "", errors.Wrap(err, "signer: read random seed")
	}
	l, err := FromSeed(seed)
	if err != nil {
		return nil, "", err
	}
	phrase, err := mnemonic.FromKey(seed)
	if err != nil {
		return nil, "", errors.Wrap(err, "signer: encode mnemonic")
	}
	return l, phrase, nil
}

func (l *Local) Address() string { return l.address.String() }

// SignTransactions signs every transaction with the local key. Only
// transactions sent by the key's own account are signed.
func (l *Local) SignTransactions(ctx context.Context, txns []types.Transaction) ([][]byte, error) {
	out := make([][]byte, 0, len(txns))
	for i, txn := range txns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if txn.Sender != l.address {
			return nil, errors.Newf("signer: transaction %d is sent by %s, not %s", i, txn.Sender, l.address)
		}

		msg := bytes.Join([][]byte{txPrefix, msgpack.Encode(txn)}, nil)
		sig := l.scheme.Sign(l.sk, msg, nil)

		stx := types.SignedTxn{Txn: txn}
		if len(sig) != len(stx.Sig) {
			return nil, errors.Newf("signer: transaction %d: signature is %d bytes", i, len(sig))
		}
		copy(stx.Sig[:], sig)
		out = append(out, msgpack.Encode(stx))
	}
	return out, nil
}
