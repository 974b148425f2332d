// Package keystore keeps a development account's mnemonic in a password
// encrypted JSON file. Argon2id derives the key, XChaCha20-Poly1305 seals it.
package keystore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
)

const (
	envelopeVersion = 1
	fileName        = "account.json"
	saltLen         = 16
)

var ErrWrongPasswordOrCorrupt = errors.New("keystore: wrong password or corrupted file")

// the sealed account is bound to this label
var aad = []byte(constants.AppName + ":account:v1")

// Account is the plaintext inside the envelope.
type Account struct {
	Address   string    `json:"address"`
	Mnemonic  string    `json:"mnemonic"`
	Network   string    `json:"network,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KDF holds Argon2id cost parameters.
type KDF struct {
	Time    uint32 `json:"argon_time"`
	Memory  uint32 `json:"argon_memory_kib"`
	Threads uint8  `json:"argon_threads"`
	KeyLen  uint32 `json:"argon_key_len"`
}

var DefaultKDF = KDF{
	Time:    2,
	Memory:  64 * 1024, // 64 MiB
	Threads: 1,
	KeyLen:  chacha20poly1305.KeySize,
}

// envelope is the on-disk form. The address stays readable so a file can be
// matched to an account without the password.
type envelope struct {
	Version  int    `json:"version"`
	Address  string `json:"address"`
	KDF      KDF    `json:"kdf"`
	SaltB64  string `json:"salt_b64"`
	NonceB64 string `json:"nonce_b64"`
	CTB64    string `json:"ct_b64"`
}

// DefaultPath is ~/.config/algo-quickstart/account.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "keystore: user config dir")
	}
	return filepath.Join(dir, constants.AppName, fileName), nil
}

// Save seals acct under password and writes it atomically. Existing files
// are never overwritten.
func Save(path string, acct Account, password []byte, kdf KDF) error {
	if len(password) == 0 {
		return errors.New("keystore: empty password")
	}
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("keystore: %s already exists", path)
	}
	if kdf == (KDF{}) {
		kdf = DefaultKDF
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirectoryPerm); err != nil {
		return errors.Wrapf(err, "keystore: mkdir %s", filepath.Dir(path))
	}

	plain, err := json.Marshal(acct)
	if err != nil {
		return errors.Wrap(err, "keystore: encode account")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return errors.Wrap(err, "keystore: salt")
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "keystore: nonce")
	}

	aead, err := chacha20poly1305.NewX(deriveKey(password, salt, kdf))
	if err != nil {
		return errors.Wrap(err, "keystore: aead")
	}

	b, err := json.MarshalIndent(envelope{
		Version:  envelopeVersion,
		Address:  acct.Address,
		KDF:      kdf,
		SaltB64:  base64.StdEncoding.EncodeToString(salt),
		NonceB64: base64.StdEncoding.EncodeToString(nonce),
		CTB64:    base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, aad)),
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "keystore: encode envelope")
	}
	return atomicWrite(path, b, 0o600)
}

// Load opens the envelope at path with password.
func Load(path string, password []byte) (Account, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Account{}, errors.Wrapf(err, "keystore: read %s", path)
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Account{}, errors.Wrap(err, "keystore: decode envelope")
	}
	if env.Version != envelopeVersion {
		return Account{}, errors.Newf("keystore: unsupported version %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.SaltB64)
	if err != nil {
		return Account{}, errors.Wrap(err, "keystore: decode salt")
	}
	nonce, err := base64.StdEncoding.DecodeString(env.NonceB64)
	if err != nil {
		return Account{}, errors.Wrap(err, "keystore: decode nonce")
	}
	ct, err := base64.StdEncoding.DecodeString(env.CTB64)
	if err != nil {
		return Account{}, errors.Wrap(err, "keystore: decode ciphertext")
	}

	aead, err := chacha20poly1305.NewX(deriveKey(password, salt, env.KDF))
	if err != nil {
		return Account{}, errors.Wrap(err, "keystore: aead")
	}
	plain, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return Account{}, ErrWrongPasswordOrCorrupt
	}

	var acct Account
	if err := json.Unmarshal(plain, &acct); err != nil {
		return Account{}, errors.Wrap(err, "keystore: decode account")
	}
	if acct.Address != env.Address {
		return Account{}, ErrWrongPasswordOrCorrupt
	}
	return acct, nil
}

func deriveKey(password, salt []byte, kdf KDF) []byte {
	return argon2.IDKey(password, salt, kdf.Time, kdf.Memory, kdf.Threads, kdf.KeyLen)
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrap(err, "keystore: write tmp")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "keystore: rename")
	}
	return nil
}
