package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
)

// CAS is an immutable content-addressable blob store keyed by CID.
type CAS interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// ContentID returns the CIDv1 (raw codec, sha2-256) of data.
func ContentID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "pinning: multihash")
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

func Locator(id cid.Cid) string {
	return constants.IPFSPrefix + id.String()
}

// ParseLocator accepts "ipfs://<cid>" or a bare CID.
func ParseLocator(locator string) (cid.Cid, error) {
	s := strings.TrimPrefix(strings.TrimSpace(locator), constants.IPFSPrefix)
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, errors.Mark(errors.Wrapf(err, "pinning: locator %q", locator), ErrInvalidCID)
	}
	return id, nil
}

// MemoryCAS keeps objects in process memory.
type MemoryCAS struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryCAS() *MemoryCAS {
	return &MemoryCAS{objects: map[string][]byte{}}
}

func (m *MemoryCAS) Put(data []byte) (cid.Cid, error) {
	id, err := ContentID(data)
	if err != nil {
		return cid.Undef, err
	}
	key := id.KeyString()

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.objects[key]; ok {
		if !bytes.Equal(existing, data) {
			return cid.Undef, ErrImmutable
		}
		return id, nil
	}
	m.objects[key] = append([]byte(nil), data...)
	return id, nil
}

func (m *MemoryCAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[id.KeyString()]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryCAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[id.KeyString()]
	return ok
}

// DirCAS stores each object read-only under root/<first two cid chars>/<cid>.
// It never touches the network.
type DirCAS struct {
	root string
}

func NewDirCAS(root string) (*DirCAS, error) {
	if root == "" {
		return nil, errors.New("pinning: root directory is required")
	}
	if err := os.MkdirAll(root, constants.DirectoryPerm); err != nil {
		return nil, errors.Wrapf(err, "pinning: create %s", root)
	}
	return &DirCAS{root: root}, nil
}

func (c *DirCAS) Put(data []byte) (cid.Cid, error) {
	id, err := ContentID(data)
	if err != nil {
		return cid.Undef, err
	}

	path := c.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), constants.DirectoryPerm); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePerm)
	if err != nil {
		if os.IsExist(err) {
			existing, rerr := c.Get(id)
			if rerr != nil || !bytes.Equal(existing, data) {
				// an unreadable or altered object is never repaired in place
				return cid.Undef, ErrImmutable
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return cid.Undef, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

func (c *DirCAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	b, err := os.ReadFile(c.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	got, err := ContentID(b)
	if err != nil {
		return nil, err
	}
	if !got.Equals(id) {
		return nil, ErrCIDMismatch
	}
	return b, nil
}

func (c *DirCAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(c.pathFor(id))
	return err == nil
}

func (c *DirCAS) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(c.root, s)
	}
	return filepath.Join(c.root, s[:2], s)
}

// LocalStore pins into a CAS. Names are only logged since the CAS is keyed
// by content alone.
type LocalStore struct {
	cas CAS
}

func NewLocalStore(cas CAS) *LocalStore {
	return &LocalStore{cas: cas}
}

func (s *LocalStore) PinFile(ctx context.Context, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := s.cas.Put(content)
	if err != nil {
		return "", errors.Wrapf(err, "pinning: store %q", name)
	}
	log.Info("pinned file locally", "name", name, "cid", id.String(), "size", len(content))
	return Locator(id), nil
}

func (s *LocalStore) PinJSON(ctx context.Context, name string, doc any) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrapf(err, "pinning: encode %q", name)
	}
	return s.PinFile(ctx, name, b)
}

// Fetch returns the bytes behind a locator.
func (s *LocalStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	return s.cas.Get(id)
}
