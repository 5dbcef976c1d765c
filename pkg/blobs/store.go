package blobs

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vango-dev/bardfile/internal/errors"
)

// Info is the metadata of one uploaded blob.
type Info struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ByteSize    int64  `json:"byte_size"`
	SignedID    string `json:"signed_id"`
}

// Store is the interface for blob metadata backends.
type Store interface {
	// Info returns the blob with the given signed id. A missing blob is an
	// E003 error.
	Info(ctx context.Context, signedID string) (Info, error)

	// Put records a blob. An empty SignedID is replaced by a new one, and
	// the stored Info is returned.
	Put(ctx context.Context, info Info) (Info, error)
}

// NewSignedID returns a fresh signed id.
func NewSignedID() string {
	return uuid.NewString()
}

func notFound(signedID string) error {
	return errors.New(errors.ErrBlobNotFound).
		WithDetailf("no blob with signed id %q", signedID).
		WithSuggestion("Check that the blob was uploaded before the form was rendered")
}

func storeFailure(op string, err error) error {
	return errors.New(errors.ErrBlobStore).WithDetail(op).Wrap(err)
}

// MemoryStore keeps blobs in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Info
}

// NewMemoryStore creates a MemoryStore holding the given blobs.
func NewMemoryStore(blobs ...Info) *MemoryStore {
	s := &MemoryStore{blobs: make(map[string]Info, len(blobs))}
	for _, b := range blobs {
		if b.SignedID == "" {
			b.SignedID = NewSignedID()
		}
		s.blobs[b.SignedID] = b
	}
	return s
}

// Info implements Store.
func (s *MemoryStore) Info(ctx context.Context, signedID string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.blobs[signedID]
	if !ok {
		return Info{}, notFound(signedID)
	}
	return info, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, info Info) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	if info.SignedID == "" {
		info.SignedID = NewSignedID()
	}
	s.mu.Lock()
	s.blobs[info.SignedID] = info
	s.mu.Unlock()
	return info, nil
}
