package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/userdesk/internal/client/repositories/metadata"
)

// StoreKey is the metadata key holding the encoded session.
const StoreKey = "session"

// Store is durable storage for one encoded session. Load returns (nil, nil)
// when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// SQLiteStore keeps the session in the local metadata table.
type SQLiteStore struct {
	repo metadata.Repository
}

func NewSQLiteStore(repo metadata.Repository) *SQLiteStore {
	return &SQLiteStore{repo: repo}
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	return s.repo.Get(ctx, StoreKey)
}

func (s *SQLiteStore) Save(ctx context.Context, data []byte) error {
	return s.repo.Set(ctx, StoreKey, data)
}

// MemoryStore is a Store that lives as long as the process.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

func (s *MemoryStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}
