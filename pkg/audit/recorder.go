package audit

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Storage persists audit entries. Store must treat entries as append-only;
// there is deliberately no update or delete operation.
type Storage interface {
	Store(ctx context.Context, entries ...Entry) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

// Filter narrows a Query. Zero values match everything; results are ordered
// newest first.
type Filter struct {
	OrganizationID uuid.UUID
	ActorID        uuid.UUID
	Action         string
	EntityType     string
	EntityID       string
	Limit          int
}

// Recorder validates and stores entries for callers operating outside a
// storage transaction. Services that need transactional coupling hand
// pre-built entries to their own storage layer instead.
type Recorder struct {
	storage Storage
}

// NewRecorder creates a Recorder. Storage must not be nil.
func NewRecorder(storage Storage) *Recorder {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	return &Recorder{storage: storage}
}

// Record builds an entry from the action and options and appends it.
func (r *Recorder) Record(ctx context.Context, action string, opts ...Option) error {
	entry := NewEntry(action, opts...)
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := r.storage.Store(ctx, entry); err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}

// Find returns stored entries matching the filter, newest first.
func (r *Recorder) Find(ctx context.Context, filter Filter) ([]Entry, error) {
	return r.storage.Query(ctx, filter)
}

// MemoryStorage is a thread-safe in-memory Storage for tests and development.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Store(_ context.Context, entries ...Entry) error {
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *MemoryStorage) Query(_ context.Context, filter Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if filter.OrganizationID != uuid.Nil && e.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.ActorID != uuid.Nil && e.ActorID != filter.ActorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
