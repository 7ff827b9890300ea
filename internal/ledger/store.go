// Package ledger owns the shop's mutable document and serializes every
// mutation through a single writer. Display reads run lock-free against
// the latest committed snapshot.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/huyndao/robux-exchange/internal/models"
	"github.com/huyndao/robux-exchange/internal/storage"
)

// ErrNoChange may be returned by an Update function to signal that the
// document was not modified. The update succeeds without persisting or
// publishing a new snapshot.
var ErrNoChange = errors.New("ledger unchanged")

// Store is the single serialization point for ledger mutations. Update
// applies read-modify-write as one atomic unit: the mutation function
// runs on a deep copy, the copy is persisted, and only then published.
// A failed mutation or persist leaves the committed snapshot untouched.
type Store struct {
	mu        sync.Mutex
	persister storage.Persister
	current   atomic.Pointer[models.Ledger]
}

// Open loads the last persisted snapshot (or seeds an empty document)
// and returns a ready store. A nil persister keeps the ledger purely in
// memory, which the tests rely on.
func Open(ctx context.Context, persister storage.Persister) (*Store, error) {
	s := &Store{persister: persister}

	doc := models.NewLedger()
	if persister != nil {
		loaded, err := persister.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: load snapshot: %v", models.ErrStorage, err)
		}
		if loaded != nil {
			doc = loaded
		}
	}
	s.current.Store(doc)
	return s, nil
}

// Update runs fn against a working copy of the document. If fn succeeds,
// the copy is persisted and becomes the committed snapshot; if fn or the
// persist fails, nothing changes. fn must not retain the document past
// its return.
func (s *Store) Update(ctx context.Context, fn func(doc *models.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Load().Clone()
	if err := fn(next); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}

	if s.persister != nil {
		if err := s.persister.Save(ctx, next); err != nil {
			return fmt.Errorf("%w: save snapshot: %v", models.ErrStorage, err)
		}
	}
	s.current.Store(next)
	return nil
}

// View runs fn against the latest committed snapshot. fn must treat the
// document as read-only and must not retain it past its return; writers
// never mutate a published snapshot, so no locking is needed.
func (s *Store) View(fn func(doc *models.Ledger)) {
	fn(s.current.Load())
}
