package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/lingua/pkg/lingua/annotate"
	"github.com/cognicore/lingua/pkg/lingua/internalerr"
	"github.com/cognicore/lingua/pkg/lingua/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-shot CLI runs.
type Store struct {
	mu      sync.RWMutex
	ids     *store.IDs
	now     func() time.Time
	entries map[string]store.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:     store.NewIDs(),
		now:     time.Now,
		entries: make(map[string]store.Entry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveResult implements store.Store. Results are immutable, so the entry
// shares res with the caller.
func (s *Store) SaveResult(ctx context.Context, source string, res *annotate.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	id := s.ids.New(now)
	s.entries[id] = store.Entry{ID: id, Source: source, CreatedAt: now, Result: res}
	return id, nil
}

// GetResult implements store.Store.
func (s *Store) GetResult(ctx context.Context, id string) (store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return store.Entry{}, internalerr.ErrNotFound
	}
	return e, nil
}

// DeleteResult implements store.Store.
func (s *Store) DeleteResult(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return internalerr.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// ListResults implements store.Store.
func (s *Store) ListResults(ctx context.Context, f store.ListFilter) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Summary, 0, len(s.entries))
	for _, e := range s.entries {
		if f.Language != "" && e.Result.Language() != f.Language {
			continue
		}
		out = append(out, store.Summary{
			ID:        e.ID,
			Source:    e.Source,
			Language:  e.Result.Language(),
			CreatedAt: e.CreatedAt,
			Tokens:    e.Result.Len(),
			Entities:  len(e.Result.Entities()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// FindEntities implements store.Store. Hits are ordered by result ID, then
// position.
func (s *Store) FindEntities(ctx context.Context, q store.EntityQuery) ([]store.EntityHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []store.EntityHit
	for _, id := range ids {
		for span := range s.entries[id].Result.EntitySeq() {
			if q.Kind != nil && span.Kind != *q.Kind {
				continue
			}
			if q.Text != "" && !strings.EqualFold(span.Text, q.Text) {
				continue
			}
			out = append(out, store.EntityHit{ResultID: id, Span: span})
			if q.Limit > 0 && len(out) == q.Limit {
				return out, nil
			}
		}
	}
	return out, nil
}
