package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/lingua/pkg/lingua/annotate"
	"github.com/cognicore/lingua/pkg/lingua/ner"
)

// Store persists annotation results
type Store interface {
	Close() error

	// SaveResult stores res and returns its new ID. source is a free-form
	// label such as a file name or URL.
	SaveResult(ctx context.Context, source string, res *annotate.Result) (string, error)
	// GetResult returns internalerr.ErrNotFound for unknown IDs.
	GetResult(ctx context.Context, id string) (Entry, error)
	DeleteResult(ctx context.Context, id string) error
	ListResults(ctx context.Context, f ListFilter) ([]Summary, error)
	FindEntities(ctx context.Context, q EntityQuery) ([]EntityHit, error)
}

// Entry is a stored result
type Entry struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Result    *annotate.Result
}

// Summary describes a stored result without its tokens
type Summary struct {
	ID        string
	Source    string
	Language  string
	CreatedAt time.Time
	Tokens    int
	Entities  int
}

// ListFilter narrows ListResults. Zero values match everything; results are
// returned newest first.
type ListFilter struct {
	Language string
	Limit    int
}

// EntityQuery narrows FindEntities. Kind and Text are optional; Text is
// compared case-insensitively against the entity surface.
type EntityQuery struct {
	Kind  *ner.EntityKind
	Text  string
	Limit int
}

// EntityHit is one stored entity span with the result it belongs to
type EntityHit struct {
	ResultID string
	Span     ner.Span
}

// IDs generates monotonically increasing ULIDs, safe for concurrent use.
type IDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDs creates an ID generator.
func NewIDs() *IDs {
	return &IDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ID for time t.
func (g *IDs) New(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

// KindPtr is a convenience for building an EntityQuery.
func KindPtr(k ner.EntityKind) *ner.EntityKind {
	return &k
}
