package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/lingua/pkg/lingua/annotate"
	"github.com/cognicore/lingua/pkg/lingua/internalerr"
	"github.com/cognicore/lingua/pkg/lingua/ner"
	"github.com/cognicore/lingua/pkg/lingua/postag"
	"github.com/cognicore/lingua/pkg/lingua/store"
)

// sqliteStore implements store.Store using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDs
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps the pragmas in force and serializes writers
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, ids: store.NewIDs()}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS results (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL,
	confidence REAL NOT NULL,
	reliable INTEGER NOT NULL,
	text TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_language ON results(language);

CREATE TABLE IF NOT EXISTS result_tokens (
	result_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	start_byte INTEGER NOT NULL,
	end_byte INTEGER NOT NULL,
	kind TEXT NOT NULL,
	pos TEXT NOT NULL,
	lemma TEXT NOT NULL,
	PRIMARY KEY(result_id, idx),
	FOREIGN KEY(result_id) REFERENCES results(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS result_entities (
	result_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	start_token INTEGER NOT NULL,
	end_token INTEGER NOT NULL,
	kind TEXT NOT NULL,
	confidence REAL NOT NULL,
	source TEXT NOT NULL,
	text TEXT NOT NULL,
	PRIMARY KEY(result_id, idx),
	FOREIGN KEY(result_id) REFERENCES results(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_result_entities_kind ON result_entities(kind, text);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveResult implements store.Store.
func (s *sqliteStore) SaveResult(ctx context.Context, source string, res *annotate.Result) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	id := s.ids.New(now)
	doc := res.Document()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO results (id, source, language, confidence, reliable, text, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, source, doc.Language, doc.Confidence, doc.Reliable, doc.Text, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", err
	}

	if err := insertTokens(ctx, tx, id, res); err != nil {
		return "", err
	}
	if err := insertEntities(ctx, tx, id, res); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func insertTokens(ctx context.Context, tx *sql.Tx, id string, res *annotate.Result) error {
	if res.Len() == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO result_tokens (result_id, idx, start_byte, end_byte, kind, pos, lemma) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, tok := range res.All() {
		if _, err := stmt.ExecContext(ctx, id, i, tok.Start, tok.End, tok.Kind.String(), string(tok.POS), tok.Lemma); err != nil {
			return err
		}
	}
	return nil
}

func insertEntities(ctx context.Context, tx *sql.Tx, id string, res *annotate.Result) error {
	ents := res.Entities()
	if len(ents) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO result_entities (result_id, idx, start_token, end_token, kind, confidence, source, text) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, e := range ents {
		if _, err := stmt.ExecContext(ctx, id, i, e.Start, e.End, e.Kind.String(), e.Confidence, e.Source.String(), e.Text); err != nil {
			return err
		}
	}
	return nil
}

// GetResult implements store.Store.
func (s *sqliteStore) GetResult(ctx context.Context, id string) (store.Entry, error) {
	var (
		entry   = store.Entry{ID: id}
		rec     annotate.Record
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT source, language, confidence, reliable, text, created_at FROM results WHERE id=?`, id,
	).Scan(&entry.Source, &rec.Language, &rec.Confidence, &rec.Reliable, &rec.Text, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Entry{}, internalerr.ErrNotFound
	}
	if err != nil {
		return store.Entry{}, err
	}
	if entry.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return store.Entry{}, fmt.Errorf("result %s: created_at: %w", id, err)
	}

	if rec.Tokens, err = s.loadTokens(ctx, id, rec.Text); err != nil {
		return store.Entry{}, err
	}
	if rec.Entities, err = s.loadEntities(ctx, id); err != nil {
		return store.Entry{}, err
	}

	if entry.Result, err = annotate.FromRecord(rec); err != nil {
		return store.Entry{}, fmt.Errorf("result %s: %w", id, err)
	}
	return entry, nil
}

func (s *sqliteStore) loadTokens(ctx context.Context, id, text string) ([]annotate.TokenRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_byte, end_byte, kind, pos, lemma FROM result_tokens WHERE result_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []annotate.TokenRecord
	for rows.Next() {
		var (
			t         annotate.TokenRecord
			kind, pos string
		)
		if err := rows.Scan(&t.Start, &t.End, &kind, &pos, &t.Lemma); err != nil {
			return nil, err
		}
		if err := t.Kind.UnmarshalText([]byte(kind)); err != nil {
			return nil, err
		}
		if t.Start < 0 || t.End > len(text) || t.Start > t.End {
			return nil, fmt.Errorf("result %s: token range [%d,%d) outside text", id, t.Start, t.End)
		}
		t.Text = text[t.Start:t.End]
		t.POS = postag.Tag(pos)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadEntities(ctx context.Context, id string) ([]ner.Span, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT start_token, end_token, kind, confidence, source, text FROM result_entities WHERE result_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ner.Span
	for rows.Next() {
		span, err := scanSpan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, span)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpan(row scanner, extra ...any) (ner.Span, error) {
	var (
		span         ner.Span
		kind, source string
	)
	dest := append(extra, &span.Start, &span.End, &kind, &span.Confidence, &source, &span.Text)
	if err := row.Scan(dest...); err != nil {
		return ner.Span{}, err
	}
	if err := span.Kind.UnmarshalText([]byte(kind)); err != nil {
		return ner.Span{}, err
	}
	if err := span.Source.UnmarshalText([]byte(source)); err != nil {
		return ner.Span{}, err
	}
	return span, nil
}

// DeleteResult implements store.Store.
func (s *sqliteStore) DeleteResult(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internalerr.ErrNotFound
	}
	return nil
}

// ListResults implements store.Store.
func (s *sqliteStore) ListResults(ctx context.Context, f store.ListFilter) ([]store.Summary, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.source, r.language, r.created_at,
	(SELECT COUNT(*) FROM result_tokens t WHERE t.result_id = r.id),
	(SELECT COUNT(*) FROM result_entities e WHERE e.result_id = r.id)
FROM results r
WHERE ? = '' OR r.language = ?
ORDER BY r.id DESC
LIMIT ?`, f.Language, f.Language, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []store.Summary{}
	for rows.Next() {
		var (
			sum     store.Summary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Source, &sum.Language, &created, &sum.Tokens, &sum.Entities); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// FindEntities implements store.Store. Text matching folds ASCII case only.
func (s *sqliteStore) FindEntities(ctx context.Context, q store.EntityQuery) ([]store.EntityHit, error) {
	kind := ""
	if q.Kind != nil {
		kind = q.Kind.String()
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT result_id, start_token, end_token, kind, confidence, source, text
FROM result_entities
WHERE (? = '' OR kind = ?) AND (? = '' OR lower(text) = lower(?))
ORDER BY result_id, idx
LIMIT ?`, kind, kind, q.Text, q.Text, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.EntityHit
	for rows.Next() {
		var hit store.EntityHit
		if hit.Span, err = scanSpan(rows, &hit.ResultID); err != nil {
			return nil, err
		}
		out = append(out, hit)
	}
	return out, rows.Err()
}

var _ store.Store = (*sqliteStore)(nil)
