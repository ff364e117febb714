// Package snapshot persists document cache entries in sqlite so analyzed
// documents survive between CLI invocations.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/coolbeans/ccattrib/pkg/cache"
	"github.com/coolbeans/ccattrib/pkg/rdf"
)

// ErrNotFound is returned when no snapshot exists for a document.
var ErrNotFound = errors.New("snapshot not found")

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads and writes document snapshots.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the snapshot database at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	store, err := New(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open database, running migrations first.
func New(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := InitDB(ctx, db); err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the snapshot of key with entry.
func (s *Store) Save(ctx context.Context, key string, entry cache.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteDocument(ctx, tx, key); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (key, token, saved_at) VALUES (?, ?, ?)`,
		key, entry.LastModified, s.now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO statements (document_key, position, subject, predicate, object_kind, object_value)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement insert: %w", err)
	}
	defer insert.Close()

	for position, statement := range entry.Statements {
		if _, err := insert.ExecContext(ctx,
			key, position,
			statement.Subject.URI, statement.Predicate.URI,
			int(statement.Object.Kind), statement.Object.Value,
		); err != nil {
			return fmt.Errorf("failed to save statement %d of %s: %w", position, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Debug("saved snapshot",
		zap.String("document", key),
		zap.Int("statements", len(entry.Statements)))
	return nil
}

// Load returns the snapshot of key.
func (s *Store) Load(ctx context.Context, key string) (cache.Entry, error) {
	return load(ctx, s.db, key)
}

func load(ctx context.Context, db executor, key string) (cache.Entry, error) {
	var entry cache.Entry
	err := db.QueryRowContext(ctx, `SELECT token FROM documents WHERE key = ?`, key).Scan(&entry.LastModified)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to load document %s: %w", key, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT subject, predicate, object_kind, object_value
		 FROM statements WHERE document_key = ? ORDER BY position`, key)
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to load statements of %s: %w", key, err)
	}
	defer rows.Close()

	entry.Statements = []rdf.Statement{}
	for rows.Next() {
		var subject, predicate, value string
		var kind int
		if err := rows.Scan(&subject, &predicate, &kind, &value); err != nil {
			return cache.Entry{}, fmt.Errorf("failed to scan statement: %w", err)
		}
		entry.Statements = append(entry.Statements, rdf.Statement{
			Subject:   rdf.NewResource(subject),
			Predicate: rdf.NewResource(predicate),
			Object:    rdf.Term{Kind: rdf.TermKind(kind), Value: value},
		})
	}
	if err := rows.Err(); err != nil {
		return cache.Entry{}, fmt.Errorf("failed to read statements of %s: %w", key, err)
	}

	return entry, nil
}

// Delete removes the snapshot of key.
func (s *Store) Delete(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE key = ?`, key).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("failed to look up document %s: %w", key, err)
	}

	if err := deleteDocument(ctx, tx, key); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteDocument(ctx context.Context, db executor, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM statements WHERE document_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete statements of %s: %w", key, err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored document, most recently saved first.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM documents ORDER BY saved_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan document key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Restore loads every snapshot into documentCache and returns how many
// documents were restored. Documents are inserted oldest first so a bounded
// cache keeps the most recently saved ones.
func (s *Store) Restore(ctx context.Context, documentCache *cache.DocumentCache) (int, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}

	for i := len(keys) - 1; i >= 0; i-- {
		entry, err := s.Load(ctx, keys[i])
		if err != nil {
			return 0, err
		}
		documentCache.PutFresh(keys[i], entry, entry.LastModified)
	}

	s.logger.Debug("restored snapshots", zap.Int("documents", len(keys)))
	return len(keys), nil
}

// Persist saves the cached entry for key.
func (s *Store) Persist(ctx context.Context, documentCache *cache.DocumentCache, key string) error {
	entry, found := documentCache.Get(key)
	if !found {
		return fmt.Errorf("%w: %s is not cached", ErrNotFound, key)
	}
	return s.Save(ctx, key, entry)
}
