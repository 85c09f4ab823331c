package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS local_scenes (
	doc_id     TEXT PRIMARY KEY,
	scene      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore is a LocalStore backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// LocalCache is a LocalStore that holds resources until closed.
type LocalCache interface {
	LocalStore
	Close() error
}

// OpenLocalCache opens the SQLite cache at path. An empty path keeps the
// cache in process memory for the lifetime of the server.
func OpenLocalCache(path string) (LocalCache, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	store, err := OpenSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// OpenSQLiteStore opens (creating if needed) the cache database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	// A single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	store, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an already-open database and ensures the schema exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(localSchema); err != nil {
		return nil, fmt.Errorf("create local cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, docID string) (document.Scene, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT scene FROM local_scenes WHERE doc_id = ?`, docID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return document.EmptyScene(), false, nil
	}
	if err != nil {
		return document.EmptyScene(), false, fmt.Errorf("read local scene: %w", err)
	}
	scene, ok := DecodeEntry([]byte(data))
	return scene, ok, nil
}

func (s *SQLiteStore) Put(ctx context.Context, docID string, scene document.Scene) error {
	data, err := EncodeEntry(scene)
	if err != nil {
		return fmt.Errorf("encode local scene: %w", err)
	}
	return s.PutRaw(ctx, docID, data)
}

// PutRaw stores data verbatim; Get validates it on read.
func (s *SQLiteStore) PutRaw(ctx context.Context, docID string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_scenes (doc_id, scene, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(doc_id) DO UPDATE SET scene = excluded.scene, updated_at = excluded.updated_at`,
		docID, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write local scene: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, docID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_scenes WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("delete local scene: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
