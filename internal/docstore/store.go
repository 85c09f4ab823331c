// Package docstore keeps one scene document per file in Postgres. It is the
// server side of the editor's load/save contract.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

var ErrNotFound = errors.New("document not found")

// DBTX is the subset of pgx used here; *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

const (
	selectDocument = `SELECT document FROM file_documents WHERE file_id = $1`

	upsertDocument = `
INSERT INTO file_documents (file_id, document, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (file_id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`

	insertDocumentIfAbsent = `
INSERT INTO file_documents (file_id, document, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (file_id) DO NOTHING`
)

func (s *Store) Load(ctx context.Context, fileID string) (document.Scene, error) {
	var data []byte
	err := s.db.QueryRow(ctx, selectDocument, fileID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Scene{}, ErrNotFound
		}
		return document.Scene{}, fmt.Errorf("get document: %w", err)
	}

	scene, err := document.ParseScene(data)
	if err != nil {
		return document.Scene{}, fmt.Errorf("decode document %s: %w", fileID, err)
	}
	return scene, nil
}

// Save replaces the file's document, creating it if needed.
func (s *Store) Save(ctx context.Context, fileID string, scene document.Scene) error {
	data, err := encode(scene)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertDocument, fileID, data); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Seed stores scene for fileID unless a document already exists. It reports
// whether a row was written.
func (s *Store) Seed(ctx context.Context, fileID string, scene document.Scene) (bool, error) {
	data, err := encode(scene)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, insertDocumentIfAbsent, fileID, data)
	if err != nil {
		return false, fmt.Errorf("seed document: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func encode(scene document.Scene) ([]byte, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(scene)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}
