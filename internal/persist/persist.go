// Package persist connects an editing session to durable storage: a remote
// document service that is the source of truth, and a local fallback cache
// that survives reloads when the remote is unreachable.
package persist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

var (
	ErrRemoteStatus = errors.New("unexpected remote status")
)

// Remote is the document service a session loads from and saves to.
// Save is an idempotent upsert.
type Remote interface {
	Load(ctx context.Context, docID string) (document.Scene, error)
	Save(ctx context.Context, docID string, scene document.Scene) error
}

// LocalStore is the per-document fallback cache. Get reports ok=false for
// missing entries and for entries that do not decode to a valid scene.
type LocalStore interface {
	Get(ctx context.Context, docID string) (scene document.Scene, ok bool, err error)
	Put(ctx context.Context, docID string, scene document.Scene) error
	Delete(ctx context.Context, docID string) error
}

// LocalKey is the key a browser-side cache stores docID's scene under.
func LocalKey(docID string) string {
	return "nexo:scene:" + docID
}

// EncodeEntry serializes a scene for a local cache entry.
func EncodeEntry(scene document.Scene) ([]byte, error) {
	return json.Marshal(scene)
}

// DecodeEntry parses a local cache entry. Structurally invalid entries are
// treated as absent.
func DecodeEntry(data []byte) (document.Scene, bool) {
	scene, err := document.ParseScene(data)
	if err != nil {
		return document.EmptyScene(), false
	}
	return scene, true
}
