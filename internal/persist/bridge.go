package persist

import (
	"context"
	"log/slog"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

// LoadSource records where an opened document came from.
type LoadSource string

const (
	SourceRemote LoadSource = "remote"
	SourceLocal  LoadSource = "local"
	SourceEmpty  LoadSource = "empty"
)

// Bridge is a session's view of persistence for a single document.
type Bridge struct {
	docID  string
	remote Remote
	local  LocalStore
	saver  *Autosaver
	logger *slog.Logger
}

// NewBridge wires remote and local for docID. Either may be nil: a nil
// remote disables loading and autosave, a nil local disables the fallback.
func NewBridge(docID string, remote Remote, local LocalStore, cfg AutosaveConfig) *Bridge {
	cfg.defaults()
	b := &Bridge{
		docID:  docID,
		remote: remote,
		local:  local,
		logger: cfg.Logger.With("doc", docID),
	}
	if remote != nil {
		b.saver = NewAutosaver(remote, docID, cfg)
	}
	return b
}

func (b *Bridge) DocumentID() string { return b.docID }

// Load never fails: it tries the remote, then the local cache, then falls
// back to an empty scene.
func (b *Bridge) Load(ctx context.Context) (document.Scene, LoadSource) {
	if b.remote != nil {
		scene, err := b.remote.Load(ctx, b.docID)
		if err == nil {
			return scene, SourceRemote
		}
		b.logger.Warn("remote load failed", "error", err)
	}

	if b.local != nil {
		scene, ok, err := b.local.Get(ctx, b.docID)
		if err != nil {
			b.logger.Warn("local cache read failed", "error", err)
		}
		if ok {
			return scene, SourceLocal
		}
	}
	return document.EmptyScene(), SourceEmpty
}

// SceneChanged writes scene to the local cache and schedules a remote save.
// Local write failures are logged and otherwise ignored.
func (b *Bridge) SceneChanged(ctx context.Context, scene document.Scene) {
	if b.local != nil {
		if err := b.local.Put(ctx, b.docID, scene); err != nil {
			b.logger.Debug("local cache write failed", "error", err)
		}
	}
	if b.saver != nil {
		b.saver.Schedule(scene)
	}
}

// ClearLocal removes the local cache entry for the document.
func (b *Bridge) ClearLocal(ctx context.Context) {
	if b.local == nil {
		return
	}
	if err := b.local.Delete(ctx, b.docID); err != nil {
		b.logger.Debug("local cache delete failed", "error", err)
	}
}

func (b *Bridge) Status() SaveStatus {
	if b.saver == nil {
		return StatusUnsaved
	}
	return b.saver.Status()
}

// Flush pushes a debounced save to the remote without waiting for its window.
func (b *Bridge) Flush(ctx context.Context) error {
	if b.saver == nil {
		return nil
	}
	return b.saver.Flush(ctx)
}

// Close cancels any pending save.
func (b *Bridge) Close() {
	if b.saver != nil {
		b.saver.Cancel()
	}
}

// Wait blocks until in-flight saves have returned.
func (b *Bridge) Wait() {
	if b.saver != nil {
		b.saver.Wait()
	}
}
