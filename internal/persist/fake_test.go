package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

var errOffline = errors.New("offline")

// fakeRemote records saves and fails the first failSaves calls.
type fakeRemote struct {
	mu        sync.Mutex
	docs      map[string]document.Scene
	loadErr   error
	failSaves int
	saves     []document.Scene
	attempts  int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{docs: make(map[string]document.Scene)}
}

func (f *fakeRemote) Load(_ context.Context, docID string) (document.Scene, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return document.Scene{}, f.loadErr
	}
	scene, ok := f.docs[docID]
	if !ok {
		return document.Scene{}, ErrRemoteStatus
	}
	return scene, nil
}

func (f *fakeRemote) Save(_ context.Context, docID string, scene document.Scene) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failSaves > 0 {
		f.failSaves--
		return errOffline
	}
	f.docs[docID] = scene
	f.saves = append(f.saves, scene)
	return nil
}

func (f *fakeRemote) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeRemote) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeRemote) lastSave() document.Scene {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func oneRect(id string) document.Scene {
	return document.EmptyScene().WithShape(document.Shape{
		ID: id, Kind: document.ShapeKindRect, X: 1, Y: 2, W: 3, H: 4,
	})
}
