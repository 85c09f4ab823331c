package persist

import (
	"context"
	"sync"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

// MemoryStore is an in-process LocalStore holding raw encoded entries.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, docID string) (document.Scene, bool, error) {
	m.mu.Lock()
	data, ok := m.entries[docID]
	m.mu.Unlock()
	if !ok {
		return document.EmptyScene(), false, nil
	}
	scene, ok := DecodeEntry(data)
	return scene, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, docID string, scene document.Scene) error {
	data, err := EncodeEntry(scene)
	if err != nil {
		return err
	}
	m.PutRaw(docID, data)
	return nil
}

func (m *MemoryStore) PutRaw(docID string, data []byte) {
	m.mu.Lock()
	m.entries[docID] = append([]byte(nil), data...)
	m.mu.Unlock()
}

func (m *MemoryStore) Delete(_ context.Context, docID string) error {
	m.mu.Lock()
	delete(m.entries, docID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close is a no-op; the entries live as long as the store.
func (m *MemoryStore) Close() error { return nil }
