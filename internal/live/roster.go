package live

import (
	"log/slog"
	"sync"
)

// Roster tracks who is connected to a document and in which role.
type Roster struct {
	mu      sync.RWMutex
	clients map[string]Role // clientID -> role
}

func NewRoster() *Roster {
	return &Roster{clients: make(map[string]Role)}
}

func (r *Roster) Add(clientID string, role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[clientID] = role
}

func (r *Roster) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, clientID)
}

func (r *Roster) GetAll() map[string]Role {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Role, len(r.clients))
	for k, v := range r.clients {
		result[k] = v
	}
	return result
}

func (r *Roster) StateMessage(docID string) *Message {
	msg, err := newMessage(TypePresenceState, docID, PresenceStatePayload{Clients: r.GetAll()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return msg
}
