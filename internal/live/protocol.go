package live

import (
	"encoding/json"

	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
)

type Message struct {
	Type     string          `json:"type"`
	DocID    string          `json:"docId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type Role string

const (
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

const (
	// Client -> server
	TypeInput = "input" // payload: input.Event

	// Server -> client
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeStatus  = "status"
	TypeError   = "error"

	TypePresenceState = "presence.state"
	TypePresenceJoin  = "presence.join"
	TypePresenceLeave = "presence.leave"
)

type WelcomePayload struct {
	ClientID  string             `json:"clientId"`
	SessionID string             `json:"sessionId"`
	DocID     string             `json:"docId"`
	Role      Role               `json:"role"`
	Status    persist.SaveStatus `json:"status"`
}

// FramePayload carries a compiled frame plus the UI state a thin client
// needs for its toolbar.
type FramePayload struct {
	Width     int                  `json:"width"`
	Height    int                  `json:"height"`
	Tool      string               `json:"tool"`
	Zoom      float64              `json:"zoom"`
	Selection string               `json:"selection,omitempty"`
	CanUndo   bool                 `json:"canUndo"`
	CanRedo   bool                 `json:"canRedo"`
	Commands  []render.DrawCommand `json:"commands"`
}

type StatusPayload struct {
	Status persist.SaveStatus `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type PresenceStatePayload struct {
	Clients map[string]Role `json:"clients"`
}

type PresenceJoinPayload struct {
	ClientID string `json:"clientId"`
	Role     Role   `json:"role"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
}

func newMessage(typ, docID string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, DocID: docID, Payload: data}, nil
}
