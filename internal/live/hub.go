package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
	"github.com/EvegeniyNekrasov/Nexo/internal/session"
)

var (
	ErrDocumentBusy = errors.New("document already has an editor")
	ErrUnknownRole  = errors.New("unknown role")
	ErrHubStopped   = errors.New("hub stopped")
)

type viewportSize struct {
	width, height int
}

// Room is one open document: its editing session and everyone watching it.
type Room struct {
	docID   string
	session *session.Session
	editor  *Client
	clients map[string]*Client // clientID -> client
	roster  *Roster

	viewport atomic.Pointer[viewportSize]
	seq      atomic.Int64
}

func NewRoom(docID string) *Room {
	return &Room{
		docID:   docID,
		clients: make(map[string]*Client),
		roster:  NewRoster(),
	}
}

func (r *Room) setViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.viewport.Store(&viewportSize{width: width, height: height})
}

// frameMessage compiles st for the room's viewport. It returns nil until a
// client has reported its canvas size.
func (r *Room) frameMessage(st editor.State, style render.Style) *Message {
	vp := r.viewport.Load()
	if vp == nil {
		return nil
	}
	msg, err := newMessage(TypeFrame, r.docID, FramePayload{
		Width:     vp.width,
		Height:    vp.height,
		Tool:      string(st.Tool),
		Zoom:      st.Camera.Zoom,
		Selection: st.Selection.ShapeID,
		CanUndo:   st.History.CanUndo(),
		CanRedo:   st.History.CanRedo(),
		Commands:  render.Compile(st, vp.width, vp.height, style),
	})
	if err != nil {
		slog.Error("marshal frame", "error", err, "doc", r.docID)
		return nil
	}
	msg.Seq = r.seq.Add(1)
	return msg
}

type HubConfig struct {
	// Session is the template for every document session. OnChange and
	// OnStatus are overwritten by the hub.
	Session session.Deps
	Style   render.Style
	Logger  *slog.Logger
}

type joinRequest struct {
	client *Client
	result chan error
}

type Hub struct {
	cfg    HubConfig
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*Room // docID -> room

	register   chan joinRequest
	unregister chan *Client
	stop       chan struct{}
	stopped    chan struct{}
	stopOnce   sync.Once
}

func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		rooms:      make(map[string]*Room),
		register:   make(chan joinRequest),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case req := <-h.register:
			req.result <- h.addClient(ctx, req.client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			h.closeAll()
			return
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Stop closes every room and waits for Run to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.stopped
}

// Register joins client to its document's room, opening the document if it
// is not open yet. Only one editor may be connected per document.
func (h *Hub) Register(client *Client) error {
	req := joinRequest{client: client, result: make(chan error, 1)}
	select {
	case h.register <- req:
	case <-h.stopped:
		return ErrHubStopped
	}
	return <-req.result
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Rooms reports how many documents are open.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) addClient(ctx context.Context, client *Client) error {
	if client.Role != RoleEditor && client.Role != RoleViewer {
		return fmt.Errorf("role %q: %w", client.Role, ErrUnknownRole)
	}

	h.mu.Lock()
	room, ok := h.rooms[client.DocID]
	if ok && client.Role == RoleEditor && room.editor != nil {
		h.mu.Unlock()
		return ErrDocumentBusy
	}
	if !ok {
		var err error
		room, err = h.openRoom(ctx, client.DocID)
		if err != nil {
			h.mu.Unlock()
			return err
		}
		h.rooms[client.DocID] = room
	}
	room.clients[client.ClientID] = client
	room.roster.Add(client.ClientID, client.Role)
	if client.Role == RoleEditor {
		room.editor = client
	}
	client.room = room
	h.mu.Unlock()

	welcome, err := newMessage(TypeWelcome, room.docID, WelcomePayload{
		ClientID:  client.ClientID,
		SessionID: room.session.ID(),
		DocID:     room.docID,
		Role:      client.Role,
		Status:    room.session.Status(),
	})
	if err == nil {
		client.Send(welcome)
	}
	if stateMsg := room.roster.StateMessage(room.docID); stateMsg != nil {
		client.Send(stateMsg)
	}
	if frame := room.frameMessage(room.session.State(), h.cfg.Style); frame != nil {
		client.Send(frame)
	}

	if joinMsg, err := newMessage(TypePresenceJoin, room.docID, PresenceJoinPayload{
		ClientID: client.ClientID,
		Role:     client.Role,
	}); err == nil {
		h.broadcastToRoom(room.docID, joinMsg, client.ClientID)
	}

	h.logger.Info("client joined", "client", client.ClientID, "doc", client.DocID, "role", client.Role)
	return nil
}

// openRoom must be called with h.mu held.
func (h *Hub) openRoom(ctx context.Context, docID string) (*Room, error) {
	room := NewRoom(docID)

	deps := h.cfg.Session
	deps.Logger = h.logger
	deps.OnChange = func(st editor.State) {
		if frame := room.frameMessage(st, h.cfg.Style); frame != nil {
			h.broadcastToRoom(docID, frame, "")
		}
	}
	deps.OnStatus = func(status persist.SaveStatus) {
		if msg, err := newMessage(TypeStatus, docID, StatusPayload{Status: status}); err == nil {
			h.broadcastToRoom(docID, msg, "")
		}
	}

	sess, err := session.Open(context.WithoutCancel(ctx), docID, deps)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	room.session = sess
	return room, nil
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DocID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	room.roster.Remove(client.ClientID)
	if room.editor == client {
		room.editor = nil
	}

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DocID)
	}
	h.mu.Unlock()

	if empty {
		// Outside the lock: the session goroutine may be broadcasting.
		room.session.Close()
		h.logger.Info("document closed", "doc", client.DocID)
		return
	}

	if leaveMsg, err := newMessage(TypePresenceLeave, room.docID, PresenceLeavePayload{
		ClientID: client.ClientID,
	}); err == nil {
		h.broadcastToRoom(room.docID, leaveMsg, "")
	}

	h.logger.Info("client left", "client", client.ClientID, "doc", client.DocID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	for _, room := range rooms {
		for _, c := range room.clients {
			c.close()
		}
	}
	h.mu.Unlock()

	for _, room := range rooms {
		room.session.Close()
	}
	h.logger.Info("hub stopped", "rooms", len(rooms))
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeInput:
		h.handleInput(sender, msg)
	default:
		h.logger.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.SendError(fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (h *Hub) broadcastToRoom(docID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[docID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
