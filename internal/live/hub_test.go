package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/EvegeniyNekrasov/Nexo/internal/input"
	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
	"github.com/EvegeniyNekrasov/Nexo/internal/session"
)

func newTestServer(t *testing.T, authorize Authorizer) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(HubConfig{
		Session: session.Deps{Local: persist.NewMemoryStore()},
		Style:   render.DefaultStyle(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := mux.NewRouter()
	r.HandleFunc("/ws/files/{fileId}", Handler(hub, HandlerOptions{Authorize: authorize}))
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		cancel()
		hub.Stop()
	})
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(ctx context.Context, conn *websocket.Conn) (*Message, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// readUntil reads messages until one of type typ satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(*Message) bool) *Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		msg, err := readMessage(ctx, conn)
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if msg.Type == typ && (match == nil || match(msg)) {
			return msg
		}
	}
}

func sendInput(t *testing.T, conn *websocket.Conn, ev input.Event) {
	t.Helper()
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(Message{Type: TypeInput, Payload: payload})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func decodeFrame(t *testing.T, msg *Message) FramePayload {
	t.Helper()
	var f FramePayload
	if err := json.Unmarshal(msg.Payload, &f); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return f
}

func shapeCount(f FramePayload) int {
	n := 0
	for _, c := range f.Commands {
		if c.Op == render.OpFillRect {
			n++
		}
	}
	return n
}

func TestEditorReceivesFrames(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	conn := dial(t, srv, "/ws/files/doc-1")

	welcome := readUntil(t, conn, TypeWelcome, nil)
	var w WelcomePayload
	json.Unmarshal(welcome.Payload, &w)
	if w.DocID != "doc-1" || w.Role != RoleEditor || w.SessionID == "" {
		t.Fatalf("unexpected welcome %+v", w)
	}
	if hub.Rooms() != 1 {
		t.Fatalf("rooms = %d", hub.Rooms())
	}

	sendInput(t, conn, input.Event{Type: input.EventResize, DPR: 1, Width: 640, Height: 480})
	first := decodeFrame(t, readUntil(t, conn, TypeFrame, nil))
	if first.Width != 640 || first.Height != 480 || first.Tool != "select" {
		t.Fatalf("unexpected frame header %+v", first)
	}

	for _, ev := range []input.Event{
		{Type: input.EventTool, Tool: "rect"},
		{Type: input.EventPointerDown, ClientX: 300, ClientY: 200},
		{Type: input.EventPointerMove, ClientX: 340, ClientY: 230},
		{Type: input.EventPointerUp, ClientX: 340, ClientY: 230},
	} {
		sendInput(t, conn, ev)
	}
	msg := readUntil(t, conn, TypeFrame, func(m *Message) bool {
		f := decodeFrame(t, m)
		return f.CanUndo && shapeCount(f) == 1
	})
	if msg.Seq == 0 {
		t.Fatal("frames should carry a sequence number")
	}
}

func TestSecondEditorIsRejected(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	first := dial(t, srv, "/ws/files/doc-1")
	readUntil(t, first, TypeWelcome, nil)

	second := dial(t, srv, "/ws/files/doc-1")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := readMessage(ctx, second)
	if websocket.CloseStatus(err) != websocket.StatusPolicyViolation {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}

func TestViewerIsReadOnly(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	editor := dial(t, srv, "/ws/files/doc-1")
	readUntil(t, editor, TypeWelcome, nil)
	sendInput(t, editor, input.Event{Type: input.EventResize, DPR: 1, Width: 320, Height: 240})
	readUntil(t, editor, TypeFrame, nil)

	viewer := dial(t, srv, "/ws/files/doc-1?role=viewer")
	readUntil(t, viewer, TypeWelcome, nil)
	// A viewer joining a sized room gets a frame straight away.
	readUntil(t, viewer, TypeFrame, nil)

	join := readUntil(t, editor, TypePresenceJoin, nil)
	var p PresenceJoinPayload
	json.Unmarshal(join.Payload, &p)
	if p.Role != RoleViewer {
		t.Fatalf("join role = %s", p.Role)
	}

	sendInput(t, viewer, input.Event{Type: input.EventUndo})
	readUntil(t, viewer, TypeError, nil)

	sendInput(t, editor, input.Event{Type: input.EventResetView})
	readUntil(t, viewer, TypeFrame, nil)
}

func TestRoomClosesWhenEmpty(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	conn := dial(t, srv, "/ws/files/doc-1")
	readUntil(t, conn, TypeWelcome, nil)

	conn.Close(websocket.StatusNormalClosure, "")
	deadline := time.Now().Add(2 * time.Second)
	for hub.Rooms() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("room not closed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The document can be reopened by a new editor.
	again := dial(t, srv, "/ws/files/doc-1")
	readUntil(t, again, TypeWelcome, nil)
}

func TestHandlerRejectsUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t, func(r *http.Request, docID string) error {
		if r.URL.Query().Get("token") != "ok" {
			return errors.New("nope")
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/files/doc-1", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	conn := dial(t, srv, "/ws/files/doc-1?token=ok")
	readUntil(t, conn, TypeWelcome, nil)
}

func TestHandlerRejectsUnknownRole(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/ws/files/doc-1?role=admin")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
