package live

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Authorizer decides whether r may open docID. A nil Authorizer admits
// everyone.
type Authorizer func(r *http.Request, docID string) error

type HandlerOptions struct {
	OriginPatterns []string
	Authorize      Authorizer
}

// Handler upgrades /ws/files/{fileId} requests and attaches the connection
// to the hub. The role query parameter selects "editor" (default) or
// "viewer".
func Handler(hub *Hub, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID := mux.Vars(r)["fileId"]
		if docID == "" {
			http.Error(w, "missing file id", http.StatusBadRequest)
			return
		}

		if opts.Authorize != nil {
			if err := opts.Authorize(r, docID); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		role := Role(r.URL.Query().Get("role"))
		if role == "" {
			role = RoleEditor
		}
		if role != RoleEditor && role != RoleViewer {
			http.Error(w, "unknown role", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		clientID := uuid.New().String()
		client := NewClient(hub, conn, docID, clientID, role)

		if err := hub.Register(client); err != nil {
			status := websocket.StatusInternalError
			if errors.Is(err, ErrDocumentBusy) {
				status = websocket.StatusPolicyViolation
			}
			conn.Close(status, err.Error())
			return
		}

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}
