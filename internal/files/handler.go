package files

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/EvegeniyNekrasov/Nexo/internal/docstore"
	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
)

const maxDocumentSize = 4 << 20 // 4MB

type Handler struct {
	docs   persist.Remote
	raster *render.Rasterizer
	style  render.Style
}

// NewHandler serves documents from docs. raster may be nil, in which case
// PNG export answers 501.
func NewHandler(docs persist.Remote, raster *render.Rasterizer, style render.Style) *Handler {
	return &Handler{docs: docs, raster: raster, style: style}
}

// Routes registers the handler on r. r is expected to be scoped to
// /files/{fileId}.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/document", h.GetDocument).Methods("GET")
	r.HandleFunc("/document", h.PutDocument).Methods("PUT")
	r.HandleFunc("/export.png", h.ExportPNG).Methods("GET")
	r.HandleFunc("/export.svg", h.ExportSVG).Methods("GET")
}

type documentBody struct {
	Document json.RawMessage `json:"document"`
}

type documentResponse struct {
	Document document.Scene `json:"document"`
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	scene, err := h.docs.Load(r.Context(), fileID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentResponse{Document: scene})
}

func (h *Handler) PutDocument(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)

	var req documentBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	scene, err := document.ParseScene(req.Document)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.docs.Save(r.Context(), fileID, scene); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, document.ErrInvalidScene),
		errors.Is(err, document.ErrDuplicateShapeID),
		errors.Is(err, document.ErrUnknownShapeKind):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
