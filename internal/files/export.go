package files

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/engine"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
)

const (
	defaultExportWidth  = 1280
	defaultExportHeight = 720
	maxExportSide       = 4096
	fitPadding          = 40
)

type exportRequest struct {
	fileID string
	width  int
	height int
	fit    bool
}

func parseExportRequest(r *http.Request) (exportRequest, error) {
	req := exportRequest{
		fileID: mux.Vars(r)["fileId"],
		width:  defaultExportWidth,
		height: defaultExportHeight,
		fit:    true,
	}
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &req.width}, {"height", &req.height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxExportSide {
			return req, fmt.Errorf("%s must be between 1 and %d", p.name, maxExportSide)
		}
		*p.dst = n
	}
	if q.Get("fit") == "0" || q.Get("fit") == "false" {
		req.fit = false
	}
	return req, nil
}

// frame loads the document and compiles it without editor chrome.
func (h *Handler) frame(w http.ResponseWriter, r *http.Request) ([]render.DrawCommand, exportRequest, bool) {
	req, err := parseExportRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, req, false
	}

	scene, err := h.docs.Load(r.Context(), req.fileID)
	if err != nil {
		handleServiceError(w, err)
		return nil, req, false
	}

	st := editor.NewState(scene)
	if req.fit {
		if b, ok := engine.SceneBounds(scene.Shapes); ok {
			st.Camera = engine.FitCamera(b, float64(req.width), float64(req.height), fitPadding)
		}
	}
	style := h.style
	style.HUD = false
	return render.Compile(st, req.width, req.height, style), req, true
}

func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	if h.raster == nil {
		http.Error(w, "png export unavailable", http.StatusNotImplemented)
		return
	}
	cmds, req, ok := h.frame(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, sanitize(req.fileID)))
	if err := h.raster.WritePNG(w, cmds, req.width, req.height); err != nil {
		slog.Error("png export failed", "error", err, "file", req.fileID)
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}

func (h *Handler) ExportSVG(w http.ResponseWriter, r *http.Request) {
	cmds, req, ok := h.frame(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.svg"`, sanitize(req.fileID)))
	if err := render.WriteSVG(w, cmds, req.width, req.height); err != nil {
		slog.Error("svg export failed", "error", err, "file", req.fileID)
	}
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
