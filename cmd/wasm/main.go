//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/input"
	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
	"github.com/EvegeniyNekrasov/Nexo/internal/session"
)

var (
	sess     *session.Session
	onChange js.Value
)

func main() {
	nexoEditor := js.Global().Get("Object").New()

	// --- Lifecycle ---
	nexoEditor.Set("open", js.FuncOf(open))
	nexoEditor.Set("close", js.FuncOf(closeSession))
	nexoEditor.Set("onChange", js.FuncOf(setOnChange))

	// --- Commands (frontend → editor) ---
	nexoEditor.Set("dispatch", js.FuncOf(dispatch))

	// --- Queries (frontend ← editor) ---
	nexoEditor.Set("render", js.FuncOf(renderFrame))
	nexoEditor.Set("getState", js.FuncOf(getState))
	nexoEditor.Set("getScene", js.FuncOf(getScene))

	// Register on global scope
	js.Global().Set("nexoEditor", nexoEditor)

	// Signal that WASM is ready
	js.Global().Set("nexoWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

// open(docId, apiBase, token?) mounts an editor on docId, replacing any
// session already open.
func open(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("usage: open(docId, apiBase, token?)")
	}
	docID := args[0].String()
	apiBase := args[1].String()

	var opts []persist.HTTPOption
	if len(args) > 2 && args[2].Type() == js.TypeString {
		opts = append(opts, persist.WithToken(args[2].String()))
	}

	if sess != nil {
		sess.Close()
		sess = nil
	}

	s, err := session.Open(context.Background(), docID, session.Deps{
		Remote:   persist.NewHTTPRemote(apiBase, opts...),
		Local:    localStorageStore{storage: js.Global().Get("localStorage")},
		Mac:      isMac(),
		OnChange: notifyChange,
	})
	if err != nil {
		return errorResult(err.Error())
	}
	sess = s
	return js.ValueOf(map[string]interface{}{"ok": true, "sessionId": s.ID()})
}

func closeSession(this js.Value, args []js.Value) interface{} {
	if sess != nil {
		sess.Close()
		sess = nil
	}
	return nil
}

// onChange(fn) registers a callback invoked after every state change.
func setOnChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		onChange = js.Undefined()
		return nil
	}
	onChange = args[0]
	return nil
}

func notifyChange(editor.State) {
	if onChange.Type() == js.TypeFunction {
		onChange.Invoke()
	}
}

// dispatch(eventJSON) queues one input event.
func dispatch(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("no open session")
	}
	if len(args) < 1 {
		return errorResult("missing event JSON")
	}
	var ev input.Event
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return errorResult(err.Error())
	}
	if err := sess.Submit(ev); err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// render(width, height) returns the frame as a JSON array of draw commands.
func renderFrame(this js.Value, args []js.Value) interface{} {
	if sess == nil || len(args) < 2 {
		return js.ValueOf("[]")
	}
	out, err := render.DrawCommandsToJSON(sess.Frame(args[0].Int(), args[1].Int()))
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(out)
}

func getState(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return js.Null()
	}
	st := sess.State()
	loaded := false
	select {
	case <-sess.Loaded():
		loaded = true
	default:
	}
	return js.ValueOf(map[string]interface{}{
		"docId":     sess.DocumentID(),
		"tool":      string(st.Tool),
		"zoom":      st.Camera.Zoom,
		"panX":      st.Camera.PanX,
		"panY":      st.Camera.PanY,
		"selection": st.Selection.ShapeID,
		"spaceHeld": st.SpaceHeld,
		"canUndo":   st.History.CanUndo(),
		"canRedo":   st.History.CanRedo(),
		"status":    string(sess.Status()),
		"loaded":    loaded,
	})
}

func getScene(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return js.Null()
	}
	data, err := json.Marshal(sess.State().Scene)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(string(data))
}

func isMac() bool {
	nav := js.Global().Get("navigator")
	if nav.IsUndefined() {
		return false
	}
	return strings.Contains(strings.ToLower(nav.Get("platform").String()), "mac")
}
