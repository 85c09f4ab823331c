// Package session mounts an editor on a document: it loads the scene, runs
// input through the controller on a single goroutine and fans scene changes
// out to persistence.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
	"github.com/EvegeniyNekrasov/Nexo/internal/editor"
	"github.com/EvegeniyNekrasov/Nexo/internal/history"
	"github.com/EvegeniyNekrasov/Nexo/internal/input"
	"github.com/EvegeniyNekrasov/Nexo/internal/persist"
	"github.com/EvegeniyNekrasov/Nexo/internal/render"
	"github.com/EvegeniyNekrasov/Nexo/internal/typeid"
)

var (
	ErrClosed         = errors.New("session closed")
	ErrMissingDocID   = errors.New("document id is required")
	ErrInputQueueFull = errors.New("input queue full")
)

const (
	eventQueueSize = 256
	maxBuffered    = 1024
)

// Deps are the collaborators a session is built from. Only Remote or Local
// is needed to persist anything; with neither the session edits in memory.
type Deps struct {
	Remote   persist.Remote
	Local    persist.LocalStore
	Autosave persist.AutosaveConfig

	HistoryLimit    int
	ZoomSensitivity float64
	Mac             bool
	NewShapeID      func(document.ShapeKind) string
	Style           *render.Style
	Logger          *slog.Logger
	// FlushOnClose sends a save still in its debounce window before Close
	// returns instead of dropping it.
	FlushOnClose bool

	// OnChange runs on the session goroutine after every transition and
	// after the initial load.
	OnChange func(editor.State)
	// OnStatus reports remote save status changes.
	OnStatus func(persist.SaveStatus)
}

type loadResult struct {
	scene  document.Scene
	source persist.LoadSource
}

// Session is one mounted editor. Its methods are safe for concurrent use;
// all state transitions happen on the session's own goroutine.
type Session struct {
	id     string
	docID  string
	logger *slog.Logger
	style  render.Style

	bridge       *persist.Bridge
	store        *editor.Store
	ctrl         *input.Controller
	onChange     func(editor.State)
	flushOnClose bool

	events   chan input.Event
	loads    chan loadResult
	loadedCh chan struct{}
	done     chan struct{}
	loopDone chan struct{}

	closeOnce sync.Once
	cancelled atomic.Bool
	snapshot  atomic.Pointer[editor.State]
	viewport  atomic.Pointer[input.Viewport]

	// Owned by the session goroutine.
	loaded   bool
	dirty    bool
	buffered []input.Event
}

// Open mounts an editor on docID and starts loading it. The returned session
// accepts input immediately; events submitted before the load completes are
// replayed on top of the loaded scene.
func Open(ctx context.Context, docID string, deps Deps) (*Session, error) {
	if docID == "" {
		return nil, ErrMissingDocID
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	style := render.DefaultStyle()
	if deps.Style != nil {
		style = *deps.Style
	}
	limit := deps.HistoryLimit
	if limit <= 0 {
		limit = history.DefaultLimit
	}

	s := &Session{
		id:           typeid.NewSessionID(),
		docID:        docID,
		style:        style,
		onChange:     deps.OnChange,
		flushOnClose: deps.FlushOnClose,
		events:       make(chan input.Event, eventQueueSize),
		loads:        make(chan loadResult, 1),
		loadedCh:     make(chan struct{}),
		done:         make(chan struct{}),
		loopDone:     make(chan struct{}),
	}
	s.logger = logger.With("session", s.id, "doc", docID)

	autosave := deps.Autosave
	autosave.Logger = s.logger
	autosave.OnStatus = deps.OnStatus
	s.bridge = persist.NewBridge(docID, deps.Remote, deps.Local, autosave)

	s.store = editor.NewStore(editor.NewStateWithHistory(document.EmptyScene(), history.NewWithLimit(limit)))
	s.store.Subscribe(s.onTransition)
	s.ctrl = input.NewController(s.store, input.Options{
		ZoomSensitivity: deps.ZoomSensitivity,
		Mac:             deps.Mac,
		NewShapeID:      deps.NewShapeID,
	})
	s.publish()

	go s.load(ctx)
	go s.loop()

	s.logger.Debug("session opened")
	return s, nil
}

func (s *Session) ID() string         { return s.id }
func (s *Session) DocumentID() string { return s.docID }

// State returns the latest immutable state snapshot.
func (s *Session) State() editor.State {
	return *s.snapshot.Load()
}

// Viewport returns the canvas geometry last reported by a resize event.
func (s *Session) Viewport() input.Viewport {
	if vp := s.viewport.Load(); vp != nil {
		return *vp
	}
	return input.Viewport{DPR: 1}
}

func (s *Session) Status() persist.SaveStatus {
	return s.bridge.Status()
}

// Loaded is closed once the initial load has been applied.
func (s *Session) Loaded() <-chan struct{} {
	return s.loadedCh
}

// Frame compiles the current state for a width x height surface.
func (s *Session) Frame(width, height int) []render.DrawCommand {
	return render.Compile(s.State(), width, height, s.style)
}

// Submit queues ev for the session goroutine.
func (s *Session) Submit(ev input.Event) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrClosed
	default:
		return ErrInputQueueFull
	}
}

// Close tears the session down: the pending save is dropped, unless
// FlushOnClose is set, and a load still in flight will be ignored when it
// returns. Close is idempotent and waits for the session goroutine to exit.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancelled.Store(true)
		close(s.done)
		<-s.loopDone
		if s.flushOnClose {
			if err := s.bridge.Flush(context.Background()); err != nil {
				s.logger.Warn("final save failed", "error", err)
			}
		}
		s.bridge.Close()
		s.logger.Debug("session closed")
	})
}

func (s *Session) load(ctx context.Context) {
	scene, source := s.bridge.Load(ctx)
	if s.cancelled.Load() {
		s.logger.Debug("discarding load for closed session", "source", source)
		return
	}
	select {
	case s.loads <- loadResult{scene: scene, source: source}:
	case <-s.done:
	}
}

func (s *Session) loop() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.done:
			return
		case res := <-s.loads:
			if s.cancelled.Load() {
				return
			}
			s.applyLoad(res)
		case ev := <-s.events:
			if !s.loaded {
				s.buffer(ev)
				continue
			}
			s.handle(ev)
			s.notifyIfChanged()
		}
	}
}

// applyLoad installs the first load result and replays buffered input.
// Later results are ignored.
func (s *Session) applyLoad(res loadResult) {
	if s.loaded {
		return
	}
	s.store.Dispatch(editor.LoadScene{Scene: res.scene})
	s.loaded = true
	close(s.loadedCh)
	s.logger.Info("document loaded", "source", res.source, "shapes", res.scene.Len())

	// A scene recovered from the local cache never reached the remote.
	if res.source == persist.SourceLocal {
		s.bridge.SceneChanged(context.Background(), res.scene)
	}

	pending := s.buffered
	s.buffered = nil
	for _, ev := range pending {
		s.handle(ev)
	}
	s.notify()
}

func (s *Session) buffer(ev input.Event) {
	if len(s.buffered) >= maxBuffered {
		s.logger.Warn("dropping input received before load", "type", ev.Type)
		return
	}
	s.buffered = append(s.buffered, ev)
}

func (s *Session) handle(ev input.Event) {
	if ev.Type == input.EventClear {
		s.clear()
		return
	}
	if err := s.ctrl.Handle(ev); err != nil {
		s.logger.Debug("ignoring input", "error", err)
		return
	}
	if ev.Type == input.EventResize {
		vp := s.ctrl.Viewport()
		s.viewport.Store(&vp)
		s.dirty = true
	}
}

// clear drops the local cache entry and starts over with an empty scene.
func (s *Session) clear() {
	s.bridge.ClearLocal(context.Background())
	s.store.Dispatch(editor.LoadScene{Scene: document.EmptyScene()})
}

// onTransition runs synchronously inside Store.Dispatch. One input event may
// dispatch several actions; listeners hear about them once, from notifyIfChanged.
func (s *Session) onTransition(prev, next editor.State, _ editor.Action) {
	s.publish()
	if !s.loaded {
		return
	}
	if !prev.Scene.Equal(next.Scene) {
		s.bridge.SceneChanged(context.Background(), next.Scene)
	}
	s.dirty = true
}

func (s *Session) publish() {
	st := s.store.State()
	s.snapshot.Store(&st)
}

// notifyIfChanged notifies listeners if the last event changed anything.
func (s *Session) notifyIfChanged() {
	if s.dirty {
		s.notify()
	}
}

func (s *Session) notify() {
	s.dirty = false
	if s.onChange != nil {
		s.onChange(s.store.State())
	}
}
