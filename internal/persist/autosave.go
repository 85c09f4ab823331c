package persist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

const (
	DefaultDebounce    = 500 * time.Millisecond
	DefaultRetries     = 3
	DefaultBackoff     = 250 * time.Millisecond
	DefaultSaveTimeout = 10 * time.Second
)

// SaveStatus reports whether the latest scene has reached the remote.
type SaveStatus string

const (
	StatusSaved   SaveStatus = "saved"
	StatusPending SaveStatus = "pending"
	StatusUnsaved SaveStatus = "unsaved"
)

type AutosaveConfig struct {
	Debounce    time.Duration
	Retries     int // extra attempts after a failure; negative disables retry
	Backoff     time.Duration
	SaveTimeout time.Duration
	Logger      *slog.Logger
	// OnStatus is called, outside any lock, whenever the status changes.
	OnStatus func(SaveStatus)
}

func (c *AutosaveConfig) defaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	switch {
	case c.Retries == 0:
		c.Retries = DefaultRetries
	case c.Retries < 0:
		c.Retries = 0
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = DefaultSaveTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Autosaver debounces remote saves for one document. Each Schedule restarts
// the debounce window and supersedes any earlier pending save or retry; only
// the most recent scene is ever sent.
type Autosaver struct {
	remote Remote
	docID  string
	cfg    AutosaveConfig
	done   chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending document.Scene
	status  SaveStatus
	closed  bool
	wg      sync.WaitGroup
}

func NewAutosaver(remote Remote, docID string, cfg AutosaveConfig) *Autosaver {
	cfg.defaults()
	return &Autosaver{
		remote: remote,
		docID:  docID,
		cfg:    cfg,
		done:   make(chan struct{}),
		status: StatusSaved,
	}
}

// Schedule queues scene to be saved once the debounce window elapses.
func (a *Autosaver) Schedule(scene document.Scene) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.gen++
	gen := a.gen
	a.pending = scene
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.cfg.Debounce, func() { a.fire(gen) })
	changed := a.setStatusLocked(StatusPending)
	a.mu.Unlock()

	a.notify(changed, StatusPending)
}

func (a *Autosaver) Status() SaveStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Cancel drops the pending save and stops any retry loop. A request already
// on the wire is allowed to finish. Cancel is idempotent.
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	close(a.done)
	a.mu.Unlock()
}

// Flush sends a save still waiting out its debounce window now, in a single
// attempt bounded by ctx. It returns nil when nothing was pending. A save
// already past its window is left to its own retry loop.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.closed || a.timer == nil || !a.timer.Stop() {
		a.mu.Unlock()
		return nil
	}
	a.timer = nil
	gen := a.gen
	scene := a.pending
	a.wg.Add(1)
	a.mu.Unlock()
	defer a.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.SaveTimeout)
	defer cancel()
	if err := a.remote.Save(ctx, a.docID, scene); err != nil {
		a.finish(gen, StatusUnsaved)
		return err
	}
	a.finish(gen, StatusSaved)
	return nil
}

// Wait blocks until every started save attempt has returned. Call it after
// Cancel.
func (a *Autosaver) Wait() {
	a.wg.Wait()
}

func (a *Autosaver) fire(gen uint64) {
	a.mu.Lock()
	if a.closed || gen != a.gen {
		a.mu.Unlock()
		return
	}
	scene := a.pending
	a.wg.Add(1)
	a.mu.Unlock()
	defer a.wg.Done()

	log := a.cfg.Logger.With("doc", a.docID)
	backoff := a.cfg.Backoff
	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.SaveTimeout)
		err := a.remote.Save(ctx, a.docID, scene)
		cancel()
		if err == nil {
			a.finish(gen, StatusSaved)
			return
		}

		if attempt >= a.cfg.Retries {
			log.Warn("autosave failed", "error", err, "attempts", attempt+1)
			a.finish(gen, StatusUnsaved)
			return
		}
		log.Debug("autosave attempt failed", "error", err, "attempt", attempt+1, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-a.done:
			return
		}
		if !a.current(gen) {
			return
		}
	}
}

func (a *Autosaver) current(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.closed && gen == a.gen
}

// finish records the outcome of save gen unless a newer scene has been
// scheduled since.
func (a *Autosaver) finish(gen uint64, status SaveStatus) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	changed := a.setStatusLocked(status)
	a.mu.Unlock()

	a.notify(changed, status)
}

func (a *Autosaver) setStatusLocked(s SaveStatus) bool {
	if a.status == s {
		return false
	}
	a.status = s
	return true
}

func (a *Autosaver) notify(changed bool, s SaveStatus) {
	if changed && a.cfg.OnStatus != nil {
		a.cfg.OnStatus(s)
	}
}
