package editor

import (
	"sync"
	"time"

	"github.com/hollandm/pocketroom/internal/capsule"
)

// Scheduler runs a function once after a delay and hands back a cancel
// function. The seam exists so tests can drive the debounce without real
// timers.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// timerScheduler is the production Scheduler backed by time.AfterFunc.
type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Autosaver debounces draft changes into silent saves. Each Change restarts
// the delay; when it expires the latest draft is validated and committed only
// if valid. Validation failures never surface; the user keeps typing.
type Autosaver struct {
	editor *Editor
	delay  time.Duration
	sched  Scheduler

	// onSave, if set, observes every committed capsule (autosave indicator,
	// draft-id adoption in the wizard).
	onSave func(capsule.Capsule)

	mu      sync.Mutex
	pending *Draft
	cancel  func()
	lastID  string
}

// NewAutosaver creates an Autosaver committing through the given editor after
// the configured delay. onSave may be nil.
func NewAutosaver(e *Editor, delay time.Duration, onSave func(capsule.Capsule)) *Autosaver {
	return newAutosaver(e, delay, timerScheduler{}, onSave)
}

func newAutosaver(e *Editor, delay time.Duration, sched Scheduler, onSave func(capsule.Capsule)) *Autosaver {
	return &Autosaver{
		editor: e,
		delay:  delay,
		sched:  sched,
		onSave: onSave,
	}
}

// Change records the latest draft state and restarts the debounce delay,
// cancelling any pending commit.
func (a *Autosaver) Change(d Draft) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		a.cancel()
	}
	a.pending = &d
	a.cancel = a.sched.Schedule(a.delay, a.commit)
}

// commit saves the pending draft if it validates; failures are dropped.
func (a *Autosaver) commit() {
	a.mu.Lock()
	d := a.takePending()
	a.mu.Unlock()
	if d == nil {
		return
	}

	c, err := a.editor.Save(*d)
	if err != nil {
		return
	}
	a.adopt(c)
}

// Flush cancels any pending commit and saves the latest draft now, surfacing
// validation errors. This is the manual-save path for hosts that also run
// autosave: the shared editor mutex keeps the two from interleaving.
func (a *Autosaver) Flush() (capsule.Capsule, error) {
	a.mu.Lock()
	d := a.takePending()
	a.mu.Unlock()
	if d == nil {
		return capsule.Capsule{}, nil
	}

	c, err := a.editor.Save(*d)
	if err != nil {
		return capsule.Capsule{}, err
	}
	a.adopt(c)
	return c, nil
}

// Close cancels any pending commit without saving.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.pending = nil
}

// takePending detaches the pending draft, stamping it with the id assigned by
// an earlier commit so a create is only ever appended once. Callers hold mu.
func (a *Autosaver) takePending() *Draft {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	d := a.pending
	a.pending = nil
	if d != nil && d.ID == "" {
		d.ID = a.lastID
	}
	return d
}

// adopt records the committed capsule's id and notifies the observer.
func (a *Autosaver) adopt(c capsule.Capsule) {
	a.mu.Lock()
	a.lastID = c.ID
	a.mu.Unlock()
	if a.onSave != nil {
		a.onSave(c)
	}
}
