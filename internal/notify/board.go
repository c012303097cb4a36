// Package notify keeps the transient success/error messages shown after an
// action. Each notification removes itself: it stays visible for the display
// duration, fades for the fade duration and is then dropped from the board.
package notify

import (
	"strconv"
	"sync"
	"time"

	"expensetracker/internal/log"
)

const (
	DefaultDuration = 3 * time.Second
	DefaultFade     = 300 * time.Millisecond
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
)

type Phase string

const (
	Visible Phase = "visible"
	Fading  Phase = "fading"
)

type Notification struct {
	ID       string
	Severity Severity
	Message  string
	Phase    Phase
	Created  time.Time
}

// Class is the CSS class list for the notification element.
func (n Notification) Class() string {
	c := "notification " + string(n.Severity)
	if n.Phase == Fading {
		c += " fade-out"
	}
	return c
}

// Timer is the part of *time.Timer the board needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so tests can drive notification lifetimes.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is backed by package time.
var RealClock Clock = realClock{}

type Option func(*Board)

func WithClock(c Clock) Option {
	return func(b *Board) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithLogger records every shown notification at debug level.
func WithLogger(l *log.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l.WithComponent(log.ComponentNotify)
		}
	}
}

// WithDurations overrides the visible and fade periods. Non-positive display
// durations and negative fades are ignored.
func WithDurations(display, fade time.Duration) Option {
	return func(b *Board) {
		if display > 0 {
			b.display = display
		}
		if fade >= 0 {
			b.fade = fade
		}
	}
}

// Board is safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	clock   Clock
	display time.Duration
	fade    time.Duration
	seq     uint64
	items   []*entry
	logger  *log.Logger
}

type entry struct {
	n     Notification
	timer Timer
}

func NewBoard(opts ...Option) *Board {
	b := &Board{
		clock:   RealClock,
		display: DefaultDuration,
		fade:    DefaultFade,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Show adds an independent notification and returns its id. Identical
// messages are neither merged nor deduplicated.
func (b *Board) Show(sev Severity, message string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	id := "n" + strconv.FormatUint(b.seq, 10)
	e := &entry{n: Notification{
		ID:       id,
		Severity: sev,
		Message:  message,
		Phase:    Visible,
		Created:  b.clock.Now(),
	}}
	b.items = append(b.items, e)
	e.timer = b.clock.AfterFunc(b.display, func() { b.startFade(id) })
	b.logger.Debug("Notification shown", "id", id, log.FieldSeverity, string(sev), log.FieldMessage, message)
	return id
}

func (b *Board) Success(message string) string { return b.Show(Success, message) }

func (b *Board) Error(message string) string { return b.Show(Error, message) }

func (b *Board) startFade(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.find(id)
	if e == nil {
		return
	}
	e.n.Phase = Fading
	e.timer = b.clock.AfterFunc(b.fade, func() { b.remove(id) })
}

func (b *Board) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.items {
		if e.n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

func (b *Board) find(id string) *entry {
	for _, e := range b.items {
		if e.n.ID == id {
			return e
		}
	}
	return nil
}

// Active returns a snapshot of live notifications, oldest first.
func (b *Board) Active() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Notification, 0, len(b.items))
	for _, e := range b.items {
		out = append(out, e.n)
	}
	return out
}

// Close stops every pending timer and clears the board.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.items {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	b.items = nil
}
