// Package sink implements the event sink: the single owner of AppState.
//
// The sink appends validated events to the log, stamps last-saved,
// re-derives the full DerivedState wholesale, and notifies two independent
// listener sets - raw-event listeners first, then derived-state listeners,
// each in subscription order.
//
// Append -> re-derivation -> notify is one atomic logical unit under a
// single mutex: no two appends may interleave their derivation passes.
// Persistence and peer notification are external collaborators that
// subscribe here; they must never block the fold, so listeners are
// expected to return quickly and do their I/O on their own schedule.
package sink

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendlog/tend/internal/derive"
	"github.com/tendlog/tend/internal/event"
)

// EventListener receives every appended event, once, in subscription order.
type EventListener func(event.Event)

// StateListener receives the freshly derived state after every append.
type StateListener func(*derive.DerivedState)

type eventSub struct {
	id int
	fn EventListener
}

type stateSub struct {
	id int
	fn StateListener
}

// Sink owns the application state and the event log.
type Sink struct {
	mu      sync.Mutex
	state   *event.AppState
	deriver *derive.Deriver
	derived *derive.DerivedState
	now     func() time.Time
	log     *slog.Logger

	// subMu guards the listener lists separately from mu so a listener
	// can de-register from inside its own notification without
	// deadlocking. Listeners must not call Append.
	subMu     sync.Mutex
	nextSubID int
	eventSubs []eventSub
	stateSubs []stateSub
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock injects the wall clock. Tests use a fixed clock for
// deterministic derivation output.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		s.now = now
	}
}

// WithLogger injects the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sink) {
		s.log = log
	}
}

// WithDevice sets the device label on freshly created state.
func WithDevice(device string) Option {
	return func(s *Sink) {
		if s.state.Meta.Device == "" {
			s.state.Meta.Device = device
		}
	}
}

// New creates a Sink over loaded state. Pass nil state for a first run:
// the sink creates an empty log, mints the stable user identifier, and
// auto-appends exactly one app_init event.
func New(state *event.AppState, deriver *derive.Deriver, opts ...Option) *Sink {
	fresh := state == nil
	if fresh {
		state = event.NewAppState()
		state.Meta.UserID = uuid.NewString()
	}

	s := &Sink{
		state:   state,
		deriver: deriver,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if fresh || len(s.state.Events) == 0 {
		s.appendLocked(event.NewAppInit(s.now()))
	} else {
		s.derived = s.deriver.Derive(s.state.Events, s.now())
	}

	return s
}

// Append validates the event, appends it to the log, re-derives, and
// notifies listeners. On validation failure the log stays unmodified and
// no listener fires. No event is ever removed or reordered once appended.
func (s *Sink) Append(ev event.Event) error {
	if err := ev.Validate(); err != nil {
		s.log.Warn("event rejected", "type", ev.Type, "err", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(ev)
	return nil
}

// appendLocked is the single mutation path: append, stamp, re-fold, notify.
func (s *Sink) appendLocked(ev event.Event) {
	s.state.Events = append(s.state.Events, ev)
	s.state.LastSaved = s.now()
	if ev.Type == event.TypeBackupCreated {
		ts := ev.TS
		s.state.Meta.LastBackup = &ts
	}

	s.derived = s.deriver.Derive(s.state.Events, s.now())
	s.log.Debug("event appended", "type", ev.Type, "log_len", len(s.state.Events))

	// Snapshot both listener sets before firing so de-registration
	// mid-notification cannot affect the current pass.
	s.subMu.Lock()
	eventSubs := make([]eventSub, len(s.eventSubs))
	copy(eventSubs, s.eventSubs)
	stateSubs := make([]stateSub, len(s.stateSubs))
	copy(stateSubs, s.stateSubs)
	s.subMu.Unlock()

	for _, sub := range eventSubs {
		sub.fn(ev)
	}
	for _, sub := range stateSubs {
		sub.fn(s.derived)
	}
}

// DerivedState returns the most recently derived state.
func (s *Sink) DerivedState() *derive.DerivedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.derived
}

// AppState returns a copy of the persisted root. Callers get their own
// event slice and cannot mutate the log.
func (s *Sink) AppState() *event.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SubscribeEvents registers a raw-event listener and returns its
// de-registration handle.
func (s *Sink) SubscribeEvents(fn EventListener) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.eventSubs = append(s.eventSubs, eventSub{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i := range s.eventSubs {
			if s.eventSubs[i].id == id {
				s.eventSubs = append(s.eventSubs[:i], s.eventSubs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeState registers a derived-state listener and returns its
// de-registration handle.
func (s *Sink) SubscribeState(fn StateListener) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.stateSubs = append(s.stateSubs, stateSub{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i := range s.stateSubs {
			if s.stateSubs[i].id == id {
				s.stateSubs = append(s.stateSubs[:i], s.stateSubs[i+1:]...)
				return
			}
		}
	}
}
