package daemon

import (
	"sync"
	"time"

	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/events"
)

// Session is the calculator hosted by the daemon. Presses from all clients
// are applied one at a time, and every display change is published to the
// event hub.
type Session struct {
	mu        sync.Mutex
	eng       *engine.Engine
	hub       *events.EventHub
	lastInput time.Time
}

func NewSession(hub *events.EventHub, opts ...engine.Option) *Session {
	s := &Session{hub: hub, lastInput: time.Now()}
	s.eng = engine.New(opts...)
	s.eng.Subscribe(engine.SinkFunc(s.publish))
	return s
}

// Press applies evs in order and returns the resulting state.
func (s *Session) Press(evs []engine.Event) engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range evs {
		s.eng.Apply(ev)
	}
	s.lastInput = time.Now()
	return s.eng.State()
}

func (s *Session) Clear() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eng.Clear()
	return s.eng.State()
}

func (s *Session) State() engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eng.State()
}

// Configure applies new limits. They take effect from the next press.
func (s *Session) Configure(maxDigits, precision int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eng.SetMaxDigits(maxDigits)
	s.eng.SetPrecision(precision)
}

// IdleFor returns how long ago the last key was pressed.
func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return time.Since(s.lastInput)
}

func (s *Session) publish(snap engine.Snapshot) {
	s.hub.Publish(events.DisplayUpdate, events.DisplayUpdateEvent{
		Display:  snap.Display,
		Operator: snap.Operator.String(),
		Selected: snap.Selected.String(),
		Error:    snap.Error,
		Ts:       time.Now().Unix(),
	})
}
