package daemon

import (
	"sync"
	"testing"
	"time"

	"github.com/tallycalc/tally/pkg/engine"
	"github.com/tallycalc/tally/pkg/events"
)

func TestSessionPublishesUpdates(t *testing.T) {
	hub := events.NewEventHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s := NewSession(hub)
	snap := s.Press([]engine.Event{engine.Digit(1), engine.Op(engine.Add)})
	if snap.Display != "1" || snap.Operator != engine.Add {
		t.Fatalf("snapshot = %+v, want display 1 operator +", snap)
	}

	if len(ch) != 2 {
		t.Fatalf("got %d events, want 2", len(ch))
	}
	<-ch
	payload, err := events.DecodeAs[events.DisplayUpdateEvent](<-ch)
	if err != nil {
		t.Fatal(err)
	}
	if payload.Display != "1" || payload.Operator != "+" {
		t.Errorf("payload = %+v, want display 1 operator +", payload)
	}
}

func TestSessionConcurrentPresses(t *testing.T) {
	s := NewSession(events.NewEventHub())
	s.Press([]engine.Event{engine.Digit(0), engine.Op(engine.Add), engine.Digit(1), engine.Equals()})

	// Each press repeats "+1"; all of them must land.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Press([]engine.Event{engine.Equals()})
		}()
	}
	wg.Wait()

	if got := s.State().Display; got != "51" {
		t.Errorf("display = %q, want 51", got)
	}
}

func TestSessionConfigureAndIdle(t *testing.T) {
	s := NewSession(events.NewEventHub())
	s.Configure(2, 15)
	s.Press([]engine.Event{engine.Digit(1), engine.Digit(2), engine.Digit(3)})
	if got := s.State().Display; got != "12" {
		t.Errorf("display = %q, want 12", got)
	}

	if idle := s.IdleFor(); idle > time.Second {
		t.Errorf("IdleFor() = %v right after a press", idle)
	}
}
