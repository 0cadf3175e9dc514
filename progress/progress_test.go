package progress

import (
	"testing"
	"time"
)

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestDeterminateRun(t *testing.T) {
	tr := New(time.Minute) // reset far away; this test watches the run itself

	var states []State
	tr.Subscribe(func(s State) { states = append(states, s) })

	tr.Start(3)
	tr.Advance()
	tr.Advance()
	tr.Advance()
	tr.End()

	// Current never decreases and the run completes at the total.
	last := -1
	for _, s := range states {
		if s.Current < last {
			t.Fatalf("current went backwards: %+v", states)
		}
		last = s.Current
	}
	final := states[len(states)-1]
	if !final.Active || final.Current != 3 || final.Total != 3 {
		t.Errorf("state at End = %+v, want active 3/3", final)
	}
}

func TestResetAfterDelay(t *testing.T) {
	tr := New(5 * time.Millisecond)

	idle := make(chan State, 1)
	tr.Subscribe(func(s State) {
		if !s.Active {
			select {
			case idle <- s:
			default:
			}
		}
	})

	tr.Start(1)
	tr.Advance()
	tr.End()

	select {
	case s := <-idle:
		if s != (State{}) {
			t.Errorf("idle notification = %+v, want zero", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no idle notification after End")
	}
	waitFor(t, func() bool { return tr.State() == (State{}) }, "tracker never reset to idle")
}

func TestIndeterminateRun(t *testing.T) {
	tr := New(5 * time.Millisecond)
	tr.Start(0)

	got := tr.State()
	if !got.Active || got.Total != 0 {
		t.Errorf("State() = %+v, want active with total 0", got)
	}

	tr.End()
	waitFor(t, func() bool { return !tr.State().Active }, "tracker never reset to idle")
}

func TestSetClamps(t *testing.T) {
	tests := []struct {
		name  string
		total int
		set   int
		want  int
	}{
		{name: "above total", total: 3, set: 7, want: 3},
		{name: "below zero", total: 3, set: -2, want: 0},
		{name: "in range", total: 3, set: 2, want: 2},
		{name: "indeterminate unclamped above", total: 0, set: 9, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(time.Minute)
			tr.Start(tt.total)
			tr.Set(tt.set)
			if got := tr.State().Current; got != tt.want {
				t.Errorf("Current = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMutationsIgnoredWhileIdle(t *testing.T) {
	tr := New(time.Minute)
	notified := 0
	tr.Subscribe(func(State) { notified++ })

	tr.Advance()
	tr.Set(2)
	tr.End()

	if notified != 0 {
		t.Errorf("idle mutations notified %d times, want 0", notified)
	}
	if got := tr.State(); got != (State{}) {
		t.Errorf("State() = %+v, want zero", got)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	tr := New(time.Hour) // reset far away so only End notifications count
	notified := 0
	tr.Subscribe(func(State) { notified++ })

	tr.Start(1)
	tr.End()
	tr.End()
	tr.End()

	if notified != 2 { // one for Start, one for the first End
		t.Errorf("notified %d times, want 2", notified)
	}
}

func TestStartSupersedesPendingReset(t *testing.T) {
	tr := New(20 * time.Millisecond)
	tr.Start(1)
	tr.End()

	// A new run begins before the old run's reset fires.
	tr.Start(2)
	time.Sleep(60 * time.Millisecond)

	got := tr.State()
	if !got.Active || got.Total != 2 {
		t.Errorf("stale reset clobbered the new run: %+v", got)
	}
}

func TestUnsubscribeDuringNotify(t *testing.T) {
	tr := New(time.Minute)

	var aCalls, bCalls, cCalls int
	var unsubB func()
	tr.Subscribe(func(State) {
		aCalls++
		if unsubB != nil {
			unsubB()
			unsubB = nil
		}
	})
	unsubB = tr.Subscribe(func(State) { bCalls++ })
	tr.Subscribe(func(State) { cCalls++ })

	tr.Start(1) // a unsubscribes b mid-round
	tr.Advance()

	if aCalls != 2 || cCalls != 2 {
		t.Errorf("surviving observers: a=%d c=%d, want 2 each", aCalls, cCalls)
	}
	// b was in the first round's snapshot, so it sees that one and no more.
	if bCalls != 1 {
		t.Errorf("b notified %d times, want exactly 1", bCalls)
	}
}
