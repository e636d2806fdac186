package engine

import (
	"testing"
	"time"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs every timer that is still pending.
func (s *fakeScheduler) fire() int {
	n := 0
	pending := append([]*fakeTimer(nil), s.timers...)
	for _, t := range pending {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.f()
		n++
	}
	return n
}

type recorder struct {
	events []Event
}

func (r *recorder) emit(e Event) { r.events = append(r.events, e) }

func eventsOf[T Event](r *recorder) []T {
	var out []T
	for _, e := range r.events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestMatch(t *testing.T, ppt int) (*Match, *fakeScheduler, *recorder) {
	t.Helper()
	sched := &fakeScheduler{}
	rec := &recorder{}
	m := NewMatch(Options{
		ID:             "room-test",
		PlayersPerTeam: ppt,
		Settings:       DefaultSettings(),
		Seed:           42,
		Scheduler:      sched,
		Emit:           rec.emit,
		Now:            func() time.Time { return testEpoch },
	})
	return m, sched, rec
}

// joinAll joins a1, b1, a2, b2, ... so that aN land on team A and bN on team B.
func joinAll(t *testing.T, m *Match, ppt int) {
	t.Helper()
	for i := 1; i <= ppt; i++ {
		for _, prefix := range []string{"a", "b"} {
			id := prefix + string(rune('0'+i))
			if _, err := m.Join(id, id); err != nil {
				t.Fatalf("join %s: %v", id, err)
			}
		}
	}
}

func startedMatch(t *testing.T, ppt int) (*Match, *fakeScheduler, *recorder) {
	t.Helper()
	m, sched, rec := newTestMatch(t, ppt)
	joinAll(t, m, ppt)
	for _, id := range append(m.Roster(TeamA), m.Roster(TeamB)...) {
		if err := m.Ready(id); err != nil {
			t.Fatalf("ready %s: %v", id, err)
		}
	}
	if m.State() != StatePlaying {
		t.Fatalf("state = %s, want PLAYING", m.State())
	}
	// Clear the court so hand-placed positions are not blocked.
	m.obstacles = nil
	return m, sched, rec
}

func place(m *Match, id string, x, y float64) {
	m.players[id].Pos = Vec{X: x, Y: y}
}

// crossWith puts a team A raider just past the midline and runs one step.
func crossWith(t *testing.T, m *Match, id string) {
	t.Helper()
	place(m, id, 400, m.s.midline()+m.s.MidCrossEps+5)
	m.step(1)
	if m.RaidState() != RaidActive {
		t.Fatalf("raid state = %s after crossing, want ACTIVE", m.RaidState())
	}
}
