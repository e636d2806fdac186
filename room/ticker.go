package room

import (
	"time"

	"raidcourt/engine"

	"go.uber.org/zap"
)

// startTickerLocked launches the tick loop for a running match. Each loop owns
// its stop channel; a loop whose channel is no longer current does nothing.
func (r *Room) startTickerLocked() {
	if r.stopTick != nil || r.closed {
		return
	}
	stop := make(chan struct{})
	r.stopTick = stop
	go r.run(stop)
}

func (r *Room) stopTickerLocked() {
	if r.stopTick != nil {
		close(r.stopTick)
		r.stopTick = nil
	}
}

func (r *Room) run(stop chan struct{}) {
	ticker := time.NewTicker(r.s.TickInterval())
	defer ticker.Stop()

	last := r.now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := r.now()
			dt := now.Sub(last)
			last = now
			if !r.tick(stop, dt) {
				return
			}
		}
	}
}

// tick advances the match by the wall-clock time since the previous tick.
func (r *Room) tick(stop chan struct{}, dt time.Duration) bool {
	r.mu.Lock()
	defer r.unlock()
	if r.stopTick != stop {
		return false
	}
	err := r.guard(func() error {
		r.match.Tick(dt)
		return nil
	})
	if err != nil {
		r.log.Error("Tick loop stopped", zap.String("roomID", r.id), zap.Error(err))
		return false
	}
	return true
}

// scheduler backs the match's delayed work with real timers that re-enter
// the room under its lock.
type scheduler struct {
	r *Room
}

func (s scheduler) AfterFunc(d time.Duration, f func()) engine.Timer {
	return time.AfterFunc(d, func() {
		s.r.mu.Lock()
		defer s.r.unlock()
		if s.r.closed {
			return
		}
		_ = s.r.guard(func() error {
			f()
			return nil
		})
	})
}
