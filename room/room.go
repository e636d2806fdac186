package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"raidcourt/broadcast"
	"raidcourt/engine"
	"raidcourt/models"

	"go.uber.org/zap"
)

// Conn is a member's outbound channel. Send must not block; the room calls
// it while holding its lock.
type Conn interface {
	Send([]byte) error
}

// Archive stores finished match results.
type Archive interface {
	Save(ctx context.Context, res *models.MatchResult) error
}

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrMaxRooms              = errors.New("max rooms reached")
	ErrInvalidPlayersPerTeam = engine.ErrInvalidPlayersPerTeam
	ErrNotInRoom             = engine.ErrUnknownPlayer
	ErrRoomClosed            = errors.New("room closed")
)

const archiveTimeout = 5 * time.Second

type Options struct {
	ID             string
	Name           string
	PlayersPerTeam int
	Settings       engine.Settings
	Seed           uint64
	Logger         *zap.Logger
	Archive        Archive
	// OnEmpty is called, without the room lock held, when the room should be
	// torn down: its last member left or it idled too long after a match.
	OnEmpty func(id string)
	Now     func() time.Time
}

// Room owns one match. Every call into the match, including ticks and
// scheduled raid starts, happens under mu.
type Room struct {
	mu sync.Mutex

	id      string
	name    string
	created time.Time
	s       engine.Settings
	match   *engine.Match
	members map[string]Conn

	log     *zap.Logger
	archive Archive
	onEmpty func(id string)
	now     func() time.Time

	stopTick chan struct{}
	cleanup  *time.Timer
	closed   bool
	// empty is set when an event handler decided the room must go; OnEmpty
	// runs once the lock is released.
	empty bool
}

func New(opts Options) *Room {
	r := &Room{
		id:      opts.ID,
		name:    opts.Name,
		s:       opts.Settings,
		members: make(map[string]Conn),
		log:     opts.Logger,
		archive: opts.Archive,
		onEmpty: opts.OnEmpty,
		now:     opts.Now,
	}
	if r.s.CourtWidth == 0 {
		r.s = engine.DefaultSettings()
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.created = r.now()
	r.match = engine.NewMatch(engine.Options{
		ID:             opts.ID,
		PlayersPerTeam: opts.PlayersPerTeam,
		Settings:       r.s,
		Seed:           opts.Seed,
		Scheduler:      scheduler{r},
		Emit:           r.dispatch,
		Now:            r.now,
		Logger:         r.log,
	})
	return r
}

func (r *Room) ID() string   { return r.id }
func (r *Room) Name() string { return r.name }

func (r *Room) Settings() engine.Settings { return r.s }

// Join adds a member. The connection is registered before the match sees the
// player so the joiner receives its own player_joined.
func (r *Room) Join(playerID, name string, conn Conn) (engine.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return engine.Player{}, ErrRoomClosed
	}
	if _, ok := r.members[playerID]; ok {
		return engine.Player{}, engine.ErrAlreadyJoined
	}

	r.members[playerID] = conn
	var p *engine.Player
	err := r.guard(func() (err error) {
		p, err = r.match.Join(playerID, name)
		return err
	})
	if err != nil {
		delete(r.members, playerID)
		return engine.Player{}, err
	}
	r.log.Info("Player joined", zap.String("roomID", r.id), zap.String("playerID", playerID), zap.String("team", string(p.Team)))
	return *p, nil
}

// Leave removes a member. When nobody connected is left the room asks to be
// torn down.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	if _, ok := r.members[playerID]; !ok {
		r.mu.Unlock()
		return ErrNotInRoom
	}
	err := r.guard(func() error { return r.match.Leave(playerID) })
	delete(r.members, playerID)
	if len(r.members) == 0 && !r.closed {
		r.empty = true
	}
	r.log.Info("Player left", zap.String("roomID", r.id), zap.String("playerID", playerID))
	r.unlock()
	return err
}

func (r *Room) Ready(playerID string) error {
	return r.withMember(playerID, func() error { return r.match.Ready(playerID) })
}

func (r *Room) Input(playerID string, dx, dy int) error {
	return r.withMember(playerID, func() error { return r.match.Input(playerID, dx, dy) })
}

func (r *Room) Restart(playerID string) error {
	return r.withMember(playerID, func() error { return r.match.Restart(playerID) })
}

func (r *Room) withMember(playerID string, f func() error) error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if _, ok := r.members[playerID]; !ok {
		return ErrNotInRoom
	}
	return r.guard(f)
}

// unlock releases the lock and then runs OnEmpty if a handler asked for it.
func (r *Room) unlock() {
	empty := r.empty
	r.empty = false
	r.mu.Unlock()
	if empty && r.onEmpty != nil {
		r.onEmpty(r.id)
	}
}

// guard runs f and turns a panic into an error so one bad room cannot take
// the process down.
func (r *Room) guard(f func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Recovered from panic in room", zap.String("roomID", r.id), zap.Any("panic", rec), zap.Stack("stack"))
			r.stopTickerLocked()
			err = errors.New("internal error")
		}
	}()
	return f()
}

func (r *Room) Summary() models.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomSummary{
		ID:             r.id,
		Name:           r.name,
		Players:        r.match.PlayerCount(),
		State:          string(r.match.State()),
		PlayersPerTeam: r.match.PlayersPerTeam(),
	}
}

func (r *Room) State() engine.MatchState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match.State()
}

// Snapshot is the current picture of the match, as sent on every tick.
func (r *Room) Snapshot() engine.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match.Snapshot()
}

func (r *Room) Members() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Idle reports whether the room has waited longer than ttl without anyone
// in it.
func (r *Room) Idle(now time.Time, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && len(r.members) == 0 && r.match.State() == engine.StateWaiting && now.Sub(r.created) > ttl
}

// Close stops the room's timers. Scheduled work that fires afterwards is
// dropped.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.stopTickerLocked()
	r.cancelCleanupLocked()
}

// dispatch is the match's event sink. It runs with the lock held.
func (r *Room) dispatch(e engine.Event) {
	switch ev := e.(type) {
	case engine.MatchStarted:
		r.cancelCleanupLocked()
		r.startTickerLocked()
	case engine.GameEnded:
		r.stopTickerLocked()
		r.scheduleCleanupLocked()
		r.archiveResult(ev)
	}

	b, err := broadcast.EncodeEvent(e)
	if err != nil {
		r.log.Error("Failed to encode event", zap.String("roomID", r.id), zap.String("type", e.EventType()), zap.Error(err))
		return
	}
	for id, c := range r.members {
		if err := c.Send(b); err != nil {
			r.log.Debug("Dropped message to member", zap.String("roomID", r.id), zap.String("playerID", id), zap.Error(err))
		}
	}
}

func (r *Room) archiveResult(ev engine.GameEnded) {
	if r.archive == nil {
		return
	}
	res := &models.MatchResult{
		RoomID:         r.id,
		RoomName:       r.name,
		PlayersPerTeam: r.match.PlayersPerTeam(),
		Reason:         ev.Reason,
		Winner:         ev.Winner,
		ScoreA:         ev.Scores[engine.TeamA],
		ScoreB:         ev.Scores[engine.TeamB],
		Rounds:         ev.Round,
		EndedAt:        r.now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := r.archive.Save(ctx, res); err != nil {
			r.log.Error("Failed to archive match result", zap.String("roomID", res.RoomID), zap.Error(err))
		}
	}()
}

// scheduleCleanupLocked tears the room down if nobody restarts within the
// idle TTL after a match ends.
func (r *Room) scheduleCleanupLocked() {
	r.cancelCleanupLocked()
	r.cleanup = time.AfterFunc(r.s.IdleRoomTTL, func() {
		r.mu.Lock()
		if r.closed || r.match.State() != engine.StateEnded {
			r.mu.Unlock()
			return
		}
		r.log.Info("Room idle after match end", zap.String("roomID", r.id))
		r.empty = true
		r.unlock()
	})
}

func (r *Room) cancelCleanupLocked() {
	if r.cleanup != nil {
		r.cleanup.Stop()
		r.cleanup = nil
	}
}
