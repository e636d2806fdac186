package room

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"raidcourt/engine"
	"raidcourt/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ManagerOptions struct {
	Settings engine.Settings
	MaxRooms int
	Logger   *zap.Logger
	Archive  Archive
	Now      func() time.Time
}

// Manager is the room registry. Rooms are created through the HTTP API and
// removed when their last member leaves, when they idle after a match, or
// by the janitor.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	s        engine.Settings
	maxRooms int
	log      *zap.Logger
	archive  Archive
	now      func() time.Time
}

func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		rooms:    make(map[string]*Room),
		s:        opts.Settings,
		maxRooms: opts.MaxRooms,
		log:      opts.Logger,
		archive:  opts.Archive,
		now:      opts.Now,
	}
	if m.s.CourtWidth == 0 {
		m.s = engine.DefaultSettings()
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m *Manager) Settings() engine.Settings { return m.s }

// Create registers a new room and returns it.
func (m *Manager) Create(name string, playersPerTeam int) (*Room, error) {
	if err := engine.ValidatePlayersPerTeam(m.s, playersPerTeam); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxRooms > 0 && len(m.rooms) >= m.maxRooms {
		return nil, fmt.Errorf("%w (%d)", ErrMaxRooms, m.maxRooms)
	}

	id := uuid.New().String()
	r := New(Options{
		ID:             id,
		Name:           name,
		PlayersPerTeam: playersPerTeam,
		Settings:       m.s,
		Seed:           seedFrom(id, m.now()),
		Logger:         m.log,
		Archive:        m.archive,
		OnEmpty:        func(id string) { m.Remove(id) },
		Now:            m.now,
	})
	m.rooms[id] = r
	m.log.Info("Room created", zap.String("roomID", id), zap.String("name", name), zap.Int("playersPerTeam", playersPerTeam))
	return r, nil
}

// seedFrom mixes the room id into the clock so rooms created in the same
// instant still diverge.
func seedFrom(id string, now time.Time) uint64 {
	seed := uint64(now.UnixNano())
	for i := 0; i < len(id); i++ {
		seed = seed*1099511628211 ^ uint64(id[i])
	}
	return seed
}

func (m *Manager) Lookup(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Get is Lookup with ErrRoomNotFound for a missing room.
func (m *Manager) Get(id string) (*Room, error) {
	if r, ok := m.Lookup(id); ok {
		return r, nil
	}
	return nil, ErrRoomNotFound
}

// Remove closes and forgets a room. It reports whether the room existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	r.Close()
	m.log.Info("Room destroyed", zap.String("roomID", id))
	return true
}

// List returns room summaries, oldest first.
func (m *Manager) List() []models.RoomSummary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].created.Equal(rooms[j].created) {
			return rooms[i].id < rooms[j].id
		}
		return rooms[i].created.Before(rooms[j].created)
	})
	out := make([]models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// ReapIdle removes rooms that have sat empty in WAITING for longer than ttl.
func (m *Manager) ReapIdle(ttl time.Duration) int {
	now := m.now()
	m.mu.RLock()
	var idle []string
	for id, r := range m.rooms {
		if r.Idle(now, ttl) {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range idle {
		if m.Remove(id) {
			n++
		}
	}
	return n
}

// Shutdown closes every room.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}
}
