package game

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parlorlabs/parlor/engine"
	"github.com/parlorlabs/parlor/internal/config"
	"github.com/parlorlabs/parlor/internal/turntimer"
)

// Manager owns the session registry and the machine registry keyed by
// game type.
type Manager struct {
	mu       sync.Mutex
	machines map[string]engine.Machine
	sessions map[string]*Session

	timers      *turntimer.Service
	defaultSecs int
	clk         clock.Clock
	log         *logrus.Logger
}

// NewManager builds a Manager with one timer service shared across
// sessions, sized from the configured grace window.
func NewManager(cfg config.Config, clk clock.Clock, log *logrus.Logger) *Manager {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		machines:    make(map[string]engine.Machine),
		sessions:    make(map[string]*Session),
		timers:      turntimer.New(clk, cfg.Grace(), log),
		defaultSecs: cfg.DefaultTurnSec,
		clk:         clk,
		log:         log,
	}
}

// Register makes a machine available under its game type.
func (m *Manager) Register(machine engine.Machine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machines[machine.GameType()] = machine
}

// Create initializes a new game for a room and returns its session. The
// game ID is minted here; the seed defaults to the current clock when the
// room does not carry one.
func (m *Manager) Create(room engine.Room, gameType string, settings any) (*Session, error) {
	m.mu.Lock()
	machine, ok := m.machines[gameType]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("game: unknown game type %q", gameType)
	}

	room.GameID = uuid.NewString()
	if room.Seed == 0 {
		room.Seed = uint64(m.clk.Now().UnixNano())
	}

	st, err := machine.Init(room, settings)
	if err != nil {
		return nil, fmt.Errorf("game: init %s: %w", gameType, err)
	}

	s := NewSession(room.GameID, machine, st, m.timers, m.defaultSecs, m.clk, m.log)
	m.mu.Lock()
	m.sessions[room.GameID] = s
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"game": room.GameID,
		"room": room.ID,
		"type": gameType,
	}).Info("game created")
	return s, nil
}

// Get returns a live session by game ID.
func (m *Manager) Get(gameID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[gameID]
	return s, ok
}

// Remove closes and drops a session.
func (m *Manager) Remove(gameID string) {
	m.mu.Lock()
	s, ok := m.sessions[gameID]
	delete(m.sessions, gameID)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}
