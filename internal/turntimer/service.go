// Package turntimer owns the per-game turn deadline timers. Timers are
// keyed by game ID, fire through a callback supplied at start, and carry
// a grace period beyond the client-visible duration to absorb network
// latency. The clock is injected so tests can drive time directly.
package turntimer

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/parlorlabs/parlor/engine"
)

// DefaultGrace is added beyond the advertised turn duration before the
// expiry callback fires.
const DefaultGrace = 1000 * time.Millisecond

// ExpireFunc is called when a turn deadline passes, outside the service
// lock. turnID identifies the armed turn so the handler can detect stale
// fires on its own state.
type ExpireFunc func(gameID, playerID string, turnID uint64)

type turnTimer struct {
	playerID  string
	turnID    uint64
	startedAt time.Time
	total     time.Duration // visible duration plus grace

	handle    *clock.Timer
	paused    bool
	remaining time.Duration // valid only while paused
}

// Service tracks at most one live turn timer per game.
type Service struct {
	mu     sync.Mutex
	clk    clock.Clock
	grace  time.Duration
	log    *logrus.Logger
	timers map[string]*turnTimer
	nextID uint64
}

// New builds a Service. A zero grace falls back to DefaultGrace.
func New(clk clock.Clock, grace time.Duration, log *logrus.Logger) *Service {
	if clk == nil {
		clk = clock.New()
	}
	if grace <= 0 {
		grace = DefaultGrace
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		clk:    clk,
		grace:  grace,
		log:    log,
		timers: make(map[string]*turnTimer),
	}
}

// StartTurn arms the timer for a game, replacing any previous one. A
// non-positive seconds disables the deadline entirely. Returns the turn ID
// of the armed timer, or 0 when no timer was armed.
func (s *Service) StartTurn(gameID, playerID string, seconds int, expire ExpireFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(gameID)
	if seconds <= 0 {
		return 0
	}

	s.nextID++
	t := &turnTimer{
		playerID:  playerID,
		turnID:    s.nextID,
		startedAt: s.clk.Now(),
		total:     time.Duration(seconds)*time.Second + s.grace,
	}
	t.handle = s.clk.AfterFunc(t.total, s.expiry(gameID, t.turnID, expire))
	s.timers[gameID] = t

	s.log.WithFields(logrus.Fields{
		"game":   gameID,
		"player": playerID,
		"turn":   t.turnID,
		"secs":   seconds,
	}).Debug("turn timer armed")
	return t.turnID
}

// expiry builds the AfterFunc body. It re-checks under the lock that the
// fired timer is still the live one for the game, then invokes expire with
// the lock released.
func (s *Service) expiry(gameID string, turnID uint64, expire ExpireFunc) func() {
	return func() {
		s.mu.Lock()
		t, ok := s.timers[gameID]
		if !ok || t.turnID != turnID || t.paused {
			s.mu.Unlock()
			return
		}
		delete(s.timers, gameID)
		playerID := t.playerID
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{
			"game":   gameID,
			"player": playerID,
			"turn":   turnID,
		}).Info("turn timer expired")
		expire(gameID, playerID, turnID)
	}
}

// CancelTurn stops and discards the game's timer, if any.
func (s *Service) CancelTurn(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(gameID)
}

func (s *Service) cancelLocked(gameID string) {
	t, ok := s.timers[gameID]
	if !ok {
		return
	}
	if t.handle != nil {
		t.handle.Stop()
	}
	delete(s.timers, gameID)
}

// PauseTurn freezes the game's timer, keeping its remaining duration.
// Pausing an absent or already paused timer is a no-op.
func (s *Service) PauseTurn(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[gameID]
	if !ok || t.paused {
		return
	}
	t.remaining = t.total - s.clk.Now().Sub(t.startedAt)
	t.paused = true
	if t.handle != nil {
		t.handle.Stop()
		t.handle = nil
	}
	s.log.WithFields(logrus.Fields{
		"game":      gameID,
		"remaining": t.remaining,
	}).Debug("turn timer paused")
}

// ResumeTurn re-arms a paused timer with its remaining duration. A timer
// whose remaining time has already been consumed fires immediately.
func (s *Service) ResumeTurn(gameID string, expire ExpireFunc) {
	s.mu.Lock()
	t, ok := s.timers[gameID]
	if !ok || !t.paused {
		s.mu.Unlock()
		return
	}
	t.paused = false

	if t.remaining <= 0 {
		delete(s.timers, gameID)
		playerID, turnID := t.playerID, t.turnID
		s.mu.Unlock()
		// Fire off the caller's stack, matching the armed path: the caller
		// may hold the lock its expiry handler takes.
		go expire(gameID, playerID, turnID)
		return
	}

	// Recompute startedAt so snapshots stay consistent with the new
	// deadline.
	t.startedAt = s.clk.Now().Add(t.remaining - t.total)
	t.handle = s.clk.AfterFunc(t.remaining, s.expiry(gameID, t.turnID, expire))
	t.remaining = 0
	s.mu.Unlock()
}

// Snapshot returns the client-facing timer descriptor for a game, or nil
// when no timer is live. The grace period is excluded from the advertised
// duration.
func (s *Service) Snapshot(gameID string) *engine.TimerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[gameID]
	if !ok {
		return nil
	}
	return &engine.TimerView{
		StartedAt:  t.startedAt.UnixMilli(),
		DurationMS: (t.total - s.grace).Milliseconds(),
		ServerNow:  s.clk.Now().UnixMilli(),
	}
}

// StartedAt reports when the live timer was armed. Paused and resumed
// timers report the recomputed start that matches their deadline.
func (s *Service) StartedAt(gameID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[gameID]
	if !ok {
		return time.Time{}, false
	}
	return t.startedAt, true
}

// RemainingSeconds reports the client-visible seconds left, rounded down.
// Absent timers report 0, false.
func (s *Service) RemainingSeconds(gameID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[gameID]
	if !ok {
		return 0, false
	}
	var left time.Duration
	if t.paused {
		left = t.remaining - s.grace
	} else {
		left = t.total - s.grace - s.clk.Now().Sub(t.startedAt)
	}
	if left < 0 {
		left = 0
	}
	return int(left / time.Second), true
}

// CleanupGame drops all timer state for a finished game.
func (s *Service) CleanupGame(gameID string) {
	s.CancelTurn(gameID)
}
