// Package game hosts live game sessions: it owns the lock around each
// state value, routes actions through the machine's reducer, keeps the
// turn timer in step with the resulting state, and fans views out to
// clients through injected callbacks.
package game

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/parlorlabs/parlor/engine"
	"github.com/parlorlabs/parlor/internal/turntimer"
)

// TimeoutNotice describes an auto-action taken on a player's behalf after
// their turn deadline passed.
type TimeoutNotice struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	ActionKind string `json:"actionKind"`
	Timestamp  int64  `json:"timestamp"`
}

// BroadcastFn sends a payload to every client in the game's room.
type BroadcastFn func(payload any)

// BroadcastToPlayerFn sends a payload to a single client.
type BroadcastToPlayerFn func(userID string, payload any)

// Session is one live game. All state transitions run under mu; the
// broadcast callbacks and timer expiries are the only code paths that
// touch the session from outside a client request.
type Session struct {
	mu sync.Mutex

	id      string
	machine engine.Machine
	state   engine.State

	timers      *turntimer.Service
	armedTurn   uint64
	defaultSecs int
	clk         clock.Clock
	log         *logrus.Entry

	// Injected by the transport layer.
	Broadcast   BroadcastFn
	BroadcastTo BroadcastToPlayerFn
	OnTimeout   func(TimeoutNotice)
}

// NewSession wraps an initialized state in a session. defaultSecs is the
// turn length used when the machine does not name one.
func NewSession(id string, m engine.Machine, st engine.State, timers *turntimer.Service, defaultSecs int, clk clock.Clock, log *logrus.Logger) *Session {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = logrus.New()
	}
	s := &Session{
		id:          id,
		machine:     m,
		state:       st,
		timers:      timers,
		defaultSecs: defaultSecs,
		clk:         clk,
		log:         log.WithFields(logrus.Fields{"game": id, "type": m.GameType()}),
	}
	return s
}

// ID returns the session's game ID.
func (s *Session) ID() string { return s.id }

// Start arms the initial turn timer and pushes the first views. Call once
// after the transport callbacks are wired.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armLocked()
	s.broadcastLocked()
}

// Dispatch runs one player action through the reducer. The current turn
// timer is cancelled before the reducer runs, so a near-simultaneous
// expiry cannot double-act on the same turn.
func (s *Session) Dispatch(a engine.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(a)
}

// dispatchLocked assumes mu is held.
func (s *Session) dispatchLocked(a engine.Action) {
	s.timers.CancelTurn(s.id)
	a.At = s.clk.Now().UnixMilli()

	s.state = s.machine.Reduce(s.state, a)

	s.armLocked()
	s.broadcastLocked()
}

// armLocked points the timer at whatever seat the new state is waiting
// on. Terminal states drop all timer bookkeeping instead.
func (s *Session) armLocked() {
	if s.machine.Terminal(s.state) {
		s.armedTurn = 0
		s.timers.CleanupGame(s.id)
		return
	}
	playerID, seconds, ok := s.machine.TimerTarget(s.state)
	if !ok {
		s.armedTurn = 0
		s.timers.CancelTurn(s.id)
		return
	}
	if seconds <= 0 {
		seconds = s.defaultSecs
	}
	s.armedTurn = s.timers.StartTurn(s.id, playerID, seconds, s.handleExpiry)
}

// handleExpiry is the timer callback. It re-reads the live state: if the
// turn already advanced, the expiry is stale and nothing happens. The
// turn ID check matters when consecutive decision points belong to the
// same seat, where the player ID alone cannot tell the turns apart.
func (s *Session) handleExpiry(gameID, playerID string, turnID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turnID != s.armedTurn {
		s.log.WithField("player", playerID).Debug("stale timer expiry ignored")
		return
	}
	pid, _, ok := s.machine.TimerTarget(s.state)
	if !ok || pid != playerID {
		s.log.WithField("player", playerID).Debug("stale timer expiry ignored")
		return
	}

	auto, ok := s.machine.AutoAction(s.state, playerID)
	if !ok {
		return
	}

	name := playerID
	core := s.state.Base()
	if p := core.PlayerByID(playerID); p != nil {
		name = p.Name
	}
	notice := TimeoutNotice{
		GameID:     gameID,
		PlayerID:   playerID,
		PlayerName: name,
		ActionKind: string(auto.Type),
		Timestamp:  s.clk.Now().UnixMilli(),
	}
	s.log.WithFields(logrus.Fields{
		"player": playerID,
		"action": auto.Type,
	}).Info("turn timed out, auto-acting")
	if s.OnTimeout != nil {
		s.OnTimeout(notice)
	}

	s.dispatchLocked(auto)
}

// HandleDisconnect marks the player gone and pauses the timer when their
// turn was the one being timed.
func (s *Session) HandleDisconnect(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.machine.OnDisconnect(s.state, userID)
	if pid, _, ok := s.machine.TimerTarget(s.state); ok && pid == userID {
		s.timers.PauseTurn(s.id)
	}
	s.log.WithField("player", userID).Info("player disconnected")
	s.broadcastLocked()
}

// HandleReconnect marks the player back and resumes their paused timer, or
// arms a fresh one when none was held.
func (s *Session) HandleReconnect(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.machine.OnReconnect(s.state, userID)
	if pid, _, ok := s.machine.TimerTarget(s.state); ok && pid == userID {
		s.timers.ResumeTurn(s.id, s.handleExpiry)
		if _, live := s.timers.RemainingSeconds(s.id); !live {
			s.armLocked()
		}
	}
	s.log.WithField("player", userID).Info("player reconnected")
	s.broadcastLocked()
}

// State returns the current state value. The value is immutable, so the
// caller may read it without the session lock.
func (s *Session) State() engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PublicView projects the current state for broadcast, including the live
// timer descriptor.
func (s *Session) PublicView() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.PublicView(s.state, s.timers.Snapshot(s.id))
}

// PrivateView projects the current state for one recipient.
func (s *Session) PrivateView(userID string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.PrivateView(s.state, userID)
}

// broadcastLocked pushes the public view to the room and each connected
// player's private view to them. Assumes mu is held.
func (s *Session) broadcastLocked() {
	if s.Broadcast != nil {
		s.Broadcast(s.machine.PublicView(s.state, s.timers.Snapshot(s.id)))
	}
	if s.BroadcastTo == nil {
		return
	}
	for _, p := range s.state.Base().Players {
		if p.Connected {
			s.BroadcastTo(p.ID, s.machine.PrivateView(s.state, p.ID))
		}
	}
}

// Close drops the session's timer state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers.CleanupGame(s.id)
}
