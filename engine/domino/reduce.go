package domino

import (
	"fmt"

	"github.com/parlorlabs/parlor/engine"
)

// Reduce applies one action. Invalid actions return the prior state with a
// single audit entry; nothing here panics, blocks, or performs I/O, because
// the same entry point serves timer callbacks.
func (Game) Reduce(st engine.State, a engine.Action) engine.State {
	s, ok := st.(State)
	if !ok {
		return st
	}

	switch a.Type {
	case ActionPlace:
		return s.place(a)
	case ActionPass:
		return s.pass(a)
	case ActionDraw:
		return s.draw(a)
	case ActionContinue:
		return s.continueRound(a)
	default:
		s.Core = s.Core.Rejected(a, engine.RejectInvalidPayload, "unknown action")
		return s
	}
}

// reject returns the state unchanged except for one audit entry.
func (s State) reject(a engine.Action, r engine.RejectReason, note string) State {
	s.Core = s.Core.Rejected(a, r, note)
	return s
}

// requireTurn validates phase and acting seat for in-round actions.
func (s State) requireTurn(a engine.Action) (int, *State) {
	if s.Phase != PhasePlaying {
		bad := s.reject(a, engine.RejectInvalidPhase, string(s.Phase))
		return 0, &bad
	}
	seat := s.seatOf(a.UserID)
	if seat < 0 {
		bad := s.reject(a, engine.RejectInvalidTurn, "not seated")
		return 0, &bad
	}
	if seat != s.Turn {
		bad := s.reject(a, engine.RejectInvalidTurn, "not this seat's turn")
		return 0, &bad
	}
	return seat, nil
}

func (s State) place(a engine.Action) State {
	seat, bad := s.requireTurn(a)
	if bad != nil {
		return *bad
	}
	p, ok := a.Payload.(PlacePayload)
	if !ok {
		return s.reject(a, engine.RejectInvalidPayload, "place payload missing")
	}
	if p.Side != SideLeft && p.Side != SideRight {
		return s.reject(a, engine.RejectInvalidPayload, "unknown side")
	}

	handIdx := -1
	for i, t := range s.Seats[seat].Hand {
		if t.ID() == p.TileID {
			handIdx = i
			break
		}
	}
	if handIdx < 0 {
		return s.reject(a, engine.RejectInvalidPayload, "tile not in hand")
	}
	tile := s.Seats[seat].Hand[handIdx]

	board, ok := s.Board.Place(tile, p.Side)
	if !ok {
		return s.reject(a, engine.RejectInvalidPayload, "tile does not match end")
	}

	seats := s.cloneSeats()
	seats[seat].Hand = append(seats[seat].Hand[:handIdx], seats[seat].Hand[handIdx+1:]...)

	s.Seats = seats
	s.Board = board
	s.Passes = 0
	s.Core = s.Core.Applied(a, fmt.Sprintf("tile %d %s", p.TileID, p.Side))

	if len(seats[seat].Hand) == 0 {
		return s.endRound(a, seat, false)
	}
	s.Turn = (s.Turn + 1) % len(s.Seats)
	return s
}

func (s State) pass(a engine.Action) State {
	seat, bad := s.requireTurn(a)
	if bad != nil {
		return *bad
	}
	if s.hasLegalMove(seat) {
		return s.reject(a, engine.RejectInvalidPayload, "legal move available")
	}
	if s.Settings.DrawFromBoneyard && len(s.Boneyard) > 0 {
		return s.reject(a, engine.RejectInvalidPayload, "must draw before passing")
	}

	s.Passes++
	s.Core = s.Core.Applied(a, fmt.Sprintf("pass %d/%d", s.Passes, len(s.Seats)))

	if s.Passes >= len(s.Seats) {
		return s.endRound(a, -1, true)
	}
	s.Turn = (s.Turn + 1) % len(s.Seats)
	return s
}

func (s State) draw(a engine.Action) State {
	seat, bad := s.requireTurn(a)
	if bad != nil {
		return *bad
	}
	if !s.Settings.DrawFromBoneyard {
		return s.reject(a, engine.RejectInvalidPhase, "drawing disabled")
	}
	if s.hasLegalMove(seat) {
		return s.reject(a, engine.RejectInvalidPayload, "legal move available")
	}
	if len(s.Boneyard) == 0 {
		return s.reject(a, engine.RejectInvalidPayload, "boneyard empty")
	}

	seats := s.cloneSeats()
	boneyard := append([]Tile(nil), s.Boneyard...)
	drawn := boneyard[len(boneyard)-1]
	boneyard = boneyard[:len(boneyard)-1]
	seats[seat].Hand = append(seats[seat].Hand, drawn)

	s.Seats = seats
	s.Boneyard = boneyard
	s.Core = s.Core.Applied(a, "draw")
	// The turn does not advance: the seat plays or keeps drawing.
	return s
}

func (s State) continueRound(a engine.Action) State {
	if s.Phase != PhaseRoundOver {
		return s.reject(a, engine.RejectInvalidPhase, string(s.Phase))
	}
	if a.UserID != s.Core.LeaderID {
		return s.reject(a, engine.RejectInvalidTurn, "leader only")
	}
	s.Core = s.Core.Applied(a, "next round")
	s = deal(s)
	s.Core = s.Core.Noted(a.At, "round_start", fmt.Sprintf("round %d", s.Round))
	return s
}

// hasLegalMove reports whether the seat can place any hand tile.
func (s State) hasLegalMove(seat int) bool {
	for _, t := range s.Seats[seat].Hand {
		if s.Board.HasMoveFor(t) {
			return true
		}
	}
	return false
}

// Terminal implements engine.Machine.
func (Game) Terminal(st engine.State) bool {
	s, ok := st.(State)
	return ok && s.Phase == PhaseGameOver
}

// HasMinimumPlayers reports whether at least two seats remain connected.
func (Game) HasMinimumPlayers(st engine.State) bool {
	s, ok := st.(State)
	if !ok {
		return false
	}
	connected := 0
	for _, p := range s.Core.Players {
		if p.Connected {
			connected++
		}
	}
	return connected >= MinPlayers
}

// OnDisconnect marks the player disconnected.
func (Game) OnDisconnect(st engine.State, userID string) engine.State {
	s, ok := st.(State)
	if !ok {
		return st
	}
	s.Core = s.Core.WithConnected(userID, false)
	return s
}

// OnReconnect marks the player connected again.
func (Game) OnReconnect(st engine.State, userID string) engine.State {
	s, ok := st.(State)
	if !ok {
		return st
	}
	s.Core = s.Core.WithConnected(userID, true)
	return s
}
