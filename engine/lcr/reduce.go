package lcr

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
	case ActionRoll:
		return s.roll(a)
	case ActionConfirm:
		return s.confirm(a)
	case ActionChooseWild:
		return s.chooseWild(a)
	case ActionChallenge:
		return s.challenge(a)
	case ActionPlayAgain:
		return s.playAgain(a)
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

// requireTurn validates phase and acting seat.
func (s State) requireTurn(a engine.Action, phase Phase) (int, *State) {
	if s.Phase != phase {
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

func (s State) roll(a engine.Action) State {
	seat, bad := s.requireTurn(a, PhaseRolling)
	if bad != nil {
		return *bad
	}
	chips := s.Seats[seat].Chips
	if chips == 0 {
		// A chipless seat should never hold the turn.
		s.Core = s.Core.Faulted(a, "turn seat has no chips")
		return s
	}

	dice := chips
	if dice > MaxDicePerRoll {
		dice = MaxDicePerRoll
	}
	var roll []DieRoll
	s.Core.RNG, roll = rollDice(s.Core.RNG, dice, s.Settings.Wild)

	s.Roll = roll
	s.Core = s.Core.Applied(a, fmt.Sprintf("rolled %s", faceString(roll)))

	if s.Settings.Wild && allFaces(roll, FaceWild) {
		// Every die wild: the roller sweeps the table outright.
		s = s.collectAll(seat)
		s.Roll = nil
		s.WildTargets = nil
		s.Phase = PhaseGameOver
		s.Winner = s.Seats[seat].PlayerID
		s.Core = s.Core.Noted(a.At, "game_end",
			fmt.Sprintf("all wilds, winner %s", s.Winner))
		return s
	}

	s.Phase = PhaseConfirm
	s.WildTargets = make([]string, s.wildCount())
	return s
}

func (s State) chooseWild(a engine.Action) State {
	seat, bad := s.requireTurn(a, PhaseConfirm)
	if bad != nil {
		return *bad
	}
	p, ok := a.Payload.(ChooseWildPayload)
	if !ok {
		return s.reject(a, engine.RejectInvalidPayload, "wild target payload missing")
	}
	target := s.seatOf(p.TargetID)
	if target < 0 || target == seat {
		return s.reject(a, engine.RejectInvalidPayload, "target not an opponent")
	}
	if s.Seats[target].Chips == 0 {
		return s.reject(a, engine.RejectInvalidPayload, "target has no chips")
	}
	if s.committedAgainst(p.TargetID) >= s.Seats[target].Chips {
		return s.reject(a, engine.RejectInvalidPayload, "target cannot cover another wild")
	}

	slot := -1
	for i, t := range s.WildTargets {
		if t == "" {
			slot = i
			break
		}
	}
	if slot < 0 {
		return s.reject(a, engine.RejectInvalidPayload, "no unresolved wild die")
	}

	targets := append([]string(nil), s.WildTargets...)
	targets[slot] = p.TargetID
	s.WildTargets = targets
	s.Core = s.Core.Applied(a, fmt.Sprintf("wild targets %s", p.TargetID))
	return s
}

func (s State) confirm(a engine.Action) State {
	seat, bad := s.requireTurn(a, PhaseConfirm)
	if bad != nil {
		return *bad
	}

	// Unresolved wilds fall back to the richest opponent, charged one slot
	// at a time so stacked wilds cannot overdraw a seat.
	targets := s.resolveWilds(seat, s.WildTargets)

	movs := s.movements(seat, s.Roll, targets)
	next, ok := s.applyBatch(movs)
	if !ok {
		s.Core = s.Core.Faulted(a, "movement batch drove a seat negative")
		return s
	}
	s = next
	s.Roll = nil
	s.WildTargets = nil
	s.Core = s.Core.Applied(a, fmt.Sprintf("%d chips moved", len(movs)))
	return s.settle(a)
}

func (s State) challenge(a engine.Action) State {
	seat, bad := s.requireTurn(a, PhaseChallenge)
	if bad != nil {
		return *bad
	}

	// Sudden death: one die per held chip, uncapped.
	var roll []DieRoll
	s.Core.RNG, roll = rollDice(s.Core.RNG, s.Seats[seat].Chips, s.Settings.Wild)
	s.ChallengeTried = true
	s.Roll = nil
	s.WildTargets = nil
	s.LastMovements = nil
	s.Core = s.Core.Applied(a, fmt.Sprintf("challenge rolled %s", faceString(roll)))

	if allFaces(roll, FaceDot) {
		return s.win(a, seat)
	}

	// Opponents all hold zero chips, so wild dice resolve to no movement.
	movs := s.movements(seat, roll, s.resolveWilds(seat, make([]string, len(roll))))
	next, ok := s.applyBatch(movs)
	if !ok {
		s.Core = s.Core.Faulted(a, "movement batch drove a seat negative")
		return s
	}
	s = next
	return s.settle(a)
}

func (s State) playAgain(a engine.Action) State {
	if s.Phase != PhaseGameOver {
		return s.reject(a, engine.RejectInvalidPhase, string(s.Phase))
	}
	if a.UserID != s.Core.LeaderID {
		return s.reject(a, engine.RejectInvalidTurn, "leader only")
	}

	seats := s.cloneSeats()
	for i := range seats {
		seats[i].Chips = s.Settings.startingChips()
	}
	s.Seats = seats
	s.Pot = 0
	s.Roll = nil
	s.WildTargets = nil
	s.ChallengeTried = false
	s.LastMovements = nil
	s.Winner = ""
	s.Phase = PhaseRolling
	s.Core.RNG, s.Turn = s.Core.RNG.IntN(len(s.Seats))
	s.Core = s.Core.Applied(a, "new game")
	s.Core = s.Core.Noted(a.At, "game_start",
		fmt.Sprintf("%d seats, %d chips each", len(s.Seats), s.Settings.startingChips()))
	return s
}

// Terminal implements engine.Machine.
func (Game) Terminal(st engine.State) bool {
	s, ok := st.(State)
	return ok && s.Phase == PhaseGameOver
}

// HasMinimumPlayers reports whether enough seats remain connected to play.
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
