package lcr

import "github.com/parlorlabs/parlor/engine"

// TimerTarget arms a timer for the seat due to roll, confirm, or face the
// challenge. Game-over waits on the leader with no deadline, and a
// chipless turn seat never gets a timer: its auto-action could not act.
func (Game) TimerTarget(st engine.State) (string, int, bool) {
	s, ok := st.(State)
	if !ok || s.Phase == PhaseGameOver {
		return "", 0, false
	}
	if s.Seats[s.Turn].Chips == 0 {
		return "", 0, false
	}
	return s.Seats[s.Turn].PlayerID, s.Settings.TurnTimeSec, true
}

// AutoAction rolls, confirms with auto-resolved wilds, or takes the
// challenge roll, matching whatever the phase is waiting for.
func (Game) AutoAction(st engine.State, playerID string) (engine.Action, bool) {
	s, ok := st.(State)
	if !ok || s.Phase == PhaseGameOver {
		return engine.Action{}, false
	}
	if s.seatOf(playerID) != s.Turn {
		return engine.Action{}, false
	}

	switch s.Phase {
	case PhaseRolling:
		return engine.Action{Type: ActionRoll, UserID: playerID}, true
	case PhaseConfirm:
		// Confirm resolves any remaining wilds to the richest opponent.
		return engine.Action{Type: ActionConfirm, UserID: playerID}, true
	case PhaseChallenge:
		return engine.Action{Type: ActionChallenge, UserID: playerID}, true
	}
	return engine.Action{}, false
}
