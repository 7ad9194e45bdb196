package domino

import "github.com/parlorlabs/parlor/engine"

// TimerTarget arms a timer only while a seat must place, draw, or pass.
// Round-over and game-over phases wait on the leader with no deadline.
func (Game) TimerTarget(st engine.State) (string, int, bool) {
	s, ok := st.(State)
	if !ok || s.Phase != PhasePlaying {
		return "", 0, false
	}
	return s.Seats[s.Turn].PlayerID, s.Settings.TurnTimeSec, true
}

// AutoAction plays the first legal tile found (left end preferred), draws
// when the mode requires it, and passes otherwise.
func (Game) AutoAction(st engine.State, playerID string) (engine.Action, bool) {
	s, ok := st.(State)
	if !ok || s.Phase != PhasePlaying {
		return engine.Action{}, false
	}
	seat := s.seatOf(playerID)
	if seat != s.Turn {
		return engine.Action{}, false
	}

	if tile, side, ok := s.firstLegalMove(seat); ok {
		return engine.Action{
			Type:    ActionPlace,
			UserID:  playerID,
			Payload: PlacePayload{TileID: tile.ID(), Side: side},
		}, true
	}
	if s.Settings.DrawFromBoneyard && len(s.Boneyard) > 0 {
		return engine.Action{Type: ActionDraw, UserID: playerID}, true
	}
	return engine.Action{Type: ActionPass, UserID: playerID}, true
}

// firstLegalMove scans the hand in order for a playable tile.
func (s State) firstLegalMove(seat int) (Tile, Side, bool) {
	for _, t := range s.Seats[seat].Hand {
		if s.Board.CanPlace(t, SideLeft) {
			return t, SideLeft, true
		}
		if s.Board.CanPlace(t, SideRight) {
			return t, SideRight, true
		}
	}
	return NoTile, SideLeft, false
}

// legalMoves enumerates every placement available to a seat, for the
// private view.
func (s State) legalMoves(seat int) []PlacePayload {
	var moves []PlacePayload
	for _, t := range s.Seats[seat].Hand {
		if s.Board.CanPlace(t, SideLeft) {
			moves = append(moves, PlacePayload{TileID: t.ID(), Side: SideLeft})
		}
		if s.Board.CanPlace(t, SideRight) {
			moves = append(moves, PlacePayload{TileID: t.ID(), Side: SideRight})
		}
	}
	return moves
}
