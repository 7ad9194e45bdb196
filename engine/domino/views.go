package domino

import "github.com/parlorlabs/parlor/engine"

// TileView is a tile as clients see it.
type TileView struct {
	ID    uint8 `json:"id"`
	Left  uint8 `json:"left"`
	Right uint8 `json:"right"`
}

func tileViews(tiles []Tile) []TileView {
	out := make([]TileView, len(tiles))
	for i, t := range tiles {
		out[i] = TileView{ID: t.ID(), Left: t.Left(), Right: t.Right()}
	}
	return out
}

// BoardView is the chain with both exposed ends.
type BoardView struct {
	Tiles []TileView `json:"tiles"`
	Left  *End       `json:"leftEnd"`
	Right *End       `json:"rightEnd"`
}

// PublicSeat is one seat with its hand reduced to a count.
type PublicSeat struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	TeamID    string `json:"teamId,omitempty"`
	TileCount int    `json:"tileCount"`
	Connected bool   `json:"connected"`
}

// PublicState is the broadcast projection: no hands, derived counts, and
// the timer descriptor for client countdown re-derivation.
type PublicState struct {
	GameID        string              `json:"gameId"`
	RoomID        string              `json:"roomId"`
	GameType      string              `json:"gameType"`
	LeaderID      string              `json:"leaderId"`
	Phase         Phase               `json:"phase"`
	Round         int                 `json:"round"`
	Board         BoardView           `json:"board"`
	BoneyardCount int                 `json:"boneyardCount"`
	Seats         []PublicSeat        `json:"seats"`
	TurnPlayerID  string              `json:"turnPlayerId,omitempty"`
	Passes        int                 `json:"passes"`
	Scores        map[string]int      `json:"scores"`
	TeamScores    map[string]int      `json:"teamScores,omitempty"`
	TeamMembers   map[string][]string `json:"teamMembers,omitempty"`
	LastRound     *RoundResult        `json:"lastRound,omitempty"`
	Winner        string              `json:"winner,omitempty"`
	Timer         *engine.TimerView   `json:"timer,omitempty"`
}

// PrivateState is the per-recipient projection: the viewer's own hand,
// their legal moves, and turn order rotated viewer-first.
type PrivateState struct {
	GameID     string         `json:"gameId"`
	PlayerID   string         `json:"playerId"`
	Hand       []TileView     `json:"hand"`
	LegalMoves []PlacePayload `json:"legalMoves,omitempty"`
	CanDraw    bool           `json:"canDraw"`
	TurnOrder  []string       `json:"turnOrder"`
}

// PublicView implements engine.Machine.
func (Game) PublicView(st engine.State, timer *engine.TimerView) any {
	s, ok := st.(State)
	if !ok {
		return nil
	}
	view := PublicState{
		GameID:        s.Core.ID,
		RoomID:        s.Core.RoomID,
		GameType:      s.Core.GameType,
		LeaderID:      s.Core.LeaderID,
		Phase:         s.Phase,
		Round:         s.Round,
		Board:         BoardView{Tiles: tileViews(s.Board.Tiles), Left: s.Board.Left, Right: s.Board.Right},
		BoneyardCount: len(s.Boneyard),
		Passes:        s.Passes,
		Scores:        s.Scores,
		TeamScores:    s.TeamScores,
		TeamMembers:   s.TeamMembers,
		LastRound:     s.LastRound,
		Winner:        s.Winner,
		Timer:         timer,
	}
	if s.Phase == PhasePlaying {
		view.TurnPlayerID = s.Seats[s.Turn].PlayerID
	}
	for i, seat := range s.Seats {
		ps := PublicSeat{PlayerID: seat.PlayerID, Seat: i, TileCount: len(seat.Hand)}
		if p := s.Core.PlayerByID(seat.PlayerID); p != nil {
			ps.Name = p.Name
			ps.TeamID = p.TeamID
			ps.Connected = p.Connected
		}
		view.Seats = append(view.Seats, ps)
	}
	return view
}

// PrivateView implements engine.Machine.
func (Game) PrivateView(st engine.State, userID string) any {
	s, ok := st.(State)
	if !ok {
		return nil
	}
	view := PrivateState{
		GameID:    s.Core.ID,
		PlayerID:  userID,
		TurnOrder: engine.RotatedOrder(s.Core.Players, userID),
	}
	seat := s.seatOf(userID)
	if seat < 0 {
		return view
	}
	view.Hand = tileViews(s.Seats[seat].Hand)
	if s.Phase == PhasePlaying && seat == s.Turn {
		view.LegalMoves = s.legalMoves(seat)
		view.CanDraw = s.Settings.DrawFromBoneyard && len(s.Boneyard) > 0 &&
			len(view.LegalMoves) == 0
	}
	return view
}
