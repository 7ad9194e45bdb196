package lcr

import "github.com/parlorlabs/parlor/engine"

// PublicSeat is one seat with its chip count. Nothing in this game is
// hidden, so the public view carries the whole table.
type PublicSeat struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Chips     int    `json:"chips"`
	Connected bool   `json:"connected"`
}

// PublicState is the broadcast projection.
type PublicState struct {
	GameID        string            `json:"gameId"`
	RoomID        string            `json:"roomId"`
	GameType      string            `json:"gameType"`
	LeaderID      string            `json:"leaderId"`
	Phase         Phase             `json:"phase"`
	Seats         []PublicSeat      `json:"seats"`
	Pot           int               `json:"pot"`
	TurnPlayerID  string            `json:"turnPlayerId,omitempty"`
	Roll          []DieRoll         `json:"roll,omitempty"`
	WildTargets   []string          `json:"wildTargets,omitempty"`
	LastMovements []Movement        `json:"lastMovements,omitempty"`
	Winner        string            `json:"winner,omitempty"`
	Timer         *engine.TimerView `json:"timer,omitempty"`
}

// PrivateState adds only the viewer-relative turn order; chip counts are
// already public.
type PrivateState struct {
	GameID    string   `json:"gameId"`
	PlayerID  string   `json:"playerId"`
	MyTurn    bool     `json:"myTurn"`
	WildsOpen int      `json:"wildsOpen"` // unresolved wild dice awaiting a target
	TurnOrder []string `json:"turnOrder"`
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
		Pot:           s.Pot,
		Roll:          s.Roll,
		WildTargets:   s.WildTargets,
		LastMovements: s.LastMovements,
		Winner:        s.Winner,
		Timer:         timer,
	}
	if s.Phase != PhaseGameOver {
		view.TurnPlayerID = s.Seats[s.Turn].PlayerID
	}
	for i, seat := range s.Seats {
		ps := PublicSeat{PlayerID: seat.PlayerID, Seat: i, Chips: seat.Chips}
		if p := s.Core.PlayerByID(seat.PlayerID); p != nil {
			ps.Name = p.Name
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
	view.MyTurn = s.Phase != PhaseGameOver && seat == s.Turn
	if view.MyTurn && s.Phase == PhaseConfirm {
		for _, t := range s.WildTargets {
			if t == "" {
				view.WildsOpen++
			}
		}
	}
	return view
}
