package domino

import (
	"fmt"
	"sort"

	"github.com/parlorlabs/parlor/engine"
)

// GameType is the registry key for this machine.
const GameType = "domino"

// Action vocabulary.
const (
	ActionPlace    engine.ActionType = "place"
	ActionPass     engine.ActionType = "pass"
	ActionDraw     engine.ActionType = "draw"
	ActionContinue engine.ActionType = "continue"
)

// PlacePayload identifies the tile to play and which chain end to play it on.
type PlacePayload struct {
	TileID uint8 `json:"tileId"`
	Side   Side  `json:"side"`
}

// Phase is the coarse lifecycle of a domino game.
type Phase string

const (
	PhasePlaying   Phase = "playing"
	PhaseRoundOver Phase = "round_over"
	PhaseGameOver  Phase = "game_over"
)

// Settings holds the configurable rules, supplied by the lobby.
type Settings struct {
	TurnTimeSec      int  `json:"turnTimeSec"`      // 0 disables the turn timer
	TargetScore      int  `json:"targetScore"`      // 0 → DefaultTargetScore
	HandSize         int  `json:"handSize"`         // 0 → DefaultHandSize
	Teams            bool `json:"teams"`            // 2v2; requires 4 seats
	DrawFromBoneyard bool `json:"drawFromBoneyard"` // must draw before passing
}

const (
	DefaultTargetScore = 100
	DefaultHandSize    = 7

	MinPlayers = 2
	MaxPlayers = 4
)

func (s Settings) targetScore() int {
	if s.TargetScore <= 0 {
		return DefaultTargetScore
	}
	return s.TargetScore
}

func (s Settings) handSize() int {
	if s.HandSize <= 0 {
		return DefaultHandSize
	}
	return s.HandSize
}

// Seat is one player's position and hand. Seat order is turn order.
type Seat struct {
	PlayerID string
	Hand     []Tile
}

// RoundResult summarizes a finished round for clients and history.
type RoundResult struct {
	Winner    string         `json:"winner,omitempty"` // player id, or team id in team mode
	Tie       bool           `json:"tie"`
	Blocked   bool           `json:"blocked"`
	Points    int            `json:"points"`
	PipTotals map[string]int `json:"pipTotals"`
}

// State is the complete domino game state. It is treated as an immutable
// value: reducers return new values and clone any slice or map they change.
type State struct {
	Core engine.Core

	Settings Settings
	Phase    Phase
	Round    int

	Seats    []Seat
	Board    Board
	Boneyard []Tile

	Turn   int // seat index due to act
	Passes int // consecutive passes

	Scores      map[string]int      // per-player, monotonically non-decreasing
	TeamScores  map[string]int      // team mode only
	TeamMembers map[string][]string // team id → player ids, team mode only

	LastRound *RoundResult
	Winner    string // player id (or team id) once Phase == PhaseGameOver
}

// Base implements engine.State.
func (s State) Base() engine.Core { return s.Core }

// seatOf returns the seat index for a player id, or -1.
func (s State) seatOf(playerID string) int {
	for i, st := range s.Seats {
		if st.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// cloneSeats re-allocates the seat slice and every hand so a reducer can
// rewrite them without aliasing the prior state value.
func (s State) cloneSeats() []Seat {
	seats := make([]Seat, len(s.Seats))
	for i, st := range s.Seats {
		hand := make([]Tile, len(st.Hand))
		copy(hand, st.Hand)
		seats[i] = Seat{PlayerID: st.PlayerID, Hand: hand}
	}
	return seats
}

func cloneScores(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Game is the domino state machine. It is stateless; all game state lives
// in State values.
type Game struct{}

var _ engine.Machine = Game{}

// GameType implements engine.Machine.
func (Game) GameType() string { return GameType }

// Init deals the opening round for a room.
func (Game) Init(room engine.Room, settings any) (engine.State, error) {
	cfg, ok := settings.(Settings)
	if !ok {
		return nil, fmt.Errorf("domino: settings type %T, want domino.Settings", settings)
	}
	n := len(room.Players)
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("domino: %d players, want %d-%d", n, MinPlayers, MaxPlayers)
	}
	if cfg.Teams && n != 4 {
		return nil, fmt.Errorf("domino: team mode requires 4 players, got %d", n)
	}
	if cfg.handSize()*n > SetSize {
		return nil, fmt.Errorf("domino: hand size %d too large for %d players", cfg.handSize(), n)
	}

	players := make([]engine.Player, n)
	copy(players, room.Players)
	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })

	s := State{
		Core: engine.Core{
			ID:       room.GameID,
			RoomID:   room.ID,
			GameType: GameType,
			LeaderID: room.LeaderID,
			Players:  players,
			RNG:      engine.NewRNG(room.Seed),
		},
		Settings: cfg,
		Scores:   make(map[string]int, n),
	}
	for _, p := range players {
		s.Seats = append(s.Seats, Seat{PlayerID: p.ID})
		s.Scores[p.ID] = 0
	}
	if cfg.Teams {
		s.TeamScores = make(map[string]int)
		s.TeamMembers = make(map[string][]string)
		for _, p := range players {
			if p.TeamID == "" {
				return nil, fmt.Errorf("domino: team mode requires a team id for player %s", p.ID)
			}
			s.TeamMembers[p.TeamID] = append(s.TeamMembers[p.TeamID], p.ID)
			s.TeamScores[p.TeamID] = 0
		}
		if len(s.TeamMembers) != 2 {
			return nil, fmt.Errorf("domino: team mode requires exactly 2 teams, got %d", len(s.TeamMembers))
		}
	}

	s = deal(s)
	s.Core = s.Core.Noted(0, "round_start", fmt.Sprintf("round %d", s.Round))
	return s, nil
}

// deal shuffles a fresh full set, partitions hands, keeps the remainder as
// the boneyard, and seats the starting player (highest double, else seat 0).
func deal(s State) State {
	set := FullSet()
	s.Core.RNG = s.Core.RNG.Shuffle(len(set), func(i, j int) {
		set[i], set[j] = set[j], set[i]
	})

	hand := s.Settings.handSize()
	seats := make([]Seat, len(s.Seats))
	for i := range s.Seats {
		seats[i] = Seat{
			PlayerID: s.Seats[i].PlayerID,
			Hand:     append([]Tile(nil), set[i*hand:(i+1)*hand]...),
		}
	}
	s.Seats = seats
	s.Boneyard = append([]Tile(nil), set[len(seats)*hand:]...)

	s.Board = Board{}
	s.Passes = 0
	s.Round++
	s.Phase = PhasePlaying
	s.LastRound = nil
	s.Turn = startingSeat(seats)
	return s
}

// startingSeat is the seat holding the highest double, defaulting to 0.
func startingSeat(seats []Seat) int {
	best, bestSeat := -1, 0
	for i, st := range seats {
		for _, t := range st.Hand {
			if t.IsDouble() && int(t.Left()) > best {
				best = int(t.Left())
				bestSeat = i
			}
		}
	}
	return bestSeat
}
