package lcr

import (
	"fmt"
	"sort"

	"github.com/parlorlabs/parlor/engine"
)

// GameType is the registry key for this machine.
const GameType = "lcr"

// Action vocabulary.
const (
	ActionRoll       engine.ActionType = "roll"
	ActionConfirm    engine.ActionType = "confirm"
	ActionChooseWild engine.ActionType = "choose_wild_target"
	ActionChallenge  engine.ActionType = "challenge_roll"
	ActionPlayAgain  engine.ActionType = "play_again"
)

// ChooseWildPayload names the opponent a wild die takes a chip from.
type ChooseWildPayload struct {
	TargetID string `json:"targetId"`
}

// Phase is the current sub-state of the round.
type Phase string

const (
	PhaseRolling   Phase = "rolling"   // the turn seat must roll
	PhaseConfirm   Phase = "confirm"   // a roll awaits wild targets / confirmation
	PhaseChallenge Phase = "challenge" // last-chip sudden death
	PhaseGameOver  Phase = "game_over"
)

// Settings holds the configurable rules, supplied by the lobby.
type Settings struct {
	TurnTimeSec       int  `json:"turnTimeSec"` // 0 disables the turn timer
	StartingChips     int  `json:"startingChips"`
	Wild              bool `json:"wild"`              // raw 1 becomes a wild die
	LastChipChallenge bool `json:"lastChipChallenge"` // sudden death before the win
}

const (
	DefaultStartingChips = 3

	MinPlayers = 3
	MaxPlayers = 8
)

func (s Settings) startingChips() int {
	if s.StartingChips <= 0 {
		return DefaultStartingChips
	}
	return s.StartingChips
}

// Seat is one player's position and chip count. Seat order is fixed for
// the round; neighbors are pure seat-index arithmetic.
type Seat struct {
	PlayerID string `json:"playerId"`
	Chips    int    `json:"chips"`
}

// State is the complete game state, treated as an immutable value.
type State struct {
	Core engine.Core

	Settings Settings
	Phase    Phase

	Seats []Seat
	Pot   int
	Turn  int // seat index due to act

	// Current unconfirmed roll.
	Roll        []DieRoll
	WildTargets []string // parallel to the WILD dice in Roll; "" = unresolved

	// ChallengeTried is set once the last-chip challenge has been
	// attempted; a later single-holder condition then wins outright.
	ChallengeTried bool

	LastMovements []Movement // the most recently settled batch
	Winner        string
}

// Base implements engine.State.
func (s State) Base() engine.Core { return s.Core }

func (s State) seatOf(playerID string) int {
	for i, st := range s.Seats {
		if st.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// leftOf and rightOf are the neighbor seats by index arithmetic.
func (s State) leftOf(seat int) int  { return (seat - 1 + len(s.Seats)) % len(s.Seats) }
func (s State) rightOf(seat int) int { return (seat + 1) % len(s.Seats) }

func (s State) cloneSeats() []Seat {
	seats := make([]Seat, len(s.Seats))
	copy(seats, s.Seats)
	return seats
}

// totalChips is the conserved quantity: every seat's chips plus the pot.
func (s State) totalChips() int {
	sum := s.Pot
	for _, st := range s.Seats {
		sum += st.Chips
	}
	return sum
}

// wildCount returns the number of WILD dice in the current roll.
func (s State) wildCount() int {
	n := 0
	for _, d := range s.Roll {
		if d.Face == FaceWild {
			n++
		}
	}
	return n
}

// Game is the dice/chip state machine.
type Game struct{}

var _ engine.Machine = Game{}

// GameType implements engine.Machine.
func (Game) GameType() string { return GameType }

// Init seats the room and stakes every player with the starting chips.
func (Game) Init(room engine.Room, settings any) (engine.State, error) {
	cfg, ok := settings.(Settings)
	if !ok {
		return nil, fmt.Errorf("lcr: settings type %T, want lcr.Settings", settings)
	}
	n := len(room.Players)
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("lcr: %d players, want %d-%d", n, MinPlayers, MaxPlayers)
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
		Phase:    PhaseRolling,
	}
	for _, p := range players {
		s.Seats = append(s.Seats, Seat{PlayerID: p.ID, Chips: cfg.startingChips()})
	}

	// Random starting seat, drawn from the in-state stream.
	s.Core.RNG, s.Turn = s.Core.RNG.IntN(n)
	s.Core = s.Core.Noted(0, "game_start",
		fmt.Sprintf("%d seats, %d chips each", n, cfg.startingChips()))
	return s, nil
}
