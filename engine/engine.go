// Package engine defines the contract every turn-based game in this server
// satisfies: a deterministic state machine driven by tagged actions, with
// per-viewer projections and hooks for the turn-timer integration layer.
//
// State values are immutable: a reducer never mutates its input, it returns
// a new value (or the prior value with a single audit entry appended when
// the action is rejected). All randomness lives inside the state as an
// xorshift64 stream, so the same (state, action) pair always produces the
// same result.
package engine

// ActionType tags an action within a game's closed action vocabulary.
type ActionType string

// Action is one unit of input for a game reducer. Payload holds exactly one
// payload struct per action type; reducers match on Type and type-assert.
// At is stamped by the dispatcher before the reducer runs, so reducers stay
// free of wall-clock reads.
type Action struct {
	Type    ActionType
	UserID  string
	At      int64 // unix milliseconds, dispatcher-stamped
	Payload any
}

// RejectReason classifies why a reducer refused an action.
type RejectReason string

const (
	RejectInvalidTurn    RejectReason = "invalid_turn"
	RejectInvalidPhase   RejectReason = "invalid_phase"
	RejectInvalidPayload RejectReason = "invalid_payload"
	RejectFault          RejectReason = "fault"
)

// Player describes one participant as supplied by the lobby collaborator.
// Seat is the participant's fixed position in turn order.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	TeamID    string `json:"teamId,omitempty"`
	Connected bool   `json:"connected"`
}

// Entry is one line of the append-only history log carried inside a state.
type Entry struct {
	Seq    int    `json:"seq"`
	At     int64  `json:"at"`
	UserID string `json:"userId,omitempty"`
	Kind   string `json:"kind"`
	Note   string `json:"note,omitempty"`
}

// Core holds the fields shared by every concrete game state.
type Core struct {
	ID       string
	RoomID   string
	GameType string
	LeaderID string
	Players  []Player
	History  []Entry
	RNG      RNG
}

// Applied returns a copy of the core with an entry recording an accepted
// action. The history slice is re-allocated so the prior state value is
// never aliased.
func (c Core) Applied(a Action, note string) Core {
	return c.appended(Entry{
		At:     a.At,
		UserID: a.UserID,
		Kind:   string(a.Type),
		Note:   note,
	})
}

// Rejected returns a copy of the core with an entry auditing a refused
// action. Rejection is the only observable effect of an invalid action.
func (c Core) Rejected(a Action, reason RejectReason, note string) Core {
	msg := string(reason)
	if note != "" {
		msg += ": " + note
	}
	return c.appended(Entry{
		At:     a.At,
		UserID: a.UserID,
		Kind:   "rejected:" + string(a.Type),
		Note:   msg,
	})
}

// Faulted returns a copy of the core auditing a broken internal invariant.
// The dispatch that detected it is aborted; the process is not.
func (c Core) Faulted(a Action, note string) Core {
	return c.appended(Entry{
		At:     a.At,
		UserID: a.UserID,
		Kind:   "fault",
		Note:   note,
	})
}

// Noted returns a copy of the core with a free-form entry (round summaries,
// lifecycle markers).
func (c Core) Noted(at int64, kind, note string) Core {
	return c.appended(Entry{At: at, Kind: kind, Note: note})
}

func (c Core) appended(e Entry) Core {
	e.Seq = len(c.History) + 1
	hist := make([]Entry, len(c.History), len(c.History)+1)
	copy(hist, c.History)
	c.History = append(hist, e)
	return c
}

// ClonePlayers returns a copy of the core with its player slice re-allocated
// so connection flags can be updated without touching prior state values.
func (c Core) ClonePlayers() Core {
	players := make([]Player, len(c.Players))
	copy(players, c.Players)
	c.Players = players
	return c
}

// WithConnected returns a copy of the core with one player's connection
// flag updated.
func (c Core) WithConnected(id string, connected bool) Core {
	c = c.ClonePlayers()
	if p := c.PlayerByID(id); p != nil {
		p.Connected = connected
	}
	return c
}

// PlayerByID returns the player with the given id, or nil.
func (c *Core) PlayerByID(id string) *Player {
	for i := range c.Players {
		if c.Players[i].ID == id {
			return &c.Players[i]
		}
	}
	return nil
}

// State is the value every concrete game state satisfies. Base returns a
// copy of the shared core fields; mutation happens only through reducers.
type State interface {
	Base() Core
}

// Room is the slice of lobby state a game needs to initialize: participant
// identities with seats and team assignments, plus an RNG seed so Init
// performs no I/O of its own.
type Room struct {
	ID       string
	GameID   string
	LeaderID string
	Players  []Player
	Seed     uint64
}

// TimerView is the client-facing description of the running turn timer.
// Clients re-derive the countdown from these three absolute values, which
// keeps the display correct under clock skew. The server-side grace period
// is excluded from DurationMS.
type TimerView struct {
	StartedAt  int64 `json:"startedAt"`
	DurationMS int64 `json:"durationMs"`
	ServerNow  int64 `json:"serverTimeNow"`
}

// Machine is a game's deterministic state machine. Reduce must be total: it
// never panics and never blocks, and it returns the prior state (plus one
// audit entry) for any action it cannot accept.
type Machine interface {
	// GameType identifies the machine in the session registry.
	GameType() string

	// Init builds the opening state for a room. settings is the machine's
	// own settings type; Init errors on a wrong type or an unplayable room.
	Init(room Room, settings any) (State, error)

	// Reduce applies one action, returning the successor state.
	Reduce(s State, a Action) State

	// PublicView projects s for broadcast: no player's hidden holdings,
	// derived public counts, and the current timer descriptor when one is
	// running.
	PublicView(s State, timer *TimerView) any

	// PrivateView projects s for one recipient: their own holdings and a
	// turn order rotated so the viewer is first.
	PrivateView(s State, userID string) any

	// Terminal reports whether s can accept no further play.
	Terminal(s State) bool

	// HasMinimumPlayers reports whether enough seats remain connected for
	// play to continue.
	HasMinimumPlayers(s State) bool

	// OnDisconnect and OnReconnect record connection changes in the state.
	OnDisconnect(s State, userID string) State
	OnReconnect(s State, userID string) State

	// TimerTarget reports whether the current phase is one a turn timer
	// should run for, and if so which player must act and their limit.
	TimerTarget(s State) (playerID string, seconds int, ok bool)

	// AutoAction synthesizes the action a timed-out player takes, given the
	// live state at expiry. ok is false when the phase has no auto-action.
	AutoAction(s State, playerID string) (Action, bool)
}

// RotatedOrder returns the seat-ordered player ids rotated so viewerID comes
// first. Unknown viewers get the unrotated order.
func RotatedOrder(players []Player, viewerID string) []string {
	order := make([]string, len(players))
	for i, p := range players {
		order[i] = p.ID
	}
	for i, id := range order {
		if id == viewerID {
			return append(order[i:], order[:i]...)
		}
	}
	return order
}
