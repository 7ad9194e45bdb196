package lcr

import (
	"fmt"
	"strings"
	"testing"

	"github.com/parlorlabs/parlor/engine"
)

func testRoom(n int) engine.Room {
	room := engine.Room{ID: "room1", GameID: "game1", LeaderID: "p0", Seed: 42}
	for i := 0; i < n; i++ {
		room.Players = append(room.Players, engine.Player{
			ID:        fmt.Sprintf("p%d", i),
			Name:      fmt.Sprintf("Player %d", i),
			Seat:      i,
			Connected: true,
		})
	}
	return room
}

func mustInit(t *testing.T, n int, cfg Settings) State {
	t.Helper()
	st, err := Game{}.Init(testRoom(n), cfg)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return st.(State)
}

// roll builds a face-only roll for driving the confirm path directly.
func rollOf(faces ...Face) []DieRoll {
	out := make([]DieRoll, len(faces))
	for i, f := range faces {
		out[i] = DieRoll{Face: f}
	}
	return out
}

// TestFaceTable verifies the raw-to-face mapping in both modes.
func TestFaceTable(t *testing.T) {
	cases := []struct {
		raw  int
		wild bool
		want Face
	}{
		{1, false, FaceDot},
		{1, true, FaceWild},
		{2, false, FaceDot},
		{3, false, FaceDot},
		{4, false, FaceLeft},
		{5, false, FaceCenter},
		{6, false, FaceRight},
		{4, true, FaceLeft},
	}
	for _, c := range cases {
		if got := faceFor(c.raw, c.wild); got != c.want {
			t.Errorf("faceFor(%d, %v) = %s, want %s", c.raw, c.wild, got, c.want)
		}
	}
}

// TestInitStakes verifies every seat starts with the configured chips and
// the pot empty.
func TestInitStakes(t *testing.T) {
	s := mustInit(t, 4, Settings{})
	for i, seat := range s.Seats {
		if seat.Chips != DefaultStartingChips {
			t.Errorf("seat %d chips = %d, want %d", i, seat.Chips, DefaultStartingChips)
		}
	}
	if s.Pot != 0 {
		t.Errorf("pot = %d, want 0", s.Pot)
	}
	if s.Phase != PhaseRolling {
		t.Errorf("phase = %s, want rolling", s.Phase)
	}
	if s.Turn < 0 || s.Turn >= 4 {
		t.Errorf("starting seat = %d out of range", s.Turn)
	}
}

// TestInitValidation verifies player-count constraints.
func TestInitValidation(t *testing.T) {
	if _, err := (Game{}).Init(testRoom(2), Settings{}); err == nil {
		t.Error("2 players accepted")
	}
	if _, err := (Game{}).Init(testRoom(9), Settings{}); err == nil {
		t.Error("9 players accepted")
	}
}

// TestRollDiceCount verifies one die per held chip, capped at three.
func TestRollDiceCount(t *testing.T) {
	s := mustInit(t, 3, Settings{StartingChips: 5})
	actor := s.Seats[s.Turn].PlayerID

	out := Game{}.Reduce(s, engine.Action{Type: ActionRoll, UserID: actor}).(State)
	if out.Phase != PhaseConfirm {
		t.Fatalf("phase = %s, want confirm", out.Phase)
	}
	if len(out.Roll) != MaxDicePerRoll {
		t.Errorf("rolled %d dice, want %d", len(out.Roll), MaxDicePerRoll)
	}

	// A seat down to one chip rolls one die.
	s2 := s
	seats := s2.cloneSeats()
	seats[s2.Turn].Chips = 1
	s2.Seats = seats
	out = Game{}.Reduce(s2, engine.Action{Type: ActionRoll, UserID: actor}).(State)
	if len(out.Roll) != 1 {
		t.Errorf("rolled %d dice with 1 chip, want 1", len(out.Roll))
	}
}

// TestConfirmMovements verifies the canonical movement batch: left, right,
// and center from a three-chip seat sends one chip to each neighbor and
// one to the pot.
func TestConfirmMovements(t *testing.T) {
	s := mustInit(t, 4, Settings{})
	s.Turn = 1
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceLeft, FaceRight, FaceCenter)
	s.WildTargets = nil
	total := s.totalChips()

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p1"}).(State)

	if got := out.Seats[1].Chips; got != 0 {
		t.Errorf("roller chips = %d, want 0", got)
	}
	if got := out.Seats[0].Chips; got != 4 {
		t.Errorf("left neighbor chips = %d, want 4", got)
	}
	if got := out.Seats[2].Chips; got != 4 {
		t.Errorf("right neighbor chips = %d, want 4", got)
	}
	if out.Pot != 1 {
		t.Errorf("pot = %d, want 1", out.Pot)
	}
	if out.totalChips() != total {
		t.Errorf("total chips %d, want %d (conservation)", out.totalChips(), total)
	}
	if len(out.LastMovements) != 3 {
		t.Errorf("recorded %d movements, want 3", len(out.LastMovements))
	}
	if out.Phase != PhaseRolling {
		t.Errorf("phase = %s, want rolling", out.Phase)
	}
	if out.Turn != 2 {
		t.Errorf("turn = %d, want 2", out.Turn)
	}
}

// TestDotsMoveNothing verifies an all-dot roll keeps every chip in place
// and still advances the turn.
func TestDotsMoveNothing(t *testing.T) {
	s := mustInit(t, 3, Settings{})
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceDot, FaceDot, FaceDot)

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)
	if out.Seats[0].Chips != DefaultStartingChips {
		t.Errorf("roller chips = %d, want %d", out.Seats[0].Chips, DefaultStartingChips)
	}
	if out.Pot != 0 {
		t.Errorf("pot = %d, want 0", out.Pot)
	}
	if out.Turn != 1 {
		t.Errorf("turn = %d, want 1", out.Turn)
	}
}

// TestTurnSkipsChiplessSeats verifies advancement passes over seats
// holding nothing.
func TestTurnSkipsChiplessSeats(t *testing.T) {
	s := mustInit(t, 4, Settings{})
	seats := s.cloneSeats()
	seats[1].Chips = 0
	seats[2].Chips = 0
	s.Seats = seats
	s.Pot = 6
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceDot)

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)
	if out.Turn != 3 {
		t.Errorf("turn = %d, want 3 (seats 1 and 2 skipped)", out.Turn)
	}
}

// TestWildAutoTarget verifies an unresolved wild takes from the richest
// opponent, ties broken by lowest seat index.
func TestWildAutoTarget(t *testing.T) {
	s := mustInit(t, 4, Settings{Wild: true})
	seats := s.cloneSeats()
	seats[0].Chips = 2 // roller
	seats[1].Chips = 5
	seats[2].Chips = 5
	seats[3].Chips = 1
	s.Seats = seats
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceWild, FaceDot)
	s.WildTargets = []string{""}

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)
	if out.Seats[1].Chips != 4 {
		t.Errorf("p1 chips = %d, want 4 (richest, lowest seat)", out.Seats[1].Chips)
	}
	if out.Seats[0].Chips != 3 {
		t.Errorf("roller chips = %d, want 3", out.Seats[0].Chips)
	}
	if out.Seats[2].Chips != 5 {
		t.Errorf("p2 chips = %d, want 5", out.Seats[2].Chips)
	}
}

// TestChooseWildTarget verifies an explicit target fills the first open
// slot and the chip moves from that target on confirm.
func TestChooseWildTarget(t *testing.T) {
	s := mustInit(t, 4, Settings{Wild: true})
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceWild, FaceDot, FaceDot)
	s.WildTargets = []string{""}

	out := Game{}.Reduce(s, engine.Action{
		Type: ActionChooseWild, UserID: "p0",
		Payload: ChooseWildPayload{TargetID: "p3"},
	}).(State)
	if out.WildTargets[0] != "p3" {
		t.Fatalf("wild target = %q, want p3", out.WildTargets[0])
	}

	out = Game{}.Reduce(out, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)
	if out.Seats[3].Chips != DefaultStartingChips-1 {
		t.Errorf("target chips = %d, want %d", out.Seats[3].Chips, DefaultStartingChips-1)
	}
	if out.Seats[0].Chips != DefaultStartingChips+1 {
		t.Errorf("roller chips = %d, want %d", out.Seats[0].Chips, DefaultStartingChips+1)
	}
}

// TestChooseWildRejections verifies the target must be a seated opponent
// with chips and an open wild slot must exist.
func TestChooseWildRejections(t *testing.T) {
	s := mustInit(t, 3, Settings{Wild: true})
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceWild)
	s.WildTargets = []string{""}

	cases := []struct {
		name    string
		payload any
	}{
		{"self target", ChooseWildPayload{TargetID: "p0"}},
		{"unknown target", ChooseWildPayload{TargetID: "zz"}},
		{"missing payload", nil},
	}
	for _, c := range cases {
		out := Game{}.Reduce(s, engine.Action{Type: ActionChooseWild, UserID: "p0", Payload: c.payload}).(State)
		last := out.Core.History[len(out.Core.History)-1]
		if !strings.HasPrefix(last.Note, "invalid_payload") {
			t.Errorf("%s: entry note = %q, want invalid_payload prefix", c.name, last.Note)
		}
		if out.WildTargets[0] != "" {
			t.Errorf("%s: wild slot filled", c.name)
		}
	}
}

// TestStackedWildsNeverOverdraw verifies two wilds against a lone opponent
// holding one chip take that chip once and resolve the second wild to no
// movement instead of faulting.
func TestStackedWildsNeverOverdraw(t *testing.T) {
	s := mustInit(t, 3, Settings{Wild: true})
	seats := s.cloneSeats()
	seats[0].Chips = 3
	seats[1].Chips = 1
	seats[2].Chips = 0
	s.Seats = seats
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceWild, FaceWild, FaceDot)
	s.WildTargets = []string{"", ""}
	total := s.totalChips()

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)

	for _, e := range out.Core.History {
		if e.Kind == "fault" {
			t.Fatalf("confirm faulted: %q", e.Note)
		}
	}
	if out.Seats[1].Chips != 0 {
		t.Errorf("target chips = %d, want 0", out.Seats[1].Chips)
	}
	if out.Seats[0].Chips != 4 {
		t.Errorf("roller chips = %d, want 4 (one wild resolved, one idle)", out.Seats[0].Chips)
	}
	if len(out.LastMovements) != 1 {
		t.Errorf("recorded %d movements, want 1", len(out.LastMovements))
	}
	if out.totalChips() != total {
		t.Errorf("total chips %d, want %d (conservation)", out.totalChips(), total)
	}

	// The roller is now the only holder: the game must settle, not stall.
	if out.Phase != PhaseGameOver {
		t.Fatalf("phase = %s, want game_over", out.Phase)
	}
	if out.Winner != "p0" {
		t.Errorf("winner = %q, want p0", out.Winner)
	}
}

// TestChooseWildOverdrawRejected verifies a second wild cannot be aimed at
// a target whose chips are already fully committed.
func TestChooseWildOverdrawRejected(t *testing.T) {
	s := mustInit(t, 3, Settings{Wild: true})
	seats := s.cloneSeats()
	seats[1].Chips = 1
	s.Seats = seats
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceWild, FaceWild)
	s.WildTargets = []string{"", ""}

	out := Game{}.Reduce(s, engine.Action{
		Type: ActionChooseWild, UserID: "p0",
		Payload: ChooseWildPayload{TargetID: "p1"},
	}).(State)
	if out.WildTargets[0] != "p1" {
		t.Fatalf("first wild target = %q, want p1", out.WildTargets[0])
	}

	out = Game{}.Reduce(out, engine.Action{
		Type: ActionChooseWild, UserID: "p0",
		Payload: ChooseWildPayload{TargetID: "p1"},
	}).(State)
	last := out.Core.History[len(out.Core.History)-1]
	if !strings.HasPrefix(last.Note, "invalid_payload") {
		t.Errorf("entry note = %q, want invalid_payload prefix", last.Note)
	}
	if out.WildTargets[1] != "" {
		t.Errorf("second slot filled with %q despite overdraw", out.WildTargets[1])
	}

	// p2 still has chips, so the second wild can aim there instead.
	out = Game{}.Reduce(out, engine.Action{
		Type: ActionChooseWild, UserID: "p0",
		Payload: ChooseWildPayload{TargetID: "p2"},
	}).(State)
	if out.WildTargets[1] != "p2" {
		t.Errorf("second wild target = %q, want p2", out.WildTargets[1])
	}
}

// TestAllWildInstantWin verifies an all-wild roll sweeps every chip and
// the pot.
func TestAllWildInstantWin(t *testing.T) {
	s := mustInit(t, 3, Settings{Wild: true, StartingChips: 3})
	s.Pot = 2
	total := s.totalChips()
	actor := s.Seats[s.Turn].PlayerID

	// Drive the sweep directly with a pinned roll; the roll path itself is
	// stream-dependent.
	if !allFaces(rollOf(FaceWild, FaceWild, FaceWild), FaceWild) {
		t.Fatal("allFaces wrong on an all-wild roll")
	}
	out := s.collectAll(s.Turn)
	out.Phase = PhaseGameOver
	out.Winner = actor

	if out.Seats[out.Turn].Chips != total {
		t.Errorf("winner chips = %d, want %d", out.Seats[out.Turn].Chips, total)
	}
	if out.Pot != 0 {
		t.Errorf("pot = %d, want 0", out.Pot)
	}
	for i, seat := range out.Seats {
		if i != out.Turn && seat.Chips != 0 {
			t.Errorf("seat %d chips = %d, want 0", i, seat.Chips)
		}
	}
	if !(Game{}).Terminal(out) {
		t.Error("Terminal false after instant win")
	}
}

// TestLastHolderWins verifies the default win: movements leave exactly
// one seat with chips and the pot pays out to it.
func TestLastHolderWins(t *testing.T) {
	s := mustInit(t, 3, Settings{})
	seats := s.cloneSeats()
	seats[0].Chips = 1
	seats[1].Chips = 0
	seats[2].Chips = 2
	s.Seats = seats
	s.Pot = 6
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceCenter)

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)
	if out.Phase != PhaseGameOver {
		t.Fatalf("phase = %s, want game_over", out.Phase)
	}
	if out.Winner != "p2" {
		t.Errorf("winner = %q, want p2", out.Winner)
	}
	if out.Seats[2].Chips != 9 {
		t.Errorf("winner chips = %d, want 9 (2 held + 7 pot)", out.Seats[2].Chips)
	}
	if out.Pot != 0 {
		t.Errorf("pot = %d, want 0", out.Pot)
	}
}

// TestLastChipChallenge verifies the sudden-death gate: the provisional
// winner must roll before the game ends, and the gate opens only once.
func TestLastChipChallenge(t *testing.T) {
	s := mustInit(t, 3, Settings{LastChipChallenge: true})
	seats := s.cloneSeats()
	seats[0].Chips = 1
	seats[1].Chips = 0
	seats[2].Chips = 2
	s.Seats = seats
	s.Pot = 6
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceCenter)

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)
	if out.Phase != PhaseChallenge {
		t.Fatalf("phase = %s, want challenge", out.Phase)
	}
	if out.Seats[out.Turn].PlayerID != "p2" {
		t.Errorf("challenger = %q, want p2", out.Seats[out.Turn].PlayerID)
	}

	total := out.totalChips()
	res := Game{}.Reduce(out, engine.Action{Type: ActionChallenge, UserID: "p2"}).(State)
	if !res.ChallengeTried {
		t.Error("ChallengeTried not set")
	}
	if res.totalChips() != total {
		t.Errorf("total chips %d, want %d", res.totalChips(), total)
	}
	// The roll itself is stream-dependent: all dots wins outright, any
	// other outcome scatters chips and play resumes.
	switch res.Phase {
	case PhaseGameOver:
		if res.Winner != "p2" {
			t.Errorf("winner = %q, want p2", res.Winner)
		}
	case PhaseRolling:
		// Chips scattered; the gate must not reopen later.
	case PhaseChallenge:
		// Every chip landed in the pot; the reducer records the fault.
		last := res.Core.History[len(res.Core.History)-1]
		if last.Kind != "fault" {
			t.Errorf("challenge stalled without a fault entry: %q", last.Kind)
		}
	default:
		t.Errorf("phase = %s", res.Phase)
	}
}

// TestChallengeOnlyOnce verifies a single-holder condition after a spent
// challenge wins outright.
func TestChallengeOnlyOnce(t *testing.T) {
	s := mustInit(t, 3, Settings{LastChipChallenge: true})
	s.ChallengeTried = true
	seats := s.cloneSeats()
	seats[0].Chips = 1
	seats[1].Chips = 0
	seats[2].Chips = 2
	s.Seats = seats
	s.Pot = 6
	s.Turn = 0
	s.Phase = PhaseConfirm
	s.Roll = rollOf(FaceCenter)

	out := Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: "p0"}).(State)
	if out.Phase != PhaseGameOver {
		t.Fatalf("phase = %s, want game_over", out.Phase)
	}
	if out.Winner != "p2" {
		t.Errorf("winner = %q, want p2", out.Winner)
	}
}

// TestRejections verifies turn and phase guards leave state untouched.
func TestRejections(t *testing.T) {
	s := mustInit(t, 3, Settings{})
	notTurn := s.Seats[(s.Turn+1)%3].PlayerID
	before := len(s.Core.History)

	out := Game{}.Reduce(s, engine.Action{Type: ActionRoll, UserID: notTurn}).(State)
	if len(out.Core.History) != before+1 {
		t.Fatalf("history grew by %d, want 1", len(out.Core.History)-before)
	}
	last := out.Core.History[len(out.Core.History)-1]
	if last.Kind != "rejected:roll" {
		t.Errorf("entry kind = %q, want rejected:roll", last.Kind)
	}
	if !strings.HasPrefix(last.Note, "invalid_turn") {
		t.Errorf("entry note = %q, want invalid_turn prefix", last.Note)
	}
	if out.Roll != nil || out.Phase != PhaseRolling {
		t.Error("rejected roll changed state")
	}

	out = Game{}.Reduce(s, engine.Action{Type: ActionConfirm, UserID: s.Seats[s.Turn].PlayerID}).(State)
	last = out.Core.History[len(out.Core.History)-1]
	if !strings.HasPrefix(last.Note, "invalid_phase") {
		t.Errorf("entry note = %q, want invalid_phase prefix", last.Note)
	}
}

// TestPlayAgain verifies the leader resets the table from game over.
func TestPlayAgain(t *testing.T) {
	s := mustInit(t, 3, Settings{StartingChips: 4})
	s.Phase = PhaseGameOver
	s.Winner = "p1"
	s.ChallengeTried = true
	seats := s.cloneSeats()
	seats[0].Chips = 0
	seats[1].Chips = 12
	seats[2].Chips = 0
	s.Seats = seats

	// Non-leader rejected.
	out := Game{}.Reduce(s, engine.Action{Type: ActionPlayAgain, UserID: "p1"}).(State)
	if out.Phase != PhaseGameOver {
		t.Fatal("non-leader reset the game")
	}

	out = Game{}.Reduce(s, engine.Action{Type: ActionPlayAgain, UserID: "p0"}).(State)
	if out.Phase != PhaseRolling {
		t.Fatalf("phase = %s, want rolling", out.Phase)
	}
	for i, seat := range out.Seats {
		if seat.Chips != 4 {
			t.Errorf("seat %d chips = %d, want 4", i, seat.Chips)
		}
	}
	if out.Winner != "" || out.ChallengeTried || out.Pot != 0 {
		t.Error("stale game-over state survived reset")
	}
}

// TestTimerAndAuto verifies the timer targets the turn seat and the
// auto-action matches the waiting phase.
func TestTimerAndAuto(t *testing.T) {
	s := mustInit(t, 3, Settings{TurnTimeSec: 20})
	actor := s.Seats[s.Turn].PlayerID

	pid, secs, ok := Game{}.TimerTarget(s)
	if !ok || pid != actor || secs != 20 {
		t.Fatalf("TimerTarget = %q %d %v", pid, secs, ok)
	}
	if a, ok := (Game{}).AutoAction(s, actor); !ok || a.Type != ActionRoll {
		t.Errorf("rolling auto = %v %v, want roll", a.Type, ok)
	}

	s.Phase = PhaseConfirm
	if a, ok := (Game{}).AutoAction(s, actor); !ok || a.Type != ActionConfirm {
		t.Errorf("confirm auto = %v %v, want confirm", a.Type, ok)
	}

	s.Phase = PhaseChallenge
	if a, ok := (Game{}).AutoAction(s, actor); !ok || a.Type != ActionChallenge {
		t.Errorf("challenge auto = %v %v, want challenge", a.Type, ok)
	}

	// A chipless turn seat never gets a timer.
	s.Phase = PhaseRolling
	seats := s.cloneSeats()
	seats[s.Turn].Chips = 0
	s.Seats = seats
	if _, _, ok := (Game{}).TimerTarget(s); ok {
		t.Error("chipless seat armed a timer")
	}
}

// TestViews verifies the public projection carries the whole table and
// the private one is viewer-relative.
func TestViews(t *testing.T) {
	s := mustInit(t, 3, Settings{})

	pub, ok := Game{}.PublicView(s, nil).(PublicState)
	if !ok {
		t.Fatal("PublicView type")
	}
	if len(pub.Seats) != 3 {
		t.Fatalf("public seats = %d, want 3", len(pub.Seats))
	}
	if pub.TurnPlayerID != s.Seats[s.Turn].PlayerID {
		t.Errorf("turn player = %q", pub.TurnPlayerID)
	}

	priv, ok := Game{}.PrivateView(s, "p1").(PrivateState)
	if !ok {
		t.Fatal("PrivateView type")
	}
	if priv.TurnOrder[0] != "p1" {
		t.Errorf("turn order = %v, want viewer first", priv.TurnOrder)
	}
	if priv.MyTurn != (s.Seats[s.Turn].PlayerID == "p1") {
		t.Error("MyTurn flag wrong")
	}
}
