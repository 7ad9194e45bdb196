package lcr

import (
	"fmt"

	"github.com/parlorlabs/parlor/engine"
)

// rollDice draws count raw values from the state's RNG stream and maps
// them through the face table.
func rollDice(rng engine.RNG, count int, wild bool) (engine.RNG, []DieRoll) {
	roll := make([]DieRoll, count)
	for i := range roll {
		var raw int
		rng, raw = rng.IntN(6)
		raw++
		roll[i] = DieRoll{Face: faceFor(raw, wild), Raw: uint8(raw)}
	}
	return rng, roll
}

// resolveWilds fills the unresolved wild slots against a running view of
// opponent chips, so stacked wilds never overdraw one seat. Chosen targets
// are charged first; each remaining slot then takes the richest opponent
// with an uncommitted chip, ties broken by lowest seat index. A slot with
// no eligible opponent stays empty and resolves to no movement.
func (s State) resolveWilds(roller int, targets []string) []string {
	avail := make([]int, len(s.Seats))
	for i, st := range s.Seats {
		avail[i] = st.Chips
	}
	for _, t := range targets {
		if t == "" {
			continue
		}
		if i := s.seatOf(t); i >= 0 {
			avail[i]--
		}
	}

	out := append([]string(nil), targets...)
	for slot, t := range out {
		if t != "" {
			continue
		}
		best := -1
		for i := range s.Seats {
			if i == roller || avail[i] <= 0 {
				continue
			}
			if best < 0 || avail[i] > avail[best] {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		out[slot] = s.Seats[best].PlayerID
		avail[best]--
	}
	return out
}

// committedAgainst counts the wild slots already assigned to a target.
func (s State) committedAgainst(targetID string) int {
	n := 0
	for _, t := range s.WildTargets {
		if t == targetID {
			n++
		}
	}
	return n
}

// movements builds the delta batch for a roll. targets is parallel to the
// WILD dice in the roll; an empty entry means the wild resolves to no
// movement.
func (s State) movements(roller int, roll []DieRoll, targets []string) []Movement {
	rollerID := s.Seats[roller].PlayerID
	var movs []Movement
	wildIdx := 0
	for _, d := range roll {
		switch d.Face {
		case FaceLeft:
			movs = append(movs, Movement{
				FromPlayerID: rollerID,
				ToPlayerID:   s.Seats[s.leftOf(roller)].PlayerID,
				Count:        1,
				DieFace:      FaceLeft,
			})
		case FaceRight:
			movs = append(movs, Movement{
				FromPlayerID: rollerID,
				ToPlayerID:   s.Seats[s.rightOf(roller)].PlayerID,
				Count:        1,
				DieFace:      FaceRight,
			})
		case FaceCenter:
			movs = append(movs, Movement{
				FromPlayerID: rollerID,
				Count:        1,
				DieFace:      FaceCenter,
			})
		case FaceWild:
			target := ""
			if wildIdx < len(targets) {
				target = targets[wildIdx]
			}
			wildIdx++
			if target != "" {
				// The wild die takes a chip from the target.
				movs = append(movs, Movement{
					FromPlayerID: target,
					ToPlayerID:   rollerID,
					Count:        1,
					DieFace:      FaceWild,
				})
			}
		}
	}
	return movs
}

// applyBatch settles a whole movement batch as signed deltas, so chip
// conservation holds regardless of movement order. ok is false when a
// delta would drive a seat negative, which indicates a broken invariant
// upstream.
func (s State) applyBatch(movs []Movement) (State, bool) {
	deltas := make(map[string]int)
	potDelta := 0
	for _, m := range movs {
		deltas[m.FromPlayerID] -= m.Count
		if m.ToPlayerID == "" {
			potDelta += m.Count
		} else {
			deltas[m.ToPlayerID] += m.Count
		}
	}

	seats := s.cloneSeats()
	for i := range seats {
		seats[i].Chips += deltas[seats[i].PlayerID]
		if seats[i].Chips < 0 {
			return s, false
		}
	}
	s.Seats = seats
	s.Pot += potDelta
	s.LastMovements = movs
	return s, true
}

// collectAll moves every other seat's chips and the pot to the winner.
// The transfer is zero-sum: the conserved total is unchanged.
func (s State) collectAll(winner int) State {
	seats := s.cloneSeats()
	total := s.Pot
	for i := range seats {
		if i != winner {
			total += seats[i].Chips
			seats[i].Chips = 0
		}
	}
	seats[winner].Chips += total
	s.Seats = seats
	s.Pot = 0
	return s
}

// settle runs the post-movement bookkeeping: win detection, the last-chip
// challenge gate, and turn advancement to the next seat holding chips.
func (s State) settle(a engine.Action) State {
	holders := 0
	holderSeat := -1
	for i, st := range s.Seats {
		if st.Chips > 0 {
			holders++
			holderSeat = i
		}
	}

	switch holders {
	case 0:
		// The win condition should have fired before every chip reached
		// the pot; record the broken invariant and abandon the dispatch.
		s.Core = s.Core.Faulted(a, "no seat with chips remains")
		return s

	case 1:
		if s.Settings.LastChipChallenge && !s.ChallengeTried {
			s.Phase = PhaseChallenge
			s.Turn = holderSeat
			s.Core = s.Core.Noted(a.At, "challenge_start",
				fmt.Sprintf("%s must roll all dots", s.Seats[holderSeat].PlayerID))
			return s
		}
		return s.win(a, holderSeat)

	default:
		next, ok := s.nextHolder(s.Turn)
		if !ok {
			s.Core = s.Core.Faulted(a, "no next seat with chips")
			return s
		}
		s.Turn = next
		s.Phase = PhaseRolling
		return s
	}
}

// win pays the pot to the winning seat and ends the game.
func (s State) win(a engine.Action, seat int) State {
	seats := s.cloneSeats()
	seats[seat].Chips += s.Pot
	s.Seats = seats
	s.Pot = 0
	s.Phase = PhaseGameOver
	s.Winner = s.Seats[seat].PlayerID
	s.Core = s.Core.Noted(a.At, "game_end", fmt.Sprintf("winner %s", s.Winner))
	return s
}

// nextHolder returns the next seat index after from (wrapping) holding at
// least one chip.
func (s State) nextHolder(from int) (int, bool) {
	n := len(s.Seats)
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if s.Seats[i].Chips > 0 {
			return i, true
		}
	}
	return 0, false
}
