package domino

import (
	"fmt"

	"github.com/parlorlabs/parlor/engine"
)

// pipTotals returns each player's remaining pip total.
func (s State) pipTotals() map[string]int {
	totals := make(map[string]int, len(s.Seats))
	for _, st := range s.Seats {
		sum := 0
		for _, t := range st.Hand {
			sum += t.PipTotal()
		}
		totals[st.PlayerID] = sum
	}
	return totals
}

// party returns the scoring identity for a player: their team in team mode,
// otherwise themselves.
func (s State) party(playerID string) string {
	if !s.Settings.Teams {
		return playerID
	}
	if p := s.Core.PlayerByID(playerID); p != nil {
		return p.TeamID
	}
	return playerID
}

// endRound settles a finished round. winnerSeat is the seat that emptied
// its hand, or -1 for a blocked game. Returns the state in PhaseRoundOver,
// or PhaseGameOver when a party reaches the win target.
func (s State) endRound(a engine.Action, winnerSeat int, blocked bool) State {
	totals := s.pipTotals()
	result := RoundResult{Blocked: blocked, PipTotals: totals}

	var winnerParty string
	switch {
	case !blocked:
		winnerParty = s.party(s.Seats[winnerSeat].PlayerID)
		result.Winner = winnerParty
		result.Points = s.payout(winnerParty, totals)

	default:
		lowest := -1
		for _, st := range s.Seats {
			if t := totals[st.PlayerID]; lowest < 0 || t < lowest {
				lowest = t
			}
		}
		parties := make(map[string]bool)
		for _, st := range s.Seats {
			if totals[st.PlayerID] == lowest {
				parties[s.party(st.PlayerID)] = true
			}
		}
		if len(parties) != 1 {
			// Caribbean rule: lowest seats from different parties score nothing.
			result.Tie = true
		} else {
			for p := range parties {
				winnerParty = p
			}
			result.Winner = winnerParty
			result.Points = s.blockedPayout(winnerParty, totals, lowest)
		}
	}

	if result.Points > 0 {
		if s.Settings.Teams {
			scores := cloneScores(s.TeamScores)
			scores[winnerParty] += result.Points
			s.TeamScores = scores
		} else {
			scores := cloneScores(s.Scores)
			scores[winnerParty] += result.Points
			s.Scores = scores
		}
	}

	s.LastRound = &result
	if result.Tie {
		s.Core = s.Core.Noted(a.At, "round_end", "blocked tie, no score change")
	} else {
		s.Core = s.Core.Noted(a.At, "round_end",
			fmt.Sprintf("%s +%d", winnerParty, result.Points))
	}

	if winnerParty != "" && s.partyScore(winnerParty) >= s.Settings.targetScore() {
		s.Phase = PhaseGameOver
		s.Winner = winnerParty
		s.Core = s.Core.Noted(a.At, "game_end", fmt.Sprintf("winner %s", winnerParty))
	} else {
		s.Phase = PhaseRoundOver
	}
	return s
}

// payout is the outright-win credit: the sum of every opposing player's
// remaining pips. In team mode the winner's partner contributes nothing.
func (s State) payout(winnerParty string, totals map[string]int) int {
	points := 0
	for _, st := range s.Seats {
		if s.party(st.PlayerID) != winnerParty {
			points += totals[st.PlayerID]
		}
	}
	return points
}

// blockedPayout credits a blocked game. Team mode pays the opposing team's
// full pip sum; otherwise the winner takes the differential to each
// opponent's total.
func (s State) blockedPayout(winnerParty string, totals map[string]int, lowest int) int {
	if s.Settings.Teams {
		return s.payout(winnerParty, totals)
	}
	points := 0
	for _, st := range s.Seats {
		if st.PlayerID != winnerParty {
			points += totals[st.PlayerID] - lowest
		}
	}
	return points
}

func (s State) partyScore(party string) int {
	if s.Settings.Teams {
		return s.TeamScores[party]
	}
	return s.Scores[party]
}
