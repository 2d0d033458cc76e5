// Package matcher correlates parsed hands with visual-evidence records,
// derives per-seat name mappings, and aggregates them per table session.
// Everything here is a pure function over immutable inputs; results are
// recomputed per run and never mutate the hands they were derived from.
package matcher

import (
	"math"
	"strings"

	"github.com/lox/handreveal/internal/deck"
	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/handhistory"
)

// Scoring weights. A direct hand-id hit short-circuits at 100; the
// remaining criteria sum to at most 100.
const (
	directScore      = 100.0
	holeCardsExact   = 40.0
	holeCardsPartial = 20.0
	heroSeatPoints   = 15.0
	flopMax          = 10.0
	turnPoints       = 10.0
	riverPoints      = 10.0
	stackMax         = 5.0
	stackBand        = 0.20
	namePairPoints   = 2.0
	namesMax         = 10.0
)

// ScoreBreakdown carries one field per scoring criterion so criteria
// are exhaustively enumerable.
type ScoreBreakdown struct {
	DirectID    float64
	HoleCards   float64
	HeroSeat    float64
	Board       float64
	Stack       float64
	PlayerNames float64
}

// Total returns the aggregate confidence on a 0..100 scale.
func (s ScoreBreakdown) Total() float64 {
	if s.DirectID > 0 {
		return s.DirectID
	}
	return s.HoleCards + s.HeroSeat + s.Board + s.Stack + s.PlayerNames
}

// Score rates how well one evidence record matches one hand. If the
// hand's id appears inside the evidence identifier (or the capture tool
// read the id directly), the record scores exactly 100 regardless of
// any other criterion.
func Score(hand *handhistory.Hand, ev *evidence.Evidence) ScoreBreakdown {
	if hand.HandID != "" &&
		(strings.Contains(ev.EvidenceID, hand.HandID) || ev.HandIDHint == hand.HandID) {
		return ScoreBreakdown{DirectID: directScore}
	}

	var bd ScoreBreakdown
	heroSeat, hasHero := hand.HeroSeat()

	if len(hand.HeroCards) == 2 && len(ev.HeroCards) > 0 {
		if evCards, err := deck.ParseCards(strings.Join(ev.HeroCards, " ")); err == nil {
			if deck.SameSet(hand.HeroCards, evCards) {
				bd.HoleCards = holeCardsExact
			} else if deck.Overlap(hand.HeroCards, evCards) > 0 {
				bd.HoleCards = holeCardsPartial
			}
		}
	}

	if hasHero && ev.HeroPosition > 0 && ev.HeroPosition == heroSeat.Number {
		bd.HeroSeat = heroSeatPoints
	}

	bd.Board = scoreBoard(hand.Board, ev.Board)

	if hasHero && ev.HeroStack > 0 && heroSeat.Stack > 0 {
		rel := math.Abs(ev.HeroStack-heroSeat.Stack) / heroSeat.Stack
		if rel < stackBand {
			bd.Stack = stackMax * (1 - rel/stackBand)
		}
	}

	names := make(map[string]bool, len(ev.Players))
	for _, p := range ev.Players {
		names[p.Name] = true
	}
	for _, id := range hand.AnonymizedIDs() {
		if names[id] {
			bd.PlayerNames += namePairPoints
		}
	}
	if bd.PlayerNames > namesMax {
		bd.PlayerNames = namesMax
	}

	return bd
}

// scoreBoard awards flop credit proportionally to matching cards;
// turn and river are binary exact matches.
func scoreBoard(board handhistory.Board, obs evidence.Board) float64 {
	score := 0.0

	if board.HasFlop && len(obs.Flop) > 0 {
		if flop, err := deck.ParseCards(strings.Join(obs.Flop, " ")); err == nil {
			score += flopMax * float64(deck.Overlap(board.FlopCards(), flop)) / 3
		}
	}
	if board.HasTurn && obs.Turn != "" {
		if card, err := deck.ParseCard(obs.Turn); err == nil && card == board.Turn {
			score += turnPoints
		}
	}
	if board.HasRiver && obs.River != "" {
		if card, err := deck.ParseCard(obs.River); err == nil && card == board.River {
			score += riverPoints
		}
	}
	return score
}
