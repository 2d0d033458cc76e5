package matcher

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreveal/internal/deck"
	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/handhistory"
)

// threeMaxHand mirrors a short 3-max hand with Hero on the button.
func threeMaxHand() *handhistory.Hand {
	cards, _ := deck.ParseCards("Qd Qc")
	flop, _ := deck.ParseCards("8s 9d 5h")
	turn, _ := deck.ParseCard("2c")
	hand := &handhistory.Hand{
		HandID:      "RC1355005344",
		TableName:   "RushAndCash1179072",
		TableFormat: handhistory.ThreeMax,
		ButtonSeat:  3,
		Seats: []handhistory.Seat{
			{Number: 1, PlayerID: "e3efcaed", Stack: 10.45, Position: handhistory.SmallBlind},
			{Number: 2, PlayerID: "5641b4a0", Stack: 9.23, Position: handhistory.BigBlind},
			{Number: 3, PlayerID: handhistory.HeroID, Stack: 12.01, Position: handhistory.Button},
		},
		Actions: []handhistory.Action{
			{PlayerID: "e3efcaed", Verb: handhistory.PostSmallBlind, Amount: 0.05, Street: handhistory.Preflop},
			{PlayerID: "5641b4a0", Verb: handhistory.PostBigBlind, Amount: 0.1, Street: handhistory.Preflop},
		},
		HeroCards: cards,
	}
	hand.Board.Flop = [3]deck.Card{flop[0], flop[1], flop[2]}
	hand.Board.HasFlop = true
	hand.Board.Turn = turn
	hand.Board.HasTurn = true
	return hand
}

func roleEvidence() evidence.Evidence {
	return evidence.Evidence{
		EvidenceID:   "shot-0007",
		HeroName:     "TuichAAreko",
		HeroPosition: 3,
		HeroCards:    []string{"Qd", "Qc"},
		HeroStack:    12.01,
		Board:        evidence.Board{Flop: []string{"8s", "9d", "5h"}, Turn: "2c"},
		Players: []evidence.PlayerObservation{
			{Name: "TuichAAreko", Stack: 12.01, Position: 3},
			{Name: "Gyodong22", Stack: 10.45, Position: 1},
			{Name: "v1[nn]1", Stack: 9.23, Position: 2},
		},
		DealerPlayer:     "TuichAAreko",
		SmallBlindPlayer: "Gyodong22",
		BigBlindPlayer:   "v1[nn]1",
		Confidence:       0.9,
	}
}

func TestScoreDirectIDShortCircuits(t *testing.T) {
	hand := threeMaxHand()
	ev := evidence.Evidence{
		EvidenceID: "shot-0001-RC1355005344",
		// Everything else contradicts the hand on purpose.
		HeroCards: []string{"2h", "7c"},
		HeroStack: 999,
	}

	bd := Score(hand, &ev)
	assert.Equal(t, 100.0, bd.Total())
	assert.Equal(t, 100.0, bd.DirectID)
}

func TestScoreHandIDHint(t *testing.T) {
	hand := threeMaxHand()
	ev := evidence.Evidence{EvidenceID: "shot-2", HandIDHint: "RC1355005344"}
	assert.Equal(t, 100.0, Score(hand, &ev).Total())
}

func TestScoreWeightedCriteria(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()

	bd := Score(hand, &ev)
	assert.Equal(t, 0.0, bd.DirectID)
	assert.Equal(t, 40.0, bd.HoleCards, "exact hole cards")
	assert.Equal(t, 15.0, bd.HeroSeat, "hero seat number matches visual position")
	assert.Equal(t, 20.0, bd.Board, "full flop plus turn, no river dealt")
	assert.Equal(t, 5.0, bd.Stack, "identical stacks")
	assert.Equal(t, 80.0, bd.Total())
}

func TestScorePartialHoleCards(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.HeroCards = []string{"Qd", "2s"}

	bd := Score(hand, &ev)
	assert.Equal(t, 20.0, bd.HoleCards, "one-card overlap earns partial credit only")
}

func TestScoreStackDecay(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()

	ev.HeroStack = hand.Seats[2].Stack * 1.1 // 10% off: half credit
	assert.InDelta(t, 2.5, Score(hand, &ev).Stack, 0.01)

	ev.HeroStack = hand.Seats[2].Stack * 1.25 // outside the 20% band
	assert.Equal(t, 0.0, Score(hand, &ev).Stack)
}

func TestScoreFlopProportional(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.Board = evidence.Board{Flop: []string{"8s", "9d", "Kh"}}

	bd := Score(hand, &ev)
	assert.InDelta(t, flopMax*2/3, bd.Board, 0.01)
}

func TestBestMatchThreshold(t *testing.T) {
	hand := threeMaxHand()
	weak := evidence.Evidence{
		EvidenceID: "shot-weak",
		HeroCards:  []string{"Qd", "2s"}, // 20 points, below threshold
	}

	_, ok := BestMatch(hand, []evidence.Evidence{weak}, DefaultThreshold)
	assert.False(t, ok, "hand should remain unmapped as a coverage gap")
}

func TestBestMatchTieBreakFirstSeen(t *testing.T) {
	hand := threeMaxHand()
	a := roleEvidence()
	a.EvidenceID = "shot-a"
	b := roleEvidence()
	b.EvidenceID = "shot-b"

	match, ok := BestMatch(hand, []evidence.Evidence{a, b}, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "shot-a", match.EvidenceID, "equal scores: earliest evidence wins")

	match, ok = BestMatch(hand, []evidence.Evidence{b, a}, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "shot-b", match.EvidenceID)
}

func TestBestMatchPrefersStrictlyHigherScore(t *testing.T) {
	hand := threeMaxHand()
	weaker := roleEvidence()
	weaker.EvidenceID = "shot-weaker"
	weaker.HeroCards = []string{"Qd", "2s"}
	stronger := roleEvidence()
	stronger.EvidenceID = "shot-stronger"

	match, ok := BestMatch(hand, []evidence.Evidence{weaker, stronger}, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "shot-stronger", match.EvidenceID)
}

func TestSeatMapRoleBased(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()

	m, source, err := SeatMap(hand, &ev)
	require.NoError(t, err)
	assert.Equal(t, SourceRole, source)
	assert.Equal(t, map[string]string{
		handhistory.HeroID: "TuichAAreko",
		"e3efcaed":         "Gyodong22",
		"5641b4a0":         "v1[nn]1",
	}, m)
}

func TestSeatMapPositionalFallback(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.DealerPlayer = "" // incomplete anchors force the fallback

	m, source, err := SeatMap(hand, &ev)
	require.NoError(t, err)
	assert.Equal(t, SourcePositional, source)
	// Hero sits in seat 3 at visual position 3; walking clockwise pairs
	// seat 1 with position 1 and seat 2 with position 2.
	assert.Equal(t, map[string]string{
		handhistory.HeroID: "TuichAAreko",
		"e3efcaed":         "Gyodong22",
		"5641b4a0":         "v1[nn]1",
	}, m)
}

func TestSeatMapPositionalRotation(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.DealerPlayer = ""
	// Hero observed at visual position 1: seat 1 pairs with position 2,
	// seat 2 with position 3.
	ev.HeroPosition = 1
	ev.Players = []evidence.PlayerObservation{
		{Name: "TuichAAreko", Position: 1},
		{Name: "Gyodong22", Position: 2},
		{Name: "v1[nn]1", Position: 3},
	}

	m, _, err := SeatMap(hand, &ev)
	require.NoError(t, err)
	require.NotEmpty(t, m)
	assert.Equal(t, "Gyodong22", m["e3efcaed"])
	assert.Equal(t, "v1[nn]1", m["5641b4a0"])
}

func TestSeatMapRejectsDuplicateNames(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.SmallBlindPlayer = "v1[nn]1" // same name reported for two seats

	m, _, err := SeatMap(hand, &ev)
	assert.ErrorIs(t, err, ErrAmbiguousMapping)
	assert.Empty(t, m, "ambiguous evidence must be discarded, not guessed")
}

func TestSeatMapPositionalRequiresFullObservation(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.DealerPlayer = ""
	ev.Players = ev.Players[:2]

	m, _, err := SeatMap(hand, &ev)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestAggregateTables(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.EvidenceID = "shot-0001-RC1355005344" // direct match

	tables := AggregateTables([]handhistory.Hand{*hand}, []evidence.Evidence{ev}, DefaultThreshold, zerolog.New(io.Discard))
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, "RushAndCash1179072", table.TableName)
	assert.Equal(t, 1, table.HandsTotal)
	assert.Equal(t, 1, table.HandsMatched)
	assert.Equal(t, "TuichAAreko", table.HeroName)
	assert.Empty(t, table.Conflicts)

	require.Contains(t, table.Mappings, "e3efcaed")
	assert.Equal(t, "Gyodong22", table.Mappings["e3efcaed"].Name)
	assert.Equal(t, SourceDirect, table.Mappings["e3efcaed"].Source)
	assert.True(t, table.Mappings["e3efcaed"].Locked)
	assert.NotContains(t, table.Mappings, handhistory.HeroID, "Hero is never aggregated")
}

func TestAggregateOrderIndependent(t *testing.T) {
	handA := threeMaxHand()
	handB := threeMaxHand()
	handB.HandID = "RC1355005399"

	evA := roleEvidence()
	evA.EvidenceID = "shot-RC1355005344"
	evB := roleEvidence()
	evB.EvidenceID = "shot-RC1355005399"

	logger := zerolog.New(io.Discard)
	hands := []handhistory.Hand{*handA, *handB}

	forward := AggregateTables(hands, []evidence.Evidence{evA, evB}, DefaultThreshold, logger)
	reverse := AggregateTables(hands, []evidence.Evidence{evB, evA}, DefaultThreshold, logger)

	require.Len(t, forward, 1)
	require.Len(t, reverse, 1)
	assert.Equal(t, forward[0].Resolved(), reverse[0].Resolved())
	assert.Empty(t, forward[0].Conflicts)
	assert.Empty(t, reverse[0].Conflicts)
}

func TestAggregateFlagsConflicts(t *testing.T) {
	handA := threeMaxHand()
	handB := threeMaxHand()
	handB.HandID = "RC1355005399"

	evA := roleEvidence()
	evA.EvidenceID = "shot-RC1355005344"
	evB := roleEvidence()
	evB.EvidenceID = "shot-RC1355005399"
	evB.SmallBlindPlayer = "SomebodyElse"

	tables := AggregateTables([]handhistory.Hand{*handA, *handB}, []evidence.Evidence{evA, evB}, DefaultThreshold, zerolog.New(io.Discard))
	require.Len(t, tables, 1)

	table := tables[0]
	require.Len(t, table.Conflicts, 1)
	conflict := table.Conflicts[0]
	assert.Equal(t, "e3efcaed", conflict.AnonID)
	assert.Contains(t, [][]string{{"SomebodyElse"}, {"Gyodong22"}}, conflict.Rejected)
	// The disagreement is flagged, never silently overwritten: the
	// mapping still resolves to exactly one of the two names.
	assert.Contains(t, []string{"Gyodong22", "SomebodyElse"}, table.Mappings["e3efcaed"].Name)
}

func TestAggregateSurfacesAmbiguousEvidence(t *testing.T) {
	hand := threeMaxHand()
	ev := roleEvidence()
	ev.EvidenceID = "shot-0001-RC1355005344" // direct match
	ev.SmallBlindPlayer = "v1[nn]1"          // same name reported for two seats

	match, ok := BestMatch(hand, []evidence.Evidence{ev}, DefaultThreshold)
	require.True(t, ok)
	assert.True(t, match.Ambiguous)
	assert.Empty(t, match.SeatMapping)

	tables := AggregateTables([]handhistory.Hand{*hand}, []evidence.Evidence{ev}, DefaultThreshold, zerolog.New(io.Discard))
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, 1, table.HandsMatched)
	assert.Empty(t, table.Mappings, "an ambiguous mapping is discarded whole")

	// The rejection is visible to the caller, not silently swallowed.
	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], hand.HandID)
	assert.Contains(t, table.Warnings[0], ev.EvidenceID)
}

func TestAggregateCoverageGap(t *testing.T) {
	hand := threeMaxHand()
	tables := AggregateTables([]handhistory.Hand{*hand}, nil, DefaultThreshold, zerolog.New(io.Discard))
	require.Len(t, tables, 1)
	assert.Equal(t, 0, tables[0].HandsMatched)
	assert.Empty(t, tables[0].Mappings)
}
