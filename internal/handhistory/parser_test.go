package handhistory

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreveal/internal/deck"
)

const sampleHand = `Poker Hand #RC1355005344: Hold'em No Limit ($0.05/$0.1) - 2021/07/01 21:25:36
Table 'RushAndCash1179072' 6-max Seat #3 is the button
Seat 1: e3efcaed ($10.45 in chips)
Seat 2: 5641b4a0 ($9.23 in chips)
Seat 3: Hero ($12.01 in chips)
Seat 4: 9f8e7d6c ($4.50 in chips)
e3efcaed: posts small blind $0.05
5641b4a0: posts big blind $0.1
*** HOLE CARDS ***
Dealt to Hero [Qd Qc]
9f8e7d6c: folds
Hero: raises $0.2 to $0.3
e3efcaed: folds
5641b4a0: calls $0.2
*** FLOP *** [8s 9d 5h]
5641b4a0: checks
Hero: bets $0.45
5641b4a0: calls $0.45
*** TURN *** [8s 9d 5h] [2c]
5641b4a0: checks
Hero: bets $1.2 and is all-in
5641b4a0: folds
Uncalled bet ($1.2) returned to Hero
Hero collected $1.55 from pot
*** SUMMARY ***
Total pot $1.65 | Rake $0.1
Board [8s 9d 5h 2c]
Seat 1: e3efcaed (small blind) folded before Flop
Seat 2: 5641b4a0 (big blind) folded on the Turn
Seat 3: Hero (button) collected ($1.55)
Seat 4: 9f8e7d6c folded before Flop (didn't bet)`

func newTestParser() *Parser {
	return NewParser(zerolog.New(io.Discard))
}

func TestParseHand(t *testing.T) {
	hand, err := newTestParser().ParseHand(sampleHand)
	require.NoError(t, err)

	assert.Equal(t, "RC1355005344", hand.HandID)
	assert.Equal(t, "Hold'em No Limit", hand.GameType)
	assert.Equal(t, "$0.05/$0.1", hand.Stakes)
	assert.Equal(t, time.Date(2021, 7, 1, 21, 25, 36, 0, time.UTC), hand.Timestamp)
	assert.Equal(t, "RushAndCash1179072", hand.TableName)
	assert.Equal(t, SixMax, hand.TableFormat)
	assert.Equal(t, 3, hand.ButtonSeat)
	assert.Equal(t, sampleHand, hand.RawText)

	require.Len(t, hand.Seats, 4)
	assert.Equal(t, "e3efcaed", hand.Seats[0].PlayerID)
	assert.Equal(t, 10.45, hand.Seats[0].Stack)
	assert.Equal(t, SmallBlind, hand.Seats[0].Position)
	assert.Equal(t, BigBlind, hand.Seats[1].Position)
	assert.Equal(t, Button, hand.Seats[2].Position)

	hero, ok := hand.HeroSeat()
	require.True(t, ok)
	assert.Equal(t, 3, hero.Number)
	assert.Equal(t, "Qd Qc", deck.Format(hand.HeroCards))

	require.True(t, hand.Board.HasFlop)
	assert.Equal(t, "8s", hand.Board.Flop[0].String())
	require.True(t, hand.Board.HasTurn)
	assert.Equal(t, "2c", hand.Board.Turn.String())
	assert.False(t, hand.Board.HasRiver)
}

func TestParseHandActions(t *testing.T) {
	hand, err := newTestParser().ParseHand(sampleHand)
	require.NoError(t, err)

	var sb, raise, allin, collect *Action
	for i := range hand.Actions {
		a := &hand.Actions[i]
		switch {
		case a.Verb == PostSmallBlind:
			sb = a
		case a.Verb == Raise:
			raise = a
		case a.AllIn:
			allin = a
		case a.Verb == Collect:
			collect = a
		}
	}

	require.NotNil(t, sb)
	assert.Equal(t, "e3efcaed", sb.PlayerID)
	assert.Equal(t, 0.05, sb.Amount)
	assert.Equal(t, Preflop, sb.Street)

	require.NotNil(t, raise)
	assert.Equal(t, 0.2, raise.Amount)
	assert.Equal(t, 0.3, raise.RaiseTo, "raise 'to' amount takes precedence")
	assert.Equal(t, Preflop, raise.Street)

	require.NotNil(t, allin)
	assert.Equal(t, HeroID, allin.PlayerID)
	assert.Equal(t, Turn, allin.Street)

	require.NotNil(t, collect)
	assert.Equal(t, HeroID, collect.PlayerID)
	assert.Equal(t, 1.55, collect.Amount)
}

func TestParseHandStreetTagging(t *testing.T) {
	hand, err := newTestParser().ParseHand(sampleHand)
	require.NoError(t, err)

	byStreet := map[Street]int{}
	for _, a := range hand.Actions {
		byStreet[a.Street]++
	}
	assert.Equal(t, 6, byStreet[Preflop]) // two posts plus four actions
	assert.Equal(t, 3, byStreet[Flop])
	assert.Equal(t, 4, byStreet[Turn]) // includes the pot collection
}

func TestParseHandThreeMax(t *testing.T) {
	text := `Poker Hand #RC99: Hold'em No Limit ($0.25/$0.5) - 2021/07/02 10:00:00
Table 'RushAndCash55' 3-max Seat #3 is the button
Seat 1: e3efcaed ($50 in chips)
Seat 2: 5641b4a0 ($50 in chips)
Seat 3: Hero ($50 in chips)
e3efcaed: posts small blind $0.25
5641b4a0: posts big blind $0.5
*** HOLE CARDS ***
Dealt to Hero [Ah Kd]
Hero: folds`

	hand, err := newTestParser().ParseHand(text)
	require.NoError(t, err)
	assert.Equal(t, ThreeMax, hand.TableFormat)
	assert.Equal(t, SmallBlind, hand.Seats[0].Position)
	assert.Equal(t, BigBlind, hand.Seats[1].Position)
	assert.Equal(t, Button, hand.Seats[2].Position)
}

func TestParseHandTournamentHeader(t *testing.T) {
	text := `Poker Hand #TM501: Tournament #7712345, $2.50+$0.25 Hold'em No Limit - Level5(60/120) - 2021/08/14 19:03:11
Table '12' 6-max Seat #2 is the button
Seat 1: Hero (3,010 in chips)
Seat 2: ab9902f1 (5,200 in chips)
ab9902f1: posts small blind 60
Hero: posts big blind 120
*** HOLE CARDS ***
Dealt to Hero [7s 7d]
ab9902f1: folds
Hero collected 180 from pot`

	hand, err := newTestParser().ParseHand(text)
	require.NoError(t, err)
	require.NotNil(t, hand.Tournament)
	assert.Equal(t, "7712345", hand.Tournament.ID)
	assert.Equal(t, "$2.50+$0.25", hand.Tournament.BuyIn)
	assert.Equal(t, "Hold'em No Limit", hand.GameType)
	assert.Equal(t, 3010.0, hand.Seats[0].Stack)
}

func TestParseFileDropsMalformedBlocks(t *testing.T) {
	text := sampleHand + "\n\n\n" + "this is not a hand\njust noise" + "\n\n\n" + `Poker Hand #RC2: Hold'em No Limit ($0.05/$0.1) - 2021/07/01 21:26:02
Table 'RushAndCash1179072' 6-max Seat #4 is the button
Seat 3: Hero ($12.01 in chips)
Seat 4: 9f8e7d6c ($4.50 in chips)
9f8e7d6c: posts small blind $0.05
Hero: posts big blind $0.1
*** HOLE CARDS ***
Dealt to Hero [2h 7c]
9f8e7d6c: folds`

	hands := newTestParser().ParseFile(text)
	require.Len(t, hands, 2)
	assert.Equal(t, "RC1355005344", hands[0].HandID)
	assert.Equal(t, "RC2", hands[1].HandID)
}

func TestParseHandMissingHeader(t *testing.T) {
	_, err := newTestParser().ParseHand("Seat 1: abc ($10 in chips)")
	require.ErrorIs(t, err, ErrMalformedHand)
}

func TestParseHandDuplicateHero(t *testing.T) {
	text := `Poker Hand #RC3: Hold'em No Limit ($0.05/$0.1) - 2021/07/01 21:26:02
Seat 1: Hero ($10 in chips)
Seat 2: Hero ($10 in chips)`
	_, err := newTestParser().ParseHand(text)
	require.ErrorIs(t, err, ErrMalformedHand)
}
