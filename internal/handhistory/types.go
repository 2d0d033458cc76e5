// Package handhistory parses anonymized poker hand-history exports into
// structured records. Parsing is line oriented and deliberately lenient:
// a block that cannot yield the required header fields is dropped so a
// single bad export never aborts a batch.
package handhistory

import (
	"time"

	"github.com/lox/handreveal/internal/deck"
)

// HeroID is the literal seat identifier the export uses for the
// operator's own seat. It is never treated as an anonymized token.
const HeroID = "Hero"

// TableFormat is the table size variant of a hand.
type TableFormat int

const (
	SixMax TableFormat = iota
	ThreeMax
)

// Size returns the number of seats the format supports.
func (f TableFormat) Size() int {
	if f == ThreeMax {
		return 3
	}
	return 6
}

// String returns the marker used in table lines.
func (f TableFormat) String() string {
	if f == ThreeMax {
		return "3-max"
	}
	return "6-max"
}

// Position is a seat role derived from the offset to the button.
type Position int

const (
	Button Position = iota
	SmallBlind
	BigBlind
	UnderTheGun
	MiddlePosition
	Cutoff
	UnknownPosition
)

// String returns the short role name.
func (p Position) String() string {
	switch p {
	case Button:
		return "BTN"
	case SmallBlind:
		return "SB"
	case BigBlind:
		return "BB"
	case UnderTheGun:
		return "UTG"
	case MiddlePosition:
		return "MP"
	case Cutoff:
		return "CO"
	default:
		return "?"
	}
}

// Street identifies the betting round an action belongs to.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
	Summary
)

// String returns the street marker name.
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	case Summary:
		return "summary"
	default:
		return "?"
	}
}

// Verb is the kind of action taken on a street.
type Verb int

const (
	PostSmallBlind Verb = iota
	PostBigBlind
	PostAnte
	Fold
	Check
	Call
	Bet
	Raise
	Collect
)

// String returns the action verb as it appears in the export.
func (v Verb) String() string {
	switch v {
	case PostSmallBlind:
		return "posts small blind"
	case PostBigBlind:
		return "posts big blind"
	case PostAnte:
		return "posts the ante"
	case Fold:
		return "folds"
	case Check:
		return "checks"
	case Call:
		return "calls"
	case Bet:
		return "bets"
	case Raise:
		return "raises"
	case Collect:
		return "collected"
	default:
		return "?"
	}
}

// Action is a single recorded action, tagged with the street that was
// active when the line was read.
type Action struct {
	PlayerID string
	Verb     Verb
	Amount   float64
	// RaiseTo is the "to" amount of a raise. When present it takes
	// precedence over Amount as the new bet level.
	RaiseTo float64
	Street  Street
	AllIn   bool
}

// Seat describes one occupied seat at hand start.
type Seat struct {
	Number   int
	PlayerID string
	Stack    float64
	Position Position
}

// Board holds the community cards dealt during a hand.
type Board struct {
	Flop     [3]deck.Card
	HasFlop  bool
	Turn     deck.Card
	HasTurn  bool
	River    deck.Card
	HasRiver bool
}

// FlopCards returns the flop as a slice, or nil if no flop was dealt.
func (b Board) FlopCards() []deck.Card {
	if !b.HasFlop {
		return nil
	}
	return b.Flop[:]
}

// TournamentInfo holds optional tournament metadata from the header.
type TournamentInfo struct {
	ID    string
	BuyIn string
	Level string
}

// Hand is one parsed hand. It is created once by the parser and
// immutable thereafter; RawText carries the verbatim source block the
// rewriter operates on.
type Hand struct {
	HandID      string
	Timestamp   time.Time
	GameType    string
	Stakes      string
	TableName   string
	TableFormat TableFormat
	ButtonSeat  int
	Seats       []Seat
	Board       Board
	Actions     []Action
	HeroCards   []deck.Card
	Tournament  *TournamentInfo
	RawText     string
}

// HeroSeat returns the seat occupied by Hero.
func (h *Hand) HeroSeat() (Seat, bool) {
	for _, s := range h.Seats {
		if s.PlayerID == HeroID {
			return s, true
		}
	}
	return Seat{}, false
}

// SeatByNumber returns the seat with the given number.
func (h *Hand) SeatByNumber(n int) (Seat, bool) {
	for _, s := range h.Seats {
		if s.Number == n {
			return s, true
		}
	}
	return Seat{}, false
}

// AnonymizedIDs returns the non-Hero player identifiers in seat order.
func (h *Hand) AnonymizedIDs() []string {
	ids := make([]string, 0, len(h.Seats))
	for _, s := range h.Seats {
		if s.PlayerID != HeroID {
			ids = append(ids, s.PlayerID)
		}
	}
	return ids
}
