package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the hand-history suit letter ("s", "h", "d", "c")
func (s Suit) String() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// String returns the two-character hand-history token (e.g. "As", "Td")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

var ranks = map[byte]Rank{
	'2': Two, '3': Three, '4': Four, '5': Five, '6': Six,
	'7': Seven, '8': Eight, '9': Nine, 't': Ten, 'j': Jack,
	'q': Queen, 'k': King, 'a': Ace,
}

var suits = map[byte]Suit{
	's': Spades, 'h': Hearts, 'd': Diamonds, 'c': Clubs,
}

// ParseCard parses a rank+suit token such as "Ah", "Td" or "10c".
// Parsing is case-insensitive and "10" is accepted as an alias for T.
func ParseCard(token string) (Card, error) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if len(tok) == 3 && tok[:2] == "10" {
		tok = "t" + tok[2:]
	}
	if len(tok) != 2 {
		return Card{}, fmt.Errorf("deck: invalid card token %q", token)
	}
	rank, ok := ranks[tok[0]]
	if !ok {
		return Card{}, fmt.Errorf("deck: invalid rank in %q", token)
	}
	suit, ok := suits[tok[1]]
	if !ok {
		return Card{}, fmt.Errorf("deck: invalid suit in %q", token)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a space-separated card list (e.g. "Ah Kd").
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Format renders cards as a space-separated token list.
func Format(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// SameSet reports whether two card slices contain the same cards,
// ignoring order.
func SameSet(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[Card]int, len(a))
	for _, c := range a {
		seen[c]++
	}
	for _, c := range b {
		seen[c]--
		if seen[c] < 0 {
			return false
		}
	}
	return true
}

// Overlap returns the number of cards present in both slices.
func Overlap(a, b []Card) int {
	seen := make(map[Card]bool, len(a))
	for _, c := range a {
		seen[c] = true
	}
	n := 0
	for _, c := range b {
		if seen[c] {
			n++
			seen[c] = false
		}
	}
	return n
}
