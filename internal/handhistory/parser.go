package handhistory

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/handreveal/internal/deck"
)

// ErrMalformedHand is returned when a block is missing the required
// header fields or violates the single-Hero invariant.
var ErrMalformedHand = errors.New("handhistory: malformed hand")

var (
	headerRe  = regexp.MustCompile(`^Poker Hand #([A-Za-z0-9]+): (.+) - (\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2})\s*$`)
	tournRe   = regexp.MustCompile(`^Tournament #(\S+), (\S+) (.+?)(?: - (Level\S+))?$`)
	cashRe    = regexp.MustCompile(`^(.+) \((.+)\)$`)
	tableRe   = regexp.MustCompile(`^Table '([^']+)'(?: \d-max)? Seat #(\d+) is the button`)
	seatRe    = regexp.MustCompile(`^Seat (\d+): (\S+) \(\$?([0-9.,]+) in chips\)`)
	streetRe  = regexp.MustCompile(`^\*\*\* (HOLE CARDS|FLOP|TURN|RIVER|SHOW DOWN|SUMMARY) \*\*\*(.*)$`)
	dealtRe   = regexp.MustCompile(`^Dealt to Hero \[([^\]]+)\]`)
	actionRe  = regexp.MustCompile(`^(\S+): (posts small blind|posts big blind|posts the ante|folds|checks|calls|bets|raises)(?: \$?([0-9.,]+))?(?: to \$?([0-9.,]+))?( and is all-in)?\s*$`)
	collectRe = regexp.MustCompile(`^(\S+) collected \$?([0-9.,]+) from (?:the )?pot`)
	bracketRe = regexp.MustCompile(`\[([^\]]+)\]`)
	blocksRe  = regexp.MustCompile(`\r?\n[ \t]*\r?\n[ \t\r\n]*`)
)

const timestampLayout = "2006/01/02 15:04:05"

// Parser turns raw hand-history text into Hand records.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a parser that logs dropped blocks to the given logger.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseFile splits text into blank-line-delimited blocks and parses each
// independently. Blocks that fail to parse are dropped; a bad block
// never aborts the batch.
func (p *Parser) ParseFile(text string) []Hand {
	blocks := blocksRe.Split(text, -1)
	hands := make([]Hand, 0, len(blocks))
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		hand, err := p.ParseHand(block)
		if err != nil {
			p.logger.Debug().Err(err).Msg("dropping unparseable hand block")
			continue
		}
		hands = append(hands, *hand)
	}
	return hands
}

// ParseHand parses a single hand block. The returned Hand owns the
// verbatim block text so the rewriter can operate on it later.
func (p *Parser) ParseHand(text string) (*Hand, error) {
	hand := &Hand{RawText: text, TableFormat: SixMax}
	if strings.Contains(text, "3-max") {
		hand.TableFormat = ThreeMax
	}

	lines := strings.Split(text, "\n")
	street := Preflop
	sawHeader := false

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}

		if !sawHeader {
			m := headerRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			ts, err := time.Parse(timestampLayout, m[3])
			if err != nil {
				return nil, fmt.Errorf("%w: bad timestamp %q", ErrMalformedHand, m[3])
			}
			hand.HandID = m[1]
			hand.Timestamp = ts
			parseGameInfo(hand, m[2])
			sawHeader = true
			continue
		}

		if m := tableRe.FindStringSubmatch(line); m != nil {
			hand.TableName = m[1]
			hand.ButtonSeat, _ = strconv.Atoi(m[2])
			continue
		}

		if m := streetRe.FindStringSubmatch(line); m != nil {
			street = advanceStreet(hand, m[1], m[2])
			continue
		}

		// Seat summary lines reuse the "Seat N:" prefix but never
		// carry "in chips", so this only matches the opening listing.
		if m := seatRe.FindStringSubmatch(line); m != nil && street == Preflop {
			num, _ := strconv.Atoi(m[1])
			stack, err := parseAmount(m[3])
			if err != nil {
				return nil, fmt.Errorf("%w: bad stack in %q", ErrMalformedHand, line)
			}
			hand.Seats = append(hand.Seats, Seat{Number: num, PlayerID: m[2], Stack: stack})
			continue
		}

		if m := dealtRe.FindStringSubmatch(line); m != nil {
			cards, err := deck.ParseCards(m[1])
			if err == nil {
				hand.HeroCards = cards
			}
			continue
		}

		if street == Summary {
			continue
		}

		if m := actionRe.FindStringSubmatch(line); m != nil {
			action := Action{PlayerID: m[1], Street: street, AllIn: m[5] != ""}
			action.Verb = verbFor(m[2])
			if m[3] != "" {
				action.Amount, _ = parseAmount(m[3])
			}
			if m[4] != "" {
				action.RaiseTo, _ = parseAmount(m[4])
			}
			hand.Actions = append(hand.Actions, action)
			continue
		}

		if m := collectRe.FindStringSubmatch(line); m != nil {
			amount, _ := parseAmount(m[2])
			hand.Actions = append(hand.Actions, Action{
				PlayerID: m[1], Verb: Collect, Amount: amount, Street: street,
			})
			continue
		}
	}

	if !sawHeader {
		return nil, fmt.Errorf("%w: missing hand header", ErrMalformedHand)
	}
	if hand.GameType == "" {
		return nil, fmt.Errorf("%w: hand %s missing game/stakes", ErrMalformedHand, hand.HandID)
	}

	heroes := 0
	for _, s := range hand.Seats {
		if s.PlayerID == HeroID {
			heroes++
		}
	}
	if heroes != 1 {
		return nil, fmt.Errorf("%w: hand %s has %d Hero seats", ErrMalformedHand, hand.HandID, heroes)
	}

	if hand.ButtonSeat > 0 {
		for i := range hand.Seats {
			hand.Seats[i].Position = PositionFor(hand.Seats[i].Number, hand.ButtonSeat, hand.TableFormat)
		}
	} else {
		for i := range hand.Seats {
			hand.Seats[i].Position = UnknownPosition
		}
	}

	return hand, nil
}

// parseGameInfo fills game type, stakes and optional tournament metadata
// from the header's middle section.
func parseGameInfo(hand *Hand, info string) {
	if strings.HasPrefix(info, "Tournament #") {
		if m := tournRe.FindStringSubmatch(info); m != nil {
			hand.Tournament = &TournamentInfo{ID: m[1], BuyIn: m[2], Level: m[4]}
			game := m[3]
			if cm := cashRe.FindStringSubmatch(game); cm != nil {
				hand.GameType = cm[1]
				hand.Stakes = cm[2]
			} else {
				hand.GameType = game
				if lm := bracketRe.FindStringSubmatch(m[4]); lm != nil {
					hand.Stakes = lm[1]
				} else if i := strings.Index(m[4], "("); i >= 0 {
					hand.Stakes = strings.Trim(m[4][i:], "()")
				}
			}
			return
		}
	}
	if m := cashRe.FindStringSubmatch(info); m != nil {
		hand.GameType = m[1]
		hand.Stakes = m[2]
		return
	}
	hand.GameType = info
}

// advanceStreet updates the running street and records board cards
// carried on the marker line. Turn and river lines repeat the earlier
// board in a first bracket group; the new card is in the last group.
func advanceStreet(hand *Hand, marker, rest string) Street {
	groups := bracketRe.FindAllStringSubmatch(rest, -1)
	last := ""
	if len(groups) > 0 {
		last = groups[len(groups)-1][1]
	}

	switch marker {
	case "HOLE CARDS":
		return Preflop
	case "FLOP":
		if len(groups) > 0 {
			if cards, err := deck.ParseCards(groups[0][1]); err == nil && len(cards) == 3 {
				copy(hand.Board.Flop[:], cards)
				hand.Board.HasFlop = true
			}
		}
		return Flop
	case "TURN":
		if card, err := deck.ParseCard(last); err == nil {
			hand.Board.Turn = card
			hand.Board.HasTurn = true
		}
		return Turn
	case "RIVER":
		if card, err := deck.ParseCard(last); err == nil {
			hand.Board.River = card
			hand.Board.HasRiver = true
		}
		return River
	case "SHOW DOWN":
		return Showdown
	case "SUMMARY":
		return Summary
	}
	return Preflop
}

func verbFor(s string) Verb {
	switch s {
	case "posts small blind":
		return PostSmallBlind
	case "posts big blind":
		return PostBigBlind
	case "posts the ante":
		return PostAnte
	case "folds":
		return Fold
	case "checks":
		return Check
	case "calls":
		return Call
	case "bets":
		return Bet
	default:
		return Raise
	}
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
