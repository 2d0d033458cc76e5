package matcher

import (
	"errors"
	"sort"

	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/handhistory"
)

// ErrAmbiguousMapping is returned when evidence assigns the same
// resolved name to two different identifiers. The mapping is discarded,
// and callers surface the rejection so better evidence can be supplied.
var ErrAmbiguousMapping = errors.New("matcher: ambiguous mapping")

// Source records how a name mapping was derived.
type Source string

const (
	SourceDirect     Source = "direct-match"
	SourceRole       Source = "role-based"
	SourcePositional Source = "positional-fallback"
)

// NameMapping resolves one anonymized identifier to a player name.
// Mappings are never created for Hero.
type NameMapping struct {
	AnonID     string
	Name       string
	Source     Source
	Confidence float64
	Locked     bool
}

// SeatMap derives a seat mapping for a matched hand/evidence pair.
// Role anchors are preferred; positional alignment is the fallback.
// The returned map may contain an entry for Hero: the hero's resolved
// name is useful for reporting, but it is never aggregated into table
// mappings and the rewriter skips it unconditionally.
//
// If the constructed mapping would assign the same resolved name to two
// different identifiers, the whole mapping is discarded and
// ErrAmbiguousMapping is returned: ambiguous evidence is rejected,
// never guessed at. A nil mapping with a nil error means no mapping
// could be derived at all.
func SeatMap(hand *handhistory.Hand, ev *evidence.Evidence) (map[string]string, Source, error) {
	source := SourceRole
	var m map[string]string
	if ev.HasRoleAnchors() {
		m = roleMap(hand, ev)
	}
	if len(m) == 0 {
		m = positionalMap(hand, ev)
		source = SourcePositional
	}
	if !injective(m) {
		return nil, source, ErrAmbiguousMapping
	}
	return m, source, nil
}

// roleMap pairs the dealer/small-blind/big-blind anchors with the
// hand's own seats. The dealer is the button seat; SB and BB are
// located from the hand's blind-post actions rather than position
// arithmetic, which stays correct under any button rotation.
func roleMap(hand *handhistory.Hand, ev *evidence.Evidence) map[string]string {
	m := make(map[string]string, 3)

	if seat, ok := hand.SeatByNumber(hand.ButtonSeat); ok {
		if !assign(m, seat.PlayerID, ev.DealerPlayer) {
			return nil
		}
	}

	sbSeen, bbSeen := false, false
	for _, a := range hand.Actions {
		if a.Street != handhistory.Preflop {
			continue
		}
		switch a.Verb {
		case handhistory.PostSmallBlind:
			if !sbSeen {
				sbSeen = true
				if !assign(m, a.PlayerID, ev.SmallBlindPlayer) {
					return nil
				}
			}
		case handhistory.PostBigBlind:
			if !bbSeen {
				bbSeen = true
				if !assign(m, a.PlayerID, ev.BigBlindPlayer) {
					return nil
				}
			}
		}
	}
	return m
}

// assign adds id->name, rejecting a contradictory re-assignment of the
// same id (a heads-up button also posts the small blind, which is fine
// as long as the evidence agrees on the name).
func assign(m map[string]string, id, name string) bool {
	if existing, ok := m[id]; ok {
		return existing == name
	}
	m[id] = name
	return true
}

// positionalMap aligns Hero's seat with the evidence's reported hero
// visual position and walks the remaining seats and observations
// clockwise in table order: increasing seat numbers pair with
// increasing visual positions, both wrapping from Hero. It requires a
// full observation set; a partial screenshot cannot anchor the walk.
func positionalMap(hand *handhistory.Hand, ev *evidence.Evidence) map[string]string {
	n := len(hand.Seats)
	if n == 0 || len(ev.Players) != n || ev.HeroPosition < 1 {
		return nil
	}

	seats := make([]handhistory.Seat, n)
	copy(seats, hand.Seats)
	sort.Slice(seats, func(i, j int) bool { return seats[i].Number < seats[j].Number })

	obs := make([]evidence.PlayerObservation, n)
	copy(obs, ev.Players)
	sort.Slice(obs, func(i, j int) bool { return obs[i].Position < obs[j].Position })

	heroIdx, obsIdx := -1, -1
	for i, s := range seats {
		if s.PlayerID == handhistory.HeroID {
			heroIdx = i
		}
	}
	for i, o := range obs {
		if o.Position == ev.HeroPosition {
			obsIdx = i
		}
	}
	if heroIdx < 0 || obsIdx < 0 {
		return nil
	}

	m := make(map[string]string, n)
	for k := 0; k < n; k++ {
		seat := seats[(heroIdx+k)%n]
		m[seat.PlayerID] = obs[(obsIdx+k)%n].Name
	}
	return m
}

// injective reports whether no two identifiers share a resolved name.
func injective(m map[string]string) bool {
	seen := make(map[string]bool, len(m))
	for _, name := range m {
		if seen[name] {
			return false
		}
		seen[name] = true
	}
	return true
}
