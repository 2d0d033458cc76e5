// Package evidence models the visual-extraction records produced by the
// screenshot capture tool. Records are consumed read-only; everything
// that reaches the matcher has passed through Validate, so downstream
// code never re-checks field shapes.
package evidence

import (
	"fmt"
	"strings"
)

// PlayerObservation is one player visible in a screenshot. Position is
// the 1-based visual position around the table, increasing clockwise.
type PlayerObservation struct {
	Name     string  `json:"name"`
	Stack    float64 `json:"stack"`
	Position int     `json:"position"`
}

// Board holds the community cards read from a screenshot.
type Board struct {
	Flop  []string `json:"flop,omitempty"`
	Turn  string   `json:"turn,omitempty"`
	River string   `json:"river,omitempty"`
}

// Evidence is one visual-extraction result for one screenshot.
type Evidence struct {
	EvidenceID string `json:"evidence_id"`
	// HandIDHint is set when the capture tool could read the hand id
	// directly from the client window.
	HandIDHint string `json:"hand_id,omitempty"`

	HeroName     string   `json:"hero_name,omitempty"`
	HeroPosition int      `json:"hero_position,omitempty"`
	HeroCards    []string `json:"hero_cards,omitempty"`
	HeroStack    float64  `json:"hero_stack,omitempty"`

	Board   Board               `json:"board"`
	Players []PlayerObservation `json:"all_player_stacks"`

	DealerPlayer     string `json:"dealer_player,omitempty"`
	SmallBlindPlayer string `json:"small_blind_player,omitempty"`
	BigBlindPlayer   string `json:"big_blind_player,omitempty"`

	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`
}

// HasRoleAnchors reports whether all three role anchors were extracted.
func (e *Evidence) HasRoleAnchors() bool {
	return e.DealerPlayer != "" && e.SmallBlindPlayer != "" && e.BigBlindPlayer != ""
}

// ObservationAt returns the player observed at the given visual position.
func (e *Evidence) ObservationAt(pos int) (PlayerObservation, bool) {
	for _, p := range e.Players {
		if p.Position == pos {
			return p, true
		}
	}
	return PlayerObservation{}, false
}

// Validate is the single validation boundary between raw extraction
// output and the matcher. It rejects records the matcher cannot reason
// about rather than letting half-formed fields produce bad mappings.
func (e *Evidence) Validate() error {
	if strings.TrimSpace(e.EvidenceID) == "" {
		return fmt.Errorf("evidence: missing evidence_id")
	}
	seen := make(map[int]bool, len(e.Players))
	for i, p := range e.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("evidence %s: player %d has empty name", e.EvidenceID, i)
		}
		if p.Position < 1 {
			return fmt.Errorf("evidence %s: player %q has invalid position %d", e.EvidenceID, p.Name, p.Position)
		}
		if seen[p.Position] {
			return fmt.Errorf("evidence %s: duplicate visual position %d", e.EvidenceID, p.Position)
		}
		seen[p.Position] = true
	}
	if e.HeroPosition < 0 {
		return fmt.Errorf("evidence %s: invalid hero_position %d", e.EvidenceID, e.HeroPosition)
	}
	if e.Confidence < 0 {
		return fmt.Errorf("evidence %s: negative confidence", e.EvidenceID)
	}
	return nil
}
