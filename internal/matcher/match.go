package matcher

import (
	"errors"

	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/handhistory"
)

// DefaultThreshold is the minimum confidence a candidate must clear to
// be considered a match.
const DefaultThreshold = 50.0

// Match pairs a hand with its best-scoring evidence record. Ambiguous
// is set when the winning evidence matched but its seat mapping was
// discarded for assigning one name to multiple identifiers.
type Match struct {
	HandID      string
	EvidenceID  string
	Confidence  float64
	Breakdown   ScoreBreakdown
	Source      Source
	SeatMapping map[string]string
	Ambiguous   bool
}

// BestMatch scores every evidence record against the hand and returns
// the best candidate clearing the threshold. The tie-break is explicit
// policy: a candidate only replaces the incumbent with a strictly
// higher score, so on an exact tie the record earliest in the supplied
// slice wins. A direct hand-id hit stops the search immediately.
func BestMatch(hand *handhistory.Hand, records []evidence.Evidence, threshold float64) (*Match, bool) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	bestIdx := -1
	var bestBd ScoreBreakdown
	bestTotal := 0.0

	for i := range records {
		bd := Score(hand, &records[i])
		total := bd.Total()
		if bd.DirectID > 0 {
			bestIdx, bestBd, bestTotal = i, bd, total
			break
		}
		if total < threshold {
			continue
		}
		if bestIdx < 0 || total > bestTotal {
			bestIdx, bestBd, bestTotal = i, bd, total
		}
	}

	if bestIdx < 0 {
		return nil, false
	}

	ev := &records[bestIdx]
	mapping, source, err := SeatMap(hand, ev)
	if bestBd.DirectID > 0 {
		source = SourceDirect
	}

	return &Match{
		HandID:      hand.HandID,
		EvidenceID:  ev.EvidenceID,
		Confidence:  bestTotal,
		Breakdown:   bestBd,
		Source:      source,
		SeatMapping: mapping,
		Ambiguous:   errors.Is(err, ErrAmbiguousMapping),
	}, true
}
