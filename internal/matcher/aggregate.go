package matcher

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lox/handreveal/internal/evidence"
	"github.com/lox/handreveal/internal/handhistory"
)

// Conflict records contradictory evidence for one identifier. The kept
// name stays in the mapping; nothing is silently overwritten.
type Conflict struct {
	AnonID   string
	Kept     string
	Rejected []string
}

// TableMapping is the aggregated mapping for one table session. Player
// identity is stable for a whole session, so every accepted per-hand
// mapping from any matched hand in the group contributes.
type TableMapping struct {
	TableName    string
	HeroName     string
	Mappings     map[string]NameMapping
	Conflicts    []Conflict
	Matches      []Match
	Warnings     []string
	HandsTotal   int
	HandsMatched int
}

// Resolved returns the plain anon-id to name map the rewriter consumes.
func (t *TableMapping) Resolved() map[string]string {
	out := make(map[string]string, len(t.Mappings))
	for id, m := range t.Mappings {
		out[id] = m.Name
	}
	return out
}

// vote is one observed (id, name) pairing awaiting resolution.
type vote struct {
	name       string
	source     Source
	confidence float64
}

// AggregateTables groups hands by table name and merges every accepted
// per-hand seat mapping into one table-wide mapping. Votes are
// collected first and resolved afterwards, so the result is identical
// whatever order evidence was captured or matched in: agreement is a
// no-op, disagreement becomes a Conflict.
func AggregateTables(hands []handhistory.Hand, records []evidence.Evidence, threshold float64, logger zerolog.Logger) []TableMapping {
	groups := make(map[string][]*handhistory.Hand)
	for i := range hands {
		h := &hands[i]
		groups[h.TableName] = append(groups[h.TableName], h)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]TableMapping, 0, len(names))
	for _, name := range names {
		tables = append(tables, aggregateTable(name, groups[name], records, threshold, logger))
	}
	return tables
}

func aggregateTable(name string, hands []*handhistory.Hand, records []evidence.Evidence, threshold float64, logger zerolog.Logger) TableMapping {
	table := TableMapping{
		TableName:  name,
		Mappings:   make(map[string]NameMapping),
		HandsTotal: len(hands),
	}

	votes := make(map[string][]vote)
	heroVotes := make(map[string]bool)

	for _, hand := range hands {
		match, ok := BestMatch(hand, records, threshold)
		if !ok {
			logger.Debug().Str("hand_id", hand.HandID).Msg("no evidence cleared the confidence threshold")
			continue
		}
		table.HandsMatched++
		table.Matches = append(table.Matches, *match)

		if match.Ambiguous {
			logger.Warn().
				Str("table", name).
				Str("hand_id", hand.HandID).
				Str("evidence_id", match.EvidenceID).
				Msg("ambiguous mapping discarded, additional evidence needed")
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("hand %s: evidence %s assigns one name to multiple identifiers, mapping discarded",
					hand.HandID, match.EvidenceID))
			continue
		}

		for id, resolved := range match.SeatMapping {
			if id == handhistory.HeroID {
				heroVotes[resolved] = true
				continue
			}
			votes[id] = append(votes[id], vote{
				name:       resolved,
				source:     match.Source,
				confidence: match.Confidence,
			})
		}
	}

	ids := make([]string, 0, len(votes))
	for id := range votes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		mapping, conflict := resolveVotes(id, votes[id])
		table.Mappings[id] = mapping
		if conflict != nil {
			table.Conflicts = append(table.Conflicts, *conflict)
			logger.Warn().
				Str("table", name).
				Str("anon_id", id).
				Str("kept", conflict.Kept).
				Strs("rejected", conflict.Rejected).
				Msg("conflicting evidence for identifier")
		}
	}

	if len(heroVotes) == 1 {
		for heroName := range heroVotes {
			table.HeroName = heroName
		}
	}

	return table
}

// resolveVotes picks the winning name for one identifier. Ordering of
// the votes never matters: the winner is chosen by vote count, then
// highest confidence, then lexicographically smallest name. Any losing
// name is reported as a conflict.
func resolveVotes(id string, vs []vote) (NameMapping, *Conflict) {
	type tally struct {
		count      int
		confidence float64
		source     Source
	}
	byName := make(map[string]*tally)
	for _, v := range vs {
		t, ok := byName[v.name]
		if !ok {
			t = &tally{}
			byName[v.name] = t
		}
		t.count++
		if v.confidence > t.confidence {
			t.confidence = v.confidence
			t.source = v.source
		}
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := byName[names[i]], byName[names[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.confidence != b.confidence {
			return a.confidence > b.confidence
		}
		return names[i] < names[j]
	})

	winner := names[0]
	t := byName[winner]
	mapping := NameMapping{
		AnonID:     id,
		Name:       winner,
		Source:     t.source,
		Confidence: t.confidence,
		Locked:     t.source == SourceDirect,
	}

	if len(names) == 1 {
		return mapping, nil
	}
	rejected := make([]string, len(names)-1)
	copy(rejected, names[1:])
	sort.Strings(rejected)
	return mapping, &Conflict{AnonID: id, Kept: winner, Rejected: rejected}
}
