// Package rewrite performs anchored, order-insensitive substitution of
// anonymized identifiers in hand-history text and validates the result
// against the format invariants downstream import tooling relies on.
package rewrite

import (
	"regexp"
	"strings"

	"github.com/lox/handreveal/internal/handhistory"
)

// Each pattern anchors one syntactic context an identifier can occupy.
// The identifier span is always capture group 2, so classification and
// substitution happen in a single pass per line: the span is located,
// its context classified once, and the resolved name emitted in place.
// Re-running with the same mapping is a no-op because the resolved name
// no longer matches any mapping key.
var lineContexts = []*regexp.Regexp{
	// Seat listing and summary seat lines: "Seat 2: abc123 ($50 in chips)",
	// "Seat 2: abc123 (big blind) folded on the Turn",
	// "Seat 4: abc123 folded before Flop (didn't bet)"
	regexp.MustCompile(`^(Seat \d+: )(\S+)((?: .*)?)$`),
	// Dealt lines, with or without revealed cards
	regexp.MustCompile(`^(Dealt to )(\S+)( \[.*\])?$`),
	// Uncalled bet return
	regexp.MustCompile(`^(Uncalled bet \(\$?[0-9.,]+\) returned to )(\S+)$`),
	// Pot collection
	regexp.MustCompile(`^()(\S+)( collected \$?[0-9.,]+ from .*)$`),
	// Colon-form lines: posts, plain and all-in actions, showdown verbs,
	// and provider-specific elections. The verb list is closed so the
	// pattern can never capture non-player lines.
	regexp.MustCompile(`^()(\S+)(: (?:posts|folds|checks|calls|bets|raises|shows|mucks|doesn't show|stands up|sits out|is sitting out|chooses) ?.*)$`),
}

// Rewrite replaces every mapped anonymized identifier with its resolved
// name. A mapping for the literal Hero sentinel is skipped; identifiers
// the mapping does not cover are left untouched.
func Rewrite(original string, mappings map[string]string) string {
	if len(mappings) == 0 {
		return original
	}

	resolved := make(map[string]string, len(mappings))
	for id, name := range mappings {
		if id == handhistory.HeroID || id == "" || name == "" {
			continue
		}
		resolved[id] = name
	}
	if len(resolved) == 0 {
		return original
	}

	lines := strings.Split(original, "\n")
	for i, line := range lines {
		lines[i] = rewriteLine(line, resolved)
	}
	return strings.Join(lines, "\n")
}

// rewriteLine classifies the line's player-token span and substitutes
// it when mapped. The first matching context wins; contexts are ordered
// most specific first so an all-in action line, for example, is claimed
// by the closed verb list rather than a looser pattern.
func rewriteLine(line string, resolved map[string]string) string {
	for _, re := range lineContexts {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		token := m[2]
		name, ok := resolved[token]
		if !ok || token == handhistory.HeroID {
			return line
		}
		rest := ""
		if len(m) > 3 {
			rest = m[3]
		}
		return m[1] + name + rest
	}
	return line
}
