package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult reports whether a rewrite preserved the format
// invariants. Errors block shipping the file; warnings are advisory.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

const summaryMarker = "*** SUMMARY ***"

// lineCountTolerance absorbs trailing-newline differences before the
// line-count delta becomes suspicious.
const lineCountTolerance = 2

var (
	heroTokenRe  = regexp.MustCompile(`\bHero\b`)
	headerLineRe = regexp.MustCompile(`(?m)^Poker Hand #[A-Za-z0-9]+: .* - \d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\s*$`)
	seatLineRe   = regexp.MustCompile(`(?m)^Seat \d+: `)
	chipTokenRe  = regexp.MustCompile(`\$[0-9][0-9.,]*`)
	tableLineRe  = regexp.MustCompile(`(?m)^Table '[^']*'`)
	anonShapeRe  = regexp.MustCompile(`^[A-Za-z0-9]{6,8}$`)
	digitRe      = regexp.MustCompile(`[0-9]`)
)

// Validate checks a rewritten file against its original, in order of
// severity. The Hero token count is the single most safety-critical
// invariant: a delta means the rewrite touched a line it must never
// touch.
func Validate(original, rewritten string) ValidationResult {
	result := ValidationResult{Valid: true}

	origHero := len(heroTokenRe.FindAllString(original, -1))
	newHero := len(heroTokenRe.FindAllString(rewritten, -1))
	if origHero != newHero {
		result.addError(fmt.Sprintf("Hero token count changed: %d -> %d", origHero, newHero))
	}

	for _, header := range headerLineRe.FindAllString(original, -1) {
		if !strings.Contains(rewritten, header) {
			result.addError(fmt.Sprintf("hand header mutated or missing: %q", strings.TrimSpace(header)))
		}
	}

	if strings.Contains(original, summaryMarker) && !strings.Contains(rewritten, summaryMarker) {
		result.addError("summary section marker lost in rewrite")
	}

	origSeats := len(seatLineRe.FindAllString(original, -1))
	newSeats := len(seatLineRe.FindAllString(rewritten, -1))
	if origSeats != newSeats {
		result.addError(fmt.Sprintf("seat line count changed: %d -> %d", origSeats, newSeats))
	}

	origLines := strings.Count(original, "\n")
	newLines := strings.Count(rewritten, "\n")
	if delta := abs(origLines - newLines); delta > lineCountTolerance {
		result.addWarning(fmt.Sprintf("line count delta %d exceeds tolerance", delta))
	}

	origChips := len(chipTokenRe.FindAllString(original, -1))
	newChips := len(chipTokenRe.FindAllString(rewritten, -1))
	if origChips != newChips {
		result.addWarning(fmt.Sprintf("chip value token count changed: %d -> %d", origChips, newChips))
	}

	for _, table := range tableLineRe.FindAllString(original, -1) {
		if !strings.Contains(rewritten, table) {
			result.addWarning(fmt.Sprintf("table name changed: %q no longer present", table))
		}
	}

	for _, token := range residualAnonTokens(rewritten) {
		result.addWarning(fmt.Sprintf("possible unmapped identifier %q in player context", token))
	}

	return result
}

// residualAnonTokens scans player contexts for tokens still matching
// the anonymized-identifier shape. The shape check needs at least one
// digit to cut down on false positives, but coincidental hex-like
// tokens can still trip it, which is why this is a warning not an error.
func residualAnonTokens(text string) []string {
	seen := map[string]bool{}
	var tokens []string
	for _, line := range strings.Split(text, "\n") {
		for _, re := range lineContexts {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			token := m[2]
			if token != "Hero" && anonShapeRe.MatchString(token) && digitRe.MatchString(token) && !seen[token] {
				seen[token] = true
				tokens = append(tokens, token)
			}
			break
		}
	}
	return tokens
}

func (r *ValidationResult) addError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
