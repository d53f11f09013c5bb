package parser

import (
	"strings"
	"unicode"
)

// ParseTitle extracts the report title from the export's first line: the
// longest run of uppercase letters and blanks that contains at least one
// letter, trimmed. On a tie the earlier run wins. Returns "" when the line
// has no uppercase letter at all.
func ParseTitle(line string) string {
	var (
		best    string
		bestLen int
		run     []rune
		letter  bool
	)
	flush := func() {
		if letter {
			t := strings.TrimSpace(string(run))
			if n := len([]rune(t)); n > bestLen {
				best, bestLen = t, n
			}
		}
		run, letter = run[:0], false
	}

	for _, r := range line {
		switch {
		case unicode.IsUpper(r):
			run = append(run, r)
			letter = true
		case r == ' ' || r == '\t':
			run = append(run, r)
		default:
			flush()
		}
	}
	flush()
	return best
}
