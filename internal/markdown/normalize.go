package markdown

import (
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	bulletItem  = regexp.MustCompile(`^[-*+]\s+\S`)
	orderedItem = regexp.MustCompile(`^\d+\.\s+\S`)
)

// Normalize canonicalizes whitespace in a Markdown document.
//
// Every line is trimmed, runs of blank lines collapse to a single blank
// line, list items of the same kind become adjacent and the document
// carries no leading or trailing blank lines. Normalize is idempotent.
func Normalize(input string) string {
	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		if lines[i] != "" {
			out = append(out, lines[i])
			continue
		}

		next := i
		for next < len(lines) && lines[next] == "" {
			next++
		}

		if next == len(lines) || len(out) == 0 {
			i = next - 1
			continue
		}

		if !sameListRun(out[len(out)-1], lines[next]) {
			out = append(out, "")
		}

		i = next - 1
	}

	return strings.Join(out, "\n")
}

func sameListRun(prev, next string) bool {
	switch {
	case bulletItem.MatchString(prev):
		return bulletItem.MatchString(next)
	case orderedItem.MatchString(prev):
		return orderedItem.MatchString(next)
	default:
		return false
	}
}
