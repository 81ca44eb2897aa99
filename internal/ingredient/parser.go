// Package ingredient turns free-text recipe ingredient lines into a name and
// an amount. Parsing is heuristic and never fails: in the worst case the whole
// line becomes the name.
package ingredient

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type Parsed struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

var dashPattern = regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)

var fold = cases.Fold()

// units are stored case-folded.
var units = map[string]bool{
	"г": true, "кг": true, "мл": true, "л": true, "шт": true,
	"ч.л.": true, "ст.л.": true, "стакан": true,
	"g": true, "kg": true, "ml": true, "l": true, "pcs": true,
	"tsp": true, "tbsp": true, "glass": true,
}

// pairs are two-token markers matched on their last token.
var pairs = map[string]string{
	"вкусу": "по",
	"taste": "to",
}

func Parse(line string) Parsed {
	trimmed := strings.TrimSpace(norm.NFC.String(line))

	if m := dashPattern.FindStringSubmatch(trimmed); m != nil {
		return Parsed{Name: strings.TrimSpace(m[1]), Amount: strings.TrimSpace(m[2])}
	}

	parts := strings.Fields(trimmed)
	if len(parts) < 2 {
		return Parsed{Name: trimmed}
	}

	n := len(parts)
	if isUnit(parts[n-2], parts[n-1]) {
		name := strings.Join(parts[:n-2], " ")
		if name == "" {
			name = parts[0]
		}
		return Parsed{Name: name, Amount: parts[n-2] + " " + parts[n-1]}
	}

	return Parsed{Name: strings.Join(parts[1:], " "), Amount: parts[0]}
}

func isUnit(prev, last string) bool {
	last = fold.String(last)
	if units[last] {
		return true
	}
	if want, ok := pairs[last]; ok {
		return fold.String(prev) == want
	}
	return false
}
