package extraction

import (
	"regexp"
	"strings"
)

var rePlate = regexp.MustCompile(`\b([A-Z0-9]{2})[-\s]([A-Z0-9]{2})[-\s]([A-Z0-9]{2})\b`)

// Portuguese plate group layouts, oldest to newest. L = letter pair, D = digit pair.
var plateLayouts = []string{"LDD", "DLD", "DDL", "LDL"}

// OCR confusions that only make sense inside a digit group.
var confusableDigits = map[rune]rune{
	'O': '0', 'Q': '0', 'I': '1', 'L': '1', 'Z': '2', 'S': '5', 'B': '8',
}

// parsePlate finds a Portuguese registration plate, normalizing OCR-confused
// characters only inside groups the layout expects to be digits. Confidence
// drops when normalization was needed.
func parsePlate(text string) (string, float64, bool) {
	upper := strings.ToUpper(text)
	for _, m := range rePlate.FindAllStringSubmatch(upper, -1) {
		groups := []string{m[1], m[2], m[3]}
		for _, layout := range plateLayouts {
			normalized, fixes, ok := applyLayout(groups, layout)
			if !ok {
				continue
			}
			conf := 0.95
			if fixes > 0 {
				conf = 0.75
			}
			return normalized, conf, true
		}
	}
	return "", 0, false
}

// applyLayout checks the three groups against one layout and returns the
// normalized plate plus the number of confusable substitutions applied.
func applyLayout(groups []string, layout string) (string, int, bool) {
	out := make([]string, 3)
	fixes := 0
	for i, g := range groups {
		switch layout[i] {
		case 'L':
			if !isLetters(g) {
				return "", 0, false
			}
			out[i] = g
		case 'D':
			normalized, n, ok := toDigits(g)
			if !ok {
				return "", 0, false
			}
			out[i] = normalized
			fixes += n
		}
	}
	return strings.Join(out, "-"), fixes, true
}

func isLetters(g string) bool {
	for _, r := range g {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func toDigits(g string) (string, int, bool) {
	var sb strings.Builder
	fixes := 0
	for _, r := range g {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			d, ok := confusableDigits[r]
			if !ok {
				return "", 0, false
			}
			sb.WriteRune(d)
			fixes++
		}
	}
	return sb.String(), fixes, true
}
