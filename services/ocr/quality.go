package ocr

import "unicode"

// minUsableRunes is the shortest text that can still score above zero.
const minUsableRunes = 40

// QualityScore rates extracted text in [0,1]. It is the gate between the
// native text layer and the OCR fallback: the ratio of letters and digits to
// total runes, penalized for replacement runes, zeroed for very short text.
func QualityScore(text string) float64 {
	var total, useful, bad int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			useful++
		case r == '�':
			bad++
		}
	}
	if total < minUsableRunes {
		return 0
	}

	score := float64(useful) / float64(total)
	// Replacement runes indicate a broken encoding, not just noise.
	score -= 2 * float64(bad) / float64(total)
	if score < 0 {
		return 0
	}
	return score
}
