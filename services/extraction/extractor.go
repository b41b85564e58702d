package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"finehero/models"
)

// reviewThreshold marks extractions that need a human pass before generation.
const reviewThreshold = 0.6

// Key fields drive the overall confidence; the rest are informative.
var keyFields = []string{"noticeNumber", "amount", "date", "plate"}

var (
	reNotice = regexp.MustCompile(`(?i)(?:auto|processo|notifica[çc][ãa]o)\s*(?:de\s+contraordena[çc][ãa]o\s*)?(?:n\.?\s*[ºo°]?|n[úu]mero)\s*[:.]?\s*([A-Z0-9][A-Z0-9/.\-]{4,24})`)

	reArticle = regexp.MustCompile(`(?i)art(?:igo|\.)\s*(\d{1,3})\s*(?:\.\s*[ºo°])?\s*(?:[-,]\s*([A-Z])\b)?`)

	reAmountBefore = regexp.MustCompile(`(\d{1,3}(?:[. ]\d{3})*,\d{2})\s*(?:€|EUR|euros?)`)
	reAmountAfter  = regexp.MustCompile(`(?:€|EUR)\s*(\d{1,3}(?:[. ]\d{3})*,\d{2})`)

	reDateDMY = regexp.MustCompile(`\b(\d{2})[/.-](\d{2})[/.-](\d{4})\b`)
	reDateISO = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	reTime = regexp.MustCompile(`\b(\d{1,2})[:hH](\d{2})\b`)

	reDeadline = regexp.MustCompile(`(?i)prazo\s+(?:de\s+)?(\d{1,2})\s+dias`)
	rePoints   = regexp.MustCompile(`(?i)(\d{1,2})\s+pontos?`)

	reLocation = regexp.MustCompile(`(?i)local(?:\s+da\s+infra[çc][ãa]o)?\s*[:\-]\s*(\S[^\n]*)`)
)

// Issuing authorities recognized in notice headers.
var authorities = []struct{ keyword, name string }{
	{"autoridade nacional de segurança rodoviária", "ANSR"},
	{"ansr", "ANSR"},
	{"guarda nacional republicana", "GNR"},
	{"gnr", "GNR"},
	{"polícia de segurança pública", "PSP"},
	{"psp", "PSP"},
	{"câmara municipal", "Câmara Municipal"},
	{"camara municipal", "Câmara Municipal"},
}

// Extract parses the structured fields of a Portuguese fine notice out of OCR
// text. It never fails: missing fields lower the confidence instead.
func Extract(text string) *models.FineData {
	data := &models.FineData{
		FieldConfidence: map[string]float64{},
	}

	if m := reNotice.FindStringSubmatch(text); m != nil {
		data.NoticeNumber = strings.TrimRight(m[1], ".")
		data.FieldConfidence["noticeNumber"] = 0.9
	}

	if m := reArticle.FindStringSubmatch(text); m != nil {
		article := m[1]
		if m[2] != "" {
			article += "-" + strings.ToUpper(m[2])
		}
		data.Article = article
		data.FieldConfidence["article"] = 0.85
	}

	if cents, ok := parseAmount(text); ok {
		data.AmountCents = cents
		data.FieldConfidence["amount"] = 0.95
	}

	if date, ok := parseDate(text); ok {
		data.Date = date
		data.FieldConfidence["date"] = 0.9
	}
	if m := reTime.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			data.Time = fmt.Sprintf("%02d:%02d", hour, minute)
			data.FieldConfidence["time"] = 0.8
		}
	}

	if plate, conf, ok := parsePlate(text); ok {
		data.Plate = plate
		data.FieldConfidence["plate"] = conf
	}

	if m := reLocation.FindStringSubmatch(text); m != nil {
		data.Location = strings.TrimSpace(m[1])
		data.FieldConfidence["location"] = 0.7
	}

	lower := strings.ToLower(text)
	for _, a := range authorities {
		if strings.Contains(lower, a.keyword) {
			data.Authority = a.name
			data.FieldConfidence["authority"] = 0.85
			break
		}
	}

	if m := reDeadline.FindStringSubmatch(text); m != nil {
		days, _ := strconv.Atoi(m[1])
		data.ResponseDeadline = days
		data.FieldConfidence["responseDeadline"] = 0.8
	}
	if m := rePoints.FindStringSubmatch(text); m != nil {
		points, _ := strconv.Atoi(m[1])
		data.Points = points
		data.FieldConfidence["points"] = 0.7
	}

	data.Confidence = overallConfidence(data.FieldConfidence)
	data.NeedsReview = data.Confidence < reviewThreshold
	return data
}

// Rescore recomputes the overall confidence and review flag, e.g. after a
// manual correction raised individual field confidences.
func Rescore(data *models.FineData) {
	data.Confidence = overallConfidence(data.FieldConfidence)
	data.NeedsReview = data.Confidence < reviewThreshold
}

// overallConfidence averages the key-field confidences; an absent key field
// counts as zero so sparse extractions are flagged.
func overallConfidence(fields map[string]float64) float64 {
	var sum float64
	for _, f := range keyFields {
		sum += fields[f]
	}
	return sum / float64(len(keyFields))
}

// parseAmount finds a monetary value in Portuguese notation and converts it
// to integer cents. Zero and negative values are rejected.
func parseAmount(text string) (int64, bool) {
	var raw string
	if m := reAmountBefore.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if m := reAmountAfter.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else {
		return 0, false
	}

	parts := strings.SplitN(raw, ",", 2)
	whole := strings.NewReplacer(".", "", " ", "").Replace(parts[0])
	euros, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	cents, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	total := euros*100 + cents
	if total <= 0 {
		return 0, false
	}
	return total, true
}

// parseDate accepts DD/MM/YYYY (also with '-' or '.') and ISO dates, and
// returns the canonical 2006-01-02 form.
func parseDate(text string) (string, bool) {
	if m := reDateDMY.FindStringSubmatch(text); m != nil {
		candidate := fmt.Sprintf("%s/%s/%s", m[1], m[2], m[3])
		if t, err := time.Parse("02/01/2006", candidate); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	if m := reDateISO.FindStringSubmatch(text); m != nil {
		candidate := fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
		if t, err := time.Parse("2006-01-02", candidate); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
