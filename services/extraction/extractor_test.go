package extraction

import (
	"strings"
	"testing"
)

const sampleNotice = `
AUTORIDADE NACIONAL DE SEGURANÇA RODOVIÁRIA

Auto de Contraordenação N.º 123456789/2025

No dia 12/03/2025, pelas 14h35, na Avenida da República, Lisboa,
o veículo com a matrícula 45-AB-67 foi detetado em excesso de velocidade,
em violação do artigo 27.º do Código da Estrada.

Coima: 120,00 €
Sanção acessória: 2 pontos
Pode apresentar defesa no prazo de 15 dias úteis.
Local da infração: Avenida da República, Lisboa
`

func TestExtractSampleNotice(t *testing.T) {
	data := Extract(sampleNotice)

	if data.NoticeNumber != "123456789/2025" {
		t.Errorf("notice number = %q, want %q", data.NoticeNumber, "123456789/2025")
	}
	if data.Article != "27" {
		t.Errorf("article = %q, want %q", data.Article, "27")
	}
	if data.Date != "2025-03-12" {
		t.Errorf("date = %q, want %q", data.Date, "2025-03-12")
	}
	if data.Time != "14:35" {
		t.Errorf("time = %q, want %q", data.Time, "14:35")
	}
	if data.Plate != "45-AB-67" {
		t.Errorf("plate = %q, want %q", data.Plate, "45-AB-67")
	}
	if data.AmountCents != 12000 {
		t.Errorf("amount = %d, want 12000", data.AmountCents)
	}
	if data.Authority != "ANSR" {
		t.Errorf("authority = %q, want ANSR", data.Authority)
	}
	if data.ResponseDeadline != 15 {
		t.Errorf("deadline = %d, want 15", data.ResponseDeadline)
	}
	if data.Points != 2 {
		t.Errorf("points = %d, want 2", data.Points)
	}
	if data.NeedsReview {
		t.Errorf("needsReview = true with all key fields present (confidence %v)", data.Confidence)
	}
}

func TestExtractAmounts(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{"symbol after", "Coima: 120,00 €", 12000},
		{"symbol before", "Coima: € 60,50", 6050},
		{"EUR suffix", "no valor de 300,00 EUR", 30000},
		{"thousands dot", "coima de 1.250,00 €", 125000},
		{"thousands space", "coima de 1 250,00 €", 125000},
		{"zero rejected", "valor 0,00 €", 0},
		{"no amount", "sem qualquer valor", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Extract(tt.text)
			if data.AmountCents != tt.want {
				t.Errorf("Extract(%q).AmountCents = %d, want %d", tt.text, data.AmountCents, tt.want)
			}
		})
	}
}

func TestExtractDates(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"em 05/01/2025", "2025-01-05"},
		{"em 05-01-2025", "2025-01-05"},
		{"em 05.01.2025", "2025-01-05"},
		{"em 2025-01-05", "2025-01-05"},
		{"em 31/02/2025 invalida", ""}, // no such day
		{"sem data", ""},
	}
	for _, tt := range tests {
		data := Extract(tt.text)
		if data.Date != tt.want {
			t.Errorf("Extract(%q).Date = %q, want %q", tt.text, data.Date, tt.want)
		}
	}
}

func TestExtractArticleSuffix(t *testing.T) {
	data := Extract("violação do artigo 145.º, A do Código da Estrada")
	if data.Article != "145-A" {
		t.Errorf("article = %q, want 145-A", data.Article)
	}
}

func TestExtractAuthorities(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Guarda Nacional Republicana - Destacamento de Trânsito", "GNR"},
		{"Polícia de Segurança Pública", "PSP"},
		{"Câmara Municipal de Braga", "Câmara Municipal"},
		{"entidade desconhecida", ""},
	}
	for _, tt := range tests {
		data := Extract(tt.text)
		if data.Authority != tt.want {
			t.Errorf("Extract(%q).Authority = %q, want %q", tt.text, data.Authority, tt.want)
		}
	}
}

func TestExtractNeedsReviewWhenSparse(t *testing.T) {
	data := Extract("texto irrelevante sem campos reconhecíveis")
	if !data.NeedsReview {
		t.Error("expected needsReview for text without key fields")
	}
	if data.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", data.Confidence)
	}
}

func TestRescoreAfterCorrection(t *testing.T) {
	data := Extract("Coima: 120,00 € em 05/01/2025")
	if !data.NeedsReview {
		t.Fatal("expected needsReview before corrections")
	}

	// A manual correction fills in the missing key fields.
	data.NoticeNumber = "999/2025"
	data.FieldConfidence["noticeNumber"] = 1.0
	data.Plate = "AA-01-02"
	data.FieldConfidence["plate"] = 1.0
	Rescore(data)

	if data.NeedsReview {
		t.Errorf("needsReview still true after corrections (confidence %v)", data.Confidence)
	}
	if data.Confidence <= 0.6 {
		t.Errorf("confidence = %v, want > 0.6", data.Confidence)
	}
}

func TestExtractTimeBounds(t *testing.T) {
	data := Extract(strings.Repeat("x ", 5) + "pelas 29h99")
	if data.Time != "" {
		t.Errorf("time = %q, want empty for out-of-range value", data.Time)
	}
}
