package extraction

import "testing"

func TestParsePlate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     string
		wantConf float64
		ok       bool
	}{
		{"letters first", "matrícula AB-12-34", "AB-12-34", 0.95, true},
		{"letters middle", "matrícula 12-AB-34", "12-AB-34", 0.95, true},
		{"letters last", "matrícula 12-34-AB", "12-34-AB", 0.95, true},
		{"newest layout", "matrícula AB-12-CD", "AB-12-CD", 0.95, true},
		{"space separated", "matrícula AB 12 34", "AB-12-34", 0.95, true},
		{"lowercase input", "matrícula ab-12-34", "AB-12-34", 0.95, true},
		{"O confused for zero", "matrícula AB-1O-34", "AB-10-34", 0.75, true},
		{"S and B confused", "matrícula SB-AB-34", "58-AB-34", 0.75, true},
		{"all letters no layout", "código AB-CD-EF", "", 0, false},
		{"no plate", "sem matrícula nenhuma", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf, ok := parsePlate(tt.text)
			if ok != tt.ok {
				t.Fatalf("parsePlate(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("parsePlate(%q) = %q, want %q", tt.text, got, tt.want)
			}
			if conf != tt.wantConf {
				t.Errorf("parsePlate(%q) confidence = %v, want %v", tt.text, conf, tt.wantConf)
			}
		})
	}
}

func TestToDigitsRejectsUnmappableLetters(t *testing.T) {
	if _, _, ok := toDigits("XY"); ok {
		t.Error("toDigits(XY) should fail, X and Y are not confusable digits")
	}
	got, fixes, ok := toDigits("O1")
	if !ok || got != "01" || fixes != 1 {
		t.Errorf("toDigits(O1) = %q, %d, %v; want 01, 1, true", got, fixes, ok)
	}
}
