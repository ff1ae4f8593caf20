package extract

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nbsp to space", "1 234,56", "1 234,56"},
		{"zero width removed", "LOT\u200b-0001", "LOT-0001"},
		{"bom removed", "\ufeffSkelbimas apie pirkimą", "Skelbimas apie pirkimą"},
		{"dashes unified", "2024–2025 ir 10—12", "2024-2025 ir 10-12"},
		{"crlf to lf", "eilutė\r\nkita\reilutė", "eilutė\nkita\neilutė"},
		{"url stripped", "žr. https://example.lt/pranesimas čia", "žr. čia"},
		{"page counter stripped", "tekstas 3 psl. iš 12 tęsiasi", "tekstas tęsiasi"},
		{"blank line runs collapsed", "a\n\n\nb", "a\nb"},
		{"horizontal runs collapsed", "Pavadinimas:    reikšmė", "Pavadinimas: reikšmė"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "Skelbimas Nr. 1\r\n\r\nPage 2/8\n2024–2025  m.\nhttps://cvpp.eviesiejipirkimai.lt/x\n\n\nPabaiga"
	once := Normalize(in)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestNormOneLine(t *testing.T) {
	in := "  UAB   Statyba\n ir partneriai \t"
	want := "UAB Statyba ir partneriai"
	if got := normOneLine(in); got != want {
		t.Errorf("normOneLine = %q, want %q", got, want)
	}
	if strings.ContainsAny(normOneLine("a\nb"), "\n") {
		t.Error("normOneLine left a newline in the value")
	}
}
