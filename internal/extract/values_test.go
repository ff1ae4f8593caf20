package extract

import "testing"

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		amount   *float64
		currency string
	}{
		{"lt format with currency", "1 234,56 EUR", f(1234.56), "EUR"},
		{"plain decimal no currency", "1234.56", f(1234.56), ""},
		{"euro sign", "€ 100", f(100), "EUR"},
		{"thousands commas rejected", "1,234,567 EUR", nil, "EUR"},
		{"integer", "245000 Eur", f(245000), "EUR"},
		{"free text", "nenurodyta", nil, ""},
		{"empty", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, currency := ParseMoney(tt.in)
			if currency != tt.currency {
				t.Errorf("currency = %q, want %q", currency, tt.currency)
			}
			if (amount == nil) != (tt.amount == nil) {
				t.Fatalf("amount = %v, want %v", amount, tt.amount)
			}
			if amount != nil && *amount != *tt.amount {
				t.Errorf("amount = %v, want %v", *amount, *tt.amount)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"24/10/2025", "2025-10-24"},
		{"24.10.2025", "2025-10-24"},
		{"2025.10.24", "2025-10-24"},
		{"2025-10-24", "2025-10-24"},
		{"Sutartis pasirašyta 24.10.2025 dieną", "2025-10-24"},
		{"2025-13-01", ""},
		{"2025", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.in); got != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalLotID(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"LOT-0001", "LOT-0001", true},
		{"LOT 3", "LOT-0003", true},
		{"lot-03", "LOT-0003", true},
		{"LOT0042", "LOT-0042", true},
		{"ID dalies: LOT-0007", "LOT-0007", true},
		{"dalis nr. 4", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalLotID(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("CanonicalLotID(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCanonicalLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rūšis", "type"},
		{"Rusis", "type"},
		{"Pavadinimas", "name"},
		{"Aprašymas", "description"},
		{"Metodo aprašymas", "method-description"},
		{"Kategorija", "category"},
		{"Pagrindimas", "justification"},
		{"Kita eilutė", ""},
	}
	for _, tt := range tests {
		if got := CanonicalLabel(tt.in); got != tt.want {
			t.Errorf("CanonicalLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePercent(t *testing.T) {
	if got := ParsePercent("12,5 %"); got == nil || *got != 12.5 {
		t.Errorf("ParsePercent(12,5 %%) = %v, want 12.5", got)
	}
	if got := ParsePercent("80"); got == nil || *got != 80 {
		t.Errorf("ParsePercent(80) = %v, want 80", got)
	}
	if got := ParsePercent("nėra"); got != nil {
		t.Errorf("ParsePercent(nėra) = %v, want nil", got)
	}
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"taip", true},
		{"Taip", true},
		{"taip, pagreitinta", true},
		{"ne", false},
		{"Ne", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ParseYesNo(tt.in); got != tt.want {
			t.Errorf("ParseYesNo(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func f(v float64) *float64 { return &v }
