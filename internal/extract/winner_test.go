package extract

import (
	"reflect"
	"testing"
)

func TestParseWinnerBlock(t *testing.T) {
	block := `Oficialus pavadinimas: UAB Statybų grupė
Pasiūlymo identifikatorius: PAS-0001
Pasiūlymo vertė: 150 000,00 EUR
Laimėtojas buvo pasirinktas: 2025-09-15
Subrangos sutarčių sudarymas: taip
Subrangos sutarčių vertė yra žinoma: ne
Subrangos sutarčių procentinė dalis yra žinoma: taip
Subrangos sutarčių procentinė dalis: 25 %
Aprašymas: Elektros instaliacijos darbai
Informacija apie sutartį
Sutarties identifikatorius: SUT-2025/123
Sutarties sudarymo data: 2025-10-24
`
	w := parseWinnerBlock(block)
	if w == nil {
		t.Fatal("parseWinnerBlock returned nil")
	}
	if w.OfficialName != "UAB Statybų grupė" {
		t.Errorf("name = %q", w.OfficialName)
	}
	if w.OfferID != "PAS-0001" {
		t.Errorf("offer id = %q", w.OfferID)
	}
	if w.OfferValue == nil || *w.OfferValue != 150000 {
		t.Errorf("offer value = %v, want 150000", w.OfferValue)
	}
	if w.ContractID != "2025123" {
		t.Errorf("contract id = %q, want digits only", w.ContractID)
	}
	if w.ContractDate != "2025-10-24" || len(w.ContractDates) != 0 {
		t.Errorf("dates = %q / %v", w.ContractDate, w.ContractDates)
	}
	if w.SelectionDate != "2025-09-15" {
		t.Errorf("selection date = %q", w.SelectionDate)
	}
	if w.Subcontracting == nil || !*w.Subcontracting {
		t.Error("subcontracting should be true")
	}
	if w.SubValueKnown == nil || *w.SubValueKnown {
		t.Error("sub value known should be false")
	}
	if w.SubPercentKnown == nil || !*w.SubPercentKnown {
		t.Error("sub percent known should be true")
	}
	if w.SubPercent == nil || *w.SubPercent != 25 {
		t.Errorf("sub percent = %v, want 25", w.SubPercent)
	}
	if w.SubDescription != "Elektros instaliacijos darbai" {
		t.Errorf("sub description = %q", w.SubDescription)
	}
}

func TestParseWinnerBlockProseDate(t *testing.T) {
	w := parseWinnerBlock("Oficialus pavadinimas: UAB Statyba\nSutartis pasirašyta 2025-10-24 dieną\n")
	if w == nil {
		t.Fatal("parseWinnerBlock returned nil")
	}
	if w.ContractDate != "2025-10-24" {
		t.Errorf("contract date = %q, want 2025-10-24", w.ContractDate)
	}
}

func TestParseWinnerBlockEmpty(t *testing.T) {
	if w := parseWinnerBlock("joks laukas čia neatpažįstamas\n"); w != nil {
		t.Fatalf("got %+v, want nil", w)
	}
}

func TestCollectContractDates(t *testing.T) {
	t.Run("multiple labelled dates deduped and sorted", func(t *testing.T) {
		block := `Sutarties sudarymo data: 02/11/2025
Sutarties sudarymo data: 2025-10-24
Sutarties sudarymo data: 24.10.2025
`
		got := collectContractDates(block)
		want := []string{"2025-10-24", "2025-11-02"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("dates = %v, want %v", got, want)
		}
	})

	t.Run("bare date after contract heading", func(t *testing.T) {
		block := "Informacija apie sutartį\n2025-10-24\n"
		got := collectContractDates(block)
		if len(got) != 1 || got[0] != "2025-10-24" {
			t.Errorf("dates = %v, want [2025-10-24]", got)
		}
	})

	t.Run("prose date after contract heading", func(t *testing.T) {
		block := "Informacija apie sutartį\nSutartis įsigaliojo 2025-10-24.\n"
		got := collectContractDates(block)
		if len(got) != 1 || got[0] != "2025-10-24" {
			t.Errorf("dates = %v, want [2025-10-24]", got)
		}
	})

	t.Run("prose date without heading", func(t *testing.T) {
		block := "Oficialus pavadinimas: UAB Statyba\nSutartis pasirašyta 2025-10-24 dieną\n"
		got := collectContractDates(block)
		if len(got) != 1 || got[0] != "2025-10-24" {
			t.Errorf("dates = %v, want [2025-10-24]", got)
		}
	})

	t.Run("no dates", func(t *testing.T) {
		if got := collectContractDates("nieko\n"); len(got) != 0 {
			t.Errorf("dates = %v, want none", got)
		}
	})
}
