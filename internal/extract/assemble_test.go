package extract

import (
	"reflect"
	"testing"

	"github.com/david/tender-radar/internal/models"
)

func TestMergeLots(t *testing.T) {
	months := 24
	meta := map[string]*models.Lot{
		"LOT-0001": {Title: "Statybos darbai", ValidityMonths: &months},
		"LOT-0002": {Title: "Projektavimas"},
	}
	results := map[string]*models.Lot{
		"LOT-0001": {
			Result:  &models.LotResult{Status: models.LotAwarded},
			Winners: []models.WinnerRecord{{OfficialName: "UAB Statyba"}},
		},
		"LOT-0003": {NotAwarded: true},
	}

	merged := mergeLots(meta, results)
	if len(merged) != 3 {
		t.Fatalf("got %d lots, want 3", len(merged))
	}

	one := merged["LOT-0001"]
	if one.Title != "Statybos darbai" {
		t.Errorf("metadata field lost in merge: %q", one.Title)
	}
	if one.Result == nil || one.Result.Status != models.LotAwarded {
		t.Error("results pass did not land on merged lot")
	}
	if len(one.Winners) != 1 || one.Winners[0].OfficialName != "UAB Statyba" {
		t.Errorf("winners = %+v", one.Winners)
	}

	if merged["LOT-0002"].Title != "Projektavimas" {
		t.Error("metadata-only lot dropped")
	}
	if !merged["LOT-0003"].NotAwarded {
		t.Error("results-only lot dropped")
	}
}

func TestMergeLotDoesNotBlankFields(t *testing.T) {
	dst := &models.Lot{Title: "Darbai", Description: "Aprašymas"}
	mergeLot(dst, &models.Lot{Title: "Naujas"})
	if dst.Title != "Naujas" {
		t.Errorf("title = %q, want overwrite from populated source", dst.Title)
	}
	if dst.Description != "Aprašymas" {
		t.Errorf("description = %q, empty source field must not blank it", dst.Description)
	}
}

func TestMergeOrphanDates(t *testing.T) {
	t.Run("date fragment folds into preceding winner", func(t *testing.T) {
		winners := []models.WinnerRecord{
			{OfficialName: "UAB Statyba", ContractID: "123"},
			{ContractDate: "2025-10-24"},
		}
		got := mergeOrphanDates(winners)
		if len(got) != 1 {
			t.Fatalf("got %d winners, want 1", len(got))
		}
		if got[0].ContractDate != "2025-10-24" {
			t.Errorf("merged date = %q", got[0].ContractDate)
		}
	})

	t.Run("second date moves winner to plural form", func(t *testing.T) {
		winners := []models.WinnerRecord{
			{OfficialName: "UAB Statyba", ContractDate: "2025-10-24"},
			{ContractDate: "2025-11-02"},
		}
		got := mergeOrphanDates(winners)
		if len(got) != 1 {
			t.Fatalf("got %d winners, want 1", len(got))
		}
		if got[0].ContractDate != "" {
			t.Errorf("single date form still set: %q", got[0].ContractDate)
		}
		want := []string{"2025-10-24", "2025-11-02"}
		if !reflect.DeepEqual(got[0].ContractDates, want) {
			t.Errorf("dates = %v, want %v", got[0].ContractDates, want)
		}
	})

	t.Run("leading date-only record is kept", func(t *testing.T) {
		winners := []models.WinnerRecord{
			{ContractDate: "2025-10-24"},
			{OfficialName: "UAB Statyba"},
		}
		got := mergeOrphanDates(winners)
		if len(got) != 2 {
			t.Fatalf("got %d winners, want 2", len(got))
		}
	})

	t.Run("duplicate date not appended twice", func(t *testing.T) {
		winners := []models.WinnerRecord{
			{OfficialName: "UAB Statyba", ContractDate: "2025-10-24"},
			{ContractDate: "2025-10-24"},
		}
		got := mergeOrphanDates(winners)
		if len(got) != 1 {
			t.Fatalf("got %d winners, want 1", len(got))
		}
		if len(got[0].ContractDates) != 1 || got[0].ContractDates[0] != "2025-10-24" {
			t.Errorf("dates = %v / %q", got[0].ContractDates, got[0].ContractDate)
		}
	})
}
