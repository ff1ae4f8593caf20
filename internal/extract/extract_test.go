package extract

import (
	"reflect"
	"testing"

	"github.com/david/tender-radar/internal/models"
)

// sampleNotice mimics the text layer of a contract-award notice PDF: numbered
// top-level sections, per-lot 5.1 blocks and a results section referencing the
// lots back by identifier.
const sampleNotice = `Skelbimas apie sutarties skyrimą
1 Pirkėjas
1.1 Pirkėjas
Oficialus pavadinimas: Vilniaus miesto savivaldybės administracija
Registracijos numeris: 188710061
2 Procedūra
2.1 Procedūra
Pirkimo būdas: Atviras konkursas
Procedūra pagreitinta: ne
Aprašymas: Statybos darbų ir projektavimo paslaugų pirkimas
5 Pirkimo dalis
5.1 Techninės ID dalies: LOT-0001
Pavadinimas: Statybos darbai
Aprašymas: Pastato rekonstrukcijos darbai
Sutarties objektas: Darbai
Pagrindinis klasifikacijos kodas (cpv): 45000000 Statybos darbai
(NUTS): LT011 Vilniaus apskritis
Šalis: Lietuva
Galiojimas: 24 mėn.
Žaliasis viešasis pirkimas: kriterijai: Aplinkosaugos vadybos sistemos reikalavimai
5.1.6 Bendra informacija
Pirkimas finansuojamas iš ES lėšų
Pirkimui taikoma SVP: taip
5.1.7 Strateginis viešasis pirkimas
Strateginio viešojo pirkimo tikslas: Žaliasis viešasis pirkimas
Aprašymas: Perkama pagal aplinkosaugos kriterijus
5.1.10 Skyrimo kriterijai
Kriterijus:
Rūšis: Kaina
Pavadinimas: Kaina
Aprašymas: Mažiausios kainos vertinimas
Svoris (procentinė dalis, tiksli): 90
Kriterijus:
Rūšis: Kokybė
Pavadinimas: Kokybės balas
Aprašymas: Techninių parametrų vertinimas
Svoris (procentinė dalis, tiksli): 10
5.1 Techninės ID dalies: LOT-0002
Pavadinimas: Projektavimo paslaugos
Aprašymas: Techninio projekto parengimas
6 Rezultatai
Visų šiame pranešime suteiktų sutarčių vertė: 245 000,00 EUR
6.1 Pirkimo dalies rezultatai
Pirkimo dalies ID: LOT-0001
Laimėtojas:
Oficialus pavadinimas: UAB Statyba
Pasiūlymo identifikatorius: PAS-001
Pasiūlymo vertė: 150 000,00 EUR
Sutarties identifikatorius: CON-2025/123
Informacija apie sutartį
Sutarties sudarymo data: 2025-10-24
Laimėtojas:
Oficialus pavadinimas: UAB Kelias
Pasiūlymo vertė: 95 000,00 EUR
Sutarties identifikatorius: 789012
Sutarties sudarymo data: 24/10/2025
Sutarties sudarymo data: 2025-11-02
Gautų pasiūlymų ar dalyvavimo prašymų skaičius: 5
Pirkimo dalies ID: LOT-0002
Nepasirinktas nė vienas laimėtojas
Priežastis, dėl kurios laimėtojas nebuvo pasirinktas: Visi pasiūlymai atmesti
Gautų pasiūlymų ar dalyvavimo prašymų skaičius: 4
7 Informacija apie skelbimą
`

func TestExtractNoticeFields(t *testing.T) {
	rec := New().Extract(sampleNotice, "2025-100001")

	if rec.BuyerName == nil || *rec.BuyerName != "Vilniaus miesto savivaldybės administracija" {
		t.Errorf("buyer = %v", rec.BuyerName)
	}
	if rec.ProcurementMethod == nil || *rec.ProcurementMethod != "Atviras konkursas" {
		t.Errorf("method = %v", rec.ProcurementMethod)
	}
	if rec.ProcedureAccelerated == nil || *rec.ProcedureAccelerated {
		t.Errorf("accelerated = %v, want false", rec.ProcedureAccelerated)
	}
	if rec.Description == nil || *rec.Description != "Statybos darbų ir projektavimo paslaugų pirkimas" {
		t.Errorf("description = %v", rec.Description)
	}
	if rec.TotalContractsValue == nil || rec.TotalContractsValue.Amount == nil {
		t.Fatal("total contracts value missing")
	}
	if *rec.TotalContractsValue.Amount != 245000 || rec.TotalContractsValue.Currency != "EUR" {
		t.Errorf("total = %v %s", *rec.TotalContractsValue.Amount, rec.TotalContractsValue.Currency)
	}
}

func TestExtractLotMetadata(t *testing.T) {
	rec := New().Extract(sampleNotice, "2025-100001")
	if len(rec.Lots) != 2 {
		t.Fatalf("got %d lots, want 2", len(rec.Lots))
	}

	lot := rec.Lots["LOT-0001"]
	if lot == nil {
		t.Fatal("LOT-0001 missing")
	}
	if lot.Title != "Statybos darbai" {
		t.Errorf("title = %q", lot.Title)
	}
	if lot.Description != "Pastato rekonstrukcijos darbai" {
		t.Errorf("description = %q", lot.Description)
	}
	if lot.ContractObject != "Darbai" {
		t.Errorf("contract object = %q", lot.ContractObject)
	}
	if lot.CPV != "45000000 Statybos darbai" {
		t.Errorf("cpv = %q", lot.CPV)
	}
	if lot.NUTS != "LT011 Vilniaus apskritis" || lot.Country != "Lietuva" {
		t.Errorf("nuts/country = %q / %q", lot.NUTS, lot.Country)
	}
	if lot.ValidityMonths == nil || *lot.ValidityMonths != 24 {
		t.Errorf("validity = %v, want 24", lot.ValidityMonths)
	}
	if lot.GreenCriteria != "Aplinkosaugos vadybos sistemos reikalavimai" {
		t.Errorf("green criteria = %q", lot.GreenCriteria)
	}

	gi := lot.GeneralInfo
	if gi == nil {
		t.Fatal("general info missing")
	}
	if gi.FirstLine != "Pirkimas finansuojamas iš ES lėšų" {
		t.Errorf("first line = %q", gi.FirstLine)
	}
	if gi.EUFunded == nil || !*gi.EUFunded {
		t.Error("EU funding should be true")
	}
	if gi.GPAApplies == nil || !*gi.GPAApplies {
		t.Error("GPA flag should be true")
	}

	if lot.Strategic == nil || lot.Strategic.Goal != "Žaliasis viešasis pirkimas" {
		t.Errorf("strategic = %+v", lot.Strategic)
	}
	if lot.StrategicGoal != "Žaliasis viešasis pirkimas" {
		t.Errorf("flattened goal = %q", lot.StrategicGoal)
	}
	if lot.Strategic.Description != "Perkama pagal aplinkosaugos kriterijus" {
		t.Errorf("strategic description = %q", lot.Strategic.Description)
	}

	ac := lot.Criteria
	if ac == nil || len(ac.Criteria) != 2 {
		t.Fatalf("criteria = %+v", ac)
	}
	if ac.Summary["price"] != 90 || ac.Summary["quality"] != 10 {
		t.Errorf("summary = %v, want price 90 quality 10", ac.Summary)
	}

	two := rec.Lots["LOT-0002"]
	if two == nil || two.Title != "Projektavimo paslaugos" {
		t.Fatalf("LOT-0002 = %+v", two)
	}
}

func TestExtractLotResults(t *testing.T) {
	rec := New().Extract(sampleNotice, "2025-100001")

	lot := rec.Lots["LOT-0001"]
	if lot == nil {
		t.Fatal("LOT-0001 missing")
	}
	if lot.Result == nil || lot.Result.Status != models.LotAwarded {
		t.Fatalf("result = %+v, want awarded", lot.Result)
	}
	if lot.Stats == nil || lot.Stats.BidsReceived == nil || *lot.Stats.BidsReceived != 5 {
		t.Errorf("stats = %+v, want 5 bids", lot.Stats)
	}
	if len(lot.Winners) != 2 {
		t.Fatalf("got %d winners, want 2", len(lot.Winners))
	}

	first := lot.Winners[0]
	if first.OfficialName != "UAB Statyba" || first.OfferID != "PAS-001" {
		t.Errorf("first winner = %+v", first)
	}
	if first.OfferValue == nil || *first.OfferValue != 150000 {
		t.Errorf("first offer value = %v", first.OfferValue)
	}
	if first.ContractID != "2025123" {
		t.Errorf("first contract id = %q", first.ContractID)
	}
	if first.ContractDate != "2025-10-24" {
		t.Errorf("first contract date = %q", first.ContractDate)
	}

	second := lot.Winners[1]
	if second.OfficialName != "UAB Kelias" {
		t.Errorf("second winner = %+v", second)
	}
	if second.ContractID != "789012" {
		t.Errorf("second contract id = %q", second.ContractID)
	}
	wantDates := []string{"2025-10-24", "2025-11-02"}
	if !reflect.DeepEqual(second.ContractDates, wantDates) {
		t.Errorf("second dates = %v, want %v", second.ContractDates, wantDates)
	}

	two := rec.Lots["LOT-0002"]
	if two == nil {
		t.Fatal("LOT-0002 missing")
	}
	if !two.NotAwarded {
		t.Error("LOT-0002 should be unawarded")
	}
	if two.Result == nil || two.Result.Status != models.LotNotAwarded {
		t.Fatalf("result = %+v, want not awarded", two.Result)
	}
	if two.Result.Message != "Nepasirinktas nė vienas laimėtojas" {
		t.Errorf("message = %q", two.Result.Message)
	}
	if two.NotAwardedReason != "Visi pasiūlymai atmesti" {
		t.Errorf("reason = %q", two.NotAwardedReason)
	}
	if two.Stats == nil || two.Stats.BidsReceived == nil || *two.Stats.BidsReceived != 4 {
		t.Errorf("stats = %+v, want 4 bids", two.Stats)
	}
	if len(two.Winners) != 0 {
		t.Errorf("unawarded lot has winners: %+v", two.Winners)
	}
	wantText := "Nepasirinktas nė vienas laimėtojas Priežastis, dėl kurios laimėtojas nebuvo pasirinktas: Visi pasiūlymai atmesti"
	if two.ResultText != wantText {
		t.Errorf("result text = %q", two.ResultText)
	}
}

func TestExtractEmptyAndGarbage(t *testing.T) {
	rec := New().Extract("", "2025-0")
	if rec == nil {
		t.Fatal("record must not be nil")
	}
	if rec.BuyerName != nil || len(rec.Lots) != 0 {
		t.Errorf("empty text produced fields: %+v", rec)
	}

	rec = New().Extract("visiškai nesusijęs tekstas be jokios struktūros", "2025-1")
	if rec == nil || len(rec.Lots) != 0 {
		t.Errorf("garbage text produced lots: %+v", rec)
	}
}
