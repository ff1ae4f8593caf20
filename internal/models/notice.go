package models

import "time"

// Money is an amount plus an optional ISO currency code. Amount is nil when the
// source text was located but not numeric.
type Money struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency,omitempty"`
}

// NoticeRecord is the structured output of one extraction run over a single
// notice's canonical text. Every field is optional: a nil pointer (or nil map)
// means the corresponding label was absent or failed its value parser.
type NoticeRecord struct {
	BuyerName            *string         `json:"buyer_name,omitempty"`
	ProcurementMethod    *string         `json:"procurement_method,omitempty"`
	ProcedureAccelerated *bool           `json:"procedure_accelerated,omitempty"`
	Description          *string         `json:"description,omitempty"`
	TotalContractsValue  *Money          `json:"total_contracts_value,omitempty"`
	Lots                 map[string]*Lot `json:"lots,omitempty"`
}

// Lot result statuses. Empty string means the results section said nothing
// either way.
const (
	LotAwarded    = "apdovanota"
	LotNotAwarded = "neapdovanota"
)

// Lot is one awardable sub-item of a notice, merged from the Section 5
// (metadata) and Section 6 (results) passes. JSON keys keep the notice
// template's Lithuanian labels because the stored jsonb is read back by the
// dashboard under those names.
type Lot struct {
	Title          string `json:"Pavadinimas,omitempty"`
	Description    string `json:"Aprašymas,omitempty"`
	ContractObject string `json:"Sutarties objektas,omitempty"`
	CPV            string `json:"Pagrindinis klasifikacijos kodas (cpv),omitempty"`
	NUTS           string `json:"NUTS,omitempty"`
	Country        string `json:"Šalis,omitempty"`
	ValidityMonths *int   `json:"Galiojimas (mėn.),omitempty"`

	GeneralInfo *GeneralInfo          `json:"Bendra informacija,omitempty"`
	Strategic   *StrategicProcurement `json:"Strateginis pirkimas,omitempty"`
	Criteria    *AwardCriteria        `json:"Skyrimo kriterijai,omitempty"`

	Result  *LotResult     `json:"Rezultatas,omitempty"`
	Winners []WinnerRecord `json:"Info_winner,omitempty"`

	// Flattened convenience fields kept for older dashboard consumers.
	StrategicGoal    string       `json:"Strateginis tikslas,omitempty"`
	GreenCriteria    string       `json:"ŽVP: kriterijai,omitempty"`
	ResultText       string       `json:"Rezultatas_tekstas,omitempty"`
	NotAwarded       bool         `json:"Neapdovanota"`
	NotAwardedReason string       `json:"Neapdovanota priežastis,omitempty"`
	Stats            *ResultStats `json:"Statistika,omitempty"`
}

// GeneralInfo carries the 5.1.6 "Bendra informacija" flags. Both booleans are
// tri-state: nil when no known phrasing matched.
type GeneralInfo struct {
	FirstLine  string `json:"pirma_eilute,omitempty"`
	EUFunded   *bool  `json:"ES lėšos,omitempty"`
	GPAApplies *bool  `json:"SVP_taikoma,omitempty"`
}

// StrategicProcurement holds the 5.1.7 goal and free-text rationale.
type StrategicProcurement struct {
	Goal        string `json:"Tikslas,omitempty"`
	Description string `json:"Aprašymas,omitempty"`
}

// AwardCriteria is the parsed 5.1.10 block: a per-type percentage summary
// (keys "price", "quality") plus the itemized criteria in document order.
type AwardCriteria struct {
	Summary  map[string]float64 `json:"santrauka,omitempty"`
	Criteria []Criterion        `json:"kriterijai,omitempty"`
}

// Criterion is one award criterion. Any subset of fields may be present.
type Criterion struct {
	Type          string   `json:"Rūšis,omitempty"`
	Name          string   `json:"Pavadinimas,omitempty"`
	Description   string   `json:"Aprašymas,omitempty"`
	CategoryLine  string   `json:"Kategorija_eilutė,omitempty"`
	Weight        *float64 `json:"Svoris,omitempty"`
	Method        string   `json:"Metodo aprašymas,omitempty"`
	Justification string   `json:"Pagrindimas,omitempty"`
}

// LotResult is the Section 6 outcome for one lot.
type LotResult struct {
	Status  string       `json:"Būsena,omitempty"`
	Message string       `json:"Žinutė,omitempty"`
	Reason  string       `json:"Priežastis,omitempty"`
	Stats   *ResultStats `json:"Statistika,omitempty"`
}

// ResultStats mirrors the template's statistics sub-block.
type ResultStats struct {
	BidsReceived *int `json:"Gautų pasiūlymų ar dalyvavimo prašymų skaičius"`
}

// WinnerRecord describes one awarded supplier inside a lot's results block.
type WinnerRecord struct {
	OfficialName  string   `json:"Oficialus pavadinimas,omitempty"`
	OfferID       string   `json:"Pasiūlymo identifikatorius,omitempty"`
	OfferValue    *float64 `json:"Pasiūlymo vertė (EUR),omitempty"`
	ContractID    string   `json:"Sutarties identifikatorius,omitempty"`
	ContractDate  string   `json:"Sutarties sudarymo data,omitempty"`
	ContractDates []string `json:"Sutarties sudarymo datos,omitempty"`
	SelectionDate string   `json:"Laimėtojo pasirinkimo data,omitempty"`

	Subcontracting  *bool    `json:"Subranga,omitempty"`
	SubValueKnown   *bool    `json:"Subrangos vertė žinoma,omitempty"`
	SubValue        *float64 `json:"Subrangos vertė,omitempty"`
	SubPercentKnown *bool    `json:"Subrangos procentinė dalis žinoma,omitempty"`
	SubPercent      *float64 `json:"Subrangos procentinė dalis,omitempty"`
	SubDescription  string   `json:"Subrangos aprašymas,omitempty"`
}

// Notice is one row of the notices staging table as served by the API.
type Notice struct {
	NoticeID             string          `json:"notice_id"`
	Title                string          `json:"title"`
	NoticeType           string          `json:"notice_type"`
	BuyerName            string          `json:"buyer_name"`
	ProcurementMethod    string          `json:"procurement_method"`
	ProcedureAccelerated *bool           `json:"procedure_accelerated"`
	Description          string          `json:"description"`
	PublishDate          *time.Time      `json:"publish_date"`
	PDFURL               string          `json:"pdf_url"`
	TotalContractsValue  *Money          `json:"total_contracts_value"`
	Lots                 map[string]*Lot `json:"lots"`
	ExtractionStatus     string          `json:"extraction_status"`
	LastExtractedAt      *time.Time      `json:"last_extracted_at"`
	CreatedAt            time.Time       `json:"created_at"`
}
