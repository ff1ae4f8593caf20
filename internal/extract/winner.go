package extract

import (
	"regexp"
	"sort"

	"github.com/david/tender-radar/internal/models"
)

var (
	winnerName    = regexp.MustCompile(`(?i)Oficialus\s+pavadinimas:\s*([^\n]+)`)
	winnerOfferID = regexp.MustCompile(`(?i)Pasi[ūu]lymo\s+identifikatorius:\s*([^\n]+)`)
	winnerValue   = regexp.MustCompile(`(?i)Pasi[ūu]lymo\s+vert[ėe]:\s*([^\n]+)`)
	contractID    = regexp.MustCompile(`(?i)Sutarties\s+identifikatorius:\s*([^\n]+)`)
	contractDate  = regexp.MustCompile(`(?i)Sutarties\s+sudarymo\s+data:\s*([^\n]+)`)

	// The template inflects the label ("Laimėtojas buvo pasirinktas",
	// "Laimėtojo pasirinkimo data") so match loosely on the stems.
	selectionDate = regexp.MustCompile(`(?i)Laim[ėe]toj(?:as|o)[^\n]{0,80}?pasirink[^\n]*?:\s*([^\n]+)`)

	// Some notices carry the signing date under the contract-information
	// sub-heading, or buried in prose, instead of a labelled contract date.
	contractInfoHeading = regexp.MustCompile(`(?i)Informacija\s+apie\s+sutart[įi]`)

	subContracting   = regexp.MustCompile(`(?i)Subrangos\s+sutar[čc]i[ųu]\s+sudarymas:\s*([^\n]+)`)
	subValueKnown    = regexp.MustCompile(`(?i)Subrangos\s+sutar[čc]i[ųu]\s+vert[ėe]\s+yra\s+[žz]inoma:\s*([^\n]+)`)
	subValue         = regexp.MustCompile(`(?i)Subrangos\s+sutar[čc]i[ųu]\s+vert[ėe]:\s*([^\n]+)`)
	subPercentKnown  = regexp.MustCompile(`(?i)Subrangos\s+sutar[čc]i[ųu]\s+procentin[ėe]\s+dalis\s+yra\s+[žz]inoma:\s*([^\n]+)`)
	subPercent       = regexp.MustCompile(`(?i)Subrangos\s+sutar[čc]i[ųu]\s+procentin[ėe]\s+dalis:\s*([^\n]+)`)
	descriptionLabel = regexp.MustCompile(`(?i)Apra[šs]ymas:\s*([^\n]+)`)
)

// parseWinnerBlock reads one winner's fragment of a results block. It returns
// nil when none of the recognized fields are present, so stray separator
// matches do not produce empty records.
func parseWinnerBlock(block string) *models.WinnerRecord {
	w := &models.WinnerRecord{}
	found := false

	if m := winnerName.FindStringSubmatch(block); m != nil {
		w.OfficialName = normOneLine(m[1])
		found = true
	}
	if m := winnerOfferID.FindStringSubmatch(block); m != nil {
		w.OfferID = normOneLine(m[1])
		found = true
	}
	if m := winnerValue.FindStringSubmatch(block); m != nil {
		if amount, _ := ParseMoney(m[1]); amount != nil {
			w.OfferValue = amount
			found = true
		}
	}
	if m := contractID.FindStringSubmatch(block); m != nil {
		if id := digitsOnly(m[1]); id != "" {
			w.ContractID = id
			found = true
		}
	}

	dates := collectContractDates(block)
	switch len(dates) {
	case 0:
	case 1:
		w.ContractDate = dates[0]
		found = true
	default:
		w.ContractDates = dates
		found = true
	}

	if m := selectionDate.FindStringSubmatch(block); m != nil {
		if d := ParseDate(m[1]); d != "" {
			w.SelectionDate = d
			found = true
		}
	}

	if m := subContracting.FindStringSubmatch(block); m != nil {
		b := ParseYesNo(m[1])
		w.Subcontracting = &b
		found = true
	}
	if m := subValueKnown.FindStringSubmatch(block); m != nil {
		b := ParseYesNo(m[1])
		w.SubValueKnown = &b
		found = true
	}
	if m := subValue.FindStringSubmatch(block); m != nil {
		if amount, _ := ParseMoney(m[1]); amount != nil {
			w.SubValue = amount
			found = true
		}
	}
	if m := subPercentKnown.FindStringSubmatch(block); m != nil {
		b := ParseYesNo(m[1])
		w.SubPercentKnown = &b
		found = true
	}
	if m := subPercent.FindStringSubmatch(block); m != nil {
		if p := ParsePercent(m[1]); p != nil {
			w.SubPercent = p
			found = true
		}
	}

	// The winner fragment can contain several description lines; the last one
	// belongs to the subcontracting group.
	if ms := descriptionLabel.FindAllStringSubmatch(block, -1); len(ms) > 0 {
		w.SubDescription = normOneLine(ms[len(ms)-1][1])
		found = true
	}

	if !found {
		return nil
	}
	return w
}

// collectContractDates gathers every labelled contract-signing date in the
// block, then dedupes and sorts the ISO forms. Without a labelled date it
// falls back to the first recognizable date after the contract-information
// heading, then to the first one anywhere in the block.
func collectContractDates(block string) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, m := range contractDate.FindAllStringSubmatch(block, -1) {
		if d := ParseDate(m[1]); d != "" && !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		tail := block
		if loc := contractInfoHeading.FindStringIndex(block); loc != nil {
			tail = block[loc[1]:]
		}
		if d := ParseDate(tail); d != "" {
			dates = append(dates, d)
		} else if d := ParseDate(block); d != "" {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates
}
