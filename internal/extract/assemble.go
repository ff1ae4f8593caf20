package extract

import "github.com/david/tender-radar/internal/models"

// mergeLots folds the results-pass lots into the metadata-pass lots. Only
// populated fields from the later pass land on the merged record, so a
// results block never blanks out metadata and vice versa.
func mergeLots(meta, results map[string]*models.Lot) map[string]*models.Lot {
	merged := make(map[string]*models.Lot, len(meta))
	for id, lot := range meta {
		merged[id] = lot
	}
	for id, src := range results {
		dst := merged[id]
		if dst == nil {
			merged[id] = src
			continue
		}
		mergeLot(dst, src)
	}
	for _, lot := range merged {
		lot.Winners = mergeOrphanDates(lot.Winners)
	}
	return merged
}

func mergeLot(dst, src *models.Lot) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Description != "" {
		dst.Description = src.Description
	}
	if src.ContractObject != "" {
		dst.ContractObject = src.ContractObject
	}
	if src.CPV != "" {
		dst.CPV = src.CPV
	}
	if src.NUTS != "" {
		dst.NUTS = src.NUTS
	}
	if src.Country != "" {
		dst.Country = src.Country
	}
	if src.ValidityMonths != nil {
		dst.ValidityMonths = src.ValidityMonths
	}
	if src.GeneralInfo != nil {
		dst.GeneralInfo = src.GeneralInfo
	}
	if src.Strategic != nil {
		dst.Strategic = src.Strategic
	}
	if src.Criteria != nil {
		dst.Criteria = src.Criteria
	}
	if src.StrategicGoal != "" {
		dst.StrategicGoal = src.StrategicGoal
	}
	if src.GreenCriteria != "" {
		dst.GreenCriteria = src.GreenCriteria
	}
	if src.Result != nil {
		dst.Result = src.Result
	}
	if len(src.Winners) > 0 {
		dst.Winners = append(dst.Winners, src.Winners...)
	}
	if src.ResultText != "" {
		dst.ResultText = src.ResultText
	}
	if src.NotAwarded {
		dst.NotAwarded = true
	}
	if src.NotAwardedReason != "" {
		dst.NotAwardedReason = src.NotAwardedReason
	}
	if src.Stats != nil {
		dst.Stats = src.Stats
	}
}

// mergeOrphanDates folds winner records that carry nothing but contract
// dates into the preceding real winner. The template sometimes emits the
// contract-information group as its own "Laimėtojas" fragment, which would
// otherwise surface as a phantom winner. A date-only record with no
// preceding winner is kept as-is rather than dropped.
func mergeOrphanDates(winners []models.WinnerRecord) []models.WinnerRecord {
	if len(winners) < 2 {
		return winners
	}
	out := winners[:0]
	for _, w := range winners {
		if len(out) > 0 && dateOnly(w) {
			prev := &out[len(out)-1]
			if w.ContractDate != "" {
				if prev.ContractDate == "" && len(prev.ContractDates) == 0 {
					prev.ContractDate = w.ContractDate
				} else {
					prev.ContractDates = appendDate(prev, w.ContractDate)
				}
			}
			for _, d := range w.ContractDates {
				prev.ContractDates = appendDate(prev, d)
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

func dateOnly(w models.WinnerRecord) bool {
	return (w.ContractDate != "" || len(w.ContractDates) > 0) &&
		w.OfficialName == "" && w.OfferID == "" && w.OfferValue == nil &&
		w.ContractID == "" && w.SelectionDate == "" &&
		w.Subcontracting == nil && w.SubValueKnown == nil && w.SubValue == nil &&
		w.SubPercentKnown == nil && w.SubPercent == nil && w.SubDescription == ""
}

// appendDate moves a winner onto the plural-dates form, pulling the existing
// single date into the slice first and skipping duplicates.
func appendDate(w *models.WinnerRecord, d string) []string {
	if w.ContractDate != "" {
		w.ContractDates = append(w.ContractDates, w.ContractDate)
		w.ContractDate = ""
	}
	for _, have := range w.ContractDates {
		if have == d {
			return w.ContractDates
		}
	}
	return append(w.ContractDates, d)
}
