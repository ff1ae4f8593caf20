// Package extract turns the plain text of a Lithuanian procurement notice
// into a structured record: notice-level fields plus one entry per lot,
// assembled from the Section 5 metadata pass and the Section 6 results pass.
package extract

import (
	"log"

	"github.com/david/tender-radar/internal/models"
)

// Engine is stateless; a single value can serve concurrent extractions.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Extract normalizes the notice text and runs every extractor over it. Each
// field group is isolated by a recover wrapper, so a malformed section costs
// only its own fields; the record always comes back non-nil.
func (e *Engine) Extract(text, noticeID string) *models.NoticeRecord {
	text = Normalize(text)
	rec := &models.NoticeRecord{}

	guard(noticeID, "buyer", func() {
		rec.BuyerName = extractBuyerName(text)
	})
	guard(noticeID, "procedure", func() {
		rec.ProcurementMethod, rec.ProcedureAccelerated = extractProcedure(text)
	})
	guard(noticeID, "description", func() {
		rec.Description = extractDescription(text)
	})
	guard(noticeID, "total value", func() {
		rec.TotalContractsValue = extractTotalValue(text)
	})

	var meta, results map[string]*models.Lot
	guard(noticeID, "lot metadata", func() {
		meta = metadataPass(locate(text, sec5Start, sec5End), noticeID)
	})
	guard(noticeID, "lot results", func() {
		results = resultsPass(locate(text, sec6Start, sec6End), noticeID)
	})
	if meta == nil {
		meta = make(map[string]*models.Lot)
	}
	if results == nil {
		results = make(map[string]*models.Lot)
	}
	rec.Lots = mergeLots(meta, results)

	return rec
}

func guard(noticeID, field string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("notice %s: %s extraction failed: %v", noticeID, field, r)
		}
	}()
	fn()
}
