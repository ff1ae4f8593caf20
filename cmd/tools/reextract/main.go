package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/david/tender-radar/internal/db"
	"github.com/david/tender-radar/internal/extract"
)

// Re-runs the extraction engine over raw text already stored in the
// database. Used after engine changes so notices do not have to be
// refetched.
func main() {
	ids := flag.String("ids", "", "Comma-separated notice IDs (default: all notices with stored text)")
	limit := flag.Int("limit", 500, "Max notices to reprocess when -ids is not given")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	engine := extract.New()

	var noticeIDs []string
	if strings.TrimSpace(*ids) != "" {
		for _, raw := range strings.Split(*ids, ",") {
			if id := strings.TrimSpace(raw); id != "" {
				noticeIDs = append(noticeIDs, id)
			}
		}
	} else {
		rows, err := pool.Query(ctx, `
			SELECT notice_id FROM notices_stage
			WHERE raw_text != ''
			ORDER BY publish_date DESC NULLS LAST
			LIMIT $1
		`, *limit)
		if err != nil {
			log.Fatalf("Query failed: %v", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				log.Fatalf("Scan failed: %v", err)
			}
			noticeIDs = append(noticeIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			log.Fatalf("Rows failed: %v", err)
		}
	}

	log.Printf("Reprocessing %d notices", len(noticeIDs))
	updated, failed := 0, 0
	for _, id := range noticeIDs {
		raw, err := store.GetRawText(ctx, id)
		if err != nil {
			log.Printf("notice %s: %v", id, err)
			failed++
			continue
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}

		rec := engine.Extract(raw, id)
		if err := store.MarkExtracted(ctx, id, rec, raw); err != nil {
			log.Printf("notice %s: save failed: %v", id, err)
			failed++
			continue
		}
		updated++
	}

	log.Printf("Done: updated=%d failed=%d", updated, failed)
}
