package ingest

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/david/tender-radar/internal/db"
	"github.com/david/tender-radar/internal/extract"
	"github.com/david/tender-radar/internal/models"
)

// Pipeline drives a batch: pull pending notices from the store, fetch the
// published document, run the extraction engine and write the result back.
type Pipeline struct {
	DB      *pgxpool.Pool
	Store   *db.Store
	Fetcher Fetcher
	Engine  *extract.Engine
}

func NewPipeline(pool *pgxpool.Pool, fetcher Fetcher) *Pipeline {
	return &Pipeline{
		DB:      pool,
		Store:   db.NewStore(pool),
		Fetcher: fetcher,
		Engine:  extract.New(),
	}
}

// DiscoverSource crawls one configured source and stages everything it
// finds. Already known notices only get their stub fields refreshed.
func (p *Pipeline) DiscoverSource(ctx context.Context, source SourceConfig) (int, error) {
	found, err := NewDiscoverer(source).Discover(ctx)
	saved := 0
	for _, d := range found {
		n := models.Notice{
			NoticeID:    d.NoticeID,
			Title:       d.Title,
			NoticeType:  d.NoticeType,
			BuyerName:   d.BuyerName,
			PublishDate: d.PublishDate,
			PDFURL:      d.PDFURL,
		}
		if saveErr := p.Store.SaveDiscovered(ctx, n, d.SourceURL); saveErr != nil {
			log.Printf("discover %s: save %s failed: %v", source.ID, d.NoticeID, saveErr)
			continue
		}
		saved++
	}
	return saved, err
}

// ProcessBatch runs extraction over up to limit staged notices and records
// the run. With force set, notices that already have a terminal status are
// processed again.
func (p *Pipeline) ProcessBatch(ctx context.Context, limit int, force bool, triggeredBy string) (*BatchStats, error) {
	runID, err := p.Store.StartRun(ctx, triggeredBy)
	if err != nil {
		return nil, err
	}

	stats := &BatchStats{}
	failures := map[string]string{}
	runStatus := "completed"

	defer func() {
		finishErr := p.Store.FinishRun(context.Background(), runID, runStatus,
			stats.Total, stats.OK, stats.EmptyText, stats.DownloadFailed, stats.Exceptions, failures)
		if finishErr != nil {
			log.Printf("run %s: failed to record result: %v", runID, finishErr)
		}
	}()

	work, err := p.Store.GetWork(ctx, limit, force)
	if err != nil {
		runStatus = "failed"
		return stats, err
	}
	log.Printf("run %s: %d notices to process", runID, len(work))

	for i, notice := range work {
		if i > 0 {
			// Polite spacing between document fetches.
			jitter := time.Duration(200+rand.Intn(400)) * time.Millisecond
			select {
			case <-ctx.Done():
				runStatus = "failed"
				return stats, ctx.Err()
			case <-time.After(jitter):
			}
		}

		status, procErr := p.processNotice(ctx, notice)
		stats.Total++
		switch status {
		case StatusOK:
			stats.OK++
		case StatusEmptyText:
			stats.EmptyText++
		case StatusDownloadFailed:
			stats.DownloadFailed++
		default:
			stats.Exceptions++
		}
		if procErr != nil {
			failures[notice.NoticeID] = procErr.Error()
			log.Printf("notice %s: %s: %v", notice.NoticeID, status, procErr)
		}
	}

	log.Printf("run %s: done, ok=%d empty_text=%d download_failed=%d exceptions=%d",
		runID, stats.OK, stats.EmptyText, stats.DownloadFailed, stats.Exceptions)
	return stats, nil
}

func (p *Pipeline) processNotice(ctx context.Context, notice models.Notice) (status string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			status = StatusException
			err = fmt.Errorf("panic: %v", recovered)
			if markErr := p.Store.MarkFailed(ctx, notice.NoticeID, StatusException, err.Error()); markErr != nil {
				log.Printf("notice %s: failed to record panic status: %v", notice.NoticeID, markErr)
			}
		}
	}()

	if notice.PDFURL == "" {
		err = fmt.Errorf("no document URL")
		_ = p.Store.MarkFailed(ctx, notice.NoticeID, StatusDownloadFailed, err.Error())
		return StatusDownloadFailed, err
	}

	text, fetchErr := p.fetchText(ctx, notice.PDFURL)
	if fetchErr != nil {
		_ = p.Store.MarkFailed(ctx, notice.NoticeID, StatusDownloadFailed, fetchErr.Error())
		return StatusDownloadFailed, fetchErr
	}

	text = toValidUTF8(text)
	if strings.TrimSpace(text) == "" {
		err = fmt.Errorf("document yielded no text")
		_ = p.Store.MarkFailed(ctx, notice.NoticeID, StatusEmptyText, err.Error())
		return StatusEmptyText, err
	}

	rec := p.Engine.Extract(text, notice.NoticeID)
	if markErr := p.Store.MarkExtracted(ctx, notice.NoticeID, rec, text); markErr != nil {
		_ = p.Store.MarkFailed(ctx, notice.NoticeID, StatusException, markErr.Error())
		return StatusException, markErr
	}

	return StatusOK, nil
}

// fetchText downloads a notice document and returns its plain text. An HTML
// landing page is followed once to the PDF it links to.
func (p *Pipeline) fetchText(ctx context.Context, docURL string) (string, error) {
	doc, err := p.Fetcher.Fetch(ctx, docURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", docURL, err)
	}

	if strings.Contains(strings.ToLower(doc.ContentType), "html") {
		page, parseErr := ParseNoticePage(doc.Body, doc.URL)
		doc.Body.Close()
		if parseErr != nil {
			return "", parseErr
		}
		if page.PDFURL == "" {
			return page.Description, nil
		}

		doc, err = p.Fetcher.Fetch(ctx, page.PDFURL)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", page.PDFURL, err)
		}
	}
	defer doc.Body.Close()

	return DocumentText(doc)
}

func toValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
