package ingest

import (
	"context"
	"io"
	"time"
)

// Extraction outcome for one notice, persisted on the staging row.
const (
	StatusOK             = "ok"
	StatusEmptyText      = "empty_text"
	StatusDownloadFailed = "download_failed"
	StatusException      = "exception"
	StatusPending        = "pending"
)

// DiscoveredNotice is the untrusted listing-page view of one notice, before
// its PDF has been fetched or parsed.
type DiscoveredNotice struct {
	NoticeID    string
	Title       string
	NoticeType  string
	BuyerName   string
	PublishDate *time.Time
	SourceURL   string
	PDFURL      string
}

// FetchedDocument is the raw result of one fetch.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// BatchStats summarizes one extraction batch.
type BatchStats struct {
	Total          int
	OK             int
	EmptyText      int
	DownloadFailed int
	Exceptions     int
}

func (s BatchStats) Failed() int {
	return s.DownloadFailed + s.Exceptions
}
