package ingest

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/david/tender-radar/internal/extract"
)

// Discoverer walks a source's listing pages with colly and collects notice
// stubs. It does not fetch the notice documents themselves; that is the
// pipeline's job.
type Discoverer struct {
	source SourceConfig
}

func NewDiscoverer(source SourceConfig) *Discoverer {
	return &Discoverer{source: source}
}

// Discover crawls the source's seed URLs, following pagination up to
// MaxPages, and returns the notices found. Partial results are returned
// alongside the first crawl error.
func (d *Discoverer) Discover(ctx context.Context) ([]DiscoveredNotice, error) {
	cfg := d.source.Fetch
	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
		colly.MaxDepth(0),
		colly.Async(false),
	)
	c.SetRequestTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	delay := time.Second
	if cfg.RateLimitRPS > 0 {
		delay = time.Duration(float64(time.Second) / cfg.RateLimitRPS)
	}
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       delay,
		RandomDelay: delay / 2,
		Parallelism: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure rate limit: %w", err)
	}

	c.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		default:
		}
		r.Headers.Set("Accept-Language", cfg.AcceptLanguage)
	})

	var (
		notices  []DiscoveredNotice
		seen     = map[string]bool{}
		pages    int
		crawlErr error
	)

	sel := d.source.Selectors
	c.OnHTML(sel.Container, func(e *colly.HTMLElement) {
		n := d.parseListing(e)
		if n == nil || seen[n.NoticeID] {
			return
		}
		seen[n.NoticeID] = true
		notices = append(notices, *n)
	})

	if d.source.Pagination.Next != "" {
		c.OnHTML(d.source.Pagination.Next, func(e *colly.HTMLElement) {
			if d.source.MaxPages > 0 && pages >= d.source.MaxPages {
				return
			}
			next := e.Request.AbsoluteURL(e.Attr("href"))
			if next == "" {
				return
			}
			pages++
			if err := e.Request.Visit(next); err != nil && crawlErr == nil {
				crawlErr = err
			}
		})
	}

	c.OnError(func(r *colly.Response, err error) {
		retries, _ := r.Request.Ctx.GetAny("retries").(int)
		if retries < cfg.MaxRetries && retryableStatus(r.StatusCode) {
			r.Request.Ctx.Put("retries", retries+1)
			time.Sleep(time.Duration(1<<uint(retries)) * time.Second)
			_ = r.Request.Retry()
			return
		}
		if crawlErr == nil {
			crawlErr = fmt.Errorf("fetch %s: %w", r.Request.URL, err)
		}
	})

	for _, seed := range d.source.Seeds {
		if err := c.Visit(seed); err != nil && crawlErr == nil {
			crawlErr = fmt.Errorf("visit %s: %w", seed, err)
		}
	}
	c.Wait()

	log.Printf("discover %s: %d notices from %d seeds", d.source.ID, len(notices), len(d.source.Seeds))
	return notices, crawlErr
}

func (d *Discoverer) parseListing(e *colly.HTMLElement) *DiscoveredNotice {
	sel := d.source.Selectors
	link := e.DOM.Find(sel.Link).First()
	href, _ := link.Attr("href")
	if href == "" {
		return nil
	}
	sourceURL := e.Request.AbsoluteURL(href)

	n := &DiscoveredNotice{
		NoticeID:   noticeIDFromURL(sourceURL),
		Title:      textOf(e.DOM, sel.Title),
		NoticeType: textOf(e.DOM, sel.Type),
		BuyerName:  textOf(e.DOM, sel.Buyer),
		SourceURL:  sourceURL,
	}
	if n.NoticeID == "" || n.Title == "" {
		return nil
	}
	if raw := textOf(e.DOM, sel.Date); raw != "" {
		if iso := extract.ParseDate(raw); iso != "" {
			if t, err := time.Parse("2006-01-02", iso); err == nil {
				n.PublishDate = &t
			}
		}
	}
	return n
}

func textOf(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return normalizeSpace(s.Find(selector).First().Text())
}

// noticeIDFromURL derives a stable identifier from the notice URL: an
// explicit query parameter when present, otherwise the last path segment.
func noticeIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, key := range []string{"noticeId", "notice_id", "id"} {
		if v := u.Query().Get(key); v != "" {
			return v
		}
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
