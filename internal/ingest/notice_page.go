package ingest

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// NoticePage is what a notice detail page yields: the document links to
// the published PDF and sometimes carries an inline description.
type NoticePage struct {
	PDFURL      string
	OtherPDFs   []string
	Description string
}

// ParseNoticePage scans a notice detail page for PDF document links and an
// inline description. The first PDF link wins; the rest are kept as
// fallbacks for the pipeline.
func ParseNoticePage(body io.Reader, pageURL string) (*NoticePage, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notice page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	var pdfs []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !looksLikePDFLink(href, normalizeSpace(a.Text())) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		pdfs = appendUnique(pdfs, base.ResolveReference(ref).String())
	})

	page := &NoticePage{}
	if len(pdfs) > 0 {
		page.PDFURL = pdfs[0]
		page.OtherPDFs = pdfs[1:]
	}

	for _, sel := range []string{"div.notice-description", "div.description", "article"} {
		if html, err := doc.Find(sel).First().Html(); err == nil && html != "" {
			page.Description = HTMLToText(sanitizeHTML(html))
			break
		}
	}

	return page, nil
}

func looksLikePDFLink(href, label string) bool {
	h := strings.ToLower(href)
	if strings.HasPrefix(h, "javascript:") || strings.HasPrefix(h, "mailto:") {
		return false
	}
	if strings.HasSuffix(strings.SplitN(h, "?", 2)[0], ".pdf") {
		return true
	}
	if strings.Contains(h, "format=pdf") || strings.Contains(h, "/pdf/") {
		return true
	}
	l := strings.ToLower(label)
	return strings.Contains(l, "pdf") || strings.Contains(l, "atsisiųsti")
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"table": true, "tr": true, "td": true, "th": true, "section": true,
	"article": true, "blockquote": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true,
}

// HTMLToText converts HTML to plain text. Block elements separate their
// text so adjacent paragraphs do not run together, then whitespace is
// collapsed.
func HTMLToText(src string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return src
	}
	var b strings.Builder
	for _, n := range doc.Selection.Nodes {
		writeNodeText(&b, n)
	}
	return normalizeSpace(b.String())
}

func writeNodeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNodeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

// sanitizeHTML uses bluemonday to strip unsafe tags and attributes from HTML.
func sanitizeHTML(s string) string {
	p := bluemonday.UGCPolicy()
	return p.Sanitize(s)
}
