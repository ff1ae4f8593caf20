package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	rpdf "rsc.io/pdf"
)

// DocumentText turns a fetched document into plain text. PDF bodies go
// through the PDF reader, HTML through goquery, anything else is taken
// verbatim.
func DocumentText(doc *FetchedDocument) (string, error) {
	body, err := io.ReadAll(doc.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read document body: %w", err)
	}

	ct := strings.ToLower(doc.ContentType)
	switch {
	case strings.Contains(ct, "pdf") || bytes.HasPrefix(body, []byte("%PDF")):
		return extractPDFText(body)
	case strings.Contains(ct, "html"):
		return HTMLToText(string(body)), nil
	default:
		return string(body), nil
	}
}

// extractPDFText reads every page and rebuilds lines from the text
// fragments. The upstream parser panics on malformed files, so the panic
// is converted into an error here. A vertical position change between
// fragments becomes a line break; label lines in the notices depend on it.
func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		lastY := 0.0
		for i, fragment := range page.Content().Text {
			if i == 0 {
				builder.WriteString(fragment.S)
				lastY = fragment.Y
				continue
			}
			if sameLine(fragment.Y, lastY) {
				builder.WriteString(" ")
			} else {
				builder.WriteString("\n")
				lastY = fragment.Y
			}
			builder.WriteString(fragment.S)
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func sameLine(y, lastY float64) bool {
	d := y - lastY
	if d < 0 {
		d = -d
	}
	return d < 2.0
}
