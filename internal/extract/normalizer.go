package extract

import (
	"regexp"
	"strings"
)

var (
	// spaceVariants maps the non-breaking/narrow/figure space code points PDF
	// extractors leak into text onto a plain space.
	spaceVariants = strings.NewReplacer(
		" ", " ", // NBSP
		" ", " ", // narrow no-break space
		" ", " ", // figure space
	)

	// Zero-width space, ZWNJ/ZWJ, and the BOM.
	zeroWidthPattern = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}]`)

	// Soft hyphen plus every dash glyph observed in the notices, unified to "-".
	dashPattern = regexp.MustCompile("[­‐‑‒–—−]")

	urlPattern = regexp.MustCompile(`https?://\S+`)

	// "Page 3/12", "Page 3 of 12" and the Lithuanian "3 psl. iš 12" counters
	// that PDF extraction injects at page boundaries.
	pageCounterPattern = regexp.MustCompile(`(?i)\b(?:Page\s*\d+\s*(?:/|of)\s*\d+|\d+\s*psl\.?\s*(?:iš|/)\s*\d+)\b`)

	horizontalWS  = regexp.MustCompile(`[ \t]{2,}`)
	blankLineRuns = regexp.MustCompile(`\n[ \t]*(?:\n[ \t]*)+`)

	oneLineWS = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw notice text. Idempotent: feeding its own output
// back in is a no-op.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = spaceVariants.Replace(s)
	s = zeroWidthPattern.ReplaceAllString(s, "")
	s = dashPattern.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = urlPattern.ReplaceAllString(s, "")
	s = pageCounterPattern.ReplaceAllString(s, "")
	s = horizontalWS.ReplaceAllString(s, " ")
	s = blankLineRuns.ReplaceAllString(s, "\n")
	return s
}

// normOneLine flattens a matched value to a single space-collapsed line, for
// fields that must never carry embedded line breaks into the output.
func normOneLine(s string) string {
	s = spaceVariants.Replace(s)
	return strings.TrimSpace(oneLineWS.ReplaceAllString(s, " "))
}
