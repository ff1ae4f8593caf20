package extract

import (
	"regexp"
	"strings"

	"github.com/david/tender-radar/internal/models"
)

// Scalar field pattern table. Each entry lists the candidate label patterns
// for one top-level notice field, highest priority first. All patterns are
// diacritic-tolerant because OCR/extraction quality varies across years.
var (
	buyerSectionStart = regexp.MustCompile(`(?is)\n1\s+Pirk[ėe]jas`)
	buyerSectionEnd   = regexp.MustCompile(`(?is)\n2\s+`)

	buyerNameField = pat("buyer_name",
		`(?i)Oficialus\s+pavadinimas:[ \t]*(.+)`,
	)
	methodField = pat("procurement_method",
		`(?i)Pirkimo\s+b[ūu]das:[ \t]*(.+)`,
	)
	acceleratedField = pat("procedure_accelerated",
		`(?i)Proced[ūu]ra\s+pagreitinta:[ \t]*(.+)`,
	)
	descriptionField = pat("description",
		`(?i)\bApra[šs]ymas:[ \t]*(.+)`,
	)

	totalValueMarker = regexp.MustCompile(`(?i)Vis[ųu]\s+[šs]iame\s+prane[šs]ime\s+suteikt[ųu]\s+sutar[čc]i[ųu]\s+vert[ėe]\s*[:\-]?`)
	totalValueChunk  = regexp.MustCompile(`(?i)([0-9](?:[0-9 .,]*[0-9])?(?:[.,][0-9]{1,2})?)\s*(EUR|Euro|€)?`)
)

// totalValueWindow bounds how far past the marker the amount may appear.
const totalValueWindow = 200

// extractBuyerName reads the first "Oficialus pavadinimas:" inside the buyer
// section only; the same label recurs later for winners.
func extractBuyerName(text string) *string {
	section := locate(text, buyerSectionStart, buyerSectionEnd)
	if section == "" {
		return nil
	}
	if v, ok := buyerNameField.firstMatch(section); ok && v != "" {
		return &v
	}
	return nil
}

// extractProcedure returns the procurement method free text and the
// acceleration flag. The flag is true only when the value starts with the
// affirmative token; any other located value maps to false, absence to nil.
func extractProcedure(text string) (*string, *bool) {
	var method *string
	var accelerated *bool

	if v, ok := methodField.firstMatch(text); ok && v != "" {
		method = &v
	}
	if v, ok := acceleratedField.firstMatch(text); ok {
		b := ParseYesNo(v)
		accelerated = &b
	}
	return method, accelerated
}

func extractDescription(text string) *string {
	if v, ok := descriptionField.firstMatch(text); ok && v != "" {
		return &v
	}
	return nil
}

// extractTotalValue finds the "Visų šiame pranešime suteiktų sutarčių vertė"
// marker, flattens a short window after it and parses the first numeric
// chunk. When no currency token sits next to the number but one appears
// anywhere in the window, the currency defaults to EUR.
func extractTotalValue(text string) *models.Money {
	loc := totalValueMarker.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	window := normOneLine(runeWindow(text[loc[1]:], totalValueWindow))
	m := totalValueChunk.FindStringSubmatch(window)
	if m == nil {
		return nil
	}

	raw := m[1]
	if m[2] != "" {
		raw += " " + m[2]
	}
	amount, currency := ParseMoney(raw)
	if amount == nil {
		return nil
	}
	if currency == "" && currencyPattern.MatchString(window) {
		currency = "EUR"
	}
	return &models.Money{Amount: amount, Currency: currency}
}

// runeWindow returns at most n runes from the start of s without splitting a
// multi-byte sequence.
func runeWindow(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// digitsOnly strips everything but ASCII digits.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
