package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	currencyPattern = regexp.MustCompile(`(?i)(\bEUR\b|\bEURO\b|€)`)
	moneyJunk       = regexp.MustCompile(`[^0-9,\. ]`)

	lotTokenPattern = regexp.MustCompile(`(?i)\bLOT[-\s]?0*(\d+)\b`)

	percentPattern = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)?)\s*%?`)

	datePatterns = []struct {
		re    *regexp.Regexp
		year  int // submatch index of the year group
		month int
		day   int
	}{
		{regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`), 3, 2, 1},
		{regexp.MustCompile(`\b(\d{2})\.(\d{2})\.(\d{4})\b`), 3, 2, 1},
		{regexp.MustCompile(`\b(\d{4})\.(\d{2})\.(\d{2})\b`), 1, 2, 3},
		{regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`), 1, 2, 3},
	}
)

// ParseMoney extracts an amount and currency from a free-text value like
// "1 234,56 EUR". A single comma with no period is treated as the decimal
// separator. The amount is nil when nothing numeric remains after cleaning;
// currency is reported independently of amount validity.
func ParseMoney(s string) (*float64, string) {
	if strings.TrimSpace(s) == "" {
		return nil, ""
	}
	currency := ""
	if currencyPattern.MatchString(s) {
		currency = "EUR"
	}

	num := moneyJunk.ReplaceAllString(s, "")
	num = strings.ReplaceAll(num, " ", "")
	if strings.Count(num, ",") == 1 && !strings.Contains(num, ".") {
		num = strings.Replace(num, ",", ".", 1)
	}

	amount, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil, currency
	}
	return &amount, currency
}

// ParseDate recognizes DD/MM/YYYY, DD.MM.YYYY, YYYY.MM.DD and YYYY-MM-DD,
// in that order, and normalizes the first hit to YYYY-MM-DD. Bare years or
// other partial matches are never accepted; no match yields "".
func ParseDate(s string) string {
	if s == "" {
		return ""
	}
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[p.month])
		day, _ := strconv.Atoi(m[p.day])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		return fmt.Sprintf("%s-%s-%s", m[p.year], m[p.month], m[p.day])
	}
	return ""
}

// ParsePercent reads the first number in the value, tolerating a comma
// decimal separator and an optional % sign.
func ParsePercent(s string) *float64 {
	m := percentPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseYesNo maps a located label value to a boolean: anything starting with
// the affirmative token "taip" is true, every other non-empty value
// (including "ne") is false. Absence of the label is the caller's concern.
func ParseYesNo(s string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "taip")
}

// CanonicalLotID canonicalizes raw lot tokens ("LOT 3", "LOT-03", "LOT0003")
// to the zero-padded LOT-0003 form so both parsing passes address the same
// lot regardless of header formatting.
func CanonicalLotID(raw string) (string, bool) {
	m := lotTokenPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("LOT-%04d", n), true
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stripDiacritics decomposes and drops combining marks: "Rūšis" -> "Rusis".
func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Canonical label vocabulary for award-criterion fields.
const (
	labelType          = "type"
	labelName          = "name"
	labelDescription   = "description"
	labelCategory      = "category"
	labelMethod        = "method-description"
	labelJustification = "justification"
)

// criterionLabelPrefixes maps diacritic-stripped, lower-cased label prefixes
// onto the canonical vocabulary. Order matters: longer prefixes first so
// "metodo aprasymas" is not swallowed by "aprasym".
var criterionLabelPrefixes = []struct {
	prefix string
	label  string
}{
	{"metodo aprasym", labelMethod},
	{"skaiciavimo metod", labelMethod},
	{"rusis", labelType},
	{"pavadinimas", labelName},
	{"aprasym", labelDescription},
	{"kategorija", labelCategory},
	{"pagrind", labelJustification},
}

// CanonicalLabel folds a raw criterion label (diacritics, case, spacing)
// down to the fixed vocabulary. Unknown labels return "" so the weight
// detector can take over the line.
func CanonicalLabel(raw string) string {
	key := normOneLine(strings.ToLower(stripDiacritics(raw)))
	for _, cand := range criterionLabelPrefixes {
		if strings.HasPrefix(key, cand.prefix) {
			return cand.label
		}
	}
	return ""
}
