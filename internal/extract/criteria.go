package extract

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/david/tender-radar/internal/models"
)

var (
	criteriaStart = regexp.MustCompile(`(?is)Skyrimo\s+kriterijai`)
	criteriaEnd   = regexp.MustCompile(`(?is)\n\s*\d+(?:\.\d+)+\s+\p{L}`)

	criterionSeparator = regexp.MustCompile(`(?i)\bKriterijus:\s*`)

	labelValueLine = regexp.MustCompile(`(?m)^[ \t]*([^:\n]{1,60}):[ \t]*(.*)$`)

	// Weight detection priority chain.
	weightCanonical = regexp.MustCompile(`(?i)\bSvoris\s*(?:\([^)]{0,60}\))?\s*:?\s*([0-9]+(?:[.,][0-9]+)?)`)
	weightKeyword   = regexp.MustCompile(`(?im)^.*(?:svor|procent|skai[čc]i)\w*.*?([0-9]+(?:[.,][0-9]+)?).*$`)
	lastInteger     = regexp.MustCompile(`([0-9]+)(?:[^0-9]*)$`)

	criterionTypePrice   = regexp.MustCompile(`(?i)kain`)
	criterionTypeQuality = regexp.MustCompile(`(?i)kokyb`)
)

// parseAwardCriteria isolates the "Skyrimo kriterijai" sub-section of one lot
// block and parses it into a summary-plus-items structure. Returns nil when
// the sub-section is absent or yields nothing.
func parseAwardCriteria(block string) *models.AwardCriteria {
	section := locate(block, criteriaStart, criteriaEnd)
	if section == "" {
		return nil
	}

	parts := criterionSeparator.Split(section, -1)
	blocks := parts
	if len(parts) > 1 {
		// Text before the first "Kriterijus:" is the sub-section header.
		blocks = parts[1:]
	}

	out := &models.AwardCriteria{}
	for _, cb := range blocks {
		crit, ok := parseCriterion(cb)
		if !ok {
			continue
		}
		out.Criteria = append(out.Criteria, crit)

		key := summaryKey(crit.Type)
		if key != "" && crit.Weight != nil {
			if out.Summary == nil {
				out.Summary = make(map[string]float64)
			}
			out.Summary[key] = *crit.Weight
		}
	}

	if len(out.Criteria) == 0 {
		return nil
	}
	return out
}

// parseCriterion extracts labeled lines plus a weight from one criterion
// block. A block where nothing was found reports ok=false and is dropped.
func parseCriterion(block string) (models.Criterion, bool) {
	var crit models.Criterion
	found := false

	for _, m := range labelValueLine.FindAllStringSubmatch(block, -1) {
		value := normOneLine(m[2])
		switch CanonicalLabel(m[1]) {
		case labelType:
			crit.Type = value
		case labelName:
			crit.Name = value
		case labelDescription:
			crit.Description = value
		case labelCategory:
			crit.CategoryLine = normOneLine(m[1] + ": " + m[2])
		case labelMethod:
			crit.Method = value
		case labelJustification:
			crit.Justification = value
		default:
			continue
		}
		found = true
	}

	if w := detectWeight(block); w != nil {
		crit.Weight = w
		found = true
	}

	return crit, found
}

// detectWeight tries, in priority order: the canonical "Svoris: N" phrasing,
// any weight/percentage/count keyword line carrying a number, and as a last
// resort the final integer token anywhere in the block. The last tier is a
// known-weak heuristic, so its use is logged.
func detectWeight(block string) *float64 {
	if m := weightCanonical.FindStringSubmatch(block); m != nil {
		return parseWeightNumber(m[1])
	}
	if m := weightKeyword.FindStringSubmatch(block); m != nil {
		return parseWeightNumber(m[1])
	}
	if m := lastInteger.FindStringSubmatch(block); m != nil {
		if w := parseWeightNumber(m[1]); w != nil {
			log.Printf("criteria: weight %v taken from trailing integer fallback", *w)
			return w
		}
	}
	return nil
}

func parseWeightNumber(s string) *float64 {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return &v
}

// summaryKey maps a criterion's raw type onto the summary vocabulary. The
// match is diacritic-insensitive so "Kokybė" and "Kokybe" land together.
func summaryKey(rawType string) string {
	t := stripDiacritics(rawType)
	switch {
	case criterionTypePrice.MatchString(t):
		return "price"
	case criterionTypeQuality.MatchString(t):
		return "quality"
	default:
		return ""
	}
}
