package extract

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/david/tender-radar/internal/models"
)

var (
	sec5Start = regexp.MustCompile(`(?is)\n5\s+Pirkimo\s+dalis`)
	sec5End   = regexp.MustCompile(`(?is)\n6\s+Rezultatai`)

	// Each lot's metadata block opens with its technical identifier header.
	lotMetaHeader = regexp.MustCompile(`(?i)5\.1\s+Technin[ėe]s\s+ID\s+dalies:\s*(LOT[-\s]?0*\d+)`)

	lotTitleField = pat("lot_title",
		`(?i)\bPavadinimas:[ \t]*(.+)`,
	)
	lotContractObjectField = pat("lot_contract_object",
		`(?i)Sutarties\s+objektas:[ \t]*(.+)`,
	)
	lotCPVField = pat("lot_cpv",
		`(?i)Pagrindinis\s+klasifikacijos\s+kodas\s*\(cpv\)\s*:\s*([0-9][^\n]*)`,
	)
	lotNUTSField = pat("lot_nuts",
		`(?i)\(?NUTS\)?:[ \t]*(.+)`,
	)
	lotCountryField = pat("lot_country",
		`(?i)[ŠS]alis:[ \t]*(.+)`,
	)
	lotGreenField = pat("lot_green_criteria",
		`(?i)[ŽZ]aliasis\s+vie[šs]asis\s+pirkimas:?\s*kriterijai:[ \t]*(.+)`,
	)

	lotValidityPattern = regexp.MustCompile(`(?i)Galiojimas:\s*(\d+)\s*M[ėe]n`)

	lotDescLabel = regexp.MustCompile(`(?i)\bApra[šs]ymas:[ \t]*`)

	// A lot description runs until the next labeled field, sub-header or
	// numbered section. Line-anchored so descriptions cannot swallow the
	// fields that follow them.
	lotDescTerminator = regexp.MustCompile(`(?im)^[ \t]*(?:\d+(?:\.\d+)+\s+\p{L}|\d+\s+\p{Lu}|Sutarties\s+objektas:|Pagrindinis\s+klasifikacijos|\(?NUTS\)?:|[ŠS]alis:|Galiojimas:|Bendra\s+informacija|Strategin|Skyrimo\s+kriterijai|[ŽZ]aliasis)`)

	generalInfoStart = regexp.MustCompile(`(?is)Bendra\s+informacija`)
	strategicStart   = regexp.MustCompile(`(?is)Strateginis\s+vie[šs]asis\s+pirkimas|Strateginio\s+vie[šs]ojo\s+pirkimo`)
	lotSubHeaderEnd  = regexp.MustCompile(`(?is)\n\s*5\.1\.\d+\s`)

	strategicGoalField = pat("strategic_goal",
		`(?i)Strateginio\s+vie[šs]ojo\s+pirkimo\s+tikslas:[ \t]*(.+)`,
		`(?i)\bTikslas:[ \t]*(.+)`,
	)

	// EU-funding polarity table. Negative phrasings are tried first because
	// "nefinansuojamas" contains "finansuojamas". Unmatched phrasings leave
	// the flag absent rather than guessing.
	euFundingPolarity = []struct {
		re    *regexp.Regexp
		value bool
	}{
		{regexp.MustCompile(`(?i)nefinansuojam\w*\s+(?:i[šs]\s+)?ES\s+l[ėe][šs]\w*`), false},
		{regexp.MustCompile(`(?i)ES\s+l[ėe][šs]os:\s*ne\b`), false},
		{regexp.MustCompile(`(?i)finansuojam\w*\s+(?:i[šs]\s+)?ES\s+l[ėe][šs]\w*`), true},
		{regexp.MustCompile(`(?i)ES\s+l[ėe][šs]os:\s*taip\b`), true},
	}

	gpaLabelPattern = regexp.MustCompile(`(?i)Pirkimui\s+taikoma\s+SVP:[ \t]*([^\n]+)`)
	gpaPolarity     = []struct {
		re    *regexp.Regexp
		value bool
	}{
		{regexp.MustCompile(`(?i)Pirkimui\s+netaikoma\s+SVP`), false},
		{regexp.MustCompile(`(?i)Pirkimui\s+taikoma\s+SVP`), true},
	}
)

// metadataPass walks every lot header in the Section 5 span and returns one
// partially filled Lot per canonical identifier. A failure inside one lot
// block is contained to that lot.
func metadataPass(sec5, noticeID string) map[string]*models.Lot {
	lots := make(map[string]*models.Lot)
	if sec5 == "" {
		return lots
	}

	headers := lotMetaHeader.FindAllStringSubmatchIndex(sec5, -1)
	for i, h := range headers {
		token := sec5[h[2]:h[3]]
		lotID, ok := CanonicalLotID(token)
		if !ok {
			continue
		}

		start := h[1]
		end := len(sec5)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		block := sec5[start:end]

		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("notice %s: lot %s metadata parse failed: %v", noticeID, lotID, r)
				}
			}()
			lot := lots[lotID]
			if lot == nil {
				lot = &models.Lot{}
				lots[lotID] = lot
			}
			parseLotMetadata(block, lot)
		}()
	}
	return lots
}

func parseLotMetadata(block string, lot *models.Lot) {
	if v, ok := lotTitleField.firstMatch(block); ok {
		lot.Title = v
	}
	if v := extractLotDescription(block); v != "" {
		lot.Description = v
	}
	if v, ok := lotContractObjectField.firstMatch(block); ok {
		lot.ContractObject = v
	}
	if v, ok := lotCPVField.firstMatch(block); ok {
		lot.CPV = v
	}
	if v, ok := lotNUTSField.firstMatch(block); ok {
		lot.NUTS = v
	}
	if v, ok := lotCountryField.firstMatch(block); ok {
		lot.Country = v
	}
	if v, ok := lotGreenField.firstMatch(block); ok {
		lot.GreenCriteria = v
	}
	if m := lotValidityPattern.FindStringSubmatch(block); m != nil {
		if months, err := strconv.Atoi(m[1]); err == nil {
			lot.ValidityMonths = &months
		}
	}

	if gi := parseGeneralInfo(block); gi != nil {
		lot.GeneralInfo = gi
	}
	if sp := parseStrategic(block); sp != nil {
		lot.Strategic = sp
		lot.StrategicGoal = sp.Goal
	}
	if ac := parseAwardCriteria(block); ac != nil {
		lot.Criteria = ac
	}
}

// extractLotDescription captures the multi-line description bounded at the
// next known sub-header instead of greedily matching the rest of the block.
func extractLotDescription(block string) string {
	loc := lotDescLabel.FindStringIndex(block)
	if loc == nil {
		return ""
	}
	rest := block[loc[1]:]

	// The label's own line always belongs to the description; terminator
	// scanning starts on the following line.
	firstLineEnd := strings.IndexByte(rest, '\n')
	if firstLineEnd < 0 {
		return normOneLine(rest)
	}
	tail := rest[firstLineEnd:]
	if t := lotDescTerminator.FindStringIndex(tail); t != nil {
		tail = tail[:t[0]]
	}
	return normOneLine(rest[:firstLineEnd] + tail)
}

func parseGeneralInfo(block string) *models.GeneralInfo {
	section := locate(block, generalInfoStart, lotSubHeaderEnd)
	if section == "" {
		return nil
	}

	gi := &models.GeneralInfo{}
	for _, line := range strings.Split(section, "\n")[1:] {
		if s := strings.TrimSpace(line); s != "" {
			gi.FirstLine = normOneLine(s)
			break
		}
	}

	for _, cand := range euFundingPolarity {
		if cand.re.MatchString(section) {
			v := cand.value
			gi.EUFunded = &v
			break
		}
	}

	if m := gpaLabelPattern.FindStringSubmatch(section); m != nil {
		v := ParseYesNo(m[1])
		gi.GPAApplies = &v
	} else {
		for _, cand := range gpaPolarity {
			if cand.re.MatchString(section) {
				v := cand.value
				gi.GPAApplies = &v
				break
			}
		}
	}

	if gi.FirstLine == "" && gi.EUFunded == nil && gi.GPAApplies == nil {
		return nil
	}
	return gi
}

// parseStrategic reads the strategic-procurement goal and its rationale. The
// rationale falls back in three tiers: an explicit description label, the
// paragraph following the goal line, then the first meaningful paragraph of
// the sub-section.
func parseStrategic(block string) *models.StrategicProcurement {
	section := locate(block, strategicStart, lotSubHeaderEnd)
	if section == "" {
		return nil
	}

	sp := &models.StrategicProcurement{}
	goalLineEnd := -1
	for _, re := range strategicGoalField.candidates {
		if m := re.FindStringSubmatchIndex(section); m != nil {
			sp.Goal = normOneLine(section[m[2]:m[3]])
			goalLineEnd = m[1]
			break
		}
	}

	if v, ok := pat("strategic_description", `(?i)\bApra[šs]ymas:[ \t]*(.+)`).firstMatch(section); ok && v != "" {
		sp.Description = v
	} else if goalLineEnd >= 0 {
		sp.Description = firstParagraph(section[goalLineEnd:])
	}
	if sp.Description == "" {
		sp.Description = firstParagraph(skipFirstLine(section))
	}

	if sp.Goal == "" && sp.Description == "" {
		return nil
	}
	return sp
}

// firstParagraph returns the first run of non-empty, non-label lines.
func firstParagraph(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		if looksLikeLabel(t) {
			if len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, t)
	}
	return normOneLine(strings.Join(lines, " "))
}

var labelLinePattern = regexp.MustCompile(`^[^:\n]{1,60}:(\s|$)`)

func looksLikeLabel(line string) bool {
	return labelLinePattern.MatchString(line)
}

func skipFirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return ""
}
