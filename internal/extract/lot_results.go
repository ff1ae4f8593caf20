package extract

import (
	"log"
	"regexp"
	"strconv"

	"github.com/david/tender-radar/internal/models"
)

var (
	sec6Start = regexp.MustCompile(`(?is)\n6\s+Rezultatai`)
	sec6End   = regexp.MustCompile(`(?is)\n(?:7|8)\s+\p{L}|Skelbimo\s+informacija`)

	// Each lot's results block opens with the lot-reference header.
	lotResultHeader = regexp.MustCompile(`(?i)pirkimo\s+dalies\s+ID:\s*(LOT[-\s]?0*\d+)`)

	// The full "no winner was selected" sentence, kept verbatim as the message.
	noWinnerPattern = regexp.MustCompile(`(?i)(Nepasirinktas?\s+n[ėe]\s+vienas\s+laim[ėe]tojas[^\n]*)`)

	reasonLabel = regexp.MustCompile(`(?i)Prie[žz]ast\w*[,\s]*d[ėe]l\s+kurios\s+laim[ėe]tojas\s+nebuvo\s+pasirinktas:\s*`)

	// A reason runs until whichever of these comes first.
	reasonTerminator = regexp.MustCompile(`(?i)\bLaim[ėe]toja(?:s|i)\b\s*:|pirkimo\s+dalies\s+ID:|\n\s*6\s+Rezultatai|Gaut[ųu]\s+pasi[ūu]lym|Statistin[ėe]\s+informacija|\n\s*\d+(?:\.\d+)*\s+\p{Lu}`)

	// Bid count, allowing a short intervening clause between the label's two
	// halves ("Gautų pasiūlymų ar dalyvavimo prašymų skaičius: 4").
	bidCountPattern = regexp.MustCompile(`(?is)Gaut[ųu]\s+pasi[ūu]lym[ųu].{0,120}?skai[čc]ius\s*:\s*([0-9]+)`)

	winnerSeparator = regexp.MustCompile(`(?i)\bLaim[ėe]toja(?:s|i)\b\s*:\s*`)
)

// reasonPrefix is prepended to the reason when building the combined
// human-readable result line, mirroring the notice template's own wording.
const reasonPrefix = "Priežastis, dėl kurios laimėtojas nebuvo pasirinktas: "

// resultsPass walks every lot-reference header in the Section 6 span and
// returns one partial Lot per canonical identifier, carrying result status,
// statistics and winner records. A failure inside one block is contained to
// that lot.
func resultsPass(sec6, noticeID string) map[string]*models.Lot {
	lots := make(map[string]*models.Lot)
	if sec6 == "" {
		return lots
	}

	headers := lotResultHeader.FindAllStringSubmatchIndex(sec6, -1)
	for i, h := range headers {
		token := sec6[h[2]:h[3]]
		lotID, ok := CanonicalLotID(token)
		if !ok {
			continue
		}

		start := h[1]
		end := len(sec6)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		block := sec6[start:end]

		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("notice %s: lot %s results parse failed: %v", noticeID, lotID, r)
				}
			}()
			lot := lots[lotID]
			if lot == nil {
				lot = &models.Lot{}
				lots[lotID] = lot
			}
			parseLotResults(block, lot)
		}()
	}
	return lots
}

func parseLotResults(block string, lot *models.Lot) {
	result := &models.LotResult{}

	if m := noWinnerPattern.FindStringSubmatch(block); m != nil {
		result.Status = models.LotNotAwarded
		result.Message = normOneLine(m[1])
		lot.NotAwarded = true
	}

	if reason := extractReason(block); reason != "" {
		result.Reason = reason
		lot.NotAwardedReason = reason
	}

	if m := bidCountPattern.FindStringSubmatch(block); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.Stats = &models.ResultStats{BidsReceived: &n}
			lot.Stats = &models.ResultStats{BidsReceived: &n}
		}
	}

	if result.Message != "" || result.Reason != "" {
		text := result.Message
		if result.Reason != "" {
			if text != "" {
				text += " "
			}
			text += reasonPrefix + result.Reason
		}
		lot.ResultText = text
	}

	// Winner parsing is suppressed for explicitly unawarded lots.
	if !lot.NotAwarded {
		parts := winnerSeparator.Split(block, -1)
		for _, wb := range parts[1:] {
			if w := parseWinnerBlock(wb); w != nil {
				lot.Winners = append(lot.Winners, *w)
			}
		}
		if len(lot.Winners) > 0 {
			result.Status = models.LotAwarded
		}
	}

	if result.Status != "" || result.Message != "" || result.Reason != "" || result.Stats != nil {
		lot.Result = result
	}
}

// extractReason captures the text after the reason label, bounded at the
// earliest of the known terminators (winner block, next lot header, results
// header, bid-count line, statistics header, numbered heading).
func extractReason(block string) string {
	loc := reasonLabel.FindStringIndex(block)
	if loc == nil {
		return ""
	}
	rest := block[loc[1]:]
	if t := reasonTerminator.FindStringIndex(rest); t != nil {
		rest = rest[:t[0]]
	}
	return normOneLine(rest)
}
