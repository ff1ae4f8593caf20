package extract

import (
	"regexp"
)

// Locate returns the substring of text running from the first match of the
// start pattern to the start of the first end-pattern match found after it,
// or to the end of text when the end pattern never occurs. Matching is
// case-insensitive and spans line breaks, so headers broken across lines are
// still found. Absence of the start marker yields "".
func Locate(text, startPattern, endPattern string) string {
	start, err := regexp.Compile("(?is)" + startPattern)
	if err != nil {
		return ""
	}
	end, err := regexp.Compile("(?is)" + endPattern)
	if err != nil {
		return ""
	}
	return locate(text, start, end)
}

func locate(text string, start, end *regexp.Regexp) string {
	sm := start.FindStringIndex(text)
	if sm == nil {
		return ""
	}
	rest := text[sm[1]:]
	em := end.FindStringIndex(rest)
	if em == nil {
		return text[sm[0]:]
	}
	return text[sm[0] : sm[1]+em[0]]
}

// fieldPatterns is an ordered list of candidate patterns for one canonical
// field. Candidates are tried in order; the first whose first capture group
// matches wins. Keeping the priority explicit in a table (instead of implied
// by control flow) makes each candidate independently testable.
type fieldPatterns struct {
	field      string
	candidates []*regexp.Regexp
}

// firstMatch runs the candidates in priority order and returns the first
// captured value, flattened to one line.
func (fp fieldPatterns) firstMatch(text string) (string, bool) {
	for _, re := range fp.candidates {
		if m := re.FindStringSubmatch(text); m != nil {
			return normOneLine(m[1]), true
		}
	}
	return "", false
}

func pat(field string, exprs ...string) fieldPatterns {
	fp := fieldPatterns{field: field}
	for _, e := range exprs {
		fp.candidates = append(fp.candidates, regexp.MustCompile(e))
	}
	return fp
}
