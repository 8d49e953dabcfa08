package submission

import (
	"regexp"
	"strings"

	"contestcheck/contest"
	"contestcheck/normalize"
	"contestcheck/strutil"
)

var (
	summaryBlockRe = regexp.MustCompile(`(?is)<SUMMARYSHEET\b.*?</SUMMARYSHEET>`)
	logBlockRe     = regexp.MustCompile(`(?is)<LOGSHEET\b.*?</LOGSHEET>`)
	logOpenRe      = regexp.MustCompile(`(?i)^<LOGSHEET\b[^>]*>`)
	logCloseRe     = regexp.MustCompile(`(?i)</LOGSHEET>\s*$`)
	logAttrsRe     = regexp.MustCompile(`(?i)<LOGSHEET\b([^>]*)>`)
	scoreRe        = regexp.MustCompile(`(?is)<SCORE\b([^>]*)>(.*?)</SCORE>`)
)

// summaryTags are the child tags read from a SUMMARYSHEET block.
var summaryTags = []string{
	"CONTESTNAME", "CATEGORYCODE", "CATEGORYNAME", "CALLSIGN", "OPCALLSIGN",
	"ADDRESS", "OPPLACE", "COMMENTS", "TOTALSCORE",
}

var tagRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(summaryTags))
	for _, tag := range summaryTags {
		m[tag] = regexp.MustCompile(`(?is)<` + tag + `>(.*?)</` + tag + `>`)
	}
	return m
}()

// Blocks holds the two regions of a submission. Empty strings mean the
// region is missing.
type Blocks struct {
	Summary string
	Log     string
	LogType string
}

// Split finds the first SUMMARYSHEET and the first LOGSHEET region of text
// and reads the log's TYPE attribute.
func Split(text string) Blocks {
	t := cleanNewlines(text)
	var b Blocks
	b.Summary = summaryBlockRe.FindString(t)
	b.Log = logBlockRe.FindString(t)
	if b.Log != "" {
		if m := logAttrsRe.FindStringSubmatch(b.Log); m != nil {
			b.LogType = attr(m[1], "TYPE")
		}
	}
	return b
}

// LogLines returns the body of a LOGSHEET block split into lines.
func LogLines(block string) []string {
	inner := strings.TrimSpace(logOpenRe.ReplaceAllString(cleanNewlines(block), ""))
	inner = strings.TrimSpace(logCloseRe.ReplaceAllString(inner, ""))
	if inner == "" {
		return nil
	}
	return strings.Split(inner, "\n")
}

// Summary is the parsed SUMMARYSHEET.
type Summary struct {
	ContestName  string
	CategoryCode string
	CategoryName string
	Callsign     string
	OpCallsign   string
	Address      string
	OpPlace      string
	Comments     string
	Claimed      contest.Claimed
}

// ParseSummary reads a SUMMARYSHEET block. The per-band score is taken from
// the SCORE tag whose BAND attribute equals band (DefaultBand when empty),
// falling back to BAND=TOTAL. Unreadable numbers are left nil.
func ParseSummary(block, band string) Summary {
	sb := cleanNewlines(block)
	var s Summary
	s.ContestName = findTag(sb, "CONTESTNAME")
	s.CategoryCode = findTag(sb, "CATEGORYCODE")
	s.CategoryName = findTag(sb, "CATEGORYNAME")
	s.Callsign = normalize.Callsign(findTag(sb, "CALLSIGN"))
	s.OpCallsign = normalize.Callsign(findTag(sb, "OPCALLSIGN"))
	s.Address = findTag(sb, "ADDRESS")
	s.OpPlace = findTag(sb, "OPPLACE")
	s.Comments = findTag(sb, "COMMENTS")

	if band == "" {
		band = DefaultBand
	}
	score := findScore(sb, band)
	if score == "" {
		score = findScore(sb, "TOTAL")
	}
	s.Claimed.QSO, s.Claimed.Points, s.Claimed.Mult = scoreTriplet(score)
	if v, ok := normalize.OptionalInt(findTag(sb, "TOTALSCORE")); ok {
		s.Claimed.Total = &v
	}
	return s
}

func findTag(text, tag string) string {
	re, ok := tagRes[tag]
	if !ok {
		re = regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strutil.CollapseBlanks(m[1])
}

// findScore returns the text of the first SCORE tag with a non-empty body
// whose BAND attribute equals band, compared case-insensitively.
func findScore(text, band string) string {
	for _, m := range scoreRe.FindAllStringSubmatch(text, -1) {
		if !strings.EqualFold(attr(m[1], "BAND"), band) {
			continue
		}
		if v := strutil.CollapseBlanks(m[2]); v != "" {
			return v
		}
	}
	return ""
}

// scoreTriplet splits "qso,points,mult". Fewer than three parts yields
// all nil; a part that is not a number yields nil for that part alone.
func scoreTriplet(text string) (qso, pts, mult *int) {
	if text == "" {
		return nil, nil, nil
	}
	parts := strings.Split(text, ",")
	if len(parts) < 3 {
		return nil, nil, nil
	}
	toInt := func(s string) *int {
		if v, ok := normalize.OptionalInt(s); ok {
			return &v
		}
		return nil
	}
	return toInt(parts[0]), toInt(parts[1]), toInt(parts[2])
}

var attrCache = map[string]*regexp.Regexp{
	"TYPE": attrPattern("TYPE"),
	"BAND": attrPattern("BAND"),
}

func attrPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)\b` + name + `\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
}

// attr reads name=value from a tag's attribute text. Quotes are removed.
func attr(attrs, name string) string {
	re, ok := attrCache[name]
	if !ok {
		re = attrPattern(regexp.QuoteMeta(name))
	}
	m := re.FindStringSubmatch(attrs)
	if m == nil {
		return ""
	}
	v := strings.TrimSpace(m[1])
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
		v = v[1 : len(v)-1]
	}
	return strings.TrimSpace(v)
}

func cleanNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
