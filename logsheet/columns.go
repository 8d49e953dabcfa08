package logsheet

import (
	"strings"

	"contestcheck/contest"
	"contestcheck/normalize"
	"contestcheck/strutil"
)

// ParseCTESTWIN parses "DATE TIME BAND MODE CALL ... PTS" lines. The mode
// column may be missing (the fourth field is then the report and the mode
// is AM), and the exchange columns are located around the signal reports.
func ParseCTESTWIN(lines []string) []contest.Contact {
	out := make([]contest.Contact, 0, len(lines))
	for _, raw := range lines {
		s := strings.TrimSpace(raw)
		if s == "" || hasPrefix(s, "DATE", "---", "Date") {
			continue
		}
		parts := strings.Fields(s)
		if len(parts) < 6 || !normalize.LooksLikeDate(parts[0]) || !normalize.LooksLikeTime(parts[1]) {
			continue
		}

		mode := parts[3]
		if isNumber(parts[3]) && normalize.LooksLikeCallsign(parts[4]) {
			mode = "AM"
		}

		pts, parsed, rest := takeTailPoints(parts[5:])
		sent, rcvd := locateExchanges(rest)

		out = append(out, contest.Contact{
			Date:   normalize.Date(parts[0]),
			Time:   normalize.Time(parts[1]),
			Band:   normalize.BandToken(parts[2]),
			Mode:   mode,
			Call:   normalize.Callsign(parts[4]),
			Sent:   normalize.Exchange(sent),
			Rcvd:   normalize.Exchange(rcvd),
			Points: policyCTESTWIN.Resolve(pts, parsed, s),
			Raw:    raw,
		})
	}
	return out
}

// takeTailPoints reads the point column from the end of tokens: the last
// token when numeric, or the one before a trailing dup/dupe marker. The
// consumed tokens are removed from the returned slice.
func takeTailPoints(tokens []string) (int, bool, []string) {
	if len(tokens) == 0 {
		return 0, false, tokens
	}
	if tail := tokens[len(tokens)-1]; isNumber(tail) {
		return normalize.Int(tail, 0), true, tokens[:len(tokens)-1]
	}
	if len(tokens) >= 2 {
		marker := strings.ToLower(tokens[len(tokens)-1])
		if marker == "dup" || marker == "dupe" {
			if prev := tokens[len(tokens)-2]; isNumber(prev) {
				return normalize.Int(prev, 0), true, tokens[:len(tokens)-2]
			}
		}
	}
	return 0, false, tokens
}

// isNumber reports whether tok is an unsigned integer, allowing thousands
// separators and full-width digits.
func isNumber(tok string) bool {
	s := strings.ReplaceAll(strings.TrimSpace(strutil.FoldWidth(tok)), ",", "")
	return strutil.IsDigits(s)
}

// locateExchanges finds the sent and received exchange tokens relative to
// the signal-report tokens in rest.
func locateExchanges(rest []string) (sent, rcvd string) {
	var reports []int
	for i, tok := range rest {
		if normalize.IsReport(tok) {
			reports = append(reports, i)
		}
	}
	switch {
	case len(reports) >= 2:
		if i := reports[0] + 1; i < len(rest) {
			sent = rest[i]
		}
		if i := reports[1] + 1; i < len(rest) {
			rcvd = rest[i]
		}
	case len(reports) == 1:
		if i := reports[0] - 1; i >= 0 {
			sent = rest[i]
		}
		if i := reports[0] + 1; i < len(rest) {
			rcvd = rest[i]
		}
	default:
		if len(rest) >= 1 {
			sent = rest[0]
		}
		if len(rest) >= 2 {
			rcvd = rest[1]
		}
	}
	return sent, rcvd
}

// ParseHLTST parses "DATE TIME BAND MODE CALL RST SENT RST RCVD ... PTS"
// lines with at least ten fields.
func ParseHLTST(lines []string) []contest.Contact {
	const base = 5
	out := make([]contest.Contact, 0, len(lines))
	for _, raw := range lines {
		s := strings.TrimSpace(raw)
		if s == "" || hasPrefix(s, "DATE", "---") {
			continue
		}
		parts := strings.Fields(s)
		if len(parts) < 10 || !normalize.LooksLikeDate(parts[0]) || !normalize.LooksLikeTime(parts[1]) {
			continue
		}

		mode := parts[3]
		if isNumber(parts[3]) && normalize.LooksLikeCallsign(parts[4]) {
			mode = "AM"
		}

		ptsTok := parts[len(parts)-1]
		if len(parts) > base+5 {
			ptsTok = parts[base+5]
		}
		pts, parsed := normalize.OptionalInt(ptsTok)

		out = append(out, contest.Contact{
			Date:   normalize.Date(parts[0]),
			Time:   normalize.Time(parts[1]),
			Band:   normalize.BandToken(parts[2]),
			Mode:   mode,
			Call:   normalize.Callsign(parts[4]),
			Sent:   normalize.Exchange(field(parts, base+1)),
			Rcvd:   normalize.Exchange(field(parts, base+3)),
			Points: policyHLTST.Resolve(pts, parsed, s),
			Raw:    raw,
		})
	}
	return out
}

// ParseZLOG parses zLog lines:
// "DATE TIME CALL RST SENT RST RCVD MULT MULT2 BAND MODE PTS ...".
func ParseZLOG(lines []string) []contest.Contact {
	out := make([]contest.Contact, 0, len(lines))
	for _, raw := range lines {
		s := strings.TrimSpace(raw)
		if s == "" || strings.HasPrefix(strings.ToLower(s), "date") || strings.HasPrefix(s, "---") {
			continue
		}
		parts := strings.Fields(s)
		if len(parts) < 12 || !normalize.LooksLikeDate(parts[0]) || !normalize.LooksLikeTime(parts[1]) {
			continue
		}
		pts, parsed := normalize.OptionalInt(parts[11])

		out = append(out, contest.Contact{
			Date:   normalize.Date(parts[0]),
			Time:   normalize.Time(parts[1]),
			Band:   normalize.BandToken(parts[9]),
			Mode:   parts[10],
			Call:   normalize.Callsign(parts[2]),
			Sent:   normalize.Exchange(parts[4]),
			Rcvd:   normalize.Exchange(parts[6]),
			Points: policyZLOG.Resolve(pts, parsed, s),
			Raw:    raw,
		})
	}
	return out
}

func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
