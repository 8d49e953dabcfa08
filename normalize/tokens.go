// Package normalize canonicalizes the loose tokens found in hand-written
// contest logs: callsigns, exchanges, bands, dates, times and place names.
// Every function is pure and tolerant; unusable input comes back empty or
// unchanged rather than as an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"contestcheck/strutil"
)

// ReportPrefixes are the signal reports that precede the numeric exchange
// in contest logs. An exchange token equal to one of them carries no number.
var ReportPrefixes = []string{"59", "57", "55", "58", "56"}

var (
	callsignChars = regexp.MustCompile(`^[A-Z0-9/]+$`)
	datePattern   = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`)
	clockPattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
	clockSeconds  = regexp.MustCompile(`^(\d{2}:\d{2}):\d{2}$`)
	bandNumber    = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Callsign trims and upper-cases a callsign.
func Callsign(call string) string {
	return strutil.NormalizeUpper(call)
}

// LooksLikeCallsign reports whether tok consists of letters, digits and
// slashes only and contains at least one letter.
func LooksLikeCallsign(tok string) bool {
	s := strutil.NormalizeUpper(tok)
	if s == "" || !callsignChars.MatchString(s) {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0
}

// IsReport reports whether tok is exactly one of ReportPrefixes.
func IsReport(tok string) bool {
	for _, rst := range ReportPrefixes {
		if tok == rst {
			return true
		}
	}
	return false
}

// Exchange extracts the numeric exchange from a log token and returns it
// without leading zeros. "-" and bare signal reports yield "".
func Exchange(tok string) string {
	s := strings.TrimSpace(strutil.FoldWidth(tok))
	if s == "" || s == "-" || IsReport(s) {
		return ""
	}
	for _, rst := range ReportPrefixes {
		if strings.HasPrefix(s, rst) && len(s) > len(rst) {
			s = s[len(rst):]
			break
		}
	}
	return CanonExchange(s)
}

// CanonExchange strips non-digits from an already extracted exchange and
// removes leading zeros ("05" -> "5", "000" -> "0").
func CanonExchange(exch string) string {
	s := strings.TrimSpace(strutil.FoldWidth(exch))
	if s == "" || s == "-" {
		return ""
	}
	s = strutil.DigitsOnly(s)
	if s == "" {
		return ""
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// BandToken removes a MHz unit suffix and surrounding blanks. The numeric
// text is otherwise kept as written.
func BandToken(tok string) string {
	s := strings.TrimSpace(tok)
	s = strings.ReplaceAll(s, "MHz", "")
	s = strings.ReplaceAll(s, "mhz", "")
	return strings.TrimSpace(s)
}

// Band returns the canonical band token: unit removed and whole numbers
// written without a trailing ".0" ("50.0MHz" -> "50").
func Band(tok string) string {
	s := BandToken(tok)
	if s == "" || !bandNumber.MatchString(s) {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if whole := float64(int64(f)); f-whole < 1e-9 && whole-f < 1e-9 {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// Time accepts "HH:MM" as is, drops the seconds of "HH:MM:SS" and
// rewrites a bare "HHMM" to "HH:MM". Full-width digits are folded first;
// anything else is returned trimmed but otherwise unchanged.
func Time(tok string) string {
	s := strings.TrimSpace(strutil.FoldWidth(tok))
	if clockPattern.MatchString(s) {
		return s
	}
	if m := clockSeconds.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if len(s) == 4 && strutil.IsDigits(s) {
		return s[:2] + ":" + s[2:]
	}
	return s
}

// Date folds full-width digits and rewrites slash separators to hyphens.
func Date(tok string) string {
	return strings.ReplaceAll(strings.TrimSpace(strutil.FoldWidth(tok)), "/", "-")
}

// LooksLikeDate matches YYYY-MM-DD or YYYY/MM/DD.
func LooksLikeDate(tok string) bool {
	return datePattern.MatchString(strings.TrimSpace(strutil.FoldWidth(tok)))
}

// LooksLikeTime matches HH:MM or HHMM. Seconds are not accepted here;
// run the token through Time first where a log may carry them.
func LooksLikeTime(tok string) bool {
	s := strings.TrimSpace(strutil.FoldWidth(tok))
	return clockPattern.MatchString(s) || (len(s) == 4 && strutil.IsDigits(s))
}

// Int parses a loosely written integer ("1,234", " 12 "). Empty text, "-"
// and anything unparsable yield def.
func Int(tok string, def int) int {
	if v, ok := OptionalInt(tok); ok {
		return v
	}
	return def
}

// OptionalInt is Int without a default: ok is false when tok holds no
// usable integer.
func OptionalInt(tok string) (int, bool) {
	s := strings.TrimSpace(strutil.FoldWidth(tok))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
