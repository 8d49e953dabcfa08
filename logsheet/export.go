package logsheet

import (
	"fmt"
	"strings"

	"contestcheck/contest"
	"contestcheck/normalize"
)

// Canonical export defaults.
const (
	DefaultBand   = "50"
	DefaultMode   = "AM"
	PlaceholderRS = "59"
)

// FormatLine renders a contact as a canonical CTESTWIN line:
// "DATE TIME BAND MODE CALL 59 SENT 59 RCVD PTS". The signal report is
// always written as 59 and an empty exchange as "-".
func FormatLine(c contest.Contact) string {
	band := normalize.Band(c.Band)
	if band == "" {
		band = DefaultBand
	}
	mode := strings.ToUpper(strings.TrimSpace(c.Mode))
	if mode == "" {
		mode = DefaultMode
	}
	sent := normalize.CanonExchange(c.Sent)
	if sent == "" {
		sent = "-"
	}
	rcvd := normalize.CanonExchange(c.Rcvd)
	if rcvd == "" {
		rcvd = "-"
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s %s %s %d",
		normalize.Date(c.Date),
		normalize.Time(c.Time),
		band,
		mode,
		normalize.Callsign(c.Call),
		PlaceholderRS, sent,
		PlaceholderRS, rcvd,
		c.Points,
	)
}

// FormatBlock renders contacts as a complete LOGSHEET block in CTESTWIN form.
func FormatBlock(contacts []contest.Contact) string {
	var b strings.Builder
	b.WriteString("<LOGSHEET TYPE=CTESTWIN>\n")
	for i, c := range contacts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatLine(c))
	}
	b.WriteString("\n</LOGSHEET>")
	return b.String()
}
