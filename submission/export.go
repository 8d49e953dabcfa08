package submission

import (
	"fmt"
	"strconv"
	"strings"

	"contestcheck/contest"
	"contestcheck/logsheet"
)

// Export returns the entry's submission with its log rewritten in canonical
// CTESTWIN form. Entries whose raw text has no summary get a synthesized
// one.
func Export(e *contest.Entry) string {
	if Split(e.RawText).Summary != "" {
		return ReplaceLogsheet(e.RawText, e)
	}
	return Synthesize(e)
}

// ReplaceLogsheet swaps the first LOGSHEET block of raw for the entry's
// contacts in canonical form. Without a log block the new block goes right
// after the summary, or at the end of the text.
func ReplaceLogsheet(raw string, e *contest.Entry) string {
	t := cleanNewlines(raw)
	block := logsheet.FormatBlock(e.Contacts)

	if loc := logBlockRe.FindStringIndex(t); loc != nil {
		return t[:loc[0]] + block + t[loc[1]:]
	}
	if loc := summaryBlockRe.FindStringIndex(t); loc != nil {
		return t[:loc[1]] + "\n" + block + "\n" + t[loc[1]:]
	}
	return strings.TrimRight(t, " \t\n") + "\n" + block + "\n"
}

// Synthesize writes a complete submission for e: a SUMMARYSHEET built from
// the entry's fields and claimed figures, then the canonical LOGSHEET.
// Undeclared claimed figures are written as "-".
func Synthesize(e *contest.Entry) string {
	var b strings.Builder
	b.WriteString("<SUMMARYSHEET VERSION=R2.0>\n")
	writeTag(&b, "CONTESTNAME", e.ContestName)
	writeTag(&b, "CATEGORYCODE", e.Category)
	writeTag(&b, "CATEGORYNAME", e.CategoryName)
	writeTag(&b, "CALLSIGN", e.Callsign)
	if e.OpCallsign != "" {
		writeTag(&b, "OPCALLSIGN", e.OpCallsign)
	}
	fmt.Fprintf(&b, "<SCORE BAND=%s>%s,%s,%s</SCORE>\n", DefaultBand,
		optional(e.Claimed.QSO), optional(e.Claimed.Points), optional(e.Claimed.Mult))
	if e.Claimed.Total != nil {
		writeTag(&b, "TOTALSCORE", strconv.Itoa(*e.Claimed.Total))
	}
	writeTag(&b, "ADDRESS", e.Address)
	writeTag(&b, "OPPLACE", e.Place)
	writeTag(&b, "COMMENTS", e.Comments)
	b.WriteString("</SUMMARYSHEET>\n")
	b.WriteString(logsheet.FormatBlock(e.Contacts))
	b.WriteByte('\n')
	return b.String()
}

func writeTag(b *strings.Builder, tag, value string) {
	fmt.Fprintf(b, "<%s>%s</%s>\n", tag, value, tag)
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
