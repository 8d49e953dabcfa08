// Package submission turns one contest submission (a SUMMARYSHEET block and
// a LOGSHEET block in tagged text) into a scored contest.Entry, and writes a
// submission back out with its log in canonical form.
//
// Upstream: the loader in the root program and pasted text.
// Downstream: scoring.Recompute, store.Store.
package submission

import (
	"errors"
	"strings"

	"github.com/zeebo/xxh3"

	"contestcheck/contest"
	"contestcheck/logsheet"
	"contestcheck/normalize"
	"contestcheck/scoring"
)

// DefaultBand is the SCORE BAND attribute read when Options.Band is empty.
const DefaultBand = "50MHz"

// ErrNoCallsign is returned when neither the summary nor the caller names
// the station. The submission must not be stored.
var ErrNoCallsign = errors.New("submission has no callsign")

// Options tune Parse.
type Options struct {
	// Band selects the SCORE tag holding the claimed figures.
	Band string
	// Source identifies where the text came from (usually a file name).
	Source string
	// Checklog lists callsigns that are checklogs, upper-cased.
	Checklog map[string]bool
}

// Parse builds an entry from a submission. fallbackCall is used when the
// summary has no CALLSIGN; a non-blank fallbackPlace replaces the declared
// operating place. The returned entry is already recomputed.
func Parse(text, fallbackCall, fallbackPlace string, opts Options) (*contest.Entry, error) {
	blocks := Split(text)

	e := &contest.Entry{
		Source:  opts.Source,
		RawText: text,
		Digest:  Digest(text),
	}
	fallbackPlace = strings.TrimSpace(fallbackPlace)

	if blocks.Summary != "" {
		sum := ParseSummary(blocks.Summary, opts.Band)
		e.Callsign = sum.Callsign
		if e.Callsign == "" {
			e.Callsign = normalize.Callsign(fallbackCall)
		}
		e.OpCallsign = sum.OpCallsign
		e.ContestName = sum.ContestName
		e.Category = sum.CategoryCode
		e.CategoryName = sum.CategoryName
		e.Address = sum.Address
		e.Comments = sum.Comments
		e.Claimed = sum.Claimed

		base := sum.OpPlace
		if normalize.MeansHome(base) {
			base = e.Address
		}
		e.ParsedPlace = normalize.Place(base, e.Address)
		if fallbackPlace != "" {
			e.ParsedPlace = normalize.Place(fallbackPlace, e.Address)
		}
	} else {
		e.Callsign = normalize.Callsign(fallbackCall)
		e.ParsedPlace = normalize.Place(fallbackPlace, "")
	}
	e.Place = e.ParsedPlace

	if e.Callsign == "" {
		return nil, ErrNoCallsign
	}

	e.LogType = strings.TrimSpace(blocks.LogType)
	if blocks.Log != "" {
		e.Contacts, _ = logsheet.Parse(LogLines(blocks.Log), e.LogType)
	}
	e.Checklog = opts.Checklog[e.Callsign]

	scoring.Recompute(e)
	return e, nil
}

// Digest fingerprints submission text with line endings normalized, so a
// file re-saved with CRLF endings is still recognised as unchanged.
func Digest(text string) uint64 {
	return xxh3.HashString(cleanNewlines(text))
}
