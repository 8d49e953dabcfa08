// Package scoring recomputes a station's score from its own log and
// reconciles it with what the station claimed.
//
// The pipeline for one entry is fixed: duplicate pass, tally, manual
// override, verdict. Recompute runs all four and must be called again after
// any change to the contacts or the override.
package scoring

import (
	"fmt"
	"strings"

	"contestcheck/contest"
	"contestcheck/normalize"
)

// ZeroClaimReason is the verdict text for stations that claimed a total of
// zero. Such entries are always reported as matching.
const ZeroClaimReason = "claimed score is zero; not corrected"

type dupKey struct {
	band string
	mode string
	call string
}

func keyOf(c *contest.Contact) dupKey {
	return dupKey{
		band: strings.TrimSpace(c.Band),
		mode: strings.ToUpper(strings.TrimSpace(c.Mode)),
		call: strings.ToUpper(strings.TrimSpace(c.Call)),
	}
}

// MarkDuplicates walks contacts in log order. A repeated (band, mode, call)
// key is a duplicate and loses its points. A contact already worth zero is
// flagged as a duplicate but does not claim its key, so a later scoring
// contact with the same key still counts. Running it twice changes nothing.
func MarkDuplicates(contacts []contest.Contact) {
	seen := make(map[dupKey]struct{}, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		k := keyOf(c)
		if _, ok := seen[k]; ok {
			c.Dup = true
			c.Points = 0
			continue
		}
		if c.Points == 0 {
			c.Dup = true
			continue
		}
		c.Dup = false
		seen[k] = struct{}{}
	}
}

// Valid reports whether a contact counts toward the score.
func Valid(c contest.Contact) bool {
	return !c.Dup && c.Points > 0
}

// Tally sums the valid contacts. The multiplier is the number of distinct
// non-empty received exchanges among them.
func Tally(contacts []contest.Contact) contest.Figures {
	var f contest.Figures
	mults := make(map[string]struct{})
	for _, c := range contacts {
		if !Valid(c) {
			continue
		}
		f.QSO++
		f.Points += c.Points
		if ex := normalize.CanonExchange(c.Rcvd); ex != "" {
			mults[ex] = struct{}{}
		}
	}
	f.Mult = len(mults)
	f.Total = f.Points * f.Mult
	return f
}

// Recompute refreshes the entry's recomputed figures, place and verdict
// from its contacts, claimed figures and installed override.
func Recompute(e *contest.Entry) {
	if e == nil {
		return
	}
	MarkDuplicates(e.Contacts)
	e.Recomputed = Tally(e.Contacts)
	e.Place = e.ParsedPlace
	applyOverride(e)
	judge(e)
}

// ApplyOverride installs ov on the entry (nil removes it) and recomputes.
func ApplyOverride(e *contest.Entry, ov *contest.Override) {
	if e == nil {
		return
	}
	e.Override = ov
	Recompute(e)
}

func applyOverride(e *contest.Entry) {
	if !e.ManualEnabled() {
		return
	}
	ov := e.Override
	if ov.QSO != nil {
		e.Recomputed.QSO = *ov.QSO
	}
	if ov.Points != nil {
		e.Recomputed.Points = *ov.Points
	}
	if ov.Mult != nil {
		e.Recomputed.Mult = *ov.Mult
	}
	if ov.Total != nil {
		e.Recomputed.Total = *ov.Total
	} else {
		e.Recomputed.Total = e.Recomputed.Points * e.Recomputed.Mult
	}
	if place := strings.TrimSpace(ov.Place); place != "" {
		e.Place = normalize.Place(place, e.Address)
	}
}

func judge(e *contest.Entry) {
	e.Discrepancies = nil
	if e.Claimed.Total != nil && *e.Claimed.Total == 0 {
		e.Match = true
		e.Reason = ZeroClaimReason
		return
	}

	compare := func(field contest.Field, claimed *int, recomputed int) {
		if claimed != nil && *claimed != recomputed {
			e.Discrepancies = append(e.Discrepancies, contest.Discrepancy{
				Field:      field,
				Claimed:    *claimed,
				Recomputed: recomputed,
			})
		}
	}
	compare(contest.FieldQSO, e.Claimed.QSO, e.Recomputed.QSO)
	compare(contest.FieldPoints, e.Claimed.Points, e.Recomputed.Points)
	compare(contest.FieldMult, e.Claimed.Mult, e.Recomputed.Mult)
	compare(contest.FieldTotal, e.Claimed.Total, e.Recomputed.Total)

	e.Match = len(e.Discrepancies) == 0

	parts := make([]string, 0, len(e.Discrepancies)+1)
	for _, d := range e.Discrepancies {
		parts = append(parts, Describe(d))
	}
	if e.ManualEnabled() {
		if note := strings.TrimSpace(e.Override.Note); note != "" {
			parts = append(parts, "manual: "+note)
		}
	}
	e.Reason = strings.Join(parts, " / ")
}

// Describe renders a discrepancy as "<label> differs (claimed X, recomputed Y)".
func Describe(d contest.Discrepancy) string {
	return fmt.Sprintf("%s differs (claimed %d, recomputed %d)", d.Field.Label(), d.Claimed, d.Recomputed)
}
