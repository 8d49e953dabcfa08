package ui

import (
	"fmt"
	"strconv"
	"strings"

	"contestcheck/config"
	"contestcheck/contest"
	"contestcheck/normalize"
	"contestcheck/ranking"
	"contestcheck/store"

	"github.com/gdamore/tcell/v2"
)

// EntryHeaders are the column titles of the results table.
var EntryHeaders = []string{
	"RANK", "CALL", "CATEGORY", "PLACE", "QSO", "PTS", "MULT", "TOTAL", "CLAIMED", "STATUS", "REASON",
}

// ContactHeaders are the column titles of the contact detail table. MULT
// shows the exchange only where it is a new multiplier.
var ContactHeaders = []string{
	"DATE", "TIME", "BAND", "MODE", "CALL", "RCVD", "MULT", "PTS", "DUP",
}

// Columns of EntryHeaders used by search.
const (
	colCategory = 2
	colPlace    = 3
)

// EntryRow is one rendered line of the results table.
type EntryRow struct {
	Callsign string
	Class    store.Class
	Cells    []string
}

func (r EntryRow) cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// ClassColor maps a display class to its text colour.
func ClassColor(c store.Class) tcell.Color {
	switch c {
	case store.ClassMismatch:
		return tcell.ColorRed
	case store.ClassManual:
		return tcell.ColorDodgerBlue
	case store.ClassChecklog:
		return tcell.ColorOrange
	default:
		return tcell.ColorWhite
	}
}

// EntryRows renders standings in order.
func EntryRows(standings []ranking.Ranked, cats config.CategoryConfig) []EntryRow {
	out := make([]EntryRow, 0, len(standings))
	for _, r := range standings {
		e := r.Entry
		if e == nil {
			continue
		}
		rank := "-"
		if r.Rank != ranking.Unranked {
			rank = strconv.Itoa(r.Rank)
		}
		class := store.Classify(e)
		out = append(out, EntryRow{
			Callsign: e.Callsign,
			Class:    class,
			Cells: []string{
				rank,
				e.Callsign,
				cats.Display(e.Category),
				e.Place,
				strconv.Itoa(e.Recomputed.QSO),
				strconv.Itoa(e.Recomputed.Points),
				strconv.Itoa(e.Recomputed.Mult),
				strconv.Itoa(e.Recomputed.Total),
				optional(e.Claimed.Total),
				class.String(),
				e.Reason,
			},
		})
	}
	return out
}

// ContactRows renders the contacts of one entry in log order.
func ContactRows(e *contest.Entry) [][]string {
	if e == nil {
		return nil
	}
	seen := make(map[string]bool)
	out := make([][]string, 0, len(e.Contacts))
	for _, c := range e.Contacts {
		ex := normalize.CanonExchange(c.Rcvd)
		mult := "-"
		if !c.Dup && c.Points > 0 && ex != "" && !seen[ex] {
			seen[ex] = true
			mult = ex
		}
		dup := ""
		if c.Dup {
			dup = "YES"
		}
		out = append(out, []string{
			c.Date, c.Time, c.Band, c.Mode, c.Call, ex, mult, strconv.Itoa(c.Points), dup,
		})
	}
	return out
}

// DetailText is the header shown above the contact table.
func DetailText(e *contest.Entry, cats config.CategoryConfig) string {
	if e == nil {
		return ""
	}
	c, r := e.Claimed, e.Recomputed
	lines := []string{
		fmt.Sprintf("Call: %s    Category: %s", e.Callsign, cats.Display(e.Category)),
		fmt.Sprintf("Place: %s", e.Place),
		fmt.Sprintf("Claimed: QSO=%s Pts=%s Mult=%s Total=%s",
			optional(c.QSO), optional(c.Points), optional(c.Mult), optional(c.Total)),
		fmt.Sprintf("Recomputed: QSO=%d Pts=%d Mult=%d Total=%d", r.QSO, r.Points, r.Mult, r.Total),
		fmt.Sprintf("Status: %s    %s", store.Classify(e), e.Reason),
	}
	if e.Country != "" {
		lines[1] += "    Country: " + e.Country
	}
	return strings.Join(lines, "\n")
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
