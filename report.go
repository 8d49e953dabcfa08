package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"contestcheck/config"
	"contestcheck/contest"
	"contestcheck/ranking"
	"contestcheck/store"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	callWidth     = 12
	categoryWidth = 22
	placeWidth    = 24
)

// Purpose: Render the console report for one session.
// Key aspects: Overall standings, per-category standings, award groups,
// mismatch reasons and load errors, in that order.
// Upstream: main.
// Downstream: io.Writer.
func printReport(w io.Writer, cfg *config.Config, standings []ranking.Ranked, status store.Status, load loadReport, awards ranking.AwardConfig) {
	title := strings.TrimSpace(cfg.Contest.Title)
	if cfg.Contest.Year > 0 {
		title = fmt.Sprintf("%s %d", title, cfg.Contest.Year)
	}
	fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", runewidth.StringWidth(title)))

	entries := make([]*contest.Entry, 0, len(standings))
	for _, r := range standings {
		entries = append(entries, r.Entry)
	}

	fmt.Fprintln(w, "Overall")
	printStandings(w, cfg.Categories, standings)

	for _, cs := range ranking.ByCategory(entries) {
		fmt.Fprintf(w, "\n%s\n", cfg.Categories.Display(cs.Category))
		printStandings(w, cfg.Categories, cs.Standings)
	}

	catAwards, areaAwards := ranking.AwardGroups(entries, awards)
	fmt.Fprintln(w, "\nAwards")
	if len(catAwards) == 0 && len(areaAwards) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	lastCat := ""
	for _, a := range catAwards {
		if a.Category != lastCat {
			fmt.Fprintf(w, "  %s\n", cfg.Categories.Display(a.Category))
			lastCat = a.Category
		}
		fmt.Fprintf(w, "    %3d  %s %s\n", a.Rank, pad(a.Entry.Callsign, callWidth), humanize.Comma(int64(a.Entry.Recomputed.Total)))
	}
	for _, a := range areaAwards {
		fmt.Fprintf(w, "  %s area %d: %s %s\n", cfg.Categories.Display(awards.AreaCategory), a.Area,
			pad(a.Entry.Callsign, callWidth), humanize.Comma(int64(a.Entry.Recomputed.Total)))
	}

	var mismatches []*contest.Entry
	for _, e := range entries {
		if !e.Match && !e.Checklog {
			mismatches = append(mismatches, e)
		}
	}
	if len(mismatches) > 0 {
		fmt.Fprintln(w, "\nMismatches")
		for _, e := range mismatches {
			fmt.Fprintf(w, "  %s %s\n", pad(e.Callsign, callWidth), e.Reason)
		}
	}

	if len(load.Failures) > 0 {
		fmt.Fprintln(w, "\nLoad errors")
		for _, f := range load.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.File, f.Err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", status)
}

func printStandings(w io.Writer, cats config.CategoryConfig, standings []ranking.Ranked) {
	if len(standings) == 0 {
		fmt.Fprintln(w, "  (no entries)")
		return
	}
	fmt.Fprintf(w, "  %4s %s %s %s %6s %6s %5s %8s  %s\n", "RANK",
		pad("CALL", callWidth), pad("CATEGORY", categoryWidth), pad("PLACE", placeWidth),
		"QSO", "PTS", "MULT", "TOTAL", "STATUS")
	for _, r := range standings {
		e := r.Entry
		rank := "-"
		if r.Rank != ranking.Unranked {
			rank = strconv.Itoa(r.Rank)
		}
		fmt.Fprintf(w, "  %4s %s %s %s %6s %6s %5s %8s  %s\n", rank,
			pad(e.Callsign, callWidth), pad(cats.Display(e.Category), categoryWidth), pad(e.Place, placeWidth),
			humanize.Comma(int64(e.Recomputed.QSO)), humanize.Comma(int64(e.Recomputed.Points)),
			humanize.Comma(int64(e.Recomputed.Mult)), humanize.Comma(int64(e.Recomputed.Total)),
			store.Classify(e))
	}
}

// pad truncates or fills s to a display width, counting East Asian wide
// characters as two columns.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
