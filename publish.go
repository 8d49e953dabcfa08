package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"contestcheck/config"
	"contestcheck/contest"
	"contestcheck/ranking"
	"contestcheck/strutil"
)

var csvBreaks = regexp.MustCompile(`[\r\n\t]+`)

var publishHeader = []string{
	"rank", "callsign", "categorycode", "categoryname", "opplace",
	"valid_qso", "pts", "mult", "total", "manual_note", "comments",
}

// Purpose: Write the publication CSV files for the announced results.
// Key aspects: UTF-8 with BOM so spreadsheet tools detect the encoding;
// checklogs are never published.
// Upstream: main -publish flag.
// Downstream: encoding/csv.
func writePublication(dir string, cats config.CategoryConfig, awards ranking.AwardConfig, entries []*contest.Entry) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create publish dir: %w", err)
	}
	var written []string
	write := func(name string, header []string, rows [][]string) error {
		path := filepath.Join(dir, name)
		if err := writeCSV(path, header, rows); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	overall := ranking.Rank(entries)
	if err := write("results_overall.csv", publishHeader, publishRows(cats, overall)); err != nil {
		return written, err
	}
	for _, cs := range ranking.ByCategory(entries) {
		name := "results_by_category_" + safeFileName(cs.Category) + ".csv"
		if err := write(name, publishHeader, publishRows(cats, cs.Standings)); err != nil {
			return written, err
		}
	}

	catAwards, areaAwards := ranking.AwardGroups(entries, awards)
	var inRows [][]string
	for _, a := range catAwards {
		inRows = append(inRows, append([]string{a.Category}, publishRow(cats, a.Rank, a.Entry)...))
	}
	if err := write("awards_by_category.csv", append([]string{"category"}, publishHeader...), inRows); err != nil {
		return written, err
	}
	var areaRows [][]string
	for _, a := range areaAwards {
		areaRows = append(areaRows, append([]string{strconv.Itoa(a.Area)}, publishRow(cats, 1, a.Entry)...))
	}
	if err := write("awards_by_area.csv", append([]string{"area"}, publishHeader...), areaRows); err != nil {
		return written, err
	}

	var comments [][]string
	sorted := append([]*contest.Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Callsign < sorted[j].Callsign })
	for _, e := range sorted {
		if e.Checklog || strings.TrimSpace(e.Comments) == "" {
			continue
		}
		comments = append(comments, []string{
			e.Callsign, e.Category, cats.Display(e.Category), e.Place, csvSafe(e.Comments),
		})
	}
	if err := write("comments_list.csv", []string{"callsign", "categorycode", "categoryname", "opplace", "comments"}, comments); err != nil {
		return written, err
	}
	return written, nil
}

func publishRows(cats config.CategoryConfig, standings []ranking.Ranked) [][]string {
	rows := make([][]string, 0, len(standings))
	for _, r := range standings {
		if r.Entry.Checklog {
			continue
		}
		rows = append(rows, publishRow(cats, r.Rank, r.Entry))
	}
	return rows
}

func publishRow(cats config.CategoryConfig, rank int, e *contest.Entry) []string {
	note := ""
	if e.ManualEnabled() {
		note = csvSafe(e.Override.Note)
	}
	f := e.Recomputed
	return []string{
		strconv.Itoa(rank),
		e.Callsign,
		e.Category,
		cats.Display(e.Category),
		e.Place,
		strconv.Itoa(f.QSO),
		strconv.Itoa(f.Points),
		strconv.Itoa(f.Mult),
		strconv.Itoa(f.Total),
		note,
		csvSafe(e.Comments),
	}
}

func csvSafe(s string) string {
	return strings.TrimSpace(csvBreaks.ReplaceAllString(s, " "))
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(strutil.UTF8BOM); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
