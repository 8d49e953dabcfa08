package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contestcheck/strutil"
)

func TestPrintReportSections(t *testing.T) {
	c, _ := testChecker(t)
	e, err := c.store.Get("JA1DEF")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	e.Match = false
	e.Reason = "total differs (claimed 20, recomputed 8)"

	load := loadReport{Files: 4, Loaded: 3, Failures: []loadFailure{{File: "bad.log", Err: errors.New("submission has no callsign")}}}
	var buf bytes.Buffer
	printReport(&buf, c.cfg, c.Standings(), c.Status(), load, c.awardConfig())
	out := buf.String()

	for _, want := range []string{
		"AM Contest\n==========",
		"Overall",
		"Awards",
		"Mismatches",
		"JA1DEF       total differs",
		"Load errors",
		"bad.log: submission has no callsign",
		"entries=3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Overall") > strings.Index(out, "Awards") {
		t.Fatalf("standings should precede awards")
	}
}

func TestPadCountsWideCharacters(t *testing.T) {
	if got := pad("横浜市", 8); got != "横浜市  " {
		t.Fatalf("pad = %q", got)
	}
	if got := pad("JA1ABC", 4); len([]rune(got)) > 4 {
		t.Fatalf("pad should truncate, got %q", got)
	}
}

func TestWritePublication(t *testing.T) {
	c, _ := testChecker(t)
	e, err := c.store.Get("JA1ABC")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	e.Comments = "thanks\nfor the contest"

	dir := filepath.Join(t.TempDir(), "pub")
	files, err := writePublication(dir, c.cfg.Categories, c.awardConfig(), c.store.Entries())
	if err != nil {
		t.Fatalf("writePublication: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range files {
		names[filepath.Base(f)] = true
	}
	for _, want := range []string{
		"results_overall.csv",
		"results_by_category_1F.csv",
		"results_by_category_1P.csv",
		"awards_by_category.csv",
		"awards_by_area.csv",
		"comments_list.csv",
	} {
		if !names[want] {
			t.Fatalf("missing %s in %v", want, files)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "results_overall.csv"))
	if err != nil {
		t.Fatalf("read overall: %v", err)
	}
	if !bytes.HasPrefix(data, strutil.UTF8BOM) {
		t.Fatalf("publication CSV should start with a BOM")
	}
	text := string(data)
	if !strings.Contains(text, "rank,callsign,categorycode") || !strings.Contains(text, "JA1ABC") {
		t.Fatalf("unexpected overall CSV:\n%s", text)
	}
	if strings.Contains(text, "JA1ZZZ") {
		t.Fatalf("checklogs must not be published:\n%s", text)
	}

	comments, err := os.ReadFile(filepath.Join(dir, "comments_list.csv"))
	if err != nil {
		t.Fatalf("read comments: %v", err)
	}
	if !strings.Contains(string(comments), "thanks for the contest") {
		t.Fatalf("comments should be flattened to one line:\n%s", comments)
	}
}
