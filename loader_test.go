package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contestcheck/store"
	"contestcheck/submission"
)

// testSubmission builds a CTESTWIN submission with two valid contacts
// (QSO 2, points 4, multiplier 2, total 8).
func testSubmission(call, category, place string) string {
	return fmt.Sprintf(`<SUMMARYSHEET VERSION=R2.0>
<CATEGORYCODE>%s</CATEGORYCODE>
<CALLSIGN>%s</CALLSIGN>
<SCORE BAND=50MHz>2,4,2</SCORE>
<TOTALSCORE>8</TOTALSCORE>
<OPPLACE>%s</OPPLACE>
</SUMMARYSHEET>
<LOGSHEET TYPE=CTESTWIN>
DATE TIME BAND MODE CALLSIGN SENT RCVD PTS
2025-05-05 10:00 50 AM JA1AAA 59 5 59 12 2
2025-05-05 10:01 50 AM JA1BBB 59 5 59 13 2
</LOGSHEET>
`, category, call, place)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListSubmissionsMatchesPatternsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.LOG", "a.txt", "notes.md", "c.log"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.log"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := listSubmissions(dir, []string{"*.log", "*.txt", "*.LOG"})
	if err != nil {
		t.Fatalf("listSubmissions: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.LOG"),
		filepath.Join(dir, "c.log"),
	}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Fatalf("files = %v, want %v", files, want)
	}
	if _, err := listSubmissions(filepath.Join(dir, "missing"), []string{"*"}); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestLoadSubmissionsRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ja1abc.log"), testSubmission("JA1ABC", "1F", "横浜市"))
	writeFile(t, filepath.Join(dir, "ja1def.txt"), testSubmission("JA1DEF", "1P", "八王子市"))
	writeFile(t, filepath.Join(dir, "nocall.log"), "<SUMMARYSHEET><CATEGORYCODE>1F</CATEGORYCODE></SUMMARYSHEET>")
	writeFile(t, filepath.Join(dir, "zz.log"), testSubmission("ja1abc", "1F", "横浜市"))

	st := store.New(t.Logf)
	report, err := loadSubmissions(dir, []string{"*.log", "*.txt"}, submission.Options{Band: "50MHz"}, st)
	if err != nil {
		t.Fatalf("loadSubmissions: %v", err)
	}
	if report.Files != 4 || report.Loaded != 3 || report.Replaced != 1 || len(report.Failures) != 1 {
		t.Fatalf("unexpected report %s", report)
	}
	if report.Failures[0].File != "nocall.log" || !errors.Is(report.Failures[0].Err, submission.ErrNoCallsign) {
		t.Fatalf("unexpected failure %+v", report.Failures[0])
	}
	if st.Len() != 2 {
		t.Fatalf("store has %d entries, want 2", st.Len())
	}
	e, err := st.Get("JA1ABC")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.Source != "zz.log" {
		t.Fatalf("later file should replace earlier entry, source %q", e.Source)
	}
	if !strings.Contains(report.String(), "replaced=1") {
		t.Fatalf("report string %q", report.String())
	}
}

func TestAddSubmissionFallbacks(t *testing.T) {
	dir := t.TempDir()
	bare := filepath.Join(dir, "bare.txt")
	writeFile(t, bare, "<LOGSHEET TYPE=CTESTWIN>\n2025-05-05 10:00 50 AM JA1AAA 59 5 59 12 2\n</LOGSHEET>\n")

	st := store.New(t.Logf)
	if _, err := addSubmission(bare, "", "", submission.Options{}, st); !errors.Is(err, submission.ErrNoCallsign) {
		t.Fatalf("expected ErrNoCallsign, got %v", err)
	}
	call, err := addSubmission(bare, "ja1xyz", "川崎市", submission.Options{}, st)
	if err != nil {
		t.Fatalf("addSubmission: %v", err)
	}
	if call != "JA1XYZ" {
		t.Fatalf("call = %q", call)
	}
	e, err := st.Get(call)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.Source != "bare.txt" || len(e.Contacts) != 1 {
		t.Fatalf("unexpected entry: source %q, %d contacts", e.Source, len(e.Contacts))
	}

	empty := filepath.Join(dir, "empty.txt")
	writeFile(t, empty, "  \n")
	if _, err := addSubmission(empty, "JA1XYZ", "", submission.Options{}, st); err == nil {
		t.Fatalf("expected error for empty submission")
	}
	if _, err := addSubmission(filepath.Join(dir, "missing.txt"), "JA1XYZ", "", submission.Options{}, st); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
