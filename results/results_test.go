package results

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"contestcheck/contest"
	"contestcheck/ranking"
	"contestcheck/store"
)

func sampleStandings() []ranking.Ranked {
	ok := &contest.Entry{
		Callsign:   "JA1ABC",
		Category:   "1F",
		Place:      "横浜市港北区",
		Claimed:    contest.Claimed{QSO: contest.Int(3), Points: contest.Int(6), Mult: contest.Int(2), Total: contest.Int(12)},
		Recomputed: contest.Figures{QSO: 3, Points: 6, Mult: 2, Total: 12},
		Match:      true,
		Source:     "ja1abc.log",
		Digest:     0xfeedface12345678,
	}
	bad := &contest.Entry{
		Callsign:   "JA1DEF",
		Category:   "1P",
		Claimed:    contest.Claimed{Total: contest.Int(20)},
		Recomputed: contest.Figures{QSO: 2, Points: 4, Mult: 2, Total: 8},
		Reason:     "total differs (claimed 20, recomputed 8)",
		Source:     "ja1def.txt",
	}
	chk := &contest.Entry{
		Callsign: "JA1ZZZ",
		Match:    true,
		Checklog: true,
	}
	return ranking.Rank([]*contest.Entry{bad, chk, ok})
}

func TestSaveRunAndReadBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "results.db")
	var logged []string
	a, err := Open(path, func(format string, args ...any) { logged = append(logged, format) })
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	if _, err := a.LatestRun(ctx); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns on empty archive, got %v", err)
	}

	at := time.Date(2025, 5, 6, 12, 0, 0, 0, time.UTC)
	id, err := a.SaveRun(ctx, RunInfo{Title: "AM Contest", Year: 2025, Source: "data/submissions", At: at}, sampleStandings())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if len(logged) != 1 {
		t.Fatalf("expected one log line, got %v", logged)
	}

	run, err := a.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if run.ID != id || !run.At.Equal(at) || run.Title != "AM Contest" || run.Year != 2025 {
		t.Fatalf("unexpected run header %+v", run)
	}
	want := store.Status{Total: 3, OK: 2, Mismatch: 1, Checklog: 1}
	if run.Status != want {
		t.Fatalf("status = %+v, want %+v", run.Status, want)
	}

	rows, err := a.RunEntries(ctx, id)
	if err != nil {
		t.Fatalf("RunEntries: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Callsign != "JA1ABC" || first.Rank != 1 || first.Class != store.ClassOK {
		t.Fatalf("unexpected first row %+v", first)
	}
	if first.Digest != 0xfeedface12345678 || first.Place != "横浜市港北区" {
		t.Fatalf("digest or place lost: %+v", first)
	}
	if *first.Claimed.Total != 12 || first.Final.Total != 12 {
		t.Fatalf("figures lost: %+v", first)
	}
	second := rows[1]
	if second.Class != store.ClassMismatch || second.Claimed.QSO != nil || *second.Claimed.Total != 20 {
		t.Fatalf("unexpected second row %+v", second)
	}
	if !strings.Contains(second.Reason, "total differs") {
		t.Fatalf("reason lost: %q", second.Reason)
	}
	if rows[2].Rank != ranking.Unranked || rows[2].Class != store.ClassChecklog {
		t.Fatalf("checklog row wrong: %+v", rows[2])
	}
}

func TestPreviousDigests(t *testing.T) {
	ctx := context.Background()
	a, err := Open(filepath.Join(t.TempDir(), "results.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()

	digests, err := a.PreviousDigests(ctx)
	if err != nil || len(digests) != 0 {
		t.Fatalf("expected empty digests, got %v %v", digests, err)
	}
	if _, err := a.SaveRun(ctx, RunInfo{Title: "first"}, sampleStandings()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	digests, err = a.PreviousDigests(ctx)
	if err != nil {
		t.Fatalf("PreviousDigests: %v", err)
	}
	if digests["JA1ABC"] != 0xfeedface12345678 || len(digests) != 3 {
		t.Fatalf("unexpected digests %v", digests)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")
	a, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := a.SaveRun(ctx, RunInfo{Title: "first"}, sampleStandings()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	a.Close()

	b, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	id, err := b.SaveRun(ctx, RunInfo{Title: "second"}, sampleStandings())
	if err != nil {
		t.Fatalf("SaveRun after reopen: %v", err)
	}
	run, err := b.LatestRun(ctx)
	if err != nil || run.ID != id || run.Title != "second" || id < 2 {
		t.Fatalf("unexpected latest run %+v (id %d, err %v)", run, id, err)
	}
}

func TestOpenQuarantinesCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.db")
	if err := os.WriteFile(path, []byte("not a sqlite database at all, just text"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	a, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open should recover from a corrupt archive: %v", err)
	}
	defer a.Close()
	moved, _ := filepath.Glob(path + ".bad-*")
	if len(moved) != 1 {
		t.Fatalf("expected the corrupt archive to be quarantined, found %v", moved)
	}
	if _, err := a.SaveRun(context.Background(), RunInfo{Title: "fresh"}, sampleStandings()); err != nil {
		t.Fatalf("SaveRun on fresh archive: %v", err)
	}
}

func TestPreflightMissingFileIsHealthy(t *testing.T) {
	res, err := Preflight(filepath.Join(t.TempDir(), "none.db"), time.Second, nil)
	if err != nil || res.Health != HealthMissing || res.MovedTo != "" {
		t.Fatalf("expected a missing archive, got %+v %v", res, err)
	}
	if _, err := Preflight("  ", time.Second, nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestPreflightMovesDamagedArchiveAside(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	if err := os.WriteFile(path, []byte("garbage, not sqlite"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(path+"-journal", []byte("j"), 0o644); err != nil {
		t.Fatalf("write journal: %v", err)
	}
	var logged []string
	res, err := Preflight(path, 2*time.Second, func(format string, args ...any) {
		logged = append(logged, format)
	})
	if err != nil {
		t.Fatalf("Preflight: %v", err)
	}
	if res.Health != HealthQuarantined || res.Problem == nil || !strings.HasPrefix(res.MovedTo, path+".bad-") {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := os.Stat(res.MovedTo); err != nil {
		t.Fatalf("moved archive missing: %v", err)
	}
	if _, err := os.Stat(path + "-journal"); !os.IsNotExist(err) {
		t.Fatalf("journal should move with the archive")
	}
	if len(logged) != 1 {
		t.Fatalf("expected one log line, got %v", logged)
	}
	if res.Health.String() != "quarantined" {
		t.Fatalf("Health.String() = %q", res.Health.String())
	}
}
