// Package results archives each checking run to SQLite so standings can be
// compared across reloads and published later.
//
// Purpose: durable record of what was ranked, with the submission digest,
// the claimed and recomputed figures and the status class of every entry.
// Key aspects: one transaction per run; single connection; a damaged archive
// is quarantined by Preflight instead of blocking the run.
// Upstream: root program after ranking.
// Downstream: modernc.org/sqlite.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"contestcheck/contest"
	"contestcheck/ranking"
	"contestcheck/store"

	_ "modernc.org/sqlite"
)

// ErrNoRuns is returned by LatestRun on an empty archive.
var ErrNoRuns = errors.New("results: no runs archived")

// Archive is an open results database.
type Archive struct {
	db   *sql.DB
	logf func(string, ...any)
}

// RunInfo describes the run being archived.
type RunInfo struct {
	Title  string
	Year   int
	Source string
	At     time.Time
}

// Run is an archived run header.
type Run struct {
	ID     int64
	At     time.Time
	Title  string
	Year   int
	Source string
	Status store.Status
}

// Row is one archived entry.
type Row struct {
	Rank     int
	Callsign string
	Category string
	Place    string
	Country  string
	Claimed  contest.Claimed
	Final    contest.Figures
	Class    store.Class
	Reason   string
	Source   string
	Digest   uint64
}

// Open preflights and opens (or creates) the archive at path.
func Open(path string, logf func(string, ...any)) (*Archive, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("results: ensure dir: %w", err)
	}
	if _, err := Preflight(path, 2*time.Second, logf); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("results: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: schema: %w", err)
	}
	return &Archive{db: db, logf: logf}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_at INTEGER,
    title TEXT,
    year INTEGER,
    source TEXT,
    total INTEGER,
    ok INTEGER,
    mismatch INTEGER,
    manual INTEGER,
    checklog INTEGER
);
CREATE TABLE IF NOT EXISTS entries (
    run_id INTEGER NOT NULL REFERENCES runs(id),
    rank INTEGER,
    callsign TEXT,
    category TEXT,
    place TEXT,
    country TEXT,
    claimed_qso INTEGER,
    claimed_points INTEGER,
    claimed_mult INTEGER,
    claimed_total INTEGER,
    qso INTEGER,
    points INTEGER,
    mult INTEGER,
    total INTEGER,
    class TEXT,
    reason TEXT,
    source TEXT,
    digest TEXT
);
CREATE INDEX IF NOT EXISTS entries_run ON entries(run_id, rank);`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// SaveRun stores the run header and every ranked entry in one transaction
// and returns the new run id. Final figures are the override-adjusted ones.
func (a *Archive) SaveRun(ctx context.Context, info RunInfo, standings []ranking.Ranked) (int64, error) {
	if info.At.IsZero() {
		info.At = time.Now()
	}
	var st store.Status
	for _, r := range standings {
		st.Add(r.Entry)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("results: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO runs (run_at, title, year, source, total, ok, mismatch, manual, checklog)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		info.At.UTC().Unix(), info.Title, info.Year, info.Source,
		st.Total, st.OK, st.Mismatch, st.Manual, st.Checklog)
	if err != nil {
		return 0, fmt.Errorf("results: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("results: run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO entries (
    run_id, rank, callsign, category, place, country,
    claimed_qso, claimed_points, claimed_mult, claimed_total,
    qso, points, mult, total, class, reason, source, digest
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("results: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range standings {
		e := r.Entry
		final := e.Recomputed
		if _, err := stmt.ExecContext(ctx,
			runID, r.Rank, e.Callsign, e.Category, e.Place, e.Country,
			nullInt(e.Claimed.QSO), nullInt(e.Claimed.Points), nullInt(e.Claimed.Mult), nullInt(e.Claimed.Total),
			final.QSO, final.Points, final.Mult, final.Total,
			store.Classify(e).String(), e.Reason, e.Source, fmt.Sprintf("%016x", e.Digest),
		); err != nil {
			return 0, fmt.Errorf("results: insert %s: %w", e.Callsign, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("results: commit: %w", err)
	}
	a.logf("Results: archived run %d (%s)", runID, st)
	return runID, nil
}

// LatestRun returns the most recent run header.
func (a *Archive) LatestRun(ctx context.Context) (Run, error) {
	var run Run
	var at int64
	err := a.db.QueryRowContext(ctx, `
SELECT id, run_at, title, year, source, total, ok, mismatch, manual, checklog
FROM runs ORDER BY id DESC LIMIT 1`).Scan(
		&run.ID, &at, &run.Title, &run.Year, &run.Source,
		&run.Status.Total, &run.Status.OK, &run.Status.Mismatch, &run.Status.Manual, &run.Status.Checklog)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("results: latest run: %w", err)
	}
	run.At = time.Unix(at, 0).UTC()
	return run, nil
}

// RunEntries returns the entries of a run in archived order.
func (a *Archive) RunEntries(ctx context.Context, runID int64) ([]Row, error) {
	rows, err := a.db.QueryContext(ctx, `
SELECT rank, callsign, category, place, country,
       claimed_qso, claimed_points, claimed_mult, claimed_total,
       qso, points, mult, total, class, reason, source, digest
FROM entries WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("results: query entries: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var cq, cp, cm, ct sql.NullInt64
		var class, digest string
		if err := rows.Scan(&r.Rank, &r.Callsign, &r.Category, &r.Place, &r.Country,
			&cq, &cp, &cm, &ct,
			&r.Final.QSO, &r.Final.Points, &r.Final.Mult, &r.Final.Total,
			&class, &r.Reason, &r.Source, &digest); err != nil {
			return nil, fmt.Errorf("results: scan entry: %w", err)
		}
		r.Claimed = contest.Claimed{QSO: fromNull(cq), Points: fromNull(cp), Mult: fromNull(cm), Total: fromNull(ct)}
		r.Class = store.ParseClass(class)
		r.Digest, _ = strconv.ParseUint(digest, 16, 64)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PreviousDigests maps callsign to digest for the latest archived run, so a
// reload can tell which submissions changed since then.
func (a *Archive) PreviousDigests(ctx context.Context) (map[string]uint64, error) {
	run, err := a.LatestRun(ctx)
	if errors.Is(err, ErrNoRuns) {
		return map[string]uint64{}, nil
	}
	if err != nil {
		return nil, err
	}
	rows, err := a.RunEntries(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(rows))
	for _, r := range rows {
		out[r.Callsign] = r.Digest
	}
	return out, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func fromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return contest.Int(int(v.Int64))
}
