package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Health is the verdict of Preflight.
type Health int

const (
	// HealthMissing: no archive yet; Open creates one.
	HealthMissing Health = iota
	HealthOK
	// HealthQuarantined: the archive was damaged and has been moved aside.
	HealthQuarantined
)

func (h Health) String() string {
	switch h {
	case HealthMissing:
		return "missing"
	case HealthOK:
		return "ok"
	case HealthQuarantined:
		return "quarantined"
	default:
		return "unknown"
	}
}

// PreflightResult describes one archive check.
type PreflightResult struct {
	Health  Health
	Problem error
	MovedTo string
	Took    time.Duration
}

// Purpose: Vet an existing archive before Open uses it.
// Key aspects: Bounded quick_check; a damaged archive and its journal files
// get a .bad-<UTC stamp> suffix so the run starts over with an empty one.
// Upstream: Open.
// Downstream: pragma quick_check, moveAside.
func Preflight(path string, timeout time.Duration, logf func(string, ...any)) (PreflightResult, error) {
	var res PreflightResult
	if strings.TrimSpace(path) == "" {
		return res, errors.New("preflight: no archive path")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, nil
		}
		return res, fmt.Errorf("preflight: %w", err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	began := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	problem := checkFile(ctx, path)
	res.Took = time.Since(began)
	if problem == nil {
		res.Health = HealthOK
		return res, nil
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("preflight: %s not checked within %s", path, timeout)
	}

	res.Problem = problem
	moved, err := moveAside(path, time.Now().UTC())
	if err != nil {
		return res, fmt.Errorf("preflight: %v; moving it aside failed: %w", problem, err)
	}
	res.Health = HealthQuarantined
	res.MovedTo = moved
	if logf != nil {
		logf("Results: archive failed quick_check (%v); moved to %s", problem, moved)
	}
	return res, nil
}

// checkFile asks SQLite for the first problem quick_check finds.
func checkFile(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	var verdict string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check(1)").Scan(&verdict); err != nil {
		return err
	}
	if verdict != "ok" {
		return errors.New(verdict)
	}
	return nil
}

func moveAside(path string, now time.Time) (string, error) {
	stamp := ".bad-" + now.Format("20060102T150405Z")
	for i, name := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		err := os.Rename(name, name+stamp)
		switch {
		case err == nil:
		case i > 0 && errors.Is(err, os.ErrNotExist):
		default:
			return "", err
		}
	}
	return path + stamp, nil
}
