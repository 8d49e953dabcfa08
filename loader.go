package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"contestcheck/store"
	"contestcheck/strutil"
	"contestcheck/submission"
)

type loadFailure struct {
	File string
	Err  error
}

// loadReport summarises one directory load. Failures never stop the load.
type loadReport struct {
	Files    int
	Loaded   int
	Replaced int
	Failures []loadFailure
}

func (r loadReport) String() string {
	return fmt.Sprintf("files=%d loaded=%d replaced=%d errors=%d", r.Files, r.Loaded, r.Replaced, len(r.Failures))
}

// Purpose: List submission files of a directory.
// Key aspects: Patterns are matched case-insensitively on the base name;
// the result is sorted and free of duplicates.
// Upstream: loadSubmissions.
// Downstream: os.ReadDir and filepath.Match.
func listSubmissions(dir string, patterns []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read submissions dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		for _, p := range patterns {
			ok, err := filepath.Match(strings.ToLower(strings.TrimSpace(p)), name)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", p, err)
			}
			if ok {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func readSubmission(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strutil.DecodeText(data), nil
}

// Purpose: Parse every submission file of dir into the store.
// Key aspects: Each file is independent; a failure is recorded and the
// next file is parsed. Later files replace earlier entries of the same
// callsign.
// Upstream: checker.reload.
// Downstream: submission.Parse and store.Put.
func loadSubmissions(dir string, patterns []string, opts submission.Options, st *store.Store) (loadReport, error) {
	files, err := listSubmissions(dir, patterns)
	if err != nil {
		return loadReport{}, err
	}
	report := loadReport{Files: len(files)}
	for _, path := range files {
		name := filepath.Base(path)
		text, err := readSubmission(path)
		if err != nil {
			report.Failures = append(report.Failures, loadFailure{File: name, Err: err})
			continue
		}
		fileOpts := opts
		fileOpts.Source = name
		entry, err := submission.Parse(text, "", "", fileOpts)
		if err != nil {
			report.Failures = append(report.Failures, loadFailure{File: name, Err: err})
			continue
		}
		replaced, err := st.Put(entry)
		if err != nil {
			report.Failures = append(report.Failures, loadFailure{File: name, Err: err})
			continue
		}
		report.Loaded++
		if replaced {
			report.Replaced++
		}
	}
	return report, nil
}

// Purpose: Add one submission outside the directory scan.
// Key aspects: call and place act as fallbacks the way a manual paste does;
// a submission without any callsign is rejected with ErrNoCallsign.
// Upstream: main -add flag.
// Downstream: submission.Parse and store.Put.
func addSubmission(path, call, place string, opts submission.Options, st *store.Store) (string, error) {
	text, err := readSubmission(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("submission is empty")
	}
	opts.Source = "(added)"
	if path != "-" {
		opts.Source = filepath.Base(path)
	}
	entry, err := submission.Parse(text, call, place, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", opts.Source, err)
	}
	if _, err := st.Put(entry); err != nil {
		return "", err
	}
	return entry.Callsign, nil
}
