package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"contestcheck/config"
	"contestcheck/contest"
	"contestcheck/cty"
	"contestcheck/download"
	"contestcheck/overrides"
	"contestcheck/ranking"
	"contestcheck/results"
	"contestcheck/store"
	"contestcheck/submission"
)

const ctyDownloadTimeout = 30 * time.Second

// checker owns one checking session: the loaded entries plus the
// collaborators that feed and consume them.
type checker struct {
	cfg   *config.Config
	store *store.Store
	cty   *cty.Database
	logf  func(string, ...any)
}

func newChecker(cfg *config.Config, logf func(string, ...any)) *checker {
	return &checker{
		cfg:   cfg,
		store: store.New(logf),
		logf:  logf,
	}
}

func (c *checker) options() submission.Options {
	return submission.Options{
		Band:     c.cfg.Contest.ScoreBand,
		Checklog: c.cfg.Checklog.Set(),
	}
}

// Purpose: Fetch cty.plist from paths.cty_url.
// Key aspects: Conditional GET; the file is replaced only when the new copy
// parses. Runs when forced or when the local file is missing.
// Upstream: main startup (-refresh-cty).
// Downstream: download.Fetcher, cty.Load.
func (c *checker) refreshCTY(ctx context.Context, force bool) error {
	url := strings.TrimSpace(c.cfg.Paths.CTYURL)
	path := strings.TrimSpace(c.cfg.Paths.CTYPlist)
	if url == "" || path == "" {
		if force {
			return fmt.Errorf("paths.cty_url and paths.cty_plist must both be set to refresh cty.plist")
		}
		return nil
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	f := &download.Fetcher{
		Timeout:   ctyDownloadTimeout,
		UserAgent: "contestcheck/" + Version,
		Logf:      c.logf,
	}
	res, err := f.Fetch(ctx, url, path, download.Options{
		Force: force,
		Validate: func(staged string) error {
			_, err := cty.Load(staged)
			return err
		},
	})
	if err != nil {
		return err
	}
	c.logf("CTY: %s %s (%d bytes)", path, res.Outcome, res.Bytes)
	return nil
}

// Purpose: Load the optional prefix database used to label countries.
// Key aspects: A missing or broken file only disables the annotation.
// Upstream: main startup.
// Downstream: cty.Load.
func (c *checker) loadCTY() {
	path := strings.TrimSpace(c.cfg.Paths.CTYPlist)
	if path == "" {
		return
	}
	db, err := cty.Load(path)
	if err != nil {
		c.logf("CTY: %v; country annotation disabled", err)
		return
	}
	c.cty = db
	c.logf("CTY: loaded %d prefixes from %s", db.Len(), path)
}

// Purpose: Full reload of the submissions directory.
// Key aspects: Loads every file, then re-applies overrides, checklogs and
// country labels to all entries, matching the order a manual reload uses.
// Upstream: main.
// Downstream: loadSubmissions, overrides.Load, store.
func (c *checker) reload() (loadReport, error) {
	report, err := loadSubmissions(c.cfg.Paths.Submissions, c.cfg.Paths.Patterns, c.options(), c.store)
	if err != nil {
		return report, err
	}
	c.refresh()
	return report, nil
}

// refresh re-applies everything derived from configuration and the
// override document.
func (c *checker) refresh() {
	ovs, err := overrides.Load(c.cfg.Paths.OverridesPath())
	if err != nil {
		c.logf("Overrides: %v", err)
	}
	if n := c.store.ApplyOverrides(ovs); n > 0 {
		c.logf("Overrides: applied %d manual corrections", n)
	}
	c.store.MarkChecklog(c.cfg.Checklog.Set())
	c.annotateCountries()
}

func (c *checker) annotateCountries() {
	if c.cty == nil {
		return
	}
	for _, e := range c.store.Entries() {
		if info, ok := c.cty.Lookup(e.Callsign); ok {
			e.Country = info.Country
		}
	}
}

// Standings ranks the current entries.
func (c *checker) Standings() []ranking.Ranked {
	return ranking.Rank(c.store.Entries())
}

// Status summarises the current entries.
func (c *checker) Status() store.Status {
	return c.store.Status()
}

func (c *checker) awardConfig() ranking.AwardConfig {
	return ranking.AwardConfig{
		InArea:       c.cfg.Categories.InArea,
		AreaCategory: c.cfg.Categories.AreaCategory,
		TopN:         c.cfg.Categories.AwardTopN,
	}
}

// Purpose: Install or remove a manual correction and persist the document.
// Key aspects: The document always mirrors the enabled overrides held by
// the store.
// Upstream: table view 'x' key, main -clear flag.
// Downstream: store.SetOverride and overrides.Save.
func (c *checker) setOverride(callsign string, ov *contest.Override) error {
	if err := c.store.SetOverride(callsign, ov); err != nil {
		return err
	}
	path := c.cfg.Paths.OverridesPath()
	if err := overrides.Save(path, c.store.Overrides()); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}
	c.logf("Overrides: updated %s (%s)", strings.ToUpper(callsign), path)
	return nil
}

func (c *checker) clearOverride(callsign string) error {
	return c.setOverride(callsign, nil)
}

// Purpose: Archive the current standings.
// Key aspects: Reports how many submissions changed since the last run.
// Upstream: main after ranking.
// Downstream: results.Open and Archive.SaveRun.
func (c *checker) archive(ctx context.Context, standings []ranking.Ranked) error {
	path := strings.TrimSpace(c.cfg.Paths.ResultsDB)
	if path == "" {
		return nil
	}
	a, err := results.Open(path, c.logf)
	if err != nil {
		return err
	}
	defer a.Close()

	prev, err := a.PreviousDigests(ctx)
	if err != nil {
		return err
	}
	if len(prev) > 0 {
		changed := 0
		for _, r := range standings {
			if d, ok := prev[r.Entry.Callsign]; !ok || d != r.Entry.Digest {
				changed++
			}
		}
		c.logf("Results: %d of %d submissions new or changed since the last run", changed, len(standings))
	}
	_, err = a.SaveRun(ctx, results.RunInfo{
		Title:  c.cfg.Contest.Title,
		Year:   c.cfg.Contest.Year,
		Source: c.cfg.Paths.Submissions,
	}, standings)
	return err
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

func safeFileName(call string) string {
	name := unsafeFileChars.ReplaceAllString(strings.TrimSpace(call), "_")
	if name == "" {
		return "UNKNOWN"
	}
	return name
}

// Purpose: Write every entry's submission with its log in canonical form.
// Key aspects: One <CALL>.log per entry; file-unsafe characters become "_".
// Upstream: main -export flag.
// Downstream: submission.Export.
func (c *checker) exportLogs(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	n := 0
	for _, e := range c.store.Entries() {
		path := filepath.Join(dir, safeFileName(e.Callsign)+".log")
		if err := os.WriteFile(path, []byte(submission.Export(e)), 0o644); err != nil {
			return n, fmt.Errorf("write %s: %w", path, err)
		}
		n++
	}
	return n, nil
}
