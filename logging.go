package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"contestcheck/config"
)

const (
	logStampLayout = "2006/01/02 15:04:05"
	logDayLayout   = "2006-01-02"
	logFilePrefix  = "contestcheck-"
	logFileSuffix  = ".log"
	maxPendingLog  = 16 * 1024
)

// logDir appends lines to one file per UTC day and keeps the newest
// retention days of files.
type logDir struct {
	dir  string
	keep int

	day  string
	file *os.File

	// failed is set after the first error so a broken disk reports once.
	failed bool
	report io.Writer
}

func openLogDir(dir string, keep int, report io.Writer) (*logDir, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("log directory is empty")
	}
	if keep <= 0 {
		keep = 7
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %q: %w", dir, err)
	}
	d := &logDir{dir: dir, keep: keep, report: report}
	if err := pruneLogs(dir, time.Now().UTC(), keep); err != nil {
		d.fail(fmt.Errorf("prune %s: %w", dir, err))
	}
	return d, nil
}

func logFileName(day time.Time) string {
	return logFilePrefix + day.UTC().Format(logDayLayout) + logFileSuffix
}

// logFileDay extracts the day key of a log file name; ok is false for any
// other file sharing the directory.
func logFileDay(name string) (string, bool) {
	if !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileSuffix) {
		return "", false
	}
	day := strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), logFileSuffix)
	if _, err := time.Parse(logDayLayout, day); err != nil {
		return "", false
	}
	return day, true
}

// pruneLogs removes log files older than keep days (today counts as one).
// Day keys are ISO dates, so string order is date order.
func pruneLogs(dir string, now time.Time, keep int) error {
	if keep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	oldest := now.UTC().AddDate(0, 0, -(keep - 1)).Format(logDayLayout)
	var stale []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if day, ok := logFileDay(entry.Name()); ok && day < oldest {
			stale = append(stale, entry.Name())
		}
	}
	sort.Strings(stale)
	for _, name := range stale {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (d *logDir) fail(err error) {
	if d.failed || d.report == nil {
		return
	}
	d.failed = true
	fmt.Fprintf(d.report, "Logging: %v (further file errors suppressed)\n", err)
}

// appendLine must be called with the owning sessionLog locked.
func (d *logDir) appendLine(stamped string, now time.Time) {
	day := now.UTC().Format(logDayLayout)
	if d.file == nil || d.day != day {
		d.rotate(now)
	}
	if d.file == nil {
		return
	}
	if _, err := io.WriteString(d.file, stamped+"\n"); err != nil {
		d.fail(fmt.Errorf("write %s: %w", d.file.Name(), err))
	}
}

func (d *logDir) rotate(now time.Time) {
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
	}
	path := filepath.Join(d.dir, logFileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		d.fail(fmt.Errorf("open %s: %w", path, err))
		return
	}
	d.file = f
	d.day = now.UTC().Format(logDayLayout)
	if err := pruneLogs(d.dir, now, d.keep); err != nil {
		d.fail(fmt.Errorf("prune %s: %w", d.dir, err))
	}
}

func (d *logDir) close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.day = ""
	return err
}

// sessionLog is the log.Logger output of one run. Complete lines are
// stamped and copied to the console and, when enabled, to the log
// directory.
type sessionLog struct {
	mu      sync.Mutex
	pending []byte
	console io.Writer
	files   *logDir
	now     func() time.Time
}

// Purpose: Build the run's log output from configuration.
// Key aspects: Always returns a usable writer; a file logging error is
// returned alongside it so the run continues with console output only.
// Upstream: main.run.
// Downstream: openLogDir.
func setupLogging(cfg config.LoggingConfig, console io.Writer) (*sessionLog, error) {
	sl := &sessionLog{console: console, now: time.Now}
	if !cfg.Enabled {
		return sl, nil
	}
	files, err := openLogDir(cfg.Dir, cfg.RetentionDays, console)
	if err != nil {
		return sl, err
	}
	sl.files = files
	return sl, nil
}

// SetConsole swaps the console writer; nil mutes it while the table view
// owns the terminal.
func (s *sessionLog) SetConsole(w io.Writer) {
	s.mu.Lock()
	s.console = w
	s.mu.Unlock()
}

func (s *sessionLog) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, p...)
	for {
		idx := bytes.IndexByte(s.pending, '\n')
		if idx < 0 {
			break
		}
		s.emitLocked(s.pending[:idx])
		s.pending = s.pending[idx+1:]
	}
	if len(s.pending) > maxPendingLog {
		s.emitLocked(s.pending)
		s.pending = nil
	}
	return len(p), nil
}

func (s *sessionLog) emitLocked(raw []byte) {
	line := strings.TrimRight(string(raw), "\r")
	if line == "" {
		return
	}
	now := s.now().UTC()
	stamped := now.Format(logStampLayout) + " " + line
	if s.console != nil {
		_, _ = io.WriteString(s.console, stamped+"\n")
	}
	if s.files != nil {
		s.files.appendLine(stamped, now)
	}
}

// Close flushes an unterminated last line and closes the day file.
func (s *sessionLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > 0 {
		s.emitLocked(s.pending)
		s.pending = nil
	}
	if s.files == nil {
		return nil
	}
	return s.files.close()
}
