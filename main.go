package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"contestcheck/config"
	"contestcheck/contest"
	"contestcheck/ui"

	"golang.org/x/term"
)

// Version is stamped at build time.
var Version = "dev"

// optionalInt is a flag that remembers whether it was set.
type optionalInt struct {
	v *int
}

func (o *optionalInt) String() string {
	if o == nil || o.v == nil {
		return ""
	}
	return strconv.Itoa(*o.v)
}

func (o *optionalInt) Set(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	o.v = &n
	return nil
}

type options struct {
	configPath  string
	uiMode      string
	printConfig bool
	noArchive   bool
	refreshCTY  bool
	exportDir   string
	publishDir  string

	addPath  string
	addCall  string
	addPlace string

	overrideCall string
	clearCall    string
	ovQSO        optionalInt
	ovPoints     optionalInt
	ovMult       optionalInt
	ovTotal      optionalInt
	ovNote       string
	ovPlace      string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("contestcheck", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "config file or directory (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	fs.StringVar(&o.uiMode, "ui", "", "override ui.mode (headless or table)")
	fs.BoolVar(&o.printConfig, "print-config", false, "print the effective configuration")
	fs.BoolVar(&o.noArchive, "no-archive", false, "do not archive this run to the results database")
	fs.BoolVar(&o.refreshCTY, "refresh-cty", false, "download cty.plist from paths.cty_url before loading")
	fs.StringVar(&o.exportDir, "export", "", "write every submission with a canonical log to this directory (default paths.export_dir)")
	fs.StringVar(&o.publishDir, "publish", "", "write the publication CSV files to this directory")
	fs.StringVar(&o.addPath, "add", "", "add one submission file (\"-\" reads stdin) after the directory load")
	fs.StringVar(&o.addCall, "call", "", "callsign for -add when the submission has none")
	fs.StringVar(&o.addPlace, "place", "", "operating place for -add; replaces the declared one")
	fs.StringVar(&o.overrideCall, "override", "", "install a manual correction for this callsign")
	fs.StringVar(&o.clearCall, "clear", "", "remove the manual correction of this callsign")
	fs.Var(&o.ovQSO, "qso", "override: QSO count")
	fs.Var(&o.ovPoints, "pts", "override: points")
	fs.Var(&o.ovMult, "mult", "override: multiplier")
	fs.Var(&o.ovTotal, "total", "override: total score")
	fs.StringVar(&o.ovNote, "note", "", "override: note shown with the reason")
	fs.StringVar(&o.ovPlace, "opplace", "", "override: operating place")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return o, nil
}

func (o options) override() *contest.Override {
	return &contest.Override{
		Enabled: true,
		QSO:     o.ovQSO.v,
		Points:  o.ovPoints.v,
		Mult:    o.ovMult.v,
		Total:   o.ovTotal.v,
		Note:    strings.TrimSpace(o.ovNote),
		Place:   strings.TrimSpace(o.ovPlace),
	}
}

// Purpose: Report whether stdout is a TTY for UI gating.
// Key aspects: Uses term.IsTerminal on stdout fd.
// Upstream: main UI selection.
// Downstream: term.IsTerminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// Purpose: Program body; wires configuration, loading, scoring and outputs.
// Key aspects: Every output is optional and independent; a failing archive
// or export is logged and the remaining outputs still run.
// Upstream: main.
// Downstream: checker, printReport, writePublication, ui.ResultsTable.
func run(opts options) error {
	log.SetFlags(0)
	path := config.ResolvePath(opts.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", path, err)
	}
	if opts.uiMode != "" {
		cfg.UI.Mode = strings.ToLower(strings.TrimSpace(opts.uiMode))
	}

	sessionLog, err := setupLogging(cfg.Logging, os.Stderr)
	log.SetOutput(sessionLog)
	defer sessionLog.Close()
	if err != nil {
		log.Printf("Logging: file logging disabled: %v", err)
	}
	log.Printf("Contestcheck v%s; configuration from %s", Version, cfg.LoadedFrom)
	if opts.printConfig {
		cfg.Print()
	}

	c := newChecker(cfg, log.Printf)
	if err := c.refreshCTY(context.Background(), opts.refreshCTY); err != nil {
		log.Printf("CTY: refresh failed: %v", err)
	}
	c.loadCTY()
	report, err := c.reload()
	if err != nil {
		return err
	}
	log.Printf("Loader: %s", report)
	for _, f := range report.Failures {
		log.Printf("Loader: %s: %v", f.File, f.Err)
	}

	if opts.addPath != "" {
		call, err := addSubmission(opts.addPath, opts.addCall, opts.addPlace, c.options(), c.store)
		if err != nil {
			return fmt.Errorf("add submission: %w", err)
		}
		log.Printf("Loader: added %s", call)
		c.refresh()
	}
	if call := strings.TrimSpace(opts.clearCall); call != "" {
		if err := c.clearOverride(call); err != nil {
			return err
		}
	}
	if call := strings.TrimSpace(opts.overrideCall); call != "" {
		if err := c.setOverride(call, opts.override()); err != nil {
			return err
		}
	}

	standings := c.Standings()
	printReport(os.Stdout, cfg, standings, c.Status(), report, c.awardConfig())

	exportDir := strings.TrimSpace(opts.exportDir)
	if exportDir == "" {
		exportDir = strings.TrimSpace(cfg.Paths.ExportDir)
	}
	if exportDir != "" {
		if n, err := c.exportLogs(exportDir); err != nil {
			log.Printf("Export: %v", err)
		} else {
			log.Printf("Export: wrote %d submissions to %s", n, exportDir)
		}
	}
	if dir := strings.TrimSpace(opts.publishDir); dir != "" {
		files, err := writePublication(dir, cfg.Categories, c.awardConfig(), c.store.Entries())
		if err != nil {
			log.Printf("Publish: %v", err)
		} else {
			log.Printf("Publish: wrote %d files to %s", len(files), dir)
		}
	}
	if !opts.noArchive {
		if err := c.archive(context.Background(), standings); err != nil {
			log.Printf("Results: archive failed: %v", err)
		}
	}

	switch cfg.UI.Mode {
	case config.UIModeTable:
		if !isStdoutTTY() {
			log.Printf("UI disabled (table view requires an interactive console)")
			return nil
		}
		view := ui.NewResultsTable(cfg.Contest.Title, c, cfg.Categories)
		view.OnClearOverride = c.clearOverride
		// The view owns the terminal; log lines go to the day file only.
		sessionLog.SetConsole(nil)
		defer sessionLog.SetConsole(os.Stderr)
		return view.Run()
	default:
		return nil
	}
}
