package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDirectoryMergesFiles(t *testing.T) {
	dir := t.TempDir()

	contest := `contest:
  title: "Spring AM Contest"
  year: 2025
categories:
  labels:
    2X: "Guest"
`
	paths := `contest:
  organizer: "JA1ZZZ"
paths:
  submissions: "/srv/logs"
  results_db: "/srv/results.db"
checklog:
  callsigns: [" ja1zzz ", "JA1YYY"]
`
	if err := os.WriteFile(filepath.Join(dir, "contest.yaml"), []byte(contest), 0o644); err != nil {
		t.Fatalf("write contest.yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "paths.yml"), []byte(paths), 0o644); err != nil {
		t.Fatalf("write paths.yml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not: [yaml"), 0o644); err != nil {
		t.Fatalf("write notes.txt: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := filepath.Clean(cfg.LoadedFrom); got != filepath.Clean(dir) {
		t.Fatalf("expected LoadedFrom=%s, got %s", dir, got)
	}
	if cfg.Contest.Title != "Spring AM Contest" || cfg.Contest.Year != 2025 {
		t.Fatalf("contest section not loaded: %+v", cfg.Contest)
	}
	if cfg.Contest.Organizer != "JA1ZZZ" {
		t.Fatalf("expected contest.organizer to merge from paths.yml, got %q", cfg.Contest.Organizer)
	}
	if cfg.Contest.ScoreBand != "50MHz" {
		t.Fatalf("expected default score band, got %q", cfg.Contest.ScoreBand)
	}
	if cfg.Paths.Submissions != "/srv/logs" || len(cfg.Paths.Patterns) != 6 {
		t.Fatalf("paths not merged with defaults: %+v", cfg.Paths)
	}
	if cfg.Paths.OverridesPath() != filepath.Join("/srv/logs", "manual_overrides.json") {
		t.Fatalf("unexpected overrides path %q", cfg.Paths.OverridesPath())
	}
	if cfg.Categories.Labels["2X"] != "Guest" || cfg.Categories.Labels["1F"] == "" {
		t.Fatalf("labels should extend the defaults: %+v", cfg.Categories.Labels)
	}
	set := cfg.Checklog.Set()
	if !set["JA1ZZZ"] || !set["JA1YYY"] || len(set) != 2 {
		t.Fatalf("unexpected checklog set %v", set)
	}
	if cfg.UI.Mode != UIModeHeadless {
		t.Fatalf("expected headless default, got %q", cfg.UI.Mode)
	}
}

func TestLoadSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  mode: TABLE\ncategories:\n  award_top_n: 5\n"), 0o644); err != nil {
		t.Fatalf("write runtime.yaml: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.UI.Mode != UIModeTable || cfg.Categories.AwardTopN != 5 {
		t.Fatalf("unexpected config %+v %+v", cfg.UI, cfg.Categories)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for directory without YAML files")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing path")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("ui:\n  mode: dashboard\n"), 0o644); err != nil {
		t.Fatalf("write bad.yaml: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected invalid ui.mode to be rejected")
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "/etc/contestcheck")
	if got := ResolvePath(" custom "); got != "custom" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolvePath(""); got != "/etc/contestcheck" {
		t.Fatalf("env should be used, got %q", got)
	}
	t.Setenv(EnvPath, "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Fatalf("default expected, got %q", got)
	}
}

func TestCategoryDisplay(t *testing.T) {
	c := Default().Categories
	cases := map[string]string{
		"1F":  "1F 1エリア内固定局",
		"SWL": "SWL",
		"9Z":  "9Z",
		" ":   "",
	}
	for code, want := range cases {
		if got := c.Display(code); got != want {
			t.Fatalf("Display(%q) = %q, want %q", code, got, want)
		}
	}
}
