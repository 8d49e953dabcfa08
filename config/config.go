package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable that overrides DefaultPath.
const EnvPath = "CONTESTCHECK_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath names a config.
const DefaultPath = "data/config"

// UI modes.
const (
	UIModeHeadless = "headless"
	UIModeTable    = "table"
)

// Config represents the complete checker configuration
type Config struct {
	Contest    ContestConfig  `yaml:"contest"`
	Categories CategoryConfig `yaml:"categories"`
	Checklog   ChecklogConfig `yaml:"checklog"`
	Paths      PathsConfig    `yaml:"paths"`
	Logging    LoggingConfig  `yaml:"logging"`
	UI         UIConfig       `yaml:"ui"`

	// LoadedFrom is the file or directory the config was read from.
	LoadedFrom string `yaml:"-"`
}

// ContestConfig describes the contest being checked
type ContestConfig struct {
	Title     string `yaml:"title"`
	Year      int    `yaml:"year"`
	Organizer string `yaml:"organizer"`
	// ScoreBand is the SCORE BAND attribute holding the claimed figures.
	ScoreBand string `yaml:"score_band"`
}

// CategoryConfig holds category labels and the award table
type CategoryConfig struct {
	Labels       map[string]string `yaml:"labels"`
	InArea       []string          `yaml:"in_area"`
	AreaCategory string            `yaml:"area_category"`
	AwardTopN    int               `yaml:"award_top_n"`
}

// ChecklogConfig lists organizer/reference stations
type ChecklogConfig struct {
	Callsigns []string `yaml:"callsigns"`
}

// PathsConfig contains file locations
type PathsConfig struct {
	Submissions string   `yaml:"submissions"`
	Overrides   string   `yaml:"overrides"`
	ResultsDB   string   `yaml:"results_db"`
	CTYPlist    string   `yaml:"cty_plist"`
	CTYURL      string   `yaml:"cty_url"`
	ExportDir   string   `yaml:"export_dir"`
	Patterns    []string `yaml:"patterns"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// UIConfig selects the local view
type UIConfig struct {
	Mode string `yaml:"mode"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Contest: ContestConfig{
			Title:     "AM Contest",
			ScoreBand: "50MHz",
		},
		Categories: CategoryConfig{
			Labels: map[string]string{
				"1F":  "1エリア内固定局",
				"1P":  "1エリア内移動局",
				"1X":  "1エリア外局",
				"1Q":  "QRP局",
				"SWL": "SWL",
			},
			InArea:       []string{"1F", "1P", "1Q", "SWL"},
			AreaCategory: "1X",
			AwardTopN:    3,
		},
		Paths: PathsConfig{
			Submissions: "data/submissions",
			Patterns:    []string{"*.log", "*.txt", "*.dat", "*.adi", "*.sum", "*.xml"},
		},
		Logging: LoggingConfig{
			Dir:           "data/logs",
			RetentionDays: 7,
		},
		UI: UIConfig{Mode: UIModeHeadless},
	}
}

// ResolvePath picks the config location: the flag value, then EnvPath,
// then DefaultPath.
func ResolvePath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads configuration from a YAML file or from every *.yaml/*.yml file
// of a directory, merged in file-name order (later files win key by key).
// Missing values keep their defaults.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = yamlFiles(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no YAML files in config directory %s", path)
		}
	} else {
		files = []string{path}
	}

	merged := map[string]any{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filepath.Base(file), err)
		}
		mergeMaps(merged, doc)
	}

	combined, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(combined, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.LoadedFrom = path
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config directory %s does not exist", dir)
		}
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// mergeMaps copies src into dst, descending into nested mappings.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				mergeMaps(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}

func (c *Config) normalize() error {
	c.Contest.ScoreBand = strings.TrimSpace(c.Contest.ScoreBand)
	if c.Contest.ScoreBand == "" {
		c.Contest.ScoreBand = "50MHz"
	}
	if c.Categories.AwardTopN <= 0 {
		c.Categories.AwardTopN = 3
	}
	for i, call := range c.Checklog.Callsigns {
		c.Checklog.Callsigns[i] = strings.ToUpper(strings.TrimSpace(call))
	}
	if len(c.Paths.Patterns) == 0 {
		c.Paths.Patterns = Default().Paths.Patterns
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = 7
	}
	c.UI.Mode = strings.ToLower(strings.TrimSpace(c.UI.Mode))
	switch c.UI.Mode {
	case "":
		c.UI.Mode = UIModeHeadless
	case UIModeHeadless, UIModeTable:
	default:
		return fmt.Errorf("invalid ui.mode %q (want %s or %s)", c.UI.Mode, UIModeHeadless, UIModeTable)
	}
	return nil
}

// OverridesPath returns the override document location, defaulting to
// manual_overrides.json inside the submissions folder.
func (p PathsConfig) OverridesPath() string {
	if strings.TrimSpace(p.Overrides) != "" {
		return p.Overrides
	}
	return filepath.Join(p.Submissions, "manual_overrides.json")
}

// Display renders a category code for people: "CODE label", just the label
// for SWL, the bare code when no label is known.
func (c CategoryConfig) Display(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	label := c.Labels[code]
	switch {
	case label == "":
		return code
	case code == "SWL":
		return label
	default:
		return code + " " + label
	}
}

// Set returns the checklog callsigns as a lookup set.
func (c ChecklogConfig) Set() map[string]bool {
	out := make(map[string]bool, len(c.Callsigns))
	for _, call := range c.Callsigns {
		if call = strings.ToUpper(strings.TrimSpace(call)); call != "" {
			out[call] = true
		}
	}
	return out
}

// Print displays the configuration
func (c *Config) Print() {
	fmt.Printf("Contest: %s %d (score band %s)\n", c.Contest.Title, c.Contest.Year, c.Contest.ScoreBand)
	fmt.Printf("Submissions: %s (%s)\n", c.Paths.Submissions, strings.Join(c.Paths.Patterns, " "))
	fmt.Printf("Overrides: %s\n", c.Paths.OverridesPath())
	if c.Paths.ResultsDB != "" {
		fmt.Printf("Results archive: %s\n", c.Paths.ResultsDB)
	}
	if c.Paths.CTYPlist != "" {
		fmt.Printf("CTY: %s\n", c.Paths.CTYPlist)
	}
	if c.Paths.ExportDir != "" {
		fmt.Printf("Export: %s\n", c.Paths.ExportDir)
	}
	if len(c.Checklog.Callsigns) > 0 {
		fmt.Printf("Checklogs: %s\n", strings.Join(c.Checklog.Callsigns, ", "))
	}
	fmt.Printf("Awards: top %d in %s; per area in %s\n",
		c.Categories.AwardTopN, strings.Join(c.Categories.InArea, ", "), c.Categories.AreaCategory)
}
