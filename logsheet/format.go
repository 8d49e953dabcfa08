// Package logsheet turns the body of a LOGSHEET block into contacts. Each
// logging program writes its own column layout, so every layout is a Format
// with its own Parser; Parse picks the parser from the declared TYPE tag.
//
// Parsers never fail: a line that does not look like a contact is skipped.
package logsheet

import (
	"strings"

	"contestcheck/contest"
)

// Format is a known log-line layout.
type Format int

const (
	// FormatCTESTWIN is the whitespace layout written by CTESTWIN and the
	// canonical layout used for re-export.
	FormatCTESTWIN Format = iota
	// FormatHLTST is the fixed-column layout written by HLTST.
	FormatHLTST
	// FormatZLOG is the zLog layout with band and mode near the end.
	FormatZLOG
	// FormatCSV is comma-delimited text with an optional header row.
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatCTESTWIN:
		return "CTESTWIN"
	case FormatHLTST:
		return "HLTST"
	case FormatZLOG:
		return "ZLOG"
	case FormatCSV:
		return "CSV"
	default:
		return "UNKNOWN"
	}
}

// Parser converts raw lines into contacts.
type Parser func(lines []string) []contest.Contact

var parsers = map[Format]Parser{
	FormatCTESTWIN: ParseCTESTWIN,
	FormatHLTST:    ParseHLTST,
	FormatZLOG:     ParseZLOG,
	FormatCSV:      ParseCSV,
}

// tagRules map substrings of the upper-cased TYPE tag to a format. Order
// matters: the first needle found wins.
var tagRules = []struct {
	needle string
	format Format
}{
	{"HLTST", FormatHLTST},
	{"ZLOG", FormatZLOG},
	{"自作", FormatCSV},
	{"CSV", FormatCSV},
	{"CTESTWIN", FormatCTESTWIN},
	{"LOGSHEETFORM", FormatCTESTWIN},
}

// defaultPlan is tried when the tag is empty or unrecognized.
var defaultPlan = []Format{FormatCTESTWIN, FormatCSV}

// Plan returns the ordered list of formats to attempt for a TYPE tag.
func Plan(tag string) []Format {
	t := strings.ToUpper(strings.TrimSpace(tag))
	if t != "" {
		for _, rule := range tagRules {
			if strings.Contains(t, rule.needle) {
				return []Format{rule.format}
			}
		}
	}
	return defaultPlan
}

// Parse runs the formats from Plan(tag) in order and returns the first
// non-empty result together with the format that produced it. When every
// attempt comes back empty the last attempted format is reported.
func Parse(lines []string, tag string) ([]contest.Contact, Format) {
	plan := Plan(tag)
	var used Format
	for _, format := range plan {
		used = format
		if contacts := parsers[format](lines); len(contacts) > 0 {
			return contacts, format
		}
	}
	return nil, used
}

// ParseWith runs a single format's parser.
func ParseWith(format Format, lines []string) []contest.Contact {
	p, ok := parsers[format]
	if !ok {
		return nil
	}
	return p(lines)
}

// hasPrefix reports whether s starts with any of the prefixes.
func hasPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
