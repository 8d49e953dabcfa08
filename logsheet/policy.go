package logsheet

import (
	"regexp"
	"strings"
)

// StandardPoints is the contest's per-contact value, used whenever a line
// does not state its points.
const StandardPoints = 2

// PointPolicy decides the point value of a contact whose point column is
// missing, unparsable or not positive. Each format declares its own row;
// the rows differ on purpose and must not be unified.
type PointPolicy struct {
	Name string
	// ZeroSuffix matches a line ending that proves the contact scored zero.
	ZeroSuffix *regexp.Regexp
	// ZeroMarkers are lower-case substrings that mark a dupe worth zero.
	ZeroMarkers []string
	// KeepNegative passes parsed negative values through untouched.
	KeepNegative bool
	// KeepParsed passes any parsed value (zero included) through.
	KeepParsed bool
	// Default is used when nothing above applies.
	Default int
}

var (
	spaceZeroSuffix = regexp.MustCompile(`\s0\s*$`)
	commaZeroSuffix = regexp.MustCompile(`,0\s*$`)
)

// Declared point policies, one per parsing branch.
var (
	policyCTESTWIN = PointPolicy{
		Name:        "ctestwin",
		ZeroSuffix:  spaceZeroSuffix,
		ZeroMarkers: []string{"dup"},
		Default:     StandardPoints,
	}
	policyHLTST = PointPolicy{
		Name:       "hltst",
		ZeroSuffix: spaceZeroSuffix,
		Default:    StandardPoints,
	}
	policyZLOG = PointPolicy{
		Name:       "zlog",
		ZeroSuffix: spaceZeroSuffix,
		Default:    StandardPoints,
	}
	// policyCSVHeader inspects only the Rmks column and keeps negative
	// values, unlike the positional branch.
	policyCSVHeader = PointPolicy{
		Name:         "csv-header",
		ZeroMarkers:  []string{"dupe"},
		KeepNegative: true,
		Default:      StandardPoints,
	}
	policyCSVPositional = PointPolicy{
		Name:        "csv-positional",
		ZeroSuffix:  commaZeroSuffix,
		ZeroMarkers: []string{"dupe"},
		Default:     StandardPoints,
	}
	policyCSVReduced = PointPolicy{
		Name:       "csv-reduced",
		KeepParsed: true,
		Default:    StandardPoints,
	}
)

// Policies lists every declared policy, for inspection and tests.
func Policies() []PointPolicy {
	return []PointPolicy{
		policyCTESTWIN, policyHLTST, policyZLOG,
		policyCSVHeader, policyCSVPositional, policyCSVReduced,
	}
}

// Resolve returns the final point value. parsed tells whether pts came
// from a numeric token; evidence is the text the policy inspects (the raw
// line, or the remarks column for headered CSV).
func (p PointPolicy) Resolve(pts int, parsed bool, evidence string) int {
	if parsed {
		if pts > 0 || p.KeepParsed {
			return pts
		}
		if pts < 0 && p.KeepNegative {
			return pts
		}
	}
	if p.ZeroSuffix != nil && p.ZeroSuffix.MatchString(evidence) {
		return 0
	}
	if len(p.ZeroMarkers) > 0 {
		low := strings.ToLower(evidence)
		for _, marker := range p.ZeroMarkers {
			if strings.Contains(low, marker) {
				return 0
			}
		}
	}
	return p.Default
}
