// Package contest defines the records shared by the parsers, the scoring
// engine and the ranking engine: one Contact per logged QSO and one Entry
// per participating station.
package contest

import "strings"

// Contact is a single logged QSO. Dup and Points are rewritten by the
// duplicate pass; everything else is fixed at parse time.
type Contact struct {
	Date   string
	Time   string
	Band   string
	Mode   string
	Call   string
	Sent   string
	Rcvd   string
	Points int
	Dup    bool
	Raw    string
}

// Figures groups the four numbers that describe a score.
type Figures struct {
	QSO    int
	Points int
	Mult   int
	Total  int
}

// Claimed holds the submitter's self-reported figures. A nil field was not
// declared and never produces a discrepancy.
type Claimed struct {
	QSO    *int
	Points *int
	Mult   *int
	Total  *int
}

// Override is a manual correction entered by the organizer. Nil figures
// leave the recomputed value in place. Place, when non-blank, replaces the
// displayed operating place.
type Override struct {
	Enabled bool
	QSO     *int
	Points  *int
	Mult    *int
	Total   *int
	Place   string
	Note    string
}

// IsZero reports whether the override carries no correction at all.
func (o *Override) IsZero() bool {
	if o == nil {
		return true
	}
	return !o.Enabled && o.QSO == nil && o.Points == nil && o.Mult == nil &&
		o.Total == nil && strings.TrimSpace(o.Place) == "" && strings.TrimSpace(o.Note) == ""
}

// Field names a scored figure in discrepancy reports.
type Field string

const (
	FieldQSO    Field = "qso"
	FieldPoints Field = "points"
	FieldMult   Field = "mult"
	FieldTotal  Field = "total"
)

// Label is the human-readable name used in reasons.
func (f Field) Label() string {
	switch f {
	case FieldQSO:
		return "QSO"
	case FieldPoints:
		return "points"
	case FieldMult:
		return "multiplier"
	case FieldTotal:
		return "total"
	default:
		return string(f)
	}
}

// Discrepancy records one claimed figure that differs from the recomputed one.
type Discrepancy struct {
	Field      Field
	Claimed    int
	Recomputed int
}

// Entry is one contest participant keyed by Callsign.
type Entry struct {
	Callsign     string
	OpCallsign   string
	ContestName  string
	Category     string
	CategoryName string
	// Place is the displayed operating place: ParsedPlace unless an enabled
	// override names another one.
	Place        string
	ParsedPlace  string
	Address      string
	Comments     string
	LogType      string
	Country      string

	Claimed    Claimed
	Contacts   []Contact
	Recomputed Figures
	Override   *Override

	Match         bool
	Reason        string
	Discrepancies []Discrepancy

	Source  string
	RawText string
	Digest  uint64

	Checklog bool
}

// ManualEnabled reports whether an enabled override is installed.
func (e *Entry) ManualEnabled() bool {
	return e != nil && e.Override != nil && e.Override.Enabled
}

// Int returns a pointer to v; handy for literal Claimed/Override values.
func Int(v int) *int {
	return &v
}
