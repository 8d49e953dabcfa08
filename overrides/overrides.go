// Package overrides reads and writes the manual override document
// (manual_overrides.json): a JSON object keyed by callsign whose values
// hold the organizer's corrections.
package overrides

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"contestcheck/contest"
)

// FileName is the conventional document name inside a submissions folder.
const FileName = "manual_overrides.json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// record is one value of the document. Enabled defaults to true when the
// key is missing.
type record struct {
	Enabled *bool  `json:"enabled,omitempty"`
	QSO     *int   `json:"qso"`
	Points  *int   `json:"pts"`
	Mult    *int   `json:"mult"`
	Total   *int   `json:"total"`
	Note    string `json:"note"`
	Place   string `json:"opplace"`
}

func (r record) override() *contest.Override {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &contest.Override{
		Enabled: enabled,
		QSO:     r.QSO,
		Points:  r.Points,
		Mult:    r.Mult,
		Total:   r.Total,
		Note:    r.Note,
		Place:   r.Place,
	}
}

func fromOverride(ov *contest.Override) record {
	enabled := ov.Enabled
	return record{
		Enabled: &enabled,
		QSO:     ov.QSO,
		Points:  ov.Points,
		Mult:    ov.Mult,
		Total:   ov.Total,
		Note:    ov.Note,
		Place:   ov.Place,
	}
}

// Decode parses a document. Callsign keys are upper-cased. A value that is
// not an object (null and bare numbers included) is left out of the map and
// named in the returned error; the readable records are still returned.
func Decode(data []byte) (map[string]*contest.Override, error) {
	out := make(map[string]*contest.Override)
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}
	var bad []string
	for call, msg := range raw {
		var r record
		if !isObject(msg) || json.Unmarshal(msg, &r) != nil {
			bad = append(bad, call)
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(call))
		if key == "" {
			continue
		}
		out[key] = r.override()
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return out, fmt.Errorf("decode overrides: unreadable records for %s", strings.Join(bad, ", "))
	}
	return out, nil
}

func isObject(msg jsoniter.RawMessage) bool {
	trimmed := strings.TrimSpace(string(msg))
	return strings.HasPrefix(trimmed, "{")
}

// Encode renders overrides as an indented document with sorted keys.
func Encode(ovs map[string]*contest.Override) ([]byte, error) {
	doc := make(map[string]record, len(ovs))
	for call, ov := range ovs {
		if ov == nil {
			continue
		}
		doc[call] = fromOverride(ov)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode overrides: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads the document at path. A missing file is an empty document.
// When some records cannot be read the readable ones are returned along
// with the error.
func Load(path string) (map[string]*contest.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]*contest.Override{}, nil
		}
		return nil, fmt.Errorf("read overrides %s: %w", path, err)
	}
	return Decode(data)
}

// Save writes the document atomically (temp file and rename).
func Save(path string, ovs map[string]*contest.Override) error {
	data, err := Encode(ovs)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create overrides dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".overrides-*.json")
	if err != nil {
		return fmt.Errorf("create temp overrides: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write overrides: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close overrides: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace overrides: %w", err)
	}
	return nil
}
