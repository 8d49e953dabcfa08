package overrides

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contestcheck/contest"
)

func TestDecodeOriginalLayout(t *testing.T) {
	doc := `{
  "JA1ABC": {"enabled": true, "qso": 10, "pts": 20, "mult": null, "total": 60, "note": "paper log", "opplace": "横浜市港北区"},
  "ja1def": {"total": 5},
  "JA1GHI": {"enabled": false, "note": "draft"},
  "JA1BAD": 12
}`
	ovs, err := Decode([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "JA1BAD") {
		t.Fatalf("expected error naming the bad record, got %v", err)
	}
	abc := ovs["JA1ABC"]
	if abc == nil || !abc.Enabled || *abc.QSO != 10 || *abc.Points != 20 || abc.Mult != nil || *abc.Total != 60 {
		t.Fatalf("JA1ABC decoded wrong: %+v", abc)
	}
	if abc.Note != "paper log" || abc.Place != "横浜市港北区" {
		t.Fatalf("JA1ABC text fields wrong: %+v", abc)
	}
	def := ovs["JA1DEF"]
	if def == nil || !def.Enabled || *def.Total != 5 {
		t.Fatalf("missing enabled should default to true: %+v", def)
	}
	if ghi := ovs["JA1GHI"]; ghi == nil || ghi.Enabled {
		t.Fatalf("explicit enabled=false lost: %+v", ghi)
	}
}

func TestDecodeReportsNonObjectValues(t *testing.T) {
	ovs, err := Decode([]byte(`{"JA1ABC": {"total": 5}, "JA1NUL": null, "JA1NUM": 5, "JA1STR": "x"}`))
	if err == nil {
		t.Fatalf("expected an error for non-object values")
	}
	for _, call := range []string{"JA1NUL", "JA1NUM", "JA1STR"} {
		if !strings.Contains(err.Error(), call) {
			t.Fatalf("error should name %s: %v", call, err)
		}
		if _, ok := ovs[call]; ok {
			t.Fatalf("%s should not be decoded", call)
		}
	}
	if abc := ovs["JA1ABC"]; abc == nil || *abc.Total != 5 {
		t.Fatalf("readable record lost: %+v", abc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	ovs, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil || len(ovs) != 0 {
		t.Fatalf("missing file should be empty, got %v %v", ovs, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	in := map[string]*contest.Override{
		"JA1ABC": {Enabled: true, Total: contest.Int(60), Note: "手動確認", Place: "八王子市"},
		"JA1DEF": {Enabled: true, QSO: contest.Int(3)},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "手動確認") || !strings.Contains(string(data), `"pts": null`) {
		t.Fatalf("unexpected document:\n%s", data)
	}
	if strings.Index(string(data), "JA1ABC") > strings.Index(string(data), "JA1DEF") {
		t.Fatalf("keys not sorted:\n%s", data)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || *out["JA1ABC"].Total != 60 || out["JA1ABC"].Place != "八王子市" || *out["JA1DEF"].QSO != 3 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}
