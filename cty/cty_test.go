package cty

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePLIST = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
<key>JA</key>
	<dict>
		<key>Country</key>
		<string>Japan</string>
		<key>Prefix</key>
		<string>JA</string>
		<key>CQZone</key>
		<integer>25</integer>
	</dict>
<key>JD1</key>
	<dict>
		<key>Country</key>
		<string>Ogasawara</string>
		<key>Prefix</key>
		<string>JD1</string>
	</dict>
<key>JD1YAA</key>
	<dict>
		<key>Country</key>
		<string>Minami Torishima</string>
		<key>Prefix</key>
		<string>JD1YAA</string>
		<key>ExactCallsign</key>
		<true/>
	</dict>
<key>KH0</key>
	<dict>
		<key>Country</key>
		<string>Mariana Islands</string>
		<key>Prefix</key>
		<string>KH0</string>
	</dict>
<key>FO/</key>
	<dict>
		<key>Country</key>
		<string>Slashland</string>
		<key>Prefix</key>
		<string>FO/</string>
	</dict>
</dict>
</plist>`

func loadSampleDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := LoadFromReader(strings.NewReader(samplePLIST))
	if err != nil {
		t.Fatalf("load sample database: %v", err)
	}
	return db
}

func TestLookupLongestPrefix(t *testing.T) {
	db := loadSampleDatabase(t)
	info, ok := db.Lookup("ja1abc")
	if !ok || info.Country != "Japan" || info.CQZone != 25 {
		t.Fatalf("expected Japan, got %+v %v", info, ok)
	}
	info, ok = db.Lookup("JD1ABC")
	if !ok || info.Prefix != "JD1" {
		t.Fatalf("expected JD1 prefix, got %+v", info)
	}
}

func TestLookupExactCallsign(t *testing.T) {
	db := loadSampleDatabase(t)
	info, ok := db.Lookup("JD1YAA")
	if !ok || info.Country != "Minami Torishima" || !info.ExactCallsign {
		t.Fatalf("expected exact record, got %+v", info)
	}
}

func TestLookupPortableForms(t *testing.T) {
	db := loadSampleDatabase(t)
	cases := map[string]string{
		"JA1ABC/3":   "JA",
		"JA1ABC/P":   "JA",
		"JA1ABC/2/P": "JA",
		"KH0/JA1ABC": "KH0",
		"JA1ABC/KH0": "KH0",
		"FO/ABC":     "FO/",
	}
	for call, want := range cases {
		info, ok := db.Lookup(call)
		if !ok || info.Prefix != want {
			t.Fatalf("Lookup(%q) = %+v %v, want prefix %s", call, info, ok, want)
		}
	}
}

func TestLookupMisses(t *testing.T) {
	db := loadSampleDatabase(t)
	for _, call := range []string{"", "ZZ9ZZA", "/"} {
		if _, ok := db.Lookup(call); ok {
			t.Fatalf("expected %q to miss", call)
		}
	}
	var nilDB *Database
	if _, ok := nilDB.Lookup("JA1ABC"); ok || nilDB.Len() != 0 {
		t.Fatalf("nil database should miss")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cty.plist")
	if err := os.WriteFile(path, []byte(samplePLIST), 0o644); err != nil {
		t.Fatalf("write plist: %v", err)
	}
	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Len() != 5 {
		t.Fatalf("expected 5 records, got %d", db.Len())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.plist")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
