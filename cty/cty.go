// Package cty resolves a callsign to its DXCC entity using a cty.plist
// prefix file, so entries from outside the home country can be labelled in
// reports.
package cty

import (
	"fmt"
	"io"
	"os"
	"strings"

	"howett.net/plist"

	"contestcheck/strutil"
)

// PrefixInfo describes one cty.plist record.
type PrefixInfo struct {
	Country       string `plist:"Country"`
	Prefix        string `plist:"Prefix"`
	ADIF          int    `plist:"ADIF"`
	CQZone        int    `plist:"CQZone"`
	ITUZone       int    `plist:"ITUZone"`
	Continent     string `plist:"Continent"`
	ExactCallsign bool   `plist:"ExactCallsign"`
}

// Database answers longest-prefix lookups. It is read-only after loading
// and safe for concurrent use.
type Database struct {
	data map[string]PrefixInfo
	trie prefixTrie
}

// prefixTrie is a byte trie over all keys. Walking a callsign from the root,
// the last terminal node passed is the longest matching key.
type prefixTrie struct {
	nodes []trieNode
}

type trieNode struct {
	next map[byte]int
	key  string
}

func buildTrie(keys []string) prefixTrie {
	tr := prefixTrie{nodes: []trieNode{{}}}
	for _, key := range keys {
		state := 0
		for i := 0; i < len(key); i++ {
			if tr.nodes[state].next == nil {
				tr.nodes[state].next = make(map[byte]int)
			}
			child, ok := tr.nodes[state].next[key[i]]
			if !ok {
				child = len(tr.nodes)
				tr.nodes = append(tr.nodes, trieNode{})
				tr.nodes[state].next[key[i]] = child
			}
			state = child
		}
		tr.nodes[state].key = key
	}
	return tr
}

func (tr *prefixTrie) longest(cs string) (string, bool) {
	state, best := 0, ""
	for i := 0; i < len(cs); i++ {
		child, ok := tr.nodes[state].next[cs[i]]
		if !ok {
			break
		}
		state = child
		if k := tr.nodes[state].key; k != "" {
			best = k
		}
	}
	return best, best != ""
}

// Load reads a cty.plist file.
func Load(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cty plist: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes cty.plist data. Keys are upper-cased.
func LoadFromReader(r io.ReadSeeker) (*Database, error) {
	var raw map[string]PrefixInfo
	if err := plist.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode plist: %w", err)
	}
	data := make(map[string]PrefixInfo, len(raw))
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		norm := strings.ToUpper(strings.TrimSpace(k))
		if norm == "" {
			continue
		}
		if _, dup := data[norm]; !dup {
			keys = append(keys, norm)
		}
		data[norm] = v
	}
	return &Database{data: data, trie: buildTrie(keys)}, nil
}

// Len returns the number of records.
func (db *Database) Len() int {
	if db == nil {
		return 0
	}
	return len(db.data)
}

// operatingSuffixes never name a location.
var operatingSuffixes = map[string]bool{
	"P": true, "M": true, "MM": true, "AM": true, "QRP": true, "B": true,
}

// Lookup resolves a callsign. Portable forms are handled: a call-area digit
// or operating suffix after the slash is ignored ("JA1ABC/3" looks up
// JA1ABC), and a location prefix shorter than the home call wins
// ("KH0/JA1ABC" looks up KH0).
func (db *Database) Lookup(callsign string) (*PrefixInfo, bool) {
	if db == nil {
		return nil, false
	}
	cs := strings.ToUpper(strings.TrimSpace(callsign))
	if cs == "" {
		return nil, false
	}
	if info, ok := db.data[cs]; ok {
		return &info, true
	}
	if seg := locationSegment(cs); seg != cs {
		if info, ok := db.lookupPrefix(seg); ok {
			return info, true
		}
	}
	return db.lookupPrefix(cs)
}

func (db *Database) lookupPrefix(cs string) (*PrefixInfo, bool) {
	if info, ok := db.data[cs]; ok {
		return &info, true
	}
	key, ok := db.trie.longest(cs)
	if !ok {
		return nil, false
	}
	info := db.data[key]
	return &info, true
}

// locationSegment picks the slash segment that identifies the entity.
func locationSegment(cs string) string {
	if !strings.Contains(cs, "/") {
		return cs
	}
	var segs []string
	for _, s := range strings.Split(cs, "/") {
		if s == "" || operatingSuffixes[s] || strutil.IsDigits(s) {
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return cs
	}
	best := segs[0]
	for _, s := range segs[1:] {
		if len(s) < len(best) {
			best = s
		}
	}
	return best
}
