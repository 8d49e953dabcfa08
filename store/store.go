// Package store holds the entries of one load session keyed by callsign.
//
// Purpose: replace ambient shared state with an explicit repository that the
// loader, the override document and the views all receive by reference.
// Key aspects: last-write-wins on reload; overrides are re-applied by the
// caller after every reload; no background recomputation.
// Upstream: root loader, overrides document.
// Downstream: ranking, report printer, results archive, table view.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"contestcheck/contest"
	"contestcheck/normalize"
	"contestcheck/scoring"
)

// ErrNotFound is returned for callsigns that are not in the store.
var ErrNotFound = errors.New("entry not found")

// Store is safe for concurrent use. Entries handed out are shared; callers
// that mutate one must call Recompute on it afterwards.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*contest.Entry
	logf    func(string, ...any)
}

// New returns an empty store. logf may be nil.
func New(logf func(string, ...any)) *Store {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Store{entries: make(map[string]*contest.Entry), logf: logf}
}

// Put stores e under its callsign, replacing any previous entry. It reports
// whether an entry was replaced.
func (s *Store) Put(e *contest.Entry) (bool, error) {
	if e == nil {
		return false, errors.New("store: nil entry")
	}
	call := normalize.Callsign(e.Callsign)
	if call == "" {
		return false, errors.New("store: entry without callsign")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.entries[call]
	if ok {
		switch {
		case prev.Digest != 0 && prev.Digest == e.Digest:
			s.logf("Store: %s reloaded unchanged from %s", call, e.Source)
		case prev.Source != e.Source:
			s.logf("Store: %s from %s replaces entry from %s", call, e.Source, prev.Source)
		}
	}
	e.Callsign = call
	s.entries[call] = e
	return ok, nil
}

// Get returns the entry for callsign.
func (s *Store) Get(callsign string) (*contest.Entry, error) {
	call := normalize.Callsign(callsign)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[call]
	if !ok {
		return nil, fmt.Errorf("%s: %w", call, ErrNotFound)
	}
	return e, nil
}

// Remove deletes the entry for callsign.
func (s *Store) Remove(callsign string) error {
	call := normalize.Callsign(callsign)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[call]; !ok {
		return fmt.Errorf("%s: %w", call, ErrNotFound)
	}
	delete(s.entries, call)
	return nil
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns all entries sorted by callsign.
func (s *Store) Entries() []*contest.Entry {
	s.mu.RLock()
	out := make([]*contest.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Callsign < out[j].Callsign })
	return out
}

// Recompute re-scores every entry.
func (s *Store) Recompute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		scoring.Recompute(e)
	}
}

// MarkChecklog re-derives the checklog flag of every entry from calls.
func (s *Store) MarkChecklog(calls map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for call, e := range s.entries {
		e.Checklog = calls[call]
	}
}

// ApplyOverrides installs the overrides whose callsign is present and
// recomputes those entries. Entries without an override keep theirs. It
// returns the number of entries updated.
func (s *Store) ApplyOverrides(overrides map[string]*contest.Override) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for call, ov := range overrides {
		e, ok := s.entries[normalize.Callsign(call)]
		if !ok || ov == nil {
			continue
		}
		scoring.ApplyOverride(e, ov)
		n++
	}
	return n
}

// SetOverride installs ov on one entry and recomputes it.
func (s *Store) SetOverride(callsign string, ov *contest.Override) error {
	call := normalize.Callsign(callsign)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[call]
	if !ok {
		return fmt.Errorf("%s: %w", call, ErrNotFound)
	}
	scoring.ApplyOverride(e, ov)
	return nil
}

// ClearOverride removes the override of one entry and recomputes it.
func (s *Store) ClearOverride(callsign string) error {
	return s.SetOverride(callsign, nil)
}

// Overrides returns the enabled overrides keyed by callsign, ready to be
// written back to the override document.
func (s *Store) Overrides() map[string]*contest.Override {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*contest.Override)
	for call, e := range s.entries {
		if e.ManualEnabled() {
			ov := *e.Override
			out[call] = &ov
		}
	}
	return out
}

// Class is the display class of an entry.
type Class int

const (
	ClassOK Class = iota
	ClassMismatch
	ClassManual
	ClassChecklog
)

func (c Class) String() string {
	switch c {
	case ClassOK:
		return "OK"
	case ClassMismatch:
		return "MISMATCH"
	case ClassManual:
		return "MANUAL"
	case ClassChecklog:
		return "CHECKLOG"
	default:
		return "?"
	}
}

// ParseClass is the inverse of Class.String; unknown names map to
// ClassMismatch.
func ParseClass(name string) Class {
	switch name {
	case "OK":
		return ClassOK
	case "MANUAL":
		return ClassManual
	case "CHECKLOG":
		return ClassChecklog
	default:
		return ClassMismatch
	}
}

// Classify picks the display class: checklog first, then manual, then the
// verdict.
func Classify(e *contest.Entry) Class {
	switch {
	case e.Checklog:
		return ClassChecklog
	case e.ManualEnabled():
		return ClassManual
	case e.Match:
		return ClassOK
	default:
		return ClassMismatch
	}
}

// Status counts entries. OK and Mismatch split all entries by verdict;
// Manual and Checklog are counted independently of it.
type Status struct {
	Total    int
	OK       int
	Mismatch int
	Manual   int
	Checklog int
}

func (st Status) String() string {
	return fmt.Sprintf("entries=%d ok=%d mismatch=%d manual=%d checklog=%d",
		st.Total, st.OK, st.Mismatch, st.Manual, st.Checklog)
}

// Add counts one entry.
func (st *Status) Add(e *contest.Entry) {
	if e == nil {
		return
	}
	st.Total++
	if e.Match {
		st.OK++
	} else {
		st.Mismatch++
	}
	if e.ManualEnabled() {
		st.Manual++
	}
	if e.Checklog {
		st.Checklog++
	}
}

// Status summarises the store.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st Status
	for _, e := range s.entries {
		st.Add(e)
	}
	return st
}
