package ui

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Query is a parsed search box entry. Terms are whitespace separated and
// must all match. A term may be scoped with call:, cat:, place: or status:;
// an unscoped term matches any of those.
type Query struct {
	terms []queryTerm
}

type queryTerm struct {
	field string
	text  string
}

var queryFields = map[string]bool{"call": true, "cat": true, "place": true, "status": true}

// ParseQuery builds a Query. Matching ignores case.
func ParseQuery(s string) Query {
	var q Query
	for _, word := range strings.Fields(s) {
		term := queryTerm{text: strings.ToUpper(word)}
		if field, text, ok := strings.Cut(word, ":"); ok && queryFields[strings.ToLower(field)] {
			term = queryTerm{field: strings.ToLower(field), text: strings.ToUpper(text)}
		}
		if term.text != "" {
			q.terms = append(q.terms, term)
		}
	}
	return q
}

// Empty reports whether the query selects every row.
func (q Query) Empty() bool { return len(q.terms) == 0 }

// Match reports whether row satisfies every term.
func (q Query) Match(row EntryRow) bool {
	for _, term := range q.terms {
		if !term.match(row) {
			return false
		}
	}
	return true
}

func (t queryTerm) match(row EntryRow) bool {
	has := func(s string) bool { return strings.Contains(strings.ToUpper(s), t.text) }
	switch t.field {
	case "call":
		return has(row.Callsign)
	case "cat":
		return has(row.cell(colCategory))
	case "place":
		return has(row.cell(colPlace))
	case "status":
		return has(row.Class.String())
	default:
		return has(row.Callsign) || has(row.cell(colCategory)) || has(row.cell(colPlace)) || has(row.Class.String())
	}
}

const searchDelay = 250 * time.Millisecond

// SearchFilter applies search box edits once typing pauses. Edits arrive on
// the UI goroutine; the delay runs on the filter's own goroutine, which
// exits with ctx.
type SearchFilter struct {
	edits    chan string
	onChange func()
	delay    time.Duration

	mu     sync.RWMutex
	active Query
}

// NewSearchFilter starts the filter. onChange runs on the filter goroutine
// after each applied query.
func NewSearchFilter(ctx context.Context, delay time.Duration, onChange func()) *SearchFilter {
	s := &SearchFilter{
		edits:    make(chan string, 1),
		onChange: onChange,
		delay:    delay,
	}
	go s.run(ctx)
	return s
}

// Edit queues the current search box text, replacing an unapplied edit.
func (s *SearchFilter) Edit(text string) {
	for {
		select {
		case s.edits <- text:
			return
		default:
		}
		select {
		case <-s.edits:
		default:
		}
	}
}

// Active returns the applied query.
func (s *SearchFilter) Active() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *SearchFilter) run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var pending string
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case pending = <-s.edits:
			timer.Reset(s.delay)
		case <-timer.C:
			s.mu.Lock()
			s.active = ParseQuery(pending)
			s.mu.Unlock()
			if s.onChange != nil {
				s.onChange()
			}
		}
	}
}
