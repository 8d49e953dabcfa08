package logsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"contestcheck/contest"
	"contestcheck/normalize"
)

// Header aliases. Two naming conventions are in the wild; the first
// non-empty column wins.
var (
	colDate  = []string{"Date", "DATE"}
	colTime  = []string{"Time", "TIME"}
	colCall  = []string{"Callsign", "CALLSIGN"}
	colSent  = []string{"Sent", "SENT"}
	colRcvd  = []string{"Rcvd", "RCVD"}
	colBand  = []string{"MHz", "MHZ", "Band", "BAND"}
	colMode  = []string{"Mode", "MODE"}
	colPts   = []string{"Pts", "PTS"}
	colRmks  = []string{"Rmks"}
	errWider = errors.New("row wider than header")
)

// ParseCSV parses comma-delimited logs. A first line naming the Date and
// Callsign columns switches to header mode; otherwise columns are taken by
// position. When the header rows cannot be read, or the positional pass
// finds nothing, a reduced six-column pass is used instead.
func ParseCSV(lines []string) []contest.Contact {
	data := make([]string, 0, len(lines))
	for _, ln := range lines {
		if strings.TrimSpace(ln) != "" {
			data = append(data, ln)
		}
	}
	if len(data) == 0 {
		return nil
	}

	if hasCSVHeader(data[0]) {
		out, err := parseCSVHeader(data)
		if err != nil {
			return parseCSVReduced(data)
		}
		return out
	}
	if out := parseCSVPositional(data); len(out) > 0 {
		return out
	}
	return parseCSVReduced(data)
}

func hasCSVHeader(first string) bool {
	hasDate := strings.Contains(first, "Date") || strings.Contains(first, "DATE")
	hasCall := strings.Contains(first, "Callsign") || strings.Contains(first, "CALLSIGN")
	return hasDate && hasCall
}

func parseCSVHeader(data []string) ([]contest.Contact, error) {
	r := csv.NewReader(strings.NewReader(strings.Join(data, "\n")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		if _, dup := header[strings.TrimSpace(name)]; !dup {
			header[strings.TrimSpace(name)] = i
		}
	}
	get := func(row []string, names []string) string {
		for _, name := range names {
			if i, ok := header[name]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	out := make([]contest.Contact, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) > len(records[0]) {
			return nil, errWider
		}
		date, clock := get(row, colDate), normalize.Time(get(row, colTime))
		if !normalize.LooksLikeDate(date) || !normalize.LooksLikeTime(clock) {
			continue
		}
		mode := get(row, colMode)
		if mode == "" {
			mode = "AM"
		}
		pts, parsed := normalize.OptionalInt(get(row, colPts))
		out = append(out, contest.Contact{
			Date:   normalize.Date(date),
			Time:   clock,
			Band:   normalize.BandToken(get(row, colBand)),
			Mode:   mode,
			Call:   normalize.Callsign(get(row, colCall)),
			Sent:   normalize.Exchange(get(row, colSent)),
			Rcvd:   normalize.Exchange(get(row, colRcvd)),
			Points: policyCSVHeader.Resolve(pts, parsed, get(row, colRmks)),
			Raw:    strings.Join(row, ","),
		})
	}
	return out, nil
}

// parseCSVPositional reads "date,time,call,sent,rcvd,band,mode,?,pts" rows.
func parseCSVPositional(data []string) []contest.Contact {
	out := make([]contest.Contact, 0, len(data))
	for _, raw := range data {
		if !strings.Contains(raw, ",") {
			continue
		}
		cols := splitColumns(raw)
		if len(cols) < 8 || !rowDated(cols) {
			continue
		}
		mode := cols[6]
		if mode == "" {
			mode = "AM"
		}
		ptsTok := cols[len(cols)-1]
		if len(cols) > 8 {
			ptsTok = cols[8]
		}
		pts, parsed := normalize.OptionalInt(ptsTok)
		out = append(out, contest.Contact{
			Date:   normalize.Date(cols[0]),
			Time:   normalize.Time(cols[1]),
			Band:   normalize.BandToken(cols[5]),
			Mode:   mode,
			Call:   normalize.Callsign(cols[2]),
			Sent:   normalize.Exchange(cols[3]),
			Rcvd:   normalize.Exchange(cols[4]),
			Points: policyCSVPositional.Resolve(pts, parsed, raw),
			Raw:    raw,
		})
	}
	return out
}

// parseCSVReduced keeps only date, time, call, band and mode. Exchanges are
// left empty, so these contacts never count toward the multiplier.
func parseCSVReduced(data []string) []contest.Contact {
	out := make([]contest.Contact, 0, len(data))
	for _, raw := range data {
		s := strings.TrimSpace(raw)
		if s == "" || !strings.Contains(s, ",") {
			continue
		}
		cols := splitColumns(s)
		if len(cols) < 6 || !rowDated(cols) {
			continue
		}
		mode := "AM"
		if len(cols) > 6 {
			mode = cols[6]
		}
		ptsTok := cols[len(cols)-1]
		if len(cols) > 8 {
			ptsTok = cols[8]
		}
		pts, parsed := normalize.OptionalInt(ptsTok)
		out = append(out, contest.Contact{
			Date:   normalize.Date(cols[0]),
			Time:   normalize.Time(cols[1]),
			Band:   normalize.BandToken(cols[5]),
			Mode:   mode,
			Call:   normalize.Callsign(cols[2]),
			Points: policyCSVReduced.Resolve(pts, parsed, raw),
			Raw:    raw,
		})
	}
	return out
}

// rowDated checks the leading date and time columns of a positional row.
// Seconds are allowed in the time; Time drops them.
func rowDated(cols []string) bool {
	return normalize.LooksLikeDate(cols[0]) && normalize.LooksLikeTime(normalize.Time(cols[1]))
}

func splitColumns(raw string) []string {
	cols := strings.Split(raw, ",")
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}
