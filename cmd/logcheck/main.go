// Command logcheck parses a single submission and prints how every contact
// was read and scored. It is meant for diagnosing one entrant's log without
// loading the whole submissions folder.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"contestcheck/logsheet"
	"contestcheck/scoring"
	"contestcheck/strutil"
	"contestcheck/submission"
)

func main() {
	band := flag.String("band", submission.DefaultBand, "SCORE BAND attribute holding the claimed figures")
	call := flag.String("call", "", "callsign to use when the summary has none")
	format := flag.String("format", "", "force a log format (CTESTWIN, HLTST, ZLOG, CSV)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: logcheck [flags] FILE")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
	text := strutil.DecodeText(data)
	entry, err := submission.Parse(text, *call, "", submission.Options{Band: *band, Source: flag.Arg(0)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse: %v\n", err)
		os.Exit(1)
	}
	if f := strings.TrimSpace(*format); f != "" {
		blocks := submission.Split(text)
		entry.Contacts = logsheet.ParseWith(logsheet.Plan(f)[0], submission.LogLines(blocks.Log))
		scoring.Recompute(entry)
	}

	fmt.Printf("call=%s category=%s place=%s logtype=%q formats=%v\n",
		entry.Callsign, entry.Category, entry.Place, entry.LogType, logsheet.Plan(entry.LogType))
	for i, c := range entry.Contacts {
		mark := ""
		if c.Dup {
			mark = "DUP"
		}
		fmt.Printf("%4d %s %s %-4s %-4s %-12s %-6s %-6s %3d %s\n",
			i+1, c.Date, c.Time, c.Band, c.Mode, c.Call, c.Sent, c.Rcvd, c.Points, mark)
	}
	r := entry.Recomputed
	fmt.Printf("recomputed: qso=%d pts=%d mult=%d total=%d\n", r.QSO, r.Points, r.Mult, r.Total)
	if entry.Match {
		fmt.Println("verdict: OK", entry.Reason)
	} else {
		fmt.Println("verdict: MISMATCH", entry.Reason)
	}
}
