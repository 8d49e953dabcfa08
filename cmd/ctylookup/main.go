// Command ctylookup shows how callsigns resolve against cty.plist and which
// call area they are ranked in.
//
//	ctylookup [-config path] [-data cty.plist] [CALL ...]
//
// Without arguments it reads one callsign per line from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"contestcheck/config"
	"contestcheck/cty"
	"contestcheck/normalize"
	"contestcheck/ranking"
)

func main() {
	configPath := flag.String("config", "", "config file or directory (used for paths.cty_plist)")
	dataPath := flag.String("data", "", "cty.plist to use instead of paths.cty_plist")
	flag.Parse()

	path := strings.TrimSpace(*dataPath)
	if path == "" {
		cfg, err := config.Load(config.ResolvePath(*configPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ctylookup: %v (use -data to name cty.plist directly)\n", err)
			os.Exit(1)
		}
		path = cfg.Paths.CTYPlist
	}
	db, err := cty.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ctylookup: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: %d prefixes\n", path, db.Len())

	if flag.NArg() > 0 {
		for _, call := range flag.Args() {
			describe(os.Stdout, db, call)
		}
		return
	}
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		describe(os.Stdout, db, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "ctylookup: %v\n", err)
		os.Exit(1)
	}
}

func describe(w io.Writer, db *cty.Database, raw string) {
	call := normalize.Callsign(raw)
	if call == "" {
		return
	}
	area := "-"
	if n, ok := ranking.AreaOf(call); ok {
		area = strconv.Itoa(n)
	}
	info, ok := db.Lookup(call)
	if !ok {
		fmt.Fprintf(w, "%s\t-\t(unknown)\tarea=%s\n", call, area)
		return
	}
	fmt.Fprintf(w, "%s\t%s\t%s\tCQ=%d ITU=%d\tarea=%s\n",
		call, info.Prefix, info.Country, info.CQZone, info.ITUZone, area)
}
