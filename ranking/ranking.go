// Package ranking orders scored entries into competition standings and picks
// award winners.
//
// Standings use standard competition ranking: entries with equal (total,
// points, multiplier, QSO) share a rank and the next distinct score takes
// its position in the list (1, 1, 3). Checklogs never compete; they are
// listed after the standings with rank Unranked.
package ranking

import (
	"sort"
	"strconv"
	"strings"

	"contestcheck/contest"
	"contestcheck/strutil"
)

// Unranked is the rank given to checklog entries.
const Unranked = 0

// Ranked pairs an entry with its rank.
type Ranked struct {
	Rank  int
	Entry *contest.Entry
}

type metrics [4]int

func metricsOf(e *contest.Entry) metrics {
	r := e.Recomputed
	return metrics{r.Total, r.Points, r.Mult, r.QSO}
}

// less orders by total, points, multiplier and QSO count descending, then
// by callsign.
func less(a, b *contest.Entry) bool {
	ma, mb := metricsOf(a), metricsOf(b)
	for i := range ma {
		if ma[i] != mb[i] {
			return ma[i] > mb[i]
		}
	}
	return a.Callsign < b.Callsign
}

func competitors(entries []*contest.Entry) []*contest.Entry {
	out := make([]*contest.Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil && !e.Checklog {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func standings(sorted []*contest.Entry) []Ranked {
	out := make([]Ranked, 0, len(sorted))
	var prev metrics
	rank := 0
	for i, e := range sorted {
		m := metricsOf(e)
		if i == 0 || m != prev {
			rank = i + 1
		}
		out = append(out, Ranked{Rank: rank, Entry: e})
		prev = m
	}
	return out
}

// Rank returns the standings followed by the checklogs (sorted by callsign,
// rank Unranked).
func Rank(entries []*contest.Entry) []Ranked {
	out := standings(competitors(entries))
	var checklogs []*contest.Entry
	for _, e := range entries {
		if e != nil && e.Checklog {
			checklogs = append(checklogs, e)
		}
	}
	sort.SliceStable(checklogs, func(i, j int) bool { return checklogs[i].Callsign < checklogs[j].Callsign })
	for _, e := range checklogs {
		out = append(out, Ranked{Rank: Unranked, Entry: e})
	}
	return out
}

// TopNWithTies returns the first n standings plus every following entry
// tied with the n-th. Checklogs are never included.
func TopNWithTies(entries []*contest.Entry, n int) []Ranked {
	ranked := standings(competitors(entries))
	if n <= 0 || len(ranked) == 0 {
		return nil
	}
	if len(ranked) <= n {
		return ranked
	}
	cutoff := metricsOf(ranked[n-1].Entry)
	end := n
	for end < len(ranked) && metricsOf(ranked[end].Entry) == cutoff {
		end++
	}
	return ranked[:end]
}

// CategoryStandings is the ranking within one category.
type CategoryStandings struct {
	Category  string
	Standings []Ranked
}

// ByCategory ranks every non-blank category on its own. Categories come out
// sorted; checklogs and entries without a category are left out.
func ByCategory(entries []*contest.Entry) []CategoryStandings {
	byCat := make(map[string][]*contest.Entry)
	for _, e := range entries {
		if e == nil || e.Checklog {
			continue
		}
		if cat := strings.TrimSpace(e.Category); cat != "" {
			byCat[cat] = append(byCat[cat], e)
		}
	}
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	out := make([]CategoryStandings, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryStandings{Category: c, Standings: standings(competitors(byCat[c]))})
	}
	return out
}

// AwardConfig selects the award groups.
type AwardConfig struct {
	// InArea categories get top-N-with-ties awards each.
	InArea []string
	// AreaCategory entries are awarded per call area instead.
	AreaCategory string
	TopN         int
}

// DefaultAwardConfig mirrors the usual prize table.
func DefaultAwardConfig() AwardConfig {
	return AwardConfig{
		InArea:       []string{"1F", "1P", "1Q", "SWL"},
		AreaCategory: "1X",
		TopN:         3,
	}
}

// CategoryAward is one prize in an in-area category.
type CategoryAward struct {
	Category string
	Rank     int
	Entry    *contest.Entry
}

// AreaAward is the winner of one call area.
type AreaAward struct {
	Area  int
	Entry *contest.Entry
}

// AwardGroups computes both award lists. Category awards come out grouped
// by category name; area awards are sorted by area. Entries of the area
// category whose callsign names no area are left out.
func AwardGroups(entries []*contest.Entry, cfg AwardConfig) ([]CategoryAward, []AreaAward) {
	inArea := make(map[string]bool, len(cfg.InArea))
	for _, c := range cfg.InArea {
		inArea[strings.TrimSpace(c)] = true
	}
	byCat := make(map[string][]*contest.Entry)
	var outOfArea []*contest.Entry
	for _, e := range entries {
		if e == nil || e.Checklog {
			continue
		}
		cat := strings.TrimSpace(e.Category)
		switch {
		case inArea[cat]:
			byCat[cat] = append(byCat[cat], e)
		case cat != "" && cat == strings.TrimSpace(cfg.AreaCategory):
			outOfArea = append(outOfArea, e)
		}
	}

	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	var catAwards []CategoryAward
	for _, c := range cats {
		for _, r := range TopNWithTies(byCat[c], cfg.TopN) {
			catAwards = append(catAwards, CategoryAward{Category: c, Rank: r.Rank, Entry: r.Entry})
		}
	}

	winners := make(map[int]*contest.Entry)
	for _, e := range competitors(outOfArea) {
		area, ok := AreaOf(e.Callsign)
		if !ok {
			continue
		}
		if cur, seen := winners[area]; !seen || e.Recomputed.Total > cur.Recomputed.Total {
			winners[area] = e
		}
	}
	areaAwards := make([]AreaAward, 0, len(winners))
	for area, e := range winners {
		areaAwards = append(areaAwards, AreaAward{Area: area, Entry: e})
	}
	sort.Slice(areaAwards, func(i, j int) bool { return areaAwards[i].Area < areaAwards[j].Area })
	return catAwards, areaAwards
}

// AreaOf returns the call area written after a slash ("JA1ABC/3" -> 3).
// The first all-digit portable suffix wins; a callsign without one has no
// area.
func AreaOf(callsign string) (int, bool) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(callsign)), "/")
	for _, p := range parts[1:] {
		if !strutil.IsDigits(p) {
			continue
		}
		if n, err := strconv.Atoi(p); err == nil {
			return n, true
		}
	}
	return 0, false
}
