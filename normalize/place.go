package normalize

import (
	"regexp"
	"strings"

	"contestcheck/strutil"
)

// SaitamaWardUnknown is reported for さいたま市 when neither the place text nor
// the fallback address names a ward.
const SaitamaWardUnknown = "さいたま市（区不明）"

const saitamaCity = "さいたま市"

// homeMarkers mark an operating place that just points at the station's
// registered address.
var homeMarkers = []string{"常置場所", "同上", "自宅", "住所", "自局"}

var prefectures = []string{
	"東京都", "北海道", "大阪府", "京都府",
	"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県",
	"岐阜県", "静岡県", "愛知県", "三重県",
	"滋賀県", "兵庫県", "奈良県", "和歌山県",
	"鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県",
	"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

const hyphenClass = `[\-‐‑‒–—―−ー－]`

// RE2's \b only knows ASCII word characters, so a bare postal code is
// bounded explicitly: no letter (kana and kanji included), digit or
// underscore on either side. The bounding runes are captured and kept.
const (
	wordEdgeBefore = `(^|[^\p{L}\p{N}_])`
	wordEdgeAfter  = `([^\p{L}\p{N}_]|$)`
)

var postalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`〒\s*\d{3}\s*` + hyphenClass + `\s*\d{4}\s*`),
	regexp.MustCompile(`〒\s*\d{3}\s*\d{4}\s*`),
	regexp.MustCompile(wordEdgeBefore + `\d{3}\s*` + hyphenClass + `\s*\d{4}` + wordEdgeAfter),
	regexp.MustCompile(wordEdgeBefore + `\d{3}\s*\d{4}` + wordEdgeAfter),
}

// placeRules are tried in order; the first submatch wins.
var placeRules = []struct {
	name string
	re   *regexp.Regexp
}{
	{"city+ward", regexp.MustCompile(`^(.+?市.+?区)`)},
	{"city", regexp.MustCompile(`^(.{2,}?市)`)},
	{"ward", regexp.MustCompile(`^(.{2,}?区)`)},
	{"district+town", regexp.MustCompile(`^.*?郡(.+?町)`)},
	{"district+village", regexp.MustCompile(`^.*?郡(.+?村)`)},
	{"town", regexp.MustCompile(`^(.{2,}?町)`)},
	{"village", regexp.MustCompile(`^(.{2,}?村)`)},
}

var (
	saitamaWardPrefix = regexp.MustCompile(`^(さいたま市.+?区)`)
	saitamaWardAny    = regexp.MustCompile(`(さいたま市.+?区)`)
)

// MeansHome reports whether an operating-place declaration should be
// replaced with the station's address: it is blank or says "same as home".
func MeansHome(place string) bool {
	t := strings.TrimSpace(place)
	if t == "" {
		return true
	}
	for _, marker := range homeMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}

// stripAll blanks every match of re. A bounded pattern consumes the rune
// after a code, so back-to-back codes need another pass.
func stripAll(re *regexp.Regexp, s string) string {
	repl := " "
	if re.NumSubexp() == 2 {
		repl = "${1} ${2}"
	}
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return next
		}
		s = next
	}
}

// StripPostalAndPrefecture removes postal codes and prefecture names and
// collapses the blanks they leave behind.
func StripPostalAndPrefecture(text string) string {
	s := strings.TrimSpace(strutil.FoldWidth(text))
	if s == "" {
		return ""
	}
	for _, re := range postalPatterns {
		s = stripAll(re, s)
	}
	for _, pref := range prefectures {
		s = strings.ReplaceAll(s, pref, " ")
	}
	return strutil.CollapseBlanks(s)
}

// Place reduces a free-text address to the most specific municipality it
// names. fallback is consulted only to find the ward of さいたま市.
func Place(text, fallback string) string {
	s := StripPostalAndPrefecture(text)
	if s == "" {
		return ""
	}
	for _, rule := range placeRules {
		m := rule.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		found := strings.TrimSpace(m[1])
		if rule.name == "city" && found == saitamaCity {
			return saitamaWard(s, fallback)
		}
		return found
	}
	return s
}

func saitamaWard(s, fallback string) string {
	if m := saitamaWardPrefix.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := saitamaWardAny.FindStringSubmatch(StripPostalAndPrefecture(fallback)); m != nil {
		return strings.TrimSpace(m[1])
	}
	return SaitamaWardUnknown
}
