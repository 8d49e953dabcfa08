package normalize

import "testing"

func TestLooksLikeCallsign(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"ja1abc", true},
		{"JA1ABC/1", true},
		{"7K1XYZ", true},
		{"1234", false},
		{"", false},
		{"JA1-ABC", false},
		{"59", false},
	}
	for _, tc := range cases {
		if got := LooksLikeCallsign(tc.in); got != tc.want {
			t.Fatalf("LooksLikeCallsign(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExchange(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12", "12"},
		{"05", "5"},
		{"5912", "12"},
		{"59", ""},
		{"57", ""},
		{"-", ""},
		{"", ""},
		{"12P", "12"},
		{"１２", "12"},
		{"000", "0"},
		{"5901", "1"},
		{"100M", "100"},
	}
	for _, tc := range cases {
		if got := Exchange(tc.in); got != tc.want {
			t.Fatalf("Exchange(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBand(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"50", "50"},
		{"50.0", "50"},
		{"50MHz", "50"},
		{"50.0MHz", "50"},
		{"144mhz", "144"},
		{"1.9", "1.9"},
		{"430.00", "430"},
		{"6m", "6m"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Band(tc.in); got != tc.want {
			t.Fatalf("Band(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := BandToken("50.0MHz"); got != "50.0" {
		t.Fatalf("BandToken keeps the decimal, got %q", got)
	}
}

func TestTimeAndDate(t *testing.T) {
	if got := Time("1000"); got != "10:00" {
		t.Fatalf("Time(1000) = %q", got)
	}
	if got := Time("10:00"); got != "10:00" {
		t.Fatalf("Time(10:00) = %q", got)
	}
	if got := Time("10h"); got != "10h" {
		t.Fatalf("Time should pass through unknown forms, got %q", got)
	}
	if got := Date("2025/05/05"); got != "2025-05-05" {
		t.Fatalf("Date = %q", got)
	}
	if !LooksLikeDate("2025/05/05") || LooksLikeDate("25-05-05") {
		t.Fatalf("LooksLikeDate classification mismatch")
	}
	if !LooksLikeTime("0930") || LooksLikeTime("930") {
		t.Fatalf("LooksLikeTime classification mismatch")
	}
	if got := Time("10:00:59"); got != "10:00" {
		t.Fatalf("Time should drop seconds, got %q", got)
	}
	if LooksLikeTime("10:00:59") {
		t.Fatalf("LooksLikeTime should reject seconds before Time reduces them")
	}
}

func TestFullWidthDateAndTime(t *testing.T) {
	if !LooksLikeDate("２０２５-０５-０５") || !LooksLikeTime("１０００") || !LooksLikeTime("１０：００") {
		t.Fatalf("full-width digits should classify like ASCII")
	}
	if got := Date("２０２５／０５／０５"); got != "2025-05-05" {
		t.Fatalf("Date = %q", got)
	}
	if got := Time("１０００"); got != "10:00" {
		t.Fatalf("Time = %q", got)
	}
}

func TestInt(t *testing.T) {
	if got := Int("1,234", 0); got != 1234 {
		t.Fatalf("Int(1,234) = %d", got)
	}
	if got := Int("-", 7); got != 7 {
		t.Fatalf("Int(-) = %d, want default", got)
	}
	if _, ok := OptionalInt("abc"); ok {
		t.Fatalf("OptionalInt should reject abc")
	}
}
