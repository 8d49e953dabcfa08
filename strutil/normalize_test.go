package strutil

import "testing"

func TestFoldWidthDigitsAndHyphen(t *testing.T) {
	if got := FoldWidth("１２３－４５６７"); got != "123-4567" {
		t.Fatalf("FoldWidth full-width postal = %q, want 123-4567", got)
	}
	if got := FoldWidth("さいたま市"); got != "さいたま市" {
		t.Fatalf("FoldWidth should leave kana untouched, got %q", got)
	}
}

func TestCollapseBlanks(t *testing.T) {
	if got := CollapseBlanks("  JA1  \t ABC  "); got != "JA1 ABC" {
		t.Fatalf("CollapseBlanks = %q", got)
	}
	if got := CollapseBlanks("a\n  b"); got != "a\n b" {
		t.Fatalf("CollapseBlanks should keep newlines, got %q", got)
	}
}

func TestDigitHelpers(t *testing.T) {
	if got := DigitsOnly("59-12a"); got != "5912" {
		t.Fatalf("DigitsOnly = %q", got)
	}
	if IsDigits("") || IsDigits("1a") || !IsDigits("0042") {
		t.Fatalf("IsDigits classification mismatch")
	}
}
