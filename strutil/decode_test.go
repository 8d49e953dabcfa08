package strutil

import (
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestDecodeText(t *testing.T) {
	withBOM := append(append([]byte{}, UTF8BOM...), []byte("JA1ABC 横浜市")...)
	if got := DecodeText(withBOM); got != "JA1ABC 横浜市" {
		t.Fatalf("BOM not stripped: %q", got)
	}
	sjis, err := japanese.ShiftJIS.NewEncoder().String("<OPPLACE>八王子市</OPPLACE>")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := DecodeText([]byte(sjis)); got != "<OPPLACE>八王子市</OPPLACE>" {
		t.Fatalf("Shift_JIS not decoded: %q", got)
	}
}
