package strutil

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// UTF8BOM is the byte order mark some editors put in front of UTF-8 text.
var UTF8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText turns file bytes into text. UTF-8 (with or without BOM) is
// used as-is; anything else is read as Shift_JIS, and bytes that still do
// not decode are dropped.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, UTF8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	if out, err := japanese.ShiftJIS.NewDecoder().Bytes(data); err == nil && utf8.Valid(out) {
		return string(out)
	}
	return strings.ToValidUTF8(string(data), "")
}
