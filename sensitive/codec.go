package sensitive

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// HexMarker prefixes bytea values rendered in Postgres hex output format.
// Rows written through the REST layer still carry it in text columns.
const HexMarker = `\x`

// Encode returns the at-rest form of a sensitive value.
// The empty string has no at-rest form and encodes to nil.
func Encode(plaintext string) []byte {
	if plaintext == "" {
		return nil
	}
	return []byte(plaintext)
}

// Decode returns the plaintext held by a raw column value. It accepts every
// shape found in stored rows: a hex-escaped string, a byte slice or a plain
// string. Nil decodes to "". Decode never fails; unexpected input is
// coerced to a string.
func Decode(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return decodeString(val)
	case *string:
		if val == nil {
			return ""
		}
		return decodeString(*val)
	case []byte:
		return bytesToString(val)
	case sql.RawBytes:
		return bytesToString(val)
	case sql.NullString:
		if !val.Valid {
			return ""
		}
		return decodeString(val.String)
	default:
		return fmt.Sprint(val)
	}
}

func decodeString(s string) string {
	if !strings.HasPrefix(s, HexMarker) {
		return s
	}
	raw, err := hex.DecodeString(s[len(HexMarker):])
	if err != nil {
		// not hex after all, keep what was stored
		return s
	}
	return bytesToString(raw)
}

func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
