// Package textfmt renders encoded messages as text for logs, fixtures and
// firmware test vectors.
package textfmt

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Hex returns the lowercase hex encoding of data.
func Hex(data []byte) string {
	return hex.EncodeToString(data)
}

// ParseHex decodes hex text. Whitespace anywhere and a leading 0x are ignored.
func ParseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("textfmt: parse hex: %w", err)
	}
	return data, nil
}

// C renders data as a C byte array initializer followed by its length, the
// form pasted into firmware unit tests:
//
//	uint8_t data[] = {0xa, 0x2, 0x8, 0x1};
//	size_t data_len = 4;
func C(data []byte) string {
	var sb strings.Builder
	sb.WriteString("uint8_t data[] = {")
	for i, b := range data {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("0x")
		sb.WriteString(strconv.FormatUint(uint64(b), 16))
	}
	sb.WriteString("};\n")
	fmt.Fprintf(&sb, "size_t data_len = %d;", len(data))
	return sb.String()
}

// ParseC reads the byte list back out of a C initializer. Only the text
// between the first '{' and the following '}' is read when braces are
// present; elements may be hex, octal or decimal literals.
func ParseC(s string) ([]byte, error) {
	if open := strings.IndexByte(s, '{'); open >= 0 {
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("textfmt: parse c: unterminated initializer")
		}
		s = s[open+1 : open+end]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return []byte{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]byte, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" && i == len(parts)-1 {
			break
		}
		v, err := strconv.ParseUint(p, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("textfmt: parse c: element %d: %w", i, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
