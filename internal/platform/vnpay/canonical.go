package vnpay

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const upperHex = "0123456789ABCDEF"

// Canonicalize renders params as the string VNPay signs: empty values dropped,
// names sorted by byte order, each name and value form-encoded, pairs joined with '&'.
// The same string is used as the outbound query, so signed and sent bytes never differ.
func Canonicalize(params map[string]string) (string, error) {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		encodedName, err := FormEncode(name)
		if err != nil {
			return "", &EncodingError{Field: name}
		}
		encodedValue, err := FormEncode(params[name])
		if err != nil {
			return "", &EncodingError{Field: name}
		}

		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodedName)
		b.WriteByte('=')
		b.WriteString(encodedValue)
	}

	return b.String(), nil
}

// FormEncode applies application/x-www-form-urlencoded escaping over UTF-8 bytes:
// [A-Za-z0-9.-*_] kept, space as '+', everything else %XX with uppercase hex.
// This matches the encoder VNPay uses when it recomputes the hash, which differs
// from url.QueryEscape on '*' and '~'.
func FormEncode(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", &EncodingError{}
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case c == '.' || c == '-' || c == '*' || c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0F])
		}
	}

	return b.String(), nil
}
