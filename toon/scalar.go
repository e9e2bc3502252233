package toon

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Scalar Lexical Grammar
// ============================================================
//
// Single authority for literal <-> value conversion, used identically
// by the encoder and the decoder:
//
//   null           -> Null
//   true / false   -> Bool (case-sensitive)
//   -?[0-9]+       -> Int (no leading zero except 0 itself)
//   -?d+.d+[e..]   -> Float (dot and/or exponent required)
//   anything else  -> String, quoted when ambiguous or reserved
//
// Round-trip law: decodeScalar(encodeScalar(v)) == v for every scalar.

// encodeScalar returns the canonical literal for a scalar value.
// Containers and non-finite floats are not representable and return an
// error; callers treat that as an encoding invariant violation.
func encodeScalar(v *Value) (string, error) {
	if v.IsNull() {
		return "null", nil
	}
	switch v.kind {
	case KindBool:
		if v.boolVal {
			return "true", nil
		}
		return "false", nil
	case KindInt:
		return strconv.FormatInt(v.intVal, 10), nil
	case KindFloat:
		return encodeFloat(v.floatVal)
	case KindString:
		return encodeString(v.strVal), nil
	default:
		return "", fmt.Errorf("toon: %s is not a scalar", v.kind)
	}
}

// encodeFloat returns the shortest decimal representation that
// round-trips, always carrying a dot or exponent so it re-parses as
// Float rather than Int.
func encodeFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("toon: non-finite float %v is not representable", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// encodeString returns the string bare when safe, quoted otherwise.
func encodeString(s string) string {
	if needsQuoting(s) {
		return quoteString(s)
	}
	return s
}

// encodeKey formats a map key or table column name. Keys share the
// string quoting rules so that key and value literals never diverge.
func encodeKey(key string) string {
	return encodeString(key)
}

// needsQuoting reports whether a string cannot be emitted bare: it is
// empty, carries leading/trailing whitespace, contains a reserved
// character, starts with the comment marker, or would re-classify as a
// different scalar kind when read back.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	if strings.ContainsAny(s, ",:{}[]\"\n\r\t") {
		return true
	}
	if s[0] == '#' {
		return true
	}
	switch s {
	case "null", "true", "false":
		return true
	}
	return isIntToken(s) || isFloatToken(s)
}

// quoteString wraps a string in double quotes with minimal escapes.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// decodeScalar converts a single literal token into a Value. Quoted
// tokens reverse escaping exactly; bare tokens are classified under the
// grammar above.
func decodeScalar(token string, line int) (*Value, error) {
	if len(token) > 0 && token[0] == '"' {
		s, err := unquoteString(token, line)
		if err != nil {
			return nil, err
		}
		return Str(s), nil
	}
	switch token {
	case "null":
		return Null(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}
	if isIntToken(token) {
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, syntaxErrf(line, "integer out of range: %s", token)
		}
		return Int(n), nil
	}
	if isFloatToken(token) {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, syntaxErrf(line, "invalid float literal: %s", token)
		}
		return Float(f), nil
	}
	return Str(token), nil
}

// unquoteString reverses quoteString. The token must start and end with
// an unescaped double quote with nothing after it.
func unquoteString(token string, line int) (string, error) {
	if len(token) < 2 || token[0] != '"' {
		return "", syntaxErrf(line, "malformed quoted string: %s", token)
	}
	var b strings.Builder
	b.Grow(len(token) - 2)
	i := 1
	for i < len(token) {
		c := token[i]
		if c == '"' {
			if i != len(token)-1 {
				return "", syntaxErrf(line, "trailing characters after closing quote: %s", token)
			}
			return b.String(), nil
		}
		if c == '\\' {
			i++
			if i >= len(token) {
				break
			}
			switch token[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				b.WriteByte(token[i])
			}
		} else {
			b.WriteByte(c)
		}
		i++
	}
	return "", syntaxErrf(line, "unterminated quote: %s", token)
}

// ============================================================
// Bare-Token Classification
// ============================================================

// isIntToken matches an optional leading minus and digits, with no
// leading zero except the value 0 itself.
func isIntToken(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	if s[0] == '0' && len(s) > 1 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isFloatToken matches digits '.' digits with an optional exponent, or
// digits with a mandatory exponent. Leading zeros follow the int rule.
func isFloatToken(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return false
	}
	if s[0] == '0' && i > 1 {
		return false
	}
	sawDot := false
	if i < len(s) && s[i] == '.' {
		sawDot = true
		i++
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false
		}
	}
	sawExp := false
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		sawExp = true
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s) && (sawDot || sawExp)
}

// ============================================================
// Top-Level Comma Splitting
// ============================================================

// splitCells splits a comma-joined cell list on commas outside quotes.
// Each cell is returned trimmed of surrounding spaces but with its
// quotes intact for decodeScalar. An unterminated quote is an error.
func splitCells(s string, line int) ([]string, error) {
	var cells []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '\\':
			if inQuote && i+1 < len(s) {
				i++
			}
		case ',':
			if !inQuote {
				cells = append(cells, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if inQuote {
		return nil, syntaxErrf(line, "unterminated quote in %q", s)
	}
	cells = append(cells, strings.TrimSpace(s[start:]))
	return cells, nil
}
