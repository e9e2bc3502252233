package toon

import "fmt"

// SyntaxError reports an unparseable line: a malformed header, bad
// indentation, or an unterminated quote.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("toon: syntax error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("toon: syntax error: %s", e.Message)
}

// SchemaMismatchError reports a disagreement between a declared array
// length or column set and the data that follows it.
type SchemaMismatchError struct {
	Line    int
	Want    int
	Got     int
	Message string
}

func (e *SchemaMismatchError) Error() string {
	msg := e.Message
	if e.Want != 0 || e.Got != 0 {
		msg = fmt.Sprintf("%s (want %d, got %d)", msg, e.Want, e.Got)
	}
	if e.Line > 0 {
		return fmt.Sprintf("toon: schema mismatch at line %d: %s", e.Line, msg)
	}
	return "toon: schema mismatch: " + msg
}

// TypeError reports a table cell that fails the converter fixed for its
// column by the first data row.
type TypeError struct {
	Line   int
	Column string
	Token  string
	Want   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("toon: type error at line %d: column %q expects %s, got %q", e.Line, e.Column, e.Want, e.Token)
}

// EncodingInvariantError is an internal assertion failure: a list that
// was classified tabular-eligible failed validation during emission.
// Unreachable as long as classification and emission agree.
type EncodingInvariantError struct {
	Message string
}

func (e *EncodingInvariantError) Error() string {
	return "toon: encoding invariant violated: " + e.Message
}

func syntaxErrf(line int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}

func mismatchErrf(line, want, got int, format string, args ...interface{}) *SchemaMismatchError {
	return &SchemaMismatchError{Line: line, Want: want, Got: got, Message: fmt.Sprintf(format, args...)}
}
