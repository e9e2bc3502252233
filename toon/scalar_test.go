package toon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Scalar Grammar Tests
// ============================================================

func TestScalarRoundTrip(t *testing.T) {
	values := []*Value{
		Null(),
		Bool(true),
		Bool(false),
		Int(0),
		Int(42),
		Int(-50),
		Int(9223372036854775807),
		Int(-9223372036854775808),
		Float(3.14),
		Float(-99.99),
		Float(1.0),
		Float(0.5),
		Float(1e21),
		Float(2.5e-10),
		Str("hello"),
		Str(""),
		Str("42"),
		Str("3.14"),
		Str("true"),
		Str("null"),
		Str(`He said, "hi"`),
		Str("key: value"),
		Str("a,b"),
		Str("line1\nline2"),
		Str("  padded  "),
		Str("tab\there"),
		Str("#comment-looking"),
		Str("192.168.1.1"),
		Str("-option"),
		Str("007"),
	}

	for _, v := range values {
		lit, err := encodeScalar(v)
		require.NoError(t, err)
		got, err := decodeScalar(lit, 1)
		require.NoError(t, err, "literal %q", lit)
		assert.True(t, v.Equal(got), "round trip of %q: got %s %v", lit, got.Kind(), got)
	}
}

func TestEncodeString_Quoting(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"hello world", "hello world"},
		{"", `""`},
		{"42", `"42"`},
		{"1.5", `"1.5"`},
		{"-7", `"-7"`},
		{"true", `"true"`},
		{"false", `"false"`},
		{"null", `"null"`},
		{"a,b", `"a,b"`},
		{"a: b", `"a: b"`},
		{"x[1]", `"x[1]"`},
		{"{y}", `"{y}"`},
		{" lead", `" lead"`},
		{"trail ", `"trail "`},
		{"two\nlines", `"two\nlines"`},
		{`quote"inside`, `"quote\"inside"`},
		{`back\slash`, `"back\\slash"`},
		{"#hash", `"#hash"`},
		{"192.168.1.1", "192.168.1.1"},
		{"2a", "2a"},
		{"-option", "-option"},
		{"007", "007"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeString(tt.in))
		})
	}
}

func TestDecodeScalar_Classification(t *testing.T) {
	tests := []struct {
		token string
		want  *Value
	}{
		{"null", Null()},
		{"true", Bool(true)},
		{"false", Bool(false)},
		{"0", Int(0)},
		{"-0", Int(0)},
		{"42", Int(42)},
		{"-50", Int(-50)},
		{"3.14", Float(3.14)},
		{"-99.99", Float(-99.99)},
		{"1e5", Float(1e5)},
		{"2.5e-10", Float(2.5e-10)},
		{"007", Str("007")},
		{"2a", Str("2a")},
		{"-option", Str("-option")},
		{"192.168.1.1", Str("192.168.1.1")},
		{"1.", Str("1.")},
		{".5", Str(".5")},
		{"True", Str("True")},
		{"NULL", Str("NULL")},
		{`"42"`, Str("42")},
		{`"a,b"`, Str("a,b")},
		{`"two\nlines"`, Str("two\nlines")},
		{`""`, Str("")},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := decodeScalar(tt.token, 1)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got.Kind())
		})
	}
}

func TestDecodeScalar_UnterminatedQuote(t *testing.T) {
	_, err := decodeScalar(`"oops`, 7)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 7, serr.Line)
}

func TestSplitCells(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{"1, 2, 3", []string{"1", "2", "3"}},
		{`"a,b", c`, []string{`"a,b"`, "c"}},
		{`"x\"y",z`, []string{`"x\"y"`, "z"}},
		{"lone", []string{"lone"}},
		{"a,,b", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitCells(tt.in, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := splitCells(`"open, sesame`, 3)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
}

func TestEncodeFloat_NonFinite(t *testing.T) {
	_, err := encodeScalar(Float(nan()))
	assert.Error(t, err)
}

func nan() float64 {
	var zero float64
	return zero / zero
}
