package toon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEncode(t *testing.T, v *Value) string {
	t.Helper()
	out, err := Encode(v)
	require.NoError(t, err)
	return out
}

func TestEncode_ScalarRoot(t *testing.T) {
	assert.Equal(t, "42\n", mustEncode(t, Int(42)))
	assert.Equal(t, "null\n", mustEncode(t, Null()))
	assert.Equal(t, "\"a, b\"\n", mustEncode(t, Str("a, b")))
}

func TestEncode_FlatMap(t *testing.T) {
	v := Map(
		Field("model", Str("gpt-4")),
		Field("temperature", Float(0.7)),
		Field("stream", Bool(true)),
		Field("stop", Null()),
	)
	want := "model: gpt-4\ntemperature: 0.7\nstream: true\nstop: null\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_NestedMaps(t *testing.T) {
	v := Map(
		Field("server", Map(
			Field("host", Str("localhost")),
			Field("port", Int(8080)),
			Field("tls", Map(Field("enabled", Bool(false)))),
		)),
		Field("name", Str("api")),
	)
	want := strings.Join([]string{
		"server:",
		"  host: localhost",
		"  port: 8080",
		"  tls:",
		"    enabled: false",
		"name: api",
	}, "\n") + "\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_ChatRequest(t *testing.T) {
	v := Map(
		Field("model", Str("gpt-4")),
		Field("messages", List(
			Map(Field("role", Str("system")), Field("content", Str("hi"))),
			Map(Field("role", Str("user")), Field("content", Str("bye"))),
		)),
		Field("temperature", Float(0.7)),
	)
	want := strings.Join([]string{
		"model: gpt-4",
		"messages[2]{role,content}:",
		"  system,hi",
		"  user,bye",
		"temperature: 0.7",
	}, "\n") + "\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_TabularNested(t *testing.T) {
	v := Map(
		Field("db", Map(
			Field("pools", List(
				Map(Field("name", Str("primary")), Field("size", Int(10))),
				Map(Field("name", Str("replica")), Field("size", Int(4))),
			)),
		)),
	)
	want := strings.Join([]string{
		"db:",
		"  pools[2]{name,size}:",
		"    primary,10",
		"    replica,4",
	}, "\n") + "\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_FlatList(t *testing.T) {
	v := Map(Field("tags", List(Str("a"), Str("b"), Str("c"))))
	assert.Equal(t, "tags[3]: a, b, c\n", mustEncode(t, v))
}

func TestEncode_RootFlatList(t *testing.T) {
	v := List(Int(1), Int(2), Int(3))
	assert.Equal(t, "[3]: 1, 2, 3\n", mustEncode(t, v))
}

func TestEncode_InlineLimitFallsBackToBullets(t *testing.T) {
	v := Map(Field("xs", List(Str("alpha"), Str("beta"), Str("gamma"))))
	out, err := EncodeWithOptions(v, EncodeOptions{InlineLimit: 10})
	require.NoError(t, err)
	want := strings.Join([]string{
		"xs[3]:",
		"  - alpha",
		"  - beta",
		"  - gamma",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestEncode_EmptyContainers(t *testing.T) {
	assert.Equal(t, "", mustEncode(t, Map()))
	assert.Equal(t, "[0]:\n", mustEncode(t, List()))
	assert.Equal(t, "items[0]:\n", mustEncode(t, Map(Field("items", List()))))
	// An empty map entry contributes its key line and nothing below it.
	assert.Equal(t, "meta:\n", mustEncode(t, Map(Field("meta", Map()))))
}

func TestEncode_MixedListIsBulleted(t *testing.T) {
	v := Map(Field("xs", List(
		Int(1),
		Map(Field("a", Int(1))),
		Str("text"),
	)))
	want := strings.Join([]string{
		"xs[3]:",
		"  - 1",
		"  -",
		"    a: 1",
		"  - text",
	}, "\n") + "\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_NonUniformMapsAreBulleted(t *testing.T) {
	v := Map(Field("xs", List(
		Map(Field("a", Int(1)), Field("b", Int(2))),
		Map(Field("a", Int(3))),
	)))
	want := strings.Join([]string{
		"xs[2]:",
		"  -",
		"    a: 1",
		"    b: 2",
		"  -",
		"    a: 3",
	}, "\n") + "\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_NestedListInsideBullets(t *testing.T) {
	v := Map(Field("xs", List(
		List(Int(1), Int(2)),
		List(Int(3)),
	)))
	want := strings.Join([]string{
		"xs[2]:",
		"  -",
		"    [2]: 1, 2",
		"  -",
		"    [1]: 3",
	}, "\n") + "\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_QuotedKeysAndCells(t *testing.T) {
	v := Map(
		Field("a:b", Str("Ada Lovelace")),
		Field("note", Str("a, b: c")),
	)
	want := "\"a:b\": Ada Lovelace\nnote: \"a, b: c\"\n"
	assert.Equal(t, want, mustEncode(t, v))

	v = Map(Field("rows", List(
		Map(Field("msg", Str("hi, there")), Field("n", Int(1))),
		Map(Field("msg", Str("plain")), Field("n", Int(2))),
	)))
	want = strings.Join([]string{
		"rows[2]{msg,n}:",
		"  \"hi, there\",1",
		"  plain,2",
	}, "\n") + "\n"
	assert.Equal(t, want, mustEncode(t, v))
}

func TestEncode_CustomIndent(t *testing.T) {
	v := Map(Field("a", Map(Field("b", Int(1)))))
	out, err := EncodeWithOptions(v, EncodeOptions{Indent: "    "})
	require.NoError(t, err)
	assert.Equal(t, "a:\n    b: 1\n", out)
}

func TestEncode_Deterministic(t *testing.T) {
	v := Map(
		Field("a", List(Int(1), Int(2))),
		Field("b", Map(Field("c", Str("x")))),
	)
	first := mustEncode(t, v)
	second := mustEncode(t, v)
	assert.Equal(t, first, second)
}

func TestEncode_NonFiniteFloatFails(t *testing.T) {
	var zero float64
	_, err := Encode(Map(Field("x", Float(1 / zero))))
	assert.Error(t, err)
}

func TestClassifyList(t *testing.T) {
	tests := []struct {
		name  string
		elems []*Value
		want  listClass
		cols  []string
	}{
		{"scalars", []*Value{Int(1), Str("a")}, listFlat, nil},
		{"uniform maps", []*Value{
			Map(Field("a", Int(1)), Field("b", Int(2))),
			Map(Field("a", Int(3)), Field("b", Int(4))),
		}, listTabular, []string{"a", "b"}},
		{"reordered keys", []*Value{
			Map(Field("a", Int(1)), Field("b", Int(2))),
			Map(Field("b", Int(4)), Field("a", Int(3))),
		}, listBulleted, nil},
		{"nested cell", []*Value{
			Map(Field("a", List(Int(1)))),
		}, listBulleted, nil},
		{"empty maps", []*Value{Map(), Map()}, listBulleted, nil},
		{"mixed", []*Value{Int(1), Map(Field("a", Int(1)))}, listBulleted, nil},
		{"lists", []*Value{List(Int(1))}, listBulleted, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, cols := classifyList(tt.elems)
			assert.Equal(t, tt.want, class)
			assert.Equal(t, tt.cols, cols)
		})
	}
}

func TestTableWriter_Streaming(t *testing.T) {
	var sb strings.Builder
	tw := NewTableWriter(&sb, "users", []string{"id", "name"}, 2)
	require.NoError(t, tw.WriteRow(Map(Field("id", Int(1)), Field("name", Str("Alice")))))
	require.NoError(t, tw.WriteRow(Map(Field("id", Int(2)), Field("name", Str("Bob")))))
	require.NoError(t, tw.Finish())

	want := "users[2]{id,name}:\n  1,Alice\n  2,Bob\n"
	assert.Equal(t, want, sb.String())
}

func TestTableWriter_CountMismatch(t *testing.T) {
	var sb strings.Builder
	tw := NewTableWriter(&sb, "users", []string{"id"}, 2)
	require.NoError(t, tw.WriteRow(Map(Field("id", Int(1)))))

	var ierr *EncodingInvariantError
	assert.ErrorAs(t, tw.Finish(), &ierr)

	tw = NewTableWriter(&sb, "users", []string{"id"}, 1)
	require.NoError(t, tw.WriteRow(Map(Field("id", Int(1)))))
	assert.ErrorAs(t, tw.WriteRow(Map(Field("id", Int(2)))), &ierr)
}

func TestTableWriter_RowShapeMismatch(t *testing.T) {
	var sb strings.Builder
	tw := NewTableWriter(&sb, "users", []string{"id", "name"}, 1)

	var ierr *EncodingInvariantError
	assert.ErrorAs(t, tw.WriteRow(Map(Field("id", Int(1)))), &ierr)
	assert.ErrorAs(t, tw.WriteRow(Map(Field("id", Int(1)), Field("wrong", Str("x")))), &ierr)
	assert.ErrorAs(t, tw.WriteRow(List(Int(1))), &ierr)
}
