package toon

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ============================================================
// Tabular Arrays
// ============================================================
//
// A uniform list of records is rendered as a header plus one
// comma-joined row per record:
//
//   users[2]{id,name}:
//     1,Alice
//     2,Bob
//
// Column types are inferred adaptively: the first data row fixes a
// per-column converter tag and every later row is converted
// positionally under the fixed tags. A cell that fails its column's
// converter is a TypeError; the first row is trusted as the schema
// oracle.

// colKind is the converter tag fixed per column by the first data row.
type colKind uint8

const (
	colString colKind = iota
	colInt
	colFloat
	colBool
)

func (k colKind) String() string {
	switch k {
	case colInt:
		return "int"
	case colFloat:
		return "float"
	case colBool:
		return "bool"
	default:
		return "string"
	}
}

// inferColKind classifies a first-row cell. Quoted cells and the null
// literal pin the column to string; bare tokens follow the scalar
// grammar.
func inferColKind(token string) colKind {
	if token == "" || token[0] == '"' || token == "null" {
		return colString
	}
	switch token {
	case "true", "false":
		return colBool
	}
	if isIntToken(token) {
		return colInt
	}
	if isFloatToken(token) {
		return colFloat
	}
	return colString
}

// convertCell applies a column's fixed converter to one raw cell.
// The null literal is accepted in any column. There is no silent
// widening: a non-conforming cell is a TypeError.
func convertCell(token string, kind colKind, column string, lineNum int) (*Value, error) {
	if token == "null" {
		return Null(), nil
	}
	switch kind {
	case colInt:
		if !isIntToken(token) {
			return nil, &TypeError{Line: lineNum, Column: column, Token: token, Want: "int"}
		}
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, &TypeError{Line: lineNum, Column: column, Token: token, Want: "int"}
		}
		return Int(n), nil
	case colFloat:
		// Integer-shaped cells widen to float within a float column.
		if !isIntToken(token) && !isFloatToken(token) {
			return nil, &TypeError{Line: lineNum, Column: column, Token: token, Want: "float"}
		}
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, &TypeError{Line: lineNum, Column: column, Token: token, Want: "float"}
		}
		return Float(f), nil
	case colBool:
		switch token {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, &TypeError{Line: lineNum, Column: column, Token: token, Want: "bool"}
	default:
		if len(token) > 0 && token[0] == '"' {
			s, err := unquoteString(token, lineNum)
			if err != nil {
				return nil, err
			}
			return Str(s), nil
		}
		return Str(token), nil
	}
}

// ============================================================
// Streaming Table Reader
// ============================================================

// tableReader reads one table row at a time from a line source. It is
// the decoder's tabular path and the core of the exported TableReader.
type tableReader struct {
	src     *lineSource
	key     string
	columns []string
	count   int
	depth   int // expected row depth
	hdrLine int
	kinds   []colKind // nil until the first row fixes them
	rows    int
	done    bool

	// flex is set for a keyless document-root header, where rows may
	// sit flush with the header instead of one level deeper. Such
	// lines cannot parse as anything else, so this is unambiguous.
	flex bool
}

func newTableReader(src *lineSource, key string, columns []string, count, depth, hdrLine int) *tableReader {
	return &tableReader{
		src:     src,
		key:     key,
		columns: columns,
		count:   count,
		depth:   depth,
		hdrLine: hdrLine,
	}
}

// next returns the next row as an ordered map, or io.EOF after the
// declared row count has been read and verified.
func (t *tableReader) next() (*Value, error) {
	if t.done {
		return nil, io.EOF
	}
	ln, err := t.src.next()
	if err == io.EOF {
		return t.finish(line{}, false)
	}
	if err != nil {
		return nil, err
	}
	if ln.depth < t.depth {
		if t.flex && t.rows == 0 && ln.depth == t.depth-1 {
			t.depth = ln.depth
		} else {
			return t.finish(ln, true)
		}
	}
	if ln.depth > t.depth {
		return nil, syntaxErrf(ln.num, "unexpected indentation inside table")
	}
	if t.rows == t.count {
		return nil, mismatchErrf(ln.num, t.count, t.count+1, "more rows than declared")
	}
	t.rows++
	return t.parseRow(ln)
}

// finish validates the row count at the end of the table. A line read
// past the table is handed back to the caller.
func (t *tableReader) finish(ln line, push bool) (*Value, error) {
	t.done = true
	if t.rows != t.count {
		num := t.hdrLine
		if push {
			num = ln.num
		}
		return nil, mismatchErrf(num, t.count, t.rows, "table declares %d rows", t.count)
	}
	if push {
		t.src.pushback(ln)
	}
	return nil, io.EOF
}

func (t *tableReader) parseRow(ln line) (*Value, error) {
	cells, err := splitCells(ln.text, ln.num)
	if err != nil {
		return nil, err
	}
	if len(cells) != len(t.columns) {
		return nil, mismatchErrf(ln.num, len(t.columns), len(cells), "row cell count disagrees with columns")
	}
	if t.kinds == nil {
		t.kinds = make([]colKind, len(cells))
		for i, c := range cells {
			t.kinds[i] = inferColKind(c)
		}
	}
	entries := make([]Entry, len(cells))
	for i, c := range cells {
		v, err := convertCell(c, t.kinds[i], t.columns[i], ln.num)
		if err != nil {
			return nil, err
		}
		entries[i] = Entry{Key: t.columns[i], Value: v}
	}
	return Map(entries...), nil
}

// readAll drains the reader into a list value.
func (t *tableReader) readAll() (*Value, error) {
	// The declared count is untrusted input; cap the allocation hint.
	rows := make([]*Value, 0, min(t.count, sizeHintCap))
	for {
		row, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return List(rows...), nil
}

// TableReader provides streaming, row-at-a-time access to a document
// that is a single root-level tabular array. Rows are decoded lazily
// from the underlying reader, so arbitrarily large tables can be
// consumed in bounded memory.
type TableReader struct {
	src   *lineSource
	inner *tableReader
}

// NewTableReader creates a streaming reader over a tabular document.
func NewTableReader(r io.Reader) *TableReader {
	return &TableReader{src: newLineSource(r)}
}

// ReadHeader reads the [n]{col1,col2}: header line. It is called
// implicitly by the first Next.
func (r *TableReader) ReadHeader() (columns []string, count int, err error) {
	if r.inner != nil {
		return r.inner.columns, r.inner.count, nil
	}
	ln, err := r.src.next()
	if err != nil {
		return nil, 0, err
	}
	if ln.depth != 0 {
		return nil, 0, syntaxErrf(ln.num, "unexpected indentation before table header")
	}
	kl, err := parseKeyLine(ln)
	if err != nil {
		return nil, 0, err
	}
	if kl.columns == nil {
		return nil, 0, syntaxErrf(ln.num, "expected a tabular header, got %q", ln.text)
	}
	if kl.rest != "" {
		return nil, 0, syntaxErrf(ln.num, "unexpected content after table header: %q", kl.rest)
	}
	r.inner = newTableReader(r.src, kl.key, kl.columns, kl.count, ln.depth+1, ln.num)
	r.inner.flex = !kl.hasKey
	return kl.columns, kl.count, nil
}

// Next returns the next row as an ordered map value, or io.EOF once
// the declared row count has been read and verified.
func (r *TableReader) Next() (*Value, error) {
	if r.inner == nil {
		if _, _, err := r.ReadHeader(); err != nil {
			return nil, err
		}
	}
	return r.inner.next()
}

// Rows returns the number of data rows read so far.
func (r *TableReader) Rows() int {
	if r.inner == nil {
		return 0
	}
	return r.inner.rows
}

// ============================================================
// Streaming Table Writer
// ============================================================

// TableWriter emits a tabular array incrementally: a header, one
// WriteRow call per record, then Finish. The row count is part of the
// header, so it must be known up front.
type TableWriter struct {
	w       io.Writer
	key     string
	columns []string
	count   int

	// HeaderPrefix and RowPrefix are prepended to the header line and
	// each data row; the encoder uses them to place a table at depth.
	HeaderPrefix string
	RowPrefix    string

	started  bool
	finished bool
	rows     int
}

// NewTableWriter creates a writer for a table of count rows. key may
// be empty for a root-level table. Rows are indented one canonical
// unit by default.
func NewTableWriter(w io.Writer, key string, columns []string, count int) *TableWriter {
	return &TableWriter{w: w, key: key, columns: columns, count: count, RowPrefix: "  "}
}

// WriteHeader writes the key[n]{col1,col2}: line. Called implicitly by
// the first WriteRow.
func (t *TableWriter) WriteHeader() error {
	if t.started {
		return fmt.Errorf("toon: table header already written")
	}
	if len(t.columns) == 0 {
		return &EncodingInvariantError{Message: "table without columns"}
	}
	var sb strings.Builder
	sb.WriteString(t.HeaderPrefix)
	if t.key != "" {
		sb.WriteString(encodeKey(t.key))
	}
	sb.WriteByte('[')
	sb.WriteString(strconv.Itoa(t.count))
	sb.WriteString("]{")
	for i, col := range t.columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(encodeKey(col))
	}
	sb.WriteString("}:\n")
	if _, err := io.WriteString(t.w, sb.String()); err != nil {
		return err
	}
	t.started = true
	return nil
}

// WriteRow writes one record. The record must be a map with exactly
// the writer's column set, in order, and scalar values only; anything
// else means the caller's eligibility check was wrong.
func (t *TableWriter) WriteRow(row *Value) error {
	if !t.started {
		if err := t.WriteHeader(); err != nil {
			return err
		}
	}
	if t.finished {
		return fmt.Errorf("toon: table writer already finished")
	}
	if t.rows == t.count {
		return &EncodingInvariantError{Message: fmt.Sprintf("table declared %d rows", t.count)}
	}
	entries, err := row.AsMap()
	if err != nil || len(entries) != len(t.columns) {
		return &EncodingInvariantError{Message: "row shape disagrees with table columns"}
	}
	var sb strings.Builder
	sb.WriteString(t.RowPrefix)
	for i, e := range entries {
		if e.Key != t.columns[i] {
			return &EncodingInvariantError{Message: fmt.Sprintf("row key %q disagrees with column %q", e.Key, t.columns[i])}
		}
		cell, err := encodeScalar(e.Value)
		if err != nil {
			return &EncodingInvariantError{Message: err.Error()}
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(cell)
	}
	sb.WriteByte('\n')
	if _, err := io.WriteString(t.w, sb.String()); err != nil {
		return err
	}
	t.rows++
	return nil
}

// Finish verifies the declared row count was met.
func (t *TableWriter) Finish() error {
	if t.finished {
		return nil
	}
	if !t.started {
		if err := t.WriteHeader(); err != nil {
			return err
		}
	}
	if t.rows != t.count {
		return &EncodingInvariantError{Message: fmt.Sprintf("wrote %d of %d declared rows", t.rows, t.count)}
	}
	t.finished = true
	return nil
}
