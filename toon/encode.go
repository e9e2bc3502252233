package toon

import (
	"strconv"
	"strings"
)

// ============================================================
// Encoder
// ============================================================
//
// A pure tree walk: two calls on equal trees produce byte-identical
// output. Each list is classified before emission and rendered in the
// most compact of three forms:
//
//	tabular    key[n]{c1,c2}: plus one comma-joined row per record
//	flat       key[n]: v1, v2, ..., vn
//	bulleted   key[n]: plus one "- " item per element

// EncodeOptions configures the encoder.
type EncodeOptions struct {
	// Indent is the indentation unit (default two spaces).
	Indent string

	// InlineLimit is the maximum joined width for a flat inline list;
	// longer scalar lists fall back to bulleted form.
	InlineLimit int
}

// DefaultEncodeOptions returns the canonical settings.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Indent: "  ", InlineLimit: 120}
}

// Encode serializes a value tree to TOON text with canonical options.
func Encode(v *Value) (string, error) {
	return EncodeWithOptions(v, DefaultEncodeOptions())
}

// EncodeWithOptions serializes a value tree with custom options.
func EncodeWithOptions(v *Value, opts EncodeOptions) (string, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	if opts.InlineLimit <= 0 {
		opts.InlineLimit = 120
	}
	e := &encoder{opts: opts}
	if err := e.encodeRoot(v); err != nil {
		return "", err
	}
	return e.sb.String(), nil
}

type encoder struct {
	sb   strings.Builder
	opts EncodeOptions
}

func (e *encoder) encodeRoot(v *Value) error {
	switch v.Kind() {
	case KindMap:
		return e.emitEntries(v.mapVal, 0)
	case KindList:
		return e.emitList("", v.listVal, 0)
	default:
		lit, err := encodeScalar(v)
		if err != nil {
			return err
		}
		e.line(0, lit)
		return nil
	}
}

// emitEntries writes one map's entries at the given depth. An empty
// map contributes no lines.
func (e *encoder) emitEntries(entries []Entry, depth int) error {
	for _, entry := range entries {
		key := encodeKey(entry.Key)
		switch entry.Value.Kind() {
		case KindMap:
			e.line(depth, key+":")
			if err := e.emitEntries(entry.Value.mapVal, depth+1); err != nil {
				return err
			}
		case KindList:
			if err := e.emitList(entry.Key, entry.Value.listVal, depth); err != nil {
				return err
			}
		default:
			lit, err := encodeScalar(entry.Value)
			if err != nil {
				return err
			}
			e.line(depth, key+": "+lit)
		}
	}
	return nil
}

// emitList dispatches one list to its classified form. key is empty
// for root or nested keyless lists.
func (e *encoder) emitList(key string, elems []*Value, depth int) error {
	prefix := ""
	if key != "" {
		prefix = encodeKey(key)
	}
	if len(elems) == 0 {
		e.line(depth, prefix+"[0]:")
		return nil
	}

	switch class, cols := classifyList(elems); class {
	case listTabular:
		return e.emitTabular(key, cols, elems, depth)

	case listFlat:
		cells := make([]string, len(elems))
		for i, el := range elems {
			lit, err := encodeScalar(el)
			if err != nil {
				return err
			}
			cells[i] = lit
		}
		joined := strings.Join(cells, ", ")
		if len(joined) <= e.opts.InlineLimit {
			e.line(depth, prefix+"["+strconv.Itoa(len(elems))+"]: "+joined)
			return nil
		}
		return e.emitBulleted(prefix, elems, depth)

	default:
		return e.emitBulleted(prefix, elems, depth)
	}
}

func (e *encoder) emitTabular(key string, cols []string, rows []*Value, depth int) error {
	tw := NewTableWriter(&e.sb, key, cols, len(rows))
	tw.HeaderPrefix = strings.Repeat(e.opts.Indent, depth)
	tw.RowPrefix = strings.Repeat(e.opts.Indent, depth+1)
	for _, row := range rows {
		if err := tw.WriteRow(row); err != nil {
			return err
		}
	}
	return tw.Finish()
}

func (e *encoder) emitBulleted(prefix string, elems []*Value, depth int) error {
	e.line(depth, prefix+"["+strconv.Itoa(len(elems))+"]:")
	for _, el := range elems {
		switch el.Kind() {
		case KindMap:
			e.line(depth+1, "-")
			if err := e.emitEntries(el.mapVal, depth+2); err != nil {
				return err
			}
		case KindList:
			e.line(depth+1, "-")
			if err := e.emitList("", el.listVal, depth+2); err != nil {
				return err
			}
		default:
			lit, err := encodeScalar(el)
			if err != nil {
				return err
			}
			e.line(depth+1, "- "+lit)
		}
	}
	return nil
}

func (e *encoder) line(depth int, text string) {
	for i := 0; i < depth; i++ {
		e.sb.WriteString(e.opts.Indent)
	}
	e.sb.WriteString(text)
	e.sb.WriteByte('\n')
}

// ============================================================
// List Classification
// ============================================================

type listClass uint8

const (
	listFlat listClass = iota
	listTabular
	listBulleted
)

// classifyList decides how a list is rendered. It is a pure predicate
// over the list's content, recomputed on every encode:
//
//   - tabular when every element is a map, all maps share one ordered
//     non-empty key set, and every cell value is a scalar;
//   - flat when every element is a scalar;
//   - bulleted otherwise.
//
// For tabular lists the shared column order is returned.
func classifyList(elems []*Value) (listClass, []string) {
	if len(elems) == 0 {
		return listFlat, nil
	}

	allScalar := true
	allMaps := true
	for _, el := range elems {
		switch el.Kind() {
		case KindMap:
			allScalar = false
		case KindList:
			allScalar = false
			allMaps = false
		default:
			allMaps = false
		}
	}
	if allMaps {
		if cols, ok := uniformColumns(elems); ok {
			return listTabular, cols
		}
		return listBulleted, nil
	}
	if allScalar {
		return listFlat, nil
	}
	return listBulleted, nil
}

// uniformColumns reports whether every map shares the first element's
// ordered key set with purely scalar values.
func uniformColumns(elems []*Value) ([]string, bool) {
	first := elems[0].mapVal
	if len(first) == 0 {
		return nil, false
	}
	cols := make([]string, len(first))
	for i, e := range first {
		cols[i] = e.Key
	}
	for _, el := range elems {
		if len(el.mapVal) != len(cols) {
			return nil, false
		}
		for i, e := range el.mapVal {
			if e.Key != cols[i] {
				return nil, false
			}
			switch e.Value.Kind() {
			case KindList, KindMap:
				return nil, false
			}
		}
	}
	return cols, true
}
