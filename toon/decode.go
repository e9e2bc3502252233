package toon

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// ============================================================
// Decoder
// ============================================================
//
// Recursive descent over indentation depth, fed one line at a time by
// the line source. A block ends at end-of-input or at the first line
// shallower than the block's depth, which is pushed back for the
// caller. Decoding is all-or-nothing: the first error aborts.

// Decode reads a TOON document from r and reconstructs its value tree.
// Empty input decodes to Null.
func Decode(r io.Reader) (*Value, error) {
	d := &decoder{src: newLineSource(r)}
	return d.decodeDocument()
}

// DecodeString decodes a TOON document held in memory.
func DecodeString(s string) (*Value, error) {
	return Decode(strings.NewReader(s))
}

type decoder struct {
	src *lineSource
}

func (d *decoder) decodeDocument() (*Value, error) {
	ln, err := d.src.next()
	if err == io.EOF {
		return Null(), nil
	}
	if err != nil {
		return nil, err
	}
	if ln.depth != 0 {
		return nil, syntaxErrf(ln.num, "unexpected indentation at start of document")
	}

	// A document holding a single bare literal is that scalar.
	if _, perr := parseKeyLine(ln); perr == errNoSeparator {
		if nxt, e2 := d.src.next(); e2 == nil {
			return nil, syntaxErrf(nxt.num, "missing ':' separator in %q", ln.text)
		} else if e2 != io.EOF {
			return nil, e2
		}
		return decodeScalar(ln.text, ln.num)
	}

	d.src.pushback(ln)
	v, err := d.decodeBlock(0)
	if err != nil {
		return nil, err
	}
	if nxt, e2 := d.src.next(); e2 == nil {
		return nil, syntaxErrf(nxt.num, "unexpected content after document")
	} else if e2 != io.EOF {
		return nil, e2
	}
	return v, nil
}

// decodeBlock reads the container starting at the given depth: either
// a run of key lines forming a map, or a single keyless array header.
// An empty block is an empty map.
func (d *decoder) decodeBlock(depth int) (*Value, error) {
	var entries []Entry
	seen := map[string]struct{}{}
	for {
		ln, err := d.src.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if ln.depth < depth {
			d.src.pushback(ln)
			break
		}
		if ln.depth > depth {
			return nil, syntaxErrf(ln.num, "unexpected indentation")
		}

		kl, err := parseKeyLine(ln)
		if err == errNoSeparator {
			return nil, syntaxErrf(ln.num, "missing ':' separator in %q", ln.text)
		}
		if err != nil {
			return nil, err
		}

		if !kl.hasKey {
			if len(entries) > 0 {
				return nil, syntaxErrf(ln.num, "array header must be the only content of its block")
			}
			v, err := d.decodeList(kl, ln, ln.depth == 0)
			if err != nil {
				return nil, err
			}
			if nxt, e2 := d.src.next(); e2 == nil {
				if nxt.depth >= depth {
					return nil, syntaxErrf(nxt.num, "unexpected content after array")
				}
				d.src.pushback(nxt)
			} else if e2 != io.EOF {
				return nil, e2
			}
			return v, nil
		}

		if _, dup := seen[kl.key]; dup {
			return nil, syntaxErrf(ln.num, "duplicate key %q", kl.key)
		}
		seen[kl.key] = struct{}{}

		val, err := d.decodeEntryValue(kl, ln)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Key: kl.key, Value: val})
	}
	return Map(entries...), nil
}

// decodeEntryValue decodes the value of one key line. Nested content
// lives one level deeper than the line itself.
func (d *decoder) decodeEntryValue(kl keyLine, ln line) (*Value, error) {
	if kl.count >= 0 || kl.columns != nil {
		return d.decodeListValue(kl, ln)
	}
	if kl.rest == "" {
		return d.decodeBlock(ln.depth + 1)
	}
	return d.decodeInlineValue(kl.rest, ln)
}

// decodeInlineValue decodes the text after "key: ": an inline array
// value ([], or a [n]-headed list) or a plain scalar.
func (d *decoder) decodeInlineValue(rest string, ln line) (*Value, error) {
	if rest == "[]" {
		return List(), nil
	}
	if rest[0] == '[' {
		kl, err := parseKeyLine(line{text: rest, depth: ln.depth, num: ln.num})
		if err == errNoSeparator {
			return nil, syntaxErrf(ln.num, "malformed array value %q", rest)
		}
		if err != nil {
			return nil, err
		}
		return d.decodeListValue(kl, ln)
	}
	return decodeScalar(rest, ln.num)
}

// decodeListValue decodes any [n]-headed form: tabular, flat inline,
// bulleted, or empty. ln is the physical line carrying the header, so
// body lines sit at ln.depth+1.
func (d *decoder) decodeListValue(kl keyLine, ln line) (*Value, error) {
	return d.decodeList(kl, ln, false)
}

// decodeList is decodeListValue with the root relaxation: a keyless
// tabular header at depth 0 may carry its rows flush left.
func (d *decoder) decodeList(kl keyLine, ln line, rootTable bool) (*Value, error) {
	if kl.columns != nil {
		if kl.rest != "" {
			return nil, syntaxErrf(ln.num, "unexpected content after table header: %q", kl.rest)
		}
		tr := newTableReader(d.src, kl.key, kl.columns, kl.count, ln.depth+1, ln.num)
		tr.flex = rootTable
		return tr.readAll()
	}
	if kl.rest == "" {
		if kl.count == 0 {
			return List(), nil
		}
		return d.decodeBulleted(kl.count, ln.depth+1, ln.num)
	}
	return d.decodeFlatList(kl, ln.num)
}

// decodeFlatList decodes key[n]: v1, v2, ..., vn.
func (d *decoder) decodeFlatList(kl keyLine, num int) (*Value, error) {
	cells, err := splitCells(kl.rest, num)
	if err != nil {
		return nil, err
	}
	if len(cells) != kl.count {
		return nil, mismatchErrf(num, kl.count, len(cells), "inline array length disagrees with header")
	}
	elems := make([]*Value, len(cells))
	for i, c := range cells {
		v, err := decodeScalar(c, num)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return List(elems...), nil
}

// sizeHintCap bounds pre-allocation from declared array lengths, which
// arrive from the document and cannot be trusted before the elements
// are actually read.
const sizeHintCap = 1024

// decodeBulleted decodes key[n]: followed by n "- " items at depth.
func (d *decoder) decodeBulleted(count, depth, hdrNum int) (*Value, error) {
	elems := make([]*Value, 0, min(count, sizeHintCap))
	for {
		ln, err := d.src.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if ln.depth < depth {
			d.src.pushback(ln)
			break
		}
		if ln.depth > depth {
			return nil, syntaxErrf(ln.num, "unexpected indentation inside array")
		}
		if ln.text != "-" && !strings.HasPrefix(ln.text, "- ") {
			return nil, syntaxErrf(ln.num, "expected '-' array item, got %q", ln.text)
		}
		if len(elems) == count {
			return nil, mismatchErrf(ln.num, count, count+1, "more items than declared")
		}
		rest := strings.TrimSpace(strings.TrimPrefix(ln.text, "-"))
		v, err := d.decodeElement(rest, ln)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	if len(elems) != count {
		return nil, mismatchErrf(hdrNum, count, len(elems), "array declares %d items", count)
	}
	return List(elems...), nil
}

// decodeElement decodes one bulleted item from the text after "- ".
// An empty remainder means the item's content is the block indented
// beneath the dash; a key-shaped remainder opens an inline map whose
// further entries, if the first value fit on the dash line, continue
// one level deeper.
func (d *decoder) decodeElement(rest string, ln line) (*Value, error) {
	if rest == "" {
		return d.decodeBlock(ln.depth + 1)
	}
	kl, err := parseKeyLine(line{text: rest, depth: ln.depth, num: ln.num})
	if err == errNoSeparator {
		return decodeScalar(rest, ln.num)
	}
	if err != nil {
		return nil, err
	}
	if !kl.hasKey {
		return d.decodeListValue(kl, ln)
	}

	val, err := d.decodeEntryValue(kl, ln)
	if err != nil {
		return nil, err
	}
	entries := []Entry{{Key: kl.key, Value: val}}

	// Only an entry whose value sat entirely on the dash line leaves
	// the deeper lines free to be continuation entries of this item.
	if kl.rest != "" && kl.columns == nil {
		cont, err := d.decodeBlock(ln.depth + 1)
		if err != nil {
			return nil, err
		}
		more, e := cont.AsMap()
		if e != nil {
			return nil, syntaxErrf(ln.num, "invalid continuation of array item")
		}
		for _, entry := range more {
			if entry.Key == kl.key {
				return nil, syntaxErrf(ln.num, "duplicate key %q", entry.Key)
			}
			entries = append(entries, entry)
		}
	}
	return Map(entries...), nil
}

// ============================================================
// Key-Line Grammar
// ============================================================

// errNoSeparator marks a line with no key/value separator; callers
// decide whether that means a bare scalar or a syntax error.
var errNoSeparator = errors.New("toon: no separator")

// keyLine is the parsed shape of one structural line:
//
//	key: rest         scalar or inline value
//	key:              nested block follows
//	key[n]: rest      flat inline array
//	key[n]:           bulleted array follows
//	key[n]{c1,c2}:    tabular array follows
//
// The keyless forms ([n]..., at the document root or nested) set
// hasKey false. count is -1 when no [n] is present; columns is nil
// when no {...} is present.
type keyLine struct {
	key     string
	hasKey  bool
	count   int
	columns []string
	rest    string
}

func parseKeyLine(ln line) (keyLine, error) {
	text := ln.text
	kl := keyLine{count: -1}
	pos := 0

	switch {
	case text[0] == '[':
		// Keyless array header.
	case text[0] == '"':
		end, err := scanQuoted(text, ln.num)
		if err != nil {
			return kl, err
		}
		key, err := unquoteString(text[:end], ln.num)
		if err != nil {
			return kl, err
		}
		kl.key = key
		kl.hasKey = true
		pos = end
		if pos >= len(text) {
			// The whole line is one quoted token, not a key line.
			return keyLine{count: -1}, errNoSeparator
		}
		if text[pos] == ':' {
			kl.rest = strings.TrimSpace(text[pos+1:])
			return kl, nil
		}
		if text[pos] != '[' {
			return kl, syntaxErrf(ln.num, "expected ':' after quoted key in %q", text)
		}
	default:
		i := 0
		for ; i < len(text); i++ {
			if text[i] == '[' {
				break
			}
			if text[i] == ':' && (i+1 == len(text) || text[i+1] == ' ') {
				kl.key = text[:i]
				kl.hasKey = true
				kl.rest = strings.TrimSpace(text[i+1:])
				return kl, nil
			}
		}
		if i == len(text) {
			return kl, errNoSeparator
		}
		kl.key = text[:i]
		kl.hasKey = true
		pos = i
	}

	// Array length: [n]
	pos++ // consume '['
	start := pos
	for pos < len(text) && text[pos] >= '0' && text[pos] <= '9' {
		pos++
	}
	if pos == start || pos >= len(text) || text[pos] != ']' {
		return kl, syntaxErrf(ln.num, "malformed array length in %q", text)
	}
	n, err := strconv.Atoi(text[start:pos])
	if err != nil {
		return kl, syntaxErrf(ln.num, "malformed array length in %q", text)
	}
	kl.count = n
	pos++ // consume ']'

	// Optional column list: {c1,c2}
	if pos < len(text) && text[pos] == '{' {
		end, err := scanBraces(text, pos, ln.num)
		if err != nil {
			return kl, err
		}
		cols, err := parseColumns(text[pos+1:end], ln.num)
		if err != nil {
			return kl, err
		}
		kl.columns = cols
		pos = end + 1
	}

	if pos >= len(text) {
		// The trailing colon is optional on a tabular header only.
		if kl.columns == nil {
			return kl, syntaxErrf(ln.num, "expected ':' after array header in %q", text)
		}
		return kl, nil
	}
	if text[pos] != ':' {
		return kl, syntaxErrf(ln.num, "malformed array header in %q", text)
	}
	kl.rest = strings.TrimSpace(text[pos+1:])
	return kl, nil
}

// scanQuoted returns the index just past the closing quote of a quoted
// token starting at text[0].
func scanQuoted(text string, num int) (int, error) {
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		}
	}
	return 0, syntaxErrf(num, "unterminated quote in %q", text)
}

// scanBraces returns the index of the '}' matching the '{' at pos,
// skipping quoted column names.
func scanBraces(text string, pos, num int) (int, error) {
	for i := pos + 1; i < len(text); i++ {
		switch text[i] {
		case '"':
			end, err := scanQuoted(text[i:], num)
			if err != nil {
				return 0, err
			}
			i += end - 1
		case '}':
			return i, nil
		}
	}
	return 0, syntaxErrf(num, "unterminated column list in %q", text)
}

// parseColumns splits and validates a table's column names. Columns
// must be non-empty and unique.
func parseColumns(inner string, num int) ([]string, error) {
	if strings.TrimSpace(inner) == "" {
		return nil, &SchemaMismatchError{Line: num, Message: "table has no columns"}
	}
	raw, err := splitCells(inner, num)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(raw))
	seen := map[string]struct{}{}
	for i, c := range raw {
		if c == "" {
			return nil, syntaxErrf(num, "empty column name")
		}
		name := c
		if c[0] == '"' {
			name, err = unquoteString(c, num)
			if err != nil {
				return nil, err
			}
		}
		if _, dup := seen[name]; dup {
			return nil, &SchemaMismatchError{Line: num, Message: "duplicate column " + strconv.Quote(name)}
		}
		seen[name] = struct{}{}
		cols[i] = name
	}
	return cols, nil
}
