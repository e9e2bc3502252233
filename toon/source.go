package toon

import (
	"bufio"
	"io"
	"strings"
)

// ============================================================
// Line Source
// ============================================================
//
// A lazy, forward-only reader of logical lines with a one-slot
// pushback buffer. The decoder never needs more than one line of
// lookahead, so a single buffered line suffices. The input is never
// pre-split: peak decode memory stays proportional to nesting depth,
// not document size.

// line is one logical line: indentation stripped, depth computed in
// indentation units, 1-based line number retained for diagnostics.
type line struct {
	text  string
	depth int
	num   int
}

type lineSource struct {
	r      *bufio.Reader
	unit   int // indentation unit in spaces, 0 until established
	num    int // physical line counter
	pushed bool
	slot   line
	done   bool
}

func newLineSource(r io.Reader) *lineSource {
	return &lineSource{r: bufio.NewReader(r)}
}

// next returns the next non-blank, non-comment line, or io.EOF.
// Indentation is validated against the unit established by the first
// indented line of the document: tabs and partial units are errors.
func (s *lineSource) next() (line, error) {
	if s.pushed {
		s.pushed = false
		return s.slot, nil
	}
	for !s.done {
		raw, err := s.r.ReadString('\n')
		if err == io.EOF {
			s.done = true
		} else if err != nil {
			return line{}, err
		}
		if raw == "" {
			continue
		}
		s.num++
		raw = strings.TrimRight(raw, "\r\n")

		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		text := strings.TrimRight(raw[indent:], " \t")
		if text == "" || text[0] == '#' {
			continue // blank and comment lines are invisible to the decoder
		}
		if text[0] == '\t' || strings.HasPrefix(raw, "\t") {
			return line{}, syntaxErrf(s.num, "tab indentation is not allowed")
		}

		depth := 0
		if indent > 0 {
			if s.unit == 0 {
				s.unit = indent
			}
			if indent%s.unit != 0 {
				return line{}, syntaxErrf(s.num, "indentation of %d spaces is not a multiple of the %d-space unit", indent, s.unit)
			}
			depth = indent / s.unit
		}
		return line{text: text, depth: depth, num: s.num}, nil
	}
	return line{}, io.EOF
}

// pushback makes ln the next result of next. Only one line may be
// pushed back at a time.
func (s *lineSource) pushback(ln line) {
	if s.pushed {
		panic("toon: double pushback")
	}
	s.pushed = true
	s.slot = ln
}
