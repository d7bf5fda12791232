package less

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies compile failures using lessc's vocabulary.
type ErrorKind string

const (
	ParseError    ErrorKind = "ParseError"
	NameError     ErrorKind = "NameError"
	FileError     ErrorKind = "FileError"
	ArgumentError ErrorKind = "ArgumentError"
	SyntaxError   ErrorKind = "SyntaxError"
)

// Error is a compile diagnostic, located in the file that caused it when
// the location is known.
type Error struct {
	Kind     ErrorKind
	Message  string
	Filename string
	Line     int
	Column   int
	Extract  string // source line at Line
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	if e.Filename != "" {
		b.WriteString(" in " + e.Filename)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d, column %d", e.Line, e.Column)
	}
	if e.Extract != "" {
		fmt.Fprintf(&b, ":\n%d %s", e.Line, e.Extract)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// source is one parsed file together with its line index.
type source struct {
	name  string
	text  string
	lines []int // offsets of line starts
}

func newSource(name, text string) *source {
	s := &source{name: name, text: text, lines: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}
	return s
}

// lineCol converts a byte offset into 1-based line and column numbers.
func (s *source) lineCol(offset int) (int, int) {
	i := sort.SearchInts(s.lines, offset+1) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - s.lines[i] + 1
}

func (s *source) line(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}
	start := s.lines[n-1]
	end := len(s.text)
	if n < len(s.lines) {
		end = s.lines[n] - 1
	}
	return strings.TrimRight(s.text[start:end], "\r")
}

type position struct {
	src    *source
	offset int
}

func newError(kind ErrorKind, pos position, format string, args ...any) *Error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
	e.locate(pos)
	return e
}

func (e *Error) locate(pos position) {
	if pos.src == nil || e.Line > 0 {
		return
	}
	e.Filename = pos.src.name
	e.Line, e.Column = pos.src.lineCol(pos.offset)
	e.Extract = pos.src.line(e.Line)
}

// locate attaches pos to err. Errors that already carry a kind keep it;
// anything else is reported as kind.
func locate(err error, kind ErrorKind, pos position) error {
	var le *Error
	if errors.As(err, &le) {
		le.locate(pos)
		return le
	}
	e := newError(kind, pos, "%s", err.Error())
	e.Err = err
	return e
}
