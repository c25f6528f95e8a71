package library

import (
	"fmt"
	"strings"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

// span is one top-level child of the library root: data[Start:End] runs from
// its opening to its closing parenthesis.
type span struct {
	Keyword string
	Name    string
	Start   int
	End     int
}

// scanTopLevel walks a library document and returns its direct children and
// the offset of the root's closing parenthesis. Quoted strings are skipped
// with backslash escapes honoured, so parentheses or names inside them never
// count as structure.
func scanTopLevel(data []byte) ([]span, int, error) {
	var (
		children []span
		depth    int
		start    = -1
		rootEnd  = -1
	)
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '"':
			end, err := skipString(data, i)
			if err != nil {
				return nil, 0, err
			}
			i = end
		case '(':
			depth++
			if depth == 2 {
				start = i
			}
		case ')':
			depth--
			switch {
			case depth < 0:
				return nil, 0, fmt.Errorf("%w: unbalanced ')' at offset %d", apperr.ErrLibrary, i)
			case depth == 1:
				kw, name := header(data[start:i])
				children = append(children, span{Keyword: kw, Name: name, Start: start, End: i + 1})
			case depth == 0:
				if rootEnd >= 0 {
					return nil, 0, fmt.Errorf("%w: content after root at offset %d", apperr.ErrLibrary, i)
				}
				rootEnd = i
			}
		}
	}
	if depth != 0 || rootEnd < 0 {
		return nil, 0, fmt.Errorf("%w: unterminated library document", apperr.ErrLibrary)
	}
	return children, rootEnd, nil
}

// skipString returns the offset of the closing quote of the string that
// opens at data[i].
func skipString(data []byte, i int) (int, error) {
	for j := i + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '"':
			return j, nil
		}
	}
	return 0, fmt.Errorf("%w: unterminated string at offset %d", apperr.ErrLibrary, i)
}

// header reads the keyword and first argument of "(keyword arg ...".
func header(data []byte) (keyword, name string) {
	rest := string(data[1:])
	keyword, rest = atom(strings.TrimLeft(rest, " \t\r\n"))
	rest = strings.TrimLeft(rest, " \t\r\n")
	if strings.HasPrefix(rest, "\"") {
		return keyword, unquote(rest)
	}
	name, _ = atom(rest)
	return keyword, name
}

func atom(s string) (string, string) {
	end := strings.IndexAny(s, " \t\r\n()\"")
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

// unquote decodes the string literal at the start of s.
func unquote(s string) string {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				if s[i] == 'n' {
					b.WriteByte('\n')
				} else {
					b.WriteByte(s[i])
				}
			}
		case '"':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// lineSpan widens [start, end) to cover the leading indentation and the
// trailing newline when the entry sits on lines of its own.
func lineSpan(data []byte, start, end int) (int, int) {
	s := start
	for s > 0 && (data[s-1] == ' ' || data[s-1] == '\t') {
		s--
	}
	if s > 0 && data[s-1] != '\n' {
		s = start
	}
	e := end
	for e < len(data) && (data[e] == ' ' || data[e] == '\t' || data[e] == '\r') {
		e++
	}
	if e < len(data) && data[e] == '\n' {
		return s, e + 1
	}
	if e == len(data) {
		return s, e
	}
	return s, end
}

// insertionPoint is where a new entry goes: the start of the root closer's
// line when it is alone there, else the closer itself.
func insertionPoint(data []byte, rootEnd int) (int, bool) {
	s := rootEnd
	for s > 0 && (data[s-1] == ' ' || data[s-1] == '\t') {
		s--
	}
	if s > 0 && data[s-1] == '\n' {
		return s, true
	}
	return rootEnd, false
}
