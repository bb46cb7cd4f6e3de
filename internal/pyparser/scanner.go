package pyparser

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var closerFor = map[byte]byte{'(': ')', '[': ']', '{': '}'}

type bracket struct {
	ch        byte
	line, col int
}

// scanner turns Python source into a token slice, producing the NEWLINE,
// INDENT and DEDENT tokens of the language's layout rules.
type scanner struct {
	filename  string
	src       string
	off       int
	line      int
	lineStart int

	indents  []int
	brackets []bracket
	toks     []Token
}

// Tokenize scans src into tokens ending with an EOF token. CRLF line endings
// are read as LF; a lone carriage return counts as whitespace.
func Tokenize(filename string, src []byte) ([]Token, error) {
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	s := &scanner{
		filename: filename,
		src:      strings.TrimPrefix(string(src), "\ufeff"),
		line:     1,
		indents:  []int{0},
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.toks, nil
}

func (s *scanner) errorf(line, col int, format string, args ...any) *Error {
	return &Error{Filename: s.filename, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) col() int { return s.off - s.lineStart }

func (s *scanner) emit(kind Kind, text string, line, col int) {
	s.toks = append(s.toks, Token{Kind: kind, Text: text, Line: line, Col: col})
}

func (s *scanner) newline() {
	s.line++
	s.lineStart = s.off
}

func (s *scanner) run() error {
	atLineStart := true
	for {
		if atLineStart && len(s.brackets) == 0 {
			blank, err := s.indentation()
			if err != nil {
				return err
			}
			if blank {
				continue
			}
			atLineStart = false
		}
		if s.off >= len(s.src) {
			break
		}

		c := s.src[s.off]
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\r':
			s.off++
		case c == '#':
			s.skipComment()
		case c == '\n':
			if len(s.brackets) == 0 {
				s.emit(Newline, "", s.line, s.col())
				atLineStart = true
			}
			s.off++
			s.newline()
		case c == '\\':
			if err := s.continuation(); err != nil {
				return err
			}
		case c >= '0' && c <= '9', c == '.' && s.off+1 < len(s.src) && isDigit(s.src[s.off+1]):
			s.scanNumber()
		case c == '"' || c == '\'':
			if err := s.scanString(s.off, ""); err != nil {
				return err
			}
		default:
			r, _ := utf8.DecodeRuneInString(s.src[s.off:])
			if isIdentStart(r) {
				if err := s.scanNameOrString(); err != nil {
					return err
				}
				continue
			}
			if err := s.scanOp(); err != nil {
				return err
			}
		}
	}

	if n := len(s.brackets); n > 0 {
		b := s.brackets[n-1]
		return s.errorf(b.line, b.col, "'%c' was never closed", b.ch)
	}
	if n := len(s.toks); n > 0 && s.toks[n-1].Kind != Newline && s.toks[n-1].Kind != Dedent {
		s.emit(Newline, "", s.line, s.col())
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(Dedent, "", s.line, 0)
	}
	s.emit(EOF, "", s.line, 0)
	return nil
}

// indentation measures the indentation of a new logical line and emits
// INDENT or DEDENT tokens. Blank and comment-only lines are consumed whole
// and reported as blank.
func (s *scanner) indentation() (blank bool, err error) {
	width := 0
loop:
	for ; s.off < len(s.src); s.off++ {
		switch s.src[s.off] {
		case ' ':
			width++
		case '\t':
			width = (width/8 + 1) * 8
		case '\f':
			width = 0
		case '\r':
		default:
			break loop
		}
	}
	if s.off >= len(s.src) {
		return false, nil
	}
	switch s.src[s.off] {
	case '#':
		s.skipComment()
		fallthrough
	case '\n':
		if s.off < len(s.src) {
			s.off++
			s.newline()
		}
		return true, nil
	}

	top := s.indents[len(s.indents)-1]
	switch {
	case width > top:
		s.indents = append(s.indents, width)
		s.emit(Indent, "", s.line, s.col())
	case width < top:
		for width < s.indents[len(s.indents)-1] {
			s.indents = s.indents[:len(s.indents)-1]
			s.emit(Dedent, "", s.line, s.col())
		}
		if width != s.indents[len(s.indents)-1] {
			return false, s.errorf(s.line, s.col(), "unindent does not match any outer indentation level")
		}
	}
	return false, nil
}

func (s *scanner) skipComment() {
	for s.off < len(s.src) && s.src[s.off] != '\n' {
		s.off++
	}
}

func (s *scanner) continuation() error {
	line, col := s.line, s.col()
	s.off++
	if s.off >= len(s.src) {
		return s.errorf(line, col, "unexpected EOF while parsing")
	}
	if s.src[s.off] != '\n' {
		return s.errorf(line, col, "unexpected character after line continuation character")
	}
	s.off++
	s.newline()
	return nil
}

func (s *scanner) scanNumber() {
	start, col := s.off, s.col()
	if s.src[s.off] == '0' && s.off+1 < len(s.src) && strings.IndexByte("xXoObB", s.src[s.off+1]) >= 0 {
		s.off += 2
		for s.off < len(s.src) && (isHexDigit(s.src[s.off]) || s.src[s.off] == '_') {
			s.off++
		}
		s.emit(Number, s.src[start:s.off], s.line, col)
		return
	}
	digits := func() {
		for s.off < len(s.src) && (isDigit(s.src[s.off]) || s.src[s.off] == '_') {
			s.off++
		}
	}
	digits()
	if s.off < len(s.src) && s.src[s.off] == '.' {
		s.off++
		digits()
	}
	if s.off < len(s.src) && (s.src[s.off] == 'e' || s.src[s.off] == 'E') {
		next := s.off + 1
		if next < len(s.src) && (s.src[next] == '+' || s.src[next] == '-') {
			next++
		}
		if next < len(s.src) && isDigit(s.src[next]) {
			s.off = next
			digits()
		}
	}
	if s.off < len(s.src) && (s.src[s.off] == 'j' || s.src[s.off] == 'J') {
		s.off++
	}
	s.emit(Number, s.src[start:s.off], s.line, col)
}

// scanNameOrString scans an identifier, or a string literal when the
// identifier is a string prefix immediately followed by a quote.
func (s *scanner) scanNameOrString() error {
	start, col := s.off, s.col()
	for s.off < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.off:])
		if !isIdentContinue(r) {
			break
		}
		s.off += size
	}
	word := s.src[start:s.off]
	if s.off < len(s.src) && (s.src[s.off] == '"' || s.src[s.off] == '\'') && isStringPrefix(word) {
		s.off = start
		return s.scanString(start+len(word), strings.ToLower(word))
	}
	s.emit(Name, word, s.line, col)
	return nil
}

// scanString scans a string literal whose opening quote is at quoteOff and
// whose prefix (lowercased) starts at the current offset.
func (s *scanner) scanString(quoteOff int, prefix string) error {
	start, line, col := s.off, s.line, s.col()
	formatted := strings.ContainsAny(prefix, "ft")
	q := s.src[quoteOff]
	triple := strings.HasPrefix(s.src[quoteOff:], strings.Repeat(string(q), 3))
	s.off = quoteOff + 1
	if triple {
		s.off = quoteOff + 3
	}

	for {
		if s.off >= len(s.src) {
			if triple {
				return s.errorf(line, col, "unterminated triple-quoted string literal")
			}
			return s.errorf(line, col, "unterminated string literal")
		}
		c := s.src[s.off]
		switch {
		case c == '\\':
			s.off++
			if s.off < len(s.src) {
				if s.src[s.off] == '\n' {
					s.off++
					s.newline()
				} else {
					s.off++
				}
			}
			continue
		case c == '\n':
			if !triple {
				return s.errorf(line, col, "unterminated string literal")
			}
			s.off++
			s.newline()
			continue
		case c == q:
			if !triple {
				s.off++
				s.emit(String, s.src[start:s.off], line, col)
				return nil
			}
			if strings.HasPrefix(s.src[s.off:], strings.Repeat(string(q), 3)) {
				s.off += 3
				s.emit(String, s.src[start:s.off], line, col)
				return nil
			}
		case formatted && c == '{':
			if s.off+1 < len(s.src) && s.src[s.off+1] == '{' {
				s.off += 2
				continue
			}
			if err := s.skipReplacementField(line, col); err != nil {
				return err
			}
			continue
		}
		s.off++
	}
}

// skipReplacementField skips a `{expr!conv:spec}` field of an f-string,
// including nested brackets and nested string literals.
func (s *scanner) skipReplacementField(line, col int) error {
	s.off++
	depth := 0
	for s.off < len(s.src) {
		c := s.src[s.off]
		switch c {
		case '{', '[', '(':
			depth++
		case ']', ')':
			depth--
		case '}':
			if depth == 0 {
				s.off++
				return nil
			}
			depth--
		case '\n':
			s.off++
			s.newline()
			continue
		case '"', '\'':
			if err := s.skipNestedString(); err != nil {
				return err
			}
			continue
		}
		s.off++
	}
	return s.errorf(line, col, "f-string: expecting '}'")
}

func (s *scanner) skipNestedString() error {
	saved := len(s.toks)
	err := s.scanString(s.off, "")
	s.toks = s.toks[:saved]
	return err
}

func (s *scanner) scanOp() error {
	line, col := s.line, s.col()
	rest := s.src[s.off:]
	for _, group := range [][]string{ops3, ops2} {
		for _, op := range group {
			if strings.HasPrefix(rest, op) {
				s.off += len(op)
				s.emit(Op, op, line, col)
				return nil
			}
		}
	}

	c := rest[0]
	if strings.IndexByte(ops1, c) < 0 {
		r, _ := utf8.DecodeRuneInString(rest)
		return s.errorf(line, col, "invalid character '%c' (U+%04X)", r, r)
	}
	switch c {
	case '(', '[', '{':
		s.brackets = append(s.brackets, bracket{ch: c, line: line, col: col})
	case ')', ']', '}':
		n := len(s.brackets)
		if n == 0 {
			return s.errorf(line, col, "unmatched '%c'", c)
		}
		if open := s.brackets[n-1]; closerFor[open.ch] != c {
			return s.errorf(line, col, "closing parenthesis '%c' does not match opening parenthesis '%c'", c, open.ch)
		}
		s.brackets = s.brackets[:n-1]
	}
	s.off++
	s.emit(Op, string(c), line, col)
	return nil
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "f", "t", "br", "rb", "fr", "rf", "tr", "rt":
		return true
	}
	return false
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.In(r, unicode.Nl, unicode.Other_ID_Start)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue)
}
