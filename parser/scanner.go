package parser

import (
	"errors"
	"strconv"
	"strings"
)

// scanner walks a comment-blanked scene buffer
type scanner struct {
	buf []byte
	pos int
}

// newScanner copies data and blanks every '#' comment that is not inside
// a quoted string, so offsets stay aligned with the original text
func newScanner(data []byte) *scanner {
	buf := make([]byte, len(data))
	copy(buf, data)
	inQuote := false
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '"':
			inQuote = !inQuote
		case '#':
			if inQuote {
				continue
			}
			for ; i < len(buf) && buf[i] != '\n'; i++ {
				buf[i] = ' '
			}
		case '\n':
			// an unterminated quote does not carry over to the next line
			inQuote = false
		}
	}
	return &scanner{buf: buf}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func (s *scanner) eof() bool { return s.pos >= len(s.buf) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.buf[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.buf[s.pos]) {
		s.pos++
	}
}

// skipToken advances past the current run of non-space bytes
func (s *scanner) skipToken() {
	for !s.eof() && !isSpace(s.buf[s.pos]) {
		s.pos++
	}
}

// word reads a run of non-space bytes
func (s *scanner) word() string {
	s.skipSpace()
	start := s.pos
	s.skipToken()
	return string(s.buf[start:s.pos])
}

// found describes the byte at the cursor for error messages
func (s *scanner) found() string {
	if s.eof() {
		return "EOF"
	}
	return string(s.buf[s.pos])
}

// numberToken reads a token delimited by space or brackets
func (s *scanner) numberToken() string {
	start := s.pos
	for !s.eof() {
		c := s.buf[s.pos]
		if isSpace(c) || c == '[' || c == ']' {
			break
		}
		s.pos++
	}
	return string(s.buf[start:s.pos])
}

func startsNumber(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

// floats reads exactly n numbers, optionally enclosed in brackets. Reading
// stops early at anything that cannot start a number, which is reported as
// an argument count error at that position. Numbers past the n-th inside
// brackets are skipped and their count returned as surplus.
func (s *scanner) floats(n int) (vals []float32, surplus int, err error) {
	s.skipSpace()
	bracket := s.peek() == '['
	if bracket {
		s.pos++
	}
	vals = make([]float32, 0, n)
	for len(vals) < n {
		s.skipSpace()
		if s.eof() || !startsNumber(s.peek()) {
			return nil, 0, &InvalidArgCountError{Offset: s.pos, Found: len(vals), Expected: n}
		}
		start := s.pos
		tok := s.numberToken()
		v, err := parseFloat(tok, start)
		if err != nil {
			return nil, 0, err
		}
		vals = append(vals, v)
	}
	if bracket {
		for s.skipSpace(); !s.eof() && startsNumber(s.peek()); s.skipSpace() {
			s.numberToken()
			surplus++
		}
		if s.peek() != ']' {
			return nil, 0, &InvalidTokenError{Offset: s.pos, Found: s.found(), Expected: "]"}
		}
		s.pos++
	}
	return vals, surplus, nil
}

// quoted reads a double quoted string and returns its contents
func (s *scanner) quoted() (string, error) {
	s.skipSpace()
	if s.peek() != '"' {
		return "", &InvalidTokenError{Offset: s.pos, Found: s.found(), Expected: `"`}
	}
	start := s.pos + 1
	end := start
	for end < len(s.buf) && s.buf[end] != '"' {
		end++
	}
	if end >= len(s.buf) {
		s.pos = end
		return "", &InvalidTokenError{Offset: end, Found: "EOF", Expected: `"`}
	}
	s.pos = end + 1
	return string(s.buf[start:end]), nil
}

func parseFloat(tok string, offset int) (float32, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &ConversionError{Offset: offset, Number: tok, Type: "float - out of range"}
		}
		return 0, &ConversionError{Offset: offset, Number: tok, Type: "float"}
	}
	return float32(v), nil
}

func parseInt(tok string, offset int) (int, error) {
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &ConversionError{Offset: offset, Number: tok, Type: "integer - out of range"}
		}
		return 0, &ConversionError{Offset: offset, Number: tok, Type: "integer"}
	}
	return int(v), nil
}

// unquote strips the quotes of a single raw value token
func unquote(tok string, offset int) (string, error) {
	if len(tok) < 3 {
		return "", &InvalidArgumentError{Offset: offset, Arg: tok}
	}
	if tok[0] != '"' {
		return "", &InvalidTokenError{Offset: offset, Found: tok[:1], Expected: `"`}
	}
	if tok[len(tok)-1] != '"' {
		return "", &InvalidTokenError{Offset: offset + len(tok) - 1, Found: tok[len(tok)-1:], Expected: `"`}
	}
	return tok[1 : len(tok)-1], nil
}

// lineOf maps a byte offset to a 1-based line number
func lineOf(buf []byte, offset int) int {
	if offset > len(buf) {
		offset = len(buf)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(string(buf[:offset]), "\n") + 1
}
