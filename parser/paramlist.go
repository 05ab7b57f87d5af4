package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/params"
)

type paramType int

const (
	typeInteger paramType = iota
	typeFloat
	typeBool
	typePoint
	typeVector
	typeNormal
	typeString
	typeRGB
	typeXYZ
	typeTexture
	typeBlackbody
)

var paramTypes = map[string]paramType{
	"integer":   typeInteger,
	"float":     typeFloat,
	"bool":      typeBool,
	"point":     typePoint,
	"vector":    typeVector,
	"normal":    typeNormal,
	"string":    typeString,
	"spectrum":  typeBlackbody,
	"color":     typeRGB,
	"rgb":       typeRGB,
	"xyz":       typeXYZ,
	"texture":   typeTexture,
	"blackbody": typeBlackbody,
}

// token is a value token and its offset in the buffer
type token struct {
	text   string
	offset int
}

// paramList reads the parameter declarations following a directive. Each
// declaration is a quoted "type name" followed by a bracketed list or a
// single value. The list ends at the first token that is not a quote.
func (p *fileParser) paramList() (*params.ParamSet, error) {
	ps := params.New()
	s := p.sc
	for {
		s.skipSpace()
		if s.peek() != '"' {
			return ps, nil
		}
		declAt := s.pos
		decl, err := s.quoted()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(decl)
		if len(fields) < 2 {
			return nil, &InvalidArgumentError{Offset: declAt, Arg: decl}
		}
		typ, ok := paramTypes[fields[0]]
		if !ok {
			return nil, &InvalidArgumentError{Offset: s.pos, Arg: fields[0]}
		}
		name := strings.Join(fields[1:], " ")

		s.skipSpace()
		if s.peek() == '[' {
			err = p.paramArray(ps, typ, name)
		} else {
			err = p.paramSingle(ps, typ, name)
		}
		if err != nil {
			return nil, err
		}
	}
}

// bracketBody consumes "[ ... ]" and returns the offsets of the content
func (s *scanner) bracketBody() (int, int, error) {
	s.pos++ // '['
	start := s.pos
	inQuote := false
	for !s.eof() {
		c := s.buf[s.pos]
		if c == '"' {
			inQuote = !inQuote
		} else if c == ']' && !inQuote {
			end := s.pos
			s.pos++
			return start, end, nil
		}
		s.pos++
	}
	return 0, 0, &InvalidTokenError{Offset: s.pos, Found: "EOF", Expected: "]"}
}

func (s *scanner) fields(start, end int) []token {
	var toks []token
	i := start
	for i < end {
		for i < end && isSpace(s.buf[i]) {
			i++
		}
		j := i
		for j < end && !isSpace(s.buf[j]) {
			j++
		}
		if j > i {
			toks = append(toks, token{string(s.buf[i:j]), i})
		}
		i = j
	}
	return toks
}

// stringsIn reads quoted strings between start and end
func (s *scanner) stringsIn(start, end int) ([]string, error) {
	var out []string
	i := start
	for {
		for i < end && isSpace(s.buf[i]) {
			i++
		}
		if i >= end {
			return out, nil
		}
		if s.buf[i] != '"' {
			return nil, &InvalidTokenError{Offset: i, Found: string(s.buf[i]), Expected: `"`}
		}
		j := i + 1
		for j < end && s.buf[j] != '"' {
			j++
		}
		if j >= end {
			return nil, &InvalidTokenError{Offset: end, Found: "]", Expected: `"`}
		}
		out = append(out, string(s.buf[i+1:j]))
		i = j + 1
	}
}

func floatsOf(toks []token) ([]float32, error) {
	vals := make([]float32, len(toks))
	for i, t := range toks {
		v, err := parseFloat(t.text, t.offset)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func vectorsOf(vals []float32, end int) ([]geom.Vector3, error) {
	if len(vals)%3 != 0 {
		return nil, &InvalidArgCountError{Offset: end, Found: len(vals), Expected: (len(vals)/3 + 1) * 3}
	}
	vecs := make([]geom.Vector3, len(vals)/3)
	for i := range vecs {
		vecs[i] = geom.Vec3(vals[3*i], vals[3*i+1], vals[3*i+2])
	}
	return vecs, nil
}

func boolOf(t token) (bool, error) {
	str, err := unquote(t.text, t.offset)
	if err != nil {
		return false, err
	}
	switch str {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &InvalidArgumentError{Offset: t.offset, Arg: t.text}
}

func (p *fileParser) paramArray(ps *params.ParamSet, typ paramType, name string) error {
	s := p.sc
	start, end, err := s.bracketBody()
	if err != nil {
		return err
	}

	switch typ {
	case typeString, typeTexture:
		strs, err := s.stringsIn(start, end)
		if err != nil {
			return err
		}
		if typ == typeString {
			ps.AddString(name, strs)
			return nil
		}
		if len(strs) != 1 {
			return &InvalidArgCountError{Offset: end, Found: len(strs), Expected: 1}
		}
		ps.AddTexture(name, strs[0])
		return nil
	case typeBool:
		toks := s.fields(start, end)
		vals := make([]bool, len(toks))
		for i, t := range toks {
			if vals[i], err = boolOf(t); err != nil {
				return err
			}
		}
		ps.AddBool(name, vals)
		return nil
	case typeInteger:
		toks := s.fields(start, end)
		vals := make([]int, len(toks))
		for i, t := range toks {
			if vals[i], err = parseInt(t.text, t.offset); err != nil {
				return err
			}
		}
		ps.AddInt(name, vals)
		return nil
	}

	vals, err := floatsOf(s.fields(start, end))
	if err != nil {
		return err
	}
	switch typ {
	case typeFloat:
		ps.AddFloat(name, vals)
	case typePoint, typeVector, typeNormal:
		vecs, err := vectorsOf(vals, end)
		if err != nil {
			return err
		}
		switch typ {
		case typePoint:
			ps.AddPoint(name, vecs)
		case typeVector:
			ps.AddVector(name, vecs)
		default:
			ps.AddNormal(name, vecs)
		}
	case typeRGB:
		p.warnTrailing(ps.AddRGBSpectrum(name, vals))
	case typeXYZ:
		p.warnTrailing(ps.AddXYZSpectrum(name, vals))
	case typeBlackbody:
		p.warnTrailing(ps.AddBlackbodySpectrum(name, vals))
	}
	return nil
}

// paramSingle reads a value written without brackets. Quoted values keep
// their quotes until converted.
func (p *fileParser) paramSingle(ps *params.ParamSet, typ paramType, name string) error {
	s := p.sc
	t := token{offset: s.pos}
	if s.peek() == '"' {
		end := s.pos + 1
		for end < len(s.buf) && s.buf[end] != '"' && s.buf[end] != '\n' {
			end++
		}
		if end < len(s.buf) && s.buf[end] == '"' {
			end++
		}
		t.text = string(s.buf[s.pos:end])
		s.pos = end
	} else {
		s.skipToken()
		t.text = string(s.buf[t.offset:s.pos])
	}

	switch typ {
	case typeString, typeTexture:
		str, err := unquote(t.text, t.offset)
		if err != nil {
			return err
		}
		if typ == typeString {
			ps.AddString(name, []string{str})
		} else {
			ps.AddTexture(name, str)
		}
	case typeBool:
		v, err := boolOf(t)
		if err != nil {
			return err
		}
		ps.AddBool(name, []bool{v})
	case typeFloat:
		v, err := parseFloat(t.text, t.offset)
		if err != nil {
			return err
		}
		ps.AddFloat(name, []float32{v})
	case typeInteger:
		v, err := parseInt(t.text, t.offset)
		if err != nil {
			return err
		}
		ps.AddInt(name, []int{v})
	case typeBlackbody:
		filename, err := unquote(t.text, t.offset)
		if err != nil {
			return err
		}
		path := p.env.Resolve(filename)
		vals, err := params.ReadFloatFile(path)
		if err != nil {
			return fmt.Errorf("unable to read spectrum file %s: %w", path, err)
		}
		p.warnTrailing(ps.AddBlackbodySpectrum(name, vals))
	default:
		return &InvalidTokenError{Offset: t.offset, Found: t.text, Expected: "["}
	}
	return nil
}

func (p *fileParser) warnTrailing(err error) {
	var trailing *params.TrailingValuesError
	if errors.As(err, &trailing) {
		p.env.Diag.Warningf("%s", trailing.Error())
	}
}
