// Package parser scans PBRT v3 scene descriptions and dispatches every
// directive to a Builder.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/h2non/filetype"

	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/params"
)

// Builder receives one call per directive, in textual order. A returned
// error aborts the current file.
type Builder interface {
	Identity() error
	Translate(delta geom.Vector3) error
	Scale(s geom.Vector3) error
	Rotate(angle float32, axis geom.Vector3) error
	LookAt(eye, target, up geom.Vector3) error
	Transform(m []float32) error
	ConcatTransform(m []float32) error
	ActiveTransform(start, end bool) error
	CoordinateSystem(name string) error
	CoordSysTransform(name string) error

	AttributeBegin() error
	AttributeEnd() error
	TransformBegin() error
	TransformEnd() error
	WorldBegin() error
	WorldEnd() error

	Camera(name string, ps *params.ParamSet) error
	Sampler(name string, ps *params.ParamSet) error
	Film(name string, ps *params.ParamSet) error
	Renderer(name string, ps *params.ParamSet) error
	SurfaceIntegrator(name string, ps *params.ParamSet) error
	VolumeIntegrator(name string, ps *params.ParamSet) error
	Accelerator(name string, ps *params.ParamSet) error
	PixelFilter(name string, ps *params.ParamSet) error

	Shape(name string, ps *params.ParamSet) error
	ObjectBegin(name string) error
	ObjectEnd() error
	ObjectInstance(name string) error
	LightSource(name string, ps *params.ParamSet) error
	AreaLightSource(name string, ps *params.ParamSet) error
	ReverseOrientation() error
	Material(name string, ps *params.ParamSet) error
	MakeNamedMaterial(name string, ps *params.ParamSet) error
	NamedMaterial(name string) error
	Texture(name, valueType, class string, ps *params.ParamSet) error
	Volume(name string, ps *params.ParamSet) error
}

// directive reads its arguments and calls the builder
type directive func(p *fileParser) error

var directives map[string]directive

// keywords holds the directive names, longest first
var keywords []string

func init() {
	directives = map[string]directive{
		"Identity":  func(p *fileParser) error { return p.b.Identity() },
		"Translate": func(p *fileParser) error { return p.vector("Translate", p.b.Translate) },
		"Scale":     func(p *fileParser) error { return p.vector("Scale", p.b.Scale) },
		"Rotate": func(p *fileParser) error {
			v, err := p.floats("Rotate", 4)
			if err != nil {
				return err
			}
			return p.b.Rotate(v[0], geom.Vec3(v[1], v[2], v[3]))
		},
		"LookAt": func(p *fileParser) error {
			v, err := p.floats("LookAt", 9)
			if err != nil {
				return err
			}
			return p.b.LookAt(geom.Vec3(v[0], v[1], v[2]), geom.Vec3(v[3], v[4], v[5]), geom.Vec3(v[6], v[7], v[8]))
		},
		"Transform": func(p *fileParser) error {
			v, err := p.floats("Transform", 16)
			if err != nil {
				return err
			}
			return p.b.Transform(v)
		},
		"ConcatTransform": func(p *fileParser) error {
			v, err := p.floats("ConcatTransform", 16)
			if err != nil {
				return err
			}
			return p.b.ConcatTransform(v)
		},
		"ActiveTransform":   (*fileParser).activeTransform,
		"CoordinateSystem":  func(p *fileParser) error { return p.name(p.b.CoordinateSystem) },
		"CoordSysTransform": func(p *fileParser) error { return p.name(p.b.CoordSysTransform) },

		"AttributeBegin": func(p *fileParser) error { return p.b.AttributeBegin() },
		"AttributeEnd":   func(p *fileParser) error { return p.b.AttributeEnd() },
		"TransformBegin": func(p *fileParser) error { return p.b.TransformBegin() },
		"TransformEnd":   func(p *fileParser) error { return p.b.TransformEnd() },
		"WorldBegin":     func(p *fileParser) error { return p.b.WorldBegin() },
		"WorldEnd":       func(p *fileParser) error { p.done = true; return p.b.WorldEnd() },

		"Camera":            func(p *fileParser) error { return p.named(p.b.Camera) },
		"Sampler":           func(p *fileParser) error { return p.named(p.b.Sampler) },
		"Film":              func(p *fileParser) error { return p.named(p.b.Film) },
		"Renderer":          func(p *fileParser) error { return p.named(p.b.Renderer) },
		"SurfaceIntegrator": func(p *fileParser) error { return p.named(p.b.SurfaceIntegrator) },
		"VolumeIntegrator":  func(p *fileParser) error { return p.named(p.b.VolumeIntegrator) },
		"Accelerator":       func(p *fileParser) error { return p.named(p.b.Accelerator) },
		"PixelFilter":       func(p *fileParser) error { return p.named(p.b.PixelFilter) },

		"Shape":              func(p *fileParser) error { return p.named(p.b.Shape) },
		"ObjectBegin":        func(p *fileParser) error { return p.name(p.b.ObjectBegin) },
		"ObjectEnd":          func(p *fileParser) error { return p.b.ObjectEnd() },
		"ObjectInstance":     func(p *fileParser) error { return p.name(p.b.ObjectInstance) },
		"LightSource":        func(p *fileParser) error { return p.named(p.b.LightSource) },
		"AreaLightSource":    func(p *fileParser) error { return p.named(p.b.AreaLightSource) },
		"ReverseOrientation": func(p *fileParser) error { return p.b.ReverseOrientation() },
		"Material":           func(p *fileParser) error { return p.named(p.b.Material) },
		"MakeNamedMaterial":  func(p *fileParser) error { return p.named(p.b.MakeNamedMaterial) },
		"NamedMaterial":      func(p *fileParser) error { return p.name(p.b.NamedMaterial) },
		"Texture":            (*fileParser).texture,
		"Volume":             func(p *fileParser) error { return p.named(p.b.Volume) },
		"Include":            (*fileParser).include,
	}
	for k := range directives {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})
}

// Keywords returns the directive vocabulary
func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	sort.Strings(out)
	return out
}

// fileParser holds the state of one file's scan
type fileParser struct {
	sc       *scanner
	b        Builder
	env      *Env
	filename string
	done     bool
}

// floats reads the n numeric arguments of directive. Surplus bracketed
// values are dropped with a warning.
func (p *fileParser) floats(directive string, n int) ([]float32, error) {
	v, surplus, err := p.sc.floats(n)
	if err != nil {
		return nil, err
	}
	if surplus > 0 {
		p.env.Diag.Warningf("%s takes %d values, ignoring %d more", directive, n, surplus)
	}
	return v, nil
}

func (p *fileParser) vector(directive string, fn func(geom.Vector3) error) error {
	v, err := p.floats(directive, 3)
	if err != nil {
		return err
	}
	return fn(geom.Vec3(v[0], v[1], v[2]))
}

func (p *fileParser) name(fn func(string) error) error {
	name, err := p.sc.quoted()
	if err != nil {
		return err
	}
	return fn(name)
}

func (p *fileParser) named(fn func(string, *params.ParamSet) error) error {
	name, err := p.sc.quoted()
	if err != nil {
		return err
	}
	ps, err := p.paramList()
	if err != nil {
		return err
	}
	return fn(name, ps)
}

func (p *fileParser) activeTransform() error {
	p.sc.skipSpace()
	at := p.sc.pos
	switch w := p.sc.word(); w {
	case "StartTime":
		return p.b.ActiveTransform(true, false)
	case "EndTime":
		return p.b.ActiveTransform(false, true)
	case "All":
		return p.b.ActiveTransform(true, true)
	default:
		return &InvalidArgumentError{Offset: at, Arg: w}
	}
}

func (p *fileParser) texture() error {
	name, err := p.sc.quoted()
	if err != nil {
		return err
	}
	valueType, err := p.sc.quoted()
	if err != nil {
		return err
	}
	class, err := p.sc.quoted()
	if err != nil {
		return err
	}
	ps, err := p.paramList()
	if err != nil {
		return err
	}
	return p.b.Texture(name, valueType, class, ps)
}

// include parses another file and restores the directory afterwards.
// Failures inside the included file are reported there and do not stop
// the including file.
func (p *fileParser) include() error {
	name, err := p.sc.quoted()
	if err != nil {
		return err
	}
	dir := p.env.Dir()
	path := params.ResolvePath(dir, name)
	if err := p.env.checkInclude(path); err != nil {
		return err
	}
	p.env.depth++
	parseFile(path, p.b, p.env)
	p.env.depth--
	p.env.SetDir(dir)
	return nil
}

// match returns the directive keyword starting at the cursor
func (p *fileParser) match() string {
	rest := p.sc.buf[p.sc.pos:]
	for _, k := range keywords {
		if bytes.HasPrefix(rest, []byte(k)) {
			return k
		}
	}
	return ""
}

func (p *fileParser) run() error {
	s := p.sc
	for !p.done {
		s.skipSpace()
		if s.eof() {
			return nil
		}
		k := p.match()
		if k == "" {
			// unknown text is skipped a token at a time
			s.skipToken()
			continue
		}
		s.pos += len(k)
		if err := directives[k](p); err != nil {
			return p.locate(err)
		}
	}
	return nil
}

// locate wraps err with the line it occurred on. Positional errors carry
// their own offset, everything else is placed at the last consumed byte.
func (p *fileParser) locate(err error) error {
	offset := p.sc.pos
	for offset > 0 && isSpace(p.sc.buf[offset-1]) {
		offset--
	}
	var pe PositionalError
	if errors.As(err, &pe) {
		offset = pe.Position()
	}
	return &FileError{Filename: p.filename, Line: lineOf(p.sc.buf, offset), Err: err}
}

// Parse scans an in-memory scene description. dir is the directory of the
// file, used for relative paths. The error that stopped the scan, if any,
// is reported to env.Diag and also returned.
func Parse(data []byte, filename, dir string, b Builder, env *Env) error {
	env.SetDir(dir)
	env.Diag.Progressf("removing comments")
	p := &fileParser{sc: newScanner(data), b: b, env: env, filename: filename}
	env.Diag.Progressf("parsing file %s", filename)
	if err := p.run(); err != nil {
		env.Diag.Errorf("%s", err.Error())
		return err
	}
	return nil
}

// ParseFile reads and parses the file at path. It returns false if the
// file could not be read; parse errors are reported and do not change the
// result.
func ParseFile(path string, b Builder, env *Env) bool {
	return parseFile(params.ResolvePath("", path), b, env) == nil
}

func parseFile(path string, b Builder, env *Env) error {
	data, err := os.ReadFile(path)
	if err != nil {
		oe := &OpenError{Filename: path, Err: err}
		env.Diag.Errorf("%s", oe.Error())
		return oe
	}
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		oe := &OpenError{Filename: path, Err: fmt.Errorf("binary %s content", kind.MIME.Value)}
		env.Diag.Errorf("cannot parse binary file %s (%s)", path, kind.MIME.Value)
		return oe
	}
	_ = Parse(data, path, filepath.Dir(path), b, env)
	return nil
}
