// Package light models standalone light sources and places them in world
// space when they are declared.
package light

import (
	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/params"
)

// Kind identifies a light variant
type Kind int

const (
	KindUnknown Kind = iota
	KindDistant
	KindGoniometric
	KindInfinite
	KindPoint
	KindProjection
	KindSpot
)

var kindNames = map[Kind]string{
	KindDistant:     "distant",
	KindGoniometric: "goniometric",
	KindInfinite:    "infinite",
	KindPoint:       "point",
	KindProjection:  "projection",
	KindSpot:        "spot",
}

// ParseKind decodes a light type keyword
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindNames lists every light keyword
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for k := KindDistant; k <= KindSpot; k++ {
		names = append(names, kindNames[k])
	}
	return names
}

// Light is a light source with its geometry already in world space
type Light struct {
	Kind     Kind
	Spectrum color.Spectrum

	Position geom.Vector3 // point, projection, goniometric, spot
	Dir      geom.Vector3 // distant, spot
	From     geom.Vector3 // distant, point, spot
	To       geom.Vector3 // distant, spot

	MapName  string  // goniometric, infinite, projection
	NSamples int     // infinite
	FOV      float32 // projection, degrees

	ConeAngle      float32 // spot
	ConeDeltaAngle float32 // spot
}

// Make builds a light from its directive parameters using the current
// transform ctm. Unknown kinds are reported and yield nil. Goniometric and
// projection lights require a mapname.
func Make(name string, p *params.ParamSet, ctm geom.Matrix, reporter diag.Reporter) (*Light, error) {
	kind := ParseKind(name)
	if kind == KindUnknown {
		reporter.Errorf("light type unknown: %s. Ignoring it%s", name, diag.DidYouMean(name, KindNames()))
		return nil, nil
	}

	white := color.RGB(1, 1, 1)
	l := &Light{Kind: kind}
	scale := p.GetSpectrum("scale", color.Gray(1))
	l.Spectrum = p.GetSpectrum("L", white).Mul(scale)
	l.Spectrum = p.GetSpectrum("I", white).Mul(l.Spectrum)

	switch kind {
	case KindSpot:
		l.ConeAngle = p.GetFloat("coneangle", 30)
		l.ConeDeltaAngle = p.GetFloat("conedeltaangle", 5)
		l.To = p.GetPoint("to", geom.Vec3(0, 0, 1))
		l.From = p.GetPoint("from", geom.Vector3{})
	case KindDistant:
		l.To = p.GetPoint("to", geom.Vec3(0, 0, 1))
		l.From = p.GetPoint("from", geom.Vector3{})
	case KindPoint:
		l.From = p.GetPoint("from", geom.Vector3{})
	case KindGoniometric:
		l.MapName = p.GetString("mapname", "")
		if l.MapName == "" {
			return nil, &params.MissingParameterError{Param: "mapname in goniometric light"}
		}
	case KindInfinite:
		l.NSamples = p.GetInt("nsamples", 1)
		l.MapName = p.GetString("mapname", "")
	case KindProjection:
		l.FOV = p.GetFloat("fov", 45)
		l.MapName = p.GetString("mapname", "")
		if l.MapName == "" {
			return nil, &params.MissingParameterError{Param: "mapname in projection light"}
		}
	}

	switch kind {
	case KindDistant:
		l.Dir = ctm.TransformVector(l.From.Sub(l.To))
	case KindProjection, KindGoniometric:
		l.Position = ctm.TransformPoint(geom.Vector3{})
	case KindPoint:
		l.Position = ctm.TransformPoint(l.From)
	case KindSpot:
		dir := l.To.Sub(l.From).Normalize()
		du, dv := geom.CoordinateSystem(dir)
		dirToZ := geom.Matrix{
			{du.X, du.Y, du.Z, 0},
			{dv.X, dv.Y, dv.Z, 0},
			{dir.X, dir.Y, dir.Z, 0},
			{0, 0, 0, 1},
		}
		// dirToZ is orthonormal, its inverse is its transpose
		lightToWorld := ctm.Mul(geom.Translate(l.From)).Mul(dirToZ.Transpose())
		l.Position = lightToWorld.TransformPoint(geom.Vector3{})
		l.Dir = lightToWorld.TransformVector(geom.Vec3(0, 0, 1))
	}
	return l, nil
}

// Transform applies m to the world space geometry of the light. It is used
// for the global axis swap after parsing.
func (l *Light) Transform(m geom.Matrix) {
	l.Position = m.TransformPoint(l.Position)
	l.Dir = m.TransformVector(l.Dir)
	l.From = m.TransformPoint(l.From)
	l.To = m.TransformPoint(l.To)
}
