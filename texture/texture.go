// Package texture models scalar and color textures, the two-level
// parameter view used to resolve texture references, and the texture
// factory.
package texture

import (
	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/geom"
)

// Value is the set of types a texture can evaluate to
type Value interface {
	float32 | color.Spectrum
}

// Kind identifies a texture variant
type Kind int

const (
	KindUnknown Kind = iota
	KindBilerp
	KindCheckerboard
	KindConstant
	KindDots
	KindFbm
	KindImagemap
	KindMarble
	KindMix
	KindScale
	KindUV
	KindWindy
	KindWrinkled
)

var kindNames = map[Kind]string{
	KindBilerp:       "bilerp",
	KindCheckerboard: "checkerboard",
	KindConstant:     "constant",
	KindDots:         "dots",
	KindFbm:          "fbm",
	KindImagemap:     "imagemap",
	KindMarble:       "marble",
	KindMix:          "mix",
	KindScale:        "scale",
	KindUV:           "uv",
	KindWindy:        "windy",
	KindWrinkled:     "wrinkled",
}

// ParseKind decodes a texture class keyword
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

// KindNames lists every texture class keyword
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for k := KindBilerp; k <= KindWrinkled; k++ {
		names = append(names, kindNames[k])
	}
	return names
}

// Mapping is a 2D texture coordinate mapping
type Mapping int

const (
	MappingUV Mapping = iota
	MappingSpherical
	MappingCylindrical
	MappingPlanar
)

func (m Mapping) String() string {
	switch m {
	case MappingSpherical:
		return "spherical"
	case MappingCylindrical:
		return "cylindrical"
	case MappingPlanar:
		return "planar"
	default:
		return "uv"
	}
}

// WrapMode controls image lookups outside [0,1]
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapBlack
	WrapClamp
)

func (w WrapMode) String() string {
	switch w {
	case WrapBlack:
		return "black"
	case WrapClamp:
		return "clamp"
	default:
		return "repeat"
	}
}

// Texture is one texture node. Which fields are meaningful depends on Kind.
// Nodes are shared by pointer once registered and must not be mutated.
type Texture[T Value] struct {
	Kind    Kind
	Mapping Mapping
	Wrap    WrapMode
	// ToWorld is the transform active when the texture was declared.
	// 3D textures (checkerboard with dimension 3, fbm, wrinkled, marble, windy) use it.
	ToWorld geom.Matrix

	Value T

	Tex1, Tex2 *Texture[T]
	Amount     *Texture[float32]

	// uv mapping
	SU, SV, DU, DV float32
	// planar mapping
	V1, V2         geom.Vector3
	UDelta, VDelta float32

	// imagemap
	MaxAniso  float32
	Trilinear bool
	Scale     float32
	Gamma     float32
	Filename  string

	// bilerp
	V00, V01, V10, V11 T

	// checkerboard
	Dimension  int
	ClosedForm bool

	// dots
	Inside, Outside T

	// fbm, wrinkled, marble
	Octaves   int
	Roughness float32
	Variation float32
}

// Constant creates a constant texture
func Constant[T Value](v T) *Texture[T] {
	return &Texture[T]{Kind: KindConstant, Value: v, ToWorld: geom.Identity()}
}

// Equal compares two textures field by field, following child references.
// Two nil textures are equal; nil never equals a texture. ToWorld is not compared.
func Equal[T Value](a, b *Texture[T]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if !Equal(a.Tex1, b.Tex1) || !Equal(a.Tex2, b.Tex2) || !Equal(a.Amount, b.Amount) {
		return false
	}
	return a.Kind == b.Kind && a.Mapping == b.Mapping && a.Wrap == b.Wrap &&
		a.Value == b.Value &&
		a.SU == b.SU && a.SV == b.SV && a.DU == b.DU && a.DV == b.DV &&
		a.V1 == b.V1 && a.V2 == b.V2 && a.UDelta == b.UDelta && a.VDelta == b.VDelta &&
		a.MaxAniso == b.MaxAniso && a.Trilinear == b.Trilinear &&
		a.Scale == b.Scale && a.Gamma == b.Gamma && a.Filename == b.Filename &&
		a.V00 == b.V00 && a.V01 == b.V01 && a.V10 == b.V10 && a.V11 == b.V11 &&
		a.Dimension == b.Dimension && a.ClosedForm == b.ClosedForm &&
		a.Inside == b.Inside && a.Outside == b.Outside &&
		a.Octaves == b.Octaves && a.Roughness == b.Roughness && a.Variation == b.Variation
}

// fromFloat lifts a scalar default into T
func fromFloat[T Value](v float32) T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		*p = v
	case *color.Spectrum:
		*p = color.Gray(v)
	}
	return out
}

// isFloat reports whether T is the scalar value type
func isFloat[T Value]() bool {
	var zero T
	_, ok := any(zero).(float32)
	return ok
}
