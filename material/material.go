// Package material models the surface material variants, the area light
// descriptor attached to emitting shapes, and the material factory.
package material

import (
	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/texture"
)

type (
	FloatTexture    = *texture.Texture[float32]
	SpectrumTexture = *texture.Texture[color.Spectrum]
)

// Kind identifies a material variant
type Kind int

const (
	KindUnknown Kind = iota
	KindGlass
	KindKdSubsurface
	KindMatte
	KindMeasured
	KindMetal
	KindMirror
	KindMix
	KindPlastic
	KindShinyMetal
	KindSubstrate
	KindSubsurface
	KindTranslucent
	KindUber
	KindFourier
	KindHair
	// KindNone is the "" material, ignored for ray intersection
	KindNone
)

var kindNames = []string{
	KindUnknown:      "unknown",
	KindGlass:        "glass",
	KindKdSubsurface: "kdsubsurface",
	KindMatte:        "matte",
	KindMeasured:     "measured",
	KindMetal:        "metal",
	KindMirror:       "mirror",
	KindMix:          "mix",
	KindPlastic:      "plastic",
	KindShinyMetal:   "shinymetal",
	KindSubstrate:    "substrate",
	KindSubsurface:   "subsurface",
	KindTranslucent:  "translucent",
	KindUber:         "uber",
	KindFourier:      "fourier",
	KindHair:         "hair",
	KindNone:         "",
}

// ParseKind decodes a material type keyword. The empty string is KindNone.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if Kind(k) != KindUnknown && name == s {
			return Kind(k)
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindNames lists every non-empty material keyword
func KindNames() []string {
	return append([]string(nil), kindNames[KindGlass:KindNone]...)
}

// AreaLight is the diffuse emission attached to a shape's material
type AreaLight struct {
	Spectrum color.Spectrum
	NSamples int
}

// EqualAreaLight compares two optional area lights
func EqualAreaLight(a, b *AreaLight) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Material is one built material. Which textures are set depends on Kind.
// Materials are shared by pointer once registered and must not be mutated;
// use WithAreaLight to derive an emitting copy.
type Material struct {
	Kind Kind

	// all kinds
	Bumpmap FloatTexture

	Kr    SpectrumTexture // glass, kdsubsurface, mirror, shinymetal, subsurface, uber
	Kt    SpectrumTexture // glass, uber
	Index FloatTexture    // glass, kdsubsurface, subsurface, uber

	Kd           SpectrumTexture // kdsubsurface, matte, plastic, substrate, translucent, uber
	MeanFreePath FloatTexture    // kdsubsurface
	Sigma        FloatTexture    // matte

	Filename string // measured, fourier

	Eta       SpectrumTexture // metal
	K         SpectrumTexture // metal
	Roughness FloatTexture    // metal, plastic, shinymetal, translucent, uber

	Amount    SpectrumTexture // mix
	Material1 *Material       // mix
	Material2 *Material       // mix

	Ks         SpectrumTexture // plastic, shinymetal, substrate, translucent, uber
	URoughness FloatTexture    // substrate
	VRoughness FloatTexture    // substrate

	SigmaA      SpectrumTexture // subsurface, hair
	SigmaPrimeS SpectrumTexture // subsurface
	Scale       float32         // subsurface

	Reflect  SpectrumTexture // translucent
	Transmit SpectrumTexture // translucent
	Opacity  SpectrumTexture // uber

	// hair
	Color       SpectrumTexture
	Eumelanin   FloatTexture
	Pheomelanin FloatTexture
	EtaHair     FloatTexture
	BetaM       FloatTexture
	BetaN       FloatTexture
	Alpha       FloatTexture

	AreaLight *AreaLight
}

// WithAreaLight returns a shallow copy of m emitting light. Textures and
// sub-materials stay shared.
func (m *Material) WithAreaLight(light *AreaLight) *Material {
	cp := *m
	cp.AreaLight = light
	return &cp
}

// Equal compares two materials, following texture and sub-material
// references. Two nil materials are equal; nil never equals a material.
func Equal(a, b *Material) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	floats := [][2]FloatTexture{
		{a.Bumpmap, b.Bumpmap}, {a.Index, b.Index}, {a.MeanFreePath, b.MeanFreePath},
		{a.Sigma, b.Sigma}, {a.Roughness, b.Roughness}, {a.URoughness, b.URoughness},
		{a.VRoughness, b.VRoughness}, {a.Eumelanin, b.Eumelanin}, {a.Pheomelanin, b.Pheomelanin},
		{a.EtaHair, b.EtaHair}, {a.BetaM, b.BetaM}, {a.BetaN, b.BetaN}, {a.Alpha, b.Alpha},
	}
	for _, pair := range floats {
		if !texture.Equal(pair[0], pair[1]) {
			return false
		}
	}
	spectra := [][2]SpectrumTexture{
		{a.Kr, b.Kr}, {a.Kt, b.Kt}, {a.Kd, b.Kd}, {a.Eta, b.Eta}, {a.K, b.K},
		{a.Amount, b.Amount}, {a.Ks, b.Ks}, {a.SigmaA, b.SigmaA}, {a.SigmaPrimeS, b.SigmaPrimeS},
		{a.Reflect, b.Reflect}, {a.Transmit, b.Transmit}, {a.Opacity, b.Opacity}, {a.Color, b.Color},
	}
	for _, pair := range spectra {
		if !texture.Equal(pair[0], pair[1]) {
			return false
		}
	}
	return a.Kind == b.Kind && a.Filename == b.Filename && a.Scale == b.Scale &&
		Equal(a.Material1, b.Material1) && Equal(a.Material2, b.Material2) &&
		EqualAreaLight(a.AreaLight, b.AreaLight)
}
