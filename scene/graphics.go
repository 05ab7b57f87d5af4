package scene

import (
	"maps"

	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/material"
	"github.com/df07/pbrt-scene/params"
	"github.com/df07/pbrt-scene/texture"
)

// GraphicsState is one frame of the attribute stack
type GraphicsState struct {
	Material           string
	MaterialParams     *params.ParamSet
	ReverseOrientation bool
	AreaLight          string
	AreaLightParams    *params.ParamSet

	NamedMaterials       map[string]*material.Material
	CurrentNamedMaterial string

	FloatTextures    map[string]*texture.Texture[float32]
	SpectrumTextures map[string]*texture.Texture[color.Spectrum]
}

func newGraphicsState() *GraphicsState {
	return &GraphicsState{
		Material:         "matte",
		MaterialParams:   params.New(),
		AreaLightParams:  params.New(),
		NamedMaterials:   map[string]*material.Material{},
		FloatTextures:    map[string]*texture.Texture[float32]{},
		SpectrumTextures: map[string]*texture.Texture[color.Spectrum]{},
	}
}

// Clone copies the frame for AttributeBegin. Parameter sets are deep
// copied; registered textures and materials are shared.
func (g *GraphicsState) Clone() *GraphicsState {
	c := *g
	c.MaterialParams = g.MaterialParams.Clone()
	c.AreaLightParams = g.AreaLightParams.Clone()
	c.NamedMaterials = maps.Clone(g.NamedMaterials)
	c.FloatTextures = maps.Clone(g.FloatTextures)
	c.SpectrumTextures = maps.Clone(g.SpectrumTextures)
	return &c
}
