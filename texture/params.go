package texture

import (
	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/params"
)

// Params overlays the parameters of a shape on those of its material and
// resolves texture references against the registered textures. Lookups try
// the geometry set first, then the material set, then the default.
type Params struct {
	geom     *params.ParamSet
	material *params.ParamSet

	floatTextures    map[string]*Texture[float32]
	spectrumTextures map[string]*Texture[color.Spectrum]

	dir  string
	diag diag.Reporter
}

// NewParams creates a view over geomParams and materialParams. dir is used
// to resolve filename parameters; reporter receives lookup errors.
func NewParams(geomParams, materialParams *params.ParamSet,
	floatTextures map[string]*Texture[float32],
	spectrumTextures map[string]*Texture[color.Spectrum],
	dir string, reporter diag.Reporter) *Params {
	if geomParams == nil {
		geomParams = params.New()
	}
	if materialParams == nil {
		materialParams = params.New()
	}
	if reporter == nil {
		reporter = diag.Discard()
	}
	return &Params{
		geom:             geomParams,
		material:         materialParams,
		floatTextures:    floatTextures,
		spectrumTextures: spectrumTextures,
		dir:              dir,
		diag:             reporter,
	}
}

// Reporter returns the diagnostics sink of the view
func (p *Params) Reporter() diag.Reporter { return p.diag }

func (p *Params) GetFloat(name string, def float32) float32 {
	return p.geom.GetFloat(name, p.material.GetFloat(name, def))
}

func (p *Params) GetInt(name string, def int) int {
	return p.geom.GetInt(name, p.material.GetInt(name, def))
}

func (p *Params) GetBool(name string, def bool) bool {
	return p.geom.GetBool(name, p.material.GetBool(name, def))
}

func (p *Params) GetString(name string, def string) string {
	return p.geom.GetString(name, p.material.GetString(name, def))
}

func (p *Params) GetPoint(name string, def geom.Vector3) geom.Vector3 {
	return p.geom.GetPoint(name, p.material.GetPoint(name, def))
}

func (p *Params) GetVector(name string, def geom.Vector3) geom.Vector3 {
	return p.geom.GetVector(name, p.material.GetVector(name, def))
}

func (p *Params) GetNormal(name string, def geom.Vector3) geom.Vector3 {
	return p.geom.GetNormal(name, p.material.GetNormal(name, def))
}

func (p *Params) GetSpectrum(name string, def color.Spectrum) color.Spectrum {
	return p.geom.GetSpectrum(name, p.material.GetSpectrum(name, def))
}

// GetFilename returns the string parameter resolved against the current
// directory, or def when it is empty
func (p *Params) GetFilename(name, def string) string {
	filename := p.GetString(name, "")
	if filename == "" {
		return def
	}
	return params.ResolvePath(p.dir, filename)
}

// textureName returns the texture referenced by a parameter, or ""
func (p *Params) textureName(name string) string {
	if tex := p.geom.GetTexture(name); tex != "" {
		return tex
	}
	return p.material.GetTexture(name)
}

func lookup[T Value](p *Params, texName string) (*Texture[T], bool) {
	var out any
	var ok bool
	if isFloat[T]() {
		out, ok = p.floatTextures[texName]
	} else {
		out, ok = p.spectrumTextures[texName]
	}
	if !ok {
		return nil, false
	}
	return out.(*Texture[T]), true
}

func valueName[T Value]() string {
	if isFloat[T]() {
		return "float"
	}
	return "spectrum"
}

// getValue reads a scalar or spectrum parameter through the view
func getValue[T Value](p *Params, name string, def T) T {
	var out T
	switch d := any(def).(type) {
	case float32:
		*any(&out).(*float32) = p.GetFloat(name, d)
	case color.Spectrum:
		*any(&out).(*color.Spectrum) = p.GetSpectrum(name, d)
	}
	return out
}

// Get resolves a texture parameter. A registered texture is returned as the
// shared node. Otherwise a new constant texture holding the plain parameter
// value (or def) is returned; an unregistered name is reported as an error.
func Get[T Value](p *Params, name string, def T) *Texture[T] {
	if texName := p.textureName(name); texName != "" {
		if tex, ok := lookup[T](p, texName); ok {
			return tex
		}
		p.diag.Errorf("Couldn't find %s texture named %q for parameter %q", valueName[T](), texName, name)
	}
	return Constant(getValue(p, name, def))
}

// GetOrNil is like Get for float textures but returns nil when the
// parameter does not reference a registered texture
func GetOrNil(p *Params, name string) *Texture[float32] {
	texName := p.textureName(name)
	if texName == "" {
		return nil
	}
	if tex, ok := p.floatTextures[texName]; ok {
		return tex
	}
	p.diag.Errorf("Couldn't find float texture named %q for parameter %q", texName, name)
	return nil
}
