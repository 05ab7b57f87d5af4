// Package scene implements the PBRT scene state machine: transform and
// attribute stacks, object instancing, and the construction of shapes,
// lights, materials and textures from parsed directives.
package scene

import (
	"errors"
	"fmt"

	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/light"
	"github.com/df07/pbrt-scene/material"
	"github.com/df07/pbrt-scene/params"
	"github.com/df07/pbrt-scene/parser"
	"github.com/df07/pbrt-scene/shape"
	"github.com/df07/pbrt-scene/texture"
)

// Block is the coarse parser state
type Block int

const (
	BlockScene Block = iota
	BlockWorld
	BlockEnd
)

func (b Block) String() string {
	switch b {
	case BlockScene:
		return "scene"
	case BlockWorld:
		return "world"
	default:
		return "end"
	}
}

// State receives the directives of one top level parse
type State struct {
	env *parser.Env

	transforms []geom.Matrix
	active     []bool
	block      Block
	coordSys   map[string]geom.Matrix

	options *RenderOptions
	gfx     []*GraphicsState

	instances map[string][]shape.Shape
	// recording names the instance being defined, if any
	recording string
	inObject  bool
}

var _ parser.Builder = (*State)(nil)

// New creates an empty state in the Scene block
func New(env *parser.Env) *State {
	if env == nil {
		env = parser.NewEnv(nil)
	}
	return &State{
		env:        env,
		transforms: []geom.Matrix{geom.Identity()},
		active:     []bool{true},
		coordSys:   map[string]geom.Matrix{},
		options:    newRenderOptions(),
		gfx:        []*GraphicsState{newGraphicsState()},
		instances:  map[string][]shape.Shape{},
	}
}

// Options returns the render options built so far
func (s *State) Options() *RenderOptions { return s.options }

// Block returns the current block
func (s *State) Block() Block { return s.block }

// CurrentTransform returns the top of the transform stack
func (s *State) CurrentTransform() geom.Matrix { return s.transforms[len(s.transforms)-1] }

// TransformActive reports whether transform directives currently apply
func (s *State) TransformActive() bool { return s.active[len(s.active)-1] }

// Graphics returns the current graphics state frame
func (s *State) Graphics() *GraphicsState { return s.gfx[len(s.gfx)-1] }

func (s *State) diag() diag.Reporter { return s.env.Diag }

// in reports whether the state is in block b, logging the ignored call
// otherwise
func (s *State) in(b Block, directive string) bool {
	if s.block != b {
		s.diag().Errorf("%s called in wrong block. will be ignored", directive)
		return false
	}
	return true
}

func (s *State) useTransform(m geom.Matrix, concat bool) {
	if !s.TransformActive() {
		return
	}
	top := &s.transforms[len(s.transforms)-1]
	if concat {
		*top = top.Mul(m)
	} else {
		*top = m
	}
}

func (s *State) Identity() error {
	s.useTransform(geom.Identity(), false)
	return nil
}

func (s *State) Translate(d geom.Vector3) error {
	s.useTransform(geom.Translate(d), true)
	return nil
}

func (s *State) Scale(v geom.Vector3) error {
	s.useTransform(geom.Scale(v.X, v.Y, v.Z), true)
	return nil
}

func (s *State) Rotate(angle float32, axis geom.Vector3) error {
	s.useTransform(geom.Rotate(angle, axis), true)
	return nil
}

func (s *State) LookAt(eye, target, up geom.Vector3) error {
	m, err := geom.LookAt(eye, target, up)
	if err != nil {
		s.diag().Errorf("LookAt: %v. Ignoring it", err)
		return nil
	}
	s.useTransform(m, true)
	return nil
}

func (s *State) Transform(v []float32) error {
	m, err := geom.FromColumnMajor(v)
	if err != nil {
		return err
	}
	s.useTransform(m, false)
	return nil
}

func (s *State) ConcatTransform(v []float32) error {
	m, err := geom.FromColumnMajor(v)
	if err != nil {
		return err
	}
	s.useTransform(m, true)
	return nil
}

// ActiveTransform enables transform directives for the start time only.
// Animated transforms are not supported, so EndTime disables them.
func (s *State) ActiveTransform(start, _ bool) error {
	s.active[len(s.active)-1] = start
	return nil
}

func (s *State) CoordinateSystem(name string) error {
	s.coordSys[name] = s.CurrentTransform()
	return nil
}

func (s *State) CoordSysTransform(name string) error {
	m, ok := s.coordSys[name]
	if !ok {
		s.diag().Warningf("couldn't find named coordinate system %s", name)
		return nil
	}
	s.transforms[len(s.transforms)-1] = m
	return nil
}

func (s *State) TransformBegin() error {
	if !s.in(BlockWorld, "TransformBegin") {
		return nil
	}
	s.transforms = append(s.transforms, s.CurrentTransform())
	s.active = append(s.active, s.TransformActive())
	return nil
}

func (s *State) TransformEnd() error {
	if !s.in(BlockWorld, "TransformEnd") {
		return nil
	}
	if len(s.transforms) < 2 {
		s.diag().Warningf("TransformEnd stack underflow. Ignoring it")
		return nil
	}
	s.transforms = s.transforms[:len(s.transforms)-1]
	s.active = s.active[:len(s.active)-1]
	return nil
}

func (s *State) AttributeBegin() error {
	if !s.in(BlockWorld, "AttributeBegin") {
		return nil
	}
	s.TransformBegin()
	s.gfx = append(s.gfx, s.Graphics().Clone())
	return nil
}

func (s *State) AttributeEnd() error {
	if !s.in(BlockWorld, "AttributeEnd") {
		return nil
	}
	if len(s.gfx) < 2 {
		s.diag().Warningf("AttributeEnd stack underflow. ignoring it")
		return nil
	}
	s.gfx = s.gfx[:len(s.gfx)-1]
	return s.TransformEnd()
}

func (s *State) setObject(dst *SceneObject, directive, typ string, ps *params.ParamSet) {
	if !s.in(BlockScene, directive) {
		return
	}
	*dst = SceneObject{Type: typ, Params: ps}
}

// Camera records the camera and derives its world space placement from
// the current transform, which maps world to camera space
func (s *State) Camera(name string, ps *params.ParamSet) error {
	if !s.in(BlockScene, "Camera") {
		return nil
	}
	s.options.Camera = SceneObject{Type: name, Params: ps}
	toWorld, err := s.CurrentTransform().Inverse()
	if err != nil {
		s.diag().Errorf("camera transform is not invertible. Using identity")
		toWorld = geom.Identity()
	}
	s.options.CameraToWorld = toWorld
	s.options.CameraPos = toWorld.TransformPoint(geom.Vector3{})
	s.options.CameraLookAt = toWorld.TransformVector(geom.Vec3(0, 0, 1)).Add(s.options.CameraPos)
	return s.CoordinateSystem("camera")
}

func (s *State) Sampler(name string, ps *params.ParamSet) error {
	s.setObject(&s.options.Sampler, "Sampler", name, ps)
	return nil
}

func (s *State) Film(name string, ps *params.ParamSet) error {
	s.setObject(&s.options.Film, "Film", name, ps)
	return nil
}

func (s *State) Renderer(name string, ps *params.ParamSet) error {
	s.setObject(&s.options.Renderer, "Renderer", name, ps)
	return nil
}

func (s *State) SurfaceIntegrator(name string, ps *params.ParamSet) error {
	s.setObject(&s.options.SurfaceIntegrator, "SurfaceIntegrator", name, ps)
	return nil
}

func (s *State) VolumeIntegrator(name string, ps *params.ParamSet) error {
	s.setObject(&s.options.VolumeIntegrator, "VolumeIntegrator", name, ps)
	return nil
}

func (s *State) Accelerator(name string, ps *params.ParamSet) error {
	s.setObject(&s.options.Accelerator, "Accelerator", name, ps)
	return nil
}

func (s *State) PixelFilter(name string, ps *params.ParamSet) error {
	s.setObject(&s.options.PixelFilter, "PixelFilter", name, ps)
	return nil
}

func (s *State) WorldBegin() error {
	if !s.in(BlockScene, "WorldBegin") {
		return nil
	}
	s.block = BlockWorld
	s.active[len(s.active)-1] = true
	s.Identity()
	return s.CoordinateSystem("world")
}

// WorldEnd closes the world block. Unbalanced scopes are reported and
// dropped; instances, named coordinate systems and the graphics state are
// discarded.
func (s *State) WorldEnd() error {
	if !s.in(BlockWorld, "WorldEnd") {
		return nil
	}
	s.block = BlockEnd

	if len(s.transforms) > 1 {
		s.diag().Warningf("%d transforms on stack before resetting", len(s.transforms))
	}
	s.transforms = []geom.Matrix{geom.Identity()}
	s.active = []bool{true}

	for len(s.gfx) > 1 {
		s.gfx = s.gfx[:len(s.gfx)-1]
		s.diag().Warningf("missing end to AttributeBegin()")
	}
	s.gfx = []*GraphicsState{newGraphicsState()}

	s.instances = map[string][]shape.Shape{}
	s.recording = ""
	s.inObject = false
	s.coordSys = map[string]geom.Matrix{}
	return nil
}

// Shape builds a shape and adds it to the scene, or to the instance being
// defined
func (s *State) Shape(name string, ps *params.ParamSet) error {
	if !s.in(BlockWorld, "Shape") {
		return nil
	}
	kind := shape.ParseKind(name)
	if kind == shape.KindUnknown {
		s.diag().Errorf("unknown shape type %s%s", name, diag.DidYouMean(name, shape.KindNames()))
		return nil
	}
	if !kind.Implemented() {
		s.diag().Warningf("shape %s not yet implemented. Will be ignored", name)
		return nil
	}

	sh := shape.New(kind)
	err := sh.Init(ps, shape.Options{
		Dir:      s.env.Dir(),
		AutoFlat: s.env.AutoFlat,
		AutoEdge: s.env.AutoEdge,
		Diag:     s.diag(),
	})
	var loadErr *shape.LoadError
	if errors.As(err, &loadErr) {
		s.diag().Errorf("%v", loadErr)
		return nil
	}
	if err != nil {
		return err
	}
	// alpha cutouts are read for plain triangle meshes only
	if m, ok := sh.(*shape.TriangleMesh); ok {
		m.SetAlphaTexture(s.alphaTexture(ps))
	}

	gs := s.Graphics()
	sh.ApplyTransform(s.CurrentTransform())
	mtl, err := s.createMaterial(ps)
	if err != nil {
		return err
	}
	sh.SetMaterial(mtl)
	if gs.ReverseOrientation {
		sh.FlipNormals()
	}

	area := s.areaLight()
	if s.inObject {
		if area != nil {
			s.diag().Warningf("Area lights not supported with object instancing")
		}
		s.instances[s.recording] = append(s.instances[s.recording], sh)
		return nil
	}
	if area != nil {
		sh.SetAreaLight(area)
	}
	s.options.Shapes = append(s.options.Shapes, sh)
	return nil
}

// alphaTexture resolves the alpha override of a shape: a named float
// texture, or a constant zero texture for "alpha" 0
func (s *State) alphaTexture(ps *params.ParamSet) *texture.Texture[float32] {
	if name := ps.GetTexture("alpha"); name != "" {
		tex, ok := s.Graphics().FloatTextures[name]
		if !ok {
			s.diag().Warningf("couldn't find float texture %s for alpha parameter", name)
		}
		return tex
	}
	if ps.GetFloat("alpha", 1) == 0 {
		return texture.Constant[float32](0)
	}
	return nil
}

func (s *State) areaLight() *material.AreaLight {
	gs := s.Graphics()
	switch gs.AreaLight {
	case "":
		return nil
	case "area", "diffuse":
		ps := gs.AreaLightParams
		return &material.AreaLight{
			Spectrum: ps.GetSpectrum("L", color.Gray(1)).Mul(ps.GetSpectrum("scale", color.Gray(1))),
			NSamples: ps.GetInt("nsamples", 1),
		}
	default:
		s.diag().Warningf("area light %s unknown. Will be ignored", gs.AreaLight)
		return nil
	}
}

func (s *State) textureParams(geomParams, materialParams *params.ParamSet) *texture.Params {
	gs := s.Graphics()
	return texture.NewParams(geomParams, materialParams, gs.FloatTextures, gs.SpectrumTextures, s.env.Dir(), s.diag())
}

// createMaterial returns the material for a new shape: the named override
// if set and registered, else the current material, else matte
func (s *State) createMaterial(ps *params.ParamSet) (*material.Material, error) {
	gs := s.Graphics()
	if gs.CurrentNamedMaterial != "" {
		if m, ok := gs.NamedMaterials[gs.CurrentNamedMaterial]; ok {
			return m, nil
		}
		s.diag().Warningf("named material %s not found. Using %s", gs.CurrentNamedMaterial, gs.Material)
	}
	tp := s.textureParams(ps, gs.MaterialParams)
	if m := material.Make(gs.Material, tp, gs.NamedMaterials); m != nil {
		return m, nil
	}
	if m := material.Make("matte", tp, gs.NamedMaterials); m != nil {
		return m, nil
	}
	return nil, errors.New("unable to create matte material")
}

func (s *State) ObjectBegin(name string) error {
	if !s.in(BlockWorld, "ObjectBegin") {
		return nil
	}
	s.AttributeBegin()
	if s.inObject {
		s.diag().Errorf("ObjectBegin called inside of instance definition")
	}
	s.instances[name] = nil
	s.recording = name
	s.inObject = true
	return nil
}

func (s *State) ObjectEnd() error {
	if !s.in(BlockWorld, "ObjectEnd") {
		return nil
	}
	if !s.inObject {
		return errors.New("ObjectEnd called outside of instance definition")
	}
	s.recording = ""
	s.inObject = false
	return s.AttributeEnd()
}

// ObjectInstance adds a clone of every shape of the named instance, placed
// with the current transform
func (s *State) ObjectInstance(name string) error {
	if !s.in(BlockWorld, "ObjectInstance") {
		return nil
	}
	s.diag().Throttledf("object instance %s", name)
	if s.Graphics().ReverseOrientation {
		s.diag().Infof("reverse orientation is ignored in instancing")
	}
	if s.inObject {
		return errors.New("ObjectInstance can't be called inside instance definition")
	}
	shapes, ok := s.instances[name]
	if !ok {
		return fmt.Errorf("unable to find instance named %s", name)
	}
	for _, sh := range shapes {
		c := sh.Clone()
		c.ApplyTransform(s.CurrentTransform())
		s.options.Shapes = append(s.options.Shapes, c)
	}
	return nil
}

func (s *State) LightSource(name string, ps *params.ParamSet) error {
	if !s.in(BlockWorld, "LightSource") {
		return nil
	}
	l, err := light.Make(name, ps, s.CurrentTransform(), s.diag())
	if err != nil {
		return err
	}
	if l != nil {
		s.options.Lights = append(s.options.Lights, l)
	}
	return nil
}

func (s *State) AreaLightSource(name string, ps *params.ParamSet) error {
	if !s.in(BlockWorld, "AreaLightSource") {
		return nil
	}
	gs := s.Graphics()
	gs.AreaLight = name
	gs.AreaLightParams = ps
	return nil
}

func (s *State) ReverseOrientation() error {
	if !s.in(BlockWorld, "ReverseOrientation") {
		return nil
	}
	gs := s.Graphics()
	gs.ReverseOrientation = !gs.ReverseOrientation
	return nil
}

func (s *State) Material(name string, ps *params.ParamSet) error {
	if !s.in(BlockWorld, "Material") {
		return nil
	}
	gs := s.Graphics()
	gs.Material = name
	gs.MaterialParams = ps
	gs.CurrentNamedMaterial = ""
	return nil
}

// MakeNamedMaterial builds a material from the "type" parameter and
// registers it under name
func (s *State) MakeNamedMaterial(name string, ps *params.ParamSet) error {
	if !s.in(BlockWorld, "MakeNamedMaterial") {
		return nil
	}
	gs := s.Graphics()
	typ := ps.GetString("type", "")
	if typ == "" {
		s.diag().Errorf(`no parameter string "type" found in MakeNamedMaterial`)
		return nil
	}
	if _, ok := gs.NamedMaterials[name]; ok {
		s.diag().Infof("named material %s being redefined", name)
	}
	m := material.Make(typ, s.textureParams(ps, gs.MaterialParams), gs.NamedMaterials)
	if m == nil {
		s.diag().Errorf("could not make material %s", name)
		return nil
	}
	gs.NamedMaterials[name] = m
	s.diag().Progressf("made named material %s", name)
	return nil
}

func (s *State) NamedMaterial(name string) error {
	if !s.in(BlockWorld, "NamedMaterial") {
		return nil
	}
	s.Graphics().CurrentNamedMaterial = name
	return nil
}

// Texture builds a float or spectrum texture and registers it under name
func (s *State) Texture(name, valueType, class string, ps *params.ParamSet) error {
	if !s.in(BlockWorld, "Texture") {
		return nil
	}
	gs := s.Graphics()
	tp := s.textureParams(ps, ps)
	switch valueType {
	case "float":
		if _, ok := gs.FloatTextures[name]; ok {
			s.diag().Infof("Texture %s being redefined", name)
		}
		if tex := texture.Make[float32](class, s.CurrentTransform(), tp); tex != nil {
			gs.FloatTextures[name] = tex
			s.diag().Progressf("made float texture %s", name)
		}
	case "color", "spectrum":
		if _, ok := gs.SpectrumTextures[name]; ok {
			s.diag().Infof("Texture %s being redefined", name)
		}
		if tex := texture.Make[color.Spectrum](class, s.CurrentTransform(), tp); tex != nil {
			gs.SpectrumTextures[name] = tex
			s.diag().Progressf("made spectrum texture %s", name)
		}
	default:
		s.diag().Errorf("Texture type %s unknown", valueType)
	}
	return nil
}

func (s *State) Volume(name string, ps *params.ParamSet) error {
	if !s.in(BlockWorld, "Volume") {
		return nil
	}
	s.options.VolumeRegions = append(s.options.VolumeRegions, SceneObject{Type: name, Params: ps})
	return nil
}
