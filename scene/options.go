package scene

import (
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/light"
	"github.com/df07/pbrt-scene/params"
	"github.com/df07/pbrt-scene/shape"
)

// SceneObject is a renderer component selected by type name
type SceneObject struct {
	Type   string
	Params *params.ParamSet
}

func object(typ string) SceneObject {
	return SceneObject{Type: typ, Params: params.New()}
}

// RenderOptions is everything a parse produces
type RenderOptions struct {
	CameraToWorld geom.Matrix
	Camera        SceneObject
	// CameraPos and CameraLookAt are derived from the transform in effect
	// at the Camera directive
	CameraPos    geom.Vector3
	CameraLookAt geom.Vector3

	Sampler           SceneObject
	Film              SceneObject
	Renderer          SceneObject
	SurfaceIntegrator SceneObject
	VolumeIntegrator  SceneObject
	Accelerator       SceneObject
	PixelFilter       SceneObject

	VolumeRegions []SceneObject
	Shapes        []shape.Shape
	Lights        []*light.Light
}

func newRenderOptions() *RenderOptions {
	return &RenderOptions{
		CameraToWorld:     geom.Identity(),
		Camera:            object("perspective"),
		Sampler:           object("lowdiscrepancy"),
		Film:              object("image"),
		Renderer:          object("sampler"),
		SurfaceIntegrator: object("directlighting"),
		VolumeIntegrator:  object("emission"),
		Accelerator:       object("bvh"),
		PixelFilter:       object("box"),
	}
}

// SwapAxes applies the axis remap m to the parsed world: shapes are
// transformed in front of their own transform, lights and the derived
// camera position are transformed directly. CameraToWorld is left alone.
func (ro *RenderOptions) SwapAxes(m geom.Matrix) {
	for _, s := range ro.Shapes {
		s.ApplyTransformFront(m)
	}
	for _, l := range ro.Lights {
		l.Transform(m)
	}
	ro.CameraPos = m.TransformPoint(ro.CameraPos)
	ro.CameraLookAt = m.TransformPoint(ro.CameraLookAt)
}
