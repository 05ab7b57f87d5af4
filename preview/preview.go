// Package preview renders a rough image of a parsed scene with the
// progressive raytracer. Only spheres are drawn, with a diffuse material
// taken from the constant Kd of their material.
package preview

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/integrator"
	rtmaterial "github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/renderer"
	rtscene "github.com/df07/go-progressive-raytracer/pkg/scene"

	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/light"
	"github.com/df07/pbrt-scene/material"
	"github.com/df07/pbrt-scene/scene"
	"github.com/df07/pbrt-scene/shape"
	"github.com/df07/pbrt-scene/texture"
)

// ErrNothingToDraw is returned when a scene has no sphere
var ErrNothingToDraw = errors.New("scene has no shape the preview can draw")

// skyColor lights scenes without an infinite light
var skyColor = color.RGB(0.5, 0.7, 1.0)

// fallbackAlbedo is used for materials without a constant Kd
var fallbackAlbedo = color.Gray(0.5)

// Options controls the preview render
type Options struct {
	Width           int
	SamplesPerPixel int
	Passes          int
}

// DefaultOptions returns a quick low resolution setup
func DefaultOptions(width int) Options {
	if width <= 0 {
		width = 320
	}
	return Options{Width: width, SamplesPerPixel: 10, Passes: 1}
}

// height follows the film aspect ratio
func height(ro *scene.RenderOptions, width int) int {
	xres := ro.Film.Params.GetInt("xresolution", 640)
	yres := ro.Film.Params.GetInt("yresolution", 480)
	if xres <= 0 || yres <= 0 {
		return width * 3 / 4
	}
	h := width * yres / xres
	if h < 1 {
		h = 1
	}
	return h
}

func vec(v geom.Vector3) core.Vec3 {
	return core.NewVec3(float64(v.X), float64(v.Y), float64(v.Z))
}

func spectrumVec(s color.Spectrum) core.Vec3 {
	return core.NewVec3(float64(s[0]), float64(s[1]), float64(s[2]))
}

// albedo returns the diffuse color of m when it is a constant
func albedo(m *material.Material) color.Spectrum {
	if m == nil || m.Kd == nil || m.Kd.Kind != texture.KindConstant {
		return fallbackAlbedo
	}
	return m.Kd.Value
}

// sphere places a sphere in world space. Non uniform scales are
// approximated by the largest axis.
func sphere(s *shape.Sphere) (geom.Vector3, float32) {
	t := s.Transform()
	center := t.TransformPoint(geom.Vector3{})
	r := float32(0)
	for _, axis := range []geom.Vector3{geom.Vec3(1, 0, 0), geom.Vec3(0, 1, 0), geom.Vec3(0, 0, 1)} {
		r = max(r, t.TransformVector(axis.Mul(s.Radius)).Length())
	}
	return center, r
}

// cameraUp recovers the up direction given to LookAt
func cameraUp(ro *scene.RenderOptions) geom.Vector3 {
	up := ro.CameraToWorld.TransformVector(geom.Vec3(0, 1, 0))
	if up.IsZero() {
		return geom.Vec3(0, 1, 0)
	}
	return up.Normalize()
}

// Build converts the parsed scene to a raytracer scene
func Build(ro *scene.RenderOptions, opts Options) (*rtscene.Scene, error) {
	samplingConfig := rtscene.SamplingConfig{
		Width:                     opts.Width,
		Height:                    height(ro, opts.Width),
		SamplesPerPixel:           opts.SamplesPerPixel,
		MaxDepth:                  8,
		RussianRouletteMinBounces: 3,
		AdaptiveMinSamples:        0.1,
		AdaptiveThreshold:         0.05,
	}

	cameraConfig := geometry.CameraConfig{
		Center:        vec(ro.CameraPos),
		LookAt:        vec(ro.CameraLookAt),
		Up:            vec(cameraUp(ro)),
		VFov:          float64(ro.Camera.Params.GetFloat("fov", 90)),
		Width:         samplingConfig.Width,
		AspectRatio:   float64(samplingConfig.Width) / float64(samplingConfig.Height),
		Aperture:      0.0,
		FocusDistance: 0.0,
	}
	camera := geometry.NewCamera(cameraConfig)

	var shapes []geometry.Shape
	for _, s := range ro.Shapes {
		sp, ok := s.(*shape.Sphere)
		if !ok {
			continue
		}
		center, radius := sphere(sp)
		mat := rtmaterial.NewLambertian(spectrumVec(albedo(sp.Material())))
		shapes = append(shapes, geometry.NewSphere(vec(center), float64(radius), mat))
	}
	if len(shapes) == 0 {
		return nil, ErrNothingToDraw
	}

	rs := &rtscene.Scene{
		Camera:         camera,
		Shapes:         shapes,
		SamplingConfig: samplingConfig,
		CameraConfig:   cameraConfig,
	}
	rs.AddUniformInfiniteLight(spectrumVec(environment(ro.Lights)))
	return rs, nil
}

// environment returns the radiance of the first infinite light, or a sky
// color when there is none
func environment(lights []*light.Light) color.Spectrum {
	for _, l := range lights {
		if l.Kind == light.KindInfinite {
			return l.Spectrum
		}
	}
	return skyColor
}

// Render draws the scene
func Render(ro *scene.RenderOptions, opts Options) (image.Image, error) {
	rs, err := Build(ro, opts)
	if err != nil {
		return nil, err
	}

	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = opts.SamplesPerPixel
	config.MaxPasses = max(opts.Passes, 1)

	logger := renderer.NewDefaultLogger()
	pt := integrator.NewPathTracingIntegrator(rs.SamplingConfig)

	raytracer, err := renderer.NewProgressiveRaytracer(rs, config, pt, logger)
	if err != nil {
		return nil, err
	}

	var img image.Image
	for pass := 1; pass <= config.MaxPasses; pass++ {
		img, _, err = raytracer.RenderPass(pass, nil)
		if err != nil {
			return nil, err
		}
	}
	return img, nil
}

// WritePNG renders the scene and encodes it to w
func WritePNG(w io.Writer, ro *scene.RenderOptions, opts Options) error {
	img, err := Render(ro, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
