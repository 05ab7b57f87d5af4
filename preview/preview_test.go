package preview

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/parser"
	"github.com/df07/pbrt-scene/scene"
	"github.com/df07/pbrt-scene/shape"
)

func parse(t *testing.T, text string) *scene.RenderOptions {
	t.Helper()
	st, err := scene.ParseText(text, "test.pbrt", "", parser.NewEnv(nil))
	if err != nil {
		t.Fatalf("Failed to parse scene: %v", err)
	}
	return st.Options()
}

const spheres = `
Film "image" "integer xresolution" [200] "integer yresolution" [100]
LookAt 0 0 -5  0 0 0  0 1 0
Camera "perspective" "float fov" [40]
WorldBegin
AttributeBegin
  Translate 1 2 3
  Scale 2 2 2
  Material "matte" "rgb Kd" [0.8 0.1 0.1]
  Shape "sphere" "float radius" [0.5]
AttributeEnd
Shape "sphere"
Shape "trianglemesh" "integer indices" [0 1 2] "point P" [0 0 0 1 0 0 0 1 0]
WorldEnd
`

func TestBuild(t *testing.T) {
	ro := parse(t, spheres)
	rs, err := Build(ro, DefaultOptions(64))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(rs.Shapes) != 2 {
		t.Errorf("Expected 2 spheres, got %d", len(rs.Shapes))
	}
	if rs.SamplingConfig.Width != 64 || rs.SamplingConfig.Height != 32 {
		t.Errorf("Expected 64x32 from film aspect, got %dx%d", rs.SamplingConfig.Width, rs.SamplingConfig.Height)
	}
	if rs.CameraConfig.VFov != 40 {
		t.Errorf("Expected fov 40, got %g", rs.CameraConfig.VFov)
	}
	if math.Abs(rs.CameraConfig.Center.Z+5) > 1e-4 {
		t.Errorf("Expected camera at z=-5, got %v", rs.CameraConfig.Center)
	}
}

func TestSpherePlacement(t *testing.T) {
	ro := parse(t, spheres)
	sp, ok := ro.Shapes[0].(*shape.Sphere)
	if !ok {
		t.Fatalf("Expected a sphere, got %T", ro.Shapes[0])
	}
	center, radius := sphere(sp)
	if center != geom.Vec3(1, 2, 3) {
		t.Errorf("Expected center (1, 2, 3), got %v", center)
	}
	if math.Abs(float64(radius)-1) > 1e-5 {
		t.Errorf("Expected scaled radius 1, got %g", radius)
	}
	if got := albedo(sp.Material()); got != color.RGB(0.8, 0.1, 0.1) {
		t.Errorf("Expected red albedo, got %v", got)
	}
}

func TestEnvironment(t *testing.T) {
	ro := parse(t, spheres)
	if got := environment(ro.Lights); got != skyColor {
		t.Errorf("Expected sky color without lights, got %v", got)
	}

	ro = parse(t, `WorldBegin
LightSource "infinite" "rgb L" [0.2 0.3 0.4]
Shape "sphere"
WorldEnd`)
	if got := environment(ro.Lights); got != color.RGB(0.2, 0.3, 0.4) {
		t.Errorf("Expected infinite light radiance, got %v", got)
	}
}

func TestAlbedoFallback(t *testing.T) {
	if got := albedo(nil); got != fallbackAlbedo {
		t.Errorf("Expected fallback for nil material, got %v", got)
	}
	ro := parse(t, `WorldBegin
Texture "checks" "spectrum" "checkerboard"
Material "matte" "texture Kd" "checks"
Shape "sphere"
WorldEnd`)
	if got := albedo(ro.Shapes[0].Material()); got != fallbackAlbedo {
		t.Errorf("Expected fallback for textured Kd, got %v", got)
	}
}

func TestBuildNothingToDraw(t *testing.T) {
	ro := parse(t, `WorldBegin
Shape "trianglemesh" "integer indices" [0 1 2] "point P" [0 0 0 1 0 0 0 1 0]
WorldEnd`)
	if _, err := Build(ro, DefaultOptions(32)); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("Expected ErrNothingToDraw, got %v", err)
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, ro, DefaultOptions(32)); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("Expected ErrNothingToDraw from WritePNG, got %v", err)
	}
}

func TestWritePNG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping render in short mode")
	}
	ro := parse(t, spheres)
	opts := DefaultOptions(16)
	opts.SamplesPerPixel = 1

	var buf bytes.Buffer
	if err := WritePNG(&buf, ro, opts); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Expected a PNG, got %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("Expected 16x8 image, got %dx%d", b.Dx(), b.Dy())
	}
}
