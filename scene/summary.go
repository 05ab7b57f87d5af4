package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/texture"
)

// VertexSize is the vertex size used for memory estimates
const VertexSize = 32

// Summary is a serializable overview of parsed render options
type Summary struct {
	Camera         CameraSummary   `json:"camera" yaml:"camera"`
	Objects        []ObjectSummary `json:"objects" yaml:"objects"`
	Volumes        []ObjectSummary `json:"volumes,omitempty" yaml:"volumes,omitempty"`
	Shapes         []ShapeSummary  `json:"shapes" yaml:"shapes"`
	Lights         []LightSummary  `json:"lights" yaml:"lights"`
	ShapeCounts    map[string]int  `json:"shape_counts" yaml:"shape_counts"`
	EstimatedBytes int             `json:"estimated_bytes" yaml:"estimated_bytes"`
}

type CameraSummary struct {
	Type     string     `json:"type" yaml:"type"`
	Position [3]float32 `json:"position" yaml:"position,flow"`
	LookAt   [3]float32 `json:"look_at" yaml:"look_at,flow"`
}

// ObjectSummary describes a scene object such as the film or sampler
type ObjectSummary struct {
	Role   string `json:"role" yaml:"role"`
	Type   string `json:"type" yaml:"type"`
	Params int    `json:"params" yaml:"params"`
}

type ShapeSummary struct {
	Kind           string `json:"kind" yaml:"kind"`
	Material       string `json:"material" yaml:"material"`
	AreaLight      bool   `json:"area_light,omitempty" yaml:"area_light,omitempty"`
	Flipped        bool   `json:"flipped,omitempty" yaml:"flipped,omitempty"`
	EstimatedBytes int    `json:"estimated_bytes" yaml:"estimated_bytes"`
	// Mesh vertex data, zero for analytic shapes
	Vertices int  `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Normals  bool `json:"normals,omitempty" yaml:"normals,omitempty"`
	Tangents bool `json:"tangents,omitempty" yaml:"tangents,omitempty"`
	UVs      bool `json:"uvs,omitempty" yaml:"uvs,omitempty"`
	Alpha    bool `json:"alpha,omitempty" yaml:"alpha,omitempty"`
}

// mesh is implemented by the shapes that carry vertex data
type mesh interface {
	Positions() []geom.Vector3
	Normals() []geom.Vector3
	Tangents() []geom.Vector3
	UVs() [][2]float32
	AlphaTexture() *texture.Texture[float32]
}

type LightSummary struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Position [3]float32 `json:"position" yaml:"position,flow"`
	Dir      [3]float32 `json:"dir" yaml:"dir,flow"`
	Spectrum [3]float32 `json:"spectrum" yaml:"spectrum,flow"`
}

// Summarize builds a summary of ro
func Summarize(ro *RenderOptions) Summary {
	sum := Summary{
		Camera: CameraSummary{
			Type:     ro.Camera.Type,
			Position: ro.CameraPos.Array(),
			LookAt:   ro.CameraLookAt.Array(),
		},
		Shapes:      []ShapeSummary{},
		Lights:      []LightSummary{},
		ShapeCounts: map[string]int{},
	}
	for _, o := range []struct {
		role string
		obj  SceneObject
	}{
		{"camera", ro.Camera},
		{"sampler", ro.Sampler},
		{"film", ro.Film},
		{"renderer", ro.Renderer},
		{"surface_integrator", ro.SurfaceIntegrator},
		{"volume_integrator", ro.VolumeIntegrator},
		{"accelerator", ro.Accelerator},
		{"pixel_filter", ro.PixelFilter},
	} {
		sum.Objects = append(sum.Objects, ObjectSummary{Role: o.role, Type: o.obj.Type, Params: o.obj.Params.Len()})
	}
	for _, v := range ro.VolumeRegions {
		sum.Volumes = append(sum.Volumes, ObjectSummary{Role: "volume", Type: v.Type, Params: v.Params.Len()})
	}

	for _, s := range ro.Shapes {
		ss := ShapeSummary{
			Kind:           s.Kind().String(),
			Flipped:        s.Flipped(),
			EstimatedBytes: s.EstimateSize(VertexSize),
		}
		if m := s.Material(); m != nil {
			ss.Material = m.Kind.String()
			ss.AreaLight = m.AreaLight != nil
		}
		if m, ok := s.(mesh); ok {
			ss.Vertices = len(m.Positions())
			ss.Normals = len(m.Normals()) > 0
			ss.Tangents = len(m.Tangents()) > 0
			ss.UVs = len(m.UVs()) > 0
			ss.Alpha = m.AlphaTexture() != nil
		}
		sum.Shapes = append(sum.Shapes, ss)
		sum.ShapeCounts[ss.Kind]++
		sum.EstimatedBytes += ss.EstimatedBytes
	}
	for _, l := range ro.Lights {
		sum.Lights = append(sum.Lights, LightSummary{
			Kind:     l.Kind.String(),
			Position: l.Position.Array(),
			Dir:      l.Dir.Array(),
			Spectrum: [3]float32(l.Spectrum),
		})
	}
	return sum
}

// Write renders the summary as "text", "json" or "yaml"
func (sum Summary) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return sum.writeText(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sum); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown summary format %q", format)
	}
}

func (sum Summary) writeText(w io.Writer) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	printf("camera %s at %v looking at %v\n", sum.Camera.Type,
		vec(sum.Camera.Position), vec(sum.Camera.LookAt))
	for _, o := range sum.Objects {
		printf("  %-18s %s (%d params)\n", o.Role, o.Type, o.Params)
	}
	for _, v := range sum.Volumes {
		printf("  %-18s %s (%d params)\n", v.Role, v.Type, v.Params)
	}

	kinds := make([]string, 0, len(sum.ShapeCounts))
	for k := range sum.ShapeCounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	printf("shapes: %d\n", len(sum.Shapes))
	for _, k := range kinds {
		printf("  %-18s %d\n", k, sum.ShapeCounts[k])
	}
	printf("lights: %d\n", len(sum.Lights))
	for _, l := range sum.Lights {
		printf("  %-18s at %v dir %v %v\n", l.Kind, vec(l.Position), vec(l.Dir), color.Spectrum(l.Spectrum))
	}
	printf("estimated size: %s\n", formatBytes(sum.EstimatedBytes))
	return err
}

func vec(a [3]float32) geom.Vector3 { return geom.Vec3(a[0], a[1], a[2]) }

func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
