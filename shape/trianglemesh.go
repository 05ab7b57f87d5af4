package shape

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/params"
	"github.com/df07/pbrt-scene/texture"
)

// flatNormalThreshold is the cosine below which two face normals sharing a
// vertex are considered different when building flat normals
const flatNormalThreshold = 0.98

// meshData is the geometry shared between clones of a mesh
type meshData struct {
	indices []int
	p       []geom.Vector3
	n       []geom.Vector3
	s       []geom.Vector3
	uv      [][2]float32
}

// TriangleMesh is an indexed triangle mesh. Clones share the vertex data
// and own their transform, material and orientation.
type TriangleMesh struct {
	base
	data  *meshData
	alpha *texture.Texture[float32]
}

// NewTriangleMesh creates an empty mesh
func NewTriangleMesh() *TriangleMesh {
	return &TriangleMesh{base: newBase(), data: &meshData{}}
}

func (m *TriangleMesh) Kind() Kind { return KindTriangleMesh }

func (m *TriangleMesh) Init(ps *params.ParamSet, opts Options) error {
	indices, ok := ps.Ints("indices")
	if !ok {
		return &params.MissingParameterError{Param: "integer indices"}
	}
	p, ok := ps.Points("P")
	if !ok {
		return &params.MissingParameterError{Param: "point P"}
	}
	m.data = &meshData{indices: indices, p: p}
	m.data.n, _ = ps.Normals("N")
	m.data.s, _ = ps.Vectors("S")
	uvs, _ := ps.Floats("uv")
	if len(uvs) == 0 {
		uvs, _ = ps.Floats("st")
	}
	m.data.uv = pairs(uvs)
	if err := m.verify(false, opts); err != nil {
		return err
	}
	if ps.GetBool("discarddegenerateUVs", false) {
		m.discardDegenerateUVs(opts)
	}
	return nil
}

func (m *TriangleMesh) Clone() Shape {
	cp := *m
	return &cp
}

// SetAlphaTexture sets the alpha cutout texture, nil for none
func (m *TriangleMesh) SetAlphaTexture(tex *texture.Texture[float32]) { m.alpha = tex }

// AlphaTexture returns the alpha cutout texture or nil
func (m *TriangleMesh) AlphaTexture() *texture.Texture[float32] { return m.alpha }

// Indices returns the triangle vertex indices
func (m *TriangleMesh) Indices() []int { return m.data.indices }

// Positions returns the object space vertex positions
func (m *TriangleMesh) Positions() []geom.Vector3 { return m.data.p }

// Normals returns the per vertex normals, negated if the orientation was
// flipped, or nil if the mesh has none
func (m *TriangleMesh) Normals() []geom.Vector3 {
	if !m.flipped || m.data.n == nil {
		return m.data.n
	}
	out := make([]geom.Vector3, len(m.data.n))
	for i, n := range m.data.n {
		out[i] = n.Negate()
	}
	return out
}

// Tangents returns the per vertex tangents or nil
func (m *TriangleMesh) Tangents() []geom.Vector3 { return m.data.s }

// UVs returns the per vertex texture coordinates or nil
func (m *TriangleMesh) UVs() [][2]float32 { return m.data.uv }

func (m *TriangleMesh) EstimateSize(vertexSize int) int {
	return len(m.data.indices)*4*4/3 + len(m.data.p)*vertexSize
}

func pairs(v []float32) [][2]float32 {
	if len(v) < 2 {
		return nil
	}
	out := make([][2]float32, len(v)/2)
	for i := range out {
		out[i] = [2]float32{v[2*i], v[2*i+1]}
	}
	return out
}

// verify checks the array sizes and index range. With lenient set a
// trailing partial triangle is dropped with a warning instead of failing.
func (m *TriangleMesh) verify(lenient bool, opts Options) error {
	d := m.data
	if len(d.p) == 0 {
		return &params.MissingParameterError{Param: "vertex"}
	}
	if len(d.indices) == 0 {
		return &params.MissingParameterError{Param: "indices"}
	}
	if len(d.n) != 0 && len(d.n) != len(d.p) {
		return &params.ArgMismatchError{Name: "normals"}
	}
	if len(d.s) != 0 && len(d.s) != len(d.p) {
		return &params.ArgMismatchError{Name: "tangents"}
	}
	if len(d.uv) != 0 && len(d.uv) != len(d.p) {
		return &params.ArgMismatchError{Name: "texture coordinates"}
	}
	if rest := len(d.indices) % 3; rest != 0 {
		if !lenient {
			return &params.ArgMismatchError{Name: "indices count"}
		}
		opts.reporter().Warningf("invalid number of indices in mesh found: %d", len(d.indices))
		d.indices = d.indices[:len(d.indices)-rest]
	}
	for _, i := range d.indices {
		if i < 0 || i >= len(d.p) {
			return fmt.Errorf("mesh has out of bounds index %d (vertex count %d)", i, len(d.p))
		}
	}

	switch {
	case len(d.n) > 0:
		if opts.AutoEdge > 0 && opts.AutoEdge < 360 {
			m.splitEdges(opts.AutoEdge*math32.Pi/180, opts)
		}
	case opts.AutoFlat:
		m.makeFlatNormals(opts)
	}
	return nil
}

func faceNormal(p []geom.Vector3, i0, i1, i2 int) geom.Vector3 {
	return p[i1].Sub(p[i0]).Cross(p[i2].Sub(p[i0]))
}

// duplicateVertex appends a copy of vertex v with normal n and returns its index
func (d *meshData) duplicateVertex(v int, n geom.Vector3) int {
	d.p = append(d.p, d.p[v])
	d.n = append(d.n, n)
	if len(d.s) > 0 {
		// Gram-Schmidt the tangent against the new normal
		t := d.s[v]
		d.s = append(d.s, t.Sub(n.Mul(n.Dot(t))).Normalize())
	}
	if len(d.uv) > 0 {
		d.uv = append(d.uv, d.uv[v])
	}
	return len(d.p) - 1
}

// makeFlatNormals assigns each vertex the normal of the first face using
// it and duplicates vertices shared by faces facing elsewhere
func (m *TriangleMesh) makeFlatNormals(opts Options) {
	opts.reporter().Warningf("missing normals, making flat ones")
	d := m.data
	d.n = make([]geom.Vector3, len(d.p))
	used := make([]bool, len(d.p))
	for i := 0; i+2 < len(d.indices); i += 3 {
		fn := faceNormal(d.p, d.indices[i], d.indices[i+1], d.indices[i+2])
		if fn.LengthSquared() == 0 {
			continue
		}
		fn = fn.Normalize()
		for j := 0; j < 3; j++ {
			v := d.indices[i+j]
			switch {
			case !used[v]:
				d.n[v] = fn
				used[v] = true
			case d.n[v].Dot(fn) < flatNormalThreshold:
				d.indices[i+j] = d.duplicateVertex(v, fn)
				used = append(used, true)
			}
		}
	}
}

// splitEdges duplicates vertices whose normal deviates from the face
// normal by more than maxAngle radians, giving them the face normal
func (m *TriangleMesh) splitEdges(maxAngle float32, opts Options) {
	opts.reporter().Warningf("flatting edge normals")
	d := m.data
	used := make([]bool, len(d.p))
	for i := 0; i+2 < len(d.indices); i += 3 {
		fn := faceNormal(d.p, d.indices[i], d.indices[i+1], d.indices[i+2])
		if fn.LengthSquared() == 0 {
			continue
		}
		fn = fn.Normalize()
		var dots [3]float32
		negative := 0
		for j := 0; j < 3; j++ {
			dots[j] = d.n[d.indices[i+j]].Normalize().Dot(fn)
			if dots[j] < 0 {
				negative++
			}
		}
		// winding disagrees with the supplied normals
		if negative >= 2 {
			fn = fn.Negate()
			for j := range dots {
				dots[j] = -dots[j]
			}
		}
		for j := 0; j < 3; j++ {
			v := d.indices[i+j]
			if math32.Acos(math32.Max(-1, math32.Min(1, dots[j]))) > maxAngle {
				d.indices[i+j] = d.duplicateVertex(v, fn)
				used = append(used, true)
			} else {
				used[v] = true
			}
		}
	}
	unused := 0
	for _, u := range used {
		if !u {
			unused++
		}
	}
	if unused > 0 {
		opts.reporter().Warningf("%d unused vertices after auto edging", unused)
	}
}

// discardDegenerateUVs drops all texture coordinates if any non-degenerate
// triangle maps two corners to the same uv
func (m *TriangleMesh) discardDegenerateUVs(opts Options) {
	d := m.data
	if len(d.uv) == 0 || len(d.n) == 0 {
		return
	}
	for i := 0; i+2 < len(d.indices); i += 3 {
		v0, v1, v2 := d.indices[i], d.indices[i+1], d.indices[i+2]
		area := 0.5 * d.p[v0].Sub(d.p[v1]).Cross(d.p[v2].Sub(d.p[v1])).Length()
		if area < 1e-7 {
			continue
		}
		if d.uv[v0] == d.uv[v1] || d.uv[v1] == d.uv[v2] || d.uv[v2] == d.uv[v0] {
			opts.reporter().Warningf("Degenerate uv coordinates in triangle mesh.  Discarding all uvs")
			d.uv = nil
			return
		}
	}
}
