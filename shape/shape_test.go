package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/material"
	"github.com/df07/pbrt-scene/params"
)

func quadParams() *params.ParamSet {
	ps := params.New()
	ps.AddInt("indices", []int{0, 1, 2, 0, 2, 3})
	ps.AddPoint("P", []geom.Vector3{
		geom.Vec3(0, 0, 0), geom.Vec3(1, 0, 0), geom.Vec3(1, 1, 0), geom.Vec3(0, 1, 0),
	})
	return ps
}

func TestParseKind(t *testing.T) {
	assert.Len(t, KindNames(), 11)
	implemented := 0
	for _, name := range KindNames() {
		k := ParseKind(name)
		assert.Equal(t, name, k.String())
		if k.Implemented() {
			implemented++
			assert.NotNil(t, New(k))
		} else {
			assert.Nil(t, New(k))
		}
	}
	assert.Equal(t, 4, implemented)
	assert.Equal(t, KindUnknown, ParseKind("spheres"))
}

func TestSphereInit(t *testing.T) {
	ps := params.New()
	ps.AddFloat("radius", []float32{2})
	s := NewSphere()
	require.NoError(t, s.Init(ps, Options{}))
	assert.Equal(t, float32(2), s.Radius)
	assert.Equal(t, float32(-2), s.ZMin)
	assert.Equal(t, float32(2), s.ZMax)
	assert.Equal(t, float32(360), s.PhiMax)

	// full sphere: 50 rings by 50 segments
	assert.Equal(t, 50*50*32+49*49*6*4, s.EstimateSize(32))
}

func TestSphereHemisphereEstimate(t *testing.T) {
	ps := params.New()
	ps.AddFloat("zmin", []float32{0})
	ps.AddFloat("phimax", []float32{180})
	s := NewSphere()
	require.NoError(t, s.Init(ps, Options{}))
	resTheta, resPhi := s.resolution()
	assert.Equal(t, 25, resPhi)
	assert.Equal(t, 25, resTheta)
	assert.Equal(t, 25*25*10+24*24*6*4, s.EstimateSize(10))
}

func TestTransformAccumulation(t *testing.T) {
	s := NewSphere()
	s.ApplyTransform(geom.Translate(geom.Vec3(1, 0, 0)))
	s.ApplyTransform(geom.Scale(2, 2, 2))
	p := s.Transform().TransformPoint(geom.Vec3(1, 0, 0))
	assert.Equal(t, geom.Vec3(3, 0, 0), p)

	s.ApplyTransformFront(geom.SwapAxes(0, 1))
	p = s.Transform().TransformPoint(geom.Vec3(1, 0, 0))
	assert.Equal(t, geom.Vec3(0, 3, 0), p)
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewTriangleMesh()
	require.NoError(t, m.Init(quadParams(), Options{}))
	c := m.Clone().(*TriangleMesh)
	c.ApplyTransform(geom.Translate(geom.Vec3(0, 0, 5)))
	c.FlipNormals()
	assert.True(t, m.Transform().IsIdentity())
	assert.False(t, m.Flipped())
	assert.True(t, c.Flipped())
	assert.Equal(t, m.Indices(), c.Indices())
}

func TestTriangleMeshRequiredParams(t *testing.T) {
	m := NewTriangleMesh()
	err := m.Init(params.New(), Options{})
	var missing *params.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "integer indices", missing.Param)

	ps := params.New()
	ps.AddInt("indices", []int{0, 1, 2})
	err = m.Init(ps, Options{})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "point P", missing.Param)
}

func TestTriangleMeshMismatches(t *testing.T) {
	tests := []struct {
		name   string
		modify func(ps *params.ParamSet)
		want   string
	}{
		{"normals", func(ps *params.ParamSet) { ps.AddNormal("N", []geom.Vector3{{Z: 1}}) }, "normals"},
		{"tangents", func(ps *params.ParamSet) { ps.AddVector("S", []geom.Vector3{{X: 1}}) }, "tangents"},
		{"uv", func(ps *params.ParamSet) { ps.AddFloat("uv", []float32{0, 0, 1, 0}) }, "texture coordinates"},
		{"st", func(ps *params.ParamSet) { ps.AddFloat("st", []float32{0, 0}) }, "texture coordinates"},
		{"indices", func(ps *params.ParamSet) { ps.AddInt("indices", []int{0, 1, 2, 3}) }, "indices count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := quadParams()
			tt.modify(ps)
			err := NewTriangleMesh().Init(ps, Options{})
			var mismatch *params.ArgMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tt.want, mismatch.Name)
		})
	}
}

func TestTriangleMeshIndexBounds(t *testing.T) {
	ps := quadParams()
	ps.AddInt("indices", []int{0, 1, 4})
	err := NewTriangleMesh().Init(ps, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of bounds")
}

func TestTriangleMeshAccessors(t *testing.T) {
	ps := quadParams()
	ps.AddNormal("N", []geom.Vector3{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}})
	ps.AddFloat("uv", []float32{0, 0, 1, 0, 1, 1, 0, 1})
	m := NewTriangleMesh()
	require.NoError(t, m.Init(ps, Options{}))
	assert.Len(t, m.UVs(), 4)
	assert.Equal(t, [2]float32{1, 1}, m.UVs()[2])
	assert.Equal(t, 6*4*4/3+4*32, m.EstimateSize(32))

	m.FlipNormals()
	assert.Equal(t, geom.Vec3(0, 0, -1), m.Normals()[0])
}

func TestDiscardDegenerateUVs(t *testing.T) {
	ps := quadParams()
	ps.AddNormal("N", []geom.Vector3{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}})
	ps.AddFloat("uv", []float32{0, 0, 0, 0, 1, 1, 0, 1})
	ps.AddBool("discarddegenerateUVs", []bool{true})
	sink := diag.Discard()
	m := NewTriangleMesh()
	require.NoError(t, m.Init(ps, Options{Diag: sink}))
	assert.Nil(t, m.UVs())
	assert.Equal(t, 1, sink.Count(diag.LevelWarning))
}

func TestAutoFlatNormals(t *testing.T) {
	// two triangles folded along the shared edge 0-2
	ps := params.New()
	ps.AddInt("indices", []int{0, 1, 2, 0, 2, 3})
	ps.AddPoint("P", []geom.Vector3{
		geom.Vec3(0, 0, 0), geom.Vec3(1, 0, 0), geom.Vec3(1, 1, 0), geom.Vec3(0, 1, 1),
	})
	m := NewTriangleMesh()
	require.NoError(t, m.Init(ps, Options{AutoFlat: true}))
	require.Len(t, m.Normals(), len(m.Positions()))
	// the shared corners 0 and 2 get duplicated for the second face
	assert.Len(t, m.Positions(), 6)
	assert.Equal(t, []int{0, 1, 2, 4, 5, 3}, m.Indices())
	assert.InDelta(t, 1, m.Normals()[0].Z, 1e-6)
}

func TestAutoEdge(t *testing.T) {
	ps := quadParams()
	// vertex 3 normal tilted by 90 degrees
	ps.AddNormal("N", []geom.Vector3{{Z: 1}, {Z: 1}, {Z: 1}, {X: 1}})
	m := NewTriangleMesh()
	require.NoError(t, m.Init(ps, Options{AutoEdge: 30}))
	assert.Len(t, m.Positions(), 5)
	assert.Equal(t, 4, m.Indices()[5])
	assert.Equal(t, geom.Vec3(0, 0, 1), m.Normals()[4])
}

func TestLoopSubdiv(t *testing.T) {
	ps := quadParams()
	ps.AddInt("levels", []int{-2})
	m := NewLoopSubdiv()
	require.NoError(t, m.Init(ps, Options{}))
	assert.Equal(t, 0, m.Levels)
	assert.Equal(t, KindLoopSubdiv, m.Kind())

	c := m.Clone()
	assert.Equal(t, KindLoopSubdiv, c.Kind())
}

func TestSetAreaLightKeepsSharedMaterial(t *testing.T) {
	shared := &material.Material{Kind: material.KindMatte}
	a, b := NewSphere(), NewSphere()
	a.SetMaterial(shared)
	b.SetMaterial(shared)
	a.SetAreaLight(&material.AreaLight{Spectrum: color.Gray(5), NSamples: 1})
	assert.Nil(t, shared.AreaLight)
	assert.Same(t, shared, b.Material())
	require.NotNil(t, a.Material().AreaLight)
	assert.Equal(t, color.Gray(5), a.Material().AreaLight.Spectrum)
}
