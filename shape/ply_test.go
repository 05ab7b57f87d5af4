package shape

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/params"
)

const asciiPLY = `ply
format ascii 1.0
comment unit quad
element vertex 4
property float x
property float y
property float z
property float nx
property float ny
property float nz
property float u
property float v
element face 2
property list uchar int vertex_indices
end_header
0 0 0 0 0 1 0 0
1 0 0 0 0 1 1 0
1 1 0 0 0 1 1 1
0 1 0 0 0 1 0 1
4 0 1 2 3
5 0 1 2 3 0
`

func TestReadPLYASCII(t *testing.T) {
	sink := diag.Discard()
	mesh, err := readPLY(strings.NewReader(asciiPLY), sink)
	require.NoError(t, err)
	assert.Len(t, mesh.p, 4)
	assert.Equal(t, geom.Vec3(1, 1, 0), mesh.p[2])
	assert.Equal(t, geom.Vec3(0, 0, 1), mesh.n[3])
	assert.Equal(t, [2]float32{0, 1}, mesh.uv[3])
	// the quad is split, the pentagon skipped
	assert.Equal(t, []int{0, 1, 2, 3, 0, 2}, mesh.indices)
	assert.Equal(t, 1, sink.Count(diag.LevelWarning))
}

func binaryPLY(t *testing.T, order binary.ByteOrder, format string) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("ply\nformat " + format + " 1.0\n" +
		"element vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 1\nproperty list uchar uint vertex_indices\nend_header\n")
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		require.NoError(t, binary.Write(&buf, order, v))
	}
	buf.WriteByte(3)
	for _, i := range []uint32{0, 1, 2} {
		require.NoError(t, binary.Write(&buf, order, i))
	}
	return buf.Bytes()
}

func TestReadPLYBinary(t *testing.T) {
	tests := []struct {
		name   string
		order  binary.ByteOrder
		format string
	}{
		{"little endian", binary.LittleEndian, "binary_little_endian"},
		{"big endian", binary.BigEndian, "binary_big_endian"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := readPLY(bytes.NewReader(binaryPLY(t, tt.order, tt.format)), diag.Discard())
			require.NoError(t, err)
			assert.Equal(t, geom.Vec3(0, 1, 0), mesh.p[2])
			assert.Nil(t, mesh.n)
			assert.Nil(t, mesh.uv)
			assert.Equal(t, []int{0, 1, 2}, mesh.indices)
		})
	}
}

func TestReadPLYErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"magic", "obj\n"},
		{"no faces", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"no coordinates", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0\n3 0 0 0\n"},
		{"out of bounds", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n3 0 0 7\n"},
		{"truncated", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readPLY(strings.NewReader(tt.data), diag.Discard())
			assert.Error(t, err)
		})
	}
}

func TestPlyMeshInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "geometry"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geometry", "quad.ply"), []byte(asciiPLY), 0o644))

	ps := params.New()
	ps.AddString("filename", []string{"geometry/quad.ply"})
	m := NewPlyMesh()
	require.NoError(t, m.Init(ps, Options{Dir: dir}))
	assert.Equal(t, KindPlyMesh, m.Kind())
	assert.Len(t, m.Indices(), 6)
	assert.Equal(t, filepath.Join(dir, "geometry", "quad.ply"), m.Filename)

	c := m.Clone().(*PlyMesh)
	assert.Equal(t, m.Filename, c.Filename)
}

func TestPlyMeshErrors(t *testing.T) {
	err := NewPlyMesh().Init(params.New(), Options{})
	var missing *params.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "filename", missing.Param)

	ps := params.New()
	ps.AddString("filename", []string{"missing.ply"})
	err = NewPlyMesh().Init(ps, Options{Dir: t.TempDir()})
	var load *LoadError
	require.ErrorAs(t, err, &load)
}
