package shape

import (
	"fmt"
	"os"

	"github.com/df07/pbrt-scene/params"
)

// LoadError reports a mesh file that could not be read. The scene builder
// skips the shape and keeps parsing.
type LoadError struct {
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to read PLY file %s: %v", e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PlyMesh is a triangle mesh loaded from a PLY file
type PlyMesh struct {
	TriangleMesh
	Filename string
}

// NewPlyMesh creates an empty PLY mesh
func NewPlyMesh() *PlyMesh {
	return &PlyMesh{TriangleMesh: *NewTriangleMesh()}
}

func (m *PlyMesh) Kind() Kind { return KindPlyMesh }

func (m *PlyMesh) Init(ps *params.ParamSet, opts Options) error {
	filename := ps.GetString("filename", "")
	if filename == "" {
		return &params.MissingParameterError{Param: "filename"}
	}
	m.Filename = params.ResolvePath(opts.Dir, filename)

	f, err := os.Open(m.Filename)
	if err != nil {
		return &LoadError{Filename: m.Filename, Err: err}
	}
	defer f.Close()
	ply, err := readPLY(f, opts.reporter())
	if err != nil {
		return &LoadError{Filename: m.Filename, Err: err}
	}

	m.data = &meshData{indices: ply.indices, p: ply.p, n: ply.n, uv: ply.uv}
	if err := m.verify(true, opts); err != nil {
		return err
	}
	if ps.GetBool("discarddegenerateUVs", false) {
		m.discardDegenerateUVs(opts)
	}
	opts.reporter().Progressf("parsed plymesh %s", m.Filename)
	return nil
}

func (m *PlyMesh) Clone() Shape {
	cp := *m
	return &cp
}

// LoopSubdiv is a subdivision surface control mesh. Subdivision is left to
// the consumer; Levels records how often to refine.
type LoopSubdiv struct {
	TriangleMesh
	Levels int
}

// NewLoopSubdiv creates an empty control mesh with the default level count
func NewLoopSubdiv() *LoopSubdiv {
	return &LoopSubdiv{TriangleMesh: *NewTriangleMesh(), Levels: 3}
}

func (m *LoopSubdiv) Kind() Kind { return KindLoopSubdiv }

func (m *LoopSubdiv) Init(ps *params.ParamSet, opts Options) error {
	m.Levels = max(ps.GetInt("levels", 3), 0)
	indices, ok := ps.Ints("indices")
	if !ok {
		return &params.MissingParameterError{Param: "integer indices"}
	}
	p, ok := ps.Points("P")
	if !ok {
		return &params.MissingParameterError{Param: "point P"}
	}
	m.data = &meshData{indices: indices, p: p}
	return m.verify(false, opts)
}

func (m *LoopSubdiv) Clone() Shape {
	cp := *m
	return &cp
}
