// Package shape defines the contract between the scene builder and the
// geometry providers, and implements the providers for spheres, triangle
// meshes, PLY meshes and loop subdivision surfaces.
package shape

import (
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
	"github.com/df07/pbrt-scene/material"
	"github.com/df07/pbrt-scene/params"
)

// Kind identifies a shape keyword
type Kind int

const (
	KindUnknown Kind = iota
	KindCone
	KindCylinder
	KindDisk
	KindHyperboloid
	KindHeightfield
	KindLoopSubdiv
	KindNurbs
	KindParaboloid
	KindSphere
	KindTriangleMesh
	KindPlyMesh
)

var kindNames = map[Kind]string{
	KindCone:         "cone",
	KindCylinder:     "cylinder",
	KindDisk:         "disk",
	KindHyperboloid:  "hyperboloid",
	KindHeightfield:  "heightfield",
	KindLoopSubdiv:   "loopsubdiv",
	KindNurbs:        "nurbs",
	KindParaboloid:   "paraboloid",
	KindSphere:       "sphere",
	KindTriangleMesh: "trianglemesh",
	KindPlyMesh:      "plymesh",
}

// ParseKind decodes a shape keyword
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindNames lists every shape keyword
func KindNames() []string {
	names := make([]string, 0, len(kindNames))
	for k := KindCone; k <= KindPlyMesh; k++ {
		names = append(names, kindNames[k])
	}
	return names
}

// Implemented reports whether New can build a provider for k
func (k Kind) Implemented() bool {
	switch k {
	case KindSphere, KindTriangleMesh, KindPlyMesh, KindLoopSubdiv:
		return true
	}
	return false
}

// Options carries the parse context a provider may need during Init
type Options struct {
	// Dir resolves relative file names
	Dir string
	// AutoFlat builds flat normals for meshes without normals
	AutoFlat bool
	// AutoEdge splits vertices whose normal deviates from the face normal
	// by more than this many degrees. 0 or >= 360 disables it.
	AutoEdge float32
	Diag     diag.Reporter
}

func (o Options) reporter() diag.Reporter {
	if o.Diag == nil {
		return diag.Discard()
	}
	return o.Diag
}

// Shape is implemented by every geometry provider
type Shape interface {
	Kind() Kind
	// Init reads the provider's parameters. It may fail with
	// *params.MissingParameterError or *params.ArgMismatchError.
	Init(ps *params.ParamSet, opts Options) error
	// ApplyTransform post-multiplies the object to world transform
	ApplyTransform(m geom.Matrix)
	// ApplyTransformFront pre-multiplies the object to world transform
	ApplyTransformFront(m geom.Matrix)
	Transform() geom.Matrix
	// Clone returns a copy that can be transformed independently
	Clone() Shape
	FlipNormals()
	Flipped() bool
	SetMaterial(m *material.Material)
	Material() *material.Material
	// SetAreaLight makes the shape emit light. The shared material is not
	// modified; the shape gets an emitting copy.
	SetAreaLight(l *material.AreaLight)
	// EstimateSize approximates the memory footprint in bytes for the given
	// vertex size
	EstimateSize(vertexSize int) int
}

// New creates an uninitialized provider, or nil if k is not implemented
func New(k Kind) Shape {
	switch k {
	case KindSphere:
		return NewSphere()
	case KindTriangleMesh:
		return NewTriangleMesh()
	case KindPlyMesh:
		return NewPlyMesh()
	case KindLoopSubdiv:
		return NewLoopSubdiv()
	}
	return nil
}

// base holds the state every provider shares
type base struct {
	transform geom.Matrix
	material  *material.Material
	flipped   bool
}

func newBase() base {
	return base{transform: geom.Identity()}
}

func (b *base) ApplyTransform(m geom.Matrix)      { b.transform = b.transform.Mul(m) }
func (b *base) ApplyTransformFront(m geom.Matrix) { b.transform = m.Mul(b.transform) }
func (b *base) Transform() geom.Matrix            { return b.transform }
func (b *base) FlipNormals()                      { b.flipped = !b.flipped }
func (b *base) Flipped() bool                     { return b.flipped }
func (b *base) SetMaterial(m *material.Material)  { b.material = m }
func (b *base) Material() *material.Material      { return b.material }

func (b *base) SetAreaLight(l *material.AreaLight) {
	if b.material == nil {
		b.material = &material.Material{Kind: material.KindNone}
	}
	b.material = b.material.WithAreaLight(l)
}
