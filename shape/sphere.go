package shape

import (
	"github.com/chewxy/math32"

	"github.com/df07/pbrt-scene/params"
)

// sphereResolution is the tessellation density used for size estimates
const sphereResolution = 50

// Sphere is a (possibly partial) sphere around the object space origin
type Sphere struct {
	base
	Radius float32
	ZMin   float32
	ZMax   float32
	PhiMax float32 // degrees
}

// NewSphere creates a unit sphere
func NewSphere() *Sphere {
	return &Sphere{base: newBase(), Radius: 1, ZMin: -1, ZMax: 1, PhiMax: 360}
}

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) Init(ps *params.ParamSet, _ Options) error {
	s.Radius = ps.GetFloat("radius", 1)
	s.ZMin = ps.GetFloat("zmin", -s.Radius)
	s.ZMax = ps.GetFloat("zmax", s.Radius)
	s.PhiMax = ps.GetFloat("phimax", 360)
	return nil
}

func (s *Sphere) Clone() Shape {
	cp := *s
	return &cp
}

// resolution returns the ring and segment counts of the tessellation
func (s *Sphere) resolution() (resTheta, resPhi int) {
	if s.Radius == 0 {
		return 0, 0
	}
	clamp := func(v float32) float32 { return math32.Max(-1, math32.Min(1, v)) }
	thetaMin := math32.Acos(clamp(s.ZMin / s.Radius))
	thetaMax := math32.Acos(clamp(s.ZMax / s.Radius))
	// the small bias keeps rounding noise in acos from adding a ring
	resPhi = int(math32.Ceil(sphereResolution*s.PhiMax/360 - 1e-4))
	resTheta = int(math32.Ceil(sphereResolution*math32.Abs(thetaMax-thetaMin)/math32.Pi - 1e-4))
	return resTheta, resPhi
}

func (s *Sphere) EstimateSize(vertexSize int) int {
	resTheta, resPhi := s.resolution()
	if resTheta == 0 || resPhi == 0 {
		return 0
	}
	return resTheta*resPhi*vertexSize + (resTheta-1)*(resPhi-1)*6*4
}
