package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXYZRoundTrip(t *testing.T) {
	for _, s := range []Spectrum{RGB(1, 0, 0), RGB(0, 1, 0), RGB(0.2, 0.4, 0.8)} {
		xyz := s.XYZ()
		back := FromXYZ(xyz[0], xyz[1], xyz[2])
		for i := range s {
			assert.InDelta(t, s[i], back[i], 1e-4, "channel %d of %v", i, s)
		}
	}
}

func TestFromSampledConstant(t *testing.T) {
	s := FromSampled([]float32{400, 700}, []float32{1, 1})
	assert.InDelta(t, 1.0, s.Y(), 1e-3)
}

func TestFromSampledUnsorted(t *testing.T) {
	sorted := FromSampled([]float32{400, 500, 600}, []float32{0.1, 0.5, 0.9})
	unsorted := FromSampled([]float32{600, 400, 500}, []float32{0.9, 0.1, 0.5})
	assert.Equal(t, sorted, unsorted)
}

func TestBlackbody(t *testing.T) {
	warm := FromBlackbody(2700, 1)
	cold := FromBlackbody(10000, 1)
	// low temperatures are red-heavy, high temperatures blue-heavy
	assert.Greater(t, warm.R(), warm.B())
	assert.Greater(t, cold.B(), cold.R())

	scaled := FromBlackbody(2700, 2)
	assert.InDelta(t, warm.R()*2, scaled.R(), 1e-4)

	assert.True(t, FromBlackbody(0, 1).IsBlack())
}

func TestCopper(t *testing.T) {
	eta, k := Copper()
	assert.False(t, eta.IsBlack())
	// copper absorbs more in the red than it refracts
	assert.Greater(t, k.R(), eta.R())
}

func TestLookupMedium(t *testing.T) {
	m, ok := LookupMedium("Ketchup")
	assert.True(t, ok)
	assert.Equal(t, RGB(0.061, 0.97, 1.45), m.SigmaA)

	_, ok = LookupMedium("ketchup")
	assert.False(t, ok)
	assert.Len(t, MediumNames(), 47)
}
