// Package color holds the RGB spectrum representation and the conversions
// used when reading color parameters: RGB, XYZ, sampled spectra and
// blackbody emitters.
package color

import (
	"fmt"
	"math"
	"sort"

	"github.com/chewxy/math32"
)

// Spectrum is a linear RGB triple
type Spectrum [3]float32

// Gray returns a spectrum with all channels set to v
func Gray(v float32) Spectrum {
	return Spectrum{v, v, v}
}

// RGB returns a spectrum from its red, green and blue channels
func RGB(r, g, b float32) Spectrum {
	return Spectrum{r, g, b}
}

func (s Spectrum) R() float32 { return s[0] }
func (s Spectrum) G() float32 { return s[1] }
func (s Spectrum) B() float32 { return s[2] }

// Mul multiplies channel by channel
func (s Spectrum) Mul(o Spectrum) Spectrum {
	return Spectrum{s[0] * o[0], s[1] * o[1], s[2] * o[2]}
}

// Scale multiplies every channel by f
func (s Spectrum) Scale(f float32) Spectrum {
	return Spectrum{s[0] * f, s[1] * f, s[2] * f}
}

// Y returns the luminance
func (s Spectrum) Y() float32 {
	return 0.212671*s[0] + 0.715160*s[1] + 0.072169*s[2]
}

func (s Spectrum) IsBlack() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0
}

func (s Spectrum) String() string {
	return fmt.Sprintf("[%g %g %g]", s[0], s[1], s[2])
}

// XYZToRGB converts CIE XYZ to linear sRGB
func XYZToRGB(xyz [3]float32) [3]float32 {
	return [3]float32{
		3.240479*xyz[0] - 1.537150*xyz[1] - 0.498535*xyz[2],
		-0.969256*xyz[0] + 1.875991*xyz[1] + 0.041556*xyz[2],
		0.055648*xyz[0] - 0.204043*xyz[1] + 1.057311*xyz[2],
	}
}

// RGBToXYZ converts linear sRGB to CIE XYZ
func RGBToXYZ(rgb [3]float32) [3]float32 {
	return [3]float32{
		0.412453*rgb[0] + 0.357580*rgb[1] + 0.180423*rgb[2],
		0.212671*rgb[0] + 0.715160*rgb[1] + 0.072169*rgb[2],
		0.019334*rgb[0] + 0.119193*rgb[1] + 0.950227*rgb[2],
	}
}

// FromXYZ builds a spectrum from XYZ tristimulus values
func FromXYZ(x, y, z float32) Spectrum {
	return Spectrum(XYZToRGB([3]float32{x, y, z}))
}

// XYZ returns the tristimulus values of s
func (s Spectrum) XYZ() [3]float32 {
	return RGBToXYZ([3]float32(s))
}

// FromSampled converts a piecewise linear spectral distribution, given as
// matching wavelength (nm) and value slices, into RGB. Unsorted samples are
// sorted first.
func FromSampled(lambda, values []float32) Spectrum {
	n := len(lambda)
	if len(values) < n {
		n = len(values)
	}
	if n == 0 {
		return Spectrum{}
	}
	lambda, values = sortedSamples(lambda[:n], values[:n])

	var xyz [3]float32
	var yint float32
	for i := 0; i < cieSamples; i++ {
		l := cieLambdaStart + float32(i)
		x, y, z := cieMatch(l)
		v := interpolateSamples(lambda, values, l)
		xyz[0] += v * x
		xyz[1] += v * y
		xyz[2] += v * z
		yint += y
	}
	return FromXYZ(xyz[0]/yint, xyz[1]/yint, xyz[2]/yint)
}

// FromBlackbody returns the color of a blackbody emitter at temperature
// kelvin, normalized so its peak is 1 and then multiplied by scale.
func FromBlackbody(kelvin, scale float32) Spectrum {
	lambda := make([]float32, cieSamples)
	for i := range lambda {
		lambda[i] = cieLambdaStart + float32(i)
	}
	return FromSampled(lambda, BlackbodyNormalized(lambda, kelvin)).Scale(scale)
}

// Blackbody evaluates Planck's law for the given wavelengths (nm)
func Blackbody(lambda []float32, kelvin float32) []float32 {
	const (
		c  = 299792458.0
		h  = 6.62606957e-34
		kb = 1.3806488e-23
	)
	out := make([]float32, len(lambda))
	if kelvin <= 0 {
		return out
	}
	t := float64(kelvin)
	for i, l := range lambda {
		lm := float64(l) * 1e-9
		le := (2 * h * c * c) / (math.Pow(lm, 5) * (math.Exp((h*c)/(lm*kb*t)) - 1))
		out[i] = float32(le)
	}
	return out
}

// BlackbodyNormalized is Blackbody scaled so the emission peak is 1
func BlackbodyNormalized(lambda []float32, kelvin float32) []float32 {
	out := Blackbody(lambda, kelvin)
	if kelvin <= 0 {
		return out
	}
	lambdaMax := 2.8977721e-3 / kelvin * 1e9
	peak := Blackbody([]float32{lambdaMax}, kelvin)[0]
	if peak == 0 {
		return out
	}
	for i := range out {
		out[i] /= peak
	}
	return out
}

func sortedSamples(lambda, values []float32) ([]float32, []float32) {
	if sort.SliceIsSorted(lambda, func(i, j int) bool { return lambda[i] < lambda[j] }) {
		return lambda, values
	}
	idx := make([]int, len(lambda))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return lambda[idx[i]] < lambda[idx[j]] })
	sl := make([]float32, len(idx))
	sv := make([]float32, len(idx))
	for i, k := range idx {
		sl[i] = lambda[k]
		sv[i] = values[k]
	}
	return sl, sv
}

// interpolateSamples linearly interpolates sorted samples at l, clamping
// to the end values outside the sampled range
func interpolateSamples(lambda, values []float32, l float32) float32 {
	n := len(lambda)
	if l <= lambda[0] {
		return values[0]
	}
	if l >= lambda[n-1] {
		return values[n-1]
	}
	i := sort.Search(n, func(i int) bool { return lambda[i] > l }) - 1
	t := (l - lambda[i]) / (lambda[i+1] - lambda[i])
	return values[i]*(1-t) + values[i+1]*t
}

const (
	cieLambdaStart = 360
	cieSamples     = 471
)

// cieMatch evaluates the CIE 1931 color matching functions with the
// multi-lobe Gaussian fit of Wyman, Sloan and Shirley.
func cieMatch(l float32) (x, y, z float32) {
	x = 1.056*lobe(l, 599.8, 37.9, 31.0) + 0.362*lobe(l, 442.0, 16.0, 26.7) - 0.065*lobe(l, 501.1, 20.4, 26.2)
	y = 0.821*lobe(l, 568.8, 46.9, 40.5) + 0.286*lobe(l, 530.9, 16.3, 31.1)
	z = 1.217*lobe(l, 437.0, 11.8, 36.0) + 0.681*lobe(l, 459.0, 26.0, 13.8)
	return x, y, z
}

func lobe(x, mu, sigma1, sigma2 float32) float32 {
	s := sigma2
	if x < mu {
		s = sigma1
	}
	t := (x - mu) / s
	return math32.Exp(-0.5 * t * t)
}
