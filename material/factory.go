package material

import (
	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/texture"
)

var (
	defaultSigmaA      = color.RGB(.0011, .0024, .014)
	defaultSigmaPrimeS = color.RGB(2.55, 3.21, 3.77)
)

// Make builds a material of the given type. named resolves the references
// of mix materials. Unknown types are reported and yield nil.
func Make(name string, p *texture.Params, named map[string]*Material) *Material {
	kind := ParseKind(name)
	if kind == KindUnknown {
		p.Reporter().Errorf("unable to create material %s%s", name, diag.DidYouMean(name, KindNames()))
		return nil
	}

	m := &Material{Kind: kind}
	m.Bumpmap = texture.GetOrNil(p, "bumpmap")

	switch kind {
	case KindGlass:
		m.Kt = texture.Get(p, "Kt", color.Gray(1))
		m.Index = texture.Get(p, "index", float32(1.5))
		m.Kr = texture.Get(p, "Kr", color.Gray(1))
	case KindMirror:
		m.Kr = texture.Get(p, "Kr", color.Gray(1))
	case KindKdSubsurface:
		m.Kd = texture.Get(p, "Kd", color.Gray(0.5))
		m.MeanFreePath = texture.Get(p, "meanfreepath", float32(1))
		m.Index = texture.Get(p, "index", float32(1.3))
		m.Kr = texture.Get(p, "Kr", color.Gray(1))
	case KindMatte:
		m.Kd = texture.Get(p, "Kd", color.Gray(0.5))
		m.Sigma = texture.Get(p, "sigma", float32(0))
	case KindMeasured:
		m.Filename = p.GetFilename("filename", "")
	case KindMetal:
		eta, k := color.Copper()
		m.Eta = texture.Get(p, "eta", eta)
		m.K = texture.Get(p, "k", k)
		m.Roughness = texture.Get(p, "roughness", float32(0.01))
	case KindMix:
		m.Material1 = resolveNamed(p.GetString("namedmaterial1", ""), p, named)
		m.Material2 = resolveNamed(p.GetString("namedmaterial2", ""), p, named)
		m.Amount = texture.Get(p, "amount", color.Gray(0.5))
	case KindTranslucent:
		m.Reflect = texture.Get(p, "reflect", color.Gray(0.5))
		m.Transmit = texture.Get(p, "transmit", color.Gray(0.5))
		setPlastic(m, p)
	case KindPlastic:
		setPlastic(m, p)
	case KindShinyMetal:
		m.Kr = texture.Get(p, "Kr", color.Gray(1))
		m.Ks = texture.Get(p, "Ks", color.Gray(1))
		m.Roughness = texture.Get(p, "roughness", float32(0.1))
	case KindSubstrate:
		m.Kd = texture.Get(p, "Kd", color.Gray(0.5))
		m.Ks = texture.Get(p, "Ks", color.Gray(0.5))
		m.URoughness = texture.Get(p, "uroughness", float32(0.1))
		m.VRoughness = texture.Get(p, "vroughness", float32(0.1))
	case KindSubsurface:
		sa, sps := defaultSigmaA, defaultSigmaPrimeS
		if medium := p.GetString("name", ""); medium != "" {
			if mm, ok := color.LookupMedium(medium); ok {
				sa, sps = mm.SigmaA, mm.SigmaPrimeS
			} else {
				p.Reporter().Warningf("named material %s not found. Using defaults%s",
					medium, diag.DidYouMean(medium, color.MediumNames()))
			}
		}
		m.Scale = p.GetFloat("scale", 1)
		m.SigmaA = texture.Get(p, "sigma_a", sa)
		m.SigmaPrimeS = texture.Get(p, "sigma_prime_s", sps)
		m.Index = texture.Get(p, "index", float32(1.3))
		m.Kr = texture.Get(p, "Kr", color.Gray(1))
	case KindUber:
		m.Kd = texture.Get(p, "Kd", color.Gray(0.25))
		m.Ks = texture.Get(p, "Ks", color.Gray(0.25))
		m.Kr = texture.Get(p, "Kr", color.Gray(0))
		m.Kt = texture.Get(p, "Kt", color.Gray(0))
		m.Roughness = texture.Get(p, "roughness", float32(0.1))
		m.Index = texture.Get(p, "index", float32(1.5))
		m.Opacity = texture.Get(p, "opacity", color.Gray(1))
	case KindFourier:
		m.Filename = p.GetFilename("bsdffile", "")
	case KindHair:
		m.SigmaA = texture.Get(p, "sigma_a", color.Gray(1))
		m.Color = texture.Get(p, "color", color.Gray(1))
		m.Eumelanin = texture.Get(p, "eumelanin", float32(1))
		m.Pheomelanin = texture.Get(p, "pheomelanin", float32(1))
		m.EtaHair = texture.Get(p, "eta", float32(1.55))
		m.BetaM = texture.Get(p, "beta_m", float32(0.3))
		m.BetaN = texture.Get(p, "beta_n", float32(0.3))
		m.Alpha = texture.Get(p, "alpha", float32(2))
	case KindNone:
	}
	return m
}

func setPlastic(m *Material, p *texture.Params) {
	m.Kd = texture.Get(p, "Kd", color.Gray(0.25))
	m.Ks = texture.Get(p, "Ks", color.Gray(0.25))
	m.Roughness = texture.Get(p, "roughness", float32(0.1))
}

// resolveNamed looks up a mix component, falling back to matte
func resolveNamed(name string, p *texture.Params, named map[string]*Material) *Material {
	if m, ok := named[name]; ok && m != nil {
		return m
	}
	p.Reporter().Errorf("named material %s undefined. Using matte", name)
	return Make("matte", p, named)
}
