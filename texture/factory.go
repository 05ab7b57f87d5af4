package texture

import (
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
)

// Make builds a texture of the given class. It reports an error and returns
// nil for unknown classes and for classes that cannot produce values of
// type T (marble and uv are color only).
func Make[T Value](class string, toWorld geom.Matrix, p *Params) *Texture[T] {
	tex := &Texture[T]{Kind: ParseKind(class), ToWorld: toWorld}
	switch tex.Kind {
	case KindBilerp:
		setMapping(p, tex)
		tex.V00 = getValue(p, "v00", fromFloat[T](0))
		tex.V01 = getValue(p, "v01", fromFloat[T](1))
		tex.V10 = getValue(p, "v10", fromFloat[T](0))
		tex.V11 = getValue(p, "v11", fromFloat[T](1))
	case KindCheckerboard:
		tex.Tex1 = Get(p, "tex1", fromFloat[T](1))
		tex.Tex2 = Get(p, "tex2", fromFloat[T](0))
		tex.Dimension = p.GetInt("dimension", 2)
		switch tex.Dimension {
		case 2:
			setMapping(p, tex)
			mode := p.GetString("aamode", "closedform")
			tex.ClosedForm = mode == "closedform"
			if mode != "closedform" && mode != "none" {
				p.diag.Errorf("Antialiasing mode %q not understood by Checkerboard2DTexture; using \"closedform\"", mode)
				tex.ClosedForm = true
			}
		case 3:
		default:
			p.diag.Errorf("%d dimensional checkerboard texture not supported", tex.Dimension)
		}
	case KindConstant:
		tex.Value = getValue(p, "value", fromFloat[T](1))
	case KindDots:
		setMapping(p, tex)
		tex.Inside = getValue(p, "inside", fromFloat[T](1))
		tex.Outside = getValue(p, "outside", fromFloat[T](0))
	case KindMarble:
		if isFloat[T]() {
			p.diag.Errorf("marble texture float not implemented")
			return nil
		}
		tex.Scale = p.GetFloat("scale", 1)
		tex.Variation = p.GetFloat("variation", 0.2)
		tex.Octaves = p.GetInt("octaves", 8)
		tex.Roughness = p.GetFloat("roughness", 0.5)
	case KindWrinkled, KindFbm:
		tex.Octaves = p.GetInt("octaves", 8)
		tex.Roughness = p.GetFloat("roughness", 0.5)
	case KindImagemap:
		setMapping(p, tex)
		tex.MaxAniso = p.GetFloat("maxanisotropy", 8)
		tex.Trilinear = p.GetBool("trilinear", false)
		switch p.GetString("wrap", "repeat") {
		case "black":
			tex.Wrap = WrapBlack
		case "clamp":
			tex.Wrap = WrapClamp
		default:
			tex.Wrap = WrapRepeat
		}
		tex.Scale = p.GetFloat("scale", 1)
		tex.Gamma = p.GetFloat("gamma", 1)
		tex.Filename = p.GetFilename("filename", "")
	case KindMix:
		tex.Tex1 = Get(p, "tex1", fromFloat[T](0))
		tex.Tex2 = Get(p, "tex2", fromFloat[T](1))
		tex.Amount = Get(p, "amount", float32(0.5))
	case KindScale:
		tex.Tex1 = Get(p, "tex1", fromFloat[T](1))
		tex.Tex2 = Get(p, "tex2", fromFloat[T](1))
	case KindUV:
		if isFloat[T]() {
			p.diag.Errorf("uv texture float not implemented")
			return nil
		}
		setMapping(p, tex)
	case KindWindy:
	default:
		p.diag.Errorf("texture %s unknown%s", class, diag.DidYouMean(class, KindNames()))
		return nil
	}
	return tex
}

func setMapping[T Value](p *Params, tex *Texture[T]) {
	switch name := p.GetString("mapping", "uv"); name {
	case "spherical":
		tex.Mapping = MappingSpherical
	case "cylindrical":
		tex.Mapping = MappingCylindrical
	case "planar":
		tex.Mapping = MappingPlanar
		tex.V1 = p.GetVector("v1", geom.Vec3(1, 0, 0))
		tex.V2 = p.GetVector("v2", geom.Vec3(0, 1, 0))
		tex.UDelta = p.GetFloat("udelta", 0)
		tex.VDelta = p.GetFloat("vdelta", 0)
	default:
		if name != "uv" {
			p.diag.Errorf("2D texture mapping %s unknown", name)
		}
		tex.Mapping = MappingUV
		tex.SU = p.GetFloat("uscale", 1)
		tex.SV = p.GetFloat("vscale", 1)
		tex.DU = p.GetFloat("udelta", 0)
		tex.DV = p.GetFloat("vdelta", 0)
	}
}
