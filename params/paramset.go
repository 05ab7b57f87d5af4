// Package params implements the typed, multi-valued parameter bag attached
// to scene directives.
package params

import (
	"path/filepath"
	"strings"

	"github.com/df07/pbrt-scene/color"
	"github.com/df07/pbrt-scene/geom"
)

// Item is one named parameter with its values
type Item[T any] struct {
	Name   string
	Values []T
}

// ParamSet holds one bucket of items per value kind. Names are unique within
// a bucket; the same name may exist in several buckets.
type ParamSet struct {
	floats   []Item[float32]
	ints     []Item[int]
	bools    []Item[bool]
	points   []Item[geom.Vector3]
	vectors  []Item[geom.Vector3]
	normals  []Item[geom.Vector3]
	strings  []Item[string]
	spectra  []Item[color.Spectrum]
	textures []Item[string]
}

// New creates an empty parameter set
func New() *ParamSet {
	return &ParamSet{}
}

func addItem[T any](items *[]Item[T], name string, values []T) {
	eraseItem(items, name)
	*items = append(*items, Item[T]{Name: name, Values: append([]T(nil), values...)})
}

func eraseItem[T any](items *[]Item[T], name string) bool {
	for i, it := range *items {
		if it.Name == name {
			*items = append((*items)[:i:i], (*items)[i+1:]...)
			return true
		}
	}
	return false
}

func findItem[T any](items []Item[T], name string) ([]T, bool) {
	for _, it := range items {
		if it.Name == name {
			return append([]T(nil), it.Values...), true
		}
	}
	return nil, false
}

func getOne[T any](items []Item[T], name string, def T) T {
	for _, it := range items {
		if it.Name == name && len(it.Values) == 1 {
			return it.Values[0]
		}
	}
	return def
}

func cloneItems[T any](items []Item[T]) []Item[T] {
	if items == nil {
		return nil
	}
	out := make([]Item[T], len(items))
	for i, it := range items {
		out[i] = Item[T]{Name: it.Name, Values: append([]T(nil), it.Values...)}
	}
	return out
}

// AddFloat stores values under name, replacing an existing float item
func (ps *ParamSet) AddFloat(name string, values []float32) { addItem(&ps.floats, name, values) }
// EraseFloat removes the float item name and reports whether it existed
func (ps *ParamSet) EraseFloat(name string) bool { return eraseItem(&ps.floats, name) }
// Floats returns a copy of the float values of name
func (ps *ParamSet) Floats(name string) ([]float32, bool) { return findItem(ps.floats, name) }
// GetFloat returns the float value of name if it holds exactly one, else def
func (ps *ParamSet) GetFloat(name string, def float32) float32 { return getOne(ps.floats, name, def) }
// FloatItems returns the float items in insertion order
func (ps *ParamSet) FloatItems() []Item[float32] { return ps.floats }

// AddInt stores values under name, replacing an existing integer item
func (ps *ParamSet) AddInt(name string, values []int) { addItem(&ps.ints, name, values) }
// EraseInt removes the integer item name and reports whether it existed
func (ps *ParamSet) EraseInt(name string) bool { return eraseItem(&ps.ints, name) }
// Ints returns a copy of the integer values of name
func (ps *ParamSet) Ints(name string) ([]int, bool) { return findItem(ps.ints, name) }
// GetInt returns the integer value of name if it holds exactly one, else def
func (ps *ParamSet) GetInt(name string, def int) int { return getOne(ps.ints, name, def) }
// IntItems returns the integer items in insertion order
func (ps *ParamSet) IntItems() []Item[int] { return ps.ints }

// AddBool stores values under name, replacing an existing bool item
func (ps *ParamSet) AddBool(name string, values []bool) { addItem(&ps.bools, name, values) }
// EraseBool removes the bool item name and reports whether it existed
func (ps *ParamSet) EraseBool(name string) bool { return eraseItem(&ps.bools, name) }
// Bools returns a copy of the bool values of name
func (ps *ParamSet) Bools(name string) ([]bool, bool) { return findItem(ps.bools, name) }
// GetBool returns the bool value of name if it holds exactly one, else def
func (ps *ParamSet) GetBool(name string, def bool) bool { return getOne(ps.bools, name, def) }
// BoolItems returns the bool items in insertion order
func (ps *ParamSet) BoolItems() []Item[bool] { return ps.bools }

// AddPoint stores values under name, replacing an existing point item
func (ps *ParamSet) AddPoint(name string, values []geom.Vector3) { addItem(&ps.points, name, values) }
// ErasePoint removes the point item name and reports whether it existed
func (ps *ParamSet) ErasePoint(name string) bool { return eraseItem(&ps.points, name) }
// Points returns a copy of the point values of name
func (ps *ParamSet) Points(name string) ([]geom.Vector3, bool) { return findItem(ps.points, name) }
// GetPoint returns the point value of name if it holds exactly one, else def
func (ps *ParamSet) GetPoint(name string, def geom.Vector3) geom.Vector3 {
	return getOne(ps.points, name, def)
}
// PointItems returns the point items in insertion order
func (ps *ParamSet) PointItems() []Item[geom.Vector3] { return ps.points }

// AddVector stores values under name, replacing an existing vector item
func (ps *ParamSet) AddVector(name string, values []geom.Vector3) { addItem(&ps.vectors, name, values) }
// EraseVector removes the vector item name and reports whether it existed
func (ps *ParamSet) EraseVector(name string) bool { return eraseItem(&ps.vectors, name) }
// Vectors returns a copy of the vector values of name
func (ps *ParamSet) Vectors(name string) ([]geom.Vector3, bool) { return findItem(ps.vectors, name) }
// GetVector returns the vector value of name if it holds exactly one, else def
func (ps *ParamSet) GetVector(name string, def geom.Vector3) geom.Vector3 {
	return getOne(ps.vectors, name, def)
}
// VectorItems returns the vector items in insertion order
func (ps *ParamSet) VectorItems() []Item[geom.Vector3] { return ps.vectors }

// AddNormal stores values under name, replacing an existing normal item
func (ps *ParamSet) AddNormal(name string, values []geom.Vector3) { addItem(&ps.normals, name, values) }
// EraseNormal removes the normal item name and reports whether it existed
func (ps *ParamSet) EraseNormal(name string) bool { return eraseItem(&ps.normals, name) }
// Normals returns a copy of the normal values of name
func (ps *ParamSet) Normals(name string) ([]geom.Vector3, bool) { return findItem(ps.normals, name) }
// GetNormal returns the normal value of name if it holds exactly one, else def
func (ps *ParamSet) GetNormal(name string, def geom.Vector3) geom.Vector3 {
	return getOne(ps.normals, name, def)
}
// NormalItems returns the normal items in insertion order
func (ps *ParamSet) NormalItems() []Item[geom.Vector3] { return ps.normals }

// AddString stores values under name, replacing an existing string item
func (ps *ParamSet) AddString(name string, values []string) { addItem(&ps.strings, name, values) }
// EraseString removes the string item name and reports whether it existed
func (ps *ParamSet) EraseString(name string) bool { return eraseItem(&ps.strings, name) }
// Strings returns a copy of the string values of name
func (ps *ParamSet) Strings(name string) ([]string, bool) { return findItem(ps.strings, name) }
// GetString returns the string value of name if it holds exactly one, else def
func (ps *ParamSet) GetString(name string, def string) string { return getOne(ps.strings, name, def) }
// StringItems returns the string items in insertion order
func (ps *ParamSet) StringItems() []Item[string] { return ps.strings }

// AddSpectrum stores already converted spectra
func (ps *ParamSet) AddSpectrum(name string, values []color.Spectrum) {
	addItem(&ps.spectra, name, values)
}

// AddRGBSpectrum stores one spectrum per rgb triple
func (ps *ParamSet) AddRGBSpectrum(name string, values []float32) error {
	specs := make([]color.Spectrum, 0, len(values)/3)
	for i := 0; i+2 < len(values); i += 3 {
		specs = append(specs, color.RGB(values[i], values[i+1], values[i+2]))
	}
	ps.AddSpectrum(name, specs)
	if len(values)%3 != 0 {
		return &TrailingValuesError{Kind: "rgb", Name: name}
	}
	return nil
}

// AddXYZSpectrum stores one spectrum per xyz triple
func (ps *ParamSet) AddXYZSpectrum(name string, values []float32) error {
	specs := make([]color.Spectrum, 0, len(values)/3)
	for i := 0; i+2 < len(values); i += 3 {
		specs = append(specs, color.FromXYZ(values[i], values[i+1], values[i+2]))
	}
	ps.AddSpectrum(name, specs)
	if len(values)%3 != 0 {
		return &TrailingValuesError{Kind: "xyz", Name: name}
	}
	return nil
}

// AddBlackbodySpectrum stores one spectrum per (temperature, scale) pair
func (ps *ParamSet) AddBlackbodySpectrum(name string, values []float32) error {
	specs := make([]color.Spectrum, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		specs = append(specs, color.FromBlackbody(values[i], values[i+1]))
	}
	ps.AddSpectrum(name, specs)
	if len(values)%2 != 0 {
		return &TrailingValuesError{Kind: "blackbody", Name: name}
	}
	return nil
}

// EraseSpectrum removes the spectrum item name and reports whether it existed
func (ps *ParamSet) EraseSpectrum(name string) bool { return eraseItem(&ps.spectra, name) }
// Spectra returns a copy of the spectrum values of name
func (ps *ParamSet) Spectra(name string) ([]color.Spectrum, bool) {
	return findItem(ps.spectra, name)
}
// GetSpectrum returns the spectrum value of name if it holds exactly one, else def
func (ps *ParamSet) GetSpectrum(name string, def color.Spectrum) color.Spectrum {
	return getOne(ps.spectra, name, def)
}
// SpectrumItems returns the spectrum items in insertion order
func (ps *ParamSet) SpectrumItems() []Item[color.Spectrum] { return ps.spectra }

// AddTexture stores a reference to a named texture
func (ps *ParamSet) AddTexture(name, texture string) {
	addItem(&ps.textures, name, []string{texture})
}

// EraseTexture removes the texture reference item name and reports whether it existed
func (ps *ParamSet) EraseTexture(name string) bool { return eraseItem(&ps.textures, name) }

// GetTexture returns the texture name referenced by name, or ""
func (ps *ParamSet) GetTexture(name string) string { return getOne(ps.textures, name, "") }

// TextureItems returns the texture reference items in insertion order
func (ps *ParamSet) TextureItems() []Item[string] { return ps.textures }

// GetFilename reads a string parameter and resolves it against dir.
// An empty value yields def unchanged.
func (ps *ParamSet) GetFilename(name, def, dir string) string {
	filename := ps.GetString(name, "")
	if filename == "" {
		return def
	}
	return ResolvePath(dir, filename)
}

// Len returns the number of items over all kinds
func (ps *ParamSet) Len() int {
	return len(ps.floats) + len(ps.ints) + len(ps.bools) + len(ps.points) + len(ps.vectors) +
		len(ps.normals) + len(ps.strings) + len(ps.spectra) + len(ps.textures)
}

// Clone returns a deep copy
func (ps *ParamSet) Clone() *ParamSet {
	if ps == nil {
		return New()
	}
	return &ParamSet{
		floats:   cloneItems(ps.floats),
		ints:     cloneItems(ps.ints),
		bools:    cloneItems(ps.bools),
		points:   cloneItems(ps.points),
		vectors:  cloneItems(ps.vectors),
		normals:  cloneItems(ps.normals),
		strings:  cloneItems(ps.strings),
		spectra:  cloneItems(ps.spectra),
		textures: cloneItems(ps.textures),
	}
}

// ResolvePath joins a possibly relative name onto dir and normalizes
// separators and ".." segments. Backslashes are accepted as separators.
func ResolvePath(dir, name string) string {
	name = filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(name) || dir == "" {
		return filepath.Clean(name)
	}
	return filepath.Clean(filepath.Join(dir, name))
}
