package shape

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/geom"
)

type plyFormat int

const (
	plyASCII plyFormat = iota
	plyBinaryLE
	plyBinaryBE
)

type plyProperty struct {
	name      string
	typ       string
	list      bool
	countType string
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

// plyMesh is the triangle data read from a PLY file
type plyMesh struct {
	p       []geom.Vector3
	n       []geom.Vector3
	uv      [][2]float32
	indices []int
}

var plySizes = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4, "double": 8, "float64": 8,
}

// maxPLYListLength bounds list properties read from untrusted files
const maxPLYListLength = 1 << 16

// uv property name pairs in order of preference
var plyUVNames = [][2]string{{"u", "v"}, {"s", "t"}, {"texture_u", "texture_v"}, {"texture_s", "texture_t"}}

func readPLYHeader(br *bufio.Reader) (plyFormat, []plyElement, error) {
	line, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "ply" {
		return 0, nil, errors.New("missing ply magic number")
	}
	format := plyFormat(-1)
	var elems []plyElement
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return 0, nil, fmt.Errorf("unexpected end of header: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) < 2 {
				return 0, nil, errors.New("malformed format line")
			}
			switch fields[1] {
			case "ascii":
				format = plyASCII
			case "binary_little_endian":
				format = plyBinaryLE
			case "binary_big_endian":
				format = plyBinaryBE
			default:
				return 0, nil, fmt.Errorf("unknown ply format %s", fields[1])
			}
		case "comment", "obj_info":
		case "element":
			if len(fields) != 3 {
				return 0, nil, fmt.Errorf("malformed element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return 0, nil, fmt.Errorf("invalid element count %q", fields[2])
			}
			elems = append(elems, plyElement{name: fields[1], count: count})
		case "property":
			if len(elems) == 0 {
				return 0, nil, errors.New("property before element")
			}
			var prop plyProperty
			if len(fields) == 5 && fields[1] == "list" {
				prop = plyProperty{name: fields[4], typ: fields[3], list: true, countType: fields[2]}
			} else if len(fields) == 3 {
				prop = plyProperty{name: fields[2], typ: fields[1]}
			} else {
				return 0, nil, fmt.Errorf("malformed property line %q", strings.TrimSpace(line))
			}
			if _, ok := plySizes[prop.typ]; !ok {
				return 0, nil, fmt.Errorf("unknown property type %s", prop.typ)
			}
			if prop.list {
				if _, ok := plySizes[prop.countType]; !ok {
					return 0, nil, fmt.Errorf("unknown property type %s", prop.countType)
				}
			}
			last := &elems[len(elems)-1]
			last.props = append(last.props, prop)
		case "end_header":
			if format < 0 {
				return 0, nil, errors.New("missing format line")
			}
			return format, elems, nil
		default:
			return 0, nil, fmt.Errorf("unexpected header line %q", strings.TrimSpace(line))
		}
	}
}

type plyValueReader interface {
	read(typ string) (float64, error)
}

type plyASCIIReader struct {
	sc *bufio.Scanner
}

func (r *plyASCIIReader) read(string) (float64, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(r.sc.Text(), 64)
}

type plyBinaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (r *plyBinaryReader) read(typ string) (float64, error) {
	b := r.buf[:plySizes[typ]]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return 0, err
	}
	switch typ {
	case "char", "int8":
		return float64(int8(b[0])), nil
	case "uchar", "uint8":
		return float64(b[0]), nil
	case "short", "int16":
		return float64(int16(r.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(r.order.Uint16(b)), nil
	case "int", "int32":
		return float64(int32(r.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(r.order.Uint32(b)), nil
	case "float", "float32":
		return float64(math.Float32frombits(r.order.Uint32(b))), nil
	default:
		return math.Float64frombits(r.order.Uint64(b)), nil
	}
}

// readPLY reads vertices and triangle or quad faces from a PLY stream.
// Faces of other sizes are skipped with a warning.
func readPLY(r io.Reader, reporter diag.Reporter) (*plyMesh, error) {
	br := bufio.NewReader(r)
	format, elems, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	var vertexElem, faceElem *plyElement
	for i := range elems {
		switch elems[i].name {
		case "vertex":
			vertexElem = &elems[i]
		case "face":
			faceElem = &elems[i]
		}
	}
	if vertexElem == nil || faceElem == nil || vertexElem.count == 0 || faceElem.count == 0 {
		return nil, errors.New("no face/vertex elements found")
	}
	has := func(name string) bool {
		for _, p := range vertexElem.props {
			if p.name == name {
				return true
			}
		}
		return false
	}
	if !has("x") || !has("y") || !has("z") {
		return nil, errors.New("vertex coordinate property not found")
	}
	hasNormals := has("nx") && has("ny") && has("nz")
	uName, vName := "", ""
	for _, pair := range plyUVNames {
		if has(pair[0]) && has(pair[1]) {
			uName, vName = pair[0], pair[1]
			break
		}
	}

	var values plyValueReader
	switch format {
	case plyASCII:
		sc := bufio.NewScanner(br)
		sc.Split(bufio.ScanWords)
		values = &plyASCIIReader{sc: sc}
	case plyBinaryLE:
		values = &plyBinaryReader{r: br, order: binary.LittleEndian}
	default:
		values = &plyBinaryReader{r: br, order: binary.BigEndian}
	}

	mesh := &plyMesh{p: make([]geom.Vector3, vertexElem.count)}
	if hasNormals {
		mesh.n = make([]geom.Vector3, vertexElem.count)
	}
	if uName != "" {
		mesh.uv = make([][2]float32, vertexElem.count)
	}

	for ei := range elems {
		elem := &elems[ei]
		for i := 0; i < elem.count; i++ {
			for _, prop := range elem.props {
				if !prop.list {
					v, err := values.read(prop.typ)
					if err != nil {
						return nil, fmt.Errorf("element %s %d property %s: %w", elem.name, i, prop.name, err)
					}
					if elem == vertexElem {
						mesh.setVertex(i, prop.name, float32(v), uName, vName)
					}
					continue
				}
				n, err := values.read(prop.countType)
				if err != nil {
					return nil, fmt.Errorf("element %s %d list %s: %w", elem.name, i, prop.name, err)
				}
				if n < 0 || n > maxPLYListLength {
					return nil, fmt.Errorf("element %s %d list %s: invalid length %v", elem.name, i, prop.name, n)
				}
				list := make([]int, int(n))
				for j := range list {
					v, err := values.read(prop.typ)
					if err != nil {
						return nil, fmt.Errorf("element %s %d list %s: %w", elem.name, i, prop.name, err)
					}
					list[j] = int(v)
				}
				if elem == faceElem && (prop.name == "vertex_indices" || prop.name == "vertex_index") {
					if err := mesh.addFace(list, vertexElem.count, reporter); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return mesh, nil
}

func (m *plyMesh) setVertex(i int, name string, v float32, uName, vName string) {
	switch name {
	case "x":
		m.p[i].X = v
	case "y":
		m.p[i].Y = v
	case "z":
		m.p[i].Z = v
	case "nx", "ny", "nz":
		if m.n == nil {
			return
		}
		switch name {
		case "nx":
			m.n[i].X = v
		case "ny":
			m.n[i].Y = v
		default:
			m.n[i].Z = v
		}
	case uName:
		if uName != "" {
			m.uv[i][0] = v
		}
	case vName:
		if vName != "" {
			m.uv[i][1] = v
		}
	}
}

func (m *plyMesh) addFace(face []int, vertexCount int, reporter diag.Reporter) error {
	if len(face) != 3 && len(face) != 4 {
		reporter.Warningf("ply: ignoring faces with %d vertices (only triangles and quads are supported!)", len(face))
		return nil
	}
	for _, v := range face {
		if v < 0 || v >= vertexCount {
			return fmt.Errorf("vertex reference %d is out of bounds! Valid range is [0..%d)", v, vertexCount)
		}
	}
	m.indices = append(m.indices, face[0], face[1], face[2])
	if len(face) == 4 {
		m.indices = append(m.indices, face[3], face[0], face[2])
	}
	return nil
}
