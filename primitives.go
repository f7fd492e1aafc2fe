package blacksky

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

var ErrUnknownPrimitive = errors.New("unknown primitive")

type PrimitiveKind string

const (
	PrimitiveCube   PrimitiveKind = "cube"
	PrimitiveSphere PrimitiveKind = "sphere"
	PrimitiveTorus  PrimitiveKind = "torus"
)

// WireMesh is a line list: Indices holds pairs of vertex indices into the flat
// xyz Positions buffer.
type WireMesh struct {
	Positions []float32
	Indices   []uint32
}

func (m *WireMesh) VertexCount() int { return len(m.Positions) / 3 }
func (m *WireMesh) EdgeCount() int   { return len(m.Indices) / 2 }

// triMesh is an indexed triangle list, only used as an intermediate.
type triMesh struct {
	positions []float32
	indices   []uint32
}

func (m *triMesh) vertex(x, y, z float32) {
	m.positions = append(m.positions, x, y, z)
}

// wireframe emits every distinct triangle edge once, in first-seen order.
func (m *triMesh) wireframe() *WireMesh {
	seen := make(set[uint64], len(m.indices))
	lines := make([]uint32, 0, len(m.indices))
	for t := 0; t+2 < len(m.indices); t += 3 {
		tri := m.indices[t : t+3]
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			if a > b {
				a, b = b, a
			}
			key := uint64(a)<<32 | uint64(b)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			lines = append(lines, a, b)
		}
	}
	return &WireMesh{Positions: m.positions, Indices: lines}
}

// BoxWireframe is a centred box with one triangulated quad per face, which
// yields the 12 box edges plus one diagonal per face.
func BoxWireframe(width, height, depth float32) *WireMesh {
	m := &triMesh{}
	// Corner i has x, y, z set by bits 0, 1, 2.
	for i := 0; i < 8; i++ {
		m.vertex(
			(float32(i&1)-0.5)*width,
			(float32((i>>1)&1)-0.5)*height,
			(float32((i>>2)&1)-0.5)*depth,
		)
	}
	faces := [6][4]uint32{
		{0, 4, 6, 2}, // -x
		{1, 3, 7, 5}, // +x
		{0, 1, 5, 4}, // -y
		{2, 6, 7, 3}, // +y
		{0, 2, 3, 1}, // -z
		{4, 5, 7, 6}, // +z
	}
	for _, f := range faces {
		m.indices = append(m.indices, f[0], f[1], f[2], f[0], f[2], f[3])
	}
	return m.wireframe()
}

// SphereWireframe is a UV sphere. The degenerate triangles at the poles are
// skipped, as are their edges.
func SphereWireframe(radius float32, widthSegs, heightSegs int) *WireMesh {
	widthSegs = max(widthSegs, 3)
	heightSegs = max(heightSegs, 2)

	m := &triMesh{}
	grid := make([][]uint32, heightSegs+1)
	var next uint32
	for iy := 0; iy <= heightSegs; iy++ {
		v := float32(iy) / float32(heightSegs)
		grid[iy] = make([]uint32, widthSegs+1)
		for ix := 0; ix <= widthSegs; ix++ {
			u := float32(ix) / float32(widthSegs)
			theta := v * math.Pi
			phi := u * 2 * math.Pi
			m.vertex(
				-radius*math32.Cos(phi)*math32.Sin(theta),
				radius*math32.Cos(theta),
				radius*math32.Sin(phi)*math32.Sin(theta),
			)
			grid[iy][ix] = next
			next++
		}
	}

	for iy := 0; iy < heightSegs; iy++ {
		for ix := 0; ix < widthSegs; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				m.indices = append(m.indices, a, b, d)
			}
			if iy != heightSegs-1 {
				m.indices = append(m.indices, b, c, d)
			}
		}
	}
	return m.wireframe()
}

// TorusWireframe is a ring of the given radius around the z axis with a
// circular tube cross-section.
func TorusWireframe(radius, tube float32, radialSegs, tubularSegs int) *WireMesh {
	radialSegs = max(radialSegs, 2)
	tubularSegs = max(tubularSegs, 3)

	m := &triMesh{}
	for j := 0; j <= radialSegs; j++ {
		v := float32(j) / float32(radialSegs) * 2 * math.Pi
		for i := 0; i <= tubularSegs; i++ {
			u := float32(i) / float32(tubularSegs) * 2 * math.Pi
			ring := radius + tube*math32.Cos(v)
			m.vertex(ring*math32.Cos(u), ring*math32.Sin(u), tube*math32.Sin(v))
		}
	}

	stride := uint32(tubularSegs + 1)
	for j := uint32(1); j <= uint32(radialSegs); j++ {
		for i := uint32(1); i <= uint32(tubularSegs); i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			m.indices = append(m.indices, a, b, d, b, c, d)
		}
	}
	return m.wireframe()
}

// PrimitiveParams sizes a primitive. Zero fields take the defaults of
// DefaultPrimitiveParams.
type PrimitiveParams struct {
	Size        float32 `toml:"size" yaml:"size"`
	Tube        float32 `toml:"tube" yaml:"tube"`
	Segments    int     `toml:"segments" yaml:"segments"`
	SubSegments int     `toml:"sub_segments" yaml:"sub_segments"`
}

func DefaultPrimitiveParams(kind PrimitiveKind) PrimitiveParams {
	switch kind {
	case PrimitiveSphere:
		return PrimitiveParams{Size: 0.7, Segments: 32, SubSegments: 32}
	case PrimitiveTorus:
		return PrimitiveParams{Size: 0.7, Tube: 0.3, Segments: 16, SubSegments: 100}
	default:
		return PrimitiveParams{Size: 1}
	}
}

func (p PrimitiveParams) withDefaults(kind PrimitiveKind) PrimitiveParams {
	d := DefaultPrimitiveParams(kind)
	if p.Size <= 0 {
		p.Size = d.Size
	}
	if p.Tube <= 0 {
		p.Tube = d.Tube
	}
	if p.Segments <= 0 {
		p.Segments = d.Segments
	}
	if p.SubSegments <= 0 {
		p.SubSegments = d.SubSegments
	}
	return p
}

// BuildPrimitive returns the wireframe for kind.
func BuildPrimitive(kind PrimitiveKind, params PrimitiveParams) (*WireMesh, error) {
	p := params.withDefaults(kind)
	switch kind {
	case PrimitiveCube:
		return BoxWireframe(p.Size, p.Size, p.Size), nil
	case PrimitiveSphere:
		return SphereWireframe(p.Size, p.Segments, p.SubSegments), nil
	case PrimitiveTorus:
		return TorusWireframe(p.Size, p.Tube, p.Segments, p.SubSegments), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPrimitive, kind)
}
