package citymesh

import (
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
)

const boxVertexCount = 24

// boxTriangles is the fixed topology of a box.
// Corners 0-3 are the base ring (front-left, front-right, back-right, back-left),
// 4-7 the same corners at the top. 8-15 and 16-23 repeat 0-7 so every
// face owns its own four vertices (flat normals).
var boxTriangles = []int{
	0, 1, 3, 1, 2, 3, // bottom
	4, 7, 5, 5, 7, 6, // top
	8, 12, 9, 9, 12, 13, // front  (-z)
	17, 21, 18, 18, 21, 22, // right  (+x)
	10, 14, 11, 11, 14, 15, // back   (+z)
	19, 23, 16, 16, 23, 20, // left   (-x)
}

// BoxDimensions is the size of a building in x (Width), y (Height) and z (Depth).
type BoxDimensions struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
}

// validate returns ErrInvalidDimension if any component is not > 0
func (b BoxDimensions) validate() error {
	if !(b.Width > 0 && b.Height > 0 && b.Depth > 0) {
		return errors.Wrapf(ErrInvalidDimension, "box %vx%vx%v", b.Width, b.Height, b.Depth)
	}
	return nil
}

// TexelSize is the world size of one repeat of a texture.
// U applies to horizontal extents (width & depth), V to height.
type TexelSize struct {
	U float64 `yaml:"u"`
	V float64 `yaml:"v"`
}

func (t TexelSize) validate() error {
	if !(t.U > 0 && t.V > 0) {
		return errors.Wrapf(ErrInvalidDimension, "texel %vx%v", t.U, t.V)
	}
	return nil
}

// NewBox builds a 24 vertex, 12 triangle box.
// The origin is the centre of the base, so the box spans y in [0, Height]
// and is centred in x & z.
func NewBox(dims BoxDimensions, texel TexelSize) (*Solid, error) {
	if err := dims.validate(); err != nil {
		return nil, err
	}
	if err := texel.validate(); err != nil {
		return nil, err
	}

	s := newSolid(boxVertexCount, boxTriangles)
	writeBox(s, dims, texel)
	return s, nil
}

// ResizeBox rewrites the vertices & uvs of a solid made by NewBox in place.
// The triangle table is left alone.
func ResizeBox(s *Solid, dims BoxDimensions, texel TexelSize) error {
	if err := dims.validate(); err != nil {
		return err
	}
	if err := texel.validate(); err != nil {
		return err
	}
	if len(s.Vertices) != boxVertexCount || len(s.UVs) != boxVertexCount {
		return errors.Wrapf(ErrIndexOutOfRange, "solid has %d vertices, box needs %d", len(s.Vertices), boxVertexCount)
	}

	writeBox(s, dims, texel)
	return nil
}

// writeBox sets positions & uvs then recalculates normals & bounds
func writeBox(s *Solid, dims BoxDimensions, texel TexelSize) {
	base := rectRing(dims.Width/2, dims.Depth/2, 0)

	// texture repeats; front & back get `right` repeats, the sides `forward`
	up := math.Ceil(dims.Height / texel.V)
	right := math.Ceil(dims.Width / texel.U)
	forward := math.Ceil(dims.Depth / texel.U)

	ring := [4]float64{0, right, right + forward, forward}

	for i := 0; i < boxVertexCount; i++ {
		corner := i % 4
		top := (i/4)%2 == 1

		v := base[corner]
		uv := model2d.Coord{X: ring[corner], Y: 0}
		if top {
			v.Y = dims.Height
			uv.Y = up
		}
		s.Vertices[i] = v
		s.UVs[i] = uv
	}

	s.Recalculate()
}
