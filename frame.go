package citymesh

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

const frameVertexCount = 40

// frameTriangles joins the four rings of a frame.
// Rings (4 corners each, ordered as for a box):
//
//	0-3   inner footprint, floor level
//	4-7   inner footprint, raised to Inner.Height
//	8-11  outer footprint, raised to Inner.Height
//	12-15 outer footprint, dropped to -OuterDepth
//
// 16-31 repeat 0-15 (used by the left & right sides) and 32-39 repeat 4-11
// (used by the top).
var frameTriangles = []int{
	// inner wall, faces the cavity
	0, 1, 5, 0, 5, 4, // front
	17, 18, 22, 17, 22, 21, // right
	2, 3, 7, 2, 7, 6, // back
	19, 16, 20, 19, 20, 23, // left

	// top, faces up
	32, 33, 37, 32, 37, 36,
	33, 34, 38, 33, 38, 37,
	34, 35, 39, 34, 39, 38,
	35, 32, 36, 35, 36, 39,

	// outer wall, faces away from the cavity
	8, 9, 13, 8, 13, 12,
	25, 26, 30, 25, 30, 29,
	10, 11, 15, 10, 15, 14,
	27, 24, 28, 27, 28, 31,
}

var (
	// U per ring corner; back & left run the texture the other way round
	// so it reads correctly from outside
	frameCornerU = [4]float64{0, 1, 1, 0}

	// V per ring; splits the texture into inner 0.4, top 0.2, outer 0.4
	frameRingV = [4]float64{1, 0.6, 0.4, 0}
)

// FrameDimensions describes a hollow rectangular border.
//
// Inner is the cavity; Inner.Width x Inner.Depth footprint and the wall stands
// Inner.Height above the floor. OuterWidth is the wall thickness and
// OuterDepth how far the outer face runs below the floor (a foundation).
type FrameDimensions struct {
	Inner      BoxDimensions `yaml:"inner"`
	OuterWidth float64       `yaml:"outer_width"`
	OuterDepth float64       `yaml:"outer_depth"`
}

// Degenerate returns true if the frame has no wall thickness.
// Such a frame still builds but the top & outer faces have zero area.
func (f FrameDimensions) Degenerate() bool {
	return f.OuterWidth <= 0
}

func (f FrameDimensions) validate() error {
	if err := f.Inner.validate(); err != nil {
		return errors.Wrap(err, "frame inner")
	}
	if f.OuterDepth < 0 {
		return errors.Wrapf(ErrInvalidDimension, "frame outer depth %v", f.OuterDepth)
	}
	return nil
}

// NewFrame builds a 40 vertex, 24 triangle hollow frame.
// The origin is the centre of the cavity floor.
func NewFrame(f FrameDimensions) (*Solid, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	s := newSolid(frameVertexCount, frameTriangles)
	writeFrame(s, f)
	return s, nil
}

// ResizeFrame rewrites the vertices & uvs of a solid made by NewFrame in place.
func ResizeFrame(s *Solid, f FrameDimensions) error {
	if err := f.validate(); err != nil {
		return err
	}
	if len(s.Vertices) != frameVertexCount || len(s.UVs) != frameVertexCount {
		return errors.Wrapf(ErrIndexOutOfRange, "solid has %d vertices, frame needs %d", len(s.Vertices), frameVertexCount)
	}

	writeFrame(s, f)
	return nil
}

// writeFrame sets positions & uvs then recalculates normals & bounds
func writeFrame(s *Solid, f FrameDimensions) {
	ow := f.OuterWidth
	if ow < 0 {
		ow = 0
	}

	hw := f.Inner.Width / 2
	hd := f.Inner.Depth / 2
	h := f.Inner.Height

	rings := [4][4]model3d.Coord3D{
		rectRing(hw, hd, 0),
		rectRing(hw, hd, h),
		rectRing(hw+ow, hd+ow, h),
		rectRing(hw+ow, hd+ow, -f.OuterDepth),
	}

	for i := 0; i < 16; i++ {
		ring, corner := i/4, i%4
		s.Vertices[i] = rings[ring][corner]
		s.UVs[i] = model2d.Coord{X: frameCornerU[corner], Y: frameRingV[ring]}
	}
	copy(s.Vertices[16:32], s.Vertices[0:16])
	copy(s.UVs[16:32], s.UVs[0:16])
	copy(s.Vertices[32:40], s.Vertices[4:12])
	copy(s.UVs[32:40], s.UVs[4:12])

	s.Recalculate()
}

// rectRing returns four corners of a rectangle centred on the y axis
// in the order front-left, front-right, back-right, back-left
func rectRing(hw, hd, y float64) [4]model3d.Coord3D {
	return [4]model3d.Coord3D{
		model3d.XYZ(-hw, y, -hd),
		model3d.XYZ(hw, y, -hd),
		model3d.XYZ(hw, y, hd),
		model3d.XYZ(-hw, y, hd),
	}
}
