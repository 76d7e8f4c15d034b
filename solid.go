package citymesh

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

var (
	// ErrInvalidDimension implies a mesh builder was handed a size component
	// that is zero or negative.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrIndexOutOfRange implies a grid row / column (or cell index) outside
	// of the current grid.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidConfig implies some non-geometric setting makes no sense
	// (negative falloff, min footprint larger than max etc).
	ErrInvalidConfig = errors.New("invalid config")
)

// Solid is a mesh buffer; vertex positions with a parallel set of UVs and
// a list of triangles (each three consecutive indices into Vertices).
//
// Triangles are wound so that (b-a)x(c-a) points away from the surface's
// "front" - outward for boxes & outer walls, into the cavity for the inner
// walls of a frame.
//
// Normals, Min and Max are derived data, see Recalculate().
type Solid struct {
	Vertices  []model3d.Coord3D
	UVs       []model2d.Coord
	Triangles []int

	Normals []model3d.Coord3D `json:",omitempty"`
	Min     model3d.Coord3D
	Max     model3d.Coord3D
}

// newSolid allocates buffers for a mesh with a fixed topology.
// The triangle table is copied so no two solids share an index buffer.
func newSolid(vertexCount int, triangles []int) *Solid {
	tris := make([]int, len(triangles))
	copy(tris, triangles)
	return &Solid{
		Vertices:  make([]model3d.Coord3D, vertexCount),
		UVs:       make([]model2d.Coord, vertexCount),
		Normals:   make([]model3d.Coord3D, vertexCount),
		Triangles: tris,
	}
}

// TriangleCount returns the number of triangles in the solid.
func (s *Solid) TriangleCount() int {
	return len(s.Triangles) / 3
}

// Triangle returns the i-th triangle's corners
func (s *Solid) Triangle(i int) [3]model3d.Coord3D {
	return [3]model3d.Coord3D{
		s.Vertices[s.Triangles[i*3]],
		s.Vertices[s.Triangles[i*3+1]],
		s.Vertices[s.Triangles[i*3+2]],
	}
}

// Validate checks the buffer invariants; parallel UVs and all indices in range.
func (s *Solid) Validate() error {
	if len(s.UVs) != len(s.Vertices) {
		return errors.Wrapf(ErrInvalidDimension, "%d uvs for %d vertices", len(s.UVs), len(s.Vertices))
	}
	if len(s.Triangles)%3 != 0 {
		return errors.Wrapf(ErrInvalidDimension, "triangle buffer length %d not a multiple of 3", len(s.Triangles))
	}
	for i, idx := range s.Triangles {
		if idx < 0 || idx >= len(s.Vertices) {
			return errors.Wrapf(ErrIndexOutOfRange, "triangle index %d at %d (vertices %d)", idx, i, len(s.Vertices))
		}
	}
	return nil
}

// Recalculate rebuilds normals & bounds from the current vertices.
// Must be called after any vertex mutation; the builders in this
// package always do so.
//
// Normals are the (area weighted) sum of the normals of every triangle
// touching a vertex. Since boxes & frames never share vertices across faces
// this gives flat per-face normals.
func (s *Solid) Recalculate() {
	if len(s.Normals) != len(s.Vertices) {
		s.Normals = make([]model3d.Coord3D, len(s.Vertices))
	}
	for i := range s.Normals {
		s.Normals[i] = model3d.Coord3D{}
	}

	for i := 0; i+2 < len(s.Triangles); i += 3 {
		a, b, c := s.Triangles[i], s.Triangles[i+1], s.Triangles[i+2]
		n := s.Vertices[b].Sub(s.Vertices[a]).Cross(s.Vertices[c].Sub(s.Vertices[a]))
		s.Normals[a] = s.Normals[a].Add(n)
		s.Normals[b] = s.Normals[b].Add(n)
		s.Normals[c] = s.Normals[c].Add(n)
	}
	for i, n := range s.Normals {
		if n.Norm() == 0 {
			continue // degenerate, leave as zero
		}
		s.Normals[i] = n.Normalize()
	}

	if len(s.Vertices) == 0 {
		s.Min, s.Max = model3d.Coord3D{}, model3d.Coord3D{}
		return
	}
	s.Min, s.Max = s.Vertices[0], s.Vertices[0]
	for _, v := range s.Vertices[1:] {
		s.Min = s.Min.Min(v)
		s.Max = s.Max.Max(v)
	}
}

// Size returns the extent of the bounding box.
func (s *Solid) Size() model3d.Coord3D {
	return s.Max.Sub(s.Min)
}

// Mesh converts the solid into a model3d mesh, offset by the given amount.
// Zero area triangles (ie. the outer shell of a degenerate frame) are skipped.
func (s *Solid) Mesh(offset model3d.Coord3D) *model3d.Mesh {
	mesh := model3d.NewMesh()
	s.addTo(mesh, offset)
	return mesh
}

// addTo adds all non-degenerate triangles to an existing mesh
func (s *Solid) addTo(mesh *model3d.Mesh, offset model3d.Coord3D) {
	for i := 0; i < s.TriangleCount(); i++ {
		corners := s.Triangle(i)
		t := &model3d.Triangle{
			corners[0].Add(offset),
			corners[1].Add(offset),
			corners[2].Add(offset),
		}
		if t.Area() == 0 {
			continue
		}
		mesh.Add(t)
	}
}
