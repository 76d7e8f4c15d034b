package citymesh

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

func TestSolidValidate(t *testing.T) {
	tests := []struct {
		name  string
		solid *Solid
		want  error
	}{
		{
			name: "ok",
			solid: &Solid{
				Vertices:  make([]model3d.Coord3D, 3),
				UVs:       make([]model2d.Coord, 3),
				Triangles: []int{0, 1, 2},
			},
		},
		{
			name: "uv mismatch",
			solid: &Solid{
				Vertices:  make([]model3d.Coord3D, 3),
				UVs:       make([]model2d.Coord, 2),
				Triangles: []int{0, 1, 2},
			},
			want: ErrInvalidDimension,
		},
		{
			name: "partial triangle",
			solid: &Solid{
				Vertices:  make([]model3d.Coord3D, 3),
				UVs:       make([]model2d.Coord, 3),
				Triangles: []int{0, 1},
			},
			want: ErrInvalidDimension,
		},
		{
			name: "index out of range",
			solid: &Solid{
				Vertices:  make([]model3d.Coord3D, 3),
				UVs:       make([]model2d.Coord, 3),
				Triangles: []int{0, 1, 3},
			},
			want: ErrIndexOutOfRange,
		},
		{
			name: "negative index",
			solid: &Solid{
				Vertices:  make([]model3d.Coord3D, 3),
				UVs:       make([]model2d.Coord, 3),
				Triangles: []int{0, -1, 2},
			},
			want: ErrIndexOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.solid.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSolidRecalculateEmpty(t *testing.T) {
	s := &Solid{}
	s.Recalculate()
	if s.Min != (model3d.Coord3D{}) || s.Max != (model3d.Coord3D{}) {
		t.Errorf("empty solid should have zero bounds, got %v - %v", s.Min, s.Max)
	}
}

func TestSolidMeshOffset(t *testing.T) {
	s, err := NewBox(BoxDimensions{Width: 2, Height: 2, Depth: 2}, TexelSize{U: 1, V: 1})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	mesh := s.Mesh(model3d.XYZ(10, 5, -10))
	if n := len(mesh.TriangleSlice()); n != 12 {
		t.Fatalf("expected 12 triangles, got %d", n)
	}

	lo, hi := mesh.Min(), mesh.Max()
	if lo != model3d.XYZ(9, 5, -11) || hi != model3d.XYZ(11, 7, -9) {
		t.Errorf("unexpected mesh bounds %v - %v", lo, hi)
	}
}

func TestNewSolidCopiesTriangles(t *testing.T) {
	a, _ := NewBox(BoxDimensions{1, 1, 1}, TexelSize{1, 1})
	b, _ := NewBox(BoxDimensions{1, 1, 1}, TexelSize{1, 1})

	a.Triangles[0] = 5
	if b.Triangles[0] == 5 || boxTriangles[0] == 5 {
		t.Error("solids share a triangle buffer")
	}
}
