package citymesh

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

func TestNewBoxCounts(t *testing.T) {
	s, err := NewBox(BoxDimensions{Width: 1, Height: 2, Depth: 3}, TexelSize{U: 1, V: 1})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	if len(s.Vertices) != 24 {
		t.Errorf("expected 24 vertices, got %d", len(s.Vertices))
	}
	if len(s.UVs) != 24 {
		t.Errorf("expected 24 uvs, got %d", len(s.UVs))
	}
	if len(s.Triangles) != 36 {
		t.Errorf("expected 36 triangle indices, got %d", len(s.Triangles))
	}
	if s.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", s.TriangleCount())
	}
	for i, idx := range s.Triangles {
		if idx < 0 || idx >= 24 {
			t.Errorf("triangle index %d at %d out of range", idx, i)
		}
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewBoxBounds(t *testing.T) {
	s, err := NewBox(BoxDimensions{Width: 2, Height: 5, Depth: 4}, TexelSize{U: 1, V: 1})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	if s.Min != model3d.XYZ(-1, 0, -2) {
		t.Errorf("expected min (-1,0,-2), got %v", s.Min)
	}
	if s.Max != model3d.XYZ(1, 5, 2) {
		t.Errorf("expected max (1,5,2), got %v", s.Max)
	}
	if s.Size() != model3d.XYZ(2, 5, 4) {
		t.Errorf("expected size (2,5,4), got %v", s.Size())
	}
}

func TestNewBoxNormalsFaceOutward(t *testing.T) {
	dims := BoxDimensions{Width: 2, Height: 3, Depth: 4}
	s, err := NewBox(dims, TexelSize{U: 1, V: 1})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	centre := model3d.XYZ(0, dims.Height/2, 0)
	for i := 0; i < s.TriangleCount(); i++ {
		tri := s.Triangle(i)
		n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
		mid := tri[0].Add(tri[1]).Add(tri[2]).Scale(1.0 / 3)
		if n.Dot(mid.Sub(centre)) <= 0 {
			t.Errorf("triangle %d faces inward (normal %v)", i, n)
		}
	}

	// flat shading; every vertex normal is unit length & axis aligned
	for i, n := range s.Normals {
		if math.Abs(n.Norm()-1) > 1e-9 {
			t.Errorf("normal %d not unit length: %v", i, n)
		}
	}
}

func TestNewBoxUVs(t *testing.T) {
	// 5 wide, 2 deep, 7 tall with texel 2x3 -> 3 repeats across, 1 deep, 3 up
	s, err := NewBox(BoxDimensions{Width: 5, Height: 7, Depth: 2}, TexelSize{U: 2, V: 3})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	wantU := [4]float64{0, 3, 4, 1}
	for i := 0; i < 24; i++ {
		uv := s.UVs[i]
		if uv.X != wantU[i%4] {
			t.Errorf("uv %d: expected u %v, got %v", i, wantU[i%4], uv.X)
		}
		wantV := 0.0
		if (i/4)%2 == 1 {
			wantV = 3
		}
		if uv.Y != wantV {
			t.Errorf("uv %d: expected v %v, got %v", i, wantV, uv.Y)
		}
	}
}

func TestResizeBoxMatchesNewBox(t *testing.T) {
	texel := TexelSize{U: 1.5, V: 2}
	s, err := NewBox(BoxDimensions{Width: 1, Height: 1, Depth: 1}, texel)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	triangles := s.Triangles

	dims := BoxDimensions{Width: 3.3, Height: 7, Depth: 0.5}
	if err := ResizeBox(s, dims, texel); err != nil {
		t.Fatalf("ResizeBox: %v", err)
	}
	fresh, err := NewBox(dims, texel)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	if &triangles[0] != &s.Triangles[0] {
		t.Error("ResizeBox reallocated the triangle buffer")
	}
	for i := range fresh.Vertices {
		if s.Vertices[i] != fresh.Vertices[i] {
			t.Errorf("vertex %d: resized %v, fresh %v", i, s.Vertices[i], fresh.Vertices[i])
		}
		if s.UVs[i] != fresh.UVs[i] {
			t.Errorf("uv %d: resized %v, fresh %v", i, s.UVs[i], fresh.UVs[i])
		}
		if s.Normals[i] != fresh.Normals[i] {
			t.Errorf("normal %d: resized %v, fresh %v", i, s.Normals[i], fresh.Normals[i])
		}
	}
	if s.Min != fresh.Min || s.Max != fresh.Max {
		t.Errorf("bounds: resized %v-%v, fresh %v-%v", s.Min, s.Max, fresh.Min, fresh.Max)
	}
}

func TestBoxInvalidDimensions(t *testing.T) {
	tests := []struct {
		name  string
		dims  BoxDimensions
		texel TexelSize
	}{
		{"zero width", BoxDimensions{0, 1, 1}, TexelSize{1, 1}},
		{"negative height", BoxDimensions{1, -1, 1}, TexelSize{1, 1}},
		{"zero depth", BoxDimensions{1, 1, 0}, TexelSize{1, 1}},
		{"nan width", BoxDimensions{math.NaN(), 1, 1}, TexelSize{1, 1}},
		{"zero texel u", BoxDimensions{1, 1, 1}, TexelSize{0, 1}},
		{"negative texel v", BoxDimensions{1, 1, 1}, TexelSize{1, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewBox(tt.dims, tt.texel)
			if !errors.Is(err, ErrInvalidDimension) {
				t.Errorf("NewBox: expected ErrInvalidDimension, got %v", err)
			}
			if s != nil {
				t.Error("NewBox returned a solid on error")
			}
		})
	}
}

func TestResizeBoxLeavesSolidOnError(t *testing.T) {
	s, err := NewBox(BoxDimensions{Width: 1, Height: 2, Depth: 3}, TexelSize{U: 1, V: 1})
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	before := append([]model3d.Coord3D{}, s.Vertices...)

	err = ResizeBox(s, BoxDimensions{Width: 1, Height: 0, Depth: 3}, TexelSize{U: 1, V: 1})
	if !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
	for i := range before {
		if s.Vertices[i] != before[i] {
			t.Fatalf("vertex %d changed on failed resize", i)
		}
	}
}

func TestResizeBoxWrongSolid(t *testing.T) {
	frame, err := NewFrame(FrameDimensions{Inner: BoxDimensions{1, 1, 1}, OuterWidth: 1})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	err = ResizeBox(frame, BoxDimensions{Width: 1, Height: 1, Depth: 1}, TexelSize{U: 1, V: 1})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}
