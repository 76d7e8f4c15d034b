package citymesh

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// Extent is a horizontal size or spacing; X along the x axis, Z along z.
type Extent struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// Cell is a single slot in the city grid, holding one building.
type Cell struct {
	// Index in the grid (row * cols + col)
	Index int
	Row   int
	Col   int

	// Position of the centre of the building's base.
	// (0,0,0) until the grid has been laid out.
	Position model3d.Coord3D

	// Size of the building; X & Z are the footprint (fixed when the cell
	// is created), Y the height (recomputed every layout).
	Size model3d.Coord3D

	// index into the configured material palette, -1 if there is none
	Material int

	// the building mesh, owned by this cell
	Solid *Solid `json:"-"`
}

// Footprint returns the area the building covers on the ground (x,z)
func (c *Cell) Footprint() r2.Rect {
	return r2.RectFromCenterSize(
		r2.Point{X: c.Position.X, Y: c.Position.Z},
		r2.Point{X: c.Size.X, Y: c.Size.Z},
	)
}

// Dimensions returns the cell size as box dimensions
func (c *Cell) Dimensions() BoxDimensions {
	return BoxDimensions{Width: c.Size.X, Height: c.Size.Y, Depth: c.Size.Z}
}

// Axis names one of the three size components of a building.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// SetSize changes one component of the building size & resizes its mesh in
// place (if it has one). The mesh is untouched on error.
//
// Heights set this way last until the next grid layout.
func (c *Cell) SetSize(a Axis, v float64, texel TexelSize) error {
	size := c.Size
	switch a {
	case AxisX:
		size.X = v
	case AxisY:
		size.Y = v
	case AxisZ:
		size.Z = v
	default:
		return errors.Wrapf(ErrIndexOutOfRange, "axis %d", a)
	}

	dims := BoxDimensions{Width: size.X, Height: size.Y, Depth: size.Z}
	if err := dims.validate(); err != nil {
		return err
	}
	if c.Solid != nil {
		if err := ResizeBox(c.Solid, dims, texel); err != nil {
			return err
		}
	}

	c.Size = size
	return nil
}

// Placement is where a building goes & how large it is.
type Placement struct {
	Position model3d.Coord3D
	Size     model3d.Coord3D
}

// CityStats holds generic stats about the city
type CityStats struct {
	// number of buildings
	Buildings int

	// shortest, tallest & average building heights
	MinHeight  float64
	MaxHeight  float64
	MeanHeight float64

	// count of buildings by material name
	BuildingsByMaterial map[string]int `json:",omitempty"`

	// pairs of cells whose footprints overlap
	Overlaps int `json:",omitempty"`
}
