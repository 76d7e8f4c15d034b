package citymesh

import (
	"math"
	"math/rand"
	"time"

	"github.com/boljen/go-bitmap"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"go.uber.org/zap"
)

// placeholderHeight is the height of a new cell before its first layout
const placeholderHeight = 1

// Grid lays out buildings in a rows x cols grid centred on the origin.
//
// Changing the size of the grid is done in two steps; Resize adds / removes
// cells (new cells sit at (0,0,0) with a placeholder height) & Layout works
// out where every cell goes & how tall it is. Update does both.
//
// A Grid is not safe for concurrent use.
type Grid struct {
	cfg   GridConfig
	noise Noise
	rng   *rand.Rand
	log   *zap.Logger

	palette int

	cells []*Cell

	// cells whose size or position changed since the last ClearDirty
	dirty bitmap.Bitmap
}

// NewGrid creates a grid with cfg.Rows * cfg.Cols cells & lays them out.
func NewGrid(cfg GridConfig, n Noise, opts ...Option) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "grid requires noise")
	}

	o := newOptions(opts)
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := &Grid{
		cfg:     cfg,
		noise:   n,
		rng:     o.rng,
		log:     o.log,
		palette: o.palette,
		cells:   []*Cell{},
		dirty:   bitmap.New(0),
	}

	_, _, err := g.Update()
	return g, err
}

// Config returns the current grid config
func (g *Grid) Config() GridConfig {
	return g.cfg
}

// SetConfig replaces the grid config. Nothing moves until Update (or
// Resize / Layout) is called.
func (g *Grid) SetConfig(cfg GridConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

// Rows returns the number of rows (along x)
func (g *Grid) Rows() int {
	return g.cfg.Rows
}

// Cols returns the number of columns (along z)
func (g *Grid) Cols() int {
	return g.cfg.Cols
}

// Len returns the number of cells
func (g *Grid) Len() int {
	return len(g.cells)
}

// Cells returns all cells in index order.
// The slice is the grid's own; don't modify it.
func (g *Grid) Cells() []*Cell {
	return g.cells
}

// Cell returns the cell at row, col
func (g *Grid) Cell(row, col int) (*Cell, error) {
	if row < 0 || row >= g.cfg.Rows || col < 0 || col >= g.cfg.Cols {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "cell (%d,%d) in %dx%d grid", row, col, g.cfg.Rows, g.cfg.Cols)
	}
	return g.CellByIndex(row*g.cfg.Cols + col)
}

// CellByIndex returns the i-th cell
func (g *Grid) CellByIndex(i int) (*Cell, error) {
	if i < 0 || i >= len(g.cells) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "cell %d of %d", i, len(g.cells))
	}
	return g.cells[i], nil
}

// Update resizes the grid to the configured rows & cols then lays it out.
// Returns the cells that were added & removed.
func (g *Grid) Update() ([]*Cell, []*Cell, error) {
	added, removed, err := g.Resize(g.cfg.Rows, g.cfg.Cols)
	if err != nil {
		return nil, nil, err
	}
	g.Layout()
	return added, removed, nil
}

// Resize changes the number of cells to rows * cols.
//
// Shrinking truncates; cells with an index >= rows*cols are removed (in
// index order) whatever their row / col was. Growing appends cells with a new
// random footprint at (0,0,0) - they're only moved by the next Layout().
func (g *Grid) Resize(rows, cols int) ([]*Cell, []*Cell, error) {
	if rows < 1 || cols < 1 {
		return nil, nil, errors.Wrapf(ErrIndexOutOfRange, "grid %dx%d", rows, cols)
	}
	g.cfg.Rows = rows
	g.cfg.Cols = cols

	want := rows * cols
	prev := len(g.cells)
	added := []*Cell{}
	removed := []*Cell{}

	if len(g.cells) > want {
		removed = append(removed, g.cells[want:]...)
		for _, c := range removed {
			g.log.Debug("removing building", zap.Int("index", c.Index))
		}
		for i := want; i < len(g.cells); i++ {
			g.cells[i] = nil // let go of the solids
		}
		g.cells = g.cells[:want]
	}
	for i := len(g.cells); i < want; i++ {
		c := g.newCell(i)
		g.log.Debug("adding building", zap.Int("index", i), zap.Float64("x", c.Size.X), zap.Float64("z", c.Size.Z))
		g.cells = append(g.cells, c)
		added = append(added, c)
	}

	for i, c := range g.cells {
		c.Row, c.Col = i/cols, i%cols
	}

	g.resizeDirty(prev)
	return added, removed, nil
}

// newCell makes a cell with a random footprint & material
func (g *Grid) newCell(i int) *Cell {
	lo, hi := g.cfg.MinFootprint, g.cfg.MaxFootprint
	c := &Cell{
		Index:    i,
		Row:      i / g.cfg.Cols,
		Col:      i % g.cfg.Cols,
		Material: -1,
		Size: model3d.XYZ(
			lo.X+g.rng.Float64()*(hi.X-lo.X),
			placeholderHeight,
			lo.Z+g.rng.Float64()*(hi.Z-lo.Z),
		),
	}
	if g.palette > 0 {
		c.Material = g.rng.Intn(g.palette)
	}
	return c
}

// resizeDirty makes the dirty set match the number of cells, keeping the
// bits of the first `prev` cells & marking the rest (new cells) dirty
func (g *Grid) resizeDirty(prev int) {
	old := g.dirty
	g.dirty = bitmap.New(len(g.cells))
	for i := range g.cells {
		if i < prev && i < old.Len() && !old.Get(i) {
			continue
		}
		g.dirty.Set(i, true)
	}
}

// CitySize returns the distance between the centres of the outermost cells
func (g *Grid) CitySize() Extent {
	return Extent{
		X: float64(g.cfg.Rows-1) * g.cfg.Spacing.X,
		Z: float64(g.cfg.Cols-1) * g.cfg.Spacing.Z,
	}
}

// ComputeLayout works out where every cell should go & how tall it should
// be, without moving anything. Results are in index order.
func (g *Grid) ComputeLayout() []Placement {
	size := g.CitySize()
	out := make([]Placement, len(g.cells))

	for i, c := range g.cells {
		pos := CellPosition(g.cfg, size, c.Row, c.Col)
		out[i] = Placement{
			Position: pos,
			Size:     model3d.XYZ(c.Size.X, CellHeight(g.cfg, size, g.noise, pos), c.Size.Z),
		}
	}

	return out
}

// Layout positions every cell & recomputes its height.
// Footprints are never changed. Returns the placement of every cell, in
// index order.
func (g *Grid) Layout() []Placement {
	out := g.ComputeLayout()

	for i, p := range out {
		c := g.cells[i]
		if p.Position != c.Position || p.Size.Y != c.Size.Y {
			g.dirty.Set(i, true)
		}
		c.Position = p.Position
		c.Size.Y = p.Size.Y

		g.log.Debug("building height", zap.Int("index", i), zap.Float64("height", p.Size.Y))
	}

	return out
}

// SetNoise swaps the noise used for heights. Takes effect on the next Layout.
func (g *Grid) SetNoise(n Noise) error {
	if n == nil {
		return errors.Wrap(ErrInvalidConfig, "grid requires noise")
	}
	g.noise = n
	return nil
}

// Placements returns where every cell currently is, without recomputing
// anything. New cells not yet laid out report (0,0,0).
func (g *Grid) Placements() []Placement {
	out := make([]Placement, len(g.cells))
	for i, c := range g.cells {
		out[i] = Placement{Position: c.Position, Size: c.Size}
	}
	return out
}

// CellAt returns the cell whose footprint contains the point (x, z).
// Where footprints overlap the lowest index wins.
func (g *Grid) CellAt(x, z float64) (*Cell, bool) {
	pt := r2.Point{X: x, Y: z}
	for _, c := range g.cells {
		if c.Footprint().ContainsPoint(pt) {
			return c, true
		}
	}
	return nil, false
}

// Dirty returns if cell i changed since the last ClearDirty
func (g *Grid) Dirty(i int) bool {
	if i < 0 || i >= g.dirty.Len() || i >= len(g.cells) {
		return false
	}
	return g.dirty.Get(i)
}

// ClearDirty forgets all changes
func (g *Grid) ClearDirty() {
	for i := range g.cells {
		g.dirty.Set(i, false)
	}
}

// Bounds returns a rect covering every building footprint
func (g *Grid) Bounds() r2.Rect {
	bnds := r2.EmptyRect()
	for _, c := range g.cells {
		bnds = bnds.Union(c.Footprint())
	}
	return bnds
}

// Overlaps returns pairs of cell indexes whose footprints overlap.
// Footprints can be larger than the grid spacing, in which case buildings
// will run into each other.
func (g *Grid) Overlaps() [][2]int {
	// cells further apart than the largest footprint can't touch. Sizes can
	// be set past MaxFootprint by hand, so go by the cells themselves.
	var widest, deepest float64
	for _, c := range g.cells {
		widest = math.Max(widest, c.Size.X)
		deepest = math.Max(deepest, c.Size.Z)
	}
	reachX := int(math.Ceil(widest / g.cfg.Spacing.X))
	reachZ := int(math.Ceil(deepest / g.cfg.Spacing.Z))

	pairs := [][2]int{}
	for i, a := range g.cells {
		fa := a.Footprint()
		for _, b := range g.cells[i+1:] {
			if absint(a.Row-b.Row) > reachX || absint(a.Col-b.Col) > reachZ {
				continue
			}
			if fa.InteriorIntersects(b.Footprint()) {
				pairs = append(pairs, [2]int{a.Index, b.Index})
			}
		}
	}
	return pairs
}

// CellPosition returns where the cell at row, col goes.
// The grid is centred on the origin (in x & z).
func CellPosition(cfg GridConfig, citySize Extent, row, col int) model3d.Coord3D {
	return model3d.XYZ(
		cfg.Spacing.X*float64(row)-citySize.X/2,
		cfg.BaseY,
		cfg.Spacing.Z*float64(col)-citySize.Z/2,
	)
}

// CellHeight returns the building height at a given position.
func CellHeight(cfg GridConfig, citySize Extent, n Noise, pos model3d.Coord3D) float64 {
	org, scale := cfg.Noise.Origin, cfg.Noise.Scale
	v := n.Noise2D(org.X+pos.X*scale.X, org.Z+pos.Z*scale.Z)
	return v*scale.Y*DistanceFactor(pos, citySize, cfg.Falloff) + org.Y
}

// DistanceFactor is the radial falloff at pos; 1 at the centre of the grid
// falling to 0 at the corners, raised to the power falloff.
//
// Only the horizontal (x,z) distance from the centre is used; BaseY is
// ignored, so raising or lowering the whole grid never changes heights.
// Since cells never sit further
// out than the corners the base is always in [0,1]; it's clamped anyway so
// rounding can't push it negative (which would give NaN for fractional
// falloff). A single cell grid has no radius & always gets 1.
func DistanceFactor(pos model3d.Coord3D, citySize Extent, falloff float64) float64 {
	maxDist := math.Hypot(citySize.X, citySize.Z) / 2
	if maxDist == 0 {
		return 1
	}
	base := 1 - horizontalDist(pos, model3d.Coord3D{})/maxDist
	if base < 0 {
		base = 0
	}
	return math.Pow(base, falloff)
}
