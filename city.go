package citymesh

import (
	"encoding/json"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/voidshard/citymesh/internal/noise"
)

// City holds a grid of buildings (each with its own box mesh), an optional
// border wall & handles keeping the meshes in step with the grid.
type City struct {
	cfg *CityConfig

	grid    *Grid
	noise   Noise
	rng     *rand.Rand
	log     *zap.Logger
	spawner Spawner

	// true if we built the noise ourselves (& so rebuild it on Reconfigure)
	ownNoise bool

	Buildings []*Cell
	Border    *Solid     `json:",omitempty"`
	Floor     *Extent    `json:",omitempty"`
	Stats     *CityStats `json:",omitempty"`
	Seed      int64

	cmap *imageMap
}

// New creates a new City given configuration & a Noise source.
//
// If n is nil fractal Perlin noise is built from cfg.Seed & cfg.Grid.Noise.
// If cfg is nil DefaultConfig() is used.
func New(cfg *CityConfig, n Noise, opts ...Option) (*City, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := newOptions(opts)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(seed))
	}

	c := &City{
		cfg:     cfg,
		noise:   n,
		rng:     o.rng,
		log:     o.log,
		spawner: o.spawner,
		Seed:    seed,
	}
	if c.noise == nil {
		c.noise = defaultNoise(seed, cfg.Grid.Noise)
		c.ownNoise = true
	}

	return c, c.build()
}

// defaultNoise returns seeded fractal noise for the given settings
func defaultNoise(seed int64, cfg NoiseConfig) Noise {
	return noise.NewFractal(seed, cfg.Octaves, cfg.Persistence, cfg.Lacunarity)
}

// Config returns the config the city was last built with.
func (c *City) Config() *CityConfig {
	return c.cfg
}

// Grid returns the underlying grid.
func (c *City) Grid() *Grid {
	return c.grid
}

// JSON returns the city as json.
func (c *City) JSON() ([]byte, error) {
	return json.Marshal(c)
}

// SaveJSON writes a json file to the given path.
func (c *City) SaveJSON(fpath string) error {
	data, err := c.JSON()
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, data, 0644)
}

// Map returns a CityMap of the city as it currently is.
// The map is drawn on first call after each change.
func (c *City) Map() CityMap {
	if c.cmap == nil {
		c.cmap = newMap(c, c.cfg.MapScale)
	}
	return c.cmap
}

// Mesh returns every building (at its position) & the border as a single
// mesh.
func (c *City) Mesh() *model3d.Mesh {
	mesh := model3d.NewMesh()
	for _, b := range c.Buildings {
		if b.Solid == nil {
			continue
		}
		b.Solid.addTo(mesh, b.Position)
	}
	if c.Border != nil {
		c.Border.addTo(mesh, c.origin())
	}
	return mesh
}

// SaveSTL writes the city mesh as an STL file.
func (c *City) SaveSTL(fpath string) error {
	return c.Mesh().SaveGroupedSTL(fpath)
}

// FloorSize returns the size of a floor plane covering the grid, centred on
// the origin at BaseY. Returns false if the city has no floor.
func (c *City) FloorSize() (Extent, bool) {
	if !c.cfg.Floor {
		return Extent{}, false
	}
	g := c.grid.Config()
	return Extent{
		X: float64(g.Rows) * g.Spacing.X,
		Z: float64(g.Cols) * g.Spacing.Z,
	}, true
}

// Update re-runs the grid layout with the current config, resizing any
// meshes whose building moved or changed height.
//
// Call it when the noise changes underneath us.
func (c *City) Update() error {
	added, removed, err := c.grid.Update()
	if err != nil {
		return err
	}
	return c.sync(added, removed, false)
}

// Reconfigure applies a new config, growing / shrinking the grid & resizing
// meshes in place. Existing buildings keep their footprint & material.
//
// The Seed of a city never changes; cfg.Seed is ignored. Pass a new config
// rather than editing the one returned by Config(), changes are found by
// comparing the two.
//
// An invalid config is rejected before anything changes.
func (c *City) Reconfigure(cfg *CityConfig) error {
	if cfg == nil {
		return errors.Wrap(ErrInvalidConfig, "nil config")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	n := c.noise
	if c.ownNoise && cfg.Grid.Noise != c.cfg.Grid.Noise {
		n = defaultNoise(c.Seed, cfg.Grid.Noise)
	}

	// neither can fail once cfg is valid
	if err := c.grid.SetConfig(cfg.Grid); err != nil {
		return err
	}
	if err := c.grid.SetNoise(n); err != nil {
		return err
	}
	c.noise = n
	c.grid.palette = len(cfg.Materials)

	// new texels mean new uvs on every building
	retexture := cfg.Building.Texel != c.cfg.Building.Texel
	c.cfg = cfg

	added, removed, err := c.grid.Update()
	if err != nil {
		return err
	}
	return c.sync(added, removed, retexture)
}

// SetBuildingSize changes one axis of the i-th building, resizing its mesh in
// place. Heights set this way are replaced on the next Update / Reconfigure.
func (c *City) SetBuildingSize(i int, a Axis, v float64) error {
	cell, err := c.grid.CellByIndex(i)
	if err != nil {
		return err
	}
	err = cell.SetSize(a, v, c.cfg.Building.Texel)
	if err != nil {
		return errors.Wrapf(err, "building %d", i)
	}
	if cell.Solid == nil {
		// a flat building given some height
		s, err := NewBox(cell.Dimensions(), c.cfg.Building.Texel)
		if err != nil {
			return errors.Wrapf(err, "building %d", i)
		}
		cell.Solid = s
	}
	c.refresh()
	return nil
}

// build creates the grid & all meshes for the first time
func (c *City) build() error {
	grid, err := NewGrid(
		c.cfg.Grid,
		c.noise,
		WithLogger(c.log),
		WithRand(c.rng),
		withPalette(len(c.cfg.Materials)),
	)
	if err != nil {
		return err
	}
	c.grid = grid

	return c.sync(grid.Cells(), nil, false)
}

// sync brings meshes in line with the grid. New cells get a new box, dirty
// cells (or all if `all`) have theirs resized in place.
//
// Cells laid out with no height (or less) are flat; they stay in the grid
// but have no solid until a later layout gives them one.
func (c *City) sync(added, removed []*Cell, all bool) error {
	for _, cell := range removed {
		if c.spawner != nil {
			c.spawner.Despawn(cell)
		}
		cell.Solid = nil
	}

	texel := c.cfg.Building.Texel
	for i, cell := range c.grid.Cells() {
		if err := cell.Dimensions().validate(); err != nil {
			if cell.Solid != nil || all || c.grid.Dirty(i) {
				c.log.Warn("building is flat, no mesh built", zap.Int("index", i), zap.Float64("height", cell.Size.Y))
			}
			cell.Solid = nil
			continue
		}
		if cell.Solid == nil {
			s, err := NewBox(cell.Dimensions(), texel)
			if err != nil {
				return errors.Wrapf(err, "building %d", i)
			}
			cell.Solid = s
			continue
		}
		if !all && !c.grid.Dirty(i) {
			continue
		}
		if err := ResizeBox(cell.Solid, cell.Dimensions(), texel); err != nil {
			return errors.Wrapf(err, "building %d", i)
		}
	}
	c.grid.ClearDirty()

	if c.spawner != nil {
		for _, cell := range added {
			c.spawner.Spawn(cell)
		}
	}

	if err := c.syncBorder(); err != nil {
		return err
	}

	c.refresh()

	for _, pair := range c.grid.Overlaps() {
		c.log.Warn("building footprints overlap", zap.Int("a", pair[0]), zap.Int("b", pair[1]))
	}
	return nil
}

// syncBorder builds, resizes or removes the border wall
func (c *City) syncBorder() error {
	if c.cfg.Border == nil {
		c.Border = nil
		return nil
	}

	dims := c.cfg.Border.frame(c.grid.Config())
	if dims.Degenerate() {
		c.log.Debug("border has no thickness", zap.Float64("width", c.cfg.Border.Width))
	}

	if c.Border == nil {
		s, err := NewFrame(dims)
		if err != nil {
			return errors.Wrap(err, "border")
		}
		c.Border = s
		return nil
	}
	return errors.Wrap(ResizeFrame(c.Border, dims), "border")
}

// refresh recomputes exported data & forgets the cached map
func (c *City) refresh() {
	c.Buildings = c.grid.Cells()

	c.Floor = nil
	if f, ok := c.FloorSize(); ok {
		c.Floor = &f
	}

	c.Stats = c.stats()
	c.cmap = nil
}

// origin is the centre of the city floor
func (c *City) origin() model3d.Coord3D {
	return model3d.XYZ(0, c.grid.Config().BaseY, 0)
}

// stats works out CityStats for the current buildings
func (c *City) stats() *CityStats {
	st := &CityStats{Buildings: len(c.Buildings)}
	if len(c.cfg.Materials) > 0 {
		st.BuildingsByMaterial = map[string]int{}
	}

	heights := make([]float64, len(c.Buildings))
	for i, b := range c.Buildings {
		heights[i] = b.Size.Y
		if b.Material >= 0 && b.Material < len(c.cfg.Materials) {
			st.BuildingsByMaterial[c.cfg.Materials[b.Material]]++
		}
	}
	if len(heights) > 0 {
		st.MinHeight = floats.Min(heights)
		st.MaxHeight = floats.Max(heights)
		st.MeanHeight = floats.Sum(heights) / float64(len(heights))
	}

	st.Overlaps = len(c.grid.Overlaps())
	return st
}
