package citymesh

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"gopkg.in/yaml.v3"
)

// CityConfig holds configuration for a given city.
type CityConfig struct {
	// Grid configures the number of buildings, where they go & how tall
	// they are. Required.
	Grid GridConfig `yaml:"grid"`

	// Building configures the building meshes.
	Building BuildingConfig `yaml:"building"`

	// Border configures a wall surrounding the whole grid.
	// Optional. If not given no border is built.
	Border *BorderConfig `yaml:"border,omitempty"`

	// Floor if true the city reports the size of a floor plane covering the
	// grid (see City.FloorSize). We don't build a mesh for it, a plane is
	// something every host can draw itself.
	Floor bool `yaml:"floor"`

	// Materials is a palette of material names. Each building picks one at
	// random when it is created. Optional.
	Materials []string `yaml:"materials,omitempty"`

	// MapScale is the number of pixels per world unit used when drawing
	// the CityMap. 0 means DefaultMapScale.
	MapScale float64 `yaml:"map_scale,omitempty"`

	// Seed for rng & noise (random number chosen if not set)
	Seed int64 `yaml:"seed"`
}

// DefaultMapScale is the CityMap resolution in pixels per world unit
const DefaultMapScale = 16

// GridConfig lays out the grid of buildings.
type GridConfig struct {
	// Rows is the number of buildings along x, Cols along z. Both >= 1.
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`

	// Spacing between the centres of neighbouring cells. Both > 0.
	Spacing Extent `yaml:"spacing"`

	// BaseY is the y value of every building's base.
	BaseY float64 `yaml:"base_y"`

	// Falloff is the steepness of the radial falloff; 0 disables it,
	// 1 is linear & higher values shrink buildings towards the edges faster.
	Falloff float64 `yaml:"falloff"`

	// Buildings get a random footprint between these (inclusive) when first
	// created. Must be > 0 and Min <= Max.
	MinFootprint Extent `yaml:"min_footprint"`
	MaxFootprint Extent `yaml:"max_footprint"`

	// Noise configures building heights.
	Noise NoiseConfig `yaml:"noise"`
}

// NoiseConfig configures how noise becomes building height.
//
//	height = noise(Origin.X + x*Scale.X, Origin.Z + z*Scale.Z) * Scale.Y * falloff + Origin.Y
//
// So Scale.Y is the max height added by noise & Origin.Y the min height.
// Setting Scale.Y to 0 gives flat (Origin.Y tall) buildings.
type NoiseConfig struct {
	Origin model3d.Coord3D `yaml:"origin"`
	Scale  model3d.Coord3D `yaml:"scale"`

	// Fractal settings for the default noise. Octaves of 0 or 1 is plain
	// Perlin noise. Ignored if a custom Noise is given to New().
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

// BuildingConfig configures building meshes.
type BuildingConfig struct {
	// Texel is the world size of one repeat of the building texture.
	Texel TexelSize `yaml:"texel"`
}

// BorderConfig configures the wall around the city.
// The wall's cavity is always (Rows * Spacing.X) x (Cols * Spacing.Z).
type BorderConfig struct {
	// Width (thickness) of the wall. 0 gives a wall with no top or outside.
	Width float64 `yaml:"width"`

	// Height of the wall above the city floor. > 0
	Height float64 `yaml:"height"`

	// Depth the outside of the wall runs below the floor. >= 0
	Depth float64 `yaml:"depth"`
}

// DefaultConfig returns a CityConfig with reasonable default values.
func DefaultConfig() *CityConfig {
	return &CityConfig{
		Grid: GridConfig{
			Rows:         4,
			Cols:         4,
			Spacing:      Extent{X: 2, Z: 2},
			Falloff:      1,
			MinFootprint: Extent{X: 1, Z: 1},
			MaxFootprint: Extent{X: 1.5, Z: 1.5},
			Noise: NoiseConfig{
				Origin:      model3d.XYZ(0, 1, 0),
				Scale:       model3d.XYZ(0.37, 8, 0.37),
				Octaves:     1,
				Persistence: 0.5,
				Lacunarity:  2,
			},
		},
		Building: BuildingConfig{
			Texel: TexelSize{U: 3, V: 3},
		},
		Border: &BorderConfig{
			Width:  1,
			Height: 1,
			Depth:  1,
		},
		Floor: true,
	}
}

// Validate checks the config makes sense, without changing it.
func (c *CityConfig) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if err := c.Building.Texel.validate(); err != nil {
		return errors.Wrap(err, "building texel")
	}
	if c.MapScale < 0 {
		return errors.Wrapf(ErrInvalidConfig, "map scale %v", c.MapScale)
	}
	if c.Border != nil {
		if err := c.Border.frame(c.Grid).validate(); err != nil {
			return errors.Wrap(err, "border")
		}
	}
	return nil
}

// Validate checks the grid config.
func (g *GridConfig) Validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return errors.Wrapf(ErrIndexOutOfRange, "grid %dx%d", g.Rows, g.Cols)
	}
	if !(g.Spacing.X > 0 && g.Spacing.Z > 0) {
		return errors.Wrapf(ErrInvalidDimension, "grid spacing %v,%v", g.Spacing.X, g.Spacing.Z)
	}
	if !(g.MinFootprint.X > 0 && g.MinFootprint.Z > 0) {
		return errors.Wrapf(ErrInvalidDimension, "min footprint %v,%v", g.MinFootprint.X, g.MinFootprint.Z)
	}
	if g.MaxFootprint.X < g.MinFootprint.X || g.MaxFootprint.Z < g.MinFootprint.Z {
		return errors.Wrapf(ErrInvalidConfig, "max footprint %v,%v smaller than min", g.MaxFootprint.X, g.MaxFootprint.Z)
	}
	if g.Falloff < 0 {
		return errors.Wrapf(ErrInvalidConfig, "falloff %v", g.Falloff)
	}
	if g.Noise.Octaves < 0 {
		return errors.Wrapf(ErrInvalidConfig, "noise octaves %d", g.Noise.Octaves)
	}
	return nil
}

// frame returns the dimensions of a border around the given grid
func (b *BorderConfig) frame(g GridConfig) FrameDimensions {
	return FrameDimensions{
		Inner: BoxDimensions{
			Width:  float64(g.Rows) * g.Spacing.X,
			Height: b.Height,
			Depth:  float64(g.Cols) * g.Spacing.Z,
		},
		OuterWidth: b.Width,
		OuterDepth: b.Depth,
	}
}

// LoadConfig reads a YAML config file over the top of DefaultConfig().
func LoadConfig(path string) (*CityConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	return cfg, nil
}

// SaveTo writes the config as YAML to the given path.
func (c *CityConfig) SaveTo(path string) error {
	// Create parent directory if needed
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
