package citymesh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Grid.Rows != 4 || cfg.Grid.Cols != 4 {
		t.Errorf("expected 4x4 grid, got %dx%d", cfg.Grid.Rows, cfg.Grid.Cols)
	}
	if cfg.Grid.Spacing != (Extent{X: 2, Z: 2}) {
		t.Errorf("expected spacing 2,2, got %v", cfg.Grid.Spacing)
	}
	if cfg.Grid.Noise.Scale != model3d.XYZ(0.37, 8, 0.37) {
		t.Errorf("unexpected noise scale %v", cfg.Grid.Noise.Scale)
	}
	if cfg.Border == nil {
		t.Error("expected a border by default")
	}
	if !cfg.Floor {
		t.Error("expected a floor by default")
	}
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "city.yaml")

	content := `
grid:
  rows: 7
  cols: 3
  falloff: 2.5
  noise:
    origin: {x: 0, y: 2, z: 0}
    scale: {x: 0.1, y: 20, z: 0.1}
    octaves: 4
materials: [brick, glass]
seed: 99
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Grid.Rows != 7 || cfg.Grid.Cols != 3 {
		t.Errorf("expected 7x3 grid, got %dx%d", cfg.Grid.Rows, cfg.Grid.Cols)
	}
	if cfg.Grid.Falloff != 2.5 {
		t.Errorf("expected falloff 2.5, got %v", cfg.Grid.Falloff)
	}
	if cfg.Grid.Noise.Scale != model3d.XYZ(0.1, 20, 0.1) {
		t.Errorf("unexpected noise scale %v", cfg.Grid.Noise.Scale)
	}
	if cfg.Grid.Noise.Octaves != 4 {
		t.Errorf("expected 4 octaves, got %d", cfg.Grid.Noise.Octaves)
	}
	if len(cfg.Materials) != 2 || cfg.Materials[1] != "glass" {
		t.Errorf("unexpected materials %v", cfg.Materials)
	}
	if cfg.Seed != 99 {
		t.Errorf("expected seed 99, got %d", cfg.Seed)
	}

	// unset values keep their defaults
	if cfg.Grid.Spacing != (Extent{X: 2, Z: 2}) {
		t.Errorf("expected default spacing, got %v", cfg.Grid.Spacing)
	}
	if cfg.Building.Texel != (TexelSize{U: 3, V: 3}) {
		t.Errorf("expected default texel, got %v", cfg.Building.Texel)
	}
	if cfg.Grid.Noise.Persistence != 0.5 {
		t.Errorf("expected default persistence, got %v", cfg.Grid.Noise.Persistence)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("grid: [not, a, map"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "city.yaml")

	cfg := DefaultConfig()
	cfg.Grid.Rows = 9
	cfg.Border = nil
	cfg.Materials = []string{"stone"}
	cfg.Seed = 1234

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Grid != cfg.Grid {
		t.Errorf("grid config changed: saved %+v, loaded %+v", cfg.Grid, loaded.Grid)
	}
	if loaded.Seed != 1234 {
		t.Errorf("expected seed 1234, got %d", loaded.Seed)
	}
	if len(loaded.Materials) != 1 || loaded.Materials[0] != "stone" {
		t.Errorf("unexpected materials %v", loaded.Materials)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *CityConfig)
		want error
	}{
		{"zero rows", func(c *CityConfig) { c.Grid.Rows = 0 }, ErrIndexOutOfRange},
		{"zero texel", func(c *CityConfig) { c.Building.Texel.U = 0 }, ErrInvalidDimension},
		{"negative octaves", func(c *CityConfig) { c.Grid.Noise.Octaves = -1 }, ErrInvalidConfig},
		{"negative map scale", func(c *CityConfig) { c.MapScale = -1 }, ErrInvalidConfig},
		{"flat border", func(c *CityConfig) { c.Border.Height = 0 }, ErrInvalidDimension},
		{"border above floor", func(c *CityConfig) { c.Border.Depth = -1 }, ErrInvalidDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Border.Width = -1
	if err := cfg.Validate(); err != nil {
		t.Errorf("border with no thickness should be allowed, got %v", err)
	}
}
