package citymesh

// Noise tells the grid how tall things should be.
// Implementations must be deterministic - the same (x, z) always gives
// the same value - and return values in [0, 1].
// Coherent noise (Perlin or similar) gives the most natural looking skylines.
type Noise interface {
	Noise2D(x, z float64) float64
}

// Spawner is told when cells come & go, so a host can create / destroy
// whatever object(s) it wants to represent a building.
//
// Spawn is called once a new cell has been laid out. Its solid is nil if the
// building came out flat (no height).
// Despawn is called for cells truncated off the end of the grid, in index
// order, before their solid is dropped.
type Spawner interface {
	Spawn(c *Cell)
	Despawn(c *Cell)
}
