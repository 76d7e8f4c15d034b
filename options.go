package citymesh

import (
	"math/rand"

	"go.uber.org/zap"
)

// Option tweaks how a Grid or City is built.
type Option func(*options)

type options struct {
	log     *zap.Logger
	rng     *rand.Rand
	spawner Spawner
	palette int
}

// WithLogger sets the logger (by default nothing is logged).
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithRand sets the random source used for footprints & materials.
// By default one is seeded from the config Seed (or the clock).
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithSpawner sets a Spawner to be told about cells being added / removed.
// Only used by City.
func WithSpawner(s Spawner) Option {
	return func(o *options) {
		o.spawner = s
	}
}

// withPalette sets the number of materials a grid picks from
func withPalette(n int) Option {
	return func(o *options) {
		o.palette = n
	}
}

// newOptions applies opts over the defaults
func newOptions(opts []Option) *options {
	o := &options{}
	for _, fn := range opts {
		fn(o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}
