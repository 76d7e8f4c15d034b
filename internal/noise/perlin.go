// Package noise provides seeded, deterministic coherent noise.
package noise

import "math"

// Perlin is 2D Perlin noise over a seeded permutation table.
type Perlin struct {
	perm [512]int
}

// NewPerlin creates a Perlin noise generator from a seed.
// The same seed always gives the same field.
func NewPerlin(seed int64) *Perlin {
	p := &Perlin{}

	var base [256]int
	for i := range base {
		base[i] = i
	}

	// Fisher-Yates, driven by a 64 bit LCG so we don't touch math/rand state
	s := uint64(seed)
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s >> 33) % uint64(i+1))
		base[i], base[j] = base[j], base[i]
	}

	for i := 0; i < 256; i++ {
		p.perm[i] = base[i]
		p.perm[i+256] = base[i]
	}
	return p
}

// fade is the smootherstep 6t^5 - 15t^4 + 10t^3
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad returns the dot product of one of four diagonal gradients with (x, y)
func grad(hash int, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

// Signed returns noise at (x, y) in roughly [-1, 1]; 0 at every lattice point.
func (p *Perlin) Signed(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255

	xf := x - fx
	yf := y - fy

	u := fade(xf)
	v := fade(yf)

	aa := p.perm[p.perm[xi]+yi]
	ab := p.perm[p.perm[xi]+yi+1]
	ba := p.perm[p.perm[xi+1]+yi]
	bb := p.perm[p.perm[xi+1]+yi+1]

	x1 := lerp(u, grad(aa, xf, yf), grad(ba, xf-1, yf))
	x2 := lerp(u, grad(ab, xf, yf-1), grad(bb, xf-1, yf-1))
	return lerp(v, x1, x2)
}

// Noise2D returns noise at (x, y) mapped into [0, 1].
func (p *Perlin) Noise2D(x, y float64) float64 {
	return unit(p.Signed(x, y))
}

// Fractal sums octaves of Perlin noise (fractal Brownian motion).
type Fractal struct {
	Perlin *Perlin

	// Octaves to sum, < 2 is plain Perlin
	Octaves int

	// Persistence is the amplitude multiplier per octave, Lacunarity the
	// frequency multiplier.
	Persistence float64
	Lacunarity  float64
}

// NewFractal returns fractal noise for the given seed.
func NewFractal(seed int64, octaves int, persistence, lacunarity float64) *Fractal {
	return &Fractal{
		Perlin:      NewPerlin(seed),
		Octaves:     octaves,
		Persistence: persistence,
		Lacunarity:  lacunarity,
	}
}

// Noise2D returns the octave sum at (x, y), normalised into [0, 1].
func (f *Fractal) Noise2D(x, y float64) float64 {
	if f.Octaves < 2 {
		return f.Perlin.Noise2D(x, y)
	}

	total := 0.0
	frequency := 1.0
	amplitude := 1.0
	maxAmplitude := 0.0

	for i := 0; i < f.Octaves; i++ {
		total += f.Perlin.Signed(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= f.Persistence
		frequency *= f.Lacunarity
	}
	if maxAmplitude == 0 {
		return 0.5
	}

	return unit(total / maxAmplitude)
}

// unit maps [-1,1] to [0,1], clamping the odd overshoot
func unit(v float64) float64 {
	v = (v + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
