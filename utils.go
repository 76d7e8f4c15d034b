package citymesh

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/unixpickle/model3d/model3d"
)

// absint returns |a|
func absint(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// lerpf linearly interpolates between a and b.
func lerpf(t, a, b float64) float64 {
	return a + t*(b-a)
}

// clamp01 keeps v within [0,1]
func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// horizontalDist is the distance between a & b ignoring y
func horizontalDist(a, b model3d.Coord3D) float64 {
	return math.Hypot(a.X-b.X, a.Z-b.Z)
}

// savePNG to disk
func savePNG(fpath string, in image.Image) error {
	buff := new(bytes.Buffer)
	err := png.Encode(buff, in)
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, buff.Bytes(), 0644)
}
