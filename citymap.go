package citymesh

import (
	"image"
	"image/color"
	"math"

	"github.com/voidshard/citymesh/internal/encoding"

	"github.com/boljen/go-bitmap"
	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"
)

const (
	// bit numbers for our bitmap
	bitFloor    = 0
	bitBorder   = 1
	bitBuilding = 2
	bitOverlap  = 3

	// world units of empty space drawn around the city
	mapMargin = 1
)

// CityMap is a top down graphical representation of a City.
// Image x runs along world x, image y along world z.
type CityMap interface {
	// Save as custom file in a format defined by the library
	Save(fpath string) error

	// SaveAdv saves as an image with the given color scheme
	SaveAdv(fpath string, scheme *ColourScheme) error

	// CustomImage returns an image with the given color scheme
	CustomImage(scheme *ColourScheme) (image.Image, error)

	// CellAt returns the index of the building at x,y or -1 if there
	// isn't one. Where buildings overlap the lowest index wins.
	CellAt(x, y int) (int, error)

	IsFloor(x, y int) bool
	IsBorder(x, y int) bool

	// IsOverlap returns if more than one building covers x,y
	IsOverlap(x, y int) bool

	// ToWorld returns the world (x, z) at the centre of pixel x,y
	ToWorld(x, y int) (float64, float64)

	// ToPixel returns the pixel containing world (x, z)
	ToPixel(x, z float64) (int, int)
}

// imageMap is a particular implementation of CityMap using a RGBA64
type imageMap struct {
	// Map is an RGBA64 image where each pixel of 64 bits is split via
	//
	// R [16 bits]
	//   16-9 [8 bits] -> bitmap (true if set, false if not)
	//       bit 0 -> isFloor
	//       bit 1 -> isBorder
	//       bit 2 -> isBuilding
	//       bit 3 -> isOverlap
	//       bit 4-7 -> unused
	//    8-1 [8 bits] -> material + 1 (0 if none)
	// G [16 bits]
	// B [16 bits]
	//   32-1 [32 bits] -> building index + 1, G holds the significant bits
	// A [16 bits]
	//   always opaque, so the png round trips
	//
	im *image.RGBA64

	// world co-ords of the top left pixel corner & pixels per world unit
	origin r2.Point
	scale  float64

	// per building height, for colouring
	heights    []float64
	minH, maxH float64
	materials  []string
}

// ColourScheme defines how various features in a city should be coloured.
// Buildings are coloured by material if the material is in Materials,
// otherwise by height from Low (shortest) to High (tallest).
type ColourScheme struct {
	Background color.Color
	Floor      color.Color
	Border     color.Color
	Overlaps   color.Color
	Low        color.Color
	High       color.Color
	Materials  map[string]color.Color
}

// DefaultScheme returns a reasonable default ColourScheme.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Background: colornames.White,
		Floor:      colornames.Lightgray,
		Border:     colornames.Dimgray,
		Overlaps:   colornames.Crimson,
		Low:        colornames.Lightsteelblue,
		High:       colornames.Midnightblue,
		Materials:  map[string]color.Color{},
	}
}

// Save the CityMap as is to disk
func (c *imageMap) Save(fpath string) error {
	return savePNG(fpath, c.im)
}

// CustomImage returns the CityMap coloured with the given Scheme
func (c *imageMap) CustomImage(scheme *ColourScheme) (image.Image, error) {
	if scheme == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil colour scheme")
	}

	bnds := c.im.Bounds()
	im := image.NewRGBA(bnds)

	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			col := c.colourAt(dx, dy, scheme)
			if col != nil {
				im.Set(dx, dy, col)
			}
		}
	}

	return im, nil
}

// colourAt picks the scheme colour for a pixel, nil if it should be left
// transparent
func (c *imageMap) colourAt(x, y int, scheme *ColourScheme) color.Color {
	bm := c.getBM(x, y)

	if bm.Get(bitOverlap) && scheme.Overlaps != nil {
		return scheme.Overlaps
	}
	if bm.Get(bitBuilding) {
		idx, _ := c.CellAt(x, y)
		if mat := c.materialAt(x, y); mat >= 0 && mat < len(c.materials) {
			col, ok := scheme.Materials[c.materials[mat]]
			if ok {
				return col
			}
		}
		if idx >= 0 && idx < len(c.heights) {
			return c.heightColour(c.heights[idx], scheme)
		}
	}
	if bm.Get(bitBorder) {
		return scheme.Border
	}
	if bm.Get(bitFloor) {
		return scheme.Floor
	}
	return scheme.Background
}

// heightColour blends Low -> High by where h sits between the shortest &
// tallest buildings
func (c *imageMap) heightColour(h float64, scheme *ColourScheme) color.Color {
	if scheme.Low == nil || scheme.High == nil {
		return nil
	}
	t := 0.5
	if c.maxH > c.minH {
		t = clamp01((h - c.minH) / (c.maxH - c.minH))
	}

	lr, lg, lb, la := scheme.Low.RGBA()
	hr, hg, hb, ha := scheme.High.RGBA()
	mix := func(a, b uint32) uint16 {
		return uint16(math.Round(lerpf(t, float64(a), float64(b))))
	}
	return color.RGBA64{R: mix(lr, hr), G: mix(lg, hg), B: mix(lb, hb), A: mix(la, ha)}
}

// SaveAdv essentially saves the CityMap using the given scheme to disk.
// Essentially sugar around "CustomImage()" followed by writing out a PNG.
func (c *imageMap) SaveAdv(fpath string, scheme *ColourScheme) error {
	im, err := c.CustomImage(scheme)
	if err != nil {
		return err
	}
	ctx := gg.NewContextForRGBA(im.(*image.RGBA))
	return ctx.SavePNG(fpath)
}

// CellAt returns the building index at x,y; -1 indicates no building.
func (c *imageMap) CellAt(x, y int) (int, error) {
	if c.isOutOfBounds(x, y) {
		return -1, errors.Wrapf(ErrIndexOutOfRange, "(%d,%d) is out of bounds", x, y)
	}

	v := c.im.RGBA64At(x, y)
	return encoding.UnpackIndex(v.G, v.B), nil
}

// materialAt returns the material index at x,y or -1
func (c *imageMap) materialAt(x, y int) int {
	v := c.im.RGBA64At(x, y)
	_, mat := encoding.Split16(v.R)
	return int(mat) - 1
}

// IsFloor returns if x,y is on the city floor
func (c *imageMap) IsFloor(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitFloor)
}

// IsBorder returns if x,y is under the border wall
func (c *imageMap) IsBorder(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitBorder)
}

// IsOverlap returns if x,y is covered by more than one building
func (c *imageMap) IsOverlap(x, y int) bool {
	if c.isOutOfBounds(x, y) {
		return false
	}
	return c.getBM(x, y).Get(bitOverlap)
}

// ToWorld returns the world x,z at the centre of pixel x,y
func (c *imageMap) ToWorld(x, y int) (float64, float64) {
	return c.origin.X + (float64(x)+0.5)/c.scale, c.origin.Y + (float64(y)+0.5)/c.scale
}

// ToPixel returns the pixel containing world x,z
func (c *imageMap) ToPixel(x, z float64) (int, int) {
	return int(math.Floor((x - c.origin.X) * c.scale)), int(math.Floor((z - c.origin.Y) * c.scale))
}

// pixelRect returns the pixels covered by a world rect, clipped to the map
func (c *imageMap) pixelRect(r r2.Rect) image.Rectangle {
	x0, y0 := c.ToPixel(r.X.Lo, r.Y.Lo)
	x1 := int(math.Ceil((r.X.Hi - c.origin.X) * c.scale))
	y1 := int(math.Ceil((r.Y.Hi - c.origin.Y) * c.scale))
	return image.Rect(x0, y0, x1, y1).Intersect(c.im.Bounds())
}

// setBuilding marks every pixel under a building footprint
func (c *imageMap) setBuilding(b *Cell) {
	hi, lo := encoding.PackIndex(b.Index)

	mat := uint8(0)
	if b.Material >= 0 && b.Material < math.MaxUint8 {
		mat = uint8(b.Material + 1)
	}

	area := c.pixelRect(b.Footprint())
	for dy := area.Min.Y; dy < area.Max.Y; dy++ {
		for dx := area.Min.X; dx < area.Max.X; dx++ {
			bm := c.getBM(dx, dy)
			if bm.Get(bitBuilding) {
				// first (lowest index) building keeps the pixel
				bm.Set(bitOverlap, true)
				c.setBM(dx, dy, bm)
				continue
			}
			bm.Set(bitBuilding, true)

			v := c.im.RGBA64At(dx, dy)
			v.R = encoding.Merge8(encoding.FromBytes8(bm.Data(true)), mat)
			v.G = hi
			v.B = lo
			c.im.SetRGBA64(dx, dy, v)
		}
	}
}

// setBM sets the 8 bit bitmap at x,y
func (c *imageMap) setBM(x, y int, bm bitmap.Bitmap) {
	num := encoding.FromBytes8(bm.Data(true))

	current := c.im.RGBA64At(x, y)
	_, mat := encoding.Split16(current.R)
	current.R = encoding.Merge8(num, mat)

	c.im.SetRGBA64(x, y, current)
}

// getBM gets the 8 bit bitmap at x,y
func (c *imageMap) getBM(x, y int) bitmap.Bitmap {
	current := c.im.RGBA64At(x, y)

	bmdata, _ := encoding.Split16(current.R)
	data := encoding.ToBytes8(bmdata)
	return bitmap.Bitmap(data)
}

// isOutOfBounds determines if x,y is outside of the image area
func (c *imageMap) isOutOfBounds(x, y int) bool {
	return !image.Pt(x, y).In(c.im.Bounds())
}

// drawGround paints the floor & border with gg then copies the result into
// our bitmap. Shapes are far easier to get right with a drawing lib,
// especially thick strokes.
func (c *imageMap) drawGround(floor *r2.Rect, border *FrameDimensions) {
	bnds := c.im.Bounds()
	ctx := gg.NewContext(bnds.Dx(), bnds.Dy())
	ctx.SetRGBA(0, 0, 0, 0)
	ctx.Clear()

	if floor != nil {
		c.drawRect(ctx, *floor)
		ctx.SetColor(color.RGBA{255, 0, 0, 255})
		ctx.Fill()
	}

	if border != nil {
		// stroke down the middle of the wall top
		ow := math.Max(border.OuterWidth, 0)
		mid := r2.RectFromCenterSize(
			r2.Point{},
			r2.Point{X: border.Inner.Width + ow, Y: border.Inner.Depth + ow},
		)
		c.drawRect(ctx, mid)
		ctx.SetColor(color.RGBA{0, 0, 255, 255})
		ctx.SetLineWidth(math.Max(ow*c.scale, 1))
		ctx.Stroke()
	}

	temp := ctx.Image()
	for dy := bnds.Min.Y; dy < bnds.Max.Y; dy++ {
		for dx := bnds.Min.X; dx < bnds.Max.X; dx++ {
			r, _, b, _ := temp.At(dx, dy).RGBA()
			r = r >> 8
			b = b >> 8

			bm := bitmap.New(8)
			if b >= 128 {
				bm.Set(bitBorder, true)
			} else if r >= 128 {
				bm.Set(bitFloor, true)
			}
			c.setBM(dx, dy, bm)
		}
	}
}

// drawRect adds a world rect to the current gg path
func (c *imageMap) drawRect(ctx *gg.Context, r r2.Rect) {
	x, y := (r.X.Lo-c.origin.X)*c.scale, (r.Y.Lo-c.origin.Y)*c.scale
	ctx.DrawRectangle(x, y, r.X.Length()*c.scale, r.Y.Length()*c.scale)
}

// mapArea returns the world area (x,z) a map of the city should cover
func (c *City) mapArea() (r2.Rect, *r2.Rect, *FrameDimensions) {
	area := c.grid.Bounds()

	var floor *r2.Rect
	if f, ok := c.FloorSize(); ok {
		rect := r2.RectFromCenterSize(r2.Point{}, r2.Point{X: f.X, Y: f.Z})
		floor = &rect
		area = area.Union(rect)
	}

	var border *FrameDimensions
	if c.cfg.Border != nil {
		dims := c.cfg.Border.frame(c.grid.Config())
		border = &dims
		ow := math.Max(dims.OuterWidth, 0)
		area = area.Union(r2.RectFromCenterSize(
			r2.Point{},
			r2.Point{X: dims.Inner.Width + 2*ow, Y: dims.Inner.Depth + 2*ow},
		))
	}

	return area.ExpandedByMargin(mapMargin), floor, border
}

// newMap draws a map of the city at the given pixels per world unit
func newMap(c *City, scale float64) *imageMap {
	if scale <= 0 {
		scale = DefaultMapScale
	}

	area, floor, border := c.mapArea()
	w := int(math.Max(math.Ceil(area.X.Length()*scale), 1))
	h := int(math.Max(math.Ceil(area.Y.Length()*scale), 1))

	im := image.NewRGBA64(image.Rect(0, 0, w, h))
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			im.SetRGBA64(dx, dy, color.RGBA64{A: 0xffff})
		}
	}

	m := &imageMap{
		im:        im,
		origin:    area.Lo(),
		scale:     scale,
		heights:   make([]float64, len(c.Buildings)),
		materials: c.cfg.Materials,
	}
	if c.Stats != nil {
		m.minH, m.maxH = c.Stats.MinHeight, c.Stats.MaxHeight
	}

	m.drawGround(floor, border)
	for i, b := range c.Buildings {
		m.heights[i] = b.Size.Y
		m.setBuilding(b)
	}

	return m
}
