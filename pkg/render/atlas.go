package render

import (
	"image"
	"image/color"
)

// atlasCellPixels is the edge length of one atlas cell in pixels
const atlasCellPixels = 16

// paletteColors assigns a flat colour to each atlas cell used by the default catalog
var paletteColors = map[int]color.RGBA{
	0: {R: 125, G: 125, B: 125, A: 255}, // stone
	1: {R: 134, G: 96, B: 67, A: 255},   // dirt
	2: {R: 110, G: 120, B: 60, A: 255},  // grass side
	7: {R: 95, G: 159, B: 53, A: 255},   // grass top
	9: {R: 40, G: 40, B: 45, A: 255},    // bedrock
}

// missingColor fills cells no voxel type is expected to reference
var missingColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}

// NewPaletteAtlas builds a square atlas of width x width cells, each filled
// with one colour. Cell i sits at column i%width, row i/width, matching the
// UV layout the mesher emits.
func NewPaletteAtlas(width int) *image.RGBA {
	size := width * atlasCellPixels
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for cell := 0; cell < width*width; cell++ {
		c, ok := paletteColors[cell]
		if !ok {
			c = missingColor
		}
		x0 := (cell % width) * atlasCellPixels
		y0 := (cell / width) * atlasCellPixels
		for y := y0; y < y0+atlasCellPixels; y++ {
			for x := x0; x < x0+atlasCellPixels; x++ {
				img.SetRGBA(x, y, shade(c, x-x0, y-y0))
			}
		}
	}
	return img
}

// shade darkens the cell border so individual voxels stay readable
func shade(c color.RGBA, x, y int) color.RGBA {
	if x == 0 || y == 0 || x == atlasCellPixels-1 || y == atlasCellPixels-1 {
		return color.RGBA{R: c.R * 3 / 4, G: c.G * 3 / 4, B: c.B * 3 / 4, A: c.A}
	}
	return c
}
