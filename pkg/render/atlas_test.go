package render

import (
	"testing"
)

func TestPaletteAtlasLayout(t *testing.T) {
	img := NewPaletteAtlas(4)
	if got := img.Bounds().Dx(); got != 4*atlasCellPixels {
		t.Fatalf("width = %d", got)
	}

	// grass top is cell 7: column 3, row 1
	center := atlasCellPixels / 2
	got := img.RGBAAt(3*atlasCellPixels+center, 1*atlasCellPixels+center)
	if got != paletteColors[7] {
		t.Errorf("cell 7 = %v, want %v", got, paletteColors[7])
	}

	if got := img.RGBAAt(center, 3*atlasCellPixels+center); got != missingColor {
		t.Errorf("unused cell = %v, want %v", got, missingColor)
	}

	edge := img.RGBAAt(0, 0)
	if edge == paletteColors[0] {
		t.Error("cell border should be shaded")
	}
}
