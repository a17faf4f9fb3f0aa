package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/leterax/chunkworld/pkg/buffers"
	"github.com/leterax/chunkworld/pkg/game"
)

// HUD canvas size in pixels
const (
	hudWidth    = 512
	hudHeight   = 128
	hudFontSize = 14
)

// HUDText rasterizes status lines onto an RGBA canvas that is uploaded as a
// texture and drawn over the top-left corner of the screen.
type HUDText struct {
	ctx        *freetype.Context
	canvas     *image.RGBA
	lineHeight int
}

// NewHUDText creates a canvas with the built-in Go font
func NewHUDText() (*HUDText, error) {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HUD font: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, hudWidth, hudHeight))
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(hudFontSize)
	ctx.SetDst(canvas)
	ctx.SetClip(canvas.Bounds())
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	return &HUDText{
		ctx:        ctx,
		canvas:     canvas,
		lineHeight: int(ctx.PointToFixed(hudFontSize*1.4) >> 6),
	}, nil
}

// Draw clears the canvas and renders one line per entry. Lines past the
// bottom of the canvas are dropped.
func (h *HUDText) Draw(lines []string) error {
	draw.Draw(h.canvas, h.canvas.Bounds(), &image.Uniform{C: color.RGBA{A: 96}}, image.Point{}, draw.Src)

	pt := freetype.Pt(6, h.lineHeight)
	for _, line := range lines {
		if pt.Y.Ceil() > hudHeight {
			break
		}
		if _, err := h.ctx.DrawString(line, pt); err != nil {
			return fmt.Errorf("failed to draw HUD line %q: %w", line, err)
		}
		pt.Y += h.ctx.PointToFixed(hudFontSize * 1.4)
	}
	return nil
}

// Canvas returns the rasterized image
func (h *HUDText) Canvas() *image.RGBA {
	return h.canvas
}

// statusLines formats the streamer and buffer counters shown on the HUD
func statusLines(ws game.Stats, bs buffers.Stats, archiveRatio float64) []string {
	return []string{
		fmt.Sprintf("chunks: %d active, %d visible, %d pending", ws.Active, ws.Visible, ws.PendingUploads),
		fmt.Sprintf("generated %d, restored %d, meshed %d, reclaimed %d", ws.Generated, ws.Restored, ws.Meshed, ws.Reclaimed),
		fmt.Sprintf("vertex: %d KiB used, %d KiB free, %d fragments", bs.VertexUsed>>10, bs.VertexFree>>10, bs.VertexFragments),
		fmt.Sprintf("index: %d KiB used, %d KiB free, %d fragments", bs.IndexUsed>>10, bs.IndexFree>>10, bs.IndexFragments),
		fmt.Sprintf("archive: %d grids, ratio %.3f", ws.Archived, archiveRatio),
	}
}
