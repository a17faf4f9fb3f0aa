package render

import (
	"strings"
	"testing"

	"github.com/leterax/chunkworld/pkg/buffers"
	"github.com/leterax/chunkworld/pkg/game"
)

func TestHUDTextDraw(t *testing.T) {
	hud, err := NewHUDText()
	if err != nil {
		t.Fatal(err)
	}
	if err := hud.Draw([]string{"chunks: 25 active"}); err != nil {
		t.Fatal(err)
	}

	// the background is translucent black; glyph pixels are brighter
	lit := 0
	canvas := hud.Canvas()
	for i := 0; i < len(canvas.Pix); i += 4 {
		if canvas.Pix[i] > 128 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("no glyph pixels drawn")
	}

	// redrawing with nothing clears the text
	if err := hud.Draw(nil); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(canvas.Pix); i += 4 {
		if canvas.Pix[i] != 0 || canvas.Pix[i+3] != 96 {
			t.Fatalf("pixel %d = %v after clearing", i/4, canvas.Pix[i:i+4])
		}
	}
}

func TestHUDTextDropsOverflow(t *testing.T) {
	hud, err := NewHUDText()
	if err != nil {
		t.Fatal(err)
	}
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "line"
	}
	if err := hud.Draw(lines); err != nil {
		t.Errorf("overflowing lines should be dropped, got %v", err)
	}
}

func TestStatusLines(t *testing.T) {
	lines := statusLines(
		game.Stats{Active: 25, Visible: 25, Archived: 2},
		buffers.Stats{VertexUsed: 4 << 10, VertexFree: 60 << 10, VertexFragments: 3},
		0.125,
	)
	if len(lines) != 5 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "25 active") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[2], "4 KiB used") || !strings.Contains(lines[2], "3 fragments") {
		t.Errorf("line 2 = %q", lines[2])
	}
	if !strings.Contains(lines[4], "0.125") {
		t.Errorf("line 4 = %q", lines[4])
	}
}
