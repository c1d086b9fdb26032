package giffy

import (
	"bytes"
	"image/color"
	"testing"
)

func TestRenderFramesDisposal(t *testing.T) {
	red := color.NRGBA{0xFF, 0x00, 0x00, 0xFF}
	blue := color.NRGBA{0x00, 0x00, 0xFF, 0xFF}

	// 2x1 canvas, background red. Frame 1 paints [red blue] and restores the
	// background; frame 2 paints blue over (0,0) and restores what it covered;
	// frame 3 paints blue over (1,0) and leaves it.
	data := newGIFStream().
		screen(2, 1, fColorTablePresent|0, 0).
		palette([3]byte{0xFF, 0x00, 0x00}, [3]byte{0x00, 0x00, 0xFF}).
		graphicControl(DisposalBackground<<2, 0, 0).
		imageDesc(0, 0, 2, 1, 0).
		imageData(7, literalLZW([]byte{0, 1})).
		graphicControl(DisposalPrevious<<2, 0, 0).
		imageDesc(0, 0, 1, 1, 0).
		imageData(7, literalLZW([]byte{1})).
		graphicControl(DisposalNone<<2, 0, 0).
		imageDesc(1, 0, 1, 1, 0).
		imageData(7, literalLZW([]byte{1})).
		trailer().
		bytes()

	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal("Decode:", err)
	}

	canvases := m.RenderFrames()
	if len(canvases) != 3 {
		t.Fatalf("got %d canvases, want 3", len(canvases))
	}

	want := [][2]color.NRGBA{
		{red, blue}, // frame 1 as painted
		{blue, red}, // background restored, then (0,0) overpainted
		{red, blue}, // previous restored, then (1,0) overpainted
	}
	for i, w := range want {
		for x, c := range w {
			if got := canvases[i].NRGBAAt(x, 0); got != c {
				t.Errorf("canvas %d: pixel (%d,0): got %v, want %v", i, x, got, c)
			}
		}
	}
}

func TestBackgroundColorOutOfRange(t *testing.T) {
	m := &Image{
		BackgroundIndex:  9,
		GlobalColorTable: ColorTable{{0, 0, 0, 0xFF}},
	}
	if _, _, _, a := m.backgroundColor().RGBA(); a != 0 {
		t.Errorf("out-of-range background not transparent, alpha %d", a)
	}
}
