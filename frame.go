package giffy

import (
	"fmt"
	"image"
	"image/color"
)

type frameLayout struct {
	left, top     int
	width, height int
	interlaced    bool
}

// interlacePass defines one pass of the interlace row schedule.
type interlacePass struct {
	skip, start int
}

// Interlaced frames store rows in four passes: every 8th row from 0, every
// 8th from 4, every 4th from 2, every 2nd from 1.
var interlacing = []interlacePass{
	{8, 0},
	{8, 4},
	{4, 2},
	{2, 1},
}

// composeFrame maps a decompressed index stream onto an RGBA frame buffer,
// honoring the interlace row order and the active color table, and attaches
// the metadata of the consumed control extension. A pixel count that does not
// match the frame area is fatal in strict mode; otherwise missing pixels are
// padded with the transparent or background value and excess was already
// truncated by the decompressor.
func composeFrame(layout frameLayout, table ColorTable, gc *GraphicControl, pix []uint8, excess, strict bool, backgroundIndex byte) (*Frame, error) {
	area := layout.width * layout.height
	if strict && (excess || len(pix) != area) {
		return nil, fmt.Errorf("%w: got %d pixels, frame is %dx%d",
			ErrDimensionMismatch, len(pix), layout.width, layout.height)
	}
	if len(table) == 0 && area > 0 {
		return nil, fmt.Errorf("giffy: frame has no color table")
	}

	transparent := false
	var transparentIndex byte
	if gc != nil && gc.HasTransparency {
		transparent = true
		transparentIndex = gc.TransparentIndex
	}

	// Pad value for streams that came up short.
	pad := color.NRGBA{}
	if !transparent && int(backgroundIndex) < len(table) {
		c := table[backgroundIndex]
		pad = color.NRGBA{c.R, c.G, c.B, 0xFF}
	}

	img := image.NewNRGBA(image.Rect(layout.left, layout.top,
		layout.left+layout.width, layout.top+layout.height))

	for src, y := range rowOrder(layout) {
		off := img.PixOffset(layout.left, layout.top+y)
		for x := 0; x < layout.width; x++ {
			var c color.NRGBA
			if i := src*layout.width + x; i >= len(pix) {
				c = pad
			} else if idx := pix[i]; transparent && idx == transparentIndex {
				c = color.NRGBA{}
			} else {
				rgba, err := table.at(idx)
				if err != nil {
					return nil, err
				}
				c = color.NRGBA{rgba.R, rgba.G, rgba.B, 0xFF}
			}
			img.Pix[off+0] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = c.A
			off += 4
		}
	}

	f := &Frame{
		Image:      img,
		Interlaced: layout.interlaced,
	}
	if gc != nil {
		f.Delay = gc.Delay
		f.Disposal = gc.Disposal
		f.UserInput = gc.UserInput
		f.HasTransparency = gc.HasTransparency
		f.TransparentIndex = gc.TransparentIndex
	}
	return f, nil
}

// rowOrder returns the frame-local y coordinate each sequential source row
// lands on. Interlaced frames must be buffered whole before the four passes
// can be applied, which composeFrame has already done by this point.
func rowOrder(layout frameLayout) []int {
	rows := make([]int, 0, layout.height)
	if !layout.interlaced {
		for y := 0; y < layout.height; y++ {
			rows = append(rows, y)
		}
		return rows
	}
	for _, pass := range interlacing {
		for y := pass.start; y < layout.height; y += pass.skip {
			rows = append(rows, y)
		}
	}
	return rows
}
