package giffy

import (
	"image"
	"image/color"
	"image/draw"
)

// RenderFrames composes the decoded frames onto a running canvas, applying
// each frame's disposal method, and returns one full canvas per frame in
// playback order. This is the animation-presentation step the decoder itself
// stays out of: Decode reports disposal metadata faithfully and RenderFrames
// acts on it.
func (m *Image) RenderFrames() []*image.NRGBA {
	bounds := image.Rect(0, 0, m.Width, m.Height)
	canvas := image.NewNRGBA(bounds)
	prev := image.NewNRGBA(bounds)
	bg := m.backgroundColor()

	out := make([]*image.NRGBA, 0, len(m.Frames))
	for _, f := range m.Frames {
		if f.Disposal == DisposalPrevious {
			copy(prev.Pix, canvas.Pix)
		}

		draw.Draw(canvas, f.Image.Rect, f.Image, f.Image.Rect.Min, draw.Over)

		snapshot := image.NewNRGBA(bounds)
		copy(snapshot.Pix, canvas.Pix)
		out = append(out, snapshot)

		switch f.Disposal {
		case DisposalBackground:
			draw.Draw(canvas, f.Image.Rect, &image.Uniform{C: bg}, image.Point{}, draw.Src)
		case DisposalPrevious:
			copy(canvas.Pix, prev.Pix)
		}
	}
	return out
}

func (m *Image) backgroundColor() color.Color {
	if int(m.BackgroundIndex) >= len(m.GlobalColorTable) {
		return color.Transparent
	}
	return m.GlobalColorTable[m.BackgroundIndex]
}
