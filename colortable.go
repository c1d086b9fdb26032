package giffy

import (
	"fmt"
	"image/color"
)

// ColorTable is an ordered palette of RGB triples, global or local. Its size
// is always a power of two in [2,256].
type ColorTable []color.RGBA

// readColorTable reads 3*2^(sizeExp+1) bytes of consecutive RGB triples,
// sizeExp being the raw 3-bit size field from the declaring descriptor.
func (d *Decoder) readColorTable(sizeExp byte) (ColorTable, error) {
	n := 1 << (sizeExp + 1)
	if err := readFull(d.r, d.tmp[:3*n]); err != nil {
		return nil, fmt.Errorf("giffy: reading color table: %w", errShortTable(err))
	}
	table := make(ColorTable, n)
	for i := range table {
		table[i] = color.RGBA{d.tmp[3*i], d.tmp[3*i+1], d.tmp[3*i+2], 0xFF}
	}
	return table, nil
}

func errShortTable(err error) error {
	if err == ErrUnexpectedEOF {
		return ErrCorruptColorTable
	}
	return err
}

// at resolves a pixel index against the table. Indices beyond the table are
// corruption in the frame being decoded.
func (t ColorTable) at(i uint8) (color.RGBA, error) {
	if int(i) >= len(t) {
		return color.RGBA{}, fmt.Errorf("giffy: pixel index %d outside %d-color table: %w", i, len(t), ErrCorruptColorTable)
	}
	return t[i], nil
}

// Palette converts the table to a color.Palette for use with the standard
// image packages.
func (t ColorTable) Palette() color.Palette {
	p := make(color.Palette, len(t))
	for i, c := range t {
		p[i] = c
	}
	return p
}
