package giffy

import "fmt"

const (
	maxCodeWidth = 12
	maxNumCodes  = 1 << maxCodeWidth

	invalidCode = 0xFFFF
)

// decompressLZW expands the flattened image data for one frame into literal
// pixel indices, reading LSB-first codes of increasing width from the buffer.
//
// The dictionary is a preallocated prefix/suffix arena indexed by code value:
// entry i expands to the expansion of prefix[i] followed by suffix[i], with
// codes below the clear code standing for themselves. The code width grows by
// one bit immediately after entry (1<<width)-1 is assigned, before the next
// code is read, and is capped at 12 bits; once the dictionary holds 4096
// entries no further entries are added but decoding continues.
//
// maxPixels bounds the output at the frame's declared area. A stream coding
// more pixels than that stops early and reports excess=true so the caller can
// decide between tolerating and rejecting the mismatch.
func decompressLZW(data []byte, minCodeSize byte, maxPixels int) (pix []uint8, excess bool, err error) {
	if minCodeSize < 2 || minCodeSize > 8 {
		return nil, false, fmt.Errorf("giffy: minimum code size %d out of range: %w", minCodeSize, ErrCorruptLZW)
	}

	var (
		prefix [maxNumCodes]uint16
		suffix [maxNumCodes]uint8
		buf    [maxNumCodes + 1]uint8 // scratch for a single expansion
	)

	clear := uint16(1) << minCodeSize
	eoi := clear + 1
	width := uint(minCodeSize) + 1
	overflow := uint16(1) << width
	hi := eoi // index the next dictionary entry will be assigned
	last := uint16(invalidCode)

	pix = make([]uint8, 0, maxPixels)

	var (
		bits  uint32
		nBits uint
		pos   int
	)

	for {
		for nBits < width {
			if pos >= len(data) {
				// Data ran out without an end-of-information code. Tolerated:
				// the frame area check picks up any shortfall.
				return pix, false, nil
			}
			bits |= uint32(data[pos]) << nBits
			pos++
			nBits += 8
		}
		code := uint16(bits) & (1<<width - 1)
		bits >>= width
		nBits -= width

		var (
			expansion []uint8
			first     uint8 // first literal of the expansion
		)
		switch {
		case code == clear:
			width = uint(minCodeSize) + 1
			overflow = uint16(1) << width
			hi = eoi
			last = invalidCode
			continue

		case code == eoi:
			// Any bytes left over after the end code are ignored.
			return pix, false, nil

		case code < clear:
			e := buf[len(buf)-1:]
			e[0] = uint8(code)
			expansion, first = e, uint8(code)

		case code <= hi:
			c, i := code, len(buf)-1
			if code == hi && last != invalidCode {
				// The code refers to the entry about to be created: the
				// previous expansion followed by its own first literal.
				c = last
				for c >= clear {
					c = prefix[c]
				}
				buf[i] = uint8(c)
				i--
				c = last
			}
			// Walk the prefix chain, writing the expansion back to front.
			for c >= clear {
				buf[i] = suffix[c]
				i--
				c = prefix[c]
			}
			buf[i] = uint8(c)
			expansion, first = buf[i:], uint8(c)

		default:
			return nil, false, fmt.Errorf("giffy: code %d references unassigned dictionary entry: %w", code, ErrCorruptLZW)
		}

		if rem := maxPixels - len(pix); len(expansion) > rem {
			pix = append(pix, expansion[:rem]...)
			return pix, true, nil
		}
		pix = append(pix, expansion...)

		if last != invalidCode {
			prefix[hi] = last
			suffix[hi] = first
		}
		last = code
		hi++
		if hi >= overflow {
			if width == maxCodeWidth {
				// Dictionary is full. Stop assigning entries; existing codes
				// keep decoding at 12 bits.
				last = invalidCode
				hi--
			} else {
				width++
				overflow <<= 1
			}
		}
	}
}
