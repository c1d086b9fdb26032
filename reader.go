package giffy

import (
	"fmt"
	"io"
)

// Block introducers.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B
)

// Extension labels.
const (
	eText           = 0x01 // Plain Text
	eGraphicControl = 0xF9 // Graphic Control
	eComment        = 0xFE // Comment
	eApplication    = 0xFF // Application
)

// If the io.Reader does not also have ReadByte, the decoder introduces its
// own buffering.
type reader interface {
	io.Reader
	io.ByteReader
}

func readByte(r reader) (byte, error) {
	b, err := r.ReadByte()
	if err == io.EOF {
		return 0, ErrUnexpectedEOF
	}
	return b, err
}

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

func readUint16(b []uint8) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// readBlock reads one length-prefixed sub-block into d.tmp and returns its
// length, 0 meaning the terminator.
func (d *Decoder) readBlock() (int, error) {
	n, err := readByte(d.r)
	if n == 0 || err != nil {
		return 0, err
	}
	if err := readFull(d.r, d.tmp[:n]); err != nil {
		return 0, err
	}
	return int(n), nil
}

// readSubBlocks collects a sub-block sequence, one slice per block, for
// extension payloads that preserve block boundaries.
func (d *Decoder) readSubBlocks() ([][]byte, error) {
	var sb [][]byte
	for {
		if n, err := d.readBlock(); err != nil {
			return nil, err
		} else if n == 0 {
			return sb, nil
		} else {
			data := make([]byte, n)
			copy(data, d.tmp[:n])
			sb = append(sb, data)
		}
	}
}

// readFlattenedBlocks concatenates a sub-block sequence into one contiguous
// buffer, the form the LZW stage consumes. The accumulated size is capped by
// the decoder's MaxImageDataBytes option, if set.
func (d *Decoder) readFlattenedBlocks() ([]byte, error) {
	var buf []byte
	for {
		n, err := d.readBlock()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return buf, nil
		}
		if max := d.opts.MaxImageDataBytes; max > 0 && len(buf)+n > max {
			return nil, fmt.Errorf("giffy: image data exceeds %d byte limit", max)
		}
		buf = append(buf, d.tmp[:n]...)
	}
}

func (d *Decoder) readStrings() ([]string, error) {
	var strings []string
	for {
		if n, err := d.readBlock(); err != nil {
			return nil, err
		} else if n == 0 {
			return strings, nil
		} else {
			strings = append(strings, string(d.tmp[:n]))
		}
	}
}
