package giffy

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"
)

func TestImageDataAcrossSubBlocks(t *testing.T) {
	// The same compressed stream as TestDecodeSolidFrame, split into a 2-byte
	// and a 1-byte sub-block. Flattening must erase the boundary.
	data := newGIFStream().
		screen(2, 2, fColorTablePresent|0, 0).
		palette([3]byte{0xFF, 0x00, 0x00}, [3]byte{0x00, 0x00, 0xFF}).
		imageDesc(0, 0, 2, 2, 0).
		raw(2). // minimum code size
		raw(2, 0x04, 0x00).
		raw(1, 0x05).
		raw(0).
		trailer().
		bytes()

	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal("Decode:", err)
	}
	if got := m.Frames[0].Image.NRGBAAt(1, 1); got != (color.NRGBA{0xFF, 0x00, 0x00, 0xFF}) {
		t.Errorf("pixel (1,1): got %v", got)
	}
}

func TestMaxImageDataBytes(t *testing.T) {
	stream := func() []byte {
		return newGIFStream().
			screen(2, 2, fColorTablePresent|2, 0).
			palette(grayscale8...).
			imageDesc(0, 0, 2, 2, 0).
			imageData(7, literalLZW([]byte{1, 2, 3, 4})). // 9 bytes of image data
			trailer().
			bytes()
	}

	if _, err := Decode(bytes.NewReader(stream())); err != nil {
		t.Fatal("Decode without limit:", err)
	}

	_, err := Decode(bytes.NewReader(stream()), WithMaxImageDataBytes(4))
	if err == nil || !strings.Contains(err.Error(), "byte limit") {
		t.Errorf("got %v, want byte limit error", err)
	}
}

func TestTruncatedSubBlock(t *testing.T) {
	// A comment extension whose sub-block promises 5 bytes but delivers 2.
	data := newGIFStream().
		screen(1, 1, 0, 0).
		raw(sExtension, eComment, 5, 'h', 'i').
		bytes()

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestMissingSubBlockTerminator(t *testing.T) {
	data := newGIFStream().
		screen(1, 1, 0, 0).
		raw(sExtension, eComment, 2, 'h', 'i').
		bytes()

	if _, err := Decode(bytes.NewReader(data)); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
}
