package giffy

import (
	"bytes"
	"compress/lzw"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// The compressed stream from appendix F of the GIF89a specification: a 10x10
// four-color image with a minimum code size of 2.
var canonicalStream = []byte{
	140, 45, 153, 135, 42, 28, 220, 51, 160, 2, 117,
	236, 149, 250, 168, 222, 96, 140, 4, 145, 76, 1,
}

var canonicalPixels = []string{
	"1111122222",
	"1111122222",
	"1111122222",
	"1110000222",
	"1110000222",
	"2220000111",
	"2220000111",
	"2222211111",
	"2222211111",
	"2222211111",
}

func TestDecompressCanonicalStream(t *testing.T) {
	var want []uint8
	for _, row := range canonicalPixels {
		for _, c := range row {
			want = append(want, uint8(c-'0'))
		}
	}

	got, excess, err := decompressLZW(canonicalStream, 2, 100)
	if err != nil {
		t.Fatal("decompressLZW:", err)
	}
	if excess {
		t.Error("unexpected excess pixels")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompressRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for minCodeSize := 2; minCodeSize <= 8; minCodeSize++ {
		want := make([]uint8, 4000)
		for i := range want {
			want[i] = uint8(rng.Intn(1 << minCodeSize))
		}

		buf := &bytes.Buffer{}
		w := lzw.NewWriter(buf, lzw.LSB, minCodeSize)
		if _, err := w.Write(want); err != nil {
			t.Fatal("lzw.Writer:", err)
		}
		if err := w.Close(); err != nil {
			t.Fatal("lzw.Writer Close:", err)
		}

		got, excess, err := decompressLZW(buf.Bytes(), byte(minCodeSize), len(want))
		if err != nil {
			t.Fatalf("minCodeSize %d: decompressLZW: %v", minCodeSize, err)
		}
		if excess {
			t.Errorf("minCodeSize %d: unexpected excess pixels", minCodeSize)
		}
		if !bytes.Equal(want, got) {
			t.Errorf("minCodeSize %d: decoded pixels differ from input", minCodeSize)
		}
	}
}

// encodeWithoutClear is a reference GIF-LZW encoder that never emits a clear
// code: once the dictionary reaches 4096 entries it simply keeps coding with
// the entries it has. Used to check that the decoder keeps going at the
// dictionary cap instead of expecting a reset.
func encodeWithoutClear(pix []uint8, minCodeSize int) []byte {
	clear := 1 << minCodeSize
	eoi := clear + 1
	next := eoi + 1
	width := uint(minCodeSize) + 1

	dict := make(map[string]int, maxNumCodes)
	for i := 0; i < clear; i++ {
		dict[string([]byte{byte(i)})] = i
	}

	var (
		out   []byte
		bits  uint32
		nBits uint
	)
	emit := func(code int) {
		bits |= uint32(code) << nBits
		nBits += width
		for nBits >= 8 {
			out = append(out, byte(bits))
			bits >>= 8
			nBits -= 8
		}
	}

	cur := string(pix[:1])
	for _, b := range pix[1:] {
		cand := cur + string([]byte{b})
		if _, ok := dict[cand]; ok {
			cur = cand
			continue
		}
		emit(dict[cur])
		if next < maxNumCodes {
			dict[cand] = next
			next++
			// The width grows as soon as the newly assigned entry no longer
			// fits, mirroring the decoder's early change.
			if next-1 == 1<<width && width < maxCodeWidth {
				width++
			}
		}
		cur = string([]byte{b})
	}
	emit(dict[cur])
	emit(eoi)
	if nBits > 0 {
		out = append(out, byte(bits))
	}
	return out
}

func TestDecompressDictionaryCapWithoutClear(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	want := make([]uint8, 20000)
	for i := range want {
		want[i] = uint8(rng.Intn(256))
	}

	data := encodeWithoutClear(want, 8)
	got, excess, err := decompressLZW(data, 8, len(want))
	if err != nil {
		t.Fatal("decompressLZW:", err)
	}
	if excess {
		t.Error("unexpected excess pixels")
	}
	if !bytes.Equal(want, got) {
		t.Error("decoded pixels differ from input")
	}
}

func TestDecompressInvalidCode(t *testing.T) {
	// With a minimum code size of 2 the 3-bit codes are [4 7]: a clear code
	// followed by a code beyond every assigned entry.
	_, _, err := decompressLZW([]byte{0x3C}, 2, 100)
	if !errors.Is(err, ErrCorruptLZW) {
		t.Fatalf("got %v, want ErrCorruptLZW", err)
	}
}

func TestDecompressMinCodeSizeRange(t *testing.T) {
	for _, size := range []byte{0, 1, 9, 12} {
		if _, _, err := decompressLZW([]byte{0x00}, size, 100); !errors.Is(err, ErrCorruptLZW) {
			t.Errorf("minCodeSize %d: got %v, want ErrCorruptLZW", size, err)
		}
	}
}

func TestDecompressExcessPixels(t *testing.T) {
	data := literalLZW([]byte{1, 2, 3, 4, 5})
	pix, excess, err := decompressLZW(data, 7, 4)
	if err != nil {
		t.Fatal("decompressLZW:", err)
	}
	if !excess {
		t.Error("excess pixels not reported")
	}
	if diff := cmp.Diff([]uint8{1, 2, 3, 4}, pix); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestDecompressTruncatedData(t *testing.T) {
	// A stream ending mid-code is tolerated at this level; the frame area
	// check reports the shortfall.
	data := literalLZW([]byte{1, 2, 3})
	pix, excess, err := decompressLZW(data[:len(data)-2], 7, 100)
	if err != nil {
		t.Fatal("decompressLZW:", err)
	}
	if excess {
		t.Error("unexpected excess pixels")
	}
	if len(pix) >= 3 {
		t.Errorf("got %d pixels from a truncated stream, want fewer than 3", len(pix))
	}
}
