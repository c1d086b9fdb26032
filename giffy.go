// Package giffy implements a GIF image decoder.
//
// The decoder validates the GIF87a/GIF89a container structure, reverses the
// LZW entropy coding applied to each image's pixel stream and reassembles
// fully composed frames together with their animation metadata (delay,
// disposal method, transparency). Disposal-driven compositing across frames
// is a presentation concern and is kept out of the decode path; RenderFrames
// applies it on top of a decoded Image for callers that want playable
// canvases.
//
// The GIF specification is at https://www.w3.org/Graphics/GIF/spec-gif89a.txt.
package giffy

import (
	"image"
	"io"
)

// Disposal methods, as stored in a graphic control extension.
const (
	DisposalUnspecified = 0x00
	DisposalNone        = 0x01
	DisposalBackground  = 0x02
	DisposalPrevious    = 0x03
)

type (
	// Header holds the GIF signature and the logical screen descriptor,
	// parsed exactly once at the start of the stream.
	Header struct {
		Version          string     // either GIF87a or GIF89a
		Width            int        // canvas width in pixels
		Height           int        // canvas height in pixels
		ColorResolution  uint8      // bits of color resolution, minus one
		Sorted           bool       // global color table is sorted by importance
		GlobalColorTable ColorTable // nil when the stream declares no global table
		BackgroundIndex  byte       // index into the global color table
		PixelAspectRatio byte       // raw aspect ratio field, normally 0
	}

	// GraphicControl carries the per-frame animation metadata of a graphic
	// control extension. It applies to exactly the next image descriptor
	// encountered and is consumed when that frame is decoded.
	GraphicControl struct {
		Disposal         byte   // one of the Disposal constants
		UserInput        bool
		HasTransparency  bool
		TransparentIndex byte
		Delay            uint16 // delay time in 100ths of a second
	}

	// Frame is one fully decoded and composited image. Image holds resolved
	// RGBA pixels with its rectangle positioned at the frame's offset within
	// the canvas; transparent pixels have zero alpha.
	Frame struct {
		Image            *image.NRGBA
		Delay            uint16 // delay time in 100ths of a second
		Disposal         byte   // one of the Disposal constants
		UserInput        bool
		HasTransparency  bool
		TransparentIndex byte
		Interlaced       bool
		LocalColorTable  ColorTable // nil when the frame used the global table
	}

	// Image is the complete decode result: canvas metadata plus the ordered
	// frames. It is returned complete or not at all.
	Image struct {
		Width            int
		Height           int
		LoopCount        int // Netscape loop count, -1 when not present
		BackgroundIndex  byte
		GlobalColorTable ColorTable
		Frames           []*Frame
	}

	PlainText struct {
		TextGridLeftPosition     uint16
		TextGridTopPosition      uint16
		TextGridWidth            uint16
		TextGridHeight           uint16
		CharacterCellWidth       byte
		CharacterCellHeight      byte
		TextForegroundColorIndex byte
		TextBackgroundColorIndex byte
		Strings                  []string // text, up to 255 ASCII characters per string
		Delay                    uint16   // delay time in 100ths of a second
		Disposal                 byte     // one of the Disposal constants
	}
	Comment struct {
		Strings []string // comments, up to 255 ASCII characters per string
	}
	ApplicationNetscape struct {
		LoopCount int      // number of times an animation will be restarted
		SubBlocks [][]byte // optional sub-blocks of arbitrary data
	}
	UnknownApplication struct {
		Identifier string   // identifier string of the application
		SubBlocks  [][]byte // optional sub-blocks of arbitrary data
	}
	UnknownExtension struct {
		Label     byte
		SubBlocks [][]byte // optional sub-blocks of arbitrary data
	}
)

// Decode reads a GIF from r and returns the decoded image with all of its
// frames.
func Decode(r io.Reader, opts ...Option) (*Image, error) {
	return NewDecoder(r, opts...).Decode()
}

// DecodeFirst reads a GIF from r and returns its first frame.
func DecodeFirst(r io.Reader, opts ...Option) (*Frame, error) {
	return NewDecoder(r, opts...).DecodeFirst()
}

// DecodeConfig returns the canvas dimensions and global color table of a GIF
// without decoding any image data.
func DecodeConfig(r io.Reader) (*Header, error) {
	return NewDecoder(r).ReadHeader()
}
