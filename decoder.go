package giffy

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	bst "github.com/mixcode/binarystruct"
)

// Screen descriptor and image descriptor flag masks.
const (
	fColorTablePresent = 1 << 7
	fColorResolution   = 7 << 4
	fSort              = 1 << 3
	fColorTableSize    = 7

	ifInterlace = 1 << 6

	gcDisposalMethod = 7 << 2
	gcUserInputSet   = 1 << 1
	gcTransparentSet = 1 << 0
)

// Options control decoder behavior outside the wire-format contract.
type Options struct {
	// Strict rejects frames whose decompressed pixel count does not match
	// the declared frame area. The default tolerates the mismatch by padding
	// or truncating, since many real-world encoders produce slightly
	// inconsistent streams.
	Strict bool

	// MaxImageDataBytes caps the flattened image data accumulated per frame.
	// Zero means no limit beyond available input.
	MaxImageDataBytes int
}

type Option func(*Options)

func WithStrict() Option {
	return func(o *Options) { o.Strict = true }
}

func WithMaxImageDataBytes(n int) Option {
	return func(o *Options) { o.MaxImageDataBytes = n }
}

// Decoder reads a GIF stream block by block. ReadHeader must be called
// first; ReadBlock then returns one typed block value per call until the
// trailer, reported as io.EOF. Decode drives the whole sequence and collects
// the result.
type Decoder struct {
	r    reader
	opts Options

	version          string
	width, height    int
	globalColorTable ColorTable
	backgroundIndex  byte

	loopCount int

	// pending holds the graphic control extension that applies to the next
	// image descriptor. Set on 0x21 0xF9, taken when the frame is decoded.
	pending *GraphicControl

	headerDone bool
	tmp        [1024]byte // scratch, large enough for a 256-color table
}

func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	r1, _ := r.(reader)
	if r1 == nil {
		r1 = bufio.NewReader(r)
	}
	d := &Decoder{r: r1, loopCount: -1}
	for _, o := range opts {
		o(&d.opts)
	}
	return d
}

// Decode parses the remainder of the stream and returns the complete decoded
// image. Any structural error discards partial results.
func (d *Decoder) Decode() (*Image, error) {
	hdr, err := d.ReadHeader()
	if err != nil {
		return nil, err
	}

	m := &Image{
		Width:            hdr.Width,
		Height:           hdr.Height,
		LoopCount:        -1,
		BackgroundIndex:  hdr.BackgroundIndex,
		GlobalColorTable: hdr.GlobalColorTable,
	}
	for {
		b, err := d.ReadBlock()
		if err == io.EOF {
			if len(m.Frames) == 0 {
				return nil, fmt.Errorf("giffy: missing image data")
			}
			return m, nil
		}
		if err != nil {
			return nil, err
		}
		switch b := b.(type) {
		case *ApplicationNetscape:
			m.LoopCount = b.LoopCount
		case *Frame:
			m.Frames = append(m.Frames, b)
		}
	}
}

// DecodeFirst parses the stream up to and including the first frame.
func (d *Decoder) DecodeFirst() (*Frame, error) {
	if _, err := d.ReadHeader(); err != nil {
		return nil, err
	}

	for {
		b, err := d.ReadBlock()
		if err == io.EOF {
			return nil, fmt.Errorf("giffy: missing image data")
		}
		if err != nil {
			return nil, err
		}
		if f, ok := b.(*Frame); ok {
			return f, nil
		}
	}
}

// ReadHeader parses the signature, the logical screen descriptor and the
// global color table, if declared.
func (d *Decoder) ReadHeader() (*Header, error) {
	if err := readFull(d.r, d.tmp[:13]); err != nil {
		return nil, fmt.Errorf("giffy: reading header: %w", err)
	}

	var screen struct {
		Signature     string `binary:"[6]byte"`
		Width, Height int    `binary:"uint16"`
		Flags         byte
		Background    byte
		AspectRatio   byte
	}
	if _, err := bst.Read(bytes.NewReader(d.tmp[:13]), bst.LittleEndian, &screen); err != nil {
		return nil, fmt.Errorf("giffy: reading screen descriptor: %w", err)
	}

	if screen.Signature != "GIF87a" && screen.Signature != "GIF89a" {
		return nil, fmt.Errorf("%w (signature %q)", ErrInvalidSignature, screen.Signature)
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		return nil, fmt.Errorf("giffy: invalid canvas size %dx%d", screen.Width, screen.Height)
	}

	hdr := &Header{
		Version:          screen.Signature,
		Width:            screen.Width,
		Height:           screen.Height,
		ColorResolution:  uint8(screen.Flags&fColorResolution) >> 4,
		Sorted:           screen.Flags&fSort != 0,
		BackgroundIndex:  screen.Background,
		PixelAspectRatio: screen.AspectRatio,
	}
	if screen.Flags&fColorTablePresent != 0 {
		table, err := d.readColorTable(screen.Flags & fColorTableSize)
		if err != nil {
			return nil, err
		}
		hdr.GlobalColorTable = table
	}

	d.version = hdr.Version
	d.width = hdr.Width
	d.height = hdr.Height
	d.globalColorTable = hdr.GlobalColorTable
	d.backgroundIndex = hdr.BackgroundIndex
	d.headerDone = true
	return hdr, nil
}

// ReadBlock returns the next block in the stream as one of *Frame,
// *PlainText, *Comment, *ApplicationNetscape, *UnknownApplication or
// *UnknownExtension. The trailer is reported as io.EOF. Graphic control
// extensions are absorbed into the frame they precede and are never returned
// directly.
func (d *Decoder) ReadBlock() (any, error) {
	if !d.headerDone {
		return nil, fmt.Errorf("giffy: ReadBlock called before ReadHeader")
	}
	for {
		c, err := readByte(d.r)
		if err != nil {
			return nil, fmt.Errorf("giffy: reading block: %w", err)
		}

		switch c {
		case sExtension:
			if e, err := d.readExtension(); e != nil || err != nil {
				return e, err
			}

		case sImageDescriptor:
			return d.readTableBasedImage()

		case sTrailer:
			return nil, io.EOF

		default:
			return nil, fmt.Errorf("%w 0x%.2x", ErrInvalidBlockIntroducer, c)
		}
	}
}

func (d *Decoder) readExtension() (any, error) {
	label, err := readByte(d.r)
	if err != nil {
		return nil, fmt.Errorf("giffy: reading extension: %w", err)
	}
	switch label {
	case eGraphicControl:
		return nil, d.readGraphicControl()

	case eText:
		return d.readPlainText()

	case eComment:
		return d.readComment()

	case eApplication:
		return d.readApplication()

	default:
		return d.readUnknownExtension(label)
	}
}

func (d *Decoder) readGraphicControl() error {
	if err := readFull(d.r, d.tmp[:6]); err != nil {
		return fmt.Errorf("giffy: reading graphic control extension: %w", err)
	}
	if d.tmp[0] != 0x04 {
		return fmt.Errorf("giffy: invalid graphic control extension block size: %d", d.tmp[0])
	}
	if d.tmp[5] != 0 {
		return fmt.Errorf("giffy: graphic control extension not terminated")
	}

	d.pending = &GraphicControl{
		Disposal:         (d.tmp[1] & gcDisposalMethod) >> 2,
		UserInput:        d.tmp[1]&gcUserInputSet != 0,
		HasTransparency:  d.tmp[1]&gcTransparentSet != 0,
		Delay:            readUint16(d.tmp[2:4]),
		TransparentIndex: d.tmp[4],
	}
	return nil
}

func (d *Decoder) readTableBasedImage() (*Frame, error) {
	if err := readFull(d.r, d.tmp[:9]); err != nil {
		return nil, fmt.Errorf("giffy: reading image descriptor: %w", err)
	}

	var desc struct {
		Left, Top     int `binary:"uint16"`
		Width, Height int `binary:"uint16"`
		Flags         byte
	}
	if _, err := bst.Read(bytes.NewReader(d.tmp[:9]), bst.LittleEndian, &desc); err != nil {
		return nil, fmt.Errorf("giffy: reading image descriptor: %w", err)
	}
	if desc.Left+desc.Width > d.width || desc.Top+desc.Height > d.height {
		return nil, fmt.Errorf("giffy: frame bounds %dx%d+%d+%d outside %dx%d canvas",
			desc.Width, desc.Height, desc.Left, desc.Top, d.width, d.height)
	}

	layout := frameLayout{
		left:       desc.Left,
		top:        desc.Top,
		width:      desc.Width,
		height:     desc.Height,
		interlaced: desc.Flags&ifInterlace != 0,
	}

	var localTable ColorTable
	if desc.Flags&fColorTablePresent != 0 {
		var err error
		if localTable, err = d.readColorTable(desc.Flags & fColorTableSize); err != nil {
			return nil, err
		}
	}

	minCodeSize, err := readByte(d.r)
	if err != nil {
		return nil, fmt.Errorf("giffy: reading image data: %w", err)
	}
	data, err := d.readFlattenedBlocks()
	if err != nil {
		return nil, fmt.Errorf("giffy: reading image data: %w", err)
	}

	pix, excess, err := decompressLZW(data, minCodeSize, layout.width*layout.height)
	if err != nil {
		return nil, err
	}

	// The pending control extension applies to this frame only.
	gc := d.pending
	d.pending = nil

	active := localTable
	if active == nil {
		active = d.globalColorTable
	}
	f, err := composeFrame(layout, active, gc, pix, excess, d.opts.Strict, d.backgroundIndex)
	if err != nil {
		return nil, err
	}
	f.LocalColorTable = localTable
	return f, nil
}

func (d *Decoder) readPlainText() (*PlainText, error) {
	if err := readFull(d.r, d.tmp[:13]); err != nil {
		return nil, fmt.Errorf("giffy: reading plain text extension: %w", err)
	}
	if d.tmp[0] != 0x0C {
		return nil, fmt.Errorf("giffy: invalid plain text extension block size: %d", d.tmp[0])
	}

	pt := &PlainText{
		TextGridLeftPosition:     readUint16(d.tmp[1:3]),
		TextGridTopPosition:      readUint16(d.tmp[3:5]),
		TextGridWidth:            readUint16(d.tmp[5:7]),
		TextGridHeight:           readUint16(d.tmp[7:9]),
		CharacterCellWidth:       d.tmp[9],
		CharacterCellHeight:      d.tmp[10],
		TextForegroundColorIndex: d.tmp[11],
		TextBackgroundColorIndex: d.tmp[12],
	}
	// A plain text block is a graphic rendering block, so it consumes the
	// pending control extension just like an image descriptor would.
	if gc := d.pending; gc != nil {
		pt.Delay = gc.Delay
		pt.Disposal = gc.Disposal
		d.pending = nil
	}

	strings, err := d.readStrings()
	if err != nil {
		return nil, fmt.Errorf("giffy: reading plain text extension: %w", err)
	}
	pt.Strings = strings
	return pt, nil
}

func (d *Decoder) readComment() (*Comment, error) {
	if strings, err := d.readStrings(); err != nil {
		return nil, fmt.Errorf("giffy: reading comment extension: %w", err)
	} else {
		return &Comment{Strings: strings}, nil
	}
}

func (d *Decoder) readApplication() (any, error) {
	b, err := readByte(d.r)
	if err != nil {
		return nil, fmt.Errorf("giffy: reading application extension: %w", err)
	}
	// The format calls for an 11-byte identifier, but Adobe sometimes uses 10.
	if err := readFull(d.r, d.tmp[:int(b)]); err != nil {
		return nil, fmt.Errorf("giffy: reading application extension: %w", err)
	}

	if id := string(d.tmp[:int(b)]); id != "NETSCAPE2.0" {
		if sb, err := d.readSubBlocks(); err != nil {
			return nil, fmt.Errorf("giffy: reading application extension: %w", err)
		} else {
			return &UnknownApplication{Identifier: id, SubBlocks: sb}, nil
		}
	}

	if n, err := d.readBlock(); err != nil {
		return nil, fmt.Errorf("giffy: reading application extension: %w", err)
	} else if n == 3 && d.tmp[0] == 1 {
		d.loopCount = int(readUint16(d.tmp[1:3]))
	}
	if sb, err := d.readSubBlocks(); err != nil {
		return nil, fmt.Errorf("giffy: reading application extension: %w", err)
	} else {
		return &ApplicationNetscape{LoopCount: d.loopCount, SubBlocks: sb}, nil
	}
}

func (d *Decoder) readUnknownExtension(label byte) (*UnknownExtension, error) {
	if sb, err := d.readSubBlocks(); err != nil {
		return nil, fmt.Errorf("giffy: reading unknown extension: %w", err)
	} else {
		return &UnknownExtension{Label: label, SubBlocks: sb}, nil
	}
}
