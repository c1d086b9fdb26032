package giffy

import "errors"

// Decode errors. Call sites wrap these with context, so match them with
// errors.Is rather than equality.
var (
	// ErrUnexpectedEOF means the input ended in the middle of a structure.
	ErrUnexpectedEOF = errors.New("giffy: unexpected end of input")

	// ErrInvalidSignature means the input does not start with GIF87a or GIF89a.
	ErrInvalidSignature = errors.New("giffy: not a GIF file")

	// ErrInvalidBlockIntroducer means an unrecognized byte was found where a
	// block type was expected.
	ErrInvalidBlockIntroducer = errors.New("giffy: invalid block introducer")

	// ErrCorruptColorTable means a color table's declared size is inconsistent
	// with the available data, or a pixel index falls outside the active table.
	ErrCorruptColorTable = errors.New("giffy: corrupt color table")

	// ErrCorruptLZW means the compressed image data references a dictionary
	// entry that has not been assigned, or is otherwise malformed.
	ErrCorruptLZW = errors.New("giffy: corrupt LZW stream")

	// ErrDimensionMismatch means the decompressed pixel count does not match
	// the declared frame area. Only reported in strict mode; by default the
	// frame is padded or truncated instead.
	ErrDimensionMismatch = errors.New("giffy: pixel count does not match frame size")
)
