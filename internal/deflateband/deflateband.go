// Package deflateband compresses one prepared scanline band into a
// zlib-framed record, using a terminal flush discipline: a real
// Z_FINISH for the tail band, a Z_SYNC_FLUSH for every other band so its
// DEFLATE output ends on a byte boundary and composes losslessly with
// whatever follows it.
package deflateband

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/parapng/parapng/internal/adlercombine"
)

// Sentinel errors the top-level encoder classifies against with
// errors.Is to decide its reported error kind.
var (
	ErrCompressionInit  = errors.New("deflateband: compression init failed")
	ErrCompressionFault = errors.New("deflateband: compression stream fault")
)

// Record is a compressed band's output. Bytes always has zlib framing
// (2-byte header, DEFLATE data, 4-byte Adler-32 trailer) over exactly this
// band's uncompressed input. Only the tail band's Bytes is a complete zlib
// stream; a non-tail band's DEFLATE data ends in a sync flush with no
// final block, and a synthetic (but correct) Adler-32 trailer is appended
// after it, even though zlib's own Flush never writes one. That keeps every
// record the same shape, which is what lets the stitcher strip
// header/trailer bytes uniformly regardless of a band's position.
type Record struct {
	Bytes           []byte
	Adler           uint32
	UncompressedLen int64
	IsTail          bool
}

// Compress DEFLATEs input at the given zlib compression level (1..9) and
// returns the band's compressed record. isTail selects the terminal
// flush discipline.
func Compress(input []byte, isTail bool, level int) (Record, error) {
	var buf bytes.Buffer

	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return Record{}, errors.Wrap(ErrCompressionInit, err.Error())
	}

	if len(input) > 0 {
		if _, err := zw.Write(input); err != nil {
			return Record{}, errors.Wrap(ErrCompressionFault, err.Error())
		}
	}

	adler := adlercombine.Checksum(input)

	if isTail {
		// Z_FINISH: final DEFLATE block (BFINAL=1) plus zlib's own
		// genuine Adler-32 trailer.
		if err := zw.Close(); err != nil {
			return Record{}, errors.Wrap(ErrCompressionFault, err.Error())
		}
	} else {
		// Z_SYNC_FLUSH: byte-aligned empty stored block, no trailer.
		if err := zw.Flush(); err != nil {
			return Record{}, errors.Wrap(ErrCompressionFault, err.Error())
		}
		var trailer [4]byte
		binary.BigEndian.PutUint32(trailer[:], adler)
		buf.Write(trailer[:])
	}

	return Record{
		Bytes:           buf.Bytes(),
		Adler:           adler,
		UncompressedLen: int64(len(input)),
		IsTail:          isTail,
	}, nil
}
