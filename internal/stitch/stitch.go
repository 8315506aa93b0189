// Package stitch fuses N independently-compressed zlib band records into
// the single zlib stream a conformant decoder can read in one pass. This
// is the core trick the whole encoder exists to make safe: each non-tail
// band was sync-flushed to a byte boundary, so concatenating
// their DEFLATE payloads (header and trailer stripped) is itself a valid
// DEFLATE bitstream, and the Adler-32 trailer can be rebuilt analytically
// instead of re-hashing the concatenated data.
package stitch

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/parapng/parapng/internal/adlercombine"
	"github.com/parapng/parapng/internal/deflateband"
)

// ErrInternal signals an invariant violation in the band records handed
// to Stitch: too few records, a record too short to contain its framing,
// or a tail designation that isn't on the last record.
var ErrInternal = errors.New("stitch: invariant violation in band records")

// Stitch concatenates records, which must be in ascending band order with
// IsTail set on (and only on) the last record, into one IDAT-ready zlib
// payload. Callers building records from a bandplan.Plan must filter
// through bandplan.NonEmpty first: a plan's trailing empty bands would
// otherwise put the tail band somewhere other than last.
func Stitch(records []deflateband.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, errors.Wrap(ErrInternal, "no band records")
	}
	for i, r := range records {
		last := i == len(records)-1
		if r.IsTail != last {
			return nil, errors.Wrapf(ErrInternal, "band %d IsTail=%v, want %v", i, r.IsTail, last)
		}
	}

	var out bytes.Buffer

	// Band 0: keep everything but the trailing 4-byte Adler-32. Its
	// 2-byte zlib header is retained — the stitched payload needs
	// exactly one.
	first := records[0].Bytes
	if len(first) < 4 {
		return nil, errors.Wrap(ErrInternal, "band 0 record shorter than a trailer")
	}
	out.Write(first[:len(first)-4])

	// Bands 1..N-1: drop the 2-byte header (redundant — only one zlib
	// stream may have a header) and the 4-byte trailer (superseded by the
	// combined checksum appended below).
	for k := 1; k < len(records); k++ {
		b := records[k].Bytes
		if len(b) < 6 {
			return nil, errors.Wrapf(ErrInternal, "band %d record shorter than header+trailer", k)
		}
		out.Write(b[2 : len(b)-4])
	}

	parts := make([]adlercombine.Part, len(records))
	for i, r := range records {
		parts[i] = adlercombine.Part{Adler: r.Adler, Len: r.UncompressedLen}
	}
	combined := adlercombine.CombineAll(parts)

	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], combined)
	out.Write(trailer[:])

	return out.Bytes(), nil
}
