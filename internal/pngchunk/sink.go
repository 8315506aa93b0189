package pngchunk

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// MaxIDATChunkLen bounds how large a single IDAT chunk this writer emits
// before it is split into a sequel chunk (the format's hard ceiling is
// 2^31-1 bytes). It is set far below that so that even modest test images
// exercise the multi-chunk split path.
const MaxIDATChunkLen = 1 << 16

// Sink is the abstract PNG chunk sink the core encoder depends on instead
// of a concrete PNG library: WriteSignature, WriteIHDR, WriteIDAT,
// WriteIEND as first-class operations, so the core never reaches into a
// writer's internals.
type Sink interface {
	WriteSignature() error
	WriteIHDR(h IHDR) error
	WriteIDAT(payload []byte) error
	WriteIEND() error
}

// FileSink writes chunks to an underlying io.Writer, splitting an IDAT
// payload into MaxIDATChunkLen-sized chunks and additionally supporting
// ancillary chunks (tEXt, tIME). Those ancillary writers are not part of
// the Sink interface the core encoder depends on; callers (the CLI) use
// them directly on the concrete type between WriteIHDR and WriteIDAT.
type FileSink struct {
	w io.Writer
}

// NewFileSink wraps w as a chunk sink.
func NewFileSink(w io.Writer) *FileSink {
	return &FileSink{w: w}
}

var _ Sink = (*FileSink)(nil)

func (s *FileSink) WriteSignature() error {
	_, err := s.w.Write(Signature[:])
	return errors.WithStack(err)
}

func (s *FileSink) WriteIHDR(h IHDR) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return writeChunk(s.w, TypeIHDR, h.Bytes())
}

// WriteIDAT splits payload into MaxIDATChunkLen-sized chunks. Split points
// are arbitrary bytewise: IDAT chunk boundaries carry no semantic meaning,
// only their concatenation does.
func (s *FileSink) WriteIDAT(payload []byte) error {
	if len(payload) == 0 {
		return writeChunk(s.w, TypeIDAT, nil)
	}
	for off := 0; off < len(payload); off += MaxIDATChunkLen {
		end := off + MaxIDATChunkLen
		if end > len(payload) {
			end = len(payload)
		}
		if err := writeChunk(s.w, TypeIDAT, payload[off:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileSink) WriteIEND() error {
	return writeChunk(s.w, TypeIEND, nil)
}

// WriteText emits a tEXt chunk (keyword, null separator, text). keyword
// must be 1-79 bytes.
func (s *FileSink) WriteText(keyword, text string) error {
	if len(keyword) == 0 || len(keyword) > 79 {
		return errors.New("pngchunk: tEXt keyword must be 1-79 bytes")
	}
	data := append([]byte(keyword), 0x00)
	data = append(data, text...)
	return writeChunk(s.w, TypeTEXT, data)
}

// WriteTimestamp emits a tIME chunk, truncated to whole seconds and
// expressed in UTC.
func (s *FileSink) WriteTimestamp(t time.Time) error {
	t = t.UTC()
	data := make([]byte, 7)
	data[0] = byte(t.Year() >> 8)
	data[1] = byte(t.Year())
	data[2] = byte(t.Month())
	data[3] = byte(t.Day())
	data[4] = byte(t.Hour())
	data[5] = byte(t.Minute())
	data[6] = byte(t.Second())
	return writeChunk(s.w, TypeTIME, data)
}
