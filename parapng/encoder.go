package parapng

import (
	"github.com/pkg/errors"

	"github.com/parapng/parapng/internal/bandplan"
	"github.com/parapng/parapng/internal/deflateband"
	"github.com/parapng/parapng/internal/orchestrate"
	"github.com/parapng/parapng/internal/pngchunk"
	"github.com/parapng/parapng/internal/rasterio"
	"github.com/parapng/parapng/internal/scanprep"
	"github.com/parapng/parapng/internal/stitch"
)

// Encoder owns no state beyond validated Options. It drives the band
// planner, scanline preparer, band compressor (via the orchestrator), and
// stream stitcher in sequence, then hands the finished IDAT payload to a
// pngchunk.Sink.
type Encoder struct {
	opts Options
}

// New validates opts and returns an Encoder. A bad Options value is
// reported immediately, as a Config-kind error, rather than at Encode
// time.
func New(opts Options) (*Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, newError(KindConfig, err)
	}
	return &Encoder{opts: opts}, nil
}

// Encode runs the full pipeline: plan bands, prepare and compress each
// one, stitch the results into one zlib stream, and write it as the
// sink's IDAT, bracketed by the sink's signature/IHDR/IEND calls.
//
// On any failure the sink's WriteIDAT and WriteIEND are never called: the
// IDAT payload is fully assembled in memory before either is invoked, so
// a failure during band compression or stitching leaves, at most, the
// signature and IHDR already written.
func (e *Encoder) Encode(src rasterio.PixelSource, sink pngchunk.Sink) error {
	desc := src.Descriptor()
	if err := desc.Validate(); err != nil {
		return newError(KindInputOpen, err)
	}

	ihdr, err := pngchunk.NewIHDR(uint32(desc.Width), uint32(desc.Height), desc.BitDepth)
	if err != nil {
		return newError(KindInternal, err)
	}

	if err := sink.WriteSignature(); err != nil {
		return newError(KindChunkWrite, err)
	}
	if err := sink.WriteIHDR(ihdr); err != nil {
		return newError(KindChunkWrite, err)
	}

	payload, err := e.compress(src, desc)
	if err != nil {
		return err // already a *Error
	}

	if err := sink.WriteIDAT(payload); err != nil {
		return newError(KindChunkWrite, err)
	}
	if err := sink.WriteIEND(); err != nil {
		return newError(KindChunkWrite, err)
	}
	return nil
}

// compress runs the parallel core — plan, prepare, compress, stitch —
// and returns the stitched IDAT payload.
func (e *Encoder) compress(src rasterio.PixelSource, desc rasterio.Descriptor) ([]byte, error) {
	bands, err := bandplan.Plan(desc.Height, e.opts.NumThreads)
	if err != nil {
		return nil, newError(KindInternal, err)
	}
	// NumThreads may exceed Height; drop the empty trailing bands Plan
	// still reports so every band handed downstream has rows to compress
	// and the last one is always the tail.
	bands = bandplan.NonEmpty(bands)

	// Prepare every band's buffer serially before the parallel region,
	// since nothing here assumes the PixelSource is safe for concurrent
	// disjoint reads.
	jobs := make([]orchestrate.Job, len(bands))
	for i, b := range bands {
		buf, err := scanprep.Prepare(src, b.RowLo, b.RowHi, scanprep.Options{PassThroughAlpha: e.opts.PassThroughAlpha})
		if err != nil {
			return nil, newError(KindInputOpen, err)
		}
		jobs[i] = orchestrate.Job{Band: b, Input: buf}
	}

	records, err := orchestrate.Run(jobs, e.opts.CompressionLevel)
	if err != nil {
		return nil, newError(compressionErrorKind(err), err)
	}

	payload, err := stitch.Stitch(records)
	if err != nil {
		return nil, newError(KindInternal, err)
	}
	return payload, nil
}

// compressionErrorKind classifies an orchestrator failure into the
// CompressionInit/CompressionFault split.
func compressionErrorKind(err error) Kind {
	if errors.Is(err, deflateband.ErrCompressionInit) {
		return KindCompressionInit
	}
	if errors.Is(err, deflateband.ErrCompressionFault) {
		return KindCompressionFault
	}
	return KindInternal
}
