// Package scanprep implements the per-band scanline preparer: it reads raw
// pixel samples from a PixelSource and turns them into the exact byte
// layout compress/flate will compress.
//
// Because the filter type is fixed to None (any predictor filter would
// read the previous row, which can live in another band), preparing one
// band never touches another band's rows. That independence is what lets
// the compressor run band buffers through separate, concurrent DEFLATE
// streams at all.
package scanprep

import "github.com/parapng/parapng/internal/rasterio"

// transparentQuantum is the value every alpha sample is forced to by
// default: the encoder benchmarks throughput, not fidelity, and always
// emits a fully transparent image unless PassThroughAlpha is set.
const transparentQuantum = 0x00

// Options controls preparation behavior beyond the default.
type Options struct {
	// PassThroughAlpha, if true, copies the source alpha sample instead
	// of forcing it to the transparent quantum.
	PassThroughAlpha bool
}

// Prepare reads rows [rowLo, rowHi) from src and returns the prepared band
// buffer: for each row, a leading zero filter byte followed by
// Width*BytesPerPixel() RGBA sample bytes, with channels reordered from
// the source's (possibly BGRA) delivery order and alpha normalized.
func Prepare(src rasterio.PixelSource, rowLo, rowHi int, opts Options) ([]byte, error) {
	desc := src.Descriptor()
	bpp := desc.BytesPerPixel()
	bpc := desc.BytesPerChannel()
	rows := rowHi - rowLo

	raw := make([]byte, desc.Width*bpp*rows)
	if rows > 0 {
		if err := src.ReadRows(rowLo, rowHi, raw); err != nil {
			return nil, err
		}
	}

	rowStride := desc.Width*bpp + 1
	out := make([]byte, rowStride*rows)

	for r := 0; r < rows; r++ {
		srcRow := raw[r*desc.Width*bpp : (r+1)*desc.Width*bpp]
		dstRow := out[r*rowStride : (r+1)*rowStride]
		dstRow[0] = 0 // filter type None
		body := dstRow[1:]
		for x := 0; x < desc.Width; x++ {
			sp := srcRow[x*bpp : (x+1)*bpp]
			dp := body[x*bpp : (x+1)*bpp]
			normalizePixel(sp, dp, bpc, opts.PassThroughAlpha)
		}
	}
	return out, nil
}

// normalizePixel swaps the source's B/R channel positions into PNG's RGBA
// order and forces (or passes through) the alpha sample. sp and dp are
// one pixel's worth of bytes (bpc*4 each); they
// may alias the same underlying array only if sp and dp don't overlap,
// which holds here since dp always points into a freshly allocated output
// buffer.
func normalizePixel(sp, dp []byte, bpc int, passThroughAlpha bool) {
	// Source channel order: B, G, R, A (each bpc bytes).
	// Destination channel order: R, G, B, A.
	copy(dp[0:bpc], sp[2*bpc:3*bpc])   // R
	copy(dp[bpc:2*bpc], sp[bpc:2*bpc]) // G
	copy(dp[2*bpc:3*bpc], sp[0:bpc])   // B
	if passThroughAlpha {
		copy(dp[3*bpc:4*bpc], sp[3*bpc:4*bpc])
	} else {
		for i := 3 * bpc; i < 4*bpc; i++ {
			dp[i] = transparentQuantum
		}
	}
}
