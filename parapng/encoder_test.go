package parapng

import (
	"bytes"
	"compress/zlib"
	"image/color"
	"io"
	"testing"

	"github.com/parapng/parapng/internal/pngchunk"
	"github.com/parapng/parapng/internal/rasterio"
	"github.com/parapng/parapng/internal/rasterio/testimage"
)

// encodeToParsed runs a full Encode and re-parses the result with the
// pngchunk self-check parser, decompressing the IDAT payload so callers can
// assert on the decoded scanlines.
func encodeToParsed(t *testing.T, src rasterio.PixelSource, opts Options) (*pngchunk.Parsed, []byte) {
	t.Helper()
	enc, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	sink := pngchunk.NewFileSink(&buf)
	if err := enc.Encode(src, sink); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	parsed, err := pngchunk.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(parsed.IDAT))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompressing IDAT: %v", err)
	}
	return parsed, raw
}

// decodedPixel extracts the RGBA sample at (x, y) from the filtered-None
// scanline buffer raw produces, skipping each row's leading filter byte.
func decodedPixel(raw []byte, width, x, y, bpp int) []byte {
	stride := width*bpp + 1
	row := raw[y*stride : (y+1)*stride]
	body := row[1:]
	return body[x*bpp : (x+1)*bpp]
}

func redOnePixelSource(t *testing.T) *rasterio.Memory {
	t.Helper()
	desc := rasterio.Descriptor{Width: 1, Height: 1, BitDepth: 8}
	// BGRA delivery order: blue=0x00, green=0x00, red=0xFF, alpha=0xFF.
	pix := []byte{0x00, 0x00, 0xFF, 0xFF}
	m, err := rasterio.NewMemory(desc, pix)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestEncodeSinglePixelSingleThread(t *testing.T) {
	parsed, raw := encodeToParsed(t, redOnePixelSource(t), Options{NumThreads: 1, CompressionLevel: 6})

	if parsed.IHDR.Width != 1 || parsed.IHDR.Height != 1 {
		t.Fatalf("IHDR dims = %dx%d, want 1x1", parsed.IHDR.Width, parsed.IHDR.Height)
	}
	if parsed.IHDR.ColorType != pngchunk.ColorTypeRGBA {
		t.Fatalf("ColorType = %d, want RGBA", parsed.IHDR.ColorType)
	}

	want := []byte{0x00, 0xFF, 0x00, 0x00, 0x00} // filter byte, R,G,B,A(forced)
	if !bytes.Equal(raw, want) {
		t.Fatalf("decoded scanline = % x, want % x", raw, want)
	}
}

func TestEncodeFourByFourFourThreads(t *testing.T) {
	src, err := testimage.Gradient(4, 4, 8, color.NRGBA{R: 255, A: 255}, color.NRGBA{B: 255, A: 255})
	if err != nil {
		t.Fatal(err)
	}

	_, raw := encodeToParsed(t, src, Options{NumThreads: 4, CompressionLevel: 9})

	stride := 4*4 + 1
	if len(raw) != stride*4 {
		t.Fatalf("decoded length = %d, want %d", len(raw), stride*4)
	}
	for y := 0; y < 4; y++ {
		if raw[y*stride] != 0 {
			t.Fatalf("row %d filter byte = %d, want 0", y, raw[y*stride])
		}
	}
	// Top row should be pure red with forced-transparent alpha.
	top := decodedPixel(raw, 4, 0, 0, 4)
	if want := []byte{0xFF, 0x00, 0x00, 0x00}; !bytes.Equal(top, want) {
		t.Fatalf("top-left pixel = % x, want % x", top, want)
	}
}

func TestEncodeUnevenSplitMatchesSingleThread(t *testing.T) {
	src, err := testimage.Gradient(10, 100, 8, color.NRGBA{G: 200, A: 128}, color.NRGBA{R: 64, B: 64, A: 128})
	if err != nil {
		t.Fatal(err)
	}

	_, rawSerial := encodeToParsed(t, src, Options{NumThreads: 1, CompressionLevel: 9})
	_, rawParallel := encodeToParsed(t, src, Options{NumThreads: 3, CompressionLevel: 9})

	if !bytes.Equal(rawSerial, rawParallel) {
		t.Fatal("decoded scanlines differ between thread counts; encoder is not thread-count invariant")
	}
}

func TestEncodeTallNarrowMoreThreadsThanRows(t *testing.T) {
	src, err := testimage.Gradient(1, 10, 8, color.NRGBA{A: 255}, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if err != nil {
		t.Fatal(err)
	}

	parsed, raw := encodeToParsed(t, src, Options{NumThreads: 16, CompressionLevel: 9})
	if parsed.IHDR.Height != 10 {
		t.Fatalf("Height = %d, want 10", parsed.IHDR.Height)
	}
	if len(raw) != (1*4+1)*10 {
		t.Fatalf("decoded length = %d, want %d", len(raw), (1*4+1)*10)
	}
}

func TestEncodePassThroughAlpha(t *testing.T) {
	_, raw := encodeToParsed(t, redOnePixelSource(t), Options{NumThreads: 1, CompressionLevel: 6, PassThroughAlpha: true})
	want := []byte{0x00, 0xFF, 0x00, 0x00, 0xFF}
	if !bytes.Equal(raw, want) {
		t.Fatalf("decoded scanline = % x, want % x", raw, want)
	}
}

func TestEncodeSingleThreadByteIdenticalToPlainZlib(t *testing.T) {
	src := redOnePixelSource(t)
	enc, err := New(Options{NumThreads: 1, CompressionLevel: 6})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	sink := pngchunk.NewFileSink(&buf)
	if err := enc.Encode(src, sink); err != nil {
		t.Fatal(err)
	}
	parsed, err := pngchunk.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	var want bytes.Buffer
	zw, err := zlib.NewWriterLevel(&want, 6)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte{0x00, 0xFF, 0x00, 0x00, 0x00}); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(parsed.IDAT, want.Bytes()) {
		t.Fatalf("single-thread IDAT = % x, want byte-identical plain zlib stream % x", parsed.IDAT, want.Bytes())
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	if _, err := New(Options{NumThreads: 0, CompressionLevel: 6}); err == nil {
		t.Fatal("expected an error for zero threads")
	} else if perr, ok := err.(*Error); !ok || perr.Kind != KindConfig {
		t.Fatalf("err = %v, want *Error with KindConfig", err)
	}

	if _, err := New(Options{NumThreads: 1, CompressionLevel: 99}); err == nil {
		t.Fatal("expected an error for an out-of-range compression level")
	}
}

func TestEncodeRejectsInvalidDescriptor(t *testing.T) {
	desc := rasterio.Descriptor{Width: 0, Height: 1, BitDepth: 8}
	src := &rasterio.Memory{Desc: desc, Pix: nil}

	enc, err := New(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = enc.Encode(src, pngchunk.NewFileSink(&buf))
	if err == nil {
		t.Fatal("expected an error for an invalid descriptor")
	}
	perr, ok := err.(*Error)
	if !ok || perr.Kind != KindInputOpen {
		t.Fatalf("err = %v, want *Error with KindInputOpen", err)
	}
	if buf.Len() != 0 {
		t.Fatal("sink must not be touched before the descriptor is validated")
	}
}
