// Package testimage builds synthetic RGBA rasters for exercising the
// parallel encoder in tests, without depending on any image decoder (the
// core's PixelSource is decoder-agnostic by design).
package testimage

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/parapng/parapng/internal/rasterio"
)

// Gradient builds a W×H image whose pixels sweep from topColor at row 0 to
// bottomColor at row H-1, then delivers it to a rasterio.Memory in BGRA
// channel order (swapping R and B relative to the NRGBA source), as a
// PixelSource whose channel order differs from PNG's own. This gives
// tests a non-trivial, non-uniform raster that still compresses
// predictably enough to assert on.
func Gradient(width, height int, bitDepth uint8, topColor, bottomColor color.NRGBA) (*rasterio.Memory, error) {
	src := image.NewNRGBA(image.Rect(0, 0, width, 1))
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		row := lerp(topColor, bottomColor, t)
		draw.Draw(src, src.Bounds(), &image.Uniform{C: row}, image.Point{}, draw.Src)
		xdraw.Draw(dst, image.Rect(0, y, width, y+1), src, image.Point{}, xdraw.Src)
	}

	desc := rasterio.Descriptor{Width: width, Height: height, BitDepth: bitDepth}
	bpp := desc.BytesPerPixel()
	pix := make([]byte, width*bpp*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := dst.NRGBAAt(x, y)
			off := (y*width + x) * bpp
			writeBGRA(pix[off:off+bpp], c, desc.BytesPerChannel())
		}
	}

	m, err := rasterio.NewMemory(desc, pix)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// writeBGRA writes one pixel in BGRA channel order, replicating each
// 8-bit sample across bytesPerChannel bytes for 16-bit rasters (high byte
// first), so Gradient can produce both 8-bit and 16-bit fixtures.
func writeBGRA(dst []byte, c color.NRGBA, bytesPerChannel int) {
	samples := [4]uint8{c.B, c.G, c.R, c.A}
	for ch, s := range samples {
		for b := 0; b < bytesPerChannel; b++ {
			dst[ch*bytesPerChannel+b] = s
		}
	}
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	l := func(x, y uint8) uint8 {
		return uint8(float64(x) + t*(float64(y)-float64(x)))
	}
	return color.NRGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}
