package pngchunk

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ColorType values as per the PNG spec; this encoder only ever emits
// ColorTypeRGBA (color type 6), but the others are kept named for
// readability of the Validate error messages and because IHDR itself is a
// general-purpose chunk type, not specific to RGBA output.
const (
	ColorTypeGrayscale      uint8 = 0
	ColorTypeTrueColor      uint8 = 2
	ColorTypeIndexed        uint8 = 3
	ColorTypeGrayscaleAlpha uint8 = 4
	ColorTypeRGBA           uint8 = 6
)

// IHDR is the image header chunk's 13 data bytes.
type IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

// NewIHDR builds the IHDR this encoder always writes: RGBA, compression
// method 0, filter method 0 (scanlines always use the None filter), no
// interlacing.
func NewIHDR(width, height uint32, bitDepth uint8) (IHDR, error) {
	h := IHDR{
		Width:     width,
		Height:    height,
		BitDepth:  bitDepth,
		ColorType: ColorTypeRGBA,
	}
	if err := h.Validate(); err != nil {
		return IHDR{}, err
	}
	return h, nil
}

// Validate checks this package's constraints on an IHDR.
func (h IHDR) Validate() error {
	if h.Width == 0 || h.Height == 0 {
		return errors.New("pngchunk: width and height must be positive")
	}
	if h.Width > 0x7fffffff || h.Height > 0x7fffffff {
		return errors.New("pngchunk: dimensions exceed 31-bit range")
	}
	if h.BitDepth != 8 && h.BitDepth != 16 {
		return errors.Errorf("pngchunk: unsupported bit depth %d for RGBA", h.BitDepth)
	}
	if h.ColorType != ColorTypeRGBA {
		return errors.Errorf("pngchunk: color type %d unsupported; this encoder only emits RGBA (6)", h.ColorType)
	}
	if h.CompressionMethod != 0 {
		return errors.New("pngchunk: compression method must be 0")
	}
	if h.FilterMethod != 0 {
		return errors.New("pngchunk: filter method must be 0")
	}
	if h.InterlaceMethod != 0 {
		return errors.New("pngchunk: interlaced output is not supported")
	}
	return nil
}

// Bytes encodes the 13-byte IHDR payload, big-endian per the PNG format.
func (h IHDR) Bytes() []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint32(b[0:4], h.Width)
	binary.BigEndian.PutUint32(b[4:8], h.Height)
	b[8] = h.BitDepth
	b[9] = h.ColorType
	b[10] = h.CompressionMethod
	b[11] = h.FilterMethod
	b[12] = h.InterlaceMethod
	return b
}

// ParseIHDR decodes a 13-byte IHDR payload.
func ParseIHDR(data []byte) (IHDR, error) {
	if len(data) < 13 {
		return IHDR{}, errors.New("pngchunk: IHDR chunk too short")
	}
	return IHDR{
		Width:             binary.BigEndian.Uint32(data[0:4]),
		Height:            binary.BigEndian.Uint32(data[4:8]),
		BitDepth:          data[8],
		ColorType:         data[9],
		CompressionMethod: data[10],
		FilterMethod:      data[11],
		InterlaceMethod:   data[12],
	}, nil
}
