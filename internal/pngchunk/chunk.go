// Package pngchunk implements the PNG chunk-level writer (and a matching
// reader used only to self-verify output): signature, IHDR, IDAT, IEND,
// and the ancillary tEXt and tIME chunks the core encoder never needs.
// zTXt has a named type code only; it is neither written nor parsed.
//
// This is the standard PNG writer the parallel compression core treats as
// an external collaborator behind a Sink interface — the core never
// depends on this package's concrete types, only on the interface it
// satisfies.
package pngchunk

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

// Signature is the 8-byte PNG file signature (ISO/IEC 15948 §5.2).
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// ChunkType is a 4-byte chunk type code.
type ChunkType string

const (
	TypeIHDR ChunkType = "IHDR"
	TypeIDAT ChunkType = "IDAT"
	TypeIEND ChunkType = "IEND"
	TypeTEXT ChunkType = "tEXt"
	TypeZTXT ChunkType = "zTXt"
	TypeTIME ChunkType = "tIME"
)

// writeChunk emits one PNG chunk: a 4-byte big-endian length, the 4-byte
// type code, the data, and a CRC-32 over type+data.
func writeChunk(w io.Writer, typ ChunkType, data []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return errors.WithStack(err)
	}

	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)

	if _, err := w.Write([]byte(typ)); err != nil {
		return errors.WithStack(err)
	}
	if len(data) > 0 {
		if _, err := w.Write(data); err != nil {
			return errors.WithStack(err)
		}
	}

	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc.Sum32())
	if _, err := w.Write(crcBuf[:]); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
