package pngchunk

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Parsed is the result of re-reading a PNG this package wrote. It exists
// purely as a test oracle: a minimal decoder that lets the test suite, and
// an optional CLI --verify flag, check the module's own output. It is not
// a general-purpose PNG decoder — decoding arbitrary PNGs is out of scope
// for this self-check, which only needs to read back what this package's
// own writer produced.
//
// Unlike a purely structural parse, this one also verifies each chunk's
// trailing CRC-32 against the bytes it covers.
type Parsed struct {
	IHDR      IHDR
	IDAT      []byte
	Texts     []TextRecord
	Timestamp *time.Time
}

// TextRecord is one parsed tEXt chunk.
type TextRecord struct {
	Keyword string
	Text    string
}

// Parse reads a complete PNG stream, verifying the signature, chunk CRCs,
// and concatenating every IDAT chunk's data in order.
func Parse(r io.Reader) (*Parsed, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, errors.Wrap(err, "pngchunk: reading signature")
	}
	if sig != Signature {
		return nil, errors.New("pngchunk: invalid PNG signature")
	}

	var p Parsed
	var idat bytes.Buffer
	sawIHDR := false

	for {
		typ, data, err := readChunk(r)
		if err == io.EOF {
			return nil, errors.New("pngchunk: truncated stream, missing IEND")
		}
		if err != nil {
			return nil, err
		}

		switch typ {
		case string(TypeIHDR):
			h, err := ParseIHDR(data)
			if err != nil {
				return nil, err
			}
			p.IHDR = h
			sawIHDR = true
		case string(TypeIDAT):
			idat.Write(data)
		case string(TypeTEXT):
			rec, err := parseText(data)
			if err != nil {
				return nil, err
			}
			p.Texts = append(p.Texts, rec)
		case string(TypeTIME):
			ts, err := parseTime(data)
			if err != nil {
				return nil, err
			}
			p.Timestamp = &ts
		case string(TypeIEND):
			if !sawIHDR {
				return nil, errors.New("pngchunk: IEND before IHDR")
			}
			p.IDAT = idat.Bytes()
			return &p, nil
		}
	}
}

// readChunk reads one length-type-data-crc chunk and validates its CRC.
func readChunk(r io.Reader) (typ string, data []byte, err error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return "", nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])

	var typeBuf [4]byte
	if _, err := io.ReadFull(r, typeBuf[:]); err != nil {
		return "", nil, errors.WithStack(err)
	}

	data = make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, data); err != nil {
			return "", nil, errors.WithStack(err)
		}
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return "", nil, errors.WithStack(err)
	}

	crc := crc32.NewIEEE()
	crc.Write(typeBuf[:])
	crc.Write(data)
	if got := binary.BigEndian.Uint32(crcBuf[:]); got != crc.Sum32() {
		return "", nil, errors.Errorf("pngchunk: CRC mismatch in %s chunk", typeBuf)
	}

	return string(typeBuf[:]), data, nil
}

func parseText(data []byte) (TextRecord, error) {
	parts := bytes.SplitN(data, []byte{0x00}, 2)
	if len(parts) != 2 {
		return TextRecord{}, errors.New("pngchunk: malformed tEXt chunk")
	}
	return TextRecord{Keyword: string(parts[0]), Text: string(parts[1])}, nil
}

func parseTime(data []byte) (time.Time, error) {
	if len(data) < 7 {
		return time.Time{}, errors.New("pngchunk: malformed tIME chunk")
	}
	year := int(data[0])<<8 | int(data[1])
	return time.Date(year, time.Month(data[2]), int(data[3]), int(data[4]), int(data[5]), int(data[6]), 0, time.UTC), nil
}

// FindText returns the text associated with keyword, if present.
func (p *Parsed) FindText(keyword string) (string, bool) {
	for _, t := range p.Texts {
		if strings.EqualFold(t.Keyword, keyword) {
			return t.Text, true
		}
	}
	return "", false
}
