package body

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Compressed RTF stream errors.
var (
	ErrShortHeader        = errors.New("compressed rtf: header too short")
	ErrUnknownCompression = errors.New("compressed rtf: unknown compression type")
	ErrCRCMismatch        = errors.New("compressed rtf: crc mismatch")
	ErrTruncated          = errors.New("compressed rtf: truncated stream")
)

const (
	headerSize = 16

	compressedMagic   = 0x75465a4c // "LZFu"
	uncompressedMagic = 0x414c454d // "MELA"

	dictSize = 4096
)

// dictPrefix is the initial content of the LZFu dictionary.
const dictPrefix = "{\\rtf1\\ansi\\mac\\deff0\\deftab720{\\fonttbl;}" +
	"{\\f0\\fnil \\froman \\fswiss \\fmodern \\fscript " +
	"\\fdecor MS Sans SerifSymbolArialTimes New RomanCourier" +
	"{\\colortbl\\red0\\green0\\blue0\r\n\\par " +
	"\\pard\\plain\\f0\\fs20\\b\\i\\u\\tab\\tx"

// Decompress expands a PR_RTF_COMPRESSED stream.
//
// The 16 byte header holds the compressed size (counting the 12 header
// bytes after it), the raw size, the compression type and a CRC-32 of the
// compressed payload. LZFu payloads are a sequence of control bytes, each
// followed by up to eight tokens: a clear bit is one literal byte, a set
// bit is a big-endian reference into a 4 KiB ring dictionary (12 bit
// offset, 4 bit length minus two). A reference to the current write
// position ends the stream.
func Decompress(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, ErrShortHeader
	}

	compSize := binary.LittleEndian.Uint32(data[0:4])
	rawSize := binary.LittleEndian.Uint32(data[4:8])
	compType := binary.LittleEndian.Uint32(data[8:12])
	crc := binary.LittleEndian.Uint32(data[12:16])

	end := int(compSize) + 4
	if end < headerSize || end > len(data) {
		end = len(data)
	}
	payload := data[headerSize:end]

	switch compType {
	case uncompressedMagic:
		if int(rawSize) > len(payload) {
			return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrTruncated, rawSize, len(payload))
		}
		return append([]byte(nil), payload[:rawSize]...), nil
	case compressedMagic:
	default:
		return nil, fmt.Errorf("%w: 0x%08x", ErrUnknownCompression, compType)
	}

	if got := checksum(payload); got != crc {
		return nil, fmt.Errorf("%w: header 0x%08x, computed 0x%08x", ErrCRCMismatch, crc, got)
	}

	return lzfu(payload, int(rawSize))
}

func lzfu(payload []byte, rawSize int) ([]byte, error) {
	var dict [dictSize]byte
	copy(dict[:], dictPrefix)
	write := len(dictPrefix)

	// rawSize is not covered by the CRC. A two byte reference expands to
	// at most 17 bytes, which bounds the real output.
	out := make([]byte, 0, max(0, min(rawSize, 9*len(payload))))
	in := 0

	for in < len(payload) {
		control := payload[in]
		in++

		for bit := 0; bit < 8; bit++ {
			if in >= len(payload) {
				return out, nil
			}

			if control&(1<<bit) == 0 {
				c := payload[in]
				in++
				out = append(out, c)
				dict[write] = c
				write = (write + 1) % dictSize
				continue
			}

			if in+1 >= len(payload) {
				return nil, ErrTruncated
			}
			ref := int(payload[in])<<8 | int(payload[in+1])
			in += 2

			offset := ref >> 4
			length := ref&0x0f + 2
			if offset == write {
				return out, nil
			}

			for i := 0; i < length; i++ {
				c := dict[(offset+i)%dictSize]
				out = append(out, c)
				dict[write] = c
				write = (write + 1) % dictSize
			}
		}
	}

	return out, nil
}

// checksum is CRC-32 without the initial and final inversion.
func checksum(p []byte) uint32 {
	return ^crc32.Update(^uint32(0), crc32.IEEETable, p)
}
