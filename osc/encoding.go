package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

////
// De/Encoding functions
////

// parsePaddedString reads a null-terminated padded string from data and
// returns the string bytes (terminator and padding excluded) and the total
// number of bytes consumed including padding.
func parsePaddedString(data []byte) ([]byte, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		return nil, 0, fmt.Errorf("parsePaddedString: no terminator: %w", ErrMalformedAtom)
	}

	n := pos + 1 + padBytesNeeded(pos+1)
	if n > len(data) {
		return nil, 0, fmt.Errorf("parsePaddedString: truncated padding: %w", ErrMalformedAtom)
	}

	return data[:pos], n, nil
}

// parseBlob reads a length-prefixed blob from data and returns the blob
// bytes and the total number of bytes consumed including padding.
func parseBlob(data []byte) ([]byte, int, error) {
	if len(data) < bit32Size {
		return nil, 0, fmt.Errorf("parseBlob: missing length: %w", ErrMalformedAtom)
	}

	blobLen := int(int32(binary.BigEndian.Uint32(data[:bit32Size])))
	if blobLen < 0 || blobLen > len(data)-bit32Size {
		return nil, 0, fmt.Errorf("parseBlob: invalid blob length %d: %w", blobLen, ErrMalformedAtom)
	}

	n := bit32Size + blobLen + padBytesNeeded(blobLen)
	if n > len(data) {
		return nil, 0, fmt.Errorf("parseBlob: truncated padding: %w", ErrMalformedAtom)
	}

	return data[bit32Size : bit32Size+blobLen], n, nil
}

// appendPaddedString appends str plus its null terminator and padding
// bytes to b.
func appendPaddedString(b []byte, str string) []byte {
	b = append(b, str...)
	b = append(b, 0)
	for n := padBytesNeeded(len(str) + 1); n > 0; n-- {
		b = append(b, 0)
	}
	return b
}

// appendBlob appends the blob length prefix, the data and the padding
// bytes to b.
func appendBlob(b, data []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	b = append(b, data...)
	for n := padBytesNeeded(len(data)); n > 0; n-- {
		b = append(b, 0)
	}
	return b
}

// padBytesNeeded determines how many bytes are needed to fill up to the
// next 4 byte length.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}
