package osc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer builds OSC packets into a reusable byte region: address, type
// tag string and arguments, each padded to 4 bytes. A zeroed Writer is
// ready to use; after the first packet the region is recycled and
// encoding allocates nothing.
type Writer struct {
	buf []byte
}

// Reset empties the writer, keeping its capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Bytes returns the encoded packet. The slice is only valid until the
// next Reset or Write call.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteMessage encodes one message with the given address and arguments.
// Supported argument types are the ones ToTypeTag knows; anything else
// fails before any bytes are written.
func (w *Writer) WriteMessage(addr string, args ...interface{}) error {
	if len(addr) == 0 || addr[0] != '/' {
		return fmt.Errorf("WriteMessage: address %q must start with '/'", addr)
	}
	for _, arg := range args {
		if ToTypeTag(arg) == TypeInvalid {
			return fmt.Errorf("WriteMessage: unsupported type: %T", arg)
		}
	}

	w.buf = appendPaddedString(w.buf, addr)

	// Tag string first: its length is known from the argument count, so
	// no second pass over the payload is needed.
	w.buf = append(w.buf, ',')
	for _, arg := range args {
		w.buf = append(w.buf, byte(ToTypeTag(arg)))
	}
	w.buf = append(w.buf, 0)
	for n := padBytesNeeded(len(args) + 2); n > 0; n-- {
		w.buf = append(w.buf, 0)
	}

	for _, arg := range args {
		switch t := arg.(type) {
		case bool, nil, Impulse:
			// Zero-width; the tag carries the value.
		case int32:
			w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(t))
		case float32:
			w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(t))
		case int64:
			w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(t))
		case float64:
			w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(t))
		case string:
			w.buf = appendPaddedString(w.buf, t)
		case []byte:
			w.buf = appendBlob(w.buf, t)
		case Timetag:
			w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(t))
		case Char:
			w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(t))
		case RGBA:
			w.buf = append(w.buf, t.R, t.G, t.B, t.A)
		case MIDI:
			w.buf = append(w.buf, t.Port, t.Status, t.Data1, t.Data2)
		}
	}

	if len(w.buf) > MaxPacketSize {
		return fmt.Errorf("WriteMessage: packet too large: %d", len(w.buf))
	}
	return nil
}

// WriteBundle encodes a bundle from already-encoded element packets:
// the '#bundle' marker, the time tag, then each element behind a 4-byte
// length prefix.
func (w *Writer) WriteBundle(tt Timetag, elements ...[]byte) error {
	w.buf = appendPaddedString(w.buf, "#bundle")
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(tt))

	for _, elem := range elements {
		if len(elem)%bit32Size != 0 {
			return fmt.Errorf("WriteBundle: element length %d not 4-aligned", len(elem))
		}
		w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(len(elem)))
		w.buf = append(w.buf, elem...)
	}

	if len(w.buf) > MaxPacketSize {
		return fmt.Errorf("WriteBundle: packet too large: %d", len(w.buf))
	}
	return nil
}
