package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

var bundleTag = []byte("#bundle\x00")

// decode parses the first n bytes of the buffer in place into Message
// views. A bare message yields one view; a bundle yields one per
// contained message, in wire order, recursing into nested bundles.
//
// Malformed elements inside a bundle are dropped individually: the
// returned count says how many were skipped while their siblings
// decoded fine. A structurally broken packet (or top-level message)
// returns an error instead and yields no messages.
func (b *Buffer) decode(n int) (dropped int, err error) {
	b.msgs = b.msgs[:0]
	b.timetag = 0

	data := b.data[:n]
	if len(data)%bit32Size != 0 {
		return 0, fmt.Errorf("decode: packet length %d not 4-aligned: %w", n, ErrMalformedPacket)
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("decode: empty packet: %w", ErrMalformedPacket)
	}

	if data[0] == '#' {
		return b.decodeBundle(data)
	}
	if err := b.decodeMessage(data); err != nil {
		return 0, err
	}
	return 0, nil
}

// decodeBundle parses the '#bundle' marker, the time tag and each
// length-prefixed element. Element parse failures drop only that
// element.
func (b *Buffer) decodeBundle(data []byte) (dropped int, err error) {
	if len(data) < len(bundleTag)+bit64Size || !bytes.Equal(data[:len(bundleTag)], bundleTag) {
		return 0, fmt.Errorf("decodeBundle: invalid bundle header: %w", ErrMalformedPacket)
	}
	data = data[len(bundleTag):]

	// The time tag is preserved for the caller but never acted on:
	// elements dispatch immediately.
	tt := Timetag(binary.BigEndian.Uint64(data[:bit64Size]))
	if b.timetag == 0 {
		b.timetag = tt
	}
	data = data[bit64Size:]

	for len(data) > 0 {
		if len(data) < bit32Size {
			return dropped, fmt.Errorf("decodeBundle: truncated element length: %w", ErrMalformedPacket)
		}
		length := int(int32(binary.BigEndian.Uint32(data[:bit32Size])))
		data = data[bit32Size:]
		if length < 0 || length > len(data) || length%bit32Size != 0 {
			return dropped, fmt.Errorf("decodeBundle: invalid element length %d: %w", length, ErrMalformedPacket)
		}

		elem := data[:length]
		data = data[length:]
		if len(elem) == 0 {
			continue
		}

		if elem[0] == '#' {
			d, err := b.decodeBundle(elem)
			dropped += d
			if err != nil {
				// A broken nested bundle loses only its own
				// remaining elements.
				dropped++
			}
			continue
		}
		if err := b.decodeMessage(elem); err != nil {
			dropped++
		}
	}

	return dropped, nil
}

// decodeMessage parses one message: address span, tag span, then one
// offset per argument. All bounds are validated here, once; the typed
// accessors trust the offset table afterwards.
func (b *Buffer) decodeMessage(data []byte) error {
	m := b.nextMessage(data)

	if data[0] != '/' {
		b.dropMessage()
		return fmt.Errorf("decodeMessage: address must start with '/': %w", ErrMalformedPacket)
	}

	addr, n, err := parsePaddedString(data)
	if err != nil {
		b.dropMessage()
		return fmt.Errorf("decodeMessage: reading address: %w", err)
	}
	m.addr = addr
	rest := data[n:]
	pos := int32(n)

	if len(rest) == 0 {
		// The tag string may be omitted entirely; no arguments.
		return nil
	}

	tags, n, err := parsePaddedString(rest)
	if err != nil {
		b.dropMessage()
		return fmt.Errorf("decodeMessage: reading type tags: %w", err)
	}
	if len(tags) == 0 {
		// Messages without a tag string carry no arguments.
		m.tags = nil
		return nil
	}
	if tags[0] != ',' {
		b.dropMessage()
		return fmt.Errorf("decodeMessage: type tags %q missing ',': %w", tags, ErrMalformedPacket)
	}
	m.tags = tags[1:]
	rest = rest[n:]
	pos += int32(n)

	for _, c := range m.tags {
		m.offsets = append(m.offsets, pos)

		size := TypeTag(c).wireSize()
		switch {
		case size < 0 && TypeTag(c) == TypeString:
			_, size, err = parsePaddedString(rest)
		case size < 0 && TypeTag(c) == TypeBlob:
			_, size, err = parseBlob(rest)
		case size < 0:
			b.dropMessage()
			return fmt.Errorf("decodeMessage: unsupported type tag '%c': %w", c, ErrMalformedPacket)
		case size > len(rest):
			err = fmt.Errorf("argument '%c' needs %d bytes, %d left: %w", c, size, len(rest), ErrMalformedAtom)
		}
		if err != nil {
			b.dropMessage()
			return fmt.Errorf("decodeMessage: %w", err)
		}

		rest = rest[size:]
		pos += int32(size)
	}

	return nil
}
