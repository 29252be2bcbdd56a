package osc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Message is a single decoded OSC message: a view over the packet bytes it
// was parsed from. It holds the address span, the type tag span and a
// per-argument byte offset table; the argument payload itself is read on
// demand through the typed accessors.
//
// A Message is only valid until its owning receive buffer is recycled,
// which happens as soon as the handler it was passed to returns. Handlers
// that want to keep an argument must copy it out; deferred handlers get
// their own snapshot and don't need to.
type Message struct {
	data    []byte  // this message's region of the packet
	addr    []byte  // address span, no terminator
	tags    []byte  // one tag character per argument, ',' stripped
	offsets []int32 // payload offset of each argument in data
}

// reset empties the view for reuse, keeping the offset table's capacity.
func (m *Message) reset(data []byte) {
	m.data = data
	m.addr = nil
	m.tags = nil
	m.offsets = m.offsets[:0]
}

// AddressBytes returns the raw address span. The slice aliases the
// receive buffer and must not be retained.
func (m *Message) AddressBytes() []byte { return m.addr }

// Address returns the address as a string. Unlike AddressBytes this
// allocates; dispatch never calls it.
func (m *Message) Address() string { return string(m.addr) }

// CountArguments returns the number of arguments.
func (m *Message) CountArguments() int { return len(m.tags) }

// TypeTagAt returns the type tag of the argument at index i.
func (m *Message) TypeTagAt(i int) (TypeTag, error) {
	if i < 0 || i >= len(m.tags) {
		return TypeInvalid, fmt.Errorf("TypeTagAt(%d): %w", i, ErrIndexOutOfRange)
	}
	return TypeTag(m.tags[i]), nil
}

// TypeTags returns the type tag string, without the leading comma.
func (m *Message) TypeTags() string { return string(m.tags) }

// arg validates the index against the parsed tag and returns the
// argument's payload region. The offsets were bounds-checked once by the
// decoder, so no accessor re-checks them against the buffer.
func (m *Message) arg(i int, want TypeTag) ([]byte, error) {
	if i < 0 || i >= len(m.tags) {
		return nil, fmt.Errorf("argument %d of %d: %w", i, len(m.tags), ErrIndexOutOfRange)
	}
	if TypeTag(m.tags[i]) != want {
		return nil, fmt.Errorf("argument %d is '%c', not '%c': %w", i, m.tags[i], want, ErrTypeMismatch)
	}
	return m.data[m.offsets[i]:], nil
}

// Int32At returns the int32 argument at index i.
func (m *Message) Int32At(i int) (int32, error) {
	b, err := m.arg(i, TypeInt32)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// Float32At returns the float32 argument at index i.
func (m *Message) Float32At(i int) (float32, error) {
	b, err := m.arg(i, TypeFloat32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// Int64At returns the int64 argument at index i.
func (m *Message) Int64At(i int) (int64, error) {
	b, err := m.arg(i, TypeInt64)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// Float64At returns the float64 argument at index i.
func (m *Message) Float64At(i int) (float64, error) {
	b, err := m.arg(i, TypeFloat64)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// TimetagAt returns the time tag argument at index i.
func (m *Message) TimetagAt(i int) (Timetag, error) {
	b, err := m.arg(i, TypeTimeTag)
	if err != nil {
		return 0, err
	}
	return Timetag(binary.BigEndian.Uint64(b)), nil
}

// StringBytesAt returns the string argument at index i as raw bytes
// aliasing the receive buffer.
func (m *Message) StringBytesAt(i int) ([]byte, error) {
	b, err := m.arg(i, TypeString)
	if err != nil {
		return nil, err
	}
	// The decoder validated the terminator, rescanning can't fail.
	s, _, _ := parsePaddedString(b)
	return s, nil
}

// StringAt returns the string argument at index i. The returned string is
// an owned copy and safe to retain.
func (m *Message) StringAt(i int) (string, error) {
	b, err := m.StringBytesAt(i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BlobAt returns the blob argument at index i. The slice aliases the
// receive buffer and must not be retained.
func (m *Message) BlobAt(i int) ([]byte, error) {
	b, err := m.arg(i, TypeBlob)
	if err != nil {
		return nil, err
	}
	blob, _, _ := parseBlob(b)
	return blob, nil
}

// BoolAt returns the boolean argument at index i, which carries no
// payload bytes: the value is implied by a 'T' or 'F' tag.
func (m *Message) BoolAt(i int) (bool, error) {
	if i < 0 || i >= len(m.tags) {
		return false, fmt.Errorf("argument %d of %d: %w", i, len(m.tags), ErrIndexOutOfRange)
	}
	switch TypeTag(m.tags[i]) {
	case TypeTrue:
		return true, nil
	case TypeFalse:
		return false, nil
	}
	return false, fmt.Errorf("argument %d is '%c', not 'T' or 'F': %w", i, m.tags[i], ErrTypeMismatch)
}

// IsNilAt reports whether the argument at index i is the nil value.
func (m *Message) IsNilAt(i int) (bool, error) {
	t, err := m.TypeTagAt(i)
	if err != nil {
		return false, err
	}
	return t == TypeNil, nil
}

// CharAt returns the char argument at index i.
func (m *Message) CharAt(i int) (Char, error) {
	b, err := m.arg(i, TypeChar)
	if err != nil {
		return 0, err
	}
	return Char(binary.BigEndian.Uint32(b)), nil
}

// RGBAAt returns the color argument at index i.
func (m *Message) RGBAAt(i int) (RGBA, error) {
	b, err := m.arg(i, TypeRGBA)
	if err != nil {
		return RGBA{}, err
	}
	return RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

// MIDIAt returns the MIDI argument at index i.
func (m *Message) MIDIAt(i int) (MIDI, error) {
	b, err := m.arg(i, TypeMIDI)
	if err != nil {
		return MIDI{}, err
	}
	return MIDI{Port: b[0], Status: b[1], Data1: b[2], Data2: b[3]}, nil
}

// Arguments materializes every argument as an interface value, in order.
// This allocates and exists for logging and tests, not for handlers on
// the hot path.
func (m *Message) Arguments() ([]interface{}, error) {
	args := make([]interface{}, 0, len(m.tags))
	for i, c := range m.tags {
		var (
			v   interface{}
			err error
		)
		switch TypeTag(c) {
		case TypeInt32:
			v, err = m.Int32At(i)
		case TypeFloat32:
			v, err = m.Float32At(i)
		case TypeString:
			v, err = m.StringAt(i)
		case TypeBlob:
			var b []byte
			b, err = m.BlobAt(i)
			if err == nil {
				v = append([]byte(nil), b...)
			}
		case TypeInt64:
			v, err = m.Int64At(i)
		case TypeFloat64:
			v, err = m.Float64At(i)
		case TypeTimeTag:
			v, err = m.TimetagAt(i)
		case TypeTrue:
			v = true
		case TypeFalse:
			v = false
		case TypeNil:
			v = nil
		case TypeImpulse:
			v = Impulse{}
		case TypeChar:
			v, err = m.CharAt(i)
		case TypeRGBA:
			v, err = m.RGBAAt(i)
		case TypeMIDI:
			v, err = m.MIDIAt(i)
		}
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// String implements the fmt.Stringer interface.
func (m *Message) String() string {
	if m == nil {
		return ""
	}

	buf := append([]byte(nil), m.addr...)
	if len(m.tags) == 0 {
		return string(buf)
	}

	buf = append(buf, ' ', ',')
	buf = append(buf, m.tags...)

	args, err := m.Arguments()
	if err != nil {
		return string(append(buf, " <invalid>"...))
	}
	for _, arg := range args {
		switch a := arg.(type) {
		case nil:
			buf = append(buf, " Nil"...)
		case []byte:
			buf = append(buf, " blob["...)
			buf = strconv.AppendInt(buf, int64(len(a)), 10)
			buf = append(buf, ']')
		case Timetag:
			buf = strconv.AppendUint(append(buf, ' '), uint64(a), 10)
		default:
			buf = append(buf, fmt.Sprintf(" %v", a)...)
		}
	}

	return string(buf)
}
