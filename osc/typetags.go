package osc

type TypeTag byte

const (
	TypeInt32   TypeTag = 'i'
	TypeFloat32 TypeTag = 'f'
	TypeString  TypeTag = 's'
	TypeBlob    TypeTag = 'b'
	TypeInt64   TypeTag = 'h'
	TypeFloat64 TypeTag = 'd'
	TypeTimeTag TypeTag = 't'
	TypeTrue    TypeTag = 'T'
	TypeFalse   TypeTag = 'F'
	TypeNil     TypeTag = 'N'
	TypeImpulse TypeTag = 'I'
	TypeChar    TypeTag = 'c'
	TypeRGBA    TypeTag = 'r'
	TypeMIDI    TypeTag = 'm'
	TypeInvalid TypeTag = 0
)

// Char is a 32-bit ASCII character, type tag 'c'.
type Char byte

// RGBA is a 32-bit color, type tag 'r'.
type RGBA struct {
	R, G, B, A uint8
}

// MIDI is a 4-byte MIDI packet, type tag 'm': port id, status byte and two
// data bytes.
type MIDI struct {
	Port, Status, Data1, Data2 uint8
}

// Impulse is the data-less "bang" value, type tag 'I'.
type Impulse struct{}

const (
	bit32Size = 4
	bit64Size = 8
)

// wireSize returns the number of payload bytes a fixed-size tag consumes,
// 0 for the zero-width tags and -1 for variable-width or unknown tags.
func (t TypeTag) wireSize() int {
	switch t {
	case TypeInt32, TypeFloat32, TypeChar, TypeRGBA, TypeMIDI:
		return bit32Size
	case TypeInt64, TypeFloat64, TypeTimeTag:
		return bit64Size
	case TypeTrue, TypeFalse, TypeNil, TypeImpulse:
		return 0
	default:
		return -1
	}
}

// ToTypeTag returns the OSC TypeTag for the given argument.
// Returns TypeInvalid if the argument type is unsupported.
func ToTypeTag(arg interface{}) TypeTag {
	switch t := arg.(type) {
	case bool:
		if t {
			return TypeTrue
		}
		return TypeFalse
	case nil:
		return TypeNil
	case int32:
		return TypeInt32
	case float32:
		return TypeFloat32
	case string:
		return TypeString
	case []byte:
		return TypeBlob
	case int64:
		return TypeInt64
	case float64:
		return TypeFloat64
	case Timetag:
		return TypeTimeTag
	case Char:
		return TypeChar
	case RGBA:
		return TypeRGBA
	case MIDI:
		return TypeMIDI
	case Impulse:
		return TypeImpulse
	default:
		return TypeInvalid
	}
}
