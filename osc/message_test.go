package osc

import (
	"bytes"
	"reflect"
	"testing"
)

func TestScalarRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		tag  TypeTag
	}{
		{"int32", int32(-123456789), TypeInt32},
		{"float32", float32(0.123456789), TypeFloat32},
		{"string", "teststring", TypeString},
		{"blob", []byte{0xde, 0xad, 0xbe, 0xef, 0x01}, TypeBlob},
		{"int64", int64(-1234567890123456789), TypeInt64},
		{"float64", float64(0.12345678901234567), TypeFloat64},
		{"timetag", NewTimetagFromTime(timeRef), TypeTimeTag},
		{"true", true, TypeTrue},
		{"false", false, TypeFalse},
		{"nil", nil, TypeNil},
		{"impulse", Impulse{}, TypeImpulse},
		{"char", Char('A'), TypeChar},
		{"rgba", RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, TypeRGBA},
		{"midi", MIDI{Port: 1, Status: 0x90, Data1: 60, Data2: 127}, TypeMIDI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := encodeMessage(t, "/round/trip", tt.arg)
			b, dropped, err := decodePacket(t, raw)
			if err != nil || dropped != 0 {
				t.Fatalf("decode() dropped = %d, err = %v", dropped, err)
			}
			m := &b.Messages()[0]

			if tag, err := m.TypeTagAt(0); err != nil || tag != tt.tag {
				t.Fatalf("TypeTagAt(0) = %c, %v; want %c", tag, err, tt.tag)
			}

			args, err := m.Arguments()
			if err != nil {
				t.Fatalf("Arguments() err = %v", err)
			}
			if len(args) != 1 {
				t.Fatalf("Arguments() len = %d, want 1", len(args))
			}
			if blob, ok := tt.arg.([]byte); ok {
				if !bytes.Equal(args[0].([]byte), blob) {
					t.Errorf("blob = %v, want %v", args[0], blob)
				}
				return
			}
			if !reflect.DeepEqual(args[0], tt.arg) {
				t.Errorf("argument = %#v, want %#v", args[0], tt.arg)
			}
		})
	}
}

func TestMessageStringBytesAlias(t *testing.T) {
	raw := encodeMessage(t, "/alias", "shared")
	b, _, err := decodePacket(t, raw)
	if err != nil {
		t.Fatal(err)
	}
	m := &b.Messages()[0]

	sb, err := m.StringBytesAt(0)
	if err != nil || string(sb) != "shared" {
		t.Fatalf("StringBytesAt(0) = %q, %v", sb, err)
	}
	// The span aliases the receive buffer rather than copying it.
	if &sb[0] != &b.data[bytes.Index(b.data[:len(raw)], []byte("shared"))] {
		t.Error("StringBytesAt should alias the decode buffer")
	}
}

func TestMessageString(t *testing.T) {
	raw := encodeMessage(t, "/str", int32(3), "x")
	b, _, err := decodePacket(t, raw)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := b.Messages()[0].String(), "/str ,is 3 x"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
