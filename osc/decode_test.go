package osc

import (
	"errors"
	"testing"
	"time"
)

// decodePacket parses raw into a fresh buffer, as the receive loop does.
func decodePacket(tb testing.TB, raw []byte) (*Buffer, int, error) {
	tb.Helper()
	if len(raw) > MaxPacketSize {
		tb.Fatalf("test packet too large: %d", len(raw))
	}
	var pool bufferPool
	b := pool.get()
	copy(b.data, raw)
	dropped, err := b.decode(len(raw))
	return b, dropped, err
}

// encodeMessage builds a wire packet for test input.
func encodeMessage(tb testing.TB, addr string, args ...interface{}) []byte {
	tb.Helper()
	var w Writer
	if err := w.WriteMessage(addr, args...); err != nil {
		tb.Fatalf("WriteMessage(%q): %v", addr, err)
	}
	return append([]byte(nil), w.Bytes()...)
}

func TestDecodeMessage(t *testing.T) {
	raw := encodeMessage(t, "/test/a", int32(1122), float32(3.75), "hello")

	b, dropped, err := decodePacket(t, raw)
	if err != nil || dropped != 0 {
		t.Fatalf("decode() dropped = %d, err = %v", dropped, err)
	}
	msgs := b.Messages()
	if len(msgs) != 1 {
		t.Fatalf("decoded %d messages, want 1", len(msgs))
	}

	m := &msgs[0]
	if got := m.Address(); got != "/test/a" {
		t.Errorf("Address() = %q, want %q", got, "/test/a")
	}
	if got := m.TypeTags(); got != "ifs" {
		t.Errorf("TypeTags() = %q, want %q", got, "ifs")
	}
	if got := m.CountArguments(); got != 3 {
		t.Errorf("CountArguments() = %d, want 3", got)
	}

	if v, err := m.Int32At(0); err != nil || v != 1122 {
		t.Errorf("Int32At(0) = %d, %v", v, err)
	}
	if v, err := m.Float32At(1); err != nil || v != 3.75 {
		t.Errorf("Float32At(1) = %f, %v", v, err)
	}
	if v, err := m.StringAt(2); err != nil || v != "hello" {
		t.Errorf("StringAt(2) = %q, %v", v, err)
	}
}

func TestDecodeMessageNoArguments(t *testing.T) {
	for _, raw := range [][]byte{
		encodeMessage(t, "/ping"),
		appendPaddedString(nil, "/ping"), // tag string omitted entirely
	} {
		b, dropped, err := decodePacket(t, raw)
		if err != nil || dropped != 0 {
			t.Fatalf("decode() dropped = %d, err = %v", dropped, err)
		}
		if msgs := b.Messages(); len(msgs) != 1 || msgs[0].CountArguments() != 0 {
			t.Errorf("want one message with no arguments, got %v", msgs)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	truncated := encodeMessage(t, "/test", int32(1), int32(2))

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"unaligned", []byte{'/', 'a', 0}},
		{"no_address_slash", appendPaddedString(nil, "abc")},
		{"unterminated_address", []byte{'/', 'a', 'b', 'c', '/', 'd', 'e', 'f'}},
		{"tags_without_comma", append(appendPaddedString(nil, "/a"), appendPaddedString(nil, "if")...)},
		{"unknown_tag", append(appendPaddedString(nil, "/a"), appendPaddedString(nil, ",z")...)},
		{"announced_args_missing", truncated[:len(truncated)-8]},
		{"bad_bundle_header", appendPaddedString(nil, "#bundli")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, err := decodePacket(t, tt.raw)
			if err == nil {
				t.Fatal("decode() expected error")
			}
			if len(b.Messages()) != 0 {
				t.Errorf("malformed packet yielded %d messages", len(b.Messages()))
			}
		})
	}
}

func TestDecodeBundle(t *testing.T) {
	one := encodeMessage(t, "/one", int32(1))
	two := encodeMessage(t, "/two", int32(2))

	var w Writer
	if err := w.WriteBundle(NewTimetagFromTime(timeRef), one, two); err != nil {
		t.Fatal(err)
	}

	b, dropped, err := decodePacket(t, w.Bytes())
	if err != nil || dropped != 0 {
		t.Fatalf("decode() dropped = %d, err = %v", dropped, err)
	}

	msgs := b.Messages()
	if len(msgs) != 2 {
		t.Fatalf("decoded %d messages, want 2", len(msgs))
	}
	if got := msgs[0].Address(); got != "/one" {
		t.Errorf("element order: first address = %q, want /one", got)
	}
	if got := msgs[1].Address(); got != "/two" {
		t.Errorf("element order: second address = %q, want /two", got)
	}
	if b.Timetag() != NewTimetagFromTime(timeRef) {
		t.Errorf("Timetag() = %d, want %d", b.Timetag(), NewTimetagFromTime(timeRef))
	}
}

func TestDecodeBundleNested(t *testing.T) {
	inner := encodeMessage(t, "/inner", "deep")
	var iw Writer
	if err := iw.WriteBundle(TimetagImmediate, inner); err != nil {
		t.Fatal(err)
	}
	outerMsg := encodeMessage(t, "/outer", int32(7))

	var w Writer
	if err := w.WriteBundle(TimetagImmediate, outerMsg, iw.Bytes()); err != nil {
		t.Fatal(err)
	}

	b, dropped, err := decodePacket(t, w.Bytes())
	if err != nil || dropped != 0 {
		t.Fatalf("decode() dropped = %d, err = %v", dropped, err)
	}
	msgs := b.Messages()
	if len(msgs) != 2 || msgs[0].Address() != "/outer" || msgs[1].Address() != "/inner" {
		t.Fatalf("nested bundle decoded wrong: %v", msgs)
	}
}

func TestDecodeBundleMalformedSibling(t *testing.T) {
	good1 := encodeMessage(t, "/good/1", int32(1))
	good2 := encodeMessage(t, "/good/2", int32(2))
	// Announces an int32 argument but carries no payload bytes.
	bad := append(appendPaddedString(nil, "/bad"), appendPaddedString(nil, ",i")...)

	var w Writer
	if err := w.WriteBundle(TimetagImmediate, good1, bad, good2); err != nil {
		t.Fatal(err)
	}

	b, dropped, err := decodePacket(t, w.Bytes())
	if err != nil {
		t.Fatalf("decode() err = %v, want per-element isolation", err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}

	msgs := b.Messages()
	if len(msgs) != 2 {
		t.Fatalf("decoded %d messages, want the 2 valid siblings", len(msgs))
	}
	if msgs[0].Address() != "/good/1" || msgs[1].Address() != "/good/2" {
		t.Errorf("sibling order wrong: %s, %s", msgs[0].Address(), msgs[1].Address())
	}
}

func TestDecodeZeroWidthTags(t *testing.T) {
	raw := encodeMessage(t, "/flags", true, false, nil, Impulse{}, int32(5))

	b, _, err := decodePacket(t, raw)
	if err != nil {
		t.Fatal(err)
	}
	m := &b.Messages()[0]

	if v, err := m.BoolAt(0); err != nil || !v {
		t.Errorf("BoolAt(0) = %t, %v", v, err)
	}
	if v, err := m.BoolAt(1); err != nil || v {
		t.Errorf("BoolAt(1) = %t, %v", v, err)
	}
	if v, err := m.IsNilAt(2); err != nil || !v {
		t.Errorf("IsNilAt(2) = %t, %v", v, err)
	}
	if tag, err := m.TypeTagAt(3); err != nil || tag != TypeImpulse {
		t.Errorf("TypeTagAt(3) = %c, %v", tag, err)
	}
	// Zero-width tags consume no payload: the int32 after them must
	// still land on the right offset.
	if v, err := m.Int32At(4); err != nil || v != 5 {
		t.Errorf("Int32At(4) = %d, %v", v, err)
	}
}

func TestDecodeReuseNoAllocs(t *testing.T) {
	raw := encodeMessage(t, "/composition/layers/1/clips/1/transport/position", float32(0.25), "warm")
	var pool bufferPool
	b := pool.get()
	copy(b.data, raw)

	// Warm up.
	if _, err := b.decode(len(raw)); err != nil {
		t.Fatal(err)
	}

	allocs := testing.AllocsPerRun(100, func() {
		if _, err := b.decode(len(raw)); err != nil {
			t.Fatal(err)
		}
		m := &b.Messages()[0]
		if _, err := m.Float32At(0); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Errorf("decode allocated %.1f times per run, want 0", allocs)
	}
}

func TestAccessorErrors(t *testing.T) {
	raw := encodeMessage(t, "/test", int32(1))
	b, _, err := decodePacket(t, raw)
	if err != nil {
		t.Fatal(err)
	}
	m := &b.Messages()[0]

	if _, err := m.Float32At(0); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Float32At(0) error = %v, want ErrTypeMismatch", err)
	}
	if _, err := m.Int32At(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Int32At(1) error = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := m.Int32At(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Int32At(-1) error = %v, want ErrIndexOutOfRange", err)
	}
}

func FuzzDecode(f *testing.F) {
	f.Add(encodeMessage(f, "/test/a", int32(1122), float32(3.75), "hello"))
	f.Add(encodeMessage(f, "/flags", true, false, nil, Impulse{}))
	f.Add(encodeMessage(f, "/blob", []byte{1, 2, 3, 4, 5}))
	var w Writer
	if err := w.WriteBundle(TimetagImmediate, encodeMessage(f, "/one", int32(1))); err != nil {
		f.Fatal(err)
	}
	f.Add(append([]byte(nil), w.Bytes()...))

	var pool bufferPool
	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > MaxPacketSize {
			return
		}
		b := pool.get()
		defer b.release()
		copy(b.data, data)

		if _, err := b.decode(len(data)); err != nil {
			return
		}
		// Whatever decoded must be fully readable without panics.
		for i := range b.Messages() {
			if _, err := b.Messages()[i].Arguments(); err != nil {
				t.Fatalf("Arguments() failed on decoded message: %v", err)
			}
		}
	})
}

var result interface{}

func BenchmarkDecode(b *testing.B) {
	raw := encodeMessage(b, "/composition/layers/1/clips/1/transport/position", float32(0.123456789), "hello world")
	var pool bufferPool
	buf := pool.get()
	copy(buf.data, raw)

	b.ReportAllocs()
	b.ResetTimer()
	var v float32
	for n := 0; n < b.N; n++ {
		if _, err := buf.decode(len(raw)); err != nil {
			b.Fatal(err)
		}
		v, _ = buf.Messages()[0].Float32At(0)
	}
	result = v
}

var timeRef = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
