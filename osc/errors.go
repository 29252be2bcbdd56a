package osc

import "errors"

var (
	// ErrMalformedAtom reports a fixed or variable size field that cannot
	// be fully read within the remaining packet bytes.
	ErrMalformedAtom = errors.New("osc: malformed atom")

	// ErrMalformedPacket reports a structural violation in a message or
	// bundle: a bad tag character, a non-4-aligned length, a truncated
	// packet.
	ErrMalformedPacket = errors.New("osc: malformed packet")

	// ErrTypeMismatch is returned by the typed accessors when the tag at
	// the requested index doesn't match the requested type.
	ErrTypeMismatch = errors.New("osc: type mismatch")

	// ErrIndexOutOfRange is returned by the typed accessors when the
	// requested index is beyond the argument count.
	ErrIndexOutOfRange = errors.New("osc: argument index out of range")

	// ErrAddressAlreadyBound reports a second registration for an address
	// that already has a handler. The first registration stays active.
	ErrAddressAlreadyBound = errors.New("osc: address already bound")

	// ErrTransportClosed reports an operation on a closed server or
	// client.
	ErrTransportClosed = errors.New("osc: transport closed")
)
