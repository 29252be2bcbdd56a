package osc

import (
	"sync"
	"sync/atomic"
)

// MaxPacketSize is the maximum UDP payload size and so the capacity of
// every receive and send buffer.
const MaxPacketSize = 65507

// Buffer is one reusable receive buffer: the raw packet region plus the
// decoded message views into it. Buffers come from a pool and are handed
// back once every reference to them is done, so there is no per-packet
// allocation in steady state.
//
// Ownership is counted: the receive loop holds one reference while it
// decodes and dispatches, and every deferred call pushed to the queue
// takes another. The buffer only returns to the pool when the count hits
// zero, which keeps queued snapshots valid however long the host takes to
// drain them.
type Buffer struct {
	data    []byte
	msgs    []Message
	timetag Timetag // outermost bundle time tag, carried but never scheduled
	refs    atomic.Int32
	pool    *bufferPool
}

type bufferPool struct {
	p sync.Pool
}

// get returns a buffer holding one reference, owned by the caller.
func (bp *bufferPool) get() *Buffer {
	b, ok := bp.p.Get().(*Buffer)
	if !ok {
		b = &Buffer{
			data: make([]byte, MaxPacketSize),
			pool: bp,
		}
	}
	b.refs.Store(1)
	return b
}

// retain takes an additional reference; the queue calls it once per
// deferred call that snapshots this buffer.
func (b *Buffer) retain() {
	b.refs.Add(1)
}

// release drops a reference and recycles the buffer when the last one is
// gone.
func (b *Buffer) release() {
	if b.refs.Add(-1) == 0 {
		b.pool.p.Put(b)
	}
}

// Messages returns the decoded message views, in wire order.
func (b *Buffer) Messages() []Message { return b.msgs }

// Timetag returns the outermost bundle time tag of the last decoded
// packet, or 0 if the packet was a bare message.
func (b *Buffer) Timetag() Timetag { return b.timetag }

// nextMessage returns the next message slot for the decoder, reusing the
// slot's offset table capacity from earlier decodes.
func (b *Buffer) nextMessage(data []byte) *Message {
	if len(b.msgs) < cap(b.msgs) {
		b.msgs = b.msgs[:len(b.msgs)+1]
	} else {
		b.msgs = append(b.msgs, Message{})
	}
	m := &b.msgs[len(b.msgs)-1]
	m.reset(data)
	return m
}

// dropMessage undoes the last nextMessage after a failed element parse.
func (b *Buffer) dropMessage() {
	b.msgs = b.msgs[:len(b.msgs)-1]
}
