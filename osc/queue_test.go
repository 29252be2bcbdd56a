package osc

import "testing"

func TestCallQueueFIFO(t *testing.T) {
	var q callQueue
	var pool bufferPool
	noop := func(_ *Message) {}

	// Push through several grow cycles.
	bufs := make([]*Buffer, 50)
	for i := range bufs {
		bufs[i] = pool.get()
		q.push(queuedCall{fn: noop, msg: &Message{}, buf: bufs[i]})
	}

	for i := range bufs {
		c, ok := q.pop()
		if !ok {
			t.Fatalf("pop() empty after %d", i)
		}
		if c.buf != bufs[i] {
			t.Fatalf("pop() out of order at %d", i)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("pop() on drained queue returned a call")
	}
}

func TestCallQueueWrapAround(t *testing.T) {
	var q callQueue
	var pool bufferPool
	noop := func(_ *Message) {}

	// Interleave pushes and pops so head walks around the ring.
	next, want := 0, 0
	for round := 0; round < 10; round++ {
		for i := 0; i < 7; i++ {
			b := pool.get()
			b.timetag = Timetag(next)
			next++
			q.push(queuedCall{fn: noop, buf: b})
		}
		for i := 0; i < 5; i++ {
			c, ok := q.pop()
			if !ok {
				t.Fatal("pop() empty")
			}
			if int(c.buf.Timetag()) != want {
				t.Fatalf("pop() = %d, want %d", c.buf.Timetag(), want)
			}
			want++
			c.buf.release()
		}
	}
}

func TestCallQueueClearReleases(t *testing.T) {
	var q callQueue
	var pool bufferPool

	b := pool.get() // refs = 1
	b.retain()      // queue reference
	q.push(queuedCall{fn: func(_ *Message) {}, buf: b})

	q.clear()
	if _, ok := q.pop(); ok {
		t.Error("pop() after clear returned a call")
	}
	if got := b.refs.Load(); got != 1 {
		t.Errorf("clear must drop the queue's reference; refs = %d, want 1", got)
	}
}
