package osc

import "sync"

// queuedCall is one deferred invocation: the callback, the message view
// it gets, and the buffer reference that keeps that view alive until the
// call has run.
type queuedCall struct {
	fn  HandlerFunc
	msg *Message
	buf *Buffer
}

// callQueue is the FIFO hand-off between the receive goroutine and the
// host's Tick goroutine. It is a mutex-guarded ring that grows when
// full: deferred calls must not be dropped under burst, and growth only
// happens until the ring matches the peak backlog.
type callQueue struct {
	mu    sync.Mutex
	calls []queuedCall
	head  int
	count int
}

const minQueueSize = 16

func (q *callQueue) push(c queuedCall) {
	q.mu.Lock()
	if q.count == len(q.calls) {
		q.grow()
	}
	q.calls[(q.head+q.count)%len(q.calls)] = c
	q.count++
	q.mu.Unlock()
}

// grow doubles the ring, unwrapping it to the front. Caller holds mu.
func (q *callQueue) grow() {
	size := len(q.calls) * 2
	if size < minQueueSize {
		size = minQueueSize
	}
	calls := make([]queuedCall, size)
	n := copy(calls, q.calls[q.head:])
	copy(calls[n:], q.calls[:q.head])
	q.calls = calls
	q.head = 0
}

func (q *callQueue) pop() (queuedCall, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return queuedCall{}, false
	}
	c := q.calls[q.head]
	q.calls[q.head] = queuedCall{}
	q.head = (q.head + 1) % len(q.calls)
	q.count--
	return c, true
}

// clear discards all pending calls and releases their buffer references.
func (q *callQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count > 0 {
		c := q.calls[q.head]
		q.calls[q.head] = queuedCall{}
		q.head = (q.head + 1) % len(q.calls)
		q.count--
		c.buf.release()
	}
}
