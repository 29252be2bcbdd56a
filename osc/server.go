package osc

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	stateStopped int32 = iota
	stateListening
	stateClosed
)

// Server receives OSC packets over UDP and dispatches them. Decoding is
// zero-copy into pooled buffers, so a warmed server processes packets
// without heap allocation.
//
// One background goroutine owns the read-decode-dispatch loop: monitors
// and immediate callbacks for a packet always finish before the next
// packet is read. Deferred callbacks cross over to whichever goroutine
// calls Tick, in arrival order.
type Server struct {
	// Addr is the UDP address to listen on.
	Addr string

	// Dispatcher routes decoded messages. Populated on Start if nil.
	Dispatcher *Dispatcher

	// ReadTimeout bounds each blocking read. Zero means no timeout.
	ReadTimeout time.Duration

	state     atomic.Int32
	conn      net.PacketConn
	pool      bufferPool
	queue     callQueue
	malformed atomic.Uint64
	group     errgroup.Group
	announcer *announcer
}

// Start opens the transport and spawns the receive loop. It is only
// legal from the initial stopped state; a closed server cannot be
// restarted.
func (s *Server) Start() error {
	if !s.state.CompareAndSwap(stateStopped, stateListening) {
		if s.state.Load() == stateClosed {
			return fmt.Errorf("Start: %w", ErrTransportClosed)
		}
		return fmt.Errorf("Start: already listening on %s", s.Addr)
	}

	if s.Dispatcher == nil {
		s.Dispatcher = NewDispatcher()
	}

	conn, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		s.state.Store(stateClosed)
		return err
	}
	s.conn = conn

	s.group.Go(s.serve)
	return nil
}

// LocalAddr returns the bound address, or nil before Start.
func (s *Server) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Close stops the server: it unblocks the pending read, stops any mDNS
// announcement and discards deferred calls still queued (their buffers
// go back to the pool, their callbacks never run). Tick after Close is a
// no-op. Close is idempotent and terminal.
func (s *Server) Close() error {
	if s.state.Swap(stateClosed) == stateClosed {
		return nil
	}

	if s.announcer != nil {
		s.announcer.shutdown()
		s.announcer = nil
	}

	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	s.group.Wait()
	s.queue.clear()
	return err
}

// Wait blocks until the receive loop exits and returns its error, if
// any. Close causes a nil return.
func (s *Server) Wait() error {
	return s.group.Wait()
}

// RegisterImmediate binds a callback invoked synchronously on the
// receive goroutine for every message addressed exactly to addr.
func (s *Server) RegisterImmediate(addr string, fn HandlerFunc) error {
	return s.dispatcher().Register(addr, Handler{Immediate: fn})
}

// RegisterPair binds an immediate callback plus a deferred one, invoked
// later from Tick with a snapshot of the same message.
func (s *Server) RegisterPair(addr string, immediate, deferred HandlerFunc) error {
	return s.dispatcher().Register(addr, Handler{Immediate: immediate, Deferred: deferred})
}

// Unregister removes the handler bound to addr, reporting whether one
// was bound.
func (s *Server) Unregister(addr string) bool {
	return s.dispatcher().Unregister(addr)
}

// AddMonitor adds a callback observing every decoded message regardless
// of dispatch outcome.
func (s *Server) AddMonitor(fn MonitorFunc) {
	s.dispatcher().AddMonitor(fn)
}

// MalformedPackets returns how many packets or bundle elements were
// dropped by the decoder since Start. Malformed input never stops the
// receive loop.
func (s *Server) MalformedPackets() uint64 {
	return s.malformed.Load()
}

// Tick runs every deferred callback queued so far, in the order their
// messages arrived, then returns. It never blocks on an empty queue.
// The host is expected to call it once per frame from a single
// goroutine.
func (s *Server) Tick() {
	for {
		c, ok := s.queue.pop()
		if !ok {
			return
		}
		s.invokeDeferred(c)
	}
}

func (s *Server) invokeDeferred(c queuedCall) {
	defer c.buf.release()
	defer recoverHandler(c.msg)
	c.fn(c.msg)
}

func (s *Server) dispatcher() *Dispatcher {
	if s.Dispatcher == nil {
		s.Dispatcher = NewDispatcher()
	}
	return s.Dispatcher
}

// serve is the receive loop: blocking read, in-place decode, dispatch.
// It exits when the connection is closed, after finishing the packet in
// hand.
func (s *Server) serve() error {
	var tempDelay time.Duration
	for {
		buf := s.pool.get()

		if s.ReadTimeout != 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
				buf.release()
				return err
			}
		}

		n, _, err := s.conn.ReadFrom(buf.data)
		if err != nil {
			buf.release()
			if s.state.Load() == stateClosed {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0

		s.process(buf, n)
		buf.release()
	}
}

// process decodes one packet and dispatches its messages. Decode
// failures drop the packet (counted, not raised); handler panics are
// contained per message.
func (s *Server) process(buf *Buffer, n int) {
	dropped, err := buf.decode(n)
	if err != nil {
		dropped++
	}
	if dropped > 0 {
		s.malformed.Add(uint64(dropped))
	}

	msgs := buf.Messages()
	for i := range msgs {
		m := &msgs[i]

		deferred := s.dispatchMessage(m)
		if deferred != nil {
			buf.retain()
			s.queue.push(queuedCall{fn: deferred, msg: m, buf: buf})
		}
	}
}

func (s *Server) dispatchMessage(m *Message) HandlerFunc {
	defer recoverHandler(m)
	return s.Dispatcher.dispatch(m)
}

// recoverHandler keeps a panicking callback from taking down the receive
// loop or the tick drain.
func recoverHandler(m *Message) {
	if err := recover(); err != nil {
		buf := make([]byte, 16<<10)
		buf = buf[:runtime.Stack(buf, false)]
		fmt.Fprintf(os.Stderr, "osc: panic handling %s: %v\n%s\n", m.AddressBytes(), err, buf)
	}
}

// ListenAndServe starts a server on addr with the given dispatcher and
// blocks until the receive loop exits.
func ListenAndServe(addr string, d *Dispatcher) error {
	s := &Server{Addr: addr, Dispatcher: d}
	if err := s.Start(); err != nil {
		return err
	}
	return s.Wait()
}
