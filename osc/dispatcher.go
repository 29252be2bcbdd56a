package osc

import (
	"fmt"
	"strings"
	"sync"
)

// HandlerFunc handles one decoded OSC message. The message view is only
// valid for the duration of the call; copy out anything you keep.
type HandlerFunc func(msg *Message)

// Handler is one address registration: a required immediate callback,
// invoked synchronously on the receive goroutine, and an optional
// deferred callback, invoked later from Tick on the host's own
// goroutine.
type Handler struct {
	Immediate HandlerFunc
	Deferred  HandlerFunc
}

// MonitorFunc observes every successfully decoded message before
// dispatch, whether or not a handler is bound for its address. Same
// lifetime rules as HandlerFunc.
type MonitorFunc func(addr []byte, msg *Message)

// Dispatcher maps exact OSC addresses to Handlers. Matching is plain
// byte equality, case sensitive; address patterns with wildcards are
// deliberately not supported.
//
// All methods are safe for concurrent use, so handlers may be added and
// removed while a Server is listening.
type Dispatcher struct {
	mu       sync.RWMutex
	methods  map[string]Handler
	monitors []MonitorFunc
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{methods: make(map[string]Handler)}
}

// Register binds a Handler to the given OSC address. At most one Handler
// may be bound per address: a second registration returns
// ErrAddressAlreadyBound and leaves the first in place.
func (d *Dispatcher) Register(addr string, h Handler) error {
	if h.Immediate == nil {
		return fmt.Errorf("Register: %q: immediate callback is required", addr)
	}
	if len(addr) == 0 || addr[0] != '/' {
		return fmt.Errorf("Register: address %q must start with '/'", addr)
	}
	if strings.ContainsAny(addr, "*?,[]{}# ") {
		return fmt.Errorf("Register: address %q may not contain any characters in \"*?,[]{}# \"", addr)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.methods == nil {
		d.methods = make(map[string]Handler)
	}
	if _, ok := d.methods[addr]; ok {
		return fmt.Errorf("Register: %q: %w", addr, ErrAddressAlreadyBound)
	}

	d.methods[addr] = h
	return nil
}

// Unregister removes the Handler bound to addr, reporting whether one
// was bound.
func (d *Dispatcher) Unregister(addr string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.methods[addr]; !ok {
		return false
	}
	delete(d.methods, addr)
	return true
}

// AddMonitor adds a callback observing every decoded message.
func (d *Dispatcher) AddMonitor(fn MonitorFunc) {
	d.mu.Lock()
	d.monitors = append(d.monitors, fn)
	d.mu.Unlock()
}

// lookup finds the Handler for an address span. Indexing the map with
// string(addr) directly doesn't allocate; the conversion is elided in a
// map index expression.
func (d *Dispatcher) lookup(addr []byte) (Handler, bool) {
	d.mu.RLock()
	h, ok := d.methods[string(addr)]
	d.mu.RUnlock()
	return h, ok
}

// dispatch runs the monitors and the bound immediate callback for one
// message, and reports the deferred callback to enqueue, if any.
func (d *Dispatcher) dispatch(m *Message) (deferred HandlerFunc) {
	d.mu.RLock()
	monitors := d.monitors
	h, ok := d.methods[string(m.addr)]
	d.mu.RUnlock()

	for _, fn := range monitors {
		fn(m.addr, m)
	}
	if !ok {
		return nil
	}

	h.Immediate(m)
	return h.Deferred
}
