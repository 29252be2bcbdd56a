//Package osc sends and receives OpenSoundControl messages without
//allocating on the receive path.
//
//This implementation is based on the Open Sound Control 1.0 Specification
//(http://opensoundcontrol.org/spec-1_0.html).
//
//Open Sound Control (OSC) is an open, transport-independent, message-based
//protocol developed for communication among computers, sound synthesizers,
//and other multimedia devices. This package targets real-time control and
//automation: thousands of small messages per second, decoded into pooled
//buffers and dispatched without garbage-collection pressure.
//
//Receiving
//
//A Server owns one background goroutine that reads UDP packets, decodes
//them in place and dispatches by exact address match. Handlers come in
//two flavors: the immediate callback runs synchronously on the receive
//goroutine; an optional deferred callback is queued and runs when the
//host calls Tick, typically once per frame from its main loop.
//
//  server := &osc.Server{Addr: "127.0.0.1:8765"}
//  server.RegisterPair("/layer/1/opacity",
//      func(msg *osc.Message) {
//          // receive goroutine: read values, don't block
//      },
//      func(msg *osc.Message) {
//          // main loop, via server.Tick()
//      })
//  server.Start()
//  for running {
//      server.Tick()
//      // ... rest of the frame
//  }
//  server.Close()
//
//Messages are views over the receive buffer with typed positional
//accessors:
//
//  v, err := msg.Float32At(0)
//
//A view is valid only for the duration of the callback; immediate
//callbacks copy out what they keep, deferred callbacks get a snapshot
//that lives until their Tick.
//
//Supported type tags:
//
//	'i' (int32)
//	'f' (float32)
//	's' (string)
//	'b' ([]byte)
//	'h' (int64)
//	'd' (float64)
//	't' (Timetag)
//	'T' (true)
//	'F' (false)
//	'N' (nil)
//	'I' (Impulse)
//	'c' (Char)
//	'r' (RGBA)
//	'm' (MIDI)
//
//Bundles are decoded element by element in wire order; their
//time tags are carried but never scheduled, so contents always dispatch
//immediately. Address patterns with wildcards are not supported either:
//dispatch is exact, case-sensitive byte equality.
//
//Sending
//
//A Client owns a reusable encode buffer and one destination:
//
//  client, _ := osc.Dial("localhost:8765")
//  client.Send("/layer/1/opacity", float32(0.5))
//  client.SendString("/layer/1/name", "front wash")
//
//Discovery
//
//Servers can announce themselves over mDNS as "_osc._udp" instances and
//clients can browse for them, see (*Server).Announce and Discover.
package osc
