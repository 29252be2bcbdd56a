package osc

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type OSC endpoints announce under.
const ServiceType = "_osc._udp"

// DefaultDiscoverTimeout bounds a Discover browse when no timeout is
// given.
const DefaultDiscoverTimeout = 5 * time.Second

type announcer struct {
	server *mdns.Server
}

func (a *announcer) shutdown() {
	a.server.Shutdown()
}

// Announce advertises the listening server as an "_osc._udp" mDNS
// instance so controllers can find it by browsing instead of manual
// address entry. The announcement is withdrawn on Close. Only legal
// while listening.
func (s *Server) Announce(instance string, txt ...string) error {
	if s.state.Load() != stateListening {
		return fmt.Errorf("Announce: %w", ErrTransportClosed)
	}
	if s.announcer != nil {
		return fmt.Errorf("Announce: already announcing")
	}

	addr, ok := s.conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("Announce: transport is not UDP")
	}

	var ips []net.IP
	if addr.IP != nil && !addr.IP.IsUnspecified() {
		ips = []net.IP{addr.IP}
	}

	service, err := mdns.NewMDNSService(
		instance,    // instance name
		ServiceType, // service type
		"",          // domain (empty = .local)
		"",          // host name (empty = auto)
		addr.Port,
		ips,
		txt,
	)
	if err != nil {
		return fmt.Errorf("Announce: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("Announce: %w", err)
	}

	s.announcer = &announcer{server: server}
	return nil
}

// Endpoint is a discovered OSC destination.
type Endpoint struct {
	Name string
	Host string
	Port int
	Info []string
}

// Addr returns the endpoint as a host:port string suitable for Dial.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Discover browses the local network for announced OSC endpoints until
// the timeout elapses.
func Discover(timeout time.Duration) ([]Endpoint, error) {
	if timeout == 0 {
		timeout = DefaultDiscoverTimeout
	}

	entriesCh := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []Endpoint, 1)

	go func() {
		var found []Endpoint
		for entry := range entriesCh {
			e := Endpoint{
				Name: entry.Name,
				Host: entry.Host,
				Port: entry.Port,
				Info: entry.InfoFields,
			}
			if entry.AddrV4 != nil {
				e.Host = entry.AddrV4.String()
			} else if entry.AddrV6 != nil {
				e.Host = entry.AddrV6.String()
			}
			found = append(found, e)
		}
		done <- found
	}()

	params := &mdns.QueryParam{
		Service:             ServiceType,
		Domain:              "local",
		Timeout:             timeout,
		Entries:             entriesCh,
		WantUnicastResponse: true,
	}
	err := mdns.Query(params)
	close(entriesCh)
	found := <-done
	if err != nil {
		return nil, fmt.Errorf("Discover: %w", err)
	}

	return found, nil
}
