package master

import (
	"fmt"
	"io"
	"net"
	"strings"
)

// netAcceptor adapts a net.Listener to the Acceptor interface (§4.9,
// component C9). The wire format is transport-agnostic (§6): anything
// net.Listen supports works, most commonly "unix" for same-host pairs and
// "tcp" for a genuinely remote slave.
type netAcceptor struct {
	ln net.Listener
}

// Listen parses a "<network>:<address>" transport spec (e.g.
// "unix:/tmp/rpty.sock" or "tcp::4040") and returns an Acceptor bound to
// it.
func Listen(spec string) (Acceptor, error) {
	network, address, err := parseTransportSpec(spec)
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("master: listen %s: %w", spec, err)
	}
	return &netAcceptor{ln: ln}, nil
}

func parseTransportSpec(spec string) (network, address string, err error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("master: malformed transport spec %q (want network:address)", spec)
	}
	return parts[0], parts[1], nil
}

func (a *netAcceptor) Accept() (io.ReadWriteCloser, error) {
	return a.ln.Accept()
}

func (a *netAcceptor) Close() error {
	return a.ln.Close()
}
