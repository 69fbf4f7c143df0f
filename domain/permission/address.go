package permission

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrEmptyAddress is returned by ParseAddress for an empty string.
var ErrEmptyAddress = errors.New("empty address")

// Address is a parsed "host[:port]" string.
type Address struct {
	Host    string
	Port    int
	HasPort bool
}

// String formats the address back to "host" or "host:port", bracketing
// IPv6 hosts when a port is present.
func (a Address) String() string {
	if !a.HasPort {
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// ParseAddress splits a network address into host and optional port.
// Accepted forms are "host", "host:port", "[v6]" and "[v6]:port". An
// unbracketed value with more than one colon is taken as a bare IPv6 host.
func ParseAddress(addr string) (Address, error) {
	if addr == "" {
		return Address{}, ErrEmptyAddress
	}

	if strings.HasPrefix(addr, "[") {
		if strings.HasSuffix(addr, "]") {
			return Address{Host: addr[1 : len(addr)-1]}, nil
		}
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return Address{}, fmt.Errorf("invalid address %q: %w", addr, err)
		}
		return withPort(addr, host, port)
	}

	switch strings.Count(addr, ":") {
	case 0:
		return Address{Host: addr}, nil
	case 1:
		i := strings.LastIndex(addr, ":")
		return withPort(addr, addr[:i], addr[i+1:])
	default:
		return Address{Host: addr}, nil
	}
}

func withPort(addr, host, port string) (Address, error) {
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return Address{}, fmt.Errorf("invalid port in address %q", addr)
	}
	return Address{Host: host, Port: n, HasPort: true}, nil
}

// JoinAddress formats a connect target the way Net requests are keyed.
func JoinAddress(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
