package storage

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrPrivateAddress is returned when a fetch would connect to an address
// that is not publicly routable
var ErrPrivateAddress = errors.New("refusing to connect to a non-public address")

// IsPrivateIP reports whether ip is loopback, private, link-local,
// multicast scoped to the link or interface, or unspecified
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsUnspecified()
}

// IsPrivateHost reports whether host is localhost or a literal non-public
// IP. Names are not resolved; the fetcher checks resolved addresses when it
// dials.
func IsPrivateHost(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if zone := strings.IndexByte(host, '%'); zone >= 0 {
		host = host[:zone]
	}
	ip := net.ParseIP(host)
	return ip != nil && IsPrivateIP(ip)
}

// refusePrivateAddress is a net.Dialer Control hook that rejects non-public
// destinations after DNS resolution
func refusePrivateAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}
	return nil
}
