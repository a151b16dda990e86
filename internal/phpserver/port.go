package phpserver

import (
	"net"
	"strconv"
	"time"
)

// portProbeTimeout bounds each connection attempt during port discovery.
const portProbeTimeout = 250 * time.Millisecond

// PortInUse reports whether something is already listening on the given
// local port.
func PortInUse(host string, port int) bool {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, portProbeTimeout)
	if err != nil {
		return false
	}
	conn.Close() //nolint:errcheck // probe connection, nothing to report
	return true
}

// FindAvailablePort returns the first free port in
// [start, start+maxAttempts). The second return is false when every
// candidate is taken.
func FindAvailablePort(host string, start, maxAttempts int) (int, bool) {
	for i := 0; i < maxAttempts; i++ {
		port := start + i
		if !PortInUse(host, port) {
			return port, true
		}
	}
	return 0, false
}
