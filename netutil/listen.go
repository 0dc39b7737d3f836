package netutil

import (
	"net"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Listen binds network/address, reclaiming a stale unix socket file left
// behind by a naming-server or storage-server process that was killed
// without closing its listener cleanly. Skeleton.Start does a plain
// net.Listen; this wrapper is what cmd/naming-server calls first against a
// unix address, so the reclaim happens once, before the skeleton's own
// bind.
func Listen(network string, address string) (net.Listener, error) {
	if network != "unix" {
		return net.Listen(network, address)
	}
	listener, err := net.Listen(network, address)
	if err != nil && strings.HasSuffix(err.Error(), "bind: address already in use") && !reachable(address) {
		log.WithField("address", address).Info("removing stale unix socket")
		_ = os.Remove(address)
		listener, err = net.Listen(network, address)
	}
	return listener, err
}

func reachable(pathname string) bool {
	conn, err := net.Dial("unix", pathname)
	if conn != nil {
		defer func() { _ = conn.Close() }()
	}
	if err == nil {
		return true
	}
	return !strings.HasSuffix(err.Error(), "connect: connection refused")
}
