package netutil

import (
	"net"
	"time"

	log "github.com/sirupsen/logrus"
)

// WaitForListener polls network/addr until something accepts a connection
// or timeout elapses, returning the last dial error on timeout. cmd/storage-server
// calls this to hold off registering with the naming server until the naming
// server's own registration endpoint is actually up, so a storage server
// started concurrently with (or just before) the naming server doesn't
// register-fail on its first attempt.
func WaitForListener(network, addr string, timeout time.Duration) error {
	start := time.Now()
	var lastErr error
	for attempt := 1; time.Since(start) < timeout; attempt++ {
		if lastErr = tryDial(network, addr); lastErr == nil {
			return nil
		}
		log.WithFields(log.Fields{
			"network": network,
			"address": addr,
			"attempt": attempt,
		}).Debug("waiting for listener")
		time.Sleep(100 * time.Millisecond)
	}
	return lastErr
}

func tryDial(network, addr string) error {
	conn, err := net.Dial(network, addr)
	if err == nil {
		err = conn.Close()
	}
	return err
}
