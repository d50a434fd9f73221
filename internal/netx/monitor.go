// Package netx provides the sampled connectivity monitor the sync engine
// consults before starting a dispatch pass.
package netx

import (
	"context"
	"net"
	"sync/atomic"
	"time"
)

// Probe reports the last sampled reachability state. It never blocks.
type Probe interface {
	IsReachable() bool
}

// Monitor samples reachability by dialing a well-known address and storing
// the outcome in an atomic flag. Readers get the last sample, never a live
// network call. The caller owns the sampling cadence via CheckNow.
type Monitor struct {
	addr    string
	timeout time.Duration
	online  atomic.Bool

	// dial is a seam for tests.
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewMonitor(addr string) *Monitor {
	timeout := 3 * time.Second
	d := &net.Dialer{Timeout: timeout}
	return &Monitor{
		addr:    addr,
		timeout: timeout,
		dial:    d.DialContext,
	}
}

// IsReachable returns the last sampled state.
func (m *Monitor) IsReachable() bool {
	return m.online.Load()
}

// CheckNow dials the probe address once and updates the sampled state.
func (m *Monitor) CheckNow(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	conn, err := m.dial(ctx, "tcp", m.addr)
	if err == nil {
		_ = conn.Close()
	}

	online := err == nil
	m.online.Store(online)
	return online
}
