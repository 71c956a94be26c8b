//go:build !linux

package hotplug

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by NewMonitor on systems without netlink.
var ErrUnsupported = errors.New("hotplug: not supported on this platform")

// Monitor is unavailable on this platform.
type Monitor struct{}

// NewMonitor always fails on this platform.
func NewMonitor(string) (*Monitor, error) { return nil, ErrUnsupported }

// Close is a no-op.
func (m *Monitor) Close() error { return nil }

// Run returns at once.
func (m *Monitor) Run(_ context.Context, events chan<- Event) error {
	close(events)
	return ErrUnsupported
}
