//go:build linux

package hotplug

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"
)

// Monitor reads uevents from the kernel broadcast group.
type Monitor struct {
	fd        int
	subsystem string
}

// NewMonitor opens the netlink socket. Only events for subsystem are
// delivered; an empty subsystem delivers everything.
func NewMonitor(subsystem string) (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: 1,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}

	// bounded reads so Run notices cancellation
	tv := unix.Timeval{Sec: 1}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Monitor{fd: fd, subsystem: subsystem}, nil
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Run sends matching events to events until ctx is cancelled or the socket
// fails. events is closed when Run returns.
func (m *Monitor) Run(ctx context.Context, events chan<- Event) error {
	defer close(events)

	buf := make([]byte, 8192)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}

		ev, ok := Parse(buf[:n])
		if !ok {
			continue
		}
		if m.subsystem != "" && ev.Subsystem != m.subsystem {
			continue
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
