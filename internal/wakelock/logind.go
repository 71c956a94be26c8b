package wakelock

import (
	"fmt"
	"os"
	"sync"

	"github.com/coreos/go-systemd/v22/login1"
)

// logind holds a systemd-logind "sleep" inhibitor. The inhibitor is released
// by closing the file descriptor logind hands back.
type logind struct {
	mu   sync.Mutex
	who  string
	conn *login1.Conn
	fd   *os.File
}

func newLogind(who string) *logind {
	return &logind{who: who}
}

func (l *logind) Lock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		conn, err := login1.New()
		if err != nil {
			return fmt.Errorf("failed to connect to logind: %w", err)
		}
		l.conn = conn
	}

	fd, err := l.conn.Inhibit("sleep", l.who, "Blinking notification LED", "block")
	if err != nil {
		return fmt.Errorf("failed to acquire inhibitor lock: %w", err)
	}
	l.fd = fd
	return nil
}

func (l *logind) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fd == nil {
		return nil
	}
	err := l.fd.Close()
	l.fd = nil
	if err != nil {
		return fmt.Errorf("failed to close inhibitor fd: %w", err)
	}
	return nil
}

func (l *logind) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	return nil
}

func (l *logind) Name() string {
	return "logind"
}
