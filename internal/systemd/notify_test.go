package systemd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNotifier_Messages(t *testing.T) {
	var got []string
	n := &Notifier{
		logger: newTestLogger(),
		notify: func(state string) (bool, error) {
			got = append(got, state)
			return true, nil
		},
	}

	n.Ready()
	n.Status("Blinking")
	n.Stopping()

	want := []string{"READY=1", "STATUS=Blinking", "STOPPING=1"}
	if len(got) != len(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNotifier_ErrorIsAbsorbed(t *testing.T) {
	n := &Notifier{
		logger: newTestLogger(),
		notify: func(string) (bool, error) { return false, errors.New("socket gone") },
	}
	n.Ready()
}

func TestNotifier_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	t.Setenv("WATCHDOG_USEC", "")

	n := NewNotifier(newTestLogger())
	n.Ready()

	done := make(chan struct{})
	go func() {
		n.Watchdog(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watchdog should return when no watchdog is configured")
	}
}
