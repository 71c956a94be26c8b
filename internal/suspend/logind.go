package suspend

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	login1Path      = "/org/freedesktop/login1"
	login1Manager   = "org.freedesktop.login1.Manager"
	prepareForSleep = login1Manager + ".PrepareForSleep"
)

// logind turns PrepareForSleep(true/false) into blank / unblank edges.
// PrepareForSleep announces system sleep, not a blanked display, so the
// edge comes only when the machine suspends. auto therefore prefers a
// sysfs blank file and falls back to logind only when none exists.
type logind struct{}

func (logind) Name() string { return "logind" }

func (logind) Run(ctx context.Context, obs *Observer) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(login1Path),
		dbus.WithMatchInterface(login1Manager),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		return fmt.Errorf("failed to subscribe to PrepareForSleep: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok || sig == nil {
				return fmt.Errorf("system bus connection closed")
			}
			handleSignal(sig, obs)
		}
	}
}

func handleSignal(sig *dbus.Signal, obs *Observer) {
	if sig.Name != prepareForSleep || len(sig.Body) < 1 {
		return
	}
	entering, ok := sig.Body[0].(bool)
	if !ok {
		return
	}
	if entering {
		obs.OnSuspend("logind")
	} else {
		obs.OnResume("logind")
	}
}
