package wakelock

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string // auto, sysfs, logind, none
	Name      string // wakelock name / inhibitor "who"
	PowerPath string // sysfs root, defaults to /sys/power
}

// NewBackend returns the backend named by cfg. "auto" prefers the Android
// sysfs interface, then logind when a system bus is reachable, then none.
func NewBackend(cfg Config, logger *slog.Logger) (Backend, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.PowerPath == "" {
		cfg.PowerPath = DefaultPowerPath
	}

	switch strings.ToLower(cfg.Backend) {
	case "sysfs":
		if !sysfsAvailable(cfg.PowerPath) {
			return nil, fmt.Errorf("wakelock interface not found under %s", cfg.PowerPath)
		}
		return newSysfs(cfg.PowerPath, cfg.Name), nil
	case "logind":
		return newLogind(cfg.Name), nil
	case "none", "noop":
		return noop{}, nil
	case "", "auto":
		return detect(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown wakelock backend %q", cfg.Backend)
	}
}

// Detect reports which backend "auto" would pick, without opening it.
func Detect(powerPath string) string {
	if powerPath == "" {
		powerPath = DefaultPowerPath
	}
	return detect(Config{PowerPath: powerPath}, nil).Name()
}

func detect(cfg Config, logger *slog.Logger) Backend {
	if sysfsAvailable(cfg.PowerPath) {
		if logger != nil {
			logger.Info("Detected kernel wakelock interface", "path", cfg.PowerPath)
		}
		return newSysfs(cfg.PowerPath, cfg.Name)
	}
	if systemBusAvailable() {
		if logger != nil {
			logger.Info("Using logind inhibitor for wakelock")
		}
		return newLogind(cfg.Name)
	}
	if logger != nil {
		logger.Info("No wakelock mechanism detected, using no-op wakelock")
	}
	return noop{}
}

// systemBusAvailable checks for the system D-Bus socket.
func systemBusAvailable() bool {
	if os.Getenv("DBUS_SYSTEM_BUS_ADDRESS") != "" {
		return true
	}
	_, err := os.Stat("/run/dbus/system_bus_socket")
	return err == nil
}
