package led

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config selects the notification LED backend.
type Config struct {
	Backend    string // auto, sysfs, command, none
	Device     string // LED class device name for sysfs
	OnCommand  string
	OffCommand string
	Root       string // LED class root, defaults to /sys/class/leds
}

// preferredDevices are LED class names used for touchkey / notification
// backlights, in order of preference.
var preferredDevices = []string{
	"button-backlight",
	"notification",
	"kbd_backlight",
	"keyboard-backlight",
	"white",
}

// New creates an LED controller for cfg.
// In auto mode it falls back to a no-op controller if no LED is found.
func New(cfg Config, logger *slog.Logger) (Controller, error) {
	if cfg.Root == "" {
		cfg.Root = sysfsLEDPath
	}

	switch strings.ToLower(cfg.Backend) {
	case "sysfs":
		if cfg.Device == "" {
			return nil, fmt.Errorf("sysfs backend needs a device name")
		}
		return newSysfs(cfg.Root, cfg.Device)
	case "command":
		return newCommand(cfg.OnCommand, cfg.OffCommand, logger)
	case "none", "noop":
		return newNoop(logger), nil
	case "", "auto":
		device := cfg.Device
		if device == "" {
			device = detectDevice(cfg.Root)
		}
		if device == "" {
			logger.Info("No notification LED detected, using no-op controller", "root", cfg.Root)
			return newNoop(logger), nil
		}
		logger.Info("Detected notification LED, using sysfs LED controller", "device", device)
		return newSysfs(cfg.Root, device)
	default:
		return nil, fmt.Errorf("unknown LED backend %q", cfg.Backend)
	}
}

// Available lists the LED class devices under root.
func Available(root string) []string {
	if root == "" {
		root = sysfsLEDPath
	}
	return listSysfs(root)
}

// Detect reports the device "auto" would open under root, or "" when none
// matches.
func Detect(root string) string {
	if root == "" {
		root = sysfsLEDPath
	}
	return detectDevice(root)
}

// detectDevice picks the first LED whose name matches a preferred device.
func detectDevice(root string) string {
	names := listSysfs(root)
	for _, want := range preferredDevices {
		for _, name := range names {
			if strings.Contains(name, want) {
				return name
			}
		}
	}
	return ""
}
