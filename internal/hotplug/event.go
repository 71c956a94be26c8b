// Package hotplug listens for kernel uevents on a netlink socket, so LED
// class devices that appear after startup (module load, overlay, USB) can be
// picked up without udev.
package hotplug

import (
	"path"
	"strings"
)

// Actions the daemon reacts to.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemLEDs is the LED class subsystem.
const SubsystemLEDs = "leds"

// Event is one kernel uevent.
type Event struct {
	Action    string
	DevPath   string // /devices/platform/leds/leds/button-backlight
	Subsystem string
	Env       map[string]string
}

// Name is the last element of DevPath, which for class devices is the name
// under /sys/class/<subsystem>.
func (e Event) Name() string {
	if e.DevPath == "" {
		return ""
	}
	return path.Base(e.DevPath)
}

// Parse decodes a kernel uevent: "ACTION@DEVPATH\0KEY=VALUE\0...".
// Messages rebroadcast by udevd carry a binary "libudev" header and are
// rejected, the kernel copy of the same event is enough.
func Parse(data []byte) (Event, bool) {
	if len(data) == 0 || strings.HasPrefix(string(data), "libudev") {
		return Event{}, false
	}

	parts := strings.Split(string(data), "\x00")
	action, devPath, ok := strings.Cut(parts[0], "@")
	if !ok || action == "" {
		return Event{}, false
	}

	ev := Event{
		Action:  action,
		DevPath: devPath,
		Env:     make(map[string]string, len(parts)-1),
	}
	for _, kv := range parts[1:] {
		key, value, found := strings.Cut(kv, "=")
		if !found || key == "" {
			continue
		}
		ev.Env[key] = value
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVPATH":
			ev.DevPath = value
		}
	}
	return ev, true
}
