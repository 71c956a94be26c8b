package led

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using the Linux LED class interface
type sysfs struct {
	path       string // /sys/class/leds/<device>
	device     string
	brightness string // value written on Enable
}

// newSysfs opens the LED class device under root. Enable writes the device's
// max_brightness (or 1 when it is not exposed).
func newSysfs(root, device string) (*sysfs, error) {
	ledPath := filepath.Join(root, device)

	// Check if LED exists
	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("LED %q not found at %s", device, ledPath)
	}

	brightness := "1"
	if data, err := os.ReadFile(filepath.Join(ledPath, "max_brightness")); err == nil {
		if v, parseErr := strconv.Atoi(strings.TrimSpace(string(data))); parseErr == nil && v > 0 {
			brightness = strconv.Itoa(v)
		}
	}

	s := &sysfs{
		path:       ledPath,
		device:     device,
		brightness: brightness,
	}

	// Detach any kernel trigger so brightness writes stick
	triggerPath := filepath.Join(ledPath, "trigger")
	if _, err := os.Stat(triggerPath); err == nil {
		if err := os.WriteFile(triggerPath, []byte("none"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to set LED trigger to none: %w", err)
		}
	}

	return s, nil
}

// Enable writes the maximum brightness
func (s *sysfs) Enable() error {
	return s.write(s.brightness)
}

// Disable writes zero brightness
func (s *sysfs) Disable() error {
	return s.write("0")
}

// Name returns the controller name
func (s *sysfs) Name() string {
	return "sysfs:" + s.device
}

func (s *sysfs) write(value string) error {
	brightnessPath := filepath.Join(s.path, "brightness")
	if err := os.WriteFile(brightnessPath, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}
	return nil
}

// listSysfs returns the LED class devices under root.
func listSysfs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
