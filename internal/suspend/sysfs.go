package suspend

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultPollInterval is how often the blank file is read.
const DefaultPollInterval = time.Second

// blankCandidates are probed in order by auto detection.
var blankCandidates = []string{
	"/sys/class/graphics/fb0/blank",
	"/sys/class/backlight/*/bl_power",
	"/sys/class/drm/card*-*/dpms",
}

// blankFile polls a framebuffer blank, backlight bl_power or DRM dpms file.
type blankFile struct {
	path     string
	interval time.Duration
}

func newBlankFile(path string, interval time.Duration) *blankFile {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &blankFile{path: path, interval: interval}
}

func (b *blankFile) Name() string { return "sysfs" }

func (b *blankFile) Run(ctx context.Context, obs *Observer) error {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	last, err := readBlank(b.path)
	if err != nil {
		return err
	}
	b.apply(obs, last)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			blanked, err := readBlank(b.path)
			if err != nil {
				// file may vanish briefly while the panel powers down
				continue
			}
			if blanked != last {
				last = blanked
				b.apply(obs, blanked)
			}
		}
	}
}

func (b *blankFile) apply(obs *Observer, blanked bool) {
	if blanked {
		obs.OnSuspend("sysfs")
	} else {
		obs.OnResume("sysfs")
	}
}

// readBlank reports whether the file says the display is off. Numeric files
// use 0 for unblanked; dpms files use "On".
func readBlank(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read blank state: %w", err)
	}
	return parseBlank(string(data))
}

func parseBlank(s string) (bool, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "On":
		return false, nil
	case "Off", "Standby", "Suspend":
		return true, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return false, fmt.Errorf("unrecognised blank state %q", s)
	}
	return v != 0, nil
}
