package wakelock

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPowerPath is where Android kernels expose the userspace wakelock files.
const DefaultPowerPath = "/sys/power"

// sysfs takes an Android kernel wakelock by writing its name to
// wake_lock and drops it by writing the name to wake_unlock.
type sysfs struct {
	root string
	name string
}

func newSysfs(root, name string) *sysfs {
	return &sysfs{root: root, name: name}
}

// sysfsAvailable reports whether root carries the wakelock interface.
func sysfsAvailable(root string) bool {
	_, err := os.Stat(filepath.Join(root, "wake_lock"))
	return err == nil
}

func (s *sysfs) Lock() error {
	if err := os.WriteFile(filepath.Join(s.root, "wake_lock"), []byte(s.name), 0o644); err != nil {
		return fmt.Errorf("failed to write wake_lock: %w", err)
	}
	return nil
}

func (s *sysfs) Unlock() error {
	if err := os.WriteFile(filepath.Join(s.root, "wake_unlock"), []byte(s.name), 0o644); err != nil {
		return fmt.Errorf("failed to write wake_unlock: %w", err)
	}
	return nil
}

func (s *sysfs) Name() string {
	return "sysfs"
}
