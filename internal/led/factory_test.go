package led

import (
	"testing"
)

func TestNew(t *testing.T) {
	root := t.TempDir()
	makeLED(t, root, "mmc0::", map[string]string{"brightness": "0"})
	makeLED(t, root, "button-backlight", map[string]string{"brightness": "0", "max_brightness": "1"})

	empty := t.TempDir()

	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"auto detects preferred LED", Config{Backend: "auto", Root: root}, "sysfs:button-backlight", false},
		{"auto falls back to noop", Config{Root: empty}, "none", false},
		{"auto with explicit device", Config{Backend: "auto", Root: root, Device: "mmc0::"}, "sysfs:mmc0::", false},
		{"sysfs needs device", Config{Backend: "sysfs", Root: root}, "", true},
		{"sysfs missing device", Config{Backend: "sysfs", Root: root, Device: "white"}, "", true},
		{"none", Config{Backend: "none"}, "none", false},
		{"unknown backend", Config{Backend: "pwm"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, err := New(tt.cfg, newTestLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && ctrl.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", ctrl.Name(), tt.wantName)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	root := t.TempDir()
	makeLED(t, root, "red", nil)
	makeLED(t, root, "green", nil)

	got := Available(root)
	if len(got) != 2 {
		t.Errorf("Available() = %v, want 2 entries", got)
	}

	if missing := Available(root + "/missing"); missing == nil || len(missing) != 0 {
		t.Errorf("Available() on missing root = %v, want empty slice", missing)
	}
}

func TestDetectDevice_Preference(t *testing.T) {
	root := t.TempDir()
	makeLED(t, root, "white", nil)
	makeLED(t, root, "notification", nil)

	if got := detectDevice(root); got != "notification" {
		t.Errorf("detectDevice() = %q, want notification", got)
	}
}
