package attr

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/blnd/internal/bln"
)

type fakeBacklight struct {
	mu       sync.Mutex
	lit      bool
	disables int
}

func (f *fakeBacklight) Enable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lit = true
	return nil
}

func (f *fakeBacklight) Disable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lit = false
	f.disables++
	return nil
}

func (f *fakeBacklight) isLit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lit
}

type fakeWakelock struct {
	mu   sync.Mutex
	held bool
}

func (f *fakeWakelock) Acquire() { f.mu.Lock(); f.held = true; f.mu.Unlock() }
func (f *fakeWakelock) Release() { f.mu.Lock(); f.held = false; f.mu.Unlock() }
func (f *fakeWakelock) Held() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTable(t *testing.T) (*Table, *bln.Engine, *fakeBacklight, *fakeWakelock) {
	t.Helper()
	wl := &fakeWakelock{}
	bl := &fakeBacklight{}
	e := bln.NewEngine(bln.Options{}, wl, nil, newTestLogger())
	e.RegisterCapability(bl, "fake")
	e.Start(context.Background())
	t.Cleanup(e.Close)
	return New(e, nil, newTestLogger()), e, bl, wl
}

func mustWrite(t *testing.T, tbl *Table, name, buf string) {
	t.Helper()
	n, err := tbl.Write(name, buf)
	if err != nil {
		t.Fatalf("Write(%s, %q): %v", name, buf, err)
	}
	if n != len(buf) {
		t.Fatalf("Write(%s, %q) = %d, want %d", name, buf, n, len(buf))
	}
}

func mustRead(t *testing.T, tbl *Table, name string) string {
	t.Helper()
	s, err := tbl.Read(name)
	if err != nil {
		t.Fatalf("Read(%s): %v", name, err)
	}
	return s
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRead_Defaults(t *testing.T) {
	tbl, _, _, _ := newTestTable(t)

	want := map[string]string{
		Enabled:         "0\n",
		NotificationLED: "0\n",
		InKernelBlink:   "0\n",
		BlinkControl:    "0\n",
		BlinkInterval:   "500\n",
		BlinkMaxtime:    "600\n",
		Version:         "9\n",
	}
	for name, v := range want {
		if got := mustRead(t, tbl, name); got != v {
			t.Errorf("Read(%s) = %q, want %q", name, got, v)
		}
	}
}

func TestNames(t *testing.T) {
	tbl, _, _, _ := newTestTable(t)

	names := tbl.Names()
	if len(names) != 7 {
		t.Fatalf("Names() = %v", names)
	}
	for _, n := range names {
		if _, err := tbl.Read(n); err != nil {
			t.Errorf("listed attribute %s not readable: %v", n, err)
		}
	}
	if tbl.Writable(Version) {
		t.Error("version reported writable")
	}
	if !tbl.Writable(BlinkInterval) {
		t.Error("blink_interval reported read-only")
	}
}

func TestErrors(t *testing.T) {
	tbl, _, _, _ := newTestTable(t)

	if _, err := tbl.Write(Version, "10"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Write(version) error = %v, want ErrReadOnly", err)
	}
	if _, err := tbl.Read("brightness"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Read(brightness) error = %v, want ErrUnknownAttribute", err)
	}
	if _, err := tbl.Write("brightness", "1"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Write(brightness) error = %v, want ErrUnknownAttribute", err)
	}
	if got := mustRead(t, tbl, Version); got != "9\n" {
		t.Errorf("version changed: %q", got)
	}
}

func TestWrite_RejectedValues(t *testing.T) {
	tests := []struct {
		name  string
		attr  string
		input string
		want  string
	}{
		{"enabled out of range", Enabled, "2", "0\n"},
		{"enabled garbage", Enabled, "yes", "0\n"},
		{"interval zero", BlinkInterval, "0", "500\n"},
		{"interval empty", BlinkInterval, "", "500\n"},
		{"interval overflow", BlinkInterval, "99999999999", "500\n"},
		{"maxtime zero", BlinkMaxtime, "0\n", "600\n"},
		{"in_kernel_blink out of range", InKernelBlink, "7", "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, _, _, _ := newTestTable(t)
			mustWrite(t, tbl, tt.attr, tt.input)
			if got := mustRead(t, tbl, tt.attr); got != tt.want {
				t.Errorf("after Write(%q): Read = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWrite_IntervalRoundTrip(t *testing.T) {
	tbl, _, _, _ := newTestTable(t)

	for _, in := range []string{"250\n", "  1", "42abc", "+7"} {
		mustWrite(t, tbl, BlinkInterval, in)
		v, _ := ParseUint(in)
		if got, want := mustRead(t, tbl, BlinkInterval), strconv.FormatUint(uint64(v), 10)+"\n"; got != want {
			t.Errorf("Write(%q): Read = %q, want %q", in, got, want)
		}
	}
}

func TestBlinkControl_IgnoredWhenIdle(t *testing.T) {
	tbl, _, bl, _ := newTestTable(t)

	mustWrite(t, tbl, BlinkControl, "1")
	if got := mustRead(t, tbl, BlinkControl); got != "0\n" {
		t.Errorf("blink_control = %q, want 0 while idle", got)
	}
	bl.mu.Lock()
	disables := bl.disables
	bl.mu.Unlock()
	if disables != 0 {
		t.Error("backlight touched while idle")
	}
}

func TestScenario_ManualBlink(t *testing.T) {
	tbl, _, bl, wl := newTestTable(t)

	mustWrite(t, tbl, Enabled, "1")
	mustWrite(t, tbl, InKernelBlink, "0")
	mustWrite(t, tbl, NotificationLED, "1")

	if !bl.isLit() {
		t.Fatal("backlight off after notification_led=1")
	}
	if wl.Held() {
		t.Error("wakelock taken for a steady notification")
	}

	mustWrite(t, tbl, BlinkControl, "1")
	if bl.isLit() {
		t.Error("backlight lit after blink_control=1")
	}
	if got := mustRead(t, tbl, BlinkControl); got != "1\n" {
		t.Errorf("blink_control = %q, want 1", got)
	}

	mustWrite(t, tbl, BlinkControl, "0")
	if !bl.isLit() {
		t.Error("backlight off after blink_control=0")
	}

	mustWrite(t, tbl, NotificationLED, "0")
	if got := mustRead(t, tbl, NotificationLED); got != "0\n" {
		t.Errorf("notification_led = %q, want 0", got)
	}
	if got := mustRead(t, tbl, BlinkControl); got != "0\n" {
		t.Errorf("blink_control = %q after stop, want 0", got)
	}
}

func TestScenario_MaxtimeTimeout(t *testing.T) {
	tbl, e, bl, wl := newTestTable(t)

	mustWrite(t, tbl, Enabled, "1")
	mustWrite(t, tbl, InKernelBlink, "1")
	mustWrite(t, tbl, BlinkInterval, "5")
	mustWrite(t, tbl, BlinkMaxtime, "3")
	mustWrite(t, tbl, NotificationLED, "1")

	if !wl.Held() {
		t.Fatal("wakelock not held while blinking")
	}

	waitFor(t, func() bool { return !e.Snapshot().TimerArmed })

	if !bl.isLit() {
		t.Error("backlight not left on after timeout")
	}
	if wl.Held() {
		t.Error("wakelock still held after timeout")
	}
	if got := mustRead(t, tbl, NotificationLED); got != "1\n" {
		t.Errorf("notification_led = %q after timeout, want 1", got)
	}
}

func TestScenario_DisableForceStops(t *testing.T) {
	tbl, e, _, wl := newTestTable(t)

	mustWrite(t, tbl, Enabled, "1")
	mustWrite(t, tbl, InKernelBlink, "1")
	mustWrite(t, tbl, NotificationLED, "1")
	if !wl.Held() {
		t.Fatal("wakelock not held while blinking")
	}

	mustWrite(t, tbl, Enabled, "0")

	s := e.Snapshot()
	if s.Ongoing || s.TimerArmed || wl.Held() {
		t.Errorf("state after enabled=0: %+v", s)
	}

	mustWrite(t, tbl, NotificationLED, "1")
	if got := mustRead(t, tbl, NotificationLED); got != "0\n" {
		t.Errorf("notification started while disabled: %q", got)
	}
}
