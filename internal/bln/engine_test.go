package bln

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

// fakeBacklight records Enable/Disable calls.
type fakeBacklight struct {
	mu       sync.Mutex
	calls    []string
	lit      bool
	failNext error
}

func (f *fakeBacklight) Enable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "enable")
	f.lit = true
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeBacklight) Disable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disable")
	f.lit = false
	return nil
}

func (f *fakeBacklight) isLit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lit
}

func (f *fakeBacklight) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBacklight) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

// fakeWakelock counts real acquisitions, ignoring idempotent repeats.
type fakeWakelock struct {
	mu       sync.Mutex
	held     bool
	acquired int
	released int
}

func (w *fakeWakelock) Acquire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.held {
		return
	}
	w.held = true
	w.acquired++
}

func (w *fakeWakelock) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.held {
		return
	}
	w.held = false
	w.released++
}

func (w *fakeWakelock) counts() (acquired, released int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acquired, w.released
}

func (w *fakeWakelock) Held() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.held
}

// fakeScheduler records arming without running a timer.
type fakeScheduler struct {
	armed    bool
	arms     int
	cancels  int
	interval time.Duration
}

func (s *fakeScheduler) Arm(d time.Duration)         { s.armed = true; s.arms++; s.interval = d }
func (s *fakeScheduler) SetInterval(d time.Duration) { s.interval = d }
func (s *fakeScheduler) Cancel()                     { s.armed = false; s.cancels++ }
func (s *fakeScheduler) Armed() bool                 { return s.armed }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *fakeBacklight, *fakeWakelock, *fakeScheduler) {
	t.Helper()
	wl := &fakeWakelock{}
	e := NewEngine(opts, wl, nil, newTestLogger())
	sched := &fakeScheduler{}
	e.sched = sched
	bl := &fakeBacklight{}
	e.RegisterCapability(bl, "fake")
	return e, bl, wl, sched
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(Options{}, nil, nil, nil)
	s := e.Snapshot()

	if s.BlinkIntervalMs != 500 {
		t.Errorf("BlinkIntervalMs = %d, want 500", s.BlinkIntervalMs)
	}
	if s.BlinkMaxCount != 600 {
		t.Errorf("BlinkMaxCount = %d, want 600", s.BlinkMaxCount)
	}
	if s.Enabled || s.Ongoing || s.InKernelBlink || s.Suspended || s.BlinkState {
		t.Errorf("unexpected initial flags: %+v", s)
	}
	if s.Mode() != "disabled" {
		t.Errorf("Mode() = %q, want disabled", s.Mode())
	}
}

func TestSetBlinkIntervalMs(t *testing.T) {
	e, _, _, sched := newTestEngine(t, Options{})

	for _, v := range []uint32{1, 250, 500, 10000, ^uint32(0)} {
		if err := e.SetBlinkIntervalMs(v); err != nil {
			t.Fatalf("SetBlinkIntervalMs(%d) error: %v", v, err)
		}
		if got := e.BlinkIntervalMs(); got != v {
			t.Errorf("BlinkIntervalMs() = %d, want %d", got, v)
		}
	}

	if err := e.SetBlinkIntervalMs(300); err != nil {
		t.Fatal(err)
	}
	if err := e.SetBlinkIntervalMs(0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetBlinkIntervalMs(0) error = %v, want ErrInvalidValue", err)
	}
	if got := e.BlinkIntervalMs(); got != 300 {
		t.Errorf("BlinkIntervalMs() after rejected write = %d, want 300", got)
	}
	if sched.interval != 300*time.Millisecond {
		t.Errorf("scheduler interval = %v, want 300ms", sched.interval)
	}
}

func TestSetBlinkMaxCount_RejectsZero(t *testing.T) {
	e, _, _, _ := newTestEngine(t, Options{})

	if err := e.SetBlinkMaxCount(42); err != nil {
		t.Fatal(err)
	}
	if err := e.SetBlinkMaxCount(0); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetBlinkMaxCount(0) error = %v, want ErrInvalidValue", err)
	}
	if got := e.BlinkMaxCount(); got != 42 {
		t.Errorf("BlinkMaxCount() = %d, want 42", got)
	}
}

func TestStartNotification_IgnoredWhileDisabled(t *testing.T) {
	e, bl, wl, sched := newTestEngine(t, Options{InKernelBlink: true})

	e.StartNotification()

	if e.Ongoing() {
		t.Error("notification started while disabled")
	}
	if bl.callCount() != 0 {
		t.Errorf("backlight called %d times, want 0", bl.callCount())
	}
	if wl.Held() || sched.Armed() {
		t.Error("wakelock or timer taken while disabled")
	}
}

func TestStartNotification_Steady(t *testing.T) {
	e, bl, wl, sched := newTestEngine(t, Options{Enabled: true})

	e.StartNotification()

	s := e.Snapshot()
	if !s.Ongoing {
		t.Fatal("notification not ongoing")
	}
	if s.Mode() != "steady" {
		t.Errorf("Mode() = %q, want steady", s.Mode())
	}
	if !bl.isLit() {
		t.Error("backlight not enabled")
	}
	if sched.arms != 0 || wl.Held() {
		t.Error("steady notification armed timer or took wakelock")
	}
}

func TestStartNotification_RepeatedArmsOnce(t *testing.T) {
	e, _, wl, sched := newTestEngine(t, Options{Enabled: true, InKernelBlink: true, BlinkIntervalMs: 200})

	for range 5 {
		e.StartNotification()
	}

	if !sched.Armed() {
		t.Fatal("timer not armed")
	}
	if sched.interval != 200*time.Millisecond {
		t.Errorf("timer interval = %v, want 200ms", sched.interval)
	}
	if wl.acquired != 1 {
		t.Errorf("wakelock acquired %d times, want 1", wl.acquired)
	}
	if !wl.Held() {
		t.Error("wakelock not held while blinking")
	}
	if e.Snapshot().Mode() != "blinking" {
		t.Errorf("Mode() = %q, want blinking", e.Snapshot().Mode())
	}
}

func TestSetEnabledFalse_StopsOngoing(t *testing.T) {
	e, _, wl, sched := newTestEngine(t, Options{Enabled: true, InKernelBlink: true})

	e.StartNotification()
	e.SetEnabled(false)

	s := e.Snapshot()
	if s.Ongoing {
		t.Error("notification still ongoing after disable")
	}
	if s.Enabled {
		t.Error("still enabled")
	}
	if wl.Held() {
		t.Error("wakelock still held after disable")
	}
	if sched.Armed() {
		t.Error("timer still armed after disable")
	}
}

func TestStopNotification_DisablesOnlyWhenSuspended(t *testing.T) {
	tests := []struct {
		name        string
		suspended   bool
		wantDisable bool
	}{
		{"awake", false, false},
		{"suspended", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, bl, _, _ := newTestEngine(t, Options{Enabled: true})
			if tt.suspended {
				e.Suspend()
			}
			e.StartNotification()
			e.StopNotification()

			gotDisable := bl.last() == "disable"
			if gotDisable != tt.wantDisable {
				t.Errorf("last backlight call = %q, want disable=%v", bl.last(), tt.wantDisable)
			}
			if e.BlinkState() {
				t.Error("blink state not cleared")
			}
		})
	}
}

func TestStopNotification_ReleasesWithoutStart(t *testing.T) {
	e, _, wl, _ := newTestEngine(t, Options{Enabled: true})

	e.StopNotification()

	if wl.released != 0 {
		t.Errorf("wakelock released %d times without being held", wl.released)
	}
}

func TestBlinkWork_CountdownLaw(t *testing.T) {
	for _, n := range []uint32{1, 2, 3, 10} {
		e, bl, wl, sched := newTestEngine(t, Options{Enabled: true, InKernelBlink: true, BlinkMaxCount: n})
		e.StartNotification()

		for i := uint32(1); i < n; i++ {
			e.blinkWork()
			if !sched.Armed() || !wl.Held() {
				t.Fatalf("n=%d: timed out early at toggle %d", n, i)
			}
			if got := e.Snapshot().BlinkCountdown; got != n-i {
				t.Errorf("n=%d: countdown after %d toggles = %d, want %d", n, i, got, n-i)
			}
		}

		e.blinkWork()
		if sched.Armed() {
			t.Errorf("n=%d: timer still armed after timeout", n)
		}
		if wl.Held() {
			t.Errorf("n=%d: wakelock still held after timeout", n)
		}
		if !bl.isLit() {
			t.Errorf("n=%d: backlight not forced on at timeout", n)
		}
	}
}

func TestBlinkWork_TogglesPhase(t *testing.T) {
	e, bl, _, _ := newTestEngine(t, Options{Enabled: true, InKernelBlink: true, BlinkMaxCount: 10})
	e.StartNotification()

	want := []struct {
		lit   bool
		state bool
	}{
		{false, true},
		{true, false},
		{false, true},
	}
	for i, w := range want {
		e.blinkWork()
		if bl.isLit() != w.lit {
			t.Errorf("toggle %d: lit = %v, want %v", i+1, bl.isLit(), w.lit)
		}
		if e.BlinkState() != w.state {
			t.Errorf("toggle %d: blink state = %v, want %v", i+1, e.BlinkState(), w.state)
		}
	}
}

func TestScenario_MaxTimeThree(t *testing.T) {
	e, bl, wl, sched := newTestEngine(t, Options{})

	e.SetEnabled(true)
	e.SetInKernelBlink(true)
	if err := e.SetBlinkMaxCount(3); err != nil {
		t.Fatal(err)
	}
	e.StartNotification()

	for range 3 {
		e.blinkWork()
	}

	if !bl.isLit() {
		t.Error("backlight not left enabled")
	}
	if wl.Held() {
		t.Error("wakelock still held")
	}

	// Late work items from an already cancelled timer change nothing.
	calls := bl.callCount()
	e.blinkWork()
	e.blinkWork()
	if bl.callCount() != calls {
		t.Error("work after timeout touched the backlight")
	}
	if sched.Armed() {
		t.Error("timer re-armed after timeout")
	}

	// Timeout keeps the notification ongoing.
	if !e.Ongoing() {
		t.Error("notification cleared by timeout")
	}
}

func TestScenario_ManualBlink(t *testing.T) {
	e, bl, wl, sched := newTestEngine(t, Options{Enabled: true})

	e.StartNotification()

	if !e.ManualBlinkToggle(true) {
		t.Fatal("manual toggle ignored while ongoing")
	}
	if bl.isLit() {
		t.Error("blink_control=1 did not disable backlight")
	}
	if !e.BlinkState() {
		t.Error("blink state not recorded")
	}

	e.ManualBlinkToggle(false)
	if !bl.isLit() {
		t.Error("blink_control=0 did not enable backlight")
	}

	if sched.arms != 0 {
		t.Errorf("timer armed %d times, want 0", sched.arms)
	}
	if wl.acquired != 0 {
		t.Error("wakelock taken for manual blink")
	}
}

func TestManualBlinkToggle_IgnoredWhenIdle(t *testing.T) {
	e, bl, _, _ := newTestEngine(t, Options{Enabled: true})

	if e.ManualBlinkToggle(true) {
		t.Error("manual toggle accepted without ongoing notification")
	}
	if bl.callCount() != 0 || e.BlinkState() {
		t.Error("idle manual toggle changed state")
	}
}

func TestNoCapability_StateStillTransitions(t *testing.T) {
	wl := &fakeWakelock{}
	e := NewEngine(Options{Enabled: true, InKernelBlink: true, BlinkMaxCount: 2}, wl, nil, newTestLogger())
	e.sched = &fakeScheduler{}

	e.StartNotification()
	e.blinkWork()
	e.blinkWork()
	e.StopNotification()

	if e.Ongoing() {
		t.Error("notification still ongoing")
	}
	if e.Snapshot().BacklightPresent {
		t.Error("backlight reported present")
	}
}

func TestRegisterCapability_Replaces(t *testing.T) {
	e, first, _, _ := newTestEngine(t, Options{Enabled: true})
	second := &fakeBacklight{}

	e.RegisterCapability(second, "second")
	e.StartNotification()

	if first.callCount() != 0 {
		t.Error("replaced capability still called")
	}
	if !second.isLit() {
		t.Error("new capability not enabled")
	}
}

func TestCapabilityError_Absorbed(t *testing.T) {
	e, bl, _, _ := newTestEngine(t, Options{Enabled: true})
	bl.failNext = errors.New("i2c timeout")

	e.StartNotification()

	if !e.Ongoing() {
		t.Error("capability error aborted the notification")
	}
}
