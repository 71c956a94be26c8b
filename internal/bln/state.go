package bln

import (
	"errors"
	"time"
)

// Version is reported by the read-only version attribute.
const Version = 9

// Defaults applied by NewEngine.
const (
	DefaultBlinkIntervalMs uint32 = 500
	DefaultBlinkMaxCount   uint32 = 600 // 10 minutes at the default interval
)

// ErrInvalidValue is returned when a tunable is set to zero.
var ErrInvalidValue = errors.New("value must be greater than zero")

// Capability is the hardware backlight the engine switches on and off.
type Capability interface {
	Enable() error
	Disable() error
}

// WakeLocker prevents system sleep while the blink timer runs.
// Acquire and Release must be idempotent.
type WakeLocker interface {
	Acquire()
	Release()
	Held() bool
}

// Scheduler owns the periodic blink timer and its deferred work queue.
type Scheduler interface {
	// Arm starts the timer, replacing any pending one.
	Arm(interval time.Duration)
	// SetInterval changes the period used by subsequent re-arms.
	SetInterval(interval time.Duration)
	// Cancel stops the timer and discards queued work. Safe when not armed.
	Cancel()
	Armed() bool
}

// State is a consistent snapshot of the engine.
type State struct {
	Enabled          bool   `json:"enabled"`
	Ongoing          bool   `json:"ongoing"`
	BlinkState       bool   `json:"blink_state"`
	Suspended        bool   `json:"suspended"`
	InKernelBlink    bool   `json:"in_kernel_blink"`
	BlinkIntervalMs  uint32 `json:"blink_interval_ms"`
	BlinkMaxCount    uint32 `json:"blink_max_count"`
	BlinkCountdown   uint32 `json:"blink_countdown"`
	TimerArmed       bool   `json:"timer_armed"`
	WakelockHeld     bool   `json:"wakelock_held"`
	BacklightPresent bool   `json:"backlight_present"`
	Backlight        string `json:"backlight,omitempty"`
}

// Mode names the state machine position of a snapshot.
func (s State) Mode() string {
	switch {
	case !s.Enabled:
		return "disabled"
	case !s.Ongoing:
		return "idle"
	case s.TimerArmed:
		return "blinking"
	default:
		return "steady"
	}
}

func intervalDuration(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
