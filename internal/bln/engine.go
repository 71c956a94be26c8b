package bln

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/blnd/internal/events"
)

// Options seeds the engine's tunables.
type Options struct {
	Enabled         bool
	InKernelBlink   bool
	BlinkIntervalMs uint32
	BlinkMaxCount   uint32
}

// Engine is the notification state machine.
type Engine struct {
	mu sync.Mutex

	enabled       bool
	ongoing       bool
	blinkState    bool
	suspended     bool
	inKernelBlink bool
	blinking      bool // timer-driven blink owns the scheduler
	interval      uint32
	maxCount      uint32
	countdown     uint32

	backlight     Capability
	backlightName string
	wakelock      WakeLocker
	sched         Scheduler
	worker        *timerScheduler

	bus    *events.Bus
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates an engine. Zero tunables fall back to the defaults.
// Call Start to run the blink worker.
func NewEngine(opts Options, wakelock WakeLocker, bus *events.Bus, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BlinkIntervalMs == 0 {
		opts.BlinkIntervalMs = DefaultBlinkIntervalMs
	}
	if opts.BlinkMaxCount == 0 {
		opts.BlinkMaxCount = DefaultBlinkMaxCount
	}

	e := &Engine{
		enabled:       opts.Enabled,
		inKernelBlink: opts.InKernelBlink,
		interval:      opts.BlinkIntervalMs,
		maxCount:      opts.BlinkMaxCount,
		wakelock:      wakelock,
		bus:           bus,
		logger:        logger,
	}
	e.worker = newTimerScheduler(e.timerWork)
	e.sched = e.worker
	return e
}

// Start runs the deferred blink worker until Close or ctx cancellation.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.done = make(chan struct{})
	done := e.done
	e.mu.Unlock()

	go func() {
		defer close(done)
		e.worker.run(ctx)
	}()
	o := e.Options()
	e.logger.Info("Blink engine started",
		"enabled", o.Enabled,
		"in_kernel_blink", o.InKernelBlink,
		"interval_ms", o.BlinkIntervalMs,
		"max_count", o.BlinkMaxCount)
}

// Close tears the engine down: the timer is cancelled, the wakelock dropped
// and the worker stopped. The backlight is left as it is.
func (e *Engine) Close() {
	e.mu.Lock()
	e.sched.Cancel()
	e.blinking = false
	e.releaseWakelock()
	cancel, done := e.cancel, e.done
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	e.logger.Info("Blink engine stopped")
}

// RegisterCapability replaces the backlight capability. nil unregisters it.
// Calls already in progress are not interrupted; later calls use the new one.
func (e *Engine) RegisterCapability(c Capability, name string) {
	if c == nil {
		name = ""
	}
	e.mu.Lock()
	e.backlight = c
	e.backlightName = name
	e.mu.Unlock()

	if c == nil {
		e.logger.Info("Backlight capability unregistered")
	} else {
		e.logger.Info("Backlight capability registered", "name", name)
	}
	e.bus.Publish(events.BacklightRegisteredEvent{Name: name, Timestamp: now()})
}

// SetEnabled sets the master switch. Disabling stops an ongoing notification.
func (e *Engine) SetEnabled(flag bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.enabled = flag
	if flag {
		e.logger.Info("Notification function enabled")
		return
	}
	e.logger.Info("Notification function disabled")
	if e.ongoing {
		e.stopLocked()
	}
}

// Enabled reports the master switch.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// StartNotification switches the notification on. It is a no-op while disabled.
// Calling it again while blinking restarts the countdown and replaces the timer.
func (e *Engine) StartNotification() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.enabled {
		e.logger.Debug("Notification ignored, function disabled")
		return
	}

	if e.inKernelBlink {
		e.acquireWakelock()
		e.countdown = e.maxCount
		e.blinking = true
		e.sched.Arm(intervalDuration(e.interval))
	}

	e.enableBacklight()
	e.ongoing = true
	e.logger.Info("Notification LED enabled", "blinking", e.inKernelBlink)
	e.bus.Publish(events.NotificationStartedEvent{
		Blinking:   e.inKernelBlink,
		IntervalMs: e.interval,
		MaxCount:   e.maxCount,
		Timestamp:  now(),
	})
}

// StopNotification clears the notification. The backlight is only switched off
// explicitly while the display is suspended; when awake the display driver
// owns it.
func (e *Engine) StopNotification() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	e.logger.Info("Notification LED disabled")

	e.blinkState = false
	e.ongoing = false

	if e.suspended {
		e.disableBacklight()
	}

	e.sched.Cancel()
	e.blinking = false
	e.releaseWakelock()

	e.bus.Publish(events.NotificationStoppedEvent{Suspended: e.suspended, Timestamp: now()})
}

// Ongoing reports whether a notification is active.
func (e *Engine) Ongoing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ongoing
}

// ManualBlinkToggle drives the blink phase from outside: true switches the
// backlight off, false switches it on. Ignored unless a notification is ongoing.
func (e *Engine) ManualBlinkToggle(state bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ongoing {
		return false
	}

	e.blinkState = state
	if state {
		e.disableBacklight()
	} else {
		e.enableBacklight()
	}
	e.bus.Publish(events.BlinkToggledEvent{
		BlinkState: state,
		Countdown:  e.countdown,
		Source:     "manual",
		Timestamp:  now(),
	})
	return true
}

// BlinkState reports the current blink phase (true = off phase).
func (e *Engine) BlinkState() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blinkState
}

// SetInKernelBlink selects timer-driven blinking for the next notification.
func (e *Engine) SetInKernelBlink(flag bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inKernelBlink = flag
}

// InKernelBlink reports whether timer-driven blinking is selected.
func (e *Engine) InKernelBlink() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inKernelBlink
}

// SetBlinkIntervalMs sets the blink period. A running timer picks it up on
// its next re-arm.
func (e *Engine) SetBlinkIntervalMs(v uint32) error {
	if v == 0 {
		return ErrInvalidValue
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interval = v
	e.sched.SetInterval(intervalDuration(v))
	return nil
}

// BlinkIntervalMs returns the blink period in milliseconds.
func (e *Engine) BlinkIntervalMs() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interval
}

// SetBlinkMaxCount sets the number of toggles before a blink times out.
// It applies from the next StartNotification.
func (e *Engine) SetBlinkMaxCount(v uint32) error {
	if v == 0 {
		return ErrInvalidValue
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxCount = v
	return nil
}

// BlinkMaxCount returns the toggle budget of a blinking notification.
func (e *Engine) BlinkMaxCount() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxCount
}

// Suspend records that the display was blanked.
func (e *Engine) Suspend() {
	e.mu.Lock()
	e.suspended = true
	e.mu.Unlock()
}

// Resume records that the display was unblanked.
func (e *Engine) Resume() {
	e.mu.Lock()
	e.suspended = false
	e.mu.Unlock()
}

// Snapshot returns a consistent copy of the engine state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	held := false
	if e.wakelock != nil {
		held = e.wakelock.Held()
	}
	return State{
		Enabled:          e.enabled,
		Ongoing:          e.ongoing,
		BlinkState:       e.blinkState,
		Suspended:        e.suspended,
		InKernelBlink:    e.inKernelBlink,
		BlinkIntervalMs:  e.interval,
		BlinkMaxCount:    e.maxCount,
		BlinkCountdown:   e.countdown,
		TimerArmed:       e.sched.Armed(),
		WakelockHeld:     held,
		BacklightPresent: e.backlight != nil,
		Backlight:        e.backlightName,
	}
}

// timerWork runs a queued expiry. The generation is rechecked under mu:
// a stop and restart between queueing and here must not spend the new
// notification's countdown.
func (e *Engine) timerWork(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.worker.current(gen) {
		return
	}
	e.blinkLocked()
}

// blinkWork is the deferred phase toggle.
func (e *Engine) blinkWork() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.blinkLocked()
}

func (e *Engine) blinkLocked() {
	// stopped while this item was in flight
	if !e.blinking {
		return
	}

	e.countdown--
	if e.countdown == 0 {
		e.logger.Info("Notification timed out", "max_count", e.maxCount)
		e.enableBacklight()
		e.sched.Cancel()
		e.blinking = false
		e.releaseWakelock()
		e.bus.Publish(events.NotificationTimedOutEvent{MaxCount: e.maxCount, Timestamp: now()})
		return
	}

	if e.blinkState {
		e.enableBacklight()
	} else {
		e.disableBacklight()
	}
	e.blinkState = !e.blinkState

	e.bus.Publish(events.BlinkToggledEvent{
		BlinkState: e.blinkState,
		Countdown:  e.countdown,
		Source:     "timer",
		Timestamp:  now(),
	})
}

func (e *Engine) enableBacklight() {
	if e.backlight == nil {
		return
	}
	if err := e.backlight.Enable(); err != nil {
		e.logger.Warn("Failed to enable backlight", "error", err)
	}
}

func (e *Engine) disableBacklight() {
	if e.backlight == nil {
		return
	}
	if err := e.backlight.Disable(); err != nil {
		e.logger.Warn("Failed to disable backlight", "error", err)
	}
}

func (e *Engine) acquireWakelock() {
	if e.wakelock != nil {
		e.wakelock.Acquire()
	}
}

func (e *Engine) releaseWakelock() {
	if e.wakelock != nil {
		e.wakelock.Release()
	}
}

// Options returns the current tunables.
func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Options{
		Enabled:         e.enabled,
		InKernelBlink:   e.inKernelBlink,
		BlinkIntervalMs: e.interval,
		BlinkMaxCount:   e.maxCount,
	}
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
