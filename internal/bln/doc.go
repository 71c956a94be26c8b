// Package bln implements the backlight notification blink engine.
//
// # Overview
//
// An [Engine] owns the notification state: whether notifications are enabled,
// whether one is ongoing, the blink phase and the countdown that bounds how long
// a blinking notification runs. It drives a registered [Capability] (the
// hardware backlight) and holds a wakelock while its blink timer is armed.
//
// # Execution contexts
//
// Blinking is driven by two cooperating contexts:
//
//	timer callback  -> posts one phase-toggle item, re-arms itself (never blocks)
//	worker goroutine -> runs the phase toggle under the engine lock (may block on hardware)
//
// The work queue has capacity one, so a slow capability never accumulates a
// backlog of toggles. Cancelling the timer bumps a generation counter; items
// posted by an older generation are dropped by the worker.
//
// # States
//
//	Disabled  enabled=false
//	Idle      enabled=true, ongoing=false
//	SteadyOn  ongoing=true, timer not armed
//	Blinking  ongoing=true, timer armed, wakelock held
//
// When the countdown reaches zero the LED is forced on, the timer is cancelled
// and the wakelock dropped, but the notification stays ongoing until it is
// explicitly stopped.
package bln
