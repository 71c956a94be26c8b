package events

// Event type constants for kelindar/event.
const (
	TypeNotificationStarted uint32 = iota + 1
	TypeNotificationStopped
	TypeNotificationTimedOut
	TypeBlinkToggled
	TypeWakelockChanged
	TypeDisplayStateChanged
	TypeBacklightRegistered
	TypeAttributeWritten
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// NotificationStartedEvent is published when the notification LED is switched on.
type NotificationStartedEvent struct {
	Blinking   bool   `json:"blinking" example:"true" doc:"Whether the internal blink timer drives the LED"`
	IntervalMs uint32 `json:"interval_ms" example:"500" doc:"Blink interval in milliseconds"`
	MaxCount   uint32 `json:"max_count" example:"600" doc:"Phase toggles before the notification times out"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for NotificationStartedEvent.
func (e NotificationStartedEvent) Type() uint32 { return TypeNotificationStarted }

// NotificationStoppedEvent is published when the notification is cleared.
type NotificationStoppedEvent struct {
	Suspended bool   `json:"suspended" example:"true" doc:"Whether the display was blanked when the notification stopped"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for NotificationStoppedEvent.
func (e NotificationStoppedEvent) Type() uint32 { return TypeNotificationStopped }

// NotificationTimedOutEvent is published when the blink countdown runs out.
// The notification stays ongoing with the LED left on.
type NotificationTimedOutEvent struct {
	MaxCount  uint32 `json:"max_count" example:"600" doc:"Countdown the notification started with"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for NotificationTimedOutEvent.
func (e NotificationTimedOutEvent) Type() uint32 { return TypeNotificationTimedOut }

// BlinkToggledEvent is published for every blink phase change.
type BlinkToggledEvent struct {
	BlinkState bool   `json:"blink_state" example:"true" doc:"True while the LED is in its off phase"`
	Countdown  uint32 `json:"countdown" example:"599" doc:"Remaining timer toggles"`
	Source     string `json:"source" example:"timer" doc:"timer or manual"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BlinkToggledEvent.
func (e BlinkToggledEvent) Type() uint32 { return TypeBlinkToggled }

// WakelockChangedEvent is published when the wakelock is taken or dropped.
type WakelockChangedEvent struct {
	Held      bool   `json:"held" example:"true" doc:"Whether the wakelock is now held"`
	Backend   string `json:"backend" example:"sysfs" doc:"Wakelock backend"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for WakelockChangedEvent.
func (e WakelockChangedEvent) Type() uint32 { return TypeWakelockChanged }

// DisplayStateChangedEvent is published on screen blank/unblank edges.
type DisplayStateChangedEvent struct {
	Suspended bool   `json:"suspended" example:"true" doc:"Whether the display is blanked"`
	Source    string `json:"source" example:"logind" doc:"Edge source (logind, sysfs, api)"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayStateChangedEvent.
func (e DisplayStateChangedEvent) Type() uint32 { return TypeDisplayStateChanged }

// BacklightRegisteredEvent is published when a backlight capability is registered or removed.
type BacklightRegisteredEvent struct {
	Name      string `json:"name" example:"sysfs:button-backlight" doc:"Capability name, empty when unregistered"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BacklightRegisteredEvent.
func (e BacklightRegisteredEvent) Type() uint32 { return TypeBacklightRegistered }

// AttributeWrittenEvent is published for every attribute write, accepted or not.
type AttributeWrittenEvent struct {
	Name      string `json:"name" example:"blink_interval" doc:"Attribute name"`
	Value     string `json:"value" example:"250" doc:"Raw value written"`
	Accepted  bool   `json:"accepted" example:"true" doc:"Whether the value changed state"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for AttributeWrittenEvent.
func (e AttributeWrittenEvent) Type() uint32 { return TypeAttributeWritten }
