package led

// Controller switches a notification backlight on and off.
// Implementations are registered with the blink engine as its capability.
type Controller interface {
	// Enable lights the backlight at full brightness.
	Enable() error

	// Disable switches the backlight off.
	Disable() error

	// Name identifies the controller, e.g. "sysfs:button-backlight".
	Name() string
}
