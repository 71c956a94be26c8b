package led

import "log/slog"

// noop implements Controller for systems without a notification LED
type noop struct {
	logger *slog.Logger
}

// newNoop creates a new no-op LED controller
func newNoop(logger *slog.Logger) *noop {
	return &noop{
		logger: logger,
	}
}

// Enable logs the request but performs no actual LED control
func (n *noop) Enable() error {
	n.logger.Debug("LED control not available (no-op)", "enabled", true)
	return nil
}

// Disable logs the request but performs no actual LED control
func (n *noop) Disable() error {
	n.logger.Debug("LED control not available (no-op)", "enabled", false)
	return nil
}

// Name returns the controller name
func (n *noop) Name() string {
	return "none"
}
