package wakelock

// noop is used on systems without a sleep-prevention interface.
type noop struct{}

func (noop) Lock() error   { return nil }
func (noop) Unlock() error { return nil }
func (noop) Name() string  { return "none" }
