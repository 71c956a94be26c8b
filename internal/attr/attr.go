// Package attr exposes the blink engine as a table of text attributes.
//
// Reads return the value formatted as an unsigned decimal followed by a
// newline. Writes parse one unsigned decimal the way sscanf("%u") does:
// leading white space is skipped, digits are read and anything after them
// is ignored. Rejected writes are logged and leave the engine untouched but
// still report the whole buffer as consumed.
package attr

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/smazurov/blnd/internal/bln"
	"github.com/smazurov/blnd/internal/events"
)

// Attribute names.
const (
	Enabled         = "enabled"
	NotificationLED = "notification_led"
	InKernelBlink   = "in_kernel_blink"
	BlinkControl    = "blink_control"
	BlinkInterval   = "blink_interval"
	BlinkMaxtime    = "blink_maxtime"
	Version         = "version"
)

var (
	// ErrUnknownAttribute is returned for names not in the table.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrReadOnly is returned when writing an attribute without a writer.
	ErrReadOnly = errors.New("attribute is read-only")
)

// Engine is the part of bln.Engine the table drives.
type Engine interface {
	SetEnabled(bool)
	Enabled() bool
	StartNotification()
	StopNotification()
	Ongoing() bool
	ManualBlinkToggle(bool) bool
	BlinkState() bool
	SetInKernelBlink(bool)
	InKernelBlink() bool
	SetBlinkIntervalMs(uint32) error
	BlinkIntervalMs() uint32
	SetBlinkMaxCount(uint32) error
	BlinkMaxCount() uint32
}

type attribute struct {
	read  func() uint32
	write func(v uint32) error // nil for read-only
}

// Table maps attribute names to engine operations.
type Table struct {
	engine Engine
	attrs  map[string]attribute
	names  []string
	bus    *events.Bus
	logger *slog.Logger
}

var errOutOfRange = errors.New("value out of range")

// New builds the attribute table for engine.
func New(engine Engine, bus *events.Bus, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Table{engine: engine, bus: bus, logger: logger}

	t.attrs = map[string]attribute{
		Enabled: {
			read: func() uint32 { return b2u(engine.Enabled()) },
			write: func(v uint32) error {
				switch v {
				case 1:
					engine.SetEnabled(true)
				case 0:
					engine.SetEnabled(false)
				default:
					return errOutOfRange
				}
				return nil
			},
		},
		NotificationLED: {
			read: func() uint32 { return b2u(engine.Ongoing()) },
			write: func(v uint32) error {
				switch v {
				case 1:
					engine.StartNotification()
				case 0:
					engine.StopNotification()
				default:
					return errOutOfRange
				}
				return nil
			},
		},
		InKernelBlink: {
			read: func() uint32 { return b2u(engine.InKernelBlink()) },
			write: func(v uint32) error {
				if v > 1 {
					return errOutOfRange
				}
				engine.SetInKernelBlink(v == 1)
				return nil
			},
		},
		BlinkControl: {
			read: func() uint32 { return b2u(engine.BlinkState()) },
			write: func(v uint32) error {
				if v > 1 {
					return errOutOfRange
				}
				if !engine.ManualBlinkToggle(v == 1) {
					t.logger.Debug("Blink control ignored, no notification ongoing")
				}
				return nil
			},
		},
		BlinkInterval: {
			read:  engine.BlinkIntervalMs,
			write: engine.SetBlinkIntervalMs,
		},
		BlinkMaxtime: {
			read:  engine.BlinkMaxCount,
			write: engine.SetBlinkMaxCount,
		},
		Version: {
			read: func() uint32 { return bln.Version },
		},
	}

	t.names = []string{
		BlinkControl,
		Enabled,
		NotificationLED,
		InKernelBlink,
		BlinkInterval,
		BlinkMaxtime,
		Version,
	}
	return t
}

// Names lists the attributes in registration order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Writable reports whether name accepts writes.
func (t *Table) Writable(name string) bool {
	a, ok := t.attrs[name]
	return ok && a.write != nil
}

// Read returns the attribute value as "%u\n".
func (t *Table) Read(name string) (string, error) {
	a, ok := t.attrs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	return strconv.FormatUint(uint64(a.read()), 10) + "\n", nil
}

// Write parses buf and applies it. The returned count is always len(buf)
// for known writable attributes, whether or not the value was accepted.
func (t *Table) Write(name, buf string) (int, error) {
	a, ok := t.attrs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	if a.write == nil {
		return 0, fmt.Errorf("%w: %s", ErrReadOnly, name)
	}

	v, ok := ParseUint(buf)
	if !ok {
		t.logger.Warn("Attribute write rejected, input error", "attribute", name, "input", buf)
		t.publish(name, buf, false)
		return len(buf), nil
	}

	if err := a.write(v); err != nil {
		t.logger.Warn("Attribute write rejected, wrong input", "attribute", name, "value", v, "error", err)
		t.publish(name, buf, false)
		return len(buf), nil
	}

	t.logger.Debug("Attribute written", "attribute", name, "value", v)
	t.publish(name, buf, true)
	return len(buf), nil
}

func (t *Table) publish(name, value string, accepted bool) {
	t.bus.Publish(events.AttributeWrittenEvent{
		Name:      name,
		Value:     value,
		Accepted:  accepted,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
