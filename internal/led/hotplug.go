package led

import (
	"context"
	"log/slog"
	"strings"

	"github.com/smazurov/blnd/internal/bln"
	"github.com/smazurov/blnd/internal/hotplug"
)

// Registrar is the engine side of backlight registration.
type Registrar interface {
	RegisterCapability(c bln.Capability, name string)
	Snapshot() bln.State
}

// Follower registers LED class devices as they appear and unregisters the
// current one when it goes away.
type Follower struct {
	root   string
	device string // exact device wanted; empty means any preferred device
	reg    Registrar
	logger *slog.Logger
}

// NewFollower creates a follower for the sysfs devices cfg selects.
func NewFollower(cfg Config, reg Registrar, logger *slog.Logger) *Follower {
	if cfg.Root == "" {
		cfg.Root = sysfsLEDPath
	}
	return &Follower{
		root:   cfg.Root,
		device: cfg.Device,
		reg:    reg,
		logger: logger,
	}
}

// Run handles events until the channel closes or ctx is done.
func (f *Follower) Run(ctx context.Context, events <-chan hotplug.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			f.Handle(ev)
		}
	}
}

// Handle applies a single uevent.
func (f *Follower) Handle(ev hotplug.Event) {
	if ev.Subsystem != hotplug.SubsystemLEDs {
		return
	}
	name := ev.Name()
	if name == "" {
		return
	}

	current := f.reg.Snapshot().Backlight

	switch ev.Action {
	case hotplug.ActionAdd:
		if !f.wants(name) {
			return
		}
		if current != "" && current != "none" {
			f.logger.Debug("LED appeared, backlight already registered", "device", name, "current", current)
			return
		}
		ctrl, err := newSysfs(f.root, name)
		if err != nil {
			f.logger.Warn("Failed to open hotplugged LED", "device", name, "error", err)
			return
		}
		f.logger.Info("LED device appeared, registering backlight", "device", name)
		f.reg.RegisterCapability(ctrl, ctrl.Name())
	case hotplug.ActionRemove:
		if current != "sysfs:"+name {
			return
		}
		f.logger.Info("LED device removed, unregistering backlight", "device", name)
		f.reg.RegisterCapability(nil, "")
	}
}

func (f *Follower) wants(name string) bool {
	if f.device != "" {
		return name == f.device
	}
	for _, want := range preferredDevices {
		if strings.Contains(name, want) {
			return true
		}
	}
	return false
}
