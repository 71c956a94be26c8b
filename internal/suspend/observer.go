// Package suspend tracks whether the display is blanked and forwards the
// edges to the blink engine.
package suspend

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/blnd/internal/events"
)

// Sink receives blank / unblank edges. *bln.Engine implements it.
type Sink interface {
	Suspend()
	Resume()
}

// Source produces edges until ctx is cancelled.
type Source interface {
	Run(ctx context.Context, obs *Observer) error
	Name() string
}

// Observer forwards edges from any number of sources to the sink.
type Observer struct {
	mu        sync.Mutex
	sink      Sink
	suspended bool
	bus       *events.Bus
	logger    *slog.Logger
}

// NewObserver creates an observer that starts in the awake state.
func NewObserver(sink Sink, bus *events.Bus, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{sink: sink, bus: bus, logger: logger}
}

// OnSuspend records that the display was blanked.
func (o *Observer) OnSuspend(source string) {
	o.edge(true, source)
}

// OnResume records that the display was unblanked.
func (o *Observer) OnResume(source string) {
	o.edge(false, source)
}

func (o *Observer) edge(suspended bool, source string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// repeated edges are forwarded; only changes are announced
	changed := o.suspended != suspended
	o.suspended = suspended

	if suspended {
		o.sink.Suspend()
	} else {
		o.sink.Resume()
	}

	if !changed {
		return
	}
	o.logger.Info("Display state changed", "suspended", suspended, "source", source)
	o.bus.Publish(events.DisplayStateChangedEvent{
		Suspended: suspended,
		Source:    source,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Suspended reports the last edge seen.
func (o *Observer) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

// Run drives the observer from src until ctx is cancelled.
func (o *Observer) Run(ctx context.Context, src Source) error {
	o.logger.Info("Suspend source started", "source", src.Name())
	err := src.Run(ctx, o)
	if err != nil && ctx.Err() == nil {
		o.logger.Warn("Suspend source stopped", "source", src.Name(), "error", err)
		return err
	}
	o.logger.Debug("Suspend source stopped", "source", src.Name())
	return nil
}
