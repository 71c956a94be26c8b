// Package metrics exposes blink engine activity to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/smazurov/blnd/internal/events"
)

const namespace = "blnd"

var (
	notificationsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "started_total",
		Help:      "Notifications switched on, by blink mode",
	}, []string{"blinking"})

	notificationsStopped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "stopped_total",
		Help:      "Notifications cleared",
	})

	notificationsTimedOut = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notification",
		Name:      "timed_out_total",
		Help:      "Blinking notifications that ran out of toggles",
	})

	blinkToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "blink",
		Name:      "toggles_total",
		Help:      "Blink phase changes, by source",
	}, []string{"source"})

	wakelockHeld = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "wakelock",
		Name:      "held",
		Help:      "1 while the blink wakelock is held",
	}, []string{"backend"})

	displaySuspended = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "display",
		Name:      "suspended",
		Help:      "1 while the display is blanked",
	})

	attributeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "attribute",
		Name:      "writes_total",
		Help:      "Attribute writes, by attribute and whether the value was accepted",
	}, []string{"name", "accepted"})
)

// Subscribe feeds the counters and gauges from bus events.
// Returns a function that removes every subscription.
func Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.NotificationStartedEvent) {
			notificationsStarted.WithLabelValues(strconv.FormatBool(e.Blinking)).Inc()
		}),
		bus.Subscribe(func(events.NotificationStoppedEvent) {
			notificationsStopped.Inc()
		}),
		bus.Subscribe(func(events.NotificationTimedOutEvent) {
			notificationsTimedOut.Inc()
		}),
		bus.Subscribe(func(e events.BlinkToggledEvent) {
			blinkToggles.WithLabelValues(e.Source).Inc()
		}),
		bus.Subscribe(func(e events.WakelockChangedEvent) {
			wakelockHeld.WithLabelValues(e.Backend).Set(boolToFloat(e.Held))
		}),
		bus.Subscribe(func(e events.DisplayStateChangedEvent) {
			displaySuspended.Set(boolToFloat(e.Suspended))
		}),
		bus.Subscribe(func(e events.AttributeWrittenEvent) {
			attributeWrites.WithLabelValues(e.Name, strconv.FormatBool(e.Accepted)).Inc()
		}),
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
