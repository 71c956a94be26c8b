package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smazurov/blnd/internal/bln"
)

// StateCollector reports the engine snapshot on every scrape.
type StateCollector struct {
	snapshot func() bln.State

	enabled   *prometheus.Desc
	ongoing   *prometheus.Desc
	blinking  *prometheus.Desc
	phaseOff  *prometheus.Desc
	countdown *prometheus.Desc
	interval  *prometheus.Desc
	maxCount  *prometheus.Desc
	backlight *prometheus.Desc
}

// NewStateCollector creates a collector reading snapshot, usually
// engine.Snapshot.
func NewStateCollector(snapshot func() bln.State) *StateCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "engine", name), help, nil, nil)
	}
	return &StateCollector{
		snapshot:  snapshot,
		enabled:   desc("enabled", "1 when the notification function is enabled"),
		ongoing:   desc("ongoing", "1 while a notification is active"),
		blinking:  desc("timer_armed", "1 while the blink timer is armed"),
		phaseOff:  desc("blink_state", "1 while the LED is in its off phase"),
		countdown: desc("blink_countdown", "Remaining blink toggles"),
		interval:  desc("blink_interval_milliseconds", "Blink interval"),
		maxCount:  desc("blink_max_count", "Blink toggles before timeout"),
		backlight: desc("backlight_registered", "1 when a backlight capability is registered"),
	}
}

// Describe implements prometheus.Collector.
func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.enabled
	ch <- c.ongoing
	ch <- c.blinking
	ch <- c.phaseOff
	ch <- c.countdown
	ch <- c.interval
	ch <- c.maxCount
	ch <- c.backlight
}

// Collect implements prometheus.Collector.
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	gauge(c.enabled, boolToFloat(s.Enabled))
	gauge(c.ongoing, boolToFloat(s.Ongoing))
	gauge(c.blinking, boolToFloat(s.TimerArmed))
	gauge(c.phaseOff, boolToFloat(s.BlinkState))
	gauge(c.countdown, float64(s.BlinkCountdown))
	gauge(c.interval, float64(s.BlinkIntervalMs))
	gauge(c.maxCount, float64(s.BlinkMaxCount))
	gauge(c.backlight, boolToFloat(s.BacklightPresent))
}
