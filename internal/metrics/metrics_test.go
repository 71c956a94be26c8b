package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smazurov/blnd/internal/bln"
	"github.com/smazurov/blnd/internal/events"
)

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSubscribe_FeedsCounters(t *testing.T) {
	bus := events.New()
	unsub := Subscribe(bus)
	defer unsub()

	startedBefore := testutil.ToFloat64(notificationsStarted.WithLabelValues("true"))
	togglesBefore := testutil.ToFloat64(blinkToggles.WithLabelValues("timer"))
	rejectedBefore := testutil.ToFloat64(attributeWrites.WithLabelValues("enabled", "false"))

	bus.Publish(events.NotificationStartedEvent{Blinking: true})
	bus.Publish(events.BlinkToggledEvent{Source: "timer"})
	bus.Publish(events.BlinkToggledEvent{Source: "timer"})
	bus.Publish(events.WakelockChangedEvent{Held: true, Backend: "sysfs"})
	bus.Publish(events.DisplayStateChangedEvent{Suspended: true})
	bus.Publish(events.AttributeWrittenEvent{Name: "enabled", Accepted: false})

	eventually(t, func() bool {
		return testutil.ToFloat64(notificationsStarted.WithLabelValues("true")) == startedBefore+1 &&
			testutil.ToFloat64(blinkToggles.WithLabelValues("timer")) == togglesBefore+2 &&
			testutil.ToFloat64(wakelockHeld.WithLabelValues("sysfs")) == 1 &&
			testutil.ToFloat64(displaySuspended) == 1 &&
			testutil.ToFloat64(attributeWrites.WithLabelValues("enabled", "false")) == rejectedBefore+1
	})

	bus.Publish(events.WakelockChangedEvent{Held: false, Backend: "sysfs"})
	eventually(t, func() bool {
		return testutil.ToFloat64(wakelockHeld.WithLabelValues("sysfs")) == 0
	})
}

func TestStateCollector(t *testing.T) {
	c := NewStateCollector(func() bln.State {
		return bln.State{
			Enabled:          true,
			Ongoing:          true,
			TimerArmed:       true,
			BlinkCountdown:   42,
			BlinkIntervalMs:  500,
			BlinkMaxCount:    600,
			BacklightPresent: true,
		}
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(c)

	if n := testutil.CollectAndCount(c); n != 8 {
		t.Errorf("collected %d metrics, want 8", n)
	}

	expected := `
# HELP blnd_engine_blink_countdown Remaining blink toggles
# TYPE blnd_engine_blink_countdown gauge
blnd_engine_blink_countdown 42
# HELP blnd_engine_timer_armed 1 while the blink timer is armed
# TYPE blnd_engine_timer_armed gauge
blnd_engine_timer_armed 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"blnd_engine_blink_countdown", "blnd_engine_timer_armed"); err != nil {
		t.Error(err)
	}
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "blnd_notification_stopped_total") {
		t.Error("promauto metrics missing from /metrics output")
	}
}
