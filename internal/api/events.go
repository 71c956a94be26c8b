package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/blnd/internal/api/models"
	"github.com/smazurov/blnd/internal/events"
)

// registerSSERoutes registers the event stream.
func (s *Server) registerSSERoutes() {
	if s.eventBus == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Notification, blink, wakelock, display and attribute events as they happen",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"state":                 models.StateData{},
		"notification-started":  events.NotificationStartedEvent{},
		"notification-stopped":  events.NotificationStoppedEvent{},
		"notification-timedout": events.NotificationTimedOutEvent{},
		"blink-toggled":         events.BlinkToggledEvent{},
		"wakelock-changed":      events.WakelockChangedEvent{},
		"display-changed":       events.DisplayStateChangedEvent{},
		"backlight-registered":  events.BacklightRegisteredEvent{},
		"attribute-written":     events.AttributeWrittenEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.NotificationStartedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.NotificationStoppedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.NotificationTimedOutEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BlinkToggledEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.WakelockChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DisplayStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BacklightRegisteredEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.AttributeWrittenEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// current state first so clients need no separate GET
		if s.options.Engine != nil {
			if err := send.Data(s.stateData()); err != nil {
				return
			}
		}

		keepalive := time.NewTicker(30 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-keepalive.C:
				if err := send(sse.Message{Data: s.stateData()}); err != nil {
					return
				}
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
