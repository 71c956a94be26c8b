package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/blnd/internal/api/models"
	"github.com/smazurov/blnd/internal/led"
	"github.com/smazurov/blnd/internal/logging"
)

func (s *Server) registerStateRoutes() {
	if s.options.Engine == nil {
		s.logger.Debug("Engine not available, skipping state routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/state",
		Summary:     "Notification State",
		Description: "Consistent snapshot of the notification state machine",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StateResponse, error) {
		return &models.StateResponse{Body: s.stateData()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-display",
		Method:      http.MethodPut,
		Path:        "/api/display",
		Summary:     "Report Display State",
		Description: "Report a display blank or unblank edge, for systems without a blank file or logind",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401, 503},
	}, func(_ context.Context, input *models.DisplayRequest) (*models.StateResponse, error) {
		if s.options.Observer == nil {
			return nil, huma.Error503ServiceUnavailable("Suspend observer not available")
		}
		if input.Body.Suspended {
			s.options.Observer.OnSuspend("api")
		} else {
			s.options.Observer.OnResume("api")
		}
		return &models.StateResponse{Body: s.stateData()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-backlight",
		Method:      http.MethodGet,
		Path:        "/api/backlight",
		Summary:     "Backlight",
		Description: "Registered backlight and the LED class devices available",
		Tags:        []string{"backlight"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.BacklightResponse, error) {
		return s.backlightResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "register-backlight",
		Method:      http.MethodPut,
		Path:        "/api/backlight",
		Summary:     "Register Backlight",
		Description: "Open a backlight backend and register it, replacing the current one",
		Tags:        []string{"backlight"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(_ context.Context, input *models.BacklightRequest) (*models.BacklightResponse, error) {
		ctrl, err := s.options.NewBacklight(led.Config{
			Backend:    input.Body.Backend,
			Device:     input.Body.Device,
			OnCommand:  input.Body.OnCommand,
			OffCommand: input.Body.OffCommand,
			Root:       s.options.LEDRoot,
		}, logging.GetLogger("led"))
		if err != nil {
			return nil, huma.Error400BadRequest("Failed to open backlight", err)
		}
		s.options.Engine.RegisterCapability(ctrl, ctrl.Name())
		return s.backlightResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "unregister-backlight",
		Method:      http.MethodDelete,
		Path:        "/api/backlight",
		Summary:     "Unregister Backlight",
		Description: "Remove the backlight; the engine keeps running without touching hardware",
		Tags:        []string{"backlight"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.BacklightResponse, error) {
		s.options.Engine.RegisterCapability(nil, "")
		return s.backlightResponse(), nil
	})
}

func (s *Server) stateData() models.StateData {
	st := s.options.Engine.Snapshot()
	data := models.StateData{
		Mode:            st.Mode(),
		Enabled:         st.Enabled,
		Ongoing:         st.Ongoing,
		BlinkState:      st.BlinkState,
		Suspended:       st.Suspended,
		InKernelBlink:   st.InKernelBlink,
		BlinkIntervalMs: st.BlinkIntervalMs,
		BlinkMaxCount:   st.BlinkMaxCount,
		BlinkCountdown:  st.BlinkCountdown,
		TimerArmed:      st.TimerArmed,
		WakelockHeld:    st.WakelockHeld,
		Backlight:       st.Backlight,
	}
	if s.options.Observer != nil {
		data.DisplaySuspended = s.options.Observer.Suspended()
	}
	return data
}

func (s *Server) backlightResponse() *models.BacklightResponse {
	return &models.BacklightResponse{
		Body: models.BacklightData{
			Registered: s.options.Engine.Snapshot().Backlight,
			Available:  led.Available(s.options.LEDRoot),
		},
	}
}
