package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/blnd/internal/attr"
	"github.com/smazurov/blnd/internal/bln"
	"github.com/smazurov/blnd/internal/events"
	"github.com/smazurov/blnd/internal/led"
	"github.com/smazurov/blnd/internal/logging"
	"github.com/smazurov/blnd/internal/suspend"
)

// Engine is the part of the blink engine the API needs beyond attributes.
type Engine interface {
	Snapshot() bln.State
	RegisterCapability(c bln.Capability, name string)
}

// BacklightFactory opens a backlight from a request; led.New in production.
type BacklightFactory func(cfg led.Config, logger *slog.Logger) (led.Controller, error)

// Options wires the server to the rest of the daemon.
type Options struct {
	AuthUsername string
	AuthPassword string

	Engine     Engine
	Attributes *attr.Table
	Observer   *suspend.Observer
	EventBus   *events.Bus

	NewBacklight BacklightFactory
	LEDRoot      string // LED class root for listing, defaults to /sys/class/leds

	PrometheusHandler http.Handler // optional, served at /metrics without auth
}

// Server is the HTTP attribute and control surface.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	eventBus   *events.Bus
	logger     *slog.Logger
}

// NewServer creates the API server on a Go 1.22+ ServeMux.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("blnd API", "1.0.0")
	config.Info.Description = "Backlight notification control: attributes, state and events"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	if opts.NewBacklight == nil {
		opts.NewBacklight = led.New
	}

	server := &Server{
		api:      api,
		mux:      mux,
		options:  opts,
		eventBus: opts.EventBus,
		logger:   logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// GetMux returns the underlying HTTP ServeMux.
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start listens on addr until Stop.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting blnd API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop closes the listener and any open connections, including SSE streams.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.registerSystemRoutes()
	s.registerAttributeRoutes()
	s.registerStateRoutes()
	s.registerSSERoutes()
}

// withAuth returns the basic auth security requirement.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
