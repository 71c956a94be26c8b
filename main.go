package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/blnd/cmd"
	"github.com/smazurov/blnd/internal/api"
	"github.com/smazurov/blnd/internal/attr"
	"github.com/smazurov/blnd/internal/bln"
	"github.com/smazurov/blnd/internal/config"
	"github.com/smazurov/blnd/internal/events"
	"github.com/smazurov/blnd/internal/hotplug"
	"github.com/smazurov/blnd/internal/led"
	"github.com/smazurov/blnd/internal/logging"
	"github.com/smazurov/blnd/internal/metrics"
	"github.com/smazurov/blnd/internal/suspend"
	"github.com/smazurov/blnd/internal/systemd"
	"github.com/smazurov/blnd/internal/wakelock"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config  string `help:"Path to configuration file" short:"c" default:"/etc/blnd/config.toml"`
	EnvFile string `help:"Dotenv file with BLND_ variables" default:"/etc/default/blnd"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8095" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Blink settings
	BlinkEnabled       bool `help:"Enable the notification function at startup" default:"false" toml:"blink.enabled" env:"BLINK_ENABLED"`
	BlinkInKernelBlink bool `help:"Blink with the internal timer" default:"false" toml:"blink.in_kernel_blink" env:"BLINK_IN_KERNEL_BLINK"`
	BlinkIntervalMs    int  `help:"Blink interval in milliseconds" default:"500" toml:"blink.interval_ms" env:"BLINK_INTERVAL_MS"`
	BlinkMaxCount      int  `help:"Phase toggles before a blink times out" default:"600" toml:"blink.max_count" env:"BLINK_MAX_COUNT"`

	// Backlight settings
	BacklightBackend    string `help:"Backlight backend (auto, sysfs, command, none)" default:"auto" toml:"backlight.backend" env:"BACKLIGHT_BACKEND"`
	BacklightDevice     string `help:"LED class device for the sysfs backend" default:"" toml:"backlight.device" env:"BACKLIGHT_DEVICE"`
	BacklightOnCommand  string `help:"Command that switches the LED on" default:"" toml:"backlight.on_command" env:"BACKLIGHT_ON_COMMAND"`
	BacklightOffCommand string `help:"Command that switches the LED off" default:"" toml:"backlight.off_command" env:"BACKLIGHT_OFF_COMMAND"`

	// Wakelock settings
	WakelockBackend string `help:"Wakelock backend (auto, sysfs, logind, none)" default:"auto" toml:"wakelock.backend" env:"WAKELOCK_BACKEND"`
	WakelockName    string `help:"Wakelock name" default:"bln_wake_lock" toml:"wakelock.name" env:"WAKELOCK_NAME"`

	// Suspend settings
	SuspendSource       string `help:"Display suspend source (auto, sysfs, logind, api, none)" default:"auto" toml:"suspend.source" env:"SUSPEND_SOURCE"`
	SuspendBlankPath    string `help:"Blank file polled by the sysfs source" default:"" toml:"suspend.blank_path" env:"SUSPEND_BLANK_PATH"`
	SuspendPollInterval string `help:"Blank file poll interval" default:"1s" toml:"suspend.poll_interval" env:"SUSPEND_POLL_INTERVAL"`

	// Observability settings
	ObsPrometheusEnabled bool `help:"Enable Prometheus" default:"true" toml:"obs.prometheus_enabled" env:"OBS_PROMETHEUS_ENABLED"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingBln      string `help:"Blink engine logging level" default:"info" toml:"logging.bln" env:"LOGGING_BLN"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingWakelock string `help:"Wakelock logging level" default:"info" toml:"logging.wakelock" env:"LOGGING_WAKELOCK"`
	LoggingSuspend  string `help:"Suspend observer logging level" default:"info" toml:"logging.suspend" env:"LOGGING_SUSPEND"`
	LoggingLED      string `help:"Backlight logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if envErr := config.LoadEnvFile(opts.EnvFile); envErr != nil {
			slog.Warn("Failed to load env file", "path", opts.EnvFile, "error", envErr)
		}
		opts.Config = config.ResolvePath(opts.Config)
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"bln":      opts.LoggingBln,
				"api":      opts.LoggingAPI,
				"wakelock": opts.LoggingWakelock,
				"suspend":  opts.LoggingSuspend,
				"led":      opts.LoggingLED,
			},
		})

		logger := logging.GetLogger("main")
		notifier := systemd.NewNotifier(logging.GetLogger("systemd"))

		eventBus := events.New()

		backend, err := wakelock.NewBackend(wakelock.Config{
			Backend: opts.WakelockBackend,
			Name:    opts.WakelockName,
		}, logging.GetLogger("wakelock"))
		if err != nil {
			logger.Error("Failed to open wakelock backend", "backend", opts.WakelockBackend, "error", err)
			os.Exit(1)
		}
		wakeLock := wakelock.NewManager(backend, eventBus, logging.GetLogger("wakelock"))

		engine := bln.NewEngine(bln.Options{
			Enabled:         opts.BlinkEnabled,
			InKernelBlink:   opts.BlinkInKernelBlink,
			BlinkIntervalMs: clampUint32(opts.BlinkIntervalMs),
			BlinkMaxCount:   clampUint32(opts.BlinkMaxCount),
		}, wakeLock, eventBus, logging.GetLogger("bln"))

		// auto without a device registers the no-op controller; a real one
		// can still arrive through hotplug or the API
		backlight, err := led.New(led.Config{
			Backend:    opts.BacklightBackend,
			Device:     opts.BacklightDevice,
			OnCommand:  opts.BacklightOnCommand,
			OffCommand: opts.BacklightOffCommand,
		}, logging.GetLogger("led"))
		if err != nil {
			logger.Error("Failed to open backlight", "backend", opts.BacklightBackend, "error", err)
			os.Exit(1)
		}
		engine.RegisterCapability(backlight, backlight.Name())

		attributes := attr.New(engine, eventBus, logging.GetLogger("attr"))
		observer := suspend.NewObserver(engine, eventBus, logging.GetLogger("suspend"))

		pollInterval, err := time.ParseDuration(opts.SuspendPollInterval)
		if err != nil {
			pollInterval = suspend.DefaultPollInterval
		}
		source, err := suspend.NewSource(suspend.Config{
			Source:       opts.SuspendSource,
			BlankPath:    opts.SuspendBlankPath,
			PollInterval: pollInterval,
		}, logging.GetLogger("suspend"))
		if err != nil {
			logger.Error("Failed to open suspend source", "source", opts.SuspendSource, "error", err)
			os.Exit(1)
		}

		var unsubscribeMetrics func()
		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Engine:       engine,
			Attributes:   attributes,
			Observer:     observer,
			EventBus:     eventBus,
		}
		if opts.ObsPrometheusEnabled {
			unsubscribeMetrics = metrics.Subscribe(eventBus)
			if regErr := metrics.Register(metrics.NewStateCollector(engine.Snapshot)); regErr != nil {
				logger.Warn("Failed to register state collector", "error", regErr)
			}
			apiOpts.PrometheusHandler = metrics.Handler()
		}

		server := api.NewServer(apiOpts)

		configLogger := logging.GetLogger("config")
		watcher := config.NewConfigWatcher(opts.Config, config.LoadReloadable, configLogger)
		watcher.OnReload(func(r config.Reloadable) {
			applyBlink(engine, r.Blink, configLogger)
			logging.ApplyLevels(r.Logging)
		})

		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			engine.Start(ctx)

			go func() {
				if runErr := observer.Run(ctx, source); runErr != nil {
					logger.Error("Suspend source stopped", "source", source.Name(), "error", runErr)
				}
			}()

			if followHotplug(opts.BacklightBackend) {
				startHotplug(ctx, led.NewFollower(led.Config{Device: opts.BacklightDevice}, engine, logging.GetLogger("led")), logger)
			}

			if _, statErr := os.Stat(opts.Config); statErr == nil {
				if watchErr := watcher.Start(ctx); watchErr != nil {
					logger.Warn("Config reload disabled", "error", watchErr)
				}
			}

			go notifier.Watchdog(ctx)
			notifier.Ready()
			notifier.Status("Serving attributes on " + opts.Port)

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			cancel()

			engine.Close()
			if closeErr := wakeLock.Close(); closeErr != nil {
				logger.Warn("Error closing wakelock", "error", closeErr)
			}
			if unsubscribeMetrics != nil {
				unsubscribeMetrics()
			}
		})
	})

	cli.Root().Use = "blnd"
	cli.Root().Short = "Backlight notification daemon"

	cli.Root().AddCommand(cmd.CreateProbeCmd())
	cli.Root().AddCommand(cmd.CreateAttrCmd())

	cli.Run()
}

// applyBlink pushes reloaded [blink] keys into the running engine.
func applyBlink(engine *bln.Engine, b config.Blink, logger *slog.Logger) {
	if b.Enabled != nil {
		engine.SetEnabled(*b.Enabled)
	}
	if b.InKernelBlink != nil {
		engine.SetInKernelBlink(*b.InKernelBlink)
	}
	if b.IntervalMs != nil {
		if err := engine.SetBlinkIntervalMs(*b.IntervalMs); err != nil {
			logger.Warn("Ignoring blink.interval_ms", "value", *b.IntervalMs, "error", err)
		}
	}
	if b.MaxCount != nil {
		if err := engine.SetBlinkMaxCount(*b.MaxCount); err != nil {
			logger.Warn("Ignoring blink.max_count", "value", *b.MaxCount, "error", err)
		}
	}
	logger.Info("Applied reloaded blink settings", "options", engine.Options())
}

// followHotplug reports whether LED class devices may be registered as
// they appear.
func followHotplug(backend string) bool {
	switch backend {
	case "", "auto", "sysfs":
		return true
	}
	return false
}

// startHotplug feeds LED uevents to f until ctx is done. Without netlink
// the backlight chosen at startup stays as it is.
func startHotplug(ctx context.Context, f *led.Follower, logger *slog.Logger) {
	mon, err := hotplug.NewMonitor(hotplug.SubsystemLEDs)
	if err != nil {
		logger.Warn("LED hotplug unavailable", "error", err)
		return
	}

	ch := make(chan hotplug.Event, 16)
	go func() {
		defer mon.Close()
		if runErr := mon.Run(ctx, ch); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Warn("LED hotplug monitor stopped", "error", runErr)
		}
	}()
	go f.Run(ctx, ch)
}

func clampUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}
	if uint64(v) > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}
