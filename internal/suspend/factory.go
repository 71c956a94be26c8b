package suspend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config selects the edge source.
type Config struct {
	Source       string // auto, logind, sysfs, none
	BlankPath    string // sysfs blank file; auto-detected when empty
	PollInterval time.Duration
}

// NewSource returns the source named by cfg. "auto" prefers a sysfs blank
// file, then logind when a system bus is reachable, then none.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	switch strings.ToLower(cfg.Source) {
	case "sysfs":
		path := cfg.BlankPath
		if path == "" {
			path = DetectBlankPath()
		}
		if path == "" {
			return nil, fmt.Errorf("no blank file found")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("blank file %s: %w", path, err)
		}
		return newBlankFile(path, cfg.PollInterval), nil
	case "logind":
		return logind{}, nil
	case "none", "api":
		return none{}, nil
	case "", "auto":
		src := detect(cfg)
		logger.Info("Selected suspend source", "source", src.Name())
		return src, nil
	default:
		return nil, fmt.Errorf("unknown suspend source %q", cfg.Source)
	}
}

// Detect reports which source "auto" would pick.
func Detect(blankPath string) string {
	return detect(Config{BlankPath: blankPath}).Name()
}

func detect(cfg Config) Source {
	path := cfg.BlankPath
	if path == "" {
		path = DetectBlankPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return newBlankFile(path, cfg.PollInterval)
		}
	}
	if systemBusAvailable() {
		return logind{}
	}
	return none{}
}

// DetectBlankPath returns the first readable blank file on this system.
func DetectBlankPath() string {
	for _, pattern := range blankCandidates {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if _, err := readBlank(m); err == nil {
				return m
			}
		}
	}
	return ""
}

func systemBusAvailable() bool {
	if os.Getenv("DBUS_SYSTEM_BUS_ADDRESS") != "" {
		return true
	}
	_, err := os.Stat("/run/dbus/system_bus_socket")
	return err == nil
}

// none produces no edges; the display endpoint is the only input.
type none struct{}

func (none) Name() string { return "none" }

func (none) Run(ctx context.Context, _ *Observer) error {
	<-ctx.Done()
	return nil
}
