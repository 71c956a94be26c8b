package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/coreos/go-systemd/v22/journal"
)

func reset() {
	mutex.Lock()
	loggers = make(map[string]*slog.Logger)
	levels = make(map[string]*slog.LevelVar)
	isInitialized = false
	current = Config{}
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	reset()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"bln": "debug",
			"api": "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"bln", true, true, true},
		{"api", false, false, true},
		{"wakelock", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := handler.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("Debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := handler.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("Info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := handler.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("Warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	reset()

	before := GetLogger("suspend")
	if before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should default to info")
	}

	Initialize(Config{Level: "info", Modules: map[string]string{"suspend": "debug"}})

	after := GetLogger("suspend")
	if before != after {
		t.Error("logger should be cached across Initialize")
	}
	if !before.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("cached logger should pick up the module level")
	}
}

func TestApplyLevels(t *testing.T) {
	reset()
	Initialize(Config{Level: "info"})

	logger := GetLogger("led")
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug enabled before reload")
	}

	ApplyLevels(Config{Level: "warn", Modules: map[string]string{"led": "debug"}})

	if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("module override not applied")
	}
	if GetLogger("attr").Handler().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("new module should inherit the reloaded global level")
	}
}

func TestSetLevel(t *testing.T) {
	reset()
	Initialize(Config{Level: "info"})

	if err := SetLevel("metrics", "error"); err != nil {
		t.Fatal(err)
	}
	if GetLogger("metrics").Handler().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn should be disabled after SetLevel(error)")
	}

	if err := SetLevel("metrics", "loud"); err == nil {
		t.Error("SetLevel should reject unknown levels")
	}
}

func TestMultiHandlerDebugOutput(t *testing.T) {
	var buf bytes.Buffer

	debugHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	infoHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(debugHandler, infoHandler)).With("module", "test")
	logger.Debug("debug only message")
	logger.Info("everyone")

	output := buf.String()
	if n := strings.Count(output, "debug only message"); n != 1 {
		t.Errorf("debug message written %d times, want 1. Output: %s", n, output)
	}
	if n := strings.Count(output, "everyone"); n != 2 {
		t.Errorf("info message written %d times, want 2. Output: %s", n, output)
	}
}

func TestJournalHandlerEnabledFollowsLevelVar(t *testing.T) {
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelWarn)
	h := NewJournalHandler(lv)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	lv.Set(slog.LevelDebug)
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("handler did not follow LevelVar change")
	}
}

func TestAddAttrToFields(t *testing.T) {
	fields := make(map[string]string)

	addAttrToFields(fields, slog.String("module", "bln"), "")
	addAttrToFields(fields, slog.Int("countdown", 42), "")
	addAttrToFields(fields, slog.Bool("held", true), "WAKELOCK")
	addAttrToFields(fields, slog.Group("blink", slog.Uint64("interval_ms", 500)), "")
	addAttrToFields(fields, slog.Group("", slog.String("source", "timer")), "")
	addAttrToFields(fields, slog.String("blank-path", "/sys/x"), "")
	addAttrToFields(fields, slog.String("message", "clash"), "")
	addAttrToFields(fields, slog.String("_pid", "1"), "")

	want := map[string]string{
		ModuleField:         "bln",
		"COUNTDOWN":         "42",
		"WAKELOCK_HELD":     "true",
		"BLINK_INTERVAL_MS": "500",
		"SOURCE":            "timer",
		"BLANK_PATH":        "/sys/x",
		"BLND_MESSAGE":      "clash",
		"BLND_PID":          "1",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
	if _, ok := fields["MODULE"]; ok {
		t.Error("module attribute not mapped to module field")
	}
}

func TestJournalHandlerRecordFields(t *testing.T) {
	var (
		gotMsg    string
		gotPri    journal.Priority
		gotFields map[string]string
	)
	h := NewJournalHandler(slog.LevelDebug)
	h.send = func(msg string, pri journal.Priority, vars map[string]string) error {
		gotMsg, gotPri, gotFields = msg, pri, vars
		return nil
	}

	logger := slog.New(h).With("module", "suspend").WithGroup("edge")
	logger.Warn("Display blanked", "suspended", true)

	if gotMsg != "Display blanked" || gotPri != journal.PriWarning {
		t.Errorf("sent %q at priority %d", gotMsg, gotPri)
	}
	want := map[string]string{
		"SYSLOG_IDENTIFIER": Identifier,
		ModuleField:         "suspend",
		"EDGE_SUSPENDED":    "true",
	}
	for k, v := range want {
		if gotFields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, gotFields[k], v)
		}
	}
	if !strings.Contains(gotFields["CODE_FUNC"], "TestJournalHandlerRecordFields") {
		t.Errorf("CODE_FUNC = %q", gotFields["CODE_FUNC"])
	}

	// attributes bound earlier are not rewritten by later records
	logger.Info("again")
	if _, ok := gotFields["EDGE_SUSPENDED"]; ok {
		t.Error("record attribute leaked into handler fields")
	}
}

func TestParseLevelValues(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"DEBUG", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"invalid", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseLevel(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseLevel(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
