package logging

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// ModuleField carries the blnd module a record came from, so
// `journalctl BLND_MODULE=bln` selects one subsystem.
const ModuleField = "BLND_MODULE"

// fields journald or this handler fills in; attributes that would clash are
// moved under the BLND_ namespace.
var reservedFields = map[string]bool{
	"MESSAGE":           true,
	"PRIORITY":          true,
	"SYSLOG_IDENTIFIER": true,
	"CODE_FILE":         true,
	"CODE_LINE":         true,
	"CODE_FUNC":         true,
}

type sendFunc func(message string, priority journal.Priority, vars map[string]string) error

// JournalHandler is a slog.Handler that writes to the systemd journal.
// Attributes become journal fields; the "module" attribute set by GetLogger
// becomes ModuleField.
type JournalHandler struct {
	level  slog.Leveler
	fields map[string]string // WithAttrs, already flattened
	prefix string            // open groups joined with '_'
	send   sendFunc
}

// NewJournalHandler creates a journal handler.
// level may be a *slog.LevelVar so runtime changes apply.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{
		level:  level,
		fields: map[string]string{},
		send:   journal.Send,
	}
}

func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	if err := h.send(r.Message, journalPriority(r.Level), h.recordFields(r)); err != nil {
		fmt.Fprintf(os.Stderr, "journal: %v\n", err)
		return err
	}
	return nil
}

// recordFields builds the journal variables for r. PRIORITY and MESSAGE are
// added by journal.Send.
func (h *JournalHandler) recordFields(r slog.Record) map[string]string {
	fields := maps.Clone(h.fields)
	fields["SYSLOG_IDENTIFIER"] = Identifier

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			fields["CODE_FILE"] = frame.File
			fields["CODE_LINE"] = strconv.Itoa(frame.Line)
			fields["CODE_FUNC"] = frame.Function
		}
	}

	r.Attrs(func(a slog.Attr) bool {
		addAttrToFields(fields, a, h.prefix)
		return true
	})
	return fields
}

// WithAttrs flattens attrs under the current group path once, so records
// only add their own attributes.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	fields := maps.Clone(h.fields)
	for _, a := range attrs {
		addAttrToFields(fields, a, h.prefix)
	}
	return &JournalHandler{level: h.level, fields: fields, prefix: h.prefix, send: h.send}
}

func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &JournalHandler{level: h.level, fields: h.fields, prefix: joinField(h.prefix, name), send: h.send}
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// addAttrToFields writes attr into fields under prefix. Groups nest with '_'
// and an empty group key inlines its members, as slog does.
func addAttrToFields(fields map[string]string, attr slog.Attr, prefix string) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = joinField(prefix, attr.Key)
		}
		for _, a := range attr.Value.Group() {
			addAttrToFields(fields, a, inner)
		}
		return
	}

	name := fieldName(prefix, attr.Key)
	switch attr.Value.Kind() {
	case slog.KindInt64:
		fields[name] = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		fields[name] = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindFloat64:
		fields[name] = strconv.FormatFloat(attr.Value.Float64(), 'f', -1, 64)
	case slog.KindBool:
		fields[name] = strconv.FormatBool(attr.Value.Bool())
	case slog.KindDuration:
		fields[name] = attr.Value.Duration().String()
	case slog.KindTime:
		fields[name] = attr.Value.Time().Format("2006-01-02T15:04:05.000Z07:00")
	default:
		fields[name] = attr.Value.String()
	}
}

// fieldName maps an attribute key to a journal field name. journald accepts
// only A-Z, 0-9 and '_', must not start with '_' or a digit, and owns the
// reserved names.
func fieldName(prefix, key string) string {
	if prefix == "" && key == "module" {
		return ModuleField
	}
	name := joinField(prefix, key)
	switch {
	case name == "", name[0] == '_':
		return "BLND" + name
	case name[0] >= '0' && name[0] <= '9', reservedFields[name]:
		return "BLND_" + name
	}
	return name
}

func joinField(prefix, key string) string {
	key = strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		default:
			return '_'
		}
	}, key)
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// IsJournalAvailable checks if systemd journal is available.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
