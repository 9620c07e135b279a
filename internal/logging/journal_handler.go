package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// SyslogIdentifier tags every journal entry.
const SyslogIdentifier = "lightnode"

// deviceFields lifts device attributes into well-known journal fields so
// `journalctl LIGHTNODE_DEVICE=led0` works regardless of module or group.
var deviceFields = map[string]string{
	"name":           "LIGHTNODE_DEVICE",
	"path":           "LIGHTNODE_DEVICE_PATH",
	"root":           "LIGHTNODE_ROOT",
	"brightness":     "LIGHTNODE_BRIGHTNESS",
	"max_brightness": "LIGHTNODE_MAX_BRIGHTNESS",
}

// JournalHandler is a slog.Handler writing to the systemd journal.
// The level is read on every call, so a *slog.LevelVar can change it at runtime.
type JournalHandler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	send   func(message string, priority journal.Priority, fields map[string]string) error
}

// NewJournalHandler creates a journal handler filtering at level.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &JournalHandler{level: level, send: journal.Send}
}

// Enabled reports whether records at level are sent.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle sends the record to the journal.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	priority := priorityFor(r.Level)
	if err := h.send(r.Message, priority, h.fields(r)); err != nil {
		return fmt.Errorf("journal send: %w", err)
	}
	return nil
}

// fields flattens handler and record attributes into journal fields.
func (h *JournalHandler) fields(r slog.Record) map[string]string {
	fields := map[string]string{
		"PRIORITY":          strconv.Itoa(int(priorityFor(r.Level))),
		"SYSLOG_IDENTIFIER": SyslogIdentifier,
	}
	for _, attr := range h.attrs {
		addField(fields, attr, h.groups)
	}
	r.Attrs(func(attr slog.Attr) bool {
		addField(fields, attr, h.groups)
		return true
	})
	return fields
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a handler that prefixes later keys with name.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func priorityFor(level slog.Level) journal.Priority {
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

// addField stores attr under an upper-case, group-prefixed key. Device
// attributes are also stored under their LIGHTNODE_* field.
func addField(fields map[string]string, attr slog.Attr, groups []string) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		nested := groups
		if attr.Key != "" {
			nested = append(append([]string(nil), groups...), attr.Key)
		}
		for _, a := range attr.Value.Group() {
			addField(fields, a, nested)
		}
		return
	}

	value := fieldValue(attr.Value)
	key := strings.ToUpper(strings.Join(append(append([]string(nil), groups...), attr.Key), "_"))
	fields[key] = value
	if field, ok := deviceFields[attr.Key]; ok {
		fields[field] = value
	}
}

func fieldValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format("2006-01-02T15:04:05.000Z07:00")
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	default:
		return v.String()
	}
}

// IsJournalAvailable checks if the systemd journal socket is reachable.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
