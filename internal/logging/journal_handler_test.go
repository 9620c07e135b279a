package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

type journalEntry struct {
	message  string
	priority journal.Priority
	fields   map[string]string
}

// recordingJournal returns a handler whose entries are captured instead of sent.
func recordingJournal(level slog.Leveler) (*JournalHandler, *[]journalEntry) {
	var entries []journalEntry
	h := NewJournalHandler(level)
	h.send = func(message string, priority journal.Priority, fields map[string]string) error {
		entries = append(entries, journalEntry{message: message, priority: priority, fields: fields})
		return nil
	}
	return h, &entries
}

func TestJournalHandlerFollowsLevelVar(t *testing.T) {
	levelVar := &slog.LevelVar{}
	levelVar.Set(slog.LevelWarn)
	h := NewJournalHandler(levelVar)

	ctx := context.Background()
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Info should be disabled at warn level")
	}
	if !h.Enabled(ctx, slog.LevelWarn) {
		t.Error("Warn should be enabled at warn level")
	}

	levelVar.Set(slog.LevelDebug)
	if !h.Enabled(ctx, slog.LevelDebug) {
		t.Error("Debug should be enabled after lowering the LevelVar")
	}

	derived := h.WithAttrs([]slog.Attr{slog.String("module", "devices")})
	levelVar.Set(slog.LevelError)
	if derived.Enabled(ctx, slog.LevelWarn) {
		t.Error("Derived handler should share the LevelVar")
	}
}

func TestJournalHandlerDefaultsToInfo(t *testing.T) {
	h := NewJournalHandler(nil)
	if h.Enabled(context.Background(), slog.LevelDebug) || !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("nil level should behave like info")
	}
}

func TestJournalHandlerDeviceFields(t *testing.T) {
	h, entries := recordingJournal(slog.LevelDebug)
	logger := slog.New(h).With("module", "devices")

	logger.Warn("Skipping unreadable device",
		"path", "/sys/class/leds/bad0",
		"error", errors.New("invalid integer"),
		slog.Group("device", "name", "led0", "brightness", 3))

	if len(*entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(*entries))
	}
	e := (*entries)[0]
	if e.message != "Skipping unreadable device" || e.priority != journal.PriWarning {
		t.Errorf("Unexpected entry %q priority %d", e.message, e.priority)
	}

	want := map[string]string{
		"SYSLOG_IDENTIFIER":     "lightnode",
		"PRIORITY":              "4",
		"MODULE":                "devices",
		"PATH":                  "/sys/class/leds/bad0",
		"LIGHTNODE_DEVICE_PATH": "/sys/class/leds/bad0",
		"ERROR":                 "invalid integer",
		"DEVICE_NAME":           "led0",
		"LIGHTNODE_DEVICE":      "led0",
		"DEVICE_BRIGHTNESS":     "3",
		"LIGHTNODE_BRIGHTNESS":  "3",
	}
	for key, value := range want {
		if got := e.fields[key]; got != value {
			t.Errorf("field %s = %q, want %q", key, got, value)
		}
	}
}

func TestJournalHandlerGroupsAndValues(t *testing.T) {
	h, entries := recordingJournal(slog.LevelDebug)
	logger := slog.New(h).WithGroup("scan")

	logger.Debug("Scan completed",
		"duration", 1500*time.Millisecond,
		"ratio", 0.25,
		"lenient", true)

	e := (*entries)[0]
	if e.priority != journal.PriDebug {
		t.Errorf("priority = %d, want debug", e.priority)
	}
	for key, value := range map[string]string{
		"SCAN_DURATION": "1.5s",
		"SCAN_RATIO":    "0.25",
		"SCAN_LENIENT":  "true",
	} {
		if got := e.fields[key]; got != value {
			t.Errorf("field %s = %q, want %q", key, got, value)
		}
	}
}

func TestJournalHandlerSendError(t *testing.T) {
	h := NewJournalHandler(slog.LevelInfo)
	h.send = func(string, journal.Priority, map[string]string) error {
		return errors.New("socket closed")
	}

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0))
	if err == nil {
		t.Fatal("Expected send error to be returned")
	}
}
