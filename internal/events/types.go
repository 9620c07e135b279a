package events

// Event type constants for kelindar/event.
const (
	TypeDeviceLoaded uint32 = iota + 1
	TypeDeviceSkipped
	TypeScanCompleted
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DeviceLoadedEvent is published for every device a scan reads successfully.
type DeviceLoadedEvent struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Brightness    int64  `json:"brightness"`
	MaxBrightness int64  `json:"max_brightness"`
	Timestamp     string `json:"timestamp"`
}

// Type returns the event type identifier for DeviceLoadedEvent.
func (e DeviceLoadedEvent) Type() uint32 { return TypeDeviceLoaded }

// DeviceSkippedEvent is published by lenient scans for a device that could not be read.
type DeviceSkippedEvent struct {
	Path      string `json:"path"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for DeviceSkippedEvent.
func (e DeviceSkippedEvent) Type() uint32 { return TypeDeviceSkipped }

// ScanCompletedEvent is published once per scan, successful or not.
type ScanCompletedEvent struct {
	Roots      []string `json:"roots"`
	Devices    int      `json:"devices"`
	Skipped    int      `json:"skipped"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// Type returns the event type identifier for ScanCompletedEvent.
func (e ScanCompletedEvent) Type() uint32 { return TypeScanCompleted }

// Failed reports whether the scan ended with an error.
func (e ScanCompletedEvent) Failed() bool {
	return e.Error != ""
}
