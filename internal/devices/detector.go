package devices

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/smazurov/lightnode/internal/events"
	"github.com/smazurov/lightnode/internal/logging"
	"github.com/spf13/afero"
)

// DefaultRoots are the sysfs class directories holding LED and backlight devices.
var DefaultRoots = []string{"/sys/class/leds", "/sys/class/backlight"}

// DeviceDetector enumerates light devices under a set of roots.
type DeviceDetector interface {
	// Scan returns every device, or the first error. Never a partial list.
	Scan(ctx context.Context) ([]Device, error)

	// ScanLenient returns the devices that could be read plus the ones that could not.
	// Unreadable roots are still fatal.
	ScanLenient(ctx context.Context) ([]Device, []Skipped, error)

	// Roots returns the scanned roots in order, including any sysfs prefix.
	Roots() []string
}

// Options configures a detector. Zero values select the defaults.
type Options struct {
	// Fs is the filesystem scanned. Defaults to the OS filesystem, read-only.
	Fs afero.Fs
	// SysfsRoot prefixes every root, e.g. a chroot or a captured sysfs tree.
	// Device paths and errors carry the prefixed path, so they point at the real directory.
	SysfsRoot string
	// Roots are scanned in order. A nil or empty slice selects DefaultRoots;
	// to scan nothing, call ListCandidateDirs and LoadDevices directly.
	Roots []string
	// Workers bounds concurrent device reads.
	Workers int
	// EventBus receives scan events when set.
	EventBus *events.Bus
	Logger   *slog.Logger
}

type detector struct {
	roots  []string
	loader *Loader
	bus    *events.Bus
	logger *slog.Logger
}

// NewDetector creates a detector over the roots in opts.
func NewDetector(opts Options) DeviceDetector {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewReadOnlyFs(afero.NewOsFs())
	}

	roots := opts.Roots
	if len(roots) == 0 {
		roots = DefaultRoots
	}
	if opts.SysfsRoot != "" {
		roots = lo.Map(roots, func(root string, _ int) string {
			return filepath.Join(opts.SysfsRoot, root)
		})
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger("devices")
	}

	return &detector{
		roots:  append([]string(nil), roots...),
		loader: NewLoader(fsys, &LoaderOptions{Workers: opts.Workers, Logger: logger}),
		bus:    opts.EventBus,
		logger: logger,
	}
}

func (d *detector) Roots() []string {
	return append([]string(nil), d.roots...)
}

// Scan lists all roots, then loads every candidate strictly.
func (d *detector) Scan(ctx context.Context) ([]Device, error) {
	start := time.Now()

	dirs, err := ListCandidateDirs(d.loader.fs, d.roots)
	if err != nil {
		d.completed(start, 0, 0, err)
		return nil, err
	}

	devices, err := d.loader.LoadDevices(ctx, dirs)
	if err != nil {
		d.completed(start, 0, 0, err)
		return nil, err
	}

	d.publishLoaded(devices)
	d.completed(start, len(devices), 0, nil)
	return devices, nil
}

// ScanLenient lists all roots, then loads candidates collecting per-device failures.
func (d *detector) ScanLenient(ctx context.Context) ([]Device, []Skipped, error) {
	start := time.Now()

	dirs, err := ListCandidateDirs(d.loader.fs, d.roots)
	if err != nil {
		d.completed(start, 0, 0, err)
		return nil, nil, err
	}

	devices, skipped, err := d.loader.LoadDevicesLenient(ctx, dirs)
	if err != nil {
		d.completed(start, 0, 0, err)
		return nil, nil, err
	}

	for _, s := range skipped {
		d.logger.Warn("Skipping unreadable device", "path", s.Path, "error", s.Err)
		if d.bus != nil {
			d.bus.Publish(events.DeviceSkippedEvent{
				Path:      s.Path,
				Error:     s.Err.Error(),
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}
	}

	d.publishLoaded(devices)
	d.completed(start, len(devices), len(skipped), nil)
	return devices, skipped, nil
}

func (d *detector) publishLoaded(devices []Device) {
	if d.bus == nil {
		return
	}
	ts := time.Now().Format(time.RFC3339)
	for _, dev := range devices {
		d.bus.Publish(events.DeviceLoadedEvent{
			Name:          dev.Name,
			Path:          dev.Path,
			Brightness:    dev.Brightness,
			MaxBrightness: dev.MaxBrightness,
			Timestamp:     ts,
		})
	}
}

func (d *detector) completed(start time.Time, found, skipped int, err error) {
	elapsed := time.Since(start)

	if err != nil {
		d.logger.Debug("Scan failed", "roots", d.roots, "duration", elapsed, "error", err)
	} else {
		d.logger.Debug("Scan completed", "roots", d.roots, "devices", found, "skipped", skipped, "duration", elapsed)
	}

	if d.bus == nil {
		return
	}
	ev := events.ScanCompletedEvent{
		Roots:      d.Roots(),
		Devices:    found,
		Skipped:    skipped,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	d.bus.Publish(ev)
}
