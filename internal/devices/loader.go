package devices

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/smazurov/lightnode/internal/logging"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Workers bounds how many devices are read concurrently. Values below 2 read sequentially.
	Workers int
	Logger  *slog.Logger
}

// Loader turns candidate directories into Devices by reading their attribute files.
type Loader struct {
	fs      afero.Fs
	workers int
	logger  *slog.Logger
}

// outcome is the per-candidate result. A zero outcome is a non-directory entry
// (or one that was never read because an earlier candidate failed).
type outcome struct {
	device Device
	err    error
	loaded bool
}

// NewLoader creates a loader reading through fsys.
func NewLoader(fsys afero.Fs, opts *LoaderOptions) *Loader {
	l := &Loader{
		fs:      fsys,
		workers: 1,
		logger:  logging.GetLogger("devices"),
	}
	if opts != nil {
		if opts.Workers > 1 {
			l.workers = opts.Workers
		}
		if opts.Logger != nil {
			l.logger = opts.Logger
		}
	}
	return l
}

// LoadDevices builds a Device for every directory in dirs, in input order.
// Non-directory entries are skipped. The first candidate (by input order) that
// cannot be built fails the whole call and no devices are returned.
func (l *Loader) LoadDevices(ctx context.Context, dirs []string) ([]Device, error) {
	outcomes, err := l.run(ctx, dirs, true)
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		if o.loaded {
			devices = append(devices, o.device)
		}
	}
	return devices, nil
}

// LoadDevicesLenient is the best-effort variant of LoadDevices: candidates that
// cannot be built are returned as Skipped, in input order, next to the devices
// that could. The error is non-nil only when ctx is cancelled.
func (l *Loader) LoadDevicesLenient(ctx context.Context, dirs []string) ([]Device, []Skipped, error) {
	outcomes, err := l.run(ctx, dirs, false)
	if err != nil {
		return nil, nil, err
	}

	devices := make([]Device, 0, len(outcomes))
	var skipped []Skipped
	for i, o := range outcomes {
		switch {
		case o.err != nil:
			skipped = append(skipped, Skipped{Path: dirs[i], Err: o.err})
		case o.loaded:
			devices = append(devices, o.device)
		}
	}
	return devices, skipped, nil
}

// run evaluates every candidate and returns outcomes indexed like dirs.
// With failFast set, candidates after the lowest failing index are not read.
func (l *Loader) run(ctx context.Context, dirs []string, failFast bool) ([]outcome, error) {
	outcomes := make([]outcome, len(dirs))

	if l.workers < 2 || len(dirs) < 2 {
		for i, dir := range dirs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = l.load(dir)
			if failFast && outcomes[i].err != nil {
				break
			}
		}
		return outcomes, nil
	}

	var firstFailed atomic.Int64
	firstFailed.Store(int64(len(dirs)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, dir := range dirs {
		if gctx.Err() != nil || (failFast && int64(i) > firstFailed.Load()) {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if failFast && int64(i) > firstFailed.Load() {
				return nil
			}
			outcomes[i] = l.load(dir)
			if failFast && outcomes[i].err != nil {
				lowerTo(&firstFailed, int64(i))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup only cancels gctx on a worker error, so check the caller's context too
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// load reads one candidate.
func (l *Loader) load(path string) outcome {
	info, err := l.fs.Stat(path)
	if err != nil || !info.IsDir() {
		l.logger.Debug("Skipping non-directory entry", "path", path)
		return outcome{}
	}

	device, err := l.readDevice(path)
	if err != nil {
		return outcome{err: err}
	}

	l.logger.Debug("Loaded device",
		"name", device.Name,
		"path", device.Path,
		"brightness", device.Brightness,
		"max_brightness", device.MaxBrightness)
	return outcome{device: device, loaded: true}
}

func (l *Loader) readDevice(path string) (Device, error) {
	name, err := deviceName(path)
	if err != nil {
		return Device{}, err
	}

	brightness, err := readIntAttribute(l.fs, path, AttrBrightness)
	if err != nil {
		return Device{}, err
	}

	maxBrightness, err := readIntAttribute(l.fs, path, AttrMaxBrightness)
	if err != nil {
		return Device{}, err
	}

	return Device{
		Name:          name,
		Path:          path,
		Brightness:    brightness,
		MaxBrightness: maxBrightness,
	}, nil
}

// lowerTo atomically sets v to n if n is smaller than the current value.
func lowerTo(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}
