package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/smazurov/lightnode/internal/devices"
	"github.com/smazurov/lightnode/internal/events"
	"github.com/smazurov/lightnode/internal/logging"
)

// summaryWait bounds how long the scan summary waits for the bus.
const summaryWait = 50 * time.Millisecond

type scanResult struct {
	devices []devices.Device
	skipped []devices.Skipped
}

// scan runs one scan with the configured roots, strictness and retry policy.
func scan(ctx context.Context, opts *Options) (scanResult, error) {
	logger := logging.GetLogger("main")

	bus := events.New()
	completed := make(chan events.ScanCompletedEvent, max(opts.Retries, 0)+1)
	defer events.SubscribeToChannel(bus, completed)()

	detector := devices.NewDetector(devices.Options{
		SysfsRoot: opts.SysfsRoot,
		Roots:     opts.Roots,
		Workers:   opts.Workers,
		EventBus:  bus,
	})

	attempt := func() (scanResult, error) {
		if opts.Lenient {
			devs, skipped, err := detector.ScanLenient(ctx)
			return scanResult{devices: devs, skipped: skipped}, retryable(err)
		}
		devs, err := detector.Scan(ctx)
		return scanResult{devices: devs}, retryable(err)
	}

	var (
		res scanResult
		err error
	)
	if opts.Retries > 0 {
		res, err = backoff.Retry(ctx, attempt,
			backoff.WithBackOff(backoff.NewConstantBackOff(opts.RetryDelay)),
			backoff.WithMaxTries(uint(opts.Retries)+1),
			backoff.WithNotify(func(err error, next time.Duration) {
				logger.Info("Device changed during scan, retrying", "error", err, "delay", next)
			}))
	} else {
		res, err = attempt()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
	}

	logScanSummary(ctx, logger, completed, err)
	return res, err
}

// retryable marks everything but vanished attribute files as permanent.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	var readErr *devices.AttributeReadError
	if errors.As(err, &readErr) {
		return err
	}
	return backoff.Permanent(err)
}

// logScanSummary logs the completion event of the final attempt. The bus
// delivers asynchronously, so it waits briefly, and only when the record
// would actually be written.
func logScanSummary(ctx context.Context, logger *slog.Logger, completed <-chan events.ScanCompletedEvent, scanErr error) {
	level := slog.LevelInfo
	if scanErr != nil {
		level = slog.LevelDebug
	}
	if !logger.Enabled(ctx, level) {
		return
	}

	timeout := time.After(summaryWait)
	for {
		select {
		case ev := <-completed:
			if ev.Failed() != (scanErr != nil) {
				continue
			}
			if ev.Failed() {
				logger.Debug("Scan failed", "roots", ev.Roots, "error", ev.Error, "duration_ms", ev.DurationMs)
			} else {
				logger.Info("Scan completed",
					"roots", ev.Roots,
					"devices", ev.Devices,
					"skipped", ev.Skipped,
					"duration_ms", ev.DurationMs)
			}
			return
		case <-timeout:
			return
		}
	}
}
