// Package metrics exposes scanned devices as Prometheus metrics.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smazurov/lightnode/internal/devices"
	"github.com/smazurov/lightnode/internal/logging"
)

const namespace = "lightnode"

var deviceLabels = []string{"name", "path"}

// DeviceCollector scans on every Collect, so each gather reports fresh brightness.
type DeviceCollector struct {
	detector devices.DeviceDetector
	lenient  bool
	timeout  time.Duration
	logger   logging.Logger

	brightness    *prometheus.Desc
	maxBrightness *prometheus.Desc
	ratio         *prometheus.Desc
	scanSuccess   *prometheus.Desc
	scanSkipped   *prometheus.Desc
	scanDuration  *prometheus.Desc

	mu      sync.Mutex
	lastErr error
}

// CollectorOptions configures a DeviceCollector.
type CollectorOptions struct {
	// Lenient reports readable devices even when some cannot be read.
	Lenient bool
	// Timeout bounds a single scan. Zero means no limit.
	Timeout time.Duration
}

// NewDeviceCollector creates a collector over detector.
func NewDeviceCollector(detector devices.DeviceDetector, opts CollectorOptions) *DeviceCollector {
	return &DeviceCollector{
		detector: detector,
		lenient:  opts.Lenient,
		timeout:  opts.Timeout,
		logger:   logging.GetLogger("metrics"),

		brightness: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "device", "brightness"),
			"Current brightness as reported by the device.",
			deviceLabels, nil),
		maxBrightness: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "device", "max_brightness"),
			"Maximum brightness supported by the device.",
			deviceLabels, nil),
		ratio: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "device", "brightness_ratio"),
			"Brightness divided by max brightness, 0 when max brightness is not positive.",
			deviceLabels, nil),
		scanSuccess: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "scan", "success"),
			"Whether the last device scan succeeded.",
			nil, nil),
		scanSkipped: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "scan", "skipped_devices"),
			"Devices skipped by the last lenient scan.",
			nil, nil),
		scanDuration: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "scan", "duration_seconds"),
			"Duration of the last device scan.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *DeviceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.brightness
	ch <- c.maxBrightness
	ch <- c.ratio
	ch <- c.scanSuccess
	ch <- c.scanSkipped
	ch <- c.scanDuration
}

// Collect implements prometheus.Collector. A failed scan reports scan_success 0
// and no device series.
func (c *DeviceCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	devs, skipped, err := c.scan(ctx)
	elapsed := time.Since(start)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	ch <- prometheus.MustNewConstMetric(c.scanDuration, prometheus.GaugeValue, elapsed.Seconds())

	if err != nil {
		c.logger.Warn("Device scan failed", "error", err)
		ch <- prometheus.MustNewConstMetric(c.scanSuccess, prometheus.GaugeValue, 0)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.scanSuccess, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.scanSkipped, prometheus.GaugeValue, float64(len(skipped)))

	for _, d := range devs {
		ch <- prometheus.MustNewConstMetric(c.brightness, prometheus.GaugeValue, float64(d.Brightness), d.Name, d.Path)
		ch <- prometheus.MustNewConstMetric(c.maxBrightness, prometheus.GaugeValue, float64(d.MaxBrightness), d.Name, d.Path)
		ch <- prometheus.MustNewConstMetric(c.ratio, prometheus.GaugeValue, d.Percent()/100, d.Name, d.Path)
	}
}

func (c *DeviceCollector) scan(ctx context.Context) ([]devices.Device, []devices.Skipped, error) {
	if c.lenient {
		return c.detector.ScanLenient(ctx)
	}
	devs, err := c.detector.Scan(ctx)
	return devs, nil, err
}

// LastError returns the error of the most recent scan, if any.
func (c *DeviceCollector) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
