package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/smazurov/lightnode/internal/devices"
	"github.com/smazurov/lightnode/internal/metrics"
	"github.com/spf13/cobra"
)

// CreateMetricsCmd creates the metrics command.
func CreateMetricsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print device brightness as Prometheus metrics",
		Long: `Runs one scan and renders it in the Prometheus text exposition format, ` +
			`or writes it atomically to a node_exporter textfile with --textfile. ` +
			`A failed scan still renders lightnode_scan_success 0 and exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMetrics(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Textfile, "textfile", opts.Textfile, "Write to this .prom file instead of stdout")
	return cmd
}

func runMetrics(w io.Writer, opts *Options) error {
	collector := metrics.NewDeviceCollector(scanDetector{opts: opts}, metrics.CollectorOptions{
		Lenient: opts.Lenient,
	})
	reg := metrics.NewRegistry(collector)

	var err error
	if opts.Textfile != "" {
		err = metrics.WriteTextfile(opts.Textfile, reg)
	} else {
		err = metrics.WriteText(w, reg)
	}
	if err != nil {
		return err
	}

	if scanErr := collector.LastError(); scanErr != nil {
		return fmt.Errorf("device scan failed: %w", scanErr)
	}
	return nil
}

// scanDetector runs scans through the CLI retry policy.
type scanDetector struct {
	opts *Options
}

func (s scanDetector) Scan(ctx context.Context) ([]devices.Device, error) {
	strict := *s.opts
	strict.Lenient = false
	res, err := scan(ctx, &strict)
	return res.devices, err
}

func (s scanDetector) ScanLenient(ctx context.Context) ([]devices.Device, []devices.Skipped, error) {
	lenient := *s.opts
	lenient.Lenient = true
	res, err := scan(ctx, &lenient)
	return res.devices, res.skipped, err
}

func (s scanDetector) Roots() []string {
	return s.opts.Roots
}
