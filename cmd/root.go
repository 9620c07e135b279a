package cmd

import (
	"github.com/smazurov/lightnode/internal/config"
	"github.com/smazurov/lightnode/internal/logging"
	"github.com/spf13/cobra"
)

// CreateRootCmd creates the lightnode command tree. Run without a subcommand it
// behaves like "list" with text output.
func CreateRootCmd() *cobra.Command {
	opts := DefaultOptions()

	root := &cobra.Command{
		Use:   "lightnode",
		Short: "Discover LED and backlight devices exposed in sysfs",
		Long: `Enumerates /sys/class/leds and /sys/class/backlight and reports each device's ` +
			`name, brightness and max brightness.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadConfig(opts, cmd); err != nil {
				return err
			}
			logging.Initialize(logging.Config{
				Level:  opts.LogLevel,
				Format: opts.LogFormat,
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.Config, "config", "c", opts.Config, "Path to configuration file")
	flags.StringSliceVar(&opts.Roots, "roots", opts.Roots, "Device class directories to scan, in order")
	flags.StringVar(&opts.SysfsRoot, "sysfs-root", opts.SysfsRoot, "Prefix for every root, e.g. a captured sysfs tree")
	flags.IntVar(&opts.Workers, "workers", opts.Workers, "Devices read concurrently")
	flags.BoolVar(&opts.Lenient, "lenient", opts.Lenient, "Skip unreadable devices instead of failing")
	flags.IntVar(&opts.Retries, "retries", opts.Retries, "Re-scan this many times when a device vanishes mid-scan")
	flags.DurationVar(&opts.RetryDelay, "retry-delay", opts.RetryDelay, "Delay between re-scans")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Logging level (debug, info, warn, error)")
	flags.StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Logging format (text, json)")

	root.AddCommand(CreateListCmd(opts))
	root.AddCommand(CreateMetricsCmd(opts))
	root.AddCommand(CreatePublishCmd(opts))
	root.AddCommand(CreateVersionCmd())

	return root
}
