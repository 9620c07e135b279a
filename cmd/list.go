package cmd

import (
	"context"
	"io"

	"github.com/smazurov/lightnode/internal/output"
	"github.com/spf13/cobra"
)

// CreateListCmd creates the list command.
func CreateListCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List LED and backlight devices",
		Long: `Scans every root and prints one record per device in enumeration order. ` +
			`In strict mode the first unreadable device fails the command and nothing is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", opts.Format, "Output format (text, json, yaml, toml)")
	return cmd
}

func runList(ctx context.Context, w io.Writer, opts *Options) error {
	if err := output.ValidateFormat(opts.Format); err != nil {
		return err
	}

	res, err := scan(ctx, opts)
	if err != nil {
		return err
	}
	return output.Write(w, opts.Format, res.devices)
}
