package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-type event counts",
		Long: `Show per-type event counts with first and last timestamps,
read from the archive mirror.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}

	return cmd
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.syncArchive(ctx); err != nil {
		return WrapExitError(ExitCommandError, "sync archive", err)
	}

	stats, err := a.archive.Stats(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "archive stats", err)
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var b strings.Builder
	total := 0
	for _, tc := range stats {
		total += tc.Count
		fmt.Fprintf(&b, "%-24s %5d   %s .. %s\n",
			tc.Type, tc.Count,
			tc.First.UTC().Format("2006-01-02"),
			tc.Last.UTC().Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "%-24s %5d\n", "total", total)
	return out.SuccessText(b.String(), stats)
}
