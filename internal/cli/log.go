package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendlog/tend/internal/event"
	"github.com/tendlog/tend/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Type  string
	Since string
	Limit int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Query the archived event log",
		Long: `Query the archived event log.

Reads from the SQLite mirror of the log. The mirror is rebuilt
automatically when it has drifted from the statefile.

Examples:
  tend log
  tend log --type glucose_measured --limit 10
  tend log --since 2025-03-01`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "filter by event type")
	cmd.Flags().StringVar(&opts.Since, "since", "", "only events on or after this day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows (0 = all)")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	a, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.syncArchive(ctx); err != nil {
		return WrapExitError(ExitCommandError, "sync archive", err)
	}

	filter := store.Filter{Limit: opts.Limit}
	if opts.Type != "" {
		t := event.Type(opts.Type)
		if !event.KnownTypes[t] {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown event type %q", opts.Type))
		}
		filter.Type = t
	}
	if opts.Since != "" {
		day, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --since day", err)
		}
		filter.Since = day
	}

	rows, err := a.archive.Query(ctx, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "query archive", err)
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%4d  %s  %-22s%s\n",
			row.Seq,
			row.Event.TS.UTC().Format("2006-01-02 15:04"),
			row.Event.Type,
			eventDetail(row.Event))
	}
	if len(rows) == 0 {
		b.WriteString("no events\n")
	}
	return out.SuccessText(b.String(), rows)
}

// eventDetail renders the variant-specific fields for the text listing.
func eventDetail(ev event.Event) string {
	switch ev.Type {
	case event.TypeRitualStepCompleted:
		return fmt.Sprintf("  %s.%s", ev.RitualID, ev.StepID)
	case event.TypeMedTaken:
		if ev.Dose != "" {
			return fmt.Sprintf("  %s (%s)", ev.MedID, ev.Dose)
		}
		return "  " + ev.MedID
	case event.TypeEyeDropApplied:
		return "  " + string(ev.Drop)
	case event.TypeWateringDone, event.TypePlantProfileUpdated:
		return "  " + ev.PlantID
	case event.TypeGlucoseMeasured:
		return fmt.Sprintf("  %.1f mmol/L", ev.Value)
	case event.TypeBackupCreated:
		return "  " + ev.Path
	default:
		return ""
	}
}
