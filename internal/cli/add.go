package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendlog/tend/internal/event"
)

// NewAddCommand creates the add command group. Every subcommand appends
// one event, re-derives, persists, and reports the save status plus the
// top anchor.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a life event to the log",
		Long: `Append a life event to the log.

Events are append-only facts. Correcting a mistake means appending a
compensating event, never editing the log.

Examples:
  tend add step morning meds
  tend add med morning-meds --dose "500mg"
  tend add drops systane
  tend add water ficus
  tend add glucose 5.4
  tend add focus-lost`,
	}

	cmd.AddCommand(newAddStepCommand(rootOpts))
	cmd.AddCommand(newAddMedCommand(rootOpts))
	cmd.AddCommand(newAddDropsCommand(rootOpts))
	cmd.AddCommand(newAddWaterCommand(rootOpts))
	cmd.AddCommand(newAddGlucoseCommand(rootOpts))
	cmd.AddCommand(newAddFocusLostCommand(rootOpts))

	return cmd
}

func newAddStepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "step <ritual> <step>",
		Short:         "Record a completed ritual step",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, cmd, event.NewRitualStepCompleted(time.Now(), args[0], args[1]))
		},
	}
}

func newAddMedCommand(rootOpts *RootOptions) *cobra.Command {
	var dose string
	cmd := &cobra.Command{
		Use:           "med <med-id>",
		Short:         "Record a medication intake",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, cmd, event.NewMedTaken(time.Now(), args[0], dose))
		},
	}
	cmd.Flags().StringVar(&dose, "dose", "", "dose taken (free text)")
	return cmd
}

func newAddDropsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "drops <systane|emoxipin|midramax>",
		Short:         "Record applying eye drops",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, cmd, event.NewEyeDropApplied(time.Now(), event.DropType(args[0])))
		},
	}
}

func newAddWaterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "water <plant-id>",
		Short:         "Record watering a plant",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, cmd, event.NewWateringDone(time.Now(), args[0]))
		},
	}
}

func newAddGlucoseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "glucose <mmol/L>",
		Short:         "Record a glucose measurement",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid glucose value", err)
			}
			return runAdd(rootOpts, cmd, event.NewGlucoseMeasured(time.Now(), value))
		},
	}
}

func newAddFocusLostCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "focus-lost",
		Short:         "Record the app losing focus",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, cmd, event.NewFocusLost(time.Now()))
		},
	}
}

// addResult is the JSON payload for add commands.
type addResult struct {
	Appended   event.Event `json:"appended"`
	SaveStatus string      `json:"save_status"`
	SaveError  string      `json:"save_error,omitempty"`
	NextAnchor string      `json:"next_anchor,omitempty"`
}

func runAdd(opts *RootOptions, cmd *cobra.Command, ev event.Event) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	saveErr, err := a.appendAndSave(ev)
	if err != nil {
		return err
	}

	res := addResult{Appended: ev, SaveStatus: "ok"}
	if saveErr != nil {
		res.SaveStatus = "error"
		res.SaveError = saveErr.Error()
	}

	st := a.sink.DerivedState()
	if len(st.Anchors) > 0 {
		res.NextAnchor = st.Anchors[0].Label
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	text := fmt.Sprintf("appended %s\n", ev.Type)
	if saveErr != nil {
		text += fmt.Sprintf("save failed: %v\n", saveErr)
	} else {
		text += "saved ok\n"
	}
	if res.NextAnchor != "" {
		text += fmt.Sprintf("next: %s\n", res.NextAnchor)
	}
	return out.SuccessText(text, res)
}
