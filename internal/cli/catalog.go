package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendlog/tend/internal/catalog"
)

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate domain catalogs",
	}

	cmd.AddCommand(newCatalogValidateCommand(rootOpts))
	cmd.AddCommand(newCatalogShowCommand(rootOpts))

	return cmd
}

func newCatalogValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a catalog file against the schema",
		Long: `Validate a YAML catalog file against the embedded CUE schema.

A catalog must pass validation before TEND_CATALOG will load it.

Example:
  tend catalog validate my-catalog.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogValidate(rootOpts, cmd, args[0])
		},
	}
}

func runCatalogValidate(opts *RootOptions, cmd *cobra.Command, path string) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read catalog", err)
	}

	if err := catalog.Validate(path, data); err != nil {
		var se *catalog.SchemaError
		if errors.As(err, &se) {
			if outErr := out.Failure("catalog_invalid", se.Error(), nil); outErr != nil {
				return outErr
			}
			return NewExitError(ExitFailure, "catalog does not match schema")
		}
		return WrapExitError(ExitCommandError, "validate catalog", err)
	}

	return out.SuccessText(fmt.Sprintf("%s: ok\n", path), map[string]string{"file": path, "result": "ok"})
}

func newCatalogShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the active catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogShow(rootOpts, cmd)
		},
	}
}

func runCatalogShow(opts *RootOptions, cmd *cobra.Command) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var text string
	for _, r := range a.cat.Rituals {
		text += fmt.Sprintf("ritual %s (%s): %d steps\n", r.ID, r.Name, len(r.Steps))
	}
	for _, p := range a.cat.Plants {
		text += fmt.Sprintf("plant %s (%s): every %d-%d days, criticality %d\n",
			p.ID, p.Name, p.Profile.MinDays, p.Profile.MaxDays, p.Profile.Criticality)
	}
	return out.SuccessText(text, a.cat)
}
