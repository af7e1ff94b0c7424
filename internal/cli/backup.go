package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendlog/tend/internal/event"
)

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a dated backup copy of the state",
		Long: `Write a dated backup copy of the state.

Backup creation is "read current state, write a copy" into
backups/tend-YYYY-MM-DD.json, never a replay of the log into a new file.
A backup_created event is appended afterwards, which stamps the
last-backup metadata.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(rootOpts, cmd)
		},
	}

	return cmd
}

// backupResult is the JSON payload for the backup command.
type backupResult struct {
	Path       string `json:"path"`
	SaveStatus string `json:"save_status"`
	SaveError  string `json:"save_error,omitempty"`
}

func runBackup(opts *RootOptions, cmd *cobra.Command) error {
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now()
	path, err := a.states.Backup(a.sink.AppState(), now)
	if err != nil {
		return WrapExitError(ExitCommandError, "write backup", err)
	}

	saveErr, err := a.appendAndSave(event.NewBackupCreated(now, path))
	if err != nil {
		return err
	}

	res := backupResult{Path: path, SaveStatus: "ok"}
	text := fmt.Sprintf("backup written: %s\nsaved ok\n", path)
	if saveErr != nil {
		res.SaveStatus = "error"
		res.SaveError = saveErr.Error()
		text = fmt.Sprintf("backup written: %s\nsave failed: %v\n", path, saveErr)
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return out.SuccessText(text, res)
}
