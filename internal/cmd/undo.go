package cmd

import (
	"errors"
	"fmt"

	"github.com/Digital-Shane/media-renamer/internal/log"
	"github.com/Digital-Shane/media-renamer/internal/tui"
	"github.com/Digital-Shane/media-renamer/internal/tui/theme"

	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newUndoCmd(opts *rootOptions) *cobra.Command {
	var (
		sessionID   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the renames of a previous run",
		Long: `Move every file renamed by a previous run back to its original path.

Without --session the most recent run is undone; --interactive lists the
recorded runs to choose from. A file is left where it is when its original
path has been taken by another file in the meantime.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return runUndoPicker(cmd, opts)
			}
			return runUndo(cmd, opts, sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "ID of the session to undo (default: most recent)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Choose the session to undo from a list")
	cmd.MarkFlagsMutuallyExclusive("session", "interactive")
	return cmd
}

func runUndo(cmd *cobra.Command, opts *rootOptions, sessionID string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log.InitLoggers(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Verbose)

	dir, err := journalDir()
	if err != nil {
		return err
	}

	var (
		session *log.LogSession
		path    string
	)
	if sessionID != "" {
		session, path, err = log.FindSession(dir, sessionID)
	} else {
		session, path, err = log.FindLatestSession(dir)
	}
	out := cmd.OutOrStdout()
	if errors.Is(err, log.ErrNoSessions) {
		fmt.Fprintln(out, "No operation sessions found to undo.")
		return nil
	}
	if err != nil {
		return err
	}

	successful, failed, errs := log.UndoSession(session)
	for _, e := range errs {
		fmt.Fprintf(out, "  %v\n", e)
	}
	fmt.Fprintf(out, "Restored %d file(s) from session %s", successful, session.Metadata.SessionID)
	if failed > 0 {
		fmt.Fprintf(out, ", %d could not be restored", failed)
	}
	fmt.Fprintln(out)

	if failed > 0 {
		return ErrFilesFailed
	}
	return log.MarkUndone(path)
}

// sessionListLimit caps how many sessions the picker offers.
const sessionListLimit = 50

func runUndoPicker(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log.InitLoggers(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Verbose)

	dir, err := journalDir()
	if err != nil {
		return err
	}
	sessions, paths, err := log.ReadSessions(dir, sessionListLimit)
	if err != nil {
		return fmt.Errorf("failed to read sessions: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No operation sessions found to undo.")
		return nil
	}

	final, err := tea.NewProgram(tui.NewUndoModel(sessions, paths, theme.Default()), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	m, ok := final.(*tui.UndoModel)
	if !ok || !m.Done() {
		return nil
	}

	successful, failed, err := m.Result()
	fmt.Fprintf(out, "Restored %d file(s)", successful)
	if failed > 0 {
		fmt.Fprintf(out, ", %d could not be restored", failed)
	}
	fmt.Fprintln(out)
	if err != nil {
		return err
	}
	if failed > 0 {
		return ErrFilesFailed
	}
	return nil
}
