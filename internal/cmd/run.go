package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/Digital-Shane/media-renamer/internal/config"
	"github.com/Digital-Shane/media-renamer/internal/core"
	"github.com/Digital-Shane/media-renamer/internal/log"
	"github.com/Digital-Shane/media-renamer/internal/media"
	"github.com/Digital-Shane/media-renamer/internal/provider/ffprobe"
	"github.com/Digital-Shane/media-renamer/internal/tui"
	"github.com/Digital-Shane/media-renamer/internal/tui/theme"

	"github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// journalDir is where the operation journal lives. Tests point it at a
// temporary directory.
var journalDir = log.DefaultDir

func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runRename(cmd *cobra.Command, args []string, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log.InitLoggers(cmd.ErrOrStderr(), cfg.LogLevel, cfg.Verbose)

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := core.Discover(ctx, roots, cfg.IsMediaFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, "No media files found.")
		return nil
	}

	dir, err := journalDir()
	if err != nil {
		return err
	}
	journal := log.NewJournal(dir, cfg.Journal.Enabled && !cfg.DryRun)
	if err := journal.Start(cmd.CommandPath(), args); err != nil {
		logrus.Warnf("operation journal disabled: %v", err)
	}

	registry, err := buildRegistry(cfg, defaultFactories)
	if err != nil {
		return err
	}

	var prober media.Prober
	if cfg.Probe {
		prober = ffprobe.New()
	}
	formatter, err := core.NewFormatter(cfg.MoviePattern, cfg.TVPattern)
	if err != nil {
		return err
	}

	pipeline := core.NewPipeline(core.PipelineConfig{
		Extractor:     media.NewExtractor(prober),
		Resolver:      core.NewResolver(registry),
		Formatter:     formatter,
		Executor:      core.NewExecutor(cfg.DryRun, journal),
		Workers:       cfg.Workers,
		LocalFallback: cfg.LocalFallback,
	})

	logrus.WithFields(logrus.Fields{
		"files":     len(files),
		"providers": registry.Names(),
		"dry_run":   cfg.DryRun,
	}).Debug("starting run")

	var summary *media.Summary
	if opts.progress {
		summary, err = runWithProgress(ctx, cmd, pipeline, files, cfg.DryRun)
		if err != nil {
			return err
		}
	} else {
		summary = pipeline.Run(ctx, files, nil)
	}

	sessionID := journal.SessionID()
	path, err := journal.End()
	if err != nil {
		logrus.Warnf("failed to write operation journal: %v", err)
	}
	if err := journal.Cleanup(cfg.Journal.RetentionDays); err != nil {
		logrus.Debugf("journal cleanup: %v", err)
	}

	fmt.Fprintln(out, tui.RenderSummary(summary, cfg.Verbose, 0, theme.Default()))
	if path != "" {
		fmt.Fprintf(out, "Undo with: media-renamer undo --session %s\n", sessionID)
	}

	if summary.AnyFailed() {
		return ErrFilesFailed
	}
	return nil
}

// runWithProgress runs the pipeline under the progress view. Diagnostics
// are silenced while the view owns the terminal.
func runWithProgress(ctx context.Context, cmd *cobra.Command, pipeline *core.Pipeline, files []string, dryRun bool) (*media.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(cmd.ErrOrStderr())

	events := pipeline.Start(ctx, files)
	model := tui.NewRunModel(events, cancel, dryRun, theme.Default())
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()

	if m, ok := final.(*tui.RunModel); ok && m.Summary() != nil {
		return m.Summary(), nil
	}

	// The view ended before the run did; drain the rest of the events.
	cancel()
	var summary *media.Summary
	for ev := range events {
		if ev.Type == core.EventDone {
			summary = ev.Summary
		}
	}
	if summary == nil {
		if err == nil {
			err = fmt.Errorf("run ended without a summary")
		}
		return nil, fmt.Errorf("progress view failed: %w", err)
	}
	return summary, nil
}
