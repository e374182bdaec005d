package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// ErrFilesFailed is returned when at least one file could not be renamed.
// The per-file reasons have already been printed.
var ErrFilesFailed = errors.New("one or more files failed")

// rootOptions holds the flags that only affect how a run is presented.
// Everything else goes through config.Load.
type rootOptions struct {
	configFile string
	progress   bool
}

// NewRootCmd builds the media-renamer command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "media-renamer [paths...]",
		Short: "Rename movie and TV episode files into a standard naming scheme",
		Long: `media-renamer identifies movie and TV episode files from their names,
confirms them against TMDB, TheTVDB and OMDb, and renames each file in place
using configurable patterns.

Existing files are never overwritten. Use --dry-run to preview the result and
"media-renamer undo" to reverse the most recent run.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd, args, opts)
		},
	}

	flags := root.Flags()
	flags.Bool("dry-run", false, "Show what would be renamed without touching any file")
	flags.BoolP("verbose", "v", false, "Print every file with its outcome and enable debug logging")
	flags.String("movie-pattern", "", "Naming pattern for movies, e.g. \"{title} ({year})\"")
	flags.String("tv-pattern", "", "Naming pattern for episodes, e.g. \"{title} - S{season:02d}E{episode:02d}\"")
	flags.StringSlice("extensions", nil, "Comma separated media extensions to process")
	flags.String("tmdb-key", "", "TMDB API key")
	flags.String("tvdb-key", "", "TheTVDB API key")
	flags.String("omdb-key", "", "OMDb API key")
	flags.Int("workers", 0, "Number of files identified concurrently")
	flags.Duration("timeout", 10*time.Second, "Timeout for each metadata lookup")
	flags.Int("max-retries", 0, "Retries for transient lookup failures")
	flags.Bool("local-fallback", false, "Rename files with no provider match from their local name")
	flags.Bool("no-probe", false, "Do not read embedded metadata with ffprobe")
	flags.String("log-level", "", "Diagnostic log level (debug, info, warn, error)")
	flags.BoolVar(&opts.progress, "progress", false, "Show an interactive progress view")
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default ~/.media-renamer/config.json)")

	root.AddCommand(newUndoCmd(opts), newConfigCmd(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, ErrFilesFailed) {
			root.PrintErrln("Error:", err)
		}
		os.Exit(1)
	}
}
