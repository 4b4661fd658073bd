// Package cli defines vidlift's cobra commands.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/vidlift/internal/app"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	prefsPath  string
	refresh    int
	logLevel   string
}

func (o *globalOptions) appOptions() app.Options {
	return app.Options{
		ConfigPath:   o.configPath,
		PrefsPath:    o.prefsPath,
		RefreshEvery: o.refresh,
		LogLevel:     o.logLevel,
	}
}

// build wires the services for a headless command.
func (o *globalOptions) build() (*app.Services, error) {
	return app.Build(o.appOptions())
}

// NewRootCmd returns the vidlift command tree. Without a subcommand it runs
// the TUI.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "vidlift",
		Short: "Upload, record, and manage videos on a video API",
		Long: "vidlift uploads video files or camera recordings to a video storage API, " +
			"shows upload progress, and lists or deletes stored videos.\n" +
			"Run without a command to open the terminal UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts.appOptions())
		},
	}
	rootCmd.Version = app.Version

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/vidlift/config.toml)")
	flags.StringVar(&opts.prefsPath, "prefs", "", "preferences file (default ~/.config/vidlift/prefs.toml)")
	flags.IntVar(&opts.refresh, "refresh", 0, "refresh the video list every N seconds (overrides refresh_seconds)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newUploadCmd(opts))
	rootCmd.AddCommand(newRecordCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newDoctorCmd(opts))

	return rootCmd
}

// Execute runs the command tree with ctx, which is cancelled on Ctrl+C.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// apiTimeout bounds single list and delete calls from the CLI. It covers the
// request only, never time spent at a prompt.
var apiTimeout = 30 * time.Second
