// Package main provides the CLI entrypoint for buildthemes.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JamesIves/vgui.css/internal/build"
	"github.com/JamesIves/vgui.css/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	globalOpts struct {
		verbose bool
	}
	logger *slog.Logger
)

// rootCmd builds every configured theme.
var rootCmd = &cobra.Command{
	Use:   "buildthemes",
	Short: "Compile the vgui.css themes to standalone CSS",
	Long: `buildthemes compiles each bundled LESS theme to CSS and embeds the
PNG images it references as base64 data URIs, so every output file can be
used without its asset directory.

Themes are read from and written to paths relative to the current directory.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := config.Themes()
		if err != nil {
			return fmt.Errorf("failed to load themes: %w", err)
		}

		builder := build.NewBuilder("", cmd.OutOrStdout(), logger)
		return builder.Run(cmd.Context(), themes)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout only carries build results
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
