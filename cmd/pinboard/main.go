// Package main provides the pinboard CLI for headless gesture replay, smart
// arrange, PNG export and schema output.
//
// # Basic Usage
//
// Replay a gesture script against a board:
//
//	pinboard replay script.json --items items.yaml
//
// Ask the layout model to arrange a board:
//
//	pinboard arrange items.yaml --config pinboard.yaml
//
// Render a board to an image:
//
//	pinboard export items.yaml -o board.png --size 1920x1080
//
// Print the config schema:
//
//	pinboard schema
//
// # Environment Variables
//
//   - PINBOARD_CONFIG: Path to configuration file
//   - OPENAI_API_KEY: referenced from the config as ${OPENAI_API_KEY}
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pinboard",
		Short: "Pinboard - zoomable board engine tools",
		Long: `Tools for the pinboard interaction engine.

Replay recorded or hand-written gesture scripts without a window, ask an
OpenAI-compatible model for a semantic layout, render boards to PNG and
print JSON schemas.`,
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		buildReplayCmd(),
		buildArrangeCmd(),
		buildExportCmd(),
		buildSchemaCmd(),
	)
	return rootCmd
}
