package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phanxgames/pinboard"
	"github.com/phanxgames/pinboard/arrange"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func buildReplayCmd() *cobra.Command {
	var (
		itemsPath  string
		configPath string
		viewport   string
		quiet      bool
		debug      bool
	)
	cmd := &cobra.Command{
		Use:   "replay <script.json>",
		Short: "Replay a gesture script against a headless board",
		Long: `Replay a JSON gesture script against a board built from an items file.

Every applied action is printed, followed by the final transform and item
positions as YAML. Expect steps in the script fail the command on mismatch.`,
		Example: `  # Replay against an empty board
  pinboard replay drag.json

  # Replay against a saved layout in a phone-sized viewport
  pinboard replay pinch.json --items board.yaml --viewport 390x844`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.OutOrStdout(), args[0], itemsPath, configPath, viewport, quiet, debug)
		},
	}
	cmd.Flags().StringVarP(&itemsPath, "items", "i", "", "YAML file with the board items")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&viewport, "viewport", "1280x720", "Viewport size as WIDTHxHEIGHT")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the final state")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Log per-batch gesture stats")
	return cmd
}

func runReplay(out io.Writer, scriptPath, itemsPath, configPath, viewport string, quiet, debug bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	items, err := loadItems(itemsPath)
	if err != nil {
		return err
	}
	size, err := parseViewport(viewport)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	runner, err := pinboard.LoadGestureScript(data)
	if err != nil {
		return err
	}

	logger := slog.Default()
	if debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	board := pinboard.NewBoard(items,
		pinboard.WithConfig(cfg),
		pinboard.WithLogger(logger),
		pinboard.WithViewport(size))
	board.SetDebugMode(debug)

	if err := runner.Run(board); err != nil {
		return err
	}
	if !quiet {
		for _, a := range runner.Actions() {
			if _, err := fmt.Fprintln(out, formatAction(a)); err != nil {
				return err
			}
		}
	}

	t := board.Transform()
	state := struct {
		Scale        float64   `yaml:"scale"`
		TranslationX float64   `yaml:"translation_x"`
		TranslationY float64   `yaml:"translation_y"`
		Board        boardFile `yaml:"board"`
	}{t.Scale, t.Translation.X, t.Translation.Y, toRecords(board.Items())}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return enc.Close()
}

func formatAction(a pinboard.Action) string {
	switch a.Kind {
	case pinboard.ActionPanBy:
		return fmt.Sprintf("%s dx=%g dy=%g", a.Kind, a.Delta.X, a.Delta.Y)
	case pinboard.ActionZoomTo:
		return fmt.Sprintf("%s scale=%g pivot=(%g,%g)", a.Kind, a.Scale, a.Pivot.X, a.Pivot.Y)
	case pinboard.ActionItemDragPreview, pinboard.ActionItemDragCommit:
		return fmt.Sprintf("%s item=%s offset=(%g,%g)", a.Kind, a.ItemID, a.Offset.X, a.Offset.Y)
	case pinboard.ActionTap:
		return fmt.Sprintf("%s item=%q point=(%g,%g)", a.Kind, a.ItemID, a.Point.X, a.Point.Y)
	default:
		return a.Kind.String()
	}
}

func buildArrangeCmd() *cobra.Command {
	var (
		configPath string
		write      bool
	)
	cmd := &cobra.Command{
		Use:   "arrange <items.yaml>",
		Short: "Ask the layout model to arrange a board",
		Long: `Send the board items to an OpenAI-compatible model and print the
arranged board. Items the model does not return keep their positions; IDs it
invents are dropped.`,
		Example: `  # Print the arranged board
  OPENAI_API_KEY=sk-... pinboard arrange board.yaml -c pinboard.yaml

  # Rewrite the items file in place
  pinboard arrange board.yaml -c pinboard.yaml --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			items, err := loadItems(args[0])
			if err != nil {
				return err
			}
			client, err := arrange.New(cfg.Arrange, slog.Default())
			if err != nil {
				return err
			}
			board := pinboard.NewBoard(items, pinboard.WithConfig(cfg))
			if err := <-board.RequestArrange(cmd.Context(), client); err != nil {
				return err
			}
			board.Update(0)

			data, err := yaml.Marshal(toRecords(board.Items()))
			if err != nil {
				return fmt.Errorf("encode items: %w", err)
			}
			if write {
				return os.WriteFile(args[0], data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to the items file")
	return cmd
}

func buildSchemaCmd() *cobra.Command {
	var layout bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print a JSON schema",
		Long:  `Print the JSON schema of the configuration file, or with --layout the schema of the layout function arguments.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if layout {
				data, err = arrange.ParametersSchemaJSON()
			} else {
				data, err = pinboard.ConfigJSONSchema()
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&layout, "layout", false, "Print the layout function schema instead")
	return cmd
}
