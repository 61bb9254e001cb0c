package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/phanxgames/pinboard"
	"github.com/spf13/cobra"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var errNothingToExport = errors.New("nothing to export")

var (
	exportBackground = color.RGBA{R: 0x23, G: 0x1e, B: 0x2d, A: 0xff}
	exportFill       = color.RGBA{R: 0xf7, G: 0xd8, B: 0x6a, A: 0xff}
	exportEdge       = color.RGBA{R: 0x55, G: 0x44, B: 0x22, A: 0xff}
	exportText       = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
)

const (
	exportFontSize   = 14.0
	exportMinFont    = 6.0
	exportLabelInset = 8.0
)

func buildExportCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
		size       string
	)
	cmd := &cobra.Command{
		Use:   "export <items.yaml>",
		Short: "Render a board to a PNG image",
		Long: `Render every item of a board file into a PNG image. The content is
fitted into the image with the configured padding, exactly as the board's
zoom-to-fit does on screen.`,
		Example: `  # Export a board at the default size
  pinboard export board.yaml -o board.png

  # Export a poster-sized image
  pinboard export board.yaml -o poster.png --size 4000x3000`,
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
			viewport, err := parseViewport(size)
			if err != nil {
				return err
			}
			dc, err := renderBoard(items, cfg, viewport)
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				return dc.EncodePNG(cmd.OutOrStdout())
			}
			return savePNG(dc, outPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "board.png", "Output PNG path, - for stdout")
	cmd.Flags().StringVar(&size, "size", "1600x1200", "Image size as WIDTHxHEIGHT")
	return cmd
}

// renderBoard draws the fitted board into a new drawing context.
func renderBoard(items []pinboard.Item, cfg pinboard.Config, size pinboard.Size) (*gg.Context, error) {
	if len(items) == 0 {
		return nil, errNothingToExport
	}
	board := pinboard.NewBoard(items, pinboard.WithConfig(cfg), pinboard.WithViewport(size))
	t := board.Transform()

	dc := gg.NewContext(int(size.Width), int(size.Height))
	dc.SetColor(exportBackground)
	dc.Clear()

	face, err := labelFace(math.Max(exportMinFont, exportFontSize*t.Scale))
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	for _, it := range board.VisibleItems() {
		r := pinboard.ItemScreenRect(it.Position, it.Size, t)

		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.SetColor(exportFill)
		dc.FillPreserve()
		dc.SetColor(exportEdge)
		dc.SetLineWidth(2)
		dc.Stroke()

		if it.Label != "" && r.Width > 2*exportLabelInset {
			dc.SetColor(exportText)
			dc.DrawStringWrapped(it.Label, r.X+exportLabelInset, r.Y+exportLabelInset,
				0, 0, r.Width-2*exportLabelInset, 1.2, gg.AlignLeft)
		}
	}
	return dc, nil
}

func labelFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func savePNG(dc *gg.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := dc.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
