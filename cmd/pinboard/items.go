package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phanxgames/pinboard"
	"gopkg.in/yaml.v3"
)

// itemRecord is one item in a board file.
type itemRecord struct {
	ID     string  `yaml:"id"`
	Label  string  `yaml:"label,omitempty"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// boardFile is the YAML layout of a board file.
type boardFile struct {
	Items []itemRecord `yaml:"items"`
}

func loadItems(path string) ([]pinboard.Item, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var f boardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	items := make([]pinboard.Item, 0, len(f.Items))
	for i, r := range f.Items {
		if strings.TrimSpace(r.ID) == "" {
			return nil, fmt.Errorf("parse items: item %d has no id", i)
		}
		items = append(items, pinboard.Item{
			ID:       r.ID,
			Label:    r.Label,
			Position: pinboard.Vec2{X: r.X, Y: r.Y},
			Size:     pinboard.Size{Width: r.Width, Height: r.Height},
		})
	}
	return items, nil
}

func toRecords(items []pinboard.Item) boardFile {
	out := boardFile{Items: make([]itemRecord, len(items))}
	for i, it := range items {
		out.Items[i] = itemRecord{
			ID:     it.ID,
			Label:  it.Label,
			X:      it.Position.X,
			Y:      it.Position.Y,
			Width:  it.Size.Width,
			Height: it.Size.Height,
		}
	}
	return out
}

func loadConfig(path string) (pinboard.Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("PINBOARD_CONFIG")
	}
	if strings.TrimSpace(path) == "" {
		return pinboard.DefaultConfig(), nil
	}
	return pinboard.LoadConfig(path)
}

func parseViewport(s string) (pinboard.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return pinboard.Size{}, fmt.Errorf("viewport %q: want WIDTHxHEIGHT", s)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if errW != nil || errH != nil {
		return pinboard.Size{}, fmt.Errorf("viewport %q: want WIDTHxHEIGHT", s)
	}
	if w <= 0 || h <= 0 {
		return pinboard.Size{}, fmt.Errorf("viewport %q: dimensions must be positive", s)
	}
	return pinboard.Size{Width: w, Height: h}, nil
}
