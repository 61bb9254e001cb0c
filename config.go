package pinboard

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a Board. Zero values mean "use the default".
type Config struct {
	Gesture  GestureSettings  `yaml:"gesture" json:"gesture"`
	Index    IndexSettings    `yaml:"index" json:"index"`
	Viewport ViewportSettings `yaml:"viewport" json:"viewport"`
	Arrange  ArrangeSettings  `yaml:"arrange" json:"arrange"`
}

// GestureSettings configures gesture recognition.
type GestureSettings struct {
	TouchSlop     float64 `yaml:"touch_slop" json:"touch_slop" jsonschema:"description=Screen pixels a press may move before it becomes a pan"`
	LongPressMs   int     `yaml:"long_press_ms" json:"long_press_ms" jsonschema:"description=Milliseconds before a stationary press on an item starts a drag"`
	WheelZoomStep float64 `yaml:"wheel_zoom_step" json:"wheel_zoom_step"`
	WheelPanStep  float64 `yaml:"wheel_pan_step" json:"wheel_pan_step"`
	KeyPanStep    float64 `yaml:"key_pan_step" json:"key_pan_step"`
}

// IndexSettings configures the spatial index.
type IndexSettings struct {
	CellSize float64 `yaml:"cell_size" json:"cell_size" jsonschema:"description=Grid cell edge in board units"`
}

// ViewportSettings configures fitting and culling.
type ViewportSettings struct {
	Padding      float64 `yaml:"padding" json:"padding"`
	Overscan     float64 `yaml:"overscan" json:"overscan"`
	Animate      bool    `yaml:"animate" json:"animate"`
	AnimationSec float64 `yaml:"animation_sec" json:"animation_sec"`
}

// ArrangeSettings configures the smart-arrange client.
type ArrangeSettings struct {
	Model      string `yaml:"model" json:"model"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	APIKey     string `yaml:"api_key" json:"api_key"`
	Locale     string `yaml:"locale" json:"locale"`
	TimeoutSec int    `yaml:"timeout_sec" json:"timeout_sec"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Gesture: GestureSettings{
			TouchSlop:     DefaultTouchSlop,
			LongPressMs:   int(DefaultLongPressDuration / time.Millisecond),
			WheelZoomStep: 1.1,
			WheelPanStep:  40,
			KeyPanStep:    10,
		},
		Index: IndexSettings{CellSize: DefaultCellSize},
		Viewport: ViewportSettings{
			Padding:      16,
			Overscan:     256,
			AnimationSec: 0.25,
		},
		Arrange: ArrangeSettings{
			Model:      "gpt-4o-mini",
			Locale:     "en",
			TimeoutSec: 60,
		},
	}
}

// Validate replaces out-of-range values with their defaults.
func (c *Config) Validate() {
	d := DefaultConfig()
	if !isFinite(c.Gesture.TouchSlop) || c.Gesture.TouchSlop <= 0 {
		c.Gesture.TouchSlop = d.Gesture.TouchSlop
	}
	if c.Gesture.LongPressMs <= 0 {
		c.Gesture.LongPressMs = d.Gesture.LongPressMs
	}
	if !isFinite(c.Gesture.WheelZoomStep) || c.Gesture.WheelZoomStep <= 1 {
		c.Gesture.WheelZoomStep = d.Gesture.WheelZoomStep
	}
	if !isFinite(c.Gesture.WheelPanStep) || c.Gesture.WheelPanStep <= 0 {
		c.Gesture.WheelPanStep = d.Gesture.WheelPanStep
	}
	if !isFinite(c.Gesture.KeyPanStep) || c.Gesture.KeyPanStep <= 0 {
		c.Gesture.KeyPanStep = d.Gesture.KeyPanStep
	}
	if !isFinite(c.Index.CellSize) || c.Index.CellSize <= 0 {
		c.Index.CellSize = d.Index.CellSize
	}
	if !isFinite(c.Viewport.Padding) || c.Viewport.Padding < 0 {
		c.Viewport.Padding = d.Viewport.Padding
	}
	if !isFinite(c.Viewport.Overscan) || c.Viewport.Overscan < 0 {
		c.Viewport.Overscan = d.Viewport.Overscan
	}
	if !isFinite(c.Viewport.AnimationSec) || c.Viewport.AnimationSec <= 0 {
		c.Viewport.AnimationSec = d.Viewport.AnimationSec
	}
	if strings.TrimSpace(c.Arrange.Model) == "" {
		c.Arrange.Model = d.Arrange.Model
	}
	if strings.TrimSpace(c.Arrange.Locale) == "" {
		c.Arrange.Locale = d.Arrange.Locale
	}
	if c.Arrange.TimeoutSec <= 0 {
		c.Arrange.TimeoutSec = d.Arrange.TimeoutSec
	}
}

// GestureConfig converts the gesture settings for NewGestureMachine.
func (c Config) GestureConfig() GestureConfig {
	return GestureConfig{
		TouchSlop:         c.Gesture.TouchSlop,
		LongPressDuration: time.Duration(c.Gesture.LongPressMs) * time.Millisecond,
		WheelZoomStep:     c.Gesture.WheelZoomStep,
		WheelPanStep:      c.Gesture.WheelPanStep,
		KeyPanStep:        c.Gesture.KeyPanStep,
	}
}

// AnimationDuration returns the viewport animation length.
func (c Config) AnimationDuration() time.Duration {
	return time.Duration(c.Viewport.AnimationSec * float64(time.Second))
}

// ParseConfig decodes YAML over the defaults. Environment variables in the
// document are expanded first.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Validate()
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, fmt.Errorf("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

var (
	schemaOnce sync.Once
	schemaJSON []byte
	schemaErr  error
)

// ConfigJSONSchema returns the JSON Schema for Config, keyed by YAML names.
func ConfigJSONSchema() ([]byte, error) {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			FieldNameTag: "yaml",
		}
		schema := r.Reflect(&Config{})
		schemaJSON, schemaErr = json.MarshalIndent(schema, "", "  ")
	})
	return schemaJSON, schemaErr
}
