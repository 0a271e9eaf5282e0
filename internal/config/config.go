// Package config loads mdpages settings from YAML.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/ByLCY/mdpages/internal/yamlutil"
	"github.com/ByLCY/mdpages/layout"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidColor   = errors.New("invalid color")
)

// Config holds all settings for rendering and export.
type Config struct {
	Page   PageConfig     `yaml:"page"`
	Font   FontConfig     `yaml:"font"`
	Colors ColorConfig    `yaml:"colors"`
	Output OutputConfig   `yaml:"output"`
	Server ServerConfig   `yaml:"server"`
	Vars   map[string]any `yaml:"vars"` // values for ${...} placeholders
}

// PageConfig selects the canvas preset and text size.
type PageConfig struct {
	AspectRatio string `yaml:"aspectRatio"` // "2:3", "3:4", "1:1" (default: "2:3")
	FontSize    int    `yaml:"fontSize"`    // 30-100 px (default: 50)
}

// FontConfig defines the font used for measuring and drawing.
type FontConfig struct {
	Src string `yaml:"src"` // "builtin:goregular" (default), "builtin:gomono" or a file path
}

// ColorConfig defines page colors as hex strings.
type ColorConfig struct {
	Background string `yaml:"background"` // default "#ffffff"
	Foreground string `yaml:"foreground"` // default "#000000"
}

// OutputConfig defines where exported pages go.
type OutputConfig struct {
	Dir string `yaml:"dir"` // default "."
}

// ServerConfig defines the preview server.
type ServerConfig struct {
	Addr string `yaml:"addr"` // default ":8080"
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Page:   PageConfig{AspectRatio: layout.DefaultAspectRatio, FontSize: layout.DefaultFontSize},
		Font:   FontConfig{Src: "builtin:goregular"},
		Colors: ColorConfig{Background: "#ffffff", Foreground: "#000000"},
		Output: OutputConfig{Dir: "."},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks presets, font size range and colors.
func (c *Config) Validate() error {
	if _, err := layout.LookupAspectRatio(c.Page.AspectRatio); err != nil {
		return err
	}
	if err := layout.ValidateFontSize(float64(c.Page.FontSize)); err != nil {
		return err
	}
	if _, err := ParseColor(c.Colors.Background); err != nil {
		return fmt.Errorf("colors.background: %w", err)
	}
	if _, err := ParseColor(c.Colors.Foreground); err != nil {
		return fmt.Errorf("colors.foreground: %w", err)
	}
	return nil
}

// Background returns the parsed background color.
func (c *Config) Background() color.Color {
	col, _ := ParseColor(c.Colors.Background)
	return col
}

// Foreground returns the parsed text color.
func (c *Config) Foreground() color.Color {
	col, _ := ParseColor(c.Colors.Foreground)
	return col
}

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(value string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, value)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
