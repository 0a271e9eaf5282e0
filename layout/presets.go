package layout

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAspectRatio = errors.New("unknown aspect ratio")
	ErrFontSizeOutOfRange = errors.New("font size out of range")
)

// 字号范围（像素）。
const (
	MinFontSize     = 30
	MaxFontSize     = 100
	DefaultFontSize = 50
)

// DefaultAspectRatio 是未指定比例时使用的预设。
const DefaultAspectRatio = "2:3"

// Size 是一个以像素为单位的画布尺寸。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type preset struct {
	key  string
	size Size
}

// 固定的比例表，顺序即 AspectRatios 的返回顺序。
var presets = []preset{
	{"2:3", Size{Width: 1242, Height: 1863}},
	{"3:4", Size{Width: 1242, Height: 1656}},
	{"1:1", Size{Width: 1242, Height: 1242}},
}

// LookupAspectRatio resolves a preset key such as "3:4".
func LookupAspectRatio(key string) (Size, error) {
	for _, p := range presets {
		if p.key == key {
			return p.size, nil
		}
	}
	return Size{}, fmt.Errorf("%w: %q", ErrUnknownAspectRatio, key)
}

// AspectRatios 返回全部预设 key。
func AspectRatios() []string {
	keys := make([]string, len(presets))
	for i, p := range presets {
		keys[i] = p.key
	}
	return keys
}

// ValidateFontSize 检查字号是否位于 [MinFontSize, MaxFontSize]。
func ValidateFontSize(size float64) error {
	if size < MinFontSize || size > MaxFontSize {
		return fmt.Errorf("%w: %g (allowed %d-%d)", ErrFontSizeOutOfRange, size, MinFontSize, MaxFontSize)
	}
	return nil
}

// ConfigFor 组合比例预设与字号，得到一次排版的 Config。
func ConfigFor(aspectRatio string, fontSize float64) (Config, error) {
	size, err := LookupAspectRatio(aspectRatio)
	if err != nil {
		return Config{}, err
	}
	if err := ValidateFontSize(fontSize); err != nil {
		return Config{}, err
	}
	return Config{Width: size.Width, Height: size.Height, FontSize: fontSize}, nil
}
