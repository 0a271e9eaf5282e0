package renderer

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/ByLCY/mdpages/layout"
	"github.com/ByLCY/mdpages/markup"
)

// Surface 是一块可复用的绘制目标，例如光栅画布。
// 同一时刻只能有一个调用方使用；TextWidth 按最近一次 SetFont 的字体测量。
type Surface interface {
	layout.Measurer
	Resize(width, height float64)
	Fill(c color.Color)
	SetFont(size float64, c color.Color) error
	FillText(content string, x, y float64)
}

// Options configures colors and logging of a PageRenderer.
type Options struct {
	Background color.Color
	Foreground color.Color
	Logger     *slog.Logger
}

// PageRenderer 把一页排版结果画到 Surface 上。
type PageRenderer struct {
	background color.Color
	foreground color.Color
	logger     *slog.Logger
}

// New creates a PageRenderer; zero Options yield black text on white.
func New(opts Options) *PageRenderer {
	r := &PageRenderer{
		background: opts.Background,
		foreground: opts.Foreground,
		logger:     opts.Logger,
	}
	if r.background == nil {
		r.background = color.White
	}
	if r.foreground == nil {
		r.foreground = color.Black
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Render 调整画布到比例预设的尺寸，填充背景，去掉标签后排版，
// 并且只绘制 pageIndex 对应页的文本行。返回整个文档的总页数；
// pageIndex 越界时不绘制任何文本，但仍返回真实页数。
func (r *PageRenderer) Render(s Surface, input string, pageIndex int, aspectRatio string, fontSize float64) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("surface 不能为空")
	}
	cfg, err := layout.ConfigFor(aspectRatio, fontSize)
	if err != nil {
		return 0, err
	}

	s.Resize(cfg.Width, cfg.Height)
	s.Fill(r.background)
	if err := s.SetFont(cfg.FontSize, r.foreground); err != nil {
		return 0, fmt.Errorf("设置字体失败: %w", err)
	}

	res, err := layout.Build(markup.StripTags(input), cfg, layout.BuildOptions{Measurer: s})
	if err != nil {
		return 0, fmt.Errorf("布局计算失败: %w", err)
	}

	total := res.TotalPages()
	if pageIndex < 0 || pageIndex >= total {
		r.logger.Debug("page index out of range, nothing drawn", "page", pageIndex, "total", total)
		return total, nil
	}
	drawn := 0
	for _, f := range res.Pages[pageIndex].Fragments {
		if f.Kind != layout.FragmentText {
			continue
		}
		s.FillText(f.Content, layout.MarginLeft, f.Y)
		drawn++
	}
	r.logger.Debug("page rendered", "page", pageIndex, "total", total, "lines", drawn, "ratio", aspectRatio, "fontSize", fontSize)
	return total, nil
}

// Layout runs the same pipeline as Render without drawing, measuring with s.
// Only the surface font changes; its pixels are left untouched.
func (r *PageRenderer) Layout(s Surface, input string, aspectRatio string, fontSize float64) (*layout.Result, error) {
	cfg, err := layout.ConfigFor(aspectRatio, fontSize)
	if err != nil {
		return nil, err
	}
	if err := s.SetFont(cfg.FontSize, r.foreground); err != nil {
		return nil, fmt.Errorf("设置字体失败: %w", err)
	}
	return layout.Build(markup.StripTags(input), cfg, layout.BuildOptions{Measurer: s})
}
