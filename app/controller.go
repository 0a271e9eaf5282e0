// Package app owns the editor state and the single drawing surface.
// Every state change re-derives the HTML and re-renders the selected page
// before returning.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ByLCY/mdpages/binding"
	"github.com/ByLCY/mdpages/layout"
	"github.com/ByLCY/mdpages/markup"
	"github.com/ByLCY/mdpages/renderer"
)

var ErrInvalidPage = errors.New("invalid page index")

// Canvas is a renderer.Surface that can be captured as PNG.
type Canvas interface {
	renderer.Surface
	WritePNG(w io.Writer) error
}

// State 是界面状态的显式快照。
type State struct {
	Markdown    string `json:"markdown"`
	AspectRatio string `json:"aspectRatio"`
	FontSize    int    `json:"fontSize"`
	PageIndex   int    `json:"pageIndex"`
	TotalPages  int    `json:"totalPages"`
}

// Options configures a Controller.
type Options struct {
	Canvas      Canvas
	Renderer    *renderer.PageRenderer
	Converter   *markup.Converter
	AspectRatio string
	FontSize    int
	Vars        map[string]any
	Logger      *slog.Logger
}

// Controller 串联 binding → Markdown → 渲染，并独占 Canvas。
type Controller struct {
	mu sync.Mutex

	canvas    Canvas
	renderer  *renderer.PageRenderer
	converter *markup.Converter
	vars      map[string]any
	logger    *slog.Logger

	markdown    string
	html        string
	aspectRatio string
	fontSize    int
	pageIndex   int
	totalPages  int
}

// New validates opts and renders the initial empty document.
func New(opts Options) (*Controller, error) {
	if opts.Canvas == nil {
		return nil, fmt.Errorf("canvas 不能为空")
	}
	c := &Controller{
		canvas:      opts.Canvas,
		renderer:    opts.Renderer,
		converter:   opts.Converter,
		vars:        opts.Vars,
		logger:      opts.Logger,
		aspectRatio: opts.AspectRatio,
		fontSize:    opts.FontSize,
		totalPages:  1,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.renderer == nil {
		c.renderer = renderer.New(renderer.Options{Logger: c.logger})
	}
	if c.converter == nil {
		c.converter = markup.NewConverter()
	}
	if c.aspectRatio == "" {
		c.aspectRatio = layout.DefaultAspectRatio
	}
	if c.fontSize == 0 {
		c.fontSize = layout.DefaultFontSize
	}
	if _, err := layout.ConfigFor(c.aspectRatio, float64(c.fontSize)); err != nil {
		return nil, err
	}
	if err := c.refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetMarkdown replaces the document and jumps back to the first page.
func (c *Controller) SetMarkdown(source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	html, err := c.converter.ToHTML(binding.Interpolate(source, c.vars))
	if err != nil {
		return err
	}
	c.markdown = source
	c.html = html
	c.pageIndex = 0
	return c.refresh()
}

// SetAspectRatio switches the canvas preset.
func (c *Controller) SetAspectRatio(key string) error {
	if _, err := layout.LookupAspectRatio(key); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspectRatio = key
	return c.refresh()
}

// SetFontSize changes the text size in pixels.
func (c *Controller) SetFontSize(size int) error {
	if err := layout.ValidateFontSize(float64(size)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fontSize = size
	return c.refresh()
}

// SelectPage 切换当前页。超出总页数的索引是允许的，只是不绘制内容。
func (c *Controller) SelectPage(index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, index)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageIndex = index
	return c.refresh()
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Markdown:    c.markdown,
		AspectRatio: c.aspectRatio,
		FontSize:    c.fontSize,
		PageIndex:   c.pageIndex,
		TotalPages:  c.totalPages,
	}
}

// TotalPages reports the page count of the last render.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Layout recomputes the full layout for the current state.
func (c *Controller) Layout() (*layout.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer.Layout(c.canvas, c.html, c.aspectRatio, float64(c.fontSize))
}

// WriteCurrentPage encodes the currently drawn page as PNG.
func (c *Controller) WriteCurrentPage(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canvas.WritePNG(w)
}

// WritePage draws page index, captures it, and restores the previous selection.
func (c *Controller) WritePage(w io.Writer, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, index)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if index >= c.totalPages {
		return fmt.Errorf("%w: %d (total %d)", ErrInvalidPage, index, c.totalPages)
	}
	return c.captureLocked(w, index)
}

// captureLocked 依次完成切页、重绘、截取，最后恢复原页。
// Render 同步返回即表示重绘完成，无需等待。
func (c *Controller) captureLocked(w io.Writer, index int) error {
	prev := c.pageIndex
	defer func() {
		if prev == index {
			return
		}
		c.pageIndex = prev
		if err := c.refresh(); err != nil {
			c.logger.Error("restore page failed", "page", prev, "error", err)
		}
	}()
	c.pageIndex = index
	if err := c.refresh(); err != nil {
		return err
	}
	return c.canvas.WritePNG(w)
}

// refresh 用当前状态重绘选中页；调用方必须持有 mu。
func (c *Controller) refresh() error {
	total, err := c.renderer.Render(c.canvas, c.html, c.pageIndex, c.aspectRatio, float64(c.fontSize))
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	c.totalPages = total
	return nil
}

// PageFilename returns the export file name of page index (0-based).
func PageFilename(index int) string {
	return fmt.Sprintf("markdown-page-%d.png", index+1)
}
