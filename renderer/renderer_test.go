package renderer

import (
	"errors"
	"image/color"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/mdpages/layout"
)

type drawCall struct {
	Content string
	X, Y    float64
}

// recordingSurface 记录所有绘制调用，测量为每字符 fontSize/2。
type recordingSurface struct {
	width, height float64
	fill          color.Color
	fontSize      float64
	textColor     color.Color
	calls         []drawCall
}

func (s *recordingSurface) Resize(w, h float64) {
	s.width, s.height = w, h
	s.calls = nil
}
func (s *recordingSurface) Fill(c color.Color) { s.fill = c }
func (s *recordingSurface) SetFont(size float64, c color.Color) error {
	s.fontSize, s.textColor = size, c
	return nil
}
func (s *recordingSurface) FillText(content string, x, y float64) {
	s.calls = append(s.calls, drawCall{Content: content, X: x, Y: y})
}
func (s *recordingSurface) TextWidth(text string) float64 {
	return s.fontSize / 2 * float64(utf8.RuneCountInString(text))
}

func TestRenderDrawsOnlySelectedPage(t *testing.T) {
	s := &recordingSurface{}
	r := New(Options{})
	html := "<p>Hello</p>\n\n<p>World</p>"
	total, err := r.Render(s, html, 0, "2:3", 50)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 page, got %d", total)
	}
	if s.width != 1242 || s.height != 1863 {
		t.Fatalf("surface not resized: %gx%g", s.width, s.height)
	}
	if s.fill != color.White || s.textColor != color.Black {
		t.Fatalf("unexpected colors: fill=%v text=%v", s.fill, s.textColor)
	}
	want := []drawCall{
		{Content: "Hello", X: 50, Y: 80},
		{Content: "World", X: 50, Y: 220},
	}
	if diff := cmp.Diff(want, s.calls); diff != "" {
		t.Fatalf("draw calls (-want +got):\n%s", diff)
	}
}

func TestRenderOutOfRangePageDrawsNothing(t *testing.T) {
	s := &recordingSurface{}
	r := New(Options{})
	for _, idx := range []int{5, -1} {
		total, err := r.Render(s, "<p>short</p>", idx, "1:1", 40)
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		if total != 1 {
			t.Fatalf("expected total 1, got %d", total)
		}
		if len(s.calls) != 0 {
			t.Fatalf("page %d: expected no draw calls, got %v", idx, s.calls)
		}
		if s.fill == nil {
			t.Fatalf("background should still be filled")
		}
	}
}

func TestRenderEmptyInputReportsOnePage(t *testing.T) {
	s := &recordingSurface{}
	total, err := New(Options{}).Render(s, "", 0, "3:4", 50)
	if err != nil || total != 1 {
		t.Fatalf("expected 1 page, got %d (%v)", total, err)
	}
	if len(s.calls) != 0 {
		t.Fatalf("expected nothing drawn, got %v", s.calls)
	}
}

func TestRenderPaginatesAndSelectsLastPage(t *testing.T) {
	s := &recordingSurface{}
	r := New(Options{Background: color.Black, Foreground: color.White})
	text := strings.Repeat("x", 5000)
	total, err := r.Render(s, text, 0, "1:1", 50)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if total < 2 {
		t.Fatalf("expected multiple pages, got %d", total)
	}
	if _, err := r.Render(s, text, total-1, "1:1", 50); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if len(s.calls) == 0 {
		t.Fatalf("last page should draw lines")
	}
	if s.fill != color.Black || s.textColor != color.White {
		t.Fatalf("custom colors not applied")
	}
}

func TestRenderRejectsBadSettings(t *testing.T) {
	s := &recordingSurface{}
	r := New(Options{})
	if _, err := r.Render(s, "x", 0, "4:5", 50); !errors.Is(err, layout.ErrUnknownAspectRatio) {
		t.Fatalf("expected ErrUnknownAspectRatio, got %v", err)
	}
	if _, err := r.Render(s, "x", 0, "2:3", 10); !errors.Is(err, layout.ErrFontSizeOutOfRange) {
		t.Fatalf("expected ErrFontSizeOutOfRange, got %v", err)
	}
}

func TestLayoutMatchesRender(t *testing.T) {
	s := &recordingSurface{}
	r := New(Options{})
	text := strings.Repeat("abc ", 400)
	res, err := r.Layout(s, text, "3:4", 60)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	total, err := r.Render(s, text, 0, "3:4", 60)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if res.TotalPages() != total {
		t.Fatalf("Layout pages %d != Render pages %d", res.TotalPages(), total)
	}
}
