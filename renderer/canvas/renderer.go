package canvasrenderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/mdpages/fonts"
	"github.com/ByLCY/mdpages/layout"
	"github.com/ByLCY/mdpages/renderer"
)

// ErrNoPage is returned when a surface is captured before anything was drawn.
var ErrNoPage = errors.New("canvasrenderer: nothing rendered yet")

// resolution maps one canvas unit onto one output pixel.
var resolution = canvas.DPMM(1.0)

// Surface draws pages via github.com/tdewolff/canvas.
// Coordinates and font sizes are pixels with the origin at the top left.
type Surface struct {
	family *canvas.FontFamily
	face   *canvas.FontFace

	c      *canvas.Canvas
	ctx    *canvas.Context
	width  float64
	height float64
}

var (
	_ renderer.Surface = (*Surface)(nil)
	_ layout.Measurer  = (*Surface)(nil)
)

// Options configures the font used by a Surface.
type Options struct {
	// FontSrc is "builtin:goregular", "builtin:gomono" or a TTF/OTF path.
	FontSrc string
	// FontBytes takes precedence over FontSrc when set.
	FontBytes []byte
}

// NewSurface loads the configured font and returns an empty surface.
func NewSurface(opts Options) (*Surface, error) {
	data := opts.FontBytes
	if len(data) == 0 {
		var err error
		if data, err = fonts.Load(opts.FontSrc); err != nil {
			return nil, err
		}
	}
	family := canvas.NewFontFamily("mdpages")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &Surface{family: family}, nil
}

// Resize discards the current drawing and starts a blank width x height canvas.
func (s *Surface) Resize(width, height float64) {
	s.width, s.height = width, height
	s.c = canvas.New(width, height)
	s.ctx = canvas.NewContext(s.c)
	s.ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
}

// Fill paints the whole surface with c.
func (s *Surface) Fill(c color.Color) {
	if s.ctx == nil {
		return
	}
	s.ctx.SetFillColor(c)
	s.ctx.SetStrokeColor(canvas.Transparent)
	s.ctx.DrawPath(0, 0, canvas.Rectangle(s.width, s.height))
}

// SetFont selects the face used by FillText and TextWidth. size is in pixels.
func (s *Surface) SetFont(size float64, c color.Color) error {
	if size <= 0 {
		return fmt.Errorf("invalid font size %g", size)
	}
	s.face = s.family.Face(layout.PxToPt(size), c, canvas.FontRegular, canvas.FontNormal)
	return nil
}

// FillText draws content with its baseline at (x, y).
func (s *Surface) FillText(content string, x, y float64) {
	if s.ctx == nil || s.face == nil || content == "" {
		return
	}
	s.ctx.DrawText(x, y, canvas.NewTextLine(s.face, content, canvas.Left))
}

// TextWidth measures content with the current face; 0 before SetFont.
func (s *Surface) TextWidth(content string) float64 {
	if s.face == nil {
		return 0
	}
	return s.face.TextWidth(content)
}

// Size returns the current surface dimensions in pixels.
func (s *Surface) Size() (float64, float64) { return s.width, s.height }

// Image rasterizes the current drawing.
func (s *Surface) Image() (*image.RGBA, error) {
	if s.c == nil {
		return nil, ErrNoPage
	}
	return rasterizer.Draw(s.c, resolution, canvas.DefaultColorSpace), nil
}

// WritePNG rasterizes the current drawing and encodes it as PNG.
func (s *Surface) WritePNG(w io.Writer) error {
	img, err := s.Image()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
