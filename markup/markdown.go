package markup

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates Markdown to HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Converter turns Markdown into an HTML fragment with goldmark.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter creates a Converter with GFM extensions (tables, strikethrough,
// autolinks, task lists). Raw HTML in the source is not passed through.
func NewConverter() *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	return &Converter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
func (c *Converter) ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

// Flatten converts Markdown to HTML and strips every tag, yielding the plain
// text the layout engine consumes.
func (c *Converter) Flatten(source string) (string, error) {
	out, err := c.ToHTML(source)
	if err != nil {
		return "", err
	}
	return StripTags(out), nil
}
