package markup

import (
	"strings"
	"testing"
)

func TestFlattenRemovesFormatting(t *testing.T) {
	c := NewConverter()
	got, err := c.Flatten("# Title\n\nSome **bold** and *italic* text")
	if err != nil {
		t.Fatalf("Flatten error: %v", err)
	}
	if want := "Title\nSome bold and italic text\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFlattenKeepsEscapedEntities(t *testing.T) {
	c := NewConverter()
	got, err := c.Flatten("a < b")
	if err != nil {
		t.Fatalf("Flatten error: %v", err)
	}
	if !strings.Contains(got, "&lt;") {
		t.Fatalf("expected escaped entity to pass through, got %q", got)
	}
}

func TestToHTMLSupportsTables(t *testing.T) {
	c := NewConverter()
	out, err := c.ToHTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("ToHTML error: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Fatalf("expected GFM table, got %q", out)
	}
}

func TestFlattenEmptyInput(t *testing.T) {
	got, err := NewConverter().Flatten("")
	if err != nil {
		t.Fatalf("Flatten error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
