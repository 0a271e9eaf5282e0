package server

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/mdpages/app"
)

// stubCanvas 把已绘制的行当作 "图片" 内容输出。
type stubCanvas struct {
	fontSize float64
	lines    []string
}

func (c *stubCanvas) Resize(w, h float64) { c.lines = nil }
func (c *stubCanvas) Fill(color.Color)    {}
func (c *stubCanvas) SetFont(size float64, _ color.Color) error {
	c.fontSize = size
	return nil
}
func (c *stubCanvas) FillText(s string, x, y float64) { c.lines = append(c.lines, s) }
func (c *stubCanvas) TextWidth(s string) float64 {
	return c.fontSize / 2 * float64(utf8.RuneCountInString(s))
}
func (c *stubCanvas) WritePNG(w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(c.lines, "|"))
	return err
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctrl, err := app.New(app.Options{Canvas: &stubCanvas{}})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	ts := httptest.NewServer(New(ctrl, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeState(t *testing.T, resp *http.Response) app.State {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status %d: %s", resp.StatusCode, b)
	}
	var st app.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func numbered(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("line %03d", i)
	}
	return strings.Join(parts, "\n\n")
}

func TestMarkdownAndSettingsFlow(t *testing.T) {
	ts := newTestServer(t)

	st := decodeState(t, do(t, http.MethodPut, ts.URL+"/api/markdown", numbered(100)))
	if st.TotalPages != 6 || st.PageIndex != 0 {
		t.Fatalf("unexpected state after markdown: %+v", st)
	}

	st = decodeState(t, do(t, http.MethodPut, ts.URL+"/api/settings", `{"aspectRatio":"1:1"}`))
	if st.AspectRatio != "1:1" || st.TotalPages != 10 {
		t.Fatalf("unexpected state after settings: %+v", st)
	}

	st = decodeState(t, do(t, http.MethodPut, ts.URL+"/api/page/1", ""))
	if st.PageIndex != 1 {
		t.Fatalf("page not selected: %+v", st)
	}

	resp := do(t, http.MethodGet, ts.URL+"/api/page.png", "")
	body, _ := io.ReadAll(resp.Body)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
	if !strings.HasPrefix(string(body), "line 011|") {
		t.Fatalf("unexpected page body %q", body)
	}
}

func TestPageByIndex(t *testing.T) {
	ts := newTestServer(t)
	decodeState(t, do(t, http.MethodPut, ts.URL+"/api/markdown", numbered(40)))

	resp := do(t, http.MethodGet, ts.URL+"/api/pages/1.png", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "markdown-page-2.png") {
		t.Fatalf("content disposition %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "line 017") {
		t.Fatalf("unexpected body %q", body)
	}

	if resp := do(t, http.MethodGet, ts.URL+"/api/pages/7.png", ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of range page: status %d", resp.StatusCode)
	}
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		method, path, body string
	}{
		{http.MethodPut, "/api/settings", `{"aspectRatio":"16:9"}`},
		{http.MethodPut, "/api/settings", `{"fontSize":200}`},
		{http.MethodPut, "/api/settings", `not json`},
		{http.MethodPut, "/api/page/abc", ""},
		{http.MethodPut, "/api/page/-2", ""},
	}
	for _, tt := range tests {
		resp := do(t, tt.method, ts.URL+tt.path, tt.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s %s %s: status %d", tt.method, tt.path, tt.body, resp.StatusCode)
		}
		var payload map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload["error"] == "" {
			t.Fatalf("expected JSON error body, got %v %v", payload, err)
		}
	}
}

func TestPresetsAndLayout(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/presets", "")
	var presets presetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&presets); err != nil {
		t.Fatalf("decode presets: %v", err)
	}
	if len(presets.AspectRatios) != 3 || presets.MinFontSize != 30 || presets.MaxFontSize != 100 {
		t.Fatalf("unexpected presets %+v", presets)
	}

	decodeState(t, do(t, http.MethodPut, ts.URL+"/api/markdown", "Hello\n\nWorld"))
	resp = do(t, http.MethodGet, ts.URL+"/api/layout", "")
	var res struct {
		Pages []struct {
			Fragments []struct {
				Type    string `json:"type"`
				Content string `json:"content"`
			} `json:"fragments"`
		} `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if len(res.Pages) != 1 || len(res.Pages[0].Fragments) < 2 || res.Pages[0].Fragments[0].Content != "Hello" {
		t.Fatalf("unexpected layout %+v", res)
	}
}
