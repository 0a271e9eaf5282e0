package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfig = errors.New("invalid layout config")
	ErrNoMeasurer    = errors.New("layout: missing Measurer")
)

// 排版常量。倍数是经验值，不从字体度量推导，保持固定以获得一致的版面。
const (
	MarginLeft      = 50.0  // 文本绘制的 x 坐标
	HorizontalInset = 100.0 // 左右各 50px
	TopExtra        = 30.0  // 首行基线 = fontSize + TopExtra

	SpacerFactor    = 0.8 // 空段落的高度
	LineFactor      = 1.5 // 段内折行的行距
	ParagraphFactor = 2.0 // 段落结束后的行距
)

// Build 将扁平文本按字符贪心折行并分页。
// 结果只取决于 text、cfg 与 Measurer。
func Build(text string, cfg Config, opts BuildOptions) (*Result, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FontSize <= 0 {
		return nil, fmt.Errorf("%w: width=%g height=%g fontSize=%g", ErrInvalidConfig, cfg.Width, cfg.Height, cfg.FontSize)
	}
	if opts.Measurer == nil {
		return nil, ErrNoMeasurer
	}

	collector := newPageCollector(cfg)
	if text == "" {
		return &Result{Config: cfg, Pages: collector.pages()}, nil
	}
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			collector.appendSpacer()
			continue
		}
		collector.appendParagraph(paragraph, opts.Measurer)
	}

	return &Result{
		Config: cfg,
		Pages:  collector.pages(),
	}, nil
}

// pageCollector 持有游标状态：当前页与当前基线。
type pageCollector struct {
	cfg       Config
	maxWidth  float64
	marginTop float64
	cursorY   float64
	all       []Page
}

func newPageCollector(cfg Config) *pageCollector {
	pc := &pageCollector{
		cfg:       cfg,
		maxWidth:  cfg.Width - HorizontalInset,
		marginTop: cfg.FontSize + TopExtra,
	}
	pc.cursorY = pc.marginTop
	pc.all = []Page{{Fragments: []Fragment{}}}
	return pc
}

func (pc *pageCollector) newPage() {
	pc.all = append(pc.all, Page{Fragments: []Fragment{}})
	pc.cursorY = pc.marginTop
}

func (pc *pageCollector) curr() *Page {
	return &pc.all[len(pc.all)-1]
}

// contentBottom 是基线允许到达的最低位置。
func (pc *pageCollector) contentBottom() float64 {
	return pc.cfg.Height - pc.cfg.FontSize
}

func (pc *pageCollector) appendSpacer() {
	height := pc.cfg.FontSize * SpacerFactor
	pc.cursorY += height
	if pc.cursorY > pc.contentBottom() {
		pc.newPage()
	}
	pc.curr().Fragments = append(pc.curr().Fragments, Fragment{Kind: FragmentSpacer, Height: height})
}

// appendLine 先做分页检查，再在当前基线放置一行并推进 advance。
func (pc *pageCollector) appendLine(content string, width, advance float64) {
	if pc.cursorY+pc.cfg.FontSize > pc.contentBottom() {
		pc.newPage()
	}
	pc.curr().Fragments = append(pc.curr().Fragments, Fragment{
		Kind:    FragmentText,
		Content: content,
		Y:       pc.cursorY,
		Width:   width,
	})
	pc.cursorY += advance
}

// appendParagraph 逐字符累积，测量超宽时把之前的内容作为完整一行输出，
// 超宽的字符成为下一行的开头。
func (pc *pageCollector) appendParagraph(paragraph string, m Measurer) {
	var line strings.Builder
	lineWidth := 0.0
	for _, r := range paragraph {
		test := line.String() + string(r)
		w := m.TextWidth(test)
		if w > pc.maxWidth && line.Len() > 0 {
			pc.appendLine(line.String(), lineWidth, pc.cfg.FontSize*LineFactor)
			line.Reset()
			line.WriteRune(r)
			lineWidth = m.TextWidth(line.String())
			continue
		}
		// 空行上的超宽字符直接收下，单独成行。
		line.WriteRune(r)
		lineWidth = w
	}
	if line.Len() > 0 {
		pc.appendLine(line.String(), lineWidth, pc.cfg.FontSize*ParagraphFactor)
	}
}

func (pc *pageCollector) pages() []Page {
	return pc.all
}
