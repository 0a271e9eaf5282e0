package layout

// 该文件定义布局结果，供布局计算、渲染与调试 JSON 共用。

// FragmentKind 区分文本行与空行占位。
type FragmentKind int

const (
	FragmentText   FragmentKind = iota // 一行折行后的文本
	FragmentSpacer                     // 空段落，只占纵向空间，不绘制
)

// String returns the JSON-facing name of the kind.
func (k FragmentKind) String() string {
	switch k {
	case FragmentText:
		return "text"
	case FragmentSpacer:
		return "empty"
	default:
		return "unknown"
	}
}

// MarshalText 让调试 JSON 输出 "text"/"empty" 而不是数字。
func (k FragmentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Config 描述一次排版所需的画布尺寸与字号（单位均为像素）。
type Config struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"fontSize"`
}

// Fragment 是页面上的一个定位单元。
// 文本行的 Y 为基线位置；空行只有 Height。
type Fragment struct {
	Kind    FragmentKind `json:"type"`
	Content string       `json:"content,omitempty"`
	Y       float64      `json:"y,omitempty"`
	Width   float64      `json:"width,omitempty"`
	Height  float64      `json:"height,omitempty"`
}

// Page 按阅读顺序保存片段。
type Page struct {
	Fragments []Fragment `json:"fragments"`
}

// Texts returns only the drawable fragments of the page.
func (p Page) Texts() []Fragment {
	out := make([]Fragment, 0, len(p.Fragments))
	for _, f := range p.Fragments {
		if f.Kind == FragmentText {
			out = append(out, f)
		}
	}
	return out
}

// Result 保存一次排版的配置与全部页面。
type Result struct {
	Config Config `json:"config"`
	Pages  []Page `json:"pages"`
}

// TotalPages 总是 >= 1。
func (r *Result) TotalPages() int {
	if r == nil || len(r.Pages) == 0 {
		return 1
	}
	return len(r.Pages)
}
