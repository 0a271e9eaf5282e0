// Package binding fills ${path} placeholders in Markdown source from
// user-supplied data before the text is converted and laid out.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 或 ${list[0].name} 替换为 data 中的值。
// data 为 nil 或路径无法解析时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := Lookup(data, path)
		if !ok {
			return match
		}
		return format(val)
	})
}

// Lookup walks data along a dotted path with optional [index] suffixes.
// Maps decoded from YAML or JSON (map[string]any, []any) are supported.
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, step := range splitPath(path) {
		var ok bool
		if step.key != "" {
			if current, ok = field(current, step.key); !ok {
				return nil, false
			}
		}
		for _, idx := range step.indexes {
			if current, ok = element(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

type pathStep struct {
	key     string
	indexes []int
}

func splitPath(path string) []pathStep {
	segments := strings.Split(path, ".")
	steps := make([]pathStep, 0, len(segments))
	for _, seg := range segments {
		step := pathStep{key: seg}
		if open := strings.IndexByte(seg, '['); open >= 0 {
			step.key = seg[:open]
			rest := seg[open:]
			for strings.HasPrefix(rest, "[") {
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					break
				}
				n, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
				if err != nil {
					n = -1
				}
				step.indexes = append(step.indexes, n)
				rest = rest[end+1:]
			}
		}
		steps = append(steps, step)
	}
	return steps
}

func field(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case map[any]any:
		val, ok := m[key]
		return val, ok
	default:
		return nil, false
	}
}

func element(v any, idx int) (any, bool) {
	list, ok := v.([]any)
	if !ok || idx < 0 || idx >= len(list) {
		return nil, false
	}
	return list[idx], true
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
