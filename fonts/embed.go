package fonts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultSrc 是未配置字体时使用的内置字体。
const DefaultSrc = "builtin:goregular"

var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gomono":    gomono.TTF,
}

// Load 返回字体字节数据。src 可写为 "builtin:goregular"、"builtin:gomono"，
// 或 TTF/OTF 文件路径；空字符串等同于 DefaultSrc。
func Load(src string) ([]byte, error) {
	if src == "" {
		src = DefaultSrc
	}
	if name, ok := strings.CutPrefix(src, "builtin:"); ok {
		data, found := builtin[name]
		if !found {
			return nil, fmt.Errorf("找不到内置字体 builtin:%s", name)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
