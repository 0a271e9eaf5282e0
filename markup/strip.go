package markup

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// tagLexer 把 HTML 切成 Tag / Text 两类 token。
// Tag 与 `<[^>]+>` 等价；找不到闭合 `>` 的 `<` 按普通文本保留。
var (
	tagLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Tag", Pattern: `<[^>]+>`},
		{Name: "Text", Pattern: `[^<]+`},
		{Name: "Lt", Pattern: `<`},
	})

	tagTokenType = mustTokenType("Tag")
)

// StripTags 删除所有标签，保留其余文本。不做实体解码，`&lt;` 等原样保留。
func StripTags(html string) string {
	if !strings.Contains(html, "<") {
		return html
	}
	lex, err := tagLexer.LexString("", html)
	if err != nil {
		return html
	}
	var b strings.Builder
	b.Grow(len(html))
	for {
		tok, err := lex.Next()
		if err != nil {
			// 三条规则覆盖任意输入，走到这里说明 lexer 内部状态异常。
			return html
		}
		if tok.EOF() {
			break
		}
		if tok.Type == tagTokenType {
			continue
		}
		b.WriteString(tok.Value)
	}
	return b.String()
}

func mustTokenType(name string) lexer.TokenType {
	tt, ok := tagLexer.Symbols()[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
