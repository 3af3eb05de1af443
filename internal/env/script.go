package env

import (
	"fmt"
	"strings"
)

// RenderScript 把修改列表渲染为可供 shell eval 的脚本，每行一条语句，顺序与输入一致。
func RenderScript(changesets []Changeset) string {
	lines := make([]string, 0, len(changesets))
	for _, c := range changesets {
		if c.Unset {
			lines = append(lines, fmt.Sprintf("unset %s;", c.Name))
			continue
		}
		lines = append(lines, fmt.Sprintf("export %s=%s;", c.Name, EscapeValue(c.Value)))
	}
	return strings.Join(lines, "\n")
}

// EscapeValue 使用 $'...' 引用形式转义变量值。NUL 无法在 shell 字符串中表示，直接丢弃。
func EscapeValue(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 3)
	b.WriteString("$'")
	for i := 0; i < len(value); i++ {
		switch ch := value[i]; ch {
		case '\'':
			b.WriteString(`\'`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\\':
			b.WriteString(`\\`)
		case 0x1b:
			b.WriteString(`\e`)
		case 0:
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
