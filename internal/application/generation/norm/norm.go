// Package norm 提供模型输出的规整处理
package norm

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// StripCodeFence 去掉模型输出首尾的代码围栏（``` 或 ```json 等）及空白。
// 不校验围栏内内容是否为合法 JSON：输出契约由提示词约定，这里只做尽力规整。
func StripCodeFence(s string) string {
	out := strings.TrimSpace(s)

	if strings.HasPrefix(out, "```") {
		out = out[3:]
		// 吃掉语言标记（json、markdown 等），直到行尾
		if idx := strings.Index(out, "\n"); idx >= 0 {
			firstLine := strings.TrimSpace(out[:idx])
			if isFenceTag(firstLine) {
				out = out[idx+1:]
			}
		} else {
			out = strings.TrimSpace(out)
		}
	}

	out = strings.TrimSpace(out)
	if strings.HasSuffix(out, "```") {
		out = out[:len(out)-3]
	}

	return strings.TrimSpace(out)
}

// isFenceTag 判断围栏起始行剩余部分是否只是语言标记
func isFenceTag(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// ExtractJSONObject 尝试从模型输出中截取第一个完整 JSON 对象/数组。
// 这是一个容错逻辑：模型可能会在 JSON 前后夹杂多余文本。
func ExtractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start := -1
	end := -1
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start = objStart
		end = strings.LastIndex(raw, "}")
	case arrStart >= 0:
		start = arrStart
		end = strings.LastIndex(raw, "]")
	}
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	// 简单校验：确保至少能被 Decoder 消费到一个 JSON 起始。
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err == nil {
		if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
			return raw
		}
	}

	// 最后兜底：尝试读取到 EOF 为止，避免调用方误用。
	dec = json.NewDecoder(strings.NewReader(raw))
	for {
		_, e := dec.Token()
		if e != nil {
			if errors.Is(e, io.EOF) {
				break
			}
			return strings.TrimSpace(s)
		}
	}
	return raw
}
