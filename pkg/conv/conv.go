// Package conv 提供 YAML/JSON 解析结果（map[string]any）的取值与类型转换，
// 供 config/builders 与各 Node 的构造函数使用。
package conv

import (
	"strings"
	"time"
)

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32。
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	default:
		return 0, false
	}
}

// ToInt 将 any 转为 int。YAML 解析出 int，JSON 解析出 float64，两者都接受。
func ToInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// ConfigGet 从 map[string]any 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	t, ok := v.(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt 取整数，兼容 int / float64。
func ConfigGetInt(m map[string]any, key string, defaultVal int) int {
	if v, ok := m[key]; ok {
		if n, ok := ToInt(v); ok {
			return n
		}
	}
	return defaultVal
}

// ConfigGetFloat64 取浮点数，兼容整数写法（例如 YAML 中的 `score: 1`）。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if v, ok := m[key]; ok {
		if f, ok := ToFloat64(v); ok {
			return f
		}
	}
	return defaultVal
}

// ConfigGetStrings 取字符串列表。支持 []string、[]any 与逗号分隔的字符串。
func ConfigGetStrings(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ConfigGetDuration 取时长。字符串按 time.ParseDuration 解析，数字按毫秒处理。
func ConfigGetDuration(m map[string]any, key string, defaultVal time.Duration) time.Duration {
	v, ok := m[key]
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return defaultVal
		}
		return d
	}
	if n, ok := ToInt(v); ok {
		return time.Duration(n) * time.Millisecond
	}
	return defaultVal
}

// ConfigGetMap 取嵌套配置段。
func ConfigGetMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key]; ok {
		if sub, ok := v.(map[string]any); ok {
			return sub
		}
	}
	return nil
}
