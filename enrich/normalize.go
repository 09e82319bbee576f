package enrich

import "strings"

// NormalizeTitle 把原始标题转换为元数据查询用的 key：
// 去首尾空白，去掉开头和结尾各一个双引号，截断到第一个冒号之前，再去空白。
//
//	`"The Matrix: Reloaded"`  ->  `The Matrix`
//
// 反复处理直到结果不再变化，因此 NormalizeTitle(NormalizeTitle(x)) == NormalizeTitle(x)。
func NormalizeTitle(title string) string {
	for {
		next := normalizeOnce(title)
		if next == title {
			return next
		}
		title = next
	}
}

func normalizeOnce(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
