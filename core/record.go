package core

import (
	"strings"
	"time"
)

// NotAvailable 是外部数据源（OMDb / TMDB / 历史表）使用的“无数据”占位值。
// 领域内部不使用它：缺失统一表示为空字符串或空切片，只在边界编解码时转换。
const NotAvailable = "N/A"

// SystemUserID 是目录种子数据（catalog seed）的归属用户。
const SystemUserID = "system"

// EnrichedRecord 是用户看过的一部作品及其解析后的元数据。
// (UserID, Title) 是自然主键；记录创建后不再修改。
type EnrichedRecord struct {
	ID     string
	UserID string
	// Title 是原始标题（未经规范化），用于展示与去重
	Title string

	Genres    []string // 类型
	Cast      []string // 演员，按重要程度排序
	Directors []string // 导演
	Runtime   string   // 时长原文，例如 "120 min"；空表示未知
	PosterURL string

	CreatedAt time.Time
}

// Key 返回记录的自然主键。
func (r *EnrichedRecord) Key() string {
	return r.UserID + "/" + r.Title
}

// Minutes 返回时长中的分钟数；无法解析时返回 0。
func (r *EnrichedRecord) Minutes() int {
	return ExtractMinutes(r.Runtime)
}

// HasFullMetadata 判断类型、演员、导演是否都存在（热门兜底池的准入条件）。
func (r *EnrichedRecord) HasFullMetadata() bool {
	return len(r.Genres) > 0 && len(r.Cast) > 0 && len(r.Directors) > 0
}

// SplitList 把逗号分隔的字段拆成列表：去空白、丢弃空串与占位值。
func SplitList(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" || text == NotAvailable {
		return nil
	}
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == NotAvailable {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinList 是 SplitList 的逆操作，空列表编码为占位值。
func JoinList(list []string) string {
	list = CleanList(list)
	if len(list) == 0 {
		return NotAvailable
	}
	return strings.Join(list, ", ")
}

// CleanList 对已经是列表形式的字段做同样的清洗。
func CleanList(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v == "" || v == NotAvailable {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CleanText 把占位值与空白串统一成空字符串。
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	if text == NotAvailable {
		return ""
	}
	return text
}

// EncodeText 是 CleanText 的逆操作。
func EncodeText(text string) string {
	if strings.TrimSpace(text) == "" {
		return NotAvailable
	}
	return text
}

// ExtractMinutes 提取文本中第一段连续数字作为分钟数。
// 没有数字、或数字溢出时返回 0（视为未知），从不报错。
func ExtractMinutes(text string) int {
	n, _ := ParseMinutes(text)
	return n
}

// ParseMinutes 同 ExtractMinutes，额外返回是否找到了可用的数字。
func ParseMinutes(text string) (int, bool) {
	start := -1
	end := len(text)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	n := 0
	for i := start; i < end; i++ {
		n = n*10 + int(text[i]-'0')
		if n > maxMinutes {
			return 0, false
		}
	}
	return n, true
}

const maxMinutes = 1 << 20

// NormalizeTitleKey 返回用于“已看过”比较的标题：去空白并转小写。
func NormalizeTitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
