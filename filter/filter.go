package filter

import (
	"context"

	"github.com/rushteam/tastekit/core"
)

// Filter 判断一个候选是否应该从推荐中剔除。
//
// 实现：
//   - WatchedFilter：用户看过的标题（大小写不敏感、去首尾空白）
//   - BlacklistFilter：配置或存储中的标题/ID 黑名单
//   - ExprFilter：CEL 表达式，例如 `"Horror" in item.genres`
type Filter interface {
	Name() string

	// ShouldFilter 返回 true 表示剔除。返回错误时由 FilterNode 决定是否保留该候选。
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
