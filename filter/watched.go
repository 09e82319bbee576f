package filter

import (
	"context"

	"github.com/rushteam/tastekit/core"
)

// WatchedFilter 过滤掉用户已经看过的标题（去空白、大小写不敏感）。
//
// 已看过集合优先使用 rctx.Watched；为空且设置了 Store 时按需从存储加载一次并回填到 rctx。
// 推荐入口（recommend.Engine）会提前加载该集合，加载失败直接返回错误。
type WatchedFilter struct {
	Store WatchedStore
}

// WatchedStore 提供用户已看过的标题集合。
type WatchedStore interface {
	WatchedTitles(ctx context.Context, userID string) (map[string]struct{}, error)
}

// NewWatchedFilter 创建一个已看过过滤器，store 可为 nil。
func NewWatchedFilter(store WatchedStore) *WatchedFilter {
	return &WatchedFilter{Store: store}
}

func (f *WatchedFilter) Name() string {
	return "filter.watched"
}

func (f *WatchedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil {
		return false, nil
	}
	if rctx.Watched == nil && f.Store != nil && rctx.UserID != "" {
		watched, err := f.Store.WatchedTitles(ctx, rctx.UserID)
		if err != nil {
			return false, err
		}
		rctx.Watched = watched
	}
	return rctx.HasWatched(item.Title()), nil
}
