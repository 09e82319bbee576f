package filter

import (
	"context"

	"github.com/rushteam/tastekit/core"
)

// BlacklistFilter 是黑名单过滤器，按记录 ID 或标题（大小写不敏感）过滤。
type BlacklistFilter struct {
	// IDs 是内存中的黑名单记录 ID
	IDs []string

	// Titles 是内存中的黑名单标题
	Titles []string

	// Store 用于从存储中读取黑名单标题（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string

	ids    map[string]struct{}
	titles map[string]struct{}
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单标题列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(ids, titles []string, store BlacklistStore, key string) *BlacklistFilter {
	f := &BlacklistFilter{
		IDs:    ids,
		Titles: titles,
		Store:  store,
		Key:    key,
		ids:    make(map[string]struct{}, len(ids)),
		titles: make(map[string]struct{}, len(titles)),
	}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	for _, t := range titles {
		f.titles[core.NormalizeTitleKey(t)] = struct{}{}
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	title := core.NormalizeTitleKey(item.Title())
	if f.ids != nil || f.titles != nil {
		if _, ok := f.ids[item.ID]; ok {
			return true, nil
		}
		if _, ok := f.titles[title]; ok {
			return true, nil
		}
	} else {
		for _, id := range f.IDs {
			if id == item.ID {
				return true, nil
			}
		}
		for _, t := range f.Titles {
			if core.NormalizeTitleKey(t) == title {
				return true, nil
			}
		}
	}

	if f.Store != nil && f.Key != "" {
		blacklist, err := f.Store.GetBlacklist(ctx, f.Key)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return false, nil
			}
			return false, err
		}
		for _, t := range blacklist {
			if core.NormalizeTitleKey(t) == title {
				return true, nil
			}
		}
	}

	return false, nil
}
