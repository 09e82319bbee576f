package filter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/tastekit/core"
)

// StoreAdapter 将 core.RecordStore / core.Store 适配为过滤器所需的存储接口。
//   - WatchedTitles：用户全部记录的标题集合
//   - GetBlacklist：KV 中以 JSON 数组保存的黑名单
type StoreAdapter struct {
	records core.RecordStore
	kv      core.Store
}

// NewStoreAdapter 创建适配器，kv 可为 nil（此时黑名单只读内存配置）。
func NewStoreAdapter(records core.RecordStore, kv core.Store) *StoreAdapter {
	return &StoreAdapter{records: records, kv: kv}
}

// WatchedTitles 读取用户全部记录，返回 NormalizeTitleKey 之后的标题集合。
// 存储错误原样返回，由调用方决定是否中断。
func (a *StoreAdapter) WatchedTitles(ctx context.Context, userID string) (map[string]struct{}, error) {
	if a.records == nil {
		return map[string]struct{}{}, nil
	}
	recs, err := a.records.ListRecordsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(recs))
	for i := range recs {
		if key := core.NormalizeTitleKey(recs[i].Title); key != "" {
			out[key] = struct{}{}
		}
	}
	return out, nil
}

// GetBlacklist 从 KV 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	if a.kv == nil {
		return nil, core.ErrStoreNotFound
	}
	data, err := a.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// SetBlacklist 以 JSON 数组写入黑名单。
func (a *StoreAdapter) SetBlacklist(ctx context.Context, key string, titles []string) error {
	if a.kv == nil {
		return core.ErrStoreNotSupported
	}
	data, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, key, data)
}
