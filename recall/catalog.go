package recall

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
)

// Catalog 是全量目录召回：不属于当前用户的全部记录，按存储顺序返回。
//
// 打分与阈值交给 rank.ContentNode，这里只负责拿到候选集；
// 读取失败直接返回错误，不做部分排序。
type Catalog struct {
	Store core.RecordStore
}

func (r *Catalog) Name() string        { return "recall.catalog" }
func (r *Catalog) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Catalog) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Catalog) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	recs, err := r.Store.ListRecordsExcludingUser(ctx, rctx.UserID)
	if err != nil {
		return nil, core.StoreUnavailable("list candidates", err)
	}
	return recordsToItems(recs, "catalog"), nil
}

