package recall

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/utils"
)

// Popular 是冷启动热门召回：从元数据完整的记录中随机采样，
// 每条赋予固定分数与固定理由，不经过相似度打分。
//
// 采样由 RecordStore.ListPopular 完成（注入的 Sampler 决定随机性）。
// 已看过过滤在后续 filter 阶段完成，因此这里多取 Overfetch 条留出余量，
// 最终条数由 rerank.topn 截断。
type Popular struct {
	Store core.RecordStore

	// Limit 采样条数，<=0 时使用 rctx.Limit
	Limit int

	// Overfetch 额外多取的条数，用于抵消已看过过滤
	Overfetch int

	// Score 固定分数，默认 0.5
	Score float64

	// Reason 固定理由
	Reason string
}

func (r *Popular) Name() string        { return "recall.popular" }
func (r *Popular) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popular) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Popular) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}
	limit := r.Limit
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 {
		limit = core.DefaultLimit
	}

	recs, err := r.Store.ListPopular(ctx, limit+max(r.Overfetch, 0))
	if err != nil {
		return nil, core.StoreUnavailable("list popular", err)
	}

	score := r.Score
	if score <= 0 {
		score = core.DefaultPopularScore
	}
	reason := r.Reason
	if reason == "" {
		reason = core.ReasonPopular
	}

	items := recordsToItems(recs, "popular")
	for _, it := range items {
		it.Score = score
		it.Reason = reason
		it.PutLabel(utils.LabelReason, utils.NewLabel(reason, "recall"))
	}
	if rctx != nil {
		rctx.PutLabel(utils.LabelColdStart, utils.NewLabel("true", "recall"))
	}
	return items, nil
}
