package recall

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/rank"
)

// GenreBackfill 是按类型补齐的召回 Node：排序后候选不足 Limit 条时，
// 取画像 Top N 类型，从存储中补充包含任一类型的记录。
//
//   - 补充条数 = Limit - 当前条数
//   - 已在结果中（同 ID）或已看过的记录跳过
//   - 补充记录的分数固定为 Score（默认 0.3）
//   - 追加后按分数降序稳定重排
//
// 与其他召回 Node 不同，它在已有 items 上追加而不是替换。
type GenreBackfill struct {
	Store core.RecordStore

	// TopGenres 使用画像中计数最高的前 N 个类型，默认 3
	TopGenres int

	// Score 补齐记录的固定分数，默认 0.3
	Score float64

	// Limit 期望条数，<=0 时使用 rctx.Limit
	Limit int
}

func (r *GenreBackfill) Name() string        { return "recall.genre_backfill" }
func (r *GenreBackfill) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *GenreBackfill) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := r.Limit
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if r.Store == nil || rctx == nil || limit <= 0 || len(items) >= limit {
		return items, nil
	}

	// 多取 len(items) 条，抵消与已有结果的重复
	extra, err := r.recall(ctx, rctx, limit+len(items))
	if err != nil {
		return nil, err
	}

	need := limit - len(items)
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		seen[it.ID] = struct{}{}
	}
	for _, it := range extra {
		if need == 0 {
			break
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		if rctx.HasWatched(it.Title()) || (it.Record != nil && it.Record.UserID == rctx.UserID) {
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
		need--
	}

	rank.SortByScore(items)
	return items, nil
}

// Recall 实现 Source 接口：按画像 Top 类型采样，不做去重。
func (r *GenreBackfill) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	limit := r.Limit
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 {
		limit = core.DefaultLimit
	}
	return r.recall(ctx, rctx, limit)
}

func (r *GenreBackfill) recall(ctx context.Context, rctx *core.RecommendContext, limit int) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil || rctx.Profile == nil {
		return nil, nil
	}
	n := r.TopGenres
	if n <= 0 {
		n = core.DefaultBackfillTopGenres
	}
	genres := rctx.Profile.TopGenres(n)
	if len(genres) == 0 {
		return nil, nil
	}

	recs, err := r.Store.ListByGenres(ctx, genres, limit)
	if err != nil {
		return nil, core.StoreUnavailable("list by genres", err)
	}

	score := r.Score
	if score <= 0 {
		score = core.DefaultBackfillScore
	}
	items := recordsToItems(recs, "genre_backfill")
	for _, it := range items {
		it.Score = score
	}
	return items, nil
}
