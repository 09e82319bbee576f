package rerank

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/utils"
)

// Diversity 是按类型/导演贪心去同质化的 ReRank。
//
// 规则（仅当候选数超过 Limit 时生效）：
//   - 分数最高的候选永远排第一，它的类型与导演作为“已用”集合的初始值
//   - 依次检查剩余候选：引入了新类型或新导演则接受；
//     已接受条数不足 Limit/2 时无条件接受
//   - 接受后把其类型与导演加入已用集合，凑满 Limit 条即停止
//
// 候选数不超过 Limit 时原样返回。
type Diversity struct {
	// Limit 期望条数，<=0 时使用 rctx.Limit
	Limit int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.Limit
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}

	usedGenres := make(map[string]struct{})
	usedDirectors := make(map[string]struct{})
	accept := func(it *core.Item) {
		if it.Record == nil {
			return
		}
		for _, g := range it.Record.Genres {
			usedGenres[g] = struct{}{}
		}
		for _, d := range it.Record.Directors {
			usedDirectors[d] = struct{}{}
		}
	}

	out := make([]*core.Item, 0, limit)
	half := float64(limit) / 2
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		if it == nil {
			continue
		}
		// 得分最高的非空候选总是保留
		if len(out) == 0 || introducesNew(it, usedGenres, usedDirectors) || float64(len(out)) < half {
			out = append(out, it)
			accept(it)
		}
	}

	for _, it := range out {
		it.PutLabel(utils.LabelRerank, utils.NewLabel("diversity", "rerank"))
	}
	return out, nil
}

func introducesNew(it *core.Item, genres, directors map[string]struct{}) bool {
	if it.Record == nil {
		return false
	}
	for _, g := range it.Record.Genres {
		if _, ok := genres[g]; !ok {
			return true
		}
	}
	for _, d := range it.Record.Directors {
		if _, ok := directors[d]; !ok {
			return true
		}
	}
	return false
}
