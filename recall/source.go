package recall

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pkg/utils"
)

// Source 表示一个可复用的召回源（全量目录/热门兜底/类型补齐）。
// 可以单独作为 Node 使用，也可以交给 Fanout 并发执行。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// recordsToItems 把记录封装为候选 Item，并写入召回来源 label。
func recordsToItems(recs []core.EnrichedRecord, source string) []*core.Item {
	out := make([]*core.Item, 0, len(recs))
	for i := range recs {
		it := core.NewRecordItem(&recs[i])
		it.PutLabel(utils.LabelRecallSource, labelFor(source))
		out = append(out, it)
	}
	return out
}

func labelFor(source string) utils.Label {
	return utils.NewLabel(source, "recall")
}
