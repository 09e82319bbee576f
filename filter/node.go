package filter

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/logging"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该候选就会被过滤掉。
// 单个过滤器出错时保留该候选，不中断流程。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	filtered := make(map[string]int, len(n.Filters))

	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				logging.Ctx(ctx).Debug().Err(err).
					Str("filter", f.Name()).
					Str("item", item.ID).
					Msg("filter error, keeping item")
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			filtered[reason]++
			continue
		}
		out = append(out, item)
	}

	if len(filtered) > 0 {
		ev := logging.Ctx(ctx).Debug().Int("in", len(items)).Int("out", len(out))
		for name, c := range filtered {
			ev = ev.Int(name, c)
		}
		ev.Msg("filter applied")
	}
	return out, nil
}
