package rerank

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点。
// 冷启动链路没有多样性重排，依赖它把热门兜底截到期望条数。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.Popular{...},
//	        &filter.FilterNode{...},
//	        &rerank.TopNNode{},  // N 为 0 时使用 rctx.Limit
//	    },
//	}
type TopNNode struct {
	// N 要保留的条数，<=0 时使用 rctx.Limit；两者都 <=0 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
