package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/tastekit/core"
)

// Hook 在每个 Node 执行前后被调用，用于打点、日志、调试。
// Hook 不能修改 items，也不能中断 Pipeline。
type Hook interface {
	BeforeNode(ctx context.Context, rctx *core.RecommendContext, node Node, in int)
	AfterNode(ctx context.Context, rctx *core.RecommendContext, node Node, out int, elapsed time.Duration, err error)
}

// Pipeline 把推荐逻辑拆成可组合的 Node 链。
type Pipeline struct {
	Name  string
	Nodes []Node
	Hooks []Hook
}

// Run 依次执行所有 Node。任一 Node 出错则整体失败，不返回部分结果。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, h := range p.Hooks {
			h.BeforeNode(ctx, rctx, node, len(cur))
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		elapsed := time.Since(start)
		for _, h := range p.Hooks {
			h.AfterNode(ctx, rctx, node, len(next), elapsed, err)
		}
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Use 追加 Hook，返回自身便于链式调用。
func (p *Pipeline) Use(hooks ...Hook) *Pipeline {
	p.Hooks = append(p.Hooks, hooks...)
	return p
}
