package filter

import (
	"context"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤候选。
// Keep=true 时表达式为真的候选保留、其余过滤；Keep=false 时表达式为真的候选被过滤。
type ExprFilter struct {
	Program *dsl.Program
	Keep    bool
}

// NewExprFilter 编译表达式并创建过滤器。
func NewExprFilter(expr string, keep bool) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: p, Keep: keep}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	matched, err := f.Program.Match(item, rctx)
	if err != nil {
		return false, err
	}
	if f.Keep {
		return !matched, nil
	}
	return matched, nil
}
