package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/tastekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的候选过滤表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次，可并发多次求值。
//
// 可用变量：
//   - item.id / item.title / item.score / item.reason
//   - item.genres / item.cast / item.directors（字符串列表）
//   - item.minutes（时长分钟数，未知为 0）
//   - label.<key>（Label 的 value，例如 label.recall_source）
//   - rctx.user_id / rctx.limit / rctx.total_movies / rctx.params
//
// 示例：
//   - `"Horror" in item.genres` → 类型包含 Horror
//   - `item.minutes > 0 && item.minutes < 150` → 时长在 150 分钟以内
//   - `label.recall_source == "catalog" && item.score > 0.2`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，表达式必须返回布尔值。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Match 对单个候选求值。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Evaluate 编译并执行一次表达式；空表达式视为 true。
// 需要多次求值时使用 Compile。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(item, rctx)
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any)
	it := map[string]any{
		"id":        "",
		"title":     "",
		"score":     0.0,
		"reason":    "",
		"genres":    []string{},
		"cast":      []string{},
		"directors": []string{},
		"minutes":   0,
	}
	if item != nil {
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		it["id"] = item.ID
		it["score"] = item.Score
		it["reason"] = item.Reason
		if rec := item.Record; rec != nil {
			it["title"] = rec.Title
			it["genres"] = nonNil(rec.Genres)
			it["cast"] = nonNil(rec.Cast)
			it["directors"] = nonNil(rec.Directors)
			it["minutes"] = rec.Minutes()
		}
	}

	rc := map[string]any{
		"user_id":      "",
		"limit":        0,
		"total_movies": 0,
		"params":       map[string]any{},
	}
	if rctx != nil {
		rc["user_id"] = rctx.UserID
		rc["limit"] = rctx.Limit
		if rctx.Profile != nil {
			rc["total_movies"] = rctx.Profile.TotalMovies
		}
		if rctx.Params != nil {
			rc["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  it,
		"label": labels,
		"rctx":  rc,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
