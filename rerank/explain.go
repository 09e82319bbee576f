package rerank

import (
	"context"
	"math"
	"strings"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/utils"
)

// 时长差小于该值（分钟）时给出时长理由
const similarDurationWindow = 30

const reasonSeparator = " • "

// ExplainNode 为每个候选生成推荐理由（postprocess 阶段）。
//
// 理由由以下子句按顺序拼接（" • " 分隔）：
//   - Similar genres: a, b
//   - Featuring: a, b
//   - Directed by: x
//   - Similar duration to your preferences
//
// 没有任何子句时使用 "Based on your viewing patterns"。
// 已经带有理由的候选（例如热门兜底）保持不变。
type ExplainNode struct{}

func (n *ExplainNode) Name() string        { return "postprocess.explain" }
func (n *ExplainNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *ExplainNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	var prefs *core.Preferences
	if rctx != nil {
		prefs = rctx.Profile
	}
	for _, it := range items {
		if it == nil || it.Reason != "" {
			continue
		}
		it.Reason = Explain(prefs, it.Record)
		it.PutLabel(utils.LabelReason, utils.NewLabel(it.Reason, "postprocess"))
	}
	return items, nil
}

// Explain 根据画像与候选记录生成理由文本。
func Explain(prefs *core.Preferences, rec *core.EnrichedRecord) string {
	if prefs == nil || rec == nil {
		return core.ReasonFallback
	}
	var clauses []string

	if g := matching(rec.Genres, prefs.HasGenre); len(g) > 0 {
		clauses = append(clauses, "Similar genres: "+strings.Join(g, ", "))
	}
	if a := matching(rec.Cast, prefs.HasActor); len(a) > 0 {
		clauses = append(clauses, "Featuring: "+strings.Join(a, ", "))
	}
	if d := matching(rec.Directors, prefs.HasDirector); len(d) > 0 {
		clauses = append(clauses, "Directed by: "+strings.Join(d, ", "))
	}
	if prefs.AverageDuration > 0 {
		if m := rec.Minutes(); m > 0 && math.Abs(prefs.AverageDuration-float64(m)) < similarDurationWindow {
			clauses = append(clauses, "Similar duration to your preferences")
		}
	}

	if len(clauses) == 0 {
		return core.ReasonFallback
	}
	return strings.Join(clauses, reasonSeparator)
}

func matching(names []string, has func(string) bool) []string {
	var out []string
	for _, n := range core.CleanList(names) {
		if has(n) {
			out = append(out, n)
		}
	}
	return out
}
