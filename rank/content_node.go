package rank

import (
	"context"
	"sort"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/feature"
	"github.com/rushteam/tastekit/model"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/utils"
)

// ContentNode 是基于画像相似度的排序 Node。
//   - 画像向量只构建一次，候选逐条打分
//   - 只保留相似度严格大于 MinSimilarity 的候选
//   - 按分数降序稳定排序（同分保持召回顺序）
//   - 写入 labels：rank_model
type ContentNode struct {
	Model         model.SimilarityModel
	MinSimilarity float64
}

// NewContentNode 创建默认模型与默认阈值的排序 Node。
func NewContentNode() *ContentNode {
	return &ContentNode{
		Model:         model.NewContentModel(),
		MinSimilarity: core.DefaultMinSimilarity,
	}
}

func (n *ContentNode) Name() string        { return "rank.content" }
func (n *ContentNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ContentNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	m := n.Model
	if m == nil {
		m = model.NewContentModel()
	}

	var prefs *core.Preferences
	if rctx != nil {
		prefs = rctx.Profile
	}
	profile := feature.FromPreferences(prefs)

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil || it.Record == nil {
			continue
		}
		score := m.Score(profile, feature.FromRecord(it.Record))
		if score <= n.MinSimilarity {
			continue
		}
		it.Score = score
		it.PutLabel(utils.LabelRankModel, utils.NewLabel(m.Name(), "rank"))
		out = append(out, it)
	}

	SortByScore(out)
	return out, nil
}

// SortByScore 按分数降序稳定排序。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}
