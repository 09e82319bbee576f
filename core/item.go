package core

import "github.com/rushteam/tastekit/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选记录、分数、理由、标签。
// Labels 用于解释与观测；Score 即相似度，用于排序决策。
type Item struct {
	ID     string
	Score  float64
	Record *EnrichedRecord

	// Reason 是面向用户的推荐理由，由 postprocess 阶段或兜底召回写入
	Reason string

	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// NewRecordItem 以记录构造候选 Item；ID 优先使用记录 ID，否则退回自然主键。
func NewRecordItem(rec *EnrichedRecord) *Item {
	id := rec.ID
	if id == "" {
		id = rec.Key()
	}
	it := NewItem(id)
	it.Record = rec
	return it
}

// Title 返回候选标题，Record 为空时返回空串。
func (it *Item) Title() string {
	if it == nil || it.Record == nil {
		return ""
	}
	return it.Record.Title
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
