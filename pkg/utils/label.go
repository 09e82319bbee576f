package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由各 Node 自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank / postprocess
}

// 链路中通用的 Label key。
const (
	LabelRecallSource = "recall_source" // catalog / popular / genre_backfill
	LabelRankModel    = "rank_model"
	LabelRerank       = "rerank"
	LabelReason       = "reason"
	LabelColdStart    = "cold_start"
)

// MergeLabel 用于合并同名 Label，遵循“保留历史、可追踪”的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// NewLabel 创建 Label。
func NewLabel(value, source string) Label {
	return Label{Value: value, Source: source}
}
