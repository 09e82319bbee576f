package core

import "github.com/rushteam/tastekit/pkg/utils"

// RecommendContext 承载用户/画像/请求信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string

	// Profile 是用户口味画像，冷启动时也可能非空（TotalMovies 较小）
	Profile *Preferences

	// Limit 是期望返回的条数
	Limit int

	// Watched 是用户已看过标题的集合（NormalizeTitleKey 之后的值）
	Watched map[string]struct{}

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：cold_start
	Labels map[string]utils.Label

	// Params 请求级参数
	Params map[string]any
}

// HasWatched 判断标题是否已被用户看过（大小写不敏感，忽略首尾空白）。
func (rctx *RecommendContext) HasWatched(title string) bool {
	if rctx == nil || len(rctx.Watched) == 0 {
		return false
	}
	_, ok := rctx.Watched[NormalizeTitleKey(title)]
	return ok
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
