package model

import "github.com/rushteam/tastekit/feature"

// SimilarityModel 是排序阶段的最小抽象：输入画像向量与候选向量，输出 [0,1] 的相似度。
// 具体实现可以替换权重或打分方式，rank.ContentNode 只依赖该接口。
type SimilarityModel interface {
	Name() string
	Score(profile, candidate feature.Vector) float64
}
