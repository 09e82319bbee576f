package model

import (
	"math"

	"github.com/rushteam/tastekit/feature"
)

// Weights 是四个维度的加权系数。
type Weights struct {
	Genre    float64
	Actor    float64
	Director float64
	Duration float64
}

// DefaultWeights 类型 0.35、演员 0.35、导演 0.20、时长 0.10。
var DefaultWeights = Weights{Genre: 0.35, Actor: 0.35, Director: 0.20, Duration: 0.10}

// 各维度的重合奖励
const (
	genreOverlapCap      = 0.3
	actorOverlapCap      = 0.2
	actorMultiMatchBonus = 0.2 // 命中 ≥2 位演员
	directorMatchBonus   = 0.3
)

// durationBuckets 是时长差（分钟）到子分数的阶梯映射。
var durationBuckets = []struct {
	maxDiff float64
	score   float64
}{
	{15, 1.0},
	{30, 0.8},
	{45, 0.6},
	{60, 0.4},
	{90, 0.2},
}

// ContentModel 是基于内容重合度的相似度模型。
//
// 计算方式：
//
//	score = Σ(sub_i * w_i) / Σ(w_i)，只累加双方都有数据的维度
//
// 子分数 = 画像命中权重占比 + 重合奖励（可能超过 1），最终结果截断到 [0,1]。
type ContentModel struct {
	Weights Weights
}

// NewContentModel 创建默认权重的模型。
func NewContentModel() *ContentModel {
	return &ContentModel{Weights: DefaultWeights}
}

func (m *ContentModel) Name() string { return "content" }

func (m *ContentModel) Score(profile, candidate feature.Vector) float64 {
	w := m.Weights
	if w == (Weights{}) {
		w = DefaultWeights
	}

	var total, maxPossible float64
	add := func(sub, weight float64) {
		total += sub * weight
		maxPossible += weight
	}

	if len(profile.Genres) > 0 && len(candidate.Genres) > 0 {
		add(GenreScore(profile.Genres, candidate.Genres), w.Genre)
	}
	if len(profile.Actors) > 0 && len(candidate.Actors) > 0 {
		add(ActorScore(profile.Actors, candidate.Actors), w.Actor)
	}
	if len(profile.Directors) > 0 && len(candidate.Directors) > 0 {
		add(DirectorScore(profile.Directors, candidate.Directors), w.Director)
	}
	if profile.Duration > 0 && candidate.Duration > 0 {
		add(DurationScore(profile.Duration, candidate.Duration), w.Duration)
	}

	if maxPossible <= 0 {
		return 0
	}
	return clamp01(total / maxPossible)
}

// GenreScore 类型子分数：命中占比 + min(|I|/max(|U|,|M|), 0.3)。
func GenreScore(user, cand map[string]float64) float64 {
	base, matched, ok := overlap(user, cand)
	if !ok {
		return 0
	}
	return base + math.Min(overlapRatio(matched, user, cand), genreOverlapCap)
}

// ActorScore 演员子分数：命中占比 + (|I|≥2 ? 0.2 : 0) + min(|I|/max(|U|,|M|), 0.2)。
func ActorScore(user, cand map[string]float64) float64 {
	base, matched, ok := overlap(user, cand)
	if !ok {
		return 0
	}
	score := base
	if matched >= 2 {
		score += actorMultiMatchBonus
	}
	return score + math.Min(overlapRatio(matched, user, cand), actorOverlapCap)
}

// DirectorScore 导演子分数：命中占比 + 0.3。
func DirectorScore(user, cand map[string]float64) float64 {
	base, _, ok := overlap(user, cand)
	if !ok {
		return 0
	}
	return base + directorMatchBonus
}

// DurationScore 时长子分数，任一方未知时为 0。
func DurationScore(user, cand float64) float64 {
	if user <= 0 || cand <= 0 {
		return 0
	}
	diff := math.Abs(user - cand)
	for _, b := range durationBuckets {
		if diff <= b.maxDiff {
			return b.score
		}
	}
	return 0
}

// overlap 返回画像侧命中权重占比与交集大小；交集为空时 ok=false。
func overlap(user, cand map[string]float64) (base float64, matched int, ok bool) {
	if len(user) == 0 || len(cand) == 0 {
		return 0, 0, false
	}
	var matchedWeight, totalWeight float64
	for k, w := range user {
		totalWeight += w
		if _, hit := cand[k]; hit {
			matchedWeight += w
			matched++
		}
	}
	if matched == 0 || totalWeight <= 0 {
		return 0, 0, false
	}
	return matchedWeight / totalWeight, matched, true
}

func overlapRatio(matched int, user, cand map[string]float64) float64 {
	denom := max(len(user), len(cand))
	return float64(matched) / float64(denom)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
