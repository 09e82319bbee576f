// Package feature 把画像与候选记录转换成同构的特征向量，供相似度模型比较。
package feature

import "github.com/rushteam/tastekit/core"

// 演员按出场顺序衰减的权重：前三位 1.0 / 0.8 / 0.6，其余固定 0.3。
var actorRankWeights = []float64{1.0, 0.8, 0.6}

const actorTailWeight = 0.3

// Vector 是画像与候选共用的特征表示。
//
//	维度        画像侧                  候选侧
//	Genres      计数 / 维度总计数       1/N 均分
//	Actors      计数 / 维度总计数       按顺位衰减
//	Directors   计数 / 维度总计数       1/N 均分
//	Duration    平均时长                解析出的分钟数
//
// 空 map 表示该维度没有数据；Duration 为 0 表示未知。
type Vector struct {
	Genres    map[string]float64
	Actors    map[string]float64
	Directors map[string]float64
	Duration  float64
}

// FromPreferences 把画像转换为向量（profileToVector）。
func FromPreferences(p *core.Preferences) Vector {
	if p == nil {
		return Vector{
			Genres:    map[string]float64{},
			Actors:    map[string]float64{},
			Directors: map[string]float64{},
		}
	}
	return Vector{
		Genres:    normalizeCounts(p.GenreCounts),
		Actors:    normalizeCounts(p.ActorCounts),
		Directors: normalizeCounts(p.DirectorCounts),
		Duration:  p.AverageDuration,
	}
}

// FromRecord 把单条候选记录转换为向量（recordToVector）。
func FromRecord(rec *core.EnrichedRecord) Vector {
	if rec == nil {
		return FromPreferences(nil)
	}
	return Vector{
		Genres:    uniform(core.CleanList(rec.Genres)),
		Actors:    rankDecay(core.CleanList(rec.Cast)),
		Directors: uniform(core.CleanList(rec.Directors)),
		Duration:  float64(rec.Minutes()),
	}
}

func normalizeCounts(counts map[string]int) map[string]float64 {
	total := 0
	for _, c := range counts {
		if c > 0 {
			total += c
		}
	}
	out := make(map[string]float64, len(counts))
	if total == 0 {
		return out
	}
	for name, c := range counts {
		if c > 0 {
			out[name] = float64(c) / float64(total)
		}
	}
	return out
}

// uniform 均分权重；重复名称只计一次，保证权重和为 1。
func uniform(names []string) map[string]float64 {
	set := dedup(names)
	out := make(map[string]float64, len(set))
	if len(set) == 0 {
		return out
	}
	w := 1.0 / float64(len(set))
	for _, n := range set {
		out[n] = w
	}
	return out
}

func rankDecay(names []string) map[string]float64 {
	set := dedup(names)
	out := make(map[string]float64, len(set))
	for i, n := range set {
		if i < len(actorRankWeights) {
			out[n] = actorRankWeights[i]
		} else {
			out[n] = actorTailWeight
		}
	}
	return out
}

func dedup(names []string) []string {
	if len(names) < 2 {
		return names
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
