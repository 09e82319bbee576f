package core

import "sort"

// Preferences 是用户口味画像：由该用户全部 EnrichedRecord 聚合而来。
//
// 一句话定义：画像 = 计数分布 + 平均时长
//
// 它不持久化、不增量更新，每次都从记录全量重算：
//
//	维度        来源
//	类型计数    Genres
//	演员计数    Cast
//	导演计数    Directors
//	平均时长    Runtime 中可解析的分钟数
type Preferences struct {
	GenreCounts    map[string]int
	ActorCounts    map[string]int
	DirectorCounts map[string]int

	// AverageDuration 是可解析时长的均值（分钟），没有可解析时长时为 0
	AverageDuration float64

	// TotalMovies 是参与聚合的记录数
	TotalMovies int
}

// NewPreferences 创建一个空画像。
func NewPreferences() *Preferences {
	return &Preferences{
		GenreCounts:    make(map[string]int),
		ActorCounts:    make(map[string]int),
		DirectorCounts: make(map[string]int),
	}
}

// Aggregate 把一组记录归约为画像。纯函数，结果与输入顺序无关。
func Aggregate(records []EnrichedRecord) *Preferences {
	p := NewPreferences()
	var (
		durationSum   int
		durationCount int
	)
	for i := range records {
		rec := &records[i]
		countInto(p.GenreCounts, rec.Genres)
		countInto(p.ActorCounts, rec.Cast)
		countInto(p.DirectorCounts, rec.Directors)
		if m, ok := ParseMinutes(rec.Runtime); ok {
			durationSum += m
			durationCount++
		}
	}
	if durationCount > 0 {
		p.AverageDuration = float64(durationSum) / float64(durationCount)
	}
	p.TotalMovies = len(records)
	return p
}

func countInto(counts map[string]int, names []string) {
	for _, n := range CleanList(names) {
		counts[n]++
	}
}

// TopGenres 返回计数最高的 n 个类型（计数降序，同计数按名称升序）。
func (p *Preferences) TopGenres(n int) []string {
	if p == nil || n <= 0 || len(p.GenreCounts) == 0 {
		return nil
	}
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(p.GenreCounts))
	for g, c := range p.GenreCounts {
		pairs = append(pairs, pair{name: g, count: c})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, 0, len(pairs))
	for _, pr := range pairs {
		out = append(out, pr.name)
	}
	return out
}

// HasGenre / HasActor / HasDirector 判断画像中是否出现过该名称。
func (p *Preferences) HasGenre(name string) bool    { return p != nil && p.GenreCounts[name] > 0 }
func (p *Preferences) HasActor(name string) bool    { return p != nil && p.ActorCounts[name] > 0 }
func (p *Preferences) HasDirector(name string) bool { return p != nil && p.DirectorCounts[name] > 0 }
