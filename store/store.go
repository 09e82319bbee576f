// Package store 提供 core 层存储接口的实现。
//
// KV 层（core.Store / core.KeyValueStore）：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	kv, err := store.NewRedisStore("localhost:6379", 0)
//
// 记录层（core.RecordStore）：
//
//	var records core.RecordStore = store.NewKVRecordStore(kv, "tastekit")
//	records, err := store.OpenSQLite(ctx, "tastekit.db")
package store

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rushteam/tastekit/core"
)

// NewSampler 创建随机采样器；seed 为 0 时使用当前时间作为种子。
func NewSampler(seed uint64) core.Sampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// samplePool 实现热门/类型采样的统一规则：
// 取前 2*limit 条，打乱，再取前 limit 条。
func samplePool(pool []core.EnrichedRecord, limit int, s core.Sampler) []core.EnrichedRecord {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}
	if len(pool) > 2*limit {
		pool = pool[:2*limit]
	}
	out := make([]core.EnrichedRecord, len(pool))
	copy(out, pool)
	if s != nil {
		s.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// matchesAnyGenre 判断记录的类型文本是否包含任一目标类型（大小写不敏感的子串匹配）。
func matchesAnyGenre(rec *core.EnrichedRecord, lowered []string) bool {
	if len(rec.Genres) == 0 {
		return false
	}
	text := strings.ToLower(strings.Join(rec.Genres, ", "))
	for _, g := range lowered {
		if g != "" && strings.Contains(text, g) {
			return true
		}
	}
	return false
}

func lowerAll(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			out = append(out, g)
		}
	}
	return out
}
