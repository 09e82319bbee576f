package catalog

import (
	"context"

	"github.com/rushteam/tastekit/core"
)

// QualityReport 统计样本中各字段的覆盖情况。
type QualityReport struct {
	Total     int // 样本数
	WithCast  int
	WithDir   int
	WithGenre int
	WithTime  int
	Complete  int // 类型、演员、导演齐全
	Samples   []core.EnrichedRecord
}

// Inspect 检查 userID 之外（通常为空字符串，即全部记录）的前 sample 条记录。
// sample<=0 时检查全部。
func Inspect(ctx context.Context, records core.RecordStore, userID string, sample int) (QualityReport, error) {
	recs, err := records.ListRecordsExcludingUser(ctx, userID)
	if err != nil {
		return QualityReport{}, err
	}
	if sample > 0 && len(recs) > sample {
		recs = recs[:sample]
	}
	return Summarize(recs), nil
}

// Summarize 计算 recs 的质量统计。
func Summarize(recs []core.EnrichedRecord) QualityReport {
	r := QualityReport{Total: len(recs), Samples: recs}
	for i := range recs {
		rec := &recs[i]
		if len(rec.Cast) > 0 {
			r.WithCast++
		}
		if len(rec.Directors) > 0 {
			r.WithDir++
		}
		if len(rec.Genres) > 0 {
			r.WithGenre++
		}
		if rec.Runtime != "" {
			r.WithTime++
		}
		if rec.HasFullMetadata() {
			r.Complete++
		}
	}
	return r
}
