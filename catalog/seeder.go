package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pkg/logging"
)

// 默认写入参数
const (
	DefaultSeedBatchSize = 50
	DefaultSeedPause     = 100 * time.Millisecond
)

// Result 是一次种子写入的统计。
type Result struct {
	Success  int // 新写入
	Existing int // 已存在而跳过
	Errors   int // 写入失败
}

// Seeder 把记录分批写入 RecordStore，批之间短暂停顿。
type Seeder struct {
	records   core.RecordStore
	batchSize int
	pause     time.Duration
}

// SeederOption 配置 Seeder
type SeederOption func(*Seeder)

// WithSeedBatchSize 设置批大小
func WithSeedBatchSize(n int) SeederOption {
	return func(s *Seeder) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithSeedPause 设置批间停顿，0 表示不停顿
func WithSeedPause(d time.Duration) SeederOption {
	return func(s *Seeder) { s.pause = max(d, 0) }
}

// NewSeeder 创建 Seeder
func NewSeeder(records core.RecordStore, opts ...SeederOption) *Seeder {
	s := &Seeder{records: records, batchSize: DefaultSeedBatchSize, pause: DefaultSeedPause}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Seed 写入 recs。单条失败只计数不中断；存储不可用时同样逐条计入 Errors。
// ctx 取消时返回已完成部分与 ctx.Err()。
func (s *Seeder) Seed(ctx context.Context, recs []core.EnrichedRecord) (Result, error) {
	log := logging.Ctx(ctx)
	var res Result
	batches := (len(recs) + s.batchSize - 1) / s.batchSize

	for b := 0; b < batches; b++ {
		if b > 0 && s.pause > 0 {
			t := time.NewTimer(s.pause)
			select {
			case <-ctx.Done():
				t.Stop()
				return res, ctx.Err()
			case <-t.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := b * s.batchSize
		end := min(start+s.batchSize, len(recs))
		var ok, existing, failed int
		for i := start; i < end; i++ {
			rec := recs[i]
			_, err := s.records.InsertRecord(ctx, &rec)
			switch {
			case err == nil:
				ok++
			case errors.Is(err, core.ErrRecordExists):
				existing++
			default:
				failed++
				log.Debug().Err(err).Str("title", rec.Title).Msg("seed insert failed")
			}
		}
		res.Success += ok
		res.Existing += existing
		res.Errors += failed

		ev := log.Info()
		if failed > 0 {
			ev = log.Warn()
		}
		ev.Int("batch", b+1).Int("of", batches).Int("inserted", ok).Int("existing", existing).
			Int("failed", failed).Msg("seed batch done")
	}
	return res, nil
}
