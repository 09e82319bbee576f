// Package enrich 把用户的原始观影标题补全为带元数据的记录。
//
//	e := enrich.New(omdb, records, enrich.WithBatchSize(25), enrich.WithBatchDelay(1500*time.Millisecond))
//	res, err := e.Enrich(ctx, userID, titles)
//
// 流程：标题规范化去重 -> 已有记录直接复用 -> 未命中的查询元数据服务并写入存储。
// 同一批内的查询并发执行且互不影响（单个失败只跳过该标题），批与批之间按固定间隔等待。
package enrich

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/metrics"
	"github.com/rushteam/tastekit/pkg/logging"
)

// 默认调度参数
const (
	DefaultBatchSize  = 25
	DefaultBatchDelay = 1500 * time.Millisecond
)

// Progress 是补全进度快照，每批完成后更新。
type Progress struct {
	Processed    int // 已处理的去重标题数
	Total        int // 去重后的标题总数
	Batch        int // 已完成的批次（从 1 开始）
	TotalBatches int
}

// Result 是一次补全的结果。
type Result struct {
	// Records 是成功解析的记录，按标题首次出现的顺序排列
	Records []core.EnrichedRecord
	Reused  int // 存储中已有、直接复用
	Fetched int // 新查询并写入
	Failed  int // 查询或写入失败而跳过
}

// Enricher 可复用，但同一时刻只应有一次 Enrich 在更新 Progress。
type Enricher struct {
	provider   MetadataProvider
	records    core.RecordStore
	batchSize  int
	batchDelay time.Duration
	onProgress func(Progress)
	logger     *zerolog.Logger

	mu       sync.RWMutex
	progress Progress
}

// Option 配置 Enricher。
type Option func(*Enricher)

// WithBatchSize 设置每批并发的标题数，<=0 时忽略。
func WithBatchSize(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithBatchDelay 设置批次之间的等待时间，0 表示不等待。
func WithBatchDelay(d time.Duration) Option {
	return func(e *Enricher) { e.batchDelay = max(d, 0) }
}

// WithProgress 设置每批完成后的回调（在 Enrich 所在 goroutine 中同步调用）。
func WithProgress(fn func(Progress)) Option {
	return func(e *Enricher) { e.onProgress = fn }
}

// WithLogger 指定 logger，默认使用 logging.Ctx(ctx)。
func WithLogger(l zerolog.Logger) Option {
	return func(e *Enricher) { e.logger = &l }
}

// New 创建 Enricher。
func New(provider MetadataProvider, records core.RecordStore, opts ...Option) *Enricher {
	e := &Enricher{
		provider:   provider,
		records:    records,
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Progress 返回当前进度快照。
func (e *Enricher) Progress() Progress {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.progress
}

func (e *Enricher) log(ctx context.Context) *zerolog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.Ctx(ctx)
}

type titleKey struct {
	key   string // 规范化后的查询 key
	title string // 该 key 首次出现时的原始标题
}

type outcome struct {
	rec    *core.EnrichedRecord
	status string
}

// Enrich 补全 titles 并返回成功解析的记录。
//
// 单个标题的查询或写入失败只会跳过该标题；尝试了至少一个标题却全部失败时返回 ErrNoTitlesResolved。
// ctx 取消时在下一批开始前停止，返回已完成部分与 ctx.Err()。
func (e *Enricher) Enrich(ctx context.Context, userID string, titles []string) (Result, error) {
	if userID == "" {
		return Result{}, core.ErrMissingUserID
	}
	keys := dedup(titles)
	log := e.log(ctx)

	totalBatches := (len(keys) + e.batchSize - 1) / e.batchSize
	e.setProgress(Progress{Total: len(keys), TotalBatches: totalBatches})
	log.Info().Str("user_id", userID).Int("titles", len(titles)).Int("unique", len(keys)).
		Int("batches", totalBatches).Msg("enrich started")

	outcomes := make([]outcome, len(keys))
	processed := 0
	var stopErr error

	for b := 0; b < totalBatches; b++ {
		if b > 0 {
			if err := sleep(ctx, e.batchDelay); err != nil {
				stopErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}

		start := b * e.batchSize
		end := min(start+e.batchSize, len(keys))
		batchStart := time.Now()

		// 全部完成才结束本批：goroutine 从不返回错误，单个失败不会取消其他查询
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				outcomes[i] = e.resolve(ctx, userID, keys[i])
				return nil
			})
		}
		_ = g.Wait()

		elapsed := time.Since(batchStart)
		metrics.RecordEnrichBatch(elapsed)
		processed = end
		p := Progress{Processed: processed, Total: len(keys), Batch: b + 1, TotalBatches: totalBatches}
		e.setProgress(p)
		if e.onProgress != nil {
			e.onProgress(p)
		}
		log.Info().Int("batch", b+1).Int("of", totalBatches).Int("processed", processed).
			Dur("elapsed", elapsed).Msg("enrich batch done")
	}

	res := Result{}
	for i := 0; i < processed; i++ {
		o := outcomes[i]
		metrics.RecordEnrichTitle(o.status)
		switch o.status {
		case metrics.OutcomeReused:
			res.Reused++
		case metrics.OutcomeFetched:
			res.Fetched++
		default:
			res.Failed++
			continue
		}
		res.Records = append(res.Records, *o.rec)
	}

	log.Info().Str("user_id", userID).Int("reused", res.Reused).Int("fetched", res.Fetched).
		Int("failed", res.Failed).Msg("enrich finished")

	if stopErr != nil {
		return res, stopErr
	}
	if processed > 0 && len(res.Records) == 0 {
		return res, ErrNoTitlesResolved
	}
	return res, nil
}

// resolve 处理单个标题：已有记录复用，否则查询并写入。
func (e *Enricher) resolve(ctx context.Context, userID string, tk titleKey) outcome {
	log := e.log(ctx).With().Str("title", tk.title).Str("key", tk.key).Logger()

	existing, err := e.records.FindRecord(ctx, userID, tk.title)
	if err == nil {
		log.Debug().Msg("reuse stored record")
		return outcome{rec: existing, status: metrics.OutcomeReused}
	}
	if !core.IsStoreNotFound(err) {
		// 读取失败按未命中处理，写入时的唯一约束兜底
		log.Debug().Err(err).Msg("find record failed, treating as miss")
	}

	md, err := e.provider.Lookup(ctx, tk.key)
	if err != nil {
		if IsMetadataNotFound(err) {
			log.Debug().Msg("metadata not found")
		} else {
			log.Warn().Err(err).Msg("metadata lookup failed")
		}
		return outcome{status: metrics.OutcomeFailed}
	}

	stored, err := e.records.InsertRecord(ctx, md.Record(userID, tk.title))
	if errors.Is(err, core.ErrRecordExists) {
		existing, ferr := e.records.FindRecord(ctx, userID, tk.title)
		if ferr != nil {
			log.Warn().Err(ferr).Msg("re-read after insert conflict failed")
			return outcome{status: metrics.OutcomeFailed}
		}
		log.Debug().Msg("record inserted concurrently, reusing")
		return outcome{rec: existing, status: metrics.OutcomeReused}
	}
	if err != nil {
		log.Warn().Err(err).Msg("insert record failed")
		return outcome{status: metrics.OutcomeFailed}
	}
	log.Debug().Msg("record fetched")
	return outcome{rec: stored, status: metrics.OutcomeFetched}
}

// EnrichFrom 从 HistorySource 读取标题后补全。
func (e *Enricher) EnrichFrom(ctx context.Context, userID string, src HistorySource) (Result, error) {
	if userID == "" {
		return Result{}, core.ErrMissingUserID
	}
	titles, err := src.Titles(ctx)
	if err != nil {
		return Result{}, core.WrapDomainError(core.ModuleEnrich, core.ErrorCodeInvalidInput, "read history", err)
	}
	return e.Enrich(ctx, userID, titles)
}

func (e *Enricher) setProgress(p Progress) {
	e.mu.Lock()
	e.progress = p
	e.mu.Unlock()
}

// dedup 按规范化 key 去重，保留首次出现的原始标题；key 为空的标题跳过。
func dedup(titles []string) []titleKey {
	seen := make(map[string]struct{}, len(titles))
	out := make([]titleKey, 0, len(titles))
	for _, t := range titles {
		k := NormalizeTitle(t)
		if k == "" {
			metrics.RecordEnrichTitle(metrics.OutcomeSkipped)
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, titleKey{key: k, title: t})
	}
	return out
}

// sleep 等待 d 或 ctx 取消。
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
