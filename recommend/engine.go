// Package recommend 是推荐排序的入口：根据用户画像选择冷启动或打分链路并执行。
//
//	eng, err := recommend.New(records)
//	recs, err := eng.Recommend(ctx, userID, prefs, 10)
package recommend

import (
	"context"
	"time"

	"github.com/rushteam/tastekit/config"
	_ "github.com/rushteam/tastekit/config/builders"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/filter"
	"github.com/rushteam/tastekit/metrics"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/logging"
)

// Recommendation 是一条推荐结果：记录、相似度（[0,1]）与推荐理由。
type Recommendation struct {
	Record     core.EnrichedRecord
	Similarity float64
	Reason     string
}

// Engine 持有两条预先构建好的链路，可并发调用。
type Engine struct {
	records   core.RecordStore
	watched   filter.WatchedStore
	cfg       core.RecommendConfig
	scored    *pipeline.Pipeline
	coldStart *pipeline.Pipeline
}

type options struct {
	cfg       core.RecommendConfig
	kv        core.Store
	scored    *pipeline.Config
	coldStart *pipeline.Config
	hooks     []pipeline.Hook
}

// Option 配置 Engine。
type Option func(*options)

// WithConfig 设置默认参数（条数、阈值、冷启动门槛等）。
func WithConfig(cfg core.RecommendConfig) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithKV 提供黑名单等过滤器使用的键值存储。
func WithKV(kv core.Store) Option {
	return func(o *options) { o.kv = kv }
}

// WithScoredPipeline 替换打分链路定义。
func WithScoredPipeline(cfg *pipeline.Config) Option {
	return func(o *options) { o.scored = cfg }
}

// WithColdStartPipeline 替换冷启动链路定义。
func WithColdStartPipeline(cfg *pipeline.Config) Option {
	return func(o *options) { o.coldStart = cfg }
}

// WithHooks 为两条链路追加 Hook。
func WithHooks(hooks ...pipeline.Hook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

// New 构建推荐引擎。链路在这里一次性构建，配置错误会立即返回。
func New(records core.RecordStore, opts ...Option) (*Engine, error) {
	if records == nil {
		return nil, core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, "record store is required")
	}
	o := &options{
		cfg:       &core.DefaultRecommendConfig{},
		scored:    config.ScoredPipelineConfig(),
		coldStart: config.ColdStartPipelineConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}

	bc := &pipeline.BuildContext{Records: records, KV: o.kv, Defaults: o.cfg}
	scored, err := config.BuildPipeline(o.scored, bc)
	if err != nil {
		return nil, err
	}
	coldStart, err := config.BuildPipeline(o.coldStart, bc)
	if err != nil {
		return nil, err
	}
	scored.Use(o.hooks...)
	coldStart.Use(o.hooks...)

	return &Engine{
		records:   records,
		watched:   filter.NewStoreAdapter(records, o.kv),
		cfg:       o.cfg,
		scored:    scored,
		coldStart: coldStart,
	}, nil
}

// Recommend 为用户生成最多 limit 条推荐，按相似度降序。
//
// limit <= 0 时使用默认条数；userID 为空时不做任何 I/O，直接返回 ErrMissingUserID。
// 已看过集合或候选集读取失败时整体失败，不返回部分结果。
func (e *Engine) Recommend(ctx context.Context, userID string, prefs *core.Preferences, limit int) ([]Recommendation, error) {
	if userID == "" {
		return nil, core.ErrMissingUserID
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit()
	}
	if prefs == nil {
		prefs = core.NewPreferences()
	}
	if logging.CorrelationID(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	mode := metrics.ModeScored
	p := e.scored
	if prefs.TotalMovies < e.cfg.ColdStartMinMovies() {
		mode = metrics.ModeColdStart
		p = e.coldStart
	}

	start := time.Now()
	out, err := e.run(ctx, p, userID, prefs, limit)
	elapsed := time.Since(start)
	metrics.RecordRecommend(mode, len(out), elapsed, err)

	log := logging.Ctx(ctx)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("mode", mode).Msg("recommend failed")
		return nil, err
	}
	log.Info().
		Str("user_id", userID).
		Str("mode", mode).
		Int("total_movies", prefs.TotalMovies).
		Int("results", len(out)).
		Dur("elapsed", elapsed).
		Msg("recommend done")
	return out, nil
}

// RecommendForUser 从存储读取用户全部记录并聚合画像，再调用 Recommend。
func (e *Engine) RecommendForUser(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	if userID == "" {
		return nil, core.ErrMissingUserID
	}
	recs, err := e.records.ListRecordsForUser(ctx, userID)
	if err != nil {
		return nil, core.StoreUnavailable("list user records", err)
	}
	return e.Recommend(ctx, userID, core.Aggregate(recs), limit)
}

func (e *Engine) run(ctx context.Context, p *pipeline.Pipeline, userID string, prefs *core.Preferences, limit int) ([]Recommendation, error) {
	watched, err := e.watched.WatchedTitles(ctx, userID)
	if err != nil {
		return nil, core.StoreUnavailable("list watched titles", err)
	}

	rctx := &core.RecommendContext{
		UserID:  userID,
		Profile: prefs,
		Limit:   limit,
		Watched: watched,
	}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil || it.Record == nil {
			continue
		}
		out = append(out, Recommendation{
			Record:     *it.Record,
			Similarity: it.Score,
			Reason:     it.Reason,
		})
	}
	return out, nil
}
