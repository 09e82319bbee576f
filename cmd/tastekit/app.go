package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/tastekit/config"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/enrich"
	"github.com/rushteam/tastekit/metrics"
	"github.com/rushteam/tastekit/pkg/logging"
	"github.com/rushteam/tastekit/recommend"
	"github.com/rushteam/tastekit/service"
	"github.com/rushteam/tastekit/store"
)

// application 持有一次命令执行所需的全部依赖。
type application struct {
	cfg     *config.App
	records core.RecordStore
	kv      core.KeyValueStore // 元数据缓存、黑名单等键值数据
	stdout  io.Writer

	closers []func() error
	metrics *http.Server
}

func newApplication(ctx context.Context, cfg *config.App, stdout io.Writer) (*application, error) {
	app := &application{cfg: cfg, stdout: stdout}
	sampler := store.NewSampler(cfg.Recommend.SampleSeed)

	switch cfg.Store.Driver {
	case config.DriverMemory:
		app.kv = store.NewMemoryStore()
		app.records = store.NewKVRecordStore(app.kv, cfg.Store.KeyPrefix, store.WithKVSampler(sampler))
	case config.DriverRedis:
		rs, err := store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisDB)
		if err != nil {
			return nil, err
		}
		app.kv = rs
		app.records = store.NewKVRecordStore(rs, cfg.Store.KeyPrefix, store.WithKVSampler(sampler))
		app.closers = append(app.closers, rs.Close)
	case config.DriverSQLite:
		sq, err := store.OpenSQLite(ctx, cfg.Store.SQLitePath, store.WithSQLiteSampler(sampler))
		if err != nil {
			return nil, err
		}
		app.records = sq
		app.kv = store.NewMemoryStore()
		app.closers = append(app.closers, sq.Close)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	logging.L().Debug().Str("driver", cfg.Store.Driver).Msg("record store ready")

	if addr := cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		app.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := app.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.L().Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
			}
		}()
		logging.L().Info().Str("addr", addr).Msg("serving /metrics")
	}
	return app, nil
}

// provider 按配置构建元数据服务，OMDb 结果按 cache_ttl 缓存。
func (a *application) provider() (enrich.MetadataProvider, error) {
	c := a.cfg.OMDb
	p, err := service.NewProvider(&service.ProviderConfig{
		Type:              a.cfg.Metadata.Provider,
		Endpoint:          c.BaseURL,
		APIKey:            c.APIKey,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		File:              a.cfg.Metadata.File,
	})
	if err != nil {
		return nil, err
	}
	if a.cfg.Metadata.Provider != config.ProviderOMDb || c.CacheTTL <= 0 {
		return p, nil
	}
	return enrich.NewCachedProvider(p, a.kv, c.CacheTTL), nil
}

func (a *application) engine() (*recommend.Engine, error) {
	rc := &a.cfg.Recommend
	scored, err := config.LoadPipeline(rc.PipelineFile, config.ScoredPipelineConfig())
	if err != nil {
		return nil, err
	}
	coldStart, err := config.LoadPipeline(rc.ColdStartPipelineFile, config.ColdStartPipelineConfig())
	if err != nil {
		return nil, err
	}
	return recommend.New(a.records,
		recommend.WithConfig(rc),
		recommend.WithKV(a.kv),
		recommend.WithScoredPipeline(scored),
		recommend.WithColdStartPipeline(coldStart),
		recommend.WithHooks(metrics.PipelineHook{}),
	)
}

func (a *application) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logging.L().Warn().Err(err).Msg("close failed")
		}
	}
}
