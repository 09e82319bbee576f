package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pkg/logging"
)

// EnvPrefix 是环境变量前缀，段与字段之间用双下划线分隔：
//
//	TASTEKIT_ENRICH__BATCH_SIZE=10  ->  enrich.batch_size
//	TASTEKIT_STORE__DRIVER=redis    ->  store.driver
const EnvPrefix = "TASTEKIT_"

// 存储驱动
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// 元数据服务
const (
	ProviderOMDb = "omdb"
	ProviderFile = "file"
)

// App 是进程级配置。
type App struct {
	Log       LogConfig       `koanf:"log"`
	Enrich    EnrichConfig    `koanf:"enrich"`
	Recommend RecommendConfig `koanf:"recommend"`
	Store     StoreConfig     `koanf:"store"`
	Metadata  MetadataConfig  `koanf:"metadata"`
	OMDb      OMDbConfig      `koanf:"omdb"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Logging 转换为 logging.Init 的参数。
func (c LogConfig) Logging() logging.Config {
	return logging.Config{Level: c.Level, Format: c.Format, Caller: c.Caller}
}

// EnrichConfig 是批量补全的调度参数。
type EnrichConfig struct {
	BatchSize  int           `koanf:"batch_size"`
	BatchDelay time.Duration `koanf:"batch_delay"` // 批次之间的间隔，0 表示不等待
}

// RecommendConfig 是推荐排序参数，实现 core.RecommendConfig。
type RecommendConfig struct {
	Limit                 int     `koanf:"limit"`
	SimilarityThreshold   float64 `koanf:"min_similarity"`
	ColdStartThreshold    int     `koanf:"cold_start_min_movies"`
	PopularFixedScore     float64 `koanf:"popular_score"`
	BackfillFixedScore    float64 `koanf:"backfill_score"`
	BackfillGenres        int     `koanf:"backfill_top_genres"`
	PipelineFile          string  `koanf:"pipeline_file"`
	ColdStartPipelineFile string  `koanf:"cold_start_pipeline_file"`
	SampleSeed            uint64  `koanf:"sample_seed"` // 0 表示按时间播种
}

var _ core.RecommendConfig = (*RecommendConfig)(nil)

func (c *RecommendConfig) DefaultLimit() int       { return c.Limit }
func (c *RecommendConfig) MinSimilarity() float64  { return c.SimilarityThreshold }
func (c *RecommendConfig) ColdStartMinMovies() int { return c.ColdStartThreshold }
func (c *RecommendConfig) PopularScore() float64   { return c.PopularFixedScore }
func (c *RecommendConfig) BackfillScore() float64  { return c.BackfillFixedScore }
func (c *RecommendConfig) BackfillTopGenres() int  { return c.BackfillGenres }

type StoreConfig struct {
	Driver     string `koanf:"driver"` // memory / redis / sqlite
	RedisAddr  string `koanf:"redis_addr"`
	RedisDB    int    `koanf:"redis_db"`
	SQLitePath string `koanf:"sqlite_path"`
	KeyPrefix  string `koanf:"key_prefix"`
}

// MetadataConfig 选择元数据服务：omdb 或 file（本地 JSON）。
type MetadataConfig struct {
	Provider string `koanf:"provider"`
	File     string `koanf:"file"`
}

type OMDbConfig struct {
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"` // <=0 表示不限速
	CacheTTL          time.Duration `koanf:"cache_ttl"`           // 0 表示不缓存
}

// CatalogConfig 是目录种子导入的参数。
type CatalogConfig struct {
	BatchSize  int           `koanf:"batch_size"`
	BatchPause time.Duration `koanf:"batch_pause"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"` // 为空时不暴露 /metrics
}

// DefaultApp 返回内置默认配置。
func DefaultApp() *App {
	return &App{
		Log: LogConfig{Level: "info", Format: "console"},
		Enrich: EnrichConfig{
			BatchSize:  25,
			BatchDelay: 1500 * time.Millisecond,
		},
		Recommend: RecommendConfig{
			Limit:               core.DefaultLimit,
			SimilarityThreshold: core.DefaultMinSimilarity,
			ColdStartThreshold:  core.DefaultColdStartMinMovies,
			PopularFixedScore:   core.DefaultPopularScore,
			BackfillFixedScore:  core.DefaultBackfillScore,
			BackfillGenres:      core.DefaultBackfillTopGenres,
		},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			RedisAddr:  "localhost:6379",
			SQLitePath: "tastekit.db",
			KeyPrefix:  "tastekit",
		},
		Metadata: MetadataConfig{Provider: ProviderOMDb},
		OMDb: OMDbConfig{
			BaseURL:           "https://www.omdbapi.com/",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			CacheTTL:          24 * time.Hour,
		},
		Catalog: CatalogConfig{
			BatchSize:  50,
			BatchPause: 100 * time.Millisecond,
		},
	}
}

// LoadApp 按“默认值 -> YAML 文件 -> 环境变量”的顺序叠加加载配置，后者覆盖前者。
// path 为空时跳过文件层。
func LoadApp(path string) (*App, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultApp(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeNotFound, "config file "+path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &App{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey 把 TASTEKIT_ENRICH__BATCH_SIZE 转换为 enrich.batch_size。
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate 校验配置取值范围。
func (c *App) Validate() error {
	invalid := func(format string, args ...any) error {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, fmt.Sprintf(format, args...))
	}

	if c.Enrich.BatchSize <= 0 {
		return invalid("enrich.batch_size must be positive, got %d", c.Enrich.BatchSize)
	}
	if c.Enrich.BatchDelay < 0 {
		return invalid("enrich.batch_delay must not be negative, got %s", c.Enrich.BatchDelay)
	}

	r := c.Recommend
	if r.Limit <= 0 {
		return invalid("recommend.limit must be positive, got %d", r.Limit)
	}
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold > 1 {
		return invalid("recommend.min_similarity must be within [0,1], got %v", r.SimilarityThreshold)
	}
	if r.ColdStartThreshold < 0 {
		return invalid("recommend.cold_start_min_movies must not be negative, got %d", r.ColdStartThreshold)
	}
	if r.BackfillGenres <= 0 {
		return invalid("recommend.backfill_top_genres must be positive, got %d", r.BackfillGenres)
	}

	switch c.Store.Driver {
	case DriverMemory, DriverRedis, DriverSQLite:
	default:
		return invalid("store.driver %q is not one of memory, redis, sqlite", c.Store.Driver)
	}

	switch c.Metadata.Provider {
	case ProviderOMDb:
	case ProviderFile:
		if c.Metadata.File == "" {
			return invalid("metadata.file is required when metadata.provider is file")
		}
	default:
		return invalid("metadata.provider %q is not one of omdb, file", c.Metadata.Provider)
	}

	if c.Catalog.BatchSize <= 0 {
		return invalid("catalog.batch_size must be positive, got %d", c.Catalog.BatchSize)
	}
	if c.OMDb.Timeout < 0 || c.OMDb.CacheTTL < 0 {
		return invalid("omdb timeouts must not be negative")
	}
	return nil
}
