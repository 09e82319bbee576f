package config

import (
	"fmt"

	"github.com/rushteam/tastekit/pipeline"
)

// 内置的两条推荐链路名称。
const (
	ScoredPipelineName    = "scored"
	ColdStartPipelineName = "cold_start"
)

// ScoredPipelineConfig 返回观影记录充足时的默认链路：
//
//	recall.catalog -> filter{watched} -> rank.content -> recall.genre_backfill
//	  -> rerank.diversity -> postprocess.explain
func ScoredPipelineConfig() *pipeline.Config {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = ScoredPipelineName
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "recall.catalog"},
		{Type: "filter", Config: map[string]any{
			"filters": []any{map[string]any{"type": "watched"}},
		}},
		{Type: "rank.content"},
		{Type: "recall.genre_backfill"},
		{Type: "rerank.diversity"},
		{Type: "postprocess.explain"},
	}
	return cfg
}

// ColdStartPipelineConfig 返回冷启动链路：
//
//	recall.popular -> filter{watched} -> rerank.topn
func ColdStartPipelineConfig() *pipeline.Config {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = ColdStartPipelineName
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "recall.popular"},
		{Type: "filter", Config: map[string]any{
			"filters": []any{map[string]any{"type": "watched"}},
		}},
		{Type: "rerank.topn"},
	}
	return cfg
}

// LoadPipeline 从文件加载链路配置；path 为空时使用 fallback。
// 加载结果会校验所有 Node 类型均已注册。
func LoadPipeline(path string, fallback *pipeline.Config) (*pipeline.Config, error) {
	cfg := fallback
	if path != "" {
		loaded, err := pipeline.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load pipeline %s: %w", path, err)
		}
		cfg = loaded
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BuildPipeline 使用 DefaultFactory 构建链路。
func BuildPipeline(cfg *pipeline.Config, bc *pipeline.BuildContext) (*pipeline.Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline config is nil")
	}
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(DefaultFactory(), bc)
}
