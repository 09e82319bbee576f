// Package metrics 定义补全与推荐链路的 Prometheus 指标。
//
// 指标在包初始化时注册到默认 Registry，CLI 通过 promhttp.Handler() 暴露：
//
//	metrics.RecordEnrichTitle(metrics.OutcomeFetched)
//	p.Use(metrics.PipelineHook{})
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pipeline"
)

// 单个标题的补全结果
const (
	OutcomeReused  = "reused"
	OutcomeFetched = "fetched"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// 推荐模式与结果
const (
	ModeColdStart = "cold_start"
	ModeScored    = "scored"

	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// EnrichTitlesTotal 按结果统计处理过的标题数。
	EnrichTitlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastekit_enrich_titles_total",
			Help: "Titles processed by the enrichment pipeline, by outcome",
		},
		[]string{"outcome"},
	)

	// EnrichBatchDuration 统计单批补全耗时（不含批间等待）。
	EnrichBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tastekit_enrich_batch_duration_seconds",
			Help:    "Duration of one enrichment batch in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastekit_recommend_requests_total",
			Help: "Recommendation requests, by mode and result",
		},
		[]string{"mode", "result"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tastekit_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// RecommendResults 统计每次推荐返回的条数。
	RecommendResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tastekit_recommend_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	PipelineNodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tastekit_pipeline_node_duration_seconds",
			Help:    "Duration of a single pipeline node in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"node", "kind"},
	)
)

// RecordEnrichTitle 记录一个标题的补全结果。
func RecordEnrichTitle(outcome string) {
	EnrichTitlesTotal.WithLabelValues(outcome).Inc()
}

// RecordEnrichBatch 记录一批补全的耗时。
func RecordEnrichBatch(elapsed time.Duration) {
	EnrichBatchDuration.Observe(elapsed.Seconds())
}

// RecordRecommend 记录一次推荐请求。
func RecordRecommend(mode string, results int, elapsed time.Duration, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	RecommendRequestsTotal.WithLabelValues(mode, result).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	if err == nil {
		RecommendResults.Observe(float64(results))
	}
}

// PipelineHook 把每个 Node 的耗时写入 PipelineNodeDuration。
type PipelineHook struct{}

var _ pipeline.Hook = PipelineHook{}

func (PipelineHook) BeforeNode(context.Context, *core.RecommendContext, pipeline.Node, int) {}

func (PipelineHook) AfterNode(_ context.Context, _ *core.RecommendContext, node pipeline.Node, _ int, elapsed time.Duration, _ error) {
	PipelineNodeDuration.WithLabelValues(node.Name(), string(node.Kind())).Observe(elapsed.Seconds())
}
