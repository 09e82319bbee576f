package pipeline

import (
	"context"

	"github.com/rushteam/tastekit/core"
)

// Kind 标记 Node 所处阶段，metrics 按阶段统计耗时与条数。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：生成或补齐候选集
	KindFilter      Kind = "filter"      // 过滤阶段：剔除已看过/黑名单候选
	KindRank        Kind = "rank"        // 排序阶段：对候选打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：多样性与截断
	KindPostProcess Kind = "postprocess" // 后处理阶段：生成推荐理由
)

// Node 是推荐链路中的一个步骤：接收上一步的候选片单，返回处理后的片单。
// Recall 节点在已有候选之后追加，其余节点只删减、打分或重排。
// 返回 error 会中止整条链路。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
