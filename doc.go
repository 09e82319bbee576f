// Package tastekit 根据用户的观影历史补全元数据、聚合口味画像，并生成带解释的相似推荐。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess），链路可由 YAML 定义
// - Labels-first: 召回来源、相似度、推荐理由以 labels 形式全链路透传
// - 存储可替换: 记录存储支持 Memory / Redis / SQLite，均实现 core.RecordStore
package tastekit

import "github.com/rushteam/tastekit/pipeline"

// 轻量 facade：便于直接 import "tastekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
