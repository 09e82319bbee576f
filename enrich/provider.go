package enrich

import (
	"context"

	"github.com/rushteam/tastekit/core"
)

// Metadata 是元数据服务返回的一部作品的信息，缺失字段为空。
type Metadata struct {
	Title     string   `json:"title,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Cast      []string `json:"cast,omitempty"`
	Directors []string `json:"directors,omitempty"`
	Runtime   string   `json:"runtime,omitempty"`
	PosterURL string   `json:"poster_url,omitempty"`
}

// Record 以原始标题构造待写入的记录。
func (m *Metadata) Record(userID, title string) *core.EnrichedRecord {
	return &core.EnrichedRecord{
		UserID:    userID,
		Title:     title,
		Genres:    core.CleanList(m.Genres),
		Cast:      core.CleanList(m.Cast),
		Directors: core.CleanList(m.Directors),
		Runtime:   core.CleanText(m.Runtime),
		PosterURL: core.CleanText(m.PosterURL),
	}
}

// MetadataProvider 按规范化标题查询元数据。
// 找不到时返回 ErrMetadataNotFound；其余错误视为传输失败。两者对补全流程都不是致命错误。
type MetadataProvider interface {
	Lookup(ctx context.Context, title string) (*Metadata, error)
}

// ProviderFunc 把普通函数适配为 MetadataProvider。
type ProviderFunc func(ctx context.Context, title string) (*Metadata, error)

func (f ProviderFunc) Lookup(ctx context.Context, title string) (*Metadata, error) {
	return f(ctx, title)
}

var (
	// ErrMetadataNotFound 表示元数据服务没有该标题
	ErrMetadataNotFound = core.NewDomainError(core.ModuleProvider, core.ErrorCodeNotFound, "metadata not found")

	// ErrNoTitlesResolved 表示尝试了至少一个标题但全部失败
	ErrNoTitlesResolved = core.NewDomainError(core.ModuleEnrich, core.ErrorCodeUnavailable, "no titles could be resolved")
)

// IsMetadataNotFound 判断是否为元数据不存在。
func IsMetadataNotFound(err error) bool {
	de := core.GetDomainError(err)
	return de != nil && de.Module == core.ModuleProvider && de.Code == core.ErrorCodeNotFound
}
