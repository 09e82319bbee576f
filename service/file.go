package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/tastekit/enrich"
)

// FileProvider 从本地 JSON 文件提供元数据，查询时标题大小写不敏感。
//
// 文件可以是数组：
//
//	[{"title": "Heat", "genres": ["Crime"], "cast": ["Al Pacino"], "directors": ["Michael Mann"], "runtime": "170 min"}]
//
// 也可以是以标题为键的对象：
//
//	{"Heat": {"genres": ["Crime"], ...}}
type FileProvider struct {
	byTitle map[string]*enrich.Metadata
}

// NewFileProvider 用内存中的元数据构建 provider
func NewFileProvider(items []enrich.Metadata) *FileProvider {
	p := &FileProvider{byTitle: make(map[string]*enrich.Metadata, len(items))}
	for i := range items {
		md := items[i]
		if k := fileKey(md.Title); k != "" {
			p.byTitle[k] = &md
		}
	}
	return p
}

// LoadFileProvider 从 path 读取 JSON 元数据
func LoadFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '{' {
		var byTitle map[string]enrich.Metadata
		if err := json.Unmarshal(data, &byTitle); err != nil {
			return nil, fmt.Errorf("parse metadata file %s: %w", path, err)
		}
		items := make([]enrich.Metadata, 0, len(byTitle))
		for title, md := range byTitle {
			if md.Title == "" {
				md.Title = title
			}
			items = append(items, md)
		}
		return NewFileProvider(items), nil
	}

	var items []enrich.Metadata
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse metadata file %s: %w", path, err)
	}
	return NewFileProvider(items), nil
}

func fileKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Lookup 实现 enrich.MetadataProvider
func (p *FileProvider) Lookup(ctx context.Context, title string) (*enrich.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	md, ok := p.byTitle[fileKey(title)]
	if !ok {
		return nil, enrich.ErrMetadataNotFound
	}
	out := *md
	return &out, nil
}

// Len 返回条目数
func (p *FileProvider) Len() int { return len(p.byTitle) }
