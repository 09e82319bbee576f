package enrich

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// HistorySource 提供用户的原始观影标题列表。
type HistorySource interface {
	Titles(ctx context.Context) ([]string, error)
}

// LineSource 每行读取一个标题，忽略空行。不解析任何文件格式。
type LineSource struct {
	R io.Reader
}

func (s LineSource) Titles(ctx context.Context) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(s.R)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StaticSource 是内存中的标题列表。
type StaticSource []string

func (s StaticSource) Titles(context.Context) ([]string, error) {
	return s, nil
}
