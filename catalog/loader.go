package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rushteam/tastekit/core"
)

// Loader 打开 CSV 数据源（本地文件或 HTTP 地址）。
type Loader interface {
	Open(ctx context.Context, source string) (io.ReadCloser, error)
}

// FileLoader 本地文件加载器
type FileLoader struct{}

// Open 打开本地文件
func (FileLoader) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// HTTPLoader HTTP 加载器
//
//	loader := catalog.NewHTTPLoader(30 * time.Second)
//	rc, err := loader.Open(ctx, "https://example.com/tmdb_5000_movies.csv")
type HTTPLoader struct {
	client *http.Client
}

// NewHTTPLoader 创建 HTTP 加载器，timeout 为 0 时使用 30s
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPLoader{client: &http.Client{Timeout: timeout}}
}

// NewHTTPLoaderWithClient 使用自定义 HTTP 客户端
func NewHTTPLoaderWithClient(client *http.Client) *HTTPLoader {
	return &HTTPLoader{client: client}
}

// Open 发起 GET 请求，返回响应体，调用方负责关闭
func (l *HTTPLoader) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("request %s: status=%d, body=%s", url, resp.StatusCode, string(body))
	}
	return resp.Body, nil
}

// AutoLoader 按前缀选择：http(s):// 走 HTTP，其余按本地文件。
type AutoLoader struct {
	HTTP *HTTPLoader
}

// Open 实现 Loader
func (l AutoLoader) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		h := l.HTTP
		if h == nil {
			h = NewHTTPLoader(0)
		}
		return h.Open(ctx, source)
	}
	return FileLoader{}.Open(ctx, source)
}

// LoadRecords 读取 movies 与 credits 两个数据源并构建目录记录。credits 为空时只使用电影信息。
func LoadRecords(ctx context.Context, loader Loader, moviesSrc, creditsSrc string) ([]core.EnrichedRecord, error) {
	rc, err := loader.Open(ctx, moviesSrc)
	if err != nil {
		return nil, err
	}
	movies, err := ReadMovies(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("parse movies: %w", err)
	}

	credits := map[string]Credit{}
	if creditsSrc != "" {
		rc, err := loader.Open(ctx, creditsSrc)
		if err != nil {
			return nil, err
		}
		credits, err = ReadCredits(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse credits: %w", err)
		}
	}
	return BuildRecords(movies, credits), nil
}
