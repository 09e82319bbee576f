package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/enrich"
	"github.com/rushteam/tastekit/pkg/logging"
)

// DefaultOMDbBaseURL 是 OMDb 公共接口地址。
const DefaultOMDbBaseURL = "https://www.omdbapi.com/"

// OMDbClient 是 OMDb 元数据服务的客户端，实现 enrich.MetadataProvider。
//
// 接口：GET {base}?t={title}&apikey={key}
//   - 响应：{"Title","Genre","Actors","Director","Runtime","Poster","Response","Error"}
//   - Response == "False" 表示没有该标题，映射为 enrich.ErrMetadataNotFound
//   - 列表字段逗号分隔，缺失为 "N/A"
//
// 请求经过客户端限速与熔断：连续传输失败达到阈值后熔断一段时间，期间直接返回 UNAVAILABLE。
// “找不到”不计为失败。
type OMDbClient struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*enrich.Metadata]

	failureThreshold uint32
	openTimeout      time.Duration
}

// OMDbOption 配置 OMDb 客户端
type OMDbOption func(*OMDbClient)

// WithOMDbBaseURL 设置接口地址（测试中指向 httptest）
func WithOMDbBaseURL(u string) OMDbOption {
	return func(c *OMDbClient) {
		if u != "" {
			c.BaseURL = u
		}
	}
}

// WithOMDbTimeout 设置单次请求超时
func WithOMDbTimeout(timeout time.Duration) OMDbOption {
	return func(c *OMDbClient) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithOMDbRateLimit 设置每秒请求数，<=0 表示不限速
func WithOMDbRateLimit(rps float64) OMDbOption {
	return func(c *OMDbClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithOMDbBreaker 设置熔断参数：连续失败 failures 次后熔断 openTimeout
func WithOMDbBreaker(failures uint32, openTimeout time.Duration) OMDbOption {
	return func(c *OMDbClient) {
		if failures > 0 {
			c.failureThreshold = failures
		}
		if openTimeout > 0 {
			c.openTimeout = openTimeout
		}
	}
}

// WithOMDbHTTPClient 设置自定义 HTTP 客户端
func WithOMDbHTTPClient(client *http.Client) OMDbOption {
	return func(c *OMDbClient) {
		c.httpClient = client
	}
}

// NewOMDbClient 创建 OMDb 客户端，apiKey 必填。
func NewOMDbClient(apiKey string, opts ...OMDbOption) (*OMDbClient, error) {
	if apiKey == "" {
		return nil, core.NewDomainError(core.ModuleProvider, core.ErrorCodeInvalidInput, "omdb api key is required")
	}
	c := &OMDbClient{
		BaseURL:          DefaultOMDbBaseURL,
		APIKey:           apiKey,
		Timeout:          10 * time.Second,
		limiter:          rate.NewLimiter(10, 1),
		failureThreshold: 5,
		openTimeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}

	c.breaker = gobreaker.NewCircuitBreaker[*enrich.Metadata](gobreaker.Settings{
		Name:    "omdb",
		Timeout: c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.failureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || enrich.IsMetadataNotFound(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.L().Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	return c, nil
}

var _ enrich.MetadataProvider = (*OMDbClient)(nil)

// omdbResponse 是 OMDb 的响应体
type omdbResponse struct {
	Title    string `json:"Title"`
	Genre    string `json:"Genre"`
	Actors   string `json:"Actors"`
	Director string `json:"Director"`
	Runtime  string `json:"Runtime"`
	Poster   string `json:"Poster"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Lookup 实现 enrich.MetadataProvider。
func (c *OMDbClient) Lookup(ctx context.Context, title string) (*enrich.Metadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	md, err := c.breaker.Execute(func() (*enrich.Metadata, error) {
		return c.fetch(ctx, title)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, core.WrapDomainError(core.ModuleProvider, core.ErrorCodeUnavailable, "omdb circuit open", err)
	}
	return md, err
}

func (c *OMDbClient) fetch(ctx context.Context, title string) (*enrich.Metadata, error) {
	q := url.Values{}
	q.Set("t", title)
	q.Set("apikey", c.APIKey)
	endpoint := c.BaseURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + q.Encode()
	} else {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("omdb create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("omdb read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb error: status=%d, body=%s", resp.StatusCode, truncate(string(body), 200))
	}

	var r omdbResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("omdb decode response: %w", err)
	}
	if !strings.EqualFold(r.Response, "True") {
		msg := r.Error
		if msg == "" {
			msg = "no data found for " + title
		}
		return nil, core.WrapDomainError(core.ModuleProvider, core.ErrorCodeNotFound, msg, enrich.ErrMetadataNotFound)
	}

	return &enrich.Metadata{
		Title:     r.Title,
		Genres:    core.SplitList(r.Genre),
		Cast:      core.SplitList(r.Actors),
		Directors: core.SplitList(r.Director),
		Runtime:   core.CleanText(r.Runtime),
		PosterURL: core.CleanText(r.Poster),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
