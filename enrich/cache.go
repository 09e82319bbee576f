package enrich

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pkg/logging"
)

// CachedProvider 在 core.Store 中缓存元数据查询结果，key 为 meta:<小写标题>。
// 只缓存成功的结果；缓存读写失败不影响查询本身。
type CachedProvider struct {
	Provider MetadataProvider
	Store    core.Store
	TTL      time.Duration // <=0 表示不过期
}

// NewCachedProvider 创建带缓存的 provider。
func NewCachedProvider(p MetadataProvider, store core.Store, ttl time.Duration) *CachedProvider {
	return &CachedProvider{Provider: p, Store: store, TTL: ttl}
}

func cacheKey(title string) string {
	return "meta:" + strings.ToLower(title)
}

func (c *CachedProvider) Lookup(ctx context.Context, title string) (*Metadata, error) {
	if c.Store == nil {
		return c.Provider.Lookup(ctx, title)
	}
	key := cacheKey(title)
	log := logging.Ctx(ctx)

	data, err := c.Store.Get(ctx, key)
	switch {
	case err == nil:
		var md Metadata
		if jerr := json.Unmarshal(data, &md); jerr == nil {
			return &md, nil
		}
		log.Debug().Str("key", key).Msg("metadata cache entry undecodable")
	case !core.IsStoreNotFound(err):
		log.Warn().Err(err).Str("key", key).Msg("metadata cache read failed")
	}

	md, err := c.Provider.Lookup(ctx, title)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(md); err == nil {
		var ttl []int
		if c.TTL > 0 {
			ttl = []int{int(c.TTL / time.Second)}
		}
		if err := c.Store.Set(ctx, key, data, ttl...); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("metadata cache write failed")
		}
	}
	return md, nil
}
