package core

// RecommendConfig 是推荐排序相关的配置接口，用于提供默认值。
// 各 Node 在配置缺省时从这里取值；config.App 的 recommend 段也实现了该接口。
type RecommendConfig interface {
	// DefaultLimit 返回默认返回条数
	DefaultLimit() int

	// MinSimilarity 返回进入结果集的最低相似度（严格大于）
	MinSimilarity() float64

	// ColdStartMinMovies 返回走正常打分所需的最少观看记录数
	ColdStartMinMovies() int

	// PopularScore 返回冷启动热门兜底的固定分数
	PopularScore() float64

	// BackfillScore 返回按类型补齐的固定分数
	BackfillScore() float64

	// BackfillTopGenres 返回补齐时使用的画像 Top 类型数
	BackfillTopGenres() int
}

// 默认值
const (
	DefaultLimit              = 10
	DefaultMinSimilarity      = 0.05
	DefaultColdStartMinMovies = 3
	DefaultPopularScore       = 0.5
	DefaultBackfillScore      = 0.3
	DefaultBackfillTopGenres  = 3
)

// 固定理由文案
const (
	ReasonPopular  = "Popular movies for new users"
	ReasonFallback = "Based on your viewing patterns"
)

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultLimit() int       { return DefaultLimit }
func (c *DefaultRecommendConfig) MinSimilarity() float64  { return DefaultMinSimilarity }
func (c *DefaultRecommendConfig) ColdStartMinMovies() int { return DefaultColdStartMinMovies }
func (c *DefaultRecommendConfig) PopularScore() float64   { return DefaultPopularScore }
func (c *DefaultRecommendConfig) BackfillScore() float64  { return DefaultBackfillScore }
func (c *DefaultRecommendConfig) BackfillTopGenres() int  { return DefaultBackfillTopGenres }
