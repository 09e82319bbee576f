package service

import (
	"fmt"
	"time"

	"github.com/rushteam/tastekit/enrich"
)

// 元数据服务类型
const (
	ProviderTypeOMDb = "omdb" // OMDb HTTP 接口
	ProviderTypeFile = "file" // 本地 JSON 文件（离线/演示）
)

// ProviderConfig 是元数据服务的配置
type ProviderConfig struct {
	Type string

	// OMDb
	Endpoint          string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64

	// file
	File string
}

// NewProvider 根据配置创建 MetadataProvider（工厂方法）。
func NewProvider(config *ProviderConfig) (enrich.MetadataProvider, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	switch config.Type {
	case ProviderTypeOMDb, "":
		return NewOMDbClient(config.APIKey,
			WithOMDbBaseURL(config.Endpoint),
			WithOMDbTimeout(config.Timeout),
			WithOMDbRateLimit(config.RequestsPerSecond),
		)
	case ProviderTypeFile:
		return LoadFileProvider(config.File)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// ValidateConfig 验证服务配置
func ValidateConfig(config *ProviderConfig) error {
	if config == nil {
		return fmt.Errorf("provider config is required")
	}
	switch config.Type {
	case ProviderTypeOMDb, "":
		if config.APIKey == "" {
			return fmt.Errorf("omdb api key is required")
		}
	case ProviderTypeFile:
		if config.File == "" {
			return fmt.Errorf("metadata file is required")
		}
	default:
		return fmt.Errorf("unsupported provider type: %s", config.Type)
	}
	return nil
}
