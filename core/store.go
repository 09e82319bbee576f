package core

import "context"

// Store 是 KV 存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 避免循环依赖：领域层不依赖基础设施层
//
// 使用场景：
//   - 元数据查询缓存（enrich.CachedProvider）
//   - KVRecordStore 的底层存储
//
// 实现：
//   - store.MemoryStore 实现此接口
//   - store.RedisStore 实现此接口
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值，不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，ttl 单位为秒
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// KeyValueStore 是 Store 的扩展接口，支持更丰富的 KV 操作。
//
// 扩展功能：
//   - 有序集合（SortedSet）：用于索引记录归属用户
//   - 哈希表（Hash）：用于按 (用户, 标题) 存放记录
//
// 如果后端不支持某些操作，可返回 ErrStoreNotSupported。
type KeyValueStore interface {
	Store

	// ZAdd 向有序集合添加成员
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRange 按分数降序获取有序集合成员
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// HGet 读取 Hash 字段
	HGet(ctx context.Context, key, field string) ([]byte, error)

	// HSet 写入 Hash 字段
	HSet(ctx context.Context, key, field string, value []byte) error

	// HSetNX 仅当字段不存在时写入，返回是否写入成功（用于唯一约束）
	HSetNX(ctx context.Context, key, field string, value []byte) (bool, error)

	// HGetAll 读取整个 Hash
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
}

// RecordStore 是补全记录的存储接口：一张以 (UserID, Title) 为键的逻辑表。
//
// 实现：
//   - store.KVRecordStore（基于 MemoryStore / RedisStore）
//   - store.SQLiteRecordStore
type RecordStore interface {
	// FindRecord 按 (userID, title) 精确查找，不存在时返回 ErrStoreNotFound
	FindRecord(ctx context.Context, userID, title string) (*EnrichedRecord, error)

	// InsertRecord 写入新记录，(UserID, Title) 已存在时返回 ErrRecordExists
	InsertRecord(ctx context.Context, rec *EnrichedRecord) (*EnrichedRecord, error)

	// ListRecordsForUser 列出某个用户的全部记录
	ListRecordsForUser(ctx context.Context, userID string) ([]EnrichedRecord, error)

	// ListRecordsExcludingUser 列出不属于该用户的全部记录（按存储顺序）
	ListRecordsExcludingUser(ctx context.Context, userID string) ([]EnrichedRecord, error)

	// ListPopular 从元数据完整的记录中随机采样 limit 条
	ListPopular(ctx context.Context, limit int) ([]EnrichedRecord, error)

	// ListByGenres 从包含任一类型的记录中随机采样 limit 条
	ListByGenres(ctx context.Context, genres []string, limit int) ([]EnrichedRecord, error)
}

// Sampler 是随机采样策略，*math/rand/v2.Rand 天然满足该接口。
// 测试中注入固定种子的 Sampler 即可得到确定结果。
type Sampler interface {
	Shuffle(n int, swap func(i, j int))
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")

	// ErrRecordExists 表示 (UserID, Title) 已存在
	ErrRecordExists = NewDomainError(ModuleStore, ErrorCodeConflict, "store: record already exists")
)

// IsStoreNotFound 检查错误是否为 key 不存在（使用统一的错误检查）
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsStoreNotSupported 检查错误是否为操作不支持（使用统一的错误检查）
func IsStoreNotSupported(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// StoreUnavailable 把底层存储错误包装成 UNAVAILABLE 领域错误。
func StoreUnavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return WrapDomainError(ModuleStore, ErrorCodeUnavailable, "store: "+op, err)
}
