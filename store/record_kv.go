package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rushteam/tastekit/core"
)

// KVRecordStore 在任意 core.KeyValueStore 上实现 core.RecordStore。
//
// 存储布局：
//
//	<prefix>:user:<userID>   hash，field = 原始标题，value = JSON 记录
//	<prefix>:users           zset，记录所有出现过的 userID
//
// (UserID, Title) 的唯一性由 HSetNX 保证；列表顺序为 userID 升序、标题升序。
type KVRecordStore struct {
	kv     core.KeyValueStore
	prefix string

	mu      sync.Mutex // 保护 sampler（*rand.Rand 非并发安全）
	sampler core.Sampler
	now     func() time.Time
}

// KVOption 配置 KVRecordStore。
type KVOption func(*KVRecordStore)

// WithKVSampler 注入随机采样器（测试中使用固定种子）。
func WithKVSampler(s core.Sampler) KVOption {
	return func(st *KVRecordStore) { st.sampler = s }
}

// NewKVRecordStore 创建记录存储，prefix 为空时使用 "tastekit"。
func NewKVRecordStore(kv core.KeyValueStore, prefix string, opts ...KVOption) *KVRecordStore {
	if prefix == "" {
		prefix = "tastekit"
	}
	st := &KVRecordStore{kv: kv, prefix: prefix, now: time.Now}
	for _, o := range opts {
		o(st)
	}
	if st.sampler == nil {
		st.sampler = NewSampler(0)
	}
	return st
}

var _ core.RecordStore = (*KVRecordStore)(nil)

// kvRecord 是记录的 JSON 编码，列表字段以逗号拼接、缺失写占位值。
type kvRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre"`
	Cast      string    `json:"cast"`
	Director  string    `json:"director"`
	Duration  string    `json:"duration"`
	PosterURL string    `json:"poster_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func encodeKV(rec *core.EnrichedRecord) ([]byte, error) {
	return json.Marshal(kvRecord{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Title:     rec.Title,
		Genre:     core.JoinList(rec.Genres),
		Cast:      core.JoinList(rec.Cast),
		Director:  core.JoinList(rec.Directors),
		Duration:  core.EncodeText(rec.Runtime),
		PosterURL: rec.PosterURL,
		CreatedAt: rec.CreatedAt,
	})
}

func decodeKV(data []byte) (core.EnrichedRecord, error) {
	var r kvRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return core.EnrichedRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return core.EnrichedRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Genres:    core.SplitList(r.Genre),
		Cast:      core.SplitList(r.Cast),
		Directors: core.SplitList(r.Director),
		Runtime:   core.CleanText(r.Duration),
		PosterURL: core.CleanText(r.PosterURL),
		CreatedAt: r.CreatedAt,
	}, nil
}

func (s *KVRecordStore) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

func (s *KVRecordStore) usersKey() string {
	return s.prefix + ":users"
}

func (s *KVRecordStore) FindRecord(ctx context.Context, userID, title string) (*core.EnrichedRecord, error) {
	data, err := s.kv.HGet(ctx, s.userKey(userID), title)
	if err != nil {
		return nil, err
	}
	rec, err := decodeKV(data)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *KVRecordStore) InsertRecord(ctx context.Context, rec *core.EnrichedRecord) (*core.EnrichedRecord, error) {
	if rec == nil || rec.UserID == "" || rec.Title == "" {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: record requires user id and title")
	}
	out := *rec
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = s.now().UTC()
	}
	data, err := encodeKV(&out)
	if err != nil {
		return nil, err
	}

	// 先登记 owner 索引（幂等），保证写入的记录一定能被 listAll 看到
	if err := s.kv.ZAdd(ctx, s.usersKey(), 0, out.UserID); err != nil {
		return nil, err
	}
	ok, err := s.kv.HSetNX(ctx, s.userKey(out.UserID), out.Title, data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.ErrRecordExists
	}
	return &out, nil
}

func (s *KVRecordStore) ListRecordsForUser(ctx context.Context, userID string) ([]core.EnrichedRecord, error) {
	all, err := s.kv.HGetAll(ctx, s.userKey(userID))
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(all))
	for t := range all {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	out := make([]core.EnrichedRecord, 0, len(titles))
	for _, t := range titles {
		rec, err := decodeKV(all[t])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *KVRecordStore) ListRecordsExcludingUser(ctx context.Context, userID string) ([]core.EnrichedRecord, error) {
	return s.listAll(ctx, userID)
}

func (s *KVRecordStore) ListPopular(ctx context.Context, limit int) ([]core.EnrichedRecord, error) {
	all, err := s.listAll(ctx, "")
	if err != nil {
		return nil, err
	}
	pool := make([]core.EnrichedRecord, 0, len(all))
	for i := range all {
		if all[i].HasFullMetadata() {
			pool = append(pool, all[i])
		}
	}
	return s.sample(pool, limit), nil
}

func (s *KVRecordStore) ListByGenres(ctx context.Context, genres []string, limit int) ([]core.EnrichedRecord, error) {
	lowered := lowerAll(genres)
	if len(lowered) == 0 {
		return nil, nil
	}
	all, err := s.listAll(ctx, "")
	if err != nil {
		return nil, err
	}
	pool := make([]core.EnrichedRecord, 0, len(all))
	for i := range all {
		if len(all[i].Cast) > 0 && matchesAnyGenre(&all[i], lowered) {
			pool = append(pool, all[i])
		}
	}
	return s.sample(pool, limit), nil
}

// Users 返回所有出现过的 userID（升序）。
func (s *KVRecordStore) Users(ctx context.Context) ([]string, error) {
	users, err := s.kv.ZRange(ctx, s.usersKey(), 0, -1)
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}

// listAll 返回除 exclude 之外所有用户的记录；exclude 为空表示全部。
func (s *KVRecordStore) listAll(ctx context.Context, exclude string) ([]core.EnrichedRecord, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.EnrichedRecord
	for _, u := range users {
		if exclude != "" && u == exclude {
			continue
		}
		recs, err := s.ListRecordsForUser(ctx, u)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func (s *KVRecordStore) sample(pool []core.EnrichedRecord, limit int) []core.EnrichedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return samplePool(pool, limit, s.sampler)
}
