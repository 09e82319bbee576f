package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rushteam/tastekit/core"
)

// SQLiteRecordStore 是 SQLite 实现的 core.RecordStore，单机 CLI 的默认持久化。
// 列表、时长字段按原始历史表格式存储：逗号拼接，缺失写 "N/A"。
type SQLiteRecordStore struct {
	db *sql.DB

	mu      sync.Mutex
	sampler core.Sampler
	now     func() time.Time
}

// SQLiteOption 配置 SQLiteRecordStore。
type SQLiteOption func(*SQLiteRecordStore)

// WithSQLiteSampler 注入随机采样器。
func WithSQLiteSampler(s core.Sampler) SQLiteOption {
	return func(st *SQLiteRecordStore) { st.sampler = s }
}

var _ core.RecordStore = (*SQLiteRecordStore)(nil)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS enriched_records (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	genre TEXT NOT NULL,
	cast_list TEXT NOT NULL,
	director TEXT NOT NULL,
	duration TEXT NOT NULL,
	poster_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, title)
);`

const sqliteColumns = `id, user_id, title, genre, cast_list, director, duration, poster_url, created_at`

// OpenSQLite 打开（必要时创建）数据库文件并初始化表结构。
// path 为 ":memory:" 时使用内存库。
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteRecordStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, core.StoreUnavailable("sqlite open", err)
	}
	// 单连接：内存库在多连接下各自独立，文件库也避免写锁竞争
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, core.StoreUnavailable("sqlite init schema", err)
	}
	return NewSQLiteRecordStore(db, opts...), nil
}

// NewSQLiteRecordStore 使用已打开的连接，调用方负责建表。
func NewSQLiteRecordStore(db *sql.DB, opts ...SQLiteOption) *SQLiteRecordStore {
	st := &SQLiteRecordStore{db: db, now: time.Now}
	for _, o := range opts {
		o(st)
	}
	if st.sampler == nil {
		st.sampler = NewSampler(0)
	}
	return st
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteRecordStore) FindRecord(ctx context.Context, userID, title string) (*core.EnrichedRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM enriched_records WHERE user_id = ? AND title = ?`, userID, title)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteRecordStore) InsertRecord(ctx context.Context, rec *core.EnrichedRecord) (*core.EnrichedRecord, error) {
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

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO enriched_records (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, title) DO NOTHING`,
		out.ID, out.UserID, out.Title,
		core.JoinList(out.Genres), core.JoinList(out.Cast), core.JoinList(out.Directors),
		core.EncodeText(out.Runtime), out.PosterURL, out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	if n == 0 {
		return nil, core.ErrRecordExists
	}
	return &out, nil
}

func (s *SQLiteRecordStore) ListRecordsForUser(ctx context.Context, userID string) ([]core.EnrichedRecord, error) {
	return s.query(ctx, `SELECT `+sqliteColumns+` FROM enriched_records WHERE user_id = ? ORDER BY rowid`, userID)
}

func (s *SQLiteRecordStore) ListRecordsExcludingUser(ctx context.Context, userID string) ([]core.EnrichedRecord, error) {
	return s.query(ctx, `SELECT `+sqliteColumns+` FROM enriched_records WHERE user_id <> ? ORDER BY rowid`, userID)
}

func (s *SQLiteRecordStore) ListPopular(ctx context.Context, limit int) ([]core.EnrichedRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	pool, err := s.query(ctx, `
		SELECT `+sqliteColumns+` FROM enriched_records
		WHERE genre <> ? AND cast_list <> ? AND director <> ?
		ORDER BY rowid LIMIT ?`,
		core.NotAvailable, core.NotAvailable, core.NotAvailable, 2*limit)
	if err != nil {
		return nil, err
	}
	return s.sample(pool, limit), nil
}

func (s *SQLiteRecordStore) ListByGenres(ctx context.Context, genres []string, limit int) ([]core.EnrichedRecord, error) {
	lowered := lowerAll(genres)
	if len(lowered) == 0 || limit <= 0 {
		return nil, nil
	}
	conds := make([]string, 0, len(lowered))
	args := make([]any, 0, len(lowered)+2)
	for _, g := range lowered {
		conds = append(conds, "instr(lower(genre), ?) > 0")
		args = append(args, g)
	}
	args = append(args, core.NotAvailable, 2*limit)

	pool, err := s.query(ctx, `
		SELECT `+sqliteColumns+` FROM enriched_records
		WHERE (`+strings.Join(conds, " OR ")+`) AND cast_list <> ?
		ORDER BY rowid LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	return s.sample(pool, limit), nil
}

func (s *SQLiteRecordStore) query(ctx context.Context, q string, args ...any) ([]core.EnrichedRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.EnrichedRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func (s *SQLiteRecordStore) sample(pool []core.EnrichedRecord, limit int) []core.EnrichedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return samplePool(pool, limit, s.sampler)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.EnrichedRecord, error) {
	var (
		rec                             core.EnrichedRecord
		genre, cast, director, duration string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &genre, &cast, &director, &duration, &rec.PosterURL, &rec.CreatedAt); err != nil {
		return core.EnrichedRecord{}, err
	}
	rec.Genres = core.SplitList(genre)
	rec.Cast = core.SplitList(cast)
	rec.Directors = core.SplitList(director)
	rec.Runtime = core.CleanText(duration)
	rec.PosterURL = core.CleanText(rec.PosterURL)
	return rec, nil
}
