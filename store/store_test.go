package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/rushteam/tastekit/core"
)

func newRecordStores(t *testing.T) map[string]core.RecordStore {
	t.Helper()
	sq, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "records.db"), WithSQLiteSampler(NewSampler(7)))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]core.RecordStore{
		"kv":     NewKVRecordStore(NewMemoryStore(), "test", WithKVSampler(NewSampler(7))),
		"sqlite": sq,
	}
}

func seed(t *testing.T, rs core.RecordStore, recs ...core.EnrichedRecord) {
	t.Helper()
	for i := range recs {
		if _, err := rs.InsertRecord(context.Background(), &recs[i]); err != nil {
			t.Fatalf("InsertRecord(%s): %v", recs[i].Key(), err)
		}
	}
}

func titles(recs []core.EnrichedRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Title)
	}
	return out
}

func sortedTitles(recs []core.EnrichedRecord) []string {
	out := titles(recs)
	sort.Strings(out)
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRecordStore_InsertAndFind(t *testing.T) {
	for name, rs := range newRecordStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := &core.EnrichedRecord{
				UserID:    "u1",
				Title:     "Heat",
				Genres:    []string{"Crime", "Drama"},
				Cast:      []string{"Al Pacino", "Robert De Niro"},
				Directors: []string{"Michael Mann"},
				Runtime:   "170 min",
			}
			got, err := rs.InsertRecord(ctx, in)
			if err != nil {
				t.Fatalf("InsertRecord: %v", err)
			}
			if got.ID == "" || got.CreatedAt.IsZero() {
				t.Fatalf("id/created_at not assigned: %+v", got)
			}

			found, err := rs.FindRecord(ctx, "u1", "Heat")
			if err != nil {
				t.Fatalf("FindRecord: %v", err)
			}
			if found.ID != got.ID || !equal(found.Genres, in.Genres) || !equal(found.Cast, in.Cast) || found.Runtime != "170 min" {
				t.Fatalf("round trip mismatch: %+v", found)
			}

			if _, err := rs.InsertRecord(ctx, in); !errors.Is(err, core.ErrRecordExists) {
				t.Fatalf("duplicate insert err = %v, want ErrRecordExists", err)
			}
			if _, err := rs.FindRecord(ctx, "u1", "Ronin"); !core.IsStoreNotFound(err) {
				t.Fatalf("missing FindRecord err = %v, want not found", err)
			}
		})
	}
}

func TestRecordStore_MissingFieldsRoundTrip(t *testing.T) {
	for name, rs := range newRecordStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, rs, core.EnrichedRecord{UserID: "u1", Title: "Unknown Film"})
			got, err := rs.FindRecord(ctx, "u1", "Unknown Film")
			if err != nil {
				t.Fatalf("FindRecord: %v", err)
			}
			if got.Genres != nil || got.Cast != nil || got.Directors != nil || got.Runtime != "" {
				t.Fatalf("missing fields should decode empty, got %+v", got)
			}
		})
	}
}

func TestRecordStore_Listing(t *testing.T) {
	for name, rs := range newRecordStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, rs,
				core.EnrichedRecord{UserID: "u1", Title: "Heat"},
				core.EnrichedRecord{UserID: "u2", Title: "Alien"},
				core.EnrichedRecord{UserID: "u1", Title: "Collateral"},
				core.EnrichedRecord{UserID: "u3", Title: "Brazil"},
			)

			mine, err := rs.ListRecordsForUser(ctx, "u1")
			if err != nil {
				t.Fatalf("ListRecordsForUser: %v", err)
			}
			if got := sortedTitles(mine); !equal(got, []string{"Collateral", "Heat"}) {
				t.Fatalf("ListRecordsForUser = %v", got)
			}

			others, err := rs.ListRecordsExcludingUser(ctx, "u1")
			if err != nil {
				t.Fatalf("ListRecordsExcludingUser: %v", err)
			}
			if got := sortedTitles(others); !equal(got, []string{"Alien", "Brazil"}) {
				t.Fatalf("ListRecordsExcludingUser = %v", got)
			}

			// 两次调用顺序一致
			again, _ := rs.ListRecordsExcludingUser(ctx, "u1")
			if !equal(titles(others), titles(again)) {
				t.Fatalf("listing order not stable: %v vs %v", titles(others), titles(again))
			}
		})
	}
}

func TestRecordStore_PopularAndGenres(t *testing.T) {
	full := func(user, title string, genres ...string) core.EnrichedRecord {
		return core.EnrichedRecord{
			UserID:    user,
			Title:     title,
			Genres:    genres,
			Cast:      []string{"Actor " + title},
			Directors: []string{"Director " + title},
		}
	}
	for name, rs := range newRecordStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, rs,
				full(core.SystemUserID, "Heat", "Crime", "Drama"),
				full(core.SystemUserID, "Alien", "Horror", "Sci-Fi"),
				full(core.SystemUserID, "Up", "Animation"),
				core.EnrichedRecord{UserID: core.SystemUserID, Title: "No Cast", Genres: []string{"Drama"}, Directors: []string{"X"}},
			)

			pop, err := rs.ListPopular(ctx, 10)
			if err != nil {
				t.Fatalf("ListPopular: %v", err)
			}
			if got := sortedTitles(pop); !equal(got, []string{"Alien", "Heat", "Up"}) {
				t.Fatalf("ListPopular = %v", got)
			}

			few, _ := rs.ListPopular(ctx, 2)
			if len(few) != 2 {
				t.Fatalf("ListPopular(2) returned %d", len(few))
			}

			byGenre, err := rs.ListByGenres(ctx, []string{"drama", "SCI"}, 10)
			if err != nil {
				t.Fatalf("ListByGenres: %v", err)
			}
			if got := sortedTitles(byGenre); !equal(got, []string{"Alien", "Heat"}) {
				t.Fatalf("ListByGenres = %v", got)
			}

			none, _ := rs.ListByGenres(ctx, nil, 10)
			if len(none) != 0 {
				t.Fatalf("empty genres should match nothing, got %v", titles(none))
			}
		})
	}
}

func TestSamplePool(t *testing.T) {
	pool := make([]core.EnrichedRecord, 10)
	for i := range pool {
		pool[i] = core.EnrichedRecord{Title: string(rune('a' + i))}
	}
	got := samplePool(pool, 3, NewSampler(1))
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for _, r := range got {
		if r.Title > "f" {
			t.Fatalf("sample drew %q from outside the first 2*limit", r.Title)
		}
	}
	if samplePool(pool, 0, nil) != nil {
		t.Fatal("limit 0 should return nil")
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "k", []byte("v"), 10)
	_ = m.Set(ctx, "forever", []byte("v"))
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(11 * time.Second)
	if _, err := m.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get after expiry err = %v", err)
	}
	m.mu.RLock()
	_, still := m.data["k"]
	m.mu.RUnlock()
	if still {
		t.Fatal("expired key should be evicted on read")
	}

	_ = m.Set(ctx, "k2", []byte("v"), 10)
	now = now.Add(11 * time.Second)
	if n := m.Purge(); n != 1 {
		t.Fatalf("Purge = %d, want 1", n)
	}
	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Fatalf("Get forever: %v", err)
	}
}

// flakyZAdd 让第一次 ZAdd 失败，模拟索引写入中途出错。
type flakyZAdd struct {
	*MemoryStore
	failed bool
}

func (f *flakyZAdd) ZAdd(ctx context.Context, key string, score float64, member string) error {
	if !f.failed {
		f.failed = true
		return errors.New("zadd down")
	}
	return f.MemoryStore.ZAdd(ctx, key, score, member)
}

func TestKVRecordStore_InsertIndexFailure(t *testing.T) {
	ctx := context.Background()
	rs := NewKVRecordStore(&flakyZAdd{MemoryStore: NewMemoryStore()}, "test")
	rec := &core.EnrichedRecord{UserID: "u2", Title: "Heat", Genres: []string{"Crime"}}

	if _, err := rs.InsertRecord(ctx, rec); err == nil {
		t.Fatal("first insert should fail")
	}
	if _, err := rs.FindRecord(ctx, "u2", "Heat"); !core.IsStoreNotFound(err) {
		t.Fatalf("failed insert left a record behind: %v", err)
	}
	if _, err := rs.InsertRecord(ctx, rec); err != nil {
		t.Fatalf("retry: %v", err)
	}
	got, err := rs.ListRecordsExcludingUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListRecordsExcludingUser: %v", err)
	}
	if !equal(titles(got), []string{"Heat"}) {
		t.Fatalf("candidates = %v, want [Heat]", titles(got))
	}
}

func TestMemoryStore_ZRangeAndHash(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	_ = m.ZAdd(ctx, "z", 1, "b")
	_ = m.ZAdd(ctx, "z", 2, "c")
	_ = m.ZAdd(ctx, "z", 1, "a")

	got, _ := m.ZRange(ctx, "z", 0, -1)
	if !equal(got, []string{"c", "a", "b"}) {
		t.Fatalf("ZRange = %v", got)
	}
	got, _ = m.ZRange(ctx, "z", 1, 1)
	if !equal(got, []string{"a"}) {
		t.Fatalf("ZRange(1,1) = %v", got)
	}

	ok, _ := m.HSetNX(ctx, "h", "f", []byte("1"))
	if !ok {
		t.Fatal("first HSetNX should succeed")
	}
	ok, _ = m.HSetNX(ctx, "h", "f", []byte("2"))
	if ok {
		t.Fatal("second HSetNX should fail")
	}
	v, _ := m.HGet(ctx, "h", "f")
	if string(v) != "1" {
		t.Fatalf("HGet = %q", v)
	}
	if _, err := m.HGet(ctx, "h", "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("HGet missing err = %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	r, err := NewRedisStore(addr, 15)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	rs := NewKVRecordStore(r, "tastekit_test_"+time.Now().Format("150405.000"))
	rec := &core.EnrichedRecord{UserID: "u1", Title: "Heat", Genres: []string{"Crime"}}
	if _, err := rs.InsertRecord(ctx, rec); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if _, err := rs.InsertRecord(ctx, rec); !errors.Is(err, core.ErrRecordExists) {
		t.Fatalf("duplicate err = %v", err)
	}
	if _, err := r.Get(ctx, "tastekit_missing_key"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get missing err = %v", err)
	}
}
