package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/store"
)

func rec(user, title, genres, cast, director, runtime string) core.EnrichedRecord {
	return core.EnrichedRecord{
		UserID:    user,
		Title:     title,
		Genres:    core.SplitList(genres),
		Cast:      core.SplitList(cast),
		Directors: core.SplitList(director),
		Runtime:   core.CleanText(runtime),
	}
}

func newStore(t *testing.T, recs ...core.EnrichedRecord) core.RecordStore {
	t.Helper()
	rs := store.NewKVRecordStore(store.NewMemoryStore(), "test", store.WithKVSampler(store.NewSampler(42)))
	for i := range recs {
		if _, err := rs.InsertRecord(context.Background(), &recs[i]); err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
	}
	return rs
}

func watchedSet(t *testing.T, rs core.RecordStore, userID string) map[string]struct{} {
	t.Helper()
	recs, err := rs.ListRecordsForUser(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]struct{}{}
	for _, r := range recs {
		out[core.NormalizeTitleKey(r.Title)] = struct{}{}
	}
	return out
}

func TestRecommend_MissingUserID(t *testing.T) {
	eng, err := New(newStore(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Recommend(context.Background(), "", core.NewPreferences(), 5); !errors.Is(err, core.ErrMissingUserID) {
		t.Fatalf("err = %v, want ErrMissingUserID", err)
	}
	if _, err := eng.RecommendForUser(context.Background(), "", 5); !core.IsPreconditionFailed(err) {
		t.Fatalf("err = %v, want precondition failure", err)
	}
}

func TestRecommend_Scored(t *testing.T) {
	rs := newStore(t,
		rec("u1", "Heat", "Crime, Drama", "Al Pacino, Robert De Niro", "Michael Mann", "170 min"),
		rec("u1", "Collateral", "Crime, Thriller", "Tom Cruise, Jamie Foxx", "Michael Mann", "120 min"),
		rec("u1", "Thief", "Crime, Drama", "James Caan", "Michael Mann", "122 min"),
		rec("u2", "HEAT ", "Crime, Drama", "Al Pacino", "Michael Mann", "170 min"),
		rec("u2", "Public Enemies", "Crime, Drama", "Johnny Depp", "Michael Mann", "140 min"),
		rec("u2", "Toy Story", "Animation", "Tom Hanks", "John Lasseter", "81 min"),
		rec("u3", "Zodiac", "Crime, Mystery", "Jake Gyllenhaal", "David Fincher", "157 min"),
	)
	eng, err := New(rs)
	if err != nil {
		t.Fatal(err)
	}
	got, err := eng.RecommendForUser(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no recommendations")
	}
	if got[0].Record.Title != "Public Enemies" {
		t.Errorf("top = %q, want Public Enemies", got[0].Record.Title)
	}

	watched := watchedSet(t, rs, "u1")
	for i, r := range got {
		if _, ok := watched[core.NormalizeTitleKey(r.Record.Title)]; ok {
			t.Errorf("watched title %q recommended", r.Record.Title)
		}
		if r.Record.UserID == "u1" {
			t.Errorf("own record %q recommended", r.Record.Title)
		}
		if r.Similarity < 0 || r.Similarity > 1 {
			t.Errorf("similarity %v out of range", r.Similarity)
		}
		if r.Reason == "" {
			t.Errorf("empty reason for %q", r.Record.Title)
		}
		if i > 0 && got[i-1].Similarity < r.Similarity {
			t.Errorf("not sorted: %v before %v", got[i-1].Similarity, r.Similarity)
		}
		if r.Record.Title == "Toy Story" {
			t.Errorf("dissimilar candidate passed threshold")
		}
	}
}

func TestRecommend_ColdStart(t *testing.T) {
	rs := newStore(t,
		rec("u1", "Heat", "Crime", "Al Pacino", "Michael Mann", "170 min"),
		rec(core.SystemUserID, "heat", "Crime", "Al Pacino", "Michael Mann", "170 min"),
		rec(core.SystemUserID, "Alien", "Horror", "Sigourney Weaver", "Ridley Scott", "117 min"),
		rec(core.SystemUserID, "Up", "Animation", "Ed Asner", "Pete Docter", "96 min"),
		rec(core.SystemUserID, "Partial", "Drama", "", "Someone", "90 min"),
	)
	eng, err := New(rs)
	if err != nil {
		t.Fatal(err)
	}
	prefs := &core.Preferences{
		GenreCounts:    map[string]int{"Crime": 1},
		ActorCounts:    map[string]int{"Al Pacino": 1},
		DirectorCounts: map[string]int{"Michael Mann": 1},
		TotalMovies:    2,
	}
	got, err := eng.Recommend(context.Background(), "u1", prefs, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no cold start recommendations")
	}
	for _, r := range got {
		if r.Similarity != 0.5 || r.Reason != core.ReasonPopular {
			t.Errorf("%q: similarity=%v reason=%q", r.Record.Title, r.Similarity, r.Reason)
		}
		if core.NormalizeTitleKey(r.Record.Title) == "heat" {
			t.Errorf("watched title recommended")
		}
		if !r.Record.HasFullMetadata() {
			t.Errorf("incomplete record %q in popular pool", r.Record.Title)
		}
	}
}

func TestRecommend_ColdStartRespectsLimit(t *testing.T) {
	var recs []core.EnrichedRecord
	for _, title := range []string{"A", "B", "C", "D", "E", "F"} {
		recs = append(recs, rec(core.SystemUserID, title, "Drama", "Actor "+title, "Director "+title, "100 min"))
	}
	eng, err := New(newStore(t, recs...))
	if err != nil {
		t.Fatal(err)
	}
	got, err := eng.Recommend(context.Background(), "u1", core.NewPreferences(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestRecommend_Diversity(t *testing.T) {
	recs := []core.EnrichedRecord{
		rec("u1", "Heat", "Drama", "Al Pacino", "Michael Mann", "120 min"),
		rec("u1", "Thief", "Drama", "James Caan", "Michael Mann", "120 min"),
		rec("u1", "Ali", "Drama", "Will Smith", "Michael Mann", "120 min"),
	}
	for _, title := range []string{"D1", "D2", "D3", "D4", "D5", "D6"} {
		recs = append(recs, rec("u2", title, "Drama", "Al Pacino", "Michael Mann", "120 min"))
	}
	recs = append(recs, rec("u2", "Funny", "Comedy", "Someone Else", "Michael Mann", "120 min"))

	eng, err := New(newStore(t, recs...))
	if err != nil {
		t.Fatal(err)
	}
	got, err := eng.RecommendForUser(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(got) > 3 {
		t.Fatalf("len = %d > limit", len(got))
	}
	genres := map[string]bool{}
	for _, r := range got {
		for _, g := range r.Record.Genres {
			genres[g] = true
		}
	}
	if len(genres) < 2 {
		t.Fatalf("expected at least 2 genres, got %v", genres)
	}
}

type failingStore struct {
	core.RecordStore
	failUser, failOthers bool
}

var errDown = errors.New("db down")

func (f *failingStore) ListRecordsForUser(ctx context.Context, userID string) ([]core.EnrichedRecord, error) {
	if f.failUser {
		return nil, errDown
	}
	return f.RecordStore.ListRecordsForUser(ctx, userID)
}

func (f *failingStore) ListRecordsExcludingUser(ctx context.Context, userID string) ([]core.EnrichedRecord, error) {
	if f.failOthers {
		return nil, errDown
	}
	return f.RecordStore.ListRecordsExcludingUser(ctx, userID)
}

func TestRecommend_StoreFailureIsFatal(t *testing.T) {
	prefs := &core.Preferences{GenreCounts: map[string]int{"Drama": 3}, TotalMovies: 3}
	tests := []struct {
		name  string
		store *failingStore
	}{
		{"watched titles", &failingStore{RecordStore: newStore(t), failUser: true}},
		{"candidates", &failingStore{RecordStore: newStore(t), failOthers: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(tt.store)
			if err != nil {
				t.Fatal(err)
			}
			got, err := eng.Recommend(context.Background(), "u1", prefs, 5)
			if err == nil {
				t.Fatalf("expected error, got %d results", len(got))
			}
			if !errors.Is(err, errDown) || !core.IsUnavailable(err) {
				t.Fatalf("err = %v, want wrapped UNAVAILABLE", err)
			}
			if got != nil {
				t.Fatal("partial results returned")
			}
		})
	}
}
