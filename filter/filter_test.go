package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/tastekit/core"
)

type fakeWatched struct {
	titles []string
	err    error
	calls  int
}

func (f *fakeWatched) WatchedTitles(_ context.Context, _ string) (map[string]struct{}, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]struct{}{}
	for _, t := range f.titles {
		out[core.NormalizeTitleKey(t)] = struct{}{}
	}
	return out, nil
}

func recordItems(titles ...string) []*core.Item {
	out := make([]*core.Item, 0, len(titles))
	for i, t := range titles {
		out = append(out, core.NewRecordItem(&core.EnrichedRecord{
			ID:     string(rune('a' + i)),
			UserID: "other",
			Title:  t,
			Genres: []string{"Drama"},
		}))
	}
	return out
}

func titles(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title())
	}
	return out
}

func TestWatchedFilter(t *testing.T) {
	store := &fakeWatched{titles: []string{"  the matrix ", "Heat"}}
	node := &FilterNode{Filters: []Filter{NewWatchedFilter(store)}}
	rctx := &core.RecommendContext{UserID: "u1"}

	out, err := node.Process(context.Background(), rctx, recordItems("The Matrix", "Alien", "HEAT", "Up"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	got := titles(out)
	if len(got) != 2 || got[0] != "Alien" || got[1] != "Up" {
		t.Fatalf("kept = %v, want [Alien Up]", got)
	}
	if store.calls != 1 {
		t.Fatalf("watched store calls = %d, want 1", store.calls)
	}
}

func TestWatchedFilter_Preloaded(t *testing.T) {
	store := &fakeWatched{err: errors.New("should not be called")}
	rctx := &core.RecommendContext{UserID: "u1", Watched: map[string]struct{}{"alien": {}}}
	node := &FilterNode{Filters: []Filter{NewWatchedFilter(store)}}

	out, err := node.Process(context.Background(), rctx, recordItems("Alien", "Up"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := titles(out); len(got) != 1 || got[0] != "Up" {
		t.Fatalf("kept = %v", got)
	}
	if store.calls != 0 {
		t.Fatalf("store should not be called when Watched is preloaded")
	}
}

type fakeBlacklist []string

func (f fakeBlacklist) GetBlacklist(_ context.Context, _ string) ([]string, error) {
	return f, nil
}

func TestBlacklistFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *BlacklistFilter
		want   []string
	}{
		{
			name:   "by title",
			filter: NewBlacklistFilter(nil, []string{"alien"}, nil, ""),
			want:   []string{"Up", "Heat"},
		},
		{
			name:   "by id",
			filter: NewBlacklistFilter([]string{"b"}, nil, nil, ""),
			want:   []string{"Alien", "Heat"},
		},
		{
			name:   "from store",
			filter: NewBlacklistFilter(nil, nil, fakeBlacklist{"HEAT"}, "blacklist"),
			want:   []string{"Alien", "Up"},
		},
		{
			name:   "struct literal",
			filter: &BlacklistFilter{Titles: []string{"up"}},
			want:   []string{"Alien", "Heat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &FilterNode{Filters: []Filter{tt.filter}}
			out, err := node.Process(context.Background(), &core.RecommendContext{}, recordItems("Alien", "Up", "Heat"))
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			got := titles(out)
			if len(got) != len(tt.want) {
				t.Fatalf("kept = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("kept = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestExprFilter(t *testing.T) {
	items := recordItems("Alien", "Up")
	items[0].Record.Genres = []string{"Horror"}

	f, err := NewExprFilter(`"Horror" in item.genres`, false)
	if err != nil {
		t.Fatalf("NewExprFilter: %v", err)
	}
	out, err := (&FilterNode{Filters: []Filter{f}}).Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := titles(out); len(got) != 1 || got[0] != "Up" {
		t.Fatalf("kept = %v, want [Up]", got)
	}
}
