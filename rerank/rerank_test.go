package rerank

import (
	"context"
	"strings"
	"testing"

	"github.com/rushteam/tastekit/core"
)

func scored(id string, score float64, genres, directors []string) *core.Item {
	it := core.NewRecordItem(&core.EnrichedRecord{ID: id, Title: "T" + id, Genres: genres, Directors: directors})
	it.Score = score
	return it
}

func ids(items []*core.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.ID)
	}
	return strings.Join(parts, ",")
}

func TestDiversity(t *testing.T) {
	drama := []string{"Drama"}
	mann := []string{"Mann"}
	tests := []struct {
		name  string
		limit int
		items []*core.Item
		want  string
	}{
		{
			name:  "not more than limit keeps order",
			limit: 3,
			items: []*core.Item{scored("1", 0.9, drama, mann), scored("2", 0.8, drama, mann)},
			want:  "1,2",
		},
		{
			name:  "prefers new genres after half",
			limit: 4,
			items: []*core.Item{
				scored("1", 0.9, drama, mann),
				scored("2", 0.8, drama, mann),
				scored("3", 0.7, drama, mann),
				scored("4", 0.6, drama, mann),
				scored("5", 0.5, []string{"Comedy"}, mann),
				scored("6", 0.4, drama, []string{"Nolan"}),
			},
			want: "1,2,5,6",
		},
		{
			name:  "all overlap stops at half",
			limit: 4,
			items: []*core.Item{
				scored("1", 0.9, drama, mann),
				scored("2", 0.8, drama, mann),
				scored("3", 0.7, drama, mann),
				scored("4", 0.6, drama, mann),
				scored("5", 0.5, drama, mann),
			},
			want: "1,2",
		},
		{
			name:  "nil leading item is skipped",
			limit: 2,
			items: []*core.Item{
				nil,
				scored("1", 0.9, drama, mann),
				scored("2", 0.8, drama, mann),
				scored("3", 0.7, []string{"Comedy"}, mann),
			},
			want: "1,3",
		},
		{
			name:  "odd limit accepts while below half",
			limit: 3,
			items: []*core.Item{
				scored("1", 0.9, drama, mann),
				scored("2", 0.8, drama, mann),
				scored("3", 0.7, drama, mann),
				scored("4", 0.6, drama, mann),
			},
			want: "1,2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&Diversity{Limit: tt.limit}).Process(context.Background(), nil, tt.items)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if got := ids(out); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDiversity_CoversGenres(t *testing.T) {
	var items []*core.Item
	for i := 0; i < 8; i++ {
		items = append(items, scored(string(rune('a'+i)), 1-float64(i)/10, []string{"Drama"}, []string{"Mann"}))
	}
	items = append(items, scored("z", 0.05, []string{"Comedy"}, []string{"Mann"}))

	out, _ := (&Diversity{}).Process(context.Background(), &core.RecommendContext{Limit: 5}, items)
	genres := map[string]bool{}
	for _, it := range out {
		for _, g := range it.Record.Genres {
			genres[g] = true
		}
	}
	if len(genres) < 2 {
		t.Fatalf("expected at least 2 genres, got %v (%s)", genres, ids(out))
	}
}

func TestTopNNode(t *testing.T) {
	items := []*core.Item{core.NewItem("a"), core.NewItem("b"), core.NewItem("c")}
	out, _ := (&TopNNode{}).Process(context.Background(), &core.RecommendContext{Limit: 2}, items)
	if ids(out) != "a,b" {
		t.Fatalf("got %s", ids(out))
	}
	out, _ = (&TopNNode{N: 5}).Process(context.Background(), nil, items)
	if len(out) != 3 {
		t.Fatalf("got %s", ids(out))
	}
}

func TestExplain(t *testing.T) {
	prefs := &core.Preferences{
		GenreCounts:     map[string]int{"Action": 2, "Drama": 1},
		ActorCounts:     map[string]int{"Jane Doe": 2},
		DirectorCounts:  map[string]int{"Ann Lee": 1},
		AverageDuration: 100,
	}
	tests := []struct {
		name string
		rec  *core.EnrichedRecord
		want string
	}{
		{
			name: "genre actor duration",
			rec:  &core.EnrichedRecord{Genres: []string{"Action", "Comedy"}, Cast: []string{"Jane Doe", "John Roe"}, Runtime: "95 min"},
			want: "Similar genres: Action • Featuring: Jane Doe • Similar duration to your preferences",
		},
		{
			name: "director only",
			rec:  &core.EnrichedRecord{Directors: []string{"Ann Lee"}, Runtime: "200 min"},
			want: "Directed by: Ann Lee",
		},
		{
			name: "duration boundary excluded",
			rec:  &core.EnrichedRecord{Runtime: "130 min"},
			want: "Based on your viewing patterns",
		},
		{
			name: "nothing matches",
			rec:  &core.EnrichedRecord{Genres: []string{"Horror"}},
			want: "Based on your viewing patterns",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Explain(prefs, tt.rec); got != tt.want {
				t.Errorf("Explain = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExplainNode_KeepsExistingReason(t *testing.T) {
	it := core.NewRecordItem(&core.EnrichedRecord{Title: "Up"})
	it.Reason = core.ReasonPopular
	out, _ := (&ExplainNode{}).Process(context.Background(), &core.RecommendContext{Profile: core.NewPreferences()}, []*core.Item{it})
	if out[0].Reason != core.ReasonPopular {
		t.Fatalf("reason overwritten: %q", out[0].Reason)
	}
}
