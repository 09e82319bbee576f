package core

import (
	"math"
	"math/rand/v2"
	"reflect"
	"testing"
)

func sampleRecords() []EnrichedRecord {
	return []EnrichedRecord{
		{Title: "Heat", Genres: []string{"Action", "Crime"}, Cast: []string{"Al Pacino", "Robert De Niro"}, Directors: []string{"Michael Mann"}, Runtime: "170 min"},
		{Title: "Collateral", Genres: []string{"Action", "Thriller"}, Cast: []string{"Tom Cruise", "Jamie Foxx"}, Directors: []string{"Michael Mann"}, Runtime: "120 min"},
		{Title: "Unknown", Genres: []string{"N/A"}, Cast: nil, Directors: []string{""}, Runtime: "N/A"},
		{Title: "The Irishman", Genres: []string{"Crime", "Drama"}, Cast: []string{"Robert De Niro", "Al Pacino"}, Directors: []string{"Martin Scorsese"}, Runtime: "about 209 minutes"},
	}
}

func TestAggregate(t *testing.T) {
	p := Aggregate(sampleRecords())

	wantGenres := map[string]int{"Action": 2, "Crime": 2, "Thriller": 1, "Drama": 1}
	if !reflect.DeepEqual(p.GenreCounts, wantGenres) {
		t.Errorf("GenreCounts = %v, want %v", p.GenreCounts, wantGenres)
	}
	if p.ActorCounts["Al Pacino"] != 2 || p.ActorCounts["Robert De Niro"] != 2 {
		t.Errorf("ActorCounts = %v", p.ActorCounts)
	}
	if len(p.DirectorCounts) != 2 || p.DirectorCounts["Michael Mann"] != 2 {
		t.Errorf("DirectorCounts = %v", p.DirectorCounts)
	}
	wantAvg := float64(170+120+209) / 3
	if math.Abs(p.AverageDuration-wantAvg) > 1e-9 {
		t.Errorf("AverageDuration = %v, want %v", p.AverageDuration, wantAvg)
	}
	if p.TotalMovies != 4 {
		t.Errorf("TotalMovies = %d, want 4", p.TotalMovies)
	}
}

func TestAggregate_Empty(t *testing.T) {
	p := Aggregate(nil)
	if p.TotalMovies != 0 || p.AverageDuration != 0 {
		t.Fatalf("empty aggregate = %+v", p)
	}
	if len(p.GenreCounts) != 0 || len(p.ActorCounts) != 0 || len(p.DirectorCounts) != 0 {
		t.Fatalf("empty aggregate has counts: %+v", p)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	records := sampleRecords()
	want := Aggregate(records)

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := append([]EnrichedRecord(nil), records...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Aggregate(shuffled)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("permutation %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestPreferences_TopGenres(t *testing.T) {
	p := &Preferences{GenreCounts: map[string]int{"Drama": 3, "Action": 3, "Comedy": 1, "Horror": 2}}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "top 3", n: 3, want: []string{"Action", "Drama", "Horror"}},
		{name: "more than available", n: 10, want: []string{"Action", "Drama", "Horror", "Comedy"}},
		{name: "zero", n: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.TopGenres(tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopGenres(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}
