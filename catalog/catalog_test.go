package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/store"
)

const moviesCSV = `budget,genres,id,original_title,overview,runtime,title
237000000,"[{""id"": 28, ""name"": ""Action""}, {""id"": 12, ""name"": ""Adventure""}]",19995,Avatar,"Long, long overview",162,Avatar
0,"[{""id"": 18, ""name"": ""Drama""}]",1,Untitled,,0,No Runtime
0,[],2,No Genres,,90,No Genres
0,"[{""id"": 35, ""name"": ""Comedy""}]",3,Orig Only,,95,
0,"[{""id"": 35, ""name"": ""Comedy""}]",4,,,,
0,"[{""id"": 80, ""name"": ""Crime""}]",949,Heat,,170.0,Heat
0,"[{""id"": 80, ""name"": ""Crime""}]",950,Heat,,120,Heat
`

const creditsCSV = `movie_id,title,cast,crew
19995,Avatar,"[{""name"": ""Sam Worthington""}, {""name"": ""Zoe Saldana""}]","[{""job"": ""Director"", ""name"": ""James Cameron""}, {""job"": ""Producer"", ""name"": ""Jon Landau""}]"
949,Heat,"[{""name"": ""Al Pacino""}]",not json
`

func TestFormatRuntime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"162", "162 min"},
		{"170.0", "170 min"},
		{"0", ""},
		{"", ""},
		{"N/A", ""},
		{"95 min", "95 min"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatRuntime(tt.in); got != tt.want {
				t.Errorf("FormatRuntime(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadAndBuild(t *testing.T) {
	movies, err := ReadMovies(strings.NewReader(moviesCSV))
	if err != nil {
		t.Fatalf("ReadMovies: %v", err)
	}
	if len(movies) != 7 {
		t.Fatalf("movies = %d, want 7", len(movies))
	}
	if movies[3].Title != "Orig Only" {
		t.Errorf("original_title fallback = %q", movies[3].Title)
	}
	if movies[4].Title != "Unknown" {
		t.Errorf("missing title = %q, want Unknown", movies[4].Title)
	}

	credits, err := ReadCredits(strings.NewReader(creditsCSV))
	if err != nil {
		t.Fatalf("ReadCredits: %v", err)
	}
	avatar := credits["19995"]
	if len(avatar.Cast) != 2 || len(avatar.Directors) != 1 || avatar.Directors[0] != "James Cameron" {
		t.Errorf("avatar credits = %+v", avatar)
	}
	if heat := credits["949"]; heat.Directors != nil {
		t.Errorf("bad crew json should yield no directors, got %v", heat.Directors)
	}

	recs := BuildRecords(movies, credits)
	got := make([]string, 0, len(recs))
	for _, r := range recs {
		got = append(got, r.Title)
		if r.UserID != core.SystemUserID {
			t.Errorf("%s owned by %q", r.Title, r.UserID)
		}
	}
	want := []string{"Avatar", "Orig Only", "Heat"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("records = %v, want %v", got, want)
	}
	if recs[0].Runtime != "162 min" || !recs[0].HasFullMetadata() {
		t.Errorf("avatar = %+v", recs[0])
	}
	if recs[2].Runtime != "170 min" || len(recs[2].Cast) != 1 {
		t.Errorf("heat = %+v", recs[2])
	}
}

func TestReadCast_Limit(t *testing.T) {
	var b strings.Builder
	b.WriteString("movie_id,cast,crew\n7,\"[")
	for i := 0; i < 15; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(`{""name"": ""Actor ` + string(rune('A'+i)) + `""}`)
	}
	b.WriteString("]\",[]\n")

	credits, err := ReadCredits(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ReadCredits: %v", err)
	}
	if n := len(credits["7"].Cast); n != maxCast {
		t.Fatalf("cast = %d, want %d", n, maxCast)
	}
}

func TestReadMovies_MissingColumn(t *testing.T) {
	_, err := ReadMovies(strings.NewReader("id,title\n1,A\n"))
	if !core.IsDomainError(err) {
		t.Fatalf("err = %v, want domain error", err)
	}
}

func TestSeeder(t *testing.T) {
	ctx := context.Background()
	rs := store.NewKVRecordStore(store.NewMemoryStore(), "seed")
	recs := []core.EnrichedRecord{
		{UserID: core.SystemUserID, Title: "A", Genres: []string{"Drama"}},
		{UserID: core.SystemUserID, Title: "B", Genres: []string{"Drama"}},
		{UserID: core.SystemUserID, Title: "C", Genres: []string{"Drama"}},
		{UserID: core.SystemUserID, Title: ""},
	}
	s := NewSeeder(rs, WithSeedBatchSize(2), WithSeedPause(0))

	res, err := s.Seed(ctx, recs)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Success != 3 || res.Errors != 1 || res.Existing != 0 {
		t.Fatalf("first seed = %+v", res)
	}

	res, err = s.Seed(ctx, recs[:3])
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Success != 0 || res.Existing != 3 {
		t.Fatalf("second seed = %+v", res)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Seed(cctx, recs); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled seed err = %v", err)
	}
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	rs := store.NewKVRecordStore(store.NewMemoryStore(), "quality")
	for _, r := range []core.EnrichedRecord{
		{UserID: core.SystemUserID, Title: "Full", Genres: []string{"Drama"}, Cast: []string{"X"}, Directors: []string{"Y"}, Runtime: "100 min"},
		{UserID: core.SystemUserID, Title: "Genre Only", Genres: []string{"Drama"}},
		{UserID: "u1", Title: "Mine", Cast: []string{"Z"}},
	} {
		if _, err := rs.InsertRecord(ctx, &r); err != nil {
			t.Fatal(err)
		}
	}

	rep, err := Inspect(ctx, rs, "", 0)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if rep.Total != 3 || rep.WithCast != 2 || rep.WithDir != 1 || rep.WithGenre != 2 || rep.WithTime != 1 || rep.Complete != 1 {
		t.Fatalf("report = %+v", rep)
	}

	rep, _ = Inspect(ctx, rs, "u1", 1)
	if rep.Total != 1 {
		t.Fatalf("sampled total = %d", rep.Total)
	}
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(moviesPath, []byte(moviesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/credits.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(creditsCSV))
	}))
	defer srv.Close()

	ctx := context.Background()
	recs, err := LoadRecords(ctx, AutoLoader{}, moviesPath, srv.URL+"/credits.csv")
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(recs) != 3 || recs[0].Directors[0] != "James Cameron" {
		t.Fatalf("records = %+v", recs)
	}

	if _, err := LoadRecords(ctx, AutoLoader{}, moviesPath, srv.URL+"/missing.csv"); err == nil {
		t.Fatal("expected error for missing credits")
	}
	if _, err := LoadRecords(ctx, AutoLoader{}, filepath.Join(dir, "nope.csv"), ""); err == nil {
		t.Fatal("expected error for missing movies file")
	}
}
