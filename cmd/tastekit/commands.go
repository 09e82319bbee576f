package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/tastekit/catalog"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/enrich"
	"github.com/rushteam/tastekit/pkg/logging"
	"github.com/rushteam/tastekit/recommend"
)

func runEnrich(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	user := fs.String("user", "", "用户 ID")
	file := fs.String("file", "-", "历史标题文件，每行一个，- 表示标准输入")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	provider, err := app.provider()
	if err != nil {
		return err
	}
	e := enrich.New(provider, app.records,
		enrich.WithBatchSize(app.cfg.Enrich.BatchSize),
		enrich.WithBatchDelay(app.cfg.Enrich.BatchDelay),
		enrich.WithProgress(func(p enrich.Progress) {
			fmt.Fprintf(os.Stderr, "\rbatch %d/%d  %d/%d titles", p.Batch, p.TotalBatches, p.Processed, p.Total)
			if p.Batch == p.TotalBatches {
				fmt.Fprintln(os.Stderr)
			}
		}),
	)

	ctx = logging.ContextWithNewCorrelationID(ctx)
	res, err := e.EnrichFrom(ctx, *user, enrich.LineSource{R: r})
	fmt.Fprintf(app.stdout, "resolved %d titles (reused %d, fetched %d, failed %d)\n",
		len(res.Records), res.Reused, res.Fetched, res.Failed)
	return err
}

func runRecommend(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	user := fs.String("user", "", "用户 ID")
	limit := fs.Int("limit", 0, "推荐条数，0 使用配置默认值")
	asJSON := fs.Bool("json", false, "以 JSON 输出")
	if err := fs.Parse(args); err != nil {
		return err
	}

	eng, err := app.engine()
	if err != nil {
		return err
	}
	recs, err := eng.RecommendForUser(ctx, *user, *limit)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(app.stdout, recommendationsView(recs))
	}
	if len(recs) == 0 {
		fmt.Fprintln(app.stdout, "no recommendations")
		return nil
	}
	for i, r := range recs {
		fmt.Fprintf(app.stdout, "%2d. %-40s %.2f  %s\n", i+1, r.Record.Title, r.Similarity, r.Reason)
	}
	return nil
}

type recommendationJSON struct {
	Title      string   `json:"title"`
	Genres     []string `json:"genres,omitempty"`
	Cast       []string `json:"cast,omitempty"`
	Directors  []string `json:"directors,omitempty"`
	Runtime    string   `json:"runtime,omitempty"`
	PosterURL  string   `json:"poster_url,omitempty"`
	Similarity float64  `json:"similarity"`
	Reason     string   `json:"reason"`
}

func recommendationsView(recs []recommend.Recommendation) []recommendationJSON {
	out := make([]recommendationJSON, 0, len(recs))
	for _, r := range recs {
		out = append(out, recommendationJSON{
			Title:      r.Record.Title,
			Genres:     r.Record.Genres,
			Cast:       r.Record.Cast,
			Directors:  r.Record.Directors,
			Runtime:    r.Record.Runtime,
			PosterURL:  r.Record.PosterURL,
			Similarity: r.Similarity,
			Reason:     r.Reason,
		})
	}
	return out
}

func runSeed(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	movies := fs.String("movies", "", "TMDB movies CSV（路径或 URL）")
	credits := fs.String("credits", "", "TMDB credits CSV（路径或 URL，可选）")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *movies == "" {
		return errors.New("seed: -movies is required")
	}

	recs, err := catalog.LoadRecords(ctx, catalog.AutoLoader{}, *movies, *credits)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("records", len(recs)).Msg("catalog parsed")

	s := catalog.NewSeeder(app.records,
		catalog.WithSeedBatchSize(app.cfg.Catalog.BatchSize),
		catalog.WithSeedPause(app.cfg.Catalog.BatchPause),
	)
	res, err := s.Seed(ctx, recs)
	fmt.Fprintf(app.stdout, "seeded %d records (existing %d, errors %d)\n", res.Success, res.Existing, res.Errors)
	return err
}

func runQuality(ctx context.Context, app *application, args []string) error {
	fs := flag.NewFlagSet("quality", flag.ContinueOnError)
	sample := fs.Int("sample", 10, "检查的记录数，0 表示全部")
	exclude := fs.String("exclude-user", "", "排除该用户的记录")
	verbose := fs.Bool("v", false, "打印样本明细")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rep, err := catalog.Inspect(ctx, app.records, *exclude, *sample)
	if err != nil {
		return err
	}
	if *verbose {
		for i, r := range rep.Samples {
			fmt.Fprintf(app.stdout, "%d. %s\n   genre: %s\n   cast: %s\n   director: %s\n   runtime: %s\n",
				i+1, r.Title, orNA(strings.Join(r.Genres, ", ")), orNA(strings.Join(r.Cast, ", ")),
				orNA(strings.Join(r.Directors, ", ")), orNA(r.Runtime))
		}
	}
	fmt.Fprintf(app.stdout, "records: %d\n  with cast:     %d/%d\n  with director: %d/%d\n  with genres:   %d/%d\n  with runtime:  %d/%d\n  complete:      %d/%d\n",
		rep.Total, rep.WithCast, rep.Total, rep.WithDir, rep.Total, rep.WithGenre, rep.Total,
		rep.WithTime, rep.Total, rep.Complete, rep.Total)
	return nil
}

func orNA(s string) string {
	if s == "" {
		return core.NotAvailable
	}
	return s
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
