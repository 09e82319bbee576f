// Package catalog 负责目录种子数据：把 TMDB 电影与演职员 CSV 转换为系统用户名下的记录并批量写入，
// 另外提供数据质量检查。
//
//	movies, _ := catalog.ReadMovies(moviesCSV)
//	credits, _ := catalog.ReadCredits(creditsCSV)
//	recs := catalog.BuildRecords(movies, credits)
//	res, err := catalog.NewSeeder(records).Seed(ctx, recs)
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/tastekit/core"
)

// maxCast 是每部电影保留的演员数
const maxCast = 10

// Movie 是 TMDB movies CSV 中的一行（只保留用到的列）。
type Movie struct {
	ID      string
	Title   string
	Genres  []string
	Runtime string // "<n> min"，未知为空
}

// Valid 判断电影是否可以作为目录数据。
func (m Movie) Valid() bool {
	t := strings.TrimSpace(m.Title)
	return t != "" && t != "Unknown" && t != core.NotAvailable &&
		len(m.Genres) > 0 && m.Runtime != ""
}

// Credit 是 TMDB credits CSV 中的一行，Cast/Directors 已解析。
type Credit struct {
	MovieID   string
	Cast      []string
	Directors []string
}

type namedEntry struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// parseNames 解析 `[{"name":..}]` 形式的 JSON 数组，格式不对时返回空。
func parseNames(raw string) []namedEntry {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []namedEntry
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func names(entries []namedEntry, limit int, keep func(namedEntry) bool) []string {
	var out []string
	for _, e := range entries {
		if keep != nil && !keep(e) {
			continue
		}
		out = append(out, e.Name)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return core.CleanList(out)
}

// FormatRuntime 把分钟数文本转换为 "<n> min"，无法解析或为 0 时返回空。
func FormatRuntime(raw string) string {
	raw = strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if n := int(f); n > 0 {
			return strconv.Itoa(n) + " min"
		}
		return ""
	}
	if n := core.ExtractMinutes(raw); n > 0 {
		return strconv.Itoa(n) + " min"
	}
	return ""
}

// csvRows 读取带表头的 CSV，逐行以 列名->值 的形式回调。
func csvRows(r io.Reader, required []string, fn func(row map[string]string)) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("csv missing column %q", col))
		}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("read csv line %d: %w", line, err)
		}
		row := make(map[string]string, len(index))
		for col, i := range index {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		fn(row)
	}
}

// ReadMovies 读取 TMDB movies CSV（至少包含 id,title,genres,runtime 列）。
// title 为空时回退到 original_title。
func ReadMovies(r io.Reader) ([]Movie, error) {
	var out []Movie
	err := csvRows(r, []string{"id", "genres", "runtime"}, func(row map[string]string) {
		title := row["title"]
		if title == "" {
			title = row["original_title"]
		}
		if title == "" {
			title = "Unknown"
		}
		out = append(out, Movie{
			ID:      row["id"],
			Title:   title,
			Genres:  names(parseNames(row["genres"]), 0, nil),
			Runtime: FormatRuntime(row["runtime"]),
		})
	})
	return out, err
}

// ReadCredits 读取 TMDB credits CSV（movie_id,cast,crew），返回以电影 id 为键的索引。
// 缺少 movie_id 列时使用 id 列。
func ReadCredits(r io.Reader) (map[string]Credit, error) {
	out := make(map[string]Credit)
	err := csvRows(r, []string{"cast", "crew"}, func(row map[string]string) {
		id := row["movie_id"]
		if id == "" {
			id = row["id"]
		}
		if id == "" {
			return
		}
		out[id] = Credit{
			MovieID: id,
			Cast:    names(parseNames(row["cast"]), maxCast, nil),
			Directors: names(parseNames(row["crew"]), 0, func(e namedEntry) bool {
				return e.Job == "Director"
			}),
		}
	})
	return out, err
}

// BuildRecords 过滤无效电影并与演职员信息合并为系统用户的记录。
// 同名电影只保留第一部。
func BuildRecords(movies []Movie, credits map[string]Credit) []core.EnrichedRecord {
	seen := make(map[string]struct{}, len(movies))
	out := make([]core.EnrichedRecord, 0, len(movies))
	for _, m := range movies {
		if !m.Valid() {
			continue
		}
		title := strings.TrimSpace(m.Title)
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		rec := core.EnrichedRecord{
			UserID:  core.SystemUserID,
			Title:   title,
			Genres:  m.Genres,
			Runtime: m.Runtime,
		}
		if c, ok := credits[m.ID]; ok {
			rec.Cast = c.Cast
			rec.Directors = c.Directors
		}
		out = append(out, rec)
	}
	return out
}
