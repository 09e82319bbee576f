package builders

import (
	"fmt"

	"github.com/rushteam/tastekit/config"
	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/filter"
	"github.com/rushteam/tastekit/model"
	"github.com/rushteam/tastekit/pipeline"
	"github.com/rushteam/tastekit/pkg/conv"
	"github.com/rushteam/tastekit/rank"
	"github.com/rushteam/tastekit/recall"
	"github.com/rushteam/tastekit/rerank"
)

func init() {
	config.Register("recall.catalog", BuildCatalogNode)
	config.Register("recall.popular", BuildPopularNode)
	config.Register("recall.genre_backfill", BuildGenreBackfillNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.content", BuildContentNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("postprocess.explain", BuildExplainNode)
}

var errNoRecords = core.NewDomainError(core.ModuleConfig, core.ErrorCodePreconditionFailed, "build context has no record store")

func records(bc *pipeline.BuildContext) (core.RecordStore, error) {
	if bc == nil || bc.Records == nil {
		return nil, errNoRecords
	}
	return bc.Records, nil
}

func BuildCatalogNode(_ map[string]any, bc *pipeline.BuildContext) (pipeline.Node, error) {
	rs, err := records(bc)
	if err != nil {
		return nil, err
	}
	return &recall.Catalog{Store: rs}, nil
}

func BuildPopularNode(cfg map[string]any, bc *pipeline.BuildContext) (pipeline.Node, error) {
	rs, err := records(bc)
	if err != nil {
		return nil, err
	}
	return &recall.Popular{
		Store:     rs,
		Limit:     conv.ConfigGetInt(cfg, "limit", 0),
		Overfetch: conv.ConfigGetInt(cfg, "overfetch", 0),
		Score:     conv.ConfigGetFloat64(cfg, "score", bc.RecommendDefaults().PopularScore()),
		Reason:    conv.ConfigGet(cfg, "reason", core.ReasonPopular),
	}, nil
}

func BuildGenreBackfillNode(cfg map[string]any, bc *pipeline.BuildContext) (pipeline.Node, error) {
	rs, err := records(bc)
	if err != nil {
		return nil, err
	}
	d := bc.RecommendDefaults()
	return &recall.GenreBackfill{
		Store:     rs,
		TopGenres: conv.ConfigGetInt(cfg, "top_genres", d.BackfillTopGenres()),
		Score:     conv.ConfigGetFloat64(cfg, "score", d.BackfillScore()),
		Limit:     conv.ConfigGetInt(cfg, "limit", 0),
	}, nil
}

// BuildFanoutNode 构建并发召回，sources 中每一项是一个召回 Node 的配置：
//
//	sources:
//	  - type: recall.catalog
//	  - type: recall.genre_backfill
//	    config: {top_genres: 2}
func BuildFanoutNode(cfg map[string]any, bc *pipeline.BuildContext) (pipeline.Node, error) {
	raw, ok := cfg["sources"].([]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(raw))
	for _, sc := range raw {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		var (
			node pipeline.Node
			err  error
		)
		sub := conv.ConfigGetMap(sourceMap, "config")
		switch t := conv.ConfigGet(sourceMap, "type", ""); t {
		case "recall.catalog", "catalog":
			node, err = BuildCatalogNode(sub, bc)
		case "recall.popular", "popular":
			node, err = BuildPopularNode(sub, bc)
		case "recall.genre_backfill", "genre_backfill":
			node, err = BuildGenreBackfillNode(sub, bc)
		default:
			return nil, fmt.Errorf("unknown source type: %s", t)
		}
		if err != nil {
			return nil, err
		}
		src, ok := node.(recall.Source)
		if !ok {
			return nil, fmt.Errorf("node %s is not a recall source", node.Name())
		}
		sources = append(sources, src)
	}
	return &recall.Fanout{
		Sources: sources,
		Dedup:   conv.ConfigGet(cfg, "dedup", true),
		Timeout: conv.ConfigGetDuration(cfg, "timeout", 0),
	}, nil
}

func BuildFilterNode(cfg map[string]any, bc *pipeline.BuildContext) (pipeline.Node, error) {
	raw, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	var adapter *filter.StoreAdapter
	if bc != nil {
		adapter = filter.NewStoreAdapter(bc.Records, bc.KV)
	} else {
		adapter = filter.NewStoreAdapter(nil, nil)
	}

	filters := make([]filter.Filter, 0, len(raw))
	for _, fc := range raw {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch t := conv.ConfigGet(filterMap, "type", ""); t {
		case "watched":
			filters = append(filters, filter.NewWatchedFilter(adapter))
		case "blacklist":
			key := conv.ConfigGet(filterMap, "key", "")
			var store filter.BlacklistStore
			if key != "" {
				store = adapter
			}
			filters = append(filters, filter.NewBlacklistFilter(
				conv.ConfigGetStrings(filterMap, "ids"),
				conv.ConfigGetStrings(filterMap, "titles"),
				store, key,
			))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""), conv.ConfigGet(filterMap, "keep", false))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", t)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildContentNode 支持覆盖权重：
//
//	weights: {genre: 0.35, actor: 0.35, director: 0.2, duration: 0.1}
func BuildContentNode(cfg map[string]any, bc *pipeline.BuildContext) (pipeline.Node, error) {
	w := model.DefaultWeights
	if wm := conv.ConfigGetMap(cfg, "weights"); wm != nil {
		w = model.Weights{
			Genre:    conv.ConfigGetFloat64(wm, "genre", w.Genre),
			Actor:    conv.ConfigGetFloat64(wm, "actor", w.Actor),
			Director: conv.ConfigGetFloat64(wm, "director", w.Director),
			Duration: conv.ConfigGetFloat64(wm, "duration", w.Duration),
		}
		if w.Genre < 0 || w.Actor < 0 || w.Director < 0 || w.Duration < 0 {
			return nil, fmt.Errorf("weights must be non-negative: %+v", w)
		}
	}
	minSim := conv.ConfigGetFloat64(cfg, "min_similarity", bc.RecommendDefaults().MinSimilarity())
	if minSim < 0 || minSim > 1 {
		return nil, fmt.Errorf("min_similarity %v outside [0,1]", minSim)
	}
	return &rank.ContentNode{
		Model:         &model.ContentModel{Weights: w},
		MinSimilarity: minSim,
	}, nil
}

func BuildDiversityNode(cfg map[string]any, _ *pipeline.BuildContext) (pipeline.Node, error) {
	return &rerank.Diversity{Limit: conv.ConfigGetInt(cfg, "limit", 0)}, nil
}

func BuildTopNNode(cfg map[string]any, _ *pipeline.BuildContext) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func BuildExplainNode(_ map[string]any, _ *pipeline.BuildContext) (pipeline.Node, error) {
	return &rerank.ExplainNode{}, nil
}
