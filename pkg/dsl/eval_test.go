package dsl

import (
	"testing"

	"github.com/rushteam/tastekit/core"
	"github.com/rushteam/tastekit/pkg/utils"
)

func TestProgram_Match(t *testing.T) {
	item := core.NewRecordItem(&core.EnrichedRecord{
		ID:      "r1",
		Title:   "Alien",
		Genres:  []string{"Horror", "Sci-Fi"},
		Cast:    []string{"Sigourney Weaver"},
		Runtime: "117 min",
	})
	item.Score = 0.42
	item.PutLabel(utils.LabelRecallSource, utils.NewLabel("catalog", "recall"))
	rctx := &core.RecommendContext{UserID: "u1", Limit: 10}

	tests := []struct {
		name    string
		expr    string
		want    bool
		wantErr bool
	}{
		{name: "genre membership", expr: `"Horror" in item.genres`, want: true},
		{name: "genre miss", expr: `"Comedy" in item.genres`, want: false},
		{name: "minutes", expr: `item.minutes > 100 && item.minutes < 150`, want: true},
		{name: "label and score", expr: `label.recall_source == "catalog" && item.score > 0.4`, want: true},
		{name: "rctx", expr: `rctx.user_id == "u1" && rctx.limit == 10`, want: true},
		{name: "non boolean", expr: `item.score`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.expr, err)
			}
			got, err := p.Match(item, rctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Match err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	if _, err := Compile(`item.genres ==`); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestEvaluate_Empty(t *testing.T) {
	ok, err := Evaluate("", nil, nil)
	if err != nil || !ok {
		t.Fatalf("Evaluate(\"\") = %v, %v", ok, err)
	}
}
