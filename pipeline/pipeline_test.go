package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/tastekit/core"
)

type appendNode struct {
	id  string
	err error
}

func (n *appendNode) Name() string { return "test.append." + n.id }
func (n *appendNode) Kind() Kind   { return KindRecall }

func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

type recordingHook struct {
	before, after []string
}

func (h *recordingHook) BeforeNode(_ context.Context, _ *core.RecommendContext, node Node, _ int) {
	h.before = append(h.before, node.Name())
}

func (h *recordingHook) AfterNode(_ context.Context, _ *core.RecommendContext, node Node, _ int, _ time.Duration, _ error) {
	h.after = append(h.after, node.Name())
}

func TestPipeline_Run(t *testing.T) {
	hook := &recordingHook{}
	p := (&Pipeline{Nodes: []Node{&appendNode{id: "a"}, &appendNode{id: "b"}}}).Use(hook)

	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("items = %v", items)
	}
	if len(hook.before) != 2 || len(hook.after) != 2 {
		t.Fatalf("hook calls before=%v after=%v", hook.before, hook.after)
	}
}

func TestPipeline_RunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&appendNode{id: "a"}, &appendNode{id: "b", err: boom}}}

	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if items != nil {
		t.Fatalf("expected no partial result, got %v", items)
	}
}

func TestConfig_BuildPipeline(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  name: demo
  nodes:
    - type: test.append
      config:
        id: x
`))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	f := NewNodeFactory()
	f.Register("test.append", func(c map[string]any, _ *BuildContext) (Node, error) {
		id, _ := c["id"].(string)
		return &appendNode{id: id}, nil
	})

	p, err := cfg.BuildPipeline(f, nil)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	if p.Name != "demo" || len(p.Nodes) != 1 || p.Nodes[0].Name() != "test.append.x" {
		t.Fatalf("pipeline = %+v", p)
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "missing"})
	if _, err := cfg.BuildPipeline(f, nil); err == nil {
		t.Fatal("expected unknown node type error")
	}
}
