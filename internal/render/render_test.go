package render

import (
	"context"
	"strings"
	"testing"

	"genui/internal/registry"
	"genui/internal/uispec"
)

func TestRenderUnknownKeyIsNil(t *testing.T) {
	c := NewContext(uispec.Spec{}, registry.New())
	if out := c.RenderNode("ghost"); out != nil {
		t.Fatalf("unknown key must render nil, got %#v", out)
	}
}

func TestRenderForwardReferenceFiltered(t *testing.T) {
	spec := uispec.Spec{View: []uispec.Node{
		{Key: "root", Type: "Stack", Children: []string{"a", "not-yet", "b"}},
		{Key: "a", Type: "Text"},
		{Key: "b", Type: "Text"},
	}}
	c := NewContext(spec, registry.New())
	out := c.RenderNode("root")
	if out == nil {
		t.Fatalf("expected output")
	}
	if len(out.Children) != 2 {
		t.Fatalf("unseen child must be silently omitted, got %d children", len(out.Children))
	}
}

func TestRenderUnregisteredTypeFallsBackToPrimitive(t *testing.T) {
	spec := uispec.Spec{View: []uispec.Node{{Key: "x", Type: "Div"}}}
	out := NewContext(spec, registry.New()).RenderNode("x")
	if out == nil || out.Type != "div" {
		t.Fatalf("expected lowercase primitive fallback, got %#v", out)
	}
	if out.Err != "" {
		t.Fatalf("fallback is not an error: %q", out.Err)
	}
}

func TestRenderFailedToLoadComponent(t *testing.T) {
	reg := registry.New()
	// Registered with a nil target records a load failure.
	if err := reg.RegisterComponent(registry.ComponentDef{Name: "Chart"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	spec := uispec.Spec{View: []uispec.Node{{Key: "c", Type: "Chart"}}}
	out := NewContext(spec, reg).RenderNode("c")
	if out == nil || out.Err == "" {
		t.Fatalf("load failure must surface as an inline error, got %#v", out)
	}
	if !strings.Contains(out.Err, "Chart") {
		t.Fatalf("error must carry the type name: %q", out.Err)
	}
}

func TestRenderChildrenFromProps(t *testing.T) {
	spec := uispec.Spec{View: []uispec.Node{
		{Key: "root", Type: "Stack", Props: map[string]any{"children": []any{"a"}}},
		{Key: "a", Type: "Text"},
	}}
	out := NewContext(spec, registry.New()).RenderNode("root")
	if out == nil || len(out.Children) != 1 || out.Children[0].Key != "a" {
		t.Fatalf("children prop must act as key list, got %#v", out)
	}
	if _, leaked := out.Props["children"]; leaked {
		t.Fatalf("consumed key list must not leak as a prop")
	}
}

func TestRenderVisibleGate(t *testing.T) {
	spec := uispec.Spec{
		View: []uispec.Node{{Key: "x", Type: "Text", Props: map[string]any{"visible": "{show}"}}},
		Data: map[string]any{"show": false},
	}
	c := NewContext(spec, registry.New())
	if out := c.RenderNode("x"); out != nil {
		t.Fatalf("visible=false must suppress the node")
	}
	c.StoreRef().Update(func(prev map[string]any) map[string]any {
		return map[string]any{"show": true}
	})
	if out := c.RenderNode("x"); out == nil {
		t.Fatalf("visible=true must render")
	}
}

func TestRenderAdapterPanicBecomesInlineError(t *testing.T) {
	reg := registry.New()
	err := reg.RegisterComponent(registry.ComponentDef{
		Name:   "Boom",
		Target: "boom-widget",
		ResolveProps: func(props map[string]any, env registry.RenderEnv) map[string]any {
			panic("adapter exploded")
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	spec := uispec.Spec{View: []uispec.Node{
		{Key: "root", Type: "Stack", Children: []string{"bad", "ok"}},
		{Key: "bad", Type: "Boom"},
		{Key: "ok", Type: "Text"},
	}}
	out := NewContext(spec, reg).RenderNode("root")
	if out == nil || len(out.Children) != 2 {
		t.Fatalf("siblings must survive a failing subtree: %#v", out)
	}
	if out.Children[0].Err == "" {
		t.Fatalf("failing node must render an inline error")
	}
	if out.Children[1].Err != "" {
		t.Fatalf("healthy sibling must be untouched")
	}
}

func TestRenderCycleDepthCapped(t *testing.T) {
	spec := uispec.Spec{View: []uispec.Node{
		{Key: "a", Type: "Stack", Children: []string{"b"}},
		{Key: "b", Type: "Stack", Children: []string{"a"}},
	}}
	out := NewContext(spec, registry.New()).RenderNode("a")
	if out == nil {
		t.Fatalf("expected truncated output, not nil")
	}
	depth := 0
	for cur := out; cur != nil; {
		depth++
		if len(cur.Children) == 0 {
			cur = nil
		} else {
			cur = cur.Children[0]
		}
	}
	if depth > maxRenderDepth {
		t.Fatalf("cycle must be capped, rendered depth %d", depth)
	}
}

func TestRenderReplacedNodeUsesLatestDefinition(t *testing.T) {
	var agg uispec.Aggregator
	agg.Push(uispec.Update{View: []uispec.Node{{Key: "a", Type: "Text", Props: map[string]any{"text": "old"}}}})
	c := NewContext(agg.Spec(), registry.New())
	agg.Push(uispec.Update{View: []uispec.Node{{Key: "a", Type: "Text", Props: map[string]any{"text": "new"}}}})
	c.ApplySpec(agg.Spec())
	out := c.RenderNode("a")
	if out == nil || out.Props["text"] != "new" {
		t.Fatalf("replaced definition must win: %#v", out)
	}
}

func TestMissingRefs(t *testing.T) {
	spec := uispec.Spec{View: []uispec.Node{
		{Key: "root", Type: "Stack", Children: []string{"a", "ghost"}},
		{Key: "a", Type: "Card", Props: map[string]any{"content": []any{"phantom"}}},
	}}
	c := NewContext(spec, registry.New())
	missing := c.MissingRefs()
	if len(missing) != 2 {
		t.Fatalf("expected two unresolved refs, got %v", missing)
	}
}

// The end-to-end scenario: data delta, a Card referencing a Button, prop
// resolution through the store, and an action invocation.
func TestRenderEndToEnd(t *testing.T) {
	updates := []uispec.Update{
		{Data: map[string]any{"title": "Hi"}},
		{View: []uispec.Node{{
			Key:      "root",
			Type:     "Card",
			Props:    map[string]any{"title": "{title}"},
			Children: []string{"btn"},
		}}},
		{View: []uispec.Node{{
			Key:  "btn",
			Type: "Button",
			Props: map[string]any{
				"text":    "Go",
				"onClick": map[string]any{"name": "navigate", "params": map[string]any{"url": "/x"}},
			},
		}}},
	}
	spec := uispec.Aggregate(updates)
	if len(spec.View) != 2 {
		t.Fatalf("expected two nodes, got %d", len(spec.View))
	}
	if spec.Data["title"] != "Hi" {
		t.Fatalf("unexpected data: %#v", spec.Data)
	}

	var invoked map[string]any
	reg := registry.New()
	if err := reg.RegisterComponent(registry.ComponentDef{Name: "Card", Target: "card-widget"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := reg.RegisterComponent(registry.ComponentDef{
		Name:   "Button",
		Target: "button-widget",
		ResolveProps: func(props map[string]any, env registry.RenderEnv) map[string]any {
			if cfg, ok := props["onClick"]; ok {
				if inv := env.BindAction(cfg); inv != nil {
					props["onClick"] = inv
				} else {
					delete(props, "onClick")
				}
			}
			return props
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterAction(registry.ActionDef{
		Name: "navigate",
		Handler: func(_ context.Context, params map[string]any) (map[string]any, error) {
			invoked = params
			return nil, nil
		},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	c := NewContext(spec, reg)
	out := c.RenderNode("root")
	if out == nil {
		t.Fatalf("expected card output")
	}
	if out.Props["title"] != "Hi" {
		t.Fatalf("title must resolve from the store: %#v", out.Props)
	}
	if len(out.Children) != 1 || out.Children[0].Type != "Button" {
		t.Fatalf("expected a single Button child: %#v", out.Children)
	}
	inv, ok := out.Children[0].Props["onClick"].(Invoker)
	if !ok {
		t.Fatalf("onClick must be a bound invoker: %#v", out.Children[0].Props["onClick"])
	}
	if _, err := inv(context.Background()); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if invoked["url"] != "/x" {
		t.Fatalf("navigate must receive {url: /x}: %#v", invoked)
	}
}
