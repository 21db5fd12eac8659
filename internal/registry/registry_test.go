package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopHandler(_ context.Context, _ map[string]any) (map[string]any, error) {
	return nil, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterComponent(ComponentDef{Name: "Card", Target: "card-widget"}))
	require.NoError(t, r.RegisterAction(ActionDef{Name: "navigate", Handler: nopHandler}))

	def, ok := r.Component("Card")
	require.True(t, ok)
	assert.Equal(t, "card-widget", def.Target)

	_, ok = r.Component("Missing")
	assert.False(t, ok)

	act, ok := r.Action("navigate")
	require.True(t, ok)
	assert.NotNil(t, act.Handler)
}

func TestRegisterRejectsDuplicatesAndBlanks(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterComponent(ComponentDef{Name: "Card"}))
	assert.Error(t, r.RegisterComponent(ComponentDef{Name: "Card"}))
	assert.Error(t, r.RegisterComponent(ComponentDef{Name: "  "}))
	assert.Error(t, r.RegisterAction(ActionDef{Name: "noop"})) // missing handler
}

func TestCatalogsSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, r.RegisterComponent(ComponentDef{Name: name}))
	}
	defs := r.Components()
	require.Len(t, defs, 3)
	assert.Equal(t, "Alpha", defs[0].Name)
	assert.Equal(t, "Zeta", defs[2].Name)
}

func TestContentProps(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterComponent(ComponentDef{Name: "List", ContentProps: []string{"items"}}))
	props := r.ContentProps()
	assert.True(t, props["children"])
	assert.True(t, props["content"])
	assert.True(t, props["items"])
	assert.False(t, props["tags"])
}

func TestValidateActionParams(t *testing.T) {
	r := New()
	def := ActionDef{
		Name: "navigate",
		Params: map[string]any{
			"type":     "object",
			"required": []any{"url"},
			"properties": map[string]any{
				"url": map[string]any{"type": "string"},
			},
		},
		Handler: nopHandler,
	}
	require.NoError(t, r.RegisterAction(def))

	assert.NoError(t, r.ValidateActionParams(def, map[string]any{"url": "/x"}))
	assert.Error(t, r.ValidateActionParams(def, map[string]any{"url": 42}))
	assert.Error(t, r.ValidateActionParams(def, nil))

	// No schema accepts anything.
	free := ActionDef{Name: "free", Handler: nopHandler}
	assert.NoError(t, r.ValidateActionParams(free, map[string]any{"anything": true}))
}
