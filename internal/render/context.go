// Package render resolves streamed UI nodes into render outputs: children by
// key reference, props through variable resolution and per-type adapters,
// data paths into two-way bindings, action configs into invokers.
package render

import (
	"sync"

	"genui/internal/registry"
	"genui/internal/uispec"
)

// StoreRef is the live mutable data store owned by one render session. All
// writes go through Update so every setter reads the latest committed state;
// two bindings firing in the same tick cannot lose each other's writes.
type StoreRef struct {
	mu   sync.Mutex
	data map[string]any
}

func NewStoreRef(initial map[string]any) *StoreRef {
	if initial == nil {
		initial = map[string]any{}
	}
	return &StoreRef{data: initial}
}

// Snapshot returns the current committed store. Callers treat it as
// read-only; writes go through Update.
func (s *StoreRef) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Update commits fn(previous) as the new store state.
func (s *StoreRef) Update(fn func(prev map[string]any) map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.data)
	if next == nil {
		next = map[string]any{}
	}
	s.data = next
}

// Context carries everything one render pass needs: the node map, the
// catalogs, and the session store.
type Context struct {
	nodes map[string]uispec.Node
	reg   *registry.Registry
	store *StoreRef
	depth int
}

var _ registry.RenderEnv = (*Context)(nil)

// NewContext starts a render session over an aggregated spec. The spec's
// data becomes the session's live store.
func NewContext(spec uispec.Spec, reg *registry.Registry) *Context {
	return &Context{
		nodes: spec.NodeMap(),
		reg:   reg,
		store: NewStoreRef(spec.Data),
	}
}

// ApplySpec folds a newer aggregated spec into the session: the node map is
// replaced, and the spec's data is merged over the live store so streamed
// values land without discarding edits made through bindings at other paths.
func (c *Context) ApplySpec(spec uispec.Spec) {
	c.nodes = spec.NodeMap()
	c.store.Update(func(prev map[string]any) map[string]any {
		return uispec.MergeData(prev, spec.Data)
	})
}

// Node returns the streamed definition for key.
func (c *Context) Node(key string) (uispec.Node, bool) {
	n, ok := c.nodes[key]
	return n, ok
}

// Registry returns the catalogs this session renders against.
func (c *Context) Registry() *registry.Registry { return c.reg }

// Store implements registry.RenderEnv.
func (c *Context) Store() map[string]any { return c.store.Snapshot() }

// StoreRef exposes the session store for hosts that drive updates directly.
func (c *Context) StoreRef() *StoreRef { return c.store }

// MissingRefs lists child keys referenced by the current view that have no
// node definition. Mid-stream this is normal; after stream completion the
// orchestrator logs it as a caller-visible inconsistency.
func (c *Context) MissingRefs() []string {
	return uispec.MissingRefs(c.nodes, c.reg.ContentProps())
}
