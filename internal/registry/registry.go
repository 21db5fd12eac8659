// Package registry holds the component and action catalogs a render session
// works against. The registry is an explicit object passed by reference into
// the orchestrator and renderer; there are no module-level tables, so two
// sessions (or two tests) never share hidden state.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RenderEnv is the slice of the render context exposed to prop adapters.
// The renderer implements it; keeping it here lets component packages
// declare adapters without importing the renderer.
type RenderEnv interface {
	// RenderChild renders the node registered under key and returns the
	// renderer's output, or nil when the key is not (yet) known.
	RenderChild(key string) any
	// BindData returns a getter/setter pair over a dot path in the store.
	BindData(path string) (get func() any, set func(value any))
	// BindAction turns an action-config prop value into an invoker, or nil
	// when the named action is not registered.
	BindAction(config any) any
	// Store returns the current data store snapshot.
	Store() map[string]any
}

// PropsAdapter lets a component type post-process its resolved props: turn
// child-key arrays into rendered children, action configs into invokers.
type PropsAdapter func(props map[string]any, env RenderEnv) map[string]any

// ComponentDef describes one render-target type.
//
// Target is the opaque widget handle the host framework renders. A def
// registered with a nil Target records a component that failed to load;
// the renderer shows an inline error for it instead of dropping the node.
type ComponentDef struct {
	Name         string
	Description  string
	Params       map[string]any // JSON-Schema-shaped props description
	ContentProps []string       // props that carry child node keys
	Target       any
	ResolveProps PropsAdapter
}

// ActionHandler executes a registered action with fully resolved params.
type ActionHandler func(ctx context.Context, params map[string]any) (map[string]any, error)

// ActionDef describes one invocable action.
type ActionDef struct {
	Name        string
	Description string
	Params      map[string]any // JSON-Schema-shaped
	Returns     map[string]any // JSON-Schema-shaped, nil when the action returns nothing
	Handler     ActionHandler
}

// Registry is the catalog pair handed to a render session.
type Registry struct {
	mu         sync.RWMutex
	components map[string]ComponentDef
	actions    map[string]ActionDef
}

func New() *Registry {
	return &Registry{
		components: make(map[string]ComponentDef),
		actions:    make(map[string]ActionDef),
	}
}

func (r *Registry) RegisterComponent(def ComponentDef) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return fmt.Errorf("registry: component name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[def.Name]; exists {
		return fmt.Errorf("registry: component %q already registered", def.Name)
	}
	r.components[def.Name] = def
	return nil
}

func (r *Registry) RegisterAction(def ActionDef) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return fmt.Errorf("registry: action name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("registry: action %q has no handler", def.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[def.Name]; exists {
		return fmt.Errorf("registry: action %q already registered", def.Name)
	}
	r.actions[def.Name] = def
	return nil
}

func (r *Registry) Component(name string) (ComponentDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.components[name]
	return def, ok
}

func (r *Registry) Action(name string) (ActionDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.actions[name]
	return def, ok
}

// Components returns the catalog sorted by name, for prompt assembly.
func (r *Registry) Components() []ComponentDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ComponentDef, 0, len(r.components))
	for _, def := range r.components {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Actions returns the catalog sorted by name, for prompt assembly.
func (r *Registry) Actions() []ActionDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ActionDef, 0, len(r.actions))
	for _, def := range r.actions {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ContentProps is the union of "children"/"content" and every prop name the
// registered components declare as child-key carriers.
func (r *Registry) ContentProps() map[string]bool {
	out := map[string]bool{"children": true, "content": true}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, def := range r.components {
		for _, name := range def.ContentProps {
			out[name] = true
		}
	}
	return out
}
