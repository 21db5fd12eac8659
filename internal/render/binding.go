package render

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"genui/internal/uispec"
	"genui/internal/util/datapath"
)

// DataBinding is a transient two-way binding to a store path, recreated per
// render pass. Set routes through the session updater so it always applies
// against the latest committed store.
type DataBinding struct {
	Get func() any
	Set func(value any)
}

// DataBinding builds a get/set pair over a dot path.
func (c *Context) DataBinding(path string) DataBinding {
	store := c.store
	return DataBinding{
		Get: func() any { return datapath.Get(store.Snapshot(), path) },
		Set: func(value any) {
			store.Update(func(prev map[string]any) map[string]any {
				return datapath.SetCopy(prev, path, value)
			})
		},
	}
}

// BindData implements registry.RenderEnv.
func (c *Context) BindData(path string) (func() any, func(value any)) {
	b := c.DataBinding(path)
	return b.Get, b.Set
}

// ActionArg is the argument a host passes when firing an invoker: either a
// data object merged into the action params, or an opaque UI event that is
// ignored for param purposes.
type ActionArg struct {
	isEvent bool
	data    map[string]any
	event   any
}

func DataArg(data map[string]any) ActionArg { return ActionArg{data: data} }
func EventArg(event any) ActionArg          { return ActionArg{isEvent: true, event: event} }

// ArgFromHost classifies an opaque host value. This is the compatibility
// shim for render targets that cannot tag their argument themselves; the
// plain-object check is a heuristic, and hosts that can should construct
// DataArg/EventArg directly.
func ArgFromHost(v any) ActionArg {
	if m, ok := v.(map[string]any); ok && !looksLikeUIEvent(m) {
		return DataArg(m)
	}
	return EventArg(v)
}

func looksLikeUIEvent(m map[string]any) bool {
	_, hasTarget := m["target"]
	_, hasCurrent := m["currentTarget"]
	_, hasType := m["type"]
	return hasType && (hasTarget || hasCurrent)
}

// Invoker is a bound action call: params already resolved, handler looked
// up. Data args override resolved params key by key.
type Invoker func(ctx context.Context, args ...ActionArg) (map[string]any, error)

// ActionBinding resolves an action-config prop value (object form, or a
// legacy bare action name) into an invoker. Unknown actions log a warning
// and return nil so the prop is dropped rather than left dangling.
func (c *Context) ActionBinding(config any) Invoker {
	cfg, ok := parseActionConfig(config)
	if !ok {
		log.Printf("render: unrecognized action config %T, dropping binding", config)
		return nil
	}
	def, found := c.reg.Action(cfg.name)
	if !found {
		log.Printf("render: unknown action %q, dropping binding", cfg.name)
		return nil
	}

	var params map[string]any
	if cfg.legacy {
		// Placeholder params keep pre-object-form actions invocable.
		params = map[string]any{"invocationId": uuid.NewString()}
	} else {
		params, _ = ResolveVars(cfg.params, c.store.Snapshot()).(map[string]any)
	}
	if params == nil {
		params = map[string]any{}
	}
	_, hasData := params["data"]
	sendStore := cfg.name == "submit" && !hasData

	store := c.store
	reg := c.reg
	return func(ctx context.Context, args ...ActionArg) (map[string]any, error) {
		merged := make(map[string]any, len(params))
		for k, v := range params {
			merged[k] = v
		}
		for _, arg := range args {
			if arg.isEvent {
				continue
			}
			for k, v := range arg.data {
				merged[k] = v
			}
		}
		if sendStore {
			if _, has := merged["data"]; !has {
				// Bare submit sends the whole store, snapshotted at invoke
				// time and detached so the handler cannot write through.
				merged["data"] = uispec.CloneData(store.Snapshot())
			}
		}
		if err := reg.ValidateActionParams(def, merged); err != nil {
			log.Printf("render: action %q params rejected: %v", cfg.name, err)
			return nil, err
		}
		result, err := def.Handler(ctx, merged)
		if err != nil {
			return nil, err
		}
		if result != nil && len(cfg.returns) > 0 {
			// Write-backs require the action definition to declare returns
			// too; a config cannot claim returns the action does not have.
			if len(def.Returns) == 0 {
				log.Printf("render: action %q config declares returns but the action does not, skipping write-back", cfg.name)
				return result, nil
			}
			if err := reg.ValidateActionReturns(def, result); err != nil {
				log.Printf("render: action %q result rejected: %v", cfg.name, err)
				return result, nil
			}
			for attr, path := range cfg.returns {
				value, has := result[attr]
				if !has {
					continue
				}
				attrPath := path
				store.Update(func(prev map[string]any) map[string]any {
					return datapath.SetCopy(prev, attrPath, value)
				})
			}
		}
		return result, nil
	}
}

// BindAction implements registry.RenderEnv.
func (c *Context) BindAction(config any) any {
	if inv := c.ActionBinding(config); inv != nil {
		return inv
	}
	return nil
}

type actionConfig struct {
	name    string
	params  map[string]any
	returns map[string]string // result attribute -> store path
	legacy  bool
}

// IsActionConfig reports whether a prop value has the shape of an action
// invocation config. Adapters use it to decide which props to bind.
func IsActionConfig(v any) bool {
	_, ok := parseActionConfig(v)
	return ok
}

func parseActionConfig(v any) (actionConfig, bool) {
	switch x := v.(type) {
	case string:
		name := strings.TrimSpace(x)
		return actionConfig{name: name, legacy: true}, name != ""
	case map[string]any:
		name, _ := x["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return actionConfig{}, false
		}
		cfg := actionConfig{name: name}
		cfg.params, _ = x["params"].(map[string]any)
		if raw, ok := x["returns"].(map[string]any); ok {
			cfg.returns = make(map[string]string, len(raw))
			for attr, pv := range raw {
				if path, ok := pv.(string); ok && path != "" {
					cfg.returns[attr] = path
				}
			}
		}
		return cfg, true
	default:
		return actionConfig{}, false
	}
}
