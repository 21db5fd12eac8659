package render

import (
	"fmt"
	"log"
	"strings"
)

// Output is the resolved form of one node, ready for the host framework.
// Err marks an inline error placeholder: the node stays visible with a
// diagnostic instead of crashing or vanishing.
type Output struct {
	Key      string
	Type     string
	Target   any
	Props    map[string]any
	Children []*Output
	Err      string
}

// Recursion cap for cyclic children lists; a cycle renders as a truncated
// subtree with a logged diagnostic instead of overflowing the stack.
const maxRenderDepth = 64

// RenderNode resolves the node registered under key. A key with no
// definition yet returns nil; while the stream is still delivering nodes
// that is the expected state, not an error.
func (c *Context) RenderNode(key string) (out *Output) {
	node, ok := c.nodes[key]
	if !ok {
		return nil
	}
	if c.depth >= maxRenderDepth {
		log.Printf("render: node %q exceeds depth %d, likely a children cycle", key, maxRenderDepth)
		return nil
	}
	c.depth++
	defer func() {
		c.depth--
		if r := recover(); r != nil {
			log.Printf("render: node %q (%s) panicked: %v", key, node.Type, r)
			out = &Output{
				Key:  key,
				Type: node.Type,
				Err:  fmt.Sprintf("render failed for %s: %v", node.Type, r),
			}
		}
	}()

	childKeys := node.Children
	if childKeys == nil {
		childKeys = stringKeys(node.Props["children"])
	}

	def, registered := c.reg.Component(node.Type)
	typeName := node.Type
	var target any
	if registered {
		if def.Target == nil {
			// Registered but failed to load: visible error, not a drop.
			return &Output{
				Key:  key,
				Type: node.Type,
				Err:  fmt.Sprintf("component %s failed to load", node.Type),
			}
		}
		target = def.Target
	} else {
		// Unregistered types degrade to a literal primitive element name.
		typeName = strings.ToLower(node.Type)
	}

	props, _ := ResolveVars(node.Props, c.store.Snapshot()).(map[string]any)
	if props == nil {
		props = map[string]any{}
	}
	if visible, gated := props["visible"].(bool); gated && !visible {
		return nil
	}
	if registered && def.ResolveProps != nil {
		props = def.ResolveProps(props, c)
		if props == nil {
			props = map[string]any{}
		}
	}

	out = &Output{Key: key, Type: typeName, Target: target, Props: props}
	if hasRenderedChildren(props) {
		// The adapter already placed rendered children in a prop.
		return out
	}
	if len(childKeys) > 0 {
		delete(props, "children")
		for _, childKey := range childKeys {
			// Unseen children are filtered, not errors.
			if child := c.RenderNode(childKey); child != nil {
				out.Children = append(out.Children, child)
			}
		}
	}
	return out
}

// RenderChild implements registry.RenderEnv for prop adapters.
func (c *Context) RenderChild(key string) any {
	if out := c.RenderNode(key); out != nil {
		return out
	}
	return nil
}

// RenderRoots renders every root node of the current view in order.
func (c *Context) RenderRoots(order []string) []*Output {
	outs := make([]*Output, 0, len(order))
	for _, key := range order {
		if out := c.RenderNode(key); out != nil {
			outs = append(outs, out)
		}
	}
	return outs
}

func stringKeys(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}

func hasRenderedChildren(props map[string]any) bool {
	for _, v := range props {
		switch x := v.(type) {
		case *Output:
			return true
		case []*Output:
			return len(x) > 0
		case []any:
			for _, el := range x {
				if _, ok := el.(*Output); ok {
					return true
				}
			}
		}
	}
	return false
}
