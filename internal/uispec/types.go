// Package uispec holds the streamed UI description: flattened nodes, the
// data store, and the update envelopes the model emits, plus the fold that
// turns an ordered update sequence into one aggregated spec.
package uispec

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Node is one entry in the flattened view tree. Children reference other
// nodes by key; a referenced key may not have streamed in yet.
type Node struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children []string       `json:"children,omitempty"`
}

// Update is one streamed delta: exactly one of View or Data is set.
type Update struct {
	View []Node         `json:"view,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// Spec is the fold of all updates seen so far.
type Spec struct {
	View []Node         `json:"view"`
	Data map[string]any `json:"data"`
}

// UnmarshalJSON enforces the envelope shape: an object carrying exactly one
// of "view" or "data".
func (u *Update) UnmarshalJSON(raw []byte) error {
	type plain Update
	var p plain
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	if (p.View == nil) == (p.Data == nil) {
		return fmt.Errorf("uispec: update must carry exactly one of view or data")
	}
	*u = Update(p)
	return nil
}

// UpdateFromValue coerces an already-decoded JSON value (as produced by the
// stream extractor) into an Update.
func UpdateFromValue(v any) (Update, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Update{}, fmt.Errorf("uispec: update element is %T, want object", v)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return Update{}, err
	}
	var u Update
	if err := json.Unmarshal(raw, &u); err != nil {
		return Update{}, err
	}
	return u, nil
}

// UpdatesFromValue coerces a decoded JSON array into the update sequence.
func UpdatesFromValue(v any) ([]Update, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("uispec: stream payload is %T, want array", v)
	}
	out := make([]Update, 0, len(arr))
	for i, el := range arr {
		u, err := UpdateFromValue(el)
		if err != nil {
			return nil, fmt.Errorf("uispec: element %d: %w", i, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// NodeMap indexes the view by key. Later nodes win, matching the
// replace-by-key aggregation rule.
func (s Spec) NodeMap() map[string]Node {
	out := make(map[string]Node, len(s.View))
	for _, n := range s.View {
		out[n.Key] = n
	}
	return out
}

// Roots returns the nodes not referenced as a child by any other node,
// looking at the children list and at string-array props whose name is in
// contentProps. With no references at all every node is a root.
func (s Spec) Roots(contentProps map[string]bool) []Node {
	if contentProps == nil {
		contentProps = DefaultContentProps()
	}
	referenced := make(map[string]bool)
	for _, n := range s.View {
		for _, key := range n.Children {
			referenced[key] = true
		}
		for name, v := range n.Props {
			if !contentProps[name] {
				continue
			}
			for _, key := range stringSlice(v) {
				referenced[key] = true
			}
		}
	}
	roots := make([]Node, 0, len(s.View))
	for _, n := range s.View {
		if !referenced[n.Key] {
			roots = append(roots, n)
		}
	}
	return roots
}

// DefaultContentProps names the props treated as child-key carriers when a
// component does not declare its own.
func DefaultContentProps() map[string]bool {
	return map[string]bool{"children": true, "content": true}
}

// MissingRefs lists child keys referenced by nodes that have no definition
// in the map. Expected to be non-empty mid-stream; after stream completion
// it marks a caller-visible inconsistency worth logging.
func MissingRefs(nodes map[string]Node, contentProps map[string]bool) []string {
	if contentProps == nil {
		contentProps = DefaultContentProps()
	}
	seen := make(map[string]bool)
	var missing []string
	note := func(key string) {
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		if _, ok := nodes[key]; !ok {
			missing = append(missing, key)
		}
	}
	for _, n := range nodes {
		for _, key := range n.Children {
			note(key)
		}
		for name, v := range n.Props {
			if !contentProps[name] {
				continue
			}
			for _, key := range stringSlice(v) {
				note(key)
			}
		}
	}
	sort.Strings(missing)
	return missing
}

func stringSlice(v any) []string {
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
