// Package datapath reads and writes values inside nested map[string]any
// structures addressed by dot-separated paths ("profile.name.first").
package datapath

import "strings"

// Get walks store along the dot-separated path and returns the value found
// there, or nil if any intermediate segment is missing or not a map.
func Get(store map[string]any, path string) any {
	if store == nil || path == "" {
		return nil
	}
	segments := strings.Split(path, ".")
	var current any = store
	for _, seg := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		next, exists := node[seg]
		if !exists {
			return nil
		}
		current = next
	}
	return current
}

// Set writes value at the dot-separated path, mutating store in place.
// Missing intermediates are created as maps; an intermediate that exists but
// is not a map is overwritten with a fresh map. Arrays are never vivified.
func Set(store map[string]any, path string, value any) {
	if store == nil || path == "" {
		return
	}
	segments := strings.Split(path, ".")
	current := store
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// SetCopy writes value at path without mutating store. Maps along the path
// spine are shallow-copied; untouched branches are shared with the input.
func SetCopy(store map[string]any, path string, value any) map[string]any {
	if path == "" {
		return store
	}
	segments := strings.Split(path, ".")
	root := copyMap(store)
	current := root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := current[seg].(map[string]any)
		if !ok {
			child = nil
		}
		next := copyMap(child)
		current[seg] = next
		current = next
	}
	current[segments[len(segments)-1]] = value
	return root
}

func copyMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
