package uispec

// Aggregate folds updates left to right into one spec. View deltas replace
// nodes by key and append new keys in arrival order; data deltas deep-merge,
// with arrays and scalars replacing wholesale.
func Aggregate(updates []Update) Spec {
	var agg Aggregator
	agg.Push(updates...)
	return agg.Spec()
}

// Aggregator is the incremental form of Aggregate: Push the new suffix of a
// growing update sequence and read the running spec. Pushing the same
// sequence through a fresh Aggregator yields a deep-equal result, so a
// caller may also re-fold from scratch at any time.
type Aggregator struct {
	applied int
	view    []Node
	data    map[string]any
}

// Push applies updates in order.
func (a *Aggregator) Push(updates ...Update) {
	for _, u := range updates {
		if u.View != nil {
			a.applyView(u.View)
		} else if u.Data != nil {
			a.data = MergeData(a.data, u.Data)
		}
		a.applied++
	}
}

// Applied reports how many updates have been folded in.
func (a *Aggregator) Applied() int { return a.applied }

// Spec returns a copy of the running aggregate. The copy shares no mutable
// structure with the aggregator, so callers may hand it to a renderer that
// mutates its data store.
func (a *Aggregator) Spec() Spec {
	view := make([]Node, len(a.view))
	for i, n := range a.view {
		view[i] = cloneNode(n)
	}
	data, _ := cloneValue(a.data).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return Spec{View: view, Data: data}
}

func (a *Aggregator) applyView(incoming []Node) {
	patched := make(map[string]bool, len(incoming))
	for _, n := range incoming {
		patched[n.Key] = true
	}
	kept := a.view[:0]
	for _, n := range a.view {
		if !patched[n.Key] {
			kept = append(kept, n)
		}
	}
	a.view = append(kept, incoming...)
}

// MergeData deep-merges src into dst and returns the result. Objects merge
// key by key; arrays, scalars and null replace the destination wholesale,
// as does merging into a non-object target. dst is not mutated.
func MergeData(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		srcObj, srcIsObj := v.(map[string]any)
		dstObj, dstIsObj := out[k].(map[string]any)
		if srcIsObj && dstIsObj {
			out[k] = MergeData(dstObj, srcObj)
			continue
		}
		out[k] = v
	}
	return out
}

// CloneData returns a deep copy of a data object; nested maps and arrays
// share no structure with the original.
func CloneData(m map[string]any) map[string]any {
	out, _ := cloneValue(m).(map[string]any)
	return out
}

func cloneNode(n Node) Node {
	out := Node{Key: n.Key, Type: n.Type}
	if n.Props != nil {
		out.Props, _ = cloneValue(n.Props).(map[string]any)
	}
	if n.Children != nil {
		out.Children = append([]string(nil), n.Children...)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = cloneValue(x[i])
		}
		return out
	default:
		return v
	}
}
