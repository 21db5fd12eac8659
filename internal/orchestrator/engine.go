// Package orchestrator drives one UI generation: it streams model output,
// runs the incremental extractor over the growing buffer, folds freshly
// completed updates into the aggregate, and notifies the caller only when
// the aggregated spec actually changed.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"genui/internal/cache"
	"genui/internal/llmclient"
	"genui/internal/registry"
	"genui/internal/streamjson"
	"genui/internal/uispec"
)

// UpdateFunc receives the aggregated spec after each change.
type UpdateFunc func(spec uispec.Spec)

// Engine runs generations against one registry and one model client.
type Engine struct {
	reg       *registry.Registry
	llm       llmclient.Streamer
	snapshots *cache.Snapshots // optional

	mu   sync.Mutex
	runs map[string]int64 // per-session generation counters
}

func New(reg *registry.Registry, llm llmclient.Streamer, snapshots *cache.Snapshots) *Engine {
	return &Engine{reg: reg, llm: llm, snapshots: snapshots, runs: make(map[string]int64)}
}

func (e *Engine) beginRun(sessionID string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runs[sessionID]++
	return e.runs[sessionID]
}

func (e *Engine) currentRun(sessionID string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs[sessionID]
}

// Generate streams a UI spec for prompt. onUpdate fires on the streaming
// goroutine each time the aggregate changes; the returned spec is the
// authoritative final fold. Starting a new generation for the same session
// retires that session's earlier ones: their remaining chunks are ignored
// (run-counter guard), so an old network call draining late can never
// corrupt the session. Other sessions' generations are unaffected.
func (e *Engine) Generate(ctx context.Context, sessionID, prompt string, onUpdate UpdateFunc) (uispec.Spec, error) {
	g := &generation{
		engine:    e,
		run:       e.beginRun(sessionID),
		sessionID: sessionID,
		onUpdate:  onUpdate,
	}
	// The empty aggregate counts as already seen: a stream whose early
	// elements are all skipped must not deliver {view:[],data:{}}.
	g.lastFP, _ = g.agg.Spec().Fingerprint()

	full, err := e.llm.StreamText(ctx, BuildPrompt(e.reg, prompt), g.onChunk)
	if err != nil {
		return uispec.Spec{}, fmt.Errorf("orchestrator: stream failed: %w", err)
	}

	// Authoritative final parse. A complete stream that still yields no
	// update array is the one hard failure in the taxonomy.
	updates, err := finalUpdates(full)
	if err != nil {
		return uispec.Spec{}, fmt.Errorf("orchestrator: final response is not an update array: %w", err)
	}
	spec := uispec.Aggregate(updates)
	g.finish(spec)

	if missing := uispec.MissingRefs(spec.NodeMap(), e.reg.ContentProps()); len(missing) > 0 {
		log.Printf("orchestrator: stream complete with unresolved node refs: %s", strings.Join(missing, ", "))
	}
	return spec, nil
}

// finalUpdates decodes a completed stream with the same tolerance as the
// incremental scan: fences and surrounding prose are looked through, but the
// array must actually close and every element must be a valid update.
func finalUpdates(full string) ([]uispec.Update, error) {
	res := streamjson.TryParse(full, 0)
	arr, ok := res.Value.([]any)
	if !ok || !strings.HasSuffix(strings.TrimSpace(full[res.Start:res.End]), "]") {
		// A truncated array re-closed by the scan ends at its last element,
		// not at "]", so it fails here.
		return nil, errors.New("no complete update array in stream")
	}
	return uispec.UpdatesFromValue(arr)
}

// Latest returns the cached aggregated spec for a session, when snapshots
// are enabled.
func (e *Engine) Latest(sessionID string) (uispec.Spec, bool) {
	return e.snapshots.Get(sessionID)
}

// generation is the per-run streaming state. The model stream resumes it
// once per chunk, strictly sequentially, so no field needs locking.
type generation struct {
	engine    *Engine
	run       int64
	sessionID string
	onUpdate  UpdateFunc

	buf    strings.Builder
	offset int
	agg    uispec.Aggregator
	lastFP string
}

func (g *generation) stale() bool {
	return g.engine.currentRun(g.sessionID) != g.run
}

func (g *generation) onChunk(chunk string) {
	if g.stale() {
		return
	}
	g.buf.WriteString(chunk)
	text := g.buf.String()
	for {
		res := streamjson.TryParse(text, g.offset)
		if res.Value == nil || res.End < 0 {
			return
		}
		g.offset = res.End
		g.push(res.Value)
		g.notifyIfChanged()
	}
}

// push folds a freshly parsed value into the aggregate. The first parse of
// a stream yields the array prefix; once the offset sits inside the array,
// later elements arrive one object at a time.
func (g *generation) push(value any) {
	switch v := value.(type) {
	case []any:
		updates, err := uispec.UpdatesFromValue(v)
		if err != nil {
			log.Printf("orchestrator: skipping malformed update batch: %v", err)
			return
		}
		g.agg.Push(updates...)
	case map[string]any:
		u, err := uispec.UpdateFromValue(v)
		if err != nil {
			log.Printf("orchestrator: skipping malformed update: %v", err)
			return
		}
		g.agg.Push(u)
	default:
		log.Printf("orchestrator: ignoring non-update stream value %T", value)
	}
}

func (g *generation) notifyIfChanged() {
	spec := g.agg.Spec()
	fp, err := spec.Fingerprint()
	if err != nil {
		log.Printf("orchestrator: fingerprint failed: %v", err)
	} else if fp == g.lastFP {
		return
	}
	g.lastFP = fp
	g.deliver(spec)
}

// finish routes the authoritative final fold through the same changed-only
// gate as incremental updates, so an unchanged final spec is not re-sent.
func (g *generation) finish(spec uispec.Spec) {
	fp, err := spec.Fingerprint()
	if err == nil && fp == g.lastFP {
		return
	}
	g.lastFP = fp
	g.deliver(spec)
}

func (g *generation) deliver(spec uispec.Spec) {
	if g.stale() {
		return
	}
	g.engine.snapshots.Put(g.sessionID, spec)
	if g.onUpdate != nil {
		g.onUpdate(spec)
	}
}
