// Package cache keeps the latest aggregated spec per session so a client
// that reconnects mid-generation gets current state without a stream replay.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"genui/internal/uispec"
)

// Snapshots is a bounded LRU of session ID to last aggregated spec.
type Snapshots struct {
	c *lru.Cache[string, uispec.Spec]
}

func NewSnapshots(size int) (*Snapshots, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, uispec.Spec](size)
	if err != nil {
		return nil, err
	}
	return &Snapshots{c: c}, nil
}

func (s *Snapshots) Put(sessionID string, spec uispec.Spec) {
	if s == nil || sessionID == "" {
		return
	}
	s.c.Add(sessionID, spec)
}

func (s *Snapshots) Get(sessionID string) (uispec.Spec, bool) {
	if s == nil {
		return uispec.Spec{}, false
	}
	return s.c.Get(sessionID)
}

func (s *Snapshots) Drop(sessionID string) {
	if s == nil {
		return
	}
	s.c.Remove(sessionID)
}
