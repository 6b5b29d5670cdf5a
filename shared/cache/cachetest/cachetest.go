// Package cachetest lets tests wait for the cache invalidations services run in the background.
package cachetest

import (
	"context"
	"maps"
	"slices"
	"testing"
	"time"
)

const waitTimeout = time.Second

// Clears records every pattern passed to RedisCache.Clear. Wire its Clear method into a mock
// with DoAndReturn.
type Clears struct {
	patterns chan string
}

func NewClears() *Clears {
	return &Clears{patterns: make(chan string, 64)}
}

func (c *Clears) Clear(_ context.Context, pattern string) error {
	c.patterns <- pattern

	return nil
}

// Wait blocks until each pattern has been cleared as many times as it is listed. Patterns
// nobody waits for are discarded.
func (c *Clears) Wait(t testing.TB, patterns ...string) {
	t.Helper()

	pending := map[string]int{}
	for _, pattern := range patterns {
		pending[pattern]++
	}

	timeout := time.After(waitTimeout)

	for len(pending) > 0 {
		select {
		case pattern := <-c.patterns:
			if pending[pattern]--; pending[pattern] <= 0 {
				delete(pending, pattern)
			}
		case <-timeout:
			t.Fatalf("cache patterns never cleared: %v", slices.Sorted(maps.Keys(pending)))
		}
	}
}
