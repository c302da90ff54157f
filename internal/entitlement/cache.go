package entitlement

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheSize = 1024
	defaultCacheTTL  = 1 * time.Minute
)

// cacheEntry holds a cached decision along with the timestamp it was stored.
type cacheEntry struct {
	decision Decision
	storedAt time.Time
}

// DecisionCache is an LRU-bounded, TTL-checked cache of the last decision
// computed per tenant. It is injected into the gateway rather than held as
// package state, and it never reads the clock itself: callers pass "now",
// which keeps cache lifetime deterministic under test.
type DecisionCache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
}

// NewDecisionCache creates a decision cache. Zero or negative size and TTL
// fall back to the defaults.
func NewDecisionCache(size int, ttl time.Duration) (*DecisionCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}

	return &DecisionCache{
		entries: entries,
		ttl:     ttl,
	}, nil
}

// Get returns the cached decision for a tenant if one exists and is still
// fresh at "now". Stale entries are evicted on read.
func (c *DecisionCache) Get(tenantID string, now time.Time) (Decision, bool) {
	entry, ok := c.entries.Get(tenantID)
	if !ok {
		return Decision{}, false
	}
	if now.Sub(entry.storedAt) > c.ttl {
		c.entries.Remove(tenantID)
		return Decision{}, false
	}
	return entry.decision, true
}

// Put stores a decision for a tenant, stamped at "now".
func (c *DecisionCache) Put(tenantID string, d Decision, now time.Time) {
	c.entries.Add(tenantID, cacheEntry{decision: d, storedAt: now})
}

// Invalidate drops the cached decision for a single tenant. Called after
// the payment webhook collaborator mutates the billing record, so the next
// check sees the fresh row.
func (c *DecisionCache) Invalidate(tenantID string) {
	c.entries.Remove(tenantID)
}

// Purge drops every cached decision.
func (c *DecisionCache) Purge() {
	c.entries.Purge()
}
