package genetics

// cacheKey identifies one cached expression result: the plant's arena
// handle plus the quantized environment signature.
type cacheKey struct {
	handle uint32
	envSig uint64
}

// resultCache is the expression engine's short-lived result cache.
//
// Freshness is coarse and global: one shared refresh timestamp covers the
// whole cache, not a per-key TTL. Any recomputation refreshes the window
// for every key, so a burst of distinct keys inside one window all count
// as fresh even though only one of them triggered the refresh. This
// mirrors the established engine behavior and is preserved deliberately;
// see DESIGN.md for the review note.
type resultCache struct {
	window      float64 // seconds a refresh keeps the whole cache fresh
	entries     map[cacheKey]Result
	lastRefresh float64 // sim-clock seconds of the last refresh
	refreshed   bool
}

func newResultCache(window float64) *resultCache {
	return &resultCache{
		window:  window,
		entries: make(map[cacheKey]Result),
	}
}

// fresh reports whether the shared window is still open at sim-time now.
func (c *resultCache) fresh(now float64) bool {
	return c.refreshed && now-c.lastRefresh < c.window
}

// get returns the cached result for key if one exists and the shared
// window is still open.
func (c *resultCache) get(key cacheKey, now float64) (Result, bool) {
	if !c.fresh(now) {
		return Result{}, false
	}
	res, ok := c.entries[key]
	return res, ok
}

// put stores a freshly computed result and refreshes the shared window.
func (c *resultCache) put(key cacheKey, res Result, now float64) {
	c.entries[key] = res
	c.refresh(now)
}

// refresh re-opens the shared window at sim-time now.
func (c *resultCache) refresh(now float64) {
	c.lastRefresh = now
	c.refreshed = true
}

// clear drops every entry and closes the window.
func (c *resultCache) clear() {
	c.entries = make(map[cacheKey]Result)
	c.refreshed = false
}

// compact rebuilds the backing map when it has grown well past its live
// entry count, releasing memory from earlier population peaks.
func (c *resultCache) compact(maxEntries int) {
	if len(c.entries) <= maxEntries {
		return
	}
	// Entries past the window are stale anyway; keep none rather than
	// guessing which keys recur.
	c.clear()
}

func (c *resultCache) len() int {
	return len(c.entries)
}
