package domain

import (
	"sort"
	"time"
)

// RateEntry is the cached rate of one ordered pair.
type RateEntry struct {
	Pair      CurrencyPair
	Rate      float64 // always > 0
	UpdatedAt time.Time
	Source    string
}

// Age of the entry at now.
func (e RateEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// IsFresh reports age <= maxAge; an entry exactly maxAge old is still fresh.
func (e RateEntry) IsFresh(now time.Time, maxAge time.Duration) bool {
	return e.Age(now) <= maxAge
}

// RateCache maps pair keys to entries. A pair and its reciprocal may both be
// present when each direction was fetched separately.
type RateCache struct {
	Pairs       map[string]RateEntry
	LastRefresh *time.Time
}

// NewRateCache returns an empty cache.
func NewRateCache() *RateCache {
	return &RateCache{Pairs: make(map[string]RateEntry)}
}

// Lookup finds the entry for pair. The direct entry wins whenever present;
// otherwise the reciprocal entry is returned with inverted=true.
func (c *RateCache) Lookup(pair CurrencyPair) (entry RateEntry, inverted bool, ok bool) {
	if e, found := c.Pairs[pair.Key()]; found {
		return e, false, true
	}
	if e, found := c.Pairs[pair.Reciprocal().Key()]; found {
		return e, true, true
	}
	return RateEntry{}, false, false
}

// Entries returns a copy of all entries sorted by pair key.
func (c *RateCache) Entries() []RateEntry {
	keys := make([]string, 0, len(c.Pairs))
	for k := range c.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]RateEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.Pairs[k])
	}
	return out
}

// Clone deep-copies the cache so callers cannot mutate store state.
func (c *RateCache) Clone() *RateCache {
	out := NewRateCache()
	for k, v := range c.Pairs {
		out.Pairs[k] = v
	}
	if c.LastRefresh != nil {
		t := *c.LastRefresh
		out.LastRefresh = &t
	}
	return out
}

// HistoryMeta describes the request that produced a history record.
type HistoryMeta struct {
	RequestMS  int64
	StatusCode int
}

// HistoryRecord is an immutable entry of the rates history log.
type HistoryRecord struct {
	ID        string
	Pair      CurrencyPair
	Rate      float64
	Timestamp time.Time
	Source    string
	Meta      HistoryMeta
}

// RateQuote is a resolved rate together with the cache entry it came from.
type RateQuote struct {
	Pair        CurrencyPair
	Rate        float64
	ReverseRate float64
	UpdatedAt   *time.Time // nil for identity pairs
	Source      string
}

// RateListFilter narrows a cache listing.
type RateListFilter struct {
	Currency string // pairs involving this code
	Top      int    // N most expensive crypto pairs, 0 = no limit
	Base     string // pairs quoted against this code
}

// RateListing is a filtered view of the cache.
type RateListing struct {
	Entries     []RateEntry
	LastRefresh *time.Time
}

// UpdateResult summarizes one run of the rates updater.
type UpdateResult struct {
	TotalRates  int
	LastRefresh time.Time
	Errors      []string
}

// HasErrors is true for a partially successful update.
func (r UpdateResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HistoryTimestampLayout is the UTC layout of history ids and timestamps.
// Microseconds keep ids of updates within the same second apart.
const HistoryTimestampLayout = "2006-01-02T15:04:05.000000Z"

// NewHistoryRecord builds a record with id FROM_TO_<timestamp>.
func NewHistoryRecord(pair CurrencyPair, rate float64, ts time.Time, source string, meta HistoryMeta) HistoryRecord {
	ts = ts.UTC()
	return HistoryRecord{
		ID:        pair.Key() + pairSeparator + ts.Format(HistoryTimestampLayout),
		Pair:      pair,
		Rate:      rate,
		Timestamp: ts,
		Source:    source,
		Meta:      meta,
	}
}
