package tasks

import (
	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
)

// catalog accumulates per-platform identity sets and first-seen metadata for one reconciliation.
type catalog struct {
	resolver *identity.Resolver
	meta     map[identity.Key]identity.Metadata
	order    []identity.Key
	sets     map[models.Platform]map[identity.Key]struct{}
}

func newCatalog(resolver *identity.Resolver) *catalog {
	return &catalog{
		resolver: resolver,
		meta:     make(map[identity.Key]identity.Metadata),
		sets:     make(map[models.Platform]map[identity.Key]struct{}),
	}
}

// add resolves records into the set of p and returns how many were identifiable.
//
// Metadata is only recorded for identities not seen before, so callers must add
// platforms in priority order.
func (c *catalog) add(p models.Platform, records []models.RawTrack) int {
	set := c.set(p)
	identified := 0
	for _, rec := range records {
		key, meta, ok := c.resolver.Resolve(rec)
		if !ok {
			continue
		}
		identified++
		set[key] = struct{}{}
		if _, seen := c.meta[key]; !seen {
			c.meta[key] = meta
			c.order = append(c.order, key)
		}
	}
	return identified
}

func (c *catalog) set(p models.Platform) map[identity.Key]struct{} {
	set, ok := c.sets[p]
	if !ok {
		set = make(map[identity.Key]struct{})
		c.sets[p] = set
	}
	return set
}

func (c *catalog) has(p models.Platform, key identity.Key) bool {
	_, ok := c.sets[p][key]
	return ok
}

// union returns every identity across all platforms in first-seen order.
func (c *catalog) union() []identity.Key {
	keys := make([]identity.Key, 0, len(c.order))
	seen := make(map[identity.Key]struct{}, len(c.order))
	for _, key := range c.order {
		keys = append(keys, key)
		seen[key] = struct{}{}
	}
	for _, set := range c.sets {
		for key := range set {
			if _, ok := seen[key]; !ok {
				keys = append(keys, key)
				seen[key] = struct{}{}
			}
		}
	}
	return keys
}

// missing returns identities in the union that are absent from the set of p.
func (c *catalog) missing(p models.Platform) []identity.Key {
	var keys []identity.Key
	for _, key := range c.union() {
		if !c.has(p, key) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (c *catalog) metadata(key identity.Key) (identity.Metadata, bool) {
	meta, ok := c.meta[key]
	return meta, ok
}

func (c *catalog) size() int {
	return len(c.union())
}
