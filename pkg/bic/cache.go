package bic

import (
	lru "github.com/hashicorp/golang-lru"
)

// SnapshotCache memoizes ParseFile results by path. Re-checking a library
// against several baselines parses the current dump once instead of once
// per baseline.
type SnapshotCache struct {
	parser *Parser
	cache  *lru.Cache
}

// NewSnapshotCache returns a cache holding up to size parsed snapshots.
func NewSnapshotCache(parser *Parser, size int) (*SnapshotCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &SnapshotCache{parser: parser, cache: cache}, nil
}

// Load returns the snapshot for path, parsing the file on a cache miss.
// Like ParseFile it returns an empty snapshot for unreadable files; empty
// snapshots are not cached so a dump that appears later is picked up.
func (c *SnapshotCache) Load(path string) Info {
	if v, ok := c.cache.Get(path); ok {
		return v.(Info)
	}
	info := c.parser.ParseFile(path)
	if len(info.ClassSizes) > 0 || len(info.ClassVTables) > 0 {
		c.cache.Add(path, info)
	}
	return info
}
