package typemap

import (
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/worldgraph/internal/ir"
)

// Cache memoizes Parse results keyed by the content hash of the definition.
//
// Only successful parses are stored. Because the key is derived from the
// definition text itself, an entry can never be stale relative to the
// stored definition. Safe for concurrent use.
type Cache struct {
	entries *lru.Cache[string, TypeMapping]
}

// NewCache creates a cache holding at most size mappings.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, TypeMapping](size)
	if err != nil {
		return nil, fmt.Errorf("create type mapping cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Parse returns the cached mapping for definition or parses and stores it.
func (c *Cache) Parse(definition, typeName string, opts ...Option) (TypeMapping, error) {
	key := cacheKey(definition, opts)
	if m, ok := c.entries.Get(key); ok {
		return m, nil
	}

	m, err := Parse(definition, typeName, opts...)
	if err != nil {
		return TypeMapping{}, err
	}
	c.entries.Add(key, m)
	return m, nil
}

// Len returns the number of cached mappings.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// cacheKey folds the allowed object types into the key, since they change
// which definitions parse.
func cacheKey(definition string, opts []Option) string {
	o := parseOptions{objectTypes: make(map[string]bool)}
	for _, opt := range opts {
		opt(&o)
	}
	key := ir.DefinitionHash(definition)
	if len(o.objectTypes) == 0 {
		return key
	}

	names := make([]string, 0, len(o.objectTypes))
	for n := range o.objectTypes {
		names = append(names, n)
	}
	slices.Sort(names)
	return key + "|" + strings.Join(names, ",")
}
