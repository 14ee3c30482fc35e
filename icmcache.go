package icclu

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

type cacheKey struct {
	profile string
	req     Request
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", k.profile, k.req.Func, k.req.Intent, k.req.PCS, k.req.Order)
}

// Cache keeps built lookup objects by profile name and request. Concurrent
// misses on the same key share one build.
//
// Cached objects belong to the cache: callers must not Release them, and
// must stop using them before Purge or Close.
type Cache struct {
	opts Options

	mu    sync.RWMutex
	items map[cacheKey]*LookupObject
	group singleflight.Group
}

// NewCache returns an empty cache building with opts.
func NewCache(opts Options) *Cache {
	return &Cache{opts: opts, items: make(map[cacheKey]*LookupObject)}
}

func (c *Cache) get(k cacheKey) (*LookupObject, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lu, ok := c.items[k]
	return lu, ok
}

// Get returns the conversion req of the profile src known as name,
// building it on first use.
func (c *Cache) Get(ctx context.Context, name string, src TagSource, req Request) (*LookupObject, error) {
	k := cacheKey{profile: name, req: req}
	if lu, ok := c.get(k); ok {
		return lu, nil
	}

	var span trace.Span
	if c.opts.Telemetry {
		ctx, span = tracer.Start(ctx, "Cache.Get",
			trace.WithAttributes(attribute.String("icc.cache_key", k.String())))
		defer span.End()
	}

	v, err, shared := c.group.Do(k.String(), func() (any, error) {
		if lu, ok := c.get(k); ok {
			return lu, nil
		}
		lu, err := NewBuilder(src, c.opts).BuildRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[k] = lu
		c.mu.Unlock()
		return lu, nil
	})
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, fmt.Errorf("cache %s: %w", k, err)
	}
	if span != nil {
		span.SetAttributes(attribute.Bool("icc.cache_shared", shared))
	}
	lu, ok := v.(*LookupObject)
	if !ok {
		return nil, fmt.Errorf("cache %s: unexpected value %T", k, v)
	}
	return lu, nil
}

// Len returns the number of cached objects.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge releases every object built from the profile name.
func (c *Cache) Purge(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, lu := range c.items {
		if k.profile == name {
			lu.Release()
			delete(c.items, k)
		}
	}
}

// Close releases everything.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, lu := range c.items {
		lu.Release()
		delete(c.items, k)
	}
}
