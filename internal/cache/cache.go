// Package cache fronts a git.Service with per-key cached reads, shared
// in-flight fetches and tag-based invalidation on writes.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"stagehand/internal/git"
)

const (
	DefaultSize         = 256
	DefaultHistoryLimit = 200
)

type Options struct {
	// Size bounds the number of commit and file-content entries.
	Size int
	// MaxAge marks entries stale after a duration. Zero keeps them fresh
	// until invalidated.
	MaxAge       time.Duration
	HistoryLimit int
	Logger       *zap.Logger
	Now          func() time.Time
}

type entry struct {
	value     any
	tags      []string
	fetchedAt time.Time
	stale     bool
	seq       uint64
}

type flight struct {
	tags        []string
	seq         uint64
	invalidated bool
	dropped     bool
}

type Cache struct {
	svc  git.Service
	opts Options
	log  *zap.Logger

	group singleflight.Group

	mu       sync.Mutex
	pinned   map[string]*entry
	contents *lru.Cache[string, *entry]
	inflight map[string]*flight
	seq      uint64
}

func New(svc git.Service, opts Options) (*Cache, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	contents, err := lru.New[string, *entry](opts.Size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		svc:      svc,
		opts:     opts,
		log:      log.Named("cache"),
		pinned:   map[string]*entry{},
		contents: contents,
		inflight: map[string]*flight{},
	}, nil
}

func (c *Cache) Service() git.Service { return c.svc }

func (c *Cache) HistoryLimit() int { return c.opts.HistoryLimit }

func (c *Cache) getLocked(k string) (*entry, bool) {
	if pinned(k) {
		e, ok := c.pinned[k]
		return e, ok
	}
	return c.contents.Get(k)
}

func (c *Cache) putLocked(k string, e *entry) {
	if pinned(k) {
		c.pinned[k] = e
		return
	}
	c.contents.Add(k, e)
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.stale {
		return false
	}
	return c.opts.MaxAge <= 0 || c.opts.Now().Sub(e.fetchedAt) < c.opts.MaxAge
}

// peek returns the cached value for k, fresh or not.
func peek[T any](c *Cache, k string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	e, ok := c.getLocked(k)
	if !ok {
		return zero, false
	}
	v, ok := e.value.(T)
	return v, ok
}

// load returns the fresh cached value for k or joins the single outstanding
// fetch for it. A failed fetch leaves any previous value in place.
func load[T any](ctx context.Context, c *Cache, k string, tags []string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if e, ok := c.getLocked(k); ok && c.freshLocked(e) {
		c.mu.Unlock()
		return e.value.(T), nil
	}
	c.mu.Unlock()

	// The shared fetch outlives any single caller; callers stop waiting on
	// their own context.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(k, func() (any, error) {
		fl := c.begin(k, tags)
		v, err := fetch(shared)
		c.finish(k, fl, v, err)
		if err != nil {
			return nil, err
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Cache) begin(k string, tags []string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	fl := &flight{tags: tags, seq: c.seq}
	c.inflight[k] = fl
	return fl
}

func (c *Cache) finish(k string, fl *flight, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[k] == fl {
		delete(c.inflight, k)
	}
	if err != nil {
		c.log.Warn("fetch failed", zap.String("key", kindOf(k)), zap.Error(err))
		return
	}
	if fl.dropped {
		return
	}
	if prev, ok := c.getLocked(k); ok && prev.seq > fl.seq {
		c.log.Debug("dropping superseded fetch", zap.String("key", kindOf(k)))
		return
	}
	c.putLocked(k, &entry{
		value:     v,
		tags:      fl.tags,
		fetchedAt: c.opts.Now(),
		stale:     fl.invalidated,
		seq:       fl.seq,
	})
}

// Invalidate marks every entry carrying one of tags as stale. Fetches in
// flight for such keys are detached so the next read starts a new one, and
// their results are stored stale.
func (c *Cache) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	match := func(entryTags []string) bool {
		for _, t := range tags {
			if slices.Contains(entryTags, t) {
				return true
			}
		}
		return false
	}

	for _, e := range c.pinned {
		if match(e.tags) {
			e.stale = true
		}
	}
	for _, k := range c.contents.Keys() {
		if e, ok := c.contents.Peek(k); ok && match(e.tags) {
			e.stale = true
		}
	}
	for k, fl := range c.inflight {
		if match(fl.tags) {
			fl.invalidated = true
			c.group.Forget(k)
		}
	}
}

// ForgetRepo drops every entry of repo.
func (c *Cache) ForgetRepo(repo string) {
	tag := TagRepo(repo)
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.pinned {
		if slices.Contains(e.tags, tag) {
			delete(c.pinned, k)
		}
	}
	for _, k := range c.contents.Keys() {
		if e, ok := c.contents.Peek(k); ok && slices.Contains(e.tags, tag) {
			c.contents.Remove(k)
		}
	}
	for k, fl := range c.inflight {
		if slices.Contains(fl.tags, tag) {
			fl.dropped = true
			c.group.Forget(k)
		}
	}
}
