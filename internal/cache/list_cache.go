package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/metrics"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc loads a task page from the system of record.
type ComputeFunc func(ctx context.Context) (*domain.TaskPage, error)

// ListCache memoizes task list pages per owner and query.
// A nil *ListCache, or one with a zero TTL, passes every call straight
// through to compute.
type ListCache struct {
	store    Store
	ttl      time.Duration
	group    singleflight.Group
	recorder metrics.Recorder
	logger   *slog.Logger

	// stale marks owners whose last generation bump failed. Their listings
	// are read through until a bump succeeds. Values are failure sequence
	// numbers so a success only clears failures it observed.
	stale    sync.Map
	failures atomic.Uint64
}

// NewListCache creates a cache over store whose entries live for ttl.
func NewListCache(store Store, ttl time.Duration, recorder metrics.Recorder, logger *slog.Logger) *ListCache {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListCache{
		store:    store,
		ttl:      ttl,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "task_list_cache")),
	}
}

// Enabled reports whether lookups are served from the store.
func (c *ListCache) Enabled() bool {
	return c != nil && c.store != nil && c.ttl > 0
}

func generationKey(owner uuid.UUID) string {
	return "tasks:" + owner.String() + ":gen"
}

func entryKey(owner uuid.UUID, gen int64, q domain.TaskQuery) string {
	return fmt.Sprintf("tasks:%s:v%d:%s", owner, gen, q.CacheKey())
}

// GetOrCompute returns the cached page for (owner, q) or computes, stores and
// returns it. Concurrent misses on the same key share one compute call. Store
// failures are logged and fall back to compute; they are never returned.
func (c *ListCache) GetOrCompute(
	ctx context.Context,
	owner uuid.UUID,
	q domain.TaskQuery,
	compute ComputeFunc,
) (*domain.TaskPage, error) {
	if !c.Enabled() {
		if c != nil {
			c.recorder.IncCacheResult(metrics.CacheBypass)
		}
		return compute(ctx)
	}

	log := logger.FromContextOrDefault(ctx, c.logger)

	if _, pending := c.stale.Load(owner); pending {
		if _, err := c.bump(ctx, owner); err != nil {
			log.Warn("cache generation still unconfirmed, reading through",
				slog.String("error", err.Error()),
				slog.String("user_id", owner.String()))
			c.recorder.IncCacheResult(metrics.CacheBypass)
			return compute(ctx)
		}
	}

	gen, err := c.store.GetInt(ctx, generationKey(owner))
	if err != nil {
		log.Warn("failed to read cache generation, reading through",
			slog.String("error", err.Error()),
			slog.String("user_id", owner.String()))
		c.recorder.IncCacheResult(metrics.CacheError)
		return compute(ctx)
	}

	key := entryKey(owner, gen, q)
	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var page domain.TaskPage
		if uerr := json.Unmarshal(data, &page); uerr == nil {
			c.recorder.IncCacheResult(metrics.CacheHit)
			return &page, nil
		}
		log.Warn("discarding undecodable cache entry", slog.String("key", key))
	case errors.Is(err, ErrMiss):
	default:
		log.Warn("cache read failed, reading through",
			slog.String("error", err.Error()),
			slog.String("key", key))
		c.recorder.IncCacheResult(metrics.CacheError)
		return compute(ctx)
	}

	c.recorder.IncCacheResult(metrics.CacheMiss)

	// The shared call must not be aborted by the cancellation of whichever
	// request happened to start it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		page, err := compute(shared)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(page)
		if err != nil {
			log.Warn("failed to encode task page for cache", slog.String("error", err.Error()))
			return page, nil
		}
		if err := c.store.Set(shared, key, data, c.ttl); err != nil {
			log.Warn("cache write failed",
				slog.String("error", err.Error()),
				slog.String("key", key))
		}
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.TaskPage), nil
}

// Invalidate makes every cached listing of owner unreachable. When the
// backend fails, the owner's listings bypass the cache until a later bump
// succeeds, so the error never leaves a stale page readable.
func (c *ListCache) Invalidate(ctx context.Context, owner uuid.UUID) error {
	if !c.Enabled() {
		return nil
	}
	gen, err := c.bump(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to bump cache generation for %s: %w", owner, err)
	}
	logger.FromContextOrDefault(ctx, c.logger).Debug("task list cache invalidated",
		slog.String("user_id", owner.String()),
		slog.Int64("generation", gen))
	return nil
}

// bump increments the owner's generation and clears the failures that were
// recorded before it started.
func (c *ListCache) bump(ctx context.Context, owner uuid.UUID) (int64, error) {
	pending, _ := c.stale.Load(owner)
	gen, err := c.store.Incr(ctx, generationKey(owner))
	if err != nil {
		c.stale.Store(owner, c.failures.Add(1))
		return 0, err
	}
	if pending != nil {
		c.stale.CompareAndDelete(owner, pending)
	}
	return gen, nil
}
