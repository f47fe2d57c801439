package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/metrics"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	metrics.NoopRecorder
	mu      sync.Mutex
	results map[metrics.CacheResult]int
}

func (r *countingRecorder) IncCacheResult(result metrics.CacheResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = map[metrics.CacheResult]int{}
	}
	r.results[result]++
}

func (r *countingRecorder) count(result metrics.CacheResult) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[result]
}

// brokenStore fails every operation.
type brokenStore struct{}

var errBroken = errors.New("backend down")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errBroken
}
func (brokenStore) Incr(context.Context, string) (int64, error)   { return 0, errBroken }
func (brokenStore) GetInt(context.Context, string) (int64, error) { return 0, errBroken }

// flakyIncrStore is a MemoryStore whose Incr can be switched off.
type flakyIncrStore struct {
	*MemoryStore
	failIncr atomic.Bool
}

func (s *flakyIncrStore) Incr(ctx context.Context, key string) (int64, error) {
	if s.failIncr.Load() {
		return 0, errBroken
	}
	return s.MemoryStore.Incr(ctx, key)
}

func pageOf(names ...string) *domain.TaskPage {
	page := &domain.TaskPage{Tasks: []*domain.Task{}, Pagination: domain.NewPagination(1, len(names))}
	for _, n := range names {
		page.Tasks = append(page.Tasks, &domain.Task{ID: uuid.New(), Name: n, Status: domain.TaskStatusToDo})
	}
	return page
}

func newTestCache(t *testing.T, store Store, ttl time.Duration) (*ListCache, *countingRecorder) {
	t.Helper()
	rec := &countingRecorder{}
	log, _ := logger.NewTestLogger(t)
	return NewListCache(store, ttl, rec, log), rec
}

func TestListCache_HitAfterMiss(t *testing.T) {
	t.Parallel()

	c, rec := newTestCache(t, NewMemoryStore(), 5*time.Minute)
	owner := uuid.New()
	q := domain.TaskQuery{Search: "report"}

	var calls int
	compute := func(context.Context) (*domain.TaskPage, error) {
		calls++
		return pageOf("report"), nil
	}

	first, err := c.GetOrCompute(context.Background(), owner, q, compute)
	require.NoError(t, err)
	second, err := c.GetOrCompute(context.Background(), owner, q, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Tasks[0].ID, second.Tasks[0].ID)
	assert.Equal(t, first.Pagination, second.Pagination)
	assert.Equal(t, 1, rec.count(metrics.CacheMiss))
	assert.Equal(t, 1, rec.count(metrics.CacheHit))
}

func TestListCache_KeysSeparateOwnersAndQueries(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, NewMemoryStore(), time.Minute)
	alice, bob := uuid.New(), uuid.New()

	var calls int
	compute := func(context.Context) (*domain.TaskPage, error) {
		calls++
		return pageOf("x"), nil
	}

	ctx := context.Background()
	_, _ = c.GetOrCompute(ctx, alice, domain.TaskQuery{}, compute)
	_, _ = c.GetOrCompute(ctx, bob, domain.TaskQuery{}, compute)
	_, _ = c.GetOrCompute(ctx, alice, domain.TaskQuery{Page: 2}, compute)
	// Equivalent after normalization: page 0 is page 1, empty sort is desc.
	_, _ = c.GetOrCompute(ctx, alice, domain.TaskQuery{Page: 0, Sort: domain.SortDesc}, compute)

	assert.Equal(t, 3, calls)
}

func TestListCache_InvalidateDropsEveryQueryOfOwner(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, NewMemoryStore(), time.Minute)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	var calls int
	compute := func(context.Context) (*domain.TaskPage, error) {
		calls++
		return pageOf("x"), nil
	}

	queries := []domain.TaskQuery{{}, {Status: domain.TaskStatusDone}, {Page: 3}}
	for _, q := range queries {
		_, err := c.GetOrCompute(ctx, owner, q, compute)
		require.NoError(t, err)
	}
	_, _ = c.GetOrCompute(ctx, other, domain.TaskQuery{}, compute)
	require.Equal(t, 4, calls)

	require.NoError(t, c.Invalidate(ctx, owner))

	for _, q := range queries {
		_, err := c.GetOrCompute(ctx, owner, q, compute)
		require.NoError(t, err)
	}
	_, _ = c.GetOrCompute(ctx, other, domain.TaskQuery{}, compute)

	assert.Equal(t, 7, calls, "owner entries recomputed, other owner still cached")
}

func TestListCache_ComputeErrorNotCached(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, NewMemoryStore(), time.Minute)
	boom := errors.New("db down")

	_, err := c.GetOrCompute(context.Background(), uuid.New(), domain.TaskQuery{},
		func(context.Context) (*domain.TaskPage, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	owner := uuid.New()
	var calls int
	compute := func(context.Context) (*domain.TaskPage, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return pageOf("ok"), nil
	}
	_, err = c.GetOrCompute(context.Background(), owner, domain.TaskQuery{}, compute)
	require.ErrorIs(t, err, boom)
	page, err := c.GetOrCompute(context.Background(), owner, domain.TaskQuery{}, compute)
	require.NoError(t, err)
	assert.Equal(t, "ok", page.Tasks[0].Name)
}

func TestListCache_Disabled(t *testing.T) {
	t.Parallel()

	c, rec := newTestCache(t, NewMemoryStore(), 0)
	assert.False(t, c.Enabled())

	var calls int
	compute := func(context.Context) (*domain.TaskPage, error) {
		calls++
		return pageOf("x"), nil
	}
	for i := 0; i < 3; i++ {
		_, err := c.GetOrCompute(context.Background(), uuid.New(), domain.TaskQuery{}, compute)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, rec.count(metrics.CacheBypass))
	assert.NoError(t, c.Invalidate(context.Background(), uuid.New()))

	var nilCache *ListCache
	_, err := nilCache.GetOrCompute(context.Background(), uuid.New(), domain.TaskQuery{}, compute)
	assert.NoError(t, err)
	assert.NoError(t, nilCache.Invalidate(context.Background(), uuid.New()))
}

func TestListCache_StoreFailureReadsThrough(t *testing.T) {
	t.Parallel()

	c, rec := newTestCache(t, brokenStore{}, time.Minute)

	page, err := c.GetOrCompute(context.Background(), uuid.New(), domain.TaskQuery{},
		func(context.Context) (*domain.TaskPage, error) { return pageOf("direct"), nil })
	require.NoError(t, err)
	assert.Equal(t, "direct", page.Tasks[0].Name)
	assert.Equal(t, 1, rec.count(metrics.CacheError))

	err = c.Invalidate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errBroken)
}

func TestListCache_FailedInvalidateReadsThroughUntilBumped(t *testing.T) {
	t.Parallel()

	backend := &flakyIncrStore{MemoryStore: NewMemoryStore()}
	c, rec := newTestCache(t, backend, time.Minute)
	owner := uuid.New()
	ctx := context.Background()

	version := "v1"
	var calls int
	compute := func(context.Context) (*domain.TaskPage, error) {
		calls++
		return pageOf(version), nil
	}
	list := func() string {
		t.Helper()
		page, err := c.GetOrCompute(ctx, owner, domain.TaskQuery{}, compute)
		require.NoError(t, err)
		return page.Tasks[0].Name
	}

	assert.Equal(t, "v1", list())
	assert.Equal(t, "v1", list())
	assert.Equal(t, 1, calls)

	// A write lands while the backend cannot bump the generation.
	version = "v2"
	backend.failIncr.Store(true)
	assert.ErrorIs(t, c.Invalidate(ctx, owner), errBroken)

	assert.Equal(t, "v2", list(), "the old generation's page must not be served")
	assert.Equal(t, "v2", list())
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, rec.count(metrics.CacheBypass))

	// Once the backend recovers, the next read bumps the generation and
	// caching resumes.
	backend.failIncr.Store(false)
	assert.Equal(t, "v2", list())
	assert.Equal(t, "v2", list())
	assert.Equal(t, 4, calls)

	gen, err := backend.GetInt(ctx, generationKey(owner))
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestListCache_ConcurrentMissesShareCompute(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, NewMemoryStore(), time.Minute)
	owner := uuid.New()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (*domain.TaskPage, error) {
		calls.Add(1)
		<-release
		return pageOf("shared"), nil
	}

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			page, err := c.GetOrCompute(context.Background(), owner, domain.TaskQuery{}, compute)
			assert.NoError(t, err)
			assert.Equal(t, "shared", page.Tasks[0].Name)
		}()
	}
	started.Wait()
	// Give every goroutine time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestListCache_SharedComputeSurvivesCallerCancel(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, NewMemoryStore(), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page, err := c.GetOrCompute(ctx, uuid.New(), domain.TaskQuery{},
		func(ctx context.Context) (*domain.TaskPage, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return pageOf("x"), nil
		})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 1)
}
