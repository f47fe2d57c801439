package metrics

import "time"

// CacheResult labels the outcome of a task list cache lookup.
type CacheResult string

const (
	CacheHit    CacheResult = "hit"
	CacheMiss   CacheResult = "miss"
	CacheBypass CacheResult = "bypass"
	CacheError  CacheResult = "error"
)

// Recorder receives application measurements. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
	IncCacheResult(result CacheResult)
	IncTaskMutation(action string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (NoopRecorder) IncCacheResult(CacheResult)                           {}
func (NoopRecorder) IncTaskMutation(string)                               {}
