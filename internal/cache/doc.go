// Package cache memoizes task list pages per owner.
//
// Entries are stored under keys that embed a per-owner generation number.
// Invalidating an owner bumps the generation, so every list entry written
// under the old generation becomes unreachable at once and simply ages out.
// Two Store backends exist: an in-process map and Redis.
package cache
