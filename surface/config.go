// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

// DefaultEvictAfterFrames is the default age, in frames, after which
// unused surfaces are destroyed.
const DefaultEvictAfterFrames = 60

// Config holds cache settings. The zero value uses the defaults.
type Config struct {
	// EvictAfterFrames is the age at which orphaned chain entries and
	// never-written buffers are destroyed. Zero selects
	// DefaultEvictAfterFrames; negative disables age eviction.
	EvictAfterFrames int
}

func (c Config) evictAfter() int {
	if c.EvictAfterFrames == 0 {
		return DefaultEvictAfterFrames
	}
	return c.EvictAfterFrames
}
