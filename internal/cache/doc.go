// Package cache keeps host objects that are expensive to create and
// cheap to look up: compiled shader modules, render pipelines and
// samplers.
//
// A Cache is an LRU list with a soft limit. Values leaving it are passed
// to a release function, which typically hands the host object to a
// retirement queue until the GPU is done with it.
//
//	c := cache.New(256, func(_ samplerKey, s hal.Sampler) {
//		retire.sampler(s)
//	})
//	s, err := c.Obtain(key, func() (hal.Sampler, error) {
//		return device.CreateSampler(desc)
//	})
//
// # Thread Safety
//
// Cache is safe for concurrent use. It must not be copied after creation
// (it contains a mutex).
package cache
