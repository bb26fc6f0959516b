// Package compute provides data-parallel execution backends.
//
// The collision kernel is written against [Backend] so the same code runs
// inline or spread across a goroutine pool:
//
//   - [SerialBackend]: runs every range on the calling goroutine
//   - [CPUBackend]: splits the range into chunks across runtime.NumCPU() workers
//
// Pick one explicitly or let [AutoSelect] decide from a worker count:
//
//	backend := compute.AutoSelect(0)
//	backend.For(len(particles), func(start, end int) { ... })
//
// Small ranges always run inline; goroutine startup costs more than the work.
package compute
