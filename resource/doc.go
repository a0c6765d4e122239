// Package resource implements a Controller that bounds the resources a
// training run may consume.
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Controller                        │
//	├──────────────────┬──────────────────┬────────────────────┤
//	│  Memory Limit    │  Worker Slots    │  IO Rate Limiter   │
//	│  (kernel rows)   │  (sub-problems)  │  (model uploads)   │
//	├──────────────────┼──────────────────┼────────────────────┤
//	│  AcquireMemory   │  AcquireWorker   │  AcquireIO         │
//	│  TryAcquireMemory│  TryAcquireWorker│  RateLimitedWriter │
//	│  ReleaseMemory   │  ReleaseWorker   │  RateLimitedReader │
//	└──────────────────┴──────────────────┴────────────────────┘
//
// Row caches reserve their storage with TryAcquireMemory and shrink when the
// limit is reached. Parallel pair training takes a worker slot per binary
// sub-problem. Model uploads pass through the IO limiter:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    MaxWorkers:         4,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//
// All methods are safe for concurrent use, and all methods treat a nil
// *Controller as unlimited.
package resource
