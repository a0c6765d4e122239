// Package cache provides the kernel row cache of the solver.
//
// # Row Cache
//
// RowCache keeps the most recently used rows Q[i][*] of an n-sample problem.
// Storage is a single rows×n float32 matrix sized once from the byte budget
// (see RowCapacity):
//
//	elems = clamp(n²/4, minBytes/4, maxBytes/4)
//	rows  = clamp(ceil(elems/n), 1, n)
//
// Recency is tracked by an index-linked LRU list over the sample indices, so
// a hit or an eviction never allocates.
//
// When a resource.Controller is configured the row storage is charged against
// its memory limit. A cache that cannot get its full budget halves the row
// count until the reservation succeeds.
package cache
