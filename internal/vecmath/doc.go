// Package vecmath provides the float32 vector primitives behind the kernel
// evaluators.
//
// # Operations
//
//   - Dot, DotBatch: inner products, dispatched to gonum's blas32 (which
//     carries assembly kernels on amd64/arm64)
//   - SquaredL2, SquaredL2Batch: squared Euclidean distance
//   - MinSum: histogram intersection
//   - ChiSquared: additive chi-squared distance, skipping zero denominators
//
// Batch variants take a flattened row-major matrix of N vectors of dimension
// dim and write N results into out.
package vecmath
