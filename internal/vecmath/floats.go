package vecmath

import (
	"gonum.org/v1/gonum/blas/blas32"
)

// Dot calculates the dot product of two vectors.
//
// SAFETY: This function assumes len(a) == len(b).
func Dot(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return blas32.Dot(
		blas32.Vector{N: len(a), Data: a, Inc: 1},
		blas32.Vector{N: len(a), Data: b, Inc: 1},
	)
}

// DotBatch calculates dot products for a batch of vectors.
// targets is a flattened array of N vectors, each of dimension dim.
// out must have length N (len(targets) / dim).
func DotBatch(query []float32, targets []float32, dim int, out []float32) {
	n := batchLen(query, targets, dim, out)
	q := query[:dim]
	for i := 0; i < n; i++ {
		offset := i * dim
		out[i] = Dot(q, targets[offset:offset+dim])
	}
}

// SquaredL2 calculates the squared L2 distance.
// The sum is accumulated in float64.
//
// SAFETY: This function assumes len(a) == len(b).
func SquaredL2(a, b []float32) float64 {
	var s float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return s
}

// SquaredL2Batch calculates squared L2 distance for a batch of vectors.
func SquaredL2Batch(query []float32, targets []float32, dim int, out []float64) {
	n := batchLen(query, targets, dim, out)
	q := query[:dim]
	for i := 0; i < n; i++ {
		offset := i * dim
		out[i] = SquaredL2(q, targets[offset:offset+dim])
	}
}

// MinSum returns the sum of element-wise minima of a and b.
func MinSum(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(min(a[i], b[i]))
	}
	return s
}

// ChiSquared returns sum((a_k-b_k)^2 / (a_k+b_k)).
// Terms with a zero denominator contribute nothing.
func ChiSquared(a, b []float32) float64 {
	var s float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		den := float64(a[i]) + float64(b[i])
		if den != 0 {
			s += d * d / den
		}
	}
	return s
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// AxpyTo accumulates alpha*x into the float64 vector dst.
func AxpyTo(dst []float64, alpha float64, x []float32) {
	for i := range dst {
		dst[i] += alpha * float64(x[i])
	}
}

func batchLen[T any](query, targets []float32, dim int, out []T) int {
	if dim <= 0 || len(out) == 0 || len(query) < dim {
		return 0
	}
	return min(len(out), len(targets)/dim)
}
