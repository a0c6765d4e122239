package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a standard normally distributed value.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// UniformVectors generates random vectors with values in range [minVal, maxVal).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num, dim int, minVal, maxVal float32) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)
	span := maxVal - minVal

	for i := range num {
		vec := data[i*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = minVal + r.rand.Float32()*span
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianClusters draws perCluster points around each center with the given
// standard deviation. The label of a point is the index of its center.
// Points are emitted cluster by cluster.
func (r *RNG) GaussianClusters(centers [][]float32, perCluster int, spread float64) ([][]float32, []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples := make([][]float32, 0, len(centers)*perCluster)
	labels := make([]float64, 0, len(centers)*perCluster)

	for c, center := range centers {
		for range perCluster {
			vec := make([]float32, len(center))
			for j, m := range center {
				vec[j] = m + float32(r.rand.NormFloat64()*spread)
			}
			samples = append(samples, vec)
			labels = append(labels, float64(c))
		}
	}

	return samples, labels
}

// NoisyLine samples n points x in [0,1) with y = slope*x + intercept plus
// Gaussian noise of the given standard deviation.
func (r *RNG) NoisyLine(n int, slope, intercept, noise float64) ([][]float32, []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples := make([][]float32, n)
	targets := make([]float64, n)

	for i := range n {
		x := r.rand.Float64()
		samples[i] = []float32{float32(x)}
		targets[i] = slope*x + intercept + r.rand.NormFloat64()*noise
	}

	return samples, targets
}

// Shuffle permutes samples and labels in place with the same permutation.
func (r *RNG) Shuffle(samples [][]float32, labels []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rand.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
		labels[i], labels[j] = labels[j], labels[i]
	})
}

// XOR returns the four corners of the unit square labelled as XOR:
// (0,0) and (1,1) are -1, (0,1) and (1,0) are +1.
func XOR() ([][]float32, []float64) {
	return [][]float32{{0, 0}, {1, 1}, {0, 1}, {1, 0}}, []float64{-1, -1, 1, 1}
}

// Flatten copies rows into one row-major slice.
func Flatten(rows [][]float32) []float32 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float32, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// Accuracy returns the fraction of predictions equal to the expected labels.
func Accuracy(predicted, expected []float64) float64 {
	if len(expected) == 0 {
		return 0
	}
	hits := 0
	for i, p := range predicted {
		if p == expected[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(expected))
}

// MeanSquaredError returns the mean squared difference of two equally long slices.
func MeanSquaredError(predicted, expected []float64) float64 {
	if len(expected) == 0 {
		return 0
	}
	var sum float64
	for i, p := range predicted {
		d := p - expected[i]
		sum += d * d
	}
	return sum / float64(len(expected))
}
