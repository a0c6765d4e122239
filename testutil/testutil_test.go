package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32, -1, 1)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	for _, vec := range v {
		for _, x := range vec {
			assert.GreaterOrEqual(t, x, float32(-1))
			assert.Less(t, x, float32(1))
		}
	}
}

func TestGaussianClusters(t *testing.T) {
	rng := NewRNG(4711)
	centers := [][]float32{{0, 0}, {10, 10}, {-10, 10}}

	x, y := rng.GaussianClusters(centers, 5, 0.1)

	require.Len(t, x, 15)
	require.Len(t, y, 15)
	for i := range x {
		c := centers[int(y[i])]
		assert.InDelta(t, c[0], x[i][0], 1)
		assert.InDelta(t, c[1], x[i][1], 1)
	}
	assert.Equal(t, 0.0, y[0])
	assert.Equal(t, 2.0, y[14])
}

func TestNoisyLine(t *testing.T) {
	rng := NewRNG(4711)

	x, y := rng.NoisyLine(50, 2, 1, 0)

	require.Len(t, x, 50)
	for i := range x {
		assert.InDelta(t, 2*float64(x[i][0])+1, y[i], 1e-6)
	}
}

func TestShuffleKeepsPairs(t *testing.T) {
	rng := NewRNG(4711)
	x, y := rng.NoisyLine(20, 3, 0, 0)

	rng.Shuffle(x, y)

	for i := range x {
		assert.InDelta(t, 3*float64(x[i][0]), y[i], 1e-6)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10, 0, 1)

	rng.Reset()
	v2 := rng.UniformVectors(1, 10, 0, 1)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestFlatten(t *testing.T) {
	assert.Nil(t, Flatten(nil))
	assert.Equal(t, []float32{1, 2, 3, 4}, Flatten([][]float32{{1, 2}, {3, 4}}))
}

func TestScores(t *testing.T) {
	assert.Equal(t, 0.75, Accuracy([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 0}))
	assert.Equal(t, 0.0, Accuracy(nil, nil))
	assert.InDelta(t, 2.5, MeanSquaredError([]float64{1, 3}, []float64{2, 1}), 1e-12)
}
