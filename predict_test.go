package svmgo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/svmgo/testutil"
)

// constantRecord builds a linear classifier whose decision functions ignore
// the sample: decision i evaluates to -rhos[i].
func constantRecord(labels []int, rhos []float64) *Record {
	rec := &Record{
		SVMType:        "C_SVC",
		Kernel:         KernelRecord{Type: "Linear"},
		C:              1,
		TermCriteria:   TermCriteriaRecord{Epsilon: 1e-3, Iterations: 100},
		VarCount:       2,
		ClassCount:     len(labels),
		ClassLabels:    labels,
		SVTotal:        1,
		SupportVectors: [][]float32{{1, 0}},
		Converged:      true,
	}
	for _, rho := range rhos {
		df := DecisionFunctionRecord{SVCount: 1, Rho: rho, Alpha: []float64{0}}
		if len(labels) > 2 {
			df.Index = []int{0}
		}
		rec.DecisionFunctions = append(rec.DecisionFunctions, df)
	}
	return rec
}

func TestPredict_Voting(t *testing.T) {
	tests := []struct {
		name string
		rhos []float64
		want float64
	}{
		// (0,1) -> 0, (0,2) -> 0, (1,2) -> 1
		{"Majority", []float64{-1, -1, -1}, 10},
		// (0,1) -> 1, (0,2) -> 2, (1,2) -> 1
		{"SecondClass", []float64{1, 1, -1}, 20},
		// one vote each; the lowest class index wins
		{"Tie", []float64{-1, 1, -1}, 10},
		// a zero decision votes for the second class of the pair
		{"ZeroDecision", []float64{0, 0, 0}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromRecord(constantRecord([]int{10, 20, 30}, tt.rhos))
			require.NoError(t, err)

			got, err := m.PredictOne([]float32{3, 4})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredict_TwoClassRaw(t *testing.T) {
	m, err := FromRecord(constantRecord([]int{-1, 1}, []float64{0.25}))
	require.NoError(t, err)

	label, err := m.PredictOne([]float32{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, label)

	raw, err := m.PredictOne([]float32{0, 0}, WithRawOutput())
	require.NoError(t, err)
	assert.Equal(t, -0.25, raw)
}

func TestPredict_ParallelMatchesSequential(t *testing.T) {
	trainer, err := NewTrainer(DefaultParams())
	require.NoError(t, err)

	m, err := trainer.Train(context.Background(), clusterDataset(t, 10))
	require.NoError(t, err)

	rng := testutil.NewRNG(9)
	samples := testutil.Flatten(rng.UniformVectors(257, 2, -2, 12))

	seq, err := m.Predict(context.Background(), samples, WithPredictParallelism(1))
	require.NoError(t, err)
	par, err := m.Predict(context.Background(), samples, WithPredictParallelism(8))
	require.NoError(t, err)

	require.Len(t, seq, 257)
	assert.Equal(t, seq, par)
}

func TestPredict_Errors(t *testing.T) {
	t.Run("NotTrained", func(t *testing.T) {
		var m *Model
		_, err := m.Predict(context.Background(), []float32{1, 2})
		assert.ErrorIs(t, err, ErrNotTrained)

		_, err = (&Model{}).PredictOne([]float32{1, 2})
		assert.ErrorIs(t, err, ErrNotTrained)
	})

	m, err := FromRecord(constantRecord([]int{0, 1}, []float64{0}))
	require.NoError(t, err)

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := m.Predict(context.Background(), []float32{1, 2, 3})

		var dimErr *ErrDimensionMismatch
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 2, dimErr.Expected)
		assert.Equal(t, 3, dimErr.Actual)

		_, err = m.PredictOne([]float32{1})
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 1, dimErr.Actual)
	})

	t.Run("Empty", func(t *testing.T) {
		out, err := m.Predict(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := m.Predict(ctx, []float32{1, 2})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPredict_Metrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	m, err := FromRecord(constantRecord([]int{0, 1}, []float64{0}), WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, err = m.Predict(context.Background(), make([]float32, 2*20))
	require.NoError(t, err)
	_, err = m.Predict(context.Background(), make([]float32, 3))
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.PredictCount)
	assert.Equal(t, int64(20), stats.PredictSamples)
	assert.Equal(t, int64(1), stats.PredictErrors)
}
