package svmgo

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/svmgo/kernel"
	"github.com/hupe1980/svmgo/testutil"
)

func TestTrainAuto_SinglePointMatchesTrain(t *testing.T) {
	ctx := context.Background()
	data := clusterDataset(t, 10)

	trainer, err := NewTrainer(DefaultParams())
	require.NoError(t, err)

	want, err := trainer.Train(ctx, data)
	require.NoError(t, err)

	got, report, err := trainer.TrainAuto(ctx, data, AutoConfig{KFold: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Evaluated)
	assert.Zero(t, report.Failed)
	assert.Equal(t, trainer.Params(), report.Best)
	assert.Equal(t, want.Record(), got.Record())
}

func TestTrainAuto_SearchesC(t *testing.T) {
	ctx := context.Background()
	data := clusterDataset(t, 10)
	metrics := &BasicMetricsCollector{}

	trainer, err := NewTrainer(DefaultParams(), WithMetricsCollector(metrics), WithSeed(1))
	require.NoError(t, err)

	m, report, err := trainer.TrainAuto(ctx, data, AutoConfig{
		KFold: 5,
		Grids: Grids{C: ParamGrid{Min: 0.1, Max: 100, LogStep: 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Evaluated+report.Failed)
	assert.Contains(t, []float64{0.1, 1, 10}, report.Best.C)
	assert.Equal(t, 1.0, report.Best.Gamma)
	assert.Zero(t, report.BestError)

	preds, err := m.Predict(ctx, data.Samples())
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.Accuracy(preds, data.Responses()))

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.GridPointCount)
	// 3 points x 5 folds plus the final model.
	assert.Equal(t, int64(1), stats.TrainCount)
	assert.Equal(t, int64(3*5*3+3), stats.SolveCount)
}

func TestTrainAuto_Regression(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(21)
	rows, targets := rng.NoisyLine(40, 3, -1, 0.01)
	data, err := NewDataset(rows, targets)
	require.NoError(t, err)

	p := DefaultParams()
	p.Type = EpsSVR
	p.KernelType = kernel.Linear
	p.C = 10
	p.P = 0.1
	p.TermCriteria.MaxIter = 100000

	trainer, err := NewTrainer(p)
	require.NoError(t, err)

	m, report, err := trainer.TrainAuto(ctx, data, AutoConfig{
		KFold: 4,
		Grids: Grids{
			P:     ParamGrid{Min: 0.01, Max: 1, LogStep: 10},
			Gamma: DefaultGrid(ParamGamma), // ignored by the linear kernel
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Evaluated)
	assert.Equal(t, 1.0, report.Best.Gamma)
	assert.False(t, m.IsClassifier())
}

func TestTrainAuto_OneClass(t *testing.T) {
	rng := testutil.NewRNG(4)
	rows, labels := rng.GaussianClusters([][]float32{{0, 0}}, 20, 1)
	data, err := NewDataset(rows, labels)
	require.NoError(t, err)

	p := DefaultParams()
	p.Type = OneClass
	p.Nu = 0.2

	trainer, err := NewTrainer(p)
	require.NoError(t, err)

	m, report, err := trainer.TrainAuto(context.Background(), data, AutoConfig{Grids: DefaultGrids()})
	require.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, 1, report.Evaluated)
	assert.Equal(t, 0.2, report.Best.Nu)
}

func TestTrainAuto_Errors(t *testing.T) {
	ctx := context.Background()
	trainer, err := NewTrainer(DefaultParams())
	require.NoError(t, err)

	t.Run("KFold", func(t *testing.T) {
		_, _, err := trainer.TrainAuto(ctx, xorDataset(t), AutoConfig{KFold: 1})
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "KFold", cfgErr.Field)
	})

	t.Run("TooFewSamples", func(t *testing.T) {
		_, _, err := trainer.TrainAuto(ctx, xorDataset(t), AutoConfig{})
		assert.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("InvalidGrid", func(t *testing.T) {
		_, _, err := trainer.TrainAuto(ctx, clusterDataset(t, 5), AutoConfig{
			KFold: 3,
			Grids: Grids{C: ParamGrid{Min: 10, Max: 1, LogStep: 2}},
		})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := trainer.TrainAuto(cctx, clusterDataset(t, 5), AutoConfig{KFold: 3})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("AllPointsFail", func(t *testing.T) {
		p := DefaultParams()
		p.Type = NuSVC
		p.Nu = 0.5
		nuTrainer, err := NewTrainer(p)
		require.NoError(t, err)

		rows := make([][]float32, 12)
		labels := make([]float64, 12)
		for i := range rows {
			rows[i] = []float32{float32(i)}
			if i >= 10 {
				labels[i] = 1
			}
		}
		data, err := NewDataset(rows, labels)
		require.NoError(t, err)

		_, report, err := nuTrainer.TrainAuto(ctx, data, AutoConfig{
			KFold: 3,
			Grids: Grids{Nu: ParamGrid{Min: 0.5, Max: 0.9, LogStep: 1.5}},
		})
		assert.ErrorIs(t, err, ErrSearchFailed)
		require.NotNil(t, report)
		assert.Equal(t, 2, report.Failed)
		assert.Zero(t, report.Evaluated)
	})
}

func TestFoldOrder(t *testing.T) {
	rows := make([]float32, 20)
	responses := make([]float64, 20)
	for i := range responses {
		rows[i] = float32(i)
		if i%4 == 0 {
			responses[i] = 1
		}
	}
	set := &trainingSet{samples: rows, dim: 1, n: 20, responses: responses}

	t.Run("Permutation", func(t *testing.T) {
		order := foldOrder(rand.New(rand.NewSource(1)), set, 5, nil)
		seen := make(map[int]bool, len(order))
		for _, i := range order {
			seen[i] = true
		}
		assert.Len(t, order, 20)
		assert.Len(t, seen, 20)

		again := foldOrder(rand.New(rand.NewSource(1)), set, 5, nil)
		assert.Equal(t, order, again)
	})

	t.Run("Balanced", func(t *testing.T) {
		// 15 samples of class 0 and 5 of class 1 over 5 folds.
		order := foldOrder(rand.New(rand.NewSource(2)), set, 5, []int{0, 1})
		require.Len(t, order, 20)
		for k := range 5 {
			ones := 0
			for _, i := range order[4*k : 4*k+4] {
				if responses[i] == 1 {
					ones++
				}
			}
			assert.Equal(t, 1, ones, "fold %d", k)
		}
	})
}
