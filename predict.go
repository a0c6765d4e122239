package svmgo

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// sequentialBatch is the batch size below which Predict stays on the calling goroutine.
const sequentialBatch = 10

type predictOptions struct {
	raw         bool
	parallelism int
}

// PredictOption configures Predict.
type PredictOption func(*predictOptions)

// WithRawOutput returns decision values instead of labels for two-class
// classifiers and one-class models. It has no effect for K>2 classes and
// for regression.
func WithRawOutput() PredictOption {
	return func(o *predictOptions) {
		o.raw = true
	}
}

// WithPredictParallelism bounds the goroutines of one Predict call.
// Values below 1 select 1. Defaults to runtime.GOMAXPROCS(0).
func WithPredictParallelism(n int) PredictOption {
	return func(o *predictOptions) {
		o.parallelism = max(n, 1)
	}
}

// predictScratch holds per-goroutine buffers.
type predictScratch struct {
	row   []float32
	votes []int
}

// Predict evaluates row-major samples and returns one value per sample:
// a class label for classifiers, the regression estimate, or +1/-1 for
// one-class models.
//
// len(samples) must be a multiple of VarCount, otherwise an
// *ErrDimensionMismatch reporting len(samples) is returned.
func (m *Model) Predict(ctx context.Context, samples []float32, optFns ...PredictOption) ([]float64, error) {
	if m == nil || len(m.dfs) == 0 {
		return nil, ErrNotTrained
	}

	start := time.Now()
	out, err := m.predict(ctx, samples, optFns)

	m.metrics.RecordPredict(len(out), time.Since(start), err)
	m.logger.LogPredict(ctx, len(samples)/m.varCount, err)
	return out, err
}

// PredictOne evaluates a single sample.
func (m *Model) PredictOne(sample []float32, optFns ...PredictOption) (float64, error) {
	if m == nil || len(m.dfs) == 0 {
		return 0, ErrNotTrained
	}
	if len(sample) != m.varCount {
		return 0, &ErrDimensionMismatch{Expected: m.varCount, Actual: len(sample)}
	}
	out, err := m.Predict(context.Background(), sample, optFns...)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

func (m *Model) predict(ctx context.Context, samples []float32, optFns []PredictOption) ([]float64, error) {
	o := predictOptions{parallelism: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	dim := m.varCount
	if len(samples)%dim != 0 {
		return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(samples)}
	}
	n := len(samples) / dim
	out := make([]float64, n)

	if n < sequentialBatch || o.parallelism <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := m.newScratch()
		for i := range out {
			out[i] = m.predictRow(samples[i*dim:(i+1)*dim], s, o.raw)
		}
		return out, nil
	}

	workers := min(o.parallelism, n)
	chunk := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := m.newScratch()
			for i := lo; i < hi; i++ {
				out[i] = m.predictRow(samples[i*dim:(i+1)*dim], s, o.raw)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Model) newScratch() *predictScratch {
	return &predictScratch{
		row:   make([]float32, m.svCount),
		votes: make([]int, len(m.classLabels)),
	}
}

func (m *Model) predictRow(x []float32, s *predictScratch, raw bool) float64 {
	m.ev.Calc(x, m.sv, m.varCount, s.row)

	if !m.params.Type.IsClassifier() {
		sum := m.decision(0, s.row)
		if m.params.Type == OneClass && !raw {
			if sum > 0 {
				return 1
			}
			return -1
		}
		return sum
	}

	k := len(m.classLabels)
	if k == 2 && raw {
		return m.decision(0, s.row)
	}

	clear(s.votes)
	df := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if m.decision(df, s.row) > 0 {
				s.votes[i]++
			} else {
				s.votes[j]++
			}
			df++
		}
	}

	best := 0
	for i := 1; i < k; i++ {
		if s.votes[i] > s.votes[best] {
			best = i
		}
	}
	return float64(m.classLabels[best])
}

// decision evaluates decision function df given the kernel row of the query
// against the support-vector set.
func (m *Model) decision(df int, row []float32) float64 {
	alpha, index := m.dfSlices(df)
	sum := -m.dfs[df].rho
	for k, a := range alpha {
		sum += a * float64(row[index[k]])
	}
	return sum
}
