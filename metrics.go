package svmgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    trainCounter     prometheus.Counter
//	    predictHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordTrain(duration time.Duration, supportVectors int, err error) {
//	    p.trainCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordTrain is called after each training run (Train, and the final
	// refit of TrainAuto).
	RecordTrain(duration time.Duration, supportVectors int, err error)

	// RecordSolve is called after each binary sub-problem.
	// status is "converged", "iteration_limit" or "diverged".
	RecordSolve(iterations int, status string, duration time.Duration)

	// RecordPredict is called after each prediction batch.
	RecordPredict(count int, duration time.Duration, err error)

	// RecordGridPoint is called after each evaluated hyperparameter grid point.
	// validationError is the summed cross-validation error.
	RecordGridPoint(duration time.Duration, validationError float64, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrain(time.Duration, int, error)         {}
func (NoopMetricsCollector) RecordSolve(int, string, time.Duration)        {}
func (NoopMetricsCollector) RecordPredict(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordGridPoint(time.Duration, float64, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrainCount          atomic.Int64
	TrainErrors         atomic.Int64
	TrainTotalNanos     atomic.Int64
	SupportVectors      atomic.Int64
	SolveCount          atomic.Int64
	SolveIterations     atomic.Int64
	SolveIterationLimit atomic.Int64
	SolveDiverged       atomic.Int64
	PredictCount        atomic.Int64
	PredictSamples      atomic.Int64
	PredictErrors       atomic.Int64
	PredictTotalNanos   atomic.Int64
	GridPointCount      atomic.Int64
	GridPointErrors     atomic.Int64
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(duration time.Duration, supportVectors int, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
		return
	}
	b.SupportVectors.Add(int64(supportVectors))
}

// RecordSolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSolve(iterations int, status string, duration time.Duration) {
	b.SolveCount.Add(1)
	b.SolveIterations.Add(int64(iterations))
	switch status {
	case "iteration_limit":
		b.SolveIterationLimit.Add(1)
	case "diverged":
		b.SolveDiverged.Add(1)
	}
}

// RecordPredict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredict(count int, duration time.Duration, err error) {
	b.PredictCount.Add(1)
	b.PredictSamples.Add(int64(count))
	b.PredictTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PredictErrors.Add(1)
	}
}

// RecordGridPoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGridPoint(duration time.Duration, validationError float64, err error) {
	b.GridPointCount.Add(1)
	if err != nil {
		b.GridPointErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TrainCount:          b.TrainCount.Load(),
		TrainErrors:         b.TrainErrors.Load(),
		TrainAvgNanos:       avg(b.TrainTotalNanos.Load(), b.TrainCount.Load()),
		SupportVectors:      b.SupportVectors.Load(),
		SolveCount:          b.SolveCount.Load(),
		SolveAvgIterations:  avg(b.SolveIterations.Load(), b.SolveCount.Load()),
		SolveIterationLimit: b.SolveIterationLimit.Load(),
		SolveDiverged:       b.SolveDiverged.Load(),
		PredictCount:        b.PredictCount.Load(),
		PredictSamples:      b.PredictSamples.Load(),
		PredictErrors:       b.PredictErrors.Load(),
		PredictAvgNanos:     avg(b.PredictTotalNanos.Load(), b.PredictCount.Load()),
		GridPointCount:      b.GridPointCount.Load(),
		GridPointErrors:     b.GridPointErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TrainCount          int64
	TrainErrors         int64
	TrainAvgNanos       int64
	SupportVectors      int64
	SolveCount          int64
	SolveAvgIterations  int64
	SolveIterationLimit int64
	SolveDiverged       int64
	PredictCount        int64
	PredictSamples      int64
	PredictErrors       int64
	PredictAvgNanos     int64
	GridPointCount      int64
	GridPointErrors     int64
}
