package svmgo

import (
	"context"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultKFold is the number of cross-validation folds used when AutoConfig.KFold is zero.
const DefaultKFold = 10

// AutoConfig configures TrainAuto.
type AutoConfig struct {
	// KFold is the number of cross-validation folds. Zero selects DefaultKFold.
	KFold int
	// Grids holds the search range of every hyperparameter. Ranges that do
	// not apply to the SVM or kernel type are ignored.
	Grids Grids
	// Balanced spreads both classes evenly over the folds of a two-class
	// problem.
	Balanced bool
}

// SearchReport summarises a TrainAuto run.
type SearchReport struct {
	// Best holds the winning parameters the returned model was trained with.
	Best Params
	// BestError is the summed validation error of Best over all folds:
	// the misclassification count, or the sum of squared errors for regression.
	BestError float64
	// Evaluated and Failed count grid points.
	Evaluated int
	Failed    int
}

// TrainAuto searches the hyperparameter grid with k-fold cross-validation
// and trains the final model on all of data with the best grid point.
//
// Grid points whose parameters are invalid or whose training fails in any
// fold are skipped. One-class models have no validation error and are
// trained with the base parameters.
func (t *Trainer) TrainAuto(ctx context.Context, data DataSource, cfg AutoConfig) (*Model, *SearchReport, error) {
	if t.params.Type == OneClass {
		m, err := t.Train(ctx, data)
		if err != nil {
			return nil, nil, err
		}
		return m, &SearchReport{Best: t.Params(), Evaluated: 1}, nil
	}

	kf := cfg.KFold
	if kf == 0 {
		kf = DefaultKFold
	}
	if kf < 2 {
		return nil, nil, configError("KFold", "must be at least 2, got %d", kf)
	}

	axes, err := cfg.Grids.axes(t.params)
	if err != nil {
		return nil, nil, err
	}

	set, err := newTrainingSet(data)
	if err != nil {
		return nil, nil, err
	}
	if set.n < kf {
		return nil, nil, dataError("%d samples cannot be split into %d folds", set.n, kf)
	}

	var balance []int
	if t.params.Type.IsClassifier() {
		labels, err := classLabels(set.responses)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Balanced && len(labels) == 2 {
			balance = labels
		}
	}

	rng := rand.New(rand.NewSource(t.opts.seed))
	sidx := foldOrder(rng, set, kf, balance)

	logger := t.opts.logger.WithParams(t.params)
	report := &SearchReport{BestError: math.Inf(1)}
	found := false

	err = forEachPoint(t.params, axes, func(p Params) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		np, err := p.normalize()
		var cvErr float64
		if err == nil {
			cvErr, err = t.crossValidate(ctx, np, set, sidx, kf, logger)
		}
		t.opts.metricsCollector.RecordGridPoint(time.Since(start), cvErr, err)
		logger.LogGridPoint(ctx, p, cvErr, err)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			report.Failed++
			return nil
		}

		report.Evaluated++
		if cvErr < report.BestError {
			report.BestError = cvErr
			report.Best = np
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, report, err
	}
	if !found {
		return nil, report, ErrSearchFailed
	}

	start := time.Now()
	m, err := t.train(ctx, report.Best, set, logger)
	t.recordTrain(ctx, set, m, start, err)
	if err != nil {
		return nil, report, err
	}
	return m, report, nil
}

// crossValidate returns the validation error of p summed over all folds.
// Folds are contiguous ranges of sidx taken with wrap-around.
func (t *Trainer) crossValidate(ctx context.Context, p Params, set *trainingSet, sidx []int, kf int, logger *Logger) (float64, error) {
	n := set.n
	testCount := (n + kf/2) / kf
	trainCount := n - testCount
	foldErrors := make([]float64, kf)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.parallelism)
	for k := range kf {
		g.Go(func() error {
			start := (k*n + kf/2) / kf
			trainIdx := make([]int, trainCount)
			for i := range trainIdx {
				trainIdx[i] = sidx[(i+start)%n]
			}
			testIdx := make([]int, testCount)
			for i := range testIdx {
				testIdx[i] = sidx[(i+start+trainCount)%n]
			}

			foldLogger := logger.WithFold(k)
			m, err := t.train(gctx, p, set.subset(trainIdx), foldLogger)
			if err != nil {
				foldLogger.LogCrossValidation(gctx, k, trainCount, testCount, 0, err)
				return err
			}

			var e float64
			s := m.newScratch()
			for _, i := range testIdx {
				pred := m.predictRow(set.row(i), s, false)
				if p.Type.IsClassifier() {
					if pred != set.responses[i] {
						e++
					}
				} else {
					d := pred - set.responses[i]
					e += d * d
				}
			}
			foldErrors[k] = e
			foldLogger.LogCrossValidation(gctx, k, trainCount, testCount, e, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total float64
	for _, e := range foldErrors {
		total += e
	}
	return total, nil
}

// foldOrder returns the randomly permuted sample order the folds are cut from.
// With balance set to the two class labels, every fold receives a share of
// both classes proportional to their sizes.
func foldOrder(rng *rand.Rand, set *trainingSet, kf int, balance []int) []int {
	n := set.n
	sidx := make([]int, n)
	for i := range sidx {
		sidx[i] = i
	}
	for range n {
		i1, i2 := rng.Intn(n), rng.Intn(n)
		sidx[i1], sidx[i2] = sidx[i2], sidx[i1]
	}
	if balance == nil {
		return sidx
	}

	var sidx0, sidx1 []int
	for _, i := range sidx {
		if int(set.responses[i]) == balance[0] {
			sidx0 = append(sidx0, i)
		} else {
			sidx1 = append(sidx1, i)
		}
	}

	n0, n1 := len(sidx0), len(sidx1)
	a0, a1 := 0, 0
	out := sidx[:0]
	for k := range kf {
		b0 := ((k+1)*n0 + kf/2) / kf
		b1 := ((k+1)*n1 + kf/2) / kf
		a := len(out)
		out = append(out, sidx0[a0:b0]...)
		out = append(out, sidx1[a1:b1]...)
		b := len(out)
		for range b - a {
			i1, i2 := a+rng.Intn(b-a), a+rng.Intn(b-a)
			out[i1], out[i2] = out[i2], out[i1]
		}
		a0, a1 = b0, b1
	}
	return out
}
