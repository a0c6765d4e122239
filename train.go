package svmgo

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/svmgo/internal/solver"
)

// Trainer fits SVM models with fixed hyperparameters (Train) or searches
// them by cross-validation (TrainAuto).
//
// A Trainer is safe for concurrent use.
type Trainer struct {
	params Params
	opts   options
}

// NewTrainer validates p and returns a Trainer.
// Invalid parameters are reported as *ConfigurationError.
func NewTrainer(p Params, optFns ...Option) (*Trainer, error) {
	np, err := p.normalize()
	if err != nil {
		return nil, err
	}
	return &Trainer{params: np, opts: applyOptions(optFns)}, nil
}

// Params returns the normalised parameters.
func (t *Trainer) Params() Params {
	p := t.params
	p.ClassWeights = maps.Clone(p.ClassWeights)
	return p
}

// Train fits a model on data.
//
// Classification problems are decomposed one-vs-one into K(K-1)/2 binary
// sub-problems trained concurrently; regression and one-class problems are
// a single sub-problem. Training is all-or-nothing: any failing sub-problem
// fails the whole call.
func (t *Trainer) Train(ctx context.Context, data DataSource) (*Model, error) {
	start := time.Now()

	set, err := newTrainingSet(data)
	var m *Model
	if err == nil {
		m, err = t.train(ctx, t.params, set, t.opts.logger.WithParams(t.params))
	}

	t.recordTrain(ctx, set, m, start, err)
	return m, err
}

func (t *Trainer) recordTrain(ctx context.Context, set *trainingSet, m *Model, start time.Time, err error) {
	elapsed := time.Since(start)
	samples, svs := 0, 0
	if set != nil {
		samples = set.n
	}
	if m != nil {
		svs = m.svCount
	}
	t.opts.metricsCollector.RecordTrain(elapsed, svs, err)
	t.opts.logger.LogTrain(ctx, samples, svs, elapsed, err)
}

func (t *Trainer) train(ctx context.Context, p Params, set *trainingSet, logger *Logger) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev, err := t.opts.kernelFactory(p.KernelParams())
	if err != nil {
		return nil, &ConfigurationError{Field: "KernelType", Reason: err.Error(), cause: err}
	}

	m := newModel(p, set.dim, ev, &t.opts)
	if p.Type.IsClassifier() {
		err = t.trainClassifier(ctx, m, set, logger)
	} else {
		err = t.trainSingle(ctx, m, set, logger)
	}
	if err != nil {
		return nil, err
	}

	m.optimizeLinear()
	return m, nil
}

// subResult holds the support vectors of one sub-problem by original sample index.
type subResult struct {
	rho    float64
	idx    []int
	alpha  []float64
	status solver.Status
}

func newSubResult(res *solver.Result, rows []int) *subResult {
	sr := &subResult{rho: res.Rho, status: res.Status}
	for k, a := range res.Alpha {
		if a != 0 {
			i := k
			if rows != nil {
				i = rows[k]
			}
			sr.idx = append(sr.idx, i)
			sr.alpha = append(sr.alpha, a)
		}
	}
	return sr
}

// runSolver runs one sub-problem in a worker slot and reports it.
func (t *Trainer) runSolver(ctx context.Context, logger *Logger, classI, classJ int, solve func() (*solver.Result, error)) (*solver.Result, error) {
	rc := t.opts.resource
	if err := rc.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseWorker()

	start := time.Now()
	res, err := solve()
	if res != nil {
		t.opts.metricsCollector.RecordSolve(res.Iterations, res.Status.String(), time.Since(start))
		logger.LogSolve(ctx, res.Iterations, res.Status.String(), res.Obj, res.Rho, err)
	} else if err != nil {
		logger.LogSolve(ctx, 0, solver.Diverged.String(), 0, 0, err)
	}
	if err != nil {
		return nil, translateSolveError(err, classI, classJ)
	}

	if res.Status == solver.IterationLimitReached && t.opts.strict {
		return nil, &ConvergenceError{ClassI: classI, ClassJ: classJ, cause: ErrIterationLimit}
	}
	return res, nil
}

func (t *Trainer) trainSingle(ctx context.Context, m *Model, set *trainingSet, logger *Logger) error {
	p := m.params
	mat := solver.Matrix{Data: set.samples, Rows: set.n, Dim: set.dim}
	cfg := p.solverConfig(&t.opts)

	res, err := t.runSolver(ctx, logger, 0, 0, func() (*solver.Result, error) {
		switch p.Type {
		case OneClass:
			return solver.SolveOneClass(mat, p.Nu, m.ev, cfg)
		case EpsSVR:
			return solver.SolveEpsSVR(mat, set.responses, p.P, p.C, m.ev, cfg)
		default:
			return solver.SolveNuSVR(mat, set.responses, p.Nu, p.C, m.ev, cfg)
		}
	})
	if err != nil {
		return err
	}

	sr := newSubResult(res, nil)
	m.converged = res.Status == solver.Converged
	m.svCount = len(sr.idx)
	m.sv = make([]float32, 0, len(sr.idx)*set.dim)
	m.dfIndex = make([]int, len(sr.idx))
	for k, i := range sr.idx {
		m.sv = append(m.sv, set.row(i)...)
		m.dfIndex[k] = k
	}
	m.dfAlpha = sr.alpha
	m.dfs = []decisionFunc{{rho: sr.rho}}
	return nil
}

func (t *Trainer) trainClassifier(ctx context.Context, m *Model, set *trainingSet, logger *Logger) error {
	p := m.params

	labels, err := classLabels(set.responses)
	if err != nil {
		return err
	}
	if len(labels) < 2 {
		return dataError("classification needs at least two classes, got %d", len(labels))
	}

	weights := make([]float64, len(labels))
	for i := range weights {
		weights[i] = 1
	}
	for label, w := range p.ClassWeights {
		pos, ok := slices.BinarySearch(labels, label)
		if !ok {
			return configError("ClassWeights", "class %d does not occur in the training data", label)
		}
		weights[pos] = w
	}

	groups := make([][]int, len(labels))
	for i, r := range set.responses {
		pos, _ := slices.BinarySearch(labels, int(r))
		groups[pos] = append(groups[pos], i)
	}

	type pair struct{ i, j int }
	pairs := make([]pair, 0, len(labels)*(len(labels)-1)/2)
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			if p.Type == NuSVC {
				ci, cj := float64(len(groups[i])), float64(len(groups[j]))
				if p.Nu*(ci+cj)/2 > min(ci, cj) {
					return dataError("nu=%v is infeasible for classes %d (%d samples) and %d (%d samples)",
						p.Nu, labels[i], len(groups[i]), labels[j], len(groups[j]))
				}
			}
			pairs = append(pairs, pair{i, j})
		}
	}

	cfg := p.solverConfig(&t.opts)
	results := make([]*subResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.parallelism)
	for k, pr := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rows := make([]int, 0, len(groups[pr.i])+len(groups[pr.j]))
			rows = append(rows, groups[pr.i]...)
			rows = append(rows, groups[pr.j]...)
			sub := set.subset(rows)
			mat := solver.Matrix{Data: sub.samples, Rows: sub.n, Dim: sub.dim}

			y := make([]int8, len(rows))
			for r := range y {
				if r < len(groups[pr.i]) {
					y[r] = 1
				} else {
					y[r] = -1
				}
			}

			ci, cj := labels[pr.i], labels[pr.j]
			res, err := t.runSolver(gctx, logger.WithPair(ci, cj), ci, cj, func() (*solver.Result, error) {
				if p.Type == NuSVC {
					return solver.SolveNuSVC(mat, y, p.Nu, m.ev, cfg)
				}
				return solver.SolveCSVC(mat, y, p.C*weights[pr.i], p.C*weights[pr.j], m.ev, cfg)
			})
			if err != nil {
				return err
			}
			results[k] = newSubResult(res, rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.classLabels = labels
	mergeSupportVectors(m, set, results)
	return nil
}

// mergeSupportVectors compacts the union of all sub-problem support vectors
// in sample order and remaps every decision function onto it.
func mergeSupportVectors(m *Model, set *trainingSet, results []*subResult) {
	svSet := roaring.New()
	total := 0
	for _, sr := range results {
		for _, i := range sr.idx {
			svSet.Add(uint32(i))
		}
		total += len(sr.idx)
	}

	members := svSet.ToArray()
	m.svCount = len(members)
	m.sv = make([]float32, 0, len(members)*set.dim)
	for _, i := range members {
		m.sv = append(m.sv, set.row(int(i))...)
	}

	type coef struct {
		index int
		alpha float64
	}
	m.dfs = make([]decisionFunc, len(results))
	m.dfAlpha = make([]float64, 0, total)
	m.dfIndex = make([]int, 0, total)
	for d, sr := range results {
		coefs := make([]coef, len(sr.idx))
		for k, i := range sr.idx {
			coefs[k] = coef{index: int(svSet.Rank(uint32(i))) - 1, alpha: sr.alpha[k]}
		}
		slices.SortFunc(coefs, func(a, b coef) int { return cmp.Compare(a.index, b.index) })

		m.dfs[d] = decisionFunc{rho: sr.rho, ofs: len(m.dfAlpha)}
		for _, c := range coefs {
			m.dfAlpha = append(m.dfAlpha, c.alpha)
			m.dfIndex = append(m.dfIndex, c.index)
		}
		if sr.status != solver.Converged {
			m.converged = false
		}
	}
}
