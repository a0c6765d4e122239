package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/svmgo/internal/cache"
	"github.com/hupe1980/svmgo/kernel"
)

const (
	// FloatEpsilon guards the step denominator.
	FloatEpsilon = 1.1920928955078125e-07

	// DefaultMaxIter and DefaultEps are the default termination criteria.
	DefaultMaxIter = 1000
	DefaultEps     = FloatEpsilon

	initGradientLimit = 1e200
	gradientLimit     = 1e300
	alphaLimit        = 1e16
)

var (
	// ErrNumericOverflow is returned when the dual variables or the gradient
	// blow up. The returned alphas must not be used.
	ErrNumericOverflow = errors.New("solver: numeric overflow")

	// ErrInvalidProblem is returned for malformed inputs.
	ErrInvalidProblem = errors.New("solver: invalid problem")
)

// Status is the terminal state of a solve.
type Status int

const (
	Converged Status = iota
	IterationLimitReached
	Diverged
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case IterationLimitReached:
		return "iteration_limit"
	case Diverged:
		return "diverged"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Matrix is a borrowed row-major sample matrix.
type Matrix struct {
	Data []float32
	Rows int
	Dim  int
}

// Row returns sample i.
func (m Matrix) Row(i int) []float32 {
	off := i * m.Dim
	return m.Data[off : off+m.Dim : off+m.Dim]
}

func (m Matrix) validate() error {
	if m.Rows <= 0 || m.Dim <= 0 {
		return fmt.Errorf("%w: empty sample matrix", ErrInvalidProblem)
	}
	if len(m.Data) != m.Rows*m.Dim {
		return fmt.Errorf("%w: %d values for %dx%d samples", ErrInvalidProblem, len(m.Data), m.Rows, m.Dim)
	}
	return nil
}

// Config holds termination criteria and the row cache budget.
type Config struct {
	// Eps is the KKT violation tolerance. Zero selects DefaultEps.
	Eps float64
	// MaxIter caps the number of pair updates. Zero selects DefaultMaxIter.
	MaxIter int
	// Cache configures the kernel row cache.
	Cache cache.RowConfig
}

func (c Config) withDefaults() Config {
	if c.Eps <= 0 {
		c.Eps = DefaultEps
	}
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	return c
}

// Result is the outcome of a solve.
type Result struct {
	// Alpha holds one signed coefficient per sample.
	Alpha []float64
	Rho   float64
	// R is the secondary normalisation value of nu formulations.
	R   float64
	Obj float64

	UpperBoundP float64
	UpperBoundN float64

	Iterations int
	Status     Status

	CacheHits   int64
	CacheMisses int64
}

// State is the optimisation state visible to a Formulation.
type State struct {
	// Y holds the ±1 label of each variable.
	Y []int8
	// Alpha holds the dual variables.
	Alpha []float64
	// G holds the gradient of the dual objective.
	G []float64
	// Eps is the KKT violation tolerance.
	Eps float64

	status []int8
	c      [2]float64 // [0]: y<0, [1]: y>0
}

// C returns the upper bound of variable i.
func (s *State) C(i int) float64 {
	if s.Y[i] > 0 {
		return s.c[1]
	}
	return s.c[0]
}

// IsUpperBound reports whether alpha_i sits at C_i.
func (s *State) IsUpperBound(i int) bool { return s.status[i] > 0 }

// IsLowerBound reports whether alpha_i sits at zero.
func (s *State) IsLowerBound(i int) bool { return s.status[i] < 0 }

// IsFree reports whether alpha_i lies strictly inside the box.
func (s *State) IsFree(i int) bool { return s.status[i] == 0 }

func (s *State) updateStatus(i int) {
	switch a := s.Alpha[i]; {
	case a >= s.C(i):
		s.status[i] = 1
	case a <= 0:
		s.status[i] = -1
	default:
		s.status[i] = 0
	}
}

// Solver runs SMO for one binary (or regression/one-class) problem.
// A Solver is single-use and not safe for concurrent use.
type Solver struct {
	f       Formulation
	state   State
	b       []float64
	samples Matrix
	ev      kernel.Evaluator
	cache   *cache.RowCache
	buf     [2][]float32
	scratch []float32
	cfg     Config
}

// New creates a solver over alpha/y/b (all of equal length, a multiple of the
// sample count). alpha is updated in place.
func New(samples Matrix, y []int8, alpha, b []float64, cp, cn float64, ev kernel.Evaluator, f Formulation, cfg Config) (*Solver, error) {
	if err := samples.validate(); err != nil {
		return nil, err
	}
	count := len(alpha)
	if count == 0 || len(y) != count || len(b) != count || count%samples.Rows != 0 {
		return nil, fmt.Errorf("%w: %d alphas, %d labels, %d linear terms for %d samples",
			ErrInvalidProblem, count, len(y), len(b), samples.Rows)
	}
	if ev == nil || f == nil {
		return nil, fmt.Errorf("%w: missing kernel or formulation", ErrInvalidProblem)
	}

	cfg = cfg.withDefaults()
	s := &Solver{
		f: f,
		state: State{
			Y:      y,
			Alpha:  alpha,
			G:      make([]float64, count),
			Eps:    cfg.Eps,
			status: make([]int8, count),
			c:      [2]float64{cn, cp},
		},
		b:       b,
		samples: samples,
		ev:      ev,
		cfg:     cfg,
	}
	s.buf[0] = make([]float32, count)
	s.buf[1] = make([]float32, count)
	s.cache = cache.NewRowCache(samples.Rows, s.fillRow, cfg.Cache)
	if s.cache.Cap() < 2 {
		s.scratch = make([]float32, count)
	}
	return s, nil
}

func (s *Solver) fillRow(i int, row []float32) {
	s.ev.Calc(s.samples.Row(i), s.samples.Data, s.samples.Dim, row)
}

func (s *Solver) row(i int, dst []float32) []float32 {
	raw, existed := s.cache.Get(i % s.samples.Rows)
	return s.f.AdjustRow(&s.state, i, raw, existed, dst)
}

// Solve runs the optimisation until the working set selection reports
// optimality or the iteration cap is reached.
func (s *Solver) Solve() (*Result, error) {
	defer s.cache.Close()

	st := &s.state
	alpha, G := st.Alpha, st.G
	count := len(alpha)

	for i := 0; i < count; i++ {
		st.updateStatus(i)
		G[i] = s.b[i]
		if !(math.Abs(G[i]) <= initGradientLimit) {
			return s.diverged(0, fmt.Errorf("%w: initial gradient %g at %d", ErrNumericOverflow, G[i], i))
		}
	}

	for i := 0; i < count; i++ {
		if st.IsLowerBound(i) {
			continue
		}
		qi := s.row(i, s.buf[0])
		ai := alpha[i]
		for k := 0; k < count; k++ {
			G[k] += ai * float64(qi[k])
		}
	}

	iter := 0
	status := Converged
	for {
		i, j, optimal := s.f.SelectWorkingSet(st)
		if optimal {
			break
		}
		if iter >= s.cfg.MaxIter {
			status = IterationLimitReached
			break
		}
		iter++

		qi := s.row(i, s.buf[0])
		if s.scratch != nil {
			// Fetching row j may evict row i.
			copy(s.scratch, qi)
			qi = s.scratch
		}
		qj := s.row(j, s.buf[1])

		ci, cj := st.C(i), st.C(j)
		oldAi, oldAj := alpha[i], alpha[j]
		ai, aj := oldAi, oldAj

		if st.Y[i] != st.Y[j] {
			denom := float64(qi[i]) + float64(qj[j]) + 2*float64(qi[j])
			delta := (-G[i] - G[j]) / math.Max(math.Abs(denom), FloatEpsilon)
			diff := ai - aj
			ai += delta
			aj += delta

			if diff > 0 && aj < 0 {
				aj = 0
				ai = diff
			} else if diff <= 0 && ai < 0 {
				ai = 0
				aj = -diff
			}

			if diff > ci-cj && ai > ci {
				ai = ci
				aj = ci - diff
			} else if diff <= ci-cj && aj > cj {
				aj = cj
				ai = cj + diff
			}
		} else {
			denom := float64(qi[i]) + float64(qj[j]) - 2*float64(qi[j])
			delta := (G[i] - G[j]) / math.Max(math.Abs(denom), FloatEpsilon)
			sum := ai + aj
			ai -= delta
			aj += delta

			if sum > ci && ai > ci {
				ai = ci
				aj = sum - ci
			} else if sum <= ci && aj < 0 {
				aj = 0
				ai = sum
			}

			if sum > cj && aj > cj {
				aj = cj
				ai = sum - cj
			} else if sum <= cj && ai < 0 {
				ai = 0
				aj = sum
			}
		}

		if !(math.Abs(ai) <= alphaLimit) || !(math.Abs(aj) <= alphaLimit) {
			return s.diverged(iter, fmt.Errorf("%w: alpha out of range at iteration %d", ErrNumericOverflow, iter))
		}

		alpha[i] = ai
		alpha[j] = aj
		st.updateStatus(i)
		st.updateStatus(j)

		dai := ai - oldAi
		daj := aj - oldAj
		for k := 0; k < count; k++ {
			G[k] += float64(qi[k])*dai + float64(qj[k])*daj
			if !(math.Abs(G[k]) <= gradientLimit) {
				return s.diverged(iter, fmt.Errorf("%w: gradient out of range at iteration %d", ErrNumericOverflow, iter))
			}
		}
	}

	rho, r := s.f.ComputeBias(st)

	var obj float64
	for i := 0; i < count; i++ {
		obj += alpha[i] * (G[i] + s.b[i])
	}

	stats := s.cache.Stats()
	return &Result{
		Alpha:       alpha,
		Rho:         rho,
		R:           r,
		Obj:         0.5 * obj,
		UpperBoundP: st.c[1],
		UpperBoundN: st.c[0],
		Iterations:  iter,
		Status:      status,
		CacheHits:   stats.Hits,
		CacheMisses: stats.Misses,
	}, nil
}

func (s *Solver) diverged(iter int, err error) (*Result, error) {
	stats := s.cache.Stats()
	return &Result{
		Iterations:  iter,
		Status:      Diverged,
		CacheHits:   stats.Hits,
		CacheMisses: stats.Misses,
	}, err
}
