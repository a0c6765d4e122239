package kernel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/svmgo/internal/vecmath"
)

// MaxValue is the upper bound applied to every kernel output.
const MaxValue = math.MaxFloat32 * 1e-3

// ErrInvalidParams is returned by New when the kernel parameters are invalid.
var ErrInvalidParams = errors.New("kernel: invalid parameters")

// Type identifies a kernel family.
type Type int

const (
	Linear Type = iota
	Poly
	RBF
	Sigmoid
	Chi2
	Intersection
)

func (t Type) String() string {
	switch t {
	case Linear:
		return "Linear"
	case Poly:
		return "Poly"
	case RBF:
		return "RBF"
	case Sigmoid:
		return "Sigmoid"
	case Chi2:
		return "Chi2"
	case Intersection:
		return "Intersection"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// UsesGamma reports whether gamma influences the kernel.
func (t Type) UsesGamma() bool {
	switch t {
	case Poly, RBF, Sigmoid, Chi2:
		return true
	default:
		return false
	}
}

// UsesCoef0 reports whether coef0 influences the kernel.
func (t Type) UsesCoef0() bool { return t == Poly || t == Sigmoid }

// UsesDegree reports whether degree influences the kernel.
func (t Type) UsesDegree() bool { return t == Poly }

// ParseType parses a kernel type name (case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "linear":
		return Linear, nil
	case "poly", "polynomial":
		return Poly, nil
	case "rbf":
		return RBF, nil
	case "sigmoid":
		return Sigmoid, nil
	case "chi2":
		return Chi2, nil
	case "inter", "intersection":
		return Intersection, nil
	default:
		return 0, fmt.Errorf("unknown kernel type %q", s)
	}
}

// Params selects a kernel and its coefficients.
type Params struct {
	Type   Type
	Gamma  float64
	Coef0  float64
	Degree float64
}

// Validate checks that the parameters required by the kernel type are usable.
func (p Params) Validate() error {
	switch p.Type {
	case Linear, Intersection:
	case Poly:
		if p.Degree <= 0 {
			return fmt.Errorf("%w: degree must be positive, got %v", ErrInvalidParams, p.Degree)
		}
		fallthrough
	case RBF, Sigmoid, Chi2:
		if p.Gamma <= 0 {
			return fmt.Errorf("%w: gamma must be positive, got %v", ErrInvalidParams, p.Gamma)
		}
	default:
		return fmt.Errorf("%w: unsupported kernel type %v", ErrInvalidParams, p.Type)
	}
	return nil
}

// Evaluator computes kernel values between a query and a batch of vectors.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Evaluator interface {
	// Calc writes k(query, batch[i]) into out[i] for every vector in batch.
	// batch holds len(out) vectors of dimension dim.
	Calc(query, batch []float32, dim int, out []float32)

	// Params returns the kernel parameters.
	Params() Params
}

// Func computes a single kernel value.
type Func func(a, b []float32) float64

// New returns the CPU evaluator for the given parameters.
func New(p Params) (Evaluator, error) {
	fn, err := Provider(p)
	if err != nil {
		return nil, err
	}
	return &cpuEvaluator{params: p, fn: fn}, nil
}

// Provider returns the kernel function for the given parameters.
// The returned function does not clamp.
func Provider(p Params) (Func, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Type {
	case Linear:
		return linear, nil
	case Poly:
		return polyFunc(p.Gamma, p.Coef0, p.Degree), nil
	case RBF:
		return rbfFunc(p.Gamma), nil
	case Sigmoid:
		return sigmoidFunc(p.Gamma, p.Coef0), nil
	case Chi2:
		return chi2Func(p.Gamma), nil
	default:
		return intersection, nil
	}
}

// Compute evaluates a single clamped kernel value.
func Compute(ev Evaluator, a, b []float32) float32 {
	out := [1]float32{}
	ev.Calc(a, b, len(a), out[:])
	return out[0]
}

type cpuEvaluator struct {
	params Params
	fn     Func
}

func (e *cpuEvaluator) Params() Params { return e.params }

func (e *cpuEvaluator) Calc(query, batch []float32, dim int, out []float32) {
	if dim <= 0 {
		for i := range out {
			out[i] = clamp(e.fn(nil, nil))
		}
		return
	}
	if e.params.Type == Linear {
		vecmath.DotBatch(query, batch, dim, out)
		for i := range out {
			out[i] = clamp(float64(out[i]))
		}
		return
	}
	q := query[:dim]
	for i := range out {
		offset := i * dim
		out[i] = clamp(e.fn(q, batch[offset:offset+dim]))
	}
}

// clamp bounds v from above only; NaN passes through.
func clamp(v float64) float32 {
	if v > MaxValue {
		return MaxValue
	}
	return float32(v)
}

func linear(a, b []float32) float64 {
	return float64(vecmath.Dot(a, b))
}

func polyFunc(gamma, coef0, degree float64) Func {
	integral := degree == math.Trunc(degree)
	return func(a, b []float32) float64 {
		base := gamma*float64(vecmath.Dot(a, b)) + coef0
		if !integral {
			// Fractional powers are taken of the magnitude.
			base = math.Abs(base)
		}
		return math.Pow(base, degree)
	}
}

func rbfFunc(gamma float64) Func {
	return func(a, b []float32) float64 {
		return math.Exp(-gamma * vecmath.SquaredL2(a, b))
	}
}

// sigmoidFunc evaluates tanh(t/2) with t = 2(gamma·x·y + coef0) as
// ±(1-e)/(1+e), e = exp(-|t|), so large |t| cannot overflow.
func sigmoidFunc(gamma, coef0 float64) Func {
	return func(a, b []float32) float64 {
		t := 2 * (gamma*float64(vecmath.Dot(a, b)) + coef0)
		e := math.Exp(-math.Abs(t))
		r := (1 - e) / (1 + e)
		if t < 0 {
			return -r
		}
		return r
	}
}

func chi2Func(gamma float64) Func {
	return func(a, b []float32) float64 {
		return math.Exp(-gamma * vecmath.ChiSquared(a, b))
	}
}

func intersection(a, b []float32) float64 {
	return vecmath.MinSum(a, b)
}
