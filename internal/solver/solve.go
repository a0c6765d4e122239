package solver

import (
	"fmt"
	"math"

	"github.com/hupe1980/svmgo/kernel"
)

// SolveCSVC solves a C-SVC problem. y holds ±1 labels; cp and cn bound the
// positive and negative coefficients. Result.Alpha holds y_i·alpha_i.
func SolveCSVC(samples Matrix, y []int8, cp, cn float64, ev kernel.Evaluator, cfg Config) (*Result, error) {
	if err := checkLabels(samples, y); err != nil {
		return nil, err
	}
	n := samples.Rows
	alpha := make([]float64, n)
	b := make([]float64, n)
	for i := range b {
		b[i] = -1
	}

	res, err := run(samples, y, alpha, b, cp, cn, ev, cSVC{}, cfg)
	if err != nil {
		return res, err
	}
	for i := range res.Alpha {
		res.Alpha[i] *= float64(y[i])
	}
	return res, nil
}

// SolveNuSVC solves a nu-SVC problem. The solution is rescaled by 1/r so it is
// comparable to a C-SVC solution.
func SolveNuSVC(samples Matrix, y []int8, nu float64, ev kernel.Evaluator, cfg Config) (*Result, error) {
	if err := checkLabels(samples, y); err != nil {
		return nil, err
	}
	n := samples.Rows
	alpha := make([]float64, n)
	b := make([]float64, n)

	sumPos := nu * float64(n) * 0.5
	sumNeg := sumPos
	for i := range alpha {
		if y[i] > 0 {
			alpha[i] = math.Min(1, sumPos)
			sumPos -= alpha[i]
		} else {
			alpha[i] = math.Min(1, sumNeg)
			sumNeg -= alpha[i]
		}
	}

	res, err := run(samples, y, alpha, b, 1, 1, ev, nuSVC{}, cfg)
	if err != nil {
		return res, err
	}
	if !(res.R > 0) || math.IsInf(res.R, 0) {
		res.Status = Diverged
		return res, fmt.Errorf("%w: degenerate margin r=%g", ErrNumericOverflow, res.R)
	}

	invR := 1 / res.R
	for i := range res.Alpha {
		res.Alpha[i] *= float64(y[i]) * invR
	}
	res.Rho *= invR
	res.Obj *= invR * invR
	res.UpperBoundP = invR
	res.UpperBoundN = invR
	return res, nil
}

// SolveOneClass solves a one-class (distribution estimation) problem.
func SolveOneClass(samples Matrix, nu float64, ev kernel.Evaluator, cfg Config) (*Result, error) {
	if err := samples.validate(); err != nil {
		return nil, err
	}
	y, alpha, b := oneClassStart(samples.Rows, nu)
	return run(samples, y, alpha, b, 1, 1, ev, oneClass{}, cfg)
}

// oneClassStart fills the first floor(nu*n) coefficients with 1 and puts the
// fractional remainder, in [0, 1), on the next one.
func oneClassStart(n int, nu float64) (y []int8, alpha, b []float64) {
	y = make([]int8, n)
	for i := range y {
		y[i] = 1
	}
	b = make([]float64, n)
	alpha = make([]float64, n)

	total := nu * float64(n)
	full := int(total)
	for i := 0; i < full && i < n; i++ {
		alpha[i] = 1
	}
	if full < n {
		alpha[full] = total - float64(full)
	} else {
		alpha[n-1] = total - float64(n-1)
	}
	return y, alpha, b
}

// SolveEpsSVR solves an epsilon-SVR problem with tube width p.
// Result.Alpha holds alpha_i - alpha*_i per sample.
func SolveEpsSVR(samples Matrix, targets []float64, p, c float64, ev kernel.Evaluator, cfg Config) (*Result, error) {
	if err := checkTargets(samples, targets); err != nil {
		return nil, err
	}
	n := samples.Rows
	y, alpha, b := epsSVRStart(targets, p)

	res, err := run(samples, y, alpha, b, c, c, ev, epsSVR{}, cfg)
	if err != nil {
		return res, err
	}
	res.Alpha = foldRegression(res.Alpha, n)
	return res, nil
}

// SolveNuSVR solves a nu-SVR problem.
// Result.Alpha holds alpha_i - alpha*_i per sample.
func SolveNuSVR(samples Matrix, targets []float64, nu, c float64, ev kernel.Evaluator, cfg Config) (*Result, error) {
	if err := checkTargets(samples, targets); err != nil {
		return nil, err
	}
	n := samples.Rows
	y, alpha, b := nuSVRStart(targets, nu, c)

	res, err := run(samples, y, alpha, b, c, c, ev, nuSVR{}, cfg)
	if err != nil {
		return res, err
	}
	res.Alpha = foldRegression(res.Alpha, n)
	return res, nil
}

// epsSVRStart lays out the 2n-variable eps-SVR problem starting at alpha = 0.
func epsSVRStart(targets []float64, p float64) (y []int8, alpha, b []float64) {
	n := len(targets)
	y = make([]int8, 2*n)
	b = make([]float64, 2*n)
	alpha = make([]float64, 2*n)
	for i, t := range targets {
		b[i], y[i] = p-t, 1
		b[i+n], y[i+n] = p+t, -1
	}
	return y, alpha, b
}

// nuSVRStart lays out the 2n-variable nu-SVR problem. Both halves receive
// C*nu*n/2 in total, each coefficient capped at C.
func nuSVRStart(targets []float64, nu, c float64) (y []int8, alpha, b []float64) {
	n := len(targets)
	y = make([]int8, 2*n)
	b = make([]float64, 2*n)
	alpha = make([]float64, 2*n)

	sum := c * nu * float64(n) * 0.5
	for i, t := range targets {
		a := math.Min(sum, c)
		alpha[i], alpha[i+n] = a, a
		sum -= a

		b[i], y[i] = -t, 1
		b[i+n], y[i+n] = t, -1
	}
	return y, alpha, b
}

func run(samples Matrix, y []int8, alpha, b []float64, cp, cn float64, ev kernel.Evaluator, f Formulation, cfg Config) (*Result, error) {
	s, err := New(samples, y, alpha, b, cp, cn, ev, f, cfg)
	if err != nil {
		return nil, err
	}
	return s.Solve()
}

func foldRegression(alpha []float64, n int) []float64 {
	for i := 0; i < n; i++ {
		alpha[i] -= alpha[i+n]
	}
	return alpha[:n:n]
}

func checkLabels(samples Matrix, y []int8) error {
	if err := samples.validate(); err != nil {
		return err
	}
	if len(y) != samples.Rows {
		return fmt.Errorf("%w: %d labels for %d samples", ErrInvalidProblem, len(y), samples.Rows)
	}
	for i, v := range y {
		if v != 1 && v != -1 {
			return fmt.Errorf("%w: label %d at %d is not ±1", ErrInvalidProblem, v, i)
		}
	}
	return nil
}

func checkTargets(samples Matrix, targets []float64) error {
	if err := samples.validate(); err != nil {
		return err
	}
	if len(targets) != samples.Rows {
		return fmt.Errorf("%w: %d targets for %d samples", ErrInvalidProblem, len(targets), samples.Rows)
	}
	return nil
}
