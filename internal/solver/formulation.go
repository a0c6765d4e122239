package solver

import "math"

// Formulation supplies the policies that distinguish one SVM dual problem
// from another.
type Formulation interface {
	// SelectWorkingSet returns the pair to optimise next, or optimal=true when
	// no pair violates the KKT conditions by more than s.Eps.
	SelectWorkingSet(s *State) (i, j int, optimal bool)

	// ComputeBias returns rho and, for nu formulations, r.
	ComputeBias(s *State) (rho, r float64)

	// AdjustRow converts the cached kernel row of variable i into row i of Q.
	// existed reports whether raw was served from the cache. dst has one
	// element per variable and may be used as output.
	AdjustRow(s *State, i int, raw []float32, existed bool, dst []float32) []float32
}

// maxViolatingPair selects i and j across all variables.
type maxViolatingPair struct{}

func (maxViolatingPair) SelectWorkingSet(s *State) (int, int, bool) {
	gmax1, gmax2 := -math.MaxFloat64, -math.MaxFloat64
	i1, i2 := -1, -1

	for i, g := range s.G {
		if s.Y[i] > 0 {
			if !s.IsUpperBound(i) && -g > gmax1 {
				gmax1, i1 = -g, i
			}
			if !s.IsLowerBound(i) && g > gmax2 {
				gmax2, i2 = g, i
			}
		} else {
			if !s.IsUpperBound(i) && -g > gmax2 {
				gmax2, i2 = -g, i
			}
			if !s.IsLowerBound(i) && g > gmax1 {
				gmax1, i1 = g, i
			}
		}
	}

	return i1, i2, gmax1+gmax2 < s.Eps
}

// nuViolatingPair selects i and j within the same label, taking the better
// of the positive and negative quadrant pairs.
type nuViolatingPair struct{}

func (nuViolatingPair) SelectWorkingSet(s *State) (int, int, bool) {
	gmax1, gmax2 := -math.MaxFloat64, -math.MaxFloat64
	gmax3, gmax4 := -math.MaxFloat64, -math.MaxFloat64
	i1, i2, i3, i4 := -1, -1, -1, -1

	for i, g := range s.G {
		if s.Y[i] > 0 {
			if !s.IsUpperBound(i) && -g > gmax1 {
				gmax1, i1 = -g, i
			}
			if !s.IsLowerBound(i) && g > gmax2 {
				gmax2, i2 = g, i
			}
		} else {
			if !s.IsUpperBound(i) && -g > gmax3 {
				gmax3, i3 = -g, i
			}
			if !s.IsLowerBound(i) && g > gmax4 {
				gmax4, i4 = g, i
			}
		}
	}

	if math.Max(gmax1+gmax2, gmax3+gmax4) < s.Eps {
		return -1, -1, true
	}
	if gmax1+gmax2 > gmax3+gmax4 {
		return i1, i2, false
	}
	return i3, i4, false
}

// standardBias averages y·G over free variables, falling back to the
// midpoint of the bounds implied by bounded variables.
type standardBias struct{}

func (standardBias) ComputeBias(s *State) (float64, float64) {
	ub, lb := math.MaxFloat64, -math.MaxFloat64
	var sumFree float64
	var nFree int

	for i, g := range s.G {
		yg := float64(s.Y[i]) * g
		switch {
		case s.IsLowerBound(i):
			if s.Y[i] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.IsUpperBound(i):
			if s.Y[i] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			nFree++
			sumFree += yg
		}
	}

	if nFree > 0 {
		return sumFree / float64(nFree), 0
	}
	return (ub + lb) * 0.5, 0
}

// nuBias computes one offset per label half-space; rho is their half
// difference and r their mean.
type nuBias struct{}

func (nuBias) ComputeBias(s *State) (float64, float64) {
	var pos, neg halfSpace
	pos.reset()
	neg.reset()

	for i, g := range s.G {
		h := &neg
		if s.Y[i] > 0 {
			h = &pos
		}
		switch {
		case s.IsLowerBound(i):
			h.ub = math.Min(h.ub, g)
		case s.IsUpperBound(i):
			h.lb = math.Max(h.lb, g)
		default:
			h.nFree++
			h.sumFree += g
		}
	}

	r1, r2 := pos.offset(), neg.offset()
	return (r1 - r2) * 0.5, (r1 + r2) * 0.5
}

type halfSpace struct {
	ub, lb  float64
	sumFree float64
	nFree   int
}

func (h *halfSpace) reset() {
	h.ub, h.lb = math.MaxFloat64, -math.MaxFloat64
}

func (h *halfSpace) offset() float64 {
	if h.nFree > 0 {
		return h.sumFree / float64(h.nFree)
	}
	return (h.ub + h.lb) * 0.5
}

// signedRows multiplies fresh rows by y_i·y_j; cached rows are already signed.
type signedRows struct{}

func (signedRows) AdjustRow(s *State, i int, raw []float32, existed bool, _ []float32) []float32 {
	if existed {
		return raw
	}
	yi := s.Y[i]
	for j := range raw {
		if s.Y[j] != yi {
			raw[j] = -raw[j]
		}
	}
	return raw
}

// plainRows uses kernel rows unchanged.
type plainRows struct{}

func (plainRows) AdjustRow(_ *State, _ int, raw []float32, _ bool, _ []float32) []float32 {
	return raw
}

// mirroredRows expands an n-element kernel row into the 2n-element row of a
// regression problem: [K, -K] for i < n and [-K, K] otherwise.
type mirroredRows struct{}

func (mirroredRows) AdjustRow(_ *State, i int, raw []float32, _ bool, dst []float32) []float32 {
	n := len(raw)
	pos, neg := dst[:n], dst[n:2*n]
	if i >= n {
		pos, neg = neg, pos
	}
	for j, v := range raw {
		pos[j] = v
		neg[j] = -v
	}
	return dst[:2*n]
}

type cSVC struct {
	maxViolatingPair
	standardBias
	signedRows
}

type nuSVC struct {
	nuViolatingPair
	nuBias
	signedRows
}

type oneClass struct {
	maxViolatingPair
	standardBias
	plainRows
}

type epsSVR struct {
	maxViolatingPair
	standardBias
	mirroredRows
}

type nuSVR struct {
	nuViolatingPair
	nuBias
	mirroredRows
}

var (
	_ Formulation = cSVC{}
	_ Formulation = nuSVC{}
	_ Formulation = oneClass{}
	_ Formulation = epsSVR{}
	_ Formulation = nuSVR{}
)
