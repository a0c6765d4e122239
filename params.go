package svmgo

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/svmgo/internal/solver"
	"github.com/hupe1980/svmgo/kernel"
)

// SVMType selects the problem formulation.
type SVMType int

const (
	// CSVC is C-support vector classification.
	CSVC SVMType = iota
	// NuSVC is nu-support vector classification.
	NuSVC
	// OneClass estimates the support of a distribution (novelty detection).
	OneClass
	// EpsSVR is epsilon-support vector regression.
	EpsSVR
	// NuSVR is nu-support vector regression.
	NuSVR
)

func (t SVMType) String() string {
	switch t {
	case CSVC:
		return "C_SVC"
	case NuSVC:
		return "NU_SVC"
	case OneClass:
		return "ONE_CLASS"
	case EpsSVR:
		return "EPS_SVR"
	case NuSVR:
		return "NU_SVR"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsClassifier reports whether the type predicts class labels.
func (t SVMType) IsClassifier() bool { return t == CSVC || t == NuSVC }

func (t SVMType) usesC() bool { return t == CSVC || t == EpsSVR || t == NuSVR }

func (t SVMType) usesNu() bool { return t == NuSVC || t == OneClass || t == NuSVR }

func (t SVMType) usesP() bool { return t == EpsSVR }

// ParseSVMType parses the name produced by SVMType.String (case-insensitive).
func ParseSVMType(s string) (SVMType, error) {
	for t := CSVC; t <= NuSVR; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown svm type %q", s)
}

// TermCriteria bounds the solver of every sub-problem.
type TermCriteria struct {
	// MaxIter caps the number of pair updates. Zero selects 1000.
	MaxIter int
	// Epsilon is the KKT violation tolerance. Zero selects the float32 machine epsilon.
	Epsilon float64
}

// Params holds the training hyperparameters.
//
// Fields that do not apply to the selected SVM or kernel type are ignored
// and reset during normalisation.
type Params struct {
	Type       SVMType
	KernelType kernel.Type

	Gamma  float64
	Coef0  float64
	Degree float64

	C  float64
	Nu float64
	P  float64

	// ClassWeights scales C per class label (C-SVC only). Labels missing
	// from the map keep weight 1.
	ClassWeights map[int]float64

	TermCriteria TermCriteria
}

// DefaultParams returns C-SVC with an RBF kernel, gamma=1 and C=1.
func DefaultParams() Params {
	return Params{
		Type:       CSVC,
		KernelType: kernel.RBF,
		Gamma:      1,
		C:          1,
		TermCriteria: TermCriteria{
			MaxIter: solver.DefaultMaxIter,
			Epsilon: solver.DefaultEps,
		},
	}
}

// Validate reports the first invalid parameter as a *ConfigurationError.
func (p Params) Validate() error {
	_, err := p.normalize()
	return err
}

// KernelParams returns the kernel part of the parameters.
func (p Params) KernelParams() kernel.Params {
	return kernel.Params{
		Type:   p.KernelType,
		Gamma:  p.Gamma,
		Coef0:  p.Coef0,
		Degree: p.Degree,
	}
}

// normalize validates p and returns a copy in which every parameter that does
// not apply to the SVM or kernel type is reset.
func (p Params) normalize() (Params, error) {
	if p.Type < CSVC || p.Type > NuSVR {
		return p, configError("Type", "unknown svm type %d", int(p.Type))
	}
	kt := p.KernelType
	if kt < kernel.Linear || kt > kernel.Intersection {
		return p, configError("KernelType", "unknown kernel type %d", int(kt))
	}

	if !kt.UsesGamma() {
		p.Gamma = 1
	} else if !(p.Gamma > 0) {
		return p, configError("Gamma", "must be positive, got %v", p.Gamma)
	}

	if !kt.UsesCoef0() {
		p.Coef0 = 0
	} else if !(p.Coef0 >= 0) {
		return p, configError("Coef0", "must be non-negative, got %v", p.Coef0)
	}

	if !kt.UsesDegree() {
		p.Degree = 0
	} else if !(p.Degree > 0) {
		return p, configError("Degree", "must be positive, got %v", p.Degree)
	}

	if !p.Type.usesC() {
		p.C = 0
	} else if !(p.C > 0) {
		return p, configError("C", "must be positive, got %v", p.C)
	}

	if !p.Type.usesNu() {
		p.Nu = 0
	} else if !(p.Nu > 0 && p.Nu < 1) {
		return p, configError("Nu", "must be in (0, 1), got %v", p.Nu)
	}

	if !p.Type.usesP() {
		p.P = 0
	} else if !(p.P > 0) {
		return p, configError("P", "must be positive, got %v", p.P)
	}

	if p.Type != CSVC || len(p.ClassWeights) == 0 {
		p.ClassWeights = nil
	} else {
		weights := make(map[int]float64, len(p.ClassWeights))
		for label, w := range p.ClassWeights {
			if !(w > 0) || math.IsInf(w, 0) {
				return p, configError("ClassWeights", "weight of class %d must be positive, got %v", label, w)
			}
			weights[label] = w
		}
		p.ClassWeights = weights
	}

	if p.TermCriteria.MaxIter <= 0 {
		p.TermCriteria.MaxIter = solver.DefaultMaxIter
	}
	switch {
	case p.TermCriteria.Epsilon == 0:
		p.TermCriteria.Epsilon = solver.DefaultEps
	case !(p.TermCriteria.Epsilon > 0):
		return p, configError("TermCriteria.Epsilon", "must be positive, got %v", p.TermCriteria.Epsilon)
	default:
		p.TermCriteria.Epsilon = math.Max(p.TermCriteria.Epsilon, doubleEpsilon)
	}

	return p, nil
}

// doubleEpsilon is the float64 machine epsilon, the smallest accepted tolerance and grid minimum.
const doubleEpsilon = 2.220446049250313e-16

func (p Params) solverConfig(o *options) solver.Config {
	return solver.Config{
		Eps:     p.TermCriteria.Epsilon,
		MaxIter: p.TermCriteria.MaxIter,
		Cache:   o.cacheConfig(),
	}
}
