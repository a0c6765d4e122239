package svmgo

import (
	"maps"
	"slices"

	"github.com/hupe1980/svmgo/internal/vecmath"
	"github.com/hupe1980/svmgo/kernel"
	"github.com/hupe1980/svmgo/resource"
)

// Model is a trained SVM: the compacted support-vector set and one decision
// function per class pair (or a single one for regression and one-class).
//
// A Model is immutable and safe for concurrent use.
type Model struct {
	params      Params
	varCount    int
	classLabels []int

	sv      []float32 // svCount rows of varCount values
	svCount int

	dfs     []decisionFunc
	dfAlpha []float64
	dfIndex []int

	converged bool

	ev       kernel.Evaluator
	logger   *Logger
	metrics  MetricsCollector
	resource *resource.Controller
}

// decisionFunc addresses its coefficients in the shared dfAlpha/dfIndex arrays.
type decisionFunc struct {
	rho float64
	ofs int
}

// DecisionFunction is one trained binary boundary:
// f(x) = sum(Alpha[k] * K(sv[Index[k]], x)) - Rho.
type DecisionFunction struct {
	Rho   float64
	Alpha []float64
	// Index holds positions in the support-vector set.
	Index []int
}

func newModel(p Params, varCount int, ev kernel.Evaluator, o *options) *Model {
	return &Model{
		params:    p,
		varCount:  varCount,
		converged: true,
		ev:        ev,
		logger:    o.logger,
		metrics:   o.metricsCollector,
		resource:  o.resource,
	}
}

// Params returns the normalised training parameters.
func (m *Model) Params() Params {
	p := m.params
	p.ClassWeights = maps.Clone(p.ClassWeights)
	return p
}

// VarCount returns the sample dimension.
func (m *Model) VarCount() int { return m.varCount }

// IsClassifier reports whether Predict returns class labels.
func (m *Model) IsClassifier() bool { return m.params.Type.IsClassifier() }

// ClassLabels returns the sorted class labels of a classifier, nil otherwise.
func (m *Model) ClassLabels() []int { return slices.Clone(m.classLabels) }

// Converged reports whether every sub-problem met the tolerance before the
// iteration cap.
func (m *Model) Converged() bool { return m.converged }

// SupportVectorCount returns the size of the support-vector set.
func (m *Model) SupportVectorCount() int { return m.svCount }

// SupportVector returns a copy of support vector i.
func (m *Model) SupportVector(i int) []float32 {
	return slices.Clone(m.supportVector(i))
}

// SupportVectors returns a copy of the support-vector set.
// Linear models hold one compressed vector per decision function.
func (m *Model) SupportVectors() [][]float32 {
	out := make([][]float32, m.svCount)
	for i := range out {
		out[i] = m.SupportVector(i)
	}
	return out
}

// DecisionFunctionCount returns K(K-1)/2 for K classes, 1 otherwise.
func (m *Model) DecisionFunctionCount() int { return len(m.dfs) }

// DecisionFunction returns a copy of decision function i. Pairs are ordered
// (0,1), (0,2), ..., (1,2), ... by class index.
func (m *Model) DecisionFunction(i int) DecisionFunction {
	alpha, index := m.dfSlices(i)
	return DecisionFunction{
		Rho:   m.dfs[i].rho,
		Alpha: slices.Clone(alpha),
		Index: slices.Clone(index),
	}
}

func (m *Model) supportVector(i int) []float32 {
	return m.sv[i*m.varCount : (i+1)*m.varCount]
}

func (m *Model) dfSlices(i int) ([]float64, []int) {
	start := m.dfs[i].ofs
	end := len(m.dfAlpha)
	if i+1 < len(m.dfs) {
		end = m.dfs[i+1].ofs
	}
	return m.dfAlpha[start:end], m.dfIndex[start:end]
}

// optimizeLinear collapses every decision function of a linear model into a
// single weight vector with coefficient 1.
func (m *Model) optimizeLinear() {
	if m.params.KernelType != kernel.Linear {
		return
	}
	compressed := true
	for i := range m.dfs {
		if alpha, _ := m.dfSlices(i); len(alpha) != 1 {
			compressed = false
			break
		}
	}
	if compressed {
		return
	}

	dim := m.varCount
	sv := make([]float32, len(m.dfs)*dim)
	acc := make([]float64, dim)
	for i := range m.dfs {
		clear(acc)
		alpha, index := m.dfSlices(i)
		for k, a := range alpha {
			vecmath.AxpyTo(acc, a, m.supportVector(index[k]))
		}
		for d, v := range acc {
			sv[i*dim+d] = float32(v)
		}
	}

	m.sv = sv
	m.svCount = len(m.dfs)
	m.dfAlpha = make([]float64, len(m.dfs))
	m.dfIndex = make([]int, len(m.dfs))
	for i := range m.dfs {
		m.dfs[i].ofs = i
		m.dfAlpha[i] = 1
		m.dfIndex[i] = i
	}
}
