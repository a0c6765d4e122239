package svmgo

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hupe1980/svmgo/kernel"
)

// Record is the serialisable form of a Model.
//
// Parameters that do not apply to the SVM or kernel type are omitted.
// Decision function indices are only stored for K>2 classes; otherwise every
// decision function uses the whole support-vector set in order.
type Record struct {
	SVMType string       `json:"svm_type"`
	Kernel  KernelRecord `json:"kernel"`

	C  float64 `json:"C,omitempty"`
	Nu float64 `json:"nu,omitempty"`
	P  float64 `json:"p,omitempty"`

	TermCriteria TermCriteriaRecord `json:"term_criteria"`

	VarCount     int             `json:"var_count"`
	ClassCount   int             `json:"class_count,omitempty"`
	ClassLabels  []int           `json:"class_labels,omitempty"`
	ClassWeights map[int]float64 `json:"class_weights,omitempty"`

	SVTotal           int                      `json:"sv_total"`
	SupportVectors    [][]float32              `json:"support_vectors"`
	DecisionFunctions []DecisionFunctionRecord `json:"decision_functions"`

	// OptimizeLinear requests linear compression when the record is loaded.
	OptimizeLinear bool `json:"optimize_linear,omitempty"`
	Converged      bool `json:"converged"`
}

// KernelRecord holds the kernel type and the coefficients it uses.
type KernelRecord struct {
	Type   string  `json:"type"`
	Degree float64 `json:"degree,omitempty"`
	Gamma  float64 `json:"gamma,omitempty"`
	Coef0  float64 `json:"coef0,omitempty"`
}

// TermCriteriaRecord holds the solver termination criteria.
type TermCriteriaRecord struct {
	Epsilon    float64 `json:"epsilon"`
	Iterations int     `json:"iterations"`
}

// DecisionFunctionRecord holds one decision function.
type DecisionFunctionRecord struct {
	SVCount int       `json:"sv_count"`
	Rho     float64   `json:"rho"`
	Alpha   []float64 `json:"alpha"`
	Index   []int     `json:"index,omitempty"`
}

// Record returns the serialisable form of m.
func (m *Model) Record() *Record {
	p := m.params
	kt := p.KernelType

	rec := &Record{
		SVMType: p.Type.String(),
		Kernel:  KernelRecord{Type: kt.String()},
		TermCriteria: TermCriteriaRecord{
			Epsilon:    p.TermCriteria.Epsilon,
			Iterations: p.TermCriteria.MaxIter,
		},
		VarCount:       m.varCount,
		SVTotal:        m.svCount,
		SupportVectors: m.SupportVectors(),
		OptimizeLinear: kt == kernel.Linear,
		Converged:      m.converged,
	}
	if kt.UsesDegree() {
		rec.Kernel.Degree = p.Degree
	}
	if kt.UsesGamma() {
		rec.Kernel.Gamma = p.Gamma
	}
	if kt.UsesCoef0() {
		rec.Kernel.Coef0 = p.Coef0
	}
	if p.Type.usesC() {
		rec.C = p.C
	}
	if p.Type.usesNu() {
		rec.Nu = p.Nu
	}
	if p.Type.usesP() {
		rec.P = p.P
	}

	k := len(m.classLabels)
	if p.Type.IsClassifier() {
		rec.ClassCount = k
		rec.ClassLabels = slices.Clone(m.classLabels)
		rec.ClassWeights = maps.Clone(p.ClassWeights)
	}

	rec.DecisionFunctions = make([]DecisionFunctionRecord, len(m.dfs))
	for i := range m.dfs {
		df := m.DecisionFunction(i)
		dr := DecisionFunctionRecord{SVCount: len(df.Alpha), Rho: df.Rho, Alpha: df.Alpha}
		if k > 2 {
			dr.Index = df.Index
		}
		rec.DecisionFunctions[i] = dr
	}
	return rec
}

// FromRecord rebuilds a Model. Inconsistent records fail with ErrInvalidModel.
// The options select the kernel evaluator, logger and metrics collector the
// model uses for prediction.
func FromRecord(rec *Record, optFns ...Option) (*Model, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrInvalidModel)
	}

	svmType, err := ParseSVMType(rec.SVMType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	kt, err := kernel.ParseType(rec.Kernel.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	p, err := Params{
		Type:         svmType,
		KernelType:   kt,
		Gamma:        rec.Kernel.Gamma,
		Coef0:        rec.Kernel.Coef0,
		Degree:       rec.Kernel.Degree,
		C:            rec.C,
		Nu:           rec.Nu,
		P:            rec.P,
		ClassWeights: maps.Clone(rec.ClassWeights),
		TermCriteria: TermCriteria{
			MaxIter: rec.TermCriteria.Iterations,
			Epsilon: rec.TermCriteria.Epsilon,
		},
	}.normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	if rec.VarCount <= 0 {
		return nil, fmt.Errorf("%w: var_count must be positive, got %d", ErrInvalidModel, rec.VarCount)
	}
	if len(rec.SupportVectors) != rec.SVTotal {
		return nil, fmt.Errorf("%w: sv_total %d but %d support vectors", ErrInvalidModel, rec.SVTotal, len(rec.SupportVectors))
	}
	for i, sv := range rec.SupportVectors {
		if len(sv) != rec.VarCount {
			return nil, fmt.Errorf("%w: support vector %d has %d values, expected %d", ErrInvalidModel, i, len(sv), rec.VarCount)
		}
	}

	k := 0
	wantDFs := 1
	if svmType.IsClassifier() {
		k = rec.ClassCount
		if k < 2 || len(rec.ClassLabels) != k {
			return nil, fmt.Errorf("%w: class_count %d with %d class labels", ErrInvalidModel, k, len(rec.ClassLabels))
		}
		if !slices.IsSorted(rec.ClassLabels) || len(slices.Compact(slices.Clone(rec.ClassLabels))) != k {
			return nil, fmt.Errorf("%w: class labels must be sorted and distinct", ErrInvalidModel)
		}
		wantDFs = k * (k - 1) / 2
	}
	if len(rec.DecisionFunctions) != wantDFs {
		return nil, fmt.Errorf("%w: %d decision functions, expected %d", ErrInvalidModel, len(rec.DecisionFunctions), wantDFs)
	}

	o := applyOptions(optFns)
	ev, err := o.kernelFactory(p.KernelParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	m := newModel(p, rec.VarCount, ev, &o)
	m.converged = rec.Converged
	if k > 0 {
		m.classLabels = slices.Clone(rec.ClassLabels)
	}

	// Lengths are checked above, so the capacity is bounded by the record itself.
	m.svCount = rec.SVTotal
	m.sv = make([]float32, 0, rec.SVTotal*rec.VarCount)
	for _, sv := range rec.SupportVectors {
		m.sv = append(m.sv, sv...)
	}

	m.dfs = make([]decisionFunc, len(rec.DecisionFunctions))
	for d, dr := range rec.DecisionFunctions {
		if dr.SVCount < 0 || len(dr.Alpha) != dr.SVCount {
			return nil, fmt.Errorf("%w: decision function %d has sv_count %d and %d coefficients", ErrInvalidModel, d, dr.SVCount, len(dr.Alpha))
		}
		m.dfs[d] = decisionFunc{rho: dr.Rho, ofs: len(m.dfAlpha)}
		m.dfAlpha = append(m.dfAlpha, dr.Alpha...)

		if k > 2 {
			if len(dr.Index) != dr.SVCount {
				return nil, fmt.Errorf("%w: decision function %d has %d indices, expected %d", ErrInvalidModel, d, len(dr.Index), dr.SVCount)
			}
			for _, idx := range dr.Index {
				if idx < 0 || idx >= rec.SVTotal {
					return nil, fmt.Errorf("%w: decision function %d references support vector %d of %d", ErrInvalidModel, d, idx, rec.SVTotal)
				}
			}
			m.dfIndex = append(m.dfIndex, dr.Index...)
			continue
		}

		if dr.SVCount != rec.SVTotal {
			return nil, fmt.Errorf("%w: decision function %d uses %d of %d support vectors without an index", ErrInvalidModel, d, dr.SVCount, rec.SVTotal)
		}
		for i := range dr.SVCount {
			m.dfIndex = append(m.dfIndex, i)
		}
	}

	if rec.OptimizeLinear {
		m.optimizeLinear()
	}
	return m, nil
}
