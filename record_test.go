package svmgo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/svmgo/kernel"
)

func TestRecord_RoundTrip(t *testing.T) {
	trainer, err := NewTrainer(DefaultParams())
	require.NoError(t, err)

	m, err := trainer.Train(context.Background(), clusterDataset(t, 10))
	require.NoError(t, err)

	rec := m.Record()
	assert.Equal(t, "C_SVC", rec.SVMType)
	assert.Equal(t, "RBF", rec.Kernel.Type)
	assert.Equal(t, 3, rec.ClassCount)
	assert.Equal(t, m.SupportVectorCount(), rec.SVTotal)
	assert.Len(t, rec.DecisionFunctions, 3)
	assert.False(t, rec.OptimizeLinear)
	for _, df := range rec.DecisionFunctions {
		assert.Len(t, df.Index, df.SVCount)
	}

	loaded, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded.Record())
}

func TestRecord_TwoClassOmitsIndex(t *testing.T) {
	p := DefaultParams()
	p.C = 10
	trainer, err := NewTrainer(p)
	require.NoError(t, err)

	m, err := trainer.Train(context.Background(), xorDataset(t))
	require.NoError(t, err)

	rec := m.Record()
	require.Len(t, rec.DecisionFunctions, 1)
	assert.Nil(t, rec.DecisionFunctions[0].Index)
	assert.Equal(t, rec.SVTotal, rec.DecisionFunctions[0].SVCount)
	assert.Equal(t, 1.0, rec.Kernel.Gamma)
	assert.Zero(t, rec.Kernel.Degree)
}

func TestRecord_OptimizeLinearNoop(t *testing.T) {
	rec := &Record{
		SVMType:        "C_SVC",
		Kernel:         KernelRecord{Type: "Linear"},
		C:              1,
		TermCriteria:   TermCriteriaRecord{Epsilon: 1e-3, Iterations: 100},
		VarCount:       2,
		ClassCount:     3,
		ClassLabels:    []int{0, 1, 2},
		SVTotal:        2,
		SupportVectors: [][]float32{{1, 0}, {0, 1}},
		DecisionFunctions: []DecisionFunctionRecord{
			{SVCount: 1, Rho: 0.5, Alpha: []float64{2}, Index: []int{0}},
			{SVCount: 1, Rho: 0.5, Alpha: []float64{3}, Index: []int{1}},
			{SVCount: 1, Rho: 0.5, Alpha: []float64{4}, Index: []int{0}},
		},
		OptimizeLinear: true,
	}

	m, err := FromRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, 2, m.SupportVectorCount())
	assert.Equal(t, []float64{3}, m.DecisionFunction(1).Alpha)
	assert.Equal(t, []int{0}, m.DecisionFunction(2).Index)
}

func TestRecord_OptimizeLinearCompresses(t *testing.T) {
	rec := &Record{
		SVMType:        "C_SVC",
		Kernel:         KernelRecord{Type: "Linear"},
		C:              1,
		TermCriteria:   TermCriteriaRecord{Epsilon: 1e-3, Iterations: 100},
		VarCount:       2,
		ClassCount:     2,
		ClassLabels:    []int{0, 1},
		SVTotal:        2,
		SupportVectors: [][]float32{{1, 0}, {0, 1}},
		DecisionFunctions: []DecisionFunctionRecord{
			{SVCount: 2, Rho: 0.5, Alpha: []float64{2, -1}},
		},
		OptimizeLinear: true,
	}

	m, err := FromRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, 1, m.SupportVectorCount())
	assert.Equal(t, []float32{2, -1}, m.SupportVector(0))
	assert.Equal(t, DecisionFunction{Rho: 0.5, Alpha: []float64{1}, Index: []int{0}}, m.DecisionFunction(0))

	// 2*3 - 1*1 - 0.5 > 0 votes for class 0.
	got, err := m.PredictOne([]float32{3, 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestFromRecord_Invalid(t *testing.T) {
	valid := func() *Record {
		return constantRecord([]int{0, 1, 2}, []float64{0, 0, 0})
	}

	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{"UnknownSVMType", func(r *Record) { r.SVMType = "FOO" }},
		{"UnknownKernel", func(r *Record) { r.Kernel.Type = "wavelet" }},
		{"InvalidC", func(r *Record) { r.C = -1 }},
		{"ZeroVarCount", func(r *Record) { r.VarCount = 0 }},
		{"SVTotalMismatch", func(r *Record) { r.SVTotal = 2 }},
		{"ClassCountMismatch", func(r *Record) { r.ClassCount = 2 }},
		{"UnsortedLabels", func(r *Record) { r.ClassLabels = []int{2, 1, 0} }},
		{"DuplicateLabels", func(r *Record) { r.ClassLabels = []int{0, 0, 1} }},
		{"DecisionFunctionCount", func(r *Record) { r.DecisionFunctions = r.DecisionFunctions[:2] }},
		{"AlphaCount", func(r *Record) { r.DecisionFunctions[0].Alpha = nil }},
		{"IndexCount", func(r *Record) { r.DecisionFunctions[1].Index = nil }},
		{"IndexRange", func(r *Record) { r.DecisionFunctions[2].Index = []int{1} }},
		{"VectorLength", func(r *Record) { r.SupportVectors[0] = []float32{1} }},
		{"HugeVarCount", func(r *Record) { r.VarCount = 1 << 62 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid()
			tt.mutate(rec)
			_, err := FromRecord(rec)
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}

	_, err := FromRecord(nil)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestFromRecord_Regression(t *testing.T) {
	rec := &Record{
		SVMType:        "EPS_SVR",
		Kernel:         KernelRecord{Type: "Poly", Degree: 2, Gamma: 1, Coef0: 1},
		C:              1,
		P:              0.1,
		TermCriteria:   TermCriteriaRecord{Epsilon: 1e-3, Iterations: 100},
		VarCount:       1,
		SVTotal:        1,
		SupportVectors: [][]float32{{1}},
		DecisionFunctions: []DecisionFunctionRecord{
			{SVCount: 1, Rho: 1, Alpha: []float64{0.5}},
		},
	}

	m, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, kernel.Poly, m.Params().KernelType)

	// 0.5 * (1*2 + 1)^2 - 1
	got, err := m.PredictOne([]float32{2})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, got, 1e-6)

	rec.DecisionFunctions[0].SVCount = 0
	rec.DecisionFunctions[0].Alpha = nil
	_, err = FromRecord(rec)
	assert.ErrorIs(t, err, ErrInvalidModel)
}
