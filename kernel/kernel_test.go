package kernel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	for _, typ := range []Type{Linear, Poly, RBF, Sigmoid, Chi2, Intersection} {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
	assert.Equal(t, "Unknown(42)", Type(42).String())

	_, err := ParseType("gaussian")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"Linear", Params{Type: Linear}, false},
		{"Intersection", Params{Type: Intersection}, false},
		{"RBF", Params{Type: RBF, Gamma: 1}, false},
		{"RBFZeroGamma", Params{Type: RBF}, true},
		{"PolyZeroDegree", Params{Type: Poly, Gamma: 1}, true},
		{"Poly", Params{Type: Poly, Gamma: 1, Degree: 2}, false},
		{"SigmoidNegativeGamma", Params{Type: Sigmoid, Gamma: -1}, true},
		{"Unknown", Params{Type: Type(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormulas(t *testing.T) {
	x := []float32{1, 2}
	y := []float32{3, 0}

	tests := []struct {
		name     string
		params   Params
		expected float64
	}{
		{"Linear", Params{Type: Linear}, 3},
		{"Poly", Params{Type: Poly, Gamma: 0.5, Coef0: 1, Degree: 2}, 6.25},
		{"RBF", Params{Type: RBF, Gamma: 0.1}, math.Exp(-0.8)},
		{"Sigmoid", Params{Type: Sigmoid, Gamma: 0.5, Coef0: -1}, math.Tanh(0.5)},
		{"Chi2", Params{Type: Chi2, Gamma: 1}, math.Exp(-(4.0/4 + 4.0/2))},
		{"Intersection", Params{Type: Intersection}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := New(tt.params)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, Compute(ev, x, y), 1e-6)
			assert.Equal(t, tt.params, ev.Params())
		})
	}
}

func TestPolyFractionalDegree(t *testing.T) {
	ev, err := New(Params{Type: Poly, Gamma: 1, Coef0: 0, Degree: 0.5})
	require.NoError(t, err)

	v := Compute(ev, []float32{-4}, []float32{1})
	assert.InDelta(t, 2.0, v, 1e-6)
}

func TestSigmoidLargeMagnitude(t *testing.T) {
	ev, err := New(Params{Type: Sigmoid, Gamma: 1e6, Coef0: 0})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, Compute(ev, []float32{1e3}, []float32{1e3}), 1e-9)
	assert.InDelta(t, -1.0, Compute(ev, []float32{-1e3}, []float32{1e3}), 1e-9)
}

func TestChi2SkipsZeroDenominator(t *testing.T) {
	ev, err := New(Params{Type: Chi2, Gamma: 1})
	require.NoError(t, err)

	v := Compute(ev, []float32{0, 1}, []float32{0, 1})
	assert.False(t, math.IsNaN(float64(v)))
	assert.InDelta(t, 1.0, v, 1e-9)
}

func TestClamp(t *testing.T) {
	ev, err := New(Params{Type: Poly, Gamma: 1, Coef0: 0, Degree: 40})
	require.NoError(t, err)

	v := Compute(ev, []float32{100}, []float32{100})
	assert.Equal(t, float32(MaxValue), v)

	// Large negative values are not clamped from below.
	lin, err := New(Params{Type: Linear})
	require.NoError(t, err)
	assert.Equal(t, float32(-1e10), Compute(lin, []float32{-1e5}, []float32{1e5}))
}

func TestBatchMatchesSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const dim, n = 5, 7

	query := make([]float32, dim)
	for i := range query {
		query[i] = rng.Float32()
	}
	batch := make([]float32, n*dim)
	for i := range batch {
		batch[i] = rng.Float32()
	}

	for _, p := range []Params{
		{Type: Linear},
		{Type: Poly, Gamma: 0.3, Coef0: 1, Degree: 3},
		{Type: RBF, Gamma: 0.7},
		{Type: Sigmoid, Gamma: 0.2, Coef0: 0.1},
		{Type: Chi2, Gamma: 0.5},
		{Type: Intersection},
	} {
		t.Run(p.Type.String(), func(t *testing.T) {
			ev, err := New(p)
			require.NoError(t, err)

			out := make([]float32, n)
			ev.Calc(query, batch, dim, out)
			for i := 0; i < n; i++ {
				assert.InDelta(t, Compute(ev, query, batch[i*dim:(i+1)*dim]), out[i], 1e-6)
			}
		})
	}
}

func TestSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const dim = 8

	for _, p := range []Params{
		{Type: RBF, Gamma: 0.5},
		{Type: Poly, Gamma: 0.25, Coef0: 1, Degree: 3},
		{Type: Intersection},
	} {
		t.Run(p.Type.String(), func(t *testing.T) {
			ev, err := New(p)
			require.NoError(t, err)

			for trial := 0; trial < 50; trial++ {
				x := make([]float32, dim)
				y := make([]float32, dim)
				for k := 0; k < dim; k++ {
					x[k] = rng.Float32()*4 - 2
					y[k] = rng.Float32()*4 - 2
				}
				assert.Equal(t, Compute(ev, x, y), Compute(ev, y, x))
			}
		})
	}
}
