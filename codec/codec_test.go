package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDecision struct {
	Rho   float64   `json:"rho"`
	Alpha []float64 `json:"alpha"`
	Index []int     `json:"index,omitempty"`
}

type testRecord struct {
	SVMType        string          `json:"svm_type"`
	ClassLabels    []int           `json:"class_labels,omitempty"`
	ClassWeights   map[int]float64 `json:"class_weights,omitempty"`
	SupportVectors [][]float32     `json:"support_vectors"`
	Decisions      []testDecision  `json:"decision_functions"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecsInterchangeable(t *testing.T) {
	rec := testRecord{
		SVMType:        "C_SVC",
		ClassLabels:    []int{-1, 4, 7},
		ClassWeights:   map[int]float64{4: 2.5},
		SupportVectors: [][]float32{{0.5, -1}, {3, 0.25}},
		Decisions: []testDecision{
			{Rho: 0.125, Alpha: []float64{1.5, -1.5}, Index: []int{0, 1}},
		},
	}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data := MustMarshal(enc, rec)

				var got testRecord
				require.NoError(t, dec.Unmarshal(data, &got))
				assert.Equal(t, rec, got)
			})
		}
	}
}

func TestMustMarshal_Panics(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(nil, make(chan int)) })
}

func BenchmarkCodec_Marshal_Record(b *testing.B) {
	rec := testRecord{SVMType: "C_SVC", SupportVectors: make([][]float32, 256)}
	for i := range rec.SupportVectors {
		rec.SupportVectors[i] = make([]float32, 64)
	}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		b.Run(c.Name(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := c.Marshal(rec); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
