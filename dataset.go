package svmgo

import (
	"fmt"
	"math"
	"slices"
)

// DataSource supplies training samples and their responses.
type DataSource interface {
	// Samples returns Len()*Dim() values in row-major order.
	// The trainer reads them and never mutates them.
	Samples() []float32
	// Dim returns the number of features per sample.
	Dim() int
	// Responses returns one class label or regression target per sample.
	// Class labels must be integral.
	Responses() []float64
}

// Dataset is an in-memory DataSource.
type Dataset struct {
	samples   []float32
	dim       int
	responses []float64
}

// NewDataset copies rows into a row-major Dataset.
func NewDataset(rows [][]float32, responses []float64) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, dataError("no samples")
	}
	dim := len(rows[0])
	samples := make([]float32, 0, len(rows)*dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, &DataError{
				Reason: fmt.Sprintf("sample %d has a different dimension", i),
				cause:  &ErrDimensionMismatch{Expected: dim, Actual: len(row)},
			}
		}
		samples = append(samples, row...)
	}
	return NewDatasetFlat(samples, dim, responses)
}

// NewDatasetFlat wraps row-major samples without copying.
func NewDatasetFlat(samples []float32, dim int, responses []float64) (*Dataset, error) {
	d := &Dataset{samples: samples, dim: dim, responses: responses}
	if _, err := newTrainingSet(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Samples implements DataSource.
func (d *Dataset) Samples() []float32 { return d.samples }

// Dim implements DataSource.
func (d *Dataset) Dim() int { return d.dim }

// Responses implements DataSource.
func (d *Dataset) Responses() []float64 { return d.responses }

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.responses) }

// Row returns sample i.
func (d *Dataset) Row(i int) []float32 {
	return d.samples[i*d.dim : (i+1)*d.dim]
}

// ClassLabels returns the sorted distinct responses as class labels.
// It fails if a response is not integral.
func (d *Dataset) ClassLabels() ([]int, error) {
	return classLabels(d.responses)
}

// trainingSet is a validated, borrowed view of a DataSource.
type trainingSet struct {
	samples   []float32
	dim       int
	n         int
	responses []float64
}

func newTrainingSet(src DataSource) (*trainingSet, error) {
	if src == nil {
		return nil, dataError("nil data source")
	}
	samples, dim, responses := src.Samples(), src.Dim(), src.Responses()
	if dim <= 0 {
		return nil, dataError("dimension must be positive, got %d", dim)
	}
	n := len(responses)
	if n == 0 {
		return nil, dataError("no samples")
	}
	if len(samples) != n*dim {
		return nil, dataError("%d values do not form %d samples of dimension %d", len(samples), n, dim)
	}
	return &trainingSet{samples: samples, dim: dim, n: n, responses: responses}, nil
}

func (s *trainingSet) row(i int) []float32 {
	return s.samples[i*s.dim : (i+1)*s.dim]
}

// subset copies the given rows into a new training set.
func (s *trainingSet) subset(idx []int) *trainingSet {
	samples := make([]float32, 0, len(idx)*s.dim)
	responses := make([]float64, len(idx))
	for k, i := range idx {
		samples = append(samples, s.row(i)...)
		responses[k] = s.responses[i]
	}
	return &trainingSet{samples: samples, dim: s.dim, n: len(idx), responses: responses}
}

func classLabels(responses []float64) ([]int, error) {
	labels := make([]int, 0, 8)
	for i, r := range responses {
		if r != math.Trunc(r) || math.Abs(r) > math.MaxInt32 {
			return nil, dataError("response %v of sample %d is not a class label", r, i)
		}
		labels = append(labels, int(r))
	}
	slices.Sort(labels)
	return slices.Compact(labels), nil
}
