package svmgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/svmgo/internal/solver"
	"github.com/hupe1980/svmgo/kernel"
)

var (
	// ErrInvalidConfig is matched by every *ConfigurationError.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidData is matched by every *DataError.
	ErrInvalidData = errors.New("invalid training data")

	// ErrConvergence is matched by every *ConvergenceError.
	ErrConvergence = errors.New("solver failed to converge")

	// ErrIterationLimit is returned, wrapped in a *ConvergenceError, when a
	// sub-problem stops at the iteration cap and strict convergence is enabled.
	ErrIterationLimit = errors.New("iteration limit reached")

	// ErrNotTrained is returned when predicting with an empty model.
	ErrNotTrained = errors.New("model is not trained")

	// ErrInvalidModel is returned when a persisted model record is inconsistent.
	ErrInvalidModel = errors.New("invalid model")

	// ErrSearchFailed is returned by TrainAuto when no grid point could be evaluated.
	ErrSearchFailed = errors.New("no grid point could be evaluated")
)

// ConfigurationError reports an invalid training parameter.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigurationError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

func (e *ConfigurationError) Is(target error) bool { return target == ErrInvalidConfig }

func configError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DataError reports training data that cannot be used for the requested problem.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DataError struct {
	Reason string
	cause  error
}

func (e *DataError) Error() string {
	return "invalid training data: " + e.Reason
}

func (e *DataError) Unwrap() error { return e.cause }

func (e *DataError) Is(target error) bool { return target == ErrInvalidData }

func dataError(format string, args ...any) *DataError {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}

// ConvergenceError reports a failed sub-problem. ClassI and ClassJ are the
// labels of the class pair; both are zero for regression and one-class models.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConvergenceError struct {
	ClassI int
	ClassJ int
	cause  error
}

func (e *ConvergenceError) Error() string {
	if e.ClassI == e.ClassJ {
		return fmt.Sprintf("solver failed: %v", e.cause)
	}
	return fmt.Sprintf("solver failed for classes %d/%d: %v", e.ClassI, e.ClassJ, e.cause)
}

func (e *ConvergenceError) Unwrap() error { return e.cause }

func (e *ConvergenceError) Is(target error) bool { return target == ErrConvergence }

// ErrDimensionMismatch indicates a sample dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// translateSolveError maps solver and kernel failures of one sub-problem to
// the public error types.
func translateSolveError(err error, classI, classJ int) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, kernel.ErrInvalidParams) {
		return &ConfigurationError{Field: "Kernel", Reason: err.Error(), cause: err}
	}
	if errors.Is(err, solver.ErrInvalidProblem) {
		return &DataError{Reason: err.Error(), cause: err}
	}

	return &ConvergenceError{ClassI: classI, ClassJ: classJ, cause: err}
}
