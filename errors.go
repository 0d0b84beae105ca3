package kdknn

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kdknn/distance"
	"github.com/hupe1980/kdknn/internal/kdtree"
)

var (
	// ErrInvalidK is returned when k is not in [1, Len()].
	ErrInvalidK = errors.New("k must be between 1 and the number of indexed points")

	// ErrEmptyPointSet is returned when Build is given no points.
	ErrEmptyPointSet = errors.New("point set is empty")

	// ErrReleased is returned by every operation on a released index.
	ErrReleased = errors.New("index has been released")

	// ErrNotFitted is returned by Predict before Fit.
	ErrNotFitted = errors.New("model has not been fitted")

	// ErrEmptyRowFilter is returned when the row filter selects no rows.
	ErrEmptyRowFilter = errors.New("row filter selects no rows")

	// ErrRowOutOfRange is returned when the row filter names a row past the end of the point set.
	ErrRowOutOfRange = errors.New("row filter references a row outside the point set")

	// ErrNonFiniteValue is returned when a point, query or label is NaN or infinite.
	ErrNonFiniteValue = errors.New("value is NaN or infinite")
)

// ErrDimensionMismatch indicates a query/index dimensionality mismatch.
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

// ErrShapeMismatch indicates that a flat array does not hold Rows x Cols values.
type ErrShapeMismatch struct {
	Rows  int
	Cols  int
	Len   int
	cause error
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: %d rows x %d cols does not match %d values", e.Rows, e.Cols, e.Len)
}

func (e *ErrShapeMismatch) Unwrap() error { return e.cause }

// ErrInvalidP indicates an unusable Minkowski exponent.
//
// It unwraps to distance.ErrInvalidP.
type ErrInvalidP struct {
	P     float32
	cause error
}

func (e *ErrInvalidP) Error() string {
	return fmt.Sprintf("invalid minkowski exponent: %g", e.P)
}

func (e *ErrInvalidP) Unwrap() error { return e.cause }

func translateError(err error, p float32) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, kdtree.ErrNoPoints) {
		return fmt.Errorf("%w: %w", ErrEmptyPointSet, err)
	}
	if errors.Is(err, kdtree.ErrInvalidID) {
		return fmt.Errorf("%w: %w", ErrRowOutOfRange, err)
	}
	if errors.Is(err, distance.ErrInvalidP) {
		return &ErrInvalidP{P: p, cause: err}
	}

	return err
}

func validateP(p float32) error {
	if err := distance.ValidateP(p); err != nil {
		return &ErrInvalidP{P: p, cause: err}
	}
	return nil
}
