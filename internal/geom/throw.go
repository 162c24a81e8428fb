package geom

import "github.com/pkg/errors"

// Error kinds shared by every engine. Callers match them with errors.Is; the
// messages they come wrapped in carry the detail.
var (
	// ErrDegenerateInput means there were too few points, or the points were
	// coplanar (hull) or collinear where an area or volume was needed.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrEmptyNeighborhood means a relaxation point ended up with no adjacent
	// triangles, so it has no neighbors to average.
	ErrEmptyNeighborhood = errors.New("empty neighborhood")

	// ErrUnclosedBoundary means a concave hull walk ran out of candidates
	// before it got back to its starting point.
	ErrUnclosedBoundary = errors.New("unclosed boundary")
)

// Threading errors up and down the insertion and expansion loops of the hull
// and the triangulator would bury the geometry. Instead, invariant failures
// panic with a GeometryError, and the public API recovers to convert it back
// to an error.
type GeometryError struct {
	error
}

func (e GeometryError) Unwrap() error {
	return e.error
}

// Panic with a GeometryError.
func Fatalf(format string, args ...interface{}) {
	panic(GeometryError{errors.Errorf(format, args...)})
}

// Panic with a GeometryError wrapping one of the error kinds above.
func Throwf(kind error, format string, args ...interface{}) {
	panic(GeometryError{errors.Wrapf(kind, format, args...)})
}

func HandlePanicRecover(r interface{}) error {
	if r != nil {
		if geometryError, ok := r.(GeometryError); ok {
			return geometryError.error
		}
		panic(r)
	}
	return nil
}
