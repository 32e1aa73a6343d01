package kernel

import "errors"

// Error taxonomy shared by every toolpath package. Failures are wrapped
// with context via fmt.Errorf("...: %w", ...) and tested with errors.Is.
var (
	// ErrInvalidGeometry: the operation needs a closed, planar or contiguous
	// curve and did not get one.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrRange: parameter or length outside the valid domain.
	ErrRange = errors.New("out of range")
	// ErrNoIntersection: an expected intersection is absent.
	ErrNoIntersection = errors.New("no intersection")
	// ErrConfiguration: seam length or frame spacing exceeds the contour length.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrArgument: non-positive length or count, or malformed input.
	ErrArgument = errors.New("invalid argument")
)
