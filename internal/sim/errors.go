package sim

import (
	"errors"
	"fmt"
)

// Argument errors are detected before any work begins. errors.Is against
// ErrInvalidArgument matches every sub-case.
var (
	ErrInvalidArgument = errors.New("invalid argument")

	ErrInvalidTopology  = fmt.Errorf("%w: topology", ErrInvalidArgument)
	ErrInvalidRange     = fmt.Errorf("%w: sweep range", ErrInvalidArgument)
	ErrNonPositiveChunk = fmt.Errorf("%w: chunk size", ErrInvalidArgument)
	ErrNegativeTicks    = fmt.Errorf("%w: tick count", ErrInvalidArgument)

	// ErrInternalInvariant marks a violated simulation invariant. It is a
	// bug, not a caller error; the run aborts and the error surfaces
	// unmodified.
	ErrInternalInvariant = errors.New("internal invariant violated")

	// ErrWorkerFailure wraps an error raised inside a scheduler worker.
	// Partial tick state is discarded before it surfaces.
	ErrWorkerFailure = errors.New("worker failure")
)

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternalInvariant, fmt.Sprintf(format, args...))
}
