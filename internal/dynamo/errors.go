package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidParticle indicates a particle with non-positive mass, negative
	// radius, or non-finite components.
	ErrInvalidParticle = errors.New("ccdsim: invalid particle")

	// ErrDimensionMismatch indicates vectors whose length differs from the
	// system dimension, or an unsupported dimension count.
	ErrDimensionMismatch = errors.New("ccdsim: dimension mismatch")

	// ErrIndexOutOfRange indicates an active index that is out of range or repeated.
	ErrIndexOutOfRange = errors.New("ccdsim: particle index out of range")

	// ErrNegativeTimestep indicates a step was requested with timestep < 0.
	ErrNegativeTimestep = errors.New("ccdsim: negative timestep")

	// ErrInvalidTimestep indicates a step was requested with a NaN or infinite timestep.
	ErrInvalidTimestep = errors.New("ccdsim: timestep is not finite")

	// ErrDegenerateTree indicates spatial partitioning stopped making progress,
	// usually because several particles share the exact same position.
	ErrDegenerateTree = errors.New("ccdsim: degenerate spatial partition")

	// ErrEventLimit indicates a single step resolved more events than allowed.
	ErrEventLimit = errors.New("ccdsim: event limit exceeded within one step")

	// ErrResourceExhausted indicates the node arena grew past its configured cap.
	ErrResourceExhausted = errors.New("ccdsim: resource exhausted")
)

// SimulationError wraps an error with run context.
type SimulationError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
