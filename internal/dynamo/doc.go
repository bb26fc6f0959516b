// Package dynamo provides the core types shared by the collision simulator.
//
// The package defines the particle data model and the error taxonomy:
//
//   - [Particle]: a moving sphere (position, velocity, mass, radius)
//   - [Event]: a resolved contact between two particles
//   - [Options]: knobs for the event loop (anchor semantics, hardening caps)
//   - [Validate]: input checks run before any stepping
//
// Particle identity is the index into the caller's slice. Indices stay stable
// for the duration of a step.
//
// # Anchor particle
//
// With [Options.Anchor] set (the default), the particle at index 0 never
// seeks collisions itself and acts as an immovable body of infinite mass when
// something hits it:
//
//	opts := dynamo.DefaultOptions()
//	opts.Anchor = false // treat every particle alike
//
// # Thread Safety
//
// Particle slices are owned by the caller. The engine mutates them only
// between tree builds, never while a kernel pass is in flight.
package dynamo
