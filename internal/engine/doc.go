// Package engine advances particle systems through continuous time.
//
// A [Stepper] consumes a timestep as a sequence of iterations. Each
// iteration builds a fresh tree over the remaining time, asks the collision
// kernel for every seeker's earliest impact, moves all particles to the
// single earliest impact (or to the end of the step) and resolves that one
// contact elastically. Contacts are therefore resolved strictly in time
// order, one per iteration.
//
// With Options.Anchor set, particle 0 is an immovable body: it never seeks,
// an overlap with it is still evaluated, and a contact with it reflects the
// other particle's normal velocity.
package engine
