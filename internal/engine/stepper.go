package engine

import (
	"fmt"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/san-kum/ccdsim/internal/collide"
	"github.com/san-kum/ccdsim/internal/compute"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/tree"
	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

// EventObserver is notified of every resolved contact, in time order.
type EventObserver[F constraints.Float] interface {
	OnEvent(ev dynamo.Event[F])
}

// ObserverFunc adapts a function to EventObserver.
type ObserverFunc[F constraints.Float] func(ev dynamo.Event[F])

func (f ObserverFunc[F]) OnEvent(ev dynamo.Event[F]) { f(ev) }

// StepStats summarizes the work done by one Step.
type StepStats struct {
	Iterations   int
	Events       int
	AnchorEvents int
	// Nodes is the total number of tree nodes built across iterations.
	Nodes int
	// Deepest is the deepest tree built across iterations.
	Deepest      int
	ForcedSplits int
}

type Stepper[F constraints.Float] struct {
	opts      dynamo.Options
	backend   compute.Backend
	observers []EventObserver[F]

	cands []collide.Candidate[F]
}

// New returns a Stepper using backend for the collision kernel. A nil
// backend falls back to compute.GetBackend().
func New[F constraints.Float](opts dynamo.Options, backend compute.Backend) *Stepper[F] {
	if backend == nil {
		backend = compute.GetBackend()
	}
	return &Stepper[F]{
		opts:    opts,
		backend: backend,
	}
}

func (s *Stepper[F]) AddObserver(o EventObserver[F]) { s.observers = append(s.observers, o) }
func (s *Stepper[F]) Options() dynamo.Options        { return s.opts }
func (s *Stepper[F]) Backend() compute.Backend       { return s.backend }

// Step advances particles in place by exactly timestep, resolving every
// contact inside the window in time order. Only active particles take part
// in collisions; every particle moves.
//
// On error the particles are left at the last consistent state reached.
func (s *Stepper[F]) Step(particles []dynamo.Particle[F], active []int, timestep F) (StepStats, error) {
	var stats StepStats

	if !vecmath.IsFinite(timestep) {
		return stats, fmt.Errorf("%w: %v", dynamo.ErrInvalidTimestep, timestep)
	}
	if timestep < 0 {
		return stats, fmt.Errorf("%w: %v", dynamo.ErrNegativeTimestep, timestep)
	}
	if _, err := dynamo.Validate(particles, active); err != nil {
		return stats, err
	}
	if timestep == 0 || len(particles) == 0 {
		return stats, nil
	}

	seekers := collide.Seekers(active, s.opts.Anchor)
	if cap(s.cands) < len(seekers) {
		s.cands = make([]collide.Candidate[F], len(seekers))
	}
	cands := s.cands[:len(seekers)]

	remaining := timestep
	for remaining > 0 {
		if s.opts.MaxEvents > 0 && stats.Events >= s.opts.MaxEvents {
			return stats, fmt.Errorf("%w: %d events with %v of %v left",
				dynamo.ErrEventLimit, stats.Events, remaining, timestep)
		}

		tr, err := tree.Build(particles, active, remaining, s.opts)
		if err != nil {
			return stats, fmt.Errorf("building tree at %v of %v: %w", timestep-remaining, timestep, err)
		}
		stats.Iterations++
		stats.Nodes += tr.Len()
		stats.ForcedSplits += tr.ForcedSplits
		if tr.Depth > stats.Deepest {
			stats.Deepest = tr.Depth
		}

		kernel := collide.Kernel[F]{
			Particles: particles,
			Tree:      tr,
			Horizon:   remaining,
			Anchor:    s.opts.Anchor,
		}
		kernel.Earliest(s.backend, seekers, cands)
		next := collide.Reduce(cands)

		dt := remaining
		if next.Found && next.T < remaining {
			dt = next.T
		} else {
			next.Found = false
		}

		advance(particles, dt)
		remaining -= dt

		if !next.Found {
			break
		}

		ev := dynamo.Event[F]{
			A:      next.Seeker,
			B:      next.Other,
			Time:   timestep - remaining,
			Anchor: s.opts.Anchor && (next.Seeker == dynamo.AnchorIndex || next.Other == dynamo.AnchorIndex),
		}
		if ev.Anchor {
			resolveAnchor(particles, ev.A, ev.B)
			stats.AnchorEvents++
		} else {
			resolveElastic(particles, ev.A, ev.B)
		}
		stats.Events++

		logs.WithTag("a", ev.A).
			WithTag("b", ev.B).
			WithTag("time", ev.Time).
			WithTag("remaining", remaining).
			WithTag("anchor", ev.Anchor).
			Debug("contact resolved")

		for _, o := range s.observers {
			o.OnEvent(ev)
		}
	}

	return stats, nil
}

func advance[F constraints.Float](particles []dynamo.Particle[F], dt F) {
	for i := range particles {
		particles[i].Pos.AddScaled(particles[i].Vel, dt)
	}
}
