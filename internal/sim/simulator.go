package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/san-kum/ccdsim/internal/dynamo"
	"github.com/san-kum/ccdsim/internal/engine"
	"github.com/san-kum/ccdsim/internal/metrics"
	"github.com/san-kum/ccdsim/internal/vecmath"
	"golang.org/x/exp/constraints"
)

type Simulator[F constraints.Float] struct {
	stepper   *engine.Stepper[F]
	metrics   []Metric[F]
	observers []Observer

	frame  int
	clock  float64
	events []EventRecord
}

// New wraps stepper. The simulator registers itself as an event observer
// on it, so a stepper should back a single simulator.
func New[F constraints.Float](stepper *engine.Stepper[F]) *Simulator[F] {
	s := &Simulator[F]{
		stepper:   stepper,
		metrics:   make([]Metric[F], 0),
		observers: make([]Observer, 0),
	}
	stepper.AddObserver(s)
	return s
}

// AddMetric registers m. Metrics that also count events are attached to
// the stepper.
func (s *Simulator[F]) AddMetric(m Metric[F]) {
	s.metrics = append(s.metrics, m)
	if o, ok := m.(engine.EventObserver[F]); ok {
		s.stepper.AddObserver(o)
	}
}

func (s *Simulator[F]) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator[F]) OnEvent(ev dynamo.Event[F]) {
	s.events = append(s.events, EventRecord{
		Frame:  s.frame,
		Time:   s.clock + float64(ev.Time),
		A:      ev.A,
		B:      ev.B,
		Anchor: ev.Anchor,
	})
}

// Run steps a copy of particles cfg.Frames times. It stops early when ctx
// is done and returns what was simulated so far with ctx.Err(). Step
// failures are returned as *dynamo.SimulationError.
func (s *Simulator[F]) Run(ctx context.Context, particles []dynamo.Particle[F], cfg Config[F]) (*Result[F], error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	active := cfg.Active
	if active == nil {
		active = dynamo.AllIndices(len(particles))
	}
	if _, err := dynamo.Validate(particles, active); err != nil {
		return nil, err
	}

	result := &Result[F]{
		Frames:  make([]Frame, 0, cfg.Frames+1),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	ps := dynamo.Clone(particles)
	s.frame, s.clock = 0, 0
	s.events = s.events[:0]

	s.record(result, ps, true)

	dt := float64(cfg.Timestep)
	backend := s.stepper.Backend().Name()

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return s.finish(result, ps, cfg), ctx.Err()
		default:
		}

		s.frame = i + 1
		start := time.Now()
		stats, err := s.stepper.Step(ps, active, cfg.Timestep)
		metrics.InstrumentStep(backend, stats, start, err)
		if err != nil {
			return s.finish(result, ps, cfg), &dynamo.SimulationError{Frame: s.frame, Time: s.clock, Wrapped: err}
		}

		s.clock = float64(s.frame) * dt
		result.Steps++
		result.Iterations += stats.Iterations
		if stats.Deepest > result.MaxDepth {
			result.MaxDepth = stats.Deepest
		}

		logs.WithTag("frame", s.frame).
			WithTag("events", stats.Events).
			WithTag("iterations", stats.Iterations).
			WithTag("nodes", stats.Nodes).
			Debug("frame simulated")

		s.record(result, ps, !cfg.SkipFrames)
	}

	return s.finish(result, ps, cfg), nil
}

func (s *Simulator[F]) record(result *Result[F], ps []dynamo.Particle[F], keep bool) {
	for _, m := range s.metrics {
		m.Observe(ps, s.clock)
	}
	if !keep && len(s.observers) == 0 {
		return
	}

	f := snapshot(ps, s.frame, s.clock, metrics.TotalEnergy(ps))
	if keep {
		result.Frames = append(result.Frames, f)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}
}

func (s *Simulator[F]) finish(result *Result[F], ps []dynamo.Particle[F], cfg Config[F]) *Result[F] {
	if cfg.SkipFrames && result.Steps > 0 {
		result.Frames = append(result.Frames, snapshot(ps, s.frame, s.clock, metrics.TotalEnergy(ps)))
	}

	result.Events = append(make([]EventRecord, 0, len(s.events)), s.events...)
	result.Final = ps
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result
}

func (s *Simulator[F]) validateConfig(cfg Config[F]) error {
	if !vecmath.IsFinite(cfg.Timestep) {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidTimestep, cfg.Timestep)
	}
	if cfg.Timestep < 0 {
		return fmt.Errorf("%w: %v", dynamo.ErrNegativeTimestep, cfg.Timestep)
	}
	if cfg.Frames < 0 {
		return fmt.Errorf("frames must be non-negative, got %d", cfg.Frames)
	}
	return nil
}

// RunWithCallback steps particles in place until callback returns false or
// ctx is done. Each call receives the system after the step.
func (s *Simulator[F]) RunWithCallback(ctx context.Context, particles []dynamo.Particle[F], cfg Config[F], callback func(Frame) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	active := cfg.Active
	if active == nil {
		active = dynamo.AllIndices(len(particles))
	}

	s.frame, s.clock = 0, 0
	s.events = s.events[:0]
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.frame++
		if _, err := s.stepper.Step(particles, active, cfg.Timestep); err != nil {
			return &dynamo.SimulationError{Frame: s.frame, Time: s.clock, Wrapped: err}
		}
		s.clock = float64(s.frame) * float64(cfg.Timestep)

		if !callback(snapshot(particles, s.frame, s.clock, metrics.TotalEnergy(particles))) {
			return nil
		}
		if cfg.Frames > 0 && s.frame >= cfg.Frames {
			return nil
		}
	}
}

// Events returns the contacts recorded since the last Run or RunWithCallback.
func (s *Simulator[F]) Events() []EventRecord { return s.events }
