package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Ryneqq/nbody/internal/dynamo"
	"github.com/Ryneqq/nbody/internal/gravity"
	"github.com/Ryneqq/nbody/internal/metrics"
)

// Simulator drives a Scene for a fixed number of ticks, feeding every
// committed tick to its metrics and observers.
type Simulator struct {
	scene     *gravity.Scene
	metrics   []metrics.Metric
	observers []gravity.Observer
	logger    *log.Logger
	last      gravity.TickReport
}

func New(scene *gravity.Scene) *Simulator {
	s := &Simulator{
		scene:     scene,
		metrics:   make([]metrics.Metric, 0),
		observers: make([]gravity.Observer, 0),
		logger:    log.New(io.Discard),
	}
	scene.AddObserver(gravity.ObserverFunc(func(r gravity.TickReport) { s.last = r }))
	return s
}

func (s *Simulator) AddMetric(m metrics.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o gravity.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger)        { s.logger = l }
func (s *Simulator) Scene() *gravity.Scene          { return s.scene }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	every := cfg.StatsEvery
	if every == 0 {
		every = 1
	}

	result := &Result{
		Seed:    cfg.Seed,
		Stats:   make([]Stats, 0, cfg.Ticks/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	initial := s.current()
	for _, m := range s.metrics {
		m.Observe(initial)
	}
	result.Stats = append(result.Stats, StatsOf(initial))
	s.logger.Debug("run started", "tick", initial.Tick, "bodies", len(initial.Bodies), "ticks", cfg.Ticks)

	last := initial
	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			result.Final = last.Bodies
			return result, ctx.Err()
		default:
		}

		s.scene.Update()
		r := s.last
		last = r
		result.TicksTaken++

		for _, m := range r.Merges {
			s.logger.Debug("merge", "tick", r.Tick, "survivor", m.Survivor, "absorbed", m.Absorbed)
		}
		for _, m := range s.metrics {
			m.Observe(r)
		}
		for _, o := range s.observers {
			o.OnTick(r)
		}

		if cfg.ValidateState {
			if err := validate(r); err != nil {
				s.logger.Warn("invalid state", "tick", r.Tick, "err", err)
				result.Errors = append(result.Errors, err)
				result.Stats = append(result.Stats, StatsOf(r))
				break
			}
		}

		if r.Tick%every == 0 || i == cfg.Ticks-1 {
			result.Stats = append(result.Stats, StatsOf(r))
		}
	}

	result.Final = last.Bodies
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Debug("run finished", "ticks", result.TicksTaken, "bodies", len(result.Final))

	return result, nil
}

// RunWithCallback advances up to cfg.Ticks ticks, handing callback the state
// before every tick. Returning false stops the run.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(gravity.TickReport) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(s.current()) {
			return nil
		}

		s.scene.Update()

		if cfg.ValidateState {
			if err := validate(s.last); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Simulator) current() gravity.TickReport {
	return gravity.TickReport{Tick: s.scene.Tick(), Bodies: s.scene.Bodies()}
}

func validate(r gravity.TickReport) error {
	for _, b := range r.Bodies {
		if !b.IsFinite() {
			return &dynamo.TickError{Tick: r.Tick, Wrapped: fmt.Errorf("%w: body %d", dynamo.ErrNonFinite, b.ID())}
		}
	}
	return nil
}
