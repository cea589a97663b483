package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is the unit of work a Scheduler runs.
type Job func(context.Context) error

// DefaultParser accepts five or six field expressions and descriptors such
// as "@hourly" or "@every 30m".
var DefaultParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler runs one named job according to a cron expression. A tick that
// fires while the previous run is still in flight is skipped.
type Scheduler struct {
	name       string
	expression string
	job        Job
	engine     *cron.Cron
	logger     *slog.Logger
	timeout    time.Duration

	lifecycle sync.Mutex
	started   bool
	entry     cron.EntryID
	busy      atomic.Bool

	statusMu sync.Mutex
	status   Status
}

// Status describes the outcome of the latest run of a job.
type Status struct {
	Name       string
	Expression string
	Runs       int
	Skipped    int
	LastRun    time.Time
	LastErr    error
}

type Option func(*Scheduler)

// WithCron shares a cron engine between schedulers.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.engine = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJobTimeout bounds every run, scheduled or manual.
func WithJobTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func New(name, expression string, job Job, opts ...Option) (*Scheduler, error) {
	switch {
	case name == "":
		return nil, errors.New("scheduler: job name is required")
	case expression == "":
		return nil, fmt.Errorf("scheduler %s: cron expression is required", name)
	case job == nil:
		return nil, fmt.Errorf("scheduler %s: job is required", name)
	}

	if _, err := DefaultParser.Parse(expression); err != nil {
		return nil, fmt.Errorf("scheduler %s: parse %q: %w", name, expression, err)
	}

	s := &Scheduler{
		name:       name,
		expression: expression,
		job:        job,
		logger:     slog.Default(),
		status:     Status{Name: name, Expression: expression},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.engine == nil {
		s.engine = cron.New(cron.WithParser(DefaultParser))
	}

	s.logger = s.logger.With("job", name)

	return s, nil
}

// Start registers the job with the cron engine. When ctx is not nil the
// scheduler stops itself once ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("scheduler is nil")
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.started {
		return fmt.Errorf("scheduler %s is already running", s.name)
	}

	entry, err := s.engine.AddFunc(s.expression, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("scheduler %s: add entry: %w", s.name, err)
	}

	s.entry = entry

	s.engine.Start()
	s.started = true

	if ctx != nil {
		go func() {
			<-ctx.Done()
			s.Stop()
		}()
	}

	s.logger.Info("job scheduled", "expression", s.expression)

	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.record(func(st *Status) { st.Skipped++ })
		s.logger.Warn("previous run still in flight, skipping tick")

		return
	}
	defer s.busy.Store(false)

	if err := s.Run(ctx); err != nil {
		s.logger.Error("scheduled job failed", "error", err)
	}
}

// Stop halts the cron engine and blocks until a running job returns.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}

	s.lifecycle.Lock()

	if !s.started {
		s.lifecycle.Unlock()
		return
	}

	s.started = false
	s.engine.Remove(s.entry)
	done := s.engine.Stop()
	s.lifecycle.Unlock()

	<-done.Done()
}

// Run executes the job now and records the outcome.
func (s *Scheduler) Run(ctx context.Context) error {
	if s == nil {
		return errors.New("scheduler is nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	began := time.Now()
	err := s.job(ctx)

	s.record(func(st *Status) {
		st.Runs++
		st.LastRun = began
		st.LastErr = err
	})

	if err == nil {
		s.logger.Info("scheduled job finished", "elapsed", time.Since(began))
	}

	return err
}

func (s *Scheduler) Name() string {
	return s.name
}

func (s *Scheduler) Status() Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	return s.status
}

func (s *Scheduler) record(update func(*Status)) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	update(&s.status)
}

// Group starts and stops several schedulers together.
type Group struct {
	schedulers []*Scheduler
}

func NewGroup(schedulers ...*Scheduler) *Group {
	return &Group{schedulers: schedulers}
}

// Start starts every scheduler, stopping the ones already started when one
// of them fails.
func (g *Group) Start(ctx context.Context) error {
	for i, s := range g.schedulers {
		if err := s.Start(ctx); err != nil {
			for _, started := range g.schedulers[:i] {
				started.Stop()
			}

			return fmt.Errorf("start %s: %w", s.Name(), err)
		}
	}

	return nil
}

func (g *Group) Stop() {
	for _, s := range g.schedulers {
		s.Stop()
	}
}

func (g *Group) Statuses() []Status {
	out := make([]Status, 0, len(g.schedulers))

	for _, s := range g.schedulers {
		out = append(out, s.Status())
	}

	return out
}
