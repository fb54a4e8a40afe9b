package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/flow"
	"github.com/goliatone/go-wizard/runner"
	rcron "github.com/robfig/cron/v3"
)

const ErrCodeInvalidSchedule = "INVALID_SCHEDULE"

// Job is the unit of work a Scheduler runs.
type Job func(ctx context.Context) error

// JobConfig tunes a scheduled job. A zero Timeout leaves the run unbounded.
type JobConfig struct {
	Name       string
	Expression string
	MaxRetries int
	Timeout    time.Duration
	Deadline   time.Time
}

// LogLevel gates the scheduler's own log lines.
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)

// Parser selects the cron expression dialect.
type Parser int

const (
	// DefaultParser accepts the five standard fields and descriptors.
	DefaultParser Parser = iota
	// SecondsParser adds a leading seconds field.
	SecondsParser
)

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLocation sets the timezone cron expressions are evaluated in.
func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) {
		s.location = loc
	}
}

// WithSchedulerLogger sets the logger for scheduler and cron lines.
func WithSchedulerLogger(logger flow.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithLogLevel sets the scheduler log level.
func WithLogLevel(level LogLevel) SchedulerOption {
	return func(s *Scheduler) {
		s.logLevel = level
	}
}

// WithErrorHandler receives the errors of failed runs and recovered panics.
func WithErrorHandler(handler func(error)) SchedulerOption {
	return func(s *Scheduler) {
		s.errorHandler = handler
	}
}

// WithParser sets the cron expression dialect.
func WithParser(p Parser) SchedulerOption {
	return func(s *Scheduler) {
		s.parser = p
	}
}

// Scheduler runs jobs on cron expressions or once at a given time.
type Scheduler struct {
	mu           sync.Mutex
	cron         *rcron.Cron
	location     *time.Location
	errorHandler func(error)
	logger       flow.Logger
	logLevel     LogLevel
	parser       Parser
	ctx          context.Context

	nextHandleID int64
	handles      map[int64]*jobHandle
}

// NewScheduler creates a scheduler. Jobs do not fire until Start.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		location: time.Local,
		logLevel: LogLevelError,
		parser:   DefaultParser,
		handles:  make(map[int64]*jobHandle),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = flow.NormalizeLogger(s.logger)
	if s.errorHandler == nil {
		s.errorHandler = func(err error) {
			s.logger.Error("scheduled job failed: %v", err)
		}
	}
	s.cron = rcron.New(s.build()...)
	return s
}

// ScheduleCron runs job every time cfg.Expression fires. A failed run does
// not stop later runs.
func (s *Scheduler) ScheduleCron(cfg JobConfig, job Job) (Handle, error) {
	if cfg.Expression == "" {
		return nil, errors.New("cron expression cannot be empty", errors.CategoryBadInput).
			WithTextCode(ErrCodeInvalidSchedule)
	}
	if job == nil {
		return nil, errors.New("scheduled job cannot be nil", errors.CategoryBadInput).
			WithTextCode(ErrCodeInvalidSchedule)
	}
	run := s.runnable(cfg, job)

	h := s.newHandle()
	entry := rcron.FuncJob(func() {
		if isTerminalStatus(h.Status()) {
			return
		}
		h.setStatus(ScheduleStatusRunning, nil)
		if err := run(); err != nil {
			h.setStatus(ScheduleStatusFailed, err)
			s.errorHandler(err)
			return
		}
		if !isTerminalStatus(h.Status()) {
			h.setStatus(ScheduleStatusIdle, nil)
		}
	})

	entryID, err := s.cron.AddJob(cfg.Expression, entry)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, fmt.Sprintf("invalid cron expression %q", cfg.Expression)).
			WithTextCode(ErrCodeInvalidSchedule)
	}
	h.entryID = int(entryID)
	s.storeHandle(h)
	return h, nil
}

// ScheduleAfter runs job once after delay.
func (s *Scheduler) ScheduleAfter(delay time.Duration, cfg JobConfig, job Job) (Handle, error) {
	if delay < 0 {
		delay = 0
	}
	return s.ScheduleAt(time.Now().Add(delay), cfg, job)
}

// ScheduleAt runs job once at the given time. One-shot jobs do not wait
// for Start.
func (s *Scheduler) ScheduleAt(at time.Time, cfg JobConfig, job Job) (Handle, error) {
	if job == nil {
		return nil, errors.New("scheduled job cannot be nil", errors.CategoryBadInput).
			WithTextCode(ErrCodeInvalidSchedule)
	}
	run := s.runnable(cfg, job)

	h := s.newHandle()
	s.storeHandle(h)

	go func() {
		wait := time.Until(at)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-h.Done():
			return
		}

		if isTerminalStatus(h.Status()) {
			return
		}
		h.setStatus(ScheduleStatusRunning, nil)
		if err := run(); err != nil {
			h.setTerminal(ScheduleStatusFailed, err)
			s.errorHandler(err)
			s.removeStoredHandle(h.id)
			return
		}
		h.setTerminal(ScheduleStatusCompleted, nil)
		s.removeStoredHandle(h.id)
	}()

	return h, nil
}

// Start begins firing cron jobs. Runs use ctx as their parent until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.logf(LogLevelInfo, "scheduler started with %d job(s)", len(s.cron.Entries()))
	return nil
}

// Stop halts the cron loop, waits for running cron jobs and marks every
// live handle stopped.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}

	var handles []*jobHandle
	s.mu.Lock()
	for _, h := range s.handles {
		handles = append(handles, h)
	}
	s.handles = make(map[int64]*jobHandle)
	s.mu.Unlock()

	for _, h := range handles {
		if h == nil {
			continue
		}
		if h.entryID > 0 {
			s.cron.Remove(rcron.EntryID(h.entryID))
		}
		if isTerminalStatus(h.Status()) {
			continue
		}
		h.setTerminal(ScheduleStatusStopped, nil)
	}
	s.logf(LogLevelInfo, "scheduler stopped")
	return nil
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Scheduler) runnable(cfg JobConfig, job Job) func() error {
	name := cfg.Name
	if name == "" {
		name = "scheduled job"
	}
	opts := []runner.Option{
		runner.WithName(name),
		runner.WithMaxRetries(cfg.MaxRetries),
		runner.WithRetryStrategy(runner.TransientOnly{}),
		runner.WithDeadline(cfg.Deadline),
		runner.WithLogger(s.logger),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, runner.WithTimeout(cfg.Timeout))
	}
	h := runner.NewHandler(opts...)
	return func() error {
		return h.Run(s.baseContext(), job)
	}
}

func (s *Scheduler) removeHandle(id int64) {
	h := s.removeStoredHandle(id)
	if h == nil {
		return
	}
	if h.entryID > 0 {
		s.cron.Remove(rcron.EntryID(h.entryID))
	}
}

func (s *Scheduler) removeStoredHandle(id int64) *jobHandle {
	if id == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.handles[id]
	delete(s.handles, id)
	return h
}

func (s *Scheduler) storeHandle(h *jobHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[h.id] = h
}

func (s *Scheduler) newHandle() *jobHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandleID++
	return &jobHandle{
		scheduler: s,
		id:        s.nextHandleID,
		status:    ScheduleStatusScheduled,
		done:      make(chan struct{}),
	}
}

func (s *Scheduler) logf(level LogLevel, msg string, args ...any) {
	if s.logLevel >= level {
		s.logger.Info(msg, args...)
	}
}

func (s *Scheduler) build() []rcron.Option {
	opts := []rcron.Option{
		rcron.WithLogger(&cronLogger{logger: s.logger, level: s.logLevel}),
		rcron.WithChain(rcron.Recover(&errorHandlerAdapter{handler: s.errorHandler})),
	}
	if s.location != nil {
		opts = append(opts, rcron.WithLocation(s.location))
	}
	if s.parser == SecondsParser {
		opts = append(opts, rcron.WithSeconds())
	}
	return opts
}

// cronLogger routes robfig/cron log lines to a flow.Logger. cron passes
// key/value pairs rather than printf arguments.
type cronLogger struct {
	logger flow.Logger
	level  LogLevel
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	if l.level >= LogLevelDebug {
		l.logger.Debug("cron: %s %v", msg, keysAndValues)
	}
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	if l.level >= LogLevelError {
		l.logger.Error("cron: %s %v: %v", msg, keysAndValues, err)
	}
}

// errorHandlerAdapter feeds panics recovered by cron to the error handler.
type errorHandlerAdapter struct {
	handler func(error)
}

func (e *errorHandlerAdapter) Info(string, ...any) {}

func (e *errorHandlerAdapter) Error(err error, msg string, keysAndValues ...any) {
	if e.handler == nil {
		return
	}
	if err == nil {
		err = errors.New(fmt.Sprintf("%s %v", msg, keysAndValues), errors.CategoryInternal)
	}
	e.handler(err)
}
