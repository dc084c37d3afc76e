// Package scheduler runs named background jobs such as like counter
// reconciliation.
package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var errPanicked = errors.New("task panicked")

// TaskFn is the function signature for scheduled tasks. ctx is cancelled when
// the task is removed or the scheduler stops.
type TaskFn func(ctx context.Context) error

// TaskStatus reports the last outcome of a task.
type TaskStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"` // 0 for one-shot delays
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	LastRun   time.Time     `json:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// Scheduler manages periodic and delayed tasks.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerEntry
	timers  map[string]*time.Timer
	status  map[string]*TaskStatus
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

type tickerEntry struct {
	ticker *time.Ticker
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tickers: make(map[string]*tickerEntry),
		timers:  make(map[string]*time.Timer),
		status:  make(map[string]*TaskStatus),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddTicker registers a task to run on a fixed interval.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tickers[name]; ok {
		old.cancel()
		delete(s.tickers, name)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	entry := &tickerEntry{ticker: time.NewTicker(interval), cancel: cancel}
	s.tickers[name] = entry
	s.status[name] = &TaskStatus{Name: name, Interval: interval}

	go func() {
		defer entry.ticker.Stop()
		for {
			select {
			case <-entry.ticker.C:
				s.run(ctx, name, fn)
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

// AddDelay runs fn once after the given delay.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[name]; ok {
		old.Stop()
	}
	s.status[name] = &TaskStatus{Name: name}
	s.timers[name] = time.AfterFunc(delay, func() {
		s.run(s.ctx, name, fn)
		s.mu.Lock()
		delete(s.timers, name)
		s.mu.Unlock()
	})
}

func (s *Scheduler) run(ctx context.Context, name string, fn TaskFn) {
	if ctx.Err() != nil {
		return
	}
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduler task panicked",
					zap.String("task", name),
					zap.Any("recover", r))
				err = errPanicked
			}
		}()
		return fn(ctx)
	}()
	if err != nil && err != errPanicked {
		s.logger.Warn("scheduler task failed", zap.String("task", name), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[name]
	if !ok {
		return
	}
	st.Runs++
	st.LastRun = time.Now()
	st.LastError = ""
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	}
}

// Remove stops and removes a ticker or delay task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.tickers[name]; ok {
		entry.cancel()
		delete(s.tickers, name)
	}
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
	delete(s.status, name)
}

// Stop stops all tasks and cancels running ones. It is safe to call twice.
func (s *Scheduler) Stop() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
}

// ListTickers returns the names of all registered ticker tasks, sorted.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a snapshot of every known task, sorted by name.
func (s *Scheduler) Status() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
