// Package scheduler coalesces bursts of work into a single delayed run.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is a unit of deferred work.
type Task func(ctx context.Context) error

// Config for Debouncer.
type Config struct {
	Delay   time.Duration // Quiet period before a scheduled task runs
	Timeout time.Duration // Upper bound for one task run
	Logger  zerolog.Logger
	// OnRun is called after every run with its outcome. Optional.
	OnRun func(err error)
}

// Debouncer runs the most recently scheduled task once no new task has arrived for Delay.
// Scheduling replaces the pending task and restarts the delay.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timeout    time.Duration
	logger     zerolog.Logger
	onRun      func(error)
	pending    Task
	timer      *time.Timer
	generation uint64
	closed     bool
}

// NewDebouncer creates a new Debouncer.
func NewDebouncer(cfg Config) *Debouncer {
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Debouncer{
		delay:   cfg.Delay,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		onRun:   cfg.OnRun,
	}
}

// Schedule sets task as the pending task and restarts the delay. After Close, tasks are
// run immediately.
func (d *Debouncer) Schedule(task func(ctx context.Context) error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.run(context.Background(), task)
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = task
	d.generation++
	gen := d.generation
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()
}

// Pending reports whether a task is waiting for its delay to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush runs the pending task now, if there is one.
func (d *Debouncer) Flush(ctx context.Context) error {
	task := d.take()
	if task == nil {
		return nil
	}
	return d.run(ctx, task)
}

// Close flushes the pending task and makes later Schedule calls run synchronously.
func (d *Debouncer) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.Flush(ctx)
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.generation || d.pending == nil {
		d.mu.Unlock()
		return
	}
	task := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	d.run(context.Background(), task)
}

func (d *Debouncer) take() Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	task := d.pending
	d.pending = nil
	return task
}

func (d *Debouncer) run(ctx context.Context, task Task) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := task(ctx)
	if err != nil {
		d.logger.Error().Err(err).Msg("scheduled task failed")
	}
	if d.onRun != nil {
		d.onRun(err)
	}
	return err
}
