package sched

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// LoopConfig configures a Loop.
type LoopConfig struct {
	// SliceBudget is the length of the idle period handed to each idle
	// callback. Default: 5ms.
	SliceBudget time.Duration

	// MaxQueue bounds the number of posted functions waiting to run.
	// Default: 256.
	MaxQueue int

	// Now is the clock used to build deadlines. Default: time.Now.
	Now func() time.Time

	// Logger receives panics recovered from tasks. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultLoopConfig returns the default loop configuration.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		SliceBudget: 5 * time.Millisecond,
		MaxQueue:    256,
		Now:         time.Now,
	}
}

// Loop is a single-goroutine task loop. Posted functions always run before
// idle callbacks, and each idle callback receives a deadline SliceBudget
// long, so external requests interleave between slices of render work.
//
// Everything a Loop runs executes on the goroutine that called Run, which
// makes it the one place engine state and hook setters may be touched from.
type Loop struct {
	cfg    LoopConfig
	logger *slog.Logger

	posted chan func()
	wake   chan struct{}

	mu   sync.Mutex
	idle []func(Deadline)
}

var _ Scheduler = (*Loop)(nil)

// NewLoop creates a loop. Zero fields of cfg take their defaults.
func NewLoop(cfg LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if cfg.SliceBudget <= 0 {
		cfg.SliceBudget = def.SliceBudget
	}
	if cfg.MaxQueue <= 0 {
		cfg.MaxQueue = def.MaxQueue
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:    cfg,
		logger: logger.With("component", "sched"),
		posted: make(chan func(), cfg.MaxQueue),
		wake:   make(chan struct{}, 1),
	}
}

// RequestIdle implements Scheduler. It is safe to call from any goroutine.
func (l *Loop) RequestIdle(cb func(Deadline)) {
	l.mu.Lock()
	l.idle = append(l.idle, cb)
	l.mu.Unlock()
	l.signal()
}

// Post queues fn to run on the loop goroutine ahead of pending idle work.
// It reports false if the queue is full and fn was dropped.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.posted <- fn:
		return true
	default:
		l.logger.Warn("post queue full, discarding task")
		return false
	}
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes tasks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.posted:
			l.safely(fn)
		case <-l.wake:
			l.runIdle()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunUntilIdle processes tasks on the calling goroutine until no posted
// function or idle callback remains. It must not be used concurrently with
// Run.
func (l *Loop) RunUntilIdle() {
	for {
		select {
		case fn := <-l.posted:
			l.safely(fn)
			continue
		default:
		}
		if !l.runOneIdle() {
			return
		}
	}
}

// runIdle runs queued idle callbacks, giving posted work a chance to go
// first between slices.
func (l *Loop) runIdle() {
	for {
		select {
		case fn := <-l.posted:
			l.safely(fn)
			continue
		default:
		}
		if !l.runOneIdle() {
			return
		}
	}
}

func (l *Loop) runOneIdle() bool {
	l.mu.Lock()
	if len(l.idle) == 0 {
		l.mu.Unlock()
		return false
	}
	cb := l.idle[0]
	l.idle = l.idle[1:]
	l.mu.Unlock()

	d := At(l.cfg.Now, l.cfg.SliceBudget)
	l.safely(func() { cb(d) })
	return true
}

func (l *Loop) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
