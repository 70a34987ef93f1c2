// Package sched provides the cooperative scheduling port the renderer yields
// through: a scheduler accepts a callback to run during the next idle period
// and hands it a Deadline describing how much of that period is left.
//
// Three implementations are provided. Loop is an explicit task queue driven
// by a single goroutine, the production choice. Immediate runs callbacks on
// the caller's goroutine as soon as the current one returns, with an
// unlimited budget. Manual lets tests decide exactly when callbacks run and
// how many units of work each slice allows.
package sched

import "time"

// Deadline reports how much of the current idle period remains.
type Deadline interface {
	TimeRemaining() time.Duration
}

// Scheduler runs callbacks during idle periods. A nil Deadline passed to a
// callback means the budget is unknown and the callback may run to
// completion.
type Scheduler interface {
	RequestIdle(cb func(Deadline))
}

// Unlimited is a Deadline that never runs out.
type Unlimited struct{}

// TimeRemaining implements Deadline.
func (Unlimited) TimeRemaining() time.Duration {
	return time.Duration(1<<63 - 1)
}

// clockDeadline ends at a fixed instant of a clock.
type clockDeadline struct {
	end time.Time
	now func() time.Time
}

func (d clockDeadline) TimeRemaining() time.Duration {
	left := d.end.Sub(d.now())
	if left < 0 {
		return 0
	}
	return left
}

// At returns a Deadline that ends budget after now() is first called.
func At(now func() time.Time, budget time.Duration) Deadline {
	if now == nil {
		now = time.Now
	}
	return clockDeadline{end: now().Add(budget), now: now}
}

// Units returns a Deadline that allows exactly n queries before reporting
// that the budget is exhausted. A renderer that checks the deadline after
// every unit of work therefore performs n units per slice.
func Units(n int) Deadline {
	return &unitDeadline{left: n}
}

type unitDeadline struct {
	left int
}

func (d *unitDeadline) TimeRemaining() time.Duration {
	d.left--
	if d.left <= 0 {
		return 0
	}
	return time.Hour
}
