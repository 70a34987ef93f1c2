package sched

// Manual queues idle callbacks until the test runs them.
type Manual struct {
	queue []func(Deadline)
}

// RequestIdle implements Scheduler.
func (m *Manual) RequestIdle(cb func(Deadline)) {
	m.queue = append(m.queue, cb)
}

// Pending returns the number of queued callbacks.
func (m *Manual) Pending() int {
	return len(m.queue)
}

// Step runs the oldest queued callback with d. It returns false if nothing
// was queued.
func (m *Manual) Step(d Deadline) bool {
	if len(m.queue) == 0 {
		return false
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	next(d)
	return true
}

// Drain runs callbacks until none are queued, giving each a fresh deadline
// from mk (nil mk means an unlimited budget). It returns the number of
// callbacks run and stops after limit callbacks to guard against livelock.
func (m *Manual) Drain(mk func() Deadline, limit int) int {
	n := 0
	for len(m.queue) > 0 && n < limit {
		var d Deadline
		if mk != nil {
			d = mk()
		}
		m.Step(d)
		n++
	}
	return n
}
