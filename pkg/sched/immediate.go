package sched

// Immediate runs idle callbacks synchronously on the requesting goroutine.
// Requests made while a callback is running are queued and run after it
// returns, so callbacks never nest. The zero value is ready to use.
type Immediate struct {
	queue   []func(Deadline)
	running bool
}

// RequestIdle implements Scheduler.
func (s *Immediate) RequestIdle(cb func(Deadline)) {
	s.queue = append(s.queue, cb)
	if s.running {
		return
	}
	s.running = true
	defer func() { s.running = false }()

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		next(nil)
	}
}
