package sched

import (
	"testing"
	"time"
)

func TestUnits(t *testing.T) {
	d := Units(3)
	var got []bool
	for i := 0; i < 4; i++ {
		got = append(got, d.TimeRemaining() > 0)
	}
	want := []bool{true, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("query %d: remaining = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAt(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	d := At(clock, 10*time.Millisecond)

	if got := d.TimeRemaining(); got != 10*time.Millisecond {
		t.Errorf("TimeRemaining() = %v, want 10ms", got)
	}
	now = now.Add(25 * time.Millisecond)
	if got := d.TimeRemaining(); got != 0 {
		t.Errorf("TimeRemaining() = %v, want 0 once past the end", got)
	}
}

func TestImmediateDoesNotNest(t *testing.T) {
	var s Immediate
	var order []string
	depth := 0

	s.RequestIdle(func(d Deadline) {
		depth++
		if depth > 1 {
			t.Error("callbacks nested")
		}
		if d != nil {
			t.Error("Immediate should pass a nil deadline")
		}
		order = append(order, "a")
		s.RequestIdle(func(Deadline) { order = append(order, "c") })
		order = append(order, "b")
		depth--
	})

	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestManual(t *testing.T) {
	var m Manual
	runs := 0
	m.RequestIdle(func(Deadline) {
		runs++
		if runs < 3 {
			m.RequestIdle(func(Deadline) { runs++ })
		}
	})
	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}
	if !m.Step(Unlimited{}) {
		t.Fatal("Step returned false")
	}
	if n := m.Drain(nil, 10); n != 1 {
		t.Errorf("Drain ran %d callbacks, want 1", n)
	}
	if runs != 2 || m.Step(nil) {
		t.Errorf("runs = %d, queue should be empty", runs)
	}
}
