package fiber

import (
	verrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// hookKind identifies which hook function created a slot.
type hookKind uint8

const (
	hookState hookKind = iota + 1
	hookRef
)

func (k hookKind) String() string {
	switch k {
	case hookState:
		return "UseState"
	case hookRef:
		return "UseRef"
	default:
		return "none"
	}
}

// hook is one positional slot of a component render.
type hook struct {
	kind  hookKind
	state any
	cell  *cell

	// consumed is how many queued updates were folded into state when the
	// slot was evaluated. Commit drops exactly those from the cell.
	consumed int
}

// cell is the part of a slot shared by every generation of a component
// instance: its pending updates and its setter. A setter captured by an
// event handler therefore stays valid across renders, and updates queued
// while a pass is abandoned are replayed by the next one.
type cell struct {
	queue    []func(any) any
	setter   any
	detached bool
}

// scope is the vdom.Scope handed to a render function.
type scope struct {
	engine *Engine
	fiber  *Fiber
	data   *componentData
	prev   []*hook // slots of the committed render
	retry  []*hook // slots of the previous attempt of this render
	cursor int
	done   bool
	again  bool // own state was set during render
	err    error
}

// owns reports whether c belongs to a slot of this render.
func (s *scope) owns(c *cell) bool {
	for _, h := range s.data.hooks {
		if h.cell == c {
			return true
		}
	}
	return false
}

// Component implements vdom.Scope.
func (s *scope) Component() *vdom.Component {
	return s.data.def
}

func scopeOf(s vdom.Scope, fn string) *scope {
	sc, ok := s.(*scope)
	if !ok || sc == nil || sc.done {
		panic(verrors.New("E025").WithDetailf("%s called with a scope that is not rendering", fn))
	}
	return sc
}

// slot returns the hook at the cursor, carrying over the previous render's
// slot when its kind matches. A mismatch, or a slot the previous committed
// render did not have, is a hook order violation: it is recorded on the
// scope and the slot starts fresh.
func (s *scope) slot(kind hookKind) (h *hook, fresh bool) {
	i := s.cursor
	s.cursor++

	var old *hook
	if i < len(s.prev) {
		old = s.prev[i]
	}
	if s.fiber.alternate != nil && (old == nil || old.kind != kind) {
		was := "nothing"
		if old != nil {
			was = old.kind.String()
		}
		s.violation("hook %d was %s on the previous render, now %s", i, was, kind)
		old = nil
	}

	h = &hook{kind: kind}
	switch {
	case old == nil && i < len(s.retry) && s.retry[i].kind == kind:
		// Keep updates queued by the attempt that set its own state.
		h.cell = s.retry[i].cell
	case old == nil:
		h.cell = &cell{}
	default:
		h.cell = old.cell
		h.state = old.state
	}
	s.data.hooks = append(s.data.hooks, h)
	return h, old == nil
}

func (s *scope) violation(format string, args ...any) {
	if s.err == nil {
		s.err = verrors.New("E022").WithPath(s.fiber.Path()).WithDetailf(format, args...)
	}
}

// UseState returns the current value of a state slot and a setter.
//
// On the first render the value is initial. The setter queues update and
// requests a re-render of the whole tree. Setting a component's own state
// while it renders re-runs just that component before its children are
// built; queued updates are applied in
// submission order the next time the component renders. The setter is the
// same function on every render of the component and must be called on the
// engine's scheduler goroutine. Calling it after the component was removed
// does nothing.
//
// Like every hook, UseState must be called unconditionally and in the same
// order on every render.
func UseState[S any](s vdom.Scope, initial S) (S, func(update func(S) S)) {
	sc := scopeOf(s, "UseState")
	h, fresh := sc.slot(hookState)

	set, ok := h.cell.setter.(func(func(S) S))
	if h.cell.setter != nil && !ok {
		if !fresh {
			sc.violation("hook %d changed state type to %T", sc.cursor-1, initial)
		}
		h.cell, fresh = &cell{}, true
	}
	if fresh {
		h.state = initial
	}
	if h.cell.setter == nil {
		c, e := h.cell, sc.engine
		set = func(update func(S) S) {
			e.enqueue(c, func(v any) any {
				cur, _ := v.(S)
				return update(cur)
			})
		}
		h.cell.setter = set
	}

	for _, update := range h.cell.queue {
		h.state = update(h.state)
	}
	h.consumed = len(h.cell.queue)

	v, _ := h.state.(S)
	return v, set
}

// Set returns an update that replaces the state with v.
//
//	_, setName := fiber.UseState(s, "")
//	setName(fiber.Set("Ada"))
func Set[S any](v S) func(S) S {
	return func(S) S { return v }
}

// Ref is a mutable box that persists across renders. Writing Current does
// not trigger a render.
type Ref[T any] struct {
	Current T
}

// UseRef returns the component's Ref for this slot, created with initial on
// the first render.
func UseRef[T any](s vdom.Scope, initial T) *Ref[T] {
	sc := scopeOf(s, "UseRef")
	h, fresh := sc.slot(hookRef)

	ref, ok := h.state.(*Ref[T])
	if !fresh && !ok {
		sc.violation("hook %d changed ref type to %T", sc.cursor-1, initial)
		fresh = true
	}
	if fresh {
		ref = &Ref[T]{Current: initial}
		h.state = ref
	}
	return ref
}

// commitHooks drops the updates a committed render consumed.
func commitHooks(d *componentData) {
	for _, h := range d.hooks {
		if h.consumed >= len(h.cell.queue) {
			h.cell.queue = nil
		} else {
			h.cell.queue = h.cell.queue[h.consumed:]
		}
		h.consumed = 0
	}
}

// detachHooks disables the setters of every component in a deleted subtree.
func detachHooks(f *Fiber) {
	f.Walk(func(n *Fiber, _ int) bool {
		if d, ok := n.data.(*componentData); ok {
			for _, h := range d.hooks {
				h.cell.detached = true
				h.cell.queue = nil
			}
		}
		return true
	})
}
