// Package fiber is an incremental renderer: it turns a vdom tree into a
// host tree (see package host) and keeps the two in sync as the vdom tree
// or component state changes.
//
// # Passes
//
// Every Render call and every state update starts a pass. A pass builds a
// new fiber tree one fiber at a time, matching each position against the
// tree committed last, and stops to wait for the next idle slice whenever
// the scheduler's deadline runs low. When the tree is complete it is
// committed in one synchronous step: deleted nodes are removed, new nodes
// are appended and changed properties and listeners are patched.
//
//	h := memhost.New()
//	e := fiber.New(h, &sched.Immediate{})
//	pass := e.Render(vdom.H1(vdom.Text("hello")), h.Root())
//	<-pass.Done()
//
// Only one pass exists at a time. A Render made while a pass is building
// discards it (its Pass completes with ErrSuperseded) and starts over from
// the committed tree, so the latest request always wins. A state update
// made while a pass is building also starts the build over, but it keeps
// the pass: the pass commits the latest request with the new state.
//
// # Matching
//
// Children are matched by position only. Two nodes at the same position
// with the same type (tag, text, or *vdom.Component) update in place; any
// other difference removes the old node and creates a new one. There are no
// keys, so reordering same-typed children rewrites their properties rather
// than moving host nodes.
//
// # Hooks
//
// Components keep state in positional hook slots:
//
//	var Counter = vdom.Define("Counter", func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
//	    count, set := fiber.UseState(s, 0)
//	    return vdom.Button(
//	        vdom.OnClick(func() { set(func(n int) int { return n + 1 }) }),
//	        vdom.Textf("%d", count),
//	    )
//	})
//
// Hooks must be called unconditionally and in the same order on every
// render; a change fails the pass with ErrHookOrder. Calling a setter
// re-renders the whole tree from the root.
//
// # Errors
//
// A pass fails with ErrMalformedTree, ErrOrphanedCommit or ErrHookOrder
// before anything reaches the host. Host errors during commit abort the
// commit only when the host implements host.FatalReporter and reports its
// failures as fatal; otherwise the commit completes and the failures are
// joined into an ErrHostMutation.
package fiber
