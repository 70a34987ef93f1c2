package fiber

import "github.com/vango-dev/fiber/pkg/vdom"

// reconcileChildren builds wip's child chain from elements, matching them by
// position against the children of wip's alternate.
//
// A same-typed pair becomes an Update that keeps the old host handle. A new
// element with no same-typed counterpart becomes a Placement. An old fiber
// with no same-typed counterpart is queued for deletion and never linked
// into the new chain; it is tagged Deletion only when the pass commits, so
// an abandoned pass leaves the committed tree untouched. There are no keys: reordering same-typed
// children produces updates in place, never moves.
func (e *Engine) reconcileChildren(wip *Fiber, elements []*vdom.VNode) error {
	var old *Fiber
	if wip.alternate != nil {
		old = wip.alternate.child
	}

	wip.child = nil
	var prev *Fiber
	for i := 0; i < len(elements) || old != nil; i++ {
		var el *vdom.VNode
		if i < len(elements) {
			el = elements[i]
			if el == nil {
				return malformed(wip, "nil child at index %d", i)
			}
		}

		var nf *Fiber
		same := el != nil && old != nil && sameType(old, el)
		if same {
			nf = update(old, el, wip)
		} else if el != nil {
			var err error
			if nf, err = newFiber(el, wip); err != nil {
				return err
			}
		}
		if old != nil && !same {
			e.deletions = append(e.deletions, old)
		}

		if old != nil {
			old = old.sibling
		}
		if nf == nil {
			continue
		}
		if prev == nil {
			wip.child = nf
		} else {
			prev.sibling = nf
		}
		prev = nf
	}
	return nil
}
