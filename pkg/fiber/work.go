package fiber

import (
	"errors"
	"fmt"
	"runtime/debug"

	verrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// errNilHandle is wrapped when a host creates a node without error but
// returns no handle.
var errNilHandle = errors.New("host returned a nil handle")

// performUnit expands one fiber and returns the next one in pre-order.
func (e *Engine) performUnit(f *Fiber) (*Fiber, error) {
	e.pass.stats.Units++
	e.cfg.Metrics.Unit()

	var err error
	switch d := f.data.(type) {
	case *rootData:
		err = e.reconcileChildren(f, f.children)
	case *hostData:
		if d.handle == nil {
			err = e.createHost(f)
		}
		if err == nil {
			err = e.reconcileChildren(f, f.children)
		}
	case *textData:
		if d.handle == nil {
			err = e.createHost(f)
		}
	case *componentData:
		err = e.renderComponent(f, d)
	}
	if err != nil {
		return nil, err
	}
	return nextUnit(f, e.wip), nil
}

// createHost creates the host node of a new host or text fiber and syncs
// its props. The node stays detached until commit.
func (e *Engine) createHost(f *Fiber) error {
	var (
		h    host.Handle
		err  error
		kind opKind
		base vdom.Props
	)
	switch d := f.data.(type) {
	case *hostData:
		kind = opCreateNode
		h, err = e.host.CreateNode(d.tag)
	case *textData:
		kind = opCreateText
		h, err = e.host.CreateText(textOf(f.props))
		if v, ok := f.props[vdom.NodeValueKey]; ok {
			base = vdom.Props{vdom.NodeValueKey: v}
		}
	}
	e.pass.stats.Mutations++
	e.cfg.Metrics.Mutation(kind.String(), err != nil || h == nil)
	if err == nil && h == nil {
		err = errNilHandle
	}
	if err != nil {
		return verrors.New("E024").WithPath(f.Path()).WithDetailf("%s failed", kind).Wrap(err)
	}
	f.setHandle(h)

	for _, po := range diffProps(base, f.props) {
		op := hostOp{kind: po.kind, fiber: f, target: h, name: po.name, value: po.value}
		if err := e.exec(op); err != nil {
			return err
		}
	}
	return nil
}

// renderComponent calls the component's render function and reconciles the
// node it returns. A render that sets its own state is run again, up to
// MaxRenderPhaseUpdates times.
func (e *Engine) renderComponent(f *Fiber, d *componentData) error {
	var prev []*hook
	if f.alternate != nil {
		if ad, ok := f.alternate.data.(*componentData); ok {
			prev = ad.hooks
		}
	}

	var retry []*hook
	for attempt := 1; ; attempt++ {
		s := &scope{engine: e, fiber: f, data: d, prev: prev, retry: retry}
		d.hooks = nil

		gen := e.gen
		e.scope = s
		node, err := e.callRender(f, d, s)
		e.scope = nil
		s.done = true
		if err != nil {
			return err
		}
		if e.gen != gen {
			// Superseded while rendering; the new pass redoes this work.
			return nil
		}
		if s.err != nil {
			return s.err
		}

		if !s.again {
			if f.alternate != nil && len(d.hooks) != len(prev) {
				return verrors.New("E022").WithPath(f.Path()).
					WithDetailf("%d hooks on the previous render, %d now", len(prev), len(d.hooks))
			}
			if node == nil {
				return malformed(f, "component %q rendered nil", d.def.Name)
			}
			return e.reconcileChildren(f, []*vdom.VNode{node})
		}
		if attempt >= e.cfg.MaxRenderPhaseUpdates {
			return malformed(f, "component %q set its own state on %d renders in a row", d.def.Name, attempt)
		}
		retry = d.hooks
	}
}

func (e *Engine) callRender(f *Fiber, d *componentData, s *scope) (node *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("component panic",
				"component", d.def.Name,
				"panic", r,
				"stack", string(debug.Stack()))
			cause := error(ErrMalformedTree)
			if rerr, ok := r.(error); ok {
				cause = fmt.Errorf("%w: %w", ErrMalformedTree, rerr)
			}
			err = verrors.New("E026").
				WithPath(f.Path()).
				WithDetail(fmt.Sprint(r)).
				Wrap(cause)
		}
	}()
	return d.def.Render(s, f.props), nil
}
