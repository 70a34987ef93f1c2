package fiber

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	verrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/telemetry"
)

// hostOp is one planned host call.
type hostOp struct {
	kind   opKind
	fiber  *Fiber
	target host.Handle
	parent host.Handle // append/remove only
	name   string
	value  any
}

// commit applies the finished tree to the host and makes it current.
func (e *Engine) commit() {
	p, root := e.pass, e.wip
	start := time.Now()
	_, span := telemetry.StartCommit(p.ctx, e.cfg.Tracer, p.gen)

	ops, err := e.plan(root)
	if err != nil {
		telemetry.End(span, err)
		e.fail(err)
		return
	}
	for _, op := range ops {
		if err := e.exec(op); err != nil {
			// Fatal host: the host tree is now partially updated and the
			// committed tree is left as it was.
			telemetry.End(span, err)
			e.fail(err)
			return
		}
	}

	deletions, hostErrs := e.deletions, e.hostErrs
	e.current = root
	e.wip, e.next = nil, nil
	e.deletions, e.hostErrs = nil, nil
	e.renderPhaseUpdates = 0

	for _, d := range deletions {
		d.effect = EffectDeletion
		detachHooks(d)
	}
	root.Walk(func(f *Fiber, _ int) bool {
		if d, ok := f.data.(*componentData); ok {
			commitHooks(d)
		}
		f.alternate = nil
		return true
	})

	stats := p.stats
	stats.HostErrors = len(hostErrs)
	stats.RenderDuration = start.Sub(p.start)
	stats.CommitDuration = time.Since(start)
	p.stats = stats
	p.committed = true

	var herr error
	if len(hostErrs) > 0 {
		herr = verrors.New("E024").
			WithDetailf("%d host mutations failed; the rest of the commit was applied", len(hostErrs)).
			Wrap(errors.Join(hostErrs...))
	}
	telemetry.End(span, herr,
		attribute.Int("fiber.mutations", stats.Mutations),
		attribute.Int("fiber.placements", stats.Placements),
		attribute.Int("fiber.updates", stats.Updates),
		attribute.Int("fiber.deletions", stats.Deletions),
	)
	e.cfg.Metrics.Commit(stats.CommitDuration)
	e.logger.Debug("committed",
		"gen", p.gen,
		"units", stats.Units,
		"yields", stats.Yields,
		"mutations", stats.Mutations,
		"duration", stats.CommitDuration)

	e.finish(p, herr, telemetry.OutcomeCommitted)
	if herr != nil {
		e.logger.Warn("commit applied with host errors", "gen", p.gen, "errors", len(hostErrs))
		if e.cfg.OnError != nil {
			e.cfg.OnError(herr)
		}
	}
	if e.cfg.OnCommit != nil {
		e.cfg.OnCommit(stats)
	}
}

// plan turns the finished tree into an ordered list of host calls: first
// the removals of deleted subtrees, then a pre-order walk placing new nodes
// and diffing updated ones. Every call is validated before any is made.
func (e *Engine) plan(root *Fiber) ([]hostOp, error) {
	var ops []hostOp
	stats := &e.pass.stats

	for _, d := range e.deletions {
		parent := hostParent(d)
		if parent == nil {
			return nil, orphaned(d)
		}
		for _, n := range hostNodes(d) {
			ops = append(ops, hostOp{kind: opRemoveChild, fiber: n, target: n.Handle(), parent: parent.Handle()})
		}
		stats.Deletions++
	}

	var err error
	root.Walk(func(f *Fiber, _ int) bool {
		if err != nil {
			return false
		}
		if f == root {
			return true
		}
		h := f.Handle()
		switch f.effect {
		case EffectPlacement:
			stats.Placements++
			if f.Kind() == KindComponent {
				return true
			}
			parent := hostParent(f)
			if h == nil || parent == nil {
				err = orphaned(f)
				return false
			}
			ops = append(ops, hostOp{kind: opAppendChild, fiber: f, target: h, parent: parent.Handle()})
		case EffectUpdate:
			stats.Updates++
			if f.Kind() == KindComponent {
				return true
			}
			if h == nil || hostParent(f) == nil {
				err = orphaned(f)
				return false
			}
			for _, po := range diffProps(f.alternate.props, f.props) {
				ops = append(ops, hostOp{kind: po.kind, fiber: f, target: h, name: po.name, value: po.value})
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

func orphaned(f *Fiber) error {
	return verrors.New("E021").WithPath(f.Path()).
		WithDetailf("%s has no ancestor owning a host node", f.Name())
}

// exec performs one host call. Failures are fatal to the pass only if the
// host says so; otherwise they are logged, collected and the pass goes on.
func (e *Engine) exec(op hostOp) error {
	var err error
	switch op.kind {
	case opSetProperty:
		err = e.host.SetProperty(op.target, op.name, op.value)
	case opClearProperty:
		err = e.host.ClearProperty(op.target, op.name)
	case opAddListener:
		err = e.host.AddListener(op.target, op.name, op.value)
	case opRemoveListener:
		err = e.host.RemoveListener(op.target, op.name, op.value)
	case opAppendChild:
		err = e.host.AppendChild(op.parent, op.target)
	case opRemoveChild:
		err = e.host.RemoveChild(op.parent, op.target)
	}
	if e.pass != nil {
		e.pass.stats.Mutations++
	}
	e.cfg.Metrics.Mutation(op.kind.String(), err != nil)
	if err == nil {
		return nil
	}

	herr := verrors.New("E024").WithPath(op.fiber.Path()).WithDetailf("%s %q", op.kind, op.name).Wrap(err)
	if e.fatal {
		return herr
	}
	e.hostErrs = append(e.hostErrs, herr)
	e.logger.Warn("host mutation failed",
		"op", op.kind.String(),
		"name", op.name,
		"path", herr.PathString(),
		"error", err)
	return nil
}
