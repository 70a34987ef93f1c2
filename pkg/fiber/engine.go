package fiber

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	verrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/sched"
	"github.com/vango-dev/fiber/pkg/telemetry"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// CommitStats describes one committed pass.
type CommitStats struct {
	Generation uint64
	Reason     string // "render" or "state"

	Placements int
	Updates    int
	Deletions  int
	Mutations  int // Host calls made by the pass, including node creation
	HostErrors int // Host calls that failed without aborting the commit

	Units  int // Fibers processed
	Yields int // Times the pass waited for another idle slice

	RenderDuration time.Duration // Request to start of commit
	CommitDuration time.Duration
}

// Pass is the handle of one render request.
type Pass struct {
	gen       uint64
	reason    string
	start     time.Time
	done      chan struct{}
	err       error
	committed bool
	stats     CommitStats

	ctx  context.Context
	span trace.Span
}

func failedPass(err error) *Pass {
	p := &Pass{done: make(chan struct{}), err: err}
	close(p.done)
	return p
}

// Done is closed when the pass has committed, failed or been superseded.
func (p *Pass) Done() <-chan struct{} {
	return p.done
}

// Err returns the outcome of the pass once Done is closed: nil on a clean
// commit, ErrSuperseded if a newer request replaced it, or the failure.
// A commit on a best-effort host that hit mutation errors is still
// committed; Err then matches ErrHostMutation and Committed is true.
func (p *Pass) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Generation returns the request number of the pass. Requests rejected
// before starting have generation 0.
func (p *Pass) Generation() uint64 {
	return p.gen
}

// Committed reports whether the pass reached the host tree.
func (p *Pass) Committed() bool {
	select {
	case <-p.done:
		return p.committed
	default:
		return false
	}
}

// Stats returns the commit statistics of a committed pass.
func (p *Pass) Stats() CommitStats {
	select {
	case <-p.done:
		return p.stats
	default:
		return CommitStats{}
	}
}

// Engine renders a vdom tree into a host tree incrementally.
//
// An engine is not safe for concurrent use. Render, state setters and the
// scheduler's idle callbacks must all run on one goroutine; with a
// sched.Loop, use Loop.Post to hand requests from other goroutines to it.
type Engine struct {
	id     string
	host   host.Host
	sched  sched.Scheduler
	cfg    Config
	logger *slog.Logger
	fatal  bool

	// Latest request.
	node      *vdom.VNode
	container host.Handle

	current   *Fiber
	wip       *Fiber
	next      *Fiber
	deletions []*Fiber
	hostErrs  []error

	gen  uint64
	pass *Pass

	armed              bool
	working            bool
	rendering          bool
	renderPhaseUpdates int
	scope              *scope // component being rendered
}

// New creates an engine that mutates h and yields through s. A nil s runs
// every pass to completion synchronously.
func New(h host.Host, s sched.Scheduler, opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.Tracer()
	}
	if cfg.MaxRenderPhaseUpdates <= 0 {
		cfg.MaxRenderPhaseUpdates = DefaultConfig().MaxRenderPhaseUpdates
	}
	if s == nil {
		s = &sched.Immediate{}
	}

	id := uuid.NewString()
	return &Engine{
		id:     id,
		host:   h,
		sched:  s,
		cfg:    cfg,
		logger: cfg.Logger.With("component", "fiber", "engine", id),
		fatal:  host.IsFatal(h),
	}
}

// ID returns the engine's instance ID, used in logs and spans.
func (e *Engine) ID() string {
	return e.id
}

// Current returns the root of the last committed tree, or nil.
func (e *Engine) Current() *Fiber {
	return e.current
}

// Building reports whether a pass is in progress.
func (e *Engine) Building() bool {
	return e.wip != nil
}

// Generation returns the number of requests started so far.
func (e *Engine) Generation() uint64 {
	return e.gen
}

// Render requests that container show node. The work runs in idle slices
// granted by the scheduler; the returned Pass completes when the result is
// committed.
//
// A Render made while another pass is building replaces it: the old pass
// completes with ErrSuperseded and nothing of it is committed. A state
// update does not replace the pass; it restarts the build of the same
// request and the pass commits as usual. Rendering
// into a different container than the previous request removes the
// previous tree from its container.
func (e *Engine) Render(node *vdom.VNode, container host.Handle) *Pass {
	if container == nil {
		err := verrors.New("E021").WithDetail("Render was called with a nil container; nothing was mutated.")
		e.report(err)
		return failedPass(err)
	}
	if node == nil {
		err := verrors.New("E020").WithDetail("Render was called with a nil node.")
		e.report(err)
		return failedPass(err)
	}

	e.node, e.container = node, container
	if !e.rendering {
		e.renderPhaseUpdates = 0
	}
	return e.restart("render")
}

// Flush runs the in-flight pass to completion on the calling goroutine,
// ignoring deadlines, and returns its error. Idle callbacks already
// requested from the scheduler find nothing to do when they run.
func (e *Engine) Flush() error {
	p := e.pass
	if p == nil {
		return nil
	}
	e.work(nil)
	return p.Err()
}

// restart discards any tree under construction and starts building again
// from the latest request, anchored at the committed tree. Only a new Render
// supersedes the in-flight Pass; a state update rebuilds the same request
// with the new state, so that Pass continues and reports the commit.
func (e *Engine) restart(reason string) *Pass {
	if e.container == nil {
		err := verrors.New("E021").WithDetail("The request has no container; nothing was mutated.")
		e.report(err)
		return failedPass(err)
	}

	p := e.pass
	if p != nil && reason == "render" && !e.rendering {
		e.logger.Debug("pass superseded", "gen", p.gen, "by", reason)
		e.finish(p, ErrSuperseded, telemetry.OutcomeSuperseded)
		p = nil
	}

	e.gen++
	root := newRoot(e.node, e.container)
	e.deletions = nil
	e.hostErrs = nil
	if cur := e.current; cur != nil {
		if host.Same(cur.Handle(), e.container) {
			root.alternate = cur
		} else {
			for c := cur.child; c != nil; c = c.sibling {
				e.deletions = append(e.deletions, c)
			}
		}
	}
	e.wip, e.next = root, root

	if p == nil {
		p = &Pass{
			reason: reason,
			start:  time.Now(),
			done:   make(chan struct{}),
		}
		p.stats.Reason = reason
		p.ctx, p.span = telemetry.StartPass(context.Background(), e.cfg.Tracer, e.id, e.gen, reason)
		e.pass = p
		e.cfg.Metrics.PassStarted()
		e.logger.Debug("pass started", "gen", e.gen, "reason", reason)
	}
	p.gen = e.gen
	p.stats.Generation = e.gen

	e.arm()
	return p
}

// requestRerender re-renders the whole tree from the latest request. It is
// the only way state changes reach the screen.
func (e *Engine) requestRerender() *Pass {
	if e.node == nil || e.container == nil {
		return nil
	}
	if e.rendering {
		e.renderPhaseUpdates++
	}
	return e.restart("state")
}

// enqueue records a state update and schedules a re-render.
func (e *Engine) enqueue(c *cell, update func(any) any) {
	if c.detached {
		e.logger.Debug("state update on a removed component ignored")
		return
	}
	c.queue = append(c.queue, update)
	if s := e.scope; s != nil && s.owns(c) {
		s.again = true
		return
	}
	e.requestRerender()
}

// finish completes p.
func (e *Engine) finish(p *Pass, err error, outcome string) {
	p.err = err
	telemetry.End(p.span, err, attribute.Int64("fiber.generation", int64(p.gen)))
	e.cfg.Metrics.PassFinished(outcome, time.Since(p.start))
	close(p.done)
	if e.pass == p {
		e.pass = nil
	}
}

// fail abandons the pass under construction.
func (e *Engine) fail(err error) {
	p := e.pass
	e.wip, e.next = nil, nil
	e.deletions = nil
	e.hostErrs = nil
	e.renderPhaseUpdates = 0

	if p != nil {
		e.finish(p, err, telemetry.OutcomeFailed)
	}
	e.report(err)
}

// report logs err and hands it to OnError.
func (e *Engine) report(err error) {
	attrs := []any{"error", err}
	if ve, ok := err.(*verrors.Error); ok {
		attrs = append(attrs, "code", ve.Code)
		if len(ve.Path) > 0 {
			attrs = append(attrs, "path", ve.PathString())
		}
	}
	e.logger.Error("render pass failed", attrs...)
	if e.cfg.OnError != nil {
		e.cfg.OnError(err)
	}
}
