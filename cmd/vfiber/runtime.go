package main

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/host/memhost"
	"github.com/vango-dev/fiber/pkg/host/patchhost"
	"github.com/vango-dev/fiber/pkg/protocol"
	"github.com/vango-dev/fiber/pkg/sched"
	"github.com/vango-dev/fiber/pkg/telemetry"
	"github.com/vango-dev/fiber/pkg/vdom"
)

var (
	errNoTree   = stderrors.New("nothing committed yet")
	errLoopFull = stderrors.New("scheduler loop is busy")
)

// runtime wires one engine to an in-memory host. Mutations pass through a
// patch recorder so every commit is also available as a protocol frame.
type runtime struct {
	logger   *slog.Logger
	mem      *memhost.Host
	rec      *patchhost.Recorder
	loop     *sched.Loop
	engine   *fiber.Engine
	registry *prometheus.Registry

	// onFrame receives the frame of every commit and failed pass. It runs
	// on the loop goroutine.
	onFrame func(*protocol.Frame)
	// onCommit runs after onFrame.
	onCommit func(fiber.CommitStats)
}

func newRuntime(cfg *config.Config, logger *slog.Logger) *runtime {
	rt := &runtime{
		logger:   logger,
		mem:      memhost.New(),
		registry: prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rt.rec = patchhost.NewRecorder(rt.mem, rt.mem.Root())
	rt.loop = sched.NewLoop(sched.LoopConfig{
		SliceBudget: cfg.SliceBudget(),
		MaxQueue:    cfg.Loop.MaxQueue,
		Logger:      logger,
	})
	rt.engine = fiber.New(rt.rec, rt.loop,
		fiber.WithLogger(logger),
		fiber.WithYieldThreshold(cfg.YieldThreshold()),
		fiber.WithMaxRenderPhaseUpdates(cfg.Engine.MaxRenderPhaseUpdates),
		fiber.WithMetrics(telemetry.NewMetrics(telemetry.WithRegistry(rt.registry))),
		fiber.WithOnCommit(rt.committed),
		fiber.WithOnError(rt.failed),
	)
	return rt
}

func (rt *runtime) committed(stats fiber.CommitStats) {
	if frame := rt.rec.Flush(stats.Generation); frame != nil && rt.onFrame != nil {
		rt.onFrame(frame)
	}
	if rt.onCommit != nil {
		rt.onCommit(stats)
	}
}

func (rt *runtime) failed(err error) {
	// Mutations of a fatal commit were applied; ship them before the error.
	if frame := rt.rec.Flush(rt.engine.Generation()); frame != nil && rt.onFrame != nil {
		rt.onFrame(frame)
	}
	if rt.onFrame != nil {
		rt.onFrame(protocol.NewErrorFrame(err.Error()))
	}
}

// render requests a pass for node and runs the loop until it settles. It
// must not be called while Run is active.
func (rt *runtime) render(node *vdom.VNode) error {
	var p *fiber.Pass
	rt.loop.Post(func() {
		p = rt.engine.Render(node, rt.mem.Root())
	})
	rt.loop.RunUntilIdle()
	if p == nil {
		return errLoopFull
	}
	return p.Err()
}

// do runs fn on the loop and waits for the loop to go idle.
func (rt *runtime) do(fn func()) {
	rt.loop.Post(fn)
	rt.loop.RunUntilIdle()
}

// tree returns the committed fiber tree. It is safe to call from any
// goroutine while Run is active.
func (rt *runtime) tree(ctx context.Context) (*fiber.TreeNode, error) {
	res := make(chan *fiber.TreeNode, 1)
	ok := rt.loop.Post(func() {
		var t *fiber.TreeNode
		if cur := rt.engine.Current(); cur != nil {
			t = cur.Tree()
		}
		res <- t
	})
	if !ok {
		return nil, errLoopFull
	}
	select {
	case t := <-res:
		if t == nil {
			return nil, errNoTree
		}
		return t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// html returns the host tree as HTML. The memhost snapshot takes its own
// lock, so this does not need the loop.
func (rt *runtime) html(context.Context) (string, error) {
	return rt.mem.Snapshot(), nil
}
