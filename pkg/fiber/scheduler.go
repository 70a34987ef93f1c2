package fiber

import (
	"fmt"
	"runtime/debug"

	verrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/sched"
)

// The engine is Idle when wip is nil and Building otherwise. While Building
// it holds at most one idle callback request; arm is a no-op if one is
// outstanding or the work loop is already running on this goroutine.

func (e *Engine) arm() {
	if e.armed || e.working {
		return
	}
	e.armed = true
	e.sched.RequestIdle(e.onIdle)
}

func (e *Engine) onIdle(d sched.Deadline) {
	e.armed = false
	e.work(d)
}

func (e *Engine) shouldYield(d sched.Deadline) bool {
	return d != nil && d.TimeRemaining() < e.cfg.YieldThreshold
}

// work performs units of the current pass until it commits, fails, or the
// deadline runs low. A callback that finds no pass exits without doing
// anything. Requests made by OnCommit or OnError callbacks are picked up by
// the same loop.
func (e *Engine) work(d sched.Deadline) {
	if e.working {
		return
	}
	e.working = true
	defer func() {
		e.working = false
		e.rendering = false
		e.scope = nil

		// Component panics are recovered by callRender, so a panic here
		// came from the host or from a commit callback.
		if r := recover(); r != nil {
			if e.pass == nil {
				panic(r)
			}
			e.logger.Error("panic during render pass",
				"gen", e.gen,
				"panic", r,
				"stack", string(debug.Stack()))
			e.fail(verrors.New("E024").
				WithDetail("The host panicked; the pass was abandoned.").
				Wrap(fmt.Errorf("panic: %v", r)))
		}
	}()

	for e.wip != nil {
		if e.next == nil {
			e.commit()
			continue
		}

		gen := e.gen
		e.rendering = true
		next, err := e.performUnit(e.next)
		e.rendering = false

		if e.gen != gen {
			// A component set another component's state while rendering,
			// which restarted the pass.
			if e.renderPhaseUpdates > e.cfg.MaxRenderPhaseUpdates {
				e.fail(verrors.New("E020").WithDetailf(
					"state of other components was set during render %d times in a row",
					e.renderPhaseUpdates))
			}
			continue
		}
		if err != nil {
			e.fail(err)
			continue
		}

		e.next = next
		if e.next != nil && e.shouldYield(d) {
			e.pass.stats.Yields++
			e.cfg.Metrics.Yield()
			e.logger.Debug("pass yielded", "gen", e.gen, "units", e.pass.stats.Units)
			e.working = false
			e.arm()
			return
		}
	}
}
