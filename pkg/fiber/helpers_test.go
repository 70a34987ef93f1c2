package fiber

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/fiber/pkg/host/memhost"
	"github.com/vango-dev/fiber/pkg/protocol"
	"github.com/vango-dev/fiber/pkg/sched"
	"github.com/vango-dev/fiber/pkg/vdom"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEngine returns a synchronous engine over a fresh memhost.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memhost.Host) {
	t.Helper()
	h := memhost.New()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(h, &sched.Immediate{}, opts...), h
}

// mustRender renders synchronously and fails the test on error.
func mustRender(t *testing.T, e *Engine, node *vdom.VNode, container any) *Pass {
	t.Helper()
	p := e.Render(node, container)
	select {
	case <-p.Done():
	default:
		t.Fatal("pass did not complete synchronously")
	}
	if err := p.Err(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return p
}

// opKinds returns the kinds of the logged mutations.
func opKinds(h *memhost.Host) []protocol.MutationOp {
	var out []protocol.MutationOp
	for _, op := range h.Ops() {
		out = append(out, op.Kind)
	}
	return out
}

// click dispatches a click on the first node with tag.
func click(t *testing.T, h *memhost.Host, tag string) {
	t.Helper()
	n := h.Root().Find(tag)
	if n == nil {
		t.Fatalf("no <%s> in tree: %s", tag, h.Snapshot())
	}
	if err := h.Dispatch(n, "click", nil); err != nil {
		t.Fatal(err)
	}
}

// counter renders a button showing a count that increments on click.
var counter = vdom.Define("Counter", func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
	count, set := UseState(s, 0)
	return vdom.Button(
		vdom.OnClick(func() { set(func(n int) int { return n + 1 }) }),
		vdom.Textf("%d", count),
	)
})
