package memhost

import (
	"errors"
	"testing"

	"github.com/vango-dev/fiber/pkg/protocol"
)

func build(t *testing.T, h *Host) (*Node, *Node) {
	t.Helper()
	div, err := h.CreateNode("div")
	if err != nil {
		t.Fatal(err)
	}
	txt, err := h.CreateText("hi")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.AppendChild(div, txt); err != nil {
		t.Fatal(err)
	}
	if err := h.AppendChild(h.Root(), div); err != nil {
		t.Fatal(err)
	}
	return div.(*Node), txt.(*Node)
}

func TestBuildAndSnapshot(t *testing.T) {
	h := New()
	div, txt := build(t, h)

	if err := h.SetProperty(div, "id", "main"); err != nil {
		t.Fatal(err)
	}
	if err := h.SetProperty(div, "hidden", true); err != nil {
		t.Fatal(err)
	}
	if got, want := h.Snapshot(), `<div hidden id="main">hi</div>`; got != want {
		t.Errorf("Snapshot() = %q, want %q", got, want)
	}
	if !txt.Attached() {
		t.Error("text node should be attached")
	}
	if got := h.Root().TextContent(); got != "hi" {
		t.Errorf("TextContent() = %q, want %q", got, "hi")
	}
	if got := h.Count(protocol.OpAppendChild); got != 2 {
		t.Errorf("Count(AppendChild) = %d, want 2", got)
	}
}

func TestClearAndRemove(t *testing.T) {
	h := New()
	div, txt := build(t, h)
	_ = h.SetProperty(div, "title", "x")

	if err := h.ClearProperty(div, "title"); err != nil {
		t.Fatal(err)
	}
	if _, ok := div.Props["title"]; ok {
		t.Error("title should be cleared")
	}
	if err := h.RemoveChild(div, txt); err != nil {
		t.Fatal(err)
	}
	if txt.Attached() {
		t.Error("removed node should be detached")
	}
	if err := h.RemoveChild(div, txt); !errors.Is(err, ErrNotChild) {
		t.Errorf("second RemoveChild err = %v, want ErrNotChild", err)
	}
}

func TestAppendMovesAndRejectsCycles(t *testing.T) {
	h := New()
	div, txt := build(t, h)
	span, _ := h.CreateNode("span")

	if err := h.AppendChild(span, txt); err != nil {
		t.Fatal(err)
	}
	if len(div.Children) != 0 {
		t.Errorf("div children = %d, want 0 after move", len(div.Children))
	}
	if err := h.AppendChild(div, h.Root()); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want ErrCycle", err)
	}
}

func TestForeignHandle(t *testing.T) {
	a, b := New(), New()
	n, _ := b.CreateNode("div")
	if err := a.SetProperty(n, "id", "x"); !errors.Is(err, ErrForeignHandle) {
		t.Errorf("err = %v, want ErrForeignHandle", err)
	}
	if err := a.SetProperty("nope", "id", "x"); !errors.Is(err, ErrForeignHandle) {
		t.Errorf("err = %v, want ErrForeignHandle", err)
	}
}

func TestListenersAndDispatch(t *testing.T) {
	h := New()
	div, _ := build(t, h)

	clicks := 0
	var got string
	onClick := func() { clicks++ }
	onInput := func(v string) { got = v }

	_ = h.AddListener(div, "click", onClick)
	_ = h.AddListener(div, "input", onInput)
	if err := h.Dispatch(div, "click", nil); err != nil {
		t.Fatal(err)
	}
	if err := h.Dispatch(div, "input", "abc"); err != nil {
		t.Fatal(err)
	}
	if clicks != 1 || got != "abc" {
		t.Errorf("clicks = %d, input = %q", clicks, got)
	}

	_ = h.RemoveListener(div, "click", onClick)
	if div.Listeners("click") != 0 {
		t.Errorf("Listeners(click) = %d, want 0", div.Listeners("click"))
	}
	_ = h.Dispatch(div, "click", nil)
	if clicks != 1 {
		t.Errorf("clicks = %d after removal, want 1", clicks)
	}

	_ = h.AddListener(div, "odd", 42)
	if err := h.Dispatch(div, "odd", nil); err == nil {
		t.Error("expected error for unsupported handler type")
	}
}

func TestInjectedFailure(t *testing.T) {
	boom := errors.New("boom")
	h := New(WithFatalFailures(), WithFailure(func(op protocol.MutationOp, n *Node, name string) error {
		if op == protocol.OpSetProperty && name == "bad" {
			return boom
		}
		return nil
	}))
	div, _ := build(t, h)

	if err := h.SetProperty(div, "bad", 1); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if err := h.SetProperty(div, "good", 1); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
	if !h.FailuresFatal() {
		t.Error("FailuresFatal() = false")
	}
	if got := h.Count(protocol.OpSetProperty); got != 1 {
		t.Errorf("Count(SetProperty) = %d, want 1 (failed op is not logged)", got)
	}
}

func TestFindAndResetLog(t *testing.T) {
	h := New()
	build(t, h)
	if h.Root().Find("div") == nil {
		t.Error("Find(div) = nil")
	}
	if got := len(h.Root().Descendants()); got != 2 {
		t.Errorf("Descendants() = %d, want 2", got)
	}
	h.ResetLog()
	if len(h.Ops()) != 0 {
		t.Error("ResetLog did not clear the log")
	}
}
