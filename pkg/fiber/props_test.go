package fiber

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/fiber/pkg/vdom"
)

// opSummary is a comparable view of a propOp; handler values are not.
type opSummary struct {
	Kind string
	Name string
}

func summarize(ops []propOp) []opSummary {
	var out []opSummary
	for _, op := range ops {
		out = append(out, opSummary{op.kind.String(), op.name})
	}
	return out
}

func TestDiffProps(t *testing.T) {
	f1 := func() {}
	f2 := func() {}

	tests := []struct {
		name string
		prev vdom.Props
		next vdom.Props
		want []opSummary
	}{
		{
			name: "no change",
			prev: vdom.Props{"id": "a", "onclick": f1},
			next: vdom.Props{"id": "a", "onclick": f1},
		},
		{
			name: "changed value",
			prev: vdom.Props{"title": "A"},
			next: vdom.Props{"title": "B"},
			want: []opSummary{{"set_property", "title"}},
		},
		{
			name: "removed and added",
			prev: vdom.Props{"b": 1, "a": 1},
			next: vdom.Props{"c": 1},
			want: []opSummary{
				{"clear_property", "a"},
				{"clear_property", "b"},
				{"set_property", "c"},
			},
		},
		{
			name: "phase order",
			prev: vdom.Props{"onclick": f1, "old": 1, "keep": 1},
			next: vdom.Props{"onclick": f2, "new": 2, "keep": 2},
			want: []opSummary{
				{"remove_listener", "click"},
				{"clear_property", "old"},
				{"set_property", "keep"},
				{"set_property", "new"},
				{"add_listener", "click"},
			},
		},
		{
			name: "listener removed",
			prev: vdom.Props{"onInput": f1},
			next: vdom.Props{},
			want: []opSummary{{"remove_listener", "input"}},
		},
		{
			name: "children ignored",
			prev: vdom.Props{vdom.ChildrenKey: []*vdom.VNode{vdom.Text("a")}},
			next: vdom.Props{vdom.ChildrenKey: []*vdom.VNode{vdom.Text("b")}},
		},
		{
			name: "nil handler skipped",
			prev: vdom.Props{"onclick": nil},
			next: vdom.Props{"onclick": f1},
			want: []opSummary{{"add_listener", "click"}},
		},
		{
			name: "initial sync",
			prev: nil,
			next: vdom.Props{"onclick": f1, "class": "x"},
			want: []opSummary{
				{"set_property", "class"},
				{"add_listener", "click"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarize(diffProps(tt.prev, tt.next))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("diffProps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiffPropsHandlerValues(t *testing.T) {
	f1 := func() {}
	f2 := func() {}
	ops := diffProps(vdom.Props{"onclick": f1}, vdom.Props{"onclick": f2})
	if len(ops) != 2 {
		t.Fatalf("len(ops) = %d, want 2", len(ops))
	}
	if _, ok := ops[0].value.(func()); !ok || ops[0].kind != opRemoveListener {
		t.Errorf("ops[0] = %+v, want removal of the old handler", ops[0])
	}
	if ops[1].kind != opAddListener {
		t.Errorf("ops[1].kind = %v, want add_listener", ops[1].kind)
	}
}

func TestOpKindString(t *testing.T) {
	if opAppendChild.String() != "append_child" || opKind(99).String() != "unknown" {
		t.Error("opKind.String")
	}
}
