package main

import (
	"strconv"

	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// mirror is the classic fiber demo: an input whose value is mirrored into
// a heading by re-rendering the whole tree on every keystroke. It goes
// through Engine.Render, not hooks, so its handler must be created once.
type mirror struct {
	rt      *runtime
	onInput func(string)
}

func newMirror(rt *runtime) *mirror {
	m := &mirror{rt: rt}
	m.onInput = m.handleInput
	return m
}

func (m *mirror) handleInput(value string) {
	m.rt.engine.Render(m.view(value), m.rt.mem.Root())
}

func (m *mirror) view(value string) *vdom.VNode {
	return vdom.Div(
		vdom.ID("app"),
		vdom.Input(vdom.OnInput(m.onInput)),
		vdom.H1(value),
		vdom.Comp(counter),
	)
}

// counter is a stateful component; clicking its button re-renders the tree.
var counter = vdom.Define("Counter", func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
	count, set := fiber.UseState(s, 0)
	clicks := fiber.UseRef[func()](s, nil)
	if clicks.Current == nil {
		clicks.Current = func() { set(func(n int) int { return n + 1 }) }
	}
	return vdom.Button(
		vdom.Class("counter"),
		vdom.OnClick(clicks.Current),
		vdom.Textf("clicked %d times", count),
	)
})

// row is one line of the bench list.
var row = vdom.Define("Row", func(_ vdom.Scope, p vdom.Props) *vdom.VNode {
	i, _ := p.Get("index").(int)
	label := p.String("label")
	return vdom.Li(
		vdom.Data("index", strconv.Itoa(i)),
		vdom.Span(label),
	)
})

// list renders rows rows whose labels depend on tick, so every pass after
// the first updates each row's text.
func list(rows, tick int) *vdom.VNode {
	items := make([]*vdom.VNode, rows)
	for i := range items {
		label := "row " + strconv.Itoa(i)
		if (i+tick)%3 == 0 {
			label += " *"
		}
		items[i] = vdom.Comp(row, vdom.Prop("index", i), vdom.Prop("label", label))
	}
	return vdom.Div(vdom.ID("bench"), vdom.Ul(items))
}
