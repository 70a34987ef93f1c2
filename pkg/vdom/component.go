package vdom

// Scope is handed to a component's render function by the renderer. Hooks
// take it as their first argument so they can find the component's state
// slots. A Scope is only valid for the duration of the render call that
// received it.
type Scope interface {
	// Component returns the definition being rendered.
	Component() *Component
}

// RenderFunc renders a component from its props to exactly one node.
type RenderFunc func(s Scope, props Props) *VNode

// Component is a named component definition. Two component nodes have the
// same type only if they point at the same *Component, so definitions are
// declared once, usually as package-level variables:
//
//	var Counter = vdom.Define("Counter", func(s vdom.Scope, p vdom.Props) *vdom.VNode {
//	    count, set := fiber.UseState(s, 0)
//	    inc := func() { set(func(n int) int { return n + 1 }) }
//	    return Button(OnClick(inc), Textf("%d", count))
//	})
type Component struct {
	Name   string
	Render RenderFunc
}

// Define creates a component definition.
func Define(name string, render RenderFunc) *Component {
	return &Component{Name: name, Render: render}
}

// Comp creates a component node. Arguments follow the element factory
// conventions: Attr and EventHandler become props, nodes and strings become
// children, which the component receives under Props[ChildrenKey].
func Comp(def *Component, args ...any) *VNode {
	el := createElement("", args)
	props := el.Props
	if len(el.Children) > 0 {
		props[ChildrenKey] = el.Children
	}
	return &VNode{
		Kind:  KindComponent,
		Props: props,
		Comp:  def,
	}
}
