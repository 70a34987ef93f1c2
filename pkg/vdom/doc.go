// Package vdom builds immutable node trees for the fiber renderer.
//
// A VNode describes one position in the UI: an element with a tag, a text
// node, or a function component. Trees are built fresh on every render with
// variadic factory functions and are never modified afterwards:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    Input(OnInput(handleInput)),
//	    Comp(Counter, Prop("start", 3)),
//	)
//
// # Props
//
// Props holds attributes and event handlers. Keys starting with "on" are
// event handlers; the renderer registers them as listeners named by the rest
// of the key in lower case. Text nodes keep their content under
// NodeValueKey so it is diffed like any other property.
//
// # Components
//
// Components are declared once with Define and referenced with Comp. A
// component's render function receives a Scope for hooks and its props, and
// returns exactly one node.
package vdom
