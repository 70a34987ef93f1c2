package fiber

import (
	"fmt"
	"strings"

	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// Kind is the variant of a fiber.
type Kind uint8

const (
	KindRoot      Kind = iota // Render root, owns the container
	KindHost                  // Element, owns a host node
	KindText                  // Text, owns a host text node
	KindComponent             // Component, owns hooks and no host node
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindHost:
		return "Host"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Effect is the host change a fiber requires at commit.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectPlacement
	EffectUpdate
	EffectDeletion
)

// String returns the string representation of the effect.
func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "None"
	case EffectPlacement:
		return "Placement"
	case EffectUpdate:
		return "Update"
	case EffectDeletion:
		return "Deletion"
	default:
		return "Unknown"
	}
}

// Fiber is the engine's record for one position in the rendered tree.
//
// Fibers are linked three ways: parent, first child, next sibling. A fiber
// in a tree under construction also points at the fiber that held the same
// position in the committed tree (its alternate) until that tree is
// committed.
type Fiber struct {
	props    vdom.Props
	children []*vdom.VNode

	parent    *Fiber
	child     *Fiber
	sibling   *Fiber
	alternate *Fiber

	effect Effect
	data   variant
}

// variant holds the kind-specific part of a fiber.
type variant interface {
	kind() Kind
}

type rootData struct {
	container host.Handle
}

type hostData struct {
	tag    string
	handle host.Handle
}

type textData struct {
	handle host.Handle
}

type componentData struct {
	def   *vdom.Component
	hooks []*hook
}

func (*rootData) kind() Kind      { return KindRoot }
func (*hostData) kind() Kind      { return KindHost }
func (*textData) kind() Kind      { return KindText }
func (*componentData) kind() Kind { return KindComponent }

// newRoot creates the root fiber of a pass.
func newRoot(node *vdom.VNode, container host.Handle) *Fiber {
	return &Fiber{
		props:    vdom.Props{},
		children: []*vdom.VNode{node},
		data:     &rootData{container: container},
	}
}

// newFiber creates a fiber for a node that has no counterpart to reuse.
func newFiber(el *vdom.VNode, parent *Fiber) (*Fiber, error) {
	f := &Fiber{
		props:  el.Props,
		parent: parent,
		effect: EffectPlacement,
	}
	switch el.Kind {
	case vdom.KindElement:
		if el.Tag == "" {
			return nil, malformed(parent, "element without a tag")
		}
		f.data = &hostData{tag: el.Tag}
		f.children = el.Children
	case vdom.KindText:
		f.data = &textData{}
	case vdom.KindComponent:
		if el.Comp == nil || el.Comp.Render == nil {
			return nil, malformed(parent, "component node without a definition")
		}
		f.data = &componentData{def: el.Comp}
	default:
		return nil, malformed(parent, "unknown node kind %d", el.Kind)
	}
	if f.props == nil {
		f.props = vdom.Props{}
	}
	return f, nil
}

// sameType reports whether el can update old in place.
func sameType(old *Fiber, el *vdom.VNode) bool {
	switch d := old.data.(type) {
	case *hostData:
		return el.Kind == vdom.KindElement && el.Tag == d.tag
	case *textData:
		return el.Kind == vdom.KindText
	case *componentData:
		return el.Kind == vdom.KindComponent && el.Comp == d.def
	}
	return false
}

// update creates the fiber that replaces old at the same position, carrying
// over its host handle.
func update(old *Fiber, el *vdom.VNode, parent *Fiber) *Fiber {
	f := &Fiber{
		props:     el.Props,
		parent:    parent,
		alternate: old,
		effect:    EffectUpdate,
	}
	switch d := old.data.(type) {
	case *hostData:
		f.data = &hostData{tag: d.tag, handle: d.handle}
		f.children = el.Children
	case *textData:
		f.data = &textData{handle: d.handle}
	case *componentData:
		f.data = &componentData{def: d.def}
	}
	if f.props == nil {
		f.props = vdom.Props{}
	}
	return f
}

// Kind returns the fiber's variant.
func (f *Fiber) Kind() Kind {
	return f.data.kind()
}

// Effect returns the effect assigned when the fiber was reconciled.
func (f *Fiber) Effect() Effect {
	return f.effect
}

// Parent returns the parent fiber, or nil for the root.
func (f *Fiber) Parent() *Fiber {
	return f.parent
}

// Child returns the first child fiber.
func (f *Fiber) Child() *Fiber {
	return f.child
}

// Sibling returns the next sibling fiber.
func (f *Fiber) Sibling() *Fiber {
	return f.sibling
}

// Props returns the fiber's props. They must not be modified.
func (f *Fiber) Props() vdom.Props {
	return f.props
}

// Handle returns the host node owned by the fiber: the container for the
// root, nil for components.
func (f *Fiber) Handle() host.Handle {
	switch d := f.data.(type) {
	case *rootData:
		return d.container
	case *hostData:
		return d.handle
	case *textData:
		return d.handle
	}
	return nil
}

func (f *Fiber) setHandle(h host.Handle) {
	switch d := f.data.(type) {
	case *hostData:
		d.handle = h
	case *textData:
		d.handle = h
	}
}

// Name returns the tag, "#text", the component name, or "root".
func (f *Fiber) Name() string {
	switch d := f.data.(type) {
	case *rootData:
		return "root"
	case *hostData:
		return d.tag
	case *textData:
		return "#text"
	case *componentData:
		return d.def.Name
	}
	return "?"
}

// HookCount returns the number of hooks a component fiber used on its last
// render.
func (f *Fiber) HookCount() int {
	if d, ok := f.data.(*componentData); ok {
		return len(d.hooks)
	}
	return 0
}

// Path returns the names of the fibers from the root down to f.
func (f *Fiber) Path() []string {
	var path []string
	for n := f; n != nil; n = n.parent {
		path = append(path, n.Name())
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk calls fn for f and every descendant in pre-order. Returning false
// skips the fiber's children.
func (f *Fiber) Walk(fn func(f *Fiber, depth int) bool) {
	f.walk(fn, 0)
}

func (f *Fiber) walk(fn func(*Fiber, int) bool, depth int) {
	if !fn(f, depth) {
		return
	}
	for c := f.child; c != nil; c = c.sibling {
		c.walk(fn, depth+1)
	}
}

// nextUnit returns the fiber after f in pre-order within the tree rooted
// at root: the first child, else the nearest sibling of f or an ancestor.
func nextUnit(f, root *Fiber) *Fiber {
	if f.child != nil {
		return f.child
	}
	for n := f; n != nil && n != root; n = n.parent {
		if n.sibling != nil {
			return n.sibling
		}
	}
	return nil
}

// hostParent returns the nearest strict ancestor that owns a host handle.
func hostParent(f *Fiber) *Fiber {
	for p := f.parent; p != nil; p = p.parent {
		if p.Handle() != nil {
			return p
		}
	}
	return nil
}

// hostNodes returns the topmost fibers at or below f that own a handle.
func hostNodes(f *Fiber) []*Fiber {
	if f.Handle() != nil {
		return []*Fiber{f}
	}
	var out []*Fiber
	for c := f.child; c != nil; c = c.sibling {
		out = append(out, hostNodes(c)...)
	}
	return out
}

// TreeNode is a serializable view of a fiber tree.
type TreeNode struct {
	Kind     string      `json:"kind"`
	Name     string      `json:"name"`
	Effect   string      `json:"effect,omitempty"`
	Text     string      `json:"text,omitempty"`
	Hooks    int         `json:"hooks,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree returns a serializable copy of the tree rooted at f.
func (f *Fiber) Tree() *TreeNode {
	n := &TreeNode{
		Kind:  f.Kind().String(),
		Name:  f.Name(),
		Hooks: f.HookCount(),
	}
	if f.effect != EffectNone {
		n.Effect = f.effect.String()
	}
	if f.Kind() == KindText {
		n.Text = textOf(f.props)
	}
	for c := f.child; c != nil; c = c.sibling {
		n.Children = append(n.Children, c.Tree())
	}
	return n
}

// Dump renders the tree rooted at f as indented text, one fiber per line.
func (f *Fiber) Dump() string {
	var b strings.Builder
	f.Walk(func(n *Fiber, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Name())
		if n.Kind() == KindText {
			fmt.Fprintf(&b, " %q", textOf(n.props))
		}
		if n.effect != EffectNone {
			fmt.Fprintf(&b, " [%s]", n.effect)
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

// textOf returns the content of a text fiber's props.
func textOf(p vdom.Props) string {
	switch v := p.Get(vdom.NodeValueKey).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
