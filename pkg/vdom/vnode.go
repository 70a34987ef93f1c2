package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Text node, content in Props["nodeValue"]
	KindComponent              // Function component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Reserved prop keys.
const (
	// NodeValueKey holds the content of a text node.
	NodeValueKey = "nodeValue"

	// ChildrenKey holds the children passed to a component node.
	// It is never applied to the host tree.
	ChildrenKey = "children"
)

// VNode is an immutable description of one position in the UI tree.
// Once handed to the renderer it must not be modified.
type VNode struct {
	Kind     VKind      // Node type
	Tag      string     // Element tag name (e.g., "div")
	Props    Props      // Attributes and event handlers
	Children []*VNode   // Child nodes (elements only)
	Comp     *Component // For KindComponent
}

// Props holds attributes and event handlers.
type Props map[string]any

// Get returns the value for key, or nil.
func (p Props) Get(key string) any {
	if p == nil {
		return nil
	}
	return p[key]
}

// String returns the value for key if it is a string.
func (p Props) String(key string) string {
	s, _ := p.Get(key).(string)
	return s
}

// Children returns the children passed to a component node.
func (p Props) Children() []*VNode {
	c, _ := p.Get(ChildrenKey).([]*VNode)
	return c
}

// TypeName returns a short name for the node's type, used in fiber paths
// and logs: the tag for elements, "#text" for text, the component name.
func (v *VNode) TypeName() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindElement:
		return v.Tag
	case KindText:
		return "#text"
	case KindComponent:
		if v.Comp == nil {
			return "<component>"
		}
		return v.Comp.Name
	default:
		return "<unknown>"
	}
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventKey(key) {
			return true
		}
	}
	return false
}

// IsEventKey returns true if the prop key names an event handler.
// Case-insensitive to catch onclick, onClick, OnInput, etc.
func IsEventKey(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventName derives the host event name from an event prop key by stripping
// the "on" prefix and lower-casing: "onClick" becomes "click".
func EventName(key string) string {
	if !IsEventKey(key) {
		return ""
	}
	return strings.ToLower(key[2:])
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}
