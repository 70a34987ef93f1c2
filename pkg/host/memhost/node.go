package memhost

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// Node is a node in the in-memory tree. Fields are only safe to read while
// no commit is running, or through Host.Snapshot.
type Node struct {
	ID       int
	Tag      string
	Props    map[string]any
	Parent   *Node
	Children []*Node

	listeners map[string][]any
	host      *Host
}

func (n *Node) detach(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
			return
		}
	}
}

// IsText returns true for text nodes.
func (n *Node) IsText() bool {
	return n.Tag == TextTag
}

// Listeners returns the number of handlers registered for event.
func (n *Node) Listeners(event string) int {
	return len(n.listeners[event])
}

// Attached reports whether n is reachable from the host's container.
func (n *Node) Attached() bool {
	for p := n; p != nil; p = p.Parent {
		if p == n.host.root {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.walk(func(c *Node) {
		if c.IsText() {
			fmt.Fprint(&b, c.Props["nodeValue"])
		}
	})
	return b.String()
}

// Find returns the first descendant (or n itself) with the given tag.
func (n *Node) Find(tag string) *Node {
	all := n.FindAll(tag)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// FindAll returns all descendants (including n) with the given tag, in
// document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if c.Tag == tag {
			out = append(out, c)
		}
	})
	return out
}

// Descendants returns every node below n in document order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if c != n {
			out = append(out, c)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// HTML serializes n and its subtree. Properties are written as attributes in
// sorted order; listeners are omitted.
func (n *Node) HTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

// InnerHTML serializes n's children.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.Children {
		c.writeHTML(&b)
	}
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n.IsText() {
		b.WriteString(html.EscapeString(fmt.Sprint(n.Props["nodeValue"])))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := n.Props[k]
		if bv, ok := v.(bool); ok {
			if bv {
				b.WriteByte(' ')
				b.WriteString(k)
			}
			continue
		}
		fmt.Fprintf(b, ` %s="%s"`, k, html.EscapeString(fmt.Sprint(v)))
	}
	b.WriteByte('>')
	for _, c := range n.Children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n.IsText() {
		return fmt.Sprintf("#%d %q", n.ID, n.Props["nodeValue"])
	}
	return fmt.Sprintf("#%d <%s>", n.ID, n.Tag)
}
