// Package memhost is an in-memory host tree. It backs the CLI demo and the
// inspector, and doubles as the test host: every mutation is logged so tests
// can assert on exactly what a commit did.
package memhost

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/protocol"
)

// TextTag is the tag of text nodes.
const TextTag = "#text"

// Errors returned by Host methods.
var (
	ErrForeignHandle = errors.New("memhost: handle does not belong to this host")
	ErrNotChild      = errors.New("memhost: node is not a child of parent")
	ErrCycle         = errors.New("memhost: append would create a cycle")
)

// Op is one logged mutation.
type Op struct {
	Kind  protocol.MutationOp
	Node  *Node
	Name  string // Tag, property or event name
	Value any    // Property value, handler or child node
}

// FailFunc decides whether a mutation should fail. It is called with the
// host lock held and must not call back into the host.
type FailFunc func(op protocol.MutationOp, n *Node, name string) error

// Host is an in-memory host.Host. It is safe for concurrent use so the
// inspector can snapshot it while the engine mutates it.
type Host struct {
	mu     sync.RWMutex
	nextID int
	root   *Node
	log    []Op
	fail   FailFunc
	fatal  bool
}

var _ host.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithFailure injects mutation failures.
func WithFailure(fn FailFunc) Option {
	return func(h *Host) {
		h.fail = fn
	}
}

// WithFatalFailures makes the host report its failures as fatal.
func WithFatalFailures() Option {
	return func(h *Host) {
		h.fatal = true
	}
}

// New creates a host with an empty container node tagged "root".
func New(opts ...Option) *Host {
	h := &Host{}
	for _, opt := range opts {
		opt(h)
	}
	h.root = h.newNode("root")
	return h
}

// Root returns the container node. Pass it to Engine.Render.
func (h *Host) Root() *Node {
	return h.root
}

// FailuresFatal implements host.FatalReporter.
func (h *Host) FailuresFatal() bool {
	return h.fatal
}

func (h *Host) newNode(tag string) *Node {
	h.nextID++
	return &Node{
		ID:        h.nextID,
		Tag:       tag,
		Props:     make(map[string]any),
		listeners: make(map[string][]any),
		host:      h,
	}
}

func (h *Host) node(handle host.Handle) (*Node, error) {
	n, ok := handle.(*Node)
	if !ok || n == nil || n.host != h {
		return nil, fmt.Errorf("%w: %T", ErrForeignHandle, handle)
	}
	return n, nil
}

func (h *Host) check(op protocol.MutationOp, n *Node, name string) error {
	if h.fail == nil {
		return nil
	}
	return h.fail(op, n, name)
}

func (h *Host) record(op Op) {
	h.log = append(h.log, op)
}

// CreateNode implements host.Host.
func (h *Host) CreateNode(tag string) (host.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(protocol.OpCreateElement, nil, tag); err != nil {
		return nil, err
	}
	n := h.newNode(tag)
	h.record(Op{Kind: protocol.OpCreateElement, Node: n, Name: tag})
	return n, nil
}

// CreateText implements host.Host.
func (h *Host) CreateText(text string) (host.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(protocol.OpCreateText, nil, TextTag); err != nil {
		return nil, err
	}
	n := h.newNode(TextTag)
	n.Props["nodeValue"] = text
	h.record(Op{Kind: protocol.OpCreateText, Node: n, Value: text})
	return n, nil
}

// SetProperty implements host.Host.
func (h *Host) SetProperty(handle host.Handle, name string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.node(handle)
	if err != nil {
		return err
	}
	if err := h.check(protocol.OpSetProperty, n, name); err != nil {
		return err
	}
	n.Props[name] = value
	h.record(Op{Kind: protocol.OpSetProperty, Node: n, Name: name, Value: value})
	return nil
}

// ClearProperty implements host.Host.
func (h *Host) ClearProperty(handle host.Handle, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.node(handle)
	if err != nil {
		return err
	}
	if err := h.check(protocol.OpClearProperty, n, name); err != nil {
		return err
	}
	delete(n.Props, name)
	h.record(Op{Kind: protocol.OpClearProperty, Node: n, Name: name})
	return nil
}

// AddListener implements host.Host.
func (h *Host) AddListener(handle host.Handle, event string, handler any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.node(handle)
	if err != nil {
		return err
	}
	if err := h.check(protocol.OpAddListener, n, event); err != nil {
		return err
	}
	n.listeners[event] = append(n.listeners[event], handler)
	h.record(Op{Kind: protocol.OpAddListener, Node: n, Name: event, Value: handler})
	return nil
}

// RemoveListener implements host.Host. Handlers are matched by identity.
func (h *Host) RemoveListener(handle host.Handle, event string, handler any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.node(handle)
	if err != nil {
		return err
	}
	if err := h.check(protocol.OpRemoveListener, n, event); err != nil {
		return err
	}
	list := n.listeners[event]
	for i, l := range list {
		if host.Same(l, handler) {
			n.listeners[event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(n.listeners[event]) == 0 {
		delete(n.listeners, event)
	}
	h.record(Op{Kind: protocol.OpRemoveListener, Node: n, Name: event, Value: handler})
	return nil
}

// AppendChild implements host.Host. A child that already has a parent is
// moved, as in the DOM.
func (h *Host) AppendChild(parentHandle, childHandle host.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	parent, err := h.node(parentHandle)
	if err != nil {
		return err
	}
	child, err := h.node(childHandle)
	if err != nil {
		return err
	}
	for p := parent; p != nil; p = p.Parent {
		if p == child {
			return ErrCycle
		}
	}
	if err := h.check(protocol.OpAppendChild, child, parent.Tag); err != nil {
		return err
	}
	if child.Parent != nil {
		child.Parent.detach(child)
	}
	child.Parent = parent
	parent.Children = append(parent.Children, child)
	h.record(Op{Kind: protocol.OpAppendChild, Node: parent, Value: child})
	return nil
}

// RemoveChild implements host.Host.
func (h *Host) RemoveChild(parentHandle, childHandle host.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	parent, err := h.node(parentHandle)
	if err != nil {
		return err
	}
	child, err := h.node(childHandle)
	if err != nil {
		return err
	}
	if child.Parent != parent {
		return ErrNotChild
	}
	if err := h.check(protocol.OpRemoveChild, child, parent.Tag); err != nil {
		return err
	}
	parent.detach(child)
	child.Parent = nil
	h.record(Op{Kind: protocol.OpRemoveChild, Node: parent, Value: child})
	return nil
}

// Ops returns a copy of the mutation log.
func (h *Host) Ops() []Op {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Op(nil), h.log...)
}

// Count returns how many logged mutations have the given kind.
func (h *Host) Count(kind protocol.MutationOp) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, op := range h.log {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// ResetLog clears the mutation log.
func (h *Host) ResetLog() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = nil
}

// Snapshot returns the container's tree as HTML while holding the read lock.
func (h *Host) Snapshot() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.root.InnerHTML()
}

// Dispatch invokes the listeners registered on n for event. Supported
// handler shapes are func(), func(*Event) and func(string); the last receives
// ev.Value formatted with %v.
func (h *Host) Dispatch(n *Node, event string, value any) error {
	h.mu.RLock()
	handlers := append([]any(nil), n.listeners[event]...)
	h.mu.RUnlock()

	ev := &Event{Type: event, Target: n, Value: value}
	for _, handler := range handlers {
		switch fn := handler.(type) {
		case func():
			fn()
		case func(*Event):
			fn(ev)
		case func(string):
			fn(fmt.Sprint(value))
		default:
			return fmt.Errorf("memhost: unsupported handler type %T for %q", handler, event)
		}
	}
	return nil
}

// Event is passed to func(*Event) listeners.
type Event struct {
	Type   string
	Target *Node
	Value  any
}
