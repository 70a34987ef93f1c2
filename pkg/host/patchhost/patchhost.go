// Package patchhost records host mutations as protocol commit frames.
//
// A Recorder wraps another host.Host and forwards every call, recording each
// successful mutation with the node IDs it assigns. Without an inner host it
// acts as a pure recorder whose handles are the IDs themselves, which is how
// a server-driven client would see the tree.
package patchhost

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/protocol"
)

// RootID is the ID of the container registered with NewRecorder.
const RootID = "root"

// Recorder is a host.Host that records mutations.
type Recorder struct {
	inner host.Host

	mu      sync.Mutex
	ids     map[host.Handle]string
	counter uint64
	pending []protocol.Mutation
	seq     uint64
	initial bool
}

var _ host.Host = (*Recorder)(nil)

// NewRecorder wraps inner and registers container under RootID. inner may be
// nil, in which case container should be RootID and handles are node IDs.
func NewRecorder(inner host.Host, container host.Handle) *Recorder {
	r := &Recorder{
		inner:   inner,
		ids:     make(map[host.Handle]string),
		initial: true,
	}
	if container == nil {
		container = RootID
	}
	r.ids[container] = RootID
	return r
}

// Container returns the handle to pass to Engine.Render when the recorder
// has no inner host.
func (r *Recorder) Container() host.Handle {
	return RootID
}

// FailuresFatal forwards the inner host's policy.
func (r *Recorder) FailuresFatal() bool {
	return r.inner != nil && host.IsFatal(r.inner)
}

func (r *Recorder) nextID() string {
	r.counter++
	return "h" + strconv.FormatUint(r.counter, 10)
}

func (r *Recorder) id(h host.Handle) (string, error) {
	id, ok := r.ids[h]
	if !ok {
		return "", fmt.Errorf("patchhost: unknown handle %v", h)
	}
	return id, nil
}

func (r *Recorder) create(op protocol.MutationOp, key, value string, create func() (host.Handle, error)) (host.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID()
	var h host.Handle = id
	if r.inner != nil {
		var err error
		if h, err = create(); err != nil {
			return nil, err
		}
	}
	r.ids[h] = id
	r.pending = append(r.pending, protocol.Mutation{Op: op, HID: id, Key: key, Value: value})
	return h, nil
}

// CreateNode implements host.Host.
func (r *Recorder) CreateNode(tag string) (host.Handle, error) {
	return r.create(protocol.OpCreateElement, tag, "", func() (host.Handle, error) {
		return r.inner.CreateNode(tag)
	})
}

// CreateText implements host.Host.
func (r *Recorder) CreateText(text string) (host.Handle, error) {
	return r.create(protocol.OpCreateText, "", text, func() (host.Handle, error) {
		return r.inner.CreateText(text)
	})
}

func (r *Recorder) mutate(m protocol.Mutation, target, parent host.Handle, apply func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if m.HID, err = r.id(target); err != nil {
		return err
	}
	if parent != nil {
		if m.ParentID, err = r.id(parent); err != nil {
			return err
		}
	}
	if r.inner != nil {
		if err := apply(); err != nil {
			return err
		}
	}
	r.pending = append(r.pending, m)
	return nil
}

// SetProperty implements host.Host.
func (r *Recorder) SetProperty(h host.Handle, name string, value any) error {
	m := protocol.Mutation{Op: protocol.OpSetProperty, Key: name, Value: FormatValue(value)}
	return r.mutate(m, h, nil, func() error { return r.inner.SetProperty(h, name, value) })
}

// ClearProperty implements host.Host.
func (r *Recorder) ClearProperty(h host.Handle, name string) error {
	m := protocol.Mutation{Op: protocol.OpClearProperty, Key: name}
	return r.mutate(m, h, nil, func() error { return r.inner.ClearProperty(h, name) })
}

// AddListener implements host.Host. Handlers are not serialized; the
// receiving side only learns that the node listens for event.
func (r *Recorder) AddListener(h host.Handle, event string, handler any) error {
	m := protocol.Mutation{Op: protocol.OpAddListener, Key: event}
	return r.mutate(m, h, nil, func() error { return r.inner.AddListener(h, event, handler) })
}

// RemoveListener implements host.Host.
func (r *Recorder) RemoveListener(h host.Handle, event string, handler any) error {
	m := protocol.Mutation{Op: protocol.OpRemoveListener, Key: event}
	return r.mutate(m, h, nil, func() error { return r.inner.RemoveListener(h, event, handler) })
}

// AppendChild implements host.Host.
func (r *Recorder) AppendChild(parent, child host.Handle) error {
	m := protocol.Mutation{Op: protocol.OpAppendChild}
	return r.mutate(m, child, parent, func() error { return r.inner.AppendChild(parent, child) })
}

// RemoveChild implements host.Host. The removed node keeps its ID so a later
// re-append can still be addressed.
func (r *Recorder) RemoveChild(parent, child host.Handle) error {
	m := protocol.Mutation{Op: protocol.OpRemoveChild}
	return r.mutate(m, child, parent, func() error { return r.inner.RemoveChild(parent, child) })
}

// Pending returns the number of mutations recorded since the last Flush.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Flush returns the recorded mutations as a frame and starts a new batch.
// It returns nil when nothing was recorded.
func (r *Recorder) Flush(generation uint64) *protocol.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	r.seq++
	cf := &protocol.CommitFrame{
		Seq:        r.seq,
		Generation: generation,
		Mutations:  r.pending,
	}
	r.pending = nil

	var flags protocol.FrameFlags
	if r.initial {
		flags |= protocol.FlagInitial
		r.initial = false
	}
	return protocol.NewCommitFrame(cf, flags)
}

// FormatValue converts a property value to its wire string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
