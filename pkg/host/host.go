// Package host defines the capability the renderer drives: a mutable tree
// of nodes (a DOM, a terminal widget tree, a test double) that the engine
// creates, mutates and links but never owns.
package host

// Handle is an opaque reference to a host node. Handles must be comparable;
// the engine stores them in fibers and passes them back unchanged.
type Handle any

// Host is the set of mutation primitives the commit phase needs.
//
// Every method may fail. Whether a failure aborts the rest of a commit is
// decided by FatalReporter; hosts that do not implement it are treated as
// best-effort.
type Host interface {
	// CreateNode creates a detached element for tag.
	CreateNode(tag string) (Handle, error)

	// CreateText creates a detached text node with the given content.
	CreateText(text string) (Handle, error)

	// SetProperty sets a non-event property.
	SetProperty(h Handle, name string, value any) error

	// ClearProperty resets a property to its empty/default value.
	ClearProperty(h Handle, name string) error

	// AddListener registers handler for event (e.g. "click").
	AddListener(h Handle, event string, handler any) error

	// RemoveListener unregisters a previously added handler.
	RemoveListener(h Handle, event string, handler any) error

	// AppendChild attaches child as the last child of parent.
	AppendChild(parent, child Handle) error

	// RemoveChild detaches child from parent.
	RemoveChild(parent, child Handle) error
}

// FatalReporter is implemented by hosts whose mutation failures leave the
// tree unusable. When FailuresFatal returns true the engine stops applying a
// commit at the first error.
type FatalReporter interface {
	FailuresFatal() bool
}

// IsFatal reports whether h documents its failures as fatal.
func IsFatal(h Host) bool {
	fr, ok := h.(FatalReporter)
	return ok && fr.FailuresFatal()
}
