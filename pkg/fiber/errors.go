package fiber

import (
	verrors "github.com/vango-dev/fiber/internal/errors"
)

// Sentinel errors. Errors returned by the engine carry the fiber path and
// more detail, and match these with errors.Is.
var (
	// ErrMalformedTree is returned when a node has an unknown kind, an
	// element has no tag, a component node has no definition, or a
	// component renders nil.
	ErrMalformedTree = verrors.New("E020")

	// ErrOrphanedCommit is returned when a node that must be attached has
	// no ancestor owning a host handle, e.g. Render with a nil container.
	ErrOrphanedCommit = verrors.New("E021")

	// ErrHookOrder is returned when a component calls a different number or
	// kind of hooks than on its previous committed render.
	ErrHookOrder = verrors.New("E022")

	// ErrSuperseded completes a pass replaced by a newer request.
	ErrSuperseded = verrors.New("E023")

	// ErrHostMutation wraps errors returned by the host.
	ErrHostMutation = verrors.New("E024")

	// ErrHookOutsideRender is the panic value of a hook called with a scope
	// that is not rendering.
	ErrHookOutsideRender = verrors.New("E025")

	// ErrComponentPanic is returned when a render function panics. It wraps
	// ErrMalformedTree.
	ErrComponentPanic = verrors.New("E026")
)

func malformed(f *Fiber, format string, args ...any) error {
	e := verrors.New("E020").WithDetailf(format, args...)
	if f != nil {
		e = e.WithPath(f.Path())
	}
	return e
}
