// Package errors provides structured, coded errors for the renderer and CLI.
//
// Every error carries a registry code (e.g. "E020") that maps to a short
// message, a longer explanation and a documentation URL. Render errors also
// record the fiber path from the root to the failing component, which is what
// a user needs to locate the problem in their tree.
//
// # Error Categories
//
//   - render: malformed trees, component panics, superseded passes
//   - commit: orphaned placements
//   - hooks: hook order violations, hooks used outside render
//   - host: mutations rejected by the host tree
//   - config, cli: tooling errors
//
// # Usage
//
//	err := errors.New("E022").
//	    WithPath([]string{"root", "App", "Counter"}).
//	    WithSuggestion("Move the UseState call out of the if block")
//
//	fmt.Println(err.Format())
//
// Errors compare by code under errors.Is, so a package-level sentinel such as
//
//	var ErrHookOrder = errors.New("E022")
//
// matches any later *Error with the same code.
package errors
