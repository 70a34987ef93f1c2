package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryRender,
		Message:  "Malformed tree",
		Detail:   "A node has an unrecognized kind, or a component returned no node. The render pass was abandoned and nothing was committed.",
		DocURL:   "https://vango.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryCommit,
		Message:  "Orphaned commit",
		Detail:   "A node that must be attached to the host tree has no ancestor owning a host handle. Render was probably called without a container.",
		DocURL:   "https://vango.dev/docs/errors/E021",
	},
	"E022": {
		Category: CategoryHooks,
		Message:  "Hook order changed",
		Detail:   "A component called hooks in a different order or count than on its previous render. Hooks must be called unconditionally and in the same order.",
		DocURL:   "https://vango.dev/docs/errors/E022",
	},
	"E023": {
		Category: CategoryRender,
		Message:  "Render pass superseded",
		Detail:   "A newer render request replaced this pass before it was committed.",
		DocURL:   "https://vango.dev/docs/errors/E023",
	},
	"E024": {
		Category: CategoryHost,
		Message:  "Host mutation failed",
		Detail:   "The host tree rejected a mutation during commit.",
		DocURL:   "https://vango.dev/docs/errors/E024",
	},
	"E025": {
		Category: CategoryHooks,
		Message:  "Hook called outside render",
		Detail:   "Hooks can only be called while the engine is rendering the component that received the scope.",
		DocURL:   "https://vango.dev/docs/errors/E025",
	},
	"E026": {
		Category: CategoryRender,
		Message:  "Component panicked",
		Detail:   "A component's render function panicked. The render pass was abandoned.",
		DocURL:   "https://vango.dev/docs/errors/E026",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "vfiber.json could not be read or parsed.",
		DocURL:   "https://vango.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No vfiber.json was found in the given directory.",
		DocURL:   "https://vango.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
		DocURL:   "https://vango.dev/docs/errors/E122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E150": {
		Category: CategoryCLI,
		Message:  "Inspector failed",
		Detail:   "The inspector HTTP server could not be started.",
		DocURL:   "https://vango.dev/docs/errors/E150",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
