package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://navtree.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Tree Errors (E101-E119)
	// ============================================

	"E101": {
		Category:   CategoryTree,
		Message:    "Unknown route segment",
		Detail:     "The path does not name a segment of the route tree. Paths given to tree operations must match segment names exactly, captures included.",
		Suggestion: "List the tree with `navtree routes` to see the existing paths.",
		DocURL:     docBase + "E101",
	},
	"E102": {
		Category: CategoryTree,
		Message:  "Illegal tree operation",
		Detail:   "The operation would break the tree: a duplicate sibling, a second wildcard under one parent, a segment containing '/', or a change to the root.",
		DocURL:   docBase + "E102",
	},

	// ============================================
	// Navigation Errors (E201-E219)
	// ============================================

	"E201": {
		Category:   CategoryNavigation,
		Message:    "Segment not found",
		Detail:     "No route matches the path and the tree has no not-found view to fall back to.",
		Suggestion: "Declare a not_found block in the manifest.",
		DocURL:     docBase + "E201",
	},
	"E202": {
		Category: CategoryNavigation,
		Message:  "No history entry",
		Detail:   "Back or forward was requested past the end of the navigation history.",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryNavigation,
		Message:  "Controller not found",
		Detail:   "The view names a controller (js) that no loader provides.",
		DocURL:   docBase + "E203",
	},
	"E204": {
		Category: CategoryNavigation,
		Message:  "Navigation panic",
		Detail:   "A controller, renderer or middleware panicked during the navigation.",
		DocURL:   docBase + "E204",
	},

	// ============================================
	// Manifest Errors (E301-E319)
	// ============================================

	"E301": {
		Category: CategoryManifest,
		Message:  "Invalid manifest",
		Detail:   "The manifest could not be parsed or decoded.",
		DocURL:   docBase + "E301",
	},
	"E302": {
		Category:   CategoryManifest,
		Message:    "Duplicate not_found block",
		Detail:     "Only one not_found view may be declared across all manifest files.",
		Suggestion: "Keep a single not_found block.",
		DocURL:     docBase + "E302",
	},
	"E303": {
		Category:   CategoryManifest,
		Message:    "Manifest not found",
		Detail:     "The manifest file or directory does not exist.",
		Suggestion: "Set \"manifest\" in navtree.json or pass --manifest.",
		DocURL:     docBase + "E303",
	},

	// ============================================
	// Asset Errors (E401-E419)
	// ============================================

	"E401": {
		Category: CategoryAssets,
		Message:  "Asset not found",
		Detail:   "A view references an HTML fragment, stylesheet or fingerprint file that the asset source does not have.",
		DocURL:   docBase + "E401",
	},

	// ============================================
	// Config Errors (E501-E519)
	// ============================================

	"E501": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "navtree.json could not be read or failed validation.",
		DocURL:   docBase + "E501",
	},

	// ============================================
	// CLI Errors (E601-E619)
	// ============================================

	"E601": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "E601",
	},
	"E602": {
		Category: CategoryCLI,
		Message:  "Command failed",
		DocURL:   docBase + "E602",
	},

	// ============================================
	// Request Errors (E701-E719)
	// ============================================

	"E701": {
		Category: CategoryRequest,
		Message:  "Invalid request",
		Detail:   "The request body or query could not be decoded.",
		DocURL:   docBase + "E701",
	},
	"E702": {
		Category: CategoryRequest,
		Message:  "Internal error",
		DocURL:   docBase + "E702",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
