package errors

import (
	"net/http"
	"sort"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
	Status   int
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No toast.json or toast.yaml was found.",
		DocURL:   "https://vango.dev/docs/toast/errors/E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   "https://vango.dev/docs/toast/errors/E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   "https://vango.dev/docs/toast/errors/E103",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
		DocURL:   "https://vango.dev/docs/toast/errors/E104",
	},

	// ============================================
	// Validation Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryValidation,
		Message:  "Unknown toast type",
		Detail:   "Valid types are default, info, success, warning, error and loading.",
		DocURL:   "https://vango.dev/docs/toast/errors/E201",
		Status:   http.StatusBadRequest,
	},
	"E202": {
		Category: CategoryValidation,
		Message:  "Unknown toast position",
		Detail:   "Positions combine top, middle or bottom with start, center or end, e.g. bottom-end.",
		DocURL:   "https://vango.dev/docs/toast/errors/E202",
		Status:   http.StatusBadRequest,
	},
	"E203": {
		Category: CategoryValidation,
		Message:  "Invalid toast duration",
		Detail:   "Durations must be zero (sticky) or positive.",
		DocURL:   "https://vango.dev/docs/toast/errors/E203",
		Status:   http.StatusBadRequest,
	},
	"E204": {
		Category: CategoryValidation,
		Message:  "Invalid request body",
		DocURL:   "https://vango.dev/docs/toast/errors/E204",
		Status:   http.StatusBadRequest,
	},
	"E205": {
		Category: CategoryValidation,
		Message:  "Toast not found",
		Detail:   "The toast may already have expired or been dismissed.",
		DocURL:   "https://vango.dev/docs/toast/errors/E205",
		Status:   http.StatusNotFound,
	},
	"E206": {
		Category: CategoryValidation,
		Message:  "Invalid toast id",
		DocURL:   "https://vango.dev/docs/toast/errors/E206",
		Status:   http.StatusBadRequest,
	},
	"E207": {
		Category: CategoryValidation,
		Message:  "Invalid icon",
		Detail:   "Icons are written as builtin:<name> or url:<address>.",
		DocURL:   "https://vango.dev/docs/toast/errors/E207",
		Status:   http.StatusBadRequest,
	},

	// ============================================
	// Transport Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryTransport,
		Message:  "WebSocket upgrade failed",
		DocURL:   "https://vango.dev/docs/toast/errors/E301",
		Status:   http.StatusBadRequest,
	},
	"E302": {
		Category: CategoryTransport,
		Message:  "Server failed",
		DocURL:   "https://vango.dev/docs/toast/errors/E302",
	},
	"E303": {
		Category: CategoryTransport,
		Message:  "Metrics are disabled",
		Detail:   "Enable metrics in the server configuration to expose them.",
		DocURL:   "https://vango.dev/docs/toast/errors/E303",
		Status:   http.StatusNotFound,
	},
	"E304": {
		Category: CategoryTransport,
		Message:  "Too many stream clients",
		Detail:   "The server reached its limit of concurrent WebSocket clients.",
		DocURL:   "https://vango.dev/docs/toast/errors/E304",
		Status:   http.StatusServiceUnavailable,
	},

	// ============================================
	// CLI Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryCLI,
		Message:  "Toast server unreachable",
		DocURL:   "https://vango.dev/docs/toast/errors/E401",
	},
	"E402": {
		Category: CategoryCLI,
		Message:  "Unexpected server response",
		DocURL:   "https://vango.dev/docs/toast/errors/E402",
	},
	"E403": {
		Category: CategoryCLI,
		Message:  "Configuration file already exists",
		DocURL:   "https://vango.dev/docs/toast/errors/E403",
	},
}

// Register adds a custom error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetCodesByCategory returns all error codes in a category, sorted.
func GetCodesByCategory(category Category) []string {
	var codes []string
	for code, template := range registry {
		if template.Category == category {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}
