package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// Registered codes.
const (
	ErrRenderPanic     = "E001"
	ErrUnknownAccepts  = "E002"
	ErrBlobNotFound    = "E003"
	ErrInvalidConfig   = "E004"
	ErrMarkup          = "E005"
	ErrFileTooLarge    = "E006"
	ErrFileTypeRefused = "E007"
	ErrBlobStore       = "E008"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (E001)
	// ============================================

	ErrRenderPanic: {
		Category: CategoryRender,
		Message:  "Render aborted",
		Detail:   "A panic was raised while patching the host. The DOM keeps whatever was applied before the failure.",
	},

	// ============================================
	// Validation Errors (E002, E006, E007)
	// ============================================

	ErrUnknownAccepts: {
		Category: CategoryValidation,
		Message:  "Unknown accepts type",
	},
	ErrFileTooLarge: {
		Category: CategoryValidation,
		Message:  "File too large",
	},
	ErrFileTypeRefused: {
		Category: CategoryValidation,
		Message:  "File type not accepted",
	},

	// ============================================
	// Storage Errors (E003, E008)
	// ============================================

	ErrBlobNotFound: {
		Category: CategoryStorage,
		Message:  "Blob not found",
	},
	ErrBlobStore: {
		Category: CategoryStorage,
		Message:  "Blob store unavailable",
	},

	// ============================================
	// Config & Markup Errors (E004, E005)
	// ============================================

	ErrInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	ErrMarkup: {
		Category: CategoryMarkup,
		Message:  "Markup could not be parsed",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
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
