package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://dragsort.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Board closed",
		Detail:   "The board was destroyed; its document no longer accepts events.",
		DocURL:   docBase + "E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Page parse failed",
		Detail:   "The board page could not be parsed as HTML.",
		DocURL:   docBase + "E002",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
		Detail:   "Unable to establish a WebSocket connection with the client.",
		DocURL:   docBase + "E060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "A frame could not be decoded.",
		DocURL:   docBase + "E061",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Invalid event",
		Detail:   "An event payload could not be decoded.",
		DocURL:   docBase + "E062",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Unknown event target",
		Detail:   "The event names an element id that does not exist in the board.",
		DocURL:   docBase + "E063",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid dragsort.json",
		Detail:   "The dragsort.json configuration file is malformed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is invalid.",
		DocURL:   docBase + "E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid log configuration",
		Detail:   "The log level or format is not recognized.",
		DocURL:   docBase + "E123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command received arguments it cannot interpret.",
		DocURL:   docBase + "E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Not a dragsort project",
		Detail:   "No dragsort.json found in the current directory or its parents.",
		DocURL:   docBase + "E141",
	},

	// ============================================
	// Drag Configuration Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryConfig,
		Message:  "Element is not a page node",
		Detail:   "The draggable element must be an element node attached to the document.",
		DocURL:   docBase + "E200",
	},
	"E201": {
		Category: CategoryConfig,
		Message:  "Anchor is not a page node",
		Detail:   "The anchor must be an element node attached to the document.",
		DocURL:   docBase + "E201",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Container is not a page node",
		Detail:   "Every container must be an element node attached to the document.",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryConfig,
		Message:  "Element is outside every container",
		Detail:   "The draggable element must be a descendant of at least one container.",
		DocURL:   docBase + "E203",
	},
	"E204": {
		Category: CategoryConfig,
		Message:  "Anchor is outside element",
		Detail:   "The anchor must be the element itself or one of its descendants.",
		DocURL:   docBase + "E204",
	},
	"E205": {
		Category: CategoryConfig,
		Message:  "No containers",
		Detail:   "At least one container is required.",
		DocURL:   docBase + "E205",
	},
	"E206": {
		Category: CategoryConfig,
		Message:  "Invalid selector",
		Detail:   "A CSS selector could not be compiled.",
		DocURL:   docBase + "E206",
	},
	"E207": {
		Category: CategoryConfig,
		Message:  "Missing layout host",
		Detail:   "A draggable needs a host that provides bounding boxes and computed styles.",
		DocURL:   docBase + "E207",
	},
	"E208": {
		Category: CategoryConfig,
		Message:  "Nodes from different documents",
		Detail:   "The element, anchor, containers and placeholder must share one document.",
		DocURL:   docBase + "E208",
	},
	"E209": {
		Category: CategoryConfig,
		Message:  "No draggable elements",
		Detail:   "The group selection matched no elements.",
		DocURL:   docBase + "E209",
	},
	"E210": {
		Category: CategoryConfig,
		Message:  "Invalid placeholder",
		Detail:   "The placeholder markup could not be parsed.",
		DocURL:   docBase + "E210",
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
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
