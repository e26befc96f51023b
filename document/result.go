package document

// Validation issue codes.
const (
	CodeInvalidType      = "CONTENT_INVALID_TYPE"
	CodeInvalidRootType  = "CONTENT_INVALID_ROOT_TYPE"
	CodeInvalidStructure = "CONTENT_INVALID_STRUCTURE"
	CodeMentionMissingID = "MENTION_MISSING_ID"
	CodeMentionNoLabel   = "MENTION_MISSING_LABEL"
	CodeValidationError  = "CONTENT_VALIDATION_ERROR"
	CodeInvalidEntry     = "VALIDATION_ERROR"
)

// ParseResult holds the outcome of parsing arbitrary content into a document
// tree. Content is always a usable document node, even when Success is false.
type ParseResult struct {
	Success      bool     `json:"success"`
	Content      Node     `json:"content"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	WasRecovered bool     `json:"wasRecovered"`
}

// Issue is a coded validation finding.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds the outcome of validating an already-parsed tree.
// Warnings do not affect validity.
type ValidationResult struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// ExtractionResult holds the distinct variable identifiers referenced by
// mention nodes and mention marks, sorted alphabetically.
type ExtractionResult struct {
	Variables []string `json:"variables"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// SerializeResult holds canonical JSON output for a document tree.
type SerializeResult struct {
	Success bool     `json:"success"`
	Content string   `json:"content"`
	Errors  []string `json:"errors,omitempty"`
}
