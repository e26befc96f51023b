package document

import "fmt"

// Validate checks a parsed document tree for semantic completeness before it
// is accepted for save or use. It operates independently of how the tree was
// produced and accepts either a typed Node or the decoded JSON shape
// (map[string]interface{}). Warnings do not affect validity; any internal
// failure while walking the tree is reported as CONTENT_VALIDATION_ERROR
// instead of propagating.
func Validate(content interface{}) (result ValidationResult) {
	v := &validator{visited: make(map[uintptr]bool)}

	defer func() {
		if r := recover(); r != nil {
			result = ValidationResult{
				Errors: []Issue{{
					Code:    CodeValidationError,
					Message: fmt.Sprintf("validation failed: %v", r),
				}},
			}
		}
	}()

	switch root := content.(type) {
	case Node:
		v.validateTypedRoot(root)
	case *Node:
		if root == nil {
			v.issue(CodeInvalidType, "content is not an object")
			break
		}
		v.validateTypedRoot(*root)
	case map[string]interface{}:
		v.validateRawRoot(root)
	default:
		v.issue(CodeInvalidType, "content is not an object")
	}

	return ValidationResult{
		IsValid:  len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	errors   []Issue
	warnings []Issue
	visited  map[uintptr]bool
}

func (v *validator) issue(code, message string) {
	v.errors = append(v.errors, Issue{Code: code, Message: message})
}

func (v *validator) warn(code, message string) {
	v.warnings = append(v.warnings, Issue{Code: code, Message: message})
}

func (v *validator) validateTypedRoot(root Node) {
	if !root.IsDocument() {
		v.issue(CodeInvalidRootType, fmt.Sprintf("root type must be %q, got %q", TypeDocument, root.Type))
		return
	}
	if root.Content == nil {
		v.issue(CodeInvalidStructure, "document content must be an array")
		return
	}
	for _, child := range root.Content {
		v.validateTypedNode(child, 1)
	}
}

func (v *validator) validateTypedNode(node Node, depth int) {
	if depth > maxDepth {
		v.issue(CodeValidationError, fmt.Sprintf("content nesting exceeds %d levels", maxDepth))
		return
	}

	if node.Type == TypeMention {
		v.checkMentionAttrs(node.Attrs)
	}
	for _, mark := range node.Marks {
		if mark.Type == MarkMention {
			v.checkMentionAttrs(mark.Attrs)
		}
	}
	for _, child := range node.Content {
		v.validateTypedNode(child, depth+1)
	}
}

func (v *validator) validateRawRoot(root map[string]interface{}) {
	rootType, _ := root["type"].(string)
	if rootType != TypeDocument {
		v.issue(CodeInvalidRootType, fmt.Sprintf("root type must be %q, got %q", TypeDocument, rootType))
		return
	}
	content, ok := root["content"].([]interface{})
	if !ok {
		v.issue(CodeInvalidStructure, "document content must be an array")
		return
	}
	v.validateRawContent(content, 1)
}

func (v *validator) validateRawContent(entries []interface{}, depth int) {
	if depth > maxDepth {
		v.issue(CodeValidationError, fmt.Sprintf("content nesting exceeds %d levels", maxDepth))
		return
	}
	if !v.enter(entries) {
		return
	}
	for _, entry := range entries {
		node, ok := entry.(map[string]interface{})
		if !ok {
			v.warn(CodeInvalidEntry, "content entry is not an object")
			continue
		}
		v.validateRawNode(node, depth)
	}
}

func (v *validator) validateRawNode(node map[string]interface{}, depth int) {
	if !v.enter(node) {
		return
	}

	nodeType, _ := node["type"].(string)
	if nodeType == TypeMention {
		attrs, _ := node["attrs"].(map[string]interface{})
		v.checkMentionAttrs(attrs)
	}
	if marks, ok := node["marks"].([]interface{}); ok {
		for _, rawMark := range marks {
			mark, ok := rawMark.(map[string]interface{})
			if !ok {
				continue
			}
			if markType, _ := mark["type"].(string); markType == MarkMention {
				attrs, _ := mark["attrs"].(map[string]interface{})
				v.checkMentionAttrs(attrs)
			}
		}
	}
	if content, ok := node["content"].([]interface{}); ok {
		v.validateRawContent(content, depth+1)
	}
}

// checkMentionAttrs enforces the mention invariants: a non-empty string id is
// required, a label is recommended.
func (v *validator) checkMentionAttrs(attrs map[string]interface{}) {
	id, _ := attrs["id"].(string)
	if id == "" {
		v.issue(CodeMentionMissingID, "mention is missing a variable id")
	}
	if label, _ := attrs["label"].(string); label == "" {
		v.warn(CodeMentionNoLabel, "mention has no display label")
	}
}

func (v *validator) enter(container interface{}) bool {
	return enterVisited(v.visited, container)
}
