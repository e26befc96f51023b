package document

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// maxDepth bounds tree traversal. Together with the visited set it
// guarantees termination on adversarial input.
const maxDepth = 200

// Parse converts any representation of template content into a well-formed
// document tree. It attempts, in order: null handling, strict JSON parsing,
// forgiving JSON repair, literal-text wrapping and structural coercion of
// partial objects. Each fallthrough records a warning; Parse never panics and
// Content is always usable. Success is false only when the original input was
// fundamentally unusable (wrong primitive type, unrecoverable root
// structure).
func Parse(input interface{}) (result ParseResult) {
	s := &parseState{visited: make(map[uintptr]bool)}

	defer func() {
		if r := recover(); r != nil {
			result = ParseResult{
				Success: false,
				Content: EmptyDocument(),
				Errors:  []string{fmt.Sprintf("content parsing failed: %v", r)},
			}
		}
	}()

	content, success := s.parseRoot(input)
	return ParseResult{
		Success:      success,
		Content:      content,
		Errors:       s.errors,
		Warnings:     s.warnings,
		WasRecovered: s.recovered,
	}
}

type parseState struct {
	errors    []string
	warnings  []string
	recovered bool
	visited   map[uintptr]bool
}

func (s *parseState) warnf(format string, args ...interface{}) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func (s *parseState) errorf(format string, args ...interface{}) {
	s.errors = append(s.errors, fmt.Sprintf(format, args...))
}

func (s *parseState) parseRoot(input interface{}) (Node, bool) {
	switch value := input.(type) {
	case nil:
		s.warnf("null or undefined input; using empty document")
		return EmptyDocument(), true

	case string:
		return s.parseString(value)

	case []byte:
		return s.parseString(string(value))

	case json.RawMessage:
		return s.parseString(string(value))

	case Node:
		return s.parseTypedNode(value)

	case *Node:
		if value == nil {
			s.warnf("null or undefined input; using empty document")
			return EmptyDocument(), true
		}
		return s.parseTypedNode(*value)

	case []Node:
		s.recovered = true
		s.warnf("bare content array wrapped in implicit document root")
		root := Node{Type: TypeDocument, Content: make([]Node, len(value))}
		for i, child := range value {
			root.Content[i] = child.Clone()
		}
		return root, true

	case map[string]interface{}:
		return s.parseObject(value)

	case []interface{}:
		s.recovered = true
		s.warnf("bare content array wrapped in implicit document root")
		return Node{Type: TypeDocument, Content: s.normalizeContent(value, 1)}, true

	default:
		s.errorf("unsupported content type: %s", describeKind(input))
		return EmptyDocument(), false
	}
}

// parseString attempts a strict JSON parse, then a forgiving re-parse via
// RepairJSON, and finally wraps the whole string as literal text.
func (s *parseState) parseString(raw string) (Node, bool) {
	if strings.TrimSpace(raw) == "" {
		s.warnf("empty content string; using empty document")
		return EmptyDocument(), true
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		repaired := RepairJSON(raw)
		if repaired != raw && json.Unmarshal([]byte(repaired), &decoded) == nil {
			s.recovered = true
			s.warnf("recovered malformed JSON content")
		} else {
			s.recovered = true
			s.warnf("content is not JSON; treated as literal text")
			return TextDocument(raw), true
		}
	}

	switch value := decoded.(type) {
	case nil:
		s.warnf("null or undefined input; using empty document")
		return EmptyDocument(), true
	case map[string]interface{}:
		return s.parseObject(value)
	case []interface{}:
		s.recovered = true
		s.warnf("bare content array wrapped in implicit document root")
		return Node{Type: TypeDocument, Content: s.normalizeContent(value, 1)}, true
	default:
		// A bare JSON scalar is not a document; keep the original string.
		s.recovered = true
		s.warnf("scalar JSON content treated as literal text")
		return TextDocument(raw), true
	}
}

func (s *parseState) parseTypedNode(node Node) (Node, bool) {
	switch {
	case node.IsDocument():
		cloned := node.Clone()
		if cloned.Content == nil {
			cloned.Content = []Node{}
		}
		return cloned, true
	case node.Content != nil:
		s.recovered = true
		s.warnf("coerced root type %q to document", node.Type)
		return Node{Type: TypeDocument, Content: node.Clone().Content}, true
	case node.Text != "":
		s.recovered = true
		s.warnf("wrapped bare text in a paragraph")
		return TextDocument(node.Text), true
	default:
		s.warnf("empty node input; using empty document")
		return EmptyDocument(), true
	}
}

func (s *parseState) parseObject(obj map[string]interface{}) (Node, bool) {
	rootType, _ := obj["type"].(string)
	rawContent, hasContent := obj["content"]
	contentList, contentIsList := rawContent.([]interface{})

	switch {
	case rootType == TypeDocument && contentIsList:
		return Node{Type: TypeDocument, Content: s.normalizeContent(contentList, 1)}, true

	case rootType == TypeDocument && !contentIsList:
		s.recovered = true
		if hasContent {
			s.warnf("document root content is not an array; coerced to empty")
		} else {
			s.warnf("document root missing content; coerced to empty")
		}
		return Node{Type: TypeDocument, Content: []Node{}}, true

	case contentIsList:
		s.recovered = true
		if rootType == "" {
			s.warnf("missing root type; coerced to document")
		} else {
			s.warnf("coerced root type %q to document", rootType)
		}
		return Node{Type: TypeDocument, Content: s.normalizeContent(contentList, 1)}, true

	default:
		if rawText, ok := obj["text"]; ok {
			s.recovered = true
			s.warnf("wrapped bare text in a paragraph")
			return TextDocument(s.coerceText(rawText)), true
		}
		if len(obj) == 0 {
			s.warnf("empty content object; using empty document")
			return EmptyDocument(), true
		}
		s.errorf("invalid root structure: object has neither content nor text")
		return EmptyDocument(), false
	}
}

// normalizeContent converts a decoded content array into well-formed child
// nodes, skipping entries that cannot be coerced.
func (s *parseState) normalizeContent(entries []interface{}, depth int) []Node {
	if depth > maxDepth {
		s.warnf("content nesting exceeds %d levels; branch dropped", maxDepth)
		return nil
	}
	if !s.enter(entries) {
		return nil
	}

	nodes := make([]Node, 0, len(entries))
	for i, entry := range entries {
		child, ok := entry.(map[string]interface{})
		if !ok {
			s.warnf("content entry %d is not a node object; skipped", i)
			continue
		}
		if node, ok := s.normalizeNode(child, depth); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (s *parseState) normalizeNode(obj map[string]interface{}, depth int) (Node, bool) {
	if depth > maxDepth {
		s.warnf("content nesting exceeds %d levels; branch dropped", maxDepth)
		return Node{}, false
	}
	if !s.enter(obj) {
		return Node{}, false
	}

	node := Node{}

	if nodeType, ok := obj["type"].(string); ok && nodeType != "" {
		node.Type = nodeType
	} else {
		// Infer the type for partially-formed nodes; skip when nothing
		// identifies the shape.
		switch {
		case obj["text"] != nil:
			node.Type = TypeText
			s.warnf("node missing type; inferred text")
		case obj["content"] != nil:
			node.Type = TypeParagraph
			s.warnf("node missing type; inferred paragraph")
		default:
			s.warnf("node missing type; skipped")
			return Node{}, false
		}
	}

	if rawText, ok := obj["text"]; ok {
		text, isString := rawText.(string)
		if !isString {
			text = s.coerceText(rawText)
			s.warnf("non-string text coerced in %s node", node.Type)
		}
		node.Text = text
	}

	if rawContent, ok := obj["content"]; ok {
		switch content := rawContent.(type) {
		case []interface{}:
			if node.Type == TypeText {
				// A text node never carries children.
				s.warnf("text node content dropped")
			} else {
				node.Content = s.normalizeContent(content, depth+1)
			}
		case map[string]interface{}:
			s.warnf("non-array content wrapped in %s node", node.Type)
			if child, ok := s.normalizeNode(content, depth+1); ok {
				node.Content = []Node{child}
			}
		default:
			s.warnf("non-array content dropped in %s node", node.Type)
		}
	}

	if rawMarks, ok := obj["marks"]; ok {
		if marks, isList := rawMarks.([]interface{}); isList {
			node.Marks = s.normalizeMarks(marks, node.Type)
		} else {
			s.warnf("non-array marks dropped in %s node", node.Type)
		}
	}

	if rawAttrs, ok := obj["attrs"]; ok {
		if attrs, isMap := rawAttrs.(map[string]interface{}); isMap {
			node.Attrs = attrs
		} else {
			s.warnf("non-object attrs dropped in %s node", node.Type)
		}
	}

	return node, true
}

func (s *parseState) normalizeMarks(entries []interface{}, nodeType string) []Mark {
	marks := make([]Mark, 0, len(entries))
	for i, entry := range entries {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			s.warnf("mark %d on %s node is not an object; skipped", i, nodeType)
			continue
		}
		markType, ok := obj["type"].(string)
		if !ok || markType == "" {
			s.warnf("mark %d on %s node missing type; skipped", i, nodeType)
			continue
		}
		mark := Mark{Type: markType}
		if attrs, isMap := obj["attrs"].(map[string]interface{}); isMap {
			mark.Attrs = attrs
		}
		marks = append(marks, mark)
	}
	if len(marks) == 0 {
		return nil
	}
	return marks
}

func (s *parseState) enter(container interface{}) bool {
	if !enterVisited(s.visited, container) {
		s.warnf("cyclic reference detected; branch dropped")
		return false
	}
	return true
}

func (s *parseState) coerceText(value interface{}) string {
	switch text := value.(type) {
	case string:
		return text
	case float64:
		return strconv.FormatFloat(text, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(text)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", text)
	}
}

func describeKind(input interface{}) string {
	value := reflect.ValueOf(input)
	switch value.Kind() {
	case reflect.Func:
		return "function"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return value.Kind().String()
	}
}
