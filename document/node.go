// Package document implements the template document model: a recursive node
// tree (document root, block nodes, inline text and mention nodes) together
// with a robust parser, a structural validator, a variable extractor and a
// canonical serializer. Parsing is total: any input, including malformed JSON
// and self-referential structures, yields a usable document plus diagnostics.
package document

// Node type vocabulary. Unknown types round-trip unchanged when structurally
// valid.
const (
	TypeDocument   = "document"
	TypeParagraph  = "paragraph"
	TypeHeading    = "heading"
	TypeBulletList = "bulletList"
	TypeListItem   = "listItem"
	TypeTable      = "table"
	TypeTableRow   = "tableRow"
	TypeTableCell  = "tableCell"
	TypeText       = "text"
	TypeMention    = "mention"
	TypeHardBreak  = "hardBreak"
)

// MarkMention is the mark type encoding a mention on a text node. The
// extractor recognizes both this form and the mention node form.
const MarkMention = "mention"

// Node represents any node in the document tree (e.g., paragraph, text,
// mention).
type Node struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Content []Node                 `json:"content,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
}

// Mark represents formatting applied to a text node (e.g., strong, em, or a
// mention encoded as a mark).
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// GetStringAttr returns the string attribute for key, or fallback when the
// attribute is absent or not a string.
func (n Node) GetStringAttr(key, fallback string) string {
	if n.Attrs == nil {
		return fallback
	}
	if value, ok := n.Attrs[key].(string); ok {
		return value
	}
	return fallback
}

// IsDocument reports whether the node is a well-formed document root.
func (n Node) IsDocument() bool {
	return n.Type == TypeDocument
}

// Clone returns a deep copy of the node. The tree is a pure value type, so
// only Content, Marks and Attrs need copying.
func (n Node) Clone() Node {
	cloned := n
	if n.Content != nil {
		cloned.Content = make([]Node, len(n.Content))
		for i, child := range n.Content {
			cloned.Content[i] = child.Clone()
		}
	}
	if n.Marks != nil {
		cloned.Marks = make([]Mark, len(n.Marks))
		for i, mark := range n.Marks {
			cloned.Marks[i] = mark.Clone()
		}
	}
	cloned.Attrs = cloneAttrs(n.Attrs)
	return cloned
}

// Clone returns a deep copy of the mark.
func (m Mark) Clone() Mark {
	cloned := m
	cloned.Attrs = cloneAttrs(m.Attrs)
	return cloned
}

func cloneAttrs(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	cloned := make(map[string]interface{}, len(attrs))
	for key, value := range attrs {
		cloned[key] = value
	}
	return cloned
}

// EmptyDocument returns the minimal valid document: a root with a single
// empty paragraph. The parser falls back to this shape when input is
// unusable.
func EmptyDocument() Node {
	return Node{
		Type:    TypeDocument,
		Content: []Node{{Type: TypeParagraph}},
	}
}

// TextDocument wraps plain text in a single-paragraph document.
func TextDocument(text string) Node {
	return Node{
		Type: TypeDocument,
		Content: []Node{{
			Type:    TypeParagraph,
			Content: []Node{{Type: TypeText, Text: text}},
		}},
	}
}
