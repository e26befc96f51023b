package document

import (
	"encoding/json"
	"fmt"
)

// rootJSON forces the content key onto the serialized root even when the
// document is empty, so the canonical form always satisfies the root
// invariant.
type rootJSON struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Serialize renders a document tree as canonical JSON. Unset optional fields
// are omitted so the output is stable and diffable. The content must be a
// document root with list content; anything else fails without producing
// output.
func Serialize(content Node) SerializeResult {
	if !content.IsDocument() {
		return SerializeResult{
			Errors: []string{fmt.Sprintf("cannot serialize root of type %q", content.Type)},
		}
	}

	root := rootJSON{Type: TypeDocument, Content: content.Content}
	if root.Content == nil {
		root.Content = []Node{}
	}

	data, err := json.Marshal(root)
	if err != nil {
		return SerializeResult{
			Errors: []string{fmt.Sprintf("serialization failed: %v", err)},
		}
	}

	return SerializeResult{Success: true, Content: string(data)}
}
