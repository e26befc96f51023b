package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `{"type":"document","content":[{"type":"paragraph","content":[{"type":"text","text":"Sehr geehrter Herr Mustermann,"}]}]}`

func TestParseWellFormed(t *testing.T) {
	result := Parse(wellFormed)

	require.True(t, result.Success)
	assert.False(t, result.WasRecovered)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Content.Content, 1)
	paragraph := result.Content.Content[0]
	assert.Equal(t, TypeParagraph, paragraph.Type)
	require.Len(t, paragraph.Content, 1)
	assert.Equal(t, "Sehr geehrter Herr Mustermann,", paragraph.Content[0].Text)
}

func TestParseNilInput(t *testing.T) {
	result := Parse(nil)

	require.True(t, result.Success)
	assert.Equal(t, EmptyDocument(), result.Content)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "null or undefined")
}

func TestParseUnsupportedPrimitives(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		kind  string
	}{
		{"int", 42, "number"},
		{"float", 4.2, "number"},
		{"bool", true, "boolean"},
		{"func", func() {}, "function"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.input)

			assert.False(t, result.Success)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], "unsupported content type")
			assert.Contains(t, result.Errors[0], tc.kind)
			// A fallback document is still supplied.
			assert.True(t, result.Content.IsDocument())
		})
	}
}

func TestParseMalformedJSONRecovery(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"trailing comma", `{"type":"document","content":[{"type":"paragraph"},]}`},
		{"single quotes", `{'type':'document','content':[{'type':'paragraph'}]}`},
		{"bare keys", `{type:"document",content:[{type:"paragraph"}]}`},
		{"line comment", "{\"type\":\"document\", // legacy export\n\"content\":[]}"},
		{"block comment", `{"type":"document","content":[/* none */]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(tc.input)

			require.True(t, result.Success, "errors: %v", result.Errors)
			assert.True(t, result.WasRecovered)
			assert.True(t, result.Content.IsDocument())
		})
	}
}

func TestParsePlainStringBecomesTextDocument(t *testing.T) {
	result := Parse("Sehr geehrte Damen und Herren")

	require.True(t, result.Success)
	assert.True(t, result.WasRecovered)
	require.Len(t, result.Content.Content, 1)
	paragraph := result.Content.Content[0]
	require.Len(t, paragraph.Content, 1)
	assert.Equal(t, "Sehr geehrte Damen und Herren", paragraph.Content[0].Text)
}

func TestParseEmptyString(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		result := Parse(input)

		require.True(t, result.Success)
		assert.Equal(t, EmptyDocument(), result.Content)
		assert.NotEmpty(t, result.Warnings)
	}
}

func TestParsePartialObjects(t *testing.T) {
	t.Run("content without root type", func(t *testing.T) {
		result := Parse(map[string]interface{}{
			"content": []interface{}{
				map[string]interface{}{"type": "paragraph"},
			},
		})

		require.True(t, result.Success)
		assert.True(t, result.WasRecovered)
		assert.True(t, result.Content.IsDocument())
		require.Len(t, result.Content.Content, 1)
	})

	t.Run("wrong root type", func(t *testing.T) {
		result := Parse(map[string]interface{}{
			"type":    "doc",
			"content": []interface{}{},
		})

		require.True(t, result.Success)
		assert.True(t, result.WasRecovered)
		assert.True(t, result.Content.IsDocument())
	})

	t.Run("text only", func(t *testing.T) {
		result := Parse(map[string]interface{}{"text": "Hallo"})

		require.True(t, result.Success)
		assert.True(t, result.WasRecovered)
		require.Len(t, result.Content.Content, 1)
		assert.Equal(t, "Hallo", result.Content.Content[0].Content[0].Text)
	})

	t.Run("bare array", func(t *testing.T) {
		result := Parse([]interface{}{
			map[string]interface{}{"type": "paragraph"},
		})

		require.True(t, result.Success)
		assert.True(t, result.WasRecovered)
		require.Len(t, result.Content.Content, 1)
	})

	t.Run("empty object", func(t *testing.T) {
		result := Parse(map[string]interface{}{})

		require.True(t, result.Success)
		assert.Equal(t, EmptyDocument(), result.Content)
		assert.NotEmpty(t, result.Warnings)
	})

	t.Run("object without content or text", func(t *testing.T) {
		result := Parse(map[string]interface{}{"foo": 1})

		assert.False(t, result.Success)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "invalid root structure")
		assert.True(t, result.Content.IsDocument())
	})
}

func TestParseNormalization(t *testing.T) {
	t.Run("non-object content entries skipped", func(t *testing.T) {
		result := Parse(map[string]interface{}{
			"type": "document",
			"content": []interface{}{
				"stray string",
				map[string]interface{}{"type": "paragraph"},
				42,
			},
		})

		require.True(t, result.Success)
		require.Len(t, result.Content.Content, 1)
		assert.Len(t, result.Warnings, 2)
	})

	t.Run("non-string text stringified", func(t *testing.T) {
		result := Parse(map[string]interface{}{
			"type": "document",
			"content": []interface{}{
				map[string]interface{}{
					"type": "paragraph",
					"content": []interface{}{
						map[string]interface{}{"type": "text", "text": 250.0},
					},
				},
			},
		})

		require.True(t, result.Success)
		assert.Equal(t, "250", result.Content.Content[0].Content[0].Text)
	})

	t.Run("non-array marks and non-object attrs dropped", func(t *testing.T) {
		result := Parse(map[string]interface{}{
			"type": "document",
			"content": []interface{}{
				map[string]interface{}{
					"type":  "paragraph",
					"marks": "strong",
					"attrs": "broken",
				},
			},
		})

		require.True(t, result.Success)
		node := result.Content.Content[0]
		assert.Nil(t, node.Marks)
		assert.Nil(t, node.Attrs)
		assert.Len(t, result.Warnings, 2)
	})

	t.Run("missing type inferred from shape", func(t *testing.T) {
		result := Parse(map[string]interface{}{
			"type": "document",
			"content": []interface{}{
				map[string]interface{}{"text": "bare"},
				map[string]interface{}{"content": []interface{}{}},
				map[string]interface{}{"attrs": map[string]interface{}{}},
			},
		})

		require.True(t, result.Success)
		require.Len(t, result.Content.Content, 2)
		assert.Equal(t, TypeText, result.Content.Content[0].Type)
		assert.Equal(t, TypeParagraph, result.Content.Content[1].Type)
	})

	t.Run("text node content dropped", func(t *testing.T) {
		result := Parse(map[string]interface{}{
			"type": "document",
			"content": []interface{}{
				map[string]interface{}{
					"type":    "text",
					"text":    "ok",
					"content": []interface{}{map[string]interface{}{"type": "text"}},
				},
			},
		})

		require.True(t, result.Success)
		node := result.Content.Content[0]
		assert.Equal(t, "ok", node.Text)
		assert.Nil(t, node.Content)
	})
}

func TestParseCyclicInput(t *testing.T) {
	paragraph := map[string]interface{}{"type": "paragraph"}
	paragraph["content"] = []interface{}{paragraph}
	root := map[string]interface{}{
		"type":    "document",
		"content": []interface{}{paragraph},
	}

	result := Parse(root)

	require.True(t, result.Success)
	assert.True(t, result.Content.IsDocument())
	found := false
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "cyclic") {
			found = true
		}
	}
	assert.True(t, found, "expected a cycle warning, got %v", result.Warnings)
}

func TestParseDeeplyNestedInput(t *testing.T) {
	inner := map[string]interface{}{"type": "paragraph"}
	node := inner
	for i := 0; i < maxDepth*2; i++ {
		node = map[string]interface{}{
			"type":    "paragraph",
			"content": []interface{}{node},
		}
	}
	root := map[string]interface{}{
		"type":    "document",
		"content": []interface{}{node},
	}

	result := Parse(root)

	require.True(t, result.Success)
	assert.NotEmpty(t, result.Warnings)
}

func TestParseSerializeRoundTrip(t *testing.T) {
	first := Parse(wellFormed)
	require.True(t, first.Success)

	serialized := Serialize(first.Content)
	require.True(t, serialized.Success)

	second := Parse(serialized.Content)
	require.True(t, second.Success)
	assert.Equal(t, first.Content, second.Content)
}

func TestParseTypedNodeInput(t *testing.T) {
	t.Run("document passes through", func(t *testing.T) {
		doc := TextDocument("Hallo")
		result := Parse(doc)

		require.True(t, result.Success)
		assert.False(t, result.WasRecovered)
		assert.Equal(t, doc, result.Content)
	})

	t.Run("non-document root coerced", func(t *testing.T) {
		result := Parse(Node{Type: "doc", Content: []Node{{Type: TypeParagraph}}})

		require.True(t, result.Success)
		assert.True(t, result.WasRecovered)
		assert.True(t, result.Content.IsDocument())
	})

	t.Run("nil pointer", func(t *testing.T) {
		var node *Node
		result := Parse(node)

		require.True(t, result.Success)
		assert.Equal(t, EmptyDocument(), result.Content)
	})
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"plain text",
		wellFormed,
		`{"type":"document","content":[{"type":"mention","attrs":{"id":"mieter_name"}}]}`,
		`{type:'document',content:[],}`,
		`[{"type":"paragraph"}]`,
		`{"text":"nur text"}`,
		`// comment`,
		`{"type":"document","content":[{"type":"text","text":42}]}`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		result := Parse(input)
		if !result.Content.IsDocument() {
			t.Fatalf("parse returned non-document root %q", result.Content.Type)
		}
		if result.Content.Content == nil {
			t.Fatal("parse returned document without content list")
		}
	})
}
