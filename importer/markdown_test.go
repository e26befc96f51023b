package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hauswerk/vorlage/document"
)

func TestMarkdownBasicBlocks(t *testing.T) {
	input := "# Mietvertrag\n\nSehr geehrte Damen und Herren,\n\n- Kaltmiete\n- Nebenkosten\n"

	result, err := NewMarkdown().Convert(input)
	require.NoError(t, err)

	require.Len(t, result.Content.Content, 3)

	heading := result.Content.Content[0]
	assert.Equal(t, document.TypeHeading, heading.Type)
	assert.Equal(t, 1, heading.Attrs["level"])
	require.Len(t, heading.Content, 1)
	assert.Equal(t, "Mietvertrag", heading.Content[0].Text)

	paragraph := result.Content.Content[1]
	assert.Equal(t, document.TypeParagraph, paragraph.Type)

	list := result.Content.Content[2]
	assert.Equal(t, document.TypeBulletList, list.Type)
	require.Len(t, list.Content, 2)
	assert.Equal(t, document.TypeListItem, list.Content[0].Type)
}

func TestMarkdownInlineMarks(t *testing.T) {
	result, err := NewMarkdown().Convert("Ein **wichtiger** und *betonter* Satz mit `code`.")
	require.NoError(t, err)

	require.Len(t, result.Content.Content, 1)
	inline := result.Content.Content[0].Content

	var strongText, emText, codeText string
	for _, node := range inline {
		for _, mark := range node.Marks {
			switch mark.Type {
			case "strong":
				strongText = node.Text
			case "em":
				emText = node.Text
			case "code":
				codeText = node.Text
			}
		}
	}
	assert.Equal(t, "wichtiger", strongText)
	assert.Equal(t, "betonter", emText)
	assert.Equal(t, "code", codeText)
}

func TestMarkdownLink(t *testing.T) {
	result, err := NewMarkdown().Convert("Siehe [Portal](https://example.de/portal).")
	require.NoError(t, err)

	inline := result.Content.Content[0].Content
	var found bool
	for _, node := range inline {
		for _, mark := range node.Marks {
			if mark.Type == "link" {
				found = true
				assert.Equal(t, "https://example.de/portal", mark.Attrs["href"])
				assert.Equal(t, "Portal", node.Text)
			}
		}
	}
	assert.True(t, found, "expected a link mark")
}

func TestMarkdownMentionDetection(t *testing.T) {
	result, err := NewMarkdown().Convert("Sehr geehrte/r @mieter_name, die Miete beträgt @kaltmiete.")
	require.NoError(t, err)

	inline := result.Content.Content[0].Content

	var mentions []string
	for _, node := range inline {
		if node.Type == document.TypeMention {
			mentions = append(mentions, node.GetStringAttr("id", ""))
		}
	}
	assert.Equal(t, []string{"mieter_name", "kaltmiete"}, mentions)

	// Surrounding text survives the split.
	assert.Equal(t, "Sehr geehrte/r ", inline[0].Text)
}

func TestMarkdownMentionWithUnderscoreID(t *testing.T) {
	// Underscores are emphasis delimiters, so the parser hands the token to
	// the walker in fragments; detection must still see the whole id.
	result, err := NewMarkdown().Convert("Die Wohnung @wohnung_nummer liegt in @haus_ort.")
	require.NoError(t, err)

	inline := result.Content.Content[0].Content
	var mentions []string
	for _, node := range inline {
		if node.Type == document.TypeMention {
			mentions = append(mentions, node.GetStringAttr("id", ""))
		}
	}
	assert.Equal(t, []string{"wohnung_nummer", "haus_ort"}, mentions)

	var texts []string
	for _, node := range inline {
		if node.Type == document.TypeText {
			texts = append(texts, node.Text)
		}
	}
	assert.Equal(t, []string{"Die Wohnung ", " liegt in ", "."}, texts)
}

func TestMarkdownMentionInsideEmphasis(t *testing.T) {
	result, err := NewMarkdown().Convert("Bitte **@mieter_name** kontaktieren.")
	require.NoError(t, err)

	inline := result.Content.Content[0].Content
	var mentions []string
	for _, node := range inline {
		if node.Type == document.TypeMention {
			mentions = append(mentions, node.GetStringAttr("id", ""))
		}
	}
	assert.Equal(t, []string{"mieter_name"}, mentions)
}

func TestMarkdownUnknownTokenStaysText(t *testing.T) {
	result, err := NewMarkdown().Convert("Schreiben Sie an @nicht_vorhanden bitte.")
	require.NoError(t, err)

	inline := result.Content.Content[0].Content
	require.Len(t, inline, 1)
	assert.Equal(t, document.TypeText, inline[0].Type)
	assert.Contains(t, inline[0].Text, "@nicht_vorhanden")
}

func TestMarkdownOrderedList(t *testing.T) {
	result, err := NewMarkdown().Convert("3. erster Punkt\n4. zweiter Punkt\n")
	require.NoError(t, err)

	list := result.Content.Content[0]
	assert.Equal(t, "orderedList", list.Type)
	assert.Equal(t, 3, list.Attrs["order"])
	assert.Len(t, list.Content, 2)
}

func TestMarkdownTable(t *testing.T) {
	input := "| Posten | Betrag |\n| --- | --- |\n| Kaltmiete | 1200 |\n"

	result, err := NewMarkdown().Convert(input)
	require.NoError(t, err)

	table := result.Content.Content[0]
	require.Equal(t, document.TypeTable, table.Type)
	require.Len(t, table.Content, 2)

	header := table.Content[0]
	assert.Equal(t, document.TypeTableRow, header.Type)
	require.Len(t, header.Content, 2)
	assert.Equal(t, "tableHeader", header.Content[0].Type)

	body := table.Content[1]
	assert.Equal(t, document.TypeTableCell, body.Content[0].Type)
}

func TestMarkdownCodeBlock(t *testing.T) {
	result, err := NewMarkdown().Convert("```text\nZeile eins\nZeile zwei\n```\n")
	require.NoError(t, err)

	block := result.Content.Content[0]
	assert.Equal(t, "codeBlock", block.Type)
	assert.Equal(t, "text", block.Attrs["language"])
	require.Len(t, block.Content, 1)
	assert.Equal(t, "Zeile eins\nZeile zwei", block.Content[0].Text)
}

func TestMarkdownEmptyInput(t *testing.T) {
	result, err := NewMarkdown().Convert("")
	require.NoError(t, err)
	assert.Equal(t, document.TypeDocument, result.Content.Type)
	assert.Empty(t, result.Content.Content)
}

func TestMarkdownRoundTripThroughParser(t *testing.T) {
	result, err := NewMarkdown().Convert("# Titel\n\nHallo @mieter_name!")
	require.NoError(t, err)

	serialized := document.Serialize(result.Content)
	require.True(t, serialized.Success)

	parsed := document.Parse(serialized.Content)
	require.True(t, parsed.Success)
	assert.False(t, parsed.WasRecovered)

	extraction := document.ExtractVariables(parsed.Content)
	assert.Equal(t, []string{"mieter_name"}, extraction.Variables)
}
