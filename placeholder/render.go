package placeholder

import (
	"github.com/hauswerk/vorlage/document"
)

// DocumentResult holds a rendered document tree plus the placeholders and
// mentions that could not be resolved, in first-occurrence order.
type DocumentResult struct {
	Success                bool          `json:"success"`
	Content                document.Node `json:"content"`
	UnresolvedPlaceholders []string      `json:"unresolvedPlaceholders,omitempty"`
}

// mentionExpressions maps mention variable identifiers to the placeholder
// expression that renders them. Identifiers without an expression fall back to
// the mention's stored label.
var mentionExpressions = map[string]string{
	"mieter_name":    "@mieter.name",
	"mieter_email":   "@mieter.email",
	"mieter_telefon": "@mieter.telefon",
	"mieter_einzug":  "@mieter.einzug",
	"mieter_auszug":  "@mieter.auszug",
	"nebenkosten":    "@mieter.nebenkosten",

	"wohnung_name":    "@wohnung.name",
	"wohnung_nummer":  "@wohnung.nummer",
	"wohnung_groesse": "@wohnung.groesse",
	"wohnung_adresse": "@wohnung.adresse",
	"kaltmiete":       "@wohnung.miete",

	"haus_name":    "@haus.name",
	"haus_strasse": "@haus.strasse",
	"haus_ort":     "@haus.ort",
	"haus_groesse": "@haus.groesse",

	"vermieter_name":  "@vermieter.name",
	"vermieter_email": "@vermieter.email",

	"zahlung_monat": "@monat.name",
}

const maxRenderDepth = 200

// RenderDocument substitutes placeholders in every text node and resolves
// mention nodes against ctx, returning a new tree. The input is not modified.
func RenderDocument(content document.Node, ctx Context) DocumentResult {
	r := &renderer{ctx: ctx, seen: make(map[string]bool)}
	rendered := r.render(content, 0)

	return DocumentResult{
		Success:                true,
		Content:                rendered,
		UnresolvedPlaceholders: r.unresolved,
	}
}

type renderer struct {
	ctx        Context
	seen       map[string]bool
	unresolved []string
}

func (r *renderer) render(node document.Node, depth int) document.Node {
	if depth > maxRenderDepth {
		return node.Clone()
	}

	if node.Type == document.TypeMention {
		return document.Node{
			Type: document.TypeText,
			Text: r.resolveMention(node),
		}
	}

	out := node.Clone()
	if out.Text != "" {
		result := Process(out.Text, r.ctx)
		out.Text = result.ProcessedContent
		r.record(result.UnresolvedPlaceholders)
	}
	for i, child := range node.Content {
		out.Content[i] = r.render(child, depth+1)
	}
	return out
}

func (r *renderer) resolveMention(node document.Node) string {
	id := node.GetStringAttr("id", "")
	label := node.GetStringAttr("label", "")

	if expr, ok := mentionExpressions[id]; ok {
		result := Process(expr, r.ctx)
		r.record(result.UnresolvedPlaceholders)
		return result.ProcessedContent
	}

	// Free-floating labels render as-is.
	if label != "" {
		return label
	}
	if id == "" {
		return ""
	}
	// Echo and reported token carry the same @-prefixed form so callers
	// can match the one against the other.
	r.record([]string{"@" + id})
	return "[@" + id + "]"
}

func (r *renderer) record(unresolved []string) {
	for _, placeholder := range unresolved {
		if r.seen[placeholder] {
			continue
		}
		r.seen[placeholder] = true
		r.unresolved = append(r.unresolved, placeholder)
	}
}
