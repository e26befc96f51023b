package document

import (
	"fmt"
	"sort"
)

// Context requirement groups, the categories of runtime data a variable
// depends on.
const (
	GroupTenant    = "tenant"
	GroupApartment = "apartment"
	GroupLease     = "lease"
	GroupProperty  = "property"
	GroupLandlord  = "landlord"
)

// variableGroups maps each known variable identifier to the runtime data
// group needed to render it. Ids not listed here are free-floating labels
// with no context dependency.
var variableGroups = map[string]string{
	"mieter_name":    GroupTenant,
	"mieter_anrede":  GroupTenant,
	"mieter_email":   GroupTenant,
	"mieter_telefon": GroupTenant,
	"mieter_einzug":  GroupTenant,
	"mieter_auszug":  GroupTenant,

	"wohnung_name":    GroupApartment,
	"wohnung_nummer":  GroupApartment,
	"wohnung_groesse": GroupApartment,
	"wohnung_adresse": GroupApartment,

	"vertrag_beginn":  GroupLease,
	"vertrag_ende":    GroupLease,
	"kaltmiete":       GroupLease,
	"nebenkosten":     GroupLease,
	"kaution":         GroupLease,
	"zahlung_monat":   GroupLease,

	"haus_name":    GroupProperty,
	"haus_strasse": GroupProperty,
	"haus_ort":     GroupProperty,
	"haus_groesse": GroupProperty,

	"vermieter_name":  GroupLandlord,
	"vermieter_email": GroupLandlord,
}

// ExtractVariables collects the distinct variable identifiers referenced by
// mention nodes and mention marks anywhere in the tree. The result is sorted
// alphabetically and deduplicated; that ordering is part of the contract, not
// an accident of traversal. Mentions without a usable id are recorded as
// warnings and excluded. Internal failures never propagate.
func ExtractVariables(content Node) (result ExtractionResult) {
	e := &extractor{seen: make(map[string]bool)}

	defer func() {
		if recover() != nil {
			result = ExtractionResult{
				Variables: []string{},
				Errors:    []string{"Variable extraction failed"},
			}
		}
	}()

	e.walk(content, 0)

	variables := make([]string, 0, len(e.seen))
	for id := range e.seen {
		variables = append(variables, id)
	}
	sort.Strings(variables)

	return ExtractionResult{
		Variables: variables,
		Warnings:  e.warnings,
	}
}

type extractor struct {
	seen     map[string]bool
	warnings []string
}

func (e *extractor) walk(node Node, depth int) {
	if depth > maxDepth {
		e.warnings = append(e.warnings, fmt.Sprintf("content nesting exceeds %d levels; branch dropped", maxDepth))
		return
	}

	if node.Type == TypeMention {
		e.collect(node.Attrs, "mention node")
	}
	for _, mark := range node.Marks {
		if mark.Type == MarkMention {
			e.collect(mark.Attrs, "mention mark")
		}
	}
	for _, child := range node.Content {
		e.walk(child, depth+1)
	}
}

func (e *extractor) collect(attrs map[string]interface{}, origin string) {
	raw, ok := attrs["id"]
	if !ok {
		e.warnings = append(e.warnings, fmt.Sprintf("%s without id skipped", origin))
		return
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		e.warnings = append(e.warnings, fmt.Sprintf("%s with empty or non-string id skipped", origin))
		return
	}
	e.seen[id] = true
}

// ContextRequirements maps variable identifiers to the sorted, deduplicated
// set of data groups needed to render them. Unknown identifiers are silently
// excluded.
func ContextRequirements(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if group, ok := variableGroups[id]; ok {
			seen[group] = true
		}
	}

	groups := make([]string, 0, len(seen))
	for group := range seen {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// KnownVariable reports whether id is a variable identifier with a registered
// context dependency.
func KnownVariable(id string) bool {
	_, ok := variableGroups[id]
	return ok
}
