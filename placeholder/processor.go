package placeholder

import (
	"regexp"
	"strconv"
	"strings"
)

// placeholderPattern matches the @scope or @scope.field grammar. Unrecognized
// scope/field combinations still match so they can be bracket-echoed and
// reported; text not matching the grammar is left verbatim.
var placeholderPattern = regexp.MustCompile(`@([A-Za-z]+)(?:\.([A-Za-z]+))?`)

// Result holds a rendered template plus the placeholders that could not be
// resolved, in first-occurrence order without duplicates.
type Result struct {
	Success                bool     `json:"success"`
	ProcessedContent       string   `json:"processedContent"`
	UnresolvedPlaceholders []string `json:"unresolvedPlaceholders,omitempty"`
}

// Placeholder is a placeholder key found in a template, without the leading
// @.
type Placeholder struct {
	Key string `json:"key"`
}

// ContextCheck reports which top-level context entities a template needs but
// the given context lacks.
type ContextCheck struct {
	IsValid        bool     `json:"isValid"`
	MissingContext []string `json:"missingContext,omitempty"`
}

// Process substitutes every placeholder in template against ctx. Recognized
// placeholders with absent backing data render their documented fallback
// text; unrecognized placeholders render a bracketed echo of the literal
// placeholder and are reported as unresolved. Repeated identical placeholders
// resolve independently to identical substitutions.
func Process(template string, ctx Context) Result {
	if template == "" {
		return Result{Success: true, ProcessedContent: ""}
	}

	var unresolved []string
	seen := make(map[string]bool)

	processed := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		scope, field := splitPlaceholder(match)
		if value, ok := resolve(scope, field, ctx); ok {
			return value
		}
		if !seen[match] {
			seen[match] = true
			unresolved = append(unresolved, match)
		}
		return "[" + match + "]"
	})

	return Result{
		Success:                true,
		ProcessedContent:       processed,
		UnresolvedPlaceholders: unresolved,
	}
}

// UsedPlaceholders returns the distinct placeholder keys present in template,
// in first-occurrence order.
func UsedPlaceholders(template string) []Placeholder {
	matches := placeholderPattern.FindAllString(template, -1)
	seen := make(map[string]bool, len(matches))
	placeholders := make([]Placeholder, 0, len(matches))
	for _, match := range matches {
		key := strings.TrimPrefix(match, "@")
		if seen[key] {
			continue
		}
		seen[key] = true
		placeholders = append(placeholders, Placeholder{Key: key})
	}
	return placeholders
}

// ValidateContext reports which entities the template references but ctx does
// not carry, by proper name. It checks entity presence only; individual
// fields falling back does not make a context invalid.
func ValidateContext(template string, ctx Context) ContextCheck {
	var missing []string
	seen := make(map[string]bool)

	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		scope := strings.ToLower(match[1])
		name, absent := missingEntity(scope, ctx)
		if !absent || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}

	return ContextCheck{IsValid: len(missing) == 0, MissingContext: missing}
}

func missingEntity(scope string, ctx Context) (string, bool) {
	switch scope {
	case "mieter":
		return "Mieter", ctx.Mieter == nil
	case "wohnung":
		return "Wohnung", ctx.Wohnung == nil
	case "haus":
		return "Haus", ctx.Haus == nil
	case "vermieter":
		return "Vermieter", ctx.Vermieter == nil
	default:
		// @datum, @monat and @jahr need no entity; unknown scopes are a
		// rendering concern, not a context concern.
		return "", false
	}
}

func splitPlaceholder(match string) (string, string) {
	trimmed := strings.TrimPrefix(match, "@")
	if dot := strings.IndexByte(trimmed, '.'); dot >= 0 {
		return trimmed[:dot], trimmed[dot+1:]
	}
	return trimmed, ""
}

// resolve returns the substitution for a scope/field pair, or false when the
// combination is not part of the grammar.
func resolve(scope, field string, ctx Context) (string, bool) {
	switch scope {
	case "mieter":
		return resolveMieter(field, ctx.Mieter)
	case "wohnung":
		return resolveWohnung(field, ctx)
	case "haus":
		return resolveHaus(field, ctx.Haus)
	case "vermieter":
		return resolveVermieter(field, ctx.Vermieter)
	case "datum":
		return resolveDatum(field, ctx)
	case "monat":
		return resolveMonat(field, ctx)
	case "jahr":
		if field != "" {
			return "", false
		}
		return strconv.Itoa(ctx.referenceDate().Year()), true
	default:
		return "", false
	}
}

func resolveMieter(field string, mieter *Mieter) (string, bool) {
	switch field {
	case "name":
		return stringOr(mieter == nil, func() string { return mieter.Name }, "[Mieter Name]"), true
	case "email":
		return stringOr(mieter == nil, func() string { return mieter.Email }, "[Mieter E-Mail]"), true
	case "telefon":
		return stringOr(mieter == nil, func() string { return mieter.Telefon }, "[Mieter Telefon]"), true
	case "einzug":
		return dateOr(mieter == nil, func() string { return mieter.Einzug }, "[Einzugsdatum]"), true
	case "auszug":
		return dateOr(mieter == nil, func() string { return mieter.Auszug }, "[Auszugsdatum]"), true
	case "nebenkosten":
		if mieter == nil || len(mieter.Nebenkosten) == 0 {
			return "[Nebenkosten]", true
		}
		return FormatCurrency(sumAmounts(mieter.Nebenkosten)), true
	default:
		return "", false
	}
}

func resolveWohnung(field string, ctx Context) (string, bool) {
	wohnung := ctx.Wohnung
	switch field {
	case "name":
		return stringOr(wohnung == nil, func() string { return wohnung.Name }, "[Wohnung Bezeichnung]"), true
	case "groesse":
		if wohnung == nil || wohnung.Groesse <= 0 {
			return "[Wohnungsgröße]", true
		}
		return FormatArea(wohnung.Groesse), true
	case "miete":
		// Zero and negative rents are real values; only an unset rent falls
		// back.
		if wohnung == nil || wohnung.Miete == nil {
			return "[Kaltmiete]", true
		}
		return FormatCurrency(*wohnung.Miete), true
	case "nummer":
		if wohnung == nil {
			return "[Wohnungsnummer]", true
		}
		label := wohnung.Nummer
		if label == "" {
			label = wohnung.Name
		}
		return combinedLabel(label, ctx.Haus, "[Wohnungsnummer]"), true
	case "adresse":
		if wohnung == nil {
			return "[Wohnungsadresse]", true
		}
		return combinedLabel(wohnung.Name, ctx.Haus, "[Wohnungsadresse]"), true
	default:
		return "", false
	}
}

// combinedLabel synthesizes an apartment label from the apartment part and
// the linked house's street and city, degrading to just the apartment part
// when the house link is absent.
func combinedLabel(apartment string, haus *Haus, fallback string) string {
	parts := make([]string, 0, 3)
	if apartment != "" {
		parts = append(parts, apartment)
	}
	if haus != nil {
		if haus.Strasse != "" {
			parts = append(parts, haus.Strasse)
		}
		if haus.Ort != "" {
			parts = append(parts, haus.Ort)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}

func resolveHaus(field string, haus *Haus) (string, bool) {
	switch field {
	case "name":
		return stringOr(haus == nil, func() string { return haus.Name }, "[Haus Name]"), true
	case "ort":
		return stringOr(haus == nil, func() string { return haus.Ort }, "[Ort]"), true
	case "strasse":
		return stringOr(haus == nil, func() string { return haus.Strasse }, "[Straße]"), true
	case "groesse":
		if haus == nil || haus.Groesse <= 0 {
			return "[Hausgröße]", true
		}
		return FormatArea(haus.Groesse), true
	default:
		return "", false
	}
}

func resolveVermieter(field string, vermieter *Vermieter) (string, bool) {
	switch field {
	case "name":
		return stringOr(vermieter == nil, func() string { return vermieter.Name }, "[Vermieter Name]"), true
	case "email":
		return stringOr(vermieter == nil, func() string { return vermieter.Email }, "[Vermieter E-Mail]"), true
	default:
		return "", false
	}
}

func resolveDatum(field string, ctx Context) (string, bool) {
	switch field {
	case "":
		return FormatDate(ctx.referenceDate()), true
	case "lang":
		return FormatDateLong(ctx.referenceDate()), true
	default:
		return "", false
	}
}

func resolveMonat(field string, ctx Context) (string, bool) {
	switch field {
	case "":
		return strconv.Itoa(int(ctx.referenceDate().Month())), true
	case "name":
		return MonthName(ctx.referenceDate().Month()), true
	default:
		return "", false
	}
}

// stringOr returns the field value, or fallback when the entity is absent or
// the value empty.
func stringOr(absent bool, value func() string, fallback string) string {
	if absent {
		return fallback
	}
	if v := value(); v != "" {
		return v
	}
	return fallback
}

// dateOr formats a stored date field as DD.MM.YYYY. An unparseable non-empty
// value is passed through unchanged to preserve raw legacy data.
func dateOr(absent bool, value func() string, fallback string) string {
	if absent {
		return fallback
	}
	raw := value()
	if raw == "" {
		return fallback
	}
	if t, ok := parseDate(raw); ok {
		return FormatDate(t)
	}
	return raw
}
