// Package placeholder renders correspondence templates containing
// @scope.field placeholders (a flat-text mini-language, distinct from the
// document tree's mention nodes) against a runtime context of tenant,
// apartment, house and landlord data. Formatting is fixed to the German
// locale; every recognized placeholder has a bracketed fallback text used
// when the backing data is absent.
package placeholder

import "time"

// Mieter is the tenant entity. Einzug and Auszug are stored as strings
// because legacy records carry free-form dates; unparseable values are
// rendered verbatim rather than masked.
type Mieter struct {
	Name        string              `json:"name,omitempty" yaml:"name,omitempty"`
	Email       string              `json:"email,omitempty" yaml:"email,omitempty"`
	Telefon     string              `json:"telefon,omitempty" yaml:"telefon,omitempty"`
	Einzug      string              `json:"einzug,omitempty" yaml:"einzug,omitempty"`
	Auszug      string              `json:"auszug,omitempty" yaml:"auszug,omitempty"`
	Nebenkosten []NebenkostenPosten `json:"nebenkosten,omitempty" yaml:"nebenkosten,omitempty"`
}

// NebenkostenPosten is a single ancillary-cost entry. Amount stays a string
// end to end; summation parses it on demand.
type NebenkostenPosten struct {
	Bezeichnung string `json:"bezeichnung,omitempty" yaml:"bezeichnung,omitempty"`
	Amount      string `json:"amount" yaml:"amount"`
}

// Wohnung is the apartment entity. Miete is a pointer so that an absent rent
// and a rent of zero stay distinguishable: zero and negative rents are
// rendered as currency, only a missing value falls back.
type Wohnung struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Nummer  string   `json:"nummer,omitempty" yaml:"nummer,omitempty"`
	Groesse float64  `json:"groesse,omitempty" yaml:"groesse,omitempty"`
	Miete   *float64 `json:"miete,omitempty" yaml:"miete,omitempty"`
}

// Haus is the house entity an apartment belongs to.
type Haus struct {
	Name    string  `json:"name,omitempty" yaml:"name,omitempty"`
	Strasse string  `json:"strasse,omitempty" yaml:"strasse,omitempty"`
	Ort     string  `json:"ort,omitempty" yaml:"ort,omitempty"`
	Groesse float64 `json:"groesse,omitempty" yaml:"groesse,omitempty"`
}

// Vermieter is the landlord entity.
type Vermieter struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Context is the loosely-typed bag of entities a template is rendered
// against. Every entity is optional; a referenced but absent entity triggers
// the placeholder's fallback text instead of failing the render.
type Context struct {
	Mieter    *Mieter    `json:"mieter,omitempty" yaml:"mieter,omitempty"`
	Wohnung   *Wohnung   `json:"wohnung,omitempty" yaml:"wohnung,omitempty"`
	Haus      *Haus      `json:"haus,omitempty" yaml:"haus,omitempty"`
	Vermieter *Vermieter `json:"vermieter,omitempty" yaml:"vermieter,omitempty"`
	Datum     time.Time  `json:"datum,omitempty" yaml:"datum,omitempty"`
}

// referenceDate returns the date all @datum, @monat and @jahr placeholders
// derive from, defaulting to today when the context carries none.
func (c Context) referenceDate() time.Time {
	if c.Datum.IsZero() {
		return time.Now()
	}
	return c.Datum
}
