package placeholder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatting is fixed to German. If internationalization is ever needed this
// file is the single seam to parameterize.
var german = message.NewPrinter(language.German)

var monthNames = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// FormatCurrency renders an amount with two decimals, German separators and a
// non-breaking space before the euro sign, e.g. 1200 -> "1.200,00 €".
func FormatCurrency(amount float64) string {
	return german.Sprintf("%.2f", amount) + " €"
}

// FormatArea renders a size in square meters, e.g. 56.5 -> "56,5 m²".
func FormatArea(size float64) string {
	formatted := strconv.FormatFloat(size, 'f', -1, 64)
	formatted = strings.Replace(formatted, ".", ",", 1)
	return formatted + " m²"
}

// FormatDate renders the short German date form DD.MM.YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatDateLong renders the long German date form, e.g. "01. März 2026".
func FormatDateLong(t time.Time) string {
	return fmt.Sprintf("%02d. %s %d", t.Day(), MonthName(t.Month()), t.Year())
}

// MonthName returns the German month name.
func MonthName(month time.Month) string {
	return monthNames[month-1]
}

// dateLayouts are the storage formats tenant move dates appear in.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02.01.2006",
}

// parseDate parses a stored date string. Callers pass unparseable values
// through unchanged to preserve raw legacy data.
func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sumAmounts totals the parseable amount strings of the given entries.
func sumAmounts(entries []NebenkostenPosten) float64 {
	var total float64
	for _, entry := range entries {
		raw := strings.TrimSpace(entry.Amount)
		// Amounts appear both in decimal-point and German decimal-comma form.
		if strings.Contains(raw, ",") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		}
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			total += amount
		}
	}
	return total
}
