// backend/src/security/validation/sanitizers.go
package validation

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictHTMLPolicy *bluemonday.Policy

func init() {
	strictHTMLPolicy = bluemonday.StrictPolicy() // removes all HTML tags
}

// SanitizeDescription cleans a statement description before it is persisted:
// strips any HTML, drops unprintable characters and neutralizes spreadsheet
// formula triggers. Descriptions come straight from bank exports and end up
// both in the UI and in re-exported spreadsheets.
func SanitizeDescription(s string) string {
	return SanitizeForFormulaInjection(StripUnprintable(SanitizeText(s)))
}

// SanitizeText removes all HTML tags and attributes from an input string.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// SanitizeForFormulaInjection prepends a single quote if the string starts
// with a formula trigger character, preventing CSV/formula injection in
// Excel, LibreOffice and Sheets.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return s
	}

	switch rune(trimmed[0]) {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
