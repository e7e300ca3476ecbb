// backend/src/parsers/parser.go
package parsers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/username/gasfluxo/backend/src/models"
	"github.com/username/gasfluxo/backend/src/parsers/bankcsv"
	"github.com/username/gasfluxo/backend/src/parsers/ofx"
)

// StatementParser converts the raw content of a bank statement export into
// transaction drafts. Implementations are pure: no side effects beyond
// reading the input.
type StatementParser interface {
	Parse(file io.Reader) ([]models.StatementEntry, error)
}

// ForFormat selects a parser for the given format hint ("ofx" or "csv").
// When the hint is empty the filename extension decides.
func ForFormat(format, filename string) (StatementParser, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}
	switch f {
	case "ofx":
		return ofx.NewParser(), nil
	case "csv", "txt":
		return bankcsv.NewParser(), nil
	default:
		return nil, fmt.Errorf("unsupported statement format: %q", format)
	}
}
