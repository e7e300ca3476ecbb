// backend/src/parsers/bankcsv/parser.go
package bankcsv

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/models"
)

// ErrColumnDetection is returned when the header row lacks a recognizable
// date or value column. Nothing is imported from such a file.
var ErrColumnDetection = errors.New("csv statement: date or value column not found in header")

// DescriptionPlaceholder is used for files that export no description column.
const DescriptionPlaceholder = "Sem descrição"

// CSVParser extracts transaction drafts from bank CSV exports. Banks disagree
// on delimiter and header names, so both are detected instead of configured:
// the delimiter from the header row, the columns by case-insensitive
// substring matching on the header cells. Numeric values follow the Brazilian
// locale ('.' thousands separator, ',' decimal separator).
type CSVParser struct{}

// NewParser creates a new instance of the CSVParser.
func NewParser() *CSVParser {
	return &CSVParser{}
}

var brDateRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

func (p *CSVParser) Parse(file io.Reader) ([]models.StatementEntry, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, ErrColumnDetection
	}

	header := lines[0]
	delimiter := ","
	if strings.Contains(header, ";") {
		delimiter = ";"
	}

	dateCol, descCol, valueCol := detectColumns(strings.Split(header, delimiter))
	if dateCol < 0 || valueCol < 0 {
		return nil, ErrColumnDetection
	}

	var entries []models.StatementEntry
	dropped := 0
	for _, line := range lines[1:] {
		cells := strings.Split(line, delimiter)
		for i := range cells {
			cells[i] = stripQuotes(cells[i])
		}

		amount, err := parseLocalizedAmount(cell(cells, valueCol))
		if err != nil {
			// Subtotal and footer rows fail numeric parsing; drop quietly.
			dropped++
			continue
		}

		description := DescriptionPlaceholder
		if descCol >= 0 {
			description = cell(cells, descCol)
		}

		kind := models.KindCredit
		if amount.Sign() < 0 {
			kind = models.KindDebit
		}

		entries = append(entries, models.StatementEntry{
			Date:        normalizeDate(cell(cells, dateCol)),
			Description: description,
			Amount:      amount,
			AmountOK:    true,
			Kind:        kind,
		})
	}

	logger.L.Debug("CSV statement parsed", "rows", len(entries), "dropped", dropped)
	return entries, nil
}

// detectColumns finds the date, description and value columns by
// case-insensitive substring matching against each header cell. The
// description column is optional; date and value are not.
func detectColumns(headerCells []string) (dateCol, descCol, valueCol int) {
	dateCol, descCol, valueCol = -1, -1, -1
	for i, raw := range headerCells {
		name := strings.ToLower(stripQuotes(raw))
		switch {
		case dateCol < 0 && (strings.Contains(name, "data") || strings.Contains(name, "date")):
			dateCol = i
		case descCol < 0 && containsAny(name, "descri", "memo", "hist", "name"):
			descCol = i
		case valueCol < 0 && containsAny(name, "valor", "value", "amount"):
			valueCol = i
		}
	}
	return dateCol, descCol, valueCol
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func stripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// normalizeDate rewrites DD/MM/YYYY to YYYY-MM-DD. Any other format is passed
// through unchanged.
func normalizeDate(s string) string {
	if m := brDateRe.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return s
}

// parseLocalizedAmount parses a Brazilian-locale numeric string: thousands
// dots removed, decimal comma converted to a point.
func parseLocalizedAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return decimal.NewFromString(cleaned)
}
