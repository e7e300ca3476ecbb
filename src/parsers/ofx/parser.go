// backend/src/parsers/ofx/parser.go
package ofx

import (
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/models"
)

// OFXParser extracts transaction drafts from the <STMTTRN> blocks of an OFX
// export. Bank exports rarely conform to strict SGML/XML, so no document
// validation is attempted: anything around the blocks is ignored.
type OFXParser struct{}

// NewParser creates a new instance of the OFXParser.
func NewParser() *OFXParser {
	return &OFXParser{}
}

var (
	stmtTrnRe  = regexp.MustCompile(`(?is)<STMTTRN>(.*?)</STMTTRN>`)
	dtPostedRe = regexp.MustCompile(`(?i)<DTPOSTED>\s*([^<\r\n]+)`)
	trnAmtRe   = regexp.MustCompile(`(?i)<TRNAMT>\s*([^<\r\n]+)`)
	memoRe     = regexp.MustCompile(`(?i)<MEMO>\s*([^<\r\n]+)`)
	nameRe     = regexp.MustCompile(`(?i)<NAME>\s*([^<\r\n]+)`)
)

// Parse scans the full OFX text for <STMTTRN> blocks and converts each into a
// draft. Blocks missing DTPOSTED or TRNAMT still yield a draft, with an empty
// date or AmountOK=false respectively; filtering those out is the caller's
// responsibility. An input with no blocks produces an empty result, not an
// error.
func (p *OFXParser) Parse(file io.Reader) ([]models.StatementEntry, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	text := string(raw)

	blocks := stmtTrnRe.FindAllStringSubmatch(text, -1)
	entries := make([]models.StatementEntry, 0, len(blocks))
	for _, block := range blocks {
		entries = append(entries, parseBlock(block[1]))
	}

	logger.L.Debug("OFX statement parsed", "blocks", len(entries))
	return entries, nil
}

func parseBlock(block string) models.StatementEntry {
	var entry models.StatementEntry

	if m := dtPostedRe.FindStringSubmatch(block); m != nil {
		entry.Date = normalizeOFXDate(m[1])
	}

	if m := trnAmtRe.FindStringSubmatch(block); m != nil {
		// Some banks export a decimal comma even in OFX
		normalized := strings.ReplaceAll(strings.TrimSpace(m[1]), ",", ".")
		if amount, err := decimal.NewFromString(normalized); err == nil {
			entry.Amount = amount
			entry.AmountOK = true
		}
	}

	if m := memoRe.FindStringSubmatch(block); m != nil {
		entry.Description = strings.TrimSpace(m[1])
	} else if m := nameRe.FindStringSubmatch(block); m != nil {
		entry.Description = strings.TrimSpace(m[1])
	}

	if entry.AmountOK && entry.Amount.Sign() < 0 {
		entry.Kind = models.KindDebit
	} else {
		entry.Kind = models.KindCredit
	}

	return entry
}

// normalizeOFXDate reassembles the positional DTPOSTED value (YYYYMMDD plus
// an optional timestamp/timezone suffix, which is discarded) into an ISO
// calendar date.
func normalizeOFXDate(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 8 {
		return ""
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}
