package ofx

import (
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/gasfluxo/backend/src/logger"
	"github.com/username/gasfluxo/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
<OFX>
<BANKMSGSRSV1><STMTTRNRS><STMTRS><BANKTRANLIST>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250105120000
<TRNAMT>150.00
<MEMO>Pagamento Cliente
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250110000000
<TRNAMT>-75.50
<NAME>Taxa Bancaria
</STMTTRN>
</BANKTRANLIST></STMTRS></STMTTRNRS></BANKMSGSRSV1>
</OFX>`

func TestParseStatement(t *testing.T) {
	entries, err := NewParser().Parse(strings.NewReader(sampleOFX))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Parse() returned %d entries, want 2", len(entries))
	}

	first := entries[0]
	if first.Date != "2025-01-05" {
		t.Errorf("first.Date = %q, want %q", first.Date, "2025-01-05")
	}
	if !first.Amount.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("first.Amount = %s, want 150.00", first.Amount)
	}
	if first.Kind != models.KindCredit {
		t.Errorf("first.Kind = %q, want credit", first.Kind)
	}
	if first.Description != "Pagamento Cliente" {
		t.Errorf("first.Description = %q, want %q", first.Description, "Pagamento Cliente")
	}
	if !first.Valid() {
		t.Error("first.Valid() = false, want true")
	}

	second := entries[1]
	if second.Date != "2025-01-10" {
		t.Errorf("second.Date = %q, want %q", second.Date, "2025-01-10")
	}
	if !second.Amount.Equal(decimal.RequireFromString("-75.50")) {
		t.Errorf("second.Amount = %s, want -75.50", second.Amount)
	}
	if second.Kind != models.KindDebit {
		t.Errorf("second.Kind = %q, want debit", second.Kind)
	}
	if second.Description != "Taxa Bancaria" {
		t.Errorf("second.Description = %q, want %q", second.Description, "Taxa Bancaria")
	}
}

func TestParseMalformedBlocksAreKept(t *testing.T) {
	// Blocks with missing tags must still come out as drafts; filtering is
	// the import service's job.
	tests := []struct {
		name     string
		block    string
		wantDate string
		wantOK   bool
	}{
		{
			name:     "missing DTPOSTED",
			block:    "<STMTTRN>\n<TRNAMT>10.00\n<MEMO>Sem data\n</STMTTRN>",
			wantDate: "",
			wantOK:   true,
		},
		{
			name:     "missing TRNAMT",
			block:    "<STMTTRN>\n<DTPOSTED>20250201\n<MEMO>Sem valor\n</STMTTRN>",
			wantDate: "2025-02-01",
			wantOK:   false,
		},
		{
			name:     "garbage amount",
			block:    "<STMTTRN>\n<DTPOSTED>20250201\n<TRNAMT>abc\n</STMTTRN>",
			wantDate: "2025-02-01",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NewParser().Parse(strings.NewReader(tt.block))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("Parse() returned %d entries, want 1", len(entries))
			}
			if entries[0].Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", entries[0].Date, tt.wantDate)
			}
			if entries[0].AmountOK != tt.wantOK {
				t.Errorf("AmountOK = %v, want %v", entries[0].AmountOK, tt.wantOK)
			}
			if entries[0].Valid() {
				t.Error("Valid() = true for malformed draft, want false")
			}
		})
	}
}

func TestParseDecimalComma(t *testing.T) {
	input := "<STMTTRN>\n<DTPOSTED>20250301\n<TRNAMT>1234,56\n<MEMO>Deposito\n</STMTTRN>"
	entries, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Parse() returned %d entries, want 1", len(entries))
	}
	if !entries[0].Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("Amount = %s, want 1234.56", entries[0].Amount)
	}
}

func TestParseCaseInsensitiveTags(t *testing.T) {
	input := "<stmttrn>\n<dtposted>20250301\n<trnamt>5.00\n<memo>minusculas\n</stmttrn>"
	entries, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Parse() returned %d entries, want 1", len(entries))
	}
	if entries[0].Description != "minusculas" {
		t.Errorf("Description = %q, want %q", entries[0].Description, "minusculas")
	}
}

func TestParseNoBlocks(t *testing.T) {
	entries, err := NewParser().Parse(strings.NewReader("<OFX><SIGNONMSGSRSV1></SIGNONMSGSRSV1></OFX>"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Parse() returned %d entries, want 0", len(entries))
	}
}
